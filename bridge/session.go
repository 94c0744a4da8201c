package bridge

import "sync"

// WithdrawalsSession guards the pending withdrawals check so that it runs
// once until Reset is called, e.g. after a reconnect or an account switch.
// A Reset issued while a check is running re-arms the session for the next run.
type WithdrawalsSession struct {
	mu         sync.Mutex
	checked    bool
	running    bool
	generation uint64
}

func NewWithdrawalsSession() *WithdrawalsSession {
	return new(WithdrawalsSession)
}

func (s *WithdrawalsSession) Checked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checked
}

func (s *WithdrawalsSession) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checked = false
	s.generation++
}

func (s *WithdrawalsSession) begin() (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.checked || s.running {
		return 0, false
	}
	s.running = true
	return s.generation, true
}

func (s *WithdrawalsSession) end(generation uint64, checked bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	if checked && generation == s.generation {
		s.checked = true
	}
}
