package bridge

import (
	"context"
	"time"

	"github.com/swapr/bridge-tracker/config"
	"github.com/swapr/bridge-tracker/logging"
	"github.com/swapr/bridge-tracker/utils"
)

// Poller runs the reconciliation loops of a service on the configured intervals.
type Poller struct {
	logger  logging.Logger
	service *Service
	store   StateStore
	cfg     config.PollingConfig
	session *WithdrawalsSession
	recheck chan struct{}
}

func NewPoller(logger logging.Logger, service *Service, st StateStore, cfg config.PollingConfig) *Poller {
	return &Poller{
		logger:  logger,
		service: service,
		store:   st,
		cfg:     cfg,
		session: NewWithdrawalsSession(),
		recheck: make(chan struct{}, 1),
	}
}

func (p *Poller) Start(ctx context.Context) {
	p.logger.Info("starting bridge pollers")
	go p.run(ctx, "pending_txs", p.cfg.PendingTxs, func(ctx context.Context) {
		p.service.PendingTxListener(ctx)
		RecordTrackedTxns(p.store.Snapshot())
	})
	go p.run(ctx, "l2_deposits", p.cfg.L2Deposits, p.service.L2DepositsListener)
	go p.runWithdrawals(ctx)
}

// Recheck re-arms the withdrawals session and wakes up the withdrawals loop.
func (p *Poller) Recheck() {
	p.session.Reset()
	select {
	case p.recheck <- struct{}{}:
	default:
	}
}

func (p *Poller) Session() *WithdrawalsSession {
	return p.session
}

func (p *Poller) run(ctx context.Context, name string, interval time.Duration, fn func(ctx context.Context)) {
	logger := p.logger.WithField("loop", name)
	logger.WithField("interval", interval).Info("starting reconciliation loop")
	for {
		fn(ctx)

		if utils.ContextSleep(ctx, interval) == nil {
			logger.Info("reconciliation loop stopped")
			return
		}
	}
}

func (p *Poller) runWithdrawals(ctx context.Context) {
	logger := p.logger.WithField("loop", "withdrawals")
	logger.WithField("interval", p.cfg.Withdrawals).Info("starting reconciliation loop")
	ticker := time.NewTicker(p.cfg.Withdrawals)
	defer ticker.Stop()
	for {
		if !p.session.Checked() {
			p.service.UpdatePendingWithdrawals(ctx, p.session)
		}

		select {
		case <-ticker.C:
		case <-p.recheck:
			logger.Info("pending withdrawals recheck requested")
		case <-ctx.Done():
			logger.Info("reconciliation loop stopped")
			return
		}
	}
}
