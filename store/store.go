package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/swapr/bridge-tracker/entity"
	"github.com/swapr/bridge-tracker/logging"
)

// Store holds the bridge state. Every record changed by a dispatch is written
// through to the repositories when they are set.
type Store struct {
	logger           logging.Logger
	bridgeTxnsRepo   entity.BridgeTxnsRepo
	transactionsRepo entity.TransactionsRepo

	mu    sync.RWMutex
	state *State

	// held across the hand-off from mu so that writes hit the repositories in dispatch order
	persistMu sync.Mutex
}

func NewStore(logger logging.Logger, bridgeTxnsRepo entity.BridgeTxnsRepo, transactionsRepo entity.TransactionsRepo) *Store {
	return &Store{
		logger:           logger,
		bridgeTxnsRepo:   bridgeTxnsRepo,
		transactionsRepo: transactionsRepo,
		state:            NewState(),
	}
}

func (s *Store) Snapshot() *State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

func (s *Store) Dispatch(ctx context.Context, actions ...Action) {
	s.mu.Lock()
	bridgeTxnKeys := make(map[Key]struct{})
	transactionKeys := make(map[Key]struct{})
	for _, action := range actions {
		changes := action.Apply(s.state)
		for _, key := range changes.BridgeTxns {
			bridgeTxnKeys[key] = struct{}{}
		}
		for _, key := range changes.Transactions {
			transactionKeys[key] = struct{}{}
		}
	}
	txns := make([]*entity.BridgeTxn, 0, len(bridgeTxnKeys))
	for key := range bridgeTxnKeys {
		if txn, ok := s.state.BridgeTxn(key.ChainID, key.Hash); ok {
			txns = append(txns, txn.Clone())
		}
	}
	txs := make([]*entity.Transaction, 0, len(transactionKeys))
	for key := range transactionKeys {
		if tx, ok := s.state.Transactions[key.ChainID][key.Hash]; ok {
			txs = append(txs, tx.Clone())
		}
	}
	s.persistMu.Lock()
	s.mu.Unlock()
	defer s.persistMu.Unlock()

	s.persist(ctx, txns, txs)
}

func (s *Store) persist(ctx context.Context, txns []*entity.BridgeTxn, txs []*entity.Transaction) {
	if s.bridgeTxnsRepo != nil && len(txns) > 0 {
		if err := s.bridgeTxnsRepo.Ensure(ctx, txns...); err != nil {
			s.logger.WithError(err).WithField("count", len(txns)).Error("can't persist bridge transactions")
		}
	}
	if s.transactionsRepo != nil {
		for _, tx := range txs {
			if err := s.transactionsRepo.Ensure(ctx, tx); err != nil {
				s.logger.WithError(err).WithField("tx_hash", tx.Hash).Error("can't persist transaction")
			}
		}
	}
}

// Load replaces the in-memory state with the records stored in the repositories.
func (s *Store) Load(ctx context.Context) error {
	state := NewState()
	if s.bridgeTxnsRepo != nil {
		txns, err := s.bridgeTxnsRepo.FindAll(ctx)
		if err != nil {
			return fmt.Errorf("can't load bridge transactions: %w", err)
		}
		for _, txn := range txns {
			txn.NormalizeVariant()
			txn.Status = txn.DeriveStatus()
			state.putBridgeTxn(txn)
		}
	}
	if s.transactionsRepo != nil {
		txs, err := s.transactionsRepo.FindAll(ctx)
		if err != nil {
			return fmt.Errorf("can't load transactions: %w", err)
		}
		for _, tx := range txs {
			state.putTransaction(tx)
		}
	}

	s.mu.Lock()
	s.state = state
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"bridge_txns":  len(state.AllTxs()),
		"transactions": len(state.TransactionList()),
	}).Info("loaded stored state")
	return nil
}
