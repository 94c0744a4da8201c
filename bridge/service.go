package bridge

import (
	"context"
	"errors"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/swapr/bridge-tracker/arbitrum"
	"github.com/swapr/bridge-tracker/entity"
	"github.com/swapr/bridge-tracker/logging"
	"github.com/swapr/bridge-tracker/network"
	"github.com/swapr/bridge-tracker/store"
)

const userRejectedRequestCode = 4001

// StateStore is the read and write capability the service needs from the store.
type StateStore interface {
	Snapshot() *store.State
	Dispatch(ctx context.Context, actions ...store.Action)
}

// AccountFunc returns the active account. It is evaluated on every operation.
type AccountFunc func() (common.Address, bool)

func StaticAccount(account common.Address) AccountFunc {
	return func() (common.Address, bool) {
		return account, account != common.Address{}
	}
}

type Service struct {
	logger  logging.Logger
	bridge  arbitrum.Bridge
	store   StateStore
	pair    network.Pair
	account AccountFunc
}

// NewService creates a bridge service. A nil bridge or an unpaired chain
// turns every operation into a no-op.
func NewService(logger logging.Logger, bridge arbitrum.Bridge, st StateStore, pair network.Pair, account AccountFunc) *Service {
	if account == nil {
		account = StaticAccount(common.Address{})
	}
	return &Service{
		logger:  logger,
		bridge:  bridge,
		store:   st,
		pair:    pair,
		account: account,
	}
}

func (s *Service) Pair() network.Pair {
	return s.pair
}

func (s *Service) provider(txnType entity.TxnType) arbitrum.Provider {
	if txnType.Layer() == 2 {
		return s.bridge.L2Provider()
	}
	return s.bridge.L1Provider()
}

func (s *Service) ready() (common.Address, bool) {
	if s.bridge == nil || !s.pair.Paired() {
		return common.Address{}, false
	}
	return s.account()
}

func (s *Service) fail(ctx context.Context, op string, err error) {
	s.logger.WithError(err).WithField("operation", op).Error("bridge operation failed")
	OperationResults.WithLabelValues(op, "error").Inc()
	s.store.Dispatch(ctx, store.SetModalStatus{
		Status: store.ModalStatusError,
		Error:  errorMessage(err),
	})
}

func errorMessage(err error) string {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) && rpcErr.ErrorCode() == userRejectedRequestCode {
		return "Transaction rejected"
	}
	return "Bridge failed: " + err.Error()
}

// forEach runs fn for every record concurrently and waits for all of them.
func forEach(txns []*entity.BridgeTxn, fn func(txn *entity.BridgeTxn)) {
	wg := new(sync.WaitGroup)
	wg.Add(len(txns))
	for _, txn := range txns {
		go func(txn *entity.BridgeTxn) {
			defer wg.Done()
			fn(txn)
		}(txn)
	}
	wg.Wait()
}
