package bridge

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/swapr/bridge-tracker/entity"
	"github.com/swapr/bridge-tracker/store"
)

// PendingTxListener fetches receipts for every record that has none yet.
// Records without a receipt on chain stay pending until the next pass.
func (s *Service) PendingTxListener(ctx context.Context) {
	if s.bridge == nil {
		return
	}
	defer ObserveLoopDuration("pending_txs")()

	pending := s.store.Snapshot().PendingTxs()
	if len(pending) == 0 {
		return
	}

	forEach(pending, func(txn *entity.BridgeTxn) {
		logger := s.logger.WithFields(logrus.Fields{
			"chain_id": txn.ChainID,
			"tx_hash":  txn.TxHash,
		})
		receipt, err := s.provider(txn.Type).TransactionReceipt(ctx, txn.TxHash)
		if err != nil {
			logger.WithError(err).Warn("can't fetch pending transaction receipt")
			return
		}
		if receipt == nil {
			return
		}
		logger.WithField("status", receipt.Status).Info("bridge transaction mined")
		s.store.Dispatch(ctx, store.UpdateReceipt{
			ChainID: txn.ChainID,
			TxHash:  txn.TxHash,
			Receipt: receipt,
		})
	})
}

// L2DepositsListener creates the L2 counterpart of every L1 deposit of the
// active account once its inbox sequence number is known.
func (s *Service) L2DepositsListener(ctx context.Context) {
	account, ok := s.ready()
	if !ok {
		return
	}
	defer ObserveLoopDuration("l2_deposits")()

	deposits := s.store.Snapshot().L1Deposits(account)
	forEach(deposits, func(txn *entity.BridgeTxn) {
		logger := s.logger.WithFields(logrus.Fields{
			"chain_id": txn.ChainID,
			"tx_hash":  txn.TxHash,
		})
		seqNum, actions, err := s.depositSeqNum(ctx, txn)
		if err != nil {
			logger.WithError(err).Warn("can't obtain deposit sequence number")
			return
		}
		if seqNum == nil {
			return
		}

		l2Hash := s.bridge.CalculateL2TransactionHash(seqNum)
		state := s.store.Snapshot()
		if _, exists := state.BridgeTxn(s.pair.L1ChainID, l2Hash); exists {
			return
		}
		if _, exists := state.BridgeTxn(s.pair.L2ChainID, l2Hash); exists {
			return
		}

		l2Txn := txn.Clone()
		l2Txn.ChainID = s.pair.L2ChainID
		l2Txn.TxHash = l2Hash
		l2Txn.Type = entity.TxnTypeDepositL2
		l2Txn.Status = ""
		l2Txn.Receipt = nil
		l2Txn.PartnerTxHash = nil
		l2Txn.PartnerChainID = 0
		l2Txn.Deposit = &entity.DepositInfo{SeqNum: seqNum}
		l2Txn.CreatedAt = nil
		l2Txn.UpdatedAt = nil

		logger.WithFields(logrus.Fields{
			"seq_num":    seqNum,
			"l2_tx_hash": l2Hash,
		}).Info("discovered l2 deposit transaction")
		actions = append(actions,
			store.AddBridgeTxn{Txn: l2Txn},
			store.UpdatePartnerHash{
				ChainID:        s.pair.L2ChainID,
				TxHash:         l2Hash,
				PartnerTxHash:  txn.TxHash,
				PartnerChainID: s.pair.L1ChainID,
			},
			store.UpdatePartnerHash{
				ChainID:        txn.ChainID,
				TxHash:         txn.TxHash,
				PartnerTxHash:  l2Hash,
				PartnerChainID: s.pair.L2ChainID,
			},
		)
		s.store.Dispatch(ctx, actions...)
	})
}

// depositSeqNum returns the known sequence number of the deposit, or reads it
// from the L1 receipt. In the latter case the returned actions store it.
func (s *Service) depositSeqNum(ctx context.Context, txn *entity.BridgeTxn) (*big.Int, []store.Action, error) {
	if seqNum := txn.SeqNum(); seqNum != nil {
		return seqNum, nil, nil
	}
	receipt, err := s.bridge.L1Provider().TransactionReceipt(ctx, txn.TxHash)
	if err != nil {
		return nil, nil, err
	}
	if receipt == nil {
		return nil, nil, nil
	}
	seqNums := s.bridge.InboxSeqNums(receipt)
	if len(seqNums) == 0 {
		return nil, nil, nil
	}
	return seqNums[0], []store.Action{store.UpdateReceipt{
		ChainID: txn.ChainID,
		TxHash:  txn.TxHash,
		Receipt: receipt,
		SeqNum:  seqNums[0],
	}}, nil
}

type withdrawalInfo struct {
	state       entity.OutgoingMessageState
	batchNumber *big.Int
	batchIndex  *big.Int
}

// UpdatePendingWithdrawals refreshes the outgoing message state of every
// pending withdrawal. It runs once per session.
func (s *Service) UpdatePendingWithdrawals(ctx context.Context, session *WithdrawalsSession) {
	if s.bridge == nil || s.pair.L2ChainID == 0 {
		return
	}
	generation, ok := session.begin()
	if !ok {
		return
	}
	defer ObserveLoopDuration("withdrawals")()

	pending := s.store.Snapshot().PendingWithdrawals()
	s.store.Dispatch(ctx, store.SetLoadingWithdrawals{Loading: true})

	forEach(pending, func(txn *entity.BridgeTxn) {
		logger := s.logger.WithFields(logrus.Fields{
			"chain_id": txn.ChainID,
			"tx_hash":  txn.TxHash,
		})
		info, err := s.withdrawalInfo(ctx, txn)
		if err != nil {
			logger.WithError(err).Warn("can't obtain outgoing message state")
			return
		}
		if info == nil || info.state == entity.OutgoingMessageStateUnknown {
			return
		}
		logger.WithFields(logrus.Fields{
			"batch_number": info.batchNumber,
			"batch_index":  info.batchIndex,
			"state":        info.state,
		}).Debug("updating withdrawal info")
		s.store.Dispatch(ctx, store.UpdateWithdrawalInfo{
			ChainID:              txn.ChainID,
			TxHash:               txn.TxHash,
			OutgoingMessageState: info.state,
			BatchNumber:          info.batchNumber,
			BatchIndex:           info.batchIndex,
		})
	})

	s.store.Dispatch(ctx, store.SetLoadingWithdrawals{Loading: false})
	session.end(generation, ctx.Err() == nil)
}

func (s *Service) withdrawalInfo(ctx context.Context, txn *entity.BridgeTxn) (*withdrawalInfo, error) {
	if txn.Receipt == nil {
		return nil, nil
	}
	info := new(withdrawalInfo)
	if w := txn.Withdrawal; w != nil && w.BatchNumber != nil && w.BatchIndex != nil {
		info.batchNumber, info.batchIndex = w.BatchNumber, w.BatchIndex
	} else {
		events := s.bridge.WithdrawalsInL2Transaction(txn.Receipt)
		if len(events) != 1 {
			return nil, nil
		}
		info.batchNumber, info.batchIndex = events[0].BatchNumber, events[0].IndexInBatch
	}

	state, err := s.bridge.OutgoingMessageState(ctx, info.batchNumber, info.batchIndex)
	if err != nil {
		return nil, err
	}
	info.state = state
	return info, nil
}

// TrackedAccount returns the active account, zero when there is none.
func (s *Service) TrackedAccount() common.Address {
	account, _ := s.account()
	return account
}
