package store

import (
	"bytes"
	"sort"

	"github.com/ethereum/go-ethereum/common"

	"github.com/swapr/bridge-tracker/entity"
	"github.com/swapr/bridge-tracker/network"
)

func (s *State) BridgeTxn(chainID network.ChainID, hash common.Hash) (*entity.BridgeTxn, bool) {
	txns, ok := s.BridgeTxns[chainID]
	if !ok {
		return nil, false
	}
	txn, ok := txns[hash]
	return txn, ok
}

func (s *State) AllTxs() []*entity.BridgeTxn {
	return s.filter(func(*entity.BridgeTxn) bool { return true })
}

func (s *State) PendingTxs() []*entity.BridgeTxn {
	return s.filter(func(txn *entity.BridgeTxn) bool {
		return txn.Receipt == nil
	})
}

func (s *State) OwnedTxs(account common.Address) []*entity.BridgeTxn {
	if account == (common.Address{}) {
		return nil
	}
	return s.filter(func(txn *entity.BridgeTxn) bool {
		return txn.Sender == account
	})
}

func (s *State) L1Deposits(account common.Address) []*entity.BridgeTxn {
	if account == (common.Address{}) {
		return nil
	}
	return s.filter(func(txn *entity.BridgeTxn) bool {
		return txn.Sender == account && txn.Type == entity.TxnTypeDepositL1
	})
}

func (s *State) PendingWithdrawals() []*entity.BridgeTxn {
	return s.filter(func(txn *entity.BridgeTxn) bool {
		return txn.Type == entity.TxnTypeWithdraw && txn.MessageState() != entity.OutgoingMessageStateExecuted
	})
}

func (s *State) TransactionList() []*entity.Transaction {
	res := make([]*entity.Transaction, 0)
	for _, txs := range s.Transactions {
		for _, tx := range txs {
			res = append(res, tx)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		return less(res[i].ChainID, res[i].Hash, res[j].ChainID, res[j].Hash)
	})
	return res
}

func (s *State) filter(pred func(*entity.BridgeTxn) bool) []*entity.BridgeTxn {
	res := make([]*entity.BridgeTxn, 0)
	for _, txns := range s.BridgeTxns {
		for _, txn := range txns {
			if pred(txn) {
				res = append(res, txn)
			}
		}
	}
	sort.Slice(res, func(i, j int) bool {
		return less(res[i].ChainID, res[i].TxHash, res[j].ChainID, res[j].TxHash)
	})
	return res
}

func less(chainA network.ChainID, hashA common.Hash, chainB network.ChainID, hashB common.Hash) bool {
	if chainA != chainB {
		return chainA < chainB
	}
	return bytes.Compare(hashA[:], hashB[:]) < 0
}
