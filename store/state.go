package store

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/swapr/bridge-tracker/entity"
	"github.com/swapr/bridge-tracker/network"
)

type ModalStatus string

const (
	ModalStatusClosed     ModalStatus = "CLOSED"
	ModalStatusPending    ModalStatus = "PENDING"
	ModalStatusInitiated  ModalStatus = "INITIATED"
	ModalStatusCollecting ModalStatus = "COLLECTING"
	ModalStatusSuccess    ModalStatus = "SUCCESS"
	ModalStatusError      ModalStatus = "ERROR"
)

type Modal struct {
	Status      ModalStatus     `json:"status"`
	Symbol      string          `json:"symbol,omitempty"`
	TypedValue  string          `json:"typedValue,omitempty"`
	FromChainID network.ChainID `json:"fromChainId,omitempty"`
	ToChainID   network.ChainID `json:"toChainId,omitempty"`
	Error       string          `json:"error,omitempty"`
}

type Key struct {
	ChainID network.ChainID
	Hash    common.Hash
}

type State struct {
	BridgeTxns            map[network.ChainID]map[common.Hash]*entity.BridgeTxn
	Transactions          map[network.ChainID]map[common.Hash]*entity.Transaction
	Modal                 Modal
	IsCheckingWithdrawals bool
}

func NewState() *State {
	return &State{
		BridgeTxns:   make(map[network.ChainID]map[common.Hash]*entity.BridgeTxn),
		Transactions: make(map[network.ChainID]map[common.Hash]*entity.Transaction),
		Modal:        Modal{Status: ModalStatusClosed},
	}
}

// Clone returns a deep copy of the state.
func (s *State) Clone() *State {
	c := &State{
		BridgeTxns:            make(map[network.ChainID]map[common.Hash]*entity.BridgeTxn, len(s.BridgeTxns)),
		Transactions:          make(map[network.ChainID]map[common.Hash]*entity.Transaction, len(s.Transactions)),
		Modal:                 s.Modal,
		IsCheckingWithdrawals: s.IsCheckingWithdrawals,
	}
	for chainID, txns := range s.BridgeTxns {
		m := make(map[common.Hash]*entity.BridgeTxn, len(txns))
		for hash, txn := range txns {
			m[hash] = txn.Clone()
		}
		c.BridgeTxns[chainID] = m
	}
	for chainID, txs := range s.Transactions {
		m := make(map[common.Hash]*entity.Transaction, len(txs))
		for hash, tx := range txs {
			m[hash] = tx.Clone()
		}
		c.Transactions[chainID] = m
	}
	return c
}

func (s *State) putBridgeTxn(txn *entity.BridgeTxn) {
	txns, ok := s.BridgeTxns[txn.ChainID]
	if !ok {
		txns = make(map[common.Hash]*entity.BridgeTxn)
		s.BridgeTxns[txn.ChainID] = txns
	}
	txns[txn.TxHash] = txn
}

func (s *State) putTransaction(tx *entity.Transaction) {
	txs, ok := s.Transactions[tx.ChainID]
	if !ok {
		txs = make(map[common.Hash]*entity.Transaction)
		s.Transactions[tx.ChainID] = txs
	}
	txs[tx.Hash] = tx
}
