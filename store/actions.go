package store

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/swapr/bridge-tracker/entity"
	"github.com/swapr/bridge-tracker/network"
)

// Changes lists the records touched by an action.
type Changes struct {
	BridgeTxns   []Key
	Transactions []Key
}

// Action is a state transition. Applying the same action twice yields the same state.
type Action interface {
	Apply(state *State) Changes
}

type AddBridgeTxn struct {
	Txn *entity.BridgeTxn
}

func (a AddBridgeTxn) Apply(state *State) Changes {
	if a.Txn == nil {
		return Changes{}
	}
	if _, ok := state.BridgeTxn(a.Txn.ChainID, a.Txn.TxHash); ok {
		return Changes{}
	}
	txn := a.Txn.Clone()
	txn.NormalizeVariant()
	txn.Status = txn.DeriveStatus()
	state.putBridgeTxn(txn)
	return Changes{BridgeTxns: []Key{{ChainID: txn.ChainID, Hash: txn.TxHash}}}
}

type UpdateReceipt struct {
	ChainID network.ChainID
	TxHash  common.Hash
	Receipt *types.Receipt
	SeqNum  *big.Int
}

func (a UpdateReceipt) Apply(state *State) Changes {
	txn, ok := state.BridgeTxn(a.ChainID, a.TxHash)
	if !ok || a.Receipt == nil {
		return Changes{}
	}
	txn.Receipt = entity.CloneReceipt(a.Receipt)
	if a.SeqNum != nil && txn.Deposit != nil {
		txn.Deposit.SeqNum = new(big.Int).Set(a.SeqNum)
	}
	txn.Status = txn.DeriveStatus()
	return Changes{BridgeTxns: []Key{{ChainID: a.ChainID, Hash: a.TxHash}}}
}

// UpdatePartnerHash sets one end of a cross-chain link.
type UpdatePartnerHash struct {
	ChainID        network.ChainID
	TxHash         common.Hash
	PartnerTxHash  common.Hash
	PartnerChainID network.ChainID
}

func (a UpdatePartnerHash) Apply(state *State) Changes {
	txn, ok := state.BridgeTxn(a.ChainID, a.TxHash)
	if !ok {
		return Changes{}
	}
	partner := a.PartnerTxHash
	txn.PartnerTxHash = &partner
	txn.PartnerChainID = a.PartnerChainID
	txn.Status = txn.DeriveStatus()
	return Changes{BridgeTxns: []Key{{ChainID: a.ChainID, Hash: a.TxHash}}}
}

type UpdateWithdrawalInfo struct {
	ChainID              network.ChainID
	TxHash               common.Hash
	OutgoingMessageState entity.OutgoingMessageState
	BatchNumber          *big.Int
	BatchIndex           *big.Int
}

func (a UpdateWithdrawalInfo) Apply(state *State) Changes {
	txn, ok := state.BridgeTxn(a.ChainID, a.TxHash)
	if !ok || txn.Withdrawal == nil {
		return Changes{}
	}
	if !txn.Withdrawal.OutgoingMessageState.Precedes(a.OutgoingMessageState) {
		return Changes{}
	}
	txn.Withdrawal.OutgoingMessageState = a.OutgoingMessageState
	if a.BatchNumber != nil {
		txn.Withdrawal.BatchNumber = new(big.Int).Set(a.BatchNumber)
	}
	if a.BatchIndex != nil {
		txn.Withdrawal.BatchIndex = new(big.Int).Set(a.BatchIndex)
	}
	txn.Status = txn.DeriveStatus()
	return Changes{BridgeTxns: []Key{{ChainID: a.ChainID, Hash: a.TxHash}}}
}

type SetModalStatus struct {
	Status ModalStatus
	Error  string
}

func (a SetModalStatus) Apply(state *State) Changes {
	state.Modal.Status = a.Status
	state.Modal.Error = a.Error
	return Changes{}
}

type SetModalData struct {
	Symbol      string
	TypedValue  string
	FromChainID network.ChainID
	ToChainID   network.ChainID
}

func (a SetModalData) Apply(state *State) Changes {
	state.Modal.Symbol = a.Symbol
	state.Modal.TypedValue = a.TypedValue
	state.Modal.FromChainID = a.FromChainID
	state.Modal.ToChainID = a.ToChainID
	return Changes{}
}

type SetLoadingWithdrawals struct {
	Loading bool
}

func (a SetLoadingWithdrawals) Apply(state *State) Changes {
	state.IsCheckingWithdrawals = a.Loading
	return Changes{}
}

type AddTransaction struct {
	Tx *entity.Transaction
}

func (a AddTransaction) Apply(state *State) Changes {
	if a.Tx == nil {
		return Changes{}
	}
	if txs, ok := state.Transactions[a.Tx.ChainID]; ok {
		if _, ok = txs[a.Tx.Hash]; ok {
			return Changes{}
		}
	}
	state.putTransaction(a.Tx.Clone())
	return Changes{Transactions: []Key{{ChainID: a.Tx.ChainID, Hash: a.Tx.Hash}}}
}
