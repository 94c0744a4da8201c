package entity

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/swapr/bridge-tracker/network"
)

type TxnType string

const (
	TxnTypeDepositL1           TxnType = "deposit-l1"
	TxnTypeDepositL2           TxnType = "deposit-l2"
	TxnTypeDepositL2AutoRedeem TxnType = "deposit-l2-auto-redeem"
	TxnTypeWithdraw            TxnType = "withdraw"
	TxnTypeOutbox              TxnType = "outbox"
	TxnTypeApprove             TxnType = "approve"
	TxnTypeConnextDeposit      TxnType = "connext-deposit"
	TxnTypeConnextWithdraw     TxnType = "connext-withdraw"
)

func (t TxnType) IsDeposit() bool {
	return t == TxnTypeDepositL1 || t == TxnTypeDepositL2 || t == TxnTypeDepositL2AutoRedeem
}

func (t TxnType) Valid() bool {
	switch t {
	case TxnTypeDepositL1, TxnTypeDepositL2, TxnTypeDepositL2AutoRedeem, TxnTypeWithdraw,
		TxnTypeOutbox, TxnTypeApprove, TxnTypeConnextDeposit, TxnTypeConnextWithdraw:
		return true
	}
	return false
}

// Layer returns the layer the transaction hash belongs to.
func (t TxnType) Layer() int {
	switch t {
	case TxnTypeDepositL2, TxnTypeWithdraw, TxnTypeConnextWithdraw, TxnTypeDepositL2AutoRedeem:
		return 2
	default:
		return 1
	}
}

// Origin returns the layer the bridged value comes from.
func (t TxnType) Origin() int {
	switch t {
	case TxnTypeWithdraw, TxnTypeConnextWithdraw, TxnTypeDepositL2AutoRedeem:
		return 2
	default:
		return 1
	}
}

type AssetType string

const (
	AssetTypeETH   AssetType = "ETH"
	AssetTypeERC20 AssetType = "ERC20"
)

type OutgoingMessageState string

const (
	OutgoingMessageStateUnknown     OutgoingMessageState = ""
	OutgoingMessageStateUnconfirmed OutgoingMessageState = "UNCONFIRMED"
	OutgoingMessageStateConfirmed   OutgoingMessageState = "CONFIRMED"
	OutgoingMessageStateExecuted    OutgoingMessageState = "EXECUTED"
)

func (s OutgoingMessageState) rank() int {
	switch s {
	case OutgoingMessageStateUnconfirmed:
		return 1
	case OutgoingMessageStateConfirmed:
		return 2
	case OutgoingMessageStateExecuted:
		return 3
	default:
		return 0
	}
}

// Precedes reports whether moving from s to next is a forward transition.
// Repeating the same state counts as forward.
func (s OutgoingMessageState) Precedes(next OutgoingMessageState) bool {
	return next.rank() >= s.rank()
}

type TxnStatus string

const (
	TxnStatusSubmitted          TxnStatus = "SUBMITTED"
	TxnStatusConfirmed          TxnStatus = "CONFIRMED"
	TxnStatusFailed             TxnStatus = "FAILED"
	TxnStatusL2Discovered       TxnStatus = "L2_DISCOVERED"
	TxnStatusDisputeUnconfirmed TxnStatus = "DISPUTE_UNCONFIRMED"
	TxnStatusDisputeConfirmed   TxnStatus = "DISPUTE_CONFIRMED"
	TxnStatusCollected          TxnStatus = "COLLECTED"
)

type DepositInfo struct {
	SeqNum *big.Int `json:"seqNum,omitempty"`
}

type WithdrawalInfo struct {
	BatchNumber          *big.Int             `json:"batchNumber,omitempty"`
	BatchIndex           *big.Int             `json:"batchIndex,omitempty"`
	OutgoingMessageState OutgoingMessageState `json:"outgoingMessageState,omitempty"`
}

// BridgeTxn is a bridge transaction keyed by (ChainID, TxHash).
// Deposit is only set for deposit types, Withdrawal only for withdraw.
type BridgeTxn struct {
	ChainID        network.ChainID `json:"chainId"`
	TxHash         common.Hash     `json:"txHash"`
	Type           TxnType         `json:"type"`
	Status         TxnStatus       `json:"status"`
	AssetName      string          `json:"assetName"`
	AssetType      AssetType       `json:"assetType"`
	AssetAddressL1 *common.Address `json:"assetAddressL1,omitempty"`
	AssetAddressL2 *common.Address `json:"assetAddressL2,omitempty"`
	Value          string          `json:"value"`
	Sender         common.Address  `json:"sender"`
	Receipt        *types.Receipt  `json:"receipt,omitempty"`
	PartnerTxHash  *common.Hash    `json:"partnerTxHash,omitempty"`
	PartnerChainID network.ChainID `json:"partnerChainId,omitempty"`
	Deposit        *DepositInfo    `json:"deposit,omitempty"`
	Withdrawal     *WithdrawalInfo `json:"withdrawal,omitempty"`
	CreatedAt      *time.Time      `json:"createdAt,omitempty"`
	UpdatedAt      *time.Time      `json:"updatedAt,omitempty"`
}

// NormalizeVariant drops the variant payloads that do not belong to the
// transaction type and allocates the one that does.
func (t *BridgeTxn) NormalizeVariant() {
	if t.Type.IsDeposit() {
		if t.Deposit == nil {
			t.Deposit = new(DepositInfo)
		}
	} else {
		t.Deposit = nil
	}
	if t.Type == TxnTypeWithdraw {
		if t.Withdrawal == nil {
			t.Withdrawal = new(WithdrawalInfo)
		}
	} else {
		t.Withdrawal = nil
	}
}

func (t *BridgeTxn) DeriveStatus() TxnStatus {
	if t.Receipt == nil {
		return TxnStatusSubmitted
	}
	if t.Receipt.Status == types.ReceiptStatusFailed {
		return TxnStatusFailed
	}
	switch {
	case t.Type == TxnTypeDepositL1 && t.PartnerTxHash != nil:
		return TxnStatusL2Discovered
	case t.Type == TxnTypeWithdraw && t.Withdrawal != nil:
		switch t.Withdrawal.OutgoingMessageState {
		case OutgoingMessageStateUnconfirmed:
			return TxnStatusDisputeUnconfirmed
		case OutgoingMessageStateConfirmed:
			return TxnStatusDisputeConfirmed
		case OutgoingMessageStateExecuted:
			return TxnStatusCollected
		}
	}
	return TxnStatusConfirmed
}

func (t *BridgeTxn) MessageState() OutgoingMessageState {
	if t.Withdrawal == nil {
		return OutgoingMessageStateUnknown
	}
	return t.Withdrawal.OutgoingMessageState
}

func (t *BridgeTxn) SeqNum() *big.Int {
	if t.Deposit == nil {
		return nil
	}
	return t.Deposit.SeqNum
}

func (t *BridgeTxn) Clone() *BridgeTxn {
	c := *t
	if t.AssetAddressL1 != nil {
		addr := *t.AssetAddressL1
		c.AssetAddressL1 = &addr
	}
	if t.AssetAddressL2 != nil {
		addr := *t.AssetAddressL2
		c.AssetAddressL2 = &addr
	}
	if t.PartnerTxHash != nil {
		hash := *t.PartnerTxHash
		c.PartnerTxHash = &hash
	}
	if t.Deposit != nil {
		c.Deposit = &DepositInfo{SeqNum: cloneBig(t.Deposit.SeqNum)}
	}
	if t.Withdrawal != nil {
		c.Withdrawal = &WithdrawalInfo{
			BatchNumber:          cloneBig(t.Withdrawal.BatchNumber),
			BatchIndex:           cloneBig(t.Withdrawal.BatchIndex),
			OutgoingMessageState: t.Withdrawal.OutgoingMessageState,
		}
	}
	if t.Receipt != nil {
		c.Receipt = CloneReceipt(t.Receipt)
	}
	return &c
}

// CloneReceipt copies the receipt together with its logs.
func CloneReceipt(r *types.Receipt) *types.Receipt {
	receipt := *r
	receipt.PostState = common.CopyBytes(r.PostState)
	receipt.EffectiveGasPrice = cloneBig(r.EffectiveGasPrice)
	receipt.BlobGasPrice = cloneBig(r.BlobGasPrice)
	receipt.BlockNumber = cloneBig(r.BlockNumber)
	if r.Logs != nil {
		receipt.Logs = make([]*types.Log, len(r.Logs))
		for i, l := range r.Logs {
			if l == nil {
				continue
			}
			log := *l
			log.Topics = append([]common.Hash(nil), l.Topics...)
			log.Data = common.CopyBytes(l.Data)
			receipt.Logs[i] = &log
		}
	}
	return &receipt
}

func cloneBig(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set(v)
}

type BridgeTxnsRepo interface {
	Ensure(ctx context.Context, txns ...*BridgeTxn) error
	GetByHash(ctx context.Context, chainID network.ChainID, txHash common.Hash) (*BridgeTxn, error)
	FindAll(ctx context.Context) ([]*BridgeTxn, error)
	FindBySender(ctx context.Context, sender common.Address) ([]*BridgeTxn, error)
}
