package presenter

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/swapr/bridge-tracker/entity"
	"github.com/swapr/bridge-tracker/network"
	"github.com/swapr/bridge-tracker/store"
)

type BridgeTxnResult struct {
	*entity.BridgeTxn
	Link        string `json:"link"`
	PartnerLink string `json:"partnerLink,omitempty"`
}

type StateResult struct {
	Modal                 store.Modal        `json:"modal"`
	IsCheckingWithdrawals bool               `json:"isCheckingWithdrawals"`
	PendingTxs            int                `json:"pendingTxs"`
	PendingWithdrawals    []*BridgeTxnResult `json:"pendingWithdrawals"`
}

type TransferRequest struct {
	Value string          `json:"value"`
	Token *common.Address `json:"token,omitempty"`
}

type CollectRequest struct {
	ChainID network.ChainID `json:"chainId"`
	TxHash  common.Hash     `json:"txHash"`
}

type ApproveRequest struct {
	Token   common.Address  `json:"token"`
	Gateway *common.Address `json:"gateway,omitempty"`
	Symbol  string          `json:"symbol,omitempty"`
}

type AcceptedResult struct {
	Status string `json:"status"`
}
