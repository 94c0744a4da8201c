package entity

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/swapr/bridge-tracker/network"
)

type Approval struct {
	Spender      common.Address `json:"spender"`
	TokenAddress common.Address `json:"tokenAddress"`
}

// Transaction is a regular (non-bridge) wallet transaction such as a token approval.
type Transaction struct {
	ChainID   network.ChainID `json:"chainId"`
	Hash      common.Hash     `json:"hash"`
	From      common.Address  `json:"from"`
	Summary   string          `json:"summary"`
	Approval  *Approval       `json:"approval,omitempty"`
	CreatedAt *time.Time      `json:"createdAt,omitempty"`
	UpdatedAt *time.Time      `json:"updatedAt,omitempty"`
}

func (t *Transaction) Clone() *Transaction {
	c := *t
	if t.Approval != nil {
		approval := *t.Approval
		c.Approval = &approval
	}
	return &c
}

type TransactionsRepo interface {
	Ensure(ctx context.Context, tx *Transaction) error
	FindAll(ctx context.Context) ([]*Transaction, error)
}
