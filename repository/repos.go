package repository

import (
	"github.com/swapr/bridge-tracker/db"
	"github.com/swapr/bridge-tracker/entity"
	"github.com/swapr/bridge-tracker/repository/postgres"
)

type Repo struct {
	BridgeTxns   entity.BridgeTxnsRepo
	Transactions entity.TransactionsRepo
}

func NewRepo(db *db.DB) *Repo {
	return &Repo{
		BridgeTxns:   postgres.NewBridgeTxnsRepo("bridge_txns", db),
		Transactions: postgres.NewTransactionsRepo("transactions", db),
	}
}
