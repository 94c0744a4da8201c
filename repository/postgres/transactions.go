package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/ethereum/go-ethereum/common"

	"github.com/swapr/bridge-tracker/db"
	"github.com/swapr/bridge-tracker/entity"
	"github.com/swapr/bridge-tracker/network"
)

type transactionRow struct {
	ChainID         uint64          `db:"chain_id"`
	Hash            common.Hash     `db:"hash"`
	Sender          common.Address  `db:"sender"`
	Summary         string          `db:"summary"`
	ApprovalSpender *common.Address `db:"approval_spender"`
	ApprovalToken   *common.Address `db:"approval_token"`
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"`
}

type transactionsRepo basePostgresRepo

func NewTransactionsRepo(table string, db *db.DB) entity.TransactionsRepo {
	return (*transactionsRepo)(newBasePostgresRepo(table, db))
}

func (r *transactionsRepo) Ensure(ctx context.Context, tx *entity.Transaction) error {
	var spender, token *common.Address
	if tx.Approval != nil {
		spender, token = &tx.Approval.Spender, &tx.Approval.TokenAddress
	}
	q, args, err := sq.Insert(r.table).
		Columns("chain_id", "hash", "sender", "summary", "approval_spender", "approval_token").
		Values(uint64(tx.ChainID), tx.Hash, tx.From, tx.Summary, spender, token).
		Suffix("ON CONFLICT (chain_id, hash) DO UPDATE SET updated_at = NOW(), summary = EXCLUDED.summary").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("can't build query: %w", err)
	}
	_, err = r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("can't insert transaction: %w", err)
	}
	return nil
}

func (r *transactionsRepo) FindAll(ctx context.Context) ([]*entity.Transaction, error) {
	q, args, err := sq.Select("*").
		From(r.table).
		OrderBy("chain_id", "hash").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("can't build query: %w", err)
	}
	rows := make([]*transactionRow, 0, 16)
	err = r.db.SelectContext(ctx, &rows, q, args...)
	if err != nil {
		return nil, fmt.Errorf("can't get transactions: %w", err)
	}
	res := make([]*entity.Transaction, 0, len(rows))
	for _, row := range rows {
		createdAt, updatedAt := row.CreatedAt, row.UpdatedAt
		tx := &entity.Transaction{
			ChainID:   network.ChainID(row.ChainID),
			Hash:      row.Hash,
			From:      row.Sender,
			Summary:   row.Summary,
			CreatedAt: &createdAt,
			UpdatedAt: &updatedAt,
		}
		if row.ApprovalSpender != nil && row.ApprovalToken != nil {
			tx.Approval = &entity.Approval{Spender: *row.ApprovalSpender, TokenAddress: *row.ApprovalToken}
		}
		res = append(res, tx)
	}
	return res, nil
}
