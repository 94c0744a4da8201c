package postgres

import (
	"database/sql"
	"math/big"

	"github.com/swapr/bridge-tracker/db"
)

type basePostgresRepo struct {
	table string
	db    *db.DB
}

func newBasePostgresRepo(table string, db *db.DB) *basePostgresRepo {
	return &basePostgresRepo{
		table: table,
		db:    db,
	}
}

func bigToNullString(v *big.Int) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: v.String(), Valid: true}
}

func nullStringToBig(v sql.NullString) *big.Int {
	if !v.Valid {
		return nil
	}
	res, ok := new(big.Int).SetString(v.String, 10)
	if !ok {
		return nil
	}
	return res
}
