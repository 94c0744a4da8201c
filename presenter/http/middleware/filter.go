package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"

	"github.com/swapr/bridge-tracker/network"
	"github.com/swapr/bridge-tracker/presenter/http/render"
)

type ctxKey int

const (
	chainIDCtxKey ctxKey = iota
	txHashCtxKey
	accountCtxKey
)

var ErrInvalidAccount = errors.New("invalid account parameter")

func GetChainIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		chainIDStr := chi.URLParam(r, "chainID")
		if chainIDStr == "" {
			next.ServeHTTP(w, r)
			return
		}

		chainID, err := network.ParseChainID(chainIDStr)
		if err != nil {
			render.Fail(w, r, http.StatusBadRequest, fmt.Errorf("failed to parse chainID: %w", err))
			return
		}

		ctx := context.WithValue(r.Context(), chainIDCtxKey, chainID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func ChainID(ctx context.Context) network.ChainID {
	chainID, _ := ctx.Value(chainIDCtxKey).(network.ChainID)
	return chainID
}

func GetTxHashMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		txHash := chi.URLParam(r, "txHash")
		if txHash == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), txHashCtxKey, common.HexToHash(txHash))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func TxHash(ctx context.Context) common.Hash {
	txHash, _ := ctx.Value(txHashCtxKey).(common.Hash)
	return txHash
}

func GetAccountMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		account := r.URL.Query().Get("account")
		if account == "" {
			next.ServeHTTP(w, r)
			return
		}
		if !common.IsHexAddress(account) {
			render.Fail(w, r, http.StatusBadRequest, ErrInvalidAccount)
			return
		}

		ctx := context.WithValue(r.Context(), accountCtxKey, common.HexToAddress(account))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Account returns the account query filter, if any.
func Account(ctx context.Context) (common.Address, bool) {
	account, ok := ctx.Value(accountCtxKey).(common.Address)
	return account, ok
}
