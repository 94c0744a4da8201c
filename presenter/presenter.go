package presenter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/swapr/bridge-tracker/bridge"
	"github.com/swapr/bridge-tracker/logging"
	"github.com/swapr/bridge-tracker/network"
	mw "github.com/swapr/bridge-tracker/presenter/http/middleware"
	"github.com/swapr/bridge-tracker/presenter/http/render"
	"github.com/swapr/bridge-tracker/store"
)

var (
	ErrMissingValue  = errors.New("value is required")
	ErrTxnNotFound   = errors.New("bridge transaction not found")
	ErrInvalidBody   = errors.New("invalid request body")
	ErrNotWithdrawal = errors.New("bridge transaction is not a withdrawal")
)

type StateReader interface {
	Snapshot() *store.State
}

type BridgeService interface {
	Deposit(ctx context.Context, value string, token *common.Address)
	Withdraw(ctx context.Context, value string, token *common.Address)
	Collect(ctx context.Context, summary bridge.TransactionSummary)
	ApproveERC20(ctx context.Context, l1Token common.Address, gateway *common.Address, symbol string)
}

type Rechecker interface {
	Recheck()
}

type Presenter struct {
	logger   logging.Logger
	state    StateReader
	service  BridgeService
	poller   Rechecker
	resolver *network.Resolver
	root     chi.Router

	// user operations outlive the request that started them
	opsCtx context.Context
	ops    sync.WaitGroup
}

func NewPresenter(ctx context.Context, logger logging.Logger, state StateReader, service BridgeService, poller Rechecker, resolver *network.Resolver) *Presenter {
	p := &Presenter{
		logger:   logger,
		state:    state,
		service:  service,
		poller:   poller,
		resolver: resolver,
		root:     chi.NewMux(),
		opsCtx:   ctx,
	}
	p.routes()
	return p
}

func (p *Presenter) routes() {
	p.root.Use(middleware.Throttle(5))
	p.root.Use(middleware.RequestID)
	p.root.Use(mw.NewLoggerMiddleware(p.logger))
	p.root.Use(mw.Recoverer)

	p.root.Route("/bridge", func(r chi.Router) {
		r.With(mw.GetAccountMiddleware).Get("/txs", p.GetBridgeTxns)
		r.With(mw.GetChainIDMiddleware, mw.GetTxHashMiddleware).
			Get("/txs/{chainID:[0-9]+}/{txHash:0x[0-9a-fA-F]{64}}", p.GetBridgeTxn)
		r.Get("/state", p.GetState)

		r.Post("/deposit", p.PostDeposit)
		r.Post("/withdraw", p.PostWithdraw)
		r.Post("/collect", p.PostCollect)
		r.Post("/approve", p.PostApprove)
		r.Post("/withdrawals/recheck", p.PostRecheck)
	})
	p.root.With(mw.GetChainIDMiddleware).Get("/chains/{chainID:[0-9]+}/pair", p.GetChainPair)
	p.root.Get("/transactions", p.GetTransactions)
}

func (p *Presenter) Serve(addr string) error {
	p.logger.WithField("addr", addr).Info("starting presenter service")
	return http.ListenAndServe(addr, p.root)
}

func (p *Presenter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.root.ServeHTTP(w, r)
}

// Wait blocks until all user operations started by the presenter are finished.
func (p *Presenter) Wait() {
	p.ops.Wait()
}

func (p *Presenter) GetBridgeTxns(w http.ResponseWriter, r *http.Request) {
	state := p.state.Snapshot()
	if account, ok := mw.Account(r.Context()); ok {
		render.JSON(w, r, http.StatusOK, bridgeTxnsToResults(state.OwnedTxs(account)))
		return
	}
	render.JSON(w, r, http.StatusOK, bridgeTxnsToResults(state.AllTxs()))
}

func (p *Presenter) GetBridgeTxn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	txn, ok := p.state.Snapshot().BridgeTxn(mw.ChainID(ctx), mw.TxHash(ctx))
	if !ok {
		render.Fail(w, r, http.StatusNotFound, ErrTxnNotFound)
		return
	}
	render.JSON(w, r, http.StatusOK, bridgeTxnToResult(txn))
}

func (p *Presenter) GetState(w http.ResponseWriter, r *http.Request) {
	state := p.state.Snapshot()
	render.JSON(w, r, http.StatusOK, &StateResult{
		Modal:                 state.Modal,
		IsCheckingWithdrawals: state.IsCheckingWithdrawals,
		PendingTxs:            len(state.PendingTxs()),
		PendingWithdrawals:    bridgeTxnsToResults(state.PendingWithdrawals()),
	})
}

func (p *Presenter) GetChainPair(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, http.StatusOK, p.resolver.Resolve(mw.ChainID(r.Context())))
}

func (p *Presenter) GetTransactions(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, http.StatusOK, p.state.Snapshot().TransactionList())
}

func (p *Presenter) PostDeposit(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Value == "" {
		render.Fail(w, r, http.StatusBadRequest, ErrMissingValue)
		return
	}
	p.start(w, r, "deposit", func(ctx context.Context) {
		p.service.Deposit(ctx, req.Value, req.Token)
	})
}

func (p *Presenter) PostWithdraw(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Value == "" {
		render.Fail(w, r, http.StatusBadRequest, ErrMissingValue)
		return
	}
	p.start(w, r, "withdraw", func(ctx context.Context) {
		p.service.Withdraw(ctx, req.Value, req.Token)
	})
}

func (p *Presenter) PostCollect(w http.ResponseWriter, r *http.Request) {
	var req CollectRequest
	if !decode(w, r, &req) {
		return
	}
	txn, ok := p.state.Snapshot().BridgeTxn(req.ChainID, req.TxHash)
	if !ok {
		render.Fail(w, r, http.StatusNotFound, ErrTxnNotFound)
		return
	}
	if txn.Withdrawal == nil {
		render.Fail(w, r, http.StatusBadRequest, ErrNotWithdrawal)
		return
	}
	summary := bridge.Summarize(txn)
	p.start(w, r, "collect", func(ctx context.Context) {
		p.service.Collect(ctx, summary)
	})
}

func (p *Presenter) PostApprove(w http.ResponseWriter, r *http.Request) {
	var req ApproveRequest
	if !decode(w, r, &req) {
		return
	}
	p.start(w, r, "approve", func(ctx context.Context) {
		p.service.ApproveERC20(ctx, req.Token, req.Gateway, req.Symbol)
	})
}

func (p *Presenter) PostRecheck(w http.ResponseWriter, r *http.Request) {
	p.poller.Recheck()
	render.JSON(w, r, http.StatusAccepted, &AcceptedResult{Status: "accepted"})
}

func (p *Presenter) start(w http.ResponseWriter, r *http.Request, op string, fn func(ctx context.Context)) {
	logger := logging.LoggerFromContext(r.Context()).WithField("operation", op)
	ctx := logging.WithLogger(p.opsCtx, logger)

	p.ops.Add(1)
	go func() {
		defer p.ops.Done()
		fn(ctx)
		logger.Info("bridge operation finished")
	}()
	render.JSON(w, r, http.StatusAccepted, &AcceptedResult{Status: "accepted"})
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		render.Fail(w, r, http.StatusBadRequest, fmt.Errorf("%w: %s", ErrInvalidBody, err))
		return false
	}
	return true
}
