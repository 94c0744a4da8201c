package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"

	"github.com/swapr/bridge-tracker/bridge"
	"github.com/swapr/bridge-tracker/db"
	"github.com/swapr/bridge-tracker/entity"
	"github.com/swapr/bridge-tracker/network"
	"github.com/swapr/bridge-tracker/presenter"
)

var (
	errOperationFailed = errors.New("bridge operation failed")
	errInvalidAddress  = errors.New("invalid address")
	errInvalidTxHash   = errors.New("invalid transaction hash")
	errTxnNotFound     = errors.New("bridge transaction not found")
)

var (
	valueFlag = &cli.StringFlag{
		Name:     "value",
		Usage:    "amount in token units, e.g. 0.5",
		Required: true,
	}
	tokenFlag = &cli.StringFlag{
		Name:  "token",
		Usage: "token address, ETH is used when omitted",
	}
	metricsFlag = &cli.StringFlag{
		Name:  "metrics",
		Usage: "listen address of the prometheus metrics endpoint",
		Value: ":2112",
	}
)

var runCommand = &cli.Command{
	Name:   "run",
	Usage:  "track bridge transactions and serve the http api",
	Flags:  []cli.Flag{metricsFlag},
	Action: run,
}

var depositCommand = &cli.Command{
	Name:  "deposit",
	Usage: "deposit ETH or an ERC20 token from L1 to L2",
	Flags: []cli.Flag{valueFlag, tokenFlag},
	Action: func(c *cli.Context) error {
		return transfer(c, (*bridge.Service).Deposit)
	},
}

var withdrawCommand = &cli.Command{
	Name:  "withdraw",
	Usage: "withdraw ETH or an L2 ERC20 token from L2 to L1",
	Flags: []cli.Flag{valueFlag, tokenFlag},
	Action: func(c *cli.Context) error {
		return transfer(c, (*bridge.Service).Withdraw)
	},
}

var collectCommand = &cli.Command{
	Name:  "collect",
	Usage: "execute a confirmed withdrawal on L1",
	Flags: []cli.Flag{
		&cli.Uint64Flag{Name: "chain-id", Usage: "chain of the withdrawal transaction", Required: true},
		&cli.StringFlag{Name: "tx-hash", Usage: "hash of the withdrawal transaction", Required: true},
	},
	Action: collect,
}

var approveCommand = &cli.Command{
	Name:  "approve",
	Usage: "approve the L1 gateway to spend an ERC20 token",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "token", Usage: "L1 token address", Required: true},
		&cli.StringFlag{Name: "gateway", Usage: "gateway address, resolved through the router when omitted"},
		&cli.StringFlag{Name: "symbol", Usage: "token symbol, read from the token when omitted"},
	},
	Action: approve,
}

var migrateCommand = &cli.Command{
	Name:  "migrate",
	Usage: "apply database migrations",
	Action: func(c *cli.Context) error {
		cfg, logger, err := loadConfig(c)
		if err != nil {
			return err
		}
		dbConn, err := db.ConnectToDBAndMigrate(cfg.DBConfig)
		if err != nil {
			return fmt.Errorf("can't connect to database and apply migrations: %w", err)
		}
		logger.Info("database migrations applied")
		return dbConn.Close()
	},
}

func run(c *cli.Context) error {
	ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app, err := newApplication(ctx, c)
	if err != nil {
		return err
	}
	defer app.Close()

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err2 := http.ListenAndServe(c.String(metricsFlag.Name), mux); err2 != nil {
			app.logger.WithError(err2).Fatal("can't start listener for prometheus metrics")
		}
	}()

	poller := bridge.NewPoller(app.logger.WithField("service", "poller"), app.service, app.store, app.cfg.Bridge.Polling)
	poller.Start(ctx)

	var pr *presenter.Presenter
	if app.cfg.Presenter != nil {
		pr = presenter.NewPresenter(ctx, app.logger.WithField("service", "presenter"), app.store, app.service, poller, app.resolver)
		go func() {
			if err2 := pr.Serve(app.cfg.Presenter.Host); err2 != nil {
				app.logger.WithError(err2).Fatal("can't serve presenter")
			}
		}()
	}

	<-ctx.Done()
	app.logger.Warn("caught termination signal, gracefully terminating")
	if pr != nil {
		pr.Wait()
	}
	return nil
}

func transfer(c *cli.Context, op func(s *bridge.Service, ctx context.Context, value string, token *common.Address)) error {
	token, err := parseOptionalAddress(c.String(tokenFlag.Name))
	if err != nil {
		return err
	}
	return oneShot(c, func(ctx context.Context, app *application) error {
		op(app.service, ctx, c.String(valueFlag.Name), token)
		return nil
	})
}

func collect(c *cli.Context) error {
	txHash := c.String("tx-hash")
	if !isHexHash(txHash) {
		return fmt.Errorf("%w: %q", errInvalidTxHash, txHash)
	}
	chainID := network.ChainID(c.Uint64("chain-id"))
	return oneShot(c, func(ctx context.Context, app *application) error {
		txn, ok := app.store.Snapshot().BridgeTxn(chainID, common.HexToHash(txHash))
		if !ok || txn.Type != entity.TxnTypeWithdraw {
			return fmt.Errorf("%w: %s on chain %s", errTxnNotFound, txHash, chainID)
		}
		// batch coordinates are discovered by the withdrawals check
		app.service.UpdatePendingWithdrawals(ctx, bridge.NewWithdrawalsSession())
		txn, _ = app.store.Snapshot().BridgeTxn(chainID, common.HexToHash(txHash))
		app.service.Collect(ctx, bridge.Summarize(txn))
		return nil
	})
}

func approve(c *cli.Context) error {
	token, err := parseOptionalAddress(c.String("token"))
	if err != nil {
		return err
	}
	gateway, err := parseOptionalAddress(c.String("gateway"))
	if err != nil {
		return err
	}
	return oneShot(c, func(ctx context.Context, app *application) error {
		app.service.ApproveERC20(ctx, *token, gateway, c.String("symbol"))
		return nil
	})
}

func oneShot(c *cli.Context, fn func(ctx context.Context, app *application) error) error {
	ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app, err := newApplication(ctx, c)
	if err != nil {
		return err
	}
	defer app.Close()

	if err = fn(ctx, app); err != nil {
		return err
	}
	return app.result()
}

func parseOptionalAddress(s string) (*common.Address, error) {
	if s == "" {
		return nil, nil
	}
	if !common.IsHexAddress(s) {
		return nil, fmt.Errorf("%w: %q", errInvalidAddress, s)
	}
	addr := common.HexToAddress(s)
	return &addr, nil
}

func isHexHash(s string) bool {
	b, err := hexutil.Decode(s)
	return err == nil && len(b) == common.HashLength
}
