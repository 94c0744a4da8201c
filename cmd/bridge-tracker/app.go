package main

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/swapr/bridge-tracker/arbitrum"
	"github.com/swapr/bridge-tracker/bridge"
	"github.com/swapr/bridge-tracker/config"
	"github.com/swapr/bridge-tracker/db"
	"github.com/swapr/bridge-tracker/ethclient"
	"github.com/swapr/bridge-tracker/logging"
	"github.com/swapr/bridge-tracker/network"
	"github.com/swapr/bridge-tracker/repository"
	"github.com/swapr/bridge-tracker/store"
	"github.com/swapr/bridge-tracker/utils"
)

type application struct {
	cfg      *config.Config
	logger   logging.Logger
	dbConn   *db.DB
	store    *store.Store
	resolver *network.Resolver
	service  *bridge.Service
}

func loadConfig(c *cli.Context) (*config.Config, logging.Logger, error) {
	logger := logging.New()
	cfg, err := config.ReadConfigFromFile(c.String(configFlag.Name))
	if err != nil {
		return nil, nil, fmt.Errorf("can't read config: %w", err)
	}
	logger.SetLevel(cfg.LogLevel)
	return cfg, logger, nil
}

func newApplication(ctx context.Context, c *cli.Context) (*application, error) {
	cfg, logger, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	dbConn, err := db.ConnectToDBAndMigrate(cfg.DBConfig)
	if err != nil {
		return nil, fmt.Errorf("can't connect to database and apply migrations: %w", err)
	}

	repo := repository.NewRepo(dbConn)
	st := store.NewStore(logger.WithField("service", "store"), repo.BridgeTxns, repo.Transactions)
	if err = st.Load(ctx); err != nil {
		dbConn.Close()
		return nil, fmt.Errorf("can't load stored transactions: %w", err)
	}

	b, err := newBridge(cfg)
	if err != nil {
		dbConn.Close()
		return nil, err
	}

	account := cfg.Account
	if account == (common.Address{}) {
		account = b.Account()
	}
	resolver := network.NewResolver(cfg.Networks()...)
	pair := resolver.Resolve(cfg.Bridge.L2Chain.ChainID)
	logger = logger.WithFields(logrus.Fields{
		"l1_chain_id": pair.L1ChainID,
		"l2_chain_id": pair.L2ChainID,
		"account":     account,
	})

	return &application{
		cfg:      cfg,
		logger:   logger,
		dbConn:   dbConn,
		store:    st,
		resolver: resolver,
		service:  bridge.NewService(logger.WithField("service", "bridge"), b, st, pair, bridge.StaticAccount(account)),
	}, nil
}

func newBridge(cfg *config.Config) (*arbitrum.Client, error) {
	l1Cfg, l2Cfg := cfg.Bridge.L1Chain, cfg.Bridge.L2Chain
	if l1Cfg.RPC == nil || l2Cfg.RPC == nil {
		return nil, fmt.Errorf("can't dial bridge chains: %w", config.ErrMissingRPC)
	}
	l1, err := ethclient.NewClient(l1Cfg.RPC.Host, l1Cfg.RPC.Timeout, l1Cfg.ChainID)
	if err != nil {
		return nil, fmt.Errorf("can't dial l1 rpc client: %w", err)
	}
	l2, err := ethclient.NewClient(l2Cfg.RPC.Host, l2Cfg.RPC.Timeout, l2Cfg.ChainID)
	if err != nil {
		return nil, fmt.Errorf("can't dial l2 rpc client: %w", err)
	}

	key, err := utils.ParsePrivateKey(cfg.PrivateKey)
	if err != nil {
		return nil, err
	}

	b, err := arbitrum.NewClient(l1, l2, key, arbitrum.Config{
		Inbox:           cfg.Bridge.Inbox,
		Outbox:          cfg.Bridge.Outbox,
		L1GatewayRouter: cfg.Bridge.L1GatewayRouter,
		L2GatewayRouter: cfg.Bridge.L2GatewayRouter,
		MaxGas:          new(big.Int).SetUint64(cfg.Bridge.Deposit.MaxGas),
		GasPriceBid:     new(big.Int).SetUint64(cfg.Bridge.Deposit.GasPriceBid),
	})
	if err != nil {
		return nil, fmt.Errorf("can't create arbitrum bridge: %w", err)
	}
	return b, nil
}

func (a *application) Close() {
	if err := a.dbConn.Close(); err != nil {
		a.logger.WithError(err).Error("can't close database connection")
	}
}

// result reports the final modal state of a one-shot operation.
func (a *application) result() error {
	modal := a.store.Snapshot().Modal
	if modal.Status == store.ModalStatusError {
		return fmt.Errorf("%w: %s", errOperationFailed, modal.Error)
	}
	a.logger.WithField("status", modal.Status).Info("bridge operation finished")
	return nil
}
