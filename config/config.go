package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/swapr/bridge-tracker/network"
)

var (
	ErrUnknownChain     = errors.New("unknown chain")
	ErrUnpairedBridge   = errors.New("bridge chains are not an L1/L2 pair")
	ErrMissingAddress   = errors.New("missing contract address")
	ErrMissingBridgeCfg = errors.New("missing bridge config")
	ErrMissingRPC       = errors.New("missing rpc config")
)

type RPCConfig struct {
	Host    string        `yaml:"host"`
	Timeout time.Duration `yaml:"timeout"`
}

type ChainConfig struct {
	RPC            *RPCConfig      `yaml:"rpc"`
	ChainID        network.ChainID `yaml:"chain_id"`
	IsArbitrum     bool            `yaml:"is_arbitrum"`
	PartnerChainID network.ChainID `yaml:"partner_chain_id"`
}

type DepositConfig struct {
	MaxGas      uint64 `yaml:"max_gas"`
	GasPriceBid uint64 `yaml:"gas_price_bid"`
}

type PollingConfig struct {
	PendingTxs  time.Duration `yaml:"pending_txs"`
	L2Deposits  time.Duration `yaml:"l2_deposits"`
	Withdrawals time.Duration `yaml:"withdrawals"`
}

type BridgeConfig struct {
	L1ChainName     string         `yaml:"l1_chain"`
	L1Chain         *ChainConfig   `yaml:"-"`
	L2ChainName     string         `yaml:"l2_chain"`
	L2Chain         *ChainConfig   `yaml:"-"`
	Inbox           common.Address `yaml:"inbox"`
	Outbox          common.Address `yaml:"outbox"`
	L1GatewayRouter common.Address `yaml:"l1_gateway_router"`
	L2GatewayRouter common.Address `yaml:"l2_gateway_router"`
	Deposit         DepositConfig  `yaml:"deposit"`
	Polling         PollingConfig  `yaml:"polling"`
}

type DBConfig struct {
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	DB       string `yaml:"database"`
}

type PresenterConfig struct {
	Host string `yaml:"host"`
}

type Config struct {
	Chains     map[string]*ChainConfig `yaml:"chains"`
	Bridge     *BridgeConfig           `yaml:"bridge"`
	Account    common.Address          `yaml:"account"`
	PrivateKey string                  `yaml:"private_key"`
	DBConfig   *DBConfig               `yaml:"postgres"`
	LogLevel   logrus.Level            `yaml:"log_level"`
	Presenter  *PresenterConfig        `yaml:"presenter"`
}

// Networks returns the network metadata declared in the chains section.
func (cfg *Config) Networks() []network.Info {
	res := make([]network.Info, 0, len(cfg.Chains))
	for name, chain := range cfg.Chains {
		if chain.PartnerChainID == 0 {
			continue
		}
		res = append(res, network.Info{
			ChainID:        chain.ChainID,
			Name:           name,
			IsArbitrum:     chain.IsArbitrum,
			PartnerChainID: chain.PartnerChainID,
		})
	}
	return res
}

func (cfg *Config) init() error {
	if cfg.Bridge == nil {
		return ErrMissingBridgeCfg
	}
	var ok bool
	if cfg.Bridge.L1Chain, ok = cfg.Chains[cfg.Bridge.L1ChainName]; !ok {
		return fmt.Errorf("l1_chain %q: %w", cfg.Bridge.L1ChainName, ErrUnknownChain)
	}
	if cfg.Bridge.L2Chain, ok = cfg.Chains[cfg.Bridge.L2ChainName]; !ok {
		return fmt.Errorf("l2_chain %q: %w", cfg.Bridge.L2ChainName, ErrUnknownChain)
	}

	pair := network.NewResolver(cfg.Networks()...).Resolve(cfg.Bridge.L2Chain.ChainID)
	if !pair.Paired() || pair.L1ChainID != cfg.Bridge.L1Chain.ChainID || pair.L2ChainID != cfg.Bridge.L2Chain.ChainID {
		return fmt.Errorf("%s and %s: %w", cfg.Bridge.L1ChainName, cfg.Bridge.L2ChainName, ErrUnpairedBridge)
	}

	for name, addr := range map[string]common.Address{
		"inbox":             cfg.Bridge.Inbox,
		"outbox":            cfg.Bridge.Outbox,
		"l1_gateway_router": cfg.Bridge.L1GatewayRouter,
		"l2_gateway_router": cfg.Bridge.L2GatewayRouter,
	} {
		if addr == (common.Address{}) {
			return fmt.Errorf("bridge.%s: %w", name, ErrMissingAddress)
		}
	}

	if cfg.Bridge.Polling.PendingTxs == 0 {
		cfg.Bridge.Polling.PendingTxs = 5 * time.Second
	}
	if cfg.Bridge.Polling.L2Deposits == 0 {
		cfg.Bridge.Polling.L2Deposits = 15 * time.Second
	}
	if cfg.Bridge.Polling.Withdrawals == 0 {
		cfg.Bridge.Polling.Withdrawals = time.Minute
	}
	for _, chain := range cfg.Chains {
		if chain.RPC != nil && chain.RPC.Timeout == 0 {
			chain.RPC.Timeout = 30 * time.Second
		}
	}
	return nil
}

func ReadConfig(blob []byte) (*Config, error) {
	cfg := new(Config)
	if err := parseYaml(cfg, blob); err != nil {
		return nil, err
	}
	if err := cfg.init(); err != nil {
		return nil, fmt.Errorf("can't init config: %w", err)
	}
	return cfg, nil
}

func ReadConfigWithEnv(blob []byte) (*Config, error) {
	return ReadConfig([]byte(os.ExpandEnv(string(blob))))
}

func ReadConfigFromFile(path string) (*Config, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("can't read config file: %w", err)
	}
	return ReadConfigWithEnv(blob)
}
