package contract

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/swapr/bridge-tracker/contract/arbabi"
	"github.com/swapr/bridge-tracker/ethclient"
)

type ERC20Contract struct {
	*Contract
}

func NewERC20Contract(client ethclient.Client, addr common.Address) *ERC20Contract {
	return &ERC20Contract{NewContract(client, addr, arbabi.ERC20ABI)}
}

func (c *ERC20Contract) Symbol(ctx context.Context) (string, error) {
	res, err := c.Call(ctx, "symbol")
	if err != nil {
		return "", fmt.Errorf("can't obtain token symbol: %w", err)
	}
	symbol, ok := res[0].(string)
	if !ok {
		return "", ErrUnexpectedOutput
	}
	return symbol, nil
}

func (c *ERC20Contract) Name(ctx context.Context) (string, error) {
	res, err := c.Call(ctx, "name")
	if err != nil {
		return "", fmt.Errorf("can't obtain token name: %w", err)
	}
	name, ok := res[0].(string)
	if !ok {
		return "", ErrUnexpectedOutput
	}
	return name, nil
}

func (c *ERC20Contract) Decimals(ctx context.Context) (uint8, error) {
	res, err := c.Call(ctx, "decimals")
	if err != nil {
		return 0, fmt.Errorf("can't obtain token decimals: %w", err)
	}
	decimals, ok := res[0].(uint8)
	if !ok {
		return 0, ErrUnexpectedOutput
	}
	return decimals, nil
}

// L1Address is only implemented by bridged tokens on L2.
func (c *ERC20Contract) L1Address(ctx context.Context) (common.Address, error) {
	res, err := c.Call(ctx, "l1Address")
	if err != nil {
		return common.Address{}, fmt.Errorf("can't obtain l1 token address: %w", err)
	}
	addr, ok := res[0].(common.Address)
	if !ok {
		return common.Address{}, ErrUnexpectedOutput
	}
	return addr, nil
}

func (c *ERC20Contract) Approve(opts *bind.TransactOpts, spender common.Address, amount *big.Int) (*types.Transaction, error) {
	return c.Transact(opts, "approve", spender, amount)
}
