package contract

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/swapr/bridge-tracker/contract/arbabi"
	"github.com/swapr/bridge-tracker/ethclient"
)

const executionRevertedCode = 3

// IsReverted reports whether the call failed because the contract reverted.
func IsReverted(err error) bool {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return rpcErr.ErrorCode() == executionRevertedCode || strings.Contains(rpcErr.Error(), "revert")
	}
	return false
}

type InboxContract struct {
	*Contract
}

func NewInboxContract(client ethclient.Client, addr common.Address) *InboxContract {
	return &InboxContract{NewContract(client, addr, arbabi.InboxABI)}
}

func (c *InboxContract) DepositEth(opts *bind.TransactOpts, maxSubmissionCost *big.Int) (*types.Transaction, error) {
	return c.Transact(opts, "depositEth", maxSubmissionCost)
}

type ArbSysContract struct {
	*Contract
}

func NewArbSysContract(client ethclient.Client) *ArbSysContract {
	return &ArbSysContract{NewContract(client, arbabi.ArbSysAddress, arbabi.ArbSysABI)}
}

func (c *ArbSysContract) WithdrawEth(opts *bind.TransactOpts, destination common.Address) (*types.Transaction, error) {
	return c.Transact(opts, "withdrawEth", destination)
}

type ArbRetryableTxContract struct {
	*Contract
}

func NewArbRetryableTxContract(client ethclient.Client) *ArbRetryableTxContract {
	return &ArbRetryableTxContract{NewContract(client, arbabi.ArbRetryableTxAddress, arbabi.ArbRetryableTxABI)}
}

// SubmissionPrice returns the cost of submitting a retryable ticket with the given calldata size.
func (c *ArbRetryableTxContract) SubmissionPrice(ctx context.Context, calldataSize int) (*big.Int, error) {
	res, err := c.Call(ctx, "getSubmissionPrice", big.NewInt(int64(calldataSize)))
	if err != nil {
		return nil, fmt.Errorf("can't obtain submission price: %w", err)
	}
	price, ok := res[0].(*big.Int)
	if !ok {
		return nil, ErrUnexpectedOutput
	}
	return price, nil
}

type BatchProof struct {
	Proof         [][32]byte
	Path          *big.Int
	L2Sender      common.Address
	L1Dest        common.Address
	L2Block       *big.Int
	L1Block       *big.Int
	Timestamp     *big.Int
	Amount        *big.Int
	CalldataForL1 []byte
}

type NodeInterfaceContract struct {
	*Contract
}

func NewNodeInterfaceContract(client ethclient.Client) *NodeInterfaceContract {
	return &NodeInterfaceContract{NewContract(client, arbabi.NodeInterfaceAddress, arbabi.NodeInterfaceABI)}
}

func (c *NodeInterfaceContract) LookupMessageBatchProof(ctx context.Context, batchNumber *big.Int, index uint64) (*BatchProof, error) {
	res, err := c.Call(ctx, "lookupMessageBatchProof", batchNumber, index)
	if err != nil {
		return nil, fmt.Errorf("can't lookup message batch proof: %w", err)
	}
	proof := new(BatchProof)
	if err = c.abi.Methods["lookupMessageBatchProof"].Outputs.Copy(proof, res); err != nil {
		return nil, fmt.Errorf("can't decode message batch proof: %w", err)
	}
	return proof, nil
}

type OutboxContract struct {
	*Contract
}

func NewOutboxContract(client ethclient.Client, addr common.Address) *OutboxContract {
	return &OutboxContract{NewContract(client, addr, arbabi.OutboxABI)}
}

func (c *OutboxContract) OutboxEntryExists(ctx context.Context, batchNumber *big.Int) (bool, error) {
	res, err := c.Call(ctx, "outboxEntryExists", batchNumber)
	if err != nil {
		return false, fmt.Errorf("can't check outbox entry: %w", err)
	}
	exists, ok := res[0].(bool)
	if !ok {
		return false, ErrUnexpectedOutput
	}
	return exists, nil
}

func (c *OutboxContract) OutboxEntry(ctx context.Context, batchNumber *big.Int) (common.Address, error) {
	res, err := c.Call(ctx, "outboxEntries", batchNumber)
	if err != nil {
		return common.Address{}, fmt.Errorf("can't obtain outbox entry: %w", err)
	}
	addr, ok := res[0].(common.Address)
	if !ok {
		return common.Address{}, ErrUnexpectedOutput
	}
	return addr, nil
}

func (c *OutboxContract) ExecuteTransaction(opts *bind.TransactOpts, batchNumber, index *big.Int, proof *BatchProof) (*types.Transaction, error) {
	return c.Transact(opts, "executeTransaction",
		batchNumber,
		proof.Proof,
		index,
		proof.L2Sender,
		proof.L1Dest,
		proof.L2Block,
		proof.L1Block,
		proof.Timestamp,
		proof.Amount,
		proof.CalldataForL1,
	)
}

type OutboxEntryContract struct {
	*Contract
}

func NewOutboxEntryContract(client ethclient.Client, addr common.Address) *OutboxEntryContract {
	return &OutboxEntryContract{NewContract(client, addr, arbabi.OutboxEntryABI)}
}

func (c *OutboxEntryContract) SpentOutput(ctx context.Context, path *big.Int) (bool, error) {
	res, err := c.Call(ctx, "spentOutput", common.BigToHash(path))
	if err != nil {
		return false, fmt.Errorf("can't check spent output: %w", err)
	}
	spent, ok := res[0].(bool)
	if !ok {
		return false, ErrUnexpectedOutput
	}
	return spent, nil
}

type L1GatewayRouterContract struct {
	*Contract
}

func NewL1GatewayRouterContract(client ethclient.Client, addr common.Address) *L1GatewayRouterContract {
	return &L1GatewayRouterContract{NewContract(client, addr, arbabi.L1GatewayRouterABI)}
}

func (c *L1GatewayRouterContract) GetGateway(ctx context.Context, token common.Address) (common.Address, error) {
	return callAddress(ctx, c.Contract, "getGateway", token)
}

func (c *L1GatewayRouterContract) CalculateL2TokenAddress(ctx context.Context, token common.Address) (common.Address, error) {
	return callAddress(ctx, c.Contract, "calculateL2TokenAddress", token)
}

func (c *L1GatewayRouterContract) OutboundTransfer(opts *bind.TransactOpts, token, to common.Address, amount, maxGas, gasPriceBid *big.Int, data []byte) (*types.Transaction, error) {
	return c.Transact(opts, "outboundTransfer", token, to, amount, maxGas, gasPriceBid, data)
}

type L2GatewayRouterContract struct {
	*Contract
}

func NewL2GatewayRouterContract(client ethclient.Client, addr common.Address) *L2GatewayRouterContract {
	return &L2GatewayRouterContract{NewContract(client, addr, arbabi.L2GatewayRouterABI)}
}

func (c *L2GatewayRouterContract) CalculateL2TokenAddress(ctx context.Context, token common.Address) (common.Address, error) {
	return callAddress(ctx, c.Contract, "calculateL2TokenAddress", token)
}

func (c *L2GatewayRouterContract) OutboundTransfer(opts *bind.TransactOpts, l1Token, to common.Address, amount *big.Int, data []byte) (*types.Transaction, error) {
	return c.Transact(opts, "outboundTransfer", l1Token, to, amount, data)
}

func callAddress(ctx context.Context, c *Contract, method string, args ...interface{}) (common.Address, error) {
	res, err := c.Call(ctx, method, args...)
	if err != nil {
		return common.Address{}, err
	}
	addr, ok := res[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("%s(...): %w", method, ErrUnexpectedOutput)
	}
	return addr, nil
}
