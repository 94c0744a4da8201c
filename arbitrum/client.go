package arbitrum

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"sync"

	gethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/swapr/bridge-tracker/contract"
	"github.com/swapr/bridge-tracker/entity"
	"github.com/swapr/bridge-tracker/ethclient"
)

// Calldata size of the L2 finalizeInboundTransfer call that an ERC20 deposit
// creates, used to price the retryable ticket submission.
const outboundCalldataSize = 708

var outboundTransferDataArgs = mustArguments("uint256", "bytes")

var _ Bridge = (*Client)(nil)

type Config struct {
	Inbox           common.Address
	Outbox          common.Address
	L1GatewayRouter common.Address
	L2GatewayRouter common.Address
	MaxGas          *big.Int
	GasPriceBid     *big.Int
}

type Client struct {
	l1 ethclient.Client
	l2 ethclient.Client

	from   common.Address
	l1Opts *bind.TransactOpts
	l2Opts *bind.TransactOpts
	sendMu sync.Mutex

	inbox          *contract.InboxContract
	outbox         *contract.OutboxContract
	l1Router       *contract.L1GatewayRouterContract
	l2Router       *contract.L2GatewayRouterContract
	arbSys         *contract.ArbSysContract
	arbRetryableTx *contract.ArbRetryableTxContract
	nodeInterface  *contract.NodeInterfaceContract

	maxGas      *big.Int
	gasPriceBid *big.Int
}

// NewClient creates a bridge over the given L1 and L2 clients. A nil key
// makes the bridge read-only.
func NewClient(l1, l2 ethclient.Client, key *ecdsa.PrivateKey, cfg Config) (*Client, error) {
	c := &Client{
		l1:             l1,
		l2:             l2,
		inbox:          contract.NewInboxContract(l1, cfg.Inbox),
		outbox:         contract.NewOutboxContract(l1, cfg.Outbox),
		l1Router:       contract.NewL1GatewayRouterContract(l1, cfg.L1GatewayRouter),
		l2Router:       contract.NewL2GatewayRouterContract(l2, cfg.L2GatewayRouter),
		arbSys:         contract.NewArbSysContract(l2),
		arbRetryableTx: contract.NewArbRetryableTxContract(l2),
		nodeInterface:  contract.NewNodeInterfaceContract(l2),
		maxGas:         cfg.MaxGas,
		gasPriceBid:    cfg.GasPriceBid,
	}
	if key != nil {
		var err error
		c.from = crypto.PubkeyToAddress(key.PublicKey)
		c.l1Opts, err = bind.NewKeyedTransactorWithChainID(key, new(big.Int).SetUint64(uint64(l1.ChainID())))
		if err != nil {
			return nil, fmt.Errorf("can't create l1 transactor: %w", err)
		}
		c.l2Opts, err = bind.NewKeyedTransactorWithChainID(key, new(big.Int).SetUint64(uint64(l2.ChainID())))
		if err != nil {
			return nil, fmt.Errorf("can't create l2 transactor: %w", err)
		}
	}
	return c, nil
}

// Account returns the signer address, zero for a read-only bridge.
func (c *Client) Account() common.Address {
	return c.from
}

func (c *Client) L1Provider() Provider {
	return c.l1
}

func (c *Client) L2Provider() Provider {
	return c.l2
}

func (c *Client) DepositETH(ctx context.Context, amount *big.Int) (Transaction, error) {
	submissionPrice, err := c.arbRetryableTx.SubmissionPrice(ctx, 0)
	if err != nil {
		return nil, err
	}
	return c.send(ctx, c.l1, c.l1Opts, amount, func(opts *bind.TransactOpts) (*types.Transaction, error) {
		return c.inbox.DepositEth(opts, submissionPrice)
	})
}

func (c *Client) DepositERC20(ctx context.Context, l1Token common.Address, amount *big.Int) (Transaction, error) {
	submissionPrice, err := c.arbRetryableTx.SubmissionPrice(ctx, outboundCalldataSize)
	if err != nil {
		return nil, err
	}
	data, err := outboundTransferDataArgs.Pack(submissionPrice, []byte{})
	if err != nil {
		return nil, fmt.Errorf("can't encode outbound transfer data: %w", err)
	}
	value := new(big.Int).Mul(c.maxGas, c.gasPriceBid)
	value.Add(value, submissionPrice)
	return c.send(ctx, c.l1, c.l1Opts, value, func(opts *bind.TransactOpts) (*types.Transaction, error) {
		return c.l1Router.OutboundTransfer(opts, l1Token, opts.From, amount, c.maxGas, c.gasPriceBid, data)
	})
}

func (c *Client) WithdrawETH(ctx context.Context, amount *big.Int) (Transaction, error) {
	return c.send(ctx, c.l2, c.l2Opts, amount, func(opts *bind.TransactOpts) (*types.Transaction, error) {
		return c.arbSys.WithdrawEth(opts, opts.From)
	})
}

func (c *Client) WithdrawERC20(ctx context.Context, l1Token common.Address, amount *big.Int) (Transaction, error) {
	return c.send(ctx, c.l2, c.l2Opts, nil, func(opts *bind.TransactOpts) (*types.Transaction, error) {
		return c.l2Router.OutboundTransfer(opts, l1Token, opts.From, amount, []byte{})
	})
}

func (c *Client) InboxSeqNums(receipt *types.Receipt) []*big.Int {
	return ParseInboxSeqNums(receipt, c.inbox.Address())
}

func (c *Client) CalculateL2TransactionHash(seqNum *big.Int) common.Hash {
	return CalculateL2TransactionHash(seqNum, c.l2.ChainID())
}

func (c *Client) WithdrawalsInL2Transaction(receipt *types.Receipt) []*L2ToL1Event {
	return ParseL2ToL1Events(receipt)
}

func (c *Client) OutgoingMessageState(ctx context.Context, batchNumber, batchIndex *big.Int) (entity.OutgoingMessageState, error) {
	proof, err := c.proof(ctx, batchNumber, batchIndex)
	if err != nil {
		if errors.Is(err, ErrNoProof) {
			return entity.OutgoingMessageStateUnconfirmed, nil
		}
		return entity.OutgoingMessageStateUnknown, err
	}
	exists, err := c.outbox.OutboxEntryExists(ctx, batchNumber)
	if err != nil {
		return entity.OutgoingMessageStateUnknown, err
	}
	if !exists {
		return entity.OutgoingMessageStateUnconfirmed, nil
	}
	entryAddr, err := c.outbox.OutboxEntry(ctx, batchNumber)
	if err != nil {
		return entity.OutgoingMessageStateUnknown, err
	}
	spent, err := contract.NewOutboxEntryContract(c.l1, entryAddr).SpentOutput(ctx, proof.Path)
	if err != nil {
		return entity.OutgoingMessageStateUnknown, err
	}
	if spent {
		return entity.OutgoingMessageStateExecuted, nil
	}
	return entity.OutgoingMessageStateConfirmed, nil
}

func (c *Client) TriggerL2ToL1Transaction(ctx context.Context, batchNumber, batchIndex *big.Int) (Transaction, error) {
	proof, err := c.proof(ctx, batchNumber, batchIndex)
	if err != nil {
		return nil, err
	}
	return c.send(ctx, c.l1, c.l1Opts, nil, func(opts *bind.TransactOpts) (*types.Transaction, error) {
		return c.outbox.ExecuteTransaction(opts, batchNumber, batchIndex, proof)
	})
}

func (c *Client) ApproveToken(ctx context.Context, l1Token common.Address) (Transaction, error) {
	gateway, err := c.GatewayAddress(ctx, l1Token)
	if err != nil {
		return nil, err
	}
	return c.send(ctx, c.l1, c.l1Opts, nil, func(opts *bind.TransactOpts) (*types.Transaction, error) {
		return contract.NewERC20Contract(c.l1, l1Token).Approve(opts, gateway, math.MaxBig256)
	})
}

func (c *Client) L1TokenData(ctx context.Context, l1Token common.Address) (*TokenData, error) {
	token := contract.NewERC20Contract(c.l1, l1Token)
	symbol, err := token.Symbol(ctx)
	if err != nil {
		return nil, err
	}
	name, err := token.Name(ctx)
	if err != nil {
		return nil, err
	}
	decimals, err := token.Decimals(ctx)
	if err != nil {
		return nil, err
	}
	return &TokenData{
		Address:  l1Token,
		Name:     name,
		Symbol:   symbol,
		Decimals: decimals,
	}, nil
}

func (c *Client) GatewayAddress(ctx context.Context, l1Token common.Address) (common.Address, error) {
	gateway, err := c.l1Router.GetGateway(ctx, l1Token)
	if err != nil {
		return common.Address{}, fmt.Errorf("can't get gateway of %s: %w", l1Token, err)
	}
	return gateway, nil
}

func (c *Client) L2TokenAddress(ctx context.Context, l1Token common.Address) (common.Address, error) {
	addr, err := c.l1Router.CalculateL2TokenAddress(ctx, l1Token)
	if err != nil {
		return common.Address{}, fmt.Errorf("can't get l2 address of %s: %w", l1Token, err)
	}
	return addr, nil
}

func (c *Client) ERC20L1Address(ctx context.Context, l2Token common.Address) (common.Address, error) {
	return contract.NewERC20Contract(c.l2, l2Token).L1Address(ctx)
}

func (c *Client) proof(ctx context.Context, batchNumber, batchIndex *big.Int) (*contract.BatchProof, error) {
	proof, err := c.nodeInterface.LookupMessageBatchProof(ctx, batchNumber, batchIndex.Uint64())
	if err != nil {
		if contract.IsReverted(err) {
			return nil, ErrNoProof
		}
		return nil, err
	}
	if len(proof.Proof) == 0 {
		return nil, ErrNoProof
	}
	return proof, nil
}

func (c *Client) send(ctx context.Context, client ethclient.Client, base *bind.TransactOpts, value *big.Int, fn func(opts *bind.TransactOpts) (*types.Transaction, error)) (Transaction, error) {
	if base == nil {
		return nil, ErrReadOnly
	}
	opts := *base
	opts.Context = ctx
	opts.Value = value

	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	tx, err := fn(&opts)
	if err != nil {
		return nil, err
	}
	return &sentTransaction{tx: tx, backend: client.Backend()}, nil
}

type sentTransaction struct {
	tx      *types.Transaction
	backend bind.DeployBackend
}

func (t *sentTransaction) Hash() common.Hash {
	return t.tx.Hash()
}

func (t *sentTransaction) Wait(ctx context.Context) (*types.Receipt, error) {
	receipt, err := bind.WaitMined(ctx, t.backend, t.tx)
	if err != nil {
		return nil, fmt.Errorf("can't wait for transaction %s: %w", t.tx.Hash(), err)
	}
	return receipt, nil
}

func mustArguments(typeNames ...string) gethabi.Arguments {
	args := make(gethabi.Arguments, 0, len(typeNames))
	for _, t := range typeNames {
		typ, err := gethabi.NewType(t, "", nil)
		if err != nil {
			panic(err)
		}
		args = append(args, gethabi.Argument{Type: typ})
	}
	return args
}
