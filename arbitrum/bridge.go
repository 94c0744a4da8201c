package arbitrum

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/swapr/bridge-tracker/entity"
	"github.com/swapr/bridge-tracker/network"
)

var (
	ErrNoProof  = errors.New("outgoing message proof is not available yet")
	ErrReadOnly = errors.New("bridge has no signer configured")
)

// Provider is a chain RPC provider. TransactionReceipt returns a nil receipt
// without an error when the transaction is not mined yet.
type Provider interface {
	ChainID() network.ChainID
	TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

// Transaction is a submitted transaction.
type Transaction interface {
	Hash() common.Hash
	Wait(ctx context.Context) (*types.Receipt, error)
}

type TokenData struct {
	Address  common.Address `json:"address"`
	Name     string         `json:"name"`
	Symbol   string         `json:"symbol"`
	Decimals uint8          `json:"decimals"`
}

// L2ToL1Event is an outgoing message emitted by ArbSys.
type L2ToL1Event struct {
	Caller       common.Address
	Destination  common.Address
	UniqueID     *big.Int
	BatchNumber  *big.Int
	IndexInBatch *big.Int
	ArbBlockNum  *big.Int
	EthBlockNum  *big.Int
	Timestamp    *big.Int
	CallValue    *big.Int
	Data         []byte
}

type Bridge interface {
	L1Provider() Provider
	L2Provider() Provider

	DepositETH(ctx context.Context, amount *big.Int) (Transaction, error)
	DepositERC20(ctx context.Context, l1Token common.Address, amount *big.Int) (Transaction, error)
	WithdrawETH(ctx context.Context, amount *big.Int) (Transaction, error)
	WithdrawERC20(ctx context.Context, l1Token common.Address, amount *big.Int) (Transaction, error)

	InboxSeqNums(receipt *types.Receipt) []*big.Int
	CalculateL2TransactionHash(seqNum *big.Int) common.Hash
	WithdrawalsInL2Transaction(receipt *types.Receipt) []*L2ToL1Event
	OutgoingMessageState(ctx context.Context, batchNumber, batchIndex *big.Int) (entity.OutgoingMessageState, error)
	TriggerL2ToL1Transaction(ctx context.Context, batchNumber, batchIndex *big.Int) (Transaction, error)

	ApproveToken(ctx context.Context, l1Token common.Address) (Transaction, error)
	L1TokenData(ctx context.Context, l1Token common.Address) (*TokenData, error)
	GatewayAddress(ctx context.Context, l1Token common.Address) (common.Address, error)
	L2TokenAddress(ctx context.Context, l1Token common.Address) (common.Address, error)
	ERC20L1Address(ctx context.Context, l2Token common.Address) (common.Address, error)
}
