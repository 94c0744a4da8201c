package bridge_test

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/swapr/bridge-tracker/arbitrum"
	"github.com/swapr/bridge-tracker/entity"
	"github.com/swapr/bridge-tracker/logging"
	"github.com/swapr/bridge-tracker/network"
	"github.com/swapr/bridge-tracker/store"
)

var (
	alice = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	dai   = common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F")
	l2Dai = common.HexToAddress("0xDA10009cBd5D07dd0CeCc66161FC93D7c9000da1")
	gw    = common.HexToAddress("0xD3B5b60020504bc3489D6949d545893982BA3011")

	errBoom = errors.New("boom")
)

func hash(n int64) common.Hash {
	return common.BigToHash(big.NewInt(n))
}

type rpcError struct {
	code int
	msg  string
}

func (e rpcError) Error() string  { return e.msg }
func (e rpcError) ErrorCode() int { return e.code }

type fakeProvider struct {
	chainID network.ChainID

	mu       sync.Mutex
	receipts map[common.Hash]*types.Receipt
	errs     map[common.Hash]error
	calls    int
}

func newFakeProvider(chainID network.ChainID) *fakeProvider {
	return &fakeProvider{
		chainID:  chainID,
		receipts: make(map[common.Hash]*types.Receipt),
		errs:     make(map[common.Hash]error),
	}
}

func (p *fakeProvider) ChainID() network.ChainID { return p.chainID }

func (p *fakeProvider) TransactionReceipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if err := p.errs[hash]; err != nil {
		return nil, err
	}
	return p.receipts[hash], nil
}

func (p *fakeProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

type fakeTx struct {
	hash    common.Hash
	receipt *types.Receipt
	err     error
}

func (t *fakeTx) Hash() common.Hash { return t.hash }

func (t *fakeTx) Wait(context.Context) (*types.Receipt, error) {
	if t.err != nil {
		return nil, t.err
	}
	return t.receipt, nil
}

func minedTx(hash common.Hash) *fakeTx {
	return &fakeTx{hash: hash, receipt: &types.Receipt{Status: types.ReceiptStatusSuccessful, TxHash: hash}}
}

// fakeBridge is an in-memory bridge. Nil function fields fail with errBoom.
type fakeBridge struct {
	l1 *fakeProvider
	l2 *fakeProvider

	depositETH    func(amount *big.Int) (arbitrum.Transaction, error)
	depositERC20  func(token common.Address, amount *big.Int) (arbitrum.Transaction, error)
	withdrawETH   func(amount *big.Int) (arbitrum.Transaction, error)
	withdrawERC20 func(token common.Address, amount *big.Int) (arbitrum.Transaction, error)
	trigger       func(batchNumber, batchIndex *big.Int) (arbitrum.Transaction, error)
	approve       func(token common.Address) (arbitrum.Transaction, error)

	seqNums      map[common.Hash][]*big.Int
	withdrawals  map[common.Hash][]*arbitrum.L2ToL1Event
	messageState entity.OutgoingMessageState
	tokens       map[common.Address]*arbitrum.TokenData
	l1Addresses  map[common.Address]common.Address

	// onState runs on every OutgoingMessageState call when set.
	onState func()

	mu         sync.Mutex
	stateCalls int
}

func newFakeBridge() *fakeBridge {
	return &fakeBridge{
		l1:          newFakeProvider(network.Mainnet),
		l2:          newFakeProvider(network.ArbitrumOne),
		seqNums:     make(map[common.Hash][]*big.Int),
		withdrawals: make(map[common.Hash][]*arbitrum.L2ToL1Event),
		tokens: map[common.Address]*arbitrum.TokenData{
			dai: {Address: dai, Name: "Dai Stablecoin", Symbol: "DAI", Decimals: 18},
		},
		l1Addresses: map[common.Address]common.Address{l2Dai: dai},
	}
}

func (b *fakeBridge) L1Provider() arbitrum.Provider { return b.l1 }
func (b *fakeBridge) L2Provider() arbitrum.Provider { return b.l2 }

func (b *fakeBridge) DepositETH(_ context.Context, amount *big.Int) (arbitrum.Transaction, error) {
	if b.depositETH == nil {
		return nil, errBoom
	}
	return b.depositETH(amount)
}

func (b *fakeBridge) DepositERC20(_ context.Context, token common.Address, amount *big.Int) (arbitrum.Transaction, error) {
	if b.depositERC20 == nil {
		return nil, errBoom
	}
	return b.depositERC20(token, amount)
}

func (b *fakeBridge) WithdrawETH(_ context.Context, amount *big.Int) (arbitrum.Transaction, error) {
	if b.withdrawETH == nil {
		return nil, errBoom
	}
	return b.withdrawETH(amount)
}

func (b *fakeBridge) WithdrawERC20(_ context.Context, token common.Address, amount *big.Int) (arbitrum.Transaction, error) {
	if b.withdrawERC20 == nil {
		return nil, errBoom
	}
	return b.withdrawERC20(token, amount)
}

func (b *fakeBridge) InboxSeqNums(receipt *types.Receipt) []*big.Int {
	if receipt == nil {
		return nil
	}
	return b.seqNums[receipt.TxHash]
}

func (b *fakeBridge) CalculateL2TransactionHash(seqNum *big.Int) common.Hash {
	return arbitrum.CalculateL2TransactionHash(seqNum, b.l2.chainID)
}

func (b *fakeBridge) WithdrawalsInL2Transaction(receipt *types.Receipt) []*arbitrum.L2ToL1Event {
	return b.withdrawals[receipt.TxHash]
}

func (b *fakeBridge) OutgoingMessageState(context.Context, *big.Int, *big.Int) (entity.OutgoingMessageState, error) {
	if b.onState != nil {
		b.onState()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stateCalls++
	return b.messageState, nil
}

func (b *fakeBridge) StateCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stateCalls
}

func (b *fakeBridge) TriggerL2ToL1Transaction(_ context.Context, batchNumber, batchIndex *big.Int) (arbitrum.Transaction, error) {
	if b.trigger == nil {
		return nil, errBoom
	}
	return b.trigger(batchNumber, batchIndex)
}

func (b *fakeBridge) ApproveToken(_ context.Context, token common.Address) (arbitrum.Transaction, error) {
	if b.approve == nil {
		return nil, errBoom
	}
	return b.approve(token)
}

func (b *fakeBridge) L1TokenData(_ context.Context, token common.Address) (*arbitrum.TokenData, error) {
	data, ok := b.tokens[token]
	if !ok {
		return nil, errBoom
	}
	return data, nil
}

func (b *fakeBridge) GatewayAddress(context.Context, common.Address) (common.Address, error) {
	return gw, nil
}

func (b *fakeBridge) L2TokenAddress(_ context.Context, token common.Address) (common.Address, error) {
	for l2, l1 := range b.l1Addresses {
		if l1 == token {
			return l2, nil
		}
	}
	return common.Address{}, errBoom
}

func (b *fakeBridge) ERC20L1Address(_ context.Context, token common.Address) (common.Address, error) {
	return b.l1Addresses[token], nil
}

// countingStore counts dispatch calls of the wrapped store.
type countingStore struct {
	*store.Store

	mu         sync.Mutex
	dispatches int
}

func (s *countingStore) Dispatch(ctx context.Context, actions ...store.Action) {
	s.mu.Lock()
	s.dispatches++
	s.mu.Unlock()
	s.Store.Dispatch(ctx, actions...)
}

func (s *countingStore) Dispatches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dispatches
}

func newTestLogger(t *testing.T) logging.Logger {
	t.Helper()
	l, _ := test.NewNullLogger()
	return logging.Wrap(l)
}

func newTestStore(t *testing.T) *countingStore {
	t.Helper()
	return &countingStore{Store: store.NewStore(newTestLogger(t), nil, nil)}
}
