package bridge_test

import (
	"context"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"

	"github.com/swapr/bridge-tracker/arbitrum"
	"github.com/swapr/bridge-tracker/bridge"
	"github.com/swapr/bridge-tracker/entity"
	"github.com/swapr/bridge-tracker/network"
	"github.com/swapr/bridge-tracker/store"
)

var pair = network.Resolve(network.ArbitrumOne)

func newTestService(t *testing.T, b *fakeBridge, st *countingStore) *bridge.Service {
	t.Helper()
	return bridge.NewService(newTestLogger(t), b, st, pair, bridge.StaticAccount(alice))
}

func receipt(hash common.Hash) *types.Receipt {
	return &types.Receipt{Status: types.ReceiptStatusSuccessful, TxHash: hash}
}

func TestPendingTxListener(t *testing.T) {
	t.Parallel()

	b := newFakeBridge()
	st := newTestStore(t)
	ctx := context.Background()
	st.Dispatch(ctx,
		store.AddBridgeTxn{Txn: &entity.BridgeTxn{ChainID: network.Mainnet, TxHash: hash(1), Type: entity.TxnTypeDepositL1, Sender: alice}},
		store.AddBridgeTxn{Txn: &entity.BridgeTxn{ChainID: network.ArbitrumOne, TxHash: hash(2), Type: entity.TxnTypeWithdraw, Sender: alice}},
		store.AddBridgeTxn{Txn: &entity.BridgeTxn{ChainID: network.Mainnet, TxHash: hash(3), Type: entity.TxnTypeOutbox, Sender: alice}},
		store.AddBridgeTxn{Txn: &entity.BridgeTxn{ChainID: network.Mainnet, TxHash: hash(4), Type: entity.TxnTypeDepositL1, Sender: alice}},
	)
	b.l1.receipts[hash(1)] = receipt(hash(1))
	b.l2.receipts[hash(2)] = receipt(hash(2))
	b.l1.errs[hash(3)] = errBoom

	newTestService(t, b, st).PendingTxListener(ctx)

	state := st.Snapshot()
	for _, key := range []struct {
		ChainID network.ChainID
		Hash    common.Hash
		Status  entity.TxnStatus
	}{
		{network.Mainnet, hash(1), entity.TxnStatusConfirmed},
		{network.ArbitrumOne, hash(2), entity.TxnStatusConfirmed},
		{network.Mainnet, hash(3), entity.TxnStatusSubmitted},
		{network.Mainnet, hash(4), entity.TxnStatusSubmitted},
	} {
		txn, ok := state.BridgeTxn(key.ChainID, key.Hash)
		require.True(t, ok)
		require.Equal(t, key.Status, txn.Status, "tx %s", key.Hash)
	}
	require.Len(t, state.PendingTxs(), 2)
	require.Equal(t, 3, b.l1.Calls())
	require.Equal(t, 1, b.l2.Calls())
}

func TestL2DepositsListener_KnownSeqNum(t *testing.T) {
	t.Parallel()

	b := newFakeBridge()
	st := newTestStore(t)
	ctx := context.Background()
	l1Hash := hash(1)
	st.Dispatch(ctx,
		store.AddBridgeTxn{Txn: &entity.BridgeTxn{
			ChainID: network.Mainnet, TxHash: l1Hash, Type: entity.TxnTypeDepositL1,
			AssetName: "ETH", AssetType: entity.AssetTypeETH, Value: "1", Sender: alice,
		}},
		store.UpdateReceipt{ChainID: network.Mainnet, TxHash: l1Hash, Receipt: receipt(l1Hash), SeqNum: big.NewInt(42)},
	)
	svc := newTestService(t, b, st)
	l2Hash := arbitrum.CalculateL2TransactionHash(big.NewInt(42), network.ArbitrumOne)

	svc.L2DepositsListener(ctx)

	state := st.Snapshot()
	require.Len(t, state.AllTxs(), 2)
	l2Txn, ok := state.BridgeTxn(network.ArbitrumOne, l2Hash)
	require.True(t, ok)
	require.Equal(t, entity.TxnTypeDepositL2, l2Txn.Type)
	require.Equal(t, network.ArbitrumOne, l2Txn.ChainID)
	require.Equal(t, &l1Hash, l2Txn.PartnerTxHash)
	require.Equal(t, network.Mainnet, l2Txn.PartnerChainID)
	require.Equal(t, int64(42), l2Txn.SeqNum().Int64())
	require.Nil(t, l2Txn.Receipt)
	require.Equal(t, alice, l2Txn.Sender)

	l1Txn, ok := state.BridgeTxn(network.Mainnet, l1Hash)
	require.True(t, ok)
	require.Equal(t, entity.TxnTypeDepositL1, l1Txn.Type)
	require.Equal(t, &l2Hash, l1Txn.PartnerTxHash)
	require.Equal(t, entity.TxnStatusL2Discovered, l1Txn.Status)
	require.Zero(t, b.l1.Calls())

	svc.L2DepositsListener(ctx)
	require.Equal(t, state, st.Snapshot())
}

func TestL2DepositsListener_SeqNumFromReceipt(t *testing.T) {
	t.Parallel()

	b := newFakeBridge()
	st := newTestStore(t)
	ctx := context.Background()
	st.Dispatch(ctx,
		store.AddBridgeTxn{Txn: &entity.BridgeTxn{ChainID: network.Mainnet, TxHash: hash(1), Type: entity.TxnTypeDepositL1, Sender: alice}},
		store.AddBridgeTxn{Txn: &entity.BridgeTxn{ChainID: network.Mainnet, TxHash: hash(2), Type: entity.TxnTypeDepositL1, Sender: alice}},
		store.AddBridgeTxn{Txn: &entity.BridgeTxn{ChainID: network.Mainnet, TxHash: hash(3), Type: entity.TxnTypeDepositL1, Sender: alice}},
	)
	b.l1.receipts[hash(1)] = receipt(hash(1))
	b.seqNums[hash(1)] = []*big.Int{big.NewInt(7)}
	b.l1.receipts[hash(2)] = receipt(hash(2))
	b.l1.errs[hash(3)] = errBoom

	newTestService(t, b, st).L2DepositsListener(ctx)

	state := st.Snapshot()
	require.Len(t, state.AllTxs(), 4)
	l1Txn, ok := state.BridgeTxn(network.Mainnet, hash(1))
	require.True(t, ok)
	require.Equal(t, int64(7), l1Txn.SeqNum().Int64())
	require.NotNil(t, l1Txn.Receipt)
	_, ok = state.BridgeTxn(network.ArbitrumOne, arbitrum.CalculateL2TransactionHash(big.NewInt(7), network.ArbitrumOne))
	require.True(t, ok)
}

func TestL2DepositsListener_OtherAccount(t *testing.T) {
	t.Parallel()

	b := newFakeBridge()
	st := newTestStore(t)
	ctx := context.Background()
	st.Dispatch(ctx,
		store.AddBridgeTxn{Txn: &entity.BridgeTxn{ChainID: network.Mainnet, TxHash: hash(1), Type: entity.TxnTypeDepositL1, Sender: common.HexToAddress("0x02")}},
		store.UpdateReceipt{ChainID: network.Mainnet, TxHash: hash(1), Receipt: receipt(hash(1)), SeqNum: big.NewInt(42)},
	)

	newTestService(t, b, st).L2DepositsListener(ctx)
	require.Len(t, st.Snapshot().AllTxs(), 1)

	bridge.NewService(newTestLogger(t), b, st, pair, nil).L2DepositsListener(ctx)
	require.Len(t, st.Snapshot().AllTxs(), 1)
}

func TestUpdatePendingWithdrawals(t *testing.T) {
	t.Parallel()

	b := newFakeBridge()
	st := newTestStore(t)
	ctx := context.Background()
	st.Dispatch(ctx,
		store.AddBridgeTxn{Txn: &entity.BridgeTxn{ChainID: network.ArbitrumOne, TxHash: hash(1), Type: entity.TxnTypeWithdraw, Sender: alice}},
		store.UpdateReceipt{ChainID: network.ArbitrumOne, TxHash: hash(1), Receipt: receipt(hash(1))},
		store.AddBridgeTxn{Txn: &entity.BridgeTxn{ChainID: network.ArbitrumOne, TxHash: hash(2), Type: entity.TxnTypeWithdraw, Sender: alice}},
		store.UpdateReceipt{ChainID: network.ArbitrumOne, TxHash: hash(2), Receipt: receipt(hash(2))},
		store.AddBridgeTxn{Txn: &entity.BridgeTxn{ChainID: network.ArbitrumOne, TxHash: hash(3), Type: entity.TxnTypeWithdraw, Sender: alice}},
	)
	b.withdrawals[hash(1)] = []*arbitrum.L2ToL1Event{{BatchNumber: big.NewInt(5), IndexInBatch: big.NewInt(3)}}
	b.withdrawals[hash(2)] = []*arbitrum.L2ToL1Event{
		{BatchNumber: big.NewInt(5), IndexInBatch: big.NewInt(4)},
		{BatchNumber: big.NewInt(5), IndexInBatch: big.NewInt(5)},
	}
	b.messageState = entity.OutgoingMessageStateConfirmed
	svc := newTestService(t, b, st)
	session := bridge.NewWithdrawalsSession()

	svc.UpdatePendingWithdrawals(ctx, session)

	state := st.Snapshot()
	require.False(t, state.IsCheckingWithdrawals)
	require.True(t, session.Checked())
	require.Equal(t, 1, b.StateCalls())

	txn, ok := state.BridgeTxn(network.ArbitrumOne, hash(1))
	require.True(t, ok)
	require.Equal(t, entity.OutgoingMessageStateConfirmed, txn.MessageState())
	require.Equal(t, int64(5), txn.Withdrawal.BatchNumber.Int64())
	require.Equal(t, int64(3), txn.Withdrawal.BatchIndex.Int64())
	require.Equal(t, entity.TxnStatusDisputeConfirmed, txn.Status)

	for _, h := range []common.Hash{hash(2), hash(3)} {
		txn, ok = state.BridgeTxn(network.ArbitrumOne, h)
		require.True(t, ok)
		require.Equal(t, entity.OutgoingMessageStateUnknown, txn.MessageState())
	}

	svc.UpdatePendingWithdrawals(ctx, session)
	require.Equal(t, 1, b.StateCalls())

	session.Reset()
	b.messageState = entity.OutgoingMessageStateExecuted
	svc.UpdatePendingWithdrawals(ctx, session)
	require.Equal(t, 2, b.StateCalls())
	txn, ok = st.Snapshot().BridgeTxn(network.ArbitrumOne, hash(1))
	require.True(t, ok)
	require.Equal(t, entity.TxnStatusCollected, txn.Status)
	for _, pending := range st.Snapshot().PendingWithdrawals() {
		require.NotEqual(t, entity.OutgoingMessageStateExecuted, pending.MessageState())
	}
}

func TestUpdatePendingWithdrawals_ResetWhileRunning(t *testing.T) {
	t.Parallel()

	b := newFakeBridge()
	st := newTestStore(t)
	ctx := context.Background()
	st.Dispatch(ctx,
		store.AddBridgeTxn{Txn: &entity.BridgeTxn{ChainID: network.ArbitrumOne, TxHash: hash(1), Type: entity.TxnTypeWithdraw, Sender: alice}},
		store.UpdateReceipt{ChainID: network.ArbitrumOne, TxHash: hash(1), Receipt: receipt(hash(1))},
	)
	b.withdrawals[hash(1)] = []*arbitrum.L2ToL1Event{{BatchNumber: big.NewInt(5), IndexInBatch: big.NewInt(3)}}
	b.messageState = entity.OutgoingMessageStateUnconfirmed

	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	b.onState = func() {
		once.Do(func() {
			close(started)
			<-release
		})
	}
	svc := newTestService(t, b, st)
	session := bridge.NewWithdrawalsSession()

	done := make(chan struct{})
	go func() {
		defer close(done)
		svc.UpdatePendingWithdrawals(ctx, session)
	}()
	<-started
	session.Reset()
	close(release)
	<-done

	require.False(t, session.Checked())
	require.Equal(t, 1, b.StateCalls())

	svc.UpdatePendingWithdrawals(ctx, session)
	require.True(t, session.Checked())
	require.Equal(t, 2, b.StateCalls())
}

func TestDeposit_ETH(t *testing.T) {
	t.Parallel()

	b := newFakeBridge()
	st := newTestStore(t)
	ctx := context.Background()
	b.depositETH = func(amount *big.Int) (arbitrum.Transaction, error) {
		require.Equal(t, "1500000000000000000", amount.String())
		return minedTx(hash(10)), nil
	}
	b.seqNums[hash(10)] = []*big.Int{big.NewInt(42)}

	newTestService(t, b, st).Deposit(ctx, "1.5", nil)

	state := st.Snapshot()
	require.Equal(t, store.ModalStatusInitiated, state.Modal.Status)
	txn, ok := state.BridgeTxn(network.Mainnet, hash(10))
	require.True(t, ok)
	require.Equal(t, entity.TxnTypeDepositL1, txn.Type)
	require.Equal(t, entity.AssetTypeETH, txn.AssetType)
	require.Equal(t, "1.5", txn.Value)
	require.Equal(t, alice, txn.Sender)
	require.Equal(t, entity.TxnStatusConfirmed, txn.Status)
	require.Equal(t, int64(42), txn.SeqNum().Int64())
}

func TestDeposit_ERC20(t *testing.T) {
	t.Parallel()

	b := newFakeBridge()
	st := newTestStore(t)
	ctx := context.Background()
	b.depositERC20 = func(token common.Address, amount *big.Int) (arbitrum.Transaction, error) {
		require.Equal(t, dai, token)
		require.Equal(t, "2000000000000000000", amount.String())
		return minedTx(hash(11)), nil
	}

	token := dai
	newTestService(t, b, st).Deposit(ctx, "2", &token)

	txn, ok := st.Snapshot().BridgeTxn(network.Mainnet, hash(11))
	require.True(t, ok)
	require.Equal(t, "DAI", txn.AssetName)
	require.Equal(t, entity.AssetTypeERC20, txn.AssetType)
	require.Equal(t, &dai, txn.AssetAddressL1)
	require.Equal(t, &l2Dai, txn.AssetAddressL2)
}

func TestDeposit_Errors(t *testing.T) {
	t.Parallel()

	unknownToken := common.HexToAddress("0x03")
	for _, test := range []struct {
		Name     string
		Token    *common.Address
		Err      error
		Expected string
	}{
		{"User rejected", nil, rpcError{code: 4001, msg: "User denied transaction signature"}, "Transaction rejected"},
		{"Other rpc error", nil, rpcError{code: -32000, msg: "insufficient funds"}, "Bridge failed: insufficient funds"},
		{"Plain error", nil, errBoom, "Bridge failed: boom"},
		{"Unknown token", &unknownToken, nil, "Bridge failed: Token data not found"},
	} {
		t.Logf("Running sub-test %q", test.Name)
		b := newFakeBridge()
		st := newTestStore(t)
		err := test.Err
		b.depositETH = func(*big.Int) (arbitrum.Transaction, error) {
			return nil, err
		}

		newTestService(t, b, st).Deposit(context.Background(), "1", test.Token)

		state := st.Snapshot()
		require.Equal(t, store.ModalStatusError, state.Modal.Status, "Failed %s", test.Name)
		require.Equal(t, test.Expected, state.Modal.Error, "Failed %s", test.Name)
		require.Empty(t, state.AllTxs(), "Failed %s", test.Name)
	}
}

func TestWithdraw(t *testing.T) {
	t.Parallel()

	b := newFakeBridge()
	st := newTestStore(t)
	ctx := context.Background()
	b.withdrawERC20 = func(token common.Address, amount *big.Int) (arbitrum.Transaction, error) {
		require.Equal(t, dai, token)
		return minedTx(hash(20)), nil
	}
	b.withdrawETH = func(amount *big.Int) (arbitrum.Transaction, error) {
		return minedTx(hash(21)), nil
	}
	svc := newTestService(t, b, st)

	token := l2Dai
	svc.Withdraw(ctx, "3", &token)
	state := st.Snapshot()
	require.Equal(t, store.Modal{
		Status:      store.ModalStatusInitiated,
		Symbol:      "DAI",
		TypedValue:  "3",
		FromChainID: network.ArbitrumOne,
		ToChainID:   network.Mainnet,
	}, state.Modal)
	txn, ok := state.BridgeTxn(network.ArbitrumOne, hash(20))
	require.True(t, ok)
	require.Equal(t, entity.TxnTypeWithdraw, txn.Type)
	require.Equal(t, &dai, txn.AssetAddressL1)
	require.Equal(t, &l2Dai, txn.AssetAddressL2)
	require.NotNil(t, txn.Receipt)
	require.NotNil(t, txn.Withdrawal)

	svc.Withdraw(ctx, "0.1", nil)
	txn, ok = st.Snapshot().BridgeTxn(network.ArbitrumOne, hash(21))
	require.True(t, ok)
	require.Equal(t, "ETH", txn.AssetName)

	unknown := common.HexToAddress("0x04")
	svc.Withdraw(ctx, "1", &unknown)
	require.Equal(t, "Bridge failed: Token address not recognized", st.Snapshot().Modal.Error)
}

func addWithdrawal(ctx context.Context, st *countingStore, h common.Hash, state entity.OutgoingMessageState) {
	st.Dispatch(ctx,
		store.AddBridgeTxn{Txn: &entity.BridgeTxn{
			ChainID: network.ArbitrumOne, TxHash: h, Type: entity.TxnTypeWithdraw,
			AssetName: "ETH", AssetType: entity.AssetTypeETH, Value: "1", Sender: alice,
		}},
		store.UpdateReceipt{ChainID: network.ArbitrumOne, TxHash: h, Receipt: receipt(h)},
		store.UpdateWithdrawalInfo{
			ChainID: network.ArbitrumOne, TxHash: h, OutgoingMessageState: state,
			BatchNumber: big.NewInt(5), BatchIndex: big.NewInt(3),
		},
	)
}

func TestCollect(t *testing.T) {
	t.Parallel()

	b := newFakeBridge()
	st := newTestStore(t)
	ctx := context.Background()
	withdrawal := hash(30)
	outbox := hash(31)
	addWithdrawal(ctx, st, withdrawal, entity.OutgoingMessageStateConfirmed)
	b.trigger = func(batchNumber, batchIndex *big.Int) (arbitrum.Transaction, error) {
		require.Equal(t, int64(5), batchNumber.Int64())
		require.Equal(t, int64(3), batchIndex.Int64())
		return minedTx(outbox), nil
	}

	txn, ok := st.Snapshot().BridgeTxn(network.ArbitrumOne, withdrawal)
	require.True(t, ok)
	newTestService(t, b, st).Collect(ctx, bridge.Summarize(txn))

	state := st.Snapshot()
	require.Equal(t, store.ModalStatusSuccess, state.Modal.Status)
	outboxTxn, ok := state.BridgeTxn(network.Mainnet, outbox)
	require.True(t, ok)
	require.Equal(t, entity.TxnTypeOutbox, outboxTxn.Type)
	require.Equal(t, &withdrawal, outboxTxn.PartnerTxHash)
	require.Equal(t, network.ArbitrumOne, outboxTxn.PartnerChainID)
	require.Equal(t, entity.TxnStatusConfirmed, outboxTxn.Status)

	withdrawalTxn, ok := state.BridgeTxn(network.ArbitrumOne, withdrawal)
	require.True(t, ok)
	require.Equal(t, entity.OutgoingMessageStateExecuted, withdrawalTxn.MessageState())
	require.Equal(t, entity.TxnStatusCollected, withdrawalTxn.Status)
	require.Equal(t, &outbox, withdrawalTxn.PartnerTxHash)
	require.Empty(t, state.PendingWithdrawals())
}

func TestCollect_Noop(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b := newFakeBridge()
	b.trigger = func(*big.Int, *big.Int) (arbitrum.Transaction, error) {
		t.Fatal("unexpected trigger")
		return nil, nil
	}

	for _, test := range []struct {
		Name    string
		Summary bridge.TransactionSummary
		State   entity.OutgoingMessageState
	}{
		{"Missing batch index", bridge.TransactionSummary{TxHash: hash(40), Value: "1", BatchNumber: big.NewInt(5)}, entity.OutgoingMessageStateConfirmed},
		{"Missing batch number", bridge.TransactionSummary{TxHash: hash(40), Value: "1", BatchIndex: big.NewInt(3)}, entity.OutgoingMessageStateConfirmed},
		{"Missing value", bridge.TransactionSummary{TxHash: hash(40), BatchNumber: big.NewInt(5), BatchIndex: big.NewInt(3)}, entity.OutgoingMessageStateConfirmed},
		{"Already executed", bridge.TransactionSummary{TxHash: hash(40), Value: "1", BatchNumber: big.NewInt(5), BatchIndex: big.NewInt(3)}, entity.OutgoingMessageStateExecuted},
	} {
		t.Logf("Running sub-test %q", test.Name)
		st := newTestStore(t)
		addWithdrawal(ctx, st, hash(40), test.State)
		dispatches := st.Dispatches()

		newTestService(t, b, st).Collect(ctx, test.Summary)
		require.Equal(t, dispatches, st.Dispatches(), "Failed %s", test.Name)
	}
}

func TestCollect_Errors(t *testing.T) {
	t.Parallel()

	b := newFakeBridge()
	st := newTestStore(t)
	ctx := context.Background()
	addWithdrawal(ctx, st, hash(50), entity.OutgoingMessageStateConfirmed)
	b.trigger = func(*big.Int, *big.Int) (arbitrum.Transaction, error) {
		return &fakeTx{hash: hash(51), receipt: &types.Receipt{Status: types.ReceiptStatusFailed, TxHash: hash(51)}}, nil
	}
	txn, _ := st.Snapshot().BridgeTxn(network.ArbitrumOne, hash(50))

	newTestService(t, b, st).Collect(ctx, bridge.Summarize(txn))

	state := st.Snapshot()
	require.Equal(t, store.ModalStatusError, state.Modal.Status)
	require.Equal(t, "Bridge failed: collect transaction reverted", state.Modal.Error)
	txn, _ = state.BridgeTxn(network.ArbitrumOne, hash(50))
	require.Equal(t, entity.OutgoingMessageStateConfirmed, txn.MessageState())
	outbox, ok := state.BridgeTxn(network.Mainnet, hash(51))
	require.True(t, ok)
	require.Equal(t, entity.TxnStatusFailed, outbox.Status)
}

func TestApproveERC20(t *testing.T) {
	t.Parallel()

	b := newFakeBridge()
	st := newTestStore(t)
	ctx := context.Background()
	b.approve = func(token common.Address) (arbitrum.Transaction, error) {
		require.Equal(t, dai, token)
		return minedTx(hash(60)), nil
	}
	svc := newTestService(t, b, st)

	svc.ApproveERC20(ctx, dai, nil, "")
	txs := st.Snapshot().TransactionList()
	require.Len(t, txs, 1)
	require.Equal(t, "Approve DAI", txs[0].Summary)
	require.Equal(t, network.Mainnet, txs[0].ChainID)
	require.Equal(t, alice, txs[0].From)
	require.Equal(t, &entity.Approval{Spender: gw, TokenAddress: dai}, txs[0].Approval)
	require.Empty(t, st.Snapshot().AllTxs())

	b.approve = func(common.Address) (arbitrum.Transaction, error) {
		return minedTx(hash(61)), nil
	}
	spender := common.HexToAddress("0x05")
	svc.ApproveERC20(ctx, dai, &spender, "weth")
	txs = st.Snapshot().TransactionList()
	require.Len(t, txs, 2)
	require.Equal(t, "Approve WETH", txs[1].Summary)
	require.Equal(t, spender, txs[1].Approval.Spender)
}

func TestService_NotReady(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b := newFakeBridge()
	b.depositETH = func(*big.Int) (arbitrum.Transaction, error) {
		t.Fatal("unexpected deposit")
		return nil, nil
	}

	for _, test := range []struct {
		Name    string
		Service func(st *countingStore) *bridge.Service
	}{
		{"No account", func(st *countingStore) *bridge.Service {
			return bridge.NewService(newTestLogger(t), b, st, pair, bridge.StaticAccount(common.Address{}))
		}},
		{"No bridge", func(st *countingStore) *bridge.Service {
			return bridge.NewService(newTestLogger(t), nil, st, pair, bridge.StaticAccount(alice))
		}},
		{"Unpaired chain", func(st *countingStore) *bridge.Service {
			return bridge.NewService(newTestLogger(t), b, st, network.Resolve(network.XDai), bridge.StaticAccount(alice))
		}},
	} {
		t.Logf("Running sub-test %q", test.Name)
		st := newTestStore(t)
		svc := test.Service(st)
		svc.Deposit(ctx, "1", nil)
		svc.Withdraw(ctx, "1", nil)
		svc.ApproveERC20(ctx, dai, nil, "")
		svc.L2DepositsListener(ctx)
		require.Zero(t, st.Dispatches(), "Failed %s", test.Name)
		require.Equal(t, store.ModalStatusClosed, st.Snapshot().Modal.Status, "Failed %s", test.Name)
	}
}
