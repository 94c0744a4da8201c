package presenter_test

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/swapr/bridge-tracker/bridge"
	"github.com/swapr/bridge-tracker/entity"
	"github.com/swapr/bridge-tracker/logging"
	"github.com/swapr/bridge-tracker/network"
	"github.com/swapr/bridge-tracker/presenter"
	"github.com/swapr/bridge-tracker/store"
)

var (
	alice = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	bob   = common.HexToAddress("0x00000000000000000000000000000000000000b0")
)

type call struct {
	Op      string
	Value   string
	Token   *common.Address
	Summary bridge.TransactionSummary
	Symbol  string
}

type fakeService struct {
	mu    sync.Mutex
	calls []call
}

func (s *fakeService) record(c call) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, c)
}

func (s *fakeService) Calls() []call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]call(nil), s.calls...)
}

func (s *fakeService) Deposit(_ context.Context, value string, token *common.Address) {
	s.record(call{Op: "deposit", Value: value, Token: token})
}

func (s *fakeService) Withdraw(_ context.Context, value string, token *common.Address) {
	s.record(call{Op: "withdraw", Value: value, Token: token})
}

func (s *fakeService) Collect(_ context.Context, summary bridge.TransactionSummary) {
	s.record(call{Op: "collect", Summary: summary})
}

func (s *fakeService) ApproveERC20(_ context.Context, token common.Address, _ *common.Address, symbol string) {
	s.record(call{Op: "approve", Token: &token, Symbol: symbol})
}

type fakeRechecker struct {
	mu    sync.Mutex
	count int
}

func (r *fakeRechecker) Recheck() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count++
}

func hash(n int64) common.Hash {
	return common.BigToHash(big.NewInt(n))
}

func newTestPresenter(t *testing.T) (*presenter.Presenter, *fakeService, *fakeRechecker) {
	t.Helper()

	l, _ := test.NewNullLogger()
	logger := logging.Wrap(l)
	st := store.NewStore(logger, nil, nil)
	ctx := context.Background()
	st.Dispatch(ctx,
		store.AddBridgeTxn{Txn: &entity.BridgeTxn{ChainID: network.Mainnet, TxHash: hash(1), Type: entity.TxnTypeDepositL1, Value: "1", Sender: alice}},
		store.AddBridgeTxn{Txn: &entity.BridgeTxn{ChainID: network.ArbitrumOne, TxHash: hash(2), Type: entity.TxnTypeWithdraw, Value: "2", Sender: alice}},
		store.UpdateReceipt{ChainID: network.ArbitrumOne, TxHash: hash(2), Receipt: &types.Receipt{Status: types.ReceiptStatusSuccessful}},
		store.UpdateWithdrawalInfo{
			ChainID: network.ArbitrumOne, TxHash: hash(2), OutgoingMessageState: entity.OutgoingMessageStateConfirmed,
			BatchNumber: big.NewInt(5), BatchIndex: big.NewInt(3),
		},
		store.AddBridgeTxn{Txn: &entity.BridgeTxn{ChainID: network.Mainnet, TxHash: hash(3), Type: entity.TxnTypeDepositL1, Value: "3", Sender: bob}},
		store.AddTransaction{Tx: &entity.Transaction{ChainID: network.Mainnet, Hash: hash(4), From: alice, Summary: "Approve DAI"}},
	)
	service := new(fakeService)
	rechecker := new(fakeRechecker)
	return presenter.NewPresenter(ctx, logger, st, service, rechecker, network.NewResolver()), service, rechecker
}

func do(t *testing.T, p http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	p.ServeHTTP(rec, req)
	return rec
}

func TestPresenter_Queries(t *testing.T) {
	t.Parallel()

	p, _, _ := newTestPresenter(t)

	for _, test := range []struct {
		Name   string
		Path   string
		Status int
		Count  int
	}{
		{"All bridge txns", "/bridge/txs", http.StatusOK, 3},
		{"Owned bridge txns", "/bridge/txs?account=" + alice.Hex(), http.StatusOK, 2},
		{"Unknown account", "/bridge/txs?account=0x00000000000000000000000000000000000000c0", http.StatusOK, 0},
		{"Invalid account", "/bridge/txs?account=alice", http.StatusBadRequest, -1},
		{"Transactions", "/transactions", http.StatusOK, 1},
	} {
		t.Logf("Running sub-test %q", test.Name)
		rec := do(t, p, http.MethodGet, test.Path, "")
		require.Equal(t, test.Status, rec.Code, "Failed %s", test.Name)
		if test.Count < 0 {
			continue
		}
		var res []json.RawMessage
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res), "Failed %s", test.Name)
		require.Len(t, res, test.Count, "Failed %s", test.Name)
	}
}

func TestPresenter_GetBridgeTxn(t *testing.T) {
	t.Parallel()

	p, _, _ := newTestPresenter(t)

	rec := do(t, p, http.MethodGet, "/bridge/txs/42161/"+hash(2).Hex(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var res struct {
		TxHash common.Hash      `json:"txHash"`
		Type   entity.TxnType   `json:"type"`
		Status entity.TxnStatus `json:"status"`
		Link   string           `json:"link"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Equal(t, hash(2), res.TxHash)
	require.Equal(t, entity.TxnTypeWithdraw, res.Type)
	require.Equal(t, entity.TxnStatusDisputeConfirmed, res.Status)
	require.Equal(t, "https://arbiscan.io/tx/"+hash(2).Hex(), res.Link)

	rec = do(t, p, http.MethodGet, "/bridge/txs/1/"+hash(2).Hex(), "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPresenter_StateAndPair(t *testing.T) {
	t.Parallel()

	p, _, _ := newTestPresenter(t)

	rec := do(t, p, http.MethodGet, "/bridge/state", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var state struct {
		Modal              store.Modal       `json:"modal"`
		PendingTxs         int               `json:"pendingTxs"`
		PendingWithdrawals []json.RawMessage `json:"pendingWithdrawals"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	require.Equal(t, store.ModalStatusClosed, state.Modal.Status)
	require.Equal(t, 2, state.PendingTxs)
	require.Len(t, state.PendingWithdrawals, 1)

	rec = do(t, p, http.MethodGet, "/chains/42161/pair", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var pair network.Pair
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))
	require.Equal(t, network.Resolve(network.ArbitrumOne), pair)
}

func TestPresenter_Operations(t *testing.T) {
	t.Parallel()

	p, service, rechecker := newTestPresenter(t)
	dai := common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F")

	for _, test := range []struct {
		Name   string
		Path   string
		Body   string
		Status int
	}{
		{"Deposit ETH", "/bridge/deposit", `{"value":"1.5"}`, http.StatusAccepted},
		{"Deposit without value", "/bridge/deposit", `{}`, http.StatusBadRequest},
		{"Withdraw ERC20", "/bridge/withdraw", `{"value":"2","token":"` + dai.Hex() + `"}`, http.StatusAccepted},
		{"Unknown field", "/bridge/withdraw", `{"amount":"2"}`, http.StatusBadRequest},
		{"Collect", "/bridge/collect", `{"chainId":42161,"txHash":"` + hash(2).Hex() + `"}`, http.StatusAccepted},
		{"Collect unknown", "/bridge/collect", `{"chainId":42161,"txHash":"` + hash(9).Hex() + `"}`, http.StatusNotFound},
		{"Collect deposit", "/bridge/collect", `{"chainId":1,"txHash":"` + hash(1).Hex() + `"}`, http.StatusBadRequest},
		{"Approve", "/bridge/approve", `{"token":"` + dai.Hex() + `","symbol":"dai"}`, http.StatusAccepted},
		{"Recheck", "/bridge/withdrawals/recheck", "", http.StatusAccepted},
	} {
		t.Logf("Running sub-test %q", test.Name)
		rec := do(t, p, http.MethodPost, test.Path, test.Body)
		require.Equal(t, test.Status, rec.Code, "Failed %s", test.Name)
	}
	p.Wait()

	calls := service.Calls()
	require.Len(t, calls, 4)
	byOp := make(map[string]call, len(calls))
	for _, c := range calls {
		byOp[c.Op] = c
	}
	require.Equal(t, "1.5", byOp["deposit"].Value)
	require.Nil(t, byOp["deposit"].Token)
	require.Equal(t, &dai, byOp["withdraw"].Token)
	require.Equal(t, hash(2), byOp["collect"].Summary.TxHash)
	require.Equal(t, int64(5), byOp["collect"].Summary.BatchNumber.Int64())
	require.Equal(t, int64(3), byOp["collect"].Summary.BatchIndex.Int64())
	require.Equal(t, "dai", byOp["approve"].Symbol)
	require.Equal(t, 1, rechecker.count)
}
