package web_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dkozlov/gate_rollover_bot/internal/domain"
	"github.com/dkozlov/gate_rollover_bot/internal/usecase"
	"github.com/dkozlov/gate_rollover_bot/internal/web"
)

type stubExchange struct {
	balance      decimal.Decimal
	cancelled    []string
	placedOrders int
	nextOrderID  int64
}

func (m *stubExchange) GetTickerPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	return decimal.NewFromInt(100), nil
}

func (m *stubExchange) SetLeverage(ctx context.Context, symbol string, leverage int) error {
	return nil
}

func (m *stubExchange) PlaceOrder(ctx context.Context, symbol string, size int64, price string, tif domain.TimeInForce) (int64, error) {
	m.placedOrders++
	m.nextOrderID++
	return m.nextOrderID, nil
}

func (m *stubExchange) GetAccountBalance(ctx context.Context) (decimal.Decimal, error) {
	return m.balance, nil
}

func (m *stubExchange) ListOpenOrders(ctx context.Context, symbol string) ([]*domain.OpenOrder, error) {
	return []*domain.OpenOrder{{ID: 7, Contract: symbol, Size: 1, Price: decimal.NewFromInt(102), Status: "open"}}, nil
}

func (m *stubExchange) CancelAllOrders(ctx context.Context, symbol string) error {
	m.cancelled = append(m.cancelled, symbol)
	return nil
}

type memRepo struct {
	runs []*domain.RunRecord
}

func (m *memRepo) SaveRun(ctx context.Context, run *domain.RunRecord) error {
	run.ID = int64(len(m.runs) + 1)
	m.runs = append(m.runs, run)
	return nil
}

func (m *memRepo) ListRuns(ctx context.Context, limit int) ([]*domain.RunRecord, error) {
	if limit > len(m.runs) {
		limit = len(m.runs)
	}
	return m.runs[:limit], nil
}

func newTestServer(t *testing.T) (*httptest.Server, *stubExchange, *memRepo) {
	t.Helper()
	ex := &stubExchange{balance: decimal.RequireFromString("1234.56")}
	repo := &memRepo{}
	executor := usecase.NewStrategyExecutor(ex, zap.NewNop())
	executor.SetPlacementPause(0)

	srv := web.NewServer(0, ex, executor, repo, zap.NewNop())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, ex, repo
}

func TestServer_Balance(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/balance")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "1234.56", body["total_usdt"])
}

func TestServer_CancelOrders(t *testing.T) {
	ts, ex, _ := newTestServer(t)

	resp, err := http.PostForm(ts.URL+"/api/cancel-orders", map[string][]string{"symbol": {"BTC_USDT"}})
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"BTC_USDT"}, ex.cancelled)
}

func TestServer_CancelOrdersRequiresSymbol(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.PostForm(ts.URL+"/api/cancel-orders", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestChat_FullConversationExecutesAndJournals(t *testing.T) {
	ts, ex, repo := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() string {
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		return string(msg)
	}
	send := func(s string) {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(s)))
	}

	assert.Contains(t, read(), "contract")

	for _, input := range []string{"BTC_USDT", "2", "100", "10", "1000", "3", "2"} {
		send(input)
		read()
	}

	send("yes")
	assert.Contains(t, read(), "Executing")

	final := read()
	assert.Contains(t, final, "Strategy executed")
	assert.Contains(t, final, "3/3 placed")
	assert.Contains(t, final, "102")
	assert.Contains(t, final, "104.04")

	// Entry + 3 rungs hit the exchange, and the run was journaled.
	assert.Equal(t, 4, ex.placedOrders)
	require.Len(t, repo.runs, 1)
	assert.Equal(t, "BTC_USDT", repo.runs[0].Params.Symbol)
	assert.Equal(t, int64(1), repo.runs[0].Result.EntryOrderID)
}

func TestChat_CancelStopsConversation(t *testing.T) {
	ts, ex, _ := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err = conn.ReadMessage() // initial prompt
	require.NoError(t, err)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("/cancel")))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(msg), "Cancelled")

	assert.Zero(t, ex.placedOrders)
}
