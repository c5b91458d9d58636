package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyungsooNa/Investment-sub000/internal/api/handlers"
	"github.com/kyungsooNa/Investment-sub000/internal/contracts"
	"github.com/kyungsooNa/Investment-sub000/internal/universe"
	"github.com/kyungsooNa/Investment-sub000/pkg/logger"
)

type stubUniverse struct {
	watchlist contracts.Watchlist
	timing    map[contracts.Market]bool
}

func (s *stubUniverse) GetWatchlist(ctx context.Context) contracts.Watchlist { return s.watchlist }

func (s *stubUniverse) IsMarketTimingOk(ctx context.Context, m contracts.Market) bool {
	return s.timing[m]
}

func (s *stubUniverse) LastBuild() universe.BuildInfo {
	return universe.BuildInfo{Trigger: "checkpoint_10", Watchlist: len(s.watchlist)}
}

type stubPositions map[string]contracts.PositionState

func (s stubPositions) Positions() map[string]contracts.PositionState { return s }

type stubSignals struct {
	signals []contracts.TradeSignal
	err     error
	limit   int
}

func (s *stubSignals) Recent(ctx context.Context, limit int) ([]contracts.TradeSignal, error) {
	s.limit = limit
	return s.signals, s.err
}

func newTestRouter(signals handlers.SignalReader) http.Handler {
	u := &stubUniverse{
		watchlist: contracts.Watchlist{
			"005930": {Code: "005930", TotalScore: 50},
			"000660": {Code: "000660", TotalScore: 80},
		},
		timing: map[contracts.Market]bool{contracts.MarketKOSPI: true},
	}
	p := stubPositions{
		"035720": {EntryPrice: 50_000, EntryDate: "20240105", PeakPrice: 51_000, BreakoutLevel: 49_500},
		"005930": {EntryPrice: 71_000, EntryDate: "20240104", PeakPrice: 71_000, BreakoutLevel: 70_000},
	}
	log := logger.NewNop()
	return NewRouter(handlers.NewEngineHandler(u, p, signals, log), log)
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestRouter_Health(t *testing.T) {
	rec := get(t, newTestRouter(nil), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestRouter_WatchlistRanked(t *testing.T) {
	rec := get(t, newTestRouter(nil), "/api/watchlist")
	require.Equal(t, http.StatusOK, rec.Code)

	var body handlers.WatchlistResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
	require.Len(t, body.Items, 2)
	assert.Equal(t, "000660", body.Items[0].Code)
	assert.Equal(t, "checkpoint_10", body.Build.Trigger)
}

func TestRouter_PositionsSorted(t *testing.T) {
	rec := get(t, newTestRouter(nil), "/api/positions")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Count     int                     `json:"count"`
		Positions []handlers.PositionView `json:"positions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 2, body.Count)
	assert.Equal(t, "005930", body.Positions[0].Code)
	assert.Equal(t, int64(70_000), body.Positions[0].BreakoutLevel)
}

func TestRouter_MarketTiming(t *testing.T) {
	h := newTestRouter(nil)

	rec := get(t, h, "/api/market-timing/kospi")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"market":"KOSPI","ok":true}`, rec.Body.String())

	rec = get(t, h, "/api/market-timing/KOSDAQ")
	assert.JSONEq(t, `{"market":"KOSDAQ","ok":false}`, rec.Body.String())

	rec = get(t, h, "/api/market-timing/nyse")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_Signals(t *testing.T) {
	assert.Equal(t, http.StatusServiceUnavailable, get(t, newTestRouter(nil), "/api/signals").Code)

	s := &stubSignals{signals: []contracts.TradeSignal{{ID: "a", Code: "005930", Action: contracts.ActionBuy, CreatedAt: time.Now()}}}
	h := newTestRouter(s)

	rec := get(t, h, "/api/signals?limit=5")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, s.limit)
	assert.Contains(t, rec.Body.String(), `"count":1`)

	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/signals?limit=0").Code)

	s.err = errors.New("db down")
	assert.Equal(t, http.StatusInternalServerError, get(t, h, "/api/signals").Code)
}
