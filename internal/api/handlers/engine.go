package handlers

import (
	"context"
	"net/http"
	"sort"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/kyungsooNa/Investment-sub000/internal/contracts"
	"github.com/kyungsooNa/Investment-sub000/internal/universe"
	"github.com/kyungsooNa/Investment-sub000/pkg/logger"
)

// Universe is the read side of the universe engine
type Universe interface {
	GetWatchlist(ctx context.Context) contracts.Watchlist
	IsMarketTimingOk(ctx context.Context, market contracts.Market) bool
	LastBuild() universe.BuildInfo
}

// PositionReader exposes the strategy's held positions
type PositionReader interface {
	Positions() map[string]contracts.PositionState
}

// SignalReader reads journaled signals (optional)
type SignalReader interface {
	Recent(ctx context.Context, limit int) ([]contracts.TradeSignal, error)
}

// EngineHandler serves watchlist, positions and market timing
// ⭐ SSOT: 엔진 조회 API 핸들러는 이 구조체에서만
type EngineHandler struct {
	universe  Universe
	positions PositionReader
	signals   SignalReader
	logger    *logger.Logger
}

// NewEngineHandler creates a new engine handler. signals may be nil.
func NewEngineHandler(u Universe, p PositionReader, s SignalReader, log *logger.Logger) *EngineHandler {
	return &EngineHandler{
		universe:  u,
		positions: p,
		signals:   s,
		logger:    log,
	}
}

// WatchlistResponse is the GET /api/watchlist payload
type WatchlistResponse struct {
	Build universe.BuildInfo        `json:"build"`
	Count int                       `json:"count"`
	Items []contracts.WatchlistItem `json:"items"`
}

// GetWatchlist returns the ranked watchlist
// GET /api/watchlist
func (h *EngineHandler) GetWatchlist(w http.ResponseWriter, r *http.Request) {
	items := h.universe.GetWatchlist(r.Context()).Ranked()
	respondJSON(w, http.StatusOK, WatchlistResponse{
		Build: h.universe.LastBuild(),
		Count: len(items),
		Items: items,
	})
}

// PositionView is one held position
type PositionView struct {
	Code string `json:"code"`
	contracts.PositionState
}

// GetPositions returns the tracked positions sorted by code
// GET /api/positions
func (h *EngineHandler) GetPositions(w http.ResponseWriter, r *http.Request) {
	positions := h.positions.Positions()

	out := make([]PositionView, 0, len(positions))
	for code, p := range positions {
		out = append(out, PositionView{Code: code, PositionState: p})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":     len(out),
		"positions": out,
	})
}

// GetMarketTiming returns the timing gate for one market
// GET /api/market-timing/{market}
func (h *EngineHandler) GetMarketTiming(w http.ResponseWriter, r *http.Request) {
	market, ok := contracts.ParseMarket(mux.Vars(r)["market"])
	if !ok {
		respondError(w, http.StatusBadRequest, "market must be KOSPI or KOSDAQ")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"market": market,
		"ok":     h.universe.IsMarketTimingOk(r.Context(), market),
	})
}

// GetSignals returns recently journaled signals
// GET /api/signals?limit=50
func (h *EngineHandler) GetSignals(w http.ResponseWriter, r *http.Request) {
	if h.signals == nil {
		respondError(w, http.StatusServiceUnavailable, "signal journal is not configured")
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 500 {
			respondError(w, http.StatusBadRequest, "limit must be 1..500")
			return
		}
		limit = n
	}

	signals, err := h.signals.Recent(r.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to read signal journal")
		respondError(w, http.StatusInternalServerError, "failed to read signals")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(signals),
		"signals": signals,
	})
}
