package strategy

import (
	"context"
	"fmt"
	"sync"

	"github.com/kyungsooNa/Investment-sub000/internal/contracts"
	"github.com/kyungsooNa/Investment-sub000/internal/strategyconfig"
	"github.com/kyungsooNa/Investment-sub000/pkg/logger"
)

// WatchlistSource is the universe side the strategy consumes
type WatchlistSource interface {
	GetWatchlist(ctx context.Context) contracts.Watchlist
	IsMarketTimingOk(ctx context.Context, market contracts.Market) bool
	Current() contracts.Watchlist // 재빌드 없이 게시된 워치리스트
}

// Deps are the external collaborators of the strategy
type Deps struct {
	Universe   WatchlistSource
	MarketData contracts.MarketDataPort
	Clock      contracts.MarketClock
	StatePath  string

	// 선택: 워치리스트에서 빠진 보유 종목의 시장 판별
	Directory contracts.SymbolDirectory
}

// Breakout is the breakout signal state machine.
// WATCHING: 워치리스트에 있으나 포지션 없음 / HELD: PositionState 존재
// ⭐ SSOT: PositionState 는 이 구조체만 소유한다
type Breakout struct {
	cfg     strategyconfig.StrategyConfig
	toggles strategyconfig.Toggles
	deps    Deps
	log     *logger.Logger

	mu        sync.Mutex
	positions map[string]contracts.PositionState

	saveMu sync.Mutex // 파일 쓰기 직렬화
}

// New creates the strategy and restores persisted positions
func New(cfg strategyconfig.StrategyConfig, deps Deps, log *logger.Logger) (*Breakout, error) {
	if deps.Universe == nil || deps.MarketData == nil || deps.Clock == nil {
		return nil, fmt.Errorf("strategy: universe, market data and clock are required")
	}
	if deps.StatePath == "" {
		return nil, fmt.Errorf("strategy: state path is required")
	}

	s := &Breakout{
		cfg:       cfg,
		toggles:   cfg.Toggles(),
		deps:      deps,
		log:       log.WithFields(map[string]interface{}{"component": "strategy", "strategy": cfg.Name}),
		positions: make(map[string]contracts.PositionState),
	}

	if err := s.LoadState(); err != nil {
		// 상태 파일 손상: 빈 상태로 시작 (이후 보유종목은 평균단가로 편입)
		s.log.WithError(err).Error("position state load failed, starting empty")
	}
	return s, nil
}

// Name returns the configured strategy name
func (s *Breakout) Name() string {
	return s.cfg.Name
}

// Positions returns a copy of the position map
func (s *Breakout) Positions() map[string]contracts.PositionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]contracts.PositionState, len(s.positions))
	for k, v := range s.positions {
		out[k] = v
	}
	return out
}

func (s *Breakout) position(code string) (contracts.PositionState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.positions[code]
	return p, ok
}

// setPosition stores p and mirrors the map to disk
func (s *Breakout) setPosition(code string, p contracts.PositionState) {
	s.mu.Lock()
	s.positions[code] = p
	s.mu.Unlock()
	s.persist()
}

// removePosition deletes code and mirrors the map to disk
func (s *Breakout) removePosition(code string) {
	s.mu.Lock()
	delete(s.positions, code)
	s.mu.Unlock()
	s.persist()
}

// persist writes state; failures are logged, memory stays authoritative
func (s *Breakout) persist() {
	if err := s.SaveState(); err != nil {
		s.log.WithError(err).Error("position state save failed")
	}
}
