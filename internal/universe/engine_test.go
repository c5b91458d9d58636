package universe

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyungsooNa/Investment-sub000/internal/contracts"
	"github.com/kyungsooNa/Investment-sub000/internal/marketclock"
	"github.com/kyungsooNa/Investment-sub000/pkg/logger"
)

func ranked(codes ...string) []contracts.RankedSymbol {
	out := make([]contracts.RankedSymbol, len(codes))
	for i, c := range codes {
		out[i] = contracts.RankedSymbol{Code: c, Name: "name-" + c}
	}
	return out
}

func TestGetWatchlist_FirstCallBuildsOnce(t *testing.T) {
	md := newFakeMarketData()
	md.addHealthy("A", 50)
	md.addHealthy("B", 30)
	md.tradedValue = ranked("A")
	md.gainers = ranked("B", "A")

	clock := fixedClockAt(9, 5)
	e := newTestEngine(t, md, newFakeIndicators(), newFakeDirectory(), clock)

	wl := e.GetWatchlist(context.Background())
	assert.Len(t, wl, 2)
	assert.Equal(t, 1, md.rebuilds())

	// 같은 분 재호출 → 리빌드 없음
	wl = e.GetWatchlist(context.Background())
	assert.Len(t, wl, 2)
	assert.Equal(t, 1, md.rebuilds())
	assert.Equal(t, "first_call", e.LastBuild().Trigger)
}

func TestGetWatchlist_CheckpointFiresExactlyOnce(t *testing.T) {
	md := newFakeMarketData()
	clock := fixedClockAt(9, 5)
	e := newTestEngine(t, md, newFakeIndicators(), newFakeDirectory(), clock)

	e.GetWatchlist(context.Background())
	require.Equal(t, 1, md.rebuilds())

	// 10분 체크포인트 통과
	clock.Set(time.Date(2024, 1, 5, 9, 11, 0, 0, marketclock.Seoul()))
	e.GetWatchlist(context.Background())
	e.GetWatchlist(context.Background())
	assert.Equal(t, 2, md.rebuilds())
	assert.Equal(t, "checkpoint_10m", e.LastBuild().Trigger)

	clock.Advance(30 * time.Second)
	e.GetWatchlist(context.Background())
	assert.Equal(t, 2, md.rebuilds())
}

func TestGetWatchlist_MultipleCheckpointsCrossedRebuildOnce(t *testing.T) {
	md := newFakeMarketData()
	clock := fixedClockAt(9, 5)
	e := newTestEngine(t, md, newFakeIndicators(), newFakeDirectory(), clock)

	e.GetWatchlist(context.Background())

	// 10, 30, 60 체크포인트를 한 번에 지남
	clock.Set(time.Date(2024, 1, 5, 10, 1, 0, 0, marketclock.Seoul()))
	e.GetWatchlist(context.Background())
	assert.Equal(t, 2, md.rebuilds())
	assert.Equal(t, "checkpoint_60m", e.LastBuild().Trigger)

	e.GetWatchlist(context.Background())
	assert.Equal(t, 2, md.rebuilds())
}

func TestGetWatchlist_RestartMidDayMarksPastCheckpoints(t *testing.T) {
	md := newFakeMarketData()
	// 11:40 재시작: 10, 30, 60, 90 은 이미 지남
	clock := fixedClockAt(11, 40)
	e := newTestEngine(t, md, newFakeIndicators(), newFakeDirectory(), clock)

	e.GetWatchlist(context.Background())
	e.GetWatchlist(context.Background())
	assert.Equal(t, 1, md.rebuilds())

	// 180분(12:00) 체크포인트만 새로 발화
	clock.Set(time.Date(2024, 1, 5, 12, 0, 0, 0, marketclock.Seoul()))
	e.GetWatchlist(context.Background())
	assert.Equal(t, 2, md.rebuilds())
}

func TestGetWatchlist_DayRolloverResets(t *testing.T) {
	md := newFakeMarketData()
	md.addHealthy("A", 50)
	md.tradedValue = ranked("A")

	clock := fixedClockAt(15, 0)
	e := newTestEngine(t, md, newFakeIndicators(), newFakeDirectory(), clock)

	wl := e.GetWatchlist(context.Background())
	require.Contains(t, wl, "A")

	// 다음날: 전일 워치리스트는 이월되지 않고 다시 발견되어야 함
	md.tradedValue = nil
	clock.Set(time.Date(2024, 1, 8, 9, 1, 0, 0, marketclock.Seoul()))
	wl = e.GetWatchlist(context.Background())
	assert.Empty(t, wl)
	assert.Equal(t, 2, md.rebuilds())
}

// gatedMarketData blocks TopTradedValue while armed
type gatedMarketData struct {
	*fakeMarketData
	armed   atomic.Bool
	entered chan struct{}
	release chan struct{}
}

func (g *gatedMarketData) TopTradedValue(ctx context.Context) ([]contracts.RankedSymbol, error) {
	if g.armed.Load() {
		g.entered <- struct{}{}
		<-g.release
	}
	return g.fakeMarketData.TopTradedValue(ctx)
}

func TestGetWatchlist_RolloverKeepsPreviousPublishedUntilSwap(t *testing.T) {
	md := newFakeMarketData()
	md.addHealthy("A", 50)
	md.tradedValue = ranked("A")
	gated := &gatedMarketData{
		fakeMarketData: md,
		entered:        make(chan struct{}, 1),
		release:        make(chan struct{}),
	}

	clock := fixedClockAt(15, 0)
	e, err := New(testUniverseConfig(), Deps{
		MarketData: gated,
		Indicators: newFakeIndicators(),
		Directory:  newFakeDirectory(),
		Clock:      clock,
		PoolAPath:  filepath.Join(t.TempDir(), "pool_a.json"),
	}, logger.NewNop())
	require.NoError(t, err)

	require.Contains(t, e.GetWatchlist(context.Background()), "A")

	// 다음날 첫 호출: 리빌드 도중에도 이전 목록이 그대로 게시되어 있어야 함
	gated.armed.Store(true)
	clock.Set(time.Date(2024, 1, 8, 9, 1, 0, 0, marketclock.Seoul()))
	done := make(chan contracts.Watchlist)
	go func() { done <- e.GetWatchlist(context.Background()) }()

	<-gated.entered
	assert.Contains(t, e.Current(), "A")
	assert.Len(t, e.Current(), 1)

	close(gated.release)
	wl := <-done
	assert.Contains(t, wl, "A")
	assert.Equal(t, "first_call", e.LastBuild().Trigger)
	assert.Equal(t, 0, e.LastBuild().Carried)
}

func TestBuildWatchlist_PoolAWinsAndKnownCodesSkipped(t *testing.T) {
	md := newFakeMarketData()
	md.addHealthy("A", 50)
	md.addHealthy("B", 40)
	md.tradedValue = ranked("A", "B")

	clock := fixedClockAt(9, 5)
	e := newTestEngine(t, md, newFakeIndicators(), newFakeDirectory(), clock)

	poolAItem := contracts.WatchlistItem{Code: "A", Name: "from-pool-a", Market: contracts.MarketKOSPI}
	poolAItem.ApplyScores(0, 30)
	require.NoError(t, e.poolA.Save(contracts.PoolASnapshot{
		GeneratedDate: "20240104",
		Kospi:         []contracts.WatchlistItem{poolAItem},
	}))

	wl := e.GetWatchlist(context.Background())
	require.Contains(t, wl, "A")
	require.Contains(t, wl, "B")
	assert.Equal(t, "from-pool-a", wl["A"].Name)

	// A 는 Pool A 소속이므로 분석 자체를 건너뜀
	assert.Equal(t, 0, md.barCallsFor("A"))
	assert.Equal(t, 1, md.barCallsFor("B"))

	// 다음 체크포인트: B 는 현재 워치리스트에 있으므로 재분석 없이 유지
	clock.Set(time.Date(2024, 1, 5, 9, 10, 0, 0, marketclock.Seoul()))
	wl = e.GetWatchlist(context.Background())
	assert.Contains(t, wl, "B")
	assert.Equal(t, 1, md.barCallsFor("B"))
	assert.Equal(t, 1, e.LastBuild().Carried)
}

func TestBuildWatchlist_PartialRankingFailure(t *testing.T) {
	md := newFakeMarketData()
	md.addHealthy("A", 50)
	md.addHealthy("C", 50)
	md.tradedValueErr = errUpstream
	md.gainers = ranked("A")
	md.volume = ranked("C", "A")

	e := newTestEngine(t, md, newFakeIndicators(), newFakeDirectory(), fixedClockAt(9, 5))

	wl := e.GetWatchlist(context.Background())
	assert.Len(t, wl, 2)
	assert.Equal(t, 1, md.barCallsFor("A"), "duplicate across rankings analyzed once")
}

func TestBuildWatchlist_TruncatesAndRanks(t *testing.T) {
	md := newFakeMarketData()
	codes := make([]string, 0, 8)
	for i := 0; i < 8; i++ {
		code := fmt.Sprintf("%06d", i)
		md.addHealthy(code, int64(10+i*10))
		codes = append(codes, code)
	}
	// 앞의 두 종목만 성장 가점
	md.ratios["000000"] = contracts.FinancialRatio{Found: true, OperatingProfitGrowth: 50}
	md.ratios["000001"] = contracts.FinancialRatio{Found: true, OperatingProfitGrowth: 50}
	md.volume = ranked(codes...)

	cfg := testUniverseConfig()
	cfg.PoolBSize = 5
	cfg.MaxWatchlist = 3
	e := newTestEngineWith(t, cfg, md, newFakeIndicators(), newFakeDirectory(), fixedClockAt(9, 5))

	wl := e.GetWatchlist(context.Background())
	require.Len(t, wl, 3)

	top := wl.Ranked()
	for _, it := range top {
		assert.Equal(t, it.RSScore+it.ProfitGrowthScore, it.TotalScore)
	}
	assert.GreaterOrEqual(t, top[0].TotalScore, top[1].TotalScore)
	assert.GreaterOrEqual(t, top[1].TotalScore, top[2].TotalScore)
	assert.Equal(t, 5, e.LastBuild().PoolB)
}

func TestCurrent_DoesNotTriggerRebuild(t *testing.T) {
	md := newFakeMarketData()
	e := newTestEngine(t, md, newFakeIndicators(), newFakeDirectory(), fixedClockAt(10, 0))

	assert.Empty(t, e.Current())
	assert.Equal(t, 0, md.rebuilds())
}
