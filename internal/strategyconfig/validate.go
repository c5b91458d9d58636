package strategyconfig

import (
	"fmt"
	"regexp"
	"sort"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks all required constraints
// 실패 시 error 반환 (프로그램 중단)
func Validate(cfg *Config) error {
	u := cfg.Universe

	// === Universe ===
	if len(u.RefreshCheckpointsMin) == 0 {
		return ValidationError{"universe.refresh_checkpoints_min", "at least one checkpoint required"}
	}
	if !sort.IntsAreSorted(u.RefreshCheckpointsMin) {
		return ValidationError{"universe.refresh_checkpoints_min", "must be ascending"}
	}
	for _, m := range u.RefreshCheckpointsMin {
		if m <= 0 {
			return ValidationError{"universe.refresh_checkpoints_min", "must be > 0"}
		}
	}

	if u.MarketTiming.KospiProxy == "" || u.MarketTiming.KosdaqProxy == "" {
		return ValidationError{"universe.market_timing", "proxy codes required"}
	}
	if u.MarketTiming.MAPeriod < 2 {
		return ValidationError{"universe.market_timing.ma_period", "must be >= 2"}
	}
	if u.MarketTiming.RisingDays < 1 {
		return ValidationError{"universe.market_timing.rising_days", "must be >= 1"}
	}

	f := u.Filters
	if f.MinMarketCap < 0 || f.MaxMarketCap <= f.MinMarketCap {
		return ValidationError{"universe.filters.market_cap", "require 0 <= min < max"}
	}
	if f.MinBars < 50 || f.BarsLookback < f.MinBars {
		return ValidationError{"universe.filters.bars_lookback", "require min_bars >= 50 and bars_lookback >= min_bars"}
	}
	if f.Near52WHighPct <= 0 || f.Near52WHighPct > 100 {
		return ValidationError{"universe.filters.near_52w_high_pct", "must be in (0, 100]"}
	}
	if f.BollingerPeriod < 2 || f.BollingerStdDev <= 0 {
		return ValidationError{"universe.filters.bollinger", "period >= 2 and std_dev > 0 required"}
	}
	for _, p := range f.ExcludeNamePatterns {
		if _, err := regexp.Compile(p); err != nil {
			return ValidationError{"universe.filters.exclude_name_patterns", fmt.Sprintf("invalid regex %q", p)}
		}
	}

	s := u.Scoring
	if s.RSPeriodDays <= 0 {
		return ValidationError{"universe.scoring.rs_period_days", "must be > 0"}
	}
	if s.RSTopPercentile <= 0 || s.RSTopPercentile > 100 {
		return ValidationError{"universe.scoring.rs_top_percentile", "must be in (0, 100]"}
	}
	if s.RSBonus < 0 || s.GrowthBonus < 0 {
		return ValidationError{"universe.scoring", "bonuses must be >= 0"}
	}

	if u.Batch.ChunkSize <= 0 {
		return ValidationError{"universe.batch.chunk_size", "must be > 0"}
	}
	if u.Batch.ChunkDelay < 0 {
		return ValidationError{"universe.batch.chunk_delay", "must be >= 0"}
	}
	if u.PoolBSize < 0 || u.MaxWatchlist <= 0 || u.PoolAPerMarket <= 0 {
		return ValidationError{"universe", "pool_b_size >= 0, max_watchlist > 0, pool_a_per_market > 0 required"}
	}

	// === Strategy ===
	st := cfg.Strategy
	switch st.Variant {
	case VariantBreakout, VariantSqueezeBreakout, VariantCustom:
	default:
		return ValidationError{"strategy.variant", fmt.Sprintf("unknown variant %q", st.Variant)}
	}
	if st.Entry.SqueezeTolerance < 1 {
		return ValidationError{"strategy.entry.squeeze_tolerance", "must be >= 1"}
	}
	if st.Entry.VolumeMultiplier <= 0 {
		return ValidationError{"strategy.entry.volume_multiplier", "must be > 0"}
	}

	switch st.Sizing.Mode {
	case SizingFixed:
		if st.Sizing.FixedQty <= 0 {
			return ValidationError{"strategy.sizing.fixed_qty", "must be > 0"}
		}
	case SizingBudget:
		if st.Sizing.PortfolioBudget <= 0 || st.Sizing.PositionSizePct <= 0 || st.Sizing.PositionSizePct > 100 {
			return ValidationError{"strategy.sizing", "portfolio_budget > 0 and position_size_pct in (0, 100] required"}
		}
	default:
		return ValidationError{"strategy.sizing.mode", fmt.Sprintf("unknown mode %q", st.Sizing.Mode)}
	}
	if st.Sizing.MinQty < 0 {
		return ValidationError{"strategy.sizing.min_qty", "must be >= 0"}
	}

	e := st.Exit
	if e.StopLossPct >= 0 {
		return ValidationError{"strategy.exit.stop_loss_pct", "must be negative"}
	}
	if e.TrailingStopPct <= 0 {
		return ValidationError{"strategy.exit.trailing_stop_pct", "must be positive"}
	}
	if e.TimeBoxDays <= 0 || e.TimeBoxRangePct <= 0 {
		return ValidationError{"strategy.exit.time_box", "days and range_pct must be > 0"}
	}
	if e.TrendMAPeriod < 2 {
		return ValidationError{"strategy.exit.trend_ma_period", "must be >= 2"}
	}

	return nil
}
