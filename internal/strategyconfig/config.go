package strategyconfig

import "time"

// Config는 유니버스 엔진과 돌파 전략의 전체 설정
// 생성 이후 변경하지 않는다
type Config struct {
	Universe UniverseConfig `yaml:"universe" json:"universe"`
	Strategy StrategyConfig `yaml:"strategy" json:"strategy"`
}

// UniverseConfig: Pool A / Pool B / 워치리스트
type UniverseConfig struct {
	// 장 시작 후 경과 분 단위 재빌드 체크포인트
	RefreshCheckpointsMin []int `yaml:"refresh_checkpoints_min" json:"refresh_checkpoints_min"`

	MarketTiming MarketTiming    `yaml:"market_timing" json:"market_timing"`
	Filters      UniverseFilters `yaml:"filters" json:"filters"`
	Scoring      Scoring         `yaml:"scoring" json:"scoring"`
	Batch        Batch           `yaml:"batch" json:"batch"`

	PoolBSize      int `yaml:"pool_b_size" json:"pool_b_size"`
	MaxWatchlist   int `yaml:"max_watchlist" json:"max_watchlist"`
	PoolAPerMarket int `yaml:"pool_a_per_market" json:"pool_a_per_market"`
}

// MarketTiming 시장 타이밍 게이트 (대표 ETF 이동평균 상승 여부)
type MarketTiming struct {
	KospiProxy  string `yaml:"kospi_proxy" json:"kospi_proxy"`   // KODEX 200
	KosdaqProxy string `yaml:"kosdaq_proxy" json:"kosdaq_proxy"` // KODEX 코스닥150
	MAPeriod    int    `yaml:"ma_period" json:"ma_period"`
	RisingDays  int    `yaml:"rising_days" json:"rising_days"` // M: 연속 상승 비교 횟수
}

// UniverseFilters 종목 품질 필터
type UniverseFilters struct {
	MinMarketCap         int64    `yaml:"min_market_cap" json:"min_market_cap"`
	MaxMarketCap         int64    `yaml:"max_market_cap" json:"max_market_cap"`
	MinAvgTradingValue5D float64  `yaml:"min_avg_trading_value_5d" json:"min_avg_trading_value_5d"`
	Near52WHighPct       float64  `yaml:"near_52w_high_pct" json:"near_52w_high_pct"`
	BarsLookback         int      `yaml:"bars_lookback" json:"bars_lookback"`
	MinBars              int      `yaml:"min_bars" json:"min_bars"`
	BollingerPeriod      int      `yaml:"bollinger_period" json:"bollinger_period"`
	BollingerStdDev      float64  `yaml:"bollinger_std_dev" json:"bollinger_std_dev"`
	ExcludeNamePatterns  []string `yaml:"exclude_name_patterns" json:"exclude_name_patterns"`
}

// Scoring RS / 이익성장 가점
type Scoring struct {
	RSPeriodDays       int     `yaml:"rs_period_days" json:"rs_period_days"`
	RSTopPercentile    float64 `yaml:"rs_top_percentile" json:"rs_top_percentile"`
	RSBonus            float64 `yaml:"rs_bonus" json:"rs_bonus"`
	GrowthThresholdPct float64 `yaml:"growth_threshold_pct" json:"growth_threshold_pct"`
	GrowthBonus        float64 `yaml:"growth_bonus" json:"growth_bonus"`
}

// Batch 외부 API 호출 한도 대응 청크 설정
type Batch struct {
	ChunkSize  int           `yaml:"chunk_size" json:"chunk_size"`
	ChunkDelay time.Duration `yaml:"chunk_delay" json:"chunk_delay"`
}

// Variant names
const (
	VariantBreakout        = "breakout"
	VariantSqueezeBreakout = "squeeze_breakout"
	VariantCustom          = "custom"
)

// StrategyConfig 돌파 전략 설정
type StrategyConfig struct {
	Name    string `yaml:"name" json:"name"`
	Variant string `yaml:"variant" json:"variant"`

	// custom 변형에서만 사용
	RequireSqueeze   bool `yaml:"require_squeeze" json:"require_squeeze"`
	TrendExit        bool `yaml:"trend_exit" json:"trend_exit"`
	FakeBreakoutExit bool `yaml:"fake_breakout_exit" json:"fake_breakout_exit"`

	Entry  Entry  `yaml:"entry" json:"entry"`
	Sizing Sizing `yaml:"sizing" json:"sizing"`
	Exit   Exit   `yaml:"exit" json:"exit"`
}

// Entry 진입 조건
type Entry struct {
	SqueezeTolerance float64 `yaml:"squeeze_tolerance" json:"squeeze_tolerance"`
	VolumeMultiplier float64 `yaml:"volume_multiplier" json:"volume_multiplier"`

	// 스마트머니: 프로그램 순매수 수량은 floor 초과여야 함
	ProgramBuyQtyFloor int64 `yaml:"program_buy_qty_floor" json:"program_buy_qty_floor"`

	// 선택: 프로그램 순매수 금액 비율 필터
	ProgramValueFilter         bool    `yaml:"program_value_filter" json:"program_value_filter"`
	ProgramValuePctOfTrading   float64 `yaml:"program_value_pct_of_trading" json:"program_value_pct_of_trading"`
	ProgramValuePctOfMarketCap float64 `yaml:"program_value_pct_of_market_cap" json:"program_value_pct_of_market_cap"`
}

// Sizing modes
const (
	SizingFixed  = "fixed"
	SizingBudget = "budget"
)

// Sizing 주문 수량 계산
type Sizing struct {
	Mode            string  `yaml:"mode" json:"mode"`
	FixedQty        int64   `yaml:"fixed_qty" json:"fixed_qty"`
	PortfolioBudget int64   `yaml:"portfolio_budget" json:"portfolio_budget"`
	PositionSizePct float64 `yaml:"position_size_pct" json:"position_size_pct"`
	MinQty          int64   `yaml:"min_qty" json:"min_qty"`
}

// Exit 청산 조건
type Exit struct {
	StopLossPct     float64 `yaml:"stop_loss_pct" json:"stop_loss_pct"` // 음수
	TimeBoxDays     int     `yaml:"time_box_days" json:"time_box_days"`
	TimeBoxRangePct float64 `yaml:"time_box_range_pct" json:"time_box_range_pct"`
	TrailingStopPct float64 `yaml:"trailing_stop_pct" json:"trailing_stop_pct"` // 양수
	TrendMAPeriod   int     `yaml:"trend_ma_period" json:"trend_ma_period"`
}

// Toggles are the variant-resolved behaviour switches
type Toggles struct {
	RequireSqueeze   bool
	TrendExit        bool
	FakeBreakoutExit bool
}

// Toggles resolves the variant preset
func (s StrategyConfig) Toggles() Toggles {
	switch s.Variant {
	case VariantBreakout:
		return Toggles{FakeBreakoutExit: true}
	case VariantSqueezeBreakout:
		return Toggles{RequireSqueeze: true, TrendExit: true}
	default:
		return Toggles{
			RequireSqueeze:   s.RequireSqueeze,
			TrendExit:        s.TrendExit,
			FakeBreakoutExit: s.FakeBreakoutExit,
		}
	}
}

// Default returns the built-in parameter set
func Default() *Config {
	return &Config{
		Universe: UniverseConfig{
			RefreshCheckpointsMin: []int{10, 30, 60, 90, 180, 300},
			MarketTiming: MarketTiming{
				KospiProxy:  "069500",
				KosdaqProxy: "229200",
				MAPeriod:    20,
				RisingDays:  2,
			},
			Filters: UniverseFilters{
				MinMarketCap:         50_000_000_000,     // 500억
				MaxMarketCap:         20_000_000_000_000, // 20조
				MinAvgTradingValue5D: 1_000_000_000,      // 10억
				Near52WHighPct:       15,
				BarsLookback:         90,
				MinBars:              50,
				BollingerPeriod:      20,
				BollingerStdDev:      2.0,
				ExcludeNamePatterns: []string{
					`(?i)(스팩|SPAC|스펙|\d+호$|제\d+호)`, // SPAC
					`\S{2,}우[BC]?$`,                     // 우선주 (삼성전자우, 현대차2우B). 대우 같은 두 글자 사명 제외
					`^(KODEX|TIGER|KBSTAR|ARIRANG|HANARO|KOSEF|ACE|SOL|RISE|PLUS)\s`,
					`ETN`,
				},
			},
			Scoring: Scoring{
				RSPeriodDays:       60,
				RSTopPercentile:    30,
				RSBonus:            50,
				GrowthThresholdPct: 25,
				GrowthBonus:        30,
			},
			Batch: Batch{
				ChunkSize:  10,
				ChunkDelay: time.Second,
			},
			PoolBSize:      20,
			MaxWatchlist:   50,
			PoolAPerMarket: 50,
		},
		Strategy: StrategyConfig{
			Name:    "breakout",
			Variant: VariantBreakout,
			Entry: Entry{
				SqueezeTolerance:   1.2,
				VolumeMultiplier:   1.5,
				ProgramBuyQtyFloor: 0,
			},
			Sizing: Sizing{
				Mode:            SizingBudget,
				FixedQty:        1,
				PortfolioBudget: 10_000_000,
				PositionSizePct: 10,
				MinQty:          1,
			},
			Exit: Exit{
				StopLossPct:     -5,
				TimeBoxDays:     10,
				TimeBoxRangePct: 5,
				TrailingStopPct: 8,
				TrendMAPeriod:   10,
			},
		},
	}
}
