package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database (시그널 저널, 선택)
	Database DatabaseConfig

	// Redis (시세 캐시, 선택)
	Redis RedisConfig

	// External APIs
	KIS   KISConfig
	Naver NaverConfig

	// Engine
	Engine EngineConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Enabled reports whether a journal database is configured
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// KISConfig holds KIS (한국투자증권) API configuration
type KISConfig struct {
	AppKey    string
	AppSecret string
	AccountNo string
	BaseURL   string
	IsVirtual bool // 모의투자 여부

	// 초당 요청 한도 (KIS 실전 20/s, 모의 2/s)
	RequestsPerSecond int
}

// NaverConfig holds Naver Finance configuration
type NaverConfig struct {
	BaseURL string
}

// EngineConfig holds universe/strategy runtime settings
type EngineConfig struct {
	StateDir           string // 포지션 상태 / Pool A 스냅샷 저장 디렉토리
	StrategyConfigPath string // YAML 전략 설정 (비어 있으면 기본값)
	PaperMode          bool   // true면 보유 종목을 브로커 잔고 대신 내부 포지션으로 계산
	TradeInterval      time.Duration
}

// PositionStatePath returns the position-state JSON file path
func (e EngineConfig) PositionStatePath() string {
	return filepath.Join(e.StateDir, "breakout_positions.json")
}

// PoolAPath returns the Pool A snapshot file path
func (e EngineConfig) PoolAPath() string {
	return filepath.Join(e.StateDir, "pool_a.json")
}

// PaperBookPath returns the paper-trading holdings file path
func (e EngineConfig) PaperBookPath() string {
	return filepath.Join(e.StateDir, "paper_holdings.json")
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		KIS: KISConfig{
			AppKey:            getEnv("KIS_APP_KEY", ""),
			AppSecret:         getEnv("KIS_APP_SECRET", ""),
			AccountNo:         getEnv("KIS_ACCOUNT_NO", ""),
			BaseURL:           getEnv("KIS_BASE_URL", "https://openapi.koreainvestment.com:9443"),
			IsVirtual:         getEnvAsBool("KIS_IS_VIRTUAL", false),
			RequestsPerSecond: getEnvAsInt("KIS_RPS", 15),
		},

		Naver: NaverConfig{
			BaseURL: getEnv("NAVER_BASE_URL", "https://finance.naver.com"),
		},

		Engine: EngineConfig{
			StateDir:           getEnv("STATE_DIR", "data"),
			StrategyConfigPath: getEnv("STRATEGY_CONFIG", ""),
			PaperMode:          getEnvAsBool("PAPER_MODE", true),
			TradeInterval:      getEnvAsDuration("TRADE_INTERVAL", "30s"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Engine.StateDir == "" {
		return fmt.Errorf("STATE_DIR must not be empty")
	}

	if c.KIS.RequestsPerSecond <= 0 {
		return fmt.Errorf("KIS_RPS must be positive, got %d", c.KIS.RequestsPerSecond)
	}

	// 실거래 모드에서는 잔고 조회를 위해 계좌번호 필수
	if !c.Engine.PaperMode && c.KIS.AccountNo == "" {
		return fmt.Errorf("KIS_ACCOUNT_NO is required when PAPER_MODE=false")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
