package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"QuantPulse/pkg/util"
)

var validate = validator.New()

type Config struct {
	Environment string `yaml:"environment" validate:"required"`
	Logging     struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"logging"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Port    int    `yaml:"port" default:"9091"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	ClickHouse struct {
		Host             string        `yaml:"host" validate:"required"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"quantpulse"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout     time.Duration `yaml:"write_timeout" default:"10s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"30s"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic" default:"quantpulse.signals"`
		RequiredAcks int      `yaml:"required_acks" default:"-1"`
		Compression  string   `yaml:"compression" default:"gzip"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			Linger       time.Duration `yaml:"linger" default:"500ms"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr" default:"localhost:6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Screener struct {
		Symbols       []string      `yaml:"symbols" validate:"min=1"`
		Timeframe     string        `yaml:"timeframe" default:"15m"`
		HistoryBars   int           `yaml:"history_bars" default:"200" validate:"gte=0"`
		Workers       int           `yaml:"workers" default:"4" validate:"gte=1,lte=64"`
		Interval      time.Duration `yaml:"interval" default:"1m"`
		SymbolTimeout time.Duration `yaml:"symbol_timeout" default:"15s"`
		CacheTTL      time.Duration `yaml:"cache_ttl" default:"30s"`
		FetchRPS      float64       `yaml:"fetch_rps" default:"10"`
	} `yaml:"screener"`
	Risk struct {
		AccountEquity   float64 `yaml:"account_equity" default:"10000" validate:"gt=0"`
		RiskPerTradePct float64 `yaml:"risk_per_trade_pct" default:"1" validate:"gt=0,lte=100"`
		ATRStopMultiple float64 `yaml:"atr_stop_multiple" default:"1.5" validate:"gt=0"`
		MinNotional     float64 `yaml:"min_notional"`
		FeeRate         float64 `yaml:"fee_rate" default:"0.0004"`
		SlippageBps     float64 `yaml:"slippage_bps" default:"5"`
		SpreadBps       float64 `yaml:"spread_bps" default:"2"`
		Profile         string  `yaml:"profile" default:"moderate" validate:"oneof=conservative moderate aggressive"`
	} `yaml:"risk"`
	Backtest struct {
		Timeframe   string  `yaml:"timeframe" default:"15m"`
		MinHistory  int     `yaml:"min_history" default:"100" validate:"gte=1"`
		StartEquity float64 `yaml:"start_equity" default:"10000" validate:"gt=0"`
		Workers     int     `yaml:"workers" default:"2" validate:"gte=1,lte=32"`
		From        string  `yaml:"from"`
		To          string  `yaml:"to"`
	} `yaml:"backtest"`
}

// Load reads and parses a YAML configuration file, fills defaults and
// validates required fields.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables
	if v := os.Getenv("SYMBOLS"); v != "" {
		c.Screener.Symbols = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("CLICKHOUSE_PORT"); v != "" {
		c.ClickHouse.Port = util.ParseIntDefault(v, c.ClickHouse.Port)
	}
	if v := os.Getenv("SCREENER_WORKERS"); v != "" {
		c.Screener.Workers = util.ParseIntDefault(v, c.Screener.Workers)
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	return nil
}
