package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Host            string        `yaml:"host" default:"0.0.0.0"`
		Port            int           `yaml:"port" default:"5001"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		CORSOrigins     []string      `yaml:"cors_origins" default:"[\"*\"]"`
		DisableCORS     bool          `yaml:"disable_cors"`
		SlowThreshold   time.Duration `yaml:"slow_threshold" default:"2s"`
	} `yaml:"server"`
	Logger struct {
		Level   string `yaml:"level" default:"info"`
		Format  string `yaml:"format" default:"console"`
		Output  string `yaml:"output" default:"stdout"`
		Collect struct {
			Enabled   bool          `yaml:"enabled"`
			Interval  time.Duration `yaml:"interval" default:"30s"`
			Threshold int           `yaml:"threshold" default:"100"`
		} `yaml:"collect"`
	} `yaml:"logger"`
	Backend struct {
		Type     string `yaml:"type" default:"clickhouse"`
		SeedFile string `yaml:"seed_file"`
	} `yaml:"backend"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"umkm"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout     time.Duration `yaml:"write_timeout" default:"10s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"30s"`
		InitSchema       bool          `yaml:"init_schema"`
	} `yaml:"clickhouse"`
	Postgres struct {
		URL      string `yaml:"url"`
		MaxConns int32  `yaml:"max_conns" default:"10"`
	} `yaml:"postgres"`
	ModelServer struct {
		URL     string        `yaml:"url"`
		Timeout time.Duration `yaml:"timeout" default:"3s"`
		Retries int           `yaml:"retries"`
	} `yaml:"model_server"`
	Artifacts struct {
		Dir string `yaml:"dir" default:"models"`
	} `yaml:"artifacts"`
	Holidays struct {
		File string `yaml:"file" default:"data/hari_libur.csv"`
		Year int    `yaml:"year"`
	} `yaml:"holidays"`
	Forecast struct {
		WindowSize      int           `yaml:"window_size" default:"4"`
		HistoryWeeks    int           `yaml:"history_weeks" default:"5"`
		WindowPolicy    string        `yaml:"window_policy" default:"fixed"`
		PadShortHistory bool          `yaml:"pad_short_history"`
		MaxSteps        int           `yaml:"max_steps" default:"12"`
		LookbackWeeks   int           `yaml:"lookback_weeks"`
		CacheTTL        time.Duration `yaml:"cache_ttl" default:"10m"`
	} `yaml:"forecast"`
	RateLimit struct {
		Enabled      bool    `yaml:"enabled"`
		Capacity     float64 `yaml:"capacity" default:"10"`
		RefillPerSec float64 `yaml:"refill_per_sec" default:"1"`
	} `yaml:"rate_limit"`
	Products []Product `yaml:"products"`
	Kafka    struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		RequiredAcks int      `yaml:"required_acks" default:"-1"`
		Compression  string   `yaml:"compression" default:"gzip"`
		EventsTopic  string   `yaml:"events_topic" default:"salescast.forecasts"`
		AuditTopic   string   `yaml:"audit_topic" default:"salescast.audit"`
		LogsTopic    string   `yaml:"logs_topic" default:"salescast.logs"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			Linger       time.Duration `yaml:"linger" default:"100ms"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID     string        `yaml:"group_id" default:"salescast"`
			OffsetReset string        `yaml:"auto_offset_reset" default:"earliest"`
			Workers     int           `yaml:"workers" default:"2"`
			BufferSize  int           `yaml:"buffer_size" default:"64"`
			RetryMax    int           `yaml:"retry_max" default:"3"`
			BackoffMin  time.Duration `yaml:"backoff_min" default:"50ms"`
			BackoffMax  time.Duration `yaml:"backoff_max" default:"2s"`
			DLQTopic    string        `yaml:"dlq_topic"`
			MinBytes    int           `yaml:"min_bytes" default:"1"`
			MaxBytes    int           `yaml:"max_bytes" default:"10000000"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr" default:"localhost:6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
}

// Product is a catalog entry. UnitPrice is a decimal string to keep prices exact.
type Product struct {
	Name      string `yaml:"name"`
	UnitPrice string `yaml:"unit_price"`
	Model     string `yaml:"model"`
}

// DefaultProducts is the catalog used when the config lists none.
var DefaultProducts = []Product{
	{Name: "Kerupuk Kulit", UnitPrice: "7500"},
	{Name: "Stik Bawang", UnitPrice: "6000"},
	{Name: "Keripik Bawang", UnitPrice: "5000"},
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	c, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML, then applies a .env file (if present)
// and environment overrides before validating.
func LoadWithEnv(path string) (*Config, error) {
	c, err := read(path)
	if err != nil {
		return nil, err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	c.applyEnv()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func read(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML and fills defaults. It does not validate.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	if len(c.Products) == 0 {
		c.Products = append([]Product(nil), DefaultProducts...)
	}
	return &c, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("SALESCAST_BACKEND"); v != "" {
		c.Backend.Type = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Postgres.URL = v
	}
	if v := os.Getenv("MODEL_SERVER_URL"); v != "" {
		c.ModelServer.URL = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
		c.Redis.Enabled = true
	}
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.Backend.Type {
	case "clickhouse":
		if c.ClickHouse.Host == "" {
			return fmt.Errorf("clickhouse.host is required for backend 'clickhouse'")
		}
	case "postgres":
		if c.Postgres.URL == "" {
			return fmt.Errorf("postgres.url is required for backend 'postgres'")
		}
	case "memory":
	default:
		return fmt.Errorf("backend.type must be 'clickhouse', 'postgres' or 'memory', got '%s'", c.Backend.Type)
	}
	if c.ModelServer.URL == "" {
		return fmt.Errorf("model_server.url is required")
	}
	if c.Holidays.File == "" {
		return fmt.Errorf("holidays.file is required")
	}
	if c.Forecast.WindowSize < 1 {
		return fmt.Errorf("forecast.window_size must be positive")
	}
	if c.Forecast.HistoryWeeks < 1 {
		return fmt.Errorf("forecast.history_weeks must be positive")
	}
	if c.Forecast.MaxSteps < 1 {
		return fmt.Errorf("forecast.max_steps must be positive")
	}
	if lb := c.Forecast.LookbackWeeks; lb != 0 {
		// the oldest week read only seeds the prior-week column
		need := c.Forecast.WindowSize
		if c.Forecast.HistoryWeeks > need {
			need = c.Forecast.HistoryWeeks
		}
		if lb < need+1 {
			return fmt.Errorf("forecast.lookback_weeks must be 0 or at least %d, got %d", need+1, lb)
		}
	}
	if c.Forecast.WindowPolicy != "fixed" && c.Forecast.WindowPolicy != "growing" {
		return fmt.Errorf("forecast.window_policy must be 'fixed' or 'growing', got '%s'", c.Forecast.WindowPolicy)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	seen := make(map[string]bool, len(c.Products))
	for i, p := range c.Products {
		if p.Name == "" {
			return fmt.Errorf("products[%d].name is required", i)
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate product %q", p.Name)
		}
		seen[p.Name] = true
		price, err := decimal.NewFromString(p.UnitPrice)
		if err != nil {
			return fmt.Errorf("products[%d].unit_price: %w", i, err)
		}
		if price.IsNegative() {
			return fmt.Errorf("products[%d].unit_price must not be negative", i)
		}
	}
	return nil
}
