package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the engine's full runtime configuration.
type Config struct {
	Environment string         `mapstructure:"environment" validate:"oneof=development staging production"`
	LogLevel    string         `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	Engine      EngineConfig   `mapstructure:"engine"`
	Broker      BrokerConfig   `mapstructure:"broker"`
	Session     SessionConfig  `mapstructure:"session"`
	Server      ServerConfig   `mapstructure:"server"`
}

// EngineConfig tunes the orchestrator's risk profile, scheduling, and
// journal location.
type EngineConfig struct {
	RiskProfile  string `mapstructure:"risk_profile" validate:"oneof=conservative moderate aggressive"`
	CyclePeriod  int    `mapstructure:"cycle_period_seconds" validate:"min=30"`
	JournalPath  string `mapstructure:"journal_path" validate:"required"`
	Indices      []string `mapstructure:"indices"`
	AccountBalance float64 `mapstructure:"account_balance" validate:"min=0"`
	RiskPerTrade float64 `mapstructure:"risk_per_trade" validate:"min=0,max=1"`
	ReportDir    string `mapstructure:"report_dir" validate:"required"`
	CandleDir    string `mapstructure:"candle_dir" validate:"required"`
}

// BrokerConfig carries the order-dispatch credentials and the real-trading
// kill switch, mirroring the FYERS environment variable contract.
type BrokerConfig struct {
	APIKey           string `mapstructure:"api_key"`
	APISecret        string `mapstructure:"api_secret"`
	ClientID         string `mapstructure:"client_id"`
	EnableRealTrading bool  `mapstructure:"enable_real_trading"`
}

// SessionConfig is the trading-session calendar the scheduler obeys.
type SessionConfig struct {
	StartHour   int `mapstructure:"start_hour" validate:"min=0,max=23"`
	StartMinute int `mapstructure:"start_minute" validate:"min=0,max=59"`
	EndHour     int `mapstructure:"end_hour" validate:"min=0,max=23"`
	EndMinute   int `mapstructure:"end_minute" validate:"min=0,max=59"`
}

// ServerConfig is the read-only reporting HTTP server.
type ServerConfig struct {
	HTTPPort     int    `mapstructure:"http_port" validate:"min=1024,max=65535"`
	Host         string `mapstructure:"host"`
	ReadTimeout  int    `mapstructure:"read_timeout" validate:"min=1"`
	WriteTimeout int    `mapstructure:"write_timeout" validate:"min=1"`
	EnableCORS   bool   `mapstructure:"enable_cors"`
}

// Load reads configuration from a .env file (if present) then the process
// environment, applying documented defaults before validation. An empty
// envFile falls back to config/.env.
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = "config/.env"
	}
	if err := godotenv.Load(envFile); err != nil {
		if os.Getenv("ENVIRONMENT") == "" {
			fmt.Printf("Warning: No .env file found at %s, using environment variables only\n", envFile)
		}
	}

	viper.SetConfigType("env")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.BindEnv("engine.risk_profile", "ENGINE_RISK_PROFILE")
	viper.BindEnv("engine.cycle_period_seconds", "ENGINE_CYCLE_PERIOD_SECONDS")
	viper.BindEnv("engine.journal_path", "ENGINE_JOURNAL_PATH")
	viper.BindEnv("engine.account_balance", "ENGINE_ACCOUNT_BALANCE")
	viper.BindEnv("engine.risk_per_trade", "ENGINE_RISK_PER_TRADE")
	viper.BindEnv("engine.report_dir", "ENGINE_REPORT_DIR")
	viper.BindEnv("engine.candle_dir", "ENGINE_CANDLE_DIR")

	viper.BindEnv("broker.api_key", "FYERS_API_KEY")
	viper.BindEnv("broker.api_secret", "FYERS_API_SECRET")
	viper.BindEnv("broker.client_id", "FYERS_CLIENT_ID")
	viper.BindEnv("broker.enable_real_trading", "ENABLE_REAL_TRADING")

	viper.BindEnv("session.start_hour", "SESSION_START_HOUR")
	viper.BindEnv("session.start_minute", "SESSION_START_MINUTE")
	viper.BindEnv("session.end_hour", "SESSION_END_HOUR")
	viper.BindEnv("session.end_minute", "SESSION_END_MINUTE")

	viper.BindEnv("server.http_port", "SERVER_HTTP_PORT")
	viper.BindEnv("server.host", "SERVER_HOST")
	viper.BindEnv("server.read_timeout", "SERVER_READ_TIMEOUT")
	viper.BindEnv("server.write_timeout", "SERVER_WRITE_TIMEOUT")

	setDefaults()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if len(config.Engine.Indices) == 0 {
		config.Engine.Indices = []string{"NIFTY", "BANKNIFTY", "FINNIFTY", "SENSEX", "MIDCPNIFTY"}
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// Validate checks the fields the engine cannot safely run without.
func (c *Config) Validate() error {
	if c.Engine.JournalPath == "" {
		return errors.New("engine journal path is required")
	}
	if c.Engine.ReportDir == "" {
		return errors.New("engine report dir is required")
	}
	if c.Engine.CandleDir == "" {
		return errors.New("engine candle dir is required")
	}
	switch c.Engine.RiskProfile {
	case "conservative", "moderate", "aggressive":
	default:
		return errors.New("engine risk profile must be one of conservative, moderate, aggressive")
	}
	if c.Broker.EnableRealTrading && (c.Broker.APIKey == "" || c.Broker.APISecret == "" || c.Broker.ClientID == "") {
		return errors.New("real trading requires broker api_key, api_secret, and client_id")
	}
	if c.Server.HTTPPort == 0 {
		return errors.New("HTTP port is required")
	}
	return nil
}

// String masks secrets for safe logging.
func (c *Config) String() string {
	masked := *c
	masked.Broker.APIKey = "***"
	masked.Broker.APISecret = "***"
	return fmt.Sprintf("%+v", masked)
}

func setDefaults() {
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	viper.SetDefault("engine.risk_profile", "moderate")
	viper.SetDefault("engine.cycle_period_seconds", 300)
	viper.SetDefault("engine.journal_path", "data/trades.jsonl")
	viper.SetDefault("engine.account_balance", 100000)
	viper.SetDefault("engine.risk_per_trade", 0.01)
	viper.SetDefault("engine.report_dir", "data/reports")
	viper.SetDefault("engine.candle_dir", "data/candles")

	viper.SetDefault("broker.enable_real_trading", false)

	viper.SetDefault("session.start_hour", 9)
	viper.SetDefault("session.start_minute", 15)
	viper.SetDefault("session.end_hour", 15)
	viper.SetDefault("session.end_minute", 30)

	viper.SetDefault("server.http_port", 8080)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.read_timeout", 10)
	viper.SetDefault("server.write_timeout", 10)
	viper.SetDefault("server.enable_cors", true)
}
