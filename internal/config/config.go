package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/paybill/paybill/internal/types"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment DeploymentConfig `validate:"required"`
	Server     ServerConfig     `validate:"required"`
	Logging    LoggingConfig    `validate:"required"`
	Postgres   PostgresConfig   `validate:"required"`
	Billing    BillingConfig    `validate:"required"`
	Sentry     SentryConfig
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required"`
}

type ServerConfig struct {
	Address string `validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// BillingConfig carries jurisdiction and consolidation policy. The GST
// rate and currency defaults are configuration rather than constants so
// that a deployment outside Australia does not require a code change.
type BillingConfig struct {
	GSTRate         decimal.Decimal `validate:"required"`
	DefaultCurrency string          `validate:"required,len=3"`
	DefaultLocale   string          `validate:"required"`

	// Consolidation thresholds, in days and item counts
	OverdueAfterDays int `validate:"required,gt=0"`
	ReadyAfterDays   int `validate:"required,gt=0"`
	ReadyMinItems    int `validate:"required,gt=0"`
}

type SentryConfig struct {
	Enabled     bool    `default:"false"`
	DSN         string  `default:""`
	Environment string  `default:""`
	SampleRate  float64 `default:"1.0"`
}

func NewConfig() (*Configuration, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/paybill")

	v.SetEnvPrefix("PAYBILL")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file if exists
	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	}

	var config Configuration
	if err := v.Unmarshal(&config, viper.DecodeHook(decimalDecodeHook())); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", string(types.ModeLocal))
	v.SetDefault("server.address", ":8080")
	v.SetDefault("logging.level", string(types.LogLevelInfo))
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "paybill")
	v.SetDefault("postgres.dbname", "paybill")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("billing.gstrate", "0.10")
	v.SetDefault("billing.defaultcurrency", "AUD")
	v.SetDefault("billing.defaultlocale", "en-AU")
	v.SetDefault("billing.overdueafterdays", 30)
	v.SetDefault("billing.readyafterdays", 7)
	v.SetDefault("billing.readyminitems", 3)
}

func (c Configuration) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// GetDefaultConfig returns a default configuration for local development
// This is useful for running scripts or other non-web applications
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Server:     ServerConfig{Address: ":8080"},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		Billing: BillingConfig{
			GSTRate:          decimal.NewFromFloat(0.10),
			DefaultCurrency:  "AUD",
			DefaultLocale:    "en-AU",
			OverdueAfterDays: 30,
			ReadyAfterDays:   7,
			ReadyMinItems:    3,
		},
	}
}

func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"user=%s password=%s dbname=%s host=%s port=%d sslmode=%s",
		c.User,
		c.Password,
		c.DBName,
		c.Host,
		c.Port,
		c.SSLMode,
	)
}
