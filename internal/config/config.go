package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Ingest   IngestConfig   `mapstructure:"ingest"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// CatalogConfig holds marketplace endpoints and HTTP client settings
type CatalogConfig struct {
	MenuURL    string `mapstructure:"menu_url"`
	FiltersURL string `mapstructure:"filters_url"` // contains {shard}
	ListURL    string `mapstructure:"list_url"`    // contains {shard}
	DetailURL  string `mapstructure:"detail_url"`

	Timeout              time.Duration `mapstructure:"timeout"`
	MaxRetries           int           `mapstructure:"max_retries"`
	MaxWorkers           int           `mapstructure:"max_workers"` // per category page fan-out, <= 0 is uncapped
	MaxRequestsPerSecond int           `mapstructure:"max_requests_per_second"`
	Cooldown             time.Duration `mapstructure:"cooldown"` // circuit breaker after HTTP 429
	UserAgent            string        `mapstructure:"user_agent"`
	Proxies              []string      `mapstructure:"proxies"`
}

// DatabaseConfig holds the optional product archive connection
type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.Name)
}

// RedisConfig holds Redis connection details
type RedisConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	Password      string `mapstructure:"password"`
	Database      int    `mapstructure:"database"`
	AwaitsTable   string `mapstructure:"awaits_table"`
	AtomicReplace bool   `mapstructure:"atomic_replace"`
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// IngestConfig drives one fetch cycle
type IngestConfig struct {
	StackName        string   `mapstructure:"stack_name"`
	ReadyStackName   string   `mapstructure:"ready_stack_name"`
	SuggestStackName string   `mapstructure:"suggest_stack_name"`
	PageLimit        int      `mapstructure:"page_limit"`
	MaxCount         int      `mapstructure:"max_count"`
	CategoryWorkers  int      `mapstructure:"category_workers"`
	Categories       []string `mapstructure:"categories"`
	Filters          []string `mapstructure:"filters"` // "Facet=Value"
}

// Load loads configuration from an optional YAML file, .env and environment variables
func Load() (*Config, error) {
	// .env is optional, real environment wins
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		log.Warn("config.yaml not found, using defaults and environment")
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)

	v.SetDefault("catalog.menu_url", "https://static-basket-01.wbbasket.ru/vol0/data/main-menu-ru-ru-v2.json")
	v.SetDefault("catalog.filters_url", "https://catalog.wb.ru/catalog/{shard}/v4/filters")
	v.SetDefault("catalog.list_url", "https://catalog.wb.ru/catalog/{shard}/v2/catalog")
	v.SetDefault("catalog.detail_url", "https://card.wb.ru/cards/v2/detail")
	v.SetDefault("catalog.timeout", 30*time.Second)
	v.SetDefault("catalog.max_retries", 2)
	v.SetDefault("catalog.max_workers", 10)
	v.SetDefault("catalog.max_requests_per_second", 20)
	v.SetDefault("catalog.cooldown", 5*time.Minute)
	v.SetDefault("catalog.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "wbbot")
	v.SetDefault("database.user", "wbbot")
	v.SetDefault("database.password", "wbbot")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.database", 0)
	v.SetDefault("redis.awaits_table", "awaits")
	v.SetDefault("redis.atomic_replace", false)

	v.SetDefault("ingest.stack_name", "products")
	v.SetDefault("ingest.ready_stack_name", "approved_products")
	v.SetDefault("ingest.suggest_stack_name", "suggested_products")
	v.SetDefault("ingest.page_limit", 100)
	v.SetDefault("ingest.max_count", 1000)
	v.SetDefault("ingest.category_workers", 4)
	v.SetDefault("ingest.categories", []string{})
	v.SetDefault("ingest.filters", []string{})
}

// SetupLogging applies the log section to the global logger
func SetupLogging(cfg LogConfig) error {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	log.SetLevel(level)
	if cfg.JSON {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}
