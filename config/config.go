package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	// LogFile moves logs off stderr into a rotated file; empty keeps stderr.
	LogFile     string `env:"LOG_FILE" envDefault:""`
	API         API
	Session     Session
	Redis       Redis
	Cache       Cache
	Jobs        Jobs
	GoogleDrive GoogleDrive
	PlotDir     string `env:"PLOT_DIR" envDefault:"."`
}

type API struct {
	Debug    bool          `env:"API_DEBUG" envDefault:"false"`
	Timeout  time.Duration `env:"API_TIMEOUT" envDefault:"30s"`
	StockApi StockApi
}

type StockApi struct {
	Url string `env:"STOCK_API_URL" envDefault:"http://localhost:8000"`
}

type Session struct {
	// Storage is either "file" or "redis".
	Storage    string        `env:"SESSION_STORAGE" envDefault:"file"`
	File       string        `env:"SESSION_FILE" envDefault:".stock_risk_session.json"`
	KeyPrefix  string        `env:"SESSION_KEY_PREFIX" envDefault:"stock_risk_client"`
	Expiration time.Duration `env:"SESSION_EXPIRATION" envDefault:"0s"`
}

type Redis struct {
	Enabled  bool   `env:"REDIS_ENABLED" envDefault:"false"`
	Host     string `env:"REDIS_HOST" envDefault:"localhost"`
	Port     int    `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type Cache struct {
	SearchExpiration time.Duration `env:"CACHE_SEARCH_EXPIRATION" envDefault:"1h"`
}

type Jobs struct {
	SessionCheckInterval time.Duration `env:"SESSION_CHECK_JOB_INTERVAL" envDefault:"1m"`
}

type GoogleDrive struct {
	// empty disables report upload
	CredentialsFile string `env:"GOOGLE_DRIVE_CREDENTIALS_FILE" envDefault:""`
}

func MustLoad() *Config {
	_ = godotenv.Load(".env")

	cfg := &Config{}

	opts := env.Options{RequiredIfNoDef: true}

	if err := env.ParseWithOptions(cfg, opts); err != nil {
		log.Fatalf("parse config error: %s", err)
	}

	return cfg
}
