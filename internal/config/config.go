package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         string
	DBDSN        string
	LogFile      string
	RedisAddr    string
	CacheTTL     time.Duration
	TaxRates     string
	TemplatesDir string
}

func Load() Config {
	// .env is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[config] could not read .env: %v", err)
	}

	port := getenv("PORT", "8080")
	dsn := getenv("DB_DSN", "cotizador.db") // sqlite file in project root
	logFile := getenv("LOG_FILE", "./cotizador.log")
	redisAddr := os.Getenv("REDIS_ADDR") // empty keeps the cache in process
	taxRates := getenv("TAX_RATES", "MX=16,US=0,CO=19,ES=21")
	templates := getenv("TEMPLATES_DIR", "./web/templates")

	ttl, err := time.ParseDuration(getenv("CACHE_TTL", "10m"))
	if err != nil || ttl <= 0 {
		log.Printf("[config] bad CACHE_TTL, using 10m")
		ttl = 10 * time.Minute
	}

	cfg := Config{
		Port:         port,
		DBDSN:        dsn,
		LogFile:      logFile,
		RedisAddr:    redisAddr,
		CacheTTL:     ttl,
		TaxRates:     taxRates,
		TemplatesDir: templates,
	}
	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s REDIS_ADDR=%s CACHE_TTL=%s TAX_RATES=%s TEMPLATES_DIR=%s",
		cfg.Port, cfg.DBDSN, cfg.LogFile, cfg.RedisAddr, cfg.CacheTTL, cfg.TaxRates, cfg.TemplatesDir)
	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
