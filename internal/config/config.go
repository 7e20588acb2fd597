package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DBDSN       string
	LogFile     string
	TZName      string
	BodyLimit   int
	RatePerMin  int
	TraceStdout bool
	InviteSweep time.Duration
	SeedDemo    bool
}

// Load reads .env when present, then the environment.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Port:        env("PORT", "8080"),
		DBDSN:       env("DB_DSN", "homestock.db"), // sqlite file in working dir
		LogFile:     os.Getenv("LOG_FILE"),
		TZName:      env("TZ_NAME", "UTC"),
		BodyLimit:   envInt("BODY_LIMIT", 1<<20),
		RatePerMin:  envInt("RATE_LIMIT_PER_MIN", 120),
		TraceStdout: envBool("TRACE_STDOUT", false),
		InviteSweep: envDuration("INVITE_SWEEP_INTERVAL", 0),
		SeedDemo:    envBool("SEED_DEMO", false),
	}
	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s TZ_NAME=%s BODY_LIMIT=%d RATE_LIMIT_PER_MIN=%d TRACE_STDOUT=%t INVITE_SWEEP_INTERVAL=%s SEED_DEMO=%t",
		cfg.Port, cfg.DBDSN, cfg.LogFile, cfg.TZName, cfg.BodyLimit, cfg.RatePerMin, cfg.TraceStdout, cfg.InviteSweep, cfg.SeedDemo)
	return cfg
}

// Location resolves TZName, falling back to UTC on an unknown zone.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TZName)
	if err != nil {
		log.Printf("[config] unknown TZ_NAME %q, using UTC", c.TZName)
		return time.UTC
	}
	return loc
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func envBool(key string, def bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return def
	}
	return b
}

func envDuration(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d < 0 {
		return def
	}
	return d
}
