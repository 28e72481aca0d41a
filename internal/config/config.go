package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration. Each field maps to one
// environment variable; required values abort startup via must().
type Config struct {
	Env        string // application environment (dev/prod)
	Port       string // HTTP port to listen on
	DBUser     string // database username
	DBPass     string // database password (optional)
	DBHost     string // database host address
	DBPort     string // database port number
	DBName     string // database name
	JWTSecret  string // secret used to sign session tokens
	BcryptCost int    // bcrypt cost for password hashing

	SessionTTL   time.Duration // session token lifetime
	CodeTTL      time.Duration // verification code lifetime
	CodeCooldown time.Duration // minimum delay between code resends

	SMTP SMTPConfig
}

// SMTPConfig carries the outbound mail settings. When Host or From is
// empty, mail sending is disabled and code emails are skipped with a
// logged warning instead of failing requests.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Secure   bool // connect with implicit TLS
}

// Enabled reports whether the sender has enough configuration to
// actually deliver mail.
func (s SMTPConfig) Enabled() bool {
	return s.Host != "" && s.From != ""
}

// Load reads the .env file (if present) and builds the Config from the
// environment. Missing required variables are fatal.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Env:        envStr("APP_ENV", "dev"),
		Port:       must("APP_PORT"),
		DBUser:     must("DB_USER"),
		DBPass:     os.Getenv("DB_PASS"),
		DBHost:     must("DB_HOST"),
		DBPort:     must("DB_PORT"),
		DBName:     must("DB_NAME"),
		JWTSecret:  must("JWT_SECRET"),
		BcryptCost: envInt("BCRYPT_COST", 10),

		SessionTTL:   envDur("SESSION_TTL", 6*time.Hour),
		CodeTTL:      envDur("CODE_TTL", 5*time.Minute),
		CodeCooldown: envDur("CODE_COOLDOWN", 30*time.Second),

		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     envInt("SMTP_PORT", 587),
			Username: os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASS"),
			From:     os.Getenv("SMTP_FROM"),
			Secure:   envBool("SMTP_SECURE", false),
		},
	}
}

// must retrieves a required environment variable or exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envBool(k string, d bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "True", "yes", "on":
		return true
	case "0", "false", "FALSE", "False", "no", "off":
		return false
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
