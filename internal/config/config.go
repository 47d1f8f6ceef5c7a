package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	AppPort          string
	AppEnv           string
	LogLevel         string
	DBDSN            string
	DBConnectRetries int
	JWTSecret        string
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	CORSOrigins      string
}

// Load reads the process environment. main calls godotenv.Load first.
func Load() Config {
	cfg, err := LoadFrom(os.LookupEnv)
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadFrom builds a Config from an arbitrary lookup function.
func LoadFrom(lookup func(string) (string, bool)) (Config, error) {
	e := env{lookup: lookup}

	cfg := Config{
		AppPort:          e.get("APP_PORT", "8080"),
		AppEnv:           e.get("APP_ENV", "development"),
		LogLevel:         e.get("LOG_LEVEL", "info"),
		DBDSN:            e.must("DB_DSN"),
		DBConnectRetries: e.int("DB_CONNECT_RETRIES", 5),
		JWTSecret:        e.must("JWT_SECRET"),
		RedisAddr:        e.get("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    e.get("REDIS_PASSWORD", ""),
		RedisDB:          e.int("REDIS_DB", 0),
		CORSOrigins:      e.origins("CORS_ORIGINS", "http://127.0.0.1:3000, http://localhost:3000"),
	}
	if len(e.missing) > 0 {
		return Config{}, fmt.Errorf("missing env: %s", strings.Join(e.missing, ", "))
	}
	if len(e.invalid) > 0 {
		return Config{}, fmt.Errorf("invalid env: %s", strings.Join(e.invalid, ", "))
	}
	return cfg, nil
}

type env struct {
	lookup  func(string) (string, bool)
	missing []string
	invalid []string
}

func (e *env) get(k, def string) string {
	v, ok := e.lookup(k)
	if !ok || strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}

func (e *env) must(k string) string {
	v := e.get(k, "")
	if v == "" {
		e.missing = append(e.missing, k)
	}
	return v
}

// origins rejects "*": fiber's cors refuses a wildcard origin when credentials are allowed.
func (e *env) origins(k, def string) string {
	v := e.get(k, def)
	for _, o := range strings.Split(v, ",") {
		if strings.TrimSpace(o) == "*" {
			e.invalid = append(e.invalid, k)
			return def
		}
	}
	return v
}

func (e *env) int(k string, def int) int {
	v := e.get(k, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.invalid = append(e.invalid, k)
		return def
	}
	return n
}
