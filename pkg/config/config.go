// pkg/config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Access modes for exchanged tokens.
const (
	AccessModeOffline = "offline" // long-lived shop token
	AccessModeOnline  = "online"  // token bound to the installing user
)

type Config struct {
	Env      string
	HTTPAddr string

	// App credentials issued by the platform.
	APIKey    string
	APISecret string

	// HostURL is the public base URL of the embedding host; the OAuth
	// callback is HostURL + "/auth/callback".
	HostURL string

	// Scopes requested during install, in order.
	Scopes []string

	AccessMode string // offline | online

	// Webhook topics registered with the platform after a successful install.
	WebhookTopics []string

	// Storage backends. DatabaseURL selects the Postgres shop store,
	// RedisURL the Redis store and nonce tracker; neither set -> in-memory.
	DatabaseURL string
	RedisURL    string

	NonceTTL        time.Duration
	ExchangeTimeout time.Duration
	ProxyTimeout    time.Duration
}

// fileConfig mirrors the optional YAML file (REDHIO_CONFIG). Env vars win
// over file values so deployments can override a checked-in file.
type fileConfig struct {
	Env           string   `yaml:"env"`
	HTTPAddr      string   `yaml:"http_addr"`
	APIKey        string   `yaml:"api_key"`
	APISecret     string   `yaml:"api_secret"`
	HostURL       string   `yaml:"host_url"`
	Scopes        []string `yaml:"scopes"`
	AccessMode    string   `yaml:"access_mode"`
	WebhookTopics []string `yaml:"webhook_topics"`
	DatabaseURL   string   `yaml:"database_url"`
	RedisURL      string   `yaml:"redis_url"`
}

func Load() Config {
	_ = godotenv.Load()

	var fc fileConfig
	if path := os.Getenv("REDHIO_CONFIG"); path != "" {
		if b, err := os.ReadFile(path); err == nil {
			if err := yaml.Unmarshal(b, &fc); err != nil {
				log.Printf("[WARN] %s: %v", path, err)
			}
		} else {
			log.Printf("[WARN] REDHIO_CONFIG: %v", err)
		}
	}

	cfg := Config{
		Env:             env("REDHIO_ENV", fallback(fc.Env, "dev")),
		HTTPAddr:        env("REDHIO_HTTP_ADDR", fallback(fc.HTTPAddr, ":8080")),
		APIKey:          env("REDHIO_API_KEY", fc.APIKey),
		APISecret:       env("REDHIO_API_SECRET", fc.APISecret),
		HostURL:         strings.TrimRight(env("REDHIO_HOST_URL", fallback(fc.HostURL, "http://localhost:8080")), "/"),
		Scopes:          envList("REDHIO_SCOPES", fc.Scopes),
		AccessMode:      env("REDHIO_ACCESS_MODE", fallback(fc.AccessMode, AccessModeOffline)),
		WebhookTopics:   envList("REDHIO_WEBHOOK_TOPICS", fc.WebhookTopics),
		DatabaseURL:     env("DATABASE_URL", fc.DatabaseURL),
		RedisURL:        env("REDIS_URL", fc.RedisURL),
		NonceTTL:        envDur("REDHIO_NONCE_TTL_SEC", 600) * time.Second,
		ExchangeTimeout: envDur("REDHIO_EXCHANGE_TIMEOUT_SEC", 10) * time.Second,
		ProxyTimeout:    envDur("REDHIO_PROXY_TIMEOUT_SEC", 15) * time.Second,
	}
	if cfg.APIKey == "" || cfg.APISecret == "" {
		log.Println("[WARN] REDHIO_API_KEY / REDHIO_API_SECRET not set; handshakes will fail against the real platform")
	}
	if cfg.DatabaseURL == "" && cfg.RedisURL == "" {
		log.Println("[WARN] no DATABASE_URL or REDIS_URL; using in-memory shop store (lost on restart)")
	}
	return cfg
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envList(k string, def []string) []string {
	if v := os.Getenv(k); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if s := strings.TrimSpace(p); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return def
}

func envDur(k string, def int) time.Duration {
	if v := os.Getenv(k); v != "" {
		i, _ := strconv.Atoi(v)
		return time.Duration(i)
	}
	return time.Duration(def)
}

func fallback(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
