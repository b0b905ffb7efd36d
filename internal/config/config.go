// Package config reads server settings from the environment, then lets
// command-line flags override them.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

const (
	StoreFile     = "file"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

type Config struct {
	Addr           string
	PeerStore      string
	PeerConfig     string
	RedisAddr      string
	DSN            string
	AllowedOrigins []string
	SendBuffer     int
	MaxMessageSize int64
}

func defaultConfig() Config {
	return Config{
		Addr:           ":5000",
		PeerStore:      StoreFile,
		PeerConfig:     "config.json",
		RedisAddr:      "localhost:6379",
		AllowedOrigins: []string{"*"},
		SendBuffer:     256,
		MaxMessageSize: 4096,
	}
}

// FromEnv starts from the defaults and applies any variables that are set.
func FromEnv() Config {
	cfg := defaultConfig()

	if v := os.Getenv("ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("PEER_STORE"); v != "" {
		cfg.PeerStore = strings.ToLower(v)
	}
	if v := os.Getenv("PEER_CONFIG"); v != "" {
		cfg.PeerConfig = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	cfg.DSN = os.Getenv("DB_DSN")
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = parseList(v)
	}
	if v := os.Getenv("SEND_BUFFER"); v != "" {
		cfg.SendBuffer = parseInt(v, cfg.SendBuffer)
	}
	if v := os.Getenv("MAX_MESSAGE_SIZE"); v != "" {
		cfg.MaxMessageSize = int64(parseInt(v, int(cfg.MaxMessageSize)))
	}
	return cfg
}

// Load reads the environment and then parses args on top of it.
func Load(name string, args []string) (Config, error) {
	cfg := FromEnv()

	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "http service address")
	fs.StringVar(&cfg.PeerStore, "peer-store", cfg.PeerStore, "where the peer server list lives: file, redis or postgres")
	fs.StringVar(&cfg.PeerConfig, "peer-config", cfg.PeerConfig, "peer server config file (.json, .jsonc, .yaml)")
	fs.StringVar(&cfg.RedisAddr, "redis-addr", cfg.RedisAddr, "redis address for --peer-store=redis")
	fs.StringVar(&cfg.DSN, "db-dsn", cfg.DSN, "postgres DSN for --peer-store=postgres")
	fs.StringSliceVar(&cfg.AllowedOrigins, "allowed-origins", cfg.AllowedOrigins, "origins allowed to open a websocket (* for any)")
	fs.IntVar(&cfg.SendBuffer, "send-buffer", cfg.SendBuffer, "outbound messages queued per connection before it is dropped")
	fs.Int64Var(&cfg.MaxMessageSize, "max-message-size", cfg.MaxMessageSize, "largest inbound websocket message in bytes")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.PeerStore {
	case StoreFile, StoreRedis:
	case StorePostgres:
		if c.DSN == "" {
			return fmt.Errorf("peer store %q needs DB_DSN or --db-dsn", c.PeerStore)
		}
	default:
		return fmt.Errorf("unknown peer store %q", c.PeerStore)
	}
	if c.SendBuffer <= 0 {
		return fmt.Errorf("send buffer must be positive, got %d", c.SendBuffer)
	}
	if c.MaxMessageSize <= 0 {
		return fmt.Errorf("max message size must be positive, got %d", c.MaxMessageSize)
	}
	return nil
}

func parseList(v string) []string {
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseInt(value string, defaultValue int) int {
	if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
		return parsed
	}
	return defaultValue
}
