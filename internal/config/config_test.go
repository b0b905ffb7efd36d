package config

import (
	"reflect"
	"strings"
	"testing"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"ADDR", "PEER_STORE", "PEER_CONFIG", "REDIS_ADDR", "DB_DSN", "ALLOWED_ORIGINS", "SEND_BUFFER", "MAX_MESSAGE_SIZE"} {
		t.Setenv(k, "")
	}
	if got := FromEnv(); !reflect.DeepEqual(got, defaultConfig()) {
		t.Errorf("FromEnv() = %+v, want defaults", got)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("ADDR", ":9000")
	t.Setenv("PEER_STORE", "Redis")
	t.Setenv("ALLOWED_ORIGINS", "http://a.example, http://b.example,,")
	t.Setenv("SEND_BUFFER", "32")
	t.Setenv("MAX_MESSAGE_SIZE", "-1")

	cfg := FromEnv()
	if cfg.Addr != ":9000" || cfg.PeerStore != StoreRedis || cfg.SendBuffer != 32 {
		t.Errorf("cfg = %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.AllowedOrigins, []string{"http://a.example", "http://b.example"}) {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
	if cfg.MaxMessageSize != 4096 {
		t.Errorf("invalid MAX_MESSAGE_SIZE not ignored: %d", cfg.MaxMessageSize)
	}
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	t.Setenv("ADDR", ":9000")
	t.Setenv("PEER_STORE", "")

	cfg, err := Load("test", []string{"--addr", ":7000", "--peer-config", "peers.yaml"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":7000" || cfg.PeerConfig != "peers.yaml" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadRejectsBadStore(t *testing.T) {
	t.Setenv("DB_DSN", "")
	t.Setenv("PEER_STORE", "")
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"--peer-store", "etcd"}, "unknown peer store"},
		{[]string{"--peer-store", "postgres"}, "needs DB_DSN"},
		{[]string{"--send-buffer", "0"}, "send buffer"},
	}
	for _, tt := range tests {
		_, err := Load("test", tt.args)
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("Load(%v) error = %v, want %q", tt.args, err, tt.want)
		}
	}
}
