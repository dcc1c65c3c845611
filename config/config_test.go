package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-nan/pkg/types"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, DefaultServiceName, cfg.Service.Name)
	assert.Equal(t, DefaultServiceType, cfg.Service.Type)
	assert.True(t, cfg.Session.AutoPublish)
	assert.False(t, cfg.Session.AutoSubscribe)
	assert.True(t, cfg.Discovery.EnableGreeting)
	assert.Equal(t, DefaultGreeting, cfg.Discovery.Greeting)
	assert.Equal(t, 100*time.Millisecond, cfg.Session.ReadyCheckInterval.Duration())
	assert.Equal(t, types.PublishUnsolicited, cfg.Service.PublishMode())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty service name", func(c *Config) { c.Service.Name = " " }},
		{"bad publish type", func(c *Config) { c.Service.PublishType = "loud" }},
		{"extra overrides dev", func(c *Config) { c.Service.Extra = map[string]string{"dev": "x"} }},
		{"zero check interval", func(c *Config) { c.Session.ReadyCheckInterval = 0 }},
		{"empty greeting", func(c *Config) { c.Discovery.Greeting = "" }},
		{"zero device index", func(c *Config) { c.Discovery.DeviceIndexSize = 0 }},
		{"negative max length", func(c *Config) { c.Messaging.MaxMessageLength = -1 }},
		{"rate without burst", func(c *Config) { c.Messaging.SendRate = 5; c.Messaging.SendBurst = 0 }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
		{"short passphrase", func(c *Config) { c.DataPath.Passphrase = "short" }},
		{"oversized data path payload", func(c *Config) { c.DataPath.MaxPayload = 11 << 20 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	var nilCfg *Config
	assert.Error(t, nilCfg.Validate())
}

func TestFromJSON_KeepsDefaults(t *testing.T) {
	cfg, err := FromJSON([]byte(`{
		"service": {"name": "chat", "room": "lobby"},
		"session": {"auto_subscribe": true, "ready_timeout": "3s"}
	}`))
	require.NoError(t, err)

	assert.Equal(t, "chat", cfg.Service.Name)
	assert.Equal(t, "lobby", cfg.Service.Room)
	assert.True(t, cfg.Session.AutoSubscribe)
	assert.Equal(t, 3*time.Second, cfg.Session.ReadyTimeout.Duration())
	// 未出现的字段保持默认
	assert.Equal(t, DefaultGreeting, cfg.Discovery.Greeting)
	assert.Equal(t, 100*time.Millisecond, cfg.Session.ReadyCheckInterval.Duration())

	_, err = FromJSON([]byte(`{"session": {"ready_timeout": "soon"}}`))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nan.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"discovery":{"greeting":"hi"}}`), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hi", cfg.Discovery.Greeting)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestToJSON_RoundTrip(t *testing.T) {
	cfg := NewConfig()
	cfg.Service.DeviceID = "dev-1"

	data, err := cfg.ToJSON()
	require.NoError(t, err)

	var raw map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "10s", raw["session"]["ready_timeout"])

	back, err := FromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}

func TestDuration_Number(t *testing.T) {
	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`1500000000`), &d))
	assert.Equal(t, 1500*time.Millisecond, d.Duration())
	assert.Equal(t, "1.5s", d.String())
}

func TestServiceConfig_ServiceInfo(t *testing.T) {
	c := DefaultServiceConfig()
	c.DeviceID = "abc"
	c.Room = "r1"
	c.Extra = map[string]string{"ver": "2"}

	info := c.ServiceInfo()
	assert.Equal(t, "abc", info.DeviceID())
	assert.Equal(t, "r1", info.Room())
	assert.Equal(t, "dev=abc;room=r1;ver=2", string(info.Encode()))
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvPrefix + EnvServiceName:   "env-svc",
		EnvPrefix + EnvAutoPublish:   "false",
		EnvPrefix + EnvAutoSubscribe: "not-a-bool",
		EnvPrefix + EnvGreeting:      "yo",
		EnvPrefix + EnvLogLevel:      "debug",
		EnvPrefix + EnvDataPathPass:  "open-sesame",
	}
	cfg := NewConfig()
	applyEnv(cfg, func(k string) string { return env[k] })

	assert.Equal(t, "env-svc", cfg.Service.Name)
	assert.False(t, cfg.Session.AutoPublish)
	assert.False(t, cfg.Session.AutoSubscribe)
	assert.Equal(t, "yo", cfg.Discovery.Greeting)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "open-sesame", cfg.DataPath.Passphrase)
}

func TestLogConfig_Apply(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	require.NoError(t, LogConfig{Level: "warn", Format: "json"}.Apply(&buf))
	slog.Info("dropped")
	slog.Warn("kept")
	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), `"msg":"kept"`)

	assert.Error(t, LogConfig{Level: "loud"}.Apply(&buf))
}
