package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		EnvAPIKey, EnvAPIKeyAlt, EnvRPCURL, EnvChainID, EnvPollInterval,
		EnvPollTimeout, EnvConfirmations, EnvArtifact, EnvLogLevel,
	} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, int64(SepoliaChainID), cfg.Node.ExpectedChainID())
	assert.Equal(t, uint64(150_000), cfg.Tx.FallbackGasLimit)
	assert.Equal(t, 4*time.Second, cfg.Polling.Interval())
	assert.Equal(t, 3*time.Minute, cfg.Polling.Timeout())
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvAPIKey, "secret-key")
	t.Setenv(EnvChainID, "31337")
	t.Setenv(EnvPollInterval, "250")
	t.Setenv(EnvPollTimeout, "5")
	t.Setenv(EnvConfirmations, "3")
	t.Setenv(EnvArtifact, "artifacts/Ballot.json")
	t.Setenv(EnvLogLevel, "debug")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "secret-key", cfg.Node.APIKey)
	assert.Equal(t, int64(31337), cfg.Node.ChainID)
	assert.Equal(t, 250*time.Millisecond, cfg.Polling.Interval())
	assert.Equal(t, 5*time.Second, cfg.Polling.Timeout())
	assert.Equal(t, uint64(3), cfg.Polling.Confirmations)
	assert.Equal(t, "artifacts/Ballot.json", cfg.Contract.ArtifactPath)
	assert.Equal(t, "debug", cfg.Log.Level)

	url, err := cfg.Node.Endpoint()
	require.NoError(t, err)
	assert.Equal(t, "https://eth-sepolia.g.alchemy.com/v2/secret-key", url)
}

func TestLoadConfigAlternateAPIKey(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvAPIKeyAlt, "other")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "other", cfg.Node.APIKey)
}

func TestLoadConfigInvalidEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvChainID, "sepolia")

	_, err := LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvChainID)
}

func TestLoadConfigFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "ballot.yaml")
	data := `
node:
  url: http://127.0.0.1:8545
  chain_id: 31337
  timeout_seconds: 5
  retry_attempts: 2
polling:
  interval_ms: 100
  timeout_seconds: 10
tx:
  gas_multiplier: 1.5
  fallback_gas_limit: 200000
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	url, err := cfg.Node.Endpoint()
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8545", url)
	assert.Equal(t, int64(31337), cfg.Node.ChainID)
	assert.Equal(t, 2, cfg.Node.RetryAttempts)
	assert.Equal(t, 100*time.Millisecond, cfg.Polling.Interval())
	assert.Equal(t, 1.5, cfg.Tx.GasMultiplier)
	assert.Equal(t, uint64(200000), cfg.Tx.FallbackGasLimit)
	// untouched defaults survive
	assert.Equal(t, uint64(1), cfg.Polling.Confirmations)
}

func TestLoadConfigFileErrors(t *testing.T) {
	clearEnv(t)

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("node:\n  api_key: leaked\n"), 0600))
	_, err = LoadConfig(path)
	require.Error(t, err, "unknown fields such as api_key must be rejected")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "zero interval", mutate: func(c *Config) { c.Polling.IntervalMS = 0 }},
		{name: "negative timeout", mutate: func(c *Config) { c.Polling.TimeoutSeconds = -1 }},
		{name: "zero node timeout", mutate: func(c *Config) { c.Node.TimeoutSeconds = 0 }},
		{name: "no attempts", mutate: func(c *Config) { c.Node.RetryAttempts = 0 }},
		{name: "multiplier below one", mutate: func(c *Config) { c.Tx.GasMultiplier = 0.5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestEndpointWithoutKey(t *testing.T) {
	cfg := DefaultConfig()
	_, err := cfg.Node.Endpoint()
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), EnvAPIKey))
}

func TestExpectedChainID(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		chainID int64
		want    int64
	}{
		{name: "alchemy template", want: SepoliaChainID},
		{name: "custom url asks the node", url: "http://127.0.0.1:8545", want: 0},
		{name: "custom url with chain id", url: "http://127.0.0.1:8545", chainID: 31337, want: 31337},
		{name: "explicit chain id", chainID: 5, want: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NodeConfig{URL: tt.url, ChainID: tt.chainID}
			assert.Equal(t, tt.want, n.ExpectedChainID())
		})
	}
}

func TestLoadConfigCustomURLAsksForChainID(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvRPCURL, "http://127.0.0.1:8545")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Zero(t, cfg.Node.ExpectedChainID())
}
