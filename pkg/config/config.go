package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Config holds all configuration for the ballot CLI
type Config struct {
	Node     NodeConfig     `yaml:"node"`
	Polling  PollingConfig  `yaml:"polling"`
	Tx       TxConfig       `yaml:"tx"`
	Contract ContractConfig `yaml:"contract"`
	Log      LogConfig      `yaml:"log"`
}

// NodeConfig contains JSON-RPC node connection settings
type NodeConfig struct {
	// URL is a full endpoint. When empty it is built from URLTemplate and APIKey.
	URL            string `yaml:"url"`
	URLTemplate    string `yaml:"url_template"` // %s is replaced by the API key
	APIKey         string `yaml:"-"`            // env only
	ChainID        int64  `yaml:"chain_id"`     // 0 means Sepolia for the template, otherwise ask the node
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	RetryAttempts  int    `yaml:"retry_attempts"`
	RetryBackoffMS int    `yaml:"retry_backoff_ms"`
}

// PollingConfig contains confirmation polling settings
type PollingConfig struct {
	IntervalMS     int    `yaml:"interval_ms"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	Confirmations  uint64 `yaml:"confirmations"`
}

// TxConfig contains transaction building settings
type TxConfig struct {
	GasLimit         uint64  `yaml:"gas_limit"` // 0 estimates
	GasMultiplier    float64 `yaml:"gas_multiplier"`
	FallbackGasLimit uint64  `yaml:"fallback_gas_limit"`
}

// ContractConfig points at the compiled Ballot artifact used for deployment
type ContractConfig struct {
	ArtifactPath string `yaml:"artifact_path"`
}

// LogConfig contains logger settings
type LogConfig struct {
	Level string `yaml:"level"`
}

// Environment variable names
const (
	EnvAPIKey        = "ALCHEMY_API_KEY"
	EnvAPIKeyAlt     = "BALLOT_API_KEY"
	EnvPrivateKey    = "PRIVATE_KEY"
	EnvRPCURL        = "BALLOT_RPC_URL"
	EnvChainID       = "BALLOT_CHAIN_ID"
	EnvPollInterval  = "BALLOT_POLL_INTERVAL_MS"
	EnvPollTimeout   = "BALLOT_TIMEOUT_SECONDS"
	EnvConfirmations = "BALLOT_CONFIRMATIONS"
	EnvArtifact      = "BALLOT_ARTIFACT"
	EnvLogLevel      = "BALLOT_LOG_LEVEL"
)

// SepoliaChainID is the chain id of the Sepolia test network.
const SepoliaChainID = 11155111

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Node: NodeConfig{
			URLTemplate:    "https://eth-sepolia.g.alchemy.com/v2/%s",
			TimeoutSeconds: 30,
			RetryAttempts:  3,
			RetryBackoffMS: 1000,
		},
		Polling: PollingConfig{
			IntervalMS:     4000, // roughly a third of a block
			TimeoutSeconds: 180,
			Confirmations:  1,
		},
		Tx: TxConfig{
			GasMultiplier:    1.2,
			FallbackGasLimit: 150_000, // reverting calls are still mined and recorded
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// LoadConfig loads configuration from an optional YAML file, a .env file and
// environment variables, in increasing order of precedence.
func LoadConfig(cfgFile string) (*Config, error) {
	cfg := DefaultConfig()

	if cfgFile != "" {
		data, err := os.ReadFile(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("config file not found: %w", err)
		}
		if err := yaml.UnmarshalStrict(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// .env never overrides variables already set in the process environment
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	if val := os.Getenv(EnvAPIKey); val != "" {
		c.Node.APIKey = val
	} else if val := os.Getenv(EnvAPIKeyAlt); val != "" {
		c.Node.APIKey = val
	}
	if val := os.Getenv(EnvRPCURL); val != "" {
		c.Node.URL = val
	}
	if val := os.Getenv(EnvChainID); val != "" {
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvChainID, err)
		}
		c.Node.ChainID = n
	}
	if val := os.Getenv(EnvPollInterval); val != "" {
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvPollInterval, err)
		}
		c.Polling.IntervalMS = n
	}
	if val := os.Getenv(EnvPollTimeout); val != "" {
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvPollTimeout, err)
		}
		c.Polling.TimeoutSeconds = n
	}
	if val := os.Getenv(EnvConfirmations); val != "" {
		n, err := strconv.ParseUint(val, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvConfirmations, err)
		}
		c.Polling.Confirmations = n
	}
	if val := os.Getenv(EnvArtifact); val != "" {
		c.Contract.ArtifactPath = val
	}
	if val := os.Getenv(EnvLogLevel); val != "" {
		c.Log.Level = val
	}
	return nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if c.Polling.IntervalMS <= 0 {
		return fmt.Errorf("polling interval must be positive, got %dms", c.Polling.IntervalMS)
	}
	if c.Polling.TimeoutSeconds <= 0 {
		return fmt.Errorf("polling timeout must be positive, got %ds", c.Polling.TimeoutSeconds)
	}
	if c.Node.TimeoutSeconds <= 0 {
		return fmt.Errorf("node timeout must be positive, got %ds", c.Node.TimeoutSeconds)
	}
	if c.Node.RetryAttempts < 1 {
		return fmt.Errorf("retry attempts must be at least 1, got %d", c.Node.RetryAttempts)
	}
	if c.Tx.GasMultiplier < 1 {
		return fmt.Errorf("gas multiplier must be >= 1, got %v", c.Tx.GasMultiplier)
	}
	return nil
}

// Endpoint returns the node URL. The API key is substituted into the template
// and must never be logged.
func (n *NodeConfig) Endpoint() (string, error) {
	if n.URL != "" {
		return n.URL, nil
	}
	if n.APIKey == "" {
		return "", fmt.Errorf("no node endpoint: set %s or %s", EnvAPIKey, EnvRPCURL)
	}
	if !strings.Contains(n.URLTemplate, "%s") {
		return "", fmt.Errorf("node url template has no %%s placeholder")
	}
	return fmt.Sprintf(n.URLTemplate, n.APIKey), nil
}

// ExpectedChainID returns the chain id to sign for. A custom URL without an
// explicit chain id returns 0 so the node is asked.
func (n *NodeConfig) ExpectedChainID() int64 {
	if n.ChainID != 0 {
		return n.ChainID
	}
	if n.URL == "" {
		return SepoliaChainID
	}
	return 0
}

// Timeout returns the per-request HTTP timeout
func (n *NodeConfig) Timeout() time.Duration {
	return time.Duration(n.TimeoutSeconds) * time.Second
}

// RetryBackoff returns the base delay between read retries
func (n *NodeConfig) RetryBackoff() time.Duration {
	return time.Duration(n.RetryBackoffMS) * time.Millisecond
}

// Interval returns the receipt polling interval
func (p *PollingConfig) Interval() time.Duration {
	return time.Duration(p.IntervalMS) * time.Millisecond
}

// Timeout returns the overall confirmation timeout
func (p *PollingConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}
