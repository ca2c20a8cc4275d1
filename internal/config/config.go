package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const (
	DEFAULT_RPC_HTTP_URL  = "https://solana-rpc.publicnode.com"
	DEFAULT_POLL_INTERVAL = 5 * time.Second
	DEFAULT_RPC_TIMEOUT   = 10 * time.Second
	DEFAULT_HTTP_PORT     = 5000
)

var (
	WRAPPED_SOL    = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
	MARKET_ACCOUNT = solana.MustPublicKeyFromBase58("GQsPr4RJk9AZkkfWHud7v4MtotcxhaYzZHdsPCg9vNvW")
	TRUMP_MINT     = solana.MustPublicKeyFromBase58("6p6xgHyF7AeE6TZkSmFsko444wqoP15icUSqi2jfGiPN")
)

type Config struct {
	RpcHttpUrl     string
	RpcWsUrl       string
	RpcTimeout     time.Duration
	Commitment     rpc.CommitmentType
	MarketAccount  solana.PublicKey
	BaseMint       solana.PublicKey
	QuoteMint      solana.PublicKey
	PollInterval   time.Duration
	PollMaxBackoff time.Duration
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	HttpPort       int
	LogLevel       string
}

// Default returns the configuration the poller runs with when nothing is overridden.
func Default() *Config {
	return &Config{
		RpcHttpUrl:    DEFAULT_RPC_HTTP_URL,
		RpcTimeout:    DEFAULT_RPC_TIMEOUT,
		Commitment:    rpc.CommitmentConfirmed,
		MarketAccount: MARKET_ACCOUNT,
		BaseMint:      TRUMP_MINT,
		QuoteMint:     WRAPPED_SOL,
		PollInterval:  DEFAULT_POLL_INTERVAL,
		HttpPort:      DEFAULT_HTTP_PORT,
		LogLevel:      "info",
	}
}

// Load reads an optional .env file and overlays the environment on top of Default.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "failed to load .env file")
	}

	return FromEnv()
}

func FromEnv() (*Config, error) {
	c := Default()

	if v := os.Getenv("RPC_HTTP_URL"); v != "" {
		c.RpcHttpUrl = v
	}
	c.RpcWsUrl = os.Getenv("RPC_WS_URL")

	var err error
	if c.MarketAccount, err = envPublicKey("MARKET_ACCOUNT", c.MarketAccount); err != nil {
		return nil, err
	}
	if c.BaseMint, err = envPublicKey("MARKET_BASE_MINT", c.BaseMint); err != nil {
		return nil, err
	}
	if c.QuoteMint, err = envPublicKey("MARKET_QUOTE_MINT", c.QuoteMint); err != nil {
		return nil, err
	}

	if c.PollInterval, err = envDuration("POLL_INTERVAL", c.PollInterval); err != nil {
		return nil, err
	}
	if c.PollMaxBackoff, err = envDuration("POLL_MAX_BACKOFF", c.PollMaxBackoff); err != nil {
		return nil, err
	}
	if c.RpcTimeout, err = envDuration("RPC_TIMEOUT", c.RpcTimeout); err != nil {
		return nil, err
	}

	if v := os.Getenv("RPC_COMMITMENT"); v != "" {
		switch commitment := rpc.CommitmentType(strings.ToLower(v)); commitment {
		case rpc.CommitmentProcessed, rpc.CommitmentConfirmed, rpc.CommitmentFinalized:
			c.Commitment = commitment
		default:
			return nil, errors.Errorf("invalid RPC_COMMITMENT %q", v)
		}
	}

	c.RedisAddr = os.Getenv("REDIS_ADDR")
	c.RedisPassword = os.Getenv("REDIS_PASSWORD")
	if c.RedisDB, err = envInt("REDIS_DB", c.RedisDB); err != nil {
		return nil, err
	}
	if c.HttpPort, err = envInt("HTTP_PORT", c.HttpPort); err != nil {
		return nil, err
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Config) Validate() error {
	if c.RpcHttpUrl == "" {
		return errors.New("RPC_HTTP_URL is empty")
	}
	if c.MarketAccount.IsZero() {
		return errors.New("MARKET_ACCOUNT is empty")
	}
	if c.PollInterval <= 0 {
		return errors.Errorf("POLL_INTERVAL must be positive, got %s", c.PollInterval)
	}
	if c.PollMaxBackoff < 0 {
		return errors.Errorf("POLL_MAX_BACKOFF must not be negative, got %s", c.PollMaxBackoff)
	}
	if c.RpcTimeout <= 0 {
		return errors.Errorf("RPC_TIMEOUT must be positive, got %s", c.RpcTimeout)
	}
	if c.HttpPort < 0 || c.HttpPort > 65535 {
		return errors.Errorf("HTTP_PORT out of range: %d", c.HttpPort)
	}
	if c.RedisDB < 0 {
		return errors.Errorf("REDIS_DB must not be negative, got %d", c.RedisDB)
	}

	return nil
}

func envPublicKey(key string, fallback solana.PublicKey) (solana.PublicKey, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}

	pk, err := solana.PublicKeyFromBase58(v)
	if err != nil {
		return solana.PublicKey{}, errors.Wrapf(err, "invalid %s", key)
	}

	return pk, nil
}

// Accepts Go durations ("750ms", "5s") and bare integers, read as seconds.
func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}

	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s", key)
	}

	return d, nil
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s", key)
	}

	return n, nil
}
