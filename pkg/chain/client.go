package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
)

// ClientConfig configures the node connection
type ClientConfig struct {
	URL           string
	Timeout       time.Duration
	RetryAttempts int
	RetryBackoff  time.Duration
}

// Client is a Gateway backed by a JSON-RPC node.
// Read calls are retried on transport failures; SendTransaction never is.
type Client struct {
	eth *ethclient.Client
	cfg ClientConfig
	log *zap.Logger
}

var _ Gateway = (*Client)(nil)

// Dial connects to the node. The URL may embed an API key and is not logged.
func Dial(ctx context.Context, cfg ClientConfig, log *zap.Logger) (*Client, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RetryAttempts < 1 {
		cfg.RetryAttempts = 1
	}
	if log == nil {
		log = zap.NewNop()
	}

	rc, err := rpc.DialOptions(ctx, cfg.URL, rpc.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to node: %v", ErrNetwork, redact(err, cfg.URL))
	}

	return &Client{
		eth: ethclient.NewClient(rc),
		cfg: cfg,
		log: log,
	}, nil
}

// Close releases the underlying connection
func (c *Client) Close() {
	c.eth.Close()
}

// read runs op with bounded linear backoff on transient errors
func (c *Client) read(ctx context.Context, method string, op func() error) error {
	var lastErr error

	for attempt := 0; attempt < c.cfg.RetryAttempts; attempt++ {
		err := op()
		if err == nil {
			return nil
		}
		lastErr = err

		if !isTransient(err) || attempt == c.cfg.RetryAttempts-1 {
			break
		}

		c.log.Debug("retrying read call",
			zap.String("method", method),
			zap.Int("attempt", attempt+1),
			zap.Error(err))

		select {
		case <-time.After(c.cfg.RetryBackoff * time.Duration(attempt+1)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return c.wrap(method, lastErr)
}

// wrap tags node failures with ErrNetwork. Pending receipts and reverts keep
// their own identity so callers can tell them apart.
func (c *Client) wrap(method string, err error) error {
	if errors.Is(err, ErrNotFound) || IsRevert(err) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrNetwork, method, redact(err, c.cfg.URL))
}

func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	var id *big.Int
	err := c.read(ctx, "eth_chainId", func() (err error) {
		id, err = c.eth.ChainID(ctx)
		return err
	})
	return id, err
}

func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	var n uint64
	err := c.read(ctx, "eth_blockNumber", func() (err error) {
		n, err = c.eth.BlockNumber(ctx)
		return err
	})
	return n, err
}

func (c *Client) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	var h *types.Header
	err := c.read(ctx, "eth_getBlockByNumber", func() (err error) {
		h, err = c.eth.HeaderByNumber(ctx, number)
		return err
	})
	return h, err
}

func (c *Client) BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error) {
	var bal *big.Int
	err := c.read(ctx, "eth_getBalance", func() (err error) {
		bal, err = c.eth.BalanceAt(ctx, account, blockNumber)
		return err
	})
	return bal, err
}

func (c *Client) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	var out []byte
	err := c.read(ctx, "eth_call", func() (err error) {
		out, err = c.eth.CallContract(ctx, msg, blockNumber)
		return err
	})
	return out, err
}

func (c *Client) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	var n uint64
	err := c.read(ctx, "eth_getTransactionCount", func() (err error) {
		n, err = c.eth.PendingNonceAt(ctx, account)
		return err
	})
	return n, err
}

func (c *Client) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	var tip *big.Int
	err := c.read(ctx, "eth_maxPriorityFeePerGas", func() (err error) {
		tip, err = c.eth.SuggestGasTipCap(ctx)
		return err
	})
	return tip, err
}

func (c *Client) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	var gas uint64
	err := c.read(ctx, "eth_estimateGas", func() (err error) {
		gas, err = c.eth.EstimateGas(ctx, msg)
		return err
	})
	return gas, err
}

func (c *Client) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	var r *types.Receipt
	err := c.read(ctx, "eth_getTransactionReceipt", func() (err error) {
		r, err = c.eth.TransactionReceipt(ctx, txHash)
		return err
	})
	return r, err
}

// SendTransaction broadcasts a signed transaction exactly once
func (c *Client) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	if err := c.eth.SendTransaction(ctx, tx); err != nil {
		return c.wrap("eth_sendRawTransaction", err)
	}
	return nil
}

// redact strips the endpoint, and with it any API key, from transport errors
func redact(err error, url string) error {
	if err == nil || url == "" {
		return err
	}
	return &redactedError{err: err, url: url}
}

type redactedError struct {
	err error
	url string
}

func (e *redactedError) Error() string {
	return strings.ReplaceAll(e.err.Error(), e.url, "<node>")
}

func (e *redactedError) Unwrap() error {
	return e.err
}
