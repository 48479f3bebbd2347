package chain

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/rpc"
)

var (
	// ErrNotFound is returned by TransactionReceipt while a transaction is pending.
	ErrNotFound = ethereum.NotFound

	// ErrNetwork marks transport or node failures.
	ErrNetwork = errors.New("network error")
	// ErrNetworkRejected is returned when the node refuses a signed transaction.
	ErrNetworkRejected = errors.New("transaction rejected by network")
	// ErrInsufficientFunds is returned when the sender cannot pay for gas and value.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrSigningFailed is returned when a transaction cannot be signed.
	ErrSigningFailed = errors.New("signing failed")

	// ErrReverted marks a transaction the contract rejected, either in a
	// preflight estimate or in a mined receipt.
	ErrReverted = errors.New("transaction reverted")
	// ErrTimeout is returned when no receipt is observed in time. The outcome is unknown.
	ErrTimeout = errors.New("timed out waiting for confirmation")
)

// revertErrorCode is the JSON-RPC error code geth uses for execution reverts.
const revertErrorCode = 3

// IsRevert reports whether err is an execution revert reported by the node.
func IsRevert(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrReverted) {
		return true
	}
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) && rpcErr.ErrorCode() == revertErrorCode {
		return true
	}
	return strings.Contains(err.Error(), "execution reverted")
}

// isInsufficientFunds matches the node's wording for core.ErrInsufficientFunds.
func isInsufficientFunds(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "insufficient funds")
}

// isTransient reports whether a read call may be retried.
// Anything the node answered with a JSON-RPC error object is final.
func isTransient(err error) bool {
	if err == nil || errors.Is(err, ErrNotFound) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return false
	}
	var httpErr rpc.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == 429 || httpErr.StatusCode >= 500
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
