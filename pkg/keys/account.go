package keys

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrInvalidKey is returned when a private key cannot be parsed as a secp256k1 scalar.
var ErrInvalidKey = errors.New("invalid private key")

// Account is a signing identity derived from a raw private key.
// It lives for a single invocation and is never written anywhere.
type Account struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

// DeriveAccount parses a hex private key, with or without the 0x prefix,
// and derives the account address from it.
func DeriveAccount(privateKeyHex string) (*Account, error) {
	hexKey := strings.TrimSpace(privateKeyHex)
	if hexKey == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidKey)
	}
	if !strings.HasPrefix(hexKey, "0x") && !strings.HasPrefix(hexKey, "0X") {
		hexKey = "0x" + hexKey
	}

	raw, err := hexutil.Decode(hexKey)
	if err != nil {
		// Don't wrap err: hexutil errors can quote the input.
		return nil, fmt.Errorf("%w: not a hex string", ErrInvalidKey)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("%w: expected 32 bytes, got %d", ErrInvalidKey, len(raw))
	}

	key, err := crypto.ToECDSA(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: not a valid secp256k1 scalar", ErrInvalidKey)
	}

	return &Account{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

// Address returns the account address.
func (a *Account) Address() common.Address {
	return a.address
}

// PrivateKey returns the signing key.
func (a *Account) PrivateKey() *ecdsa.PrivateKey {
	return a.key
}

// String keeps the account out of log lines and %v output.
func (a *Account) String() string {
	return "Account(redacted)"
}

// GoString implements fmt.GoStringer for %#v.
func (a *Account) GoString() string {
	return a.String()
}
