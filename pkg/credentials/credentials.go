// Package credentials supplies private keys for signing accounts. Keys come
// from the environment or from the operator and are never stored.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/yourusername/ballot-cli/pkg/keys"
	"github.com/yourusername/ballot-cli/pkg/prompt"
)

// ErrNoCredential means a source has no key for the requested role
var ErrNoCredential = errors.New("no private key available")

// Role names the account a key is requested for
type Role string

const (
	RoleDeployer    Role = "deployer"
	RoleChairperson Role = "chairperson"
	RoleDelegator   Role = "delegator"
	RoleVoter       Role = "voter"
)

// Source returns a hex private key for a role
type Source interface {
	PrivateKey(ctx context.Context, role Role) (string, error)
}

// Account resolves a key from src and derives the signing account
func Account(ctx context.Context, src Source, role Role) (*keys.Account, error) {
	hex, err := src.PrivateKey(ctx, role)
	if err != nil {
		return nil, err
	}
	acct, err := keys.DeriveAccount(hex)
	if err != nil {
		return nil, fmt.Errorf("%s key: %w", role, err)
	}
	return acct, nil
}

// Env reads the key from an environment variable
type Env struct {
	Var string
}

func (e Env) PrivateKey(ctx context.Context, role Role) (string, error) {
	val := strings.TrimSpace(os.Getenv(e.Var))
	if val == "" {
		return "", fmt.Errorf("%w: %s is not set", ErrNoCredential, e.Var)
	}
	return val, nil
}

// Prompt asks the operator for the key without echo
type Prompt struct {
	Prompter prompt.Prompter
}

func (p Prompt) PrivateKey(ctx context.Context, role Role) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	val, err := p.Prompter.AskSecret(fmt.Sprintf("Enter the %s private key:", role))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoCredential, err)
	}
	if val == "" {
		return "", fmt.Errorf("%w: empty %s key", ErrNoCredential, role)
	}
	return val, nil
}

// Static always returns the same key
type Static string

func (s Static) PrivateKey(ctx context.Context, role Role) (string, error) {
	if s == "" {
		return "", ErrNoCredential
	}
	return string(s), nil
}

// FirstOf tries each source in order and returns the first key found.
// Errors other than ErrNoCredential stop the search.
type FirstOf []Source

func (f FirstOf) PrivateKey(ctx context.Context, role Role) (string, error) {
	for _, src := range f {
		val, err := src.PrivateKey(ctx, role)
		if err == nil {
			return val, nil
		}
		if !errors.Is(err, ErrNoCredential) {
			return "", err
		}
	}
	return "", fmt.Errorf("%w for %s", ErrNoCredential, role)
}
