package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/yourusername/ballot-cli/pkg/chain"
	"github.com/yourusername/ballot-cli/pkg/credentials"
	"github.com/yourusername/ballot-cli/pkg/flows"
	"github.com/yourusername/ballot-cli/pkg/keys"
	"github.com/yourusername/ballot-cli/pkg/prompt"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"ok", nil, exitOK},
		{"bad address", fmt.Errorf("vote: contract: %w", keys.ErrInvalidAddress), exitValidation},
		{"no proposals", flows.ErrNoProposals, exitValidation},
		{"reverted", &flows.ContractError{Method: "vote", Err: chain.ErrReverted}, exitContract},
		{"timeout", fmt.Errorf("give-right: %w", chain.ErrTimeout), exitTimeout},
		{"network", fmt.Errorf("%w: eth_chainId: refused", chain.ErrNetwork), exitOther},
		{"config", errors.New("no node endpoint"), exitOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestKeySource(t *testing.T) {
	p := prompt.NewScript()

	if _, ok := keySource(p, false, true).(credentials.Env); !ok {
		t.Error("--key-env should read the environment only")
	}
	if _, ok := keySource(p, true, false).(credentials.FirstOf); !ok {
		t.Error("operator commands should try the environment first")
	}
	if _, ok := keySource(p, false, false).(credentials.Prompt); !ok {
		t.Error("voter commands should prompt")
	}
}

func TestArg(t *testing.T) {
	args := []string{"a"}
	if arg(args, 0) != "a" || arg(args, 1) != "" {
		t.Errorf("arg(%v) returned unexpected operands", args)
	}
}
