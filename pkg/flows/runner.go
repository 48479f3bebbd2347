// Package flows implements the ballot commands as fixed sequences of
// validation, signing, submission and confirmation.
package flows

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/yourusername/ballot-cli/pkg/chain"
	"github.com/yourusername/ballot-cli/pkg/credentials"
	"github.com/yourusername/ballot-cli/pkg/keys"
	"github.com/yourusername/ballot-cli/pkg/output"
	"github.com/yourusername/ballot-cli/pkg/prompt"
)

// Runner holds everything a command needs. One Runner serves one process.
type Runner struct {
	Gateway     chain.Gateway
	Submitter   *chain.Submitter
	Tracker     *chain.Tracker
	Credentials credentials.Source
	Prompter    prompt.Prompter
	Out         *output.Printer
	Log         *zap.Logger
}

// NewRunner wires a submitter and tracker around gw
func NewRunner(gw chain.Gateway, sub chain.SubmitterConfig, track chain.TrackerConfig,
	creds credentials.Source, p prompt.Prompter, out *output.Printer, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		Gateway:     gw,
		Submitter:   chain.NewSubmitter(gw, sub, log.Named("submit")),
		Tracker:     chain.NewTracker(gw, track, log.Named("confirm")),
		Credentials: creds,
		Prompter:    p,
		Out:         out,
		Log:         log,
	}
}

// ContractError is a transaction the contract rejected
type ContractError struct {
	Method string
	TxHash common.Hash // zero when the call was rejected before broadcast
	Err    error
}

func (e *ContractError) Error() string {
	if e.TxHash == (common.Hash{}) {
		return fmt.Sprintf("%s rejected by contract: %v", e.Method, e.Err)
	}
	return fmt.Sprintf("%s rejected by contract (tx %s): %v", e.Method, e.TxHash.Hex(), e.Err)
}

func (e *ContractError) Unwrap() error {
	return e.Err
}

// execute submits call, prints its hash and waits for the receipt. A reverted
// receipt is returned together with a *ContractError.
func (r *Runner) execute(ctx context.Context, acct *keys.Account, call chain.Call) (*chain.Receipt, error) {
	tx, err := r.Submitter.Submit(ctx, acct, call)
	if err != nil {
		if errors.Is(err, chain.ErrReverted) {
			return nil, &ContractError{Method: call.Method, Err: err}
		}
		return nil, fmt.Errorf("failed to submit %s: %w", call.Method, err)
	}
	r.Out.Submitted(tx)

	receipt, err := r.Tracker.AwaitConfirmation(ctx, tx.Hash)
	if err != nil {
		return nil, err
	}
	r.Out.Confirmed(receipt)

	if err := receipt.Err(); err != nil {
		return receipt, &ContractError{Method: call.Method, TxHash: receipt.TxHash, Err: err}
	}
	return receipt, nil
}

// operand returns input, or asks for it when empty
func (r *Runner) operand(input, question string) (string, error) {
	if input != "" {
		return input, nil
	}
	if r.Prompter == nil {
		return "", fmt.Errorf("%s: %w", question, prompt.ErrNoInput)
	}
	return r.Prompter.Ask(question)
}

func (r *Runner) address(input, question string) (common.Address, error) {
	val, err := r.operand(input, question)
	if err != nil {
		return common.Address{}, err
	}
	return keys.ValidateAddress(val)
}

func (r *Runner) account(ctx context.Context, role credentials.Role) (*keys.Account, error) {
	if r.Credentials == nil {
		return nil, credentials.ErrNoCredential
	}
	return credentials.Account(ctx, r.Credentials, role)
}
