package flows

import (
	"context"
	"fmt"
	"strings"

	"github.com/yourusername/ballot-cli/pkg/ballot"
	"github.com/yourusername/ballot-cli/pkg/chain"
	"github.com/yourusername/ballot-cli/pkg/credentials"
	"github.com/yourusername/ballot-cli/pkg/keys"
)

// VoteIntent is the operator's answer to the confirmation question
type VoteIntent bool

const (
	VoteNo  VoteIntent = false
	VoteYes VoteIntent = true
)

// ParseVoteIntent treats only "n" or "N" as No. Anything else, including
// an empty answer, confirms.
func ParseVoteIntent(answer string) VoteIntent {
	a := strings.TrimSpace(answer)
	if a == "n" || a == "N" {
		return VoteNo
	}
	return VoteYes
}

// VoteOptions tunes CastVote
type VoteOptions struct {
	AssumeYes bool // skip the confirmation question
}

// VoteResult is the outcome of CastVote
type VoteResult struct {
	Proposal  *ballot.Proposal
	Cancelled bool
	Receipt   *chain.Receipt
}

// GiveRightToVote lets the chairperson grant voter a vote. Whether the signer
// is the chairperson is left to the contract.
func (r *Runner) GiveRightToVote(ctx context.Context, contractInput, voterInput string) (*chain.Receipt, error) {
	contract, err := r.address(contractInput, "Contract address:")
	if err != nil {
		return nil, fmt.Errorf("contract: %w", err)
	}
	voter, err := r.address(voterInput, "Voter address:")
	if err != nil {
		return nil, fmt.Errorf("voter: %w", err)
	}

	acct, err := r.account(ctx, credentials.RoleChairperson)
	if err != nil {
		return nil, err
	}

	call, err := ballot.GiveRightToVoteCall(contract, voter)
	if err != nil {
		return nil, err
	}

	r.Out.Infof("Giving right to vote to %s", voter.Hex())
	return r.execute(ctx, acct, call)
}

// Delegate hands the signer's vote to delegatee
func (r *Runner) Delegate(ctx context.Context, contractInput, delegateeInput string) (*chain.Receipt, error) {
	contract, err := r.address(contractInput, "Contract address:")
	if err != nil {
		return nil, fmt.Errorf("contract: %w", err)
	}

	acct, err := r.account(ctx, credentials.RoleDelegator)
	if err != nil {
		return nil, err
	}

	delegatee, err := r.address(delegateeInput, "Delegate to address:")
	if err != nil {
		return nil, fmt.Errorf("delegatee: %w", err)
	}

	call, err := ballot.DelegateCall(contract, delegatee)
	if err != nil {
		return nil, err
	}

	r.Out.Infof("Delegating vote to %s", delegatee.Hex())
	return r.execute(ctx, acct, call)
}

// CastVote shows the chosen proposal, asks for confirmation and votes.
// A No answer returns a cancelled result without any further network call.
func (r *Runner) CastVote(ctx context.Context, contractInput, indexInput string, opts VoteOptions) (*VoteResult, error) {
	contractAddr, err := r.address(contractInput, "Contract address:")
	if err != nil {
		return nil, fmt.Errorf("contract: %w", err)
	}
	idxStr, err := r.operand(indexInput, "Proposal index:")
	if err != nil {
		return nil, err
	}
	index, err := keys.ParseProposalIndex(idxStr)
	if err != nil {
		return nil, err
	}

	contract := ballot.NewContract(contractAddr, r.Gateway)
	proposal, err := contract.Proposal(ctx, index)
	if err != nil {
		return nil, fmt.Errorf("failed to read proposal %d: %w", index, err)
	}
	r.Out.Proposal(proposal)

	res := &VoteResult{Proposal: proposal}

	intent := VoteYes
	if !opts.AssumeYes {
		answer, err := r.operand("", fmt.Sprintf("Confirm vote for %q? [Y/n]", proposal.Name))
		if err != nil {
			return nil, err
		}
		intent = ParseVoteIntent(answer)
	}
	if intent == VoteNo {
		r.Out.Infof("Operation cancelled")
		res.Cancelled = true
		return res, nil
	}

	acct, err := r.account(ctx, credentials.RoleVoter)
	if err != nil {
		return nil, err
	}

	call, err := ballot.VoteCall(contractAddr, index)
	if err != nil {
		return nil, err
	}

	r.Out.Infof("Voting for %s", proposal.Name)
	res.Receipt, err = r.execute(ctx, acct, call)
	return res, err
}
