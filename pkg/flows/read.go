package flows

import (
	"context"
	"fmt"

	"github.com/yourusername/ballot-cli/pkg/ballot"
)

// ListProposals prints every proposal of a Ballot, its chairperson and the
// current winner
func (r *Runner) ListProposals(ctx context.Context, contractInput string) ([]ballot.Proposal, error) {
	addr, err := r.address(contractInput, "Contract address:")
	if err != nil {
		return nil, fmt.Errorf("contract: %w", err)
	}

	contract := ballot.NewContract(addr, r.Gateway)
	props, err := contract.Proposals(ctx)
	if err != nil {
		return nil, err
	}
	if len(props) == 0 {
		r.Out.Warnf("Ballot %s has no proposals", addr.Hex())
		return props, nil
	}

	if err := r.Out.Proposals(props); err != nil {
		return nil, fmt.Errorf("failed to render proposals: %w", err)
	}

	chair, err := contract.Chairperson(ctx)
	if err != nil {
		return nil, err
	}
	r.Out.Infof("Chairperson: %s", chair.Hex())

	winner, err := contract.WinningProposal(ctx)
	if err != nil {
		return nil, err
	}
	name, err := contract.WinnerName(ctx)
	if err != nil {
		return nil, err
	}
	r.Out.Infof("Leading proposal: #%d %s", winner, name)

	return props, nil
}

// VoterInfo prints the contract's record for a voter
func (r *Runner) VoterInfo(ctx context.Context, contractInput, voterInput string) (*ballot.Voter, error) {
	addr, err := r.address(contractInput, "Contract address:")
	if err != nil {
		return nil, fmt.Errorf("contract: %w", err)
	}
	voterAddr, err := r.address(voterInput, "Voter address:")
	if err != nil {
		return nil, fmt.Errorf("voter: %w", err)
	}

	v, err := ballot.NewContract(addr, r.Gateway).Voter(ctx, voterAddr)
	if err != nil {
		return nil, err
	}
	r.Out.Voter(voterAddr, v)
	return v, nil
}
