package flows

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/params"
	"go.uber.org/zap"

	"github.com/yourusername/ballot-cli/pkg/ballot"
	"github.com/yourusername/ballot-cli/pkg/chain"
	"github.com/yourusername/ballot-cli/pkg/credentials"
	"github.com/yourusername/ballot-cli/pkg/encoding"
)

// DeployResult describes a deployed Ballot
type DeployResult struct {
	Address   common.Address
	Receipt   *chain.Receipt
	Proposals []ballot.Proposal
}

// Deploy creates a Ballot with one proposal per name and reads the
// proposals back from the new contract.
func (r *Runner) Deploy(ctx context.Context, bytecode []byte, names []string) (*DeployResult, error) {
	if len(names) == 0 {
		return nil, ErrNoProposals
	}
	for i, name := range names {
		if _, err := encoding.Bytes32(name); err != nil {
			return nil, fmt.Errorf("proposal %d %q: %w", i, name, err)
		}
	}

	call, err := ballot.DeployCall(bytecode, names)
	if err != nil {
		return nil, err
	}

	acct, err := r.account(ctx, credentials.RoleDeployer)
	if err != nil {
		return nil, err
	}

	r.diagnostics(ctx, acct.Address())

	r.Out.Infof("Deploying Ballot with %d proposals", len(names))
	receipt, err := r.execute(ctx, acct, call)
	if err != nil {
		return nil, err
	}
	if !receipt.HasContractAddress() {
		return nil, fmt.Errorf("%w: tx %s", ErrNoContractAddress, receipt.TxHash.Hex())
	}
	r.Out.Deployed(receipt.ContractAddress)

	contract := ballot.NewContract(receipt.ContractAddress, r.Gateway)
	res := &DeployResult{Address: receipt.ContractAddress, Receipt: receipt}
	for i := range names {
		p, err := contract.Proposal(ctx, uint64(i))
		if err != nil {
			return res, fmt.Errorf("failed to read back proposal %d: %w", i, err)
		}
		r.Out.Proposal(p)
		res.Proposals = append(res.Proposals, *p)
	}

	return res, nil
}

// diagnostics prints chain height and deployer balance as proof of
// connection. Failures are not fatal.
func (r *Runner) diagnostics(ctx context.Context, from common.Address) {
	block, err := r.Gateway.BlockNumber(ctx)
	if err != nil {
		r.Log.Warn("failed to get block number", zap.Error(err))
	} else {
		r.Out.Infof("Latest block: %d", block)
	}

	balance, err := r.Gateway.BalanceAt(ctx, from, nil)
	if err != nil {
		r.Log.Warn("failed to get deployer balance", zap.Error(err))
		return
	}
	r.Out.Infof("Deployer balance: %s ETH", formatEther(balance))
}

func formatEther(wei *big.Int) string {
	eth := new(big.Float).Quo(new(big.Float).SetInt(wei), big.NewFloat(params.Ether))
	return eth.Text('f', 6)
}
