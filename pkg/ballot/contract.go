package ballot

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/yourusername/ballot-cli/pkg/chain"
	"github.com/yourusername/ballot-cli/pkg/encoding"
)

// maxProposals bounds ListProposals when the node never reverts
const maxProposals = 1024

// Proposal is one ballot option as stored on-chain
type Proposal struct {
	Index     uint64
	Name      string
	RawName   [32]byte
	VoteCount *big.Int
}

// Voter is the contract's record for an address
type Voter struct {
	Weight   *big.Int
	Voted    bool
	Delegate common.Address
	Vote     *big.Int
}

// Contract reads state from a deployed Ballot
type Contract struct {
	address common.Address
	gw      chain.Gateway
	abi     abi.ABI
}

// NewContract binds a deployed Ballot at address
func NewContract(address common.Address, gw chain.Gateway) *Contract {
	return &Contract{address: address, gw: gw, abi: MustABI()}
}

// Address returns the contract address
func (c *Contract) Address() common.Address {
	return c.address
}

// Call performs a read-only call of method and returns the decoded outputs
func (c *Contract) Call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s: %w", method, err)
	}

	to := c.address
	raw, err := c.gw.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("%s call failed: %w", method, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%s returned no data; is %s a Ballot contract?", method, c.address.Hex())
	}

	out, err := c.abi.Unpack(method, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s: %w", method, err)
	}
	return out, nil
}

// Proposal reads proposals(index)
func (c *Contract) Proposal(ctx context.Context, index uint64) (*Proposal, error) {
	out, err := c.Call(ctx, MethodProposals, new(big.Int).SetUint64(index))
	if err != nil {
		return nil, err
	}
	if len(out) != 2 {
		return nil, fmt.Errorf("proposals returned %d values, want 2", len(out))
	}

	name, ok := out[0].([32]byte)
	if !ok {
		return nil, fmt.Errorf("proposals name has type %T", out[0])
	}
	count, ok := out[1].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("proposals voteCount has type %T", out[1])
	}

	return &Proposal{
		Index:     index,
		Name:      encoding.Bytes32String(name),
		RawName:   name,
		VoteCount: count,
	}, nil
}

// Proposals reads every proposal. The contract has no length getter, so it
// reads until the array access reverts.
func (c *Contract) Proposals(ctx context.Context) ([]Proposal, error) {
	var out []Proposal
	for i := uint64(0); i < maxProposals; i++ {
		p, err := c.Proposal(ctx, i)
		if err != nil {
			if chain.IsRevert(err) {
				break
			}
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}

// Chairperson reads chairperson()
func (c *Contract) Chairperson(ctx context.Context) (common.Address, error) {
	out, err := c.Call(ctx, MethodChairperson)
	if err != nil {
		return common.Address{}, err
	}
	addr, ok := out[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("chairperson has type %T", out[0])
	}
	return addr, nil
}

// Voter reads voters(addr)
func (c *Contract) Voter(ctx context.Context, addr common.Address) (*Voter, error) {
	out, err := c.Call(ctx, MethodVoters, addr)
	if err != nil {
		return nil, err
	}
	if len(out) != 4 {
		return nil, fmt.Errorf("voters returned %d values, want 4", len(out))
	}

	v := &Voter{}
	var ok bool
	if v.Weight, ok = out[0].(*big.Int); !ok {
		return nil, fmt.Errorf("voters weight has type %T", out[0])
	}
	if v.Voted, ok = out[1].(bool); !ok {
		return nil, fmt.Errorf("voters voted has type %T", out[1])
	}
	if v.Delegate, ok = out[2].(common.Address); !ok {
		return nil, fmt.Errorf("voters delegate has type %T", out[2])
	}
	if v.Vote, ok = out[3].(*big.Int); !ok {
		return nil, fmt.Errorf("voters vote has type %T", out[3])
	}
	return v, nil
}

// WinnerName reads winnerName()
func (c *Contract) WinnerName(ctx context.Context) (string, error) {
	out, err := c.Call(ctx, MethodWinnerName)
	if err != nil {
		return "", err
	}
	name, ok := out[0].([32]byte)
	if !ok {
		return "", fmt.Errorf("winnerName has type %T", out[0])
	}
	return encoding.Bytes32String(name), nil
}

// WinningProposal reads winningProposal()
func (c *Contract) WinningProposal(ctx context.Context) (uint64, error) {
	out, err := c.Call(ctx, MethodWinningProposal)
	if err != nil {
		return 0, err
	}
	idx, ok := out[0].(*big.Int)
	if !ok || !idx.IsUint64() {
		return 0, fmt.Errorf("winningProposal returned %v", out[0])
	}
	return idx.Uint64(), nil
}
