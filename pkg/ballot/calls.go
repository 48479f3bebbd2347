package ballot

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/yourusername/ballot-cli/pkg/chain"
	"github.com/yourusername/ballot-cli/pkg/encoding"
)

// DeployCall builds the creation transaction: bytecode followed by the
// ABI-encoded bytes32[] of proposal names.
func DeployCall(bytecode []byte, proposalNames []string) (chain.Call, error) {
	if len(bytecode) == 0 {
		return chain.Call{}, fmt.Errorf("empty contract bytecode")
	}

	names, err := encoding.Bytes32Array(proposalNames)
	if err != nil {
		return chain.Call{}, fmt.Errorf("failed to encode proposals: %w", err)
	}

	args, err := MustABI().Pack("", names)
	if err != nil {
		return chain.Call{}, fmt.Errorf("failed to pack constructor: %w", err)
	}

	data := make([]byte, 0, len(bytecode)+len(args))
	data = append(data, bytecode...)
	data = append(data, args...)

	return chain.Call{
		Data:   data,
		Method: "constructor",
		Args:   []interface{}{proposalNames},
	}, nil
}

// GiveRightToVoteCall builds giveRightToVote(voter)
func GiveRightToVoteCall(contract, voter common.Address) (chain.Call, error) {
	return methodCall(contract, MethodGiveRightToVote, voter)
}

// DelegateCall builds delegate(to)
func DelegateCall(contract, to common.Address) (chain.Call, error) {
	return methodCall(contract, MethodDelegate, to)
}

// VoteCall builds vote(proposal)
func VoteCall(contract common.Address, proposal uint64) (chain.Call, error) {
	return methodCall(contract, MethodVote, new(big.Int).SetUint64(proposal))
}

func methodCall(contract common.Address, method string, args ...interface{}) (chain.Call, error) {
	data, err := MustABI().Pack(method, args...)
	if err != nil {
		return chain.Call{}, fmt.Errorf("failed to pack %s: %w", method, err)
	}
	to := contract
	return chain.Call{
		To:     &to,
		Data:   data,
		Method: method,
		Args:   args,
	}, nil
}
