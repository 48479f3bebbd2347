package ballot

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Contract method names
const (
	MethodGiveRightToVote = "giveRightToVote"
	MethodDelegate        = "delegate"
	MethodVote            = "vote"
	MethodProposals       = "proposals"
	MethodChairperson     = "chairperson"
	MethodVoters          = "voters"
	MethodWinningProposal = "winningProposal"
	MethodWinnerName      = "winnerName"
)

// ABIJSON is the interface of the Ballot contract
const ABIJSON = `[
  {"type":"constructor","stateMutability":"nonpayable","inputs":[{"name":"proposalNames","type":"bytes32[]"}]},
  {"type":"function","name":"chairperson","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
  {"type":"function","name":"delegate","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"}],"outputs":[]},
  {"type":"function","name":"giveRightToVote","stateMutability":"nonpayable","inputs":[{"name":"voter","type":"address"}],"outputs":[]},
  {"type":"function","name":"proposals","stateMutability":"view","inputs":[{"name":"","type":"uint256"}],"outputs":[{"name":"name","type":"bytes32"},{"name":"voteCount","type":"uint256"}]},
  {"type":"function","name":"vote","stateMutability":"nonpayable","inputs":[{"name":"proposal","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"voters","stateMutability":"view","inputs":[{"name":"","type":"address"}],"outputs":[{"name":"weight","type":"uint256"},{"name":"voted","type":"bool"},{"name":"delegate","type":"address"},{"name":"vote","type":"uint256"}]},
  {"type":"function","name":"winnerName","stateMutability":"view","inputs":[],"outputs":[{"name":"winnerName_","type":"bytes32"}]},
  {"type":"function","name":"winningProposal","stateMutability":"view","inputs":[],"outputs":[{"name":"winningProposal_","type":"uint256"}]}
]`

var (
	parsedOnce sync.Once
	parsedABI  abi.ABI
	parseErr   error
)

// ABI returns the parsed Ballot interface
func ABI() (abi.ABI, error) {
	parsedOnce.Do(func() {
		parsedABI, parseErr = abi.JSON(strings.NewReader(ABIJSON))
		if parseErr != nil {
			parseErr = fmt.Errorf("failed to parse ballot ABI: %w", parseErr)
		}
	})
	return parsedABI, parseErr
}

// MustABI is ABI for callers that cannot recover from a broken embedded ABI
func MustABI() abi.ABI {
	a, err := ABI()
	if err != nil {
		panic(err)
	}
	return a
}
