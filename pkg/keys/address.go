package keys

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrInvalidAddress is returned for anything that is not 0x followed by 40 hex characters.
	ErrInvalidAddress = errors.New("invalid address")
	// ErrInvalidIndex is returned when a proposal index is not a non-negative integer.
	ErrInvalidIndex = errors.New("invalid proposal index")
)

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// ValidateAddress checks input against the strict 0x + 40 hex pattern and converts it.
// Mixed-case input is accepted without checksum verification.
// Input is matched as given; prompts trim their answers before this.
func ValidateAddress(input string) (common.Address, error) {
	if input == "" {
		return common.Address{}, fmt.Errorf("%w: address not provided", ErrInvalidAddress)
	}
	if !addressPattern.MatchString(input) {
		return common.Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, input)
	}
	return common.HexToAddress(input), nil
}

// ParseProposalIndex parses a zero-based proposal index.
func ParseProposalIndex(input string) (uint64, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return 0, fmt.Errorf("%w: index not provided", ErrInvalidIndex)
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidIndex, s)
	}
	return n, nil
}
