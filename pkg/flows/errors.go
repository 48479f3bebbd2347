package flows

import (
	"errors"

	"github.com/yourusername/ballot-cli/pkg/chain"
	"github.com/yourusername/ballot-cli/pkg/credentials"
	"github.com/yourusername/ballot-cli/pkg/encoding"
	"github.com/yourusername/ballot-cli/pkg/keys"
	"github.com/yourusername/ballot-cli/pkg/prompt"
)

var (
	// ErrNoProposals is returned when deploying without proposals
	ErrNoProposals = errors.New("at least one proposal is required")
	// ErrNoContractAddress is returned when a creation receipt has no address
	ErrNoContractAddress = errors.New("deployment receipt has no contract address")
)

// Kind is the category of a failure
type Kind int

const (
	KindOther Kind = iota
	KindValidation
	KindNetwork
	KindContract
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNetwork:
		return "network"
	case KindContract:
		return "contract"
	case KindTimeout:
		return "timeout"
	default:
		return "other"
	}
}

// Classify maps an error returned by a flow to its category
func Classify(err error) Kind {
	var contractErr *ContractError
	switch {
	case err == nil:
		return KindOther
	case errors.Is(err, chain.ErrTimeout):
		return KindTimeout
	case errors.As(err, &contractErr),
		errors.Is(err, chain.ErrReverted),
		errors.Is(err, ErrNoContractAddress),
		chain.IsRevert(err):
		return KindContract
	case errors.Is(err, keys.ErrInvalidAddress),
		errors.Is(err, keys.ErrInvalidKey),
		errors.Is(err, keys.ErrInvalidIndex),
		errors.Is(err, encoding.ErrTextTooLong),
		errors.Is(err, ErrNoProposals),
		errors.Is(err, credentials.ErrNoCredential),
		errors.Is(err, prompt.ErrNoInput):
		return KindValidation
	case errors.Is(err, chain.ErrNetwork),
		errors.Is(err, chain.ErrNetworkRejected),
		errors.Is(err, chain.ErrInsufficientFunds),
		errors.Is(err, chain.ErrSigningFailed):
		return KindNetwork
	default:
		return KindOther
	}
}
