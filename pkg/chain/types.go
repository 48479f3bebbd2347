package chain

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Call describes a contract call or, with a nil To, a contract creation.
// Data must already be ABI encoded.
type Call struct {
	To     *common.Address
	Data   []byte
	Value  *big.Int
	Method string        // for reporting only
	Args   []interface{} // for reporting only
}

// IsCreation reports whether the call deploys a contract.
func (c Call) IsCreation() bool {
	return c.To == nil
}

// PendingTransaction is a broadcast transaction whose outcome is not yet known.
type PendingTransaction struct {
	Hash   common.Hash
	From   common.Address
	To     *common.Address
	Method string
	Args   []interface{}
	Nonce  uint64
	Gas    uint64
}

// State is a step of the confirmation state machine.
type State int

const (
	StateSubmitted State = iota
	StateMined
	StateSucceeded
	StateReverted
)

func (s State) String() string {
	switch s {
	case StateSubmitted:
		return "submitted"
	case StateMined:
		return "mined"
	case StateSucceeded:
		return "succeeded"
	case StateReverted:
		return "reverted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Receipt is the outcome of a mined transaction.
type Receipt struct {
	TxHash            common.Hash
	Succeeded         bool
	BlockNumber       uint64
	BlockHash         common.Hash
	ContractAddress   common.Address // zero unless the transaction created a contract
	GasUsed           uint64
	EffectiveGasPrice *big.Int
}

// State returns StateSucceeded or StateReverted.
func (r *Receipt) State() State {
	if r.Succeeded {
		return StateSucceeded
	}
	return StateReverted
}

// HasContractAddress reports whether the receipt carries a created contract.
func (r *Receipt) HasContractAddress() bool {
	return r.ContractAddress != (common.Address{})
}

// Err returns an ErrReverted error for a reverted receipt and nil otherwise.
func (r *Receipt) Err() error {
	if r.Succeeded {
		return nil
	}
	return fmt.Errorf("%w: %s in block %d", ErrReverted, r.TxHash.Hex(), r.BlockNumber)
}

func newReceipt(r *types.Receipt) *Receipt {
	out := &Receipt{
		TxHash:            r.TxHash,
		Succeeded:         r.Status == types.ReceiptStatusSuccessful,
		BlockHash:         r.BlockHash,
		ContractAddress:   r.ContractAddress,
		GasUsed:           r.GasUsed,
		EffectiveGasPrice: r.EffectiveGasPrice,
	}
	if r.BlockNumber != nil {
		out.BlockNumber = r.BlockNumber.Uint64()
	}
	return out
}
