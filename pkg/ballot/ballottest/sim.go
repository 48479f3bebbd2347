// Package ballottest provides an in-memory Gateway that behaves like a node
// hosting Ballot contracts. It records every call so tests can assert on
// network traffic.
package ballottest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/params"

	"github.com/yourusername/ballot-cli/pkg/ballot"
	"github.com/yourusername/ballot-cli/pkg/chain"
)

// Bytecode is the fake creation code the simulator recognises
var Bytecode = []byte{0x60, 0x80, 0x60, 0x40, 0x52, 0xba, 0x11, 0x07}

const gasPerTx = 60_000

// RevertError mimics the JSON-RPC error a node returns for an execution revert
type RevertError struct {
	Reason string
}

func (e *RevertError) Error() string  { return "execution reverted: " + e.Reason }
func (e *RevertError) ErrorCode() int { return 3 }

type voter struct {
	weight   uint64
	voted    bool
	delegate common.Address
	vote     uint64
}

type proposal struct {
	name      [32]byte
	voteCount uint64
}

type contractState struct {
	chairperson common.Address
	proposals   []proposal
	voters      map[common.Address]*voter
}

func (c *contractState) clone() *contractState {
	out := &contractState{
		chairperson: c.chairperson,
		proposals:   append([]proposal(nil), c.proposals...),
		voters:      make(map[common.Address]*voter, len(c.voters)),
	}
	for addr, v := range c.voters {
		cp := *v
		out.voters[addr] = &cp
	}
	return out
}

func (c *contractState) voter(addr common.Address) *voter {
	v, ok := c.voters[addr]
	if !ok {
		v = &voter{}
		c.voters[addr] = v
	}
	return v
}

// Sim is a chain.Gateway backed by in-memory Ballot contracts
type Sim struct {
	mu sync.Mutex

	chainID *big.Int
	block   uint64
	abi     abi.ABI

	contracts map[common.Address]*contractState
	receipts  map[common.Hash]*types.Receipt
	polls     map[common.Hash]int
	nonces    map[common.Address]uint64
	balances  map[common.Address]*big.Int
	calls     map[string]int

	// PendingPolls is how many receipt lookups return not-found before a
	// transaction is reported as mined.
	PendingPolls int
	// NeverMine keeps every transaction pending forever.
	NeverMine bool
	// SendErr, when set, is returned by SendTransaction.
	SendErr error
	// DefaultBalance is the balance of any account not set explicitly.
	DefaultBalance *big.Int
}

var _ chain.Gateway = (*Sim)(nil)

// New creates an empty simulated chain
func New() *Sim {
	return &Sim{
		chainID:        big.NewInt(11155111),
		block:          1,
		abi:            ballot.MustABI(),
		contracts:      make(map[common.Address]*contractState),
		receipts:       make(map[common.Hash]*types.Receipt),
		polls:          make(map[common.Hash]int),
		nonces:         make(map[common.Address]uint64),
		balances:       make(map[common.Address]*big.Int),
		calls:          make(map[string]int),
		DefaultBalance: new(big.Int).Mul(big.NewInt(params.Ether), big.NewInt(10)),
	}
}

// ChainIDValue returns the simulated chain id
func (s *Sim) ChainIDValue() *big.Int {
	return new(big.Int).Set(s.chainID)
}

// SetBalance overrides the balance of addr
func (s *Sim) SetBalance(addr common.Address, wei *big.Int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[addr] = wei
}

// Calls returns how many times the JSON-RPC method was invoked
func (s *Sim) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

// TotalCalls returns the number of gateway calls of any kind
func (s *Sim) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.calls {
		total += n
	}
	return total
}

// Sent returns the number of broadcast transactions
func (s *Sim) Sent() int {
	return s.Calls("eth_sendRawTransaction")
}

// ResetCalls clears the call counters
func (s *Sim) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = make(map[string]int)
}

func (s *Sim) record(method string) {
	s.calls[method]++
}

func (s *Sim) ChainID(ctx context.Context) (*big.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("eth_chainId")
	return s.ChainIDValue(), nil
}

func (s *Sim) BlockNumber(ctx context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("eth_blockNumber")
	return s.block, nil
}

func (s *Sim) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("eth_getBlockByNumber")
	return &types.Header{
		Number:  new(big.Int).SetUint64(s.block),
		BaseFee: big.NewInt(params.GWei),
	}, nil
}

func (s *Sim) BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("eth_getBalance")
	if b, ok := s.balances[account]; ok {
		return new(big.Int).Set(b), nil
	}
	return new(big.Int).Set(s.DefaultBalance), nil
}

func (s *Sim) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("eth_getTransactionCount")
	return s.nonces[account], nil
}

func (s *Sim) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("eth_maxPriorityFeePerGas")
	return big.NewInt(params.GWei), nil
}

// EstimateGas dry-runs the call against a copy of the contract state and
// reverts like a node would.
func (s *Sim) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("eth_estimateGas")

	if msg.To == nil {
		if !bytes.HasPrefix(msg.Data, Bytecode) {
			return 0, &RevertError{Reason: "unknown bytecode"}
		}
		return gasPerTx, nil
	}
	if c, ok := s.contracts[*msg.To]; ok {
		if err := s.execute(c.clone(), msg.From, msg.Data); err != nil {
			return 0, &RevertError{Reason: err.Error()}
		}
	}
	return gasPerTx, nil
}

func (s *Sim) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("eth_call")

	if msg.To == nil {
		return nil, errors.New("eth_call without target")
	}
	c, ok := s.contracts[*msg.To]
	if !ok {
		return nil, nil // no code at address
	}
	if len(msg.Data) < 4 {
		return nil, &RevertError{Reason: "no selector"}
	}
	method, err := s.abi.MethodById(msg.Data[:4])
	if err != nil {
		return nil, &RevertError{Reason: "unknown selector"}
	}
	args, err := method.Inputs.Unpack(msg.Data[4:])
	if err != nil {
		return nil, &RevertError{Reason: "bad arguments"}
	}

	switch method.Name {
	case ballot.MethodProposals:
		idx := args[0].(*big.Int)
		if !idx.IsUint64() || idx.Uint64() >= uint64(len(c.proposals)) {
			return nil, &RevertError{Reason: "index out of bounds"}
		}
		p := c.proposals[idx.Uint64()]
		return method.Outputs.Pack(p.name, new(big.Int).SetUint64(p.voteCount))
	case ballot.MethodChairperson:
		return method.Outputs.Pack(c.chairperson)
	case ballot.MethodVoters:
		v := c.voters[args[0].(common.Address)]
		if v == nil {
			v = &voter{}
		}
		return method.Outputs.Pack(new(big.Int).SetUint64(v.weight), v.voted, v.delegate, new(big.Int).SetUint64(v.vote))
	case ballot.MethodWinningProposal:
		return method.Outputs.Pack(new(big.Int).SetUint64(c.winningProposal()))
	case ballot.MethodWinnerName:
		if len(c.proposals) == 0 {
			return nil, &RevertError{Reason: "index out of bounds"}
		}
		return method.Outputs.Pack(c.proposals[c.winningProposal()].name)
	default:
		return nil, &RevertError{Reason: method.Name + " is not a view"}
	}
}

// SendTransaction recovers the sender, applies the call and stores a receipt
func (s *Sim) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("eth_sendRawTransaction")

	if s.SendErr != nil {
		return s.SendErr
	}

	from, err := types.Sender(types.LatestSignerForChainID(s.chainID), tx)
	if err != nil {
		return fmt.Errorf("invalid sender: %w", err)
	}
	if want := s.nonces[from]; tx.Nonce() != want {
		return fmt.Errorf("nonce too low: have %d, want %d", tx.Nonce(), want)
	}
	s.nonces[from]++
	s.block++

	receipt := &types.Receipt{
		Type:              tx.Type(),
		TxHash:            tx.Hash(),
		BlockNumber:       new(big.Int).SetUint64(s.block),
		GasUsed:           gasPerTx,
		EffectiveGasPrice: big.NewInt(2 * params.GWei),
		Status:            types.ReceiptStatusSuccessful,
	}

	if tx.To() == nil {
		addr, err := s.deploy(from, tx)
		if err != nil {
			receipt.Status = types.ReceiptStatusFailed
		} else {
			receipt.ContractAddress = addr
		}
	} else if c, ok := s.contracts[*tx.To()]; ok {
		if err := s.execute(c, from, tx.Data()); err != nil {
			receipt.Status = types.ReceiptStatusFailed
		}
	}

	s.receipts[tx.Hash()] = receipt
	return nil
}

func (s *Sim) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("eth_getTransactionReceipt")

	r, ok := s.receipts[txHash]
	if !ok || s.NeverMine {
		return nil, chain.ErrNotFound
	}
	s.polls[txHash]++
	if s.polls[txHash] <= s.PendingPolls {
		return nil, chain.ErrNotFound
	}
	return r, nil
}

func (s *Sim) deploy(from common.Address, tx *types.Transaction) (common.Address, error) {
	data := tx.Data()
	if !bytes.HasPrefix(data, Bytecode) {
		return common.Address{}, errors.New("unknown bytecode")
	}
	args, err := s.abi.Constructor.Inputs.Unpack(data[len(Bytecode):])
	if err != nil {
		return common.Address{}, err
	}
	names := args[0].([][32]byte)

	c := &contractState{
		chairperson: from,
		voters:      make(map[common.Address]*voter),
	}
	c.voter(from).weight = 1
	for _, n := range names {
		c.proposals = append(c.proposals, proposal{name: n})
	}

	addr := crypto.CreateAddress(from, tx.Nonce())
	s.contracts[addr] = c
	return addr, nil
}

// execute applies the Ballot rules to c; a returned error means the call reverts
func (s *Sim) execute(c *contractState, from common.Address, data []byte) error {
	if len(data) < 4 {
		return errors.New("no selector")
	}
	method, err := s.abi.MethodById(data[:4])
	if err != nil {
		return err
	}
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return err
	}

	switch method.Name {
	case ballot.MethodGiveRightToVote:
		if from != c.chairperson {
			return errors.New("Only chairperson can give right to vote.")
		}
		v := c.voter(args[0].(common.Address))
		if v.voted {
			return errors.New("The voter already voted.")
		}
		if v.weight != 0 {
			return errors.New("voter already has the right to vote")
		}
		v.weight = 1
		return nil

	case ballot.MethodDelegate:
		sender := c.voter(from)
		to := args[0].(common.Address)
		if sender.weight == 0 {
			return errors.New("You have no right to vote")
		}
		if sender.voted {
			return errors.New("You already voted.")
		}
		if to == from {
			return errors.New("Self-delegation is disallowed.")
		}
		for hops := 0; c.voter(to).delegate != (common.Address{}); hops++ {
			to = c.voter(to).delegate
			if to == from {
				return errors.New("Found loop in delegation.")
			}
			if hops > 256 {
				return errors.New("delegation chain too long")
			}
		}
		delegate := c.voter(to)
		if delegate.weight < 1 {
			return errors.New("delegate has no right to vote")
		}
		sender.voted = true
		sender.delegate = to
		if delegate.voted {
			c.proposals[delegate.vote].voteCount += sender.weight
		} else {
			delegate.weight += sender.weight
		}
		return nil

	case ballot.MethodVote:
		sender := c.voter(from)
		idx := args[0].(*big.Int)
		if sender.weight == 0 {
			return errors.New("Has no right to vote")
		}
		if sender.voted {
			return errors.New("Already voted.")
		}
		if !idx.IsUint64() || idx.Uint64() >= uint64(len(c.proposals)) {
			return errors.New("index out of bounds")
		}
		sender.voted = true
		sender.vote = idx.Uint64()
		c.proposals[idx.Uint64()].voteCount += sender.weight
		return nil

	default:
		return fmt.Errorf("%s cannot be called in a transaction", method.Name)
	}
}

func (c *contractState) winningProposal() uint64 {
	var best, winner uint64
	for i, p := range c.proposals {
		if p.voteCount > best {
			best = p.voteCount
			winner = uint64(i)
		}
	}
	return winner
}
