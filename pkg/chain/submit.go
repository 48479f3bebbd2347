package chain

import (
	"context"
	"fmt"
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/yourusername/ballot-cli/pkg/keys"
)

// SubmitterConfig controls how transactions are priced
type SubmitterConfig struct {
	ChainID          *big.Int // nil asks the node
	GasLimit         uint64   // 0 estimates
	GasMultiplier    float64  // applied to estimates
	FallbackGasLimit uint64   // used when the estimate reverts; 0 refuses to send
}

// Submitter builds, signs and broadcasts one transaction per call.
// It never retries: a rejected transaction is returned to the caller.
type Submitter struct {
	gw  Gateway
	cfg SubmitterConfig
	log *zap.Logger
}

// NewSubmitter creates a transaction submitter
func NewSubmitter(gw Gateway, cfg SubmitterConfig, log *zap.Logger) *Submitter {
	if cfg.GasMultiplier < 1 {
		cfg.GasMultiplier = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Submitter{gw: gw, cfg: cfg, log: log}
}

// Submit signs call with the account key and broadcasts it
func (s *Submitter) Submit(ctx context.Context, acct *keys.Account, call Call) (*PendingTransaction, error) {
	from := acct.Address()
	value := call.Value
	if value == nil {
		value = new(big.Int)
	}

	chainID := s.cfg.ChainID
	if chainID == nil {
		id, err := s.gw.ChainID(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get chain id: %w", err)
		}
		chainID = id
	}

	nonce, err := s.gw.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}

	tip, feeCap, err := s.fees(ctx)
	if err != nil {
		return nil, err
	}

	gas, err := s.gasLimit(ctx, ethereum.CallMsg{
		From:      from,
		To:        call.To,
		GasFeeCap: feeCap,
		GasTipCap: tip,
		Value:     value,
		Data:      call.Data,
	}, methodName(call))
	if err != nil {
		return nil, err
	}

	balance, err := s.gw.BalanceAt(ctx, from, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	cost := new(big.Int).Mul(new(big.Int).SetUint64(gas), feeCap)
	cost.Add(cost, value)
	if balance.Cmp(cost) < 0 {
		return nil, fmt.Errorf("%w: need up to %s wei, have %s", ErrInsufficientFunds, cost, balance)
	}

	tx, err := types.SignNewTx(acct.PrivateKey(), types.LatestSignerForChainID(chainID), &types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        call.To,
		Value:     value,
		Data:      call.Data,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSigningFailed, err)
	}

	if err := s.gw.SendTransaction(ctx, tx); err != nil {
		if isInsufficientFunds(err) {
			return nil, fmt.Errorf("%w: %w", ErrInsufficientFunds, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrNetworkRejected, err)
	}

	s.log.Info("transaction submitted",
		zap.String("hash", tx.Hash().Hex()),
		zap.String("method", methodName(call)),
		zap.Uint64("nonce", nonce),
		zap.Uint64("gas", gas),
		zap.Stringer("max_fee_per_gas", feeCap))

	return &PendingTransaction{
		Hash:   tx.Hash(),
		From:   from,
		To:     call.To,
		Method: methodName(call),
		Args:   call.Args,
		Nonce:  nonce,
		Gas:    gas,
	}, nil
}

// fees returns the priority tip and a fee cap of twice the base fee plus the tip
func (s *Submitter) fees(ctx context.Context) (tip, feeCap *big.Int, err error) {
	tip, err = s.gw.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get gas tip: %w", err)
	}

	head, err := s.gw.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get latest header: %w", err)
	}

	feeCap = new(big.Int).Set(tip)
	if head.BaseFee != nil {
		feeCap.Add(feeCap, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))
	}
	return tip, feeCap, nil
}

func (s *Submitter) gasLimit(ctx context.Context, msg ethereum.CallMsg, method string) (uint64, error) {
	if s.cfg.GasLimit > 0 {
		return s.cfg.GasLimit, nil
	}

	est, err := s.gw.EstimateGas(ctx, msg)
	if err != nil {
		if !IsRevert(err) {
			return 0, fmt.Errorf("failed to estimate gas: %w", err)
		}
		if s.cfg.FallbackGasLimit == 0 {
			return 0, fmt.Errorf("%w: %s would revert: %v", ErrReverted, method, err)
		}
		s.log.Warn("gas estimate reverted, sending with fallback limit",
			zap.String("method", method),
			zap.Uint64("gas", s.cfg.FallbackGasLimit),
			zap.Error(err))
		return s.cfg.FallbackGasLimit, nil
	}

	scaled := math.Ceil(float64(est) * s.cfg.GasMultiplier)
	if scaled >= math.MaxUint64 {
		return est, nil
	}
	return uint64(scaled), nil
}

func methodName(call Call) string {
	if call.Method != "" {
		return call.Method
	}
	if call.IsCreation() {
		return "constructor"
	}
	return "call"
}
