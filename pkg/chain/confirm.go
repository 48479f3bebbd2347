package chain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

// TrackerConfig bounds confirmation polling
type TrackerConfig struct {
	Interval      time.Duration
	Timeout       time.Duration
	Confirmations uint64 // blocks including the inclusion block; 0 and 1 both mean "mined"
}

// Tracker waits for a submitted transaction to be mined.
// It only reads from the chain.
type Tracker struct {
	gw  Gateway
	cfg TrackerConfig
	log *zap.Logger

	// OnState, when set, is called on every state transition.
	OnState func(hash common.Hash, state State)
}

// NewTracker creates a confirmation tracker
func NewTracker(gw Gateway, cfg TrackerConfig, log *zap.Logger) *Tracker {
	if cfg.Interval <= 0 {
		cfg.Interval = 4 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Minute
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Tracker{gw: gw, cfg: cfg, log: log}
}

// AwaitConfirmation polls until hash is mined with the configured depth and
// returns its receipt. A reverted receipt is returned with a nil error; use
// Receipt.Err to turn it into one.
//
// It fails with ErrTimeout when the deadline passes first, and with the
// context error when ctx is cancelled. Either way the transaction may still
// be mined later.
func (t *Tracker) AwaitConfirmation(ctx context.Context, hash common.Hash) (*Receipt, error) {
	parent := ctx
	ctx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
	defer cancel()

	ticker := time.NewTicker(t.cfg.Interval)
	defer ticker.Stop()

	t.transition(hash, StateSubmitted)

	var mined *types.Receipt
	polls := 0
	for {
		polls++

		if mined == nil {
			r, err := t.gw.TransactionReceipt(ctx, hash)
			switch {
			case err == nil && r != nil:
				mined = r
				t.transition(hash, StateMined)
			case err == nil, errors.Is(err, ErrNotFound):
				// still pending
			case ctx.Err() != nil:
				return nil, t.stopped(parent, hash, polls)
			default:
				return nil, fmt.Errorf("failed to fetch receipt for %s: %w", hash.Hex(), err)
			}
		}

		if mined != nil {
			done, err := t.deepEnough(ctx, mined)
			if err != nil {
				if ctx.Err() != nil {
					return nil, t.stopped(parent, hash, polls)
				}
				return nil, err
			}
			if done {
				receipt := newReceipt(mined)
				t.transition(hash, receipt.State())
				t.log.Debug("transaction confirmed",
					zap.String("hash", hash.Hex()),
					zap.Uint64("block", receipt.BlockNumber),
					zap.Bool("succeeded", receipt.Succeeded),
					zap.Uint64("gas_used", receipt.GasUsed),
					zap.Int("polls", polls))
				return receipt, nil
			}
		}

		select {
		case <-ctx.Done():
			return nil, t.stopped(parent, hash, polls)
		case <-ticker.C:
		}
	}
}

// deepEnough reports whether the receipt's block has the required confirmations
func (t *Tracker) deepEnough(ctx context.Context, r *types.Receipt) (bool, error) {
	if t.cfg.Confirmations <= 1 || r.BlockNumber == nil {
		return true, nil
	}
	head, err := t.gw.BlockNumber(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get block number: %w", err)
	}
	included := r.BlockNumber.Uint64()
	return head >= included && head-included+1 >= t.cfg.Confirmations, nil
}

// stopped distinguishes our own deadline from cancellation by the caller
func (t *Tracker) stopped(parent context.Context, hash common.Hash, polls int) error {
	if err := parent.Err(); err != nil {
		t.log.Warn("stopped waiting for confirmation",
			zap.String("hash", hash.Hex()),
			zap.Error(err))
		return fmt.Errorf("stopped waiting for %s: %w", hash.Hex(), err)
	}
	return fmt.Errorf("%w: %s not mined after %s (%d polls)", ErrTimeout, hash.Hex(), t.cfg.Timeout, polls)
}

func (t *Tracker) transition(hash common.Hash, s State) {
	t.log.Debug("transaction state", zap.String("hash", hash.Hex()), zap.Stringer("state", s))
	if t.OnState != nil {
		t.OnState(hash, s)
	}
}
