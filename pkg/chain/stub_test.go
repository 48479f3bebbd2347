package chain

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/params"
)

// stubGateway is a scripted Gateway for unit tests
type stubGateway struct {
	mu sync.Mutex

	chainID     *big.Int
	head        uint64
	baseFee     *big.Int
	tip         *big.Int
	balance     *big.Int
	nonce       uint64
	estimate    uint64
	estimateErr error
	sendErr     error

	receipt      func(poll int) (*types.Receipt, error)
	receiptPolls int
	blockNumber  func() (uint64, error)

	chainIDCalls int
	sent         []*types.Transaction
}

func newStubGateway() *stubGateway {
	return &stubGateway{
		chainID:  big.NewInt(11155111),
		head:     100,
		baseFee:  big.NewInt(params.GWei),
		tip:      big.NewInt(2 * params.GWei),
		balance:  new(big.Int).Mul(big.NewInt(params.Ether), big.NewInt(1)),
		nonce:    7,
		estimate: 50_000,
	}
}

func (g *stubGateway) ChainID(ctx context.Context) (*big.Int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.chainIDCalls++
	return g.chainID, nil
}

func (g *stubGateway) BlockNumber(ctx context.Context) (uint64, error) {
	if g.blockNumber != nil {
		return g.blockNumber()
	}
	return g.head, nil
}

func (g *stubGateway) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	return &types.Header{Number: new(big.Int).SetUint64(g.head), BaseFee: g.baseFee}, nil
}

func (g *stubGateway) BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error) {
	return g.balance, nil
}

func (g *stubGateway) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	return nil, nil
}

func (g *stubGateway) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return g.nonce, nil
}

func (g *stubGateway) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	return g.tip, nil
}

func (g *stubGateway) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	return g.estimate, g.estimateErr
}

func (g *stubGateway) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	g.mu.Lock()
	g.receiptPolls++
	poll := g.receiptPolls
	g.mu.Unlock()

	if g.receipt == nil {
		return nil, ErrNotFound
	}
	return g.receipt(poll)
}

func (g *stubGateway) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.sendErr != nil {
		return g.sendErr
	}
	g.sent = append(g.sent, tx)
	return nil
}

func (g *stubGateway) polls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.receiptPolls
}

// revertErr mimics the JSON-RPC error geth returns for execution reverts
type revertErr struct{}

func (revertErr) Error() string  { return "execution reverted" }
func (revertErr) ErrorCode() int { return 3 }
