package chain

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rpcServer answers JSON-RPC requests from a per-method script
type rpcServer struct {
	mu     sync.Mutex
	calls  map[string]int
	handle func(method string, call int) (status int, result interface{}, rpcErr map[string]interface{})
}

func (s *rpcServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     json.RawMessage `json:"id"`
		Method string          `json:"method"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.calls[req.Method]++
	n := s.calls[req.Method]
	s.mu.Unlock()

	status, result, rpcErr := s.handle(req.Method, n)
	if status != http.StatusOK {
		http.Error(w, "unavailable", status)
		return
	}

	resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
	if rpcErr != nil {
		resp["error"] = rpcErr
	} else {
		resp["result"] = result
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *rpcServer) count(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

func newRPCServer(t *testing.T, handle func(method string, call int) (int, interface{}, map[string]interface{})) (*rpcServer, *Client) {
	t.Helper()
	srv := &rpcServer{calls: map[string]int{}, handle: handle}
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	client, err := Dial(context.Background(), ClientConfig{
		URL:           ts.URL + "/v2/secret-api-key",
		Timeout:       2 * time.Second,
		RetryAttempts: 3,
		RetryBackoff:  time.Millisecond,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(client.Close)
	return srv, client
}

func TestClientRetriesTransientReads(t *testing.T) {
	srv, client := newRPCServer(t, func(method string, call int) (int, interface{}, map[string]interface{}) {
		if call < 3 {
			return http.StatusServiceUnavailable, nil, nil
		}
		return http.StatusOK, "0x10", nil
	})

	n, err := client.BlockNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(16), n)
	assert.Equal(t, 3, srv.count("eth_blockNumber"))
}

func TestClientGivesUpAfterAttempts(t *testing.T) {
	srv, client := newRPCServer(t, func(string, int) (int, interface{}, map[string]interface{}) {
		return http.StatusBadGateway, nil, nil
	})

	_, err := client.BlockNumber(context.Background())
	require.ErrorIs(t, err, ErrNetwork)
	assert.NotContains(t, err.Error(), "secret-api-key")
	assert.Equal(t, 3, srv.count("eth_blockNumber"))
}

func TestClientDoesNotRetryNodeErrors(t *testing.T) {
	srv, client := newRPCServer(t, func(string, int) (int, interface{}, map[string]interface{}) {
		return http.StatusOK, nil, map[string]interface{}{"code": -32602, "message": "invalid params"}
	})

	_, err := client.BlockNumber(context.Background())
	require.ErrorIs(t, err, ErrNetwork)
	assert.Equal(t, 1, srv.count("eth_blockNumber"))
}

func TestClientPendingReceiptIsNotFound(t *testing.T) {
	_, client := newRPCServer(t, func(string, int) (int, interface{}, map[string]interface{}) {
		return http.StatusOK, nil, nil
	})

	_, err := client.TransactionReceipt(context.Background(), common.HexToHash("0x01"))
	require.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrNetwork)
}

func TestClientRevertKeepsIdentity(t *testing.T) {
	_, client := newRPCServer(t, func(string, int) (int, interface{}, map[string]interface{}) {
		return http.StatusOK, nil, map[string]interface{}{"code": 3, "message": "execution reverted", "data": "0x"}
	})

	_, err := client.EstimateGas(context.Background(), ethereumCallMsg())
	require.Error(t, err)
	assert.True(t, IsRevert(err))
	assert.NotErrorIs(t, err, ErrNetwork)
}

func TestClientSendIsNotRetried(t *testing.T) {
	srv, client := newRPCServer(t, func(string, int) (int, interface{}, map[string]interface{}) {
		return http.StatusServiceUnavailable, nil, nil
	})

	gw := newStubGateway()
	s := NewSubmitter(gw, SubmitterConfig{}, nil)
	_, err := s.Submit(context.Background(), testAccount(t), Call{Data: []byte{1}})
	require.NoError(t, err)

	err = client.SendTransaction(context.Background(), gw.sent[0])
	require.ErrorIs(t, err, ErrNetwork)
	assert.Equal(t, 1, srv.count("eth_sendRawTransaction"))
}

func ethereumCallMsg() ethereum.CallMsg {
	to := common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	return ethereum.CallMsg{To: &to, Data: []byte{0x01}}
}
