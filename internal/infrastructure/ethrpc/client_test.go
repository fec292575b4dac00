package ethrpc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

type rpcCall struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
	ID     json.RawMessage   `json:"id"`
}

type fakeNode struct {
	mu      sync.Mutex
	calls   []rpcCall
	results map[string]any
}

func (n *fakeNode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var call rpcCall
	if err := json.NewDecoder(r.Body).Decode(&call); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	n.mu.Lock()
	n.calls = append(n.calls, call)
	result, ok := n.results[call.Method]
	n.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	response := map[string]any{"jsonrpc": "2.0", "id": call.ID}
	if ok {
		response["result"] = result
	} else {
		response["error"] = map[string]any{"code": -32601, "message": "method not found"}
	}
	_ = json.NewEncoder(w).Encode(response)
}

func newTestClient(t *testing.T, node *fakeNode) *Client {
	t.Helper()
	server := httptest.NewServer(node)
	t.Cleanup(server.Close)

	client, err := NewClient(context.Background(), Config{URL: server.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(client.Close)
	return client
}

func TestNewClientRequiresURL(t *testing.T) {
	if _, err := NewClient(context.Background(), Config{}); err == nil {
		t.Fatal("expected error for empty url")
	}
}

func TestClientChainIDAndNonce(t *testing.T) {
	node := &fakeNode{results: map[string]any{
		"eth_chainId":             "0x2105",
		"eth_getTransactionCount": "0x7",
	}}
	client := newTestClient(t, node)
	ctx := context.Background()

	chainID, err := client.ChainID(ctx)
	if err != nil {
		t.Fatalf("chain id: %v", err)
	}
	if chainID.Uint64() != 8453 {
		t.Errorf("expected chain id 8453, got %s", chainID)
	}

	account := common.HexToAddress("0x1234567890123456789012345678901234567890")
	nonce, err := client.NonceAt(ctx, account, nil)
	if err != nil {
		t.Fatalf("nonce: %v", err)
	}
	if nonce != 7 {
		t.Errorf("expected nonce 7, got %d", nonce)
	}

	node.mu.Lock()
	defer node.mu.Unlock()
	last := node.calls[len(node.calls)-1]
	if last.Method != "eth_getTransactionCount" || len(last.Params) != 2 {
		t.Fatalf("unexpected call %+v", last)
	}
	var tag string
	if err := json.Unmarshal(last.Params[1], &tag); err != nil {
		t.Fatalf("decode block tag: %v", err)
	}
	if tag != "latest" {
		t.Errorf("expected nonce at latest block, got %q", tag)
	}
}

func TestClientPingSurfacesRPCError(t *testing.T) {
	client := newTestClient(t, &fakeNode{results: map[string]any{}})
	if err := client.Ping(context.Background()); err == nil {
		t.Fatal("expected ping to fail when eth_chainId is unavailable")
	}
}
