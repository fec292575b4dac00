package ethrpc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// Client is a go-ethereum client bound to one HTTP JSON-RPC endpoint. It
// serves nonce lookups, chain id, raw transaction broadcast and receipt polling.
type Client struct {
	*ethclient.Client
}

type Config struct {
	URL string
	// RequestTimeout bounds a single HTTP round trip. Zero leaves requests
	// bounded only by the caller's context.
	RequestTimeout time.Duration
}

func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("rpc url is required")
	}
	httpClient := &http.Client{
		Timeout: cfg.RequestTimeout,
		Transport: &http.Transport{
			MaxIdleConnsPerHost: 4,
			IdleConnTimeout:     90 * time.Second,
		},
	}
	rpcClient, err := rpc.DialOptions(ctx, cfg.URL, rpc.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", cfg.URL, err)
	}
	return &Client{Client: ethclient.NewClient(rpcClient)}, nil
}

// Ping checks that the endpoint answers eth_chainId.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.ChainID(ctx)
	return err
}
