// Package chain reads blocks and events from a Starknet JSON-RPC node.
package chain

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/rpc"

	"satoruIndexer/internal/felt"
)

// Client wraps a JSON-RPC connection to a Starknet node.
type Client struct {
	rpcClient *rpc.Client

	mu      sync.RWMutex
	tsCache map[uint64]uint64
}

// NewClient creates a new chain client from the RPC URL.
func NewClient(ctx context.Context, rpcURL string) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}

	return &Client{
		rpcClient: rpcClient,
		tsCache:   make(map[uint64]uint64),
	}, nil
}

// Close closes the underlying RPC client.
func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

// ChainID returns the chain id, decoded to its short string name when
// printable (e.g. SN_MAIN).
func (c *Client) ChainID(ctx context.Context) (string, error) {
	var id string
	if err := c.rpcClient.CallContext(ctx, &id, "starknet_chainId"); err != nil {
		return "", err
	}
	if word, ok := felt.Canonical(id); ok {
		if name, ok := felt.ToShortString(word); ok && name != "" {
			return name, nil
		}
	}
	return id, nil
}

// BlockNumber returns the latest accepted block number.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	var n uint64
	if err := c.rpcClient.CallContext(ctx, &n, "starknet_blockNumber"); err != nil {
		return 0, err
	}
	return n, nil
}

// BlockTimestamp returns the block timestamp in unix seconds, using an
// in-memory cache.
func (c *Client) BlockTimestamp(ctx context.Context, number uint64) (uint64, error) {
	c.mu.RLock()
	ts, ok := c.tsCache[number]
	c.mu.RUnlock()
	if ok {
		return ts, nil
	}

	var header struct {
		Timestamp uint64 `json:"timestamp"`
	}
	if err := c.rpcClient.CallContext(ctx, &header, "starknet_getBlockWithTxHashes", BlockID{Number: number}); err != nil {
		return 0, fmt.Errorf("get block %d: %w", number, err)
	}

	c.mu.Lock()
	c.tsCache[number] = header.Timestamp
	c.mu.Unlock()

	return header.Timestamp, nil
}

// GetEvents returns one page of events matching the filter.
func (c *Client) GetEvents(ctx context.Context, filter EventFilter) (EventsPage, error) {
	var page EventsPage
	if err := c.rpcClient.CallContext(ctx, &page, "starknet_getEvents", filter); err != nil {
		return EventsPage{}, err
	}
	return page, nil
}

// AllEvents follows continuation tokens until the filter is exhausted.
func (c *Client) AllEvents(ctx context.Context, filter EventFilter) ([]EmittedEvent, error) {
	var out []EmittedEvent
	filter.ContinuationToken = ""
	for {
		page, err := c.GetEvents(ctx, filter)
		if err != nil {
			return nil, err
		}
		out = append(out, page.Events...)
		if page.ContinuationToken == "" {
			return out, nil
		}
		if page.ContinuationToken == filter.ContinuationToken {
			return nil, fmt.Errorf("node repeated continuation token %q", page.ContinuationToken)
		}
		filter.ContinuationToken = page.ContinuationToken
	}
}
