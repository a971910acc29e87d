// Copyright 2025 Certen Protocol
//
// Blockchain client (§6, consumed by C5): connectivity to the on-chain
// registry. Adapted from the reference implementation's ethclient wrapper
// — same dial/health idiom — generalized to the registry
// operations this spec's Upload/Challenges repositories need instead of
// generic contract calls.
package chainclient

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
)

// SyncStatus mirrors eth_syncing's non-false response shape.
type SyncStatus struct {
	CurrentBlock uint64
	HighestBlock uint64
}

// Client is the external blockchain client interface C5 consumes. The
// concrete EthClient below backs it with go-ethereum's ethclient; tests
// substitute a fake.
type Client interface {
	IsSyncing(ctx context.Context) (bool, *SyncStatus, error)
}

// EthClient is the go-ethereum backed Client implementation.
type EthClient struct {
	rpc *ethclient.Client
	url string
}

// Dial connects to an Ethereum-compatible JSON-RPC endpoint.
func Dial(url string) (*EthClient, error) {
	rpc, err := ethclient.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("chainclient: dial %s: %w", url, err)
	}
	return &EthClient{rpc: rpc, url: url}, nil
}

// IsSyncing reports the node's sync progress.
func (c *EthClient) IsSyncing(ctx context.Context) (bool, *SyncStatus, error) {
	progress, err := c.rpc.SyncProgress(ctx)
	if err != nil {
		return false, nil, fmt.Errorf("chainclient: sync progress: %w", err)
	}
	if progress == nil {
		return false, nil, nil
	}
	return true, &SyncStatus{CurrentBlock: progress.CurrentBlock, HighestBlock: progress.HighestBlock}, nil
}

// Health checks basic RPC connectivity.
func (c *EthClient) Health(ctx context.Context) error {
	_, err := c.rpc.BlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("chainclient: health check failed: %w", err)
	}
	return nil
}

// WaitForChainSync polls IsSyncing every pollInterval. While the chain
// reports syncing with HighestBlock > CurrentBlock it invokes callback
// once per poll and keeps polling; it returns once IsSyncing reports
// false or CurrentBlock == HighestBlock. callback is never invoked if the
// chain is already caught up on the first poll.
func WaitForChainSync(ctx context.Context, client Client, pollInterval time.Duration, callback func(SyncStatus)) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		syncing, status, err := client.IsSyncing(ctx)
		if err != nil {
			return fmt.Errorf("wait for chain sync: %w", err)
		}
		if !syncing || status == nil || status.CurrentBlock == status.HighestBlock {
			return nil
		}

		callback(*status)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
