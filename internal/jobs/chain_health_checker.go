package jobs

import (
	"context"
	"log"
	"sync"
	"time"
)

// HeadReader is the slice of the chain client the health check needs.
type HeadReader interface {
	HeadBlock(ctx context.Context) (uint64, error)
}

// ChainStatus is a snapshot of the last node health check.
type ChainStatus struct {
	Reachable bool      `json:"reachable"`
	HeadBlock uint64    `json:"head_block,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
	LastError string    `json:"last_error,omitempty"`
}

// ChainHealthChecker periodically probes the chain node so the health
// endpoint can report node reachability without issuing an RPC per request.
type ChainHealthChecker struct {
	chain   HeadReader
	timeout time.Duration

	mu     sync.RWMutex
	status ChainStatus
}

func NewChainHealthChecker(chain HeadReader, timeout time.Duration) *ChainHealthChecker {
	return &ChainHealthChecker{chain: chain, timeout: timeout}
}

// Run executes one health probe.
func (c *ChainHealthChecker) Run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	head, err := c.chain.HeadBlock(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.status.CheckedAt = time.Now().UTC()
	if err != nil {
		c.status.Reachable = false
		c.status.LastError = err.Error()
		log.Printf("[HEALTH-JOB] Chain node check FAILED: %v", err)
		return
	}
	c.status.Reachable = true
	c.status.HeadBlock = head
	c.status.LastError = ""
}

// Status returns the last recorded snapshot. Before the first run it
// reports unreachable with a zero CheckedAt.
func (c *ChainHealthChecker) Status() ChainStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}
