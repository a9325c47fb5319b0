package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"inkchain/internal/logging"
	"inkchain/internal/metrics"
	"inkchain/internal/models"
	"inkchain/internal/registry"
)

// ChainReader is the ledger surface the aggregator needs. *chain.Client
// satisfies it; tests substitute fakes.
type ChainReader interface {
	HeadBlock(ctx context.Context) (uint64, error)
	QueryEvents(ctx context.Context, contract common.Address, contractABI abi.ABI, eventNames []string, fromBlock, toBlock uint64) ([]models.RawLogEvent, error)
	BlockTimestamp(ctx context.Context, number uint64) (time.Time, error)
}

// ActivityService builds the unified activity feed: one concurrent query
// per event source, normalized and merged into a single time-ordered page.
type ActivityService struct {
	chain         ChainReader
	sources       []registry.Source
	window        time.Duration // timestamp filter, enforced here and only here
	lookback      uint64        // block-range bound, coarser than the window
	sourceTimeout time.Duration
	now           func() time.Time
}

func NewActivityService(chain ChainReader, sources []registry.Source, window time.Duration, lookback uint64, sourceTimeout time.Duration) *ActivityService {
	return &ActivityService{
		chain:         chain,
		sources:       sources,
		window:        window,
		lookback:      lookback,
		sourceTimeout: sourceTimeout,
		now:           time.Now,
	}
}

// GetActivities returns the page [offset, offset+limit) of wallet's feed,
// newest first. One flaky source contributes nothing; the call only fails
// when the address of the ledger itself is unreachable (head lookup) or
// every single source failed.
func (s *ActivityService) GetActivities(ctx context.Context, wallet common.Address, limit, offset int) ([]models.ActivityItem, error) {
	head, err := s.chain.HeadBlock(ctx)
	if err != nil {
		return nil, &models.TotalUnavailableError{Failed: len(s.sources), Err: err}
	}

	fromBlock := uint64(0)
	if head > s.lookback {
		fromBlock = head - s.lookback
	}

	results := make([][]models.ActivityItem, len(s.sources))
	errs := make([]error, len(s.sources))

	var wg sync.WaitGroup
	for i, src := range s.sources {
		wg.Add(1)
		go func(i int, src registry.Source) {
			defer wg.Done()
			items, err := s.collect(ctx, src, wallet, fromBlock, head)
			// Each task writes only its own slot; the join below is the
			// only reader, after every task finished.
			results[i] = items
			errs[i] = err
		}(i, src)
	}
	wg.Wait()

	logger := logging.WithRequest(uuid.NewString(), wallet.Hex())

	var merged []models.ActivityItem
	failed := 0
	for i, src := range s.sources {
		if errs[i] != nil {
			failed++
			metrics.SourceQueryFailures.WithLabelValues(src.Key).Inc()
			logging.WithSource(logger, src.Key).Warn("event source query failed",
				"error", errs[i])
			continue
		}
		merged = append(merged, results[i]...)
	}

	if failed == len(s.sources) && len(s.sources) > 0 {
		return nil, &models.TotalUnavailableError{Failed: failed}
	}

	// Stable keeps per-source arrival order on equal timestamps, so an
	// identical event set always paginates identically.
	sort.SliceStable(merged, func(a, b int) bool {
		return merged[a].Timestamp.After(merged[b].Timestamp)
	})

	return page(merged, limit, offset), nil
}

// collect runs one source's query and normalization. Timestamp lookups are
// sequential within the source; the fan-out across sources is parallelism
// enough for the event volumes seen so far.
func (s *ActivityService) collect(ctx context.Context, src registry.Source, wallet common.Address, fromBlock, toBlock uint64) ([]models.ActivityItem, error) {
	ctx, cancel := context.WithTimeout(ctx, s.sourceTimeout)
	defer cancel()

	metrics.SourceQueries.WithLabelValues(src.Key).Inc()

	events, err := s.chain.QueryEvents(ctx, src.Contract, src.ABI, src.Events, fromBlock, toBlock)
	if err != nil {
		return nil, &models.SourceQueryError{Source: src.Key, Err: err}
	}

	cutoff := s.now().Add(-s.window)

	var items []models.ActivityItem
	for _, ev := range events {
		if src.MatchedArg(ev.Args, wallet) < 0 {
			continue
		}
		ts, err := s.chain.BlockTimestamp(ctx, ev.BlockNumber)
		if err != nil {
			return nil, &models.SourceQueryError{Source: src.Key, Err: err}
		}
		if ts.Before(cutoff) {
			continue
		}
		if item := src.Normalize(ev, ts, wallet); item != nil {
			items = append(items, *item)
		}
	}
	return items, nil
}

func page(items []models.ActivityItem, limit, offset int) []models.ActivityItem {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []models.ActivityItem{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
