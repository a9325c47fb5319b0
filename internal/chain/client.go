package chain

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"strconv"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	cache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"inkchain/internal/models"
)

// Options tunes the client. Zero values fall back to conservative defaults.
type Options struct {
	Timeout       time.Duration // per-RPC deadline
	RateLimit     float64       // outbound requests per second
	BlockCacheTTL time.Duration // block-timestamp cache lifetime
}

// Client is a read-only handle to the chain node. All state this server
// exposes is recomputed from it; nothing is persisted locally.
//
// Every outbound RPC goes through one shared rate limiter so a burst of
// feed and bookmark requests cannot hammer a possibly rate-limited node.
// Block timestamps are immutable, so they are cached with a TTL purely to
// bound memory.
type Client struct {
	eth     *ethclient.Client
	limiter *rate.Limiter
	tsCache *cache.Cache
	timeout time.Duration
}

// Dial connects to the chain node at rpcURL.
func Dial(ctx context.Context, rpcURL string, opts Options) (*Client, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 20.0
	}
	if opts.BlockCacheTTL <= 0 {
		opts.BlockCacheTTL = 10 * time.Minute
	}

	eth, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial chain node: %w", err)
	}

	burst := int(opts.RateLimit * 2)
	if burst < 1 {
		burst = 1
	}

	return &Client{
		eth:     eth,
		limiter: rate.NewLimiter(rate.Limit(opts.RateLimit), burst),
		tsCache: cache.New(opts.BlockCacheTTL, opts.BlockCacheTTL/2),
		timeout: opts.Timeout,
	}, nil
}

// Close releases the underlying RPC connection.
func (c *Client) Close() {
	c.eth.Close()
}

// HeadBlock returns the current head block number.
func (c *Client) HeadBlock(ctx context.Context) (uint64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	n, err := c.eth.BlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch head block: %w", err)
	}
	return n, nil
}

// QueryEvents fetches all logs for the named events of one contract in the
// given block range and decodes their arguments into declaration order.
// Logs whose shape does not decode are skipped, not fatal.
func (c *Client) QueryEvents(ctx context.Context, contract common.Address, contractABI abi.ABI, eventNames []string, fromBlock, toBlock uint64) ([]models.RawLogEvent, error) {
	topics := make([]common.Hash, 0, len(eventNames))
	for _, name := range eventNames {
		ev, ok := contractABI.Events[name]
		if !ok {
			return nil, fmt.Errorf("event %q not in contract ABI", name)
		}
		topics = append(topics, ev.ID)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		ToBlock:   new(big.Int).SetUint64(toBlock),
		Addresses: []common.Address{contract},
		Topics:    [][]common.Hash{topics},
	}

	logs, err := c.eth.FilterLogs(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to filter logs: %w", err)
	}

	events := make([]models.RawLogEvent, 0, len(logs))
	for _, lg := range logs {
		if lg.Removed || len(lg.Topics) == 0 {
			continue
		}
		ev, err := contractABI.EventByID(lg.Topics[0])
		if err != nil {
			continue
		}
		args, err := DecodeEventArgs(ev, lg)
		if err != nil {
			slog.Debug("skipping undecodable log",
				"event", ev.Name, "tx", lg.TxHash.Hex(), "error", err)
			continue
		}
		events = append(events, models.RawLogEvent{
			TxHash:      lg.TxHash.Hex(),
			BlockNumber: lg.BlockNumber,
			LogIndex:    lg.Index,
			Name:        ev.Name,
			Args:        args,
		})
	}
	return events, nil
}

// BlockTimestamp returns the timestamp of the given block.
func (c *Client) BlockTimestamp(ctx context.Context, number uint64) (time.Time, error) {
	key := strconv.FormatUint(number, 10)
	if v, ok := c.tsCache.Get(key); ok {
		return v.(time.Time), nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return time.Time{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	header, err := c.eth.HeaderByNumber(ctx, new(big.Int).SetUint64(number))
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to fetch block %d: %w", number, err)
	}

	ts := time.Unix(int64(header.Time), 0).UTC()
	c.tsCache.Set(key, ts, cache.DefaultExpiration)
	return ts, nil
}

// CallView executes a read-only contract call and unpacks its outputs.
func (c *Client) CallView(ctx context.Context, contract common.Address, contractABI abi.ABI, method string, args ...any) ([]any, error) {
	data, err := contractABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s call: %w", method, err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	raw, err := c.eth.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("%s call failed: %w", method, err)
	}

	out, err := contractABI.Unpack(method, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s result: %w", method, err)
	}
	return out, nil
}

// DecodeEventArgs reconstructs the positional argument list of an event from
// its log. Indexed arguments come from topics, the rest from the data blob;
// the result follows the declaration order of the event signature.
func DecodeEventArgs(ev *abi.Event, lg types.Log) ([]any, error) {
	dataVals, err := ev.Inputs.NonIndexed().Unpack(lg.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack data: %w", err)
	}

	var indexed abi.Arguments
	for _, input := range ev.Inputs {
		if input.Indexed {
			indexed = append(indexed, input)
		}
	}
	topicVals := make(map[string]any)
	if len(indexed) > 0 {
		if len(lg.Topics) < len(indexed)+1 {
			return nil, fmt.Errorf("log has %d topics, event %s needs %d", len(lg.Topics), ev.Name, len(indexed)+1)
		}
		if err := abi.ParseTopicsIntoMap(topicVals, indexed, lg.Topics[1:]); err != nil {
			return nil, fmt.Errorf("failed to parse topics: %w", err)
		}
	}

	args := make([]any, 0, len(ev.Inputs))
	di := 0
	for _, input := range ev.Inputs {
		if input.Indexed {
			args = append(args, topicVals[input.Name])
		} else {
			args = append(args, dataVals[di])
			di++
		}
	}
	return args, nil
}

// MustABI parses an ABI document or panics. Only for compile-time constants.
func MustABI(doc string) abi.ABI {
	parsed, err := abiJSON(doc)
	if err != nil {
		panic(fmt.Sprintf("invalid ABI: %v", err))
	}
	return parsed
}
