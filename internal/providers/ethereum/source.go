package ethereum

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"sync"

	"github.com/alitto/pond/v2"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/feral-file/ff-projector/internal/adapter"
	"github.com/feral-file/ff-projector/internal/block"
	"github.com/feral-file/ff-projector/internal/domain"
	"github.com/feral-file/ff-projector/internal/logger"
)

// SourceConfig holds the log source configuration
type SourceConfig struct {
	Chain domain.Chain
	// MaxAddressesPerQuery splits large watch sets across several eth_getLogs calls
	MaxAddressesPerQuery int
	// Workers bounds concurrent header and receipt requests
	Workers int
}

// Source delivers decoded events of watched contracts in canonical order
//
//go:generate mockgen -source=source.go -destination=../../mocks/source.go -package=mocks -mock_names=Source=MockSource
type Source interface {
	// LatestBlock returns the current chain head
	LatestBlock(ctx context.Context) (uint64, error)

	// Events returns the events emitted by addresses within [fromBlock, toBlock], ordered by block and log index
	Events(ctx context.Context, addresses []string, fromBlock, toBlock uint64) ([]*domain.Event, error)

	// Close stops the worker pool and closes the RPC connection
	Close()
}

type source struct {
	config  SourceConfig
	client  adapter.EthClient
	blocks  block.BlockProvider
	decoder *Decoder
	pool    pond.Pool
}

// NewSource creates a log source
func NewSource(cfg SourceConfig, client adapter.EthClient, blocks block.BlockProvider) Source {
	if cfg.MaxAddressesPerQuery <= 0 {
		cfg.MaxAddressesPerQuery = 500
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 8
	}
	return &source{
		config:  cfg,
		client:  client,
		blocks:  blocks,
		decoder: NewDecoder(),
		pool:    pond.NewPool(cfg.Workers),
	}
}

// LatestBlock returns the current chain head
func (s *source) LatestBlock(ctx context.Context) (uint64, error) {
	return s.blocks.GetLatestBlock(ctx)
}

// Events fetches, decodes and enriches the logs of a block range
func (s *source) Events(ctx context.Context, addresses []string, fromBlock, toBlock uint64) ([]*domain.Event, error) {
	if len(addresses) == 0 || fromBlock > toBlock {
		return nil, nil
	}

	var logs []types.Log
	for start := 0; start < len(addresses); start += s.config.MaxAddressesPerQuery {
		end := start + s.config.MaxAddressesPerQuery
		if end > len(addresses) {
			end = len(addresses)
		}

		query := ethereum.FilterQuery{
			Addresses: toCommonAddresses(addresses[start:end]),
			Topics:    [][]common.Hash{s.decoder.Topics()},
		}
		chunk, err := s.getLogsWithRetry(ctx, query, fromBlock, toBlock)
		if err != nil {
			return nil, err
		}
		logs = append(logs, chunk...)
	}

	events := make([]*domain.Event, 0, len(logs))
	for _, vLog := range logs {
		if vLog.Removed {
			continue
		}
		name, fields, err := s.decoder.Decode(vLog)
		if err != nil {
			return nil, fmt.Errorf("block %d log %d: %w", vLog.BlockNumber, vLog.Index, err)
		}
		if name == "" {
			continue
		}
		events = append(events, &domain.Event{
			Chain:           s.config.Chain,
			ContractAddress: domain.NormalizeAddress(vLog.Address.Hex()),
			Name:            name,
			Fields:          fields,
			Tx: domain.TxContext{
				Hash:        strings.ToLower(vLog.TxHash.Hex()),
				BlockNumber: vLog.BlockNumber,
				LogIndex:    vLog.Index,
			},
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[j].Position().After(events[i].Position())
	})
	events = dedupe(events)

	if err := s.enrich(ctx, events); err != nil {
		return nil, err
	}

	logger.DebugCtx(ctx, "Fetched events",
		zap.Uint64("fromBlock", fromBlock),
		zap.Uint64("toBlock", toBlock),
		zap.Int("addresses", len(addresses)),
		zap.Int("events", len(events)))

	return events, nil
}

// dedupe drops repeated log positions
func dedupe(events []*domain.Event) []*domain.Event {
	out := events[:0]
	for i, ev := range events {
		if i > 0 && ev.Position() == events[i-1].Position() {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// enrich fills block timestamps and receipt gas data concurrently
func (s *source) enrich(ctx context.Context, events []*domain.Event) error {
	if len(events) == 0 {
		return nil
	}

	var (
		mu         sync.Mutex
		timestamps = make(map[uint64]int64)
		receipts   = make(map[string]*types.Receipt)
	)

	group := s.pool.NewGroup()
	for _, ev := range events {
		blockNumber := ev.Tx.BlockNumber
		txHash := ev.Tx.Hash

		mu.Lock()
		_, seenBlock := timestamps[blockNumber]
		_, seenTx := receipts[txHash]
		if !seenBlock {
			timestamps[blockNumber] = 0
		}
		if !seenTx {
			receipts[txHash] = nil
		}
		mu.Unlock()

		if !seenBlock {
			group.SubmitErr(func() error {
				ts, err := s.blocks.GetBlockTimestamp(ctx, blockNumber)
				if err != nil {
					return err
				}
				mu.Lock()
				timestamps[blockNumber] = ts
				mu.Unlock()
				return nil
			})
		}
		if !seenTx {
			group.SubmitErr(func() error {
				receipt, err := s.client.TransactionReceipt(ctx, common.HexToHash(txHash))
				if err != nil {
					return fmt.Errorf("failed to get receipt %s: %w", txHash, err)
				}
				if receipt == nil {
					return errors.New("empty receipt " + txHash)
				}
				mu.Lock()
				receipts[txHash] = receipt
				mu.Unlock()
				return nil
			})
		}
	}
	if err := group.Wait(); err != nil {
		return err
	}

	for _, ev := range events {
		ev.Tx.BlockTimestamp = timestamps[ev.Tx.BlockNumber]
		receipt := receipts[ev.Tx.Hash]
		ev.Tx.GasUsed = receipt.GasUsed
		if receipt.EffectiveGasPrice != nil {
			ev.Tx.GasPrice = new(big.Int).Set(receipt.EffectiveGasPrice)
		} else {
			ev.Tx.GasPrice = new(big.Int)
		}
	}
	return nil
}

// getLogsWithRetry walks [fromBlock, toBlock] and halves the step whenever the provider reports too many results
func (s *source) getLogsWithRetry(ctx context.Context, query ethereum.FilterQuery, fromBlock, toBlock uint64) ([]types.Log, error) {
	step := toBlock - fromBlock + 1
	current := fromBlock

	var all []types.Log
	for current <= toBlock {
		end := current + step - 1
		if end > toBlock {
			end = toBlock
		}

		q := query
		q.FromBlock = new(big.Int).SetUint64(current)
		q.ToBlock = new(big.Int).SetUint64(end)

		logs, err := s.client.FilterLogs(ctx, q)
		if err == nil {
			all = append(all, logs...)
			current = end + 1
			continue
		}

		if !isTooManyResultsError(err) || step == 1 {
			return nil, fmt.Errorf("failed to get logs for range %d-%d: %w", current, end, err)
		}

		step /= 2
		logger.WarnCtx(ctx, "Too many results, reducing step size",
			zap.Uint64("newStepSize", step),
			zap.Uint64("fromBlock", current),
			zap.Uint64("toBlock", end))
	}

	return all, nil
}

// isTooManyResultsError checks if the error is related to too many results
func isTooManyResultsError(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()
	return strings.Contains(errStr, "query returned more than 10000 results") ||
		strings.Contains(errStr, "query timeout exceeded") ||
		strings.Contains(errStr, "too many results") ||
		strings.Contains(errStr, "exceeded maximum") ||
		strings.Contains(errStr, "block range")
}

func toCommonAddresses(addresses []string) []common.Address {
	out := make([]common.Address, len(addresses))
	for i, a := range addresses {
		out[i] = common.HexToAddress(a)
	}
	return out
}

// Close stops the worker pool and closes the RPC connection
func (s *source) Close() {
	s.pool.StopAndWait()
	s.client.Close()
	logger.Info("Ethereum connection closed")
}
