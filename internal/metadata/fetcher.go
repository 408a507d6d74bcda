package metadata

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/feral-file/ff-projector/internal/adapter"
	"github.com/feral-file/ff-projector/internal/logger"
	"github.com/feral-file/ff-projector/internal/ratelimit"
)

// ErrUnsupportedURI is returned for URI schemes the fetcher cannot resolve
var ErrUnsupportedURI = errors.New("unsupported URI scheme")

// cacheKeyPrefix namespaces cached documents in redis
const cacheKeyPrefix = "ff-projector:metadata:"

// Well-known gateways, raced in parallel
var (
	DefaultIPFSGateways = []string{
		"https://ipfs.io/ipfs/",
		"https://nftstorage.link/ipfs/",
		"https://gateway.pinata.cloud/ipfs/",
		"https://dweb.link/ipfs/",
	}
	DefaultArweaveGateways = []string{
		"https://arweave.net/",
		"https://arweave.dev/",
	}
)

// Fetcher retrieves raw metadata documents
//
//go:generate mockgen -source=fetcher.go -destination=../mocks/metadata_fetcher.go -package=mocks -mock_names=Fetcher=MockMetadataFetcher
type Fetcher interface {
	// Fetch resolves uri and returns the raw document
	Fetch(ctx context.Context, uri string) ([]byte, error)
}

// Config holds the fetcher configuration
type Config struct {
	IPFSGateways    []string
	ArweaveGateways []string
	// CacheTTL is how long fetched documents stay in redis, 0 keeps them forever
	CacheTTL time.Duration
}

type fetcher struct {
	httpClient adapter.HTTPClient
	cache      adapter.RedisClient
	limiter    ratelimit.Limiter
	config     Config
}

// NewFetcher creates a fetcher. cache and limiter may be nil.
func NewFetcher(httpClient adapter.HTTPClient, cache adapter.RedisClient, limiter ratelimit.Limiter, cfg Config) Fetcher {
	if len(cfg.IPFSGateways) == 0 {
		cfg.IPFSGateways = DefaultIPFSGateways
	}
	if len(cfg.ArweaveGateways) == 0 {
		cfg.ArweaveGateways = DefaultArweaveGateways
	}
	return &fetcher{
		httpClient: httpClient,
		cache:      cache,
		limiter:    limiter,
		config:     cfg,
	}
}

// TokenURI substitutes the {id} placeholder with the 64 character lower-case hex token id
func TokenURI(uri string, tokenID *big.Int) string {
	if tokenID == nil || !strings.Contains(uri, "{id}") {
		return uri
	}
	return strings.ReplaceAll(uri, "{id}", fmt.Sprintf("%064x", tokenID))
}

// normalizeURI rewrites http gateway links to ipfs:// so the public gateways are used
func normalizeURI(uri string) string {
	uri = strings.TrimSpace(uri)
	if strings.HasPrefix(uri, "http") && strings.Contains(uri, "/ipfs/") {
		parts := strings.SplitN(uri, "/ipfs/", 2)
		if parts[1] != "" {
			return "ipfs://" + parts[1]
		}
	}
	return uri
}

// Fetch resolves a data, ipfs, ar or http(s) URI
func (f *fetcher) Fetch(ctx context.Context, uri string) ([]byte, error) {
	uri = normalizeURI(uri)

	if strings.HasPrefix(uri, "data:") {
		return parseDataURI(uri)
	}

	if data, ok := f.cached(ctx, uri); ok {
		return data, nil
	}

	var (
		data []byte
		err  error
	)
	switch {
	case strings.HasPrefix(uri, "ipfs://"):
		data, err = f.race(ctx, ratelimit.ProviderIPFS, f.config.IPFSGateways, strings.TrimPrefix(strings.TrimPrefix(uri, "ipfs://"), "ipfs/"))
	case strings.HasPrefix(uri, "ar://"):
		data, err = f.race(ctx, ratelimit.ProviderArweave, f.config.ArweaveGateways, strings.TrimPrefix(uri, "ar://"))
	case strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://"):
		data, err = f.get(ctx, ratelimit.ProviderHTTP, uri)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedURI, uri)
	}
	if err != nil {
		return nil, err
	}

	f.store(ctx, uri, data)
	return data, nil
}

// get waits for the provider's rate limit and fetches url
func (f *fetcher) get(ctx context.Context, provider, url string) ([]byte, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, provider); err != nil {
			return nil, fmt.Errorf("rate limit wait for %s: %w", provider, err)
		}
	}
	return f.httpClient.GetRaw(ctx, url)
}

// race fetches path from every gateway in parallel and returns the first success
func (f *fetcher) race(ctx context.Context, provider string, gateways []string, path string) ([]byte, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		data []byte
		err  error
	}
	results := make(chan result, len(gateways))

	for _, gateway := range gateways {
		go func(gw string) {
			data, err := f.get(ctx, provider, gw+path)
			results <- result{data: data, err: err}
		}(gateway)
	}

	var lastErr error
	for range gateways {
		res := <-results
		if res.err == nil {
			return res.data, nil
		}
		lastErr = res.err
	}

	return nil, fmt.Errorf("failed to fetch %s from all gateways: %w", path, lastErr)
}

func (f *fetcher) cached(ctx context.Context, uri string) ([]byte, bool) {
	if f.cache == nil {
		return nil, false
	}
	value, found, err := f.cache.Get(ctx, cacheKeyPrefix+uri)
	if err != nil {
		logger.WarnCtx(ctx, "Failed to read metadata cache", zap.String("uri", uri), zap.Error(err))
		return nil, false
	}
	return []byte(value), found
}

func (f *fetcher) store(ctx context.Context, uri string, data []byte) {
	if f.cache == nil {
		return
	}
	if err := f.cache.Set(ctx, cacheKeyPrefix+uri, string(data), f.config.CacheTTL); err != nil {
		logger.WarnCtx(ctx, "Failed to write metadata cache", zap.String("uri", uri), zap.Error(err))
	}
}

// parseDataURI decodes data:[<mediatype>][;base64],<data>
func parseDataURI(uri string) ([]byte, error) {
	parts := strings.SplitN(uri[len("data:"):], ",", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid data URI format")
	}

	mediaType, payload := parts[0], parts[1]
	if strings.HasSuffix(mediaType, ";base64") {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64: %w", err)
		}
		return decoded, nil
	}

	unescaped, err := url.PathUnescape(payload)
	if err != nil {
		return []byte(payload), nil
	}
	return []byte(unescaped), nil
}
