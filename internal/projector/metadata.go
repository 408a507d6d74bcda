package projector

import (
	"context"
	"math/big"

	"go.uber.org/zap"

	"github.com/feral-file/ff-projector/internal/logger"
	"github.com/feral-file/ff-projector/internal/metadata"
	"github.com/feral-file/ff-projector/internal/store/schema"
)

// fetchRecord fetches and parses a metadata document. Failures degrade to nothing.
func (p *projector) fetchRecord(ctx context.Context, uri string) (metadata.Record, string, bool) {
	if p.fetcher == nil || uri == "" {
		return metadata.Record{}, "", false
	}

	raw, err := p.fetcher.Fetch(ctx, uri)
	if err != nil {
		logger.WarnCtx(ctx, "Failed to fetch metadata", zap.String("uri", uri), zap.Error(err))
		return metadata.Record{}, "", false
	}
	return metadata.Parse(raw), metadata.Hash(raw), true
}

// resolveContentMetadata reads name(), symbol() and contractUri() and fills the contract-level metadata fields
func (p *projector) resolveContentMetadata(ctx context.Context, content *schema.Content, blockNumber uint64) {
	name, err := p.reader.ContractName(ctx, content.ID, blockNumber)
	if err != nil {
		logger.WarnCtx(ctx, "Failed to read contract name", zap.String("content", content.ID), zap.Error(err))
	}
	content.Name = name

	symbol, err := p.reader.ContractSymbol(ctx, content.ID, blockNumber)
	if err != nil {
		logger.WarnCtx(ctx, "Failed to read contract symbol", zap.String("content", content.ID), zap.Error(err))
	}
	content.Symbol = symbol

	uri, err := p.reader.ContractURI(ctx, content.ID, blockNumber)
	if err != nil {
		logger.WarnCtx(ctx, "Failed to read contract uri", zap.String("content", content.ID), zap.Error(err))
		return
	}
	content.ContractURI = uri

	record, hash, ok := p.fetchRecord(ctx, uri)
	if !ok {
		return
	}
	if content.Name == "" {
		content.Name = record.Name
	}
	content.Game = record.Game
	content.Creator = record.Creator
	content.Type = record.Type
	content.Image = record.Image
	content.Tags = record.Tags
	content.MetadataHash = hash
}

// resolveAssetMetadata reads uri(id) and fills the per-token metadata fields
func (p *projector) resolveAssetMetadata(ctx context.Context, asset *schema.Asset, tokenID *big.Int, blockNumber uint64) {
	uri, err := p.reader.TokenURI(ctx, asset.Content, tokenID, blockNumber)
	if err != nil {
		logger.WarnCtx(ctx, "Failed to read token uri", zap.String("asset", asset.ID), zap.Error(err))
		return
	}
	asset.MetadataURI = uri

	record, hash, ok := p.fetchRecord(ctx, metadata.TokenURI(uri, tokenID))
	if !ok {
		return
	}
	asset.Name = record.Name
	asset.Type = record.Type
	asset.Subtype = record.Subtype
	asset.Image = record.Image
	asset.Tags = record.Tags
	asset.MetadataHash = hash
}
