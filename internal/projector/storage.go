package projector

import (
	"context"
	"math/big"

	"go.uber.org/zap"

	"github.com/feral-file/ff-projector/internal/domain"
	"github.com/feral-file/ff-projector/internal/logger"
	"github.com/feral-file/ff-projector/internal/store"
	"github.com/feral-file/ff-projector/internal/store/schema"
)

// fee is one royalty entry of a fee list
type fee struct {
	account string
	rate    *big.Int
}

func parseFees(items []domain.Fields) ([]fee, error) {
	fees := make([]fee, 0, len(items))
	for _, item := range items {
		account, err := item.Address("account")
		if err != nil {
			return nil, err
		}
		rate, err := item.BigInt("rate")
		if err != nil {
			return nil, err
		}
		fees = append(fees, fee{account: account, rate: rate})
	}
	return fees, nil
}

// applyContractFees replaces the contract-level royalties of a content.
// Previous entries are zeroed first and stay referenced from the content.
func applyContractFees(ctx context.Context, tx store.Store, contentID string, fees []fee) error {
	content, err := mustLoad[schema.Content](ctx, tx, contentID)
	if err != nil {
		return err
	}

	for _, id := range content.ContractRoyalties {
		old, found, err := load[schema.ContractFee](ctx, tx, id)
		if err != nil {
			return err
		}
		if !found {
			continue
		}
		old.Rate = schema.Uint256{}
		if err := save(ctx, tx, old); err != nil {
			return err
		}
	}

	for _, f := range fees {
		id := domain.ContractFeeKey(content.ID, f.account)
		entry, _, err := getOrCreate(ctx, tx, id, func() *schema.ContractFee {
			return schema.NewContractFee(id, content.ID, f.account)
		})
		if err != nil {
			return err
		}
		if entry.Rate, err = quantity(f.rate); err != nil {
			return err
		}
		if err := touchAccount(ctx, tx, f.account); err != nil {
			return err
		}
		if err := save(ctx, tx, entry); err != nil {
			return err
		}
		if !contains(content.ContractRoyalties, id) {
			content.ContractRoyalties = append(content.ContractRoyalties, id)
		}
	}

	return save(ctx, tx, content)
}

// applyAssetFees replaces the token-level royalties of an asset. The caller saves the asset.
func applyAssetFees(ctx context.Context, tx store.Store, asset *schema.Asset, tokenID *big.Int, fees []fee) error {
	for _, id := range asset.AssetRoyalties {
		old, found, err := load[schema.AssetFee](ctx, tx, id)
		if err != nil {
			return err
		}
		if !found {
			continue
		}
		old.Rate = schema.Uint256{}
		if err := save(ctx, tx, old); err != nil {
			return err
		}
	}

	for _, f := range fees {
		id := domain.AssetFeeKey(asset.Content, f.account, tokenID)
		entry, _, err := getOrCreate(ctx, tx, id, func() *schema.AssetFee {
			return schema.NewAssetFee(id, asset.ID, f.account)
		})
		if err != nil {
			return err
		}
		if entry.Rate, err = quantity(f.rate); err != nil {
			return err
		}
		if err := touchAccount(ctx, tx, f.account); err != nil {
			return err
		}
		if err := save(ctx, tx, entry); err != nil {
			return err
		}
		if !contains(asset.AssetRoyalties, id) {
			asset.AssetRoyalties = append(asset.AssetRoyalties, id)
		}
	}
	return nil
}

// storageContent returns the content governed by the emitting storage contract
func (p *projector) storageContent(ctx context.Context, ec *eventContext) (string, bool, error) {
	storage, found, err := load[schema.ContentStorage](ctx, ec.tx, ec.event.ContractAddress)
	if err != nil {
		return "", false, err
	}
	if !found {
		return "", false, p.skip(ctx, ec, "Unknown content storage")
	}

	_, found, err = load[schema.Content](ctx, ec.tx, storage.Content)
	if err != nil {
		return "", false, err
	}
	if !found {
		return "", false, p.skip(ctx, ec, "Unknown content", zap.String("content", storage.Content))
	}
	return storage.Content, true, nil
}

// handleAssetsAdded creates or updates every announced asset with its max supply and royalties
func (p *projector) handleAssetsAdded(ctx context.Context, ec *eventContext) error {
	items, err := ec.event.Fields.Tuples("assets")
	if err != nil {
		return err
	}

	content, ok, err := p.storageContent(ctx, ec)
	if err != nil || !ok {
		return err
	}

	for _, item := range items {
		tokenID, err := item.BigInt("tokenId")
		if err != nil {
			return err
		}
		maxSupply, err := item.BigInt("maxSupply")
		if err != nil {
			return err
		}
		feeItems, err := item.Tuples("fees")
		if err != nil {
			return err
		}
		fees, err := parseFees(feeItems)
		if err != nil {
			return err
		}

		asset, created, err := getOrCreateAsset(ctx, ec.tx, content, tokenID)
		if err != nil {
			return err
		}
		if created || asset.MetadataURI == "" {
			p.resolveAssetMetadata(ctx, asset, tokenID, ec.event.Tx.BlockNumber)
		}
		if asset.MaxSupply, err = quantity(maxSupply); err != nil {
			return err
		}
		if err := applyAssetFees(ctx, ec.tx, asset, tokenID, fees); err != nil {
			return err
		}
		if err := save(ctx, ec.tx, asset); err != nil {
			return err
		}
	}
	return nil
}

// handleContractRoyaltiesUpdated replaces the contract-level royalties
func (p *projector) handleContractRoyaltiesUpdated(ctx context.Context, ec *eventContext) error {
	items, err := ec.event.Fields.Tuples("fees")
	if err != nil {
		return err
	}
	fees, err := parseFees(items)
	if err != nil {
		return err
	}

	content, ok, err := p.storageContent(ctx, ec)
	if err != nil || !ok {
		return err
	}
	return applyContractFees(ctx, ec.tx, content, fees)
}

// handleTokenRoyaltiesUpdated replaces the royalties of an existing asset
func (p *projector) handleTokenRoyaltiesUpdated(ctx context.Context, ec *eventContext) error {
	tokenID, err := ec.event.Fields.BigInt("tokenId")
	if err != nil {
		return err
	}
	items, err := ec.event.Fields.Tuples("fees")
	if err != nil {
		return err
	}
	fees, err := parseFees(items)
	if err != nil {
		return err
	}

	content, ok, err := p.storageContent(ctx, ec)
	if err != nil || !ok {
		return err
	}

	asset, err := mustLoad[schema.Asset](ctx, ec.tx, domain.AssetKey(content, tokenID))
	if err != nil {
		return err
	}
	if err := applyAssetFees(ctx, ec.tx, asset, tokenID, fees); err != nil {
		return err
	}
	return save(ctx, ec.tx, asset)
}

func (p *projector) handleHiddenURIUpdated(ctx context.Context, ec *eventContext) error {
	return p.uriUpdated(ctx, ec, false)
}

// handlePublicURIUpdated bumps the public uri version and re-resolves the asset metadata
func (p *projector) handlePublicURIUpdated(ctx context.Context, ec *eventContext) error {
	return p.uriUpdated(ctx, ec, true)
}

func (p *projector) uriUpdated(ctx context.Context, ec *eventContext, public bool) error {
	tokenID, err := ec.event.Fields.BigInt("id")
	if err != nil {
		return err
	}
	version, err := ec.event.Fields.BigInt("version")
	if err != nil {
		return err
	}

	content, ok, err := p.storageContent(ctx, ec)
	if err != nil || !ok {
		return err
	}

	// uri versions are cosmetic, an unknown asset is not worth halting for
	asset, found, err := load[schema.Asset](ctx, ec.tx, domain.AssetKey(content, tokenID))
	if err != nil {
		return err
	}
	if !found {
		logger.WarnCtx(ctx, "Uri updated for unknown asset", append(eventFields(ec.event), zap.String("token_id", tokenID.String()))...)
		return nil
	}

	v, err := quantity(version)
	if err != nil {
		return err
	}
	if public {
		asset.LatestPublicURIVersion = v
		p.resolveAssetMetadata(ctx, asset, tokenID, ec.event.Tx.BlockNumber)
	} else {
		asset.LatestHiddenURIVersion = v
	}
	return save(ctx, ec.tx, asset)
}
