package projector

import (
	"context"
	"fmt"
	"math/big"

	"github.com/feral-file/ff-projector/internal/domain"
	"github.com/feral-file/ff-projector/internal/store/schema"
)

func (p *projector) watchedCraft(ctx context.Context, ec *eventContext) (*schema.Craft, bool, error) {
	craft, found, err := load[schema.Craft](ctx, ec.tx, ec.event.ContractAddress)
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, p.skip(ctx, ec, "Unknown craft")
	}
	return craft, true, nil
}

func (p *projector) watchedSalvage(ctx context.Context, ec *eventContext) (*schema.Salvage, bool, error) {
	salvage, found, err := load[schema.Salvage](ctx, ec.tx, ec.event.ContractAddress)
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, p.skip(ctx, ec, "Unknown salvage")
	}
	return salvage, true, nil
}

// handleAssetsCrafted counts a craft of an existing recipe and records it in its transaction
func (p *projector) handleAssetsCrafted(ctx context.Context, ec *eventContext) error {
	user, err := ec.event.Fields.Address("user")
	if err != nil {
		return err
	}
	recipeID, err := ec.event.Fields.BigInt("id")
	if err != nil {
		return err
	}
	amount, err := ec.event.Fields.BigInt("amountSucceeded")
	if err != nil {
		return err
	}

	craft, ok, err := p.watchedCraft(ctx, ec)
	if err != nil || !ok {
		return err
	}

	recipe, err := mustLoad[schema.Recipe](ctx, ec.tx, domain.RecipeKey(craft.ID, recipeID))
	if err != nil {
		return err
	}
	craft.CraftCount++
	recipe.CraftCount++
	if err := save(ctx, ec.tx, craft, recipe); err != nil {
		return err
	}

	if err := updateAccount(ctx, ec.tx, user, func(a *schema.Account) error {
		a.CraftCount++
		return nil
	}); err != nil {
		return err
	}

	transaction, err := ensureTransaction(ctx, ec)
	if err != nil {
		return err
	}
	id := domain.ChildTxKey(transaction.ID, recipe.ID)
	record, _, err := getOrCreate(ctx, ec.tx, id, func() *schema.CraftTransaction {
		return &schema.CraftTransaction{ID: id, Transaction: transaction.ID, Account: user, Recipe: recipe.ID, Craft: craft.ID}
	})
	if err != nil {
		return err
	}
	if record.Amount, err = add(record.Amount, amount); err != nil {
		return err
	}
	return save(ctx, ec.tx, record)
}

// handleRecipeUpdated creates missing recipes and sets the enabled flag of each
func (p *projector) handleRecipeUpdated(ctx context.Context, ec *eventContext) error {
	items, err := ec.event.Fields.Tuples("recipes")
	if err != nil {
		return err
	}

	craft, ok, err := p.watchedCraft(ctx, ec)
	if err != nil || !ok {
		return err
	}

	for _, item := range items {
		recipeID, err := item.BigInt("id")
		if err != nil {
			return err
		}
		enabled, err := item.Bool("enabled")
		if err != nil {
			return err
		}
		if err := setRecipe(ctx, ec, craft, recipeID, enabled); err != nil {
			return err
		}
	}
	return save(ctx, ec.tx, craft)
}

// handleRecipeEnabled toggles a recipe, creating it when it was never announced
func (p *projector) handleRecipeEnabled(ctx context.Context, ec *eventContext) error {
	recipeID, err := ec.event.Fields.BigInt("id")
	if err != nil {
		return err
	}
	enabled, err := ec.event.Fields.Bool("enabled")
	if err != nil {
		return err
	}

	craft, ok, err := p.watchedCraft(ctx, ec)
	if err != nil || !ok {
		return err
	}
	if err := setRecipe(ctx, ec, craft, recipeID, enabled); err != nil {
		return err
	}
	return save(ctx, ec.tx, craft)
}

// setRecipe saves a recipe's flag and counts it on the craft when new. The caller saves the craft.
func setRecipe(ctx context.Context, ec *eventContext, craft *schema.Craft, recipeID *big.Int, enabled bool) error {
	id := domain.RecipeKey(craft.ID, recipeID)
	recipe, created, err := getOrCreate(ctx, ec.tx, id, func() *schema.Recipe {
		return &schema.Recipe{ID: id, Craft: craft.ID, RecipeID: recipeID.String()}
	})
	if err != nil {
		return err
	}
	if created {
		craft.RecipesCount++
	}
	recipe.Enabled = enabled
	return save(ctx, ec.tx, recipe)
}

// salvaged is one (asset, amount) pair of a salvage
type salvaged struct {
	content string
	tokenID *big.Int
	amount  *big.Int
}

func (p *projector) handleAssetSalvaged(ctx context.Context, ec *eventContext) error {
	user, err := ec.event.Fields.Address("user")
	if err != nil {
		return err
	}
	asset, err := ec.event.Fields.Tuple("asset")
	if err != nil {
		return err
	}
	content, err := asset.Address("content")
	if err != nil {
		return err
	}
	tokenID, err := asset.BigInt("tokenId")
	if err != nil {
		return err
	}
	amount, err := ec.event.Fields.BigInt("amount")
	if err != nil {
		return err
	}
	return p.salvage(ctx, ec, user, []salvaged{{content: content, tokenID: tokenID, amount: amount}})
}

func (p *projector) handleAssetSalvagedBatch(ctx context.Context, ec *eventContext) error {
	user, err := ec.event.Fields.Address("user")
	if err != nil {
		return err
	}
	assets, err := ec.event.Fields.Tuples("assets")
	if err != nil {
		return err
	}
	amounts, err := ec.event.Fields.BigInts("amounts")
	if err != nil {
		return err
	}
	if len(assets) != len(amounts) {
		return fmt.Errorf("%w: %d assets but %d amounts", domain.ErrMalformedEvent, len(assets), len(amounts))
	}

	batch := make([]salvaged, 0, len(assets))
	for i, asset := range assets {
		content, err := asset.Address("content")
		if err != nil {
			return err
		}
		tokenID, err := asset.BigInt("tokenId")
		if err != nil {
			return err
		}
		batch = append(batch, salvaged{content: content, tokenID: tokenID, amount: amounts[i]})
	}
	return p.salvage(ctx, ec, user, batch)
}

// salvage counts one salvage for the contract and the user, and one per distinct registered asset
func (p *projector) salvage(ctx context.Context, ec *eventContext, user string, batch []salvaged) error {
	salvage, ok, err := p.watchedSalvage(ctx, ec)
	if err != nil || !ok {
		return err
	}

	salvage.SalvageCount++
	if err := save(ctx, ec.tx, salvage); err != nil {
		return err
	}
	if err := updateAccount(ctx, ec.tx, user, func(a *schema.Account) error {
		a.SalvageCount++
		return nil
	}); err != nil {
		return err
	}

	transaction, err := ensureTransaction(ctx, ec)
	if err != nil {
		return err
	}

	counted := make(map[string]bool, len(batch))
	for _, s := range batch {
		asset, err := mustLoad[schema.SalvageableAsset](ctx, ec.tx, domain.SalvageableAssetKey(salvage.ID, s.content, s.tokenID))
		if err != nil {
			return err
		}
		if !counted[asset.ID] {
			counted[asset.ID] = true
			asset.SalvageCount++
			if err := save(ctx, ec.tx, asset); err != nil {
				return err
			}
		}

		id := domain.ChildTxKey(transaction.ID, asset.ID)
		record, _, err := getOrCreate(ctx, ec.tx, id, func() *schema.SalvageTransaction {
			return &schema.SalvageTransaction{ID: id, Transaction: transaction.ID, Account: user, SalvageableAsset: asset.ID, Salvage: salvage.ID}
		})
		if err != nil {
			return err
		}
		if record.Amount, err = add(record.Amount, s.amount); err != nil {
			return err
		}
		if err := save(ctx, ec.tx, record); err != nil {
			return err
		}
	}
	return nil
}

// handleSalvageableAssetsUpdated registers assets that can be salvaged
func (p *projector) handleSalvageableAssetsUpdated(ctx context.Context, ec *eventContext) error {
	items, err := ec.event.Fields.Tuples("assets")
	if err != nil {
		return err
	}
	ids, err := ec.event.Fields.BigInts("ids")
	if err != nil {
		return err
	}
	if len(items) != len(ids) {
		return fmt.Errorf("%w: %d assets but %d ids", domain.ErrMalformedEvent, len(items), len(ids))
	}

	salvage, ok, err := p.watchedSalvage(ctx, ec)
	if err != nil || !ok {
		return err
	}

	for i, item := range items {
		asset, err := item.Tuple("asset")
		if err != nil {
			return err
		}
		content, err := asset.Address("content")
		if err != nil {
			return err
		}
		tokenID, err := asset.BigInt("tokenId")
		if err != nil {
			return err
		}

		id := domain.SalvageableAssetKey(salvage.ID, content, tokenID)
		_, exists, err := load[schema.SalvageableAsset](ctx, ec.tx, id)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		entry := &schema.SalvageableAsset{
			ID:        id,
			Salvage:   salvage.ID,
			Content:   content,
			TokenID:   tokenID.String(),
			SalvageID: ids[i].String(),
		}
		if err := save(ctx, ec.tx, entry); err != nil {
			return err
		}
		salvage.SalvageableAssetsCount++
	}
	return save(ctx, ec.tx, salvage)
}
