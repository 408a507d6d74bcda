package projector_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-projector/internal/domain"
	"github.com/feral-file/ff-projector/internal/store/schema"
)

func seedCraft(h *harness) {
	h.t.Helper()
	h.seed(&schema.Craft{ID: craftAddr, Registry: registryAddr, Manager: managerAddr})
	h.watch(craftAddr, domain.KindCraft)
}

func seedSalvage(h *harness) {
	h.t.Helper()
	h.seed(&schema.Salvage{ID: salvageAddr, Registry: registryAddr, Manager: managerAddr})
	h.watch(salvageAddr, domain.KindSalvage)
}

func assetRef(content string, tokenID int64) map[string]interface{} {
	return tuple("content", content, "tokenId", n(tokenID))
}

func TestRecipeUpdatedAndEnabled(t *testing.T) {
	h := newHarness(t)
	seedCraft(h)

	h.mustApply(craftAddr, "RecipeUpdated", domain.Fields{"recipes": tuples(
		tuple("id", n(1), "enabled", true),
		tuple("id", n(2), "enabled", false),
	)})
	assert.True(t, get[schema.Recipe](t, h, domain.RecipeKey(craftAddr, n(1))).Enabled)
	assert.False(t, get[schema.Recipe](t, h, domain.RecipeKey(craftAddr, n(2))).Enabled)
	assert.Equal(t, int64(2), get[schema.Craft](t, h, craftAddr).RecipesCount)

	h.mustApply(craftAddr, "RecipeEnabled", domain.Fields{"id": n(2), "enabled": true})
	h.mustApply(craftAddr, "RecipeEnabled", domain.Fields{"id": n(1), "enabled": false})
	assert.True(t, get[schema.Recipe](t, h, domain.RecipeKey(craftAddr, n(2))).Enabled)
	assert.False(t, get[schema.Recipe](t, h, domain.RecipeKey(craftAddr, n(1))).Enabled)
	assert.Equal(t, int64(2), get[schema.Craft](t, h, craftAddr).RecipesCount)

	// enabling a recipe that was never announced creates it
	h.mustApply(craftAddr, "RecipeEnabled", domain.Fields{"id": n(3), "enabled": true})
	recipe := get[schema.Recipe](t, h, domain.RecipeKey(craftAddr, n(3)))
	assert.Equal(t, "3", recipe.RecipeID)
	assert.Equal(t, int64(3), get[schema.Craft](t, h, craftAddr).RecipesCount)
}

func TestAssetsCrafted(t *testing.T) {
	h := newHarness(t)
	seedCraft(h)
	h.mustApply(craftAddr, "RecipeEnabled", domain.Fields{"id": n(1), "enabled": true})

	crafted := domain.Fields{"user": alice, "id": n(1), "amountSucceeded": n(2)}
	first := h.event(craftAddr, "AssetsCrafted", crafted)
	require.NoError(t, h.projector.Apply(h.ctx, first))
	// a second craft in the same transaction adds to the same record
	second := h.event(craftAddr, "AssetsCrafted", crafted)
	second.Tx.Hash = first.Tx.Hash
	require.NoError(t, h.projector.Apply(h.ctx, second))

	recipeID := domain.RecipeKey(craftAddr, n(1))
	assert.Equal(t, int64(2), get[schema.Recipe](t, h, recipeID).CraftCount)
	assert.Equal(t, int64(2), get[schema.Craft](t, h, craftAddr).CraftCount)
	assert.Equal(t, int64(2), get[schema.Account](t, h, alice).CraftCount)

	record := get[schema.CraftTransaction](t, h, domain.ChildTxKey(first.Tx.Hash, recipeID))
	assert.Equal(t, "4", record.Amount.String())
	assert.Equal(t, alice, record.Account)
	assert.Equal(t, uint64(100), get[schema.Transaction](t, h, first.Tx.Hash).BlockNumber)
}

func TestAssetsCrafted_UnknownRecipeIsFatal(t *testing.T) {
	h := newHarness(t)
	seedCraft(h)

	err := h.apply(craftAddr, "AssetsCrafted", domain.Fields{"user": alice, "id": n(9), "amountSucceeded": n(1)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMissingEntity))
	assert.Equal(t, int64(0), get[schema.Craft](t, h, craftAddr).CraftCount)
	assert.False(t, exists[schema.Account](t, h, alice))
}

func TestSalvageableAssetsUpdated(t *testing.T) {
	h := newHarness(t)
	seedSalvage(h)

	update := domain.Fields{
		"assets": tuples(
			tuple("asset", assetRef(contentAddr, 1)),
			tuple("asset", assetRef(contentAddr, 2)),
		),
		"ids": list(10, 11),
	}
	h.mustApply(salvageAddr, "SalvageableAssetsUpdated", update)
	h.mustApply(salvageAddr, "SalvageableAssetsUpdated", update)

	entry := get[schema.SalvageableAsset](t, h, domain.SalvageableAssetKey(salvageAddr, contentAddr, n(2)))
	assert.Equal(t, "11", entry.SalvageID)
	assert.Equal(t, "2", entry.TokenID)
	assert.Equal(t, int64(2), get[schema.Salvage](t, h, salvageAddr).SalvageableAssetsCount)

	err := h.apply(salvageAddr, "SalvageableAssetsUpdated", domain.Fields{
		"assets": tuples(tuple("asset", assetRef(contentAddr, 3))),
		"ids":    list(12, 13),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMalformedEvent))
}

func TestAssetSalvaged(t *testing.T) {
	h := newHarness(t)
	seedSalvage(h)
	h.mustApply(salvageAddr, "SalvageableAssetsUpdated", domain.Fields{
		"assets": tuples(tuple("asset", assetRef(contentAddr, 1)), tuple("asset", assetRef(contentAddr, 2))),
		"ids":    list(10, 11),
	})

	single := h.event(salvageAddr, "AssetSalvaged", domain.Fields{"user": bob, "asset": assetRef(contentAddr, 1), "amount": n(3)})
	require.NoError(t, h.projector.Apply(h.ctx, single))

	first := domain.SalvageableAssetKey(salvageAddr, contentAddr, n(1))
	assert.Equal(t, int64(1), get[schema.SalvageableAsset](t, h, first).SalvageCount)
	assert.Equal(t, "3", get[schema.SalvageTransaction](t, h, domain.ChildTxKey(single.Tx.Hash, first)).Amount.String())

	// the same asset twice in one batch is one salvage of it
	batch := h.event(salvageAddr, "AssetSalvagedBatch", domain.Fields{
		"user":    bob,
		"assets":  tuples(assetRef(contentAddr, 1), assetRef(contentAddr, 2), assetRef(contentAddr, 1)),
		"amounts": list(1, 5, 2),
	})
	require.NoError(t, h.projector.Apply(h.ctx, batch))

	second := domain.SalvageableAssetKey(salvageAddr, contentAddr, n(2))
	assert.Equal(t, int64(2), get[schema.SalvageableAsset](t, h, first).SalvageCount)
	assert.Equal(t, int64(1), get[schema.SalvageableAsset](t, h, second).SalvageCount)
	assert.Equal(t, "3", get[schema.SalvageTransaction](t, h, domain.ChildTxKey(batch.Tx.Hash, first)).Amount.String())
	assert.Equal(t, "5", get[schema.SalvageTransaction](t, h, domain.ChildTxKey(batch.Tx.Hash, second)).Amount.String())

	assert.Equal(t, int64(2), get[schema.Salvage](t, h, salvageAddr).SalvageCount)
	assert.Equal(t, int64(2), get[schema.Account](t, h, bob).SalvageCount)
}

func TestAssetSalvaged_Failures(t *testing.T) {
	h := newHarness(t)
	seedSalvage(h)

	err := h.apply(salvageAddr, "AssetSalvaged", domain.Fields{"user": bob, "asset": assetRef(contentAddr, 1), "amount": n(1)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMissingEntity))
	assert.Equal(t, int64(0), get[schema.Salvage](t, h, salvageAddr).SalvageCount)

	err = h.apply(salvageAddr, "AssetSalvagedBatch", domain.Fields{
		"user":    bob,
		"assets":  tuples(assetRef(contentAddr, 1)),
		"amounts": list(1, 2),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMalformedEvent))
}
