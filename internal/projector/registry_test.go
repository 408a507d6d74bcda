package projector_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-projector/internal/domain"
	"github.com/feral-file/ff-projector/internal/metrics"
	"github.com/feral-file/ff-projector/internal/providers/ethereum"
	"github.com/feral-file/ff-projector/internal/registry"
	"github.com/feral-file/ff-projector/internal/store/schema"
)

func managerChildren() ethereum.ManagerChildren {
	return ethereum.ManagerChildren{
		Content:              contentAddr,
		ContentStorage:       storageAddr,
		AccessControlManager: acmAddr,
		SystemsRegistry:      systemsAddr,
	}
}

func seedRegistry(h *harness) {
	h.t.Helper()
	require.NoError(h.t, h.registry.Seed(h.ctx, h.store, []registry.Root{{Address: registryAddr, Kind: domain.KindRegistry}}, 1))
}

func TestContentManagerRegistered(t *testing.T) {
	h := newHarness(t)
	seedRegistry(h)

	h.reader.EXPECT().ManagerChildren(gomock.Any(), managerAddr, uint64(100)).Return(managerChildren(), nil).Times(1)
	h.reader.EXPECT().MinterRole(gomock.Any(), acmAddr, uint64(100)).Return(minterRole, nil).Times(1)
	h.reader.EXPECT().ContractName(gomock.Any(), contentAddr, uint64(100)).Return("RAWR Heroes", nil).Times(1)
	h.reader.EXPECT().ContractSymbol(gomock.Any(), contentAddr, uint64(100)).Return("HERO", nil).Times(1)
	h.reader.EXPECT().ContractURI(gomock.Any(), contentAddr, uint64(100)).Return("ipfs://QmContract", nil).Times(1)
	h.fetcher.EXPECT().Fetch(gomock.Any(), "ipfs://QmContract").
		Return([]byte(`{"name":"Rawr Heroes","game":"Rawr","creator":"studio","type":"collection","tags":["pfp",1,"hero"]}`), nil).
		Times(1)
	h.reader.EXPECT().ContractRoyalties(gomock.Any(), storageAddr, uint64(100)).Return([]ethereum.Fee{
		{Account: carol, Rate: n(20000)},
		{Account: dave, Rate: n(10000)},
	}, nil).Times(1)

	event := domain.Fields{"owner": alice, "contentManager": managerAddr}
	h.mustApply(registryAddr, "ContentManagerRegistered", event)

	reg := get[schema.Registry](t, h, registryAddr)
	assert.Equal(t, int64(1), reg.ContentManagersCount)

	manager := get[schema.ContentManager](t, h, managerAddr)
	assert.Equal(t, contentAddr, manager.Content)
	assert.Equal(t, storageAddr, manager.ContentStorage)
	assert.Equal(t, alice, manager.Owner)
	assert.Equal(t, day0, manager.CreatedAtTimestamp)

	content := get[schema.Content](t, h, contentAddr)
	assert.Equal(t, managerAddr, content.Manager)
	assert.Equal(t, alice, content.Owner)
	assert.Equal(t, "ipfs://QmContract", content.ContractURI)
	assert.Equal(t, "RAWR Heroes", content.Name)
	assert.Equal(t, "HERO", content.Symbol)
	assert.Equal(t, "Rawr", content.Game)
	assert.Equal(t, "studio", content.Creator)
	assert.Equal(t, []string{"pfp", "hero"}, []string(content.Tags))
	assert.NotEmpty(t, content.MetadataHash)
	assert.Equal(t, []string{
		domain.ContractFeeKey(contentAddr, carol),
		domain.ContractFeeKey(contentAddr, dave),
	}, []string(content.ContractRoyalties))
	assert.Equal(t, "20000", get[schema.ContractFee](t, h, domain.ContractFeeKey(contentAddr, carol)).Rate.String())

	assert.Equal(t, minterRole, get[schema.AccessControlManager](t, h, acmAddr).MinterRole)
	assert.Equal(t, contentAddr, get[schema.ContentStorage](t, h, storageAddr).Content)
	assert.Equal(t, contentAddr, get[schema.SystemsRegistry](t, h, systemsAddr).Content)
	assert.True(t, exists[schema.Account](t, h, alice))

	expected := map[string]domain.ContractKind{
		managerAddr: domain.KindContentManager,
		contentAddr: domain.KindContent,
		storageAddr: domain.KindContentStorage,
		acmAddr:     domain.KindAccessControlManager,
		systemsAddr: domain.KindSystemsRegistry,
	}
	for address, kind := range expected {
		got, watched := h.registry.KindOf(address)
		assert.True(t, watched, address)
		assert.Equal(t, kind, got, address)
		assert.Equal(t, 1, h.begun[address], address)
	}

	// a second announcement of the same manager reads nothing and watches nothing new
	duplicates := testutil.ToFloat64(metrics.EventsSkipped.WithLabelValues(string(chain), "duplicate"))
	unknownParents := testutil.ToFloat64(metrics.EventsSkipped.WithLabelValues(string(chain), "unknown_parent"))
	h.nextBlock(12)
	h.mustApply(registryAddr, "ContentManagerRegistered", event)
	assert.Equal(t, duplicates+1, testutil.ToFloat64(metrics.EventsSkipped.WithLabelValues(string(chain), "duplicate")))
	assert.Equal(t, unknownParents, testutil.ToFloat64(metrics.EventsSkipped.WithLabelValues(string(chain), "unknown_parent")))

	assert.Equal(t, int64(1), get[schema.Registry](t, h, registryAddr).ContentManagersCount)
	for address := range expected {
		assert.Equal(t, 1, h.begun[address], address)
	}
	assertCursor(t, h, 101, 1)
}

func TestContentManagerRegistered_NameFallsBackToMetadata(t *testing.T) {
	testCases := []struct {
		name        string
		onChainName string
		nameErr     error
		symbol      string
		symbolErr   error
		fetchErr    error
		wantName    string
		wantSymbol  string
	}{
		{
			name:       "name reverts",
			nameErr:    errors.New("execution reverted"),
			symbol:     "HERO",
			wantName:   "Rawr Heroes",
			wantSymbol: "HERO",
		},
		{
			name:      "name empty and symbol reverts",
			symbolErr: errors.New("execution reverted"),
			wantName:  "Rawr Heroes",
		},
		{
			name:        "metadata unreachable keeps on-chain fields",
			onChainName: "RAWR Heroes",
			symbol:      "HERO",
			fetchErr:    errors.New("gateway timeout"),
			wantName:    "RAWR Heroes",
			wantSymbol:  "HERO",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			seedRegistry(h)

			h.reader.EXPECT().ManagerChildren(gomock.Any(), managerAddr, gomock.Any()).Return(managerChildren(), nil)
			h.reader.EXPECT().MinterRole(gomock.Any(), acmAddr, gomock.Any()).Return(minterRole, nil)
			h.reader.EXPECT().ContractRoyalties(gomock.Any(), storageAddr, gomock.Any()).Return(nil, nil)
			h.reader.EXPECT().ContractName(gomock.Any(), contentAddr, gomock.Any()).Return(tc.onChainName, tc.nameErr)
			h.reader.EXPECT().ContractSymbol(gomock.Any(), contentAddr, gomock.Any()).Return(tc.symbol, tc.symbolErr)
			h.reader.EXPECT().ContractURI(gomock.Any(), contentAddr, gomock.Any()).Return("ipfs://QmContract", nil)
			if tc.fetchErr != nil {
				h.fetcher.EXPECT().Fetch(gomock.Any(), "ipfs://QmContract").Return(nil, tc.fetchErr)
			} else {
				h.fetcher.EXPECT().Fetch(gomock.Any(), "ipfs://QmContract").Return([]byte(`{"name":"Rawr Heroes"}`), nil)
			}

			h.mustApply(registryAddr, "ContentManagerRegistered", domain.Fields{"owner": alice, "contentManager": managerAddr})

			content := get[schema.Content](t, h, contentAddr)
			assert.Equal(t, tc.wantName, content.Name)
			assert.Equal(t, tc.wantSymbol, content.Symbol)
		})
	}
}

func TestContentManagerRegistered_ZeroChildIsNotWatched(t *testing.T) {
	h := newHarness(t)
	h.quietMetadata()
	seedRegistry(h)

	children := managerChildren()
	children.SystemsRegistry = zero
	h.reader.EXPECT().ManagerChildren(gomock.Any(), managerAddr, gomock.Any()).Return(children, nil)
	h.reader.EXPECT().MinterRole(gomock.Any(), acmAddr, gomock.Any()).Return(minterRole, nil)
	h.reader.EXPECT().ContractRoyalties(gomock.Any(), storageAddr, gomock.Any()).Return(nil, nil)

	h.mustApply(registryAddr, "ContentManagerRegistered", domain.Fields{"owner": alice, "contentManager": managerAddr})

	_, watched := h.registry.KindOf(zero)
	assert.False(t, watched)
	assert.Zero(t, h.begun[zero])
	assert.Empty(t, get[schema.Content](t, h, contentAddr).ContractRoyalties)
}

func TestCraftAndSalvageRegistered(t *testing.T) {
	h := newHarness(t)
	seedRegistry(h)

	h.mustApply(registryAddr, "CraftRegistered", domain.Fields{"craft": craftAddr, "manager": managerAddr})
	h.mustApply(registryAddr, "SalvageRegistered", domain.Fields{"salvage": salvageAddr, "manager": managerAddr})
	h.mustApply(registryAddr, "CraftRegistered", domain.Fields{"craft": craftAddr, "manager": managerAddr})

	reg := get[schema.Registry](t, h, registryAddr)
	assert.Equal(t, int64(1), reg.CraftsCount)
	assert.Equal(t, int64(1), reg.SalvagesCount)

	craft := get[schema.Craft](t, h, craftAddr)
	assert.Equal(t, registryAddr, craft.Registry)
	assert.Equal(t, managerAddr, craft.Manager)

	kind, watched := h.registry.KindOf(salvageAddr)
	assert.True(t, watched)
	assert.Equal(t, domain.KindSalvage, kind)
	assert.Equal(t, 1, h.begun[craftAddr])
}

func TestOwnershipTransferred(t *testing.T) {
	h := newHarness(t)
	h.seedContent()
	h.seed(&schema.ContentManager{ID: managerAddr, Registry: registryAddr, Content: contentAddr, Owner: alice, Creator: alice})
	h.watch(managerAddr, domain.KindContentManager)

	h.mustApply(managerAddr, "OwnershipTransferred", domain.Fields{"previousOwner": alice, "newOwner": bob})

	manager := get[schema.ContentManager](t, h, managerAddr)
	assert.Equal(t, bob, manager.Owner)
	assert.Equal(t, alice, manager.Creator)
	assert.Equal(t, bob, get[schema.Content](t, h, contentAddr).Owner)
	assert.True(t, exists[schema.Account](t, h, bob))
}

func TestOwnershipTransferred_UnknownManager(t *testing.T) {
	h := newHarness(t)
	h.watch(managerAddr, domain.KindContentManager)

	require.NoError(t, h.projector.Apply(context.Background(), h.event(managerAddr, "OwnershipTransferred", domain.Fields{
		"previousOwner": alice, "newOwner": bob,
	})))
	assert.False(t, exists[schema.Account](t, h, bob))
}
