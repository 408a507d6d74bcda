package projector

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/feral-file/ff-projector/internal/domain"
	"github.com/feral-file/ff-projector/internal/logger"
	"github.com/feral-file/ff-projector/internal/messaging"
	"github.com/feral-file/ff-projector/internal/metadata"
	"github.com/feral-file/ff-projector/internal/metrics"
	"github.com/feral-file/ff-projector/internal/providers/ethereum"
	"github.com/feral-file/ff-projector/internal/registry"
	"github.com/feral-file/ff-projector/internal/store"
)

// Projector reduces decoded events into the entity store
//
//go:generate mockgen -source=projector.go -destination=../mocks/projector.go -package=mocks -mock_names=Projector=MockProjector
type Projector interface {
	// Apply reduces a single event. The handler writes and the event cursor
	// commit in one transaction, so a failed event leaves no trace.
	Apply(ctx context.Context, event *domain.Event) error
}

// handler reduces one event of a known kind
type handler func(ctx context.Context, ec *eventContext) error

// eventContext carries the event being applied and the transaction it runs in
type eventContext struct {
	tx         store.Store
	event      *domain.Event
	kind       domain.ContractKind
	discovered []string
}

type projector struct {
	store     store.Store
	registry  registry.Registry
	reader    ethereum.ContractReader
	fetcher   metadata.Fetcher
	publisher messaging.Publisher
	handlers  map[domain.ContractKind]map[string]handler
}

// Deps holds the collaborators of the projector. Fetcher and Publisher are optional.
type Deps struct {
	Store     store.Store
	Registry  registry.Registry
	Reader    ethereum.ContractReader
	Fetcher   metadata.Fetcher
	Publisher messaging.Publisher
}

// New creates a projector
func New(deps Deps) Projector {
	p := &projector{
		store:     deps.Store,
		registry:  deps.Registry,
		reader:    deps.Reader,
		fetcher:   deps.Fetcher,
		publisher: deps.Publisher,
	}

	p.handlers = map[domain.ContractKind]map[string]handler{
		domain.KindRegistry: {
			"ContentManagerRegistered": p.handleContentManagerRegistered,
			"CraftRegistered":          p.handleCraftRegistered,
			"SalvageRegistered":        p.handleSalvageRegistered,
		},
		domain.KindContentManager: {
			"OwnershipTransferred": p.handleOwnershipTransferred,
		},
		domain.KindContent: {
			"TransferSingle": p.handleTransferSingle,
			"TransferBatch":  p.handleTransferBatch,
			"Mint":           p.handleMint,
			"Burn":           p.handleBurn,
			"ApprovalForAll": p.handleApprovalForAll,
		},
		domain.KindContentStorage: {
			"AssetsAdded":              p.handleAssetsAdded,
			"ContractRoyaltiesUpdated": p.handleContractRoyaltiesUpdated,
			"TokenRoyaltiesUpdated":    p.handleTokenRoyaltiesUpdated,
			"HiddenUriUpdated":         p.handleHiddenURIUpdated,
			"PublicUriUpdated":         p.handlePublicURIUpdated,
		},
		domain.KindAccessControlManager: {
			"RoleGranted": p.handleRoleGranted,
			"RoleRevoked": p.handleRoleRevoked,
		},
		domain.KindSystemsRegistry: {
			"RegisteredSystemsUpdated": p.handleRegisteredSystemsUpdated,
		},
		domain.KindAddressResolver: {
			"AddressRegistered": p.handleAddressRegistered,
		},
		domain.KindExchange: {
			"OrderPlaced":   p.handleOrderPlaced,
			"OrdersFilled":  p.handleOrdersFilled,
			"OrdersDeleted": p.handleOrdersDeleted,
			"OrdersClaimed": p.handleOrdersClaimed,
		},
		domain.KindErc20Escrow: {
			"AddedTokenSupport": p.handleAddedTokenSupport,
			"ClaimedRoyalties":  p.handleClaimedRoyalties,
		},
		domain.KindCraft: {
			"AssetsCrafted": p.handleAssetsCrafted,
			"RecipeUpdated": p.handleRecipeUpdated,
			"RecipeEnabled": p.handleRecipeEnabled,
		},
		domain.KindSalvage: {
			"AssetSalvaged":            p.handleAssetSalvaged,
			"AssetSalvagedBatch":       p.handleAssetSalvagedBatch,
			"SalvageableAssetsUpdated": p.handleSalvageableAssetsUpdated,
		},
		domain.KindToken: {
			"TokenCreated": p.handleTokenCreated,
			"Transfer":     p.handleTokenTransfer,
		},
	}

	return p
}

// Apply resolves the handler of an event and runs it with the cursor update in one transaction
func (p *projector) Apply(ctx context.Context, event *domain.Event) error {
	kind, watched := p.registry.KindOf(event.ContractAddress)

	var h handler
	switch {
	case !watched:
		p.skipped(ctx, event, "unwatched")
	default:
		h = p.handlers[kind][event.Name]
		if h == nil {
			p.skipped(ctx, event, "unhandled")
		}
	}

	start := time.Now()
	ec := &eventContext{event: event, kind: kind}
	err := p.store.WithTx(ctx, func(tx store.Store) error {
		ec.tx = tx
		ec.discovered = nil
		if h != nil {
			if err := h(ctx, ec); err != nil {
				return err
			}
		}
		return tx.SetEventCursor(ctx, event.Chain, event.Position())
	})
	if err != nil {
		p.registry.Rollback()
		metrics.EventsFailed.WithLabelValues(string(event.Chain), string(kind), event.Name).Inc()
		return fmt.Errorf("failed to apply %s from %s at block %d log %d (tx %s): %w",
			event.Name, event.ContractAddress, event.Tx.BlockNumber, event.Tx.LogIndex, event.Tx.Hash, err)
	}
	p.registry.Commit()

	if h == nil {
		return nil
	}

	metrics.HandlerLatency.WithLabelValues(string(kind), event.Name).Observe(time.Since(start).Seconds())
	metrics.EventsApplied.WithLabelValues(string(event.Chain), string(kind), event.Name).Inc()
	for range ec.discovered {
		metrics.ContractsDiscovered.WithLabelValues(string(event.Chain), string(kind)).Inc()
	}

	p.publish(ctx, ec)
	return nil
}

// publish reports a committed change. The projection is already durable, so failures only warn.
func (p *projector) publish(ctx context.Context, ec *eventContext) {
	if p.publisher == nil {
		return
	}

	change := &messaging.Change{
		Chain:          ec.event.Chain,
		Kind:           ec.kind,
		Event:          ec.event.Name,
		Contract:       ec.event.ContractAddress,
		TxHash:         ec.event.Tx.Hash,
		BlockNumber:    ec.event.Tx.BlockNumber,
		BlockTimestamp: ec.event.Tx.BlockTimestamp,
		LogIndex:       ec.event.Tx.LogIndex,
		Discovered:     ec.discovered,
	}
	if err := p.publisher.Publish(ctx, change); err != nil {
		metrics.PublishErrors.Inc()
		logger.WarnCtx(ctx, "Failed to publish change", append(eventFields(ec.event), zap.Error(err))...)
	}
}

// skipped records an event that has no handler
func (p *projector) skipped(ctx context.Context, event *domain.Event, reason string) {
	metrics.EventsSkipped.WithLabelValues(string(event.Chain), reason).Inc()
	logger.DebugCtx(ctx, "Skipping event", append(eventFields(event), zap.String("reason", reason))...)
}

// skip logs a handler that returns early because a parent entity is unknown
func (p *projector) skip(ctx context.Context, ec *eventContext, reason string, fields ...zap.Field) error {
	metrics.EventsSkipped.WithLabelValues(string(ec.event.Chain), "unknown_parent").Inc()
	logger.InfoCtx(ctx, reason, append(eventFields(ec.event), fields...)...)
	return nil
}

// duplicate logs a handler that returns early because the entity it would create already exists
func (p *projector) duplicate(ctx context.Context, ec *eventContext, msg string, fields ...zap.Field) error {
	metrics.EventsSkipped.WithLabelValues(string(ec.event.Chain), "duplicate").Inc()
	logger.InfoCtx(ctx, msg, append(eventFields(ec.event), fields...)...)
	return nil
}

// ensureWatching starts watching a discovered child contract within the event transaction
func (p *projector) ensureWatching(ctx context.Context, ec *eventContext, address string, kind domain.ContractKind) error {
	if address == "" || domain.IsZeroAddress(address) {
		return nil
	}
	discovered, err := p.registry.EnsureWatching(ctx, ec.tx, address, kind, ec.event.Tx.BlockNumber)
	if err != nil {
		return err
	}
	if discovered {
		ec.discovered = append(ec.discovered, domain.NormalizeAddress(address))
	}
	return nil
}

func eventFields(event *domain.Event) []zap.Field {
	return []zap.Field{
		zap.String("contract", event.ContractAddress),
		zap.String("event", event.Name),
		zap.String("tx_hash", event.Tx.Hash),
		zap.Uint("log_index", event.Tx.LogIndex),
		zap.Uint64("block", event.Tx.BlockNumber),
	}
}
