package projector

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/feral-file/ff-projector/internal/domain"
	"github.com/feral-file/ff-projector/internal/store/schema"
)

func (p *projector) getOrCreateRegistry(ctx context.Context, ec *eventContext) (*schema.Registry, error) {
	id := ec.event.ContractAddress
	registry, _, err := getOrCreate(ctx, ec.tx, id, func() *schema.Registry {
		return schema.NewRegistry(id)
	})
	return registry, err
}

// handleContentManagerRegistered creates a content manager with its children and starts watching them
func (p *projector) handleContentManagerRegistered(ctx context.Context, ec *eventContext) error {
	fields := ec.event.Fields
	managerAddr, err := fields.Address("contentManager")
	if err != nil {
		return err
	}
	owner, err := fields.Address("owner")
	if err != nil {
		return err
	}

	registry, err := p.getOrCreateRegistry(ctx, ec)
	if err != nil {
		return err
	}

	_, exists, err := load[schema.ContentManager](ctx, ec.tx, managerAddr)
	if err != nil {
		return err
	}
	if exists {
		if err := save(ctx, ec.tx, registry); err != nil {
			return err
		}
		return p.duplicate(ctx, ec, "Content manager already registered", zap.String("manager", managerAddr))
	}

	blockNumber := ec.event.Tx.BlockNumber
	children, err := p.reader.ManagerChildren(ctx, managerAddr, blockNumber)
	if err != nil {
		return fmt.Errorf("failed to read children of manager %s: %w", managerAddr, err)
	}
	minterRole, err := p.reader.MinterRole(ctx, children.AccessControlManager, blockNumber)
	if err != nil {
		return fmt.Errorf("failed to read minter role of %s: %w", children.AccessControlManager, err)
	}

	registry.ContentManagersCount++

	manager := schema.NewContentManager(managerAddr, registry.ID)
	manager.Content = children.Content
	manager.ContentStorage = children.ContentStorage
	manager.AccessControlManager = children.AccessControlManager
	manager.SystemsRegistry = children.SystemsRegistry
	manager.Owner = owner
	manager.Creator = owner
	manager.CreatedAtTimestamp = ec.event.Tx.BlockTimestamp

	content, created, err := getOrCreate(ctx, ec.tx, children.Content, func() *schema.Content {
		return schema.NewContent(children.Content)
	})
	if err != nil {
		return err
	}
	if created {
		content.CreatedAtTimestamp = ec.event.Tx.BlockTimestamp
	}
	content.Manager = managerAddr
	content.Owner = owner
	p.resolveContentMetadata(ctx, content, blockNumber)

	acm := schema.NewAccessControlManager(children.AccessControlManager, children.Content, managerAddr)
	acm.MinterRole = minterRole

	if err := touchAccount(ctx, ec.tx, owner); err != nil {
		return err
	}
	if err := save(ctx, ec.tx,
		registry,
		manager,
		content,
		schema.NewContentStorage(children.ContentStorage, children.Content, managerAddr),
		acm,
		schema.NewSystemsRegistry(children.SystemsRegistry, children.Content, managerAddr),
	); err != nil {
		return err
	}

	watch := []struct {
		address string
		kind    domain.ContractKind
	}{
		{managerAddr, domain.KindContentManager},
		{children.Content, domain.KindContent},
		{children.ContentStorage, domain.KindContentStorage},
		{children.AccessControlManager, domain.KindAccessControlManager},
		{children.SystemsRegistry, domain.KindSystemsRegistry},
	}
	for _, w := range watch {
		if err := p.ensureWatching(ctx, ec, w.address, w.kind); err != nil {
			return err
		}
	}

	royalties, err := p.reader.ContractRoyalties(ctx, children.ContentStorage, blockNumber)
	if err != nil {
		return fmt.Errorf("failed to read contract royalties of %s: %w", children.ContentStorage, err)
	}
	fees := make([]fee, 0, len(royalties))
	for _, r := range royalties {
		fees = append(fees, fee{account: r.Account, rate: r.Rate})
	}
	return applyContractFees(ctx, ec.tx, content.ID, fees)
}

// handleCraftRegistered records a craft contract and starts watching it
func (p *projector) handleCraftRegistered(ctx context.Context, ec *eventContext) error {
	craftAddr, err := ec.event.Fields.Address("craft")
	if err != nil {
		return err
	}
	managerAddr, err := ec.event.Fields.Address("manager")
	if err != nil {
		return err
	}

	registry, err := p.getOrCreateRegistry(ctx, ec)
	if err != nil {
		return err
	}

	craft, created, err := getOrCreate(ctx, ec.tx, craftAddr, func() *schema.Craft {
		return &schema.Craft{ID: craftAddr, Registry: registry.ID, Manager: managerAddr}
	})
	if err != nil {
		return err
	}
	if created {
		registry.CraftsCount++
		if err := save(ctx, ec.tx, craft); err != nil {
			return err
		}
	}
	if err := save(ctx, ec.tx, registry); err != nil {
		return err
	}
	return p.ensureWatching(ctx, ec, craftAddr, domain.KindCraft)
}

// handleSalvageRegistered records a salvage contract and starts watching it
func (p *projector) handleSalvageRegistered(ctx context.Context, ec *eventContext) error {
	salvageAddr, err := ec.event.Fields.Address("salvage")
	if err != nil {
		return err
	}
	managerAddr, err := ec.event.Fields.Address("manager")
	if err != nil {
		return err
	}

	registry, err := p.getOrCreateRegistry(ctx, ec)
	if err != nil {
		return err
	}

	salvage, created, err := getOrCreate(ctx, ec.tx, salvageAddr, func() *schema.Salvage {
		return &schema.Salvage{ID: salvageAddr, Registry: registry.ID, Manager: managerAddr}
	})
	if err != nil {
		return err
	}
	if created {
		registry.SalvagesCount++
		if err := save(ctx, ec.tx, salvage); err != nil {
			return err
		}
	}
	if err := save(ctx, ec.tx, registry); err != nil {
		return err
	}
	return p.ensureWatching(ctx, ec, salvageAddr, domain.KindSalvage)
}

// handleOwnershipTransferred moves ownership of a manager and its content
func (p *projector) handleOwnershipTransferred(ctx context.Context, ec *eventContext) error {
	newOwner, err := ec.event.Fields.Address("newOwner")
	if err != nil {
		return err
	}

	manager, found, err := load[schema.ContentManager](ctx, ec.tx, ec.event.ContractAddress)
	if err != nil {
		return err
	}
	if !found {
		return p.skip(ctx, ec, "Unknown content manager")
	}

	if err := touchAccount(ctx, ec.tx, newOwner); err != nil {
		return err
	}
	manager.Owner = newOwner
	if err := save(ctx, ec.tx, manager); err != nil {
		return err
	}

	content, found, err := load[schema.Content](ctx, ec.tx, manager.Content)
	if err != nil || !found {
		return err
	}
	content.Owner = newOwner
	return save(ctx, ec.tx, content)
}
