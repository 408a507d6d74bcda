package projector

import (
	"context"

	"go.uber.org/zap"

	"github.com/feral-file/ff-projector/internal/domain"
	"github.com/feral-file/ff-projector/internal/store/schema"
)

func (p *projector) handleRoleGranted(ctx context.Context, ec *eventContext) error {
	return p.minterRoleChanged(ctx, ec, true)
}

func (p *projector) handleRoleRevoked(ctx context.Context, ec *eventContext) error {
	return p.minterRoleChanged(ctx, ec, false)
}

// minterRoleChanged keeps Minter entries and the content's minter count in step.
// Roles other than the minter role are ignored.
func (p *projector) minterRoleChanged(ctx context.Context, ec *eventContext, granted bool) error {
	role, err := ec.event.Fields.Hex("role")
	if err != nil {
		return err
	}
	account, err := ec.event.Fields.Address("account")
	if err != nil {
		return err
	}

	acm, found, err := load[schema.AccessControlManager](ctx, ec.tx, ec.event.ContractAddress)
	if err != nil {
		return err
	}
	if !found {
		return p.skip(ctx, ec, "Unknown access control manager")
	}
	if role != acm.MinterRole {
		return nil
	}

	content, err := mustLoad[schema.Content](ctx, ec.tx, acm.Content)
	if err != nil {
		return err
	}

	id := domain.MinterKey(content.ID, account)
	_, exists, err := load[schema.Minter](ctx, ec.tx, id)
	if err != nil {
		return err
	}

	switch {
	case granted && !exists:
		if err := touchAccount(ctx, ec.tx, account); err != nil {
			return err
		}
		content.MintersCount++
		return save(ctx, ec.tx, &schema.Minter{ID: id, Content: content.ID, Account: account}, content)
	case !granted && exists:
		if err := decrement(&content.MintersCount, "content minters"); err != nil {
			return err
		}
		if err := ec.tx.Delete(ctx, &schema.Minter{}, id); err != nil {
			return err
		}
		return save(ctx, ec.tx, content)
	}
	return nil
}

// handleRegisteredSystemsUpdated approves or removes system operators of a content
func (p *projector) handleRegisteredSystemsUpdated(ctx context.Context, ec *eventContext) error {
	items, err := ec.event.Fields.Tuples("operators")
	if err != nil {
		return err
	}

	systems, found, err := load[schema.SystemsRegistry](ctx, ec.tx, ec.event.ContractAddress)
	if err != nil {
		return err
	}
	if !found {
		return p.skip(ctx, ec, "Unknown systems registry")
	}
	content, found, err := load[schema.Content](ctx, ec.tx, systems.Content)
	if err != nil {
		return err
	}
	if !found {
		return p.skip(ctx, ec, "Unknown content", zap.String("content", systems.Content))
	}

	for _, item := range items {
		operator, err := item.Address("operator")
		if err != nil {
			return err
		}
		approved, err := item.Bool("approved")
		if err != nil {
			return err
		}

		id := domain.OperatorKey(content.ID, operator)
		_, exists, err := load[schema.Operator](ctx, ec.tx, id)
		if err != nil {
			return err
		}

		switch {
		case approved && !exists:
			if err := touchAccount(ctx, ec.tx, operator); err != nil {
				return err
			}
			if err := save(ctx, ec.tx, &schema.Operator{ID: id, Content: content.ID, Operator: operator}); err != nil {
				return err
			}
			content.OperatorsCount++
		case !approved && exists:
			if err := ec.tx.Delete(ctx, &schema.Operator{}, id); err != nil {
				return err
			}
			if err := decrement(&content.OperatorsCount, "content operators"); err != nil {
				return err
			}
		}
	}

	return save(ctx, ec.tx, content)
}
