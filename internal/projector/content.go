package projector

import (
	"context"
	"fmt"
	"math/big"

	"github.com/feral-file/ff-projector/internal/domain"
	"github.com/feral-file/ff-projector/internal/store"
	"github.com/feral-file/ff-projector/internal/store/schema"
)

// leg is one (id, amount) pair of a batch: a token id for transfers and supply changes, an order id for fills
type leg struct {
	id     *big.Int
	amount *big.Int
}

func legs(fields domain.Fields, idsName, amountsName string) ([]leg, error) {
	ids, err := fields.BigInts(idsName)
	if err != nil {
		return nil, err
	}
	amounts, err := fields.BigInts(amountsName)
	if err != nil {
		return nil, err
	}
	if len(ids) != len(amounts) {
		return nil, fmt.Errorf("%w: %d %s but %d %s", domain.ErrMalformedEvent, len(ids), idsName, len(amounts), amountsName)
	}

	out := make([]leg, len(ids))
	for i := range ids {
		out[i] = leg{id: ids[i], amount: amounts[i]}
	}
	return out, nil
}

// watchedContent returns the content the event was emitted by, or false when it was never registered
func (p *projector) watchedContent(ctx context.Context, ec *eventContext, address string) (*schema.Content, bool, error) {
	content, found, err := load[schema.Content](ctx, ec.tx, address)
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, p.skip(ctx, ec, "Unknown content")
	}
	return content, true, nil
}

func (p *projector) handleTransferSingle(ctx context.Context, ec *eventContext) error {
	id, err := ec.event.Fields.BigInt("id")
	if err != nil {
		return err
	}
	value, err := ec.event.Fields.BigInt("value")
	if err != nil {
		return err
	}
	return p.transfer(ctx, ec, []leg{{id: id, amount: value}})
}

func (p *projector) handleTransferBatch(ctx context.Context, ec *eventContext) error {
	batch, err := legs(ec.event.Fields, "ids", "values")
	if err != nil {
		return err
	}
	return p.transfer(ctx, ec, batch)
}

// transfer moves balances between owners. Supply is left to Mint and Burn,
// so legs from or to the zero address only touch the non-zero side.
func (p *projector) transfer(ctx context.Context, ec *eventContext, batch []leg) error {
	from, err := ec.event.Fields.Address("from")
	if err != nil {
		return err
	}
	to, err := ec.event.Fields.Address("to")
	if err != nil {
		return err
	}

	content, ok, err := p.watchedContent(ctx, ec, ec.event.ContractAddress)
	if err != nil || !ok {
		return err
	}

	for _, l := range batch {
		if l.amount.Sign() == 0 {
			continue
		}
		if err := transferLeg(ctx, ec.tx, content.ID, from, to, l); err != nil {
			return fmt.Errorf("token %s: %w", l.id, err)
		}
	}
	return nil
}

func transferLeg(ctx context.Context, tx store.Store, content, from, to string, l leg) error {
	asset, _, err := getOrCreateAsset(ctx, tx, content, l.id)
	if err != nil {
		return err
	}

	if !domain.IsZeroAddress(to) {
		balanceID := domain.AssetBalanceKey(content, to, l.id)
		balance, _, err := getOrCreate(ctx, tx, balanceID, func() *schema.AssetBalance {
			return schema.NewAssetBalance(balanceID, asset.ID, content, to, l.id.String())
		})
		if err != nil {
			return err
		}
		if balance.Amount.IsZero() {
			asset.OwnersCount++
			if err := updateAccount(ctx, tx, to, func(a *schema.Account) error {
				a.UniqueAssetsCount++
				return nil
			}); err != nil {
				return err
			}
		} else if err := touchAccount(ctx, tx, to); err != nil {
			return err
		}
		if balance.Amount, err = add(balance.Amount, l.amount); err != nil {
			return err
		}
		if err := save(ctx, tx, balance); err != nil {
			return err
		}
	}

	if !domain.IsZeroAddress(from) {
		balance, err := mustLoad[schema.AssetBalance](ctx, tx, domain.AssetBalanceKey(content, from, l.id))
		if err != nil {
			return err
		}
		if balance.Amount, err = sub(balance.Amount, l.amount); err != nil {
			return fmt.Errorf("balance of %s: %w", from, err)
		}
		if balance.Amount.IsZero() {
			if err := decrement(&asset.OwnersCount, "asset owners"); err != nil {
				return err
			}
			if err := updateAccount(ctx, tx, from, func(a *schema.Account) error {
				return decrement(&a.UniqueAssetsCount, "unique assets")
			}); err != nil {
				return err
			}
		}
		if err := save(ctx, tx, balance); err != nil {
			return err
		}
	}

	return save(ctx, tx, asset)
}

// handleMint raises supply for every minted token and records the mint in its transaction
func (p *projector) handleMint(ctx context.Context, ec *eventContext) error {
	return p.supplyChange(ctx, ec, "to", true)
}

// handleBurn lowers supply for every burned token and records the burn in its transaction
func (p *projector) handleBurn(ctx context.Context, ec *eventContext) error {
	return p.supplyChange(ctx, ec, "account", false)
}

func (p *projector) supplyChange(ctx context.Context, ec *eventContext, accountField string, mint bool) error {
	operator, err := ec.event.Fields.Address("operator")
	if err != nil {
		return err
	}
	data, err := ec.event.Fields.Tuple("data")
	if err != nil {
		return err
	}
	account, err := data.Address(accountField)
	if err != nil {
		return err
	}
	batch, err := legs(data, "tokenIds", "amounts")
	if err != nil {
		return err
	}

	content, ok, err := p.watchedContent(ctx, ec, ec.event.ContractAddress)
	if err != nil || !ok {
		return err
	}

	transaction, err := ensureTransaction(ctx, ec)
	if err != nil {
		return err
	}

	for _, l := range batch {
		if l.amount.Sign() == 0 {
			continue
		}
		if mint {
			err = mintLeg(ctx, ec.tx, content.ID, transaction.ID, account, operator, l)
		} else {
			err = burnLeg(ctx, ec.tx, content.ID, transaction.ID, account, operator, l)
		}
		if err != nil {
			return fmt.Errorf("token %s: %w", l.id, err)
		}
	}

	if err := updateAccount(ctx, ec.tx, account, func(a *schema.Account) error {
		if mint {
			a.MintCount++
		} else {
			a.BurnCount++
		}
		a.TransactionsCount++
		return nil
	}); err != nil {
		return err
	}
	return updateAccount(ctx, ec.tx, operator, func(a *schema.Account) error {
		a.OperatorTransactionsCount++
		return nil
	})
}

func mintLeg(ctx context.Context, tx store.Store, content, transaction, account, operator string, l leg) error {
	asset, _, err := getOrCreateAsset(ctx, tx, content, l.id)
	if err != nil {
		return err
	}
	if asset.CurrentSupply, err = add(asset.CurrentSupply, l.amount); err != nil {
		return err
	}
	if asset.MintCount, err = add(asset.MintCount, l.amount); err != nil {
		return err
	}

	id := domain.ChildTxKey(transaction, content, l.id.String())
	record, _, err := getOrCreate(ctx, tx, id, func() *schema.MintTransaction {
		return &schema.MintTransaction{ID: id, Transaction: transaction, Asset: asset.ID, Account: account, Operator: operator}
	})
	if err != nil {
		return err
	}
	if record.Amount, err = add(record.Amount, l.amount); err != nil {
		return err
	}
	return save(ctx, tx, asset, record)
}

func burnLeg(ctx context.Context, tx store.Store, content, transaction, account, operator string, l leg) error {
	asset, err := mustLoad[schema.Asset](ctx, tx, domain.AssetKey(content, l.id))
	if err != nil {
		return err
	}
	if asset.CurrentSupply, err = sub(asset.CurrentSupply, l.amount); err != nil {
		return fmt.Errorf("supply of %s: %w", asset.ID, err)
	}
	if asset.BurnCount, err = add(asset.BurnCount, l.amount); err != nil {
		return err
	}

	id := domain.ChildTxKey(transaction, content, l.id.String())
	record, _, err := getOrCreate(ctx, tx, id, func() *schema.BurnTransaction {
		return &schema.BurnTransaction{ID: id, Transaction: transaction, Asset: asset.ID, Account: account, Operator: operator}
	})
	if err != nil {
		return err
	}
	if record.Amount, err = add(record.Amount, l.amount); err != nil {
		return err
	}
	return save(ctx, tx, asset, record)
}

// handleApprovalForAll creates an approval on grant and deletes it on revoke
func (p *projector) handleApprovalForAll(ctx context.Context, ec *eventContext) error {
	account, err := ec.event.Fields.Address("account")
	if err != nil {
		return err
	}
	operator, err := ec.event.Fields.Address("operator")
	if err != nil {
		return err
	}
	approved, err := ec.event.Fields.Bool("approved")
	if err != nil {
		return err
	}

	content, ok, err := p.watchedContent(ctx, ec, ec.event.ContractAddress)
	if err != nil || !ok {
		return err
	}

	id := domain.ApprovalKey(content.ID, account, operator)
	if !approved {
		return ec.tx.Delete(ctx, &schema.Approval{}, id)
	}

	if err := touchAccount(ctx, ec.tx, account); err != nil {
		return err
	}
	return save(ctx, ec.tx, &schema.Approval{ID: id, Content: content.ID, Account: account, Operator: operator})
}
