package projector

import (
	"context"
	"fmt"
	"math/big"

	"github.com/feral-file/ff-projector/internal/domain"
	"github.com/feral-file/ff-projector/internal/store"
	"github.com/feral-file/ff-projector/internal/store/schema"
)

// load reads an entity that may legitimately be absent
func load[T any](ctx context.Context, tx store.Store, id string) (*T, bool, error) {
	var entity T
	found, err := tx.Get(ctx, &entity, id)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load %T %s: %w", entity, id, err)
	}
	if !found {
		return nil, false, nil
	}
	return &entity, true, nil
}

// mustLoad reads an entity the event assumes already exists
func mustLoad[T any](ctx context.Context, tx store.Store, id string) (*T, error) {
	entity, found, err := load[T](ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		var zero T
		return nil, fmt.Errorf("%w: %T %s", domain.ErrMissingEntity, zero, id)
	}
	return entity, nil
}

// getOrCreate reads an entity or builds it with zeroed defaults. It reports whether the entity is new.
func getOrCreate[T any](ctx context.Context, tx store.Store, id string, create func() *T) (*T, bool, error) {
	entity, found, err := load[T](ctx, tx, id)
	if err != nil {
		return nil, false, err
	}
	if found {
		return entity, false, nil
	}
	return create(), true, nil
}

func save(ctx context.Context, tx store.Store, entities ...interface{}) error {
	for _, entity := range entities {
		if err := tx.Save(ctx, entity); err != nil {
			return fmt.Errorf("failed to save %T: %w", entity, err)
		}
	}
	return nil
}

// decrement lowers a counter, refusing to go below zero
func decrement(counter *int64, name string) error {
	if *counter <= 0 {
		return fmt.Errorf("%w: %s", domain.ErrCounterUnderflow, name)
	}
	*counter--
	return nil
}

// add returns q + n
func add(q schema.Uint256, n *big.Int) (schema.Uint256, error) {
	u, err := schema.Uint256FromBig(n)
	if err != nil {
		return schema.Uint256{}, err
	}
	return q.Add(u)
}

// sub returns q - n, failing instead of wrapping
func sub(q schema.Uint256, n *big.Int) (schema.Uint256, error) {
	u, err := schema.Uint256FromBig(n)
	if err != nil {
		return schema.Uint256{}, err
	}
	return q.Sub(u)
}

func quantity(n *big.Int) (schema.Uint256, error) {
	return schema.Uint256FromBig(n)
}

// touchAccount makes sure an account row exists
func touchAccount(ctx context.Context, tx store.Store, address string) error {
	account, created, err := getOrCreate(ctx, tx, address, func() *schema.Account {
		return schema.NewAccount(address)
	})
	if err != nil || !created {
		return err
	}
	return save(ctx, tx, account)
}

// updateAccount applies fn to an account, creating it first if needed, and saves it
func updateAccount(ctx context.Context, tx store.Store, address string, fn func(*schema.Account) error) error {
	account, _, err := getOrCreate(ctx, tx, address, func() *schema.Account {
		return schema.NewAccount(address)
	})
	if err != nil {
		return err
	}
	if err := fn(account); err != nil {
		return fmt.Errorf("account %s: %w", address, err)
	}
	return save(ctx, tx, account)
}

// ensureTransaction records the chain transaction the event was emitted in
func ensureTransaction(ctx context.Context, ec *eventContext) (*schema.Transaction, error) {
	txCtx := ec.event.Tx
	transaction, created, err := getOrCreate(ctx, ec.tx, txCtx.Hash, func() *schema.Transaction {
		return schema.NewTransaction(txCtx.Hash)
	})
	if err != nil {
		return nil, err
	}
	if !created {
		return transaction, nil
	}

	transaction.BlockNumber = txCtx.BlockNumber
	transaction.Timestamp = txCtx.BlockTimestamp
	transaction.GasUsed = txCtx.GasUsed
	if transaction.GasPrice, err = quantity(txCtx.GasPrice); err != nil {
		return nil, err
	}
	if err := save(ctx, ec.tx, transaction); err != nil {
		return nil, err
	}
	return transaction, nil
}

// getOrCreateAsset loads an asset, creating it and counting it on its content when new
func getOrCreateAsset(ctx context.Context, tx store.Store, content string, tokenID *big.Int) (*schema.Asset, bool, error) {
	id := domain.AssetKey(content, tokenID)
	asset, created, err := getOrCreate(ctx, tx, id, func() *schema.Asset {
		return schema.NewAsset(id, content, tokenID.String())
	})
	if err != nil || !created {
		return asset, created, err
	}

	parent, found, err := load[schema.Content](ctx, tx, content)
	if err != nil {
		return nil, false, err
	}
	if found {
		parent.AssetsCount++
		if err := save(ctx, tx, parent); err != nil {
			return nil, false, err
		}
	}
	// persist right away so later lookups in the same event see the asset
	if err := save(ctx, tx, asset); err != nil {
		return nil, false, err
	}
	return asset, true, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
