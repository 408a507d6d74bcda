package projector

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/feral-file/ff-projector/internal/domain"
	"github.com/feral-file/ff-projector/internal/store"
	"github.com/feral-file/ff-projector/internal/store/schema"
)

func getOrCreateFungibleToken(ctx context.Context, tx store.Store, address string) (*schema.FungibleToken, error) {
	token, _, err := getOrCreate(ctx, tx, address, func() *schema.FungibleToken {
		return &schema.FungibleToken{ID: address}
	})
	return token, err
}

func getOrCreateSupply(ctx context.Context, tx store.Store, address string) (*schema.TokenSupply, error) {
	supply, _, err := getOrCreate(ctx, tx, address, func() *schema.TokenSupply {
		return &schema.TokenSupply{ID: address}
	})
	return supply, err
}

// handleTokenCreated records the token's identity and its announced initial supply.
// Circulating supply is left to the mint transfers that follow.
func (p *projector) handleTokenCreated(ctx context.Context, ec *eventContext) error {
	id, err := ec.event.Fields.BigInt("id")
	if err != nil {
		return err
	}
	name, err := ec.event.Fields.String("name")
	if err != nil {
		return err
	}
	symbol, err := ec.event.Fields.String("symbol")
	if err != nil {
		return err
	}
	initialSupply, err := ec.event.Fields.BigInt("supply")
	if err != nil {
		return err
	}

	address := ec.event.ContractAddress
	token, err := getOrCreateFungibleToken(ctx, ec.tx, address)
	if err != nil {
		return err
	}
	token.TokenID = hexutil.EncodeBig(id)
	token.Name = name
	token.Symbol = symbol
	token.CreatedAt = ec.event.Tx.BlockTimestamp

	supply, err := getOrCreateSupply(ctx, ec.tx, address)
	if err != nil {
		return err
	}
	if supply.InitialSupply, err = quantity(initialSupply); err != nil {
		return err
	}
	return save(ctx, ec.tx, token, supply)
}

// handleTokenTransfer moves a fungible balance. Transfers from the zero address mint, transfers to it burn.
func (p *projector) handleTokenTransfer(ctx context.Context, ec *eventContext) error {
	from, err := ec.event.Fields.Address("from")
	if err != nil {
		return err
	}
	to, err := ec.event.Fields.Address("to")
	if err != nil {
		return err
	}
	value, err := ec.event.Fields.BigInt("value")
	if err != nil {
		return err
	}
	if value.Sign() == 0 {
		return nil
	}

	address := ec.event.ContractAddress
	token, err := getOrCreateFungibleToken(ctx, ec.tx, address)
	if err != nil {
		return err
	}
	supply, err := getOrCreateSupply(ctx, ec.tx, address)
	if err != nil {
		return err
	}
	timestamp := ec.event.Tx.BlockTimestamp

	// the mint leg goes first so a zero-to-zero transfer nets out
	if domain.IsZeroAddress(from) {
		if supply.CurrentSupply, err = add(supply.CurrentSupply, value); err != nil {
			return err
		}
		supply.NumberOfMints++
		supply.LastMintAt = timestamp
	}

	if domain.IsZeroAddress(to) {
		if supply.CurrentSupply, err = sub(supply.CurrentSupply, value); err != nil {
			return fmt.Errorf("supply of %s: %w", address, err)
		}
		supply.NumberOfBurns++
		supply.LastBurnAt = timestamp
	} else if err := credit(ctx, ec.tx, token, to, value); err != nil {
		return err
	}

	if !domain.IsZeroAddress(from) {
		if err := debit(ctx, ec.tx, token, from, value); err != nil {
			return err
		}
	}

	return save(ctx, ec.tx, token, supply)
}

func credit(ctx context.Context, tx store.Store, token *schema.FungibleToken, owner string, value *big.Int) error {
	id := domain.TokenBalanceKey(token.ID, owner)
	balance, _, err := getOrCreate(ctx, tx, id, func() *schema.TokenBalance {
		return &schema.TokenBalance{ID: id, Token: token.ID, Owner: owner}
	})
	if err != nil {
		return err
	}
	if balance.Amount.IsZero() {
		token.OwnersCount++
	}
	if balance.Amount, err = add(balance.Amount, value); err != nil {
		return err
	}
	if err := touchAccount(ctx, tx, owner); err != nil {
		return err
	}
	return save(ctx, tx, balance)
}

func debit(ctx context.Context, tx store.Store, token *schema.FungibleToken, owner string, value *big.Int) error {
	balance, err := mustLoad[schema.TokenBalance](ctx, tx, domain.TokenBalanceKey(token.ID, owner))
	if err != nil {
		return err
	}
	if balance.Amount, err = sub(balance.Amount, value); err != nil {
		return fmt.Errorf("balance of %s: %w", owner, err)
	}
	if balance.Amount.IsZero() {
		if err := decrement(&token.OwnersCount, "token owners"); err != nil {
			return err
		}
	}
	return save(ctx, tx, balance)
}
