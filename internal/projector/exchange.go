package projector

import (
	"context"
	"fmt"
	"math/big"

	"go.uber.org/zap"

	"github.com/feral-file/ff-projector/internal/domain"
	"github.com/feral-file/ff-projector/internal/logger"
	"github.com/feral-file/ff-projector/internal/store/schema"
)

// handleAddressRegistered records an exchange or escrow announced by the resolver and starts watching it
func (p *projector) handleAddressRegistered(ctx context.Context, ec *eventContext) error {
	interfaceID, err := ec.event.Fields.Hex("id")
	if err != nil {
		return err
	}
	address, err := ec.event.Fields.Address("contractAddress")
	if err != nil {
		return err
	}

	resolverID := ec.event.ContractAddress
	resolver, created, err := getOrCreate(ctx, ec.tx, resolverID, func() *schema.AddressResolver {
		return &schema.AddressResolver{ID: resolverID}
	})
	if err != nil {
		return err
	}

	kind, ok := domain.KindForInterfaceID(interfaceID)
	if !ok {
		logger.InfoCtx(ctx, "Ignoring registered address", append(eventFields(ec.event),
			zap.String("interface_id", interfaceID),
			zap.String("address", address))...)
		if created {
			return save(ctx, ec.tx, resolver)
		}
		return nil
	}

	switch kind {
	case domain.KindExchange:
		exchange, isNew, err := getOrCreate(ctx, ec.tx, address, func() *schema.Exchange {
			return &schema.Exchange{ID: address, Resolver: resolverID}
		})
		if err != nil {
			return err
		}
		if isNew {
			resolver.Exchange = address
			if err := save(ctx, ec.tx, exchange); err != nil {
				return err
			}
		}
	case domain.KindErc20Escrow:
		escrow, isNew, err := getOrCreate(ctx, ec.tx, address, func() *schema.TokenEscrow {
			return &schema.TokenEscrow{ID: address, Resolver: resolverID}
		})
		if err != nil {
			return err
		}
		if isNew {
			resolver.TokenEscrow = address
			if err := save(ctx, ec.tx, escrow); err != nil {
				return err
			}
		}
	}

	if err := save(ctx, ec.tx, resolver); err != nil {
		return err
	}
	return p.ensureWatching(ctx, ec, address, kind)
}

// watchedExchange returns the exchange the event was emitted by
func (p *projector) watchedExchange(ctx context.Context, ec *eventContext) (*schema.Exchange, bool, error) {
	exchange, found, err := load[schema.Exchange](ctx, ec.tx, ec.event.ContractAddress)
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, p.skip(ctx, ec, "Unknown exchange")
	}
	return exchange, true, nil
}

// activeCounters returns the total and per-side active order counters of an account
func activeCounters(a *schema.Account, orderType domain.OrderType) (*int64, *int64) {
	if orderType == domain.OrderTypeBuy {
		return &a.ActiveOrdersCount, &a.ActiveBuyOrders
	}
	return &a.ActiveOrdersCount, &a.ActiveSellOrders
}

func exchangeActiveCounters(e *schema.Exchange, orderType domain.OrderType) (*int64, *int64) {
	if orderType == domain.OrderTypeBuy {
		return &e.TotalActiveOrdersCount, &e.TotalActiveBuyOrdersCount
	}
	return &e.TotalActiveOrdersCount, &e.TotalActiveSellOrdersCount
}

// closeOrder takes an order out of the active counters of its owner and exchange
func closeOrder(owner *schema.Account, exchange *schema.Exchange, orderType domain.OrderType) error {
	total, side := activeCounters(owner, orderType)
	if err := decrement(total, "account active orders"); err != nil {
		return err
	}
	if err := decrement(side, "account active "+string(orderType)+" orders"); err != nil {
		return err
	}

	total, side = exchangeActiveCounters(exchange, orderType)
	if err := decrement(total, "exchange active orders"); err != nil {
		return err
	}
	return decrement(side, "exchange active "+string(orderType)+" orders")
}

// handleOrderPlaced creates a new open order
func (p *projector) handleOrderPlaced(ctx context.Context, ec *eventContext) error {
	orderID, err := ec.event.Fields.BigInt("orderId")
	if err != nil {
		return err
	}
	data, err := ec.event.Fields.Tuple("order")
	if err != nil {
		return err
	}
	assetRef, err := data.Tuple("asset")
	if err != nil {
		return err
	}
	contentAddr, err := assetRef.Address("contentAddress")
	if err != nil {
		return err
	}
	tokenID, err := assetRef.BigInt("tokenId")
	if err != nil {
		return err
	}
	owner, err := data.Address("owner")
	if err != nil {
		return err
	}
	token, err := data.Address("token")
	if err != nil {
		return err
	}
	price, err := data.BigInt("price")
	if err != nil {
		return err
	}
	amount, err := data.BigInt("amount")
	if err != nil {
		return err
	}
	isBuyOrder, err := data.Bool("isBuyOrder")
	if err != nil {
		return err
	}

	exchange, ok, err := p.watchedExchange(ctx, ec)
	if err != nil || !ok {
		return err
	}

	id := domain.OrderKey(exchange.ID, orderID)
	_, exists, err := load[schema.Order](ctx, ec.tx, id)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: order %s", domain.ErrDuplicateEntity, id)
	}

	asset, _, err := getOrCreateAsset(ctx, ec.tx, contentAddr, tokenID)
	if err != nil {
		return err
	}

	orderType := domain.OrderTypeFor(isBuyOrder)
	order := &schema.Order{
		ID:                 id,
		Exchange:           exchange.ID,
		OrderID:            orderID.String(),
		Asset:              asset.ID,
		Token:              token,
		Owner:              owner,
		Type:               orderType,
		Status:             domain.OrderStatusReady,
		CreatedAtTimestamp: ec.event.Tx.BlockTimestamp,
	}
	if order.Price, err = quantity(price); err != nil {
		return err
	}
	if order.AmountOrdered, err = quantity(amount); err != nil {
		return err
	}

	if err := updateAccount(ctx, ec.tx, owner, func(a *schema.Account) error {
		total, side := activeCounters(a, orderType)
		a.OrdersCount++
		*total++
		*side++
		return nil
	}); err != nil {
		return err
	}

	exchange.TotalOrdersCount++
	if isBuyOrder {
		exchange.TotalBuyOrdersCount++
	} else {
		exchange.TotalSellOrdersCount++
	}
	total, side := exchangeActiveCounters(exchange, orderType)
	*total++
	*side++

	return save(ctx, ec.tx, order, exchange)
}

// handleOrdersFilled records fills against open orders and updates traded volumes
func (p *projector) handleOrdersFilled(ctx context.Context, ec *eventContext) error {
	fields := ec.event.Fields
	filler, err := fields.Address("from")
	if err != nil {
		return err
	}
	fills, err := legs(fields, "orderIds", "amounts")
	if err != nil {
		return err
	}
	assetRef, err := fields.Tuple("asset")
	if err != nil {
		return err
	}
	contentAddr, err := assetRef.Address("contentAddress")
	if err != nil {
		return err
	}
	tokenID, err := assetRef.BigInt("tokenId")
	if err != nil {
		return err
	}
	token, err := fields.Address("token")
	if err != nil {
		return err
	}
	totalAssetsAmount, err := fields.BigInt("totalAssetsAmount")
	if err != nil {
		return err
	}
	volume, err := fields.BigInt("volume")
	if err != nil {
		return err
	}

	exchange, ok, err := p.watchedExchange(ctx, ec)
	if err != nil || !ok {
		return err
	}

	if err := touchAccount(ctx, ec.tx, filler); err != nil {
		return err
	}
	if _, _, err := getOrCreateAsset(ctx, ec.tx, contentAddr, tokenID); err != nil {
		return err
	}
	t, created, err := getOrCreate(ctx, ec.tx, token, func() *schema.Token {
		return &schema.Token{ID: token}
	})
	if err != nil {
		return err
	}
	if created {
		if err := save(ctx, ec.tx, t); err != nil {
			return err
		}
	}

	timestamp := ec.event.Tx.BlockTimestamp
	isBuyOrder := false
	for _, f := range fills {
		if f.amount.Sign() == 0 {
			continue
		}
		buy, err := p.fillOrder(ctx, ec, exchange, filler, token, f.id, f.amount)
		if err != nil {
			return fmt.Errorf("order %s: %w", f.id, err)
		}
		isBuyOrder = buy
	}
	if err := save(ctx, ec.tx, exchange); err != nil {
		return err
	}

	// the filler takes the opposite side of the orders it filled
	if err := updateAccountDailyVolume(ctx, ec.tx, filler, token, volume, !isBuyOrder, timestamp); err != nil {
		return err
	}

	asset, err := mustLoad[schema.Asset](ctx, ec.tx, domain.AssetKey(contentAddr, tokenID))
	if err != nil {
		return err
	}
	if asset.AssetVolumeTransacted, err = add(asset.AssetVolumeTransacted, totalAssetsAmount); err != nil {
		return err
	}
	if err := save(ctx, ec.tx, asset); err != nil {
		return err
	}

	return updateTokenVolume(ctx, ec.tx, token, volume, timestamp)
}

// fillOrder applies one fill to an order and reports whether the order was a buy order.
// The exchange counters are updated in memory and saved by the caller.
func (p *projector) fillOrder(ctx context.Context, ec *eventContext, exchange *schema.Exchange, filler, token string, orderID, amount *big.Int) (bool, error) {
	order, err := mustLoad[schema.Order](ctx, ec.tx, domain.OrderKey(exchange.ID, orderID))
	if err != nil {
		return false, err
	}
	if !order.Status.Open() {
		return false, fmt.Errorf("%w: fill of %s order %s", domain.ErrInvalidTransition, order.Status, order.ID)
	}
	isBuyOrder := order.Type == domain.OrderTypeBuy

	if order.AmountFilled, err = add(order.AmountFilled, amount); err != nil {
		return false, err
	}
	if order.AmountFilled.Cmp(order.AmountOrdered) > 0 {
		return false, fmt.Errorf("%w: order %s filled %s of %s", domain.ErrInvalidTransition, order.ID, order.AmountFilled, order.AmountOrdered)
	}

	qty, err := quantity(amount)
	if err != nil {
		return false, err
	}
	totalPrice, err := qty.Mul(order.Price)
	if err != nil {
		return false, err
	}

	fillID := domain.OrderFillKey(order.ID, ec.event.Tx.Hash, ec.event.Tx.LogIndex)
	fill, created, err := getOrCreate(ctx, ec.tx, fillID, func() *schema.OrderFill {
		return &schema.OrderFill{
			ID:                 fillID,
			Order:              order.ID,
			Exchange:           exchange.ID,
			Filler:             filler,
			Token:              token,
			PricePerItem:       order.Price,
			CreatedAtTimestamp: ec.event.Tx.BlockTimestamp,
		}
	})
	if err != nil {
		return false, err
	}
	if fill.Amount, err = fill.Amount.Add(qty); err != nil {
		return false, err
	}
	if fill.TotalPrice, err = fill.TotalPrice.Add(totalPrice); err != nil {
		return false, err
	}
	if err := save(ctx, ec.tx, fill); err != nil {
		return false, err
	}

	if created {
		if err := updateAccount(ctx, ec.tx, filler, func(a *schema.Account) error {
			a.OrderFillsCount++
			return nil
		}); err != nil {
			return false, err
		}
		exchange.TotalOrderFillsCount++
		if isBuyOrder {
			exchange.TotalBuyOrderFillsCount++
		} else {
			exchange.TotalSellOrderFillsCount++
		}
	}

	filled := order.AmountFilled.Eq(order.AmountOrdered)
	if filled {
		order.Status = domain.OrderStatusFilled
		order.FilledAtTimestamp = ec.event.Tx.BlockTimestamp
	} else {
		order.Status = domain.OrderStatusPartiallyFilled
	}
	if err := save(ctx, ec.tx, order); err != nil {
		return false, err
	}

	if filled {
		owner, err := mustLoad[schema.Account](ctx, ec.tx, order.Owner)
		if err != nil {
			return false, err
		}
		if err := closeOrder(owner, exchange, order.Type); err != nil {
			return false, err
		}
		owner.FilledOrdersCount++
		if err := save(ctx, ec.tx, owner); err != nil {
			return false, err
		}
	}

	if err := updateAccountDailyVolume(ctx, ec.tx, order.Owner, token, totalPrice.Big(), isBuyOrder, ec.event.Tx.BlockTimestamp); err != nil {
		return false, err
	}
	return isBuyOrder, nil
}

// handleOrdersDeleted cancels open orders
func (p *projector) handleOrdersDeleted(ctx context.Context, ec *eventContext) error {
	orderIDs, err := ec.event.Fields.BigInts("orderIds")
	if err != nil {
		return err
	}

	exchange, ok, err := p.watchedExchange(ctx, ec)
	if err != nil || !ok {
		return err
	}

	for _, orderID := range orderIDs {
		order, err := mustLoad[schema.Order](ctx, ec.tx, domain.OrderKey(exchange.ID, orderID))
		if err != nil {
			return err
		}
		if !order.Status.Open() {
			return fmt.Errorf("%w: cancel of %s order %s", domain.ErrInvalidTransition, order.Status, order.ID)
		}

		order.Status = domain.OrderStatusCancelled
		order.CancelledAtTimestamp = ec.event.Tx.BlockTimestamp
		order.AmountClaimed = order.AmountFilled
		if err := save(ctx, ec.tx, order); err != nil {
			return err
		}

		owner, err := mustLoad[schema.Account](ctx, ec.tx, order.Owner)
		if err != nil {
			return err
		}
		if err := closeOrder(owner, exchange, order.Type); err != nil {
			return fmt.Errorf("order %s: %w", order.ID, err)
		}
		owner.CancelledOrdersCount++
		if err := save(ctx, ec.tx, owner); err != nil {
			return err
		}
	}

	return save(ctx, ec.tx, exchange)
}

// handleOrdersClaimed releases the filled but unclaimed amount of each order
func (p *projector) handleOrdersClaimed(ctx context.Context, ec *eventContext) error {
	orderIDs, err := ec.event.Fields.BigInts("orderIds")
	if err != nil {
		return err
	}

	exchange, ok, err := p.watchedExchange(ctx, ec)
	if err != nil || !ok {
		return err
	}

	for _, orderID := range orderIDs {
		order, err := mustLoad[schema.Order](ctx, ec.tx, domain.OrderKey(exchange.ID, orderID))
		if err != nil {
			return err
		}

		// partially filled orders keep their status and may be claimed again
		if order.Status == domain.OrderStatusFilled {
			order.Status = domain.OrderStatusClaimed
		}

		if !order.AmountFilled.Eq(order.AmountClaimed) {
			delta, err := order.AmountFilled.Sub(order.AmountClaimed)
			if err != nil {
				return fmt.Errorf("order %s: %w", order.ID, err)
			}
			claim := &schema.OrderClaimTransaction{
				ID:                 domain.OrderClaimKey(order.ID, order.ClaimOrdersCount),
				Order:              order.ID,
				AmountClaimed:      delta,
				CreatedAtTimestamp: ec.event.Tx.BlockTimestamp,
			}
			if err := save(ctx, ec.tx, claim); err != nil {
				return err
			}
			order.LastClaimedAtTimestamp = ec.event.Tx.BlockTimestamp
			order.AmountClaimed = order.AmountFilled
			order.ClaimOrdersCount++
		}

		if err := save(ctx, ec.tx, order); err != nil {
			return err
		}
	}
	return nil
}

// handleAddedTokenSupport links a payment token to the escrow that supports it
func (p *projector) handleAddedTokenSupport(ctx context.Context, ec *eventContext) error {
	token, err := ec.event.Fields.Address("token")
	if err != nil {
		return err
	}

	escrow, ok, err := p.watchedEscrow(ctx, ec)
	if err != nil || !ok {
		return err
	}

	t, _, err := getOrCreate(ctx, ec.tx, token, func() *schema.Token {
		return &schema.Token{ID: token}
	})
	if err != nil {
		return err
	}
	if t.Escrow != "" {
		return nil
	}
	t.Escrow = escrow.ID
	escrow.SupportedTokensCount++
	return save(ctx, ec.tx, t, escrow)
}

// handleClaimedRoyalties adds claimed amounts to the owner's running royalty totals
func (p *projector) handleClaimedRoyalties(ctx context.Context, ec *eventContext) error {
	owner, err := ec.event.Fields.Address("owner")
	if err != nil {
		return err
	}
	tokens, err := ec.event.Fields.Addresses("tokens")
	if err != nil {
		return err
	}
	amounts, err := ec.event.Fields.BigInts("amounts")
	if err != nil {
		return err
	}
	if len(tokens) != len(amounts) {
		return fmt.Errorf("%w: %d tokens but %d amounts", domain.ErrMalformedEvent, len(tokens), len(amounts))
	}

	if _, ok, err := p.watchedEscrow(ctx, ec); err != nil || !ok {
		return err
	}
	if err := touchAccount(ctx, ec.tx, owner); err != nil {
		return err
	}

	for i, token := range tokens {
		id := domain.UserRoyaltyKey(token, owner)
		royalty, _, err := getOrCreate(ctx, ec.tx, id, func() *schema.UserRoyalty {
			return &schema.UserRoyalty{ID: id, Token: token, Account: owner}
		})
		if err != nil {
			return err
		}
		if royalty.ClaimedAmount, err = add(royalty.ClaimedAmount, amounts[i]); err != nil {
			return err
		}
		if err := save(ctx, ec.tx, royalty); err != nil {
			return err
		}
	}
	return nil
}

func (p *projector) watchedEscrow(ctx context.Context, ec *eventContext) (*schema.TokenEscrow, bool, error) {
	escrow, found, err := load[schema.TokenEscrow](ctx, ec.tx, ec.event.ContractAddress)
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, p.skip(ctx, ec, "Unknown token escrow")
	}
	return escrow, true, nil
}
