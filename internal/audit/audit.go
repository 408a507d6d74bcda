package audit

import (
	"context"
	"fmt"
	"math/big"
	"strconv"

	"go.uber.org/zap"

	"github.com/feral-file/ff-projector/internal/domain"
	"github.com/feral-file/ff-projector/internal/logger"
	"github.com/feral-file/ff-projector/internal/store"
	"github.com/feral-file/ff-projector/internal/store/schema"
)

// Violation is a stored value that disagrees with the value derived from child entities
type Violation struct {
	Entity  string `json:"entity"`
	ID      string `json:"id"`
	Field   string `json:"field"`
	Stored  string `json:"stored"`
	Derived string `json:"derived"`
	// Repairable is false for balances and supplies, which Repair never rewrites
	Repairable bool `json:"repairable"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s %s: %s is %s, derived %s", v.Entity, v.ID, v.Field, v.Stored, v.Derived)
}

// Report is the outcome of an audit
type Report struct {
	Violations []Violation `json:"violations"`
	// Checked is the number of entities inspected per entity type
	Checked map[string]int `json:"checked"`
	// Repaired is the number of entities rewritten by Repair
	Repaired int `json:"repaired"`
}

// OK reports whether no violation was found
func (r *Report) OK() bool {
	return len(r.Violations) == 0
}

// Auditor recomputes derived counters from the entities they summarise
type Auditor interface {
	// Verify reports every counter, balance total and supply that disagrees with its children
	Verify(ctx context.Context) (*Report, error)
	// Repair rewrites the derivable counters in one transaction. Balances and supplies are only reported.
	Repair(ctx context.Context) (*Report, error)
}

type auditor struct {
	store store.Store
}

// New creates an auditor over the entity store
func New(s store.Store) Auditor {
	return &auditor{store: s}
}

func (a *auditor) Verify(ctx context.Context) (*Report, error) {
	snap, err := loadSnapshot(ctx, a.store)
	if err != nil {
		return nil, err
	}
	result := inspect(snap)
	logReport(ctx, "Audit finished", result.report)
	return result.report, nil
}

func (a *auditor) Repair(ctx context.Context) (*Report, error) {
	var report *Report
	err := a.store.WithTx(ctx, func(tx store.Store) error {
		snap, err := loadSnapshot(ctx, tx)
		if err != nil {
			return err
		}
		result := inspect(snap)
		for _, entity := range result.dirty {
			if err := tx.Save(ctx, entity); err != nil {
				return err
			}
		}
		result.report.Repaired = len(result.dirty)
		report = result.report
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to repair counters: %w", err)
	}
	logReport(ctx, "Repair finished", report)
	return report, nil
}

func logReport(ctx context.Context, msg string, r *Report) {
	fields := []zap.Field{zap.Int("violations", len(r.Violations)), zap.Int("repaired", r.Repaired)}
	if r.OK() {
		logger.InfoCtx(ctx, msg, fields...)
		return
	}
	for _, v := range r.Violations {
		logger.DebugCtx(ctx, "Violation", zap.String("violation", v.String()))
	}
	logger.WarnCtx(ctx, msg, fields...)
}

// snapshot holds every entity the audit derives counters from
type snapshot struct {
	contents      []schema.Content
	assets        []schema.Asset
	balances      []schema.AssetBalance
	minters       []schema.Minter
	operators     []schema.Operator
	tokens        []schema.FungibleToken
	supplies      []schema.TokenSupply
	tokenBalances []schema.TokenBalance
	accounts      []schema.Account
	accountDays   []schema.AccountDayData
	exchanges     []schema.Exchange
	orders        []schema.Order
}

func loadSnapshot(ctx context.Context, s store.Store) (*snapshot, error) {
	snap := &snapshot{}
	for _, dst := range []interface{}{
		&snap.contents,
		&snap.assets,
		&snap.balances,
		&snap.minters,
		&snap.operators,
		&snap.tokens,
		&snap.supplies,
		&snap.tokenBalances,
		&snap.accounts,
		&snap.accountDays,
		&snap.exchanges,
		&snap.orders,
	} {
		if err := s.Find(ctx, dst, nil); err != nil {
			return nil, err
		}
	}
	return snap, nil
}

type inspection struct {
	report *Report
	dirty  []interface{}
	seen   map[interface{}]bool
}

func (i *inspection) markDirty(entity interface{}) {
	if i.seen[entity] {
		return
	}
	i.seen[entity] = true
	i.dirty = append(i.dirty, entity)
}

// counter compares a derivable counter and fixes it in place on mismatch
func (i *inspection) counter(owner interface{}, entity, id, field string, stored *int64, derived int64) {
	if *stored == derived {
		return
	}
	i.report.Violations = append(i.report.Violations, Violation{
		Entity:     entity,
		ID:         id,
		Field:      field,
		Stored:     strconv.FormatInt(*stored, 10),
		Derived:    strconv.FormatInt(derived, 10),
		Repairable: true,
	})
	*stored = derived
	i.markDirty(owner)
}

// conserved compares a supply with the sum of its balances
func (i *inspection) conserved(entity, id, field string, stored schema.Uint256, derived *big.Int) {
	if stored.Big().Cmp(derived) == 0 {
		return
	}
	i.report.Violations = append(i.report.Violations, Violation{
		Entity:  entity,
		ID:      id,
		Field:   field,
		Stored:  stored.String(),
		Derived: derived.String(),
	})
}

func inspect(snap *snapshot) *inspection {
	i := &inspection{
		report: &Report{Checked: make(map[string]int)},
		seen:   make(map[interface{}]bool),
	}
	inspectAssets(i, snap)
	inspectContents(i, snap)
	inspectFungibleTokens(i, snap)
	inspectAccounts(i, snap)
	inspectExchanges(i, snap)
	return i
}

func inspectAssets(i *inspection, snap *snapshot) {
	supply := make(map[string]*big.Int)
	owners := make(map[string]int64)
	for _, b := range snap.balances {
		if supply[b.Asset] == nil {
			supply[b.Asset] = new(big.Int)
		}
		supply[b.Asset].Add(supply[b.Asset], b.Amount.Big())
		if !b.Amount.IsZero() {
			owners[b.Asset]++
		}
	}

	for k := range snap.assets {
		asset := &snap.assets[k]
		total := supply[asset.ID]
		if total == nil {
			total = new(big.Int)
		}
		i.conserved("Asset", asset.ID, "currentSupply", asset.CurrentSupply, total)
		i.counter(asset, "Asset", asset.ID, "ownersCount", &asset.OwnersCount, owners[asset.ID])
	}
	i.report.Checked["Asset"] = len(snap.assets)
}

func inspectContents(i *inspection, snap *snapshot) {
	assets := make(map[string]int64)
	for _, a := range snap.assets {
		assets[a.Content]++
	}
	minters := make(map[string]int64)
	for _, m := range snap.minters {
		minters[m.Content]++
	}
	operators := make(map[string]int64)
	for _, o := range snap.operators {
		operators[o.Content]++
	}

	for k := range snap.contents {
		content := &snap.contents[k]
		i.counter(content, "Content", content.ID, "assetsCount", &content.AssetsCount, assets[content.ID])
		i.counter(content, "Content", content.ID, "mintersCount", &content.MintersCount, minters[content.ID])
		i.counter(content, "Content", content.ID, "operatorsCount", &content.OperatorsCount, operators[content.ID])
	}
	i.report.Checked["Content"] = len(snap.contents)
}

func inspectFungibleTokens(i *inspection, snap *snapshot) {
	supply := make(map[string]*big.Int)
	owners := make(map[string]int64)
	for _, b := range snap.tokenBalances {
		if supply[b.Token] == nil {
			supply[b.Token] = new(big.Int)
		}
		supply[b.Token].Add(supply[b.Token], b.Amount.Big())
		if !b.Amount.IsZero() {
			owners[b.Token]++
		}
	}

	for _, s := range snap.supplies {
		total := supply[s.ID]
		if total == nil {
			total = new(big.Int)
		}
		i.conserved("TokenSupply", s.ID, "currentSupply", s.CurrentSupply, total)
	}
	for k := range snap.tokens {
		token := &snap.tokens[k]
		i.counter(token, "FungibleToken", token.ID, "ownersCount", &token.OwnersCount, owners[token.ID])
	}
	i.report.Checked["FungibleToken"] = len(snap.tokens)
}

// activeOrders counts open orders per side
type activeOrders struct {
	total, buy, sell int64
}

func (a *activeOrders) add(orderType domain.OrderType) {
	a.total++
	if orderType == domain.OrderTypeBuy {
		a.buy++
	} else {
		a.sell++
	}
}

func openOrdersBy(orders []schema.Order, key func(schema.Order) string) map[string]*activeOrders {
	counts := make(map[string]*activeOrders)
	for _, o := range orders {
		if !o.Status.Open() {
			continue
		}
		k := key(o)
		if counts[k] == nil {
			counts[k] = &activeOrders{}
		}
		counts[k].add(o.Type)
	}
	return counts
}

func inspectAccounts(i *inspection, snap *snapshot) {
	active := openOrdersBy(snap.orders, func(o schema.Order) string { return o.Owner })
	placed := make(map[string]int64)
	for _, o := range snap.orders {
		placed[o.Owner]++
	}
	unique := make(map[string]int64)
	for _, b := range snap.balances {
		if !b.Amount.IsZero() {
			unique[b.Owner]++
		}
	}
	days := make(map[string]map[int64]bool)
	for _, d := range snap.accountDays {
		if days[d.Account] == nil {
			days[d.Account] = make(map[int64]bool)
		}
		days[d.Account][d.Day] = true
	}

	for k := range snap.accounts {
		account := &snap.accounts[k]
		counts := active[account.ID]
		if counts == nil {
			counts = &activeOrders{}
		}
		i.counter(account, "Account", account.ID, "ordersCount", &account.OrdersCount, placed[account.ID])
		i.counter(account, "Account", account.ID, "activeOrdersCount", &account.ActiveOrdersCount, counts.total)
		i.counter(account, "Account", account.ID, "activeBuyOrders", &account.ActiveBuyOrders, counts.buy)
		i.counter(account, "Account", account.ID, "activeSellOrders", &account.ActiveSellOrders, counts.sell)
		i.counter(account, "Account", account.ID, "uniqueAssetsCount", &account.UniqueAssetsCount, unique[account.ID])
		i.counter(account, "Account", account.ID, "activeDaysCount", &account.ActiveDaysCount, int64(len(days[account.ID])))
	}
	i.report.Checked["Account"] = len(snap.accounts)
}

func inspectExchanges(i *inspection, snap *snapshot) {
	active := openOrdersBy(snap.orders, func(o schema.Order) string { return o.Exchange })
	placed := make(map[string]*activeOrders)
	for _, o := range snap.orders {
		if placed[o.Exchange] == nil {
			placed[o.Exchange] = &activeOrders{}
		}
		placed[o.Exchange].add(o.Type)
	}

	for k := range snap.exchanges {
		exchange := &snap.exchanges[k]
		counts := active[exchange.ID]
		if counts == nil {
			counts = &activeOrders{}
		}
		total := placed[exchange.ID]
		if total == nil {
			total = &activeOrders{}
		}
		i.counter(exchange, "Exchange", exchange.ID, "totalOrdersCount", &exchange.TotalOrdersCount, total.total)
		i.counter(exchange, "Exchange", exchange.ID, "totalBuyOrdersCount", &exchange.TotalBuyOrdersCount, total.buy)
		i.counter(exchange, "Exchange", exchange.ID, "totalSellOrdersCount", &exchange.TotalSellOrdersCount, total.sell)
		i.counter(exchange, "Exchange", exchange.ID, "totalActiveOrdersCount", &exchange.TotalActiveOrdersCount, counts.total)
		i.counter(exchange, "Exchange", exchange.ID, "totalActiveBuyOrdersCount", &exchange.TotalActiveBuyOrdersCount, counts.buy)
		i.counter(exchange, "Exchange", exchange.ID, "totalActiveSellOrdersCount", &exchange.TotalActiveSellOrdersCount, counts.sell)
	}
	i.report.Checked["Exchange"] = len(snap.exchanges)
}
