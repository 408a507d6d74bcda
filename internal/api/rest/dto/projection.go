package dto

import (
	"github.com/feral-file/ff-projector/internal/domain"
	"github.com/feral-file/ff-projector/internal/store/schema"
)

// FeeResponse is a royalty entry
type FeeResponse struct {
	Account string `json:"account"`
	Rate    string `json:"rate"`
}

// ContentResponse represents a content contract
type ContentResponse struct {
	Address        string        `json:"address"`
	Manager        string        `json:"manager"`
	Owner          string        `json:"owner"`
	ContractURI    string        `json:"contract_uri"`
	Name           string        `json:"name"`
	Symbol         string        `json:"symbol"`
	Game           string        `json:"game"`
	Creator        string        `json:"creator"`
	Type           string        `json:"type"`
	Image          string        `json:"image"`
	Tags           []string      `json:"tags"`
	MetadataHash   string        `json:"metadata_hash,omitempty"`
	AssetsCount    int64         `json:"assets_count"`
	MintersCount   int64         `json:"minters_count"`
	OperatorsCount int64         `json:"operators_count"`
	Royalties      []FeeResponse `json:"royalties"`
	CreatedAt      int64         `json:"created_at_timestamp"`
}

// BalanceResponse is an owner's positive balance
type BalanceResponse struct {
	Owner  string `json:"owner"`
	Amount string `json:"amount"`
}

// AssetResponse represents an asset with its holders
type AssetResponse struct {
	ID                     string            `json:"id"`
	Content                string            `json:"content"`
	TokenID                string            `json:"token_id"`
	CurrentSupply          string            `json:"current_supply"`
	MaxSupply              string            `json:"max_supply"`
	MintCount              string            `json:"mint_count"`
	BurnCount              string            `json:"burn_count"`
	OwnersCount            int64             `json:"owners_count"`
	LatestHiddenURIVersion string            `json:"latest_hidden_uri_version"`
	LatestPublicURIVersion string            `json:"latest_public_uri_version"`
	MetadataURI            string            `json:"metadata_uri"`
	MetadataHash           string            `json:"metadata_hash,omitempty"`
	Name                   string            `json:"name"`
	Type                   string            `json:"type"`
	Subtype                string            `json:"subtype"`
	Image                  string            `json:"image"`
	Tags                   []string          `json:"tags"`
	VolumeTransacted       string            `json:"volume_transacted"`
	Royalties              []FeeResponse     `json:"royalties"`
	Balances               []BalanceResponse `json:"balances"`
}

// AccountResponse represents an account's aggregate counters
type AccountResponse struct {
	Address                   string `json:"address"`
	UniqueAssetsCount         int64  `json:"unique_assets_count"`
	MintCount                 int64  `json:"mint_count"`
	BurnCount                 int64  `json:"burn_count"`
	TransactionsCount         int64  `json:"transactions_count"`
	OperatorTransactionsCount int64  `json:"operator_transactions_count"`
	OrdersCount               int64  `json:"orders_count"`
	ActiveOrdersCount         int64  `json:"active_orders_count"`
	ActiveBuyOrders           int64  `json:"active_buy_orders"`
	ActiveSellOrders          int64  `json:"active_sell_orders"`
	FilledOrdersCount         int64  `json:"filled_orders_count"`
	CancelledOrdersCount      int64  `json:"cancelled_orders_count"`
	OrderFillsCount           int64  `json:"order_fills_count"`
	ActiveDaysCount           int64  `json:"active_days_count"`
	Volume                    string `json:"volume"`
	VolumeAsBuyer             string `json:"volume_as_buyer"`
	VolumeAsSeller            string `json:"volume_as_seller"`
	CraftCount                int64  `json:"craft_count"`
	SalvageCount              int64  `json:"salvage_count"`
}

// OrderFillResponse is a single fill of an order
type OrderFillResponse struct {
	ID           string `json:"id"`
	Filler       string `json:"filler"`
	Amount       string `json:"amount"`
	PricePerItem string `json:"price_per_item"`
	TotalPrice   string `json:"total_price"`
	CreatedAt    int64  `json:"created_at_timestamp"`
}

// OrderClaimResponse is the amount released by one claim
type OrderClaimResponse struct {
	ID            string `json:"id"`
	AmountClaimed string `json:"amount_claimed"`
	CreatedAt     int64  `json:"created_at_timestamp"`
}

// OrderResponse represents an exchange order with its fills and claims
type OrderResponse struct {
	ID               string               `json:"id"`
	Exchange         string               `json:"exchange"`
	OrderID          string               `json:"order_id"`
	Asset            string               `json:"asset"`
	Token            string               `json:"token"`
	Owner            string               `json:"owner"`
	Type             domain.OrderType     `json:"type"`
	Status           domain.OrderStatus   `json:"status"`
	Price            string               `json:"price"`
	AmountOrdered    string               `json:"amount_ordered"`
	AmountFilled     string               `json:"amount_filled"`
	AmountClaimed    string               `json:"amount_claimed"`
	ClaimOrdersCount int64                `json:"claim_orders_count"`
	CreatedAt        int64                `json:"created_at_timestamp"`
	FilledAt         int64                `json:"filled_at_timestamp,omitempty"`
	CancelledAt      int64                `json:"cancelled_at_timestamp,omitempty"`
	LastClaimedAt    int64                `json:"last_claimed_at_timestamp,omitempty"`
	Fills            []OrderFillResponse  `json:"fills"`
	Claims           []OrderClaimResponse `json:"claims"`
}

// FungibleTokenResponse represents a fungible token with its supply
type FungibleTokenResponse struct {
	TokenID       string `json:"token_id"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	CreatedAt     int64  `json:"created_at"`
	OwnersCount   int64  `json:"owners_count"`
	InitialSupply string `json:"initial_supply"`
	CurrentSupply string `json:"current_supply"`
	NumberOfMints int64  `json:"number_of_mints"`
	NumberOfBurns int64  `json:"number_of_burns"`
	LastMintAt    int64  `json:"last_mint_at,omitempty"`
	LastBurnAt    int64  `json:"last_burn_at,omitempty"`
}

// PaymentTokenResponse represents an exchange payment token
type PaymentTokenResponse struct {
	Escrow      string `json:"escrow,omitempty"`
	TotalVolume string `json:"total_volume"`
}

// TokenResponse represents a token address. Either view may be absent.
type TokenResponse struct {
	Address  string                 `json:"address"`
	Fungible *FungibleTokenResponse `json:"fungible,omitempty"`
	Payment  *PaymentTokenResponse  `json:"payment,omitempty"`
}

func toFees[T schema.AssetFee | schema.ContractFee](fees []T, account func(T) string, rate func(T) schema.Uint256) []FeeResponse {
	out := make([]FeeResponse, 0, len(fees))
	for _, f := range fees {
		r := rate(f)
		// a zero rate means the royalty was removed
		if r.IsZero() {
			continue
		}
		out = append(out, FeeResponse{Account: account(f), Rate: r.String()})
	}
	return out
}

// NewContentResponse maps a content and its contract royalties
func NewContentResponse(c *schema.Content, fees []schema.ContractFee) ContentResponse {
	return ContentResponse{
		Address:        c.ID,
		Manager:        c.Manager,
		Owner:          c.Owner,
		ContractURI:    c.ContractURI,
		Name:           c.Name,
		Symbol:         c.Symbol,
		Game:           c.Game,
		Creator:        c.Creator,
		Type:           c.Type,
		Image:          c.Image,
		Tags:           nonNil(c.Tags),
		MetadataHash:   c.MetadataHash,
		AssetsCount:    c.AssetsCount,
		MintersCount:   c.MintersCount,
		OperatorsCount: c.OperatorsCount,
		Royalties: toFees(fees,
			func(f schema.ContractFee) string { return f.Account },
			func(f schema.ContractFee) schema.Uint256 { return f.Rate }),
		CreatedAt: c.CreatedAtTimestamp,
	}
}

// NewAssetResponse maps an asset, its royalties and its positive balances
func NewAssetResponse(a *schema.Asset, fees []schema.AssetFee, balances []schema.AssetBalance) AssetResponse {
	holders := make([]BalanceResponse, 0, len(balances))
	for _, b := range balances {
		if b.Amount.IsZero() {
			continue
		}
		holders = append(holders, BalanceResponse{Owner: b.Owner, Amount: b.Amount.String()})
	}

	return AssetResponse{
		ID:                     a.ID,
		Content:                a.Content,
		TokenID:                a.TokenID,
		CurrentSupply:          a.CurrentSupply.String(),
		MaxSupply:              a.MaxSupply.String(),
		MintCount:              a.MintCount.String(),
		BurnCount:              a.BurnCount.String(),
		OwnersCount:            a.OwnersCount,
		LatestHiddenURIVersion: a.LatestHiddenURIVersion.String(),
		LatestPublicURIVersion: a.LatestPublicURIVersion.String(),
		MetadataURI:            a.MetadataURI,
		MetadataHash:           a.MetadataHash,
		Name:                   a.Name,
		Type:                   a.Type,
		Subtype:                a.Subtype,
		Image:                  a.Image,
		Tags:                   nonNil(a.Tags),
		VolumeTransacted:       a.AssetVolumeTransacted.String(),
		Royalties: toFees(fees,
			func(f schema.AssetFee) string { return f.Account },
			func(f schema.AssetFee) schema.Uint256 { return f.Rate }),
		Balances: holders,
	}
}

// NewAccountResponse maps an account
func NewAccountResponse(a *schema.Account) AccountResponse {
	return AccountResponse{
		Address:                   a.ID,
		UniqueAssetsCount:         a.UniqueAssetsCount,
		MintCount:                 a.MintCount,
		BurnCount:                 a.BurnCount,
		TransactionsCount:         a.TransactionsCount,
		OperatorTransactionsCount: a.OperatorTransactionsCount,
		OrdersCount:               a.OrdersCount,
		ActiveOrdersCount:         a.ActiveOrdersCount,
		ActiveBuyOrders:           a.ActiveBuyOrders,
		ActiveSellOrders:          a.ActiveSellOrders,
		FilledOrdersCount:         a.FilledOrdersCount,
		CancelledOrdersCount:      a.CancelledOrdersCount,
		OrderFillsCount:           a.OrderFillsCount,
		ActiveDaysCount:           a.ActiveDaysCount,
		Volume:                    a.Volume.String(),
		VolumeAsBuyer:             a.VolumeAsBuyer.String(),
		VolumeAsSeller:            a.VolumeAsSeller.String(),
		CraftCount:                a.CraftCount,
		SalvageCount:              a.SalvageCount,
	}
}

// NewOrderResponse maps an order with its fills and claims
func NewOrderResponse(o *schema.Order, fills []schema.OrderFill, claims []schema.OrderClaimTransaction) OrderResponse {
	fillResponses := make([]OrderFillResponse, 0, len(fills))
	for _, f := range fills {
		fillResponses = append(fillResponses, OrderFillResponse{
			ID:           f.ID,
			Filler:       f.Filler,
			Amount:       f.Amount.String(),
			PricePerItem: f.PricePerItem.String(),
			TotalPrice:   f.TotalPrice.String(),
			CreatedAt:    f.CreatedAtTimestamp,
		})
	}
	claimResponses := make([]OrderClaimResponse, 0, len(claims))
	for _, c := range claims {
		claimResponses = append(claimResponses, OrderClaimResponse{
			ID:            c.ID,
			AmountClaimed: c.AmountClaimed.String(),
			CreatedAt:     c.CreatedAtTimestamp,
		})
	}

	return OrderResponse{
		ID:               o.ID,
		Exchange:         o.Exchange,
		OrderID:          o.OrderID,
		Asset:            o.Asset,
		Token:            o.Token,
		Owner:            o.Owner,
		Type:             o.Type,
		Status:           o.Status,
		Price:            o.Price.String(),
		AmountOrdered:    o.AmountOrdered.String(),
		AmountFilled:     o.AmountFilled.String(),
		AmountClaimed:    o.AmountClaimed.String(),
		ClaimOrdersCount: o.ClaimOrdersCount,
		CreatedAt:        o.CreatedAtTimestamp,
		FilledAt:         o.FilledAtTimestamp,
		CancelledAt:      o.CancelledAtTimestamp,
		LastClaimedAt:    o.LastClaimedAtTimestamp,
		Fills:            fillResponses,
		Claims:           claimResponses,
	}
}

// NewFungibleTokenResponse maps a fungible token and its supply, which may be nil
func NewFungibleTokenResponse(t *schema.FungibleToken, supply *schema.TokenSupply) *FungibleTokenResponse {
	resp := &FungibleTokenResponse{
		TokenID:       t.TokenID,
		Name:          t.Name,
		Symbol:        t.Symbol,
		CreatedAt:     t.CreatedAt,
		OwnersCount:   t.OwnersCount,
		InitialSupply: "0",
		CurrentSupply: "0",
	}
	if supply != nil {
		resp.InitialSupply = supply.InitialSupply.String()
		resp.CurrentSupply = supply.CurrentSupply.String()
		resp.NumberOfMints = supply.NumberOfMints
		resp.NumberOfBurns = supply.NumberOfBurns
		resp.LastMintAt = supply.LastMintAt
		resp.LastBurnAt = supply.LastBurnAt
	}
	return resp
}

// NewPaymentTokenResponse maps an exchange payment token
func NewPaymentTokenResponse(t *schema.Token) *PaymentTokenResponse {
	return &PaymentTokenResponse{Escrow: t.Escrow, TotalVolume: t.TotalVolume.String()}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
