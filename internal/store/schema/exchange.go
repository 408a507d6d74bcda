package schema

import "github.com/feral-file/ff-projector/internal/domain"

// AddressResolver represents the resolver that registers exchange and escrow instances
type AddressResolver struct {
	// ID is the resolver contract address
	ID string `gorm:"column:id;primaryKey;type:text"`
	// Exchange is the last registered exchange address
	Exchange string `gorm:"column:exchange;not null;type:text"`
	// TokenEscrow is the last registered escrow address
	TokenEscrow string `gorm:"column:token_escrow;not null;type:text"`
}

// TableName specifies the table name for the AddressResolver model
func (AddressResolver) TableName() string {
	return "address_resolvers"
}

// Exchange represents an exchange contract and its order counters
type Exchange struct {
	// ID is the exchange contract address
	ID       string `gorm:"column:id;primaryKey;type:text"`
	Resolver string `gorm:"column:resolver;not null;type:text"`

	TotalOrdersCount           int64 `gorm:"column:total_orders_count;not null;default:0"`
	TotalBuyOrdersCount        int64 `gorm:"column:total_buy_orders_count;not null;default:0"`
	TotalSellOrdersCount       int64 `gorm:"column:total_sell_orders_count;not null;default:0"`
	TotalActiveOrdersCount     int64 `gorm:"column:total_active_orders_count;not null;default:0"`
	TotalActiveBuyOrdersCount  int64 `gorm:"column:total_active_buy_orders_count;not null;default:0"`
	TotalActiveSellOrdersCount int64 `gorm:"column:total_active_sell_orders_count;not null;default:0"`
	TotalOrderFillsCount       int64 `gorm:"column:total_order_fills_count;not null;default:0"`
	TotalBuyOrderFillsCount    int64 `gorm:"column:total_buy_order_fills_count;not null;default:0"`
	TotalSellOrderFillsCount   int64 `gorm:"column:total_sell_order_fills_count;not null;default:0"`
}

// TableName specifies the table name for the Exchange model
func (Exchange) TableName() string {
	return "exchanges"
}

// TokenEscrow represents an ERC20 escrow contract
type TokenEscrow struct {
	ID                   string `gorm:"column:id;primaryKey;type:text"`
	Resolver             string `gorm:"column:resolver;not null;type:text"`
	SupportedTokensCount int64  `gorm:"column:supported_tokens_count;not null;default:0"`
}

// TableName specifies the table name for the TokenEscrow model
func (TokenEscrow) TableName() string {
	return "token_escrows"
}

// Token represents an ERC20 token used as exchange payment
type Token struct {
	// ID is the token contract address
	ID string `gorm:"column:id;primaryKey;type:text"`
	// Escrow is the escrow that added support for the token, empty when first seen in a fill
	Escrow      string  `gorm:"column:escrow;not null;type:text;index"`
	TotalVolume Uint256 `gorm:"column:total_volume;not null"`
}

// TableName specifies the table name for the Token model
func (Token) TableName() string {
	return "tokens"
}

// Order represents an exchange order
type Order struct {
	// ID is exchangeAddress-orderId
	ID       string `gorm:"column:id;primaryKey;type:text"`
	Exchange string `gorm:"column:exchange;not null;type:text;index"`
	// OrderID is the on-chain order id in base 10
	OrderID string `gorm:"column:order_id;not null;type:text"`
	Asset   string `gorm:"column:asset;not null;type:text;index"`
	Token   string `gorm:"column:token;not null;type:text"`
	Owner   string `gorm:"column:owner;not null;type:text;index"`

	Type   domain.OrderType   `gorm:"column:type;not null;type:text"`
	Status domain.OrderStatus `gorm:"column:status;not null;type:text;index"`

	Price         Uint256 `gorm:"column:price;not null"`
	AmountOrdered Uint256 `gorm:"column:amount_ordered;not null"`
	// AmountFilled never decreases
	AmountFilled Uint256 `gorm:"column:amount_filled;not null"`
	// AmountClaimed never exceeds AmountFilled
	AmountClaimed    Uint256 `gorm:"column:amount_claimed;not null"`
	ClaimOrdersCount int64   `gorm:"column:claim_orders_count;not null;default:0"`

	CreatedAtTimestamp     int64 `gorm:"column:created_at_timestamp;not null;default:0"`
	FilledAtTimestamp      int64 `gorm:"column:filled_at_timestamp;not null;default:0"`
	CancelledAtTimestamp   int64 `gorm:"column:cancelled_at_timestamp;not null;default:0"`
	LastClaimedAtTimestamp int64 `gorm:"column:last_claimed_at_timestamp;not null;default:0"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// OrderFill records a single fill of an order
type OrderFill struct {
	ID                 string  `gorm:"column:id;primaryKey;type:text"`
	Order              string  `gorm:"column:order_ref;not null;type:text;index"`
	Exchange           string  `gorm:"column:exchange;not null;type:text"`
	Filler             string  `gorm:"column:filler;not null;type:text;index"`
	Token              string  `gorm:"column:token;not null;type:text"`
	Amount             Uint256 `gorm:"column:amount;not null"`
	PricePerItem       Uint256 `gorm:"column:price_per_item;not null"`
	TotalPrice         Uint256 `gorm:"column:total_price;not null"`
	CreatedAtTimestamp int64   `gorm:"column:created_at_timestamp;not null;default:0"`
}

// TableName specifies the table name for the OrderFill model
func (OrderFill) TableName() string {
	return "order_fills"
}

// OrderClaimTransaction records the amount released by one claim of an order
type OrderClaimTransaction struct {
	ID                 string  `gorm:"column:id;primaryKey;type:text"`
	Order              string  `gorm:"column:order_ref;not null;type:text;index"`
	AmountClaimed      Uint256 `gorm:"column:amount_claimed;not null"`
	CreatedAtTimestamp int64   `gorm:"column:created_at_timestamp;not null;default:0"`
}

// TableName specifies the table name for the OrderClaimTransaction model
func (OrderClaimTransaction) TableName() string {
	return "order_claim_transactions"
}

// UserRoyalty is the running total of royalties an account claimed in a token
type UserRoyalty struct {
	ID            string  `gorm:"column:id;primaryKey;type:text"`
	Token         string  `gorm:"column:token;not null;type:text"`
	Account       string  `gorm:"column:account;not null;type:text;index"`
	ClaimedAmount Uint256 `gorm:"column:claimed_amount;not null"`
}

// TableName specifies the table name for the UserRoyalty model
func (UserRoyalty) TableName() string {
	return "user_royalties"
}

// TokenDayData is the exchange volume of a token within a UTC day
type TokenDayData struct {
	ID             string  `gorm:"column:id;primaryKey;type:text"`
	Token          string  `gorm:"column:token;not null;type:text;index"`
	Day            int64   `gorm:"column:day;not null;index"`
	StartTimestamp int64   `gorm:"column:start_timestamp;not null"`
	Volume         Uint256 `gorm:"column:volume;not null"`
}

// TableName specifies the table name for the TokenDayData model
func (TokenDayData) TableName() string {
	return "token_day_data"
}

// AccountDayData is an account's exchange volume in a token within a UTC day
type AccountDayData struct {
	ID             string  `gorm:"column:id;primaryKey;type:text"`
	Account        string  `gorm:"column:account;not null;type:text;index:idx_account_day_data_account_day,priority:1"`
	Token          string  `gorm:"column:token;not null;type:text"`
	Day            int64   `gorm:"column:day;not null;index:idx_account_day_data_account_day,priority:2"`
	StartTimestamp int64   `gorm:"column:start_timestamp;not null"`
	Volume         Uint256 `gorm:"column:volume;not null"`
	VolumeAsBuyer  Uint256 `gorm:"column:volume_as_buyer;not null"`
	VolumeAsSeller Uint256 `gorm:"column:volume_as_seller;not null"`
}

// TableName specifies the table name for the AccountDayData model
func (AccountDayData) TableName() string {
	return "account_day_data"
}
