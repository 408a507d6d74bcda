package schema

// Account represents any address referenced by an event, with its aggregate counters
type Account struct {
	// ID is the account address
	ID string `gorm:"column:id;primaryKey;type:text"`
	// UniqueAssetsCount is the number of assets the account holds a positive balance of
	UniqueAssetsCount int64 `gorm:"column:unique_assets_count;not null;default:0"`
	// MintCount and BurnCount count mint and burn transactions received or sent
	MintCount int64 `gorm:"column:mint_count;not null;default:0"`
	BurnCount int64 `gorm:"column:burn_count;not null;default:0"`
	// TransactionsCount counts supply transactions where the account is the user
	TransactionsCount int64 `gorm:"column:transactions_count;not null;default:0"`
	// OperatorTransactionsCount counts supply transactions where the account is the operator
	OperatorTransactionsCount int64 `gorm:"column:operator_transactions_count;not null;default:0"`

	// Exchange order counters
	OrdersCount          int64 `gorm:"column:orders_count;not null;default:0"`
	ActiveOrdersCount    int64 `gorm:"column:active_orders_count;not null;default:0"`
	ActiveBuyOrders      int64 `gorm:"column:active_buy_orders;not null;default:0"`
	ActiveSellOrders     int64 `gorm:"column:active_sell_orders;not null;default:0"`
	FilledOrdersCount    int64 `gorm:"column:filled_orders_count;not null;default:0"`
	CancelledOrdersCount int64 `gorm:"column:cancelled_orders_count;not null;default:0"`
	OrderFillsCount      int64 `gorm:"column:order_fills_count;not null;default:0"`

	// ActiveDaysCount is the number of distinct days with exchange volume
	ActiveDaysCount int64 `gorm:"column:active_days_count;not null;default:0"`
	// Volume is the all-time exchange volume, split by side below
	Volume         Uint256 `gorm:"column:volume;not null"`
	VolumeAsBuyer  Uint256 `gorm:"column:volume_as_buyer;not null"`
	VolumeAsSeller Uint256 `gorm:"column:volume_as_seller;not null"`

	CraftCount   int64 `gorm:"column:craft_count;not null;default:0"`
	SalvageCount int64 `gorm:"column:salvage_count;not null;default:0"`
}

// TableName specifies the table name for the Account model
func (Account) TableName() string {
	return "accounts"
}

// NewAccount returns an account with zeroed counters
func NewAccount(id string) *Account {
	return &Account{ID: id}
}
