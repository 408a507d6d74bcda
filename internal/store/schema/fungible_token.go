package schema

// FungibleToken represents a fungible token contract that emits TokenCreated and Transfer
type FungibleToken struct {
	// ID is the token contract address
	ID string `gorm:"column:id;primaryKey;type:text"`
	// TokenID is the id announced by TokenCreated, as 0x hex
	TokenID string `gorm:"column:token_id;not null;type:text"`
	Name    string `gorm:"column:name;not null;type:text"`
	Symbol  string `gorm:"column:symbol;not null;type:text"`
	// CreatedAt is the block timestamp of TokenCreated
	CreatedAt int64 `gorm:"column:created_at;not null;default:0"`
	// OwnersCount is the number of balances with a positive amount
	OwnersCount int64 `gorm:"column:owners_count;not null;default:0"`
}

// TableName specifies the table name for the FungibleToken model
func (FungibleToken) TableName() string {
	return "fungible_tokens"
}

// TokenSupply tracks the supply of a fungible token. Its ID is the token contract address.
type TokenSupply struct {
	ID            string  `gorm:"column:id;primaryKey;type:text"`
	InitialSupply Uint256 `gorm:"column:initial_supply;not null"`
	CurrentSupply Uint256 `gorm:"column:current_supply;not null"`
	NumberOfMints int64   `gorm:"column:number_of_mints;not null;default:0"`
	NumberOfBurns int64   `gorm:"column:number_of_burns;not null;default:0"`
	LastMintAt    int64   `gorm:"column:last_mint_at;not null;default:0"`
	LastBurnAt    int64   `gorm:"column:last_burn_at;not null;default:0"`
}

// TableName specifies the table name for the TokenSupply model
func (TokenSupply) TableName() string {
	return "token_supplies"
}

// TokenBalance is an owner's balance of a fungible token
type TokenBalance struct {
	ID     string  `gorm:"column:id;primaryKey;type:text"`
	Token  string  `gorm:"column:token;not null;type:text;index"`
	Owner  string  `gorm:"column:owner;not null;type:text;index"`
	Amount Uint256 `gorm:"column:amount;not null"`
}

// TableName specifies the table name for the TokenBalance model
func (TokenBalance) TableName() string {
	return "token_balances"
}
