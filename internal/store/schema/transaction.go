package schema

// Transaction holds the block metadata of a chain transaction referenced by supply, craft or salvage events
type Transaction struct {
	// ID is the transaction hash
	ID          string  `gorm:"column:id;primaryKey;type:text"`
	BlockNumber uint64  `gorm:"column:block_number;not null;default:0"`
	Timestamp   int64   `gorm:"column:timestamp;not null;default:0"`
	GasUsed     uint64  `gorm:"column:gas_used;not null;default:0"`
	GasPrice    Uint256 `gorm:"column:gas_price;not null"`
}

// TableName specifies the table name for the Transaction model
func (Transaction) TableName() string {
	return "transactions"
}

// NewTransaction returns a transaction with zeroed metadata
func NewTransaction(id string) *Transaction {
	return &Transaction{ID: id}
}

// MintTransaction records the amount of an asset minted within a transaction.
// Amounts are additive when the same transaction mints the same asset more than once.
type MintTransaction struct {
	// ID is txHash-contentAddress-tokenId
	ID          string  `gorm:"column:id;primaryKey;type:text"`
	Transaction string  `gorm:"column:transaction;not null;type:text;index"`
	Asset       string  `gorm:"column:asset;not null;type:text;index"`
	Account     string  `gorm:"column:account;not null;type:text;index"`
	Operator    string  `gorm:"column:operator;not null;type:text"`
	Amount      Uint256 `gorm:"column:amount;not null"`
}

// TableName specifies the table name for the MintTransaction model
func (MintTransaction) TableName() string {
	return "mint_transactions"
}

// BurnTransaction records the amount of an asset burned within a transaction
type BurnTransaction struct {
	// ID is txHash-contentAddress-tokenId
	ID          string  `gorm:"column:id;primaryKey;type:text"`
	Transaction string  `gorm:"column:transaction;not null;type:text;index"`
	Asset       string  `gorm:"column:asset;not null;type:text;index"`
	Account     string  `gorm:"column:account;not null;type:text;index"`
	Operator    string  `gorm:"column:operator;not null;type:text"`
	Amount      Uint256 `gorm:"column:amount;not null"`
}

// TableName specifies the table name for the BurnTransaction model
func (BurnTransaction) TableName() string {
	return "burn_transactions"
}
