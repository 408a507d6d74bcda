package domain

import (
	"math/big"
	"strconv"
	"strings"
)

// KeySeparator joins the parts of a composite entity key.
//
// Parts are never escaped: addresses are lower-case 0x hex and numeric ids are
// base-10, so neither can contain the separator.
const KeySeparator = "-"

// Key builds a composite entity key by joining its parts
func Key(parts ...string) string {
	return strings.Join(parts, KeySeparator)
}

// AssetKey returns the key of token id within a content contract
func AssetKey(content string, tokenID *big.Int) string {
	return Key(content, tokenID.String())
}

// AssetBalanceKey returns the key of owner's balance of an asset
func AssetBalanceKey(content, owner string, tokenID *big.Int) string {
	return Key(content, owner, tokenID.String())
}

// AssetFeeKey returns the key of a token-level royalty entry
func AssetFeeKey(content, account string, tokenID *big.Int) string {
	return Key(content, account, tokenID.String())
}

// ContractFeeKey returns the key of a contract-level royalty entry
func ContractFeeKey(content, account string) string {
	return Key(content, account)
}

// ApprovalKey returns the key of an ApprovalForAll grant
func ApprovalKey(content, account, operator string) string {
	return Key(content, account, operator)
}

// OperatorKey returns the key of a systems registry operator
func OperatorKey(content, operator string) string {
	return Key(content, operator)
}

// MinterKey returns the key of a minter role membership
func MinterKey(content, account string) string {
	return Key(content, account)
}

// OrderKey returns the key of an exchange order
func OrderKey(exchange string, orderID *big.Int) string {
	return Key(exchange, orderID.String())
}

// OrderFillKey returns the key of a single fill of an order
func OrderFillKey(order, txHash string, logIndex uint) string {
	return Key(order, txHash, strconv.FormatUint(uint64(logIndex), 10))
}

// OrderClaimKey returns the key of the n-th claim of an order
func OrderClaimKey(order string, n int64) string {
	return Key(order, strconv.FormatInt(n, 10))
}

// UserRoyaltyKey returns the key of the royalties claimed by account in token
func UserRoyaltyKey(token, account string) string {
	return Key(token, account)
}

// TokenDayKey returns the key of a token's daily volume bucket
func TokenDayKey(token string, day int64) string {
	return Key(token, strconv.FormatInt(day, 10))
}

// AccountDayKey returns the key of an account's daily volume bucket in token
func AccountDayKey(account, token string, day int64) string {
	return Key(account, token, strconv.FormatInt(day, 10))
}

// RecipeKey returns the key of a craft recipe
func RecipeKey(craft string, recipeID *big.Int) string {
	return Key(craft, recipeID.String())
}

// SalvageableAssetKey returns the key of an asset registered on a salvage contract
func SalvageableAssetKey(salvage, content string, tokenID *big.Int) string {
	return Key(salvage, content, tokenID.String())
}

// ChildTxKey returns the key of a per-entity record within a chain transaction
func ChildTxKey(txHash string, parts ...string) string {
	return Key(append([]string{txHash}, parts...)...)
}

// TokenBalanceKey returns the key of owner's balance of a fungible token
func TokenBalanceKey(token, owner string) string {
	return Key(token, owner)
}

// DayBucket returns the UTC day index of a unix timestamp
func DayBucket(timestamp int64) int64 {
	return timestamp / SecondsPerDay
}
