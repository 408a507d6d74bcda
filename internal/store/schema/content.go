package schema

import (
	"gorm.io/datatypes"
)

// Content represents a content (multi-token collection) contract
type Content struct {
	// ID is the content contract address
	ID string `gorm:"column:id;primaryKey;type:text"`
	// Manager is the address of the content manager
	Manager string `gorm:"column:manager;not null;type:text;index"`
	// Owner is the current owner account, following the manager's ownership
	Owner string `gorm:"column:owner;not null;type:text;index"`
	// ContractURI is the contract-level metadata URI read from contractUri()
	ContractURI string `gorm:"column:contract_uri;not null;type:text"`
	// Name is read from name(), falling back to the contract-level metadata name
	Name string `gorm:"column:name;not null;type:text"`
	// Symbol is read from symbol()
	Symbol string `gorm:"column:symbol;not null;type:text"`
	// Game, Creator, Type and Image come from the contract-level metadata
	Game    string `gorm:"column:game;not null;type:text"`
	Creator string `gorm:"column:creator;not null;type:text"`
	Type    string `gorm:"column:type;not null;type:text"`
	Image   string `gorm:"column:image;not null;type:text"`
	// Tags are the metadata tags
	Tags datatypes.JSONSlice[string] `gorm:"column:tags"`
	// MetadataHash is the canonical hash of the fetched metadata document
	MetadataHash string `gorm:"column:metadata_hash;not null;type:text"`
	// ContractRoyalties lists the ids of every ContractFee ever recorded for this content
	ContractRoyalties datatypes.JSONSlice[string] `gorm:"column:contract_royalties"`
	// AssetsCount is the number of distinct assets
	AssetsCount int64 `gorm:"column:assets_count;not null;default:0"`
	// MintersCount is the number of accounts holding the minter role
	MintersCount int64 `gorm:"column:minters_count;not null;default:0"`
	// OperatorsCount is the number of approved system operators
	OperatorsCount int64 `gorm:"column:operators_count;not null;default:0"`
	// CreatedAtTimestamp is the block timestamp the content was first seen
	CreatedAtTimestamp int64 `gorm:"column:created_at_timestamp;not null;default:0"`
}

// TableName specifies the table name for the Content model
func (Content) TableName() string {
	return "contents"
}

// NewContent returns a content with zeroed counters and empty lists
func NewContent(id string) *Content {
	return &Content{
		ID:                id,
		Tags:              datatypes.JSONSlice[string]{},
		ContractRoyalties: datatypes.JSONSlice[string]{},
	}
}

// Asset represents a single token id within a content contract
type Asset struct {
	// ID is contentAddress-tokenId
	ID string `gorm:"column:id;primaryKey;type:text"`
	// Content is the parent content contract address
	Content string `gorm:"column:content;not null;type:text;index"`
	// TokenID is the token id in base 10
	TokenID string `gorm:"column:token_id;not null;type:text"`
	// CurrentSupply changes only through Mint and Burn
	CurrentSupply Uint256 `gorm:"column:current_supply;not null"`
	// MaxSupply is set by AssetsAdded
	MaxSupply Uint256 `gorm:"column:max_supply;not null"`
	// MintCount and BurnCount are the cumulative minted and burned amounts
	MintCount Uint256 `gorm:"column:mint_count;not null"`
	BurnCount Uint256 `gorm:"column:burn_count;not null"`
	// OwnersCount is the number of balances with a positive amount
	OwnersCount int64 `gorm:"column:owners_count;not null;default:0"`
	// LatestHiddenURIVersion and LatestPublicURIVersion track URI updates
	LatestHiddenURIVersion Uint256 `gorm:"column:latest_hidden_uri_version;not null"`
	LatestPublicURIVersion Uint256 `gorm:"column:latest_public_uri_version;not null"`
	// AssetRoyalties lists the ids of every AssetFee ever recorded for this asset
	AssetRoyalties datatypes.JSONSlice[string] `gorm:"column:asset_royalties"`
	// MetadataURI is the per-token URI read from uri(id)
	MetadataURI string `gorm:"column:metadata_uri;not null;type:text"`
	// MetadataHash is the canonical hash of the fetched metadata document
	MetadataHash string                      `gorm:"column:metadata_hash;not null;type:text"`
	Name         string                      `gorm:"column:name;not null;type:text"`
	Type         string                      `gorm:"column:type;not null;type:text"`
	Subtype      string                      `gorm:"column:subtype;not null;type:text"`
	Image        string                      `gorm:"column:image;not null;type:text"`
	Tags         datatypes.JSONSlice[string] `gorm:"column:tags"`
	// AssetVolumeTransacted is the cumulative amount traded on exchanges
	AssetVolumeTransacted Uint256 `gorm:"column:asset_volume_transacted;not null"`
}

// TableName specifies the table name for the Asset model
func (Asset) TableName() string {
	return "assets"
}

// NewAsset returns an asset with zero supply and empty lists
func NewAsset(id, content, tokenID string) *Asset {
	return &Asset{
		ID:             id,
		Content:        content,
		TokenID:        tokenID,
		AssetRoyalties: datatypes.JSONSlice[string]{},
		Tags:           datatypes.JSONSlice[string]{},
	}
}

// AssetBalance represents an owner's balance of an asset.
// Rows whose amount returns to zero are kept with a zero amount.
type AssetBalance struct {
	// ID is contentAddress-ownerAddress-tokenId
	ID      string  `gorm:"column:id;primaryKey;type:text"`
	Asset   string  `gorm:"column:asset;not null;type:text;index"`
	Content string  `gorm:"column:content;not null;type:text;index"`
	Owner   string  `gorm:"column:owner;not null;type:text;index"`
	TokenID string  `gorm:"column:token_id;not null;type:text"`
	Amount  Uint256 `gorm:"column:amount;not null"`
}

// TableName specifies the table name for the AssetBalance model
func (AssetBalance) TableName() string {
	return "asset_balances"
}

// NewAssetBalance returns a zero balance
func NewAssetBalance(id, asset, content, owner, tokenID string) *AssetBalance {
	return &AssetBalance{ID: id, Asset: asset, Content: content, Owner: owner, TokenID: tokenID}
}

// AssetFee is a token-level royalty entry. A zero rate means "no fee".
type AssetFee struct {
	ID      string  `gorm:"column:id;primaryKey;type:text"`
	Asset   string  `gorm:"column:asset;not null;type:text;index"`
	Account string  `gorm:"column:account;not null;type:text"`
	Rate    Uint256 `gorm:"column:rate;not null"`
}

func (AssetFee) TableName() string {
	return "asset_fees"
}

func NewAssetFee(id, asset, account string) *AssetFee {
	return &AssetFee{ID: id, Asset: asset, Account: account}
}

// ContractFee is a contract-level royalty entry. A zero rate means "no fee".
type ContractFee struct {
	ID      string  `gorm:"column:id;primaryKey;type:text"`
	Content string  `gorm:"column:content;not null;type:text;index"`
	Account string  `gorm:"column:account;not null;type:text"`
	Rate    Uint256 `gorm:"column:rate;not null"`
}

func (ContractFee) TableName() string {
	return "contract_fees"
}

func NewContractFee(id, content, account string) *ContractFee {
	return &ContractFee{ID: id, Content: content, Account: account}
}

// Approval is an ApprovalForAll grant. Revoked approvals are deleted.
type Approval struct {
	ID       string `gorm:"column:id;primaryKey;type:text"`
	Content  string `gorm:"column:content;not null;type:text;index"`
	Account  string `gorm:"column:account;not null;type:text;index"`
	Operator string `gorm:"column:operator;not null;type:text"`
}

func (Approval) TableName() string {
	return "approvals"
}

// Operator is a system operator approved on a systems registry. Revoked operators are deleted.
type Operator struct {
	ID       string `gorm:"column:id;primaryKey;type:text"`
	Content  string `gorm:"column:content;not null;type:text;index"`
	Operator string `gorm:"column:operator;not null;type:text"`
}

func (Operator) TableName() string {
	return "operators"
}

// Minter is a minter role membership. Revoked minters are deleted.
type Minter struct {
	ID      string `gorm:"column:id;primaryKey;type:text"`
	Content string `gorm:"column:content;not null;type:text;index"`
	Account string `gorm:"column:account;not null;type:text;index"`
}

func (Minter) TableName() string {
	return "minters"
}
