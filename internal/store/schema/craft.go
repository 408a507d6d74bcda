package schema

// Craft represents a craft contract
type Craft struct {
	ID           string `gorm:"column:id;primaryKey;type:text"`
	Registry     string `gorm:"column:registry;not null;type:text"`
	Manager      string `gorm:"column:manager;not null;type:text"`
	RecipesCount int64  `gorm:"column:recipes_count;not null;default:0"`
	CraftCount   int64  `gorm:"column:craft_count;not null;default:0"`
}

func (Craft) TableName() string {
	return "crafts"
}

// Salvage represents a salvage contract
type Salvage struct {
	ID                     string `gorm:"column:id;primaryKey;type:text"`
	Registry               string `gorm:"column:registry;not null;type:text"`
	Manager                string `gorm:"column:manager;not null;type:text"`
	SalvageableAssetsCount int64  `gorm:"column:salvageable_assets_count;not null;default:0"`
	SalvageCount           int64  `gorm:"column:salvage_count;not null;default:0"`
}

func (Salvage) TableName() string {
	return "salvages"
}

// Recipe is a craft recipe
type Recipe struct {
	ID         string `gorm:"column:id;primaryKey;type:text"`
	Craft      string `gorm:"column:craft;not null;type:text;index"`
	RecipeID   string `gorm:"column:recipe_id;not null;type:text"`
	Enabled    bool   `gorm:"column:enabled;not null;default:false"`
	CraftCount int64  `gorm:"column:craft_count;not null;default:0"`
}

func (Recipe) TableName() string {
	return "recipes"
}

// SalvageableAsset is an asset registered on a salvage contract
type SalvageableAsset struct {
	ID      string `gorm:"column:id;primaryKey;type:text"`
	Salvage string `gorm:"column:salvage;not null;type:text;index"`
	Content string `gorm:"column:content;not null;type:text"`
	TokenID string `gorm:"column:token_id;not null;type:text"`
	// SalvageID is the salvage recipe id announced with the asset
	SalvageID    string `gorm:"column:salvage_id;not null;type:text"`
	SalvageCount int64  `gorm:"column:salvage_count;not null;default:0"`
}

func (SalvageableAsset) TableName() string {
	return "salvageable_assets"
}

// CraftTransaction records a craft within a chain transaction
type CraftTransaction struct {
	ID          string  `gorm:"column:id;primaryKey;type:text"`
	Transaction string  `gorm:"column:transaction;not null;type:text;index"`
	Account     string  `gorm:"column:account;not null;type:text;index"`
	Recipe      string  `gorm:"column:recipe;not null;type:text"`
	Craft       string  `gorm:"column:craft;not null;type:text"`
	Amount      Uint256 `gorm:"column:amount;not null"`
}

func (CraftTransaction) TableName() string {
	return "craft_transactions"
}

// SalvageTransaction records a salvage within a chain transaction
type SalvageTransaction struct {
	ID               string  `gorm:"column:id;primaryKey;type:text"`
	Transaction      string  `gorm:"column:transaction;not null;type:text;index"`
	Account          string  `gorm:"column:account;not null;type:text;index"`
	SalvageableAsset string  `gorm:"column:salvageable_asset;not null;type:text"`
	Salvage          string  `gorm:"column:salvage;not null;type:text"`
	Amount           Uint256 `gorm:"column:amount;not null"`
}

func (SalvageTransaction) TableName() string {
	return "salvage_transactions"
}
