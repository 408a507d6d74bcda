package schema

// Registry represents the contract registry that announces content managers, crafts and salvages
type Registry struct {
	// ID is the registry contract address
	ID string `gorm:"column:id;primaryKey;type:text"`
	// ContentManagersCount is the number of content managers registered so far
	ContentManagersCount int64 `gorm:"column:content_managers_count;not null;default:0"`
	// CraftsCount is the number of craft contracts registered so far
	CraftsCount int64 `gorm:"column:crafts_count;not null;default:0"`
	// SalvagesCount is the number of salvage contracts registered so far
	SalvagesCount int64 `gorm:"column:salvages_count;not null;default:0"`
}

// TableName specifies the table name for the Registry model
func (Registry) TableName() string {
	return "registries"
}

// NewRegistry returns a registry with zeroed counters
func NewRegistry(id string) *Registry {
	return &Registry{ID: id}
}

// ContentManager represents a content manager and links to the contracts it governs
type ContentManager struct {
	// ID is the content manager contract address
	ID string `gorm:"column:id;primaryKey;type:text"`
	// Registry is the address of the registry that announced the manager
	Registry string `gorm:"column:registry;not null;type:text;index"`
	// Content is the address of the managed content contract
	Content string `gorm:"column:content;not null;type:text;index"`
	// ContentStorage is the address of the content storage contract
	ContentStorage string `gorm:"column:content_storage;not null;type:text"`
	// AccessControlManager is the address of the access control contract
	AccessControlManager string `gorm:"column:access_control_manager;not null;type:text"`
	// SystemsRegistry is the address of the systems registry contract
	SystemsRegistry string `gorm:"column:systems_registry;not null;type:text"`
	// Owner is the current owner account
	Owner string `gorm:"column:owner;not null;type:text;index"`
	// Creator is the account that registered the manager
	Creator string `gorm:"column:creator;not null;type:text"`
	// CreatedAtTimestamp is the block timestamp of the registration
	CreatedAtTimestamp int64 `gorm:"column:created_at_timestamp;not null;default:0"`
}

// TableName specifies the table name for the ContentManager model
func (ContentManager) TableName() string {
	return "content_managers"
}

// NewContentManager returns a content manager with empty links
func NewContentManager(id, registry string) *ContentManager {
	return &ContentManager{ID: id, Registry: registry}
}

// ContentStorage tracks a storage contract
type ContentStorage struct {
	ID      string `gorm:"column:id;primaryKey;type:text"`
	Content string `gorm:"column:content;not null;type:text;index"`
	Manager string `gorm:"column:manager;not null;type:text"`
}

func (ContentStorage) TableName() string {
	return "content_storages"
}

func NewContentStorage(id, content, manager string) *ContentStorage {
	return &ContentStorage{ID: id, Content: content, Manager: manager}
}

// AccessControlManager tracks an access control contract and its minter role
type AccessControlManager struct {
	ID      string `gorm:"column:id;primaryKey;type:text"`
	Content string `gorm:"column:content;not null;type:text;index"`
	Manager string `gorm:"column:manager;not null;type:text"`
	// MinterRole is the bytes32 role id read from MINTER_ROLE(), as 0x hex
	MinterRole string `gorm:"column:minter_role;not null;type:text"`
}

func (AccessControlManager) TableName() string {
	return "access_control_managers"
}

func NewAccessControlManager(id, content, manager string) *AccessControlManager {
	return &AccessControlManager{ID: id, Content: content, Manager: manager}
}

// SystemsRegistry tracks a systems registry contract
type SystemsRegistry struct {
	ID      string `gorm:"column:id;primaryKey;type:text"`
	Content string `gorm:"column:content;not null;type:text;index"`
	Manager string `gorm:"column:manager;not null;type:text"`
}

func (SystemsRegistry) TableName() string {
	return "systems_registries"
}

func NewSystemsRegistry(id, content, manager string) *SystemsRegistry {
	return &SystemsRegistry{ID: id, Content: content, Manager: manager}
}
