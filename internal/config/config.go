package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/feral-file/ff-projector/internal/domain"
	"github.com/feral-file/ff-projector/internal/ratelimit"
	"github.com/feral-file/ff-projector/internal/registry"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	// Driver is postgres or sqlite
	Driver          string        `mapstructure:"driver"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	SQLitePath      string        `mapstructure:"sqlite_path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`     // Maximum number of open connections to the database
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`     // Maximum number of idle connections in the pool
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`  // Maximum amount of time a connection may be reused (e.g., "5m", "1h")
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"` // Maximum amount of time a connection may be idle (e.g., "10m", "30m")
}

// NATSConfig holds NATS JetStream configuration. An empty URL disables the change feed.
type NATSConfig struct {
	URL            string        `mapstructure:"url"`
	StreamName     string        `mapstructure:"stream_name"`
	SubjectPrefix  string        `mapstructure:"subject_prefix"`
	MaxReconnects  int           `mapstructure:"max_reconnects"`
	ReconnectWait  time.Duration `mapstructure:"reconnect_wait"`
	ConnectionName string        `mapstructure:"connection_name"`
	MaxAge         time.Duration `mapstructure:"max_age"`
}

// EthereumConfig holds the chain connection and block loop configuration
type EthereumConfig struct {
	RPCURL               string        `mapstructure:"rpc_url"`
	ChainID              domain.Chain  `mapstructure:"chain_id"`
	StartBlock           uint64        `mapstructure:"start_block"`
	Confirmations        uint64        `mapstructure:"confirmations"`
	BatchSize            uint64        `mapstructure:"batch_size"`
	PollInterval         time.Duration `mapstructure:"poll_interval"`
	BlockHeadTTL         time.Duration `mapstructure:"block_head_ttl"`
	BlockHeadStaleWindow time.Duration `mapstructure:"block_head_stale_window"`
	MaxAddressesPerQuery int           `mapstructure:"max_addresses_per_query"`
	Workers              int           `mapstructure:"workers"`
	// CallMaxElapsedTime bounds the retries of a single contract read
	CallMaxElapsedTime time.Duration `mapstructure:"call_max_elapsed_time"`
}

// MetadataConfig holds metadata fetcher configuration
type MetadataConfig struct {
	IPFSGateways    []string      `mapstructure:"ipfs_gateways"`
	ArweaveGateways []string      `mapstructure:"arweave_gateways"`
	HTTPTimeout     time.Duration `mapstructure:"http_timeout"`
	MaxElapsedTime  time.Duration `mapstructure:"max_elapsed_time"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
	// RateLimits is the request budget per provider (ipfs, arweave, http), shared through redis when configured
	RateLimits map[string]ratelimit.ProviderConfig `mapstructure:"rate_limits"`
}

// RedisConfig holds the metadata cache connection. An empty address disables the cache.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // in seconds
	IdleTimeout  int    `mapstructure:"idle_timeout"`  // in seconds
}

// RootContract is a contract the projection starts watching from
type RootContract struct {
	Address string              `mapstructure:"address"`
	Kind    domain.ContractKind `mapstructure:"kind"`
}

// ProjectorConfig holds configuration for the projector service
type ProjectorConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig `mapstructure:"database"`
	Ethereum   EthereumConfig `mapstructure:"ethereum"`
	Metadata   MetadataConfig `mapstructure:"metadata"`
	Redis      RedisConfig    `mapstructure:"redis"`
	NATS       NATSConfig     `mapstructure:"nats"`
	Server     ServerConfig   `mapstructure:"server"`
	Roots      []RootContract `mapstructure:"roots"`
}

// AuditorConfig holds configuration for the auditor program
type AuditorConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig `mapstructure:"database"`
	// Repair rewrites drifted counters instead of only reporting them
	Repair bool `mapstructure:"repair"`
}

// LoadProjectorConfig loads configuration for the projector service
func LoadProjectorConfig(configFile string, envPath string) (*ProjectorConfig, error) {
	v := configureViper("projector", configFile, envPath)

	// Set defaults
	setDatabaseDefaults(v)
	v.SetDefault("ethereum.chain_id", string(domain.ChainPolygonMainnet))
	v.SetDefault("ethereum.confirmations", 12)
	v.SetDefault("ethereum.batch_size", 500)
	v.SetDefault("ethereum.poll_interval", "5s")
	v.SetDefault("ethereum.block_head_ttl", "2s")
	v.SetDefault("ethereum.block_head_stale_window", "60s")
	v.SetDefault("ethereum.max_addresses_per_query", 500)
	v.SetDefault("ethereum.workers", 8)
	v.SetDefault("ethereum.call_max_elapsed_time", "30s")
	v.SetDefault("metadata.ipfs_gateways", []string{"https://ipfs.io", "https://cloudflare-ipfs.com"})
	v.SetDefault("metadata.arweave_gateways", []string{"https://arweave.net"})
	v.SetDefault("metadata.http_timeout", "15s")
	v.SetDefault("metadata.max_elapsed_time", "30s")
	v.SetDefault("metadata.cache_ttl", "24h")
	v.SetDefault("metadata.rate_limits", map[string]interface{}{
		ratelimit.ProviderIPFS:    map[string]interface{}{"requests_per_second": 10, "burst": 20},
		ratelimit.ProviderArweave: map[string]interface{}{"requests_per_second": 10, "burst": 20},
		ratelimit.ProviderHTTP:    map[string]interface{}{"requests_per_second": 20, "burst": 40},
	})
	v.SetDefault("nats.stream_name", "PROJECTIONS")
	v.SetDefault("nats.subject_prefix", "projections")
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", "2s")
	v.SetDefault("nats.connection_name", "ff-projector")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.idle_timeout", 120)

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var config ProjectorConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadAuditorConfig loads configuration for the auditor program
func LoadAuditorConfig(configFile string, envPath string) (*AuditorConfig, error) {
	v := configureViper("auditor", configFile, envPath)

	// Set defaults
	setDatabaseDefaults(v)
	v.SetDefault("database.max_open_conns", 5)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("repair", false)

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var config AuditorConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := config.Database.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDatabaseDefaults(v *viper.Viper) {
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.sqlite_path", "projector.db")
}

// readConfig reads the config file, falling back to defaults and environment variables when it is missing
func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// Validate checks the settings the projector cannot start without
func (c *ProjectorConfig) Validate() error {
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if !domain.IsValidChain(c.Ethereum.ChainID) {
		return fmt.Errorf("unsupported chain %q", c.Ethereum.ChainID)
	}
	for _, root := range c.Roots {
		if !domain.IsRootKind(root.Kind) {
			return fmt.Errorf("root %s: kind %q cannot be a root", root.Address, root.Kind)
		}
		if !common.IsHexAddress(root.Address) {
			return fmt.Errorf("root %q is not an address", root.Address)
		}
	}
	return nil
}

// RegistryRoots converts the configured roots for the contract registry
func (c *ProjectorConfig) RegistryRoots() []registry.Root {
	roots := make([]registry.Root, 0, len(c.Roots))
	for _, r := range c.Roots {
		roots = append(roots, registry.Root{Address: domain.NormalizeAddress(r.Address), Kind: r.Kind})
	}
	return roots
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	// Load environment variables
	loadEnv(envPath, service)

	// Set config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// Search for config.yaml in the current, service and config directories
		v.AddConfigPath(".")
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		v.AddConfigPath("config/")
	}

	// Set environment variables
	v.SetEnvPrefix("FF_PROJECTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind all environment variables
	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables
// This is required for viper to map env vars to config struct fields when no config file exists
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"sentry_dsn",
		"repair",
		// Database
		"database.driver",
		"database.host",
		"database.port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.sqlite_path",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		// Ethereum
		"ethereum.rpc_url",
		"ethereum.chain_id",
		"ethereum.start_block",
		"ethereum.confirmations",
		"ethereum.batch_size",
		"ethereum.poll_interval",
		"ethereum.block_head_ttl",
		"ethereum.block_head_stale_window",
		"ethereum.max_addresses_per_query",
		"ethereum.workers",
		"ethereum.call_max_elapsed_time",
		// Metadata
		"metadata.ipfs_gateways",
		"metadata.arweave_gateways",
		"metadata.http_timeout",
		"metadata.max_elapsed_time",
		"metadata.cache_ttl",
		// Redis
		"redis.addr",
		"redis.password",
		"redis.db",
		// NATS
		"nats.url",
		"nats.stream_name",
		"nats.subject_prefix",
		"nats.max_reconnects",
		"nats.reconnect_wait",
		"nats.connection_name",
		"nats.max_age",
		// Server
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",
		"server.idle_timeout",
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	// Always try shared base first, then local, then optional per-service local.
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	// Default to config directory
	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // Overload lets later files override earlier ones
	}
}

// ChdirRepoRoot changes the current working directory to the repository root
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range 5 {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}

// Validate checks the driver and its required settings
func (c *DatabaseConfig) Validate() error {
	switch c.Driver {
	case "postgres":
		if c.Host == "" {
			return errors.New("database.host is required")
		}
		if c.DBName == "" {
			return errors.New("database.dbname is required")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return errors.New("database.sqlite_path is required")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.Driver)
	}
	return nil
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// Dialector returns the gorm dialector of the configured driver
func (c *DatabaseConfig) Dialector() gorm.Dialector {
	if c.Driver == "sqlite" {
		return sqlite.Open(c.SQLitePath)
	}
	return postgres.Open(c.DSN())
}
