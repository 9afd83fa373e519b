// Package config loads vestd's daemon configuration: defaults, then a
// TOML file, then VESTD_-prefixed environment overrides, validated
// top-to-bottom in one pass — the same defaults/file/env/validate
// pipeline the teacher's xrpld.toml loader uses, trimmed to the
// sections a vesting-escrow daemon actually needs.
package config

import "fmt"

// Config is vestd's complete daemon configuration.
type Config struct {
	Server   ServerConfig   `toml:"server" mapstructure:"server"`
	Database DatabaseConfig `toml:"database" mapstructure:"database"`
	Fees     FeesConfig     `toml:"fees" mapstructure:"fees"`
	Oracle   OracleConfig   `toml:"oracle" mapstructure:"oracle"`

	configPath string `toml:"-" mapstructure:"-"`
}

// ServerConfig configures the listen addresses for the daemon's two
// transports: JSON-RPC (instruction submission) and gRPC (health).
type ServerConfig struct {
	RPCListen  string `toml:"rpc_listen" mapstructure:"rpc_listen"`
	GRPCListen string `toml:"grpc_listen" mapstructure:"grpc_listen"`
	Standalone bool   `toml:"standalone" mapstructure:"standalone"`
}

// DatabaseConfig configures the contract store and the audit ledger.
type DatabaseConfig struct {
	// ContractStoreBackend selects which KV backend persists Contract
	// records: "pebble" (default) or "leveldb".
	ContractStoreBackend string `toml:"contract_store_backend" mapstructure:"contract_store_backend"`
	ContractStorePath     string `toml:"contract_store_path" mapstructure:"contract_store_path"`
	ContractCacheSize     int    `toml:"contract_cache_size" mapstructure:"contract_cache_size"`

	// AuditLedgerDSN is a postgres connection string. When empty, the
	// audit ledger falls back to an embedded sqlite file at
	// AuditLedgerSQLitePath so vestd runs zero-config in dev.
	AuditLedgerDSN         string `toml:"audit_ledger_dsn" mapstructure:"audit_ledger_dsn"`
	AuditLedgerSQLitePath  string `toml:"audit_ledger_sqlite_path" mapstructure:"audit_ledger_sqlite_path"`
}

// FeesConfig holds default fee percentages and the legacy minimum-fee
// floor (spec.md §4.1.1, §9). They are loaded and validated but not
// passed to the engine: Create falls back to
// vesting.StreamflowDefaultFeePercent and applies the fixed floor in
// vesting.ClampFeePercent.
type FeesConfig struct {
	DefaultStreamflowPercent float64 `toml:"default_streamflow_percent" mapstructure:"default_streamflow_percent"`
	DefaultPartnerPercent    float64 `toml:"default_partner_percent" mapstructure:"default_partner_percent"`
	FloorPercent             float64 `toml:"floor_percent" mapstructure:"floor_percent"`
}

// OracleConfig configures the external fee-oracle lookup (spec.md §6.2).
type OracleConfig struct {
	Enabled   bool     `toml:"enabled" mapstructure:"enabled"`
	Endpoints []string `toml:"endpoints" mapstructure:"endpoints"`
	TimeoutMS int      `toml:"timeout_ms" mapstructure:"timeout_ms"`
}

// GetConfigPath returns the path the configuration was loaded from,
// empty if Config was built entirely from defaults/env.
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// ConfigPaths holds the path to the main configuration file.
type ConfigPaths struct {
	Main string
}

// DefaultConfigPaths returns the conventional config file name.
func DefaultConfigPaths() ConfigPaths {
	return ConfigPaths{Main: "vestd.toml"}
}

// ConfigPathsFromDir returns config paths rooted at dir.
func ConfigPathsFromDir(dir string) ConfigPaths {
	return ConfigPaths{Main: dir + "/vestd.toml"}
}

func (c *Config) String() string {
	return fmt.Sprintf("Config{rpc=%s grpc=%s backend=%s}", c.Server.RPCListen, c.Server.GRPCListen, c.Database.ContractStoreBackend)
}
