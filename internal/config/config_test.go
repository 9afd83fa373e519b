package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(ConfigPaths{})
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:5005", cfg.Server.RPCListen)
	require.Equal(t, "127.0.0.1:50051", cfg.Server.GRPCListen)
	require.Equal(t, "pebble", cfg.Database.ContractStoreBackend)
	require.Equal(t, 0.5, cfg.Fees.FloorPercent)
	require.Empty(t, cfg.GetConfigPath())
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vestd.toml")
	contents := `
[server]
rpc_listen = "0.0.0.0:6000"
grpc_listen = "0.0.0.0:6001"

[database]
contract_store_backend = "leveldb"
contract_store_path = "/var/lib/vestd/contracts"
audit_ledger_sqlite_path = "/var/lib/vestd/audit.db"

[fees]
default_streamflow_percent = 1.5
default_partner_percent = 0.25
floor_percent = 0.5

[oracle]
enabled = true
endpoints = ["https://fees.example.com"]
timeout_ms = 500
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := LoadConfig(ConfigPaths{Main: path})
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0:6000", cfg.Server.RPCListen)
	require.Equal(t, "leveldb", cfg.Database.ContractStoreBackend)
	require.Equal(t, 1.5, cfg.Fees.DefaultStreamflowPercent)
	require.True(t, cfg.Oracle.Enabled)
	require.Equal(t, []string{"https://fees.example.com"}, cfg.Oracle.Endpoints)
	require.Equal(t, path, cfg.GetConfigPath())
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vestd.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
rpc_listen = "0.0.0.0:6000"
grpc_listen = "0.0.0.0:6001"
`), 0o644))

	t.Setenv("VESTD_SERVER_RPC_LISTEN", "0.0.0.0:9999")

	cfg, err := LoadConfig(ConfigPaths{Main: path})
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0:9999", cfg.Server.RPCListen)
	require.Equal(t, "0.0.0.0:6001", cfg.Server.GRPCListen)
}

func TestLoadConfig_MissingFileIsNotAnError(t *testing.T) {
	cfg, err := LoadConfig(ConfigPaths{Main: "/nonexistent/vestd.toml"})
	require.NoError(t, err)
	require.Equal(t, "pebble", cfg.Database.ContractStoreBackend)
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		cfg, err := LoadConfig(ConfigPaths{})
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "empty rpc listen",
			mutate:  func(c *Config) { c.Server.RPCListen = "" },
			wantErr: "rpc_listen must not be empty",
		},
		{
			name:    "rpc and grpc addresses collide",
			mutate:  func(c *Config) { c.Server.GRPCListen = c.Server.RPCListen },
			wantErr: "must differ",
		},
		{
			name:    "unknown contract store backend",
			mutate:  func(c *Config) { c.Database.ContractStoreBackend = "mongo" },
			wantErr: "contract_store_backend must be",
		},
		{
			name: "no audit ledger target at all",
			mutate: func(c *Config) {
				c.Database.AuditLedgerDSN = ""
				c.Database.AuditLedgerSQLitePath = ""
			},
			wantErr: "audit_ledger_dsn or audit_ledger_sqlite_path",
		},
		{
			name:    "fee percent out of range",
			mutate:  func(c *Config) { c.Fees.FloorPercent = 101 },
			wantErr: "floor_percent must be in",
		},
		{
			name: "oracle enabled with no endpoints",
			mutate: func(c *Config) {
				c.Oracle.Enabled = true
				c.Oracle.Endpoints = nil
			},
			wantErr: "endpoints must not be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := ValidateConfig(cfg)
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
