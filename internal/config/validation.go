package config

import "fmt"

// ValidateConfig checks a loaded Config for internal consistency,
// the same top-to-bottom per-section validation shape the teacher's
// ValidateConfig uses, with vestd's own rules substituted in.
func ValidateConfig(cfg *Config) error {
	if err := validateServerConfig(&cfg.Server); err != nil {
		return err
	}
	if err := validateDatabaseConfig(&cfg.Database); err != nil {
		return err
	}
	if err := validateFeesConfig(&cfg.Fees); err != nil {
		return err
	}
	if err := validateOracleConfig(&cfg.Oracle); err != nil {
		return err
	}
	return nil
}

func validateServerConfig(s *ServerConfig) error {
	if s.RPCListen == "" {
		return fmt.Errorf("server.rpc_listen must not be empty")
	}
	if s.GRPCListen == "" {
		return fmt.Errorf("server.grpc_listen must not be empty")
	}
	if s.RPCListen == s.GRPCListen {
		return fmt.Errorf("server.rpc_listen and server.grpc_listen must differ, got %q twice", s.RPCListen)
	}
	return nil
}

func validateDatabaseConfig(d *DatabaseConfig) error {
	switch d.ContractStoreBackend {
	case "pebble", "leveldb":
	default:
		return fmt.Errorf("database.contract_store_backend must be %q or %q, got %q", "pebble", "leveldb", d.ContractStoreBackend)
	}
	if d.ContractStorePath == "" {
		return fmt.Errorf("database.contract_store_path must not be empty")
	}
	if d.ContractCacheSize < 0 {
		return fmt.Errorf("database.contract_cache_size must be >= 0, got %d", d.ContractCacheSize)
	}
	if d.AuditLedgerDSN == "" && d.AuditLedgerSQLitePath == "" {
		return fmt.Errorf("database: one of audit_ledger_dsn or audit_ledger_sqlite_path must be set")
	}
	return nil
}

func validateFeesConfig(f *FeesConfig) error {
	if f.DefaultStreamflowPercent < 0 || f.DefaultStreamflowPercent > 100 {
		return fmt.Errorf("fees.default_streamflow_percent must be in [0, 100], got %v", f.DefaultStreamflowPercent)
	}
	if f.DefaultPartnerPercent < 0 || f.DefaultPartnerPercent > 100 {
		return fmt.Errorf("fees.default_partner_percent must be in [0, 100], got %v", f.DefaultPartnerPercent)
	}
	if f.FloorPercent < 0 || f.FloorPercent > 100 {
		return fmt.Errorf("fees.floor_percent must be in [0, 100], got %v", f.FloorPercent)
	}
	return nil
}

func validateOracleConfig(o *OracleConfig) error {
	if o.Enabled && len(o.Endpoints) == 0 {
		return fmt.Errorf("oracle.endpoints must not be empty when oracle.enabled is true")
	}
	if o.TimeoutMS <= 0 {
		return fmt.Errorf("oracle.timeout_ms must be > 0, got %d", o.TimeoutMS)
	}
	return nil
}
