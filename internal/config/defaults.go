package config

import "github.com/spf13/viper"

// setDefaults mirrors the teacher's rippled.cfg default table, but
// scoped to vestd's own sections: a JSON-RPC/gRPC server, a pluggable
// contract store, an audit ledger, and fee defaults.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.rpc_listen", "127.0.0.1:5005")
	v.SetDefault("server.grpc_listen", "127.0.0.1:50051")
	v.SetDefault("server.standalone", false)

	v.SetDefault("database.contract_store_backend", "pebble")
	v.SetDefault("database.contract_store_path", "./data/contracts")
	v.SetDefault("database.contract_cache_size", 4096)
	v.SetDefault("database.audit_ledger_dsn", "")
	v.SetDefault("database.audit_ledger_sqlite_path", "./data/audit.db")

	v.SetDefault("fees.default_streamflow_percent", 0.25)
	v.SetDefault("fees.default_partner_percent", 0.0)
	v.SetDefault("fees.floor_percent", 0.5)

	v.SetDefault("oracle.enabled", false)
	v.SetDefault("oracle.endpoints", []string{})
	v.SetDefault("oracle.timeout_ms", 2000)
}
