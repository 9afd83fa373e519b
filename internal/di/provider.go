package di

import (
	"context"
	"fmt"
	"time"

	"github.com/strmfi/vestd/internal/bridge"
	"github.com/strmfi/vestd/internal/config"
	"github.com/strmfi/vestd/internal/core/vesting"
	grpcserver "github.com/strmfi/vestd/internal/grpc"
	"github.com/strmfi/vestd/internal/rpc"
	"github.com/strmfi/vestd/internal/storage/contractstore"
	"github.com/strmfi/vestd/internal/storage/database"
	"github.com/strmfi/vestd/internal/storage/database/leveldb"
	"github.com/strmfi/vestd/internal/storage/database/pebble"
	"github.com/strmfi/vestd/internal/storage/ledgerindex"
	ldxpostgres "github.com/strmfi/vestd/internal/storage/ledgerindex/postgres"
	ldxsqlite "github.com/strmfi/vestd/internal/storage/ledgerindex/sqlite"
)

// buildVersion is overridden at link time via -ldflags; it is reported
// by the server_info RPC method.
var buildVersion = "dev"

// Provider configures and registers vestd's services in a Container,
// each as a lazy Builder so Get only pays for what's actually used.
type Provider struct {
	container *Container
	config    *config.Config
}

// NewProvider creates a new service provider for cfg.
func NewProvider(container *Container, cfg *config.Config) *Provider {
	return &Provider{container: container, config: cfg}
}

// RegisterAll registers every vestd service builder in dependency
// order: config, contract store, audit ledger, vesting engine, then
// the two transports.
func (p *Provider) RegisterAll() error {
	p.container.Register(ServiceConfig, p.config)

	p.container.RegisterBuilder(ServiceContractStore, p.buildContractStore)
	p.container.RegisterBuilder(ServiceLedgerIndex, p.buildLedgerIndex)
	p.container.RegisterBuilder(ServiceVestingEngine, p.buildVestingEngine)
	p.container.RegisterBuilder(ServiceRPCServer, p.buildRPCServer)
	p.container.RegisterBuilder(ServiceHealthServer, p.buildHealthServer)

	return nil
}

// GetConfig returns the configuration this provider was built from.
func (p *Provider) GetConfig() *config.Config {
	return p.config
}

// GetVestingEngine returns the *vesting.Engine from the container.
func (p *Provider) GetVestingEngine() (*vesting.Engine, error) {
	v, err := p.container.Get(ServiceVestingEngine)
	if err != nil {
		return nil, err
	}
	engine, ok := v.(*vesting.Engine)
	if !ok {
		return nil, fmt.Errorf("di: %s is not a *vesting.Engine", ServiceVestingEngine)
	}
	return engine, nil
}

// GetRPCServer returns the *rpc.Server from the container.
func (p *Provider) GetRPCServer() (*rpc.Server, error) {
	v, err := p.container.Get(ServiceRPCServer)
	if err != nil {
		return nil, err
	}
	s, ok := v.(*rpc.Server)
	if !ok {
		return nil, fmt.Errorf("di: %s is not an *rpc.Server", ServiceRPCServer)
	}
	return s, nil
}

// GetHealthServer returns the *grpc.Server from the container.
func (p *Provider) GetHealthServer() (*grpcserver.Server, error) {
	v, err := p.container.Get(ServiceHealthServer)
	if err != nil {
		return nil, err
	}
	s, ok := v.(*grpcserver.Server)
	if !ok {
		return nil, fmt.Errorf("di: %s is not a *grpc.Server", ServiceHealthServer)
	}
	return s, nil
}

func (p *Provider) buildContractStore(c *Container) (interface{}, error) {
	cfg := p.config

	var db database.DB
	switch cfg.Database.ContractStoreBackend {
	case "leveldb":
		ldb, err := leveldb.Open(cfg.Database.ContractStorePath)
		if err != nil {
			return nil, fmt.Errorf("di: opening leveldb contract store: %w", err)
		}
		db = ldb
	default:
		mgr := pebble.NewManager(cfg.Database.ContractStorePath)
		pdb, err := mgr.OpenDB("contracts")
		if err != nil {
			return nil, fmt.Errorf("di: opening pebble contract store: %w", err)
		}
		db = pdb
	}

	store, err := contractstore.New(db, cfg.Database.ContractCacheSize)
	if err != nil {
		return nil, fmt.Errorf("di: building contract store: %w", err)
	}
	return vesting.ContractStore(store), nil
}

func (p *Provider) buildLedgerIndex(c *Container) (interface{}, error) {
	cfg := p.config

	if cfg.Database.AuditLedgerDSN != "" {
		l, err := ldxpostgres.Open(cfg.Database.AuditLedgerDSN)
		if err != nil {
			return nil, fmt.Errorf("di: opening postgres audit ledger: %w", err)
		}
		return ledgerindex.Ledger(l), nil
	}

	l, err := ldxsqlite.Open(cfg.Database.AuditLedgerSQLitePath)
	if err != nil {
		return nil, fmt.Errorf("di: opening sqlite audit ledger: %w", err)
	}
	return ledgerindex.Ledger(l), nil
}

func (p *Provider) buildVestingEngine(c *Container) (interface{}, error) {
	cfg := p.config

	storeVal, err := c.Get(ServiceContractStore)
	if err != nil {
		return nil, err
	}
	store, ok := storeVal.(vesting.ContractStore)
	if !ok {
		return nil, fmt.Errorf("di: %s is not a vesting.ContractStore", ServiceContractStore)
	}

	ledger := bridge.NewInProcessLedger()
	clock := bridge.SystemClock{}
	deriver := bridge.NewDeriver()
	rent := bridge.StaticRentSizer{}

	var oracle vesting.FeeOracle
	if cfg.Oracle.Enabled && !cfg.Server.Standalone && len(cfg.Oracle.Endpoints) > 0 {
		oracle = bridge.NewHTTPOracle(cfg.Oracle.Endpoints)
	} else {
		oracle = bridge.NewStaticOracle()
	}

	return vesting.NewEngine(store, ledger, clock, deriver, rent, oracle), nil
}

func (p *Provider) buildRPCServer(c *Container) (interface{}, error) {
	engineVal, err := c.Get(ServiceVestingEngine)
	if err != nil {
		return nil, err
	}
	engine, ok := engineVal.(*vesting.Engine)
	if !ok {
		return nil, fmt.Errorf("di: %s is not a *vesting.Engine", ServiceVestingEngine)
	}

	return rpc.NewServer(30*time.Second, rpc.NewEngineAdapter(engine), buildVersion), nil
}

// readinessChecker adapts a vesting.ContractStore and a
// ledgerindex.Ledger into the grpc package's ReadinessChecker.
type readinessChecker struct {
	store  vesting.ContractStore
	ledger ledgerindex.Ledger
}

func (r *readinessChecker) Ready(ctx context.Context) error {
	if err := r.ledger.Ready(ctx); err != nil {
		return fmt.Errorf("audit ledger unready: %w", err)
	}
	// ContractStore has no ping primitive; loading the zero principal
	// exercises the backend without requiring any contract to exist,
	// treating ErrContractNotFound as healthy.
	if _, err := r.store.Load(ctx, vesting.Principal{}); err != nil && err != vesting.ErrContractNotFound {
		return fmt.Errorf("contract store unready: %w", err)
	}
	return nil
}

func (p *Provider) buildHealthServer(c *Container) (interface{}, error) {
	storeVal, err := c.Get(ServiceContractStore)
	if err != nil {
		return nil, err
	}
	store, ok := storeVal.(vesting.ContractStore)
	if !ok {
		return nil, fmt.Errorf("di: %s is not a vesting.ContractStore", ServiceContractStore)
	}

	ledgerVal, err := c.Get(ServiceLedgerIndex)
	if err != nil {
		return nil, err
	}
	ledger, ok := ledgerVal.(ledgerindex.Ledger)
	if !ok {
		return nil, fmt.Errorf("di: %s is not a ledgerindex.Ledger", ServiceLedgerIndex)
	}

	checker := &readinessChecker{store: store, ledger: ledger}
	return grpcserver.NewServer(checker, 5*time.Second), nil
}
