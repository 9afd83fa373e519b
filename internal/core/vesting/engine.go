package vesting

import "sync"

// Engine wires the pure core to its external collaborators and
// serialises instructions against the same contract (spec.md §5):
// two instructions against different contracts run concurrently, but
// the engine never applies two instructions against the same escrow
// address at once.
type Engine struct {
	Store     ContractStore
	Transfer  TokenTransfer
	Clock     Clock
	Escrow    EscrowDeriver
	Rent      RentSizer
	Oracle    FeeOracle

	locksMu sync.Mutex
	locks   map[Principal]*sync.Mutex
}

// NewEngine constructs an Engine from its collaborators. All fields
// are required except Oracle, which may be nil (PartnerFees then
// always falls back to the default split).
func NewEngine(store ContractStore, transfer TokenTransfer, clock Clock, escrow EscrowDeriver, rent RentSizer, oracle FeeOracle) *Engine {
	return &Engine{
		Store:    store,
		Transfer: transfer,
		Clock:    clock,
		Escrow:   escrow,
		Rent:     rent,
		Oracle:   oracle,
		locks:    make(map[Principal]*sync.Mutex),
	}
}

// lockFor returns the per-escrow mutex, creating it on first use.
func (e *Engine) lockFor(escrow Principal) *sync.Mutex {
	e.locksMu.Lock()
	defer e.locksMu.Unlock()

	m, ok := e.locks[escrow]
	if !ok {
		m = &sync.Mutex{}
		e.locks[escrow] = m
	}
	return m
}

// ApplyContext carries everything a single instruction application
// needs besides its payload: the authenticated authority, the target
// escrow, and the wall-clock snapshot taken once per instruction.
type ApplyContext struct {
	Now       int64
	Authority Principal
	Escrow    Principal // the escrow token account and ContractStore key; Create instead takes the contract ID here and derives the escrow from it
}
