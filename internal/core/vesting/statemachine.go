package vesting

// State is the lifecycle state spec.md §3.4/§4.5 describes. It is
// never stored directly — it is derived from a Contract snapshot plus
// the wall-clock second it is evaluated at, so a RPC/CLI status query
// can answer "what state is this in" without the handlers needing to
// track a redundant field.
type State int

const (
	StateActive State = iota
	StateSettledExpired
	StateSettledCancelled
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateSettledExpired:
		return "settled_expired"
	case StateSettledCancelled:
		return "settled_cancelled"
	default:
		return "unknown"
	}
}

// DeriveState implements spec.md §3.4/§4.5: Settled-Cancelled once
// CanceledAt is set; Settled-Expired once now >= EndTime and every
// ledger is fully drained; Active otherwise.
func DeriveState(c *Contract, now int64) State {
	if c.CanceledAt > 0 {
		return StateSettledCancelled
	}
	if now >= c.EndTime && c.fullyDrained() {
		return StateSettledExpired
	}
	return StateActive
}
