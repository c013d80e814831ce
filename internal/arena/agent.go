package arena

import "fmt"

// Capability marks which simulation concerns apply to an agent. Components
// check capabilities instead of downcasting to agent subtypes.
type Capability uint8

const (
	CapMove Capability = 1 << iota // processed by move actors
	CapHealth
	CapAttack
	CapAmmo // attack attempts consume ammo
	CapObserve
)

// Position is a grid cell addressed as (row, col), row 0 at the top.
type Position struct {
	Row, Col int
}

// Displacement is a per-axis offset applied to a Position.
type Displacement struct {
	DRow, DCol int
}

// Add returns the cell reached by applying d to p.
func (p Position) Add(d Displacement) Position {
	return Position{Row: p.Row + d.DRow, Col: p.Col + d.DCol}
}

// Chebyshev returns the Chebyshev (box) distance between two cells.
func Chebyshev(a, b Position) int {
	dr := a.Row - b.Row
	if dr < 0 {
		dr = -dr
	}
	dc := a.Col - b.Col
	if dc < 0 {
		dc = -dc
	}
	if dc > dr {
		return dc
	}
	return dr
}

// Manhattan returns the Manhattan (cross) distance between two cells.
func Manhattan(a, b Position) int {
	dr := a.Row - b.Row
	if dr < 0 {
		dr = -dr
	}
	dc := a.Col - b.Col
	if dc < 0 {
		dc = -dc
	}
	return dr + dc
}

// Agent is a shared mutable record. Every component operates on the same
// instance; PositionState is the sole writer of Position/Placed and
// HealthState the sole writer of Health/Active. All other components read.
type Agent struct {
	ID       string
	Encoding int // positive integer category
	Caps     Capability

	// Positional state, owned by PositionState.
	InitialPosition *Position
	Position        Position
	Placed          bool

	// Health state in [0,1], owned by HealthState.
	InitialHealth *float64
	Health        float64
	Active        bool

	// Blocking agents obscure cells behind them from observation and attack.
	Blocking bool

	MoveRange int
	ViewRange int

	AttackRange         int
	AttackAccuracy      float64
	AttackStrength      float64
	SimultaneousAttacks int

	Ammo int
}

// Has reports whether the agent carries the given capability.
func (a *Agent) Has(c Capability) bool {
	return a.Caps&c == c
}

// Validate checks the declared attributes for configuration errors.
func (a *Agent) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("agent has empty id")
	}
	if a.Encoding <= 0 {
		return fmt.Errorf("agent %s: encoding must be positive, got %d", a.ID, a.Encoding)
	}
	if a.Has(CapHealth) && a.InitialHealth != nil {
		if h := *a.InitialHealth; h < 0 || h > 1 {
			return fmt.Errorf("agent %s: initial health %v outside [0,1]", a.ID, h)
		}
	}
	if a.Has(CapAttack) {
		if a.AttackRange < 0 {
			return fmt.Errorf("agent %s: negative attack range", a.ID)
		}
		if a.AttackAccuracy < 0 || a.AttackAccuracy > 1 {
			return fmt.Errorf("agent %s: attack accuracy %v outside [0,1]", a.ID, a.AttackAccuracy)
		}
		if a.SimultaneousAttacks < 1 {
			return fmt.Errorf("agent %s: simultaneous attacks must be at least 1", a.ID)
		}
	}
	return nil
}

// ptr helpers used by builders and tests.

// Pos returns a pointer to a Position literal.
func Pos(row, col int) *Position {
	return &Position{Row: row, Col: col}
}

// HealthValue returns a pointer to an initial health value.
func HealthValue(h float64) *float64 {
	return &h
}
