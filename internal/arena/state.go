package arena

import (
	"fmt"
	"math/rand"
	"sort"
)

// PositionState owns the positional slice of every agent record. It resets
// the grid at episode start and is the only component that moves agents
// between cells afterwards.
type PositionState struct {
	grid   *Grid
	agents map[string]*Agent
	rng    *rand.Rand

	// Cells still available per encoding at reset, keyed by the cell's
	// row-major index. Pruned as incompatible agents land.
	available map[int]map[int]bool
}

// NewPositionState creates the position state component.
func NewPositionState(grid *Grid, agents map[string]*Agent, rng *rand.Rand) *PositionState {
	return &PositionState{grid: grid, agents: agents, rng: rng}
}

// Reset clears the grid and gives every agent a starting position. Agents
// with an initial position are placed first; the rest are drawn uniformly
// from the cells still available to their encoding.
func (s *PositionState) Reset() error {
	s.grid.Reset()
	s.buildAvailable()

	for _, id := range sortedIDs(s.agents) {
		agent := s.agents[id]
		if agent.InitialPosition == nil {
			continue
		}
		if err := s.placeInitial(agent); err != nil {
			return err
		}
	}
	for _, id := range sortedIDs(s.agents) {
		agent := s.agents[id]
		if agent.InitialPosition != nil {
			continue
		}
		if err := s.placeVariable(agent); err != nil {
			return err
		}
	}
	return nil
}

// Move relocates the agent to the target cell if the grid admits it. On
// success the occupancy record and the agent's position are updated together;
// on failure the agent stays put.
func (s *PositionState) Move(agent *Agent, to Position) bool {
	if !agent.Placed || !agent.Active {
		return false
	}
	if !s.grid.Query(to, agent) {
		return false
	}
	s.grid.Remove(agent, agent.Position)
	if !s.grid.Place(agent, to) {
		// Query already admitted the move; restore the old record.
		s.grid.Place(agent, agent.Position)
		return false
	}
	agent.Position = to
	return true
}

func (s *PositionState) buildAvailable() {
	maxEncoding := 0
	for _, a := range s.agents {
		if a.Encoding > maxEncoding {
			maxEncoding = a.Encoding
		}
	}
	s.available = make(map[int]map[int]bool, maxEncoding)
	for enc := 1; enc <= maxEncoding; enc++ {
		cells := make(map[int]bool, s.grid.Rows()*s.grid.Cols())
		for i := 0; i < s.grid.Rows()*s.grid.Cols(); i++ {
			cells[i] = true
		}
		s.available[enc] = cells
	}
}

// pruneAvailable removes the just-occupied cell from every encoding the
// placed agent does not tolerate sharing with. Directional on purpose: the
// placed agent's own overlap row decides.
func (s *PositionState) pruneAvailable(placed *Agent) {
	cell := s.grid.ravel(placed.Position)
	for enc, cells := range s.available {
		if !s.grid.Overlap().Permits(placed.Encoding, enc) {
			delete(cells, cell)
		}
	}
}

func (s *PositionState) placeInitial(agent *Agent) error {
	p := *agent.InitialPosition
	if !s.grid.InBounds(p) {
		return fmt.Errorf("initial position (%d,%d) for %s is off the grid", p.Row, p.Col, agent.ID)
	}
	if !s.available[agent.Encoding][s.grid.ravel(p)] {
		return fmt.Errorf("cell (%d,%d) is not available for %s", p.Row, p.Col, agent.ID)
	}
	if !s.grid.Place(agent, p) {
		return fmt.Errorf("could not place %s at (%d,%d)", agent.ID, p.Row, p.Col)
	}
	agent.Position = p
	agent.Placed = true
	s.pruneAvailable(agent)
	return nil
}

func (s *PositionState) placeVariable(agent *Agent) error {
	cells := s.available[agent.Encoding]
	if len(cells) == 0 {
		return fmt.Errorf("could not find a cell for %s", agent.ID)
	}
	candidates := make([]int, 0, len(cells))
	for c := range cells {
		candidates = append(candidates, c)
	}
	sort.Ints(candidates)
	p := s.grid.unravel(candidates[s.rng.Intn(len(candidates))])
	if !s.grid.Place(agent, p) {
		return fmt.Errorf("could not place %s at (%d,%d)", agent.ID, p.Row, p.Col)
	}
	agent.Position = p
	agent.Placed = true
	s.pruneAvailable(agent)
	return nil
}

// HealthState owns the health slice of every agent record. Health lives in
// [0,1]; an agent whose health reaches zero becomes inactive and leaves the
// grid until the next reset.
type HealthState struct {
	grid   *Grid
	agents map[string]*Agent
	rng    *rand.Rand
}

// NewHealthState creates the health state component.
func NewHealthState(grid *Grid, agents map[string]*Agent, rng *rand.Rand) *HealthState {
	return &HealthState{grid: grid, agents: agents, rng: rng}
}

// Reset gives every health-bearing agent its starting health: the declared
// initial health if present, otherwise a uniform draw from (0,1). Every agent
// starts the episode active.
func (s *HealthState) Reset() {
	for _, id := range sortedIDs(s.agents) {
		agent := s.agents[id]
		agent.Active = true
		if !agent.Has(CapHealth) {
			continue
		}
		if agent.InitialHealth != nil {
			agent.Health = *agent.InitialHealth
		} else {
			agent.Health = s.rng.Float64()
		}
	}
}

// ApplyDamage depletes the target's health, floored at zero. At zero the
// target is deactivated and removed from the grid. Returns true when the
// damage killed the target.
func (s *HealthState) ApplyDamage(target *Agent, strength float64) bool {
	if !target.Has(CapHealth) || !target.Active {
		return false
	}
	target.Health -= strength
	if target.Health > 0 {
		return false
	}
	target.Health = 0
	target.Active = false
	if target.Placed {
		s.grid.Remove(target, target.Position)
		target.Placed = false
	}
	return true
}

// sortedIDs returns the agent ids in lexical order so that seeded episodes
// replay identically.
func sortedIDs(agents map[string]*Agent) []string {
	ids := make([]string, 0, len(agents))
	for id := range agents {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
