package arena

// OverlapMapping records, per encoding, the set of encodings it may share a
// cell with. The relation is directional and is not symmetrized: placement
// checks both directions independently.
type OverlapMapping map[int]map[int]bool

// Permits reports whether encoding a tolerates sharing a cell with encoding b.
func (m OverlapMapping) Permits(a, b int) bool {
	return m[a][b]
}

// Grid is the occupancy store: a fixed rows x cols extent where each cell
// holds the set of agents currently occupying it. The grid enforces the
// overlap policy on placement; it never writes agent attributes.
type Grid struct {
	rows, cols int
	overlap    OverlapMapping
	cells      []map[string]*Agent // row-major; nil until Reset
}

// NewGrid creates a grid with the given extent and overlap policy.
// Call Reset before placing agents.
func NewGrid(rows, cols int, overlap OverlapMapping) *Grid {
	return &Grid{rows: rows, cols: cols, overlap: overlap}
}

// Rows returns the number of rows.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the number of columns.
func (g *Grid) Cols() int { return g.cols }

// Overlap returns the grid's overlap mapping.
func (g *Grid) Overlap() OverlapMapping { return g.overlap }

// InBounds reports whether p lies on the grid.
func (g *Grid) InBounds(p Position) bool {
	return p.Row >= 0 && p.Row < g.rows && p.Col >= 0 && p.Col < g.cols
}

// Reset clears every cell. Called once per episode by PositionState.
func (g *Grid) Reset() {
	g.cells = make([]map[string]*Agent, g.rows*g.cols)
	for i := range g.cells {
		g.cells[i] = make(map[string]*Agent)
	}
}

func (g *Grid) cell(p Position) map[string]*Agent {
	return g.cells[p.Row*g.cols+p.Col]
}

// Query reports whether agent could occupy p given the current occupants.
// The agent itself is ignored if it already occupies p, so a zero-displacement
// move is always admissible. Both directions of the overlap relation must
// permit the pairing.
func (g *Grid) Query(p Position, agent *Agent) bool {
	if !g.InBounds(p) {
		return false
	}
	for _, occ := range g.cell(p) {
		if occ.ID == agent.ID {
			continue
		}
		if !g.overlap.Permits(agent.Encoding, occ.Encoding) ||
			!g.overlap.Permits(occ.Encoding, agent.Encoding) {
			return false
		}
	}
	return true
}

// Place validates then records the agent at p. Returns false and leaves the
// grid untouched when the placement is not admissible.
func (g *Grid) Place(agent *Agent, p Position) bool {
	if !g.Query(p, agent) {
		return false
	}
	g.cell(p)[agent.ID] = agent
	return true
}

// Remove deletes the agent's occupancy record at p. Idempotent.
func (g *Grid) Remove(agent *Agent, p Position) {
	if !g.InBounds(p) {
		return
	}
	delete(g.cell(p), agent.ID)
}

// OccupantIDs returns the ids of the agents at p in unspecified order.
func (g *Grid) OccupantIDs(p Position) []string {
	if !g.InBounds(p) {
		return nil
	}
	ids := make([]string, 0, len(g.cell(p)))
	for id := range g.cell(p) {
		ids = append(ids, id)
	}
	return ids
}

// Occupants returns the agents at p in unspecified order.
func (g *Grid) Occupants(p Position) []*Agent {
	if !g.InBounds(p) {
		return nil
	}
	out := make([]*Agent, 0, len(g.cell(p)))
	for _, a := range g.cell(p) {
		out = append(out, a)
	}
	return out
}

// ravel converts a cell to its row-major linear index.
func (g *Grid) ravel(p Position) int {
	return p.Row*g.cols + p.Col
}

// unravel converts a row-major linear index back to a cell.
func (g *Grid) unravel(i int) Position {
	return Position{Row: i / g.cols, Col: i % g.cols}
}
