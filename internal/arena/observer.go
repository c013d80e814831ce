package arena

// Cell labels reported by observers alongside occupant encodings.
const (
	// CellOutOfBounds marks window cells beyond the grid edge.
	CellOutOfBounds = -1
	// CellMasked marks cells obscured by a blocking agent.
	CellMasked = -2
)

// Observer builds one agent's observation tensor from grid state and the
// visibility mask. Observers never mutate state.
type Observer interface {
	// Key names the observation channel this observer produces.
	Key() string
	// Supports reports whether the agent declares this observer's capability.
	Supports(a *Agent) bool
	// Observe builds the observation for the viewer.
	Observe(a *Agent) (any, error)
}

// topEncoding labels a cell with the highest encoding among its occupants so
// contested cells resolve deterministically. Empty cells label 0.
func topEncoding(grid *Grid, p Position) int {
	top := 0
	for _, occ := range grid.Occupants(p) {
		if occ.Encoding > top {
			top = occ.Encoding
		}
	}
	return top
}

// PositionCenteredObserver reports the (2R+1)^2 window of occupant encodings
// around the viewer, R being the viewer's view range. Obscured cells read
// CellMasked, cells beyond the grid CellOutOfBounds, and masking wins when a
// cell is both.
type PositionCenteredObserver struct {
	grid   *Grid
	agents map[string]*Agent
	vision *VisionMask
}

// NewPositionCenteredObserver creates the position-centered observer.
func NewPositionCenteredObserver(grid *Grid, agents map[string]*Agent, vision *VisionMask) *PositionCenteredObserver {
	return &PositionCenteredObserver{grid: grid, agents: agents, vision: vision}
}

func (o *PositionCenteredObserver) Key() string { return "grid" }

func (o *PositionCenteredObserver) Supports(a *Agent) bool { return a.Has(CapObserve) }

func (o *PositionCenteredObserver) Observe(viewer *Agent) (any, error) {
	r := viewer.ViewRange
	side := 2*r + 1
	obs := make([][]int, side)
	for i := range obs {
		obs[i] = make([]int, side)
	}
	if !viewer.Active || !viewer.Placed {
		fill(obs, CellMasked)
		return obs, nil
	}
	mask := o.vision.Window(viewer, r)
	for dr := -r; dr <= r; dr++ {
		for dc := -r; dc <= r; dc++ {
			d := Displacement{DRow: dr, DCol: dc}
			cell := viewer.Position.Add(d)
			switch {
			case mask.Obscured(d):
				obs[dr+r][dc+r] = CellMasked
			case !o.grid.InBounds(cell):
				obs[dr+r][dc+r] = CellOutOfBounds
			default:
				obs[dr+r][dc+r] = topEncoding(o.grid, cell)
			}
		}
	}
	return obs, nil
}

// AbsoluteGridObserver reports the whole grid of occupant encodings with the
// viewer's own cell labelled by its negated encoding. Masking uses the
// whole-grid geometry: every blocker casts a shadow regardless of distance.
type AbsoluteGridObserver struct {
	grid   *Grid
	agents map[string]*Agent
	vision *VisionMask
}

// NewAbsoluteGridObserver creates the absolute observer.
func NewAbsoluteGridObserver(grid *Grid, agents map[string]*Agent, vision *VisionMask) *AbsoluteGridObserver {
	return &AbsoluteGridObserver{grid: grid, agents: agents, vision: vision}
}

func (o *AbsoluteGridObserver) Key() string { return "absolute_grid" }

func (o *AbsoluteGridObserver) Supports(a *Agent) bool { return a.Has(CapObserve) }

func (o *AbsoluteGridObserver) Observe(viewer *Agent) (any, error) {
	obs := make([][]int, o.grid.Rows())
	for i := range obs {
		obs[i] = make([]int, o.grid.Cols())
	}
	if !viewer.Active || !viewer.Placed {
		fill(obs, CellMasked)
		return obs, nil
	}
	mask := o.vision.Absolute(viewer)
	for r := 0; r < o.grid.Rows(); r++ {
		for c := 0; c < o.grid.Cols(); c++ {
			p := Position{Row: r, Col: c}
			switch {
			case p == viewer.Position:
				obs[r][c] = -viewer.Encoding
			case mask.Obscured(p):
				obs[r][c] = CellMasked
			default:
				obs[r][c] = topEncoding(o.grid, p)
			}
		}
	}
	return obs, nil
}

// StackedObserver reports the centered window as one channel per encoding,
// each cell counting the occupants of that encoding. Obscured and off-grid
// cells read -1 in every channel.
type StackedObserver struct {
	grid        *Grid
	agents      map[string]*Agent
	vision      *VisionMask
	maxEncoding int
}

// NewStackedObserver creates the stacked observer. Channels cover encodings
// 1 through the highest encoding present in the agent set.
func NewStackedObserver(grid *Grid, agents map[string]*Agent, vision *VisionMask) *StackedObserver {
	maxEncoding := 0
	for _, a := range agents {
		if a.Encoding > maxEncoding {
			maxEncoding = a.Encoding
		}
	}
	return &StackedObserver{grid: grid, agents: agents, vision: vision, maxEncoding: maxEncoding}
}

func (o *StackedObserver) Key() string { return "stacked_grid" }

func (o *StackedObserver) Supports(a *Agent) bool { return a.Has(CapObserve) }

func (o *StackedObserver) Observe(viewer *Agent) (any, error) {
	r := viewer.ViewRange
	side := 2*r + 1
	obs := make([][][]int, o.maxEncoding)
	for ch := range obs {
		obs[ch] = make([][]int, side)
		for i := range obs[ch] {
			obs[ch][i] = make([]int, side)
		}
	}
	if !viewer.Active || !viewer.Placed {
		for ch := range obs {
			fill(obs[ch], -1)
		}
		return obs, nil
	}
	mask := o.vision.Window(viewer, r)
	for dr := -r; dr <= r; dr++ {
		for dc := -r; dc <= r; dc++ {
			d := Displacement{DRow: dr, DCol: dc}
			cell := viewer.Position.Add(d)
			if mask.Obscured(d) || !o.grid.InBounds(cell) {
				for ch := range obs {
					obs[ch][dr+r][dc+r] = -1
				}
				continue
			}
			for _, occ := range o.grid.Occupants(cell) {
				obs[occ.Encoding-1][dr+r][dc+r]++
			}
		}
	}
	return obs, nil
}

func fill(m [][]int, v int) {
	for i := range m {
		for j := range m[i] {
			m[i][j] = v
		}
	}
}
