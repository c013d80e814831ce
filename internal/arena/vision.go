package arena

import "github.com/paulmach/orb"

// Visibility masking. A blocking agent casts a shadow over the cells behind
// it: the two lines from the viewer's cell center to the two silhouette
// corners of the blocker's cell bound a wedge, and any cell whose center lies
// strictly inside that wedge and beyond the blocker is obscured. Centers
// exactly on either line stay visible. The geometry is shared by observers
// and attack actors, and is a pure read of grid state: no randomness.

// Mask holds obscured flags for the (2R+1)^2 window around a viewer.
type Mask struct {
	radius   int
	obscured [][]bool
}

// Radius returns the window half-width.
func (m *Mask) Radius() int { return m.radius }

// Obscured reports whether the cell at the given offset from the viewer is
// obscured. Offsets outside the window are treated as obscured.
func (m *Mask) Obscured(d Displacement) bool {
	if d.DRow < -m.radius || d.DRow > m.radius || d.DCol < -m.radius || d.DCol > m.radius {
		return true
	}
	return m.obscured[d.DRow+m.radius][d.DCol+m.radius]
}

// GridMask holds obscured flags for every cell of the grid.
type GridMask struct {
	rows, cols int
	obscured   [][]bool
}

// Obscured reports whether the given cell is obscured. Off-grid cells are
// treated as obscured.
func (m *GridMask) Obscured(p Position) bool {
	if p.Row < 0 || p.Row >= m.rows || p.Col < 0 || p.Col >= m.cols {
		return true
	}
	return m.obscured[p.Row][p.Col]
}

// VisionMask computes obscured-cell geometry for viewers on the grid.
type VisionMask struct {
	grid   *Grid
	agents map[string]*Agent
}

// NewVisionMask creates the mask engine.
func NewVisionMask(grid *Grid, agents map[string]*Agent) *VisionMask {
	return &VisionMask{grid: grid, agents: agents}
}

// Window computes the obscured mask for the local window of the given radius
// centered on the viewer. Only blockers inside the window cast shadows.
func (v *VisionMask) Window(viewer *Agent, radius int) *Mask {
	m := &Mask{radius: radius, obscured: make([][]bool, 2*radius+1)}
	for i := range m.obscured {
		m.obscured[i] = make([]bool, 2*radius+1)
	}
	for _, blocker := range v.agents {
		if !v.blocks(viewer, blocker) {
			continue
		}
		b := Displacement{
			DRow: blocker.Position.Row - viewer.Position.Row,
			DCol: blocker.Position.Col - viewer.Position.Col,
		}
		if b.DRow < -radius || b.DRow > radius || b.DCol < -radius || b.DCol > radius {
			continue
		}
		for dr := -radius; dr <= radius; dr++ {
			for dc := -radius; dc <= radius; dc++ {
				if m.obscured[dr+radius][dc+radius] {
					continue
				}
				m.obscured[dr+radius][dc+radius] = shadowed(Displacement{DRow: dr, DCol: dc}, b)
			}
		}
	}
	return m
}

// Absolute computes the obscured mask over the whole grid for the viewer.
// Every blocker on the grid casts a shadow regardless of distance.
func (v *VisionMask) Absolute(viewer *Agent) *GridMask {
	m := &GridMask{rows: v.grid.Rows(), cols: v.grid.Cols(), obscured: make([][]bool, v.grid.Rows())}
	for i := range m.obscured {
		m.obscured[i] = make([]bool, v.grid.Cols())
	}
	for _, blocker := range v.agents {
		if !v.blocks(viewer, blocker) {
			continue
		}
		b := Displacement{
			DRow: blocker.Position.Row - viewer.Position.Row,
			DCol: blocker.Position.Col - viewer.Position.Col,
		}
		for r := 0; r < m.rows; r++ {
			for c := 0; c < m.cols; c++ {
				if m.obscured[r][c] {
					continue
				}
				d := Displacement{DRow: r - viewer.Position.Row, DCol: c - viewer.Position.Col}
				m.obscured[r][c] = shadowed(d, b)
			}
		}
	}
	return m
}

func (v *VisionMask) blocks(viewer, blocker *Agent) bool {
	return blocker.Blocking && blocker.Active && blocker.Placed && blocker.ID != viewer.ID
}

// shadowed reports whether the cell at offset cand from the viewer is hidden
// by a blocker at offset b. Cell centers sit at integer coordinates with the
// viewer at the origin; corners are half a cell away.
func shadowed(cand, b Displacement) bool {
	if cand == b || (cand.DRow == 0 && cand.DCol == 0) {
		return false
	}
	// x across columns, y down rows.
	bc := orb.Point{float64(b.DCol), float64(b.DRow)}
	x := orb.Point{float64(cand.DCol), float64(cand.DRow)}

	// Only cells strictly beyond the blocker along the view direction can
	// fall in its shadow.
	if dot(x, bc) <= dot(bc, bc) {
		return false
	}

	c1, c2 := silhouetteCorners(b)
	// Strictly inside the wedge spanned by the two corner lines.
	return cross(c1, x)*cross(c1, c2) > 0 && cross(c2, x)*cross(c2, c1) > 0
}

// silhouetteCorners returns the two corners of the blocker's cell whose
// separation is perpendicular to the viewer->blocker direction. For cardinal
// directions these are the corners of the near face; for oblique directions
// they are the two side corners of the silhouette.
func silhouetteCorners(b Displacement) (orb.Point, orb.Point) {
	bx, by := float64(b.DCol), float64(b.DRow)
	switch {
	case b.DRow == 0:
		s := sign(bx)
		return orb.Point{bx - 0.5*s, by - 0.5}, orb.Point{bx - 0.5*s, by + 0.5}
	case b.DCol == 0:
		s := sign(by)
		return orb.Point{bx - 0.5, by - 0.5*s}, orb.Point{bx + 0.5, by - 0.5*s}
	default:
		sx, sy := sign(bx), sign(by)
		return orb.Point{bx - 0.5*sx, by + 0.5*sy}, orb.Point{bx + 0.5*sx, by - 0.5*sy}
	}
}

func cross(a, b orb.Point) float64 {
	return a.X()*b.Y() - a.Y()*b.X()
}

func dot(a, b orb.Point) float64 {
	return a.X()*b.X() + a.Y()*b.Y()
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
