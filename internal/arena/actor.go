package arena

import "fmt"

// Actor turns one agent's action signal into validated state mutations. A
// malformed action (wrong shape or outside the declared space) is a caller
// bug and returns an error; ordinary simulation failures such as a blocked
// move are reported through the returned result, never as errors.
type Actor interface {
	// Key names the action channel this actor consumes.
	Key() string
	// Supports reports whether the agent declares this actor's capability.
	Supports(a *Agent) bool
	// Space returns the agent's declared action space for this channel.
	Space(a *Agent) Space
	// ProcessAction applies the action and returns a success report.
	ProcessAction(a *Agent, action any) (any, error)
}

// Metric selects the distance function bounding a move.
type Metric int

const (
	// MetricChebyshev admits any displacement inside the move-range box.
	MetricChebyshev Metric = iota
	// MetricManhattan additionally requires |dr|+|dc| within the move range.
	MetricManhattan
)

// MoveActor processes displacement vectors bounded per axis by the agent's
// move range. The null action is the zero vector.
type MoveActor struct {
	position *PositionState
	metric   Metric
}

// NewMoveActor creates a move actor writing through the given position state.
func NewMoveActor(position *PositionState, metric Metric) *MoveActor {
	return &MoveActor{position: position, metric: metric}
}

func (m *MoveActor) Key() string { return "move" }

func (m *MoveActor) Supports(a *Agent) bool { return a.Has(CapMove) }

func (m *MoveActor) Space(a *Agent) Space {
	return UniformBox(-a.MoveRange, a.MoveRange, 2)
}

// ProcessAction moves the agent by the given displacement. Returns true when
// the agent ends up at the target cell. A displacement admitted by the box
// but rejected by the metric is a failed move, not an error.
func (m *MoveActor) ProcessAction(a *Agent, action any) (any, error) {
	v, ok := action.([]int)
	if !ok || len(v) != 2 {
		return false, fmt.Errorf("move action for %s must be a 2-vector, got %v", a.ID, action)
	}
	if !m.Space(a).Contains(v) {
		return false, fmt.Errorf("move action %v for %s exceeds move range %d", v, a.ID, a.MoveRange)
	}
	d := Displacement{DRow: v[0], DCol: v[1]}
	if !a.Active || !a.Placed {
		return false, nil
	}
	if d.DRow == 0 && d.DCol == 0 {
		return true, nil
	}
	if m.metric == MetricManhattan && Manhattan(a.Position, a.Position.Add(d)) > a.MoveRange {
		return false, nil
	}
	return m.position.Move(a, a.Position.Add(d)), nil
}

// Cross-move directions, raster order with the no-op first.
const (
	CrossStay = iota
	CrossUp
	CrossDown
	CrossLeft
	CrossRight
)

var crossSteps = [5]Displacement{
	{0, 0},
	{-1, 0},
	{1, 0},
	{0, -1},
	{0, 1},
}

// CrossMoveActor processes unit steps in the four cardinal directions. It
// ignores the agent's move range; the null action is CrossStay.
type CrossMoveActor struct {
	position *PositionState
}

// NewCrossMoveActor creates a cross-move actor writing through the given
// position state.
func NewCrossMoveActor(position *PositionState) *CrossMoveActor {
	return &CrossMoveActor{position: position}
}

func (c *CrossMoveActor) Key() string { return "move" }

func (c *CrossMoveActor) Supports(a *Agent) bool { return a.Has(CapMove) }

func (c *CrossMoveActor) Space(a *Agent) Space { return Discrete{N: 5} }

// ProcessAction applies the unit step. Returns true when the agent ends up at
// the target cell.
func (c *CrossMoveActor) ProcessAction(a *Agent, action any) (any, error) {
	v, ok := action.(int)
	if !ok || v < 0 || v >= len(crossSteps) {
		return false, fmt.Errorf("cross move action for %s must be in [0,5), got %v", a.ID, action)
	}
	if !a.Active || !a.Placed {
		return false, nil
	}
	if v == CrossStay {
		return true, nil
	}
	return c.position.Move(a, a.Position.Add(crossSteps[v])), nil
}
