package arena

import "testing"

func TestMoveActor_SpaceBoundsMatchMoveRange(t *testing.T) {
	move, _ := moveFixture(t)
	a := &Agent{ID: "x", Encoding: 1, Caps: CapMove, MoveRange: 2}
	box := move.Space(a).(IntBox)
	if box.Low[0] != -2 || box.High[0] != 2 || len(box.Low) != 2 {
		t.Fatalf("unexpected box %v..%v", box.Low, box.High)
	}
}

func TestMoveActor_ZeroDisplacementSucceeds(t *testing.T) {
	move, a := moveFixture(t)
	res, err := move.ProcessAction(a, []int{0, 0})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if res != true {
		t.Fatal("zero displacement should report success")
	}
}

func TestMoveActor_MalformedActionIsAnError(t *testing.T) {
	move, a := moveFixture(t)
	if _, err := move.ProcessAction(a, "north"); err == nil {
		t.Fatal("non-vector action must error")
	}
	if _, err := move.ProcessAction(a, []int{1}); err == nil {
		t.Fatal("short vector must error")
	}
	if _, err := move.ProcessAction(a, []int{2, 0}); err == nil {
		t.Fatal("displacement beyond the move range must error")
	}
}

func TestMoveActor_OffGridMoveFailsQuietly(t *testing.T) {
	a := &Agent{ID: "a", Encoding: 1, Caps: CapMove, MoveRange: 1, InitialPosition: Pos(0, 0)}
	agents := map[string]*Agent{"a": a}
	g := NewGrid(3, 3, noOverlap(1))
	ps := NewPositionState(g, agents, testRNG(1))
	if err := ps.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	a.Active = true
	move := NewMoveActor(ps, MetricChebyshev)

	res, err := move.ProcessAction(a, []int{-1, 0})
	if err != nil {
		t.Fatalf("off-grid move should not error: %v", err)
	}
	if res != false {
		t.Fatal("off-grid move should report failure")
	}
	if a.Position != (Position{Row: 0, Col: 0}) {
		t.Fatalf("agent moved to %v", a.Position)
	}
}

func TestMoveActor_ManhattanMetricRejectsDiagonal(t *testing.T) {
	a := &Agent{ID: "a", Encoding: 1, Caps: CapMove, MoveRange: 1, InitialPosition: Pos(1, 1)}
	agents := map[string]*Agent{"a": a}
	g := NewGrid(3, 3, noOverlap(1))
	ps := NewPositionState(g, agents, testRNG(1))
	if err := ps.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	a.Active = true
	move := NewMoveActor(ps, MetricManhattan)

	// Diagonal unit step has Manhattan distance 2 > move range 1. The box
	// admits it, so it fails as a move rather than erroring.
	res, err := move.ProcessAction(a, []int{1, 1})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if res != false {
		t.Fatal("diagonal step must fail under the Manhattan metric")
	}
	if a.Position != (Position{Row: 1, Col: 1}) {
		t.Fatalf("agent moved to %v", a.Position)
	}
}

func TestMoveActor_CoOccupancyFollowsOverlapMapping(t *testing.T) {
	// Encoding 1 and 2 tolerate each other; encoding 3 tolerates nobody.
	overlap := OverlapMapping(MappingFromLists(map[int][]int{
		1: {2}, 2: {1}, 3: nil,
	}))
	agents := map[string]*Agent{
		"a": {ID: "a", Encoding: 1, Caps: CapMove, MoveRange: 1, InitialPosition: Pos(0, 0)},
		"b": {ID: "b", Encoding: 2, Caps: CapMove, MoveRange: 1, InitialPosition: Pos(0, 1)},
		"c": {ID: "c", Encoding: 3, Caps: CapMove, MoveRange: 1, InitialPosition: Pos(1, 1)},
	}
	g := NewGrid(2, 2, overlap)
	ps := NewPositionState(g, agents, testRNG(1))
	if err := ps.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	for _, a := range agents {
		a.Active = true
	}
	move := NewMoveActor(ps, MetricChebyshev)

	// a joins b: both encodings tolerate the pairing.
	res, err := move.ProcessAction(agents["a"], []int{0, 1})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if res != true {
		t.Fatal("compatible encodings should co-occupy")
	}
	// c may not join the shared cell.
	res, err = move.ProcessAction(agents["c"], []int{-1, 0})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if res != false {
		t.Fatal("encoding 3 must not join the occupied cell")
	}
}

func TestCrossMoveActor_StepsAndStay(t *testing.T) {
	a := &Agent{ID: "a", Encoding: 1, Caps: CapMove, InitialPosition: Pos(1, 1)}
	agents := map[string]*Agent{"a": a}
	g := NewGrid(3, 3, noOverlap(1))
	ps := NewPositionState(g, agents, testRNG(1))
	if err := ps.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	a.Active = true
	cross := NewCrossMoveActor(ps)

	if cross.Space(a).Size() != 5 {
		t.Fatalf("cross move space size %d, want 5", cross.Space(a).Size())
	}
	cases := []struct {
		action int
		want   Position
	}{
		{CrossUp, Position{Row: 0, Col: 1}},
		{CrossDown, Position{Row: 1, Col: 1}},
		{CrossLeft, Position{Row: 1, Col: 0}},
		{CrossRight, Position{Row: 1, Col: 1}},
		{CrossStay, Position{Row: 1, Col: 1}},
	}
	for _, tc := range cases {
		res, err := cross.ProcessAction(a, tc.action)
		if err != nil {
			t.Fatalf("action %d: %v", tc.action, err)
		}
		if res != true {
			t.Fatalf("action %d failed", tc.action)
		}
		if a.Position != tc.want {
			t.Fatalf("action %d left agent at %v, want %v", tc.action, a.Position, tc.want)
		}
	}
}

func TestCrossMoveActor_RejectsOutOfRangeAction(t *testing.T) {
	a := &Agent{ID: "a", Encoding: 1, Caps: CapMove, InitialPosition: Pos(1, 1)}
	agents := map[string]*Agent{"a": a}
	g := NewGrid(3, 3, noOverlap(1))
	ps := NewPositionState(g, agents, testRNG(1))
	if err := ps.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	a.Active = true
	cross := NewCrossMoveActor(ps)

	if _, err := cross.ProcessAction(a, 5); err == nil {
		t.Fatal("action 5 must error")
	}
	if _, err := cross.ProcessAction(a, "up"); err == nil {
		t.Fatal("non-int action must error")
	}
}
