package arena

import "testing"

type attackFixture struct {
	agents map[string]*Agent
	grid   *Grid
	health *HealthState
	vision *VisionMask
}

// newAttackFixture places the given agents at their initial positions with
// full control over health, ready for attack processing.
func newAttackFixture(t *testing.T, agents map[string]*Agent) *attackFixture {
	t.Helper()
	encodings := map[int][]int{}
	for _, a := range agents {
		encodings[a.Encoding] = nil
	}
	g := NewGrid(8, 8, OverlapMapping(MappingFromLists(encodings)))
	rng := testRNG(9)
	ps := NewPositionState(g, agents, rng)
	hs := NewHealthState(g, agents, rng)
	hs.Reset()
	if err := ps.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	return &attackFixture{agents: agents, grid: g, health: hs, vision: NewVisionMask(g, agents)}
}

func attacker(id string, p Position) *Agent {
	return &Agent{
		ID: id, Encoding: 1,
		Caps:                CapAttack,
		InitialPosition:     &p,
		AttackRange:         2,
		AttackAccuracy:      1,
		AttackStrength:      0.4,
		SimultaneousAttacks: 1,
	}
}

func victim(id string, p Position) *Agent {
	return &Agent{
		ID: id, Encoding: 2,
		Caps:            CapHealth,
		InitialPosition: &p,
		InitialHealth:   HealthValue(1),
	}
}

func huntMapping() AttackMapping {
	return AttackMapping(MappingFromLists(map[int][]int{1: {2}}))
}

func TestBinaryAttack_StrengthDepletesHealthInThreeHits(t *testing.T) {
	atk := attacker("atk", Position{Row: 0, Col: 0})
	tgt := victim("tgt", Position{Row: 0, Col: 1})
	fx := newAttackFixture(t, map[string]*Agent{"atk": atk, "tgt": tgt})
	actor := NewBinaryAttackActor(fx.agents, fx.health, fx.vision, huntMapping(), false, testRNG(1))

	// Strength 0.4 against health 1.0: alive after two hits, dead on the third.
	for i := 0; i < 2; i++ {
		raw, err := actor.ProcessAction(atk, 1)
		if err != nil {
			t.Fatalf("attack %d: %v", i, err)
		}
		res := raw.(AttackResult)
		if len(res.Hits) != 1 || len(res.Kills) != 0 {
			t.Fatalf("attack %d: hits=%d kills=%d", i, len(res.Hits), len(res.Kills))
		}
	}
	raw, err := actor.ProcessAction(atk, 1)
	if err != nil {
		t.Fatalf("third attack: %v", err)
	}
	res := raw.(AttackResult)
	if len(res.Kills) != 1 || res.Kills[0].ID != "tgt" {
		t.Fatal("third hit should kill the target")
	}
	if tgt.Active || tgt.Placed {
		t.Fatal("dead target should be inactive and off the grid")
	}

	// With the target gone there is nothing to attempt.
	raw, err = actor.ProcessAction(atk, 1)
	if err != nil {
		t.Fatalf("fourth attack: %v", err)
	}
	res = raw.(AttackResult)
	if res.Attempts != 0 {
		t.Fatalf("attack on empty pool performed %d attempts", res.Attempts)
	}
}

func TestBinaryAttack_RespectsRangeAndMapping(t *testing.T) {
	atk := attacker("atk", Position{Row: 0, Col: 0})
	far := victim("far", Position{Row: 0, Col: 5})
	friend := &Agent{
		ID: "friend", Encoding: 1, Caps: CapHealth,
		InitialPosition: Pos(0, 1), InitialHealth: HealthValue(1),
	}
	fx := newAttackFixture(t, map[string]*Agent{"atk": atk, "far": far, "friend": friend})
	actor := NewBinaryAttackActor(fx.agents, fx.health, fx.vision, huntMapping(), false, testRNG(1))

	raw, err := actor.ProcessAction(atk, 1)
	if err != nil {
		t.Fatalf("attack: %v", err)
	}
	res := raw.(AttackResult)
	// far is out of range, friend's encoding is not attackable.
	if res.Attempts != 0 {
		t.Fatalf("expected no candidates, got %d attempts", res.Attempts)
	}
}

func TestBinaryAttack_BlockedTargetIsNotACandidate(t *testing.T) {
	atk := attacker("atk", Position{Row: 2, Col: 0})
	wall := &Agent{ID: "wall", Encoding: 3, Blocking: true, InitialPosition: Pos(2, 1)}
	tgt := victim("tgt", Position{Row: 2, Col: 2})
	fx := newAttackFixture(t, map[string]*Agent{"atk": atk, "wall": wall, "tgt": tgt})
	actor := NewBinaryAttackActor(fx.agents, fx.health, fx.vision, huntMapping(), false, testRNG(1))

	raw, err := actor.ProcessAction(atk, 1)
	if err != nil {
		t.Fatalf("attack: %v", err)
	}
	res := raw.(AttackResult)
	if res.Attempts != 0 {
		t.Fatal("target behind a blocker must not be attackable")
	}
}

func TestBinaryAttack_AmmoSpentPerAttempt(t *testing.T) {
	atk := attacker("atk", Position{Row: 0, Col: 0})
	atk.Caps |= CapAmmo
	atk.Ammo = 2
	atk.SimultaneousAttacks = 3
	tgt := victim("tgt", Position{Row: 0, Col: 1})
	tgt2 := victim("tgt2", Position{Row: 1, Col: 1})
	fx := newAttackFixture(t, map[string]*Agent{"atk": atk, "tgt": tgt, "tgt2": tgt2})
	actor := NewBinaryAttackActor(fx.agents, fx.health, fx.vision, huntMapping(), false, testRNG(1))

	raw, err := actor.ProcessAction(atk, 3)
	if err != nil {
		t.Fatalf("attack: %v", err)
	}
	res := raw.(AttackResult)
	if res.Attempts != 2 {
		t.Fatalf("2 rounds of ammo allow 2 attempts, got %d", res.Attempts)
	}
	if atk.Ammo != 0 {
		t.Fatalf("ammo %d, want 0", atk.Ammo)
	}
}

func TestBinaryAttack_StackingRuleExcludesHitTargets(t *testing.T) {
	atk := attacker("atk", Position{Row: 0, Col: 0})
	atk.SimultaneousAttacks = 2
	tgt := victim("tgt", Position{Row: 0, Col: 1})
	fx := newAttackFixture(t, map[string]*Agent{"atk": atk, "tgt": tgt})
	actor := NewBinaryAttackActor(fx.agents, fx.health, fx.vision, huntMapping(), false, testRNG(1))

	// Without stacking the sole target absorbs at most one hit per action.
	raw, err := actor.ProcessAction(atk, 2)
	if err != nil {
		t.Fatalf("attack: %v", err)
	}
	res := raw.(AttackResult)
	if len(res.Hits) != 1 {
		t.Fatalf("hits=%d, want 1 without stacking", len(res.Hits))
	}
}

func TestBinaryAttack_StackedAllowsRepeatHits(t *testing.T) {
	atk := attacker("atk", Position{Row: 0, Col: 0})
	atk.SimultaneousAttacks = 3
	tgt := victim("tgt", Position{Row: 0, Col: 1})
	fx := newAttackFixture(t, map[string]*Agent{"atk": atk, "tgt": tgt})
	actor := NewBinaryAttackActor(fx.agents, fx.health, fx.vision, huntMapping(), true, testRNG(1))

	raw, err := actor.ProcessAction(atk, 3)
	if err != nil {
		t.Fatalf("attack: %v", err)
	}
	res := raw.(AttackResult)
	if len(res.Hits) != 3 || len(res.Kills) != 1 {
		t.Fatalf("hits=%d kills=%d, want 3 hits and the kill", len(res.Hits), len(res.Kills))
	}
}

func TestBinaryAttack_MalformedActionErrors(t *testing.T) {
	atk := attacker("atk", Position{Row: 0, Col: 0})
	fx := newAttackFixture(t, map[string]*Agent{"atk": atk})
	actor := NewBinaryAttackActor(fx.agents, fx.health, fx.vision, huntMapping(), false, testRNG(1))

	if _, err := actor.ProcessAction(atk, 2); err == nil {
		t.Fatal("count above simultaneous attacks must error")
	}
	if _, err := actor.ProcessAction(atk, "fire"); err == nil {
		t.Fatal("non-int action must error")
	}
}

func TestEncodingAttack_ScopesCountsPerEncoding(t *testing.T) {
	atk := attacker("atk", Position{Row: 1, Col: 1})
	atk.SimultaneousAttacks = 2
	a := victim("a", Position{Row: 1, Col: 2})
	b := &Agent{
		ID: "b", Encoding: 3, Caps: CapHealth,
		InitialPosition: Pos(2, 1), InitialHealth: HealthValue(1),
	}
	mapping := AttackMapping(MappingFromLists(map[int][]int{1: {2, 3}}))
	fx := newAttackFixture(t, map[string]*Agent{"atk": atk, "a": a, "b": b})
	actor := NewEncodingBasedAttackActor(fx.agents, fx.health, fx.vision, mapping, false, testRNG(1))

	dict := actor.Space(atk).(DictSpace)
	if len(dict.Keys()) != 2 {
		t.Fatalf("expected one channel per attackable encoding, got %v", dict.Keys())
	}

	raw, err := actor.ProcessAction(atk, map[string]any{"2": 1, "3": 1})
	if err != nil {
		t.Fatalf("attack: %v", err)
	}
	res := raw.(AttackResult)
	if len(res.Hits) != 2 {
		t.Fatalf("hits=%d, want one per encoding", len(res.Hits))
	}
}

func TestEncodingAttack_RejectsUnattackableEncoding(t *testing.T) {
	atk := attacker("atk", Position{Row: 0, Col: 0})
	fx := newAttackFixture(t, map[string]*Agent{"atk": atk})
	actor := NewEncodingBasedAttackActor(fx.agents, fx.health, fx.vision, huntMapping(), false, testRNG(1))

	if _, err := actor.ProcessAction(atk, map[string]any{"9": 1}); err == nil {
		t.Fatal("count for an unattackable encoding must error")
	}
}

func TestSelectiveAttack_TargetsNamedCellsOnly(t *testing.T) {
	atk := attacker("atk", Position{Row: 3, Col: 3})
	near := victim("near", Position{Row: 3, Col: 4})
	other := victim("other", Position{Row: 4, Col: 3})
	fx := newAttackFixture(t, map[string]*Agent{"atk": atk, "near": near, "other": other})
	actor := NewSelectiveAttackActor(fx.agents, fx.health, fx.vision, huntMapping(), false, testRNG(1))

	side := 2*atk.AttackRange + 1
	counts := make([]int, side*side)
	// Window cell of "near": displacement (0,1) -> raster index.
	counts[(0+atk.AttackRange)*side+(1+atk.AttackRange)] = 1
	raw, err := actor.ProcessAction(atk, counts)
	if err != nil {
		t.Fatalf("attack: %v", err)
	}
	res := raw.(AttackResult)
	if len(res.Hits) != 1 || res.Hits[0].ID != "near" {
		t.Fatalf("expected exactly the named cell's occupant to be hit, got %v", res.Hits)
	}
}

func TestSelectiveAttack_EmptyCellWastesNothing(t *testing.T) {
	atk := attacker("atk", Position{Row: 3, Col: 3})
	fx := newAttackFixture(t, map[string]*Agent{"atk": atk})
	actor := NewSelectiveAttackActor(fx.agents, fx.health, fx.vision, huntMapping(), false, testRNG(1))

	side := 2*atk.AttackRange + 1
	counts := make([]int, side*side)
	counts[0] = 1
	raw, err := actor.ProcessAction(atk, counts)
	if err != nil {
		t.Fatalf("attack: %v", err)
	}
	res := raw.(AttackResult)
	if res.Attempts != 0 {
		t.Fatalf("empty cell performed %d attempts", res.Attempts)
	}
}

func TestRestrictedSelectiveAttack_BudgetSharedAcrossWindow(t *testing.T) {
	atk := attacker("atk", Position{Row: 3, Col: 3})
	atk.SimultaneousAttacks = 2
	near := victim("near", Position{Row: 3, Col: 4})
	fx := newAttackFixture(t, map[string]*Agent{"atk": atk, "near": near})
	actor := NewRestrictedSelectiveAttackActor(fx.agents, fx.health, fx.vision, huntMapping(), true, testRNG(1))

	side := 2*atk.AttackRange + 1
	idx := (0+atk.AttackRange)*side + (1 + atk.AttackRange)
	// Two entries aimed at the same cell; entry values are 1-based.
	raw, err := actor.ProcessAction(atk, []int{idx + 1, idx + 1})
	if err != nil {
		t.Fatalf("attack: %v", err)
	}
	res := raw.(AttackResult)
	if res.Attempts != 2 {
		t.Fatalf("attempts=%d, want the full budget of 2", res.Attempts)
	}
	if len(res.Hits) != 2 {
		t.Fatalf("hits=%d, want 2 with stacking on", len(res.Hits))
	}
}

func TestRestrictedSelectiveAttack_AttemptsNeverExceedBudget(t *testing.T) {
	atk := attacker("atk", Position{Row: 3, Col: 3})
	left := victim("left", Position{Row: 3, Col: 2})
	right := victim("right", Position{Row: 3, Col: 4})
	fx := newAttackFixture(t, map[string]*Agent{"atk": atk, "left": left, "right": right})
	actor := NewRestrictedSelectiveAttackActor(fx.agents, fx.health, fx.vision, huntMapping(), false, testRNG(1))

	// Budget is 1 even though two occupied cells sit in the window: the action
	// has exactly one entry.
	side := 2*atk.AttackRange + 1
	idx := (0+atk.AttackRange)*side + (-1 + atk.AttackRange)
	raw, err := actor.ProcessAction(atk, []int{idx + 1})
	if err != nil {
		t.Fatalf("attack: %v", err)
	}
	res := raw.(AttackResult)
	if res.Attempts != 1 {
		t.Fatalf("attempts=%d, want at most the budget of 1", res.Attempts)
	}
	if len(res.Hits) != 1 || res.Hits[0].ID != "left" {
		t.Fatalf("expected the named cell's occupant, got %v", res.Hits)
	}
}

func TestRestrictedSelectiveAttack_ZeroEntryIsNoOp(t *testing.T) {
	atk := attacker("atk", Position{Row: 3, Col: 3})
	near := victim("near", Position{Row: 3, Col: 4})
	fx := newAttackFixture(t, map[string]*Agent{"atk": atk, "near": near})
	actor := NewRestrictedSelectiveAttackActor(fx.agents, fx.health, fx.vision, huntMapping(), false, testRNG(1))

	raw, err := actor.ProcessAction(atk, []int{0})
	if err != nil {
		t.Fatalf("attack: %v", err)
	}
	res := raw.(AttackResult)
	if res.Attempts != 0 {
		t.Fatal("the zero entry must not attack")
	}
}

func TestRestrictedSelectiveAttack_RejectsWrongArity(t *testing.T) {
	atk := attacker("atk", Position{Row: 3, Col: 3})
	fx := newAttackFixture(t, map[string]*Agent{"atk": atk})
	actor := NewRestrictedSelectiveAttackActor(fx.agents, fx.health, fx.vision, huntMapping(), false, testRNG(1))

	if _, err := actor.ProcessAction(atk, []int{0, 0}); err == nil {
		t.Fatal("entry count must match simultaneous attacks")
	}
}
