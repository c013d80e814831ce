package arena

import (
	"fmt"
	"math/rand"
	"sort"
	"strconv"
)

// AttackMapping records, per encoding, the set of encodings it may attack.
// Distinct from the grid's overlap compatibility, and directional like it.
type AttackMapping map[int]map[int]bool

// Permits reports whether attacker encoding a may attack target encoding b.
func (m AttackMapping) Permits(a, b int) bool {
	return m[a][b]
}

// Targets returns the encodings attackable by encoding a, sorted.
func (m AttackMapping) Targets(a int) []int {
	out := make([]int, 0, len(m[a]))
	for enc := range m[a] {
		out = append(out, enc)
	}
	sort.Ints(out)
	return out
}

// AttackResult reports what one processed attack action did. It carries no
// state of its own; health mutations went through HealthState.
type AttackResult struct {
	Attempts int      // attempts actually performed
	Hits     []*Agent // targets struck, in attempt order
	Kills    []*Agent // targets whose health reached zero
}

// attackCore holds the candidate gating and attempt resolution shared by the
// four attack actor variants. Candidate pools are recomputed per attempt so a
// kill, or a shadow lifted by a killed blocker, takes effect before the next
// sample within the same action.
type attackCore struct {
	agents  map[string]*Agent
	health  *HealthState
	vision  *VisionMask
	mapping AttackMapping
	stacked bool
	rng     *rand.Rand
}

// eligible applies the shared candidate gates for attacker -> target.
func (c *attackCore) eligible(attacker, target *Agent, mask *Mask, hits map[string]int) bool {
	if target.ID == attacker.ID || !target.Active || !target.Placed || !target.Has(CapHealth) {
		return false
	}
	if !c.mapping.Permits(attacker.Encoding, target.Encoding) {
		return false
	}
	if Chebyshev(attacker.Position, target.Position) > attacker.AttackRange {
		return false
	}
	d := Displacement{
		DRow: target.Position.Row - attacker.Position.Row,
		DCol: target.Position.Col - attacker.Position.Col,
	}
	if mask.Obscured(d) {
		return false
	}
	if !c.stacked && hits[target.ID] > 0 {
		return false
	}
	return true
}

// candidates returns the eligible targets passing the extra filter, sorted by
// id so seeded episodes replay identically.
func (c *attackCore) candidates(attacker *Agent, hits map[string]int, filter func(*Agent) bool) []*Agent {
	mask := c.vision.Window(attacker, attacker.AttackRange)
	var pool []*Agent
	for _, target := range c.agents {
		if !c.eligible(attacker, target, mask, hits) {
			continue
		}
		if filter != nil && !filter(target) {
			continue
		}
		pool = append(pool, target)
	}
	sort.Slice(pool, func(i, j int) bool { return pool[i].ID < pool[j].ID })
	return pool
}

// attempt resolves one attack attempt against the pool. Returns false when no
// attempt could be performed (empty pool or no ammo). Ammo is spent per
// performed attempt regardless of the accuracy roll.
func (c *attackCore) attempt(attacker *Agent, pool []*Agent, hits map[string]int, res *AttackResult) bool {
	if len(pool) == 0 {
		return false
	}
	if attacker.Has(CapAmmo) {
		if attacker.Ammo <= 0 {
			return false
		}
		attacker.Ammo--
	}
	res.Attempts++
	target := pool[c.rng.Intn(len(pool))]
	if c.rng.Float64() >= attacker.AttackAccuracy {
		return true
	}
	hits[target.ID]++
	res.Hits = append(res.Hits, target)
	if c.health.ApplyDamage(target, attacker.AttackStrength) {
		res.Kills = append(res.Kills, target)
	}
	return true
}

func (c *attackCore) ready(attacker *Agent) bool {
	return attacker.Active && attacker.Placed
}

// BinaryAttackActor's action is an attempt count in [0,simultaneous_attacks].
// Each attempt samples uniformly from the freshly recomputed candidate set.
type BinaryAttackActor struct {
	attackCore
}

// NewBinaryAttackActor creates the binary attack variant.
func NewBinaryAttackActor(agents map[string]*Agent, health *HealthState, vision *VisionMask,
	mapping AttackMapping, stacked bool, rng *rand.Rand) *BinaryAttackActor {
	return &BinaryAttackActor{attackCore{agents, health, vision, mapping, stacked, rng}}
}

func (a *BinaryAttackActor) Key() string { return "attack" }

func (a *BinaryAttackActor) Supports(ag *Agent) bool { return ag.Has(CapAttack) }

func (a *BinaryAttackActor) Space(ag *Agent) Space {
	return Discrete{N: ag.SimultaneousAttacks + 1}
}

func (a *BinaryAttackActor) ProcessAction(ag *Agent, action any) (any, error) {
	count, ok := action.(int)
	if !ok || count < 0 || count > ag.SimultaneousAttacks {
		return AttackResult{}, fmt.Errorf(
			"binary attack action for %s must be in [0,%d], got %v", ag.ID, ag.SimultaneousAttacks, action)
	}
	var res AttackResult
	if !a.ready(ag) {
		return res, nil
	}
	hits := map[string]int{}
	for i := 0; i < count; i++ {
		a.attempt(ag, a.candidates(ag, hits, nil), hits, &res)
	}
	return res, nil
}

// EncodingBasedAttackActor's action is an attempt count per attackable
// encoding. The candidate pool is filtered by encoding before sampling, and
// the stacking rule applies within each encoding-scoped pool.
type EncodingBasedAttackActor struct {
	attackCore
}

// NewEncodingBasedAttackActor creates the encoding-based attack variant.
func NewEncodingBasedAttackActor(agents map[string]*Agent, health *HealthState, vision *VisionMask,
	mapping AttackMapping, stacked bool, rng *rand.Rand) *EncodingBasedAttackActor {
	return &EncodingBasedAttackActor{attackCore{agents, health, vision, mapping, stacked, rng}}
}

func (a *EncodingBasedAttackActor) Key() string { return "attack" }

func (a *EncodingBasedAttackActor) Supports(ag *Agent) bool { return ag.Has(CapAttack) }

func (a *EncodingBasedAttackActor) Space(ag *Agent) Space {
	subs := make(map[string]Space)
	for _, enc := range a.mapping.Targets(ag.Encoding) {
		subs[strconv.Itoa(enc)] = Discrete{N: ag.SimultaneousAttacks + 1}
	}
	return NewDictSpace(subs)
}

func (a *EncodingBasedAttackActor) ProcessAction(ag *Agent, action any) (any, error) {
	point, ok := action.(map[string]any)
	if !ok {
		return AttackResult{}, fmt.Errorf(
			"encoding attack action for %s must be a dict point, got %T", ag.ID, action)
	}
	counts := make(map[int]int, len(point))
	for key, raw := range point {
		enc, err := strconv.Atoi(key)
		if err != nil || !a.mapping.Permits(ag.Encoding, enc) {
			return AttackResult{}, fmt.Errorf("encoding attack for %s: %q is not an attackable encoding", ag.ID, key)
		}
		count, ok := raw.(int)
		if !ok || count < 0 || count > ag.SimultaneousAttacks {
			return AttackResult{}, fmt.Errorf(
				"encoding attack for %s: count for encoding %d must be in [0,%d], got %v",
				ag.ID, enc, ag.SimultaneousAttacks, raw)
		}
		counts[enc] = count
	}
	var res AttackResult
	if !a.ready(ag) {
		return res, nil
	}
	for _, enc := range a.mapping.Targets(ag.Encoding) {
		hits := map[string]int{}
		for i := 0; i < counts[enc]; i++ {
			pool := a.candidates(ag, hits, func(t *Agent) bool { return t.Encoding == enc })
			a.attempt(ag, pool, hits, &res)
		}
	}
	return res, nil
}

// SelectiveAttackActor's action is an attempt count per cell of the local
// attack-range window, raster order, each capped at simultaneous_attacks.
type SelectiveAttackActor struct {
	attackCore
}

// NewSelectiveAttackActor creates the selective attack variant.
func NewSelectiveAttackActor(agents map[string]*Agent, health *HealthState, vision *VisionMask,
	mapping AttackMapping, stacked bool, rng *rand.Rand) *SelectiveAttackActor {
	return &SelectiveAttackActor{attackCore{agents, health, vision, mapping, stacked, rng}}
}

func (a *SelectiveAttackActor) Key() string { return "attack" }

func (a *SelectiveAttackActor) Supports(ag *Agent) bool { return ag.Has(CapAttack) }

func (a *SelectiveAttackActor) Space(ag *Agent) Space {
	side := 2*ag.AttackRange + 1
	return UniformBox(0, ag.SimultaneousAttacks, side*side)
}

func (a *SelectiveAttackActor) ProcessAction(ag *Agent, action any) (any, error) {
	side := 2*ag.AttackRange + 1
	counts, ok := action.([]int)
	if !ok || len(counts) != side*side {
		return AttackResult{}, fmt.Errorf(
			"selective attack action for %s must have %d cells, got %v", ag.ID, side*side, action)
	}
	if !a.Space(ag).Contains(counts) {
		return AttackResult{}, fmt.Errorf(
			"selective attack action for %s has a count outside [0,%d]", ag.ID, ag.SimultaneousAttacks)
	}
	var res AttackResult
	if !a.ready(ag) {
		return res, nil
	}
	for idx, count := range counts {
		a.attackCell(ag, idx, count, &res)
	}
	return res, nil
}

// attackCell resolves count attempts against the window cell at raster index
// idx. Attempts beyond the distinct eligible candidates on the cell are
// wasted when stacking is disallowed.
func (c *attackCore) attackCell(ag *Agent, idx, count int, res *AttackResult) {
	side := 2*ag.AttackRange + 1
	cell := Position{
		Row: ag.Position.Row + idx/side - ag.AttackRange,
		Col: ag.Position.Col + idx%side - ag.AttackRange,
	}
	hits := map[string]int{}
	for i := 0; i < count; i++ {
		pool := c.candidates(ag, hits, func(t *Agent) bool { return t.Position == cell })
		c.attempt(ag, pool, hits, res)
	}
}

// RestrictedSelectiveAttackActor's action is an ordered list of
// simultaneous_attacks entries, each a no-op marker (0) or a 1-based raster
// index into the local attack-range window. Unlike the selective variant,
// the attempt budget is shared across the whole window.
type RestrictedSelectiveAttackActor struct {
	attackCore
}

// NewRestrictedSelectiveAttackActor creates the restricted selective variant.
func NewRestrictedSelectiveAttackActor(agents map[string]*Agent, health *HealthState, vision *VisionMask,
	mapping AttackMapping, stacked bool, rng *rand.Rand) *RestrictedSelectiveAttackActor {
	return &RestrictedSelectiveAttackActor{attackCore{agents, health, vision, mapping, stacked, rng}}
}

func (a *RestrictedSelectiveAttackActor) Key() string { return "attack" }

func (a *RestrictedSelectiveAttackActor) Supports(ag *Agent) bool { return ag.Has(CapAttack) }

func (a *RestrictedSelectiveAttackActor) Space(ag *Agent) Space {
	side := 2*ag.AttackRange + 1
	return UniformBox(0, side*side, ag.SimultaneousAttacks)
}

func (a *RestrictedSelectiveAttackActor) ProcessAction(ag *Agent, action any) (any, error) {
	entries, ok := action.([]int)
	if !ok || len(entries) != ag.SimultaneousAttacks {
		return AttackResult{}, fmt.Errorf(
			"restricted selective attack action for %s must have %d entries, got %v",
			ag.ID, ag.SimultaneousAttacks, action)
	}
	if !a.Space(ag).Contains(entries) {
		side := 2*ag.AttackRange + 1
		return AttackResult{}, fmt.Errorf(
			"restricted selective attack action for %s has an entry outside [0,%d]", ag.ID, side*side)
	}
	var res AttackResult
	if !a.ready(ag) {
		return res, nil
	}
	// hits are scoped per cell, mirroring the selective variant's per-cell
	// target resolution.
	hitsByCell := map[int]map[string]int{}
	side := 2*ag.AttackRange + 1
	for _, entry := range entries {
		if entry == 0 {
			continue
		}
		idx := entry - 1
		cell := Position{
			Row: ag.Position.Row + idx/side - ag.AttackRange,
			Col: ag.Position.Col + idx%side - ag.AttackRange,
		}
		hits := hitsByCell[idx]
		if hits == nil {
			hits = map[string]int{}
			hitsByCell[idx] = hits
		}
		pool := a.candidates(ag, hits, func(t *Agent) bool { return t.Position == cell })
		a.attempt(ag, pool, hits, &res)
	}
	return res, nil
}
