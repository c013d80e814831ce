package arena

import "fmt"

// Team battle demo: two teams of fighters that move, attack each other, and
// cannot attack their own encoding, on a grid scattered with blocking walls.
// Used by the viewer and the headless runner, and handy for scenario tests.

// TeamBattleConfig sizes the demo battle.
type TeamBattleConfig struct {
	Rows, Cols int
	PerTeam    int
	Walls      int
	Seed       int64
	Verbose    bool
}

// DefaultTeamBattle is the configuration both commands start from.
var DefaultTeamBattle = TeamBattleConfig{
	Rows:    12,
	Cols:    16,
	PerTeam: 4,
	Walls:   8,
	Seed:    42,
}

const (
	teamAEncoding = 1
	teamBEncoding = 2
	wallEncoding  = 3
)

// TeamBattleMapping is the attack relation of the demo: each team may attack
// only the other.
func TeamBattleMapping() AttackMapping {
	return AttackMapping(MappingFromLists(map[int][]int{
		teamAEncoding: {teamBEncoding},
		teamBEncoding: {teamAEncoding},
	}))
}

func teamFighter(id string, encoding int) *Agent {
	return &Agent{
		ID:                  id,
		Encoding:            encoding,
		Caps:                CapMove | CapHealth | CapAttack | CapObserve | CapAmmo,
		InitialHealth:       HealthValue(1),
		MoveRange:           1,
		ViewRange:           4,
		AttackRange:         2,
		AttackAccuracy:      0.8,
		AttackStrength:      0.4,
		SimultaneousAttacks: 1,
		Ammo:                40,
	}
}

func battleWall(id string) *Agent {
	return &Agent{
		ID:       id,
		Encoding: wallEncoding,
		Blocking: true,
	}
}

// TeamBattleObjects maps grid-file symbols to the demo agent types: A and B
// for the two teams, W for walls.
func TeamBattleObjects() ObjectRegistry {
	return ObjectRegistry{
		"A": func(n int) *Agent { return teamFighter(fmt.Sprintf("red%d", n), teamAEncoding) },
		"B": func(n int) *Agent { return teamFighter(fmt.Sprintf("blue%d", n), teamBEncoding) },
		"W": func(n int) *Agent { return battleWall(fmt.Sprintf("wall%d", n)) },
	}
}

// NewTeamBattle builds the demo simulator. Fighters place randomly; walls
// place randomly too and never share cells with anyone.
func NewTeamBattle(cfg TeamBattleConfig) (*Simulator, error) {
	agents := map[string]*Agent{}
	for i := 0; i < cfg.PerTeam; i++ {
		a := teamFighter(fmt.Sprintf("red%d", i), teamAEncoding)
		b := teamFighter(fmt.Sprintf("blue%d", i), teamBEncoding)
		agents[a.ID] = a
		agents[b.ID] = b
	}
	for i := 0; i < cfg.Walls; i++ {
		w := battleWall(fmt.Sprintf("wall%d", i))
		agents[w.ID] = w
	}
	// Nothing overlaps in the demo.
	overlap := OverlapMapping(MappingFromLists(map[int][]int{
		teamAEncoding: {},
		teamBEncoding: {},
		wallEncoding:  {},
	}))
	return BuildSim(cfg.Rows, cfg.Cols, agents, overlap,
		WithSeed(cfg.Seed),
		WithVerboseLog(cfg.Verbose),
		WithMoveActor(MetricChebyshev),
		WithAttackActor(AttackBinary, TeamBattleMapping(), false),
		WithPositionCenteredObserver(),
	)
}

// TeamBattlePolicy is the scripted behaviour the demo agents run: attack when
// an enemy is visible and ammo remains, close the distance on a sighting, and
// sweep toward the middle of the default grid until contact.
func TeamBattlePolicy() (*HeuristicPolicy, error) {
	centerRow := DefaultTeamBattle.Rows / 2
	centerCol := DefaultTeamBattle.Cols / 2
	return NewHeuristicPolicy([]PolicyRule{
		{
			Name: "engage",
			When: "EnemyVisible and Ammo > 0 and NearestEnemyDist <= 2",
			Then: func(env PolicyEnv) map[string]any {
				return map[string]any{"attack": 1, "move": []int{0, 0}}
			},
		},
		{
			Name: "advance",
			When: "EnemyVisible",
			Then: func(env PolicyEnv) map[string]any {
				return map[string]any{"move": []int{clampStep(env.NearestEnemyDRow), clampStep(env.NearestEnemyDCol)}}
			},
		},
		{
			Name: "sweep",
			When: "true",
			Then: func(env PolicyEnv) map[string]any {
				return map[string]any{"move": []int{clampStep(centerRow - env.Row), clampStep(centerCol - env.Col)}}
			},
		},
	})
}

// ScriptedStep assembles one step of actions from the policy, in sorted agent
// order, and processes it. Agents the policy has no rule for fall back to
// their null actions.
func ScriptedStep(s *Simulator, policy *HeuristicPolicy, mapping AttackMapping) error {
	var actions []AgentAction
	for _, id := range sortedIDs(s.agents) {
		agent := s.agents[id]
		if !agent.Active || !agent.Has(CapMove) {
			continue
		}
		act, _, err := policy.ComputeAction(BuildPolicyEnv(s, agent, mapping))
		if err != nil {
			return err
		}
		if act == nil {
			act, err = s.NullActions(id)
			if err != nil {
				return err
			}
		}
		actions = append(actions, AgentAction{AgentID: id, Actions: act})
	}
	return s.Step(actions)
}

// RandomStep samples every active agent's action spaces and processes the
// result, useful for soak runs with no scripted behaviour.
func RandomStep(s *Simulator) error {
	var actions []AgentAction
	for _, id := range sortedIDs(s.agents) {
		agent := s.agents[id]
		if !agent.Active || !agent.Has(CapMove) {
			continue
		}
		spaces, err := s.ActionSpaces(id)
		if err != nil {
			return err
		}
		act := make(map[string]any, len(spaces))
		for _, key := range sortedKeys(spaces) {
			act[key] = spaces[key].Sample(s.rng)
		}
		actions = append(actions, AgentAction{AgentID: id, Actions: act})
	}
	return s.Step(actions)
}

func clampStep(d int) int {
	if d > 0 {
		return 1
	}
	if d < 0 {
		return -1
	}
	return 0
}
