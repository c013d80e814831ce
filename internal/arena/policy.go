package arena

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Heuristic policies drive scripted agents that act alongside learning
// agents. Rule conditions are small expressions compiled once and evaluated
// against an observation summary each turn, first match wins.

// PolicyEnv is the observation summary a rule condition evaluates against.
type PolicyEnv struct {
	Tick   int
	Row    int
	Col    int
	Health float64
	Ammo   int

	EnemyVisible     bool
	VisibleEnemies   int
	NearestEnemyDRow int
	NearestEnemyDCol int
	NearestEnemyDist int
}

// PolicyRule pairs a condition expression with an action builder. When the
// condition holds, Then produces the agent's actions keyed by actor channel.
type PolicyRule struct {
	Name string
	When string // expression over PolicyEnv fields, must yield a bool
	Then func(env PolicyEnv) map[string]any
}

type compiledRule struct {
	PolicyRule
	program *vm.Program
}

// HeuristicPolicy evaluates its rules in declaration order and returns the
// first matching rule's actions.
type HeuristicPolicy struct {
	rules []compiledRule
}

// NewHeuristicPolicy compiles every rule condition. A condition that does not
// compile to a boolean is a configuration bug and fails construction.
func NewHeuristicPolicy(rules []PolicyRule) (*HeuristicPolicy, error) {
	p := &HeuristicPolicy{rules: make([]compiledRule, 0, len(rules))}
	for _, r := range rules {
		program, err := expr.Compile(r.When, expr.Env(PolicyEnv{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compile rule %q: %w", r.Name, err)
		}
		p.rules = append(p.rules, compiledRule{PolicyRule: r, program: program})
	}
	return p, nil
}

// ComputeAction returns the actions of the first rule whose condition holds,
// or false when no rule fires.
func (p *HeuristicPolicy) ComputeAction(env PolicyEnv) (map[string]any, string, error) {
	for _, r := range p.rules {
		result, err := vm.Run(r.program, env)
		if err != nil {
			return nil, "", fmt.Errorf("rule %q: %w", r.Name, err)
		}
		if match, ok := result.(bool); ok && match {
			return r.Then(env), r.Name, nil
		}
	}
	return nil, "", nil
}

// BuildPolicyEnv summarizes the agent's surroundings: the nearest visible
// enemy under the attack mapping, honoring the same masking geometry the
// observers use. Ties on distance break by agent id so seeded episodes
// replay identically.
func BuildPolicyEnv(s *Simulator, agent *Agent, mapping AttackMapping) PolicyEnv {
	env := PolicyEnv{
		Tick:   s.Tick(),
		Row:    agent.Position.Row,
		Col:    agent.Position.Col,
		Health: agent.Health,
		Ammo:   agent.Ammo,
	}
	if !agent.Active || !agent.Placed {
		return env
	}
	mask := s.vision.Window(agent, agent.ViewRange)
	nearestID := ""
	for _, id := range sortedIDs(s.agents) {
		other := s.agents[id]
		if other.ID == agent.ID || !other.Active || !other.Placed {
			continue
		}
		if !mapping.Permits(agent.Encoding, other.Encoding) {
			continue
		}
		dist := Chebyshev(agent.Position, other.Position)
		if dist > agent.ViewRange {
			continue
		}
		d := Displacement{
			DRow: other.Position.Row - agent.Position.Row,
			DCol: other.Position.Col - agent.Position.Col,
		}
		if mask.Obscured(d) {
			continue
		}
		env.VisibleEnemies++
		if nearestID == "" || dist < env.NearestEnemyDist {
			nearestID = other.ID
			env.NearestEnemyDRow = d.DRow
			env.NearestEnemyDCol = d.DCol
			env.NearestEnemyDist = dist
		}
	}
	env.EnemyVisible = env.VisibleEnemies > 0
	return env
}
