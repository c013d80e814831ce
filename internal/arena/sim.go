package arena

import (
	"fmt"
	"math/rand"
)

// AgentAction carries one agent's action signals for a step, keyed by actor
// channel. The caller supplies the processing order by ordering the slice.
type AgentAction struct {
	AgentID string
	Actions map[string]any
}

// Simulator wires the state components, actors and observers around one grid
// and one shared agent set. Single-threaded and turn-based: each processed
// action is fully applied or fully rejected before the next one runs, so
// later actions in the same step observe updated grid and health state.
type Simulator struct {
	grid   *Grid
	agents map[string]*Agent

	rng      *rand.Rand
	position *PositionState
	health   *HealthState
	vision   *VisionMask

	actors    []Actor
	observers []Observer

	log    *SimLog
	report *Reporter
	tick   int
}

// simOptionKind controls the pass in which an option is applied.
type simOptionKind int

const (
	simOptInfra     simOptionKind = iota // seed, logging — applied first
	simOptComponent                      // actors and observers — applied after state exists
	simOptWrap                           // action-space wrappers — applied last
)

// SimOption is a builder function applied to a Simulator during construction.
type SimOption struct {
	kind simOptionKind
	fn   func(*Simulator) error
}

// WithSeed sets the RNG seed for deterministic episodes.
func WithSeed(seed int64) SimOption {
	return SimOption{simOptInfra, func(s *Simulator) error {
		s.rng = rand.New(rand.NewSource(seed)) // #nosec G404 -- simulation only
		return nil
	}}
}

// WithVerboseLog enables per-tick verbose logging.
func WithVerboseLog(verbose bool) SimOption {
	return SimOption{simOptInfra, func(s *Simulator) error {
		s.log = NewSimLog(verbose)
		return nil
	}}
}

// WithMoveActor registers a displacement move actor under the given metric.
func WithMoveActor(metric Metric) SimOption {
	return SimOption{simOptComponent, func(s *Simulator) error {
		return s.addActor(NewMoveActor(s.position, metric))
	}}
}

// WithCrossMoveActor registers the cardinal-step move actor.
func WithCrossMoveActor() SimOption {
	return SimOption{simOptComponent, func(s *Simulator) error {
		return s.addActor(NewCrossMoveActor(s.position))
	}}
}

// AttackScheme selects one of the four attack actor variants.
type AttackScheme int

const (
	AttackBinary AttackScheme = iota
	AttackEncodingBased
	AttackSelective
	AttackRestrictedSelective
)

// WithAttackActor registers an attack actor of the given scheme.
func WithAttackActor(scheme AttackScheme, mapping AttackMapping, stacked bool) SimOption {
	return SimOption{simOptComponent, func(s *Simulator) error {
		var actor Actor
		switch scheme {
		case AttackBinary:
			actor = NewBinaryAttackActor(s.agents, s.health, s.vision, mapping, stacked, s.rng)
		case AttackEncodingBased:
			actor = NewEncodingBasedAttackActor(s.agents, s.health, s.vision, mapping, stacked, s.rng)
		case AttackSelective:
			actor = NewSelectiveAttackActor(s.agents, s.health, s.vision, mapping, stacked, s.rng)
		case AttackRestrictedSelective:
			actor = NewRestrictedSelectiveAttackActor(s.agents, s.health, s.vision, mapping, stacked, s.rng)
		default:
			return fmt.Errorf("unknown attack scheme %d", scheme)
		}
		return s.addActor(actor)
	}}
}

// WithPositionCenteredObserver registers the centered-window observer.
func WithPositionCenteredObserver() SimOption {
	return SimOption{simOptComponent, func(s *Simulator) error {
		return s.addObserver(NewPositionCenteredObserver(s.grid, s.agents, s.vision))
	}}
}

// WithAbsoluteObserver registers the whole-grid observer.
func WithAbsoluteObserver() SimOption {
	return SimOption{simOptComponent, func(s *Simulator) error {
		return s.addObserver(NewAbsoluteGridObserver(s.grid, s.agents, s.vision))
	}}
}

// WithStackedObserver registers the per-encoding channel observer.
func WithStackedObserver() SimOption {
	return SimOption{simOptComponent, func(s *Simulator) error {
		return s.addObserver(NewStackedObserver(s.grid, s.agents, s.vision))
	}}
}

// WithRavelledActions wraps the actor on the given channel with the ravel
// bijection so its action space becomes a flat Discrete.
func WithRavelledActions(key string) SimOption {
	return SimOption{simOptWrap, func(s *Simulator) error {
		return s.wrapActor(key, func(inner Actor) Actor { return NewRavelActionWrapper(inner) })
	}}
}

// WithExclusiveChannelActions wraps the actor on the given channel with the
// exclusive-channel bijection.
func WithExclusiveChannelActions(key string) SimOption {
	return SimOption{simOptWrap, func(s *Simulator) error {
		return s.wrapActor(key, func(inner Actor) Actor { return NewExclusiveChannelActionWrapper(inner) })
	}}
}

// NewSimulator assembles a simulator over the grid and shared agent records.
func NewSimulator(grid *Grid, agents map[string]*Agent, opts ...SimOption) (*Simulator, error) {
	for _, a := range agents {
		if err := a.Validate(); err != nil {
			return nil, err
		}
	}
	s := &Simulator{
		grid:   grid,
		agents: agents,
		rng:    rand.New(rand.NewSource(1)), // #nosec G404 -- simulation only
		log:    NewSimLog(false),
		report: NewReporter(),
	}
	for _, opt := range opts {
		if opt.kind != simOptInfra {
			continue
		}
		if err := opt.fn(s); err != nil {
			return nil, err
		}
	}
	s.position = NewPositionState(grid, agents, s.rng)
	s.health = NewHealthState(grid, agents, s.rng)
	s.vision = NewVisionMask(grid, agents)
	for _, kind := range []simOptionKind{simOptComponent, simOptWrap} {
		for _, opt := range opts {
			if opt.kind != kind {
				continue
			}
			if err := opt.fn(s); err != nil {
				return nil, err
			}
		}
	}
	return s, nil
}

func (s *Simulator) addActor(actor Actor) error {
	for _, existing := range s.actors {
		if existing.Key() == actor.Key() {
			return fmt.Errorf("actor channel %q registered twice", actor.Key())
		}
	}
	s.actors = append(s.actors, actor)
	return nil
}

func (s *Simulator) addObserver(obs Observer) error {
	for _, existing := range s.observers {
		if existing.Key() == obs.Key() {
			return fmt.Errorf("observer channel %q registered twice", obs.Key())
		}
	}
	s.observers = append(s.observers, obs)
	return nil
}

func (s *Simulator) wrapActor(key string, wrap func(Actor) Actor) error {
	for i, actor := range s.actors {
		if actor.Key() == key {
			s.actors[i] = wrap(actor)
			return nil
		}
	}
	return fmt.Errorf("no actor on channel %q to wrap", key)
}

// Reset starts a new episode: the grid is cleared and every state component
// re-initializes the attribute slice it owns.
func (s *Simulator) Reset() error {
	s.tick = 0
	s.health.Reset()
	if err := s.position.Reset(); err != nil {
		return err
	}
	s.report.ResetEpisode()
	s.log.Add(s.tick, "--", "reset", "episode", fmt.Sprintf("agents=%d", len(s.agents)), float64(len(s.agents)))
	return nil
}

// Step processes one action per agent in the supplied order. A malformed
// action aborts the step with an error; ordinary failures are tallied and the
// step continues.
func (s *Simulator) Step(actions []AgentAction) error {
	s.tick++
	for _, aa := range actions {
		agent, ok := s.agents[aa.AgentID]
		if !ok {
			return fmt.Errorf("step: unknown agent %q", aa.AgentID)
		}
		for _, actor := range s.actors {
			action, present := aa.Actions[actor.Key()]
			if !present {
				continue
			}
			if !actor.Supports(agent) {
				return fmt.Errorf("step: agent %s does not support channel %q", agent.ID, actor.Key())
			}
			result, err := actor.ProcessAction(agent, action)
			if err != nil {
				return fmt.Errorf("step: %w", err)
			}
			s.record(agent, actor.Key(), result)
		}
	}
	return nil
}

func (s *Simulator) record(agent *Agent, key string, result any) {
	switch res := result.(type) {
	case bool:
		s.report.recordMove(res)
		s.log.AddVerbose(s.tick, agent.ID, "move", key,
			fmt.Sprintf("to (%d,%d) ok=%v", agent.Position.Row, agent.Position.Col, res), 0)
	case AttackResult:
		s.report.recordAttack(res)
		for _, hit := range res.Hits {
			s.log.Add(s.tick, agent.ID, "attack", "hit",
				fmt.Sprintf("%s health=%.2f", hit.ID, hit.Health), hit.Health)
		}
		for _, kill := range res.Kills {
			s.log.Add(s.tick, agent.ID, "attack", "kill", kill.ID, 0)
		}
	}
}

// Observe builds the agent's observation tensors keyed by observer channel.
func (s *Simulator) Observe(agentID string) (map[string]any, error) {
	agent, ok := s.agents[agentID]
	if !ok {
		return nil, fmt.Errorf("observe: unknown agent %q", agentID)
	}
	out := make(map[string]any)
	for _, obs := range s.observers {
		if !obs.Supports(agent) {
			continue
		}
		tensor, err := obs.Observe(agent)
		if err != nil {
			return nil, err
		}
		out[obs.Key()] = tensor
	}
	return out, nil
}

// ActionSpaces returns the agent's declared action space per actor channel.
func (s *Simulator) ActionSpaces(agentID string) (map[string]Space, error) {
	agent, ok := s.agents[agentID]
	if !ok {
		return nil, fmt.Errorf("unknown agent %q", agentID)
	}
	out := make(map[string]Space)
	for _, actor := range s.actors {
		if actor.Supports(agent) {
			out[actor.Key()] = actor.Space(agent)
		}
	}
	return out, nil
}

// NullActions returns the designated no-op action per channel for the agent.
func (s *Simulator) NullActions(agentID string) (map[string]any, error) {
	spaces, err := s.ActionSpaces(agentID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(spaces))
	for key, space := range spaces {
		out[key] = space.Null()
	}
	return out, nil
}

// Grid returns the occupancy store.
func (s *Simulator) Grid() *Grid { return s.grid }

// Agents returns the shared agent records.
func (s *Simulator) Agents() map[string]*Agent { return s.agents }

// Agent returns one agent record by id, or nil.
func (s *Simulator) Agent(id string) *Agent { return s.agents[id] }

// Tick returns the number of steps processed since the last reset.
func (s *Simulator) Tick() int { return s.tick }

// Log returns the episode log.
func (s *Simulator) Log() *SimLog { return s.log }

// Report returns the episode reporter.
func (s *Simulator) Report() *Reporter { return s.report }

// RNG returns the simulator's random source, for callers sampling policies.
func (s *Simulator) RNG() *rand.Rand { return s.rng }
