package arena

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ObjectRegistry maps grid-file symbols to agent factories. The factory
// argument is the running count of agents built so far, used to mint ids.
type ObjectRegistry map[string]func(n int) *Agent

// reservedSymbols are grid-file symbols that always mean an empty cell and
// may not be registered.
var reservedSymbols = map[string]bool{"": true, ".": true, "_": true, "0": true}

// MappingFromLists converts the list form used by scenario files into the
// set-backed mapping used by the engine.
func MappingFromLists(lists map[int][]int) map[int]map[int]bool {
	out := make(map[int]map[int]bool, len(lists))
	for enc, targets := range lists {
		set := make(map[int]bool, len(targets))
		for _, t := range targets {
			set[t] = true
		}
		out[enc] = set
	}
	return out
}

// BuildSim assembles a simulator over a fresh rows x cols grid.
func BuildSim(rows, cols int, agents map[string]*Agent, overlap OverlapMapping, opts ...SimOption) (*Simulator, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("grid extent must be positive, got %dx%d", rows, cols)
	}
	if agents == nil {
		agents = map[string]*Agent{}
	}
	return NewSimulator(NewGrid(rows, cols, overlap), agents, opts...)
}

// BuildSimFromGrid assembles a simulator from an existing grid snapshot. The
// occupants become agents with their current cells as initial positions. On
// id conflicts, snapshot-derived agents win over supplied extras.
func BuildSimFromGrid(g *Grid, extra map[string]*Agent, opts ...SimOption) (*Simulator, error) {
	agents := map[string]*Agent{}
	for id, a := range extra {
		agents[id] = a
	}
	for r := 0; r < g.Rows(); r++ {
		for c := 0; c < g.Cols(); c++ {
			for _, occ := range g.Occupants(Position{Row: r, Col: c}) {
				if occ.InitialPosition != nil && *occ.InitialPosition != (Position{Row: r, Col: c}) {
					return nil, fmt.Errorf(
						"agent %s declares initial position (%d,%d) but occupies (%d,%d)",
						occ.ID, occ.InitialPosition.Row, occ.InitialPosition.Col, r, c)
				}
				occ.InitialPosition = Pos(r, c)
				agents[occ.ID] = occ
			}
		}
	}
	fresh := NewGrid(g.Rows(), g.Cols(), g.Overlap())
	return NewSimulator(fresh, agents, opts...)
}

// BuildSimFromArray assembles a simulator from a 2D symbol array and a
// symbol -> agent-factory registry. Reserved symbols mean empty cells;
// symbols missing from the registry are skipped. On id conflicts,
// array-derived agents win over supplied extras.
func BuildSimFromArray(symbols [][]string, reg ObjectRegistry, extra map[string]*Agent,
	overlap OverlapMapping, opts ...SimOption) (*Simulator, error) {
	if len(symbols) == 0 || len(symbols[0]) == 0 {
		return nil, fmt.Errorf("symbol array must be non-empty")
	}
	for sym := range reg {
		if reservedSymbols[sym] {
			return nil, fmt.Errorf("symbol %q is reserved for empty cells", sym)
		}
	}
	cols := len(symbols[0])
	agents := map[string]*Agent{}
	for id, a := range extra {
		agents[id] = a
	}
	n := 0
	for r, row := range symbols {
		if len(row) != cols {
			return nil, fmt.Errorf("row %d has %d symbols, want %d", r, len(row), cols)
		}
		for c, sym := range row {
			if reservedSymbols[sym] {
				continue
			}
			factory, ok := reg[sym]
			if !ok {
				continue
			}
			agent := factory(n)
			n++
			agent.InitialPosition = Pos(r, c)
			agents[agent.ID] = agent
		}
	}
	return BuildSim(len(symbols), cols, agents, overlap, opts...)
}

// BuildSimFromFile assembles a simulator from a text file of
// whitespace-separated symbols, one grid row per line.
func BuildSimFromFile(path string, reg ObjectRegistry, extra map[string]*Agent,
	overlap OverlapMapping, opts ...SimOption) (*Simulator, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read grid file: %w", err)
	}
	var symbols [][]string
	for _, line := range strings.Split(strings.TrimSpace(string(raw)), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		symbols = append(symbols, strings.Fields(line))
	}
	return BuildSimFromArray(symbols, reg, extra, overlap, opts...)
}

// Scenario is the YAML form of a declaratively assembled simulation.
type Scenario struct {
	// Grid rows as whitespace-separated symbol strings.
	Grid []string `yaml:"grid"`
	// Overlap and Attack map encodings to permitted encodings, list form.
	Overlap map[int][]int `yaml:"overlap"`
	Attack  map[int][]int `yaml:"attack"`

	Seed    int64 `yaml:"seed"`
	Verbose bool  `yaml:"verbose"`

	// Component names resolved through the component registry.
	MoveActor      string   `yaml:"move_actor"`
	MoveMetric     string   `yaml:"move_metric"` // chebyshev (default) or manhattan
	AttackActor    string   `yaml:"attack_actor"`
	StackedAttacks bool     `yaml:"stacked_attacks"`
	Observers      []string `yaml:"observers"`

	// Wrapper name -> action channel, e.g. ravel: move.
	Wrappers map[string]string `yaml:"wrappers"`
}

// LoadScenario parses a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var sc Scenario
	if err := yaml.Unmarshal(raw, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	return &sc, nil
}

// Build assembles the simulator the scenario describes, resolving component
// names through the registry.
func (sc *Scenario) Build(components *ComponentRegistry, objects ObjectRegistry) (*Simulator, error) {
	symbols := make([][]string, 0, len(sc.Grid))
	for _, row := range sc.Grid {
		symbols = append(symbols, strings.Fields(row))
	}
	cfg := ActorConfig{
		Mapping: AttackMapping(MappingFromLists(sc.Attack)),
		Stacked: sc.StackedAttacks,
	}
	switch sc.MoveMetric {
	case "", "chebyshev":
	case "manhattan":
		cfg.Metric = MetricManhattan
	default:
		return nil, fmt.Errorf("unknown move metric %q (chebyshev or manhattan)", sc.MoveMetric)
	}
	opts := []SimOption{WithSeed(sc.Seed), WithVerboseLog(sc.Verbose)}
	if sc.MoveActor != "" {
		opt, err := components.Actor(sc.MoveActor, cfg)
		if err != nil {
			return nil, err
		}
		opts = append(opts, opt)
	}
	if sc.AttackActor != "" {
		opt, err := components.Actor(sc.AttackActor, cfg)
		if err != nil {
			return nil, err
		}
		opts = append(opts, opt)
	}
	for _, name := range sc.Observers {
		opt, err := components.Observer(name)
		if err != nil {
			return nil, err
		}
		opts = append(opts, opt)
	}
	for name, key := range sc.Wrappers {
		opt, err := components.Wrapper(name, key)
		if err != nil {
			return nil, err
		}
		opts = append(opts, opt)
	}
	return BuildSimFromArray(symbols, objects, nil, OverlapMapping(MappingFromLists(sc.Overlap)), opts...)
}
