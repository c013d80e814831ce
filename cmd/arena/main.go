package main

import (
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/hajimehoshi/ebiten/v2"

	"gridarena/internal/arena"
	"gridarena/internal/render"
)

type config struct {
	WindowW  int    `env:"ARENA_WINDOW_W" envDefault:"1024"`
	WindowH  int    `env:"ARENA_WINDOW_H" envDefault:"768"`
	TPS      int    `env:"ARENA_TPS" envDefault:"60"`
	Seed     int64  `env:"ARENA_SEED" envDefault:"42"`
	Focus    string `env:"ARENA_FOCUS" envDefault:"red0"`
	Scenario string `env:"ARENA_SCENARIO"` // optional scenario YAML path
}

func main() {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		fatal("parse config", err)
	}

	sim, err := buildSim(cfg)
	if err != nil {
		fatal("build simulator", err)
	}
	policy, err := arena.TeamBattlePolicy()
	if err != nil {
		fatal("compile policy", err)
	}
	game, err := render.New(sim, policy, arena.TeamBattleMapping(), cfg.Focus)
	if err != nil {
		fatal("start episode", err)
	}

	ebiten.SetWindowTitle("Grid Arena")
	ebiten.SetWindowSize(cfg.WindowW, cfg.WindowH)
	ebiten.SetTPS(cfg.TPS)
	if err := ebiten.RunGame(game); err != nil {
		fatal("run viewer", err)
	}
}

func fatal(msg string, err error) {
	slog.Error(msg, "err", err)
	os.Exit(1)
}

func buildSim(cfg config) (*arena.Simulator, error) {
	if cfg.Scenario != "" {
		sc, err := arena.LoadScenario(cfg.Scenario)
		if err != nil {
			return nil, err
		}
		return sc.Build(arena.NewComponentRegistry(), arena.TeamBattleObjects())
	}
	battle := arena.DefaultTeamBattle
	battle.Seed = cfg.Seed
	return arena.NewTeamBattle(battle)
}
