package main

import (
	"testing"

	"gridarena/internal/arena"
)

func TestRunBattle_SameSeedIsReproducible(t *testing.T) {
	a, err := runBattle(1, 42, 30, "scripted")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	b, err := runBattle(1, 42, 30, "scripted")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if a.attackAttempts != b.attackAttempts || a.kills != b.kills ||
		a.redSurvivors != b.redSurvivors || a.blueSurvivors != b.blueSurvivors {
		t.Fatalf("seeded runs diverged: %+v vs %+v", a, b)
	}
}

func TestRunBattle_RandomPolicyCompletes(t *testing.T) {
	stats, err := runBattle(1, 7, 10, "random")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if stats.ticksRun == 0 {
		t.Fatal("expected at least one tick to run")
	}
}

func TestSurvivors_CountsActiveFightersOnly(t *testing.T) {
	cfg := arena.DefaultTeamBattle
	cfg.Seed = 3
	sim, err := arena.NewTeamBattle(cfg)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := sim.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}

	red, blue := survivors(sim)
	if red != cfg.PerTeam || blue != cfg.PerTeam {
		t.Fatalf("survivors red=%d blue=%d, want %d each", red, blue, cfg.PerTeam)
	}
}

func TestFirstTick_EmptyLogIsMinusOne(t *testing.T) {
	if got := firstTick(nil); got != -1 {
		t.Fatalf("firstTick(nil) = %d, want -1", got)
	}
	entries := []arena.SimLogEntry{{Tick: 12}, {Tick: 30}}
	if got := firstTick(entries); got != 12 {
		t.Fatalf("firstTick = %d, want 12", got)
	}
}

func TestAvgTickString(t *testing.T) {
	if got := avgTickString(nil); got != "n/a" {
		t.Fatalf("avgTickString(nil) = %q", got)
	}
	if got := avgTickString([]int{10, 20}); got != "15.0" {
		t.Fatalf("avgTickString = %q, want 15.0", got)
	}
}
