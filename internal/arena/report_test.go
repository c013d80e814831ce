package arena

import (
	"strings"
	"testing"
)

func TestReporter_TalliesMovesAndAttacks(t *testing.T) {
	r := NewReporter()
	r.ResetEpisode()
	r.recordMove(true)
	r.recordMove(false)
	r.recordAttack(AttackResult{
		Attempts: 2,
		Hits:     []*Agent{{ID: "v", Encoding: 2}},
		Kills:    []*Agent{{ID: "v", Encoding: 2}},
	})

	if r.MovesAttempted != 2 || r.MovesBlocked != 1 {
		t.Fatalf("moves %d/%d blocked, want 2/1", r.MovesAttempted, r.MovesBlocked)
	}
	if r.AttackActions != 1 || r.AttackAttempts != 2 || r.AttackHits != 1 || r.Kills != 1 {
		t.Fatalf("attack tallies %d/%d/%d/%d", r.AttackActions, r.AttackAttempts, r.AttackHits, r.Kills)
	}
	if r.KillsByEncoding[2] != 1 {
		t.Fatalf("kills by encoding %v", r.KillsByEncoding)
	}
}

func TestReporter_SummaryMentionsEveryTally(t *testing.T) {
	r := NewReporter()
	r.ResetEpisode()
	r.recordAttack(AttackResult{Attempts: 1, Kills: []*Agent{{ID: "v", Encoding: 3}}})

	out := r.Summary()
	for _, want := range []string{"episodes:", "attack attempts:", "kills:", "encoding 3 dead:"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestSimLog_FilterAndCount(t *testing.T) {
	sl := NewSimLog(false)
	sl.Add(1, "a", "attack", "hit", "b health=0.5", 0.5)
	sl.Add(2, "a", "attack", "kill", "b", 0)
	sl.Add(2, "--", "reset", "episode", "", 0)

	if got := sl.CountCategory("attack", ""); got != 2 {
		t.Fatalf("attack entries %d, want 2", got)
	}
	kills := sl.Filter("attack", "kill")
	if len(kills) != 1 || kills[0].Tick != 2 {
		t.Fatalf("unexpected kill entries %v", kills)
	}
}

func TestSimLog_VerboseGate(t *testing.T) {
	quiet := NewSimLog(false)
	quiet.AddVerbose(1, "a", "move", "move", "ok", 0)
	if len(quiet.Entries()) != 0 {
		t.Fatal("verbose entry recorded with verbose off")
	}

	loud := NewSimLog(true)
	loud.AddVerbose(1, "a", "move", "move", "ok", 0)
	if len(loud.Entries()) != 1 {
		t.Fatal("verbose entry dropped with verbose on")
	}
}

func TestSimLog_DumpFormatsEntries(t *testing.T) {
	sl := NewSimLog(false)
	sl.Add(7, "hunter", "attack", "hit", "prey health=0.60", 0.6)
	out := sl.Dump()
	if !strings.Contains(out, "[T=007]") || !strings.Contains(out, "hunter") {
		t.Fatalf("unexpected dump: %q", out)
	}
}
