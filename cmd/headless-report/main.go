package main

import (
	"flag"
	"fmt"

	"gridarena/internal/arena"
)

type runStats struct {
	runIndex int
	seed     int64

	ticksRun      int
	firstHitTick  int
	firstKillTick int
	decided       bool // one team wiped out before the tick limit

	movesAttempted int
	movesBlocked   int
	attackAttempts int
	attackHits     int
	kills          int
	redSurvivors   int
	blueSurvivors  int
}

func main() {
	var runs int
	var ticks int
	var seedBase int64
	var seedStep int64
	var policyName string

	flag.IntVar(&runs, "runs", 5, "number of headless simulation runs")
	flag.IntVar(&ticks, "ticks", 200, "tick limit per run")
	flag.Int64Var(&seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.StringVar(&policyName, "policy", "scripted", "agent policy: scripted or random")
	flag.Parse()

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		return
	}
	if ticks <= 0 {
		fmt.Println("error: -ticks must be > 0")
		return
	}
	if policyName != "scripted" && policyName != "random" {
		fmt.Printf("error: unsupported policy %q (supported: scripted, random)\n", policyName)
		return
	}

	fmt.Printf("=== Headless Battle Report ===\n")
	fmt.Printf("policy=%s runs=%d ticks=%d seed_base=%d seed_step=%d\n\n", policyName, runs, ticks, seedBase, seedStep)

	all := make([]runStats, 0, runs)
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		stats, err := runBattle(i+1, seed, ticks, policyName)
		if err != nil {
			fmt.Printf("error: run %d: %v\n", i+1, err)
			return
		}
		all = append(all, stats)
		printRun(stats)
	}

	printAggregate(all)
}

func runBattle(runIndex int, seed int64, ticks int, policyName string) (runStats, error) {
	cfg := arena.DefaultTeamBattle
	cfg.Seed = seed
	sim, err := arena.NewTeamBattle(cfg)
	if err != nil {
		return runStats{}, err
	}
	policy, err := arena.TeamBattlePolicy()
	if err != nil {
		return runStats{}, err
	}
	if err := sim.Reset(); err != nil {
		return runStats{}, err
	}

	stats := runStats{runIndex: runIndex, seed: seed}
	for t := 0; t < ticks; t++ {
		if policyName == "random" {
			err = arena.RandomStep(sim)
		} else {
			err = arena.ScriptedStep(sim, policy, arena.TeamBattleMapping())
		}
		if err != nil {
			return runStats{}, err
		}
		stats.ticksRun = sim.Tick()
		red, blue := survivors(sim)
		if red == 0 || blue == 0 {
			stats.decided = true
			break
		}
	}

	report := sim.Report()
	stats.firstHitTick = firstTick(sim.Log().Filter("attack", "hit"))
	stats.firstKillTick = firstTick(sim.Log().Filter("attack", "kill"))
	stats.movesAttempted = report.MovesAttempted
	stats.movesBlocked = report.MovesBlocked
	stats.attackAttempts = report.AttackAttempts
	stats.attackHits = report.AttackHits
	stats.kills = report.Kills
	stats.redSurvivors, stats.blueSurvivors = survivors(sim)
	return stats, nil
}

func survivors(sim *arena.Simulator) (red, blue int) {
	for _, a := range sim.Agents() {
		if !a.Active || !a.Has(arena.CapAttack) {
			continue
		}
		switch a.Encoding {
		case 1:
			red++
		case 2:
			blue++
		}
	}
	return red, blue
}

func firstTick(entries []arena.SimLogEntry) int {
	if len(entries) == 0 {
		return -1
	}
	return entries[0].Tick
}

func printRun(rs runStats) {
	outcome := "tick limit"
	if rs.decided {
		outcome = "wipeout"
	}
	fmt.Printf("--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Printf("ticks=%d outcome=%s survivors: red=%d blue=%d\n",
		rs.ticksRun, outcome, rs.redSurvivors, rs.blueSurvivors)
	fmt.Printf("phase_markers: first_hit=%d first_kill=%d\n", rs.firstHitTick, rs.firstKillTick)
	fmt.Printf("totals: moves=%d blocked=%d attack_attempts=%d hits=%d kills=%d\n\n",
		rs.movesAttempted, rs.movesBlocked, rs.attackAttempts, rs.attackHits, rs.kills)
}

func printAggregate(all []runStats) {
	totalTicks := 0
	totalMoves := 0
	totalBlocked := 0
	totalAttempts := 0
	totalHits := 0
	totalKills := 0
	decided := 0
	redWins := 0
	blueWins := 0
	hitTicks := make([]int, 0, len(all))
	killTicks := make([]int, 0, len(all))

	for _, rs := range all {
		totalTicks += rs.ticksRun
		totalMoves += rs.movesAttempted
		totalBlocked += rs.movesBlocked
		totalAttempts += rs.attackAttempts
		totalHits += rs.attackHits
		totalKills += rs.kills
		if rs.decided {
			decided++
		}
		if rs.blueSurvivors == 0 && rs.redSurvivors > 0 {
			redWins++
		}
		if rs.redSurvivors == 0 && rs.blueSurvivors > 0 {
			blueWins++
		}
		if rs.firstHitTick >= 0 {
			hitTicks = append(hitTicks, rs.firstHitTick)
		}
		if rs.firstKillTick >= 0 {
			killTicks = append(killTicks, rs.firstKillTick)
		}
	}

	n := len(all)
	fmt.Println("=== Aggregate ===")
	fmt.Printf("runs=%d decided=%d red_wins=%d blue_wins=%d\n", n, decided, redWins, blueWins)
	fmt.Printf("avg_per_run: ticks=%.1f moves=%.1f blocked=%.1f attack_attempts=%.1f hits=%.1f kills=%.1f\n",
		avg(totalTicks, n), avg(totalMoves, n), avg(totalBlocked, n), avg(totalAttempts, n), avg(totalHits, n), avg(totalKills, n))
	fmt.Printf("phase_marker_avg_ticks: first_hit=%s first_kill=%s\n",
		avgTickString(hitTicks), avgTickString(killTicks))
	if totalAttempts > 0 {
		fmt.Printf("hit_rate=%.1f%%\n", float64(totalHits)/float64(totalAttempts)*100)
	}
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func avgTickString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}
