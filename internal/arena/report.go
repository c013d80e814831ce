package arena

import (
	"fmt"
	"sort"
	"strings"
)

// Reporter tallies episode events. Actors report through the simulator; the
// reporter never touches agent records.
type Reporter struct {
	Episodes int

	MovesAttempted int
	MovesBlocked   int

	AttackActions  int
	AttackAttempts int
	AttackHits     int
	Kills          int

	// KillsByEncoding counts victims per encoding.
	KillsByEncoding map[int]int
}

// NewReporter creates an empty reporter.
func NewReporter() *Reporter {
	return &Reporter{KillsByEncoding: map[int]int{}}
}

// ResetEpisode increments the episode counter. Tallies accumulate across
// episodes so batch runs can aggregate.
func (r *Reporter) ResetEpisode() {
	r.Episodes++
}

func (r *Reporter) recordMove(moved bool) {
	r.MovesAttempted++
	if !moved {
		r.MovesBlocked++
	}
}

func (r *Reporter) recordAttack(res AttackResult) {
	r.AttackActions++
	r.AttackAttempts += res.Attempts
	r.AttackHits += len(res.Hits)
	r.Kills += len(res.Kills)
	for _, victim := range res.Kills {
		r.KillsByEncoding[victim.Encoding]++
	}
}

// Summary renders the tallies as a fixed-width text report.
func (r *Reporter) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== Episode Report ===\n")
	fmt.Fprintf(&b, "episodes:         %d\n", r.Episodes)
	fmt.Fprintf(&b, "moves attempted:  %d\n", r.MovesAttempted)
	fmt.Fprintf(&b, "moves blocked:    %d\n", r.MovesBlocked)
	fmt.Fprintf(&b, "attack actions:   %d\n", r.AttackActions)
	fmt.Fprintf(&b, "attack attempts:  %d\n", r.AttackAttempts)
	fmt.Fprintf(&b, "attack hits:      %d\n", r.AttackHits)
	fmt.Fprintf(&b, "kills:            %d\n", r.Kills)
	encodings := make([]int, 0, len(r.KillsByEncoding))
	for enc := range r.KillsByEncoding {
		encodings = append(encodings, enc)
	}
	sort.Ints(encodings)
	for _, enc := range encodings {
		fmt.Fprintf(&b, "  encoding %d dead: %d\n", enc, r.KillsByEncoding[enc])
	}
	return b.String()
}
