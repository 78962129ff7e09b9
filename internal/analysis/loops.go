package analysis

import (
	"fmt"
	"sort"

	"github.com/flowlens/flowlens/internal/domain"
)

// maxTopPatterns caps the rework pattern list in a LoopReport.
const maxTopPatterns = 10

// loopInstance is one detected re-entry of a previously visited status.
type loopInstance struct {
	ticketKey  string
	fromStatus string
	toStatus   string
}

// collectLoopInstances walks each ticket's history in timestamp order and
// records every transition whose target status was already entered earlier
// in the same ticket. Only exact status equality counts; two distinct
// statuses in the same category are not a loop.
func collectLoopInstances(tickets []*domain.Ticket) []loopInstance {
	var instances []loopInstance
	for _, t := range tickets {
		if len(t.Changelog) < 2 {
			continue
		}
		seen := make(map[string]bool)
		for _, e := range t.SortedChangelog() {
			if seen[e.ToStatus] {
				instances = append(instances, loopInstance{
					ticketKey:  t.Key,
					fromStatus: e.FromStatus,
					toStatus:   e.ToStatus,
				})
			}
			seen[e.ToStatus] = true
		}
	}
	return instances
}

// DetectLoops finds rework across the ticket population: transitions that
// re-enter a status the ticket had already left. The report lists the
// affected ticket keys (deduplicated, sorted) and the ten most common
// rework patterns.
func DetectLoops(tickets []*domain.Ticket) domain.LoopReport {
	report := domain.LoopReport{
		TicketsWithLoops: []string{},
		TopPatterns:      []domain.LoopPattern{},
	}

	patternCounts := make(map[string]int)
	ticketSet := make(map[string]bool)

	for _, in := range collectLoopInstances(tickets) {
		report.TotalLoops++
		ticketSet[in.ticketKey] = true
		patternCounts[loopPatternKey(in.toStatus, in.fromStatus)]++
	}

	for key := range ticketSet {
		report.TicketsWithLoops = append(report.TicketsWithLoops, key)
	}
	sort.Strings(report.TicketsWithLoops)

	for pattern, count := range patternCounts {
		report.TopPatterns = append(report.TopPatterns, domain.LoopPattern{
			Pattern: pattern,
			Count:   count,
		})
	}
	sort.Slice(report.TopPatterns, func(i, j int) bool {
		if report.TopPatterns[i].Count != report.TopPatterns[j].Count {
			return report.TopPatterns[i].Count > report.TopPatterns[j].Count
		}
		return report.TopPatterns[i].Pattern < report.TopPatterns[j].Pattern
	})
	if len(report.TopPatterns) > maxTopPatterns {
		report.TopPatterns = report.TopPatterns[:maxTopPatterns]
	}

	return report
}

func loopPatternKey(to, from string) string {
	return fmt.Sprintf("%s ← %s", to, from)
}
