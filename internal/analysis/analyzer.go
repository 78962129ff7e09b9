package analysis

import (
	"sort"

	"github.com/flowlens/flowlens/internal/domain"
)

// FlowAnalyzer computes workflow metrics over an immutable ticket
// population. Every method is a pure function of the tickets and the
// taxonomy; the input slice is never mutated, so concurrent invocations
// over the same tickets are safe.
type FlowAnalyzer struct {
	allTickets []*domain.Ticket
	filtered   []*domain.Ticket
	taxonomy   *domain.StatusTaxonomy
	startDate  string
	endDate    string
}

// NewFlowAnalyzer builds an analyzer over tickets, optionally filtered by
// creation date (empty bounds are open). Transition, loop, and dwell-time
// metrics use the filtered set; the daily timeline always derives from the
// full population.
func NewFlowAnalyzer(tickets []*domain.Ticket, tax *domain.StatusTaxonomy, startDate, endDate string) *FlowAnalyzer {
	if tax == nil {
		tax = domain.DefaultTaxonomy()
	}
	return &FlowAnalyzer{
		allTickets: tickets,
		filtered:   filterByCreation(tickets, startDate, endDate),
		taxonomy:   tax,
		startDate:  startDate,
		endDate:    endDate,
	}
}

func filterByCreation(tickets []*domain.Ticket, start, end string) []*domain.Ticket {
	if start == "" && end == "" {
		return tickets
	}
	filtered := make([]*domain.Ticket, 0, len(tickets))
	for _, t := range tickets {
		created := t.CreatedDate()
		if created == "" {
			continue
		}
		if start != "" && created < start {
			continue
		}
		if end != "" && created > end {
			continue
		}
		filtered = append(filtered, t)
	}
	return filtered
}

// FilteredTickets returns the creation-date-filtered view of the
// population.
func (a *FlowAnalyzer) FilteredTickets() []*domain.Ticket {
	return a.filtered
}

// Loops runs loop detection over the filtered tickets.
func (a *FlowAnalyzer) Loops() domain.LoopReport {
	return DetectLoops(a.filtered)
}

// TimeInStatus aggregates dwell times over the filtered tickets.
func (a *FlowAnalyzer) TimeInStatus() map[string]domain.TimeInStatusRecord {
	return TimeInStatus(a.filtered, a.taxonomy)
}

// FlowMetrics runs the complete analysis: transition table, flow patterns,
// loop detection, time in status, and the daily timeline.
func (a *FlowAnalyzer) FlowMetrics(opts TimelineOptions) *domain.FlowMetrics {
	metrics := &domain.FlowMetrics{
		FlowPatterns: []domain.FlowPattern{},
		AllStatuses:  []string{},
		Loops:        domain.LoopReport{TicketsWithLoops: []string{}, TopPatterns: []domain.LoopPattern{}},
		TimeInStatus: map[string]domain.TimeInStatusRecord{},
		Timeline:     domain.Timeline{DailyData: []domain.DailyPoint{}},
		TotalIssues:  len(a.filtered),
	}

	transitions := buildTransitions(a.filtered, a.taxonomy)
	if len(transitions) == 0 {
		return metrics
	}
	metrics.TotalTransitions = len(transitions)

	loopPairs := make(map[[2]string]bool)
	for _, in := range collectLoopInstances(a.filtered) {
		loopPairs[[2]string{in.fromStatus, in.toStatus}] = true
	}

	type pair struct{ from, to string }
	counts := make(map[pair]int)
	statuses := make(map[string]bool)
	for _, tr := range transitions {
		if tr.ToStatus != "" {
			statuses[tr.ToStatus] = true
		}
		if tr.FromStatus == "" {
			continue
		}
		statuses[tr.FromStatus] = true
		counts[pair{from: tr.FromStatus, to: tr.ToStatus}]++
	}

	for p, count := range counts {
		metrics.FlowPatterns = append(metrics.FlowPatterns, domain.FlowPattern{
			From:   p.from,
			To:     p.to,
			Count:  count,
			IsLoop: loopPairs[[2]string{p.from, p.to}],
		})
	}
	sort.Slice(metrics.FlowPatterns, func(i, j int) bool {
		pi, pj := metrics.FlowPatterns[i], metrics.FlowPatterns[j]
		if pi.Count != pj.Count {
			return pi.Count > pj.Count
		}
		if pi.From != pj.From {
			return pi.From < pj.From
		}
		return pi.To < pj.To
	})

	for s := range statuses {
		metrics.AllStatuses = append(metrics.AllStatuses, s)
	}
	sort.Strings(metrics.AllStatuses)
	metrics.UniqueStatuses = len(metrics.AllStatuses)

	metrics.Loops = a.Loops()
	metrics.TimeInStatus = a.TimeInStatus()
	metrics.Timeline = a.TimelineMetrics(opts)

	return metrics
}
