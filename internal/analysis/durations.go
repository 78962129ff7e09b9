package analysis

import (
	"math"
	"sort"

	"github.com/flowlens/flowlens/internal/domain"
)

// TimeInStatus aggregates, per exited status, how long tickets dwelt there
// before transitioning out. The initial segment (creation to first event)
// is attributed to the status the ticket was created in. Statuses with no
// measurable dwell time are absent from the result.
func TimeInStatus(tickets []*domain.Ticket, tax *domain.StatusTaxonomy) map[string]domain.TimeInStatusRecord {
	samples := make(map[string][]float64)
	for _, tr := range buildTransitions(tickets, tax) {
		if tr.FromStatus == "" || !tr.HasDuration {
			continue
		}
		samples[tr.FromStatus] = append(samples[tr.FromStatus], tr.DurationHours)
	}

	records := make(map[string]domain.TimeInStatusRecord, len(samples))
	for status, hours := range samples {
		records[status] = summarize(status, hours)
	}
	return records
}

func summarize(status string, hours []float64) domain.TimeInStatusRecord {
	sorted := make([]float64, len(hours))
	copy(sorted, hours)
	sort.Float64s(sorted)

	var sum float64
	for _, h := range sorted {
		sum += h
	}
	avg := sum / float64(len(sorted))

	return domain.TimeInStatusRecord{
		Status:      status,
		AvgHours:    round2(avg),
		AvgDays:     round2(avg / 24),
		MedianHours: round2(median(sorted)),
		MinHours:    round2(sorted[0]),
		MaxHours:    round2(sorted[len(sorted)-1]),
		Count:       len(sorted),
	}
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// round2 rounds for display only; aggregation runs at full precision.
func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
