package analysis

import "github.com/flowlens/flowlens/internal/domain"

// Transition is one row of the flattened transition table: either the
// synthetic creation row for a ticket or one changelog entry. Creation rows
// have an empty FromStatus and carry no duration.
type Transition struct {
	TicketKey     string
	FromStatus    string
	ToStatus      string
	FromCategory  domain.StatusCategory
	ToCategory    domain.StatusCategory
	Timestamp     string
	Author        string
	DurationHours float64
	HasDuration   bool
}

// buildTransitions flattens every ticket's history into one table. Each
// ticket contributes a creation row for its initial status plus one row per
// changelog entry, with the dwell time in the exited status attached.
func buildTransitions(tickets []*domain.Ticket, tax *domain.StatusTaxonomy) []Transition {
	var transitions []Transition

	for _, t := range tickets {
		events := t.SortedChangelog()

		if len(events) == 0 {
			// Created and never moved: the current status is the initial one.
			transitions = append(transitions, Transition{
				TicketKey:  t.Key,
				ToStatus:   t.Status,
				ToCategory: tax.Categorize(t.Status, t.StatusCategory),
				Timestamp:  t.Created,
				Author:     t.Reporter,
			})
			continue
		}

		first := events[0]
		transitions = append(transitions, Transition{
			TicketKey:  t.Key,
			ToStatus:   first.FromStatus,
			ToCategory: tax.Categorize(first.FromStatus, ""),
			Timestamp:  t.Created,
			Author:     t.Reporter,
		})

		prev := t.Created
		for _, e := range events {
			tr := Transition{
				TicketKey:    t.Key,
				FromStatus:   e.FromStatus,
				ToStatus:     e.ToStatus,
				FromCategory: tax.Categorize(e.FromStatus, ""),
				ToCategory:   tax.Categorize(e.ToStatus, ""),
				Timestamp:    e.Timestamp,
				Author:       e.Author,
			}
			if hours, ok := hoursBetween(prev, e.Timestamp); ok {
				tr.DurationHours = hours
				tr.HasDuration = true
			}
			transitions = append(transitions, tr)
			prev = e.Timestamp
		}
	}

	return transitions
}

// hoursBetween computes the elapsed hours between two timestamps. Malformed
// timestamps drop the single measurement, never the aggregation.
func hoursBetween(start, end string) (float64, bool) {
	s, ok := domain.ParseTimestamp(start)
	if !ok {
		return 0, false
	}
	e, ok := domain.ParseTimestamp(end)
	if !ok {
		return 0, false
	}
	return e.Sub(s).Hours(), true
}
