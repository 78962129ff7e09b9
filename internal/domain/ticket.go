package domain

import (
	"sort"
	"time"
)

// StatusChange is a single status transition in a ticket's history.
type StatusChange struct {
	Timestamp  string `json:"timestamp"`
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
	Author     string `json:"author,omitempty"`
}

// Date returns the calendar date (YYYY-MM-DD) of the change in the
// timestamp's own zone, or "" when the timestamp is malformed.
func (c StatusChange) Date() string {
	return DateOf(c.Timestamp)
}

// Ticket is an immutable snapshot of one tracked issue as fetched from the
// source system. The engine never mutates tickets; every derived metric is
// recomputed from this snapshot.
type Ticket struct {
	Key            string         `json:"key"`
	ID             string         `json:"id,omitempty"`
	Summary        string         `json:"summary,omitempty"`
	Status         string         `json:"status"`
	StatusCategory string         `json:"status_category,omitempty"`
	IssueType      string         `json:"issue_type,omitempty"`
	Priority       string         `json:"priority,omitempty"`
	Assignee       string         `json:"assignee,omitempty"`
	Reporter       string         `json:"reporter,omitempty"`
	Created        string         `json:"created"`
	Updated        string         `json:"updated,omitempty"`
	Resolved       string         `json:"resolved,omitempty"`
	Labels         []string       `json:"labels,omitempty"`
	Components     []string       `json:"components,omitempty"`
	Description    string         `json:"description,omitempty"`
	Changelog      []StatusChange `json:"changelog,omitempty"`
}

// timestampLayouts covers the formats trackers emit: RFC 3339 with "Z" or
// an explicit offset, the legacy millisecond format with a numeric zone,
// and bare calendar dates.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000-0700",
	"2006-01-02T15:04:05-0700",
	"2006-01-02",
}

// ParseTimestamp parses an ISO-8601 timestamp. The second return value is
// false when the value cannot be parsed; callers skip such data points
// rather than failing an aggregation.
func ParseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DateOf extracts the calendar date (YYYY-MM-DD) of a timestamp in the
// timestamp's own zone. Returns "" for malformed input.
func DateOf(s string) string {
	t, ok := ParseTimestamp(s)
	if !ok {
		return ""
	}
	return t.Format("2006-01-02")
}

// ValidDate reports whether s is a calendar date in YYYY-MM-DD form.
func ValidDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// CreatedDate returns the ticket's creation date (YYYY-MM-DD).
func (t *Ticket) CreatedDate() string {
	return DateOf(t.Created)
}

// ResolvedDate returns the ticket's resolution date (YYYY-MM-DD), or ""
// when the ticket is unresolved.
func (t *Ticket) ResolvedDate() string {
	return DateOf(t.Resolved)
}

// TotalTransitions counts the recorded status transitions.
func (t *Ticket) TotalTransitions() int {
	return len(t.Changelog)
}

// AgeDays returns the ticket age in days, measured to resolution when the
// ticket is resolved and to now otherwise.
func (t *Ticket) AgeDays(now time.Time) float64 {
	created, ok := ParseTimestamp(t.Created)
	if !ok {
		return 0
	}
	end := now
	if resolved, ok := ParseTimestamp(t.Resolved); ok {
		end = resolved
	}
	return end.Sub(created).Hours() / 24
}

// SortedChangelog returns a copy of the changelog ordered by timestamp
// ascending. Source order is not trusted. Entries with malformed
// timestamps keep their relative position.
func (t *Ticket) SortedChangelog() []StatusChange {
	events := make([]StatusChange, len(t.Changelog))
	copy(events, t.Changelog)
	sort.SliceStable(events, func(i, j int) bool {
		ti, iok := ParseTimestamp(events[i].Timestamp)
		tj, jok := ParseTimestamp(events[j].Timestamp)
		if !iok || !jok {
			return false
		}
		return ti.Before(tj)
	})
	return events
}

// StatusOn reconstructs the status the ticket held at the end of the given
// calendar day. The second return value is false when the ticket did not
// exist yet on that date.
//
// The walk trusts the chronologically later to_status of each event, so
// changelogs with inconsistent from/to chaining still resolve to the last
// known status.
func (t *Ticket) StatusOn(date string) (string, bool) {
	created := t.CreatedDate()
	if created == "" || date < created {
		return "", false
	}

	events := t.SortedChangelog()
	if len(events) == 0 {
		return t.Status, true
	}

	// The first event's from_status is the status the ticket was created
	// in, before any recorded transition.
	current := events[0].FromStatus
	for _, e := range events {
		d := e.Date()
		if d == "" {
			continue
		}
		if d > date {
			break
		}
		current = e.ToStatus
	}
	return current, true
}

// OpenOn reports whether the ticket was in a NEW or IN_PROGRESS category
// status on the given calendar day.
func (t *Ticket) OpenOn(tax *StatusTaxonomy, date string) bool {
	status, ok := t.StatusOn(date)
	if !ok {
		return false
	}
	return tax.Categorize(status, "").IsOpen()
}
