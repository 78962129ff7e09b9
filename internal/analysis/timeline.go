package analysis

import "github.com/flowlens/flowlens/internal/domain"

// TimelineOptions controls the daily aggregation pass.
type TimelineOptions struct {
	// FutureDays extends the series past the last observed date for trend
	// projection.
	FutureDays int
	// IncludeOpenIssues materializes a per-day drilldown list of open
	// tickets. Memory grows with tickets × days, so it is opt-in.
	IncludeOpenIssues bool
}

// dayEvent is one changelog entry reduced to day granularity.
type dayEvent struct {
	date     string
	toStatus string
}

// replayCursor advances through one ticket's day-granular status history
// without re-walking the changelog for every queried day. Days must be
// queried in ascending order.
type replayCursor struct {
	createdDate string
	status      string
	events      []dayEvent
	next        int
}

func newReplayCursor(t *domain.Ticket) *replayCursor {
	c := &replayCursor{createdDate: t.CreatedDate(), status: t.Status}
	events := t.SortedChangelog()
	if len(events) > 0 {
		c.status = events[0].FromStatus
	}
	for _, e := range events {
		d := e.Date()
		if d == "" {
			// Malformed timestamp: skip the data point.
			continue
		}
		c.events = append(c.events, dayEvent{date: d, toStatus: e.ToStatus})
	}
	return c
}

// statusOn returns the status at the end of the given day, applying every
// transition dated on or before it. The second return value is false when
// the ticket did not exist yet.
func (c *replayCursor) statusOn(date string) (string, bool) {
	if c.createdDate == "" || date < c.createdDate {
		return "", false
	}
	for c.next < len(c.events) && c.events[c.next].date <= date {
		c.status = c.events[c.next].toStatus
		c.next++
	}
	return c.status, true
}

// TimelineMetrics computes per-day created/closed/open counts. The date
// range always derives from the full ticket population (min to max over
// every creation and changelog date, extended by FutureDays) regardless of
// any creation-date filter on the analyzer, so one computation can be
// sliced for any display window.
func (a *FlowAnalyzer) TimelineMetrics(opts TimelineOptions) domain.Timeline {
	timeline := domain.Timeline{DailyData: []domain.DailyPoint{}}
	if len(a.allTickets) == 0 {
		return timeline
	}

	minDate, maxDate := "", ""
	for _, t := range a.allTickets {
		for _, d := range ticketDates(t) {
			if minDate == "" || d < minDate {
				minDate = d
			}
			if d > maxDate {
				maxDate = d
			}
		}
	}
	if minDate == "" {
		return timeline
	}

	createdBy := make(map[string]int)
	closedBy := make(map[string]int)
	cursors := make([]*replayCursor, len(a.allTickets))
	for i, t := range a.allTickets {
		if d := t.CreatedDate(); d != "" {
			createdBy[d]++
		}
		if d := t.ResolvedDate(); d != "" {
			closedBy[d]++
		}
		cursors[i] = newReplayCursor(t)
	}

	for _, date := range dateRange(minDate, maxDate, opts.FutureDays) {
		point := domain.DailyPoint{
			Date:         date,
			CreatedCount: createdBy[date],
			ClosedCount:  closedBy[date],
		}
		for i, c := range cursors {
			status, ok := c.statusOn(date)
			if !ok {
				continue
			}
			if !a.taxonomy.Categorize(status, "").IsOpen() {
				continue
			}
			point.OpenCount++
			if opts.IncludeOpenIssues {
				t := a.allTickets[i]
				point.OpenIssues = append(point.OpenIssues, domain.IssueSnapshot{
					Key:     t.Key,
					Summary: t.Summary,
					Status:  status,
				})
			}
		}
		timeline.DailyData = append(timeline.DailyData, point)
	}

	return timeline
}

// TimelineWithTrends pairs a daily series with least-squares trend lines
// for the created/closed/open counts. Trends are fitted on the historical
// portion only and continued through the future window by their final
// per-step delta.
func TimelineWithTrends(timeline domain.Timeline, futureDays int) domain.TimelineReport {
	points := timeline.DailyData
	report := domain.TimelineReport{
		DailyData:    points,
		CreatedTrend: []float64{},
		ClosedTrend:  []float64{},
		OpenTrend:    []float64{},
	}

	historyLen := len(points) - futureDays
	if historyLen < 0 {
		historyLen = 0
	}
	if historyLen == 0 {
		return report
	}

	created := make([]float64, historyLen)
	closed := make([]float64, historyLen)
	open := make([]float64, historyLen)
	for i := 0; i < historyLen; i++ {
		created[i] = float64(points[i].CreatedCount)
		closed[i] = float64(points[i].ClosedCount)
		open[i] = float64(points[i].OpenCount)
	}

	futureLen := len(points) - historyLen
	report.CreatedTrend = ExtendTrend(LinearTrend(created), futureLen)
	report.ClosedTrend = ExtendTrend(LinearTrend(closed), futureLen)
	report.OpenTrend = ExtendTrend(LinearTrend(open), futureLen)
	return report
}

// SliceSeries returns the sub-range [start, end] of a computed daily
// series. Empty bounds leave that side open. Display filtering slices the
// one full computation instead of re-running the aggregation.
func SliceSeries(points []domain.DailyPoint, start, end string) ([]domain.DailyPoint, error) {
	if start != "" && end != "" && start > end {
		return nil, domain.ErrInvalidDateRange
	}
	out := make([]domain.DailyPoint, 0, len(points))
	for _, p := range points {
		if start != "" && p.Date < start {
			continue
		}
		if end != "" && p.Date > end {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func ticketDates(t *domain.Ticket) []string {
	var dates []string
	if d := t.CreatedDate(); d != "" {
		dates = append(dates, d)
	}
	for _, e := range t.Changelog {
		if d := e.Date(); d != "" {
			dates = append(dates, d)
		}
	}
	return dates
}

// dateRange enumerates calendar days from start through end plus futureDays
// more, inclusive.
func dateRange(start, end string, futureDays int) []string {
	s, sok := domain.ParseTimestamp(start)
	e, eok := domain.ParseTimestamp(end)
	if !sok || !eok {
		return nil
	}
	e = e.AddDate(0, 0, futureDays)

	var dates []string
	for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format("2006-01-02"))
	}
	return dates
}
