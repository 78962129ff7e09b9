package analysis

import (
	"testing"

	"github.com/flowlens/flowlens/internal/domain"
)

func timelineFixture() []*domain.Ticket {
	return []*domain.Ticket{
		{
			Key:      "PROJ-1",
			Summary:  "first",
			Status:   "Closed",
			Created:  "2024-01-01T09:00:00Z",
			Resolved: "2024-01-03T15:00:00Z",
			Changelog: []domain.StatusChange{
				{Timestamp: "2024-01-03T15:00:00Z", FromStatus: "To Do", ToStatus: "Closed"},
			},
		},
		{
			Key:     "PROJ-2",
			Summary: "second",
			Status:  "To Do",
			Created: "2024-01-02T09:00:00Z",
		},
	}
}

func findDay(t *testing.T, points []domain.DailyPoint, date string) domain.DailyPoint {
	t.Helper()
	for _, p := range points {
		if p.Date == date {
			return p
		}
	}
	t.Fatalf("day %s missing from series", date)
	return domain.DailyPoint{}
}

func TestTimelineMetricsDailyCounts(t *testing.T) {
	analyzer := NewFlowAnalyzer(timelineFixture(), nil, "", "")
	timeline := analyzer.TimelineMetrics(TimelineOptions{})

	if len(timeline.DailyData) != 3 {
		t.Fatalf("days = %d, want 3 (2024-01-01..2024-01-03)", len(timeline.DailyData))
	}

	day1 := findDay(t, timeline.DailyData, "2024-01-01")
	if day1.CreatedCount != 1 || day1.ClosedCount != 0 || day1.OpenCount != 1 {
		t.Errorf("day1 = %+v, want created 1, closed 0, open 1", day1)
	}

	day2 := findDay(t, timeline.DailyData, "2024-01-02")
	if day2.CreatedCount != 1 || day2.OpenCount != 2 {
		t.Errorf("day2 = %+v, want created 1, open 2", day2)
	}

	day3 := findDay(t, timeline.DailyData, "2024-01-03")
	if day3.ClosedCount != 1 || day3.OpenCount != 1 {
		t.Errorf("day3 = %+v, want closed 1, open 1", day3)
	}
}

func TestTimelineMetricsFutureWindow(t *testing.T) {
	analyzer := NewFlowAnalyzer(timelineFixture(), nil, "", "")
	timeline := analyzer.TimelineMetrics(TimelineOptions{FutureDays: 2})

	if len(timeline.DailyData) != 5 {
		t.Fatalf("days = %d, want 5 (3 observed + 2 future)", len(timeline.DailyData))
	}

	// Future days carry no created/closed activity but still count open
	// tickets forward.
	day5 := findDay(t, timeline.DailyData, "2024-01-05")
	if day5.CreatedCount != 0 || day5.ClosedCount != 0 {
		t.Errorf("future day = %+v, want no activity", day5)
	}
	if day5.OpenCount != 1 {
		t.Errorf("future day open = %d, want 1 (PROJ-2 still open)", day5.OpenCount)
	}
}

func TestTimelineMetricsOpenIssueDrilldown(t *testing.T) {
	analyzer := NewFlowAnalyzer(timelineFixture(), nil, "", "")

	plain := analyzer.TimelineMetrics(TimelineOptions{})
	if findDay(t, plain.DailyData, "2024-01-02").OpenIssues != nil {
		t.Error("drilldown should be absent unless requested")
	}

	detailed := analyzer.TimelineMetrics(TimelineOptions{IncludeOpenIssues: true})
	day2 := findDay(t, detailed.DailyData, "2024-01-02")
	if len(day2.OpenIssues) != 2 {
		t.Fatalf("day2 open issues = %d, want 2", len(day2.OpenIssues))
	}
	for _, issue := range day2.OpenIssues {
		if issue.Key == "" || issue.Status == "" {
			t.Errorf("incomplete snapshot %+v", issue)
		}
	}
}

func TestTimelineMetricsIgnoresCreationFilter(t *testing.T) {
	// The daily series always spans the full population even when the
	// analyzer filters transition metrics to a creation window.
	analyzer := NewFlowAnalyzer(timelineFixture(), nil, "2024-01-02", "2024-01-02")
	timeline := analyzer.TimelineMetrics(TimelineOptions{})

	if len(timeline.DailyData) != 3 {
		t.Errorf("days = %d, want 3 despite creation filter", len(timeline.DailyData))
	}
	day1 := findDay(t, timeline.DailyData, "2024-01-01")
	if day1.CreatedCount != 1 {
		t.Errorf("day1 created = %d, want 1", day1.CreatedCount)
	}
}

func TestTimelineMetricsEmptyPopulation(t *testing.T) {
	analyzer := NewFlowAnalyzer(nil, nil, "", "")
	timeline := analyzer.TimelineMetrics(TimelineOptions{FutureDays: 30})
	if len(timeline.DailyData) != 0 {
		t.Errorf("days = %d, want 0", len(timeline.DailyData))
	}
}

func TestTimelineWithTrends(t *testing.T) {
	points := []domain.DailyPoint{
		{Date: "2024-01-01", OpenCount: 1},
		{Date: "2024-01-02", OpenCount: 2},
		{Date: "2024-01-03", OpenCount: 3},
		{Date: "2024-01-04"},
		{Date: "2024-01-05"},
	}

	report := TimelineWithTrends(domain.Timeline{DailyData: points}, 2)

	if len(report.OpenTrend) != 5 {
		t.Fatalf("OpenTrend len = %d, want 5", len(report.OpenTrend))
	}
	// Fitted on the 3 historical points (1,2,3) and extended by the final
	// delta through the future window.
	if !almostEqual(report.OpenTrend[4], 5) {
		t.Errorf("OpenTrend[4] = %v, want 5", report.OpenTrend[4])
	}
	if len(report.CreatedTrend) != 5 || len(report.ClosedTrend) != 5 {
		t.Errorf("trend lengths = %d/%d, want 5/5", len(report.CreatedTrend), len(report.ClosedTrend))
	}
}

func TestTimelineWithTrendsNoHistory(t *testing.T) {
	report := TimelineWithTrends(domain.Timeline{DailyData: []domain.DailyPoint{}}, 30)
	if len(report.OpenTrend) != 0 || len(report.CreatedTrend) != 0 {
		t.Errorf("trends should be empty without history")
	}
}

func TestSliceSeries(t *testing.T) {
	points := []domain.DailyPoint{
		{Date: "2024-01-01"},
		{Date: "2024-01-02"},
		{Date: "2024-01-03"},
		{Date: "2024-01-04"},
	}

	sliced, err := SliceSeries(points, "2024-01-02", "2024-01-03")
	if err != nil {
		t.Fatalf("SliceSeries error: %v", err)
	}
	if len(sliced) != 2 || sliced[0].Date != "2024-01-02" || sliced[1].Date != "2024-01-03" {
		t.Errorf("sliced = %v", sliced)
	}

	openStart, err := SliceSeries(points, "", "2024-01-02")
	if err != nil || len(openStart) != 2 {
		t.Errorf("open start slice = %v, err %v", openStart, err)
	}

	openEnd, err := SliceSeries(points, "2024-01-04", "")
	if err != nil || len(openEnd) != 1 {
		t.Errorf("open end slice = %v, err %v", openEnd, err)
	}
}

func TestSliceSeriesInvertedRange(t *testing.T) {
	_, err := SliceSeries([]domain.DailyPoint{{Date: "2024-01-01"}}, "2024-02-01", "2024-01-01")
	if err != domain.ErrInvalidDateRange {
		t.Errorf("err = %v, want ErrInvalidDateRange", err)
	}
}
