package analysis

import (
	"reflect"
	"testing"

	"github.com/flowlens/flowlens/internal/domain"
)

func analyzerFixture() []*domain.Ticket {
	return []*domain.Ticket{
		{
			Key:      "PROJ-1",
			Status:   "Closed",
			Created:  "2024-01-01T00:00:00Z",
			Resolved: "2024-01-05T00:00:00Z",
			Changelog: []domain.StatusChange{
				{Timestamp: "2024-01-02T00:00:00Z", FromStatus: "To Do", ToStatus: "In Progress"},
				{Timestamp: "2024-01-05T00:00:00Z", FromStatus: "In Progress", ToStatus: "Closed"},
			},
		},
		{
			Key:     "PROJ-2",
			Status:  "To Do",
			Created: "2024-01-03T00:00:00Z",
		},
	}
}

func TestFlowMetrics(t *testing.T) {
	analyzer := NewFlowAnalyzer(analyzerFixture(), nil, "", "")
	metrics := analyzer.FlowMetrics(TimelineOptions{})

	// One creation row per ticket plus PROJ-1's two changelog entries.
	if metrics.TotalTransitions != 4 {
		t.Errorf("TotalTransitions = %d, want 4", metrics.TotalTransitions)
	}
	if metrics.TotalIssues != 2 {
		t.Errorf("TotalIssues = %d, want 2", metrics.TotalIssues)
	}

	wantStatuses := []string{"Closed", "In Progress", "To Do"}
	if !reflect.DeepEqual(metrics.AllStatuses, wantStatuses) {
		t.Errorf("AllStatuses = %v, want %v", metrics.AllStatuses, wantStatuses)
	}
	if metrics.UniqueStatuses != 3 {
		t.Errorf("UniqueStatuses = %d, want 3", metrics.UniqueStatuses)
	}

	// Creation rows have no from status and never appear as patterns.
	if len(metrics.FlowPatterns) != 2 {
		t.Fatalf("FlowPatterns = %v, want 2 patterns", metrics.FlowPatterns)
	}
	for _, p := range metrics.FlowPatterns {
		if p.From == "" {
			t.Errorf("creation row leaked into patterns: %+v", p)
		}
		if p.IsLoop {
			t.Errorf("no loops in fixture, got %+v", p)
		}
	}

	if metrics.Loops.TotalLoops != 0 {
		t.Errorf("TotalLoops = %d, want 0", metrics.Loops.TotalLoops)
	}
	if _, ok := metrics.TimeInStatus["To Do"]; !ok {
		t.Error("missing To Do dwell record")
	}
	if len(metrics.Timeline.DailyData) == 0 {
		t.Error("timeline should be populated")
	}
}

func TestFlowMetricsPatternSortOrder(t *testing.T) {
	tickets := []*domain.Ticket{
		{
			Key:     "PROJ-1",
			Created: "2024-01-01T00:00:00Z",
			Changelog: []domain.StatusChange{
				{Timestamp: "2024-01-02T00:00:00Z", FromStatus: "To Do", ToStatus: "In Progress"},
				{Timestamp: "2024-01-03T00:00:00Z", FromStatus: "In Progress", ToStatus: "Closed"},
			},
		},
		{
			Key:     "PROJ-2",
			Created: "2024-01-01T00:00:00Z",
			Changelog: []domain.StatusChange{
				{Timestamp: "2024-01-02T00:00:00Z", FromStatus: "To Do", ToStatus: "In Progress"},
			},
		},
	}

	metrics := NewFlowAnalyzer(tickets, nil, "", "").FlowMetrics(TimelineOptions{})

	if len(metrics.FlowPatterns) != 2 {
		t.Fatalf("FlowPatterns = %v", metrics.FlowPatterns)
	}
	// Highest count first, ties broken by from then to.
	if metrics.FlowPatterns[0].From != "To Do" || metrics.FlowPatterns[0].Count != 2 {
		t.Errorf("first pattern = %+v, want To Do→In Progress count 2", metrics.FlowPatterns[0])
	}
	if metrics.FlowPatterns[1].Count != 1 {
		t.Errorf("second pattern = %+v, want count 1", metrics.FlowPatterns[1])
	}
}

func TestFlowMetricsMarksLoopPatterns(t *testing.T) {
	tickets := []*domain.Ticket{
		{
			Key:     "PROJ-1",
			Created: "2024-01-01T00:00:00Z",
			Changelog: []domain.StatusChange{
				{Timestamp: "2024-01-02T00:00:00Z", FromStatus: "To Do", ToStatus: "In Progress"},
				{Timestamp: "2024-01-03T00:00:00Z", FromStatus: "In Progress", ToStatus: "In Test"},
				{Timestamp: "2024-01-04T00:00:00Z", FromStatus: "In Test", ToStatus: "In Progress"},
			},
		},
	}

	metrics := NewFlowAnalyzer(tickets, nil, "", "").FlowMetrics(TimelineOptions{})

	var loopPattern *domain.FlowPattern
	for i := range metrics.FlowPatterns {
		if metrics.FlowPatterns[i].From == "In Test" && metrics.FlowPatterns[i].To == "In Progress" {
			loopPattern = &metrics.FlowPatterns[i]
		}
	}
	if loopPattern == nil {
		t.Fatal("In Test → In Progress pattern missing")
	}
	if !loopPattern.IsLoop {
		t.Error("re-entry pattern should be flagged as a loop")
	}
}

func TestFlowMetricsEmptyPopulation(t *testing.T) {
	metrics := NewFlowAnalyzer(nil, nil, "", "").FlowMetrics(TimelineOptions{})

	if metrics.TotalTransitions != 0 || metrics.TotalIssues != 0 {
		t.Errorf("metrics = %+v, want zeroes", metrics)
	}
	// Empty results keep initialized containers so JSON output stays [] and
	// {} instead of null.
	if metrics.FlowPatterns == nil || metrics.AllStatuses == nil {
		t.Error("slices must be initialized")
	}
	if metrics.TimeInStatus == nil || metrics.Timeline.DailyData == nil {
		t.Error("containers must be initialized")
	}
	if metrics.Loops.TicketsWithLoops == nil {
		t.Error("loop report must be initialized")
	}
}

func TestFilterByCreation(t *testing.T) {
	tickets := analyzerFixture()

	tests := []struct {
		name       string
		start, end string
		wantKeys   []string
	}{
		{"no bounds", "", "", []string{"PROJ-1", "PROJ-2"}},
		{"start only", "2024-01-02", "", []string{"PROJ-2"}},
		{"end only", "", "2024-01-02", []string{"PROJ-1"}},
		{"window", "2024-01-01", "2024-01-01", []string{"PROJ-1"}},
		{"excludes all", "2025-01-01", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyzer := NewFlowAnalyzer(tickets, nil, tt.start, tt.end)
			var keys []string
			for _, ticket := range analyzer.FilteredTickets() {
				keys = append(keys, ticket.Key)
			}
			if !reflect.DeepEqual(keys, tt.wantKeys) {
				t.Errorf("filtered keys = %v, want %v", keys, tt.wantKeys)
			}
		})
	}
}

func TestFilterByCreationSkipsUnparseable(t *testing.T) {
	tickets := []*domain.Ticket{
		{Key: "BAD", Created: "garbage"},
		{Key: "GOOD", Created: "2024-01-01T00:00:00Z"},
	}

	analyzer := NewFlowAnalyzer(tickets, nil, "2024-01-01", "2024-12-31")
	filtered := analyzer.FilteredTickets()
	if len(filtered) != 1 || filtered[0].Key != "GOOD" {
		t.Errorf("filtered = %v, want only GOOD", filtered)
	}
}
