package domain

import "time"

// TimeInStatusRecord aggregates how long tickets dwelt in one status before
// transitioning out of it.
type TimeInStatusRecord struct {
	Status      string  `json:"status"`
	AvgHours    float64 `json:"avg_hours"`
	AvgDays     float64 `json:"avg_days"`
	MedianHours float64 `json:"median_hours"`
	MinHours    float64 `json:"min_hours"`
	MaxHours    float64 `json:"max_hours"`
	Count       int     `json:"count"`
}

// FlowPattern is one aggregated status transition across all tickets. The
// pattern is a loop when at least one contributing transition re-entered a
// status its ticket had already left.
type FlowPattern struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Count  int    `json:"count"`
	IsLoop bool   `json:"is_loop"`
}

// LoopPattern is one rework pattern ("{to} ← {from}") with its
// project-wide occurrence count.
type LoopPattern struct {
	Pattern string `json:"pattern"`
	Count   int    `json:"count"`
}

// LoopReport summarizes rework detected across the ticket population.
type LoopReport struct {
	TotalLoops       int           `json:"total_loops"`
	TicketsWithLoops []string      `json:"tickets_with_loops"`
	TopPatterns      []LoopPattern `json:"top_patterns"`
}

// IssueSnapshot identifies one ticket open on a given day, for per-day
// drilldown lists.
type IssueSnapshot struct {
	Key     string `json:"key"`
	Summary string `json:"summary"`
	Status  string `json:"status"`
}

// DailyPoint holds the counts for one calendar day. OpenIssues is only
// populated when the caller opts into drilldown data.
type DailyPoint struct {
	Date         string          `json:"date"`
	CreatedCount int             `json:"created_count"`
	ClosedCount  int             `json:"closed_count"`
	OpenCount    int             `json:"open_count"`
	OpenIssues   []IssueSnapshot `json:"open_issues,omitempty"`
}

// Timeline is the per-day series over the full observed date range plus the
// future projection window.
type Timeline struct {
	DailyData []DailyPoint `json:"daily_data"`
}

// TimelineReport pairs the daily series with fitted trend lines, one value
// per day, aligned by index with DailyData.
type TimelineReport struct {
	DailyData    []DailyPoint `json:"daily_data"`
	CreatedTrend []float64    `json:"created_trend"`
	ClosedTrend  []float64    `json:"closed_trend"`
	OpenTrend    []float64    `json:"open_trend"`
}

// FlowMetrics is the complete output of one analysis run.
type FlowMetrics struct {
	TotalTransitions int                           `json:"total_transitions"`
	UniqueStatuses   int                           `json:"unique_statuses"`
	FlowPatterns     []FlowPattern                 `json:"flow_patterns"`
	AllStatuses      []string                      `json:"all_statuses"`
	Loops            LoopReport                    `json:"loops"`
	TimeInStatus     map[string]TimeInStatusRecord `json:"time_in_status"`
	Timeline         Timeline                      `json:"timeline"`
	TotalIssues      int                           `json:"total_issues"`
}

// ProjectSyncMeta tracks incremental sync state for one project.
type ProjectSyncMeta struct {
	Project      string    `json:"project"`
	LastSyncAt   time.Time `json:"last_sync_at"`
	TotalTickets int       `json:"total_tickets"`
}
