package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/flowlens/flowlens/internal/analysis"
	"github.com/flowlens/flowlens/internal/domain"
	"github.com/flowlens/flowlens/internal/logger"
	"github.com/flowlens/flowlens/internal/ports"
)

// AnalyzeRequest carries the parameters shared by the analysis endpoints.
type AnalyzeRequest struct {
	Project           string `json:"project"`
	StartDate         string `json:"start_date,omitempty"`
	EndDate           string `json:"end_date,omitempty"`
	FutureDays        int    `json:"future_days,omitempty"`
	IncludeOpenIssues bool   `json:"include_open_issues,omitempty"`
}

// SyncResponse reports the outcome of a project sync.
type SyncResponse struct {
	Project      string    `json:"project"`
	TotalTickets int       `json:"total_tickets"`
	SyncedAt     time.Time `json:"synced_at"`
}

// FlowUseCase orchestrates ticket loading and analysis: store behind cache,
// optional external source for syncing, and the analysis engine on top.
type FlowUseCase struct {
	store      ports.TicketStore
	cache      ports.TicketCache
	source     ports.TicketSource
	taxonomy   *domain.StatusTaxonomy
	log        logger.Logger
	futureDays int
}

// NewFlowUseCase creates a flow analytics use case. cache and source may be
// nil; taxonomy nil means the default taxonomy.
func NewFlowUseCase(
	store ports.TicketStore,
	cache ports.TicketCache,
	source ports.TicketSource,
	taxonomy *domain.StatusTaxonomy,
	log logger.Logger,
	futureDays int,
) *FlowUseCase {
	if taxonomy == nil {
		taxonomy = domain.DefaultTaxonomy()
	}
	return &FlowUseCase{
		store:      store,
		cache:      cache,
		source:     source,
		taxonomy:   taxonomy,
		log:        log,
		futureDays: futureDays,
	}
}

// Analyze computes the full workflow metrics for a project.
func (uc *FlowUseCase) Analyze(ctx context.Context, req AnalyzeRequest) (*domain.FlowMetrics, error) {
	started := time.Now()
	runID := uuid.NewString()

	if err := uc.validateRange(req.StartDate, req.EndDate); err != nil {
		return nil, err
	}

	tickets, err := uc.loadTickets(ctx, req.Project)
	if err != nil {
		return nil, err
	}

	analyzer := analysis.NewFlowAnalyzer(tickets, uc.taxonomy, req.StartDate, req.EndDate)
	metrics := analyzer.FlowMetrics(analysis.TimelineOptions{
		FutureDays:        uc.resolveFutureDays(req.FutureDays),
		IncludeOpenIssues: req.IncludeOpenIssues,
	})

	logger.LogPerformance(ctx, uc.log, "analyze", time.Since(started), map[string]interface{}{
		"run_id":       runID,
		"project":      req.Project,
		"total_issues": metrics.TotalIssues,
	})
	return metrics, nil
}

// Timeline computes the daily created/closed/open series with trend lines.
// The series is always computed over the full ticket history and then
// sliced to the requested window, so trend fits do not shift with the
// display range.
func (uc *FlowUseCase) Timeline(ctx context.Context, req AnalyzeRequest) (*domain.TimelineReport, error) {
	started := time.Now()
	runID := uuid.NewString()

	if err := uc.validateRange(req.StartDate, req.EndDate); err != nil {
		return nil, err
	}

	tickets, err := uc.loadTickets(ctx, req.Project)
	if err != nil {
		return nil, err
	}

	futureDays := uc.resolveFutureDays(req.FutureDays)
	analyzer := analysis.NewFlowAnalyzer(tickets, uc.taxonomy, "", "")
	timeline := analyzer.TimelineMetrics(analysis.TimelineOptions{
		FutureDays:        futureDays,
		IncludeOpenIssues: req.IncludeOpenIssues,
	})
	report := analysis.TimelineWithTrends(timeline, futureDays)

	if req.StartDate != "" || req.EndDate != "" {
		report, err = sliceReport(report, req.StartDate, req.EndDate)
		if err != nil {
			return nil, err
		}
	}

	logger.LogPerformance(ctx, uc.log, "timeline", time.Since(started), map[string]interface{}{
		"run_id":  runID,
		"project": req.Project,
		"days":    len(report.DailyData),
	})
	return &report, nil
}

// Loops reports rework patterns for a project.
func (uc *FlowUseCase) Loops(ctx context.Context, req AnalyzeRequest) (*domain.LoopReport, error) {
	if err := uc.validateRange(req.StartDate, req.EndDate); err != nil {
		return nil, err
	}

	tickets, err := uc.loadTickets(ctx, req.Project)
	if err != nil {
		return nil, err
	}

	analyzer := analysis.NewFlowAnalyzer(tickets, uc.taxonomy, req.StartDate, req.EndDate)
	report := analyzer.Loops()
	return &report, nil
}

// TimeInStatus reports per-status dwell time statistics for a project.
func (uc *FlowUseCase) TimeInStatus(ctx context.Context, req AnalyzeRequest) (map[string]domain.TimeInStatusRecord, error) {
	if err := uc.validateRange(req.StartDate, req.EndDate); err != nil {
		return nil, err
	}

	tickets, err := uc.loadTickets(ctx, req.Project)
	if err != nil {
		return nil, err
	}

	analyzer := analysis.NewFlowAnalyzer(tickets, uc.taxonomy, req.StartDate, req.EndDate)
	return analyzer.TimeInStatus(), nil
}

// Sync pulls the project's tickets from the configured source, replaces
// the stored set, and invalidates the cache.
func (uc *FlowUseCase) Sync(ctx context.Context, project string) (*SyncResponse, error) {
	started := time.Now()
	runID := uuid.NewString()

	if uc.source == nil {
		return nil, domain.ErrNoTicketSource
	}

	tickets, err := uc.source.FetchTickets(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tickets: %w", err)
	}

	if err := uc.store.UpsertTickets(ctx, project, tickets); err != nil {
		return nil, fmt.Errorf("failed to store tickets: %w", err)
	}

	total, err := uc.store.CountByProject(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("failed to count tickets: %w", err)
	}

	syncedAt := time.Now().UTC()
	if err := uc.store.UpdateProjectMeta(ctx, project, syncedAt, total); err != nil {
		return nil, fmt.Errorf("failed to update project metadata: %w", err)
	}

	if uc.cache != nil {
		if err := uc.cache.Invalidate(ctx, project); err != nil {
			uc.log.Warn(ctx, "failed to invalidate ticket cache", map[string]interface{}{
				"project": project,
				"error":   err.Error(),
			})
		}
	}

	logger.LogPerformance(ctx, uc.log, "sync", time.Since(started), map[string]interface{}{
		"run_id":        runID,
		"project":       project,
		"total_tickets": total,
	})
	return &SyncResponse{Project: project, TotalTickets: total, SyncedAt: syncedAt}, nil
}

// ProjectMeta returns the last sync metadata for a project.
func (uc *FlowUseCase) ProjectMeta(ctx context.Context, project string) (*domain.ProjectSyncMeta, error) {
	meta, err := uc.store.ProjectMeta(ctx, project)
	if err != nil {
		return nil, err
	}
	return meta, nil
}

func (uc *FlowUseCase) validateRange(start, end string) error {
	if start != "" && !domain.ValidDate(start) {
		return fmt.Errorf("start date %q: %w", start, domain.ErrInvalidDate)
	}
	if end != "" && !domain.ValidDate(end) {
		return fmt.Errorf("end date %q: %w", end, domain.ErrInvalidDate)
	}
	if start != "" && end != "" && start > end {
		return fmt.Errorf("start %q after end %q: %w", start, end, domain.ErrInvalidDateRange)
	}
	return nil
}

func (uc *FlowUseCase) resolveFutureDays(requested int) int {
	if requested > 0 {
		return requested
	}
	return uc.futureDays
}

// loadTickets reads through the cache. Cache failures degrade to the store
// with a warning; only store failures surface.
func (uc *FlowUseCase) loadTickets(ctx context.Context, project string) ([]*domain.Ticket, error) {
	if uc.cache != nil {
		tickets, hit, err := uc.cache.GetTickets(ctx, project)
		if err != nil {
			uc.log.Warn(ctx, "ticket cache read failed", map[string]interface{}{
				"project": project,
				"error":   err.Error(),
			})
		} else if hit {
			return tickets, nil
		}
	}

	tickets, err := uc.store.ListByProject(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("failed to load tickets: %w", err)
	}
	if len(tickets) == 0 {
		if _, err := uc.store.ProjectMeta(ctx, project); err != nil {
			return nil, err
		}
	}

	if uc.cache != nil {
		if err := uc.cache.SetTickets(ctx, project, tickets); err != nil {
			uc.log.Warn(ctx, "ticket cache write failed", map[string]interface{}{
				"project": project,
				"error":   err.Error(),
			})
		}
	}
	return tickets, nil
}

func sliceReport(report domain.TimelineReport, start, end string) (domain.TimelineReport, error) {
	full := report.DailyData
	sliced, err := analysis.SliceSeries(full, start, end)
	if err != nil {
		return domain.TimelineReport{}, err
	}

	// Trend slices must track the same index window as the daily series.
	lo := 0
	for lo < len(full) && (start != "" && full[lo].Date < start) {
		lo++
	}
	hi := lo + len(sliced)

	report.DailyData = sliced
	report.CreatedTrend = sliceTrend(report.CreatedTrend, lo, hi)
	report.ClosedTrend = sliceTrend(report.ClosedTrend, lo, hi)
	report.OpenTrend = sliceTrend(report.OpenTrend, lo, hi)
	return report, nil
}

func sliceTrend(trend []float64, lo, hi int) []float64 {
	if lo >= len(trend) {
		return []float64{}
	}
	if hi > len(trend) {
		hi = len(trend)
	}
	return trend[lo:hi]
}
