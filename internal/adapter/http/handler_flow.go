package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/flowlens/flowlens/internal/domain"
	"github.com/flowlens/flowlens/internal/usecase"
	"github.com/flowlens/flowlens/pkg/apperror"
)

// FlowService is the use case surface the handler depends on.
type FlowService interface {
	Analyze(ctx context.Context, req usecase.AnalyzeRequest) (*domain.FlowMetrics, error)
	Timeline(ctx context.Context, req usecase.AnalyzeRequest) (*domain.TimelineReport, error)
	Loops(ctx context.Context, req usecase.AnalyzeRequest) (*domain.LoopReport, error)
	TimeInStatus(ctx context.Context, req usecase.AnalyzeRequest) (map[string]domain.TimeInStatusRecord, error)
	Sync(ctx context.Context, project string) (*usecase.SyncResponse, error)
	ProjectMeta(ctx context.Context, project string) (*domain.ProjectSyncMeta, error)
}

// FlowHandler handles HTTP requests for workflow analytics.
type FlowHandler struct {
	service FlowService
}

// NewFlowHandler creates a new flow analytics handler.
func NewFlowHandler(service FlowService) *FlowHandler {
	return &FlowHandler{service: service}
}

// RegisterRoutes registers the analytics routes.
func (h *FlowHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/projects/{key}/flow", h.GetFlow).Methods("GET")
	router.HandleFunc("/api/v1/projects/{key}/timeline", h.GetTimeline).Methods("GET")
	router.HandleFunc("/api/v1/projects/{key}/loops", h.GetLoops).Methods("GET")
	router.HandleFunc("/api/v1/projects/{key}/time-in-status", h.GetTimeInStatus).Methods("GET")
	router.HandleFunc("/api/v1/projects/{key}/sync", h.SyncProject).Methods("POST")
	router.HandleFunc("/api/v1/projects/{key}", h.GetProject).Methods("GET")
}

// GetFlow returns the full workflow metrics for a project.
func (h *FlowHandler) GetFlow(w http.ResponseWriter, r *http.Request) {
	req := parseAnalyzeRequest(r)

	metrics, err := h.service.Analyze(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, metrics)
}

// GetTimeline returns the daily series with trend lines.
func (h *FlowHandler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	req := parseAnalyzeRequest(r)

	report, err := h.service.Timeline(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// GetLoops returns the rework report.
func (h *FlowHandler) GetLoops(w http.ResponseWriter, r *http.Request) {
	req := parseAnalyzeRequest(r)

	report, err := h.service.Loops(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// GetTimeInStatus returns per-status dwell time statistics.
func (h *FlowHandler) GetTimeInStatus(w http.ResponseWriter, r *http.Request) {
	req := parseAnalyzeRequest(r)

	records, err := h.service.TimeInStatus(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, records)
}

// SyncProject pulls tickets from the configured source into the store.
func (h *FlowHandler) SyncProject(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	response, err := h.service.Sync(r.Context(), vars["key"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, response)
}

// GetProject returns the project's last sync metadata.
func (h *FlowHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	meta, err := h.service.ProjectMeta(r.Context(), vars["key"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, meta)
}

func parseAnalyzeRequest(r *http.Request) usecase.AnalyzeRequest {
	vars := mux.Vars(r)
	query := r.URL.Query()

	req := usecase.AnalyzeRequest{
		Project:   vars["key"],
		StartDate: query.Get("start_date"),
		EndDate:   query.Get("end_date"),
	}

	if futureDays := query.Get("future_days"); futureDays != "" {
		if parsed, err := strconv.Atoi(futureDays); err == nil && parsed >= 0 {
			req.FutureDays = parsed
		}
	}
	if include := query.Get("include_open"); include != "" {
		if parsed, err := strconv.ParseBool(include); err == nil {
			req.IncludeOpenIssues = parsed
		}
	}
	return req
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, err error) {
	appErr := apperror.MapError(err)
	respondJSON(w, appErr.Status, map[string]interface{}{
		"error": appErr,
	})
}
