package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hearthbot/hearth/internal/insights"
)

// InsightsHandler implements HTTP handlers over the telemetry collector.
type InsightsHandler struct {
	collector *insights.Collector
}

// NewInsightsHandler creates a new InsightsHandler.
func NewInsightsHandler(collector *insights.Collector) *InsightsHandler {
	return &InsightsHandler{collector: collector}
}

// HandleListInsights returns aggregate counters and flags for every form
// that has seen traffic.
// GET /api/insights
func (h *InsightsHandler) HandleListInsights(w http.ResponseWriter, r *http.Request) {
	all := h.collector.All()
	resp := struct {
		Insights   []insights.FormInsights `json:"insights"`
		TotalCount int                     `json:"total_count"`
	}{
		Insights:   all,
		TotalCount: len(all),
	}
	if resp.Insights == nil {
		resp.Insights = []insights.FormInsights{}
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleGetFormInsights returns one form's counters and flags.
// GET /api/insights/{form}
func (h *InsightsHandler) HandleGetFormInsights(w http.ResponseWriter, r *http.Request) {
	form := chi.URLParam(r, "form")
	fi, ok := h.collector.Form(form)
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no telemetry for form "+form)
		return
	}
	writeJSON(w, http.StatusOK, fi)
}
