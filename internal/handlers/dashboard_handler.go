package handlers

import (
	"fmt"
	"net/http"
	"time"

	"omcounter/internal/service"
)

// DashboardHandler serves the read-only reporting endpoints
type DashboardHandler struct {
	reportService *service.ReportService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(reportService *service.ReportService) *DashboardHandler {
	return &DashboardHandler{reportService: reportService}
}

// Get handles GET /api/dashboard
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	dashboard, err := h.reportService.GetDashboard(user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dashboard)
}

// ExportCSV handles GET /api/dashboard/export. The export is gated on
// premium inside the service; headers are only written once the gate
// passes.
func (h *DashboardHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	if err := h.reportService.ExportCSV(user.ID, &deferredCSVWriter{w: w}); err != nil {
		respondServiceError(w, err)
		return
	}
}

// deferredCSVWriter sets the download headers on first write so a
// failed entitlement check can still respond with JSON
type deferredCSVWriter struct {
	w       http.ResponseWriter
	started bool
}

func (d *deferredCSVWriter) Write(p []byte) (int, error) {
	if !d.started {
		d.started = true
		filename := fmt.Sprintf("omcounter-export-%s.csv", time.Now().Format("2006-01-02"))
		d.w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		d.w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	}
	return d.w.Write(p)
}
