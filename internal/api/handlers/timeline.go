package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/cutarr/cutarr/internal/controllers"
	"github.com/cutarr/cutarr/internal/export"
	"github.com/cutarr/cutarr/internal/models"
	"github.com/sirupsen/logrus"
)

// TimelineHandler handles timeline document requests
type TimelineHandler struct {
	timelineCtrl *controllers.TimelineController
	logger       *logrus.Logger
}

// NewTimelineHandler creates a new timeline handler
func NewTimelineHandler(timelineCtrl *controllers.TimelineController, logger *logrus.Logger) *TimelineHandler {
	return &TimelineHandler{
		timelineCtrl: timelineCtrl,
		logger:       logger,
	}
}

// ServeHTTP handles GET/POST/DELETE /api/timeline/{projectID}
func (h *TimelineHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("projectID")

	switch r.Method {
	case http.MethodGet:
		h.get(w, projectID)
	case http.MethodPost:
		h.save(w, projectID)
	case http.MethodDelete:
		h.delete(w, projectID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *TimelineHandler) get(w http.ResponseWriter, projectID string) {
	eng, err := h.timelineCtrl.Open(projectID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to open timeline")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	state := eng.State()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"success":  true,
		"timeline": state,
	})
}

func (h *TimelineHandler) save(w http.ResponseWriter, projectID string) {
	if _, err := h.timelineCtrl.Open(projectID); err != nil {
		h.logger.WithError(err).Error("Failed to open timeline")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	saved, err := h.timelineCtrl.Save(projectID, models.StatusManuallySaved)
	if err != nil {
		h.logger.WithError(err).Error("Failed to save timeline")
		http.Error(w, "Failed to save timeline, retry", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"saved":   saved,
	})
}

func (h *TimelineHandler) delete(w http.ResponseWriter, projectID string) {
	if err := h.timelineCtrl.Delete(projectID); err != nil {
		h.logger.WithError(err).Error("Failed to delete timeline")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "deleted"})
}

// ExportHandler renders a timeline as a Final Cut Pro 7 XML document
type ExportHandler struct {
	timelineCtrl *controllers.TimelineController
	logger       *logrus.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(timelineCtrl *controllers.TimelineController, logger *logrus.Logger) *ExportHandler {
	return &ExportHandler{
		timelineCtrl: timelineCtrl,
		logger:       logger,
	}
}

// ServeHTTP handles GET /api/timeline/{projectID}/export
func (h *ExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	projectID := r.PathValue("projectID")
	eng, err := h.timelineCtrl.Open(projectID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to open timeline")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	projectName := r.URL.Query().Get("name")
	if projectName == "" {
		projectName = "Timeline Export"
	}

	state := eng.State()
	xml := export.ToFCP7XML(&state, projectName)

	w.Header().Set("Content-Type", "application/xml")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", projectID+"_export.xml"))
	w.Write([]byte(xml))
}

// SummaryHandler returns the text overview of a timeline
type SummaryHandler struct {
	timelineCtrl *controllers.TimelineController
	logger       *logrus.Logger
}

// NewSummaryHandler creates a new summary handler
func NewSummaryHandler(timelineCtrl *controllers.TimelineController, logger *logrus.Logger) *SummaryHandler {
	return &SummaryHandler{
		timelineCtrl: timelineCtrl,
		logger:       logger,
	}
}

// ServeHTTP handles GET /api/timeline/{projectID}/summary
func (h *SummaryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	projectID := r.PathValue("projectID")
	summary, err := h.timelineCtrl.Summary(projectID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to summarize timeline")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"summary": summary})
}
