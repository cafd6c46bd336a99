package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/cutarr/cutarr/internal/controllers"
	"github.com/cutarr/cutarr/internal/cuts"
	"github.com/cutarr/cutarr/internal/models"
	"github.com/sirupsen/logrus"
)

// CutsHandler lists and toggles detected cuts for a source video
type CutsHandler struct {
	db      *models.Database
	cutCtrl *controllers.CutController
	logger  *logrus.Logger
}

// NewCutsHandler creates a new cuts handler
func NewCutsHandler(db *models.Database, cutCtrl *controllers.CutController, logger *logrus.Logger) *CutsHandler {
	return &CutsHandler{
		db:      db,
		cutCtrl: cutCtrl,
		logger:  logger,
	}
}

// ServeHTTP handles GET/POST /api/videos/{videoID}/cuts
func (h *CutsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.toggle(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *CutsHandler) list(w http.ResponseWriter, r *http.Request) {
	videoID := r.PathValue("videoID")
	activeOnly := r.URL.Query().Get("active") == "true"

	cutList, err := h.db.GetCutsByVideoID(videoID, activeOnly)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list cuts")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	stats := cuts.Summarize(cutList)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"success":    true,
		"cuts":       cutList,
		"time_saved": stats.TimeSaved,
	})
}

// cutToggleRequest activates or deactivates a batch of cuts
type cutToggleRequest struct {
	CutIDs   []string `json:"cutIds"`
	IsActive bool     `json:"isActive"`
}

func (h *CutsHandler) toggle(w http.ResponseWriter, r *http.Request) {
	var req cutToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}
	if len(req.CutIDs) == 0 {
		http.Error(w, "cutIds is required", http.StatusBadRequest)
		return
	}

	modified, err := h.cutCtrl.ToggleCuts(req.CutIDs, req.IsActive)
	if err != nil {
		h.logger.WithError(err).Error("Failed to toggle cuts")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"success":      true,
		"cutsModified": modified,
	})
}

// CutApplyHandler triggers a cut re-application pass for a project
type CutApplyHandler struct {
	cutCtrl *controllers.CutController
	logger  *logrus.Logger
}

// NewCutApplyHandler creates a new cut apply handler
func NewCutApplyHandler(cutCtrl *controllers.CutController, logger *logrus.Logger) *CutApplyHandler {
	return &CutApplyHandler{
		cutCtrl: cutCtrl,
		logger:  logger,
	}
}

// ServeHTTP handles POST /api/timeline/{projectID}/cuts/apply. With no body
// video ID, cuts are refreshed for every source video the timeline references.
func (h *CutApplyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	projectID := r.PathValue("projectID")

	var req struct {
		VideoID string `json:"videoId"`
	}
	// An empty body is fine; it means "all source videos"
	_ = json.NewDecoder(r.Body).Decode(&req)

	videoIDs := []string{req.VideoID}
	if req.VideoID == "" {
		var err error
		videoIDs, err = h.cutCtrl.SourceVideos(projectID)
		if err != nil {
			h.logger.WithError(err).Error("Failed to list source videos")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
	}

	changed := false
	for _, videoID := range videoIDs {
		videoChanged, err := h.cutCtrl.RefreshCuts(r.Context(), projectID, videoID)
		if err != nil {
			h.logger.WithError(err).WithField("video_id", videoID).Warn("Cut application failed, timeline unchanged")
			http.Error(w, "Cuts unavailable, timeline unchanged", http.StatusBadGateway)
			return
		}
		changed = changed || videoChanged
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"changed": changed,
	})
}
