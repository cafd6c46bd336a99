package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/cutarr/cutarr/internal/controllers"
	"github.com/cutarr/cutarr/internal/models"
	"github.com/sirupsen/logrus"
)

// StatusHandler handles status requests
type StatusHandler struct {
	db           *models.Database
	timelineCtrl *controllers.TimelineController
	logger       *logrus.Logger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(db *models.Database, timelineCtrl *controllers.TimelineController, logger *logrus.Logger) *StatusHandler {
	return &StatusHandler{
		db:           db,
		timelineCtrl: timelineCtrl,
		logger:       logger,
	}
}

// StatusResponse represents the status response
type StatusResponse struct {
	SavedTimelines    int            `json:"saved_timelines"`
	OpenSessions      int            `json:"open_sessions"`
	OpenProjects      []string       `json:"open_projects"`
	TimelinesByStatus map[string]int `json:"timelines_by_status"`
}

// ServeHTTP handles the status endpoint
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	timelines, err := h.db.GetAllTimelines()
	if err != nil {
		h.logger.WithError(err).Error("Failed to get timelines")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	openProjects := h.timelineCtrl.OpenProjects()

	response := StatusResponse{
		SavedTimelines:    len(timelines),
		OpenSessions:      len(openProjects),
		OpenProjects:      openProjects,
		TimelinesByStatus: make(map[string]int),
	}

	for _, timeline := range timelines {
		response.TimelinesByStatus[string(timeline.Status)]++
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
