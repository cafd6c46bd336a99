package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/cutarr/cutarr/internal/controllers"
	"github.com/cutarr/cutarr/internal/models"
	"github.com/sirupsen/logrus"
)

// analysisWebhookPayload is what the analysis service pushes when a
// detection run finishes
type analysisWebhookPayload struct {
	VideoID string                `json:"video_id"`
	Cuts    []*models.DetectedCut `json:"cuts"`
}

// WebhookHandler handles analysis-service webhook callbacks
type WebhookHandler struct {
	cutCtrl *controllers.CutController
	logger  *logrus.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(cutCtrl *controllers.CutController, logger *logrus.Logger) *WebhookHandler {
	return &WebhookHandler{
		cutCtrl: cutCtrl,
		logger:  logger,
	}
}

// ServeHTTP handles the webhook endpoint
func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var payload analysisWebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.logger.WithError(err).Error("Failed to decode webhook payload")
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}

	if payload.VideoID == "" {
		h.logger.Warn("Received analysis webhook without a video_id")
		http.Error(w, "video_id is required", http.StatusBadRequest)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"video_id": payload.VideoID,
		"cuts":     len(payload.Cuts),
	}).Info("Received analysis webhook")

	if err := h.cutCtrl.IngestCuts(payload.VideoID, payload.Cuts); err != nil {
		h.logger.WithError(err).Error("Failed to ingest webhook cuts")
		http.Error(w, "Failed to process webhook", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
