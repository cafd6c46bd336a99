package controllers

import (
	"context"
	"fmt"

	"github.com/cutarr/cutarr/internal/cuts"
	"github.com/cutarr/cutarr/internal/engine"
	"github.com/cutarr/cutarr/internal/models"
	"github.com/cutarr/cutarr/internal/services/analysis"
	"github.com/cutarr/cutarr/internal/utils"
	"github.com/sirupsen/logrus"
)

// CutController fetches detected cuts and rewrites timelines around them
type CutController struct {
	db           *models.Database
	client       *analysis.Client // nil when no analysis service is configured
	timelineCtrl *TimelineController
	logger       *logrus.Logger
}

// NewCutController creates a new cut controller
func NewCutController(db *models.Database, client *analysis.Client, timelineCtrl *TimelineController, logger *logrus.Logger) *CutController {
	return &CutController{
		db:           db,
		client:       client,
		timelineCtrl: timelineCtrl,
		logger:       logger,
	}
}

// RefreshCuts fetches the current cut set for a source video and applies it
// to the project's timeline. Returns whether the timeline changed. On fetch
// failure the timeline is left untouched.
func (c *CutController) RefreshCuts(ctx context.Context, projectID, videoID string) (bool, error) {
	eng, err := c.timelineCtrl.Open(projectID)
	if err != nil {
		return false, err
	}

	cutList, err := c.fetchCuts(ctx, videoID)
	if err != nil {
		utils.CutApplications.WithLabelValues("failed").Inc()
		return false, fmt.Errorf("cuts unavailable, timeline unchanged: %w", err)
	}

	state := eng.State()
	var items []models.TimelineItem
	existing := make(map[string]bool)
	for _, track := range state.Tracks {
		for _, item := range track.Items {
			items = append(items, item)
			existing[item.ID] = true
		}
	}

	result := cuts.Apply(items, cutList, videoID, state.FPS)
	for _, originalID := range result.Divergences {
		c.logger.WithFields(logrus.Fields{
			"video_id":         videoID,
			"original_item_id": originalID,
		}).Warn("Reconstructed source span disagreed with segment durations, using segment sum")
	}

	// Skip the bulk update when the pass was a no-op. Re-splitting an
	// unchanged cut set mints fresh segment ids, so this compares the
	// id-stable signature rather than the removal list.
	if cuts.Signature(result.ModifiedItems) == cuts.Signature(items) {
		utils.CutApplications.WithLabelValues("unchanged").Inc()
		return false, nil
	}

	var newItems []models.TimelineItem
	for _, item := range result.ModifiedItems {
		if !existing[item.ID] {
			newItems = append(newItems, item)
		}
	}

	if len(newItems) == 0 && len(result.RemovedItemIDs) == 0 {
		utils.CutApplications.WithLabelValues("unchanged").Inc()
		return false, nil
	}

	if err := c.timelineCtrl.Dispatch(projectID, engine.BulkUpdateItems{
		NewItems:       newItems,
		RemovedItemIDs: result.RemovedItemIDs,
	}); err != nil {
		utils.CutApplications.WithLabelValues("failed").Inc()
		return false, err
	}

	utils.CutApplications.WithLabelValues("changed").Inc()
	c.logger.WithFields(logrus.Fields{
		"project_id": projectID,
		"video_id":   videoID,
		"added":      len(newItems),
		"removed":    len(result.RemovedItemIDs),
	}).Info("Cuts applied to timeline")
	return true, nil
}

// fetchCuts prefers the remote analysis service, falling back to locally
// ingested cuts when no service is configured or the fetch fails
func (c *CutController) fetchCuts(ctx context.Context, videoID string) ([]*models.DetectedCut, error) {
	if c.client != nil {
		cutList, err := c.client.FetchCuts(ctx, videoID, false)
		if err == nil {
			// Keep the local store in sync for offline fallback
			if storeErr := c.db.UpsertCuts(cutList); storeErr != nil {
				c.logger.WithError(storeErr).Warn("Failed to store fetched cuts")
			}
			return cutList, nil
		}
		c.logger.WithError(err).WithField("video_id", videoID).Warn("Remote cut fetch failed, trying local store")
	}

	cutList, err := c.db.GetCutsByVideoID(videoID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to read local cuts: %w", err)
	}
	return cutList, nil
}

// IngestCuts stores cuts pushed by the analysis service webhook
func (c *CutController) IngestCuts(videoID string, cutList []*models.DetectedCut) error {
	for _, cut := range cutList {
		cut.VideoID = videoID
	}
	if err := c.db.UpsertCuts(cutList); err != nil {
		return fmt.Errorf("failed to ingest cuts: %w", err)
	}
	if c.client != nil {
		c.client.Invalidate(videoID)
	}
	c.logger.WithFields(logrus.Fields{
		"video_id": videoID,
		"count":    len(cutList),
	}).Info("Cuts ingested")
	return nil
}

// ToggleCuts activates or deactivates cuts by ID. Returns how many were modified.
func (c *CutController) ToggleCuts(cutIDs []string, active bool) (int, error) {
	// Invalidate cached lists for every affected video
	videoIDs := make(map[string]bool)
	for _, id := range cutIDs {
		if cut, err := c.db.GetCut(id); err == nil {
			videoIDs[cut.VideoID] = true
		}
	}

	modified, err := c.db.SetCutsActive(cutIDs, active)
	if err != nil {
		return modified, err
	}

	if c.client != nil {
		for videoID := range videoIDs {
			c.client.Invalidate(videoID)
		}
	}
	return modified, nil
}

// SourceVideos lists the distinct source video IDs referenced by a project's
// timeline, for the periodic cut refresh job
func (c *CutController) SourceVideos(projectID string) ([]string, error) {
	eng, err := c.timelineCtrl.Open(projectID)
	if err != nil {
		return nil, err
	}

	state := eng.State()
	seen := make(map[string]bool)
	var videoIDs []string
	for _, track := range state.Tracks {
		for _, item := range track.Items {
			if item.Type == models.MediaTypeVideo && item.Props.VideoID != "" && !seen[item.Props.VideoID] {
				seen[item.Props.VideoID] = true
				videoIDs = append(videoIDs, item.Props.VideoID)
			}
		}
	}
	return videoIDs, nil
}
