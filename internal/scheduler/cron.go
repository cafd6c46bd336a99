package scheduler

import (
	"context"
	"fmt"

	"github.com/cutarr/cutarr/internal/config"
	"github.com/cutarr/cutarr/internal/controllers"
	"github.com/cutarr/cutarr/internal/models"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler manages the periodic autosave and cut-refresh jobs. Both are
// idempotent: autosave is content-hash guarded and cut refresh is
// signature-guarded, so overlapping runs are harmless.
type Scheduler struct {
	cron         *cron.Cron
	timelineCtrl *controllers.TimelineController
	cutCtrl      *controllers.CutController
	cfg          *config.Config
	logger       *logrus.Logger
}

// NewScheduler creates a new scheduler
func NewScheduler(
	timelineCtrl *controllers.TimelineController,
	cutCtrl *controllers.CutController,
	cfg *config.Config,
	logger *logrus.Logger,
) *Scheduler {
	return &Scheduler{
		cron:         cron.New(),
		timelineCtrl: timelineCtrl,
		cutCtrl:      cutCtrl,
		cfg:          cfg,
		logger:       logger,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.logger.Info("Starting scheduler")

	_, err := s.cron.AddFunc(fmt.Sprintf("@every %ds", s.cfg.AutosaveIntervalSeconds), func() {
		s.runAutosave()
	})
	if err != nil {
		return fmt.Errorf("failed to add autosave job: %w", err)
	}

	_, err = s.cron.AddFunc(fmt.Sprintf("@every %dm", s.cfg.CutRefreshMinutes), func() {
		s.runCutRefresh()
	})
	if err != nil {
		return fmt.Errorf("failed to add cut refresh job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Scheduler started")
	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	s.cron.Stop()

	// Final flush so nothing dirty is lost on shutdown
	s.timelineCtrl.SaveAll(models.StatusAutoSaved)
}

// runAutosave flushes every open session; unchanged timelines are skipped
// inside Save via the content hash
func (s *Scheduler) runAutosave() {
	s.logger.Debug("Running scheduled autosave")
	s.timelineCtrl.SaveAll(models.StatusAutoSaved)
}

// runCutRefresh re-fetches and re-applies cuts for every source video
// referenced by an open timeline
func (s *Scheduler) runCutRefresh() {
	s.logger.Debug("Running scheduled cut refresh")
	ctx := context.Background()

	for _, projectID := range s.timelineCtrl.OpenProjects() {
		videoIDs, err := s.cutCtrl.SourceVideos(projectID)
		if err != nil {
			s.logger.WithError(err).WithField("project_id", projectID).Error("Failed to list source videos")
			continue
		}

		for _, videoID := range videoIDs {
			changed, err := s.cutCtrl.RefreshCuts(ctx, projectID, videoID)
			if err != nil {
				s.logger.WithError(err).WithFields(logrus.Fields{
					"project_id": projectID,
					"video_id":   videoID,
				}).Warn("Cut refresh failed, timeline unchanged")
				continue
			}
			if changed {
				s.logger.WithFields(logrus.Fields{
					"project_id": projectID,
					"video_id":   videoID,
				}).Info("Cut refresh updated timeline")
			}
		}
	}
}
