package controllers

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cutarr/cutarr/internal/config"
	"github.com/cutarr/cutarr/internal/cuts"
	"github.com/cutarr/cutarr/internal/engine"
	"github.com/cutarr/cutarr/internal/models"
	"github.com/cutarr/cutarr/internal/utils"
	"github.com/sirupsen/logrus"
	"github.com/timshannon/bolthold"
)

// session pairs an open engine with its last-persisted content hash, so
// autosave can skip flushes when nothing meaningfully changed
type session struct {
	engine        *engine.Engine
	lastSavedHash string
}

// TimelineController owns the open timeline sessions and their persistence
type TimelineController struct {
	db     *models.Database
	cfg    *config.Config
	logger *logrus.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

// NewTimelineController creates a new timeline controller
func NewTimelineController(db *models.Database, cfg *config.Config, logger *logrus.Logger) *TimelineController {
	return &TimelineController{
		db:       db,
		cfg:      cfg,
		logger:   logger,
		sessions: make(map[string]*session),
	}
}

// Open returns the engine for a project, loading the persisted timeline on
// first access. Projects with no stored timeline start from the default
// empty document.
func (c *TimelineController) Open(projectID string) (*engine.Engine, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if sess, ok := c.sessions[projectID]; ok {
		return sess.engine, nil
	}

	eng := engine.New(c.cfg.FPS, engine.Config{
		MinZoom:     c.cfg.MinZoom,
		MaxZoom:     c.cfg.MaxZoom,
		TrackHeight: engine.DefaultConfig().TrackHeight,
	})

	saved, err := c.db.GetTimeline(projectID)
	switch err {
	case nil:
		eng.Dispatch(engine.LoadTimeline{State: saved.ToState(c.cfg.FPS)})
		c.logger.WithFields(logrus.Fields{
			"project_id": projectID,
			"version":    saved.Version,
		}).Info("Timeline loaded")
	case bolthold.ErrNotFound:
		c.logger.WithField("project_id", projectID).Info("No saved timeline, starting empty")
	default:
		return nil, fmt.Errorf("failed to load timeline: %w", err)
	}

	state := eng.State()
	c.sessions[projectID] = &session{
		engine:        eng,
		lastSavedHash: contentHash(&state),
	}
	return eng, nil
}

// Dispatch applies an action to a project's timeline, opening it if needed
func (c *TimelineController) Dispatch(projectID string, action engine.Action) error {
	eng, err := c.Open(projectID)
	if err != nil {
		return err
	}

	eng.Dispatch(action)
	utils.ActionsApplied.WithLabelValues(fmt.Sprintf("%T", action)).Inc()

	switch action.(type) {
	case engine.Undo:
		utils.HistoryOps.WithLabelValues("undo").Inc()
	case engine.Redo:
		utils.HistoryOps.WithLabelValues("redo").Inc()
	}
	return nil
}

// Save persists a project's timeline. Returns false without touching the
// store when the content hash matches the last save.
func (c *TimelineController) Save(projectID string, status models.TimelineStatus) (bool, error) {
	c.mu.Lock()
	sess, ok := c.sessions[projectID]
	c.mu.Unlock()
	if !ok {
		return false, fmt.Errorf("project %s is not open", projectID)
	}

	state := sess.engine.State()
	hash := contentHash(&state)
	if hash == sess.lastSavedHash && status != models.StatusManuallySaved {
		utils.Autosaves.WithLabelValues("skipped").Inc()
		return false, nil
	}

	record := models.SavedFromState(projectID, &state, status)

	operation := func() error {
		return c.db.SaveTimeline(record)
	}
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = 5 * time.Second
	if err := backoff.Retry(operation, policy); err != nil {
		utils.Autosaves.WithLabelValues("failed").Inc()
		return false, fmt.Errorf("failed to save timeline: %w", err)
	}

	c.mu.Lock()
	if sess, ok := c.sessions[projectID]; ok {
		sess.lastSavedHash = hash
	}
	c.mu.Unlock()

	utils.Autosaves.WithLabelValues("saved").Inc()
	c.logger.WithFields(logrus.Fields{
		"project_id": projectID,
		"version":    record.Version,
		"status":     status,
	}).Debug("Timeline saved")
	return true, nil
}

// SaveAll flushes every open session; failures are logged and skipped so one
// broken project never blocks the rest
func (c *TimelineController) SaveAll(status models.TimelineStatus) {
	for _, projectID := range c.OpenProjects() {
		if _, err := c.Save(projectID, status); err != nil {
			c.logger.WithError(err).WithField("project_id", projectID).Error("Autosave failed")
		}
	}
}

// Close saves and drops a project's session
func (c *TimelineController) Close(projectID string) error {
	if _, err := c.Save(projectID, models.StatusAutoSaved); err != nil {
		return err
	}
	c.mu.Lock()
	delete(c.sessions, projectID)
	c.mu.Unlock()
	return nil
}

// Delete removes a project's timeline from the store and drops its session
func (c *TimelineController) Delete(projectID string) error {
	c.mu.Lock()
	delete(c.sessions, projectID)
	c.mu.Unlock()

	err := c.db.DeleteTimeline(projectID)
	if err == bolthold.ErrNotFound {
		return nil
	}
	return err
}

// OpenProjects lists the project IDs with live sessions, sorted for stable output
func (c *TimelineController) OpenProjects() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := make([]string, 0, len(c.sessions))
	for id := range c.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Summary returns the text overview of a project's timeline
func (c *TimelineController) Summary(projectID string) (string, error) {
	eng, err := c.Open(projectID)
	if err != nil {
		return "", err
	}
	return eng.Summary(), nil
}

// contentHash digests the persistence-relevant parts of a state. Selection
// and playback are excluded, matching what actually gets stored.
func contentHash(state *models.TimelineState) string {
	var items []models.TimelineItem
	for _, track := range state.Tracks {
		items = append(items, track.Items...)
	}
	return fmt.Sprintf("%d-tracks/%s/%d/%g", len(state.Tracks), cuts.Signature(items), state.PlayheadPosition, state.Zoom)
}
