package models

import (
	"fmt"
	"time"

	"github.com/timshannon/bolthold"
	"go.etcd.io/bbolt"
)

// Database wraps the bolthold store
type Database struct {
	store *bolthold.Store
}

// NewDatabase creates a new database connection
func NewDatabase(path string) (*Database, error) {
	store, err := bolthold.Open(path, 0600, &bolthold.Options{
		Options: &bbolt.Options{
			Timeout: 1 * time.Second,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Database{store: store}, nil
}

// Close closes the database connection
func (db *Database) Close() error {
	return db.store.Close()
}

// Timeline operations

// SaveTimeline upserts a timeline record, bumping its version
func (db *Database) SaveTimeline(timeline *SavedTimeline) error {
	now := time.Now()

	var existing SavedTimeline
	err := db.store.Get(timeline.ProjectID, &existing)
	switch err {
	case nil:
		timeline.Version = existing.Version + 1
		timeline.CreatedAt = existing.CreatedAt
		if timeline.Title == "" {
			timeline.Title = existing.Title
		}
	case bolthold.ErrNotFound:
		timeline.Version = 1
		timeline.CreatedAt = now
	default:
		return fmt.Errorf("failed to read existing timeline: %w", err)
	}

	timeline.UpdatedAt = now
	timeline.LastSavedAt = now
	return db.store.Upsert(timeline.ProjectID, timeline)
}

// GetTimeline retrieves a timeline by project ID
func (db *Database) GetTimeline(projectID string) (*SavedTimeline, error) {
	var timeline SavedTimeline
	err := db.store.Get(projectID, &timeline)
	if err != nil {
		return nil, err
	}
	return &timeline, nil
}

// GetAllTimelines retrieves all persisted timelines
func (db *Database) GetAllTimelines() ([]*SavedTimeline, error) {
	var timelines []*SavedTimeline
	err := db.store.Find(&timelines, nil)
	return timelines, err
}

// DeleteTimeline deletes a timeline by project ID
func (db *Database) DeleteTimeline(projectID string) error {
	return db.store.Delete(projectID, &SavedTimeline{})
}

// Cut operations

// UpsertCuts stores detected cuts, replacing records with matching IDs
func (db *Database) UpsertCuts(cuts []*DetectedCut) error {
	now := time.Now()
	for _, cut := range cuts {
		if cut.CreatedAt.IsZero() {
			cut.CreatedAt = now
		}
		cut.UpdatedAt = now
		if err := db.store.Upsert(cut.ID, cut); err != nil {
			return fmt.Errorf("failed to upsert cut %s: %w", cut.ID, err)
		}
	}
	return nil
}

// GetCut retrieves a single cut by ID
func (db *Database) GetCut(cutID string) (*DetectedCut, error) {
	var cut DetectedCut
	err := db.store.Get(cutID, &cut)
	if err != nil {
		return nil, err
	}
	return &cut, nil
}

// GetCutsByVideoID retrieves cuts for a source video, optionally only active ones
func (db *Database) GetCutsByVideoID(videoID string, activeOnly bool) ([]*DetectedCut, error) {
	var cuts []*DetectedCut
	query := bolthold.Where("VideoID").Eq(videoID).Index("VideoID")
	if activeOnly {
		query = query.And("IsActive").Eq(true)
	}
	err := db.store.Find(&cuts, query)
	return cuts, err
}

// SetCutsActive toggles the active flag on the given cuts.
// Unknown IDs are skipped; returns the number of cuts modified.
func (db *Database) SetCutsActive(cutIDs []string, active bool) (int, error) {
	modified := 0
	for _, id := range cutIDs {
		var cut DetectedCut
		err := db.store.Get(id, &cut)
		if err == bolthold.ErrNotFound {
			continue
		}
		if err != nil {
			return modified, fmt.Errorf("failed to read cut %s: %w", id, err)
		}
		cut.IsActive = active
		cut.UpdatedAt = time.Now()
		if err := db.store.Update(id, &cut); err != nil {
			return modified, fmt.Errorf("failed to update cut %s: %w", id, err)
		}
		modified++
	}
	return modified, nil
}

// DeleteCutsByVideoID deletes all cuts for a source video
func (db *Database) DeleteCutsByVideoID(videoID string) error {
	var cuts []*DetectedCut
	err := db.store.Find(&cuts, bolthold.Where("VideoID").Eq(videoID).Index("VideoID"))
	if err != nil {
		return err
	}

	for _, cut := range cuts {
		if err := db.store.Delete(cut.ID, &DetectedCut{}); err != nil {
			return err
		}
	}

	return nil
}
