package models

import (
	"path/filepath"
	"testing"

	"github.com/timshannon/bolthold"
)

func testDB(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSaveTimelineVersioning(t *testing.T) {
	db := testDB(t)

	timeline := &SavedTimeline{
		ProjectID: "proj-1",
		Title:     "Episode 12",
		Tracks: []Track{
			{ID: "track-1", Name: "Track 1", Items: []TimelineItem{
				{ID: "item-1", Type: MediaTypeVideo, StartTime: 0, Duration: 300, TrackID: "track-1"},
			}},
		},
		TotalDuration: 60,
		FrameRate:     30,
		Zoom:          2,
		Status:        StatusDraft,
	}

	if err := db.SaveTimeline(timeline); err != nil {
		t.Fatalf("Failed to save timeline: %v", err)
	}
	if timeline.Version != 1 {
		t.Errorf("Expected version 1 on first save, got %d", timeline.Version)
	}
	if timeline.CreatedAt.IsZero() || timeline.LastSavedAt.IsZero() {
		t.Errorf("Expected timestamps set on save")
	}

	created := timeline.CreatedAt
	second := &SavedTimeline{ProjectID: "proj-1", Status: StatusAutoSaved}
	if err := db.SaveTimeline(second); err != nil {
		t.Fatalf("Failed to re-save timeline: %v", err)
	}
	if second.Version != 2 {
		t.Errorf("Expected version 2 on second save, got %d", second.Version)
	}
	if !second.CreatedAt.Equal(created) {
		t.Errorf("Expected creation time preserved across saves")
	}
	if second.Title != "Episode 12" {
		t.Errorf("Expected empty title backfilled from existing record, got '%s'", second.Title)
	}
}

func TestGetTimelineRoundTrip(t *testing.T) {
	db := testDB(t)

	saved := &SavedTimeline{
		ProjectID: "proj-1",
		Tracks: []Track{
			{ID: "track-1", Name: "Track 1", Items: []TimelineItem{
				{ID: "item-1", Type: MediaTypeVideo, Name: "clip", StartTime: 30, Duration: 150, TrackID: "track-1",
					Props: ItemProperties{VideoID: "vid-1"}},
			}},
		},
		TotalDuration: 60,
		FrameRate:     30,
		Zoom:          2,
		Status:        StatusManuallySaved,
	}
	if err := db.SaveTimeline(saved); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}

	loaded, err := db.GetTimeline("proj-1")
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	if len(loaded.Tracks) != 1 || len(loaded.Tracks[0].Items) != 1 {
		t.Fatalf("Expected track and item preserved, got %+v", loaded.Tracks)
	}
	if loaded.Tracks[0].Items[0].Props.VideoID != "vid-1" {
		t.Errorf("Expected item properties preserved")
	}
	if loaded.Status != StatusManuallySaved {
		t.Errorf("Expected status preserved, got %s", loaded.Status)
	}

	if _, err := db.GetTimeline("missing"); err != bolthold.ErrNotFound {
		t.Errorf("Expected ErrNotFound for unknown project, got %v", err)
	}
}

func TestDeleteTimeline(t *testing.T) {
	db := testDB(t)
	if err := db.SaveTimeline(&SavedTimeline{ProjectID: "proj-1"}); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}

	if err := db.DeleteTimeline("proj-1"); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}
	if _, err := db.GetTimeline("proj-1"); err != bolthold.ErrNotFound {
		t.Errorf("Expected timeline gone after delete, got %v", err)
	}
}

func TestCutQueries(t *testing.T) {
	db := testDB(t)

	cuts := []*DetectedCut{
		{ID: "c1", VideoID: "vid-1", SourceStart: 2, SourceEnd: 3, CutType: CutTypeSilence, IsActive: true},
		{ID: "c2", VideoID: "vid-1", SourceStart: 7, SourceEnd: 8, CutType: CutTypeFiller, IsActive: false},
		{ID: "c3", VideoID: "vid-2", SourceStart: 0, SourceEnd: 1, CutType: CutTypeSilence, IsActive: true},
	}
	if err := db.UpsertCuts(cuts); err != nil {
		t.Fatalf("Failed to upsert cuts: %v", err)
	}

	all, err := db.GetCutsByVideoID("vid-1", false)
	if err != nil {
		t.Fatalf("Failed to query cuts: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Expected 2 cuts for vid-1, got %d", len(all))
	}

	active, err := db.GetCutsByVideoID("vid-1", true)
	if err != nil {
		t.Fatalf("Failed to query active cuts: %v", err)
	}
	if len(active) != 1 || active[0].ID != "c1" {
		t.Errorf("Expected only c1 active, got %d cuts", len(active))
	}
}

func TestSetCutsActive(t *testing.T) {
	db := testDB(t)
	if err := db.UpsertCuts([]*DetectedCut{
		{ID: "c1", VideoID: "vid-1", SourceStart: 2, SourceEnd: 3, IsActive: true},
		{ID: "c2", VideoID: "vid-1", SourceStart: 7, SourceEnd: 8, IsActive: true},
	}); err != nil {
		t.Fatalf("Failed to upsert cuts: %v", err)
	}

	modified, err := db.SetCutsActive([]string{"c1", "c2", "unknown"}, false)
	if err != nil {
		t.Fatalf("Failed to toggle cuts: %v", err)
	}
	if modified != 2 {
		t.Errorf("Expected 2 cuts modified with unknown id skipped, got %d", modified)
	}

	cut, err := db.GetCut("c1")
	if err != nil {
		t.Fatalf("Failed to read cut: %v", err)
	}
	if cut.IsActive {
		t.Errorf("Expected c1 deactivated")
	}
}

func TestDeleteCutsByVideoID(t *testing.T) {
	db := testDB(t)
	if err := db.UpsertCuts([]*DetectedCut{
		{ID: "c1", VideoID: "vid-1", SourceStart: 0, SourceEnd: 1},
		{ID: "c2", VideoID: "vid-2", SourceStart: 0, SourceEnd: 1},
	}); err != nil {
		t.Fatalf("Failed to upsert cuts: %v", err)
	}

	if err := db.DeleteCutsByVideoID("vid-1"); err != nil {
		t.Fatalf("Failed to delete cuts: %v", err)
	}

	remaining, err := db.GetCutsByVideoID("vid-1", false)
	if err != nil {
		t.Fatalf("Failed to query: %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("Expected vid-1 cuts gone, got %d", len(remaining))
	}
	if _, err := db.GetCut("c2"); err != nil {
		t.Errorf("Expected vid-2 cut untouched, got %v", err)
	}
}

func TestSavedTimelineStateConversion(t *testing.T) {
	state := TimelineState{
		Tracks: []Track{
			{ID: "track-1", Items: []TimelineItem{
				{ID: "item-1", StartTime: 0, Duration: 900, TrackID: "track-1"},
			}},
		},
		TotalDuration:    1800,
		FPS:              30,
		Zoom:             4,
		PlayheadPosition: 120,
		SelectedItems:    []string{"item-1"},
		IsPlaying:        true,
	}

	saved := SavedFromState("proj-1", &state, StatusAutoSaved)
	if saved.TotalDuration != 60 {
		t.Errorf("Expected 60s stored for 1800 frames at 30fps, got %f", saved.TotalDuration)
	}
	if len(saved.SelectedItems) != 0 {
		t.Errorf("Expected selection never persisted, got %v", saved.SelectedItems)
	}

	restored := saved.ToState(25)
	if restored.FPS != 30 {
		t.Errorf("Expected stored frame rate kept, got %d", restored.FPS)
	}
	if restored.TotalDuration != 1800 {
		t.Errorf("Expected frames restored from seconds, got %d", restored.TotalDuration)
	}
	if restored.IsPlaying {
		t.Errorf("Expected playback always stopped on restore")
	}

	// Zero-valued record falls back to defaults
	blank := &SavedTimeline{ProjectID: "p"}
	restoredBlank := blank.ToState(25)
	if restoredBlank.FPS != 25 || restoredBlank.Zoom != 2 {
		t.Errorf("Expected fps/zoom defaults, got fps=%d zoom=%f", restoredBlank.FPS, restoredBlank.Zoom)
	}
}
