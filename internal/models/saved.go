package models

import "time"

// SavedTimeline is the persisted form of a timeline document. Durations are
// stored in seconds; the engine works in frames and converts at this boundary.
type SavedTimeline struct {
	ProjectID string `boltholdKey:"ProjectID"`

	Title       string
	Description string
	Version     int

	Tracks        []Track
	SelectedItems []string // persisted empty; selection is UI state

	TotalDuration    float64 // seconds
	FrameRate        int
	Zoom             float64
	PlayheadPosition int64 // frames

	Status TimelineStatus `boltholdIndex:"Status"`

	CreatedAt   time.Time
	UpdatedAt   time.Time
	LastSavedAt time.Time
}

// ToState reconstitutes an engine state from the stored record.
// Missing or invalid fields fall back to sane defaults.
func (s *SavedTimeline) ToState(defaultFPS int) TimelineState {
	fps := s.FrameRate
	if fps <= 0 {
		fps = defaultFPS
	}
	zoom := s.Zoom
	if zoom <= 0 {
		zoom = 2
	}
	return TimelineState{
		Tracks:           CloneTracks(s.Tracks),
		PlayheadPosition: s.PlayheadPosition,
		TotalDuration:    int64(s.TotalDuration * float64(fps)),
		Zoom:             zoom,
		FPS:              fps,
		SelectedItems:    []string{},
		IsPlaying:        false,
	}
}

// SavedFromState maps an engine state to its stored form
func SavedFromState(projectID string, state *TimelineState, status TimelineStatus) *SavedTimeline {
	return &SavedTimeline{
		ProjectID:        projectID,
		Tracks:           CloneTracks(state.Tracks),
		SelectedItems:    []string{}, // never persist UI selection
		TotalDuration:    float64(state.TotalDuration) / float64(state.FPS),
		FrameRate:        state.FPS,
		Zoom:             state.Zoom,
		PlayheadPosition: state.PlayheadPosition,
		Status:           status,
	}
}
