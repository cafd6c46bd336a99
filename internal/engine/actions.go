package engine

import "github.com/cutarr/cutarr/internal/models"

// Action is a single mutation applied to the timeline document. Actions are
// the only way to change state; each one maps to exactly one reducer case.
type Action interface {
	isAction()
}

// AddTrack appends an empty track named after its position
type AddTrack struct{}

// RemoveTrack removes a track and everything on it
type RemoveTrack struct {
	TrackID string
}

// ReorderTracks moves a track to a new position and renumbers display names
type ReorderTracks struct {
	FromIndex int
	ToIndex   int
}

// AddItem places an item; the reducer assigns a fresh ID. If the target track
// is missing or the placement overlaps, the item goes on a brand-new track.
type AddItem struct {
	Item models.TimelineItem
}

// ItemUpdates is a partial item update; nil fields are left untouched
type ItemUpdates struct {
	Name      *string
	StartTime *int64
	Duration  *int64
	TrackID   *string
	Src       *string
	Content   *string
	Props     *models.ItemProperties
}

// UpdateItem merges updates into the item wherever it is found.
// Overlap is not re-checked; that is the caller's responsibility.
type UpdateItem struct {
	ItemID  string
	Updates ItemUpdates
}

// RemoveItem deletes an item by ID from whichever track holds it
type RemoveItem struct {
	ItemID string
}

// MoveItem re-places an item on a track at a new start frame, with the same
// overlap policy as AddItem
type MoveItem struct {
	ItemID    string
	TrackID   string
	StartTime int64
}

// AddTransition appends a transition to its track; no-op if the track is unknown
type AddTransition struct {
	Transition models.Transition
}

// TransitionUpdates is a partial transition update
type TransitionUpdates struct {
	Type     *string
	Duration *int64
	Position *int64
	Effect   *string
}

// UpdateTransition merges updates into a transition by ID
type UpdateTransition struct {
	TransitionID string
	Updates      TransitionUpdates
}

// RemoveTransition deletes a transition by ID
type RemoveTransition struct {
	TransitionID string
}

// SetPlayhead moves the playhead, clamped to [0, TotalDuration]
type SetPlayhead struct {
	Position int64
}

// SetZoom changes zoom, clamped to the configured bounds
type SetZoom struct {
	Zoom float64
}

// SelectItems replaces the selection; never history-tracked
type SelectItems struct {
	ItemIDs []string
}

// SetPlaying toggles playback state; never history-tracked
type SetPlaying struct {
	Playing bool
}

// SplitItem replaces one item with two at the given frame. No-op unless the
// position is strictly inside the item.
type SplitItem struct {
	ItemID   string
	Position int64
}

// TrimItem overwrites an item's start and end frames
type TrimItem struct {
	ItemID string
	Start  int64
	End    int64
}

// Undo restores the previous history snapshot
type Undo struct{}

// Redo re-applies an undone snapshot
type Redo struct{}

// LoadTimeline wholesale-replaces the document and discards history
type LoadTimeline struct {
	State models.TimelineState
}

// ClearTimeline empties the document back to its initial constants
type ClearTimeline struct{}

// BulkUpdateItems removes and inserts items in one atomic pass; used by cut
// application so a re-cut never goes through intermediate states
type BulkUpdateItems struct {
	NewItems       []models.TimelineItem
	RemovedItemIDs []string
}

func (AddTrack) isAction()         {}
func (RemoveTrack) isAction()      {}
func (ReorderTracks) isAction()    {}
func (AddItem) isAction()          {}
func (UpdateItem) isAction()       {}
func (RemoveItem) isAction()       {}
func (MoveItem) isAction()         {}
func (AddTransition) isAction()    {}
func (UpdateTransition) isAction() {}
func (RemoveTransition) isAction() {}
func (SetPlayhead) isAction()      {}
func (SetZoom) isAction()          {}
func (SelectItems) isAction()      {}
func (SetPlaying) isAction()       {}
func (SplitItem) isAction()        {}
func (TrimItem) isAction()         {}
func (Undo) isAction()             {}
func (Redo) isAction()             {}
func (LoadTimeline) isAction()     {}
func (ClearTimeline) isAction()    {}
func (BulkUpdateItems) isAction()  {}

// isTracked reports whether an action participates in undo/redo history.
// Selection-only and playback-only actions are excluded so undo never rewinds
// pure UI state; Undo/Redo consume history rather than producing it.
func isTracked(action Action) bool {
	switch action.(type) {
	case AddTrack, RemoveTrack, ReorderTracks,
		AddItem, UpdateItem, RemoveItem, MoveItem,
		AddTransition, UpdateTransition, RemoveTransition,
		SplitItem, TrimItem, ClearTimeline:
		return true
	default:
		return false
	}
}
