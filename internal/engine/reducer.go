package engine

import (
	"fmt"
	"math"

	"github.com/cutarr/cutarr/internal/models"
	"github.com/google/uuid"
)

// Config holds the engine's tunable bounds
type Config struct {
	MinZoom     float64
	MaxZoom     float64
	TrackHeight int
}

// DefaultConfig matches the editor's stock layout constants
func DefaultConfig() Config {
	return Config{
		MinZoom:     0.5,
		MaxZoom:     10,
		TrackHeight: 60,
	}
}

// NewState returns the default empty document for the given frame rate
func NewState(fps int) models.TimelineState {
	return models.TimelineState{
		Tracks:           []models.Track{},
		PlayheadPosition: 0,
		TotalDuration:    int64(fps) * 30,
		Zoom:             2,
		FPS:              fps,
		SelectedItems:    []string{},
		IsPlaying:        false,
	}
}

// reduce applies a single action and returns the new document. It is a pure
// function: the input state is never mutated, and every return value satisfies
// the track-overlap and duration invariants. Unknown IDs are no-ops.
// Undo and Redo are handled by the engine, not here; they consume history.
func reduce(state models.TimelineState, action Action, cfg Config) models.TimelineState {
	switch a := action.(type) {
	case AddTrack:
		next := state.Clone()
		next.Tracks = append(next.Tracks, newTrack(len(next.Tracks)+1, cfg))
		return next

	case RemoveTrack:
		next := state.Clone()
		tracks := next.Tracks[:0]
		for _, track := range next.Tracks {
			if track.ID != a.TrackID {
				tracks = append(tracks, track)
			}
		}
		next.Tracks = tracks
		next.TotalDuration = computeTotalDuration(next.Tracks, next.FPS, next.Zoom)
		return next

	case ReorderTracks:
		if a.FromIndex < 0 || a.FromIndex >= len(state.Tracks) ||
			a.ToIndex < 0 || a.ToIndex >= len(state.Tracks) ||
			a.FromIndex == a.ToIndex {
			return state
		}
		next := state.Clone()
		moved := next.Tracks[a.FromIndex]
		next.Tracks = append(next.Tracks[:a.FromIndex], next.Tracks[a.FromIndex+1:]...)
		next.Tracks = append(next.Tracks[:a.ToIndex], append([]models.Track{moved}, next.Tracks[a.ToIndex:]...)...)
		renumberTracks(next.Tracks)
		return next

	case AddItem:
		next := state.Clone()
		item := a.Item.Clone()
		item.ID = uuid.NewString()
		if item.Duration < 1 {
			item.Duration = 1
		}

		target := models.FindTrack(next.Tracks, item.TrackID)
		if target == nil || hasOverlap(target.Items, &item, "") {
			// Overlap fork: never shift or reject, place alone on a new track
			forked := newTrack(len(next.Tracks)+1, cfg)
			item.TrackID = forked.ID
			forked.Items = append(forked.Items, item)
			next.Tracks = append(next.Tracks, forked)
		} else {
			target.Items = append(target.Items, item)
		}

		next.Tracks = ensureEmptyTrack(next.Tracks, cfg)
		next.TotalDuration = computeTotalDuration(next.Tracks, next.FPS, next.Zoom)
		return next

	case UpdateItem:
		next := state.Clone()
		item := models.FindItem(next.Tracks, a.ItemID)
		if item == nil {
			return state
		}
		applyItemUpdates(item, a.Updates)
		next.TotalDuration = computeTotalDuration(next.Tracks, next.FPS, next.Zoom)
		return next

	case RemoveItem:
		next := state.Clone()
		for ti := range next.Tracks {
			items := next.Tracks[ti].Items[:0]
			for _, item := range next.Tracks[ti].Items {
				if item.ID != a.ItemID {
					items = append(items, item)
				}
			}
			next.Tracks[ti].Items = items
		}
		next.SelectedItems = removeID(next.SelectedItems, a.ItemID)
		next.Tracks = ensureEmptyTrack(next.Tracks, cfg)
		next.TotalDuration = computeTotalDuration(next.Tracks, next.FPS, next.Zoom)
		return next

	case MoveItem:
		existing := models.FindItem(state.Tracks, a.ItemID)
		if existing == nil {
			return state
		}
		next := state.Clone()
		moved := existing.Clone()
		moved.TrackID = a.TrackID
		moved.StartTime = a.StartTime

		// Detach from the current track before re-placing
		for ti := range next.Tracks {
			items := next.Tracks[ti].Items[:0]
			for _, item := range next.Tracks[ti].Items {
				if item.ID != a.ItemID {
					items = append(items, item)
				}
			}
			next.Tracks[ti].Items = items
		}

		target := models.FindTrack(next.Tracks, a.TrackID)
		if target == nil || hasOverlap(target.Items, &moved, moved.ID) {
			forked := newTrack(len(next.Tracks)+1, cfg)
			moved.TrackID = forked.ID
			forked.Items = append(forked.Items, moved)
			next.Tracks = append(next.Tracks, forked)
		} else {
			target.Items = append(target.Items, moved)
		}

		next.Tracks = ensureEmptyTrack(next.Tracks, cfg)
		next.TotalDuration = computeTotalDuration(next.Tracks, next.FPS, next.Zoom)
		return next

	case AddTransition:
		target := models.FindTrack(state.Tracks, a.Transition.TrackID)
		if target == nil {
			return state
		}
		next := state.Clone()
		transition := a.Transition
		transition.ID = uuid.NewString()
		track := models.FindTrack(next.Tracks, transition.TrackID)
		track.Transitions = append(track.Transitions, transition)
		return next

	case UpdateTransition:
		next := state.Clone()
		for ti := range next.Tracks {
			for i := range next.Tracks[ti].Transitions {
				if next.Tracks[ti].Transitions[i].ID == a.TransitionID {
					applyTransitionUpdates(&next.Tracks[ti].Transitions[i], a.Updates)
					return next
				}
			}
		}
		return state

	case RemoveTransition:
		next := state.Clone()
		for ti := range next.Tracks {
			transitions := next.Tracks[ti].Transitions[:0]
			for _, tr := range next.Tracks[ti].Transitions {
				if tr.ID != a.TransitionID {
					transitions = append(transitions, tr)
				}
			}
			next.Tracks[ti].Transitions = transitions
		}
		return next

	case SetPlayhead:
		next := state.Clone()
		next.PlayheadPosition = clampInt64(a.Position, 0, next.TotalDuration)
		return next

	case SetZoom:
		next := state.Clone()
		next.Zoom = math.Max(cfg.MinZoom, math.Min(a.Zoom, cfg.MaxZoom))
		// Zoom feeds the duration formula: zoomed out shows more time
		next.TotalDuration = computeTotalDuration(next.Tracks, next.FPS, next.Zoom)
		return next

	case SelectItems:
		next := state.Clone()
		next.SelectedItems = append([]string{}, a.ItemIDs...)
		return next

	case SetPlaying:
		next := state.Clone()
		next.IsPlaying = a.Playing
		return next

	case SplitItem:
		item := models.FindItem(state.Tracks, a.ItemID)
		if item == nil || a.Position <= item.StartTime || a.Position >= item.EndTime() {
			return state
		}
		next := state.Clone()
		for ti := range next.Tracks {
			for ii := range next.Tracks[ti].Items {
				if next.Tracks[ti].Items[ii].ID != a.ItemID {
					continue
				}
				original := next.Tracks[ti].Items[ii]

				first := original.Clone()
				first.ID = uuid.NewString()
				first.Duration = a.Position - original.StartTime

				second := original.Clone()
				second.ID = uuid.NewString()
				second.StartTime = a.Position
				second.Duration = original.EndTime() - a.Position

				items := append([]models.TimelineItem{}, next.Tracks[ti].Items[:ii]...)
				items = append(items, first, second)
				items = append(items, next.Tracks[ti].Items[ii+1:]...)
				next.Tracks[ti].Items = items
				return next
			}
		}
		return state

	case TrimItem:
		next := state.Clone()
		item := models.FindItem(next.Tracks, a.ItemID)
		if item == nil {
			return state
		}
		start, end := a.Start, a.End
		if end < start {
			start, end = end, start
		}
		item.StartTime = start
		item.Duration = end - start
		if item.Duration < 1 {
			// Degenerate trims clamp to a single frame instead of producing
			// a zero or negative duration
			item.Duration = 1
		}
		next.TotalDuration = computeTotalDuration(next.Tracks, next.FPS, next.Zoom)
		return next

	case LoadTimeline:
		loaded := a.State.Clone()
		if loaded.Tracks == nil {
			loaded.Tracks = []models.Track{}
		}
		if loaded.FPS <= 0 {
			loaded.FPS = state.FPS
		}
		if loaded.Zoom <= 0 {
			loaded.Zoom = 2
		}
		loaded.Zoom = math.Max(cfg.MinZoom, math.Min(loaded.Zoom, cfg.MaxZoom))
		if loaded.SelectedItems == nil {
			loaded.SelectedItems = []string{}
		}
		loaded.IsPlaying = false
		loaded.Tracks = ensureEmptyTrack(loaded.Tracks, cfg)
		loaded.TotalDuration = computeTotalDuration(loaded.Tracks, loaded.FPS, loaded.Zoom)
		loaded.PlayheadPosition = clampInt64(loaded.PlayheadPosition, 0, loaded.TotalDuration)
		return loaded

	case ClearTimeline:
		next := NewState(state.FPS)
		next.Zoom = state.Zoom
		return next

	case BulkUpdateItems:
		next := state.Clone()
		removed := make(map[string]bool, len(a.RemovedItemIDs))
		for _, id := range a.RemovedItemIDs {
			removed[id] = true
		}

		for ti := range next.Tracks {
			items := next.Tracks[ti].Items[:0]
			for _, item := range next.Tracks[ti].Items {
				if !removed[item.ID] {
					items = append(items, item)
				}
			}
			next.Tracks[ti].Items = items
		}

		// Distribute new items into their tracks, creating any that are missing
		for _, newItem := range a.NewItems {
			item := newItem.Clone()
			track := models.FindTrack(next.Tracks, item.TrackID)
			if track == nil {
				created := newTrack(len(next.Tracks)+1, cfg)
				created.ID = item.TrackID
				next.Tracks = append(next.Tracks, created)
				track = &next.Tracks[len(next.Tracks)-1]
			}
			track.Items = append(track.Items, item)
		}

		selected := next.SelectedItems[:0]
		for _, id := range next.SelectedItems {
			if !removed[id] {
				selected = append(selected, id)
			}
		}
		next.SelectedItems = selected

		next.Tracks = ensureEmptyTrack(next.Tracks, cfg)
		next.TotalDuration = computeTotalDuration(next.Tracks, next.FPS, next.Zoom)
		return next

	default:
		return state
	}
}

// newTrack builds an empty track named after its 1-based position
func newTrack(position int, cfg Config) models.Track {
	return models.Track{
		ID:     uuid.NewString(),
		Name:   fmt.Sprintf("Track %d", position),
		Items:  []models.TimelineItem{},
		Height: cfg.TrackHeight,
	}
}

// renumberTracks keeps display names consistent with track order
func renumberTracks(tracks []models.Track) {
	for i := range tracks {
		tracks[i].Name = fmt.Sprintf("Track %d", i+1)
	}
}

// hasOverlap reports whether candidate's half-open [start, end) range
// intersects any item in the list, ignoring the item with excludeID
func hasOverlap(items []models.TimelineItem, candidate *models.TimelineItem, excludeID string) bool {
	for i := range items {
		if excludeID != "" && items[i].ID == excludeID {
			continue
		}
		if candidate.StartTime < items[i].EndTime() && candidate.EndTime() > items[i].StartTime {
			return true
		}
	}
	return false
}

// ensureEmptyTrack guarantees at least one track with no items, so the UI
// always has a drop target
func ensureEmptyTrack(tracks []models.Track, cfg Config) []models.Track {
	for i := range tracks {
		if len(tracks[i].Items) == 0 {
			return tracks
		}
	}
	return append(tracks, newTrack(len(tracks)+1, cfg))
}

// computeTotalDuration derives the visible timeline length in frames:
// never shorter than 30s, always 10s of trailing space after the last clip,
// proportionally more when zoomed out, snapped up to a 5s ruler boundary.
func computeTotalDuration(tracks []models.Track, fps int, zoom float64) int64 {
	var contentEnd int64
	for ti := range tracks {
		for ii := range tracks[ti].Items {
			if end := tracks[ti].Items[ii].EndTime(); end > contentEnd {
				contentEnd = end
			}
		}
	}

	zoomBased := float64(fps) * math.Max(30, 120/zoom)
	withBuffer := float64(contentEnd + int64(fps)*10)
	minimum := float64(fps) * 30

	duration := math.Max(withBuffer, math.Max(zoomBased, minimum))

	step := float64(fps) * 5
	return int64(math.Ceil(duration/step) * step)
}

func applyItemUpdates(item *models.TimelineItem, updates ItemUpdates) {
	if updates.Name != nil {
		item.Name = *updates.Name
	}
	if updates.StartTime != nil {
		item.StartTime = *updates.StartTime
	}
	if updates.Duration != nil {
		item.Duration = *updates.Duration
		if item.Duration < 1 {
			item.Duration = 1
		}
	}
	if updates.TrackID != nil {
		item.TrackID = *updates.TrackID
	}
	if updates.Src != nil {
		item.Src = *updates.Src
	}
	if updates.Content != nil {
		item.Content = *updates.Content
	}
	if updates.Props != nil {
		item.Props = updates.Props.Clone()
	}
}

func applyTransitionUpdates(transition *models.Transition, updates TransitionUpdates) {
	if updates.Type != nil {
		transition.Type = *updates.Type
	}
	if updates.Duration != nil {
		transition.Duration = *updates.Duration
	}
	if updates.Position != nil {
		transition.Position = *updates.Position
	}
	if updates.Effect != nil {
		transition.Effect = *updates.Effect
	}
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, candidate := range ids {
		if candidate != id {
			out = append(out, candidate)
		}
	}
	return out
}

func clampInt64(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
