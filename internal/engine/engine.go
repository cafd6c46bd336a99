package engine

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/cutarr/cutarr/internal/models"
)

// maxHistoryDepth bounds the undo stack; the oldest snapshot is evicted first
const maxHistoryDepth = 50

// snapshot is an immutable deep copy of the history-relevant state. Playhead,
// zoom and playback state are deliberately outside the snapshot.
type snapshot struct {
	Tracks        []models.Track
	SelectedItems []string
}

// Engine owns a timeline document and applies actions through the pure
// reducer while maintaining bounded undo/redo history. Dispatches are
// serialized; every transition is atomic (old document in, new document out).
type Engine struct {
	mu    sync.Mutex
	cfg   Config
	state models.TimelineState

	past    []snapshot
	present snapshot
	future  []snapshot
}

// New creates an engine holding the default empty document
func New(fps int, cfg Config) *Engine {
	state := NewState(fps)
	return &Engine{
		cfg:     cfg,
		state:   state,
		present: takeSnapshot(&state),
	}
}

// Dispatch applies a single action. History-tracked actions snapshot the
// current state first; no-op transitions are not pushed onto the undo stack.
func (e *Engine) Dispatch(action Action) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch action.(type) {
	case Undo:
		e.undo()
		return
	case Redo:
		e.redo()
		return
	case LoadTimeline:
		e.state = reduce(e.state, action, e.cfg)
		// A loaded document starts a fresh history baseline
		e.past = nil
		e.future = nil
		e.present = takeSnapshot(&e.state)
		return
	}

	if !isTracked(action) {
		e.state = reduce(e.state, action, e.cfg)
		return
	}

	previous := takeSnapshot(&e.state)
	e.state = reduce(e.state, action, e.cfg)
	next := takeSnapshot(&e.state)

	if snapshotsEqual(next, e.present) {
		return
	}

	e.past = append(e.past, previous)
	if len(e.past) > maxHistoryDepth {
		e.past = e.past[1:]
	}
	e.present = next
	e.future = nil
}

func (e *Engine) undo() {
	if len(e.past) == 0 {
		return
	}

	restored := e.past[len(e.past)-1]
	e.past = e.past[:len(e.past)-1]
	e.future = append([]snapshot{e.present}, e.future...)
	e.present = restored

	e.restore(restored)
}

func (e *Engine) redo() {
	if len(e.future) == 0 {
		return
	}

	restored := e.future[0]
	e.future = e.future[1:]
	e.past = append(e.past, e.present)
	e.present = restored

	e.restore(restored)
}

// restore replaces tracks and selection from a snapshot and recomputes the
// derived duration
func (e *Engine) restore(snap snapshot) {
	e.state.Tracks = models.CloneTracks(snap.Tracks)
	e.state.SelectedItems = append([]string{}, snap.SelectedItems...)
	e.state.TotalDuration = computeTotalDuration(e.state.Tracks, e.state.FPS, e.state.Zoom)
	if e.state.PlayheadPosition > e.state.TotalDuration {
		e.state.PlayheadPosition = e.state.TotalDuration
	}
}

// State returns a deep copy of the current document
func (e *Engine) State() models.TimelineState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// CanUndo reports whether an undo snapshot is available
func (e *Engine) CanUndo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.past) > 0
}

// CanRedo reports whether a redo snapshot is available
func (e *Engine) CanRedo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.future) > 0
}

// HistoryDepth returns the undo and redo stack sizes
func (e *Engine) HistoryDepth() (past int, future int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.past), len(e.future)
}

// Summary describes the document for collaborators that want a text overview:
// track count, clip count by type, duration in seconds.
func (e *Engine) Summary() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	clipCount := 0
	byType := make(map[models.MediaType]int)
	for ti := range e.state.Tracks {
		for ii := range e.state.Tracks[ti].Items {
			clipCount++
			byType[e.state.Tracks[ti].Items[ii].Type]++
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d tracks, %d clips", len(e.state.Tracks), clipCount)
	if clipCount > 0 {
		types := make([]string, 0, len(byType))
		for t := range byType {
			types = append(types, string(t))
		}
		sort.Strings(types)
		parts := make([]string, 0, len(types))
		for _, t := range types {
			parts = append(parts, fmt.Sprintf("%d %s", byType[models.MediaType(t)], t))
		}
		fmt.Fprintf(&sb, " (%s)", strings.Join(parts, ", "))
	}
	fmt.Fprintf(&sb, ", %.1fs total", float64(e.state.TotalDuration)/float64(e.state.FPS))
	return sb.String()
}

func takeSnapshot(state *models.TimelineState) snapshot {
	return snapshot{
		Tracks:        models.CloneTracks(state.Tracks),
		SelectedItems: append([]string{}, state.SelectedItems...),
	}
}

func snapshotsEqual(a, b snapshot) bool {
	return reflect.DeepEqual(a, b)
}
