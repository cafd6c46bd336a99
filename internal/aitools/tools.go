package aitools

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/cutarr/cutarr/internal/engine"
	"github.com/cutarr/cutarr/internal/models"
)

// ToolResult is what an AI tool reports back to the chat layer. When the tool
// wants to mutate the timeline it returns the action for the caller to
// dispatch; tools themselves never touch the engine.
type ToolResult struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Action  engine.Action `json:"-"`
}

func failure(format string, args ...any) ToolResult {
	return ToolResult{Success: false, Message: fmt.Sprintf(format, args...)}
}

// AddTextLayer places a text item on the first track, after the last clip
// unless a start frame is given
func AddTextLayer(state *models.TimelineState, text string, durationSeconds float64, startTime *int64) ToolResult {
	if len(state.Tracks) == 0 {
		return failure("No tracks available. Please add a track first.")
	}
	if durationSeconds <= 0 {
		durationSeconds = 3
	}

	target := state.Tracks[0]

	var finalStart int64
	if startTime != nil {
		finalStart = *startTime
	} else {
		for _, item := range target.Items {
			if end := item.EndTime(); end > finalStart {
				finalStart = end
			}
		}
	}

	fps := int64(state.FPS)
	return ToolResult{
		Success: true,
		Message: fmt.Sprintf("Added text %q at %.1fs for %.1fs", text, float64(finalStart)/float64(fps), durationSeconds),
		Action: engine.AddItem{Item: models.TimelineItem{
			Type:      models.MediaTypeText,
			Name:      "Text: " + text,
			StartTime: finalStart,
			Duration:  int64(durationSeconds * float64(fps)),
			TrackID:   target.ID,
			Content:   text,
		}},
	}
}

// AddTransition adds a transition between two clips identified by their index
// in timeline order. The clips must be adjacent.
func AddTransition(state *models.TimelineState, fromClipIndex, toClipIndex int, transitionType string) ToolResult {
	if transitionType == "" {
		transitionType = "fade"
	}

	clips := clipsInOrder(state)
	if fromClipIndex < 0 || fromClipIndex >= len(clips) || toClipIndex < 0 || toClipIndex >= len(clips) {
		return failure("Clip indices out of range. Found %d clips.", len(clips))
	}
	if abs(toClipIndex-fromClipIndex) != 1 {
		return failure("Clips must be adjacent to add a transition.")
	}

	from := clips[fromClipIndex]
	to := clips[toClipIndex]

	return ToolResult{
		Success: true,
		Message: fmt.Sprintf("Added %s transition between %q and %q", transitionType, from.Name, to.Name),
		Action: engine.AddTransition{Transition: models.Transition{
			Type:       transitionType,
			Name:       transitionType + " transition",
			Duration:   int64(state.FPS), // 1 second default
			Position:   from.EndTime(),
			FromItemID: from.ID,
			ToItemID:   to.ID,
			TrackID:    from.TrackID,
			Effect:     transitionType,
		}},
	}
}

// ChangeClipDuration sets the duration of a clip identified by timeline-order index
func ChangeClipDuration(state *models.TimelineState, clipIndex int, newDurationSeconds float64) ToolResult {
	clips := clipsInOrder(state)
	if clipIndex < 0 || clipIndex >= len(clips) {
		return failure("Clip index out of range. Found %d clips.", len(clips))
	}
	if newDurationSeconds <= 0 {
		return failure("Duration must be positive, got %.2fs.", newDurationSeconds)
	}

	clip := clips[clipIndex]
	duration := int64(newDurationSeconds * float64(state.FPS))
	return ToolResult{
		Success: true,
		Message: fmt.Sprintf("Changed %q duration to %.1fs", clip.Name, newDurationSeconds),
		Action: engine.UpdateItem{
			ItemID:  clip.ID,
			Updates: engine.ItemUpdates{Duration: &duration},
		},
	}
}

// RemoveClip removes a clip identified by timeline-order index
func RemoveClip(state *models.TimelineState, clipIndex int) ToolResult {
	clips := clipsInOrder(state)
	if clipIndex < 0 || clipIndex >= len(clips) {
		return failure("Clip index out of range. Found %d clips.", len(clips))
	}

	clip := clips[clipIndex]
	return ToolResult{
		Success: true,
		Message: fmt.Sprintf("Removed %q from the timeline", clip.Name),
		Action:  engine.RemoveItem{ItemID: clip.ID},
	}
}

// SearchMatch is one ranked content-search hit
type SearchMatch struct {
	Item     models.TimelineItem
	Distance int
}

// SearchClips ranks timeline clips against a query using edit distance over
// names and text content. Exact substring hits rank first; the rest are
// ordered by Levenshtein distance with poor matches dropped.
func SearchClips(state *models.TimelineState, query string, limit int) []SearchMatch {
	if limit <= 0 {
		limit = 10
	}
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil
	}

	var matches []SearchMatch
	for _, clip := range clipsInOrder(state) {
		haystacks := []string{strings.ToLower(clip.Name)}
		if clip.Content != "" {
			haystacks = append(haystacks, strings.ToLower(clip.Content))
		}

		best := -1
		for _, haystack := range haystacks {
			var distance int
			if strings.Contains(haystack, needle) {
				distance = 0
			} else {
				distance = levenshtein.ComputeDistance(needle, haystack)
				// Drop hopeless matches: more edits than the query is long
				if distance > len(needle) {
					continue
				}
			}
			if best == -1 || distance < best {
				best = distance
			}
		}
		if best >= 0 {
			matches = append(matches, SearchMatch{Item: clip, Distance: best})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// clipsInOrder flattens all items across tracks sorted by start time
func clipsInOrder(state *models.TimelineState) []models.TimelineItem {
	var clips []models.TimelineItem
	for _, track := range state.Tracks {
		clips = append(clips, track.Items...)
	}
	sort.SliceStable(clips, func(i, j int) bool {
		return clips[i].StartTime < clips[j].StartTime
	})
	return clips
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
