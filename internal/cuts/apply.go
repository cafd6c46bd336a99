package cuts

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/cutarr/cutarr/internal/models"
	"github.com/google/uuid"
)

// minSegmentSeconds is the noise floor: kept segments shorter than this are
// discarded rather than producing unplayable slivers
const minSegmentSeconds = 0.1

// Result is the outcome of one cut-application pass
type Result struct {
	ModifiedItems  []models.TimelineItem
	RemovedItemIDs []string

	// Divergences collects original item IDs whose reconstructed source span
	// disagreed with the sum of their segment durations; callers log these
	Divergences []string
}

// Apply rewrites the timeline items referencing videoID so that the active
// cut intervals are excised, leaving all other items untouched. Re-applying a
// changed cut set is idempotent: existing cut segments are first merged back
// into synthetic originals, then re-split against the current cuts.
func Apply(items []models.TimelineItem, cuts []*models.DetectedCut, videoID string, fps int) Result {
	var videoItems, otherItems []models.TimelineItem
	for _, item := range items {
		if item.Type == models.MediaTypeVideo && item.Props.VideoID == videoID {
			videoItems = append(videoItems, item)
		} else {
			otherItems = append(otherItems, item)
		}
	}

	if len(videoItems) == 0 || len(cuts) == 0 {
		return Result{ModifiedItems: items}
	}

	var originals, segments []models.TimelineItem
	for _, item := range videoItems {
		if item.Props.IsCutSegment {
			segments = append(segments, item)
		} else {
			originals = append(originals, item)
		}
	}

	result := Result{}

	// When only tagged segments remain, merge them back into synthetic
	// originals so the current cut set applies to a clean slate
	if len(originals) == 0 && len(segments) > 0 {
		reconstructed, divergences := reconstruct(segments, fps)
		originals = append(originals, reconstructed...)
		result.Divergences = divergences
	}

	// Prior segments are always replaced wholesale on re-application
	for _, segment := range segments {
		result.RemovedItemIDs = append(result.RemovedItemIDs, segment.ID)
	}

	modified := otherItems
	for _, item := range originals {
		pieces := applyToItem(&item, cuts, fps)
		switch {
		case len(pieces) == 0:
			// Entirely cut away
			result.RemovedItemIDs = append(result.RemovedItemIDs, item.ID)
		case len(pieces) == 1 && pieces[0].ID == item.ID:
			// Untouched; keep the original to avoid id churn
			modified = append(modified, item)
		default:
			result.RemovedItemIDs = append(result.RemovedItemIDs, item.ID)
			modified = append(modified, pieces...)
		}
	}

	result.ModifiedItems = modified
	return result
}

// reconstruct builds one synthetic original per distinct originalItemId from
// its surviving segments. Returns the originals plus the IDs whose source-span
// computation disagreed with the segment-duration sum.
func reconstruct(segments []models.TimelineItem, fps int) ([]models.TimelineItem, []string) {
	groups := make(map[string][]models.TimelineItem)
	var order []string
	for _, segment := range segments {
		originalID := segment.Props.OriginalItemID
		if originalID == "" {
			continue
		}
		if _, seen := groups[originalID]; !seen {
			order = append(order, originalID)
		}
		groups[originalID] = append(groups[originalID], segment)
	}

	var originals []models.TimelineItem
	var divergences []string

	for _, originalID := range order {
		group := groups[originalID]
		sort.Slice(group, func(i, j int) bool {
			return group[i].Props.OriginalStartTime < group[j].Props.OriginalStartTime
		})

		earliestStart := group[0].Props.OriginalStartTime
		latestEnd := 0.0
		var segmentSum float64
		for _, segment := range group {
			if segment.Props.OriginalStartTime < earliestStart {
				earliestStart = segment.Props.OriginalStartTime
			}
			if segment.Props.OriginalEndTime > latestEnd {
				latestEnd = segment.Props.OriginalEndTime
			}
			segmentSum += float64(segment.Duration) / float64(fps)
		}

		spanDuration := latestEnd - earliestStart
		finalDuration := spanDuration
		if spanDuration <= 0 {
			// The span can legitimately come out non-positive when segment
			// bookkeeping is stale; fall back to the sum of segment durations
			finalDuration = segmentSum
			divergences = append(divergences, originalID)
		}

		first := group[0]
		original := first.Clone()
		original.ID = originalID // original id survives for reconciliation
		original.Name = first.Name
		if first.Props.OriginalName != "" {
			original.Name = first.Props.OriginalName
		}
		original.StartTime = first.StartTime // keep current timeline position
		original.Duration = int64(math.Round(finalDuration * float64(fps)))
		if original.Duration < 1 {
			original.Duration = 1
		}
		original.Props.IsCutSegment = false
		original.Props.OriginalItemID = ""
		original.Props.OriginalStartTime = earliestStart
		original.Props.OriginalEndTime = latestEnd
		original.Props.OriginalDuration = 0
		original.Props.OriginalName = ""
		original.Props.SegmentIndex = 0
		original.Props.TotalSegments = 0

		originals = append(originals, original)
	}

	return originals, divergences
}

// applyToItem splits a single original item around the active cuts that
// intersect its source range. Returns the surviving pieces; an empty slice
// means the item was entirely removed, and the item itself is returned
// unchanged when no cut touches it.
func applyToItem(item *models.TimelineItem, cuts []*models.DetectedCut, fps int) []models.TimelineItem {
	itemSourceStart := item.Props.OriginalStartTime
	itemSourceEnd := item.Props.OriginalEndTime
	if itemSourceEnd == 0 {
		itemSourceEnd = float64(item.Duration) / float64(fps)
	}

	var relevant []*models.DetectedCut
	for _, cut := range cuts {
		if !cut.IsActive {
			continue
		}
		if cut.SourceStart < itemSourceEnd && cut.SourceEnd > itemSourceStart {
			relevant = append(relevant, cut)
		}
	}
	sort.Slice(relevant, func(i, j int) bool {
		return relevant[i].SourceStart < relevant[j].SourceStart
	})

	if len(relevant) == 0 {
		return []models.TimelineItem{*item}
	}

	// Walk left to right, accumulating the kept spans between cuts
	type span struct{ start, end float64 }
	var kept []span
	currentPos := itemSourceStart

	for _, cut := range relevant {
		cutStart := math.Max(cut.SourceStart, itemSourceStart)
		cutEnd := math.Min(cut.SourceEnd, itemSourceEnd)

		if currentPos < cutStart {
			kept = append(kept, span{currentPos, cutStart})
		}
		currentPos = math.Max(currentPos, cutEnd)
	}
	if currentPos < itemSourceEnd {
		kept = append(kept, span{currentPos, itemSourceEnd})
	}

	var valid []span
	for _, s := range kept {
		if s.end-s.start >= minSegmentSeconds {
			valid = append(valid, s)
		}
	}

	if len(valid) == 0 {
		return nil
	}

	// Segments are packed consecutively from the original timeline position
	// so playback stays seamless across the removed regions
	results := make([]models.TimelineItem, 0, len(valid))
	timelineOffset := item.StartTime

	for i, s := range valid {
		duration := int64(math.Round((s.end - s.start) * float64(fps)))
		if duration < 1 {
			duration = 1
		}

		segment := item.Clone()
		segment.ID = uuid.NewString()
		if len(valid) > 1 {
			segment.Name = fmt.Sprintf("%s (%d/%d)", item.Name, i+1, len(valid))
		}
		segment.StartTime = timelineOffset
		segment.Duration = duration
		segment.Props.OriginalStartTime = s.start
		segment.Props.OriginalEndTime = s.end
		segment.Props.OriginalDuration = s.end - s.start
		segment.Props.OriginalName = item.Name
		segment.Props.IsCutSegment = true
		segment.Props.SegmentIndex = i
		segment.Props.TotalSegments = len(valid)
		segment.Props.OriginalItemID = item.ID

		results = append(results, segment)
		timelineOffset += duration
	}

	return results
}

// Signature digests the identifying shape of an item set. Callers compare
// signatures before and after a pass and skip dispatching a bulk update when
// nothing actually changed, which prevents re-application loops. Cut segments
// get fresh ids on every pass, so they are keyed by their original item and
// source span instead.
func Signature(items []models.TimelineItem) string {
	keys := make([]string, 0, len(items))
	for _, item := range items {
		identity := item.ID
		if item.Props.IsCutSegment {
			identity = fmt.Sprintf("%s@%g-%g",
				item.Props.OriginalItemID, item.Props.OriginalStartTime, item.Props.OriginalEndTime)
		}
		keys = append(keys, fmt.Sprintf("%s|%s|%t|%d|%d",
			identity, item.Name, item.Props.IsCutSegment, item.StartTime, item.Duration))
	}
	sort.Strings(keys)

	sum := sha256.Sum256([]byte(strings.Join(keys, "\n")))
	return hex.EncodeToString(sum[:])
}

// TimeSaved returns the total seconds removed by the active cuts
func TimeSaved(cuts []*models.DetectedCut) float64 {
	var total float64
	for _, cut := range cuts {
		if cut.IsActive {
			total += cut.Span()
		}
	}
	return total
}

// Stats summarizes a cut list
type Stats struct {
	TotalCuts  int
	ActiveCuts int
	TimeSaved  float64
	ByType     map[models.CutType]int
}

// Summarize computes counts and time saved for a cut list
func Summarize(cuts []*models.DetectedCut) Stats {
	stats := Stats{
		TotalCuts: len(cuts),
		ByType:    make(map[models.CutType]int),
	}
	for _, cut := range cuts {
		if cut.IsActive {
			stats.ActiveCuts++
			stats.TimeSaved += cut.Span()
			stats.ByType[cut.CutType]++
		}
	}
	return stats
}
