package cuts

import (
	"sort"
	"testing"

	"github.com/cutarr/cutarr/internal/models"
)

const testFPS = 30

func sourceClip(id string, videoID string, startFrame, durationFrames int64) models.TimelineItem {
	return models.TimelineItem{
		ID:        id,
		Type:      models.MediaTypeVideo,
		Name:      "interview",
		StartTime: startFrame,
		Duration:  durationFrames,
		TrackID:   "track-1",
		Src:       "media/interview.mp4",
		Props:     models.ItemProperties{VideoID: videoID},
	}
}

func cut(id, videoID string, start, end float64, active bool) *models.DetectedCut {
	return &models.DetectedCut{
		ID:          id,
		VideoID:     videoID,
		SourceStart: start,
		SourceEnd:   end,
		CutType:     models.CutTypeSilence,
		IsActive:    active,
	}
}

func segmentsOf(items []models.TimelineItem) []models.TimelineItem {
	var out []models.TimelineItem
	for _, item := range items {
		if item.Props.IsCutSegment {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out
}

func TestApplySplitsAroundActiveCuts(t *testing.T) {
	// One 10s clip, an active cut at [2,3] and an inactive one at [7,8]
	items := []models.TimelineItem{sourceClip("item-1", "vid-1", 300, 10*testFPS)}
	cuts := []*models.DetectedCut{
		cut("c1", "vid-1", 2, 3, true),
		cut("c2", "vid-1", 7, 8, false),
	}

	result := Apply(items, cuts, "vid-1", testFPS)

	if len(result.RemovedItemIDs) != 1 || result.RemovedItemIDs[0] != "item-1" {
		t.Fatalf("Expected original removed, got %v", result.RemovedItemIDs)
	}
	segments := segmentsOf(result.ModifiedItems)
	if len(segments) != 2 {
		t.Fatalf("Expected 2 segments, got %d", len(segments))
	}

	first, second := segments[0], segments[1]
	if first.Props.OriginalStartTime != 0 || first.Props.OriginalEndTime != 2 {
		t.Errorf("Expected first segment source [0,2], got [%f,%f]",
			first.Props.OriginalStartTime, first.Props.OriginalEndTime)
	}
	if second.Props.OriginalStartTime != 3 || second.Props.OriginalEndTime != 10 {
		t.Errorf("Expected second segment source [3,10], got [%f,%f]",
			second.Props.OriginalStartTime, second.Props.OriginalEndTime)
	}

	// Segments pack consecutively from the original timeline position
	if first.StartTime != 300 || first.Duration != 2*testFPS {
		t.Errorf("Expected first segment at frame 300 for 2s, got start=%d dur=%d",
			first.StartTime, first.Duration)
	}
	if second.StartTime != first.StartTime+first.Duration || second.Duration != 7*testFPS {
		t.Errorf("Expected second segment flush after the first, got start=%d dur=%d",
			second.StartTime, second.Duration)
	}

	if first.Name != "interview (1/2)" || second.Name != "interview (2/2)" {
		t.Errorf("Expected numbered segment names, got '%s' and '%s'", first.Name, second.Name)
	}
	for i, segment := range segments {
		if !segment.Props.IsCutSegment || segment.Props.OriginalItemID != "item-1" {
			t.Errorf("Segment %d missing cut bookkeeping: %+v", i, segment.Props)
		}
		if segment.ID == "item-1" {
			t.Errorf("Expected segment %d to receive a fresh id", i)
		}
	}
}

func TestApplyRemovesFullyCutItem(t *testing.T) {
	items := []models.TimelineItem{sourceClip("item-1", "vid-1", 0, 5*testFPS)}
	cuts := []*models.DetectedCut{cut("c1", "vid-1", 0, 5, true)}

	result := Apply(items, cuts, "vid-1", testFPS)

	if len(result.RemovedItemIDs) != 1 || result.RemovedItemIDs[0] != "item-1" {
		t.Errorf("Expected fully covered item removed, got %v", result.RemovedItemIDs)
	}
	if len(result.ModifiedItems) != 0 {
		t.Errorf("Expected no surviving items, got %d", len(result.ModifiedItems))
	}
}

func TestApplyNoiseFloorDropsSlivers(t *testing.T) {
	items := []models.TimelineItem{sourceClip("item-1", "vid-1", 0, 10*testFPS)}
	// Leaves only [9.95,10], below the 0.1s floor
	cuts := []*models.DetectedCut{cut("c1", "vid-1", 0, 9.95, true)}

	result := Apply(items, cuts, "vid-1", testFPS)

	if len(result.ModifiedItems) != 0 {
		t.Errorf("Expected sub-floor sliver dropped, got %d items", len(result.ModifiedItems))
	}
	if len(result.RemovedItemIDs) != 1 {
		t.Errorf("Expected original removed, got %v", result.RemovedItemIDs)
	}
}

func TestApplyUntouchedItemKeepsID(t *testing.T) {
	items := []models.TimelineItem{sourceClip("item-1", "vid-1", 0, 5*testFPS)}
	// Active cut entirely outside the item's source range
	cuts := []*models.DetectedCut{cut("c1", "vid-1", 20, 25, true)}

	result := Apply(items, cuts, "vid-1", testFPS)

	if len(result.RemovedItemIDs) != 0 {
		t.Errorf("Expected nothing removed, got %v", result.RemovedItemIDs)
	}
	if len(result.ModifiedItems) != 1 || result.ModifiedItems[0].ID != "item-1" {
		t.Fatalf("Expected the original item kept with its id, got %+v", result.ModifiedItems)
	}
	if result.ModifiedItems[0].Props.IsCutSegment {
		t.Errorf("Expected untouched item not tagged as a segment")
	}
}

func TestApplyLeavesOtherItemsAlone(t *testing.T) {
	text := models.TimelineItem{
		ID: "text-1", Type: models.MediaTypeText, Name: "title",
		StartTime: 0, Duration: 60, TrackID: "track-2",
		Props: models.ItemProperties{VideoID: "vid-1"},
	}
	otherVideo := sourceClip("item-2", "vid-2", 0, 5*testFPS)
	items := []models.TimelineItem{
		sourceClip("item-1", "vid-1", 0, 10*testFPS),
		text,
		otherVideo,
	}
	cuts := []*models.DetectedCut{cut("c1", "vid-1", 0, 1, true)}

	result := Apply(items, cuts, "vid-1", testFPS)

	var keptText, keptOther bool
	for _, item := range result.ModifiedItems {
		if item.ID == "text-1" {
			keptText = true
		}
		if item.ID == "item-2" {
			keptOther = true
		}
	}
	if !keptText || !keptOther {
		t.Errorf("Expected text and foreign-video items untouched, text=%t other=%t", keptText, keptOther)
	}
}

func TestApplyNoVideoItemsOrNoCutsIsNoop(t *testing.T) {
	items := []models.TimelineItem{sourceClip("item-1", "vid-1", 0, 300)}

	result := Apply(items, nil, "vid-1", testFPS)
	if len(result.ModifiedItems) != 1 || len(result.RemovedItemIDs) != 0 {
		t.Errorf("Expected empty cut list to change nothing")
	}

	result = Apply(items, []*models.DetectedCut{cut("c1", "vid-9", 0, 1, true)}, "vid-9", testFPS)
	if len(result.ModifiedItems) != 1 || result.ModifiedItems[0].ID != "item-1" {
		t.Errorf("Expected no matching video items to change nothing")
	}
}

func TestApplyReappliedToSegmentsIsLossless(t *testing.T) {
	items := []models.TimelineItem{sourceClip("item-1", "vid-1", 300, 10*testFPS)}
	firstCuts := []*models.DetectedCut{cut("c1", "vid-1", 2, 3, true)}

	first := Apply(items, firstCuts, "vid-1", testFPS)
	if len(segmentsOf(first.ModifiedItems)) != 2 {
		t.Fatalf("Setup: expected 2 segments from first pass")
	}

	// The cut set changes; the second pass sees only tagged segments and must
	// merge them back into the full [0,10] source range before re-splitting
	secondCuts := []*models.DetectedCut{cut("c2", "vid-1", 5, 6, true)}
	second := Apply(first.ModifiedItems, secondCuts, "vid-1", testFPS)

	segments := segmentsOf(second.ModifiedItems)
	if len(segments) != 2 {
		t.Fatalf("Expected 2 segments after re-application, got %d", len(segments))
	}
	if segments[0].Props.OriginalStartTime != 0 || segments[0].Props.OriginalEndTime != 5 {
		t.Errorf("Expected first re-split segment source [0,5], got [%f,%f]",
			segments[0].Props.OriginalStartTime, segments[0].Props.OriginalEndTime)
	}
	if segments[1].Props.OriginalStartTime != 6 || segments[1].Props.OriginalEndTime != 10 {
		t.Errorf("Expected second re-split segment source [6,10], got [%f,%f]",
			segments[1].Props.OriginalStartTime, segments[1].Props.OriginalEndTime)
	}
	// Old segment ids are replaced wholesale
	if len(second.RemovedItemIDs) != 3 {
		t.Errorf("Expected 2 old segments plus the synthetic original removed, got %v", second.RemovedItemIDs)
	}
	if segments[0].StartTime != 300 {
		t.Errorf("Expected timeline position preserved through reconstruction, got %d", segments[0].StartTime)
	}
}

func TestApplyDeactivatedCutsRestoreOriginal(t *testing.T) {
	items := []models.TimelineItem{sourceClip("item-1", "vid-1", 300, 10*testFPS)}
	active := []*models.DetectedCut{cut("c1", "vid-1", 2, 3, true)}

	first := Apply(items, active, "vid-1", testFPS)

	// Same cut toggled off: reconstruction yields one untouched original
	inactive := []*models.DetectedCut{cut("c1", "vid-1", 2, 3, false)}
	second := Apply(first.ModifiedItems, inactive, "vid-1", testFPS)

	if len(second.ModifiedItems) != 1 {
		t.Fatalf("Expected a single merged item, got %d", len(second.ModifiedItems))
	}
	restored := second.ModifiedItems[0]
	if restored.Props.IsCutSegment {
		t.Errorf("Expected restored item untagged")
	}
	if restored.Duration != 10*testFPS {
		t.Errorf("Expected full 10s duration restored, got %d frames", restored.Duration)
	}
	if restored.Name != "interview" {
		t.Errorf("Expected original name restored, got '%s'", restored.Name)
	}
	if restored.StartTime != 300 {
		t.Errorf("Expected timeline position preserved, got %d", restored.StartTime)
	}
}

func TestReconstructDivergenceFallsBackToSegmentSum(t *testing.T) {
	// Stale bookkeeping: both end times are zero, so the span is non-positive
	seg := func(id string, durationFrames int64, start float64) models.TimelineItem {
		item := sourceClip(id, "vid-1", 0, durationFrames)
		item.Props.IsCutSegment = true
		item.Props.OriginalItemID = "orig-1"
		item.Props.OriginalStartTime = start
		item.Props.OriginalEndTime = 0
		return item
	}
	segments := []models.TimelineItem{
		seg("s1", 2*testFPS, 0),
		seg("s2", 3*testFPS, 5),
	}

	originals, divergences := reconstruct(segments, testFPS)

	if len(originals) != 1 {
		t.Fatalf("Expected 1 reconstructed original, got %d", len(originals))
	}
	if originals[0].ID != "orig-1" {
		t.Errorf("Expected original id preserved, got %s", originals[0].ID)
	}
	if originals[0].Duration != 5*testFPS {
		t.Errorf("Expected duration from segment sum (5s), got %d frames", originals[0].Duration)
	}
	if len(divergences) != 1 || divergences[0] != "orig-1" {
		t.Errorf("Expected divergence reported for orig-1, got %v", divergences)
	}
}

func TestSignatureStableAcrossOrder(t *testing.T) {
	a := sourceClip("item-1", "vid-1", 0, 100)
	b := sourceClip("item-2", "vid-1", 100, 100)

	s1 := Signature([]models.TimelineItem{a, b})
	s2 := Signature([]models.TimelineItem{b, a})
	if s1 != s2 {
		t.Errorf("Expected signature independent of item order")
	}

	b.Duration = 101
	if Signature([]models.TimelineItem{a, b}) == s1 {
		t.Errorf("Expected signature to change with item duration")
	}
}

func TestTimeSavedAndSummarize(t *testing.T) {
	cuts := []*models.DetectedCut{
		cut("c1", "vid-1", 2, 3, true),
		cut("c2", "vid-1", 7, 9, true),
		cut("c3", "vid-1", 12, 20, false),
	}
	cuts[1].CutType = models.CutTypeFiller

	if saved := TimeSaved(cuts); saved != 3 {
		t.Errorf("Expected 3s saved, got %f", saved)
	}

	stats := Summarize(cuts)
	if stats.TotalCuts != 3 || stats.ActiveCuts != 2 {
		t.Errorf("Expected 3 total / 2 active, got %d / %d", stats.TotalCuts, stats.ActiveCuts)
	}
	if stats.ByType[models.CutTypeSilence] != 1 || stats.ByType[models.CutTypeFiller] != 1 {
		t.Errorf("Expected one active cut per type, got %v", stats.ByType)
	}
}
