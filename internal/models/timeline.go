package models

// ItemProperties carries the per-item metadata the engine actually reads.
// Cut bookkeeping fields are structured; everything else collaborators stash
// on an item (position, size, font) rides along untouched in Extra.
type ItemProperties struct {
	// VideoID correlates the item to a source video for cut lookups
	VideoID string `json:"videoId,omitempty"`

	// Cut segment bookkeeping. Original* times are in source seconds.
	IsCutSegment      bool    `json:"isCutSegment,omitempty"`
	OriginalItemID    string  `json:"originalItemId,omitempty"`
	OriginalStartTime float64 `json:"originalStartTime,omitempty"`
	OriginalEndTime   float64 `json:"originalEndTime,omitempty"`
	OriginalDuration  float64 `json:"originalDuration,omitempty"`
	OriginalName      string  `json:"originalName,omitempty"`
	SegmentIndex      int     `json:"segmentIndex,omitempty"`
	TotalSegments     int     `json:"totalSegments,omitempty"`

	// Extra is opaque passthrough data owned by other collaborators
	Extra map[string]any `json:"extra,omitempty"`
}

// Clone returns a deep copy of the properties
func (p ItemProperties) Clone() ItemProperties {
	c := p
	if p.Extra != nil {
		c.Extra = make(map[string]any, len(p.Extra))
		for k, v := range p.Extra {
			c.Extra[k] = v
		}
	}
	return c
}

// TimelineItem is a placed piece of content on a track.
// StartTime and Duration are in frames; Duration is never below one frame.
type TimelineItem struct {
	ID        string         `json:"id"`
	Type      MediaType      `json:"type"`
	Name      string         `json:"name"`
	StartTime int64          `json:"startTime"`
	Duration  int64          `json:"duration"`
	TrackID   string         `json:"trackId"`
	Src       string         `json:"src,omitempty"`     // media locator
	Content   string         `json:"content,omitempty"` // inline text for text items
	Props     ItemProperties `json:"properties"`
}

// EndTime returns the first frame after the item
func (i *TimelineItem) EndTime() int64 {
	return i.StartTime + i.Duration
}

// Clone returns a deep copy of the item
func (i *TimelineItem) Clone() TimelineItem {
	c := *i
	c.Props = i.Props.Clone()
	return c
}

// Transition references two items on the same track and blends between them
type Transition struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Name       string `json:"name"`
	Duration   int64  `json:"duration"` // frames
	Position   int64  `json:"position"` // absolute frame where it starts
	FromItemID string `json:"fromItemId"`
	ToItemID   string `json:"toItemId"`
	TrackID    string `json:"trackId"`
	Effect     string `json:"effect,omitempty"`
}

// Track holds non-overlapping items plus transitions between them
type Track struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Items       []TimelineItem `json:"items"`
	Transitions []Transition   `json:"transitions,omitempty"`
	Height      int            `json:"height"`
	Muted       bool           `json:"muted,omitempty"`
	Locked      bool           `json:"locked,omitempty"`
}

// Clone returns a deep copy of the track
func (t *Track) Clone() Track {
	c := *t
	c.Items = make([]TimelineItem, len(t.Items))
	for i := range t.Items {
		c.Items[i] = t.Items[i].Clone()
	}
	if t.Transitions != nil {
		c.Transitions = make([]Transition, len(t.Transitions))
		copy(c.Transitions, t.Transitions)
	}
	return c
}

// CloneTracks deep-copies a track list
func CloneTracks(tracks []Track) []Track {
	out := make([]Track, len(tracks))
	for i := range tracks {
		out[i] = tracks[i].Clone()
	}
	return out
}

// TimelineState is the canonical timeline document
type TimelineState struct {
	Tracks           []Track  `json:"tracks"`
	PlayheadPosition int64    `json:"playheadPosition"` // frames, clamped to [0, TotalDuration]
	TotalDuration    int64    `json:"totalDuration"`    // frames, derived
	Zoom             float64  `json:"zoom"`             // pixels per frame
	FPS              int      `json:"fps"`
	SelectedItems    []string `json:"selectedItems"` // UI-only, excluded from persistence
	IsPlaying        bool     `json:"isPlaying"`
}

// Clone returns a deep copy of the state
func (s *TimelineState) Clone() TimelineState {
	c := *s
	c.Tracks = CloneTracks(s.Tracks)
	c.SelectedItems = append([]string(nil), s.SelectedItems...)
	return c
}

// FindItem returns the item with the given id, or nil if no track holds it
func FindItem(tracks []Track, itemID string) *TimelineItem {
	for ti := range tracks {
		for ii := range tracks[ti].Items {
			if tracks[ti].Items[ii].ID == itemID {
				return &tracks[ti].Items[ii]
			}
		}
	}
	return nil
}

// FindTrack returns the track with the given id, or nil
func FindTrack(tracks []Track, trackID string) *Track {
	for i := range tracks {
		if tracks[i].ID == trackID {
			return &tracks[i]
		}
	}
	return nil
}
