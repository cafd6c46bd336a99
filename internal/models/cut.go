package models

import "time"

// DetectedCut is a source-time interval flagged for removal by the analysis
// service. Times are seconds in the source video's own timeline, not frames.
type DetectedCut struct {
	ID      string `boltholdKey:"ID" json:"id"`
	VideoID string `boltholdIndex:"VideoID" json:"video_id"`

	SourceStart float64 `json:"source_start"`
	SourceEnd   float64 `json:"source_end"`
	CutType     CutType `json:"cut_type"`

	// Analysis metadata
	Confidence   float64 `json:"confidence,omitempty"`
	Reasoning    string  `json:"reasoning,omitempty"`
	AffectedText string  `json:"affected_text,omitempty"`

	// Only active cuts are applied; users toggle this
	IsActive bool `json:"is_active"`

	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Span returns the length of the cut in seconds
func (c *DetectedCut) Span() float64 {
	return c.SourceEnd - c.SourceStart
}
