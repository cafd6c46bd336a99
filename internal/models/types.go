package models

// MediaType represents the kind of content a timeline item renders
type MediaType string

const (
	MediaTypeVideo MediaType = "video"
	MediaTypeImage MediaType = "image"
	MediaTypeAudio MediaType = "audio"
	MediaTypeText  MediaType = "text"
)

// TimelineStatus represents how a persisted timeline was last saved
type TimelineStatus string

const (
	StatusDraft         TimelineStatus = "draft"
	StatusAutoSaved     TimelineStatus = "auto_saved"
	StatusManuallySaved TimelineStatus = "manually_saved"
)

// CutType classifies why a region of source media was flagged for removal
type CutType string

const (
	CutTypeSilence CutType = "silence"
	CutTypeFiller  CutType = "filler"
	CutTypeManual  CutType = "manual"
)
