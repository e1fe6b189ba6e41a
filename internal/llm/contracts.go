package llm

import "context"

// CandidateEvent is the loosely structured record the model returns.
// Fields may be missing, malformed, or out of range; the validator
// downstream decides what survives. Any id the model volunteers is
// ignored — identity is assigned after validation.
type CandidateEvent struct {
	Title       string `json:"title"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	AllDay      bool   `json:"all_day,omitempty"`
}

// StructureRequest carries extracted text and, for visual inputs, the
// image bytes sent alongside it.
type StructureRequest struct {
	Text           string
	SourceLabel    string // e.g. "image/schedule", "PDF document", "pasted text"
	Image          []byte // optional visual payload
	ImageMediaType string // e.g. "image/png"; defaults to image/png when Image is set
	MaxCandidates  int    // cap on returned candidates; 0 = package default
	MaxTextChars   int    // cap on prompt text; 0 = package default
}

// Structurer is the interface the pipeline depends on.
type Structurer interface {
	StructureEvents(ctx context.Context, req StructureRequest) ([]CandidateEvent, []byte /*rawJSON*/, error)
}
