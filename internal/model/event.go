package model

import "time"

// Event is a user-facing notification emitted by an analysis session
type Event struct {
	ID          string        `json:"id"`
	Category    EventCategory `json:"category"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Variant     EventVariant  `json:"variant"`
	At          time.Time     `json:"at"`
}

// EventCategory classifies the notification
type EventCategory string

const (
	EventValidationError  EventCategory = "validation-error"  // Rejected before submission
	EventAnalysisFailed   EventCategory = "analysis-failed"   // Submission ended in failure
	EventAnalysisComplete EventCategory = "analysis-complete" // Submission succeeded
)

// EventVariant tells the sink how prominently to show the notification
type EventVariant string

const (
	VariantInformational EventVariant = "informational"
	VariantDestructive   EventVariant = "destructive"
)

// Fixed notification texts
const (
	TitleValidationError = "Error"
	MessageEmptyText     = "Please enter some text to analyze."

	TitleAnalysisFailed = "Analysis Failed"
	MessageUnknownError = "An unknown error occurred. Please try again."

	TitleAnalysisComplete   = "Analysis Complete"
	MessageAnalysisComplete = "Text has been analyzed for potential bias."
)

// IsDestructive reports whether the event should be shown as an error
func (e Event) IsDestructive() bool {
	return e.Variant == VariantDestructive
}
