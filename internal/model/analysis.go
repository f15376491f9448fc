package model

// AnalyzeRequest is the body posted to the analysis service
type AnalyzeRequest struct {
	Text string `json:"text"`
}

// AnalysisResult is the bias assessment returned by the analysis service.
// The service payload is the result itself, there is no wrapping envelope.
type AnalysisResult struct {
	Severity          Severity `json:"severity" yaml:"severity"`                    // low, medium, high
	OverallAssessment string   `json:"overallAssessment" yaml:"overall_assessment"` // Narrative summary, may be empty
	Issues            []Issue  `json:"issues,omitempty" yaml:"issues,omitempty"`    // Display order as received
}

// Issue is one flagged sentence with its bias category and proposed rewrite
type Issue struct {
	Sentence string `json:"sentence" yaml:"sentence"` // The flagged sentence
	Bias     string `json:"bias" yaml:"bias"`         // Bias category (e.g., "gender")
	Issue    string `json:"issue" yaml:"issue"`       // Why the sentence was flagged
	Solution string `json:"solution" yaml:"solution"` // Proposed rewrite
}

// ErrorBody is the body the analysis service sends with a non-2xx status
type ErrorBody struct {
	Error string `json:"error"`
}

// Severity is the overall bias risk of the submitted text
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Valid reports whether s belongs to the closed severity enumeration
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	default:
		return false
	}
}

// Clone returns a deep copy of the result
func (r *AnalysisResult) Clone() *AnalysisResult {
	if r == nil {
		return nil
	}
	out := *r
	if r.Issues != nil {
		out.Issues = make([]Issue, len(r.Issues))
		copy(out.Issues, r.Issues)
	}
	return &out
}
