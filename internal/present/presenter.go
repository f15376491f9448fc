// Package present maps analysis results to renderable views.
package present

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ppiankov/biaslens/internal/model"
)

// Placeholder texts
const (
	NoAssessmentMessage = "No assessment available."
	NoIssuesMessage     = "No specific issues were found in the analysis."
)

// Tier is the presentation tier of a severity
type Tier string

const (
	TierSuccess     Tier = "success"
	TierWarning     Tier = "warning"
	TierDestructive Tier = "destructive"
	TierNeutral     Tier = "neutral"
)

// Icon is the icon category of a severity
type Icon string

const (
	IconAffirmative Icon = "affirmative"
	IconWarning     Icon = "warning"
	IconNeutral     Icon = "neutral"
)

// View is the display form of an AnalysisResult
type View struct {
	Severity          string      `json:"severity" yaml:"severity"`
	Label             string      `json:"label" yaml:"label"` // e.g. "Medium Risk"
	Tier              Tier        `json:"tier" yaml:"tier"`
	Icon              Icon        `json:"icon" yaml:"icon"`
	Assessment        string      `json:"assessment" yaml:"assessment"`
	AssessmentMissing bool        `json:"assessment_missing" yaml:"assessment_missing"`
	Issues            []IssueView `json:"issues" yaml:"issues"`
	NoIssuesMessage   string      `json:"no_issues_message,omitempty" yaml:"no_issues_message,omitempty"`
}

// IssueView is one numbered issue record
type IssueView struct {
	Number   int    `json:"number" yaml:"number"`
	Heading  string `json:"heading" yaml:"heading"`
	Sentence string `json:"sentence" yaml:"sentence"`
	Bias     string `json:"bias" yaml:"bias"`
	Issue    string `json:"issue" yaml:"issue"`
	Solution string `json:"solution" yaml:"solution"`
}

// HasIssues reports whether the view carries issue records
func (v *View) HasIssues() bool {
	return len(v.Issues) > 0
}

// Present maps result to its view. It returns nil for a nil result.
func Present(result *model.AnalysisResult) *View {
	if result == nil {
		return nil
	}

	v := &View{
		Severity:   string(result.Severity),
		Label:      SeverityLabel(result.Severity),
		Tier:       TierFor(result.Severity),
		Icon:       IconFor(result.Severity),
		Assessment: result.OverallAssessment,
		Issues:     []IssueView{},
	}

	if strings.TrimSpace(result.OverallAssessment) == "" {
		v.Assessment = NoAssessmentMessage
		v.AssessmentMissing = true
	}

	if len(result.Issues) == 0 {
		v.NoIssuesMessage = NoIssuesMessage
		return v
	}

	for i, issue := range result.Issues {
		v.Issues = append(v.Issues, IssueView{
			Number:   i + 1,
			Heading:  fmt.Sprintf("Issue #%d", i+1),
			Sentence: issue.Sentence,
			Bias:     issue.Bias,
			Issue:    issue.Issue,
			Solution: issue.Solution,
		})
	}
	return v
}

// PresentState maps the success payload of state; other phases have no view
func PresentState(state model.InteractionState) *View {
	if state.Phase != model.PhaseSuccess {
		return nil
	}
	return Present(state.Result)
}

// TierFor maps a severity to its presentation tier
func TierFor(s model.Severity) Tier {
	switch s {
	case model.SeverityLow:
		return TierSuccess
	case model.SeverityMedium:
		return TierWarning
	case model.SeverityHigh:
		return TierDestructive
	default:
		return TierNeutral
	}
}

// IconFor maps a severity to its icon category
func IconFor(s model.Severity) Icon {
	switch s {
	case model.SeverityLow:
		return IconAffirmative
	case model.SeverityMedium, model.SeverityHigh:
		return IconWarning
	default:
		return IconNeutral
	}
}

// SeverityLabel returns the badge text, e.g. "High Risk"
func SeverityLabel(s model.Severity) string {
	name := strings.TrimSpace(string(s))
	if name == "" {
		return "Unknown Risk"
	}
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r)) + name[size:] + " Risk"
}
