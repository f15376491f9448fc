package present

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/ppiankov/biaslens/internal/model"
	"gopkg.in/yaml.v3"
)

// Output formats
const (
	FormatHuman    = "human"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
	FormatMarkdown = "markdown"
)

// Formats lists every supported output format
var Formats = []string{FormatHuman, FormatJSON, FormatYAML, FormatMarkdown}

// Renderer writes interaction states in one output format
type Renderer struct {
	format string
}

// NewRenderer creates a renderer for format
func NewRenderer(format string) (*Renderer, error) {
	switch format {
	case "", FormatHuman:
		format = FormatHuman
	case FormatJSON, FormatYAML, FormatMarkdown, "md":
		if format == "md" {
			format = FormatMarkdown
		}
	default:
		return nil, fmt.Errorf("unknown output format %q (supported: %s)", format, strings.Join(Formats, ", "))
	}
	return &Renderer{format: format}, nil
}

// Format returns the renderer's output format
func (r *Renderer) Format() string {
	return r.format
}

// stateDocument is the machine-readable form of a state
type stateDocument struct {
	Phase   model.Phase           `json:"phase" yaml:"phase"`
	Result  *model.AnalysisResult `json:"result,omitempty" yaml:"result,omitempty"`
	View    *View                 `json:"view,omitempty" yaml:"view,omitempty"`
	Message string                `json:"message,omitempty" yaml:"message,omitempty"`
}

// Render writes state to w. Idle and analyzing states produce no human
// or markdown output.
func (r *Renderer) Render(w io.Writer, state model.InteractionState) error {
	switch r.format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(document(state))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(document(state)); err != nil {
			return err
		}
		return enc.Close()
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(state))
		return err
	default:
		return r.renderHuman(w, state)
	}
}

func document(state model.InteractionState) stateDocument {
	return stateDocument{
		Phase:   state.Phase,
		Result:  state.Result,
		View:    PresentState(state),
		Message: state.Message,
	}
}

func (r *Renderer) renderHuman(w io.Writer, state model.InteractionState) error {
	var b strings.Builder

	switch state.Phase {
	case model.PhaseFailure:
		red := color.New(color.FgRed, color.Bold)
		b.WriteString("\n")
		b.WriteString(red.Sprint("✗ ANALYSIS FAILED"))
		b.WriteString("\n")
		fmt.Fprintf(&b, "   %s\n", state.Message)
	case model.PhaseSuccess:
		r.writeHumanView(&b, PresentState(state))
	default:
		return nil
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func (r *Renderer) writeHumanView(b *strings.Builder, v *View) {
	if v == nil {
		return
	}
	bold := color.New(color.Bold)
	muted := color.New(color.FgHiBlack)
	badge := tierColor(v.Tier)

	b.WriteString("\n")
	fmt.Fprintf(b, "%s  %s\n\n", bold.Sprint("ANALYSIS RESULTS"), badge.Sprintf("%s %s", iconGlyph(v.Icon), v.Label))

	fmt.Fprintf(b, "%s %s\n", bold.Sprint("Severity:"), badge.Sprint(v.Severity))
	b.WriteString(bold.Sprint("Assessment:"))
	b.WriteString("\n")
	if v.AssessmentMissing {
		b.WriteString(muted.Sprint(indent(v.Assessment, "   ")))
	} else {
		b.WriteString(indent(v.Assessment, "   "))
	}
	b.WriteString("\n\n")

	if !v.HasIssues() {
		b.WriteString(muted.Sprint(v.NoIssuesMessage))
		b.WriteString("\n")
		return
	}

	cyan := color.New(color.FgCyan, color.Bold)
	for _, issue := range v.Issues {
		b.WriteString(cyan.Sprint(issue.Heading))
		b.WriteString("\n")
		fmt.Fprintf(b, "   %s \"%s\"\n", bold.Sprint("Sentence:"), issue.Sentence)
		fmt.Fprintf(b, "   ➤ %s\n", issue.Issue)
		fmt.Fprintf(b, "   %s %s\n", bold.Sprint("Bias Type:"), issue.Bias)
		fmt.Fprintf(b, "   %s %s\n\n", bold.Sprint("Proposed Solution:"), color.GreenString(issue.Solution))
	}
}

// Markdown renders state as a Markdown document
func Markdown(state model.InteractionState) string {
	var b strings.Builder

	switch state.Phase {
	case model.PhaseFailure:
		b.WriteString("# Analysis Failed\n\n")
		b.WriteString(state.Message)
		b.WriteString("\n")
		return b.String()
	case model.PhaseSuccess:
	default:
		return ""
	}

	v := PresentState(state)
	if v == nil {
		return ""
	}

	fmt.Fprintf(&b, "# Analysis Results: %s\n\n", v.Label)
	fmt.Fprintf(&b, "**Severity:** %s\n\n", v.Severity)
	b.WriteString("**Assessment:**\n\n")
	if v.AssessmentMissing {
		fmt.Fprintf(&b, "_%s_\n\n", v.Assessment)
	} else {
		fmt.Fprintf(&b, "%s\n\n", v.Assessment)
	}

	if !v.HasIssues() {
		fmt.Fprintf(&b, "_%s_\n", v.NoIssuesMessage)
		return b.String()
	}

	for _, issue := range v.Issues {
		fmt.Fprintf(&b, "## %s\n\n", issue.Heading)
		fmt.Fprintf(&b, "**Sentence:** \"%s\"\n\n", issue.Sentence)
		fmt.Fprintf(&b, "> %s\n\n", issue.Issue)
		fmt.Fprintf(&b, "- **Bias Type:** %s\n", issue.Bias)
		fmt.Fprintf(&b, "- **Proposed Solution:** %s\n\n", issue.Solution)
	}
	return b.String()
}

func tierColor(t Tier) *color.Color {
	switch t {
	case TierSuccess:
		return color.New(color.FgGreen, color.Bold)
	case TierWarning:
		return color.New(color.FgYellow, color.Bold)
	case TierDestructive:
		return color.New(color.FgRed, color.Bold)
	default:
		return color.New(color.FgWhite)
	}
}

func iconGlyph(i Icon) string {
	switch i {
	case IconAffirmative:
		return "✔"
	case IconWarning:
		return "⚠"
	default:
		return "👁"
	}
}

// indent prefixes every line of text with prefix, leaving the text itself untouched
func indent(text, prefix string) string {
	return prefix + strings.ReplaceAll(text, "\n", "\n"+prefix)
}
