package present

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/ppiankov/biaslens/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func chairman() *model.AnalysisResult {
	return &model.AnalysisResult{
		Severity:          model.SeverityMedium,
		OverallAssessment: "Contains gendered role term.",
		Issues: []model.Issue{{
			Sentence: "The chairman will decide.",
			Bias:     "gender",
			Issue:    "'chairman' assumes male default",
			Solution: "use 'chair' or 'chairperson'",
		}},
	}
}

func TestTierAndIcon(t *testing.T) {
	tests := []struct {
		severity model.Severity
		tier     Tier
		icon     Icon
		label    string
	}{
		{model.SeverityLow, TierSuccess, IconAffirmative, "Low Risk"},
		{model.SeverityMedium, TierWarning, IconWarning, "Medium Risk"},
		{model.SeverityHigh, TierDestructive, IconWarning, "High Risk"},
		{"critical", TierNeutral, IconNeutral, "Critical Risk"},
		{"HIGH", TierNeutral, IconNeutral, "HIGH Risk"},
		{"", TierNeutral, IconNeutral, "Unknown Risk"},
	}

	for _, tt := range tests {
		t.Run(string(tt.severity), func(t *testing.T) {
			assert.Equal(t, tt.tier, TierFor(tt.severity))
			assert.Equal(t, tt.icon, IconFor(tt.severity))
			assert.Equal(t, tt.label, SeverityLabel(tt.severity))
		})
	}
}

func TestPresent_WithIssue(t *testing.T) {
	v := Present(chairman())
	require.NotNil(t, v)

	assert.Equal(t, TierWarning, v.Tier)
	assert.Equal(t, "Contains gendered role term.", v.Assessment)
	assert.False(t, v.AssessmentMissing)
	assert.Empty(t, v.NoIssuesMessage)
	require.Len(t, v.Issues, 1)
	assert.Equal(t, IssueView{
		Number:   1,
		Heading:  "Issue #1",
		Sentence: "The chairman will decide.",
		Bias:     "gender",
		Issue:    "'chairman' assumes male default",
		Solution: "use 'chair' or 'chairperson'",
	}, v.Issues[0])
}

func TestPresent_IssueOrderAndNumbering(t *testing.T) {
	r := &model.AnalysisResult{Severity: model.SeverityHigh}
	for _, s := range []string{"c", "a", "b"} {
		r.Issues = append(r.Issues, model.Issue{Sentence: s})
	}

	v := Present(r)
	require.Len(t, v.Issues, 3)
	for i, want := range []string{"c", "a", "b"} {
		assert.Equal(t, i+1, v.Issues[i].Number)
		assert.Equal(t, want, v.Issues[i].Sentence)
	}
	assert.Equal(t, "Issue #3", v.Issues[2].Heading)
}

func TestPresent_Placeholders(t *testing.T) {
	for name, r := range map[string]*model.AnalysisResult{
		"nil issues":   {Severity: model.SeverityLow},
		"empty issues": {Severity: model.SeverityLow, Issues: []model.Issue{}},
		"blank text":   {Severity: model.SeverityLow, OverallAssessment: " \n\t"},
	} {
		t.Run(name, func(t *testing.T) {
			v := Present(r)
			assert.Equal(t, NoAssessmentMessage, v.Assessment)
			assert.True(t, v.AssessmentMissing)
			assert.Equal(t, NoIssuesMessage, v.NoIssuesMessage)
			assert.Empty(t, v.Issues)
			assert.False(t, v.HasIssues())
		})
	}
}

func TestPresent_AssessmentVerbatim(t *testing.T) {
	long := strings.Repeat("word ", 500) + "\n  indented line"
	v := Present(&model.AnalysisResult{Severity: model.SeverityLow, OverallAssessment: long})
	assert.Equal(t, long, v.Assessment)
}

func TestPresent_Nil(t *testing.T) {
	assert.Nil(t, Present(nil))
	assert.Nil(t, PresentState(model.IdleState()))
	assert.Nil(t, PresentState(model.AnalyzingState()))
	assert.Nil(t, PresentState(model.FailureState("x")))
	assert.NotNil(t, PresentState(model.SuccessState(chairman())))
}

func TestNewRenderer(t *testing.T) {
	for _, f := range []string{"", "human", "json", "yaml", "markdown", "md"} {
		_, err := NewRenderer(f)
		assert.NoError(t, err, f)
	}
	r, _ := NewRenderer("md")
	assert.Equal(t, FormatMarkdown, r.Format())

	_, err := NewRenderer("xml")
	assert.Error(t, err)
}

func render(t *testing.T, format string, state model.InteractionState) string {
	t.Helper()
	r, err := NewRenderer(format)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, state))
	return buf.String()
}

func TestRender_Human(t *testing.T) {
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = false })

	out := render(t, FormatHuman, model.SuccessState(chairman()))
	assert.Contains(t, out, "⚠ Medium Risk")
	assert.Contains(t, out, "Issue #1")
	assert.Contains(t, out, `Sentence: "The chairman will decide."`)
	assert.Contains(t, out, "Proposed Solution: use 'chair' or 'chairperson'")
	assert.NotContains(t, out, NoIssuesMessage)

	out = render(t, FormatHuman, model.SuccessState(&model.AnalysisResult{Severity: "odd"}))
	assert.Contains(t, out, NoAssessmentMessage)
	assert.Contains(t, out, NoIssuesMessage)
	assert.Contains(t, out, "Odd Risk")

	out = render(t, FormatHuman, model.FailureState("text too long"))
	assert.Contains(t, out, "ANALYSIS FAILED")
	assert.Contains(t, out, "text too long")

	assert.Empty(t, render(t, FormatHuman, model.IdleState()))
	assert.Empty(t, render(t, FormatHuman, model.AnalyzingState()))
}

func TestRender_JSON(t *testing.T) {
	out := render(t, FormatJSON, model.SuccessState(chairman()))

	var doc struct {
		Phase  string               `json:"phase"`
		Result model.AnalysisResult `json:"result"`
		View   View                 `json:"view"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "success", doc.Phase)
	assert.Equal(t, *chairman(), doc.Result)
	assert.Equal(t, TierWarning, doc.View.Tier)
	assert.Len(t, doc.View.Issues, 1)
}

func TestRender_YAML(t *testing.T) {
	out := render(t, FormatYAML, model.FailureState("text too long"))

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "failure", doc["phase"])
	assert.Equal(t, "text too long", doc["message"])
	assert.NotContains(t, doc, "view")
}

func TestMarkdown(t *testing.T) {
	md := Markdown(model.SuccessState(chairman()))
	assert.True(t, strings.HasPrefix(md, "# Analysis Results: Medium Risk\n"))
	assert.Contains(t, md, "## Issue #1\n")
	assert.Contains(t, md, "> 'chairman' assumes male default\n")

	md = Markdown(model.SuccessState(&model.AnalysisResult{Severity: model.SeverityLow}))
	assert.Contains(t, md, "_"+NoAssessmentMessage+"_")
	assert.Contains(t, md, "_"+NoIssuesMessage+"_")

	assert.Equal(t, "# Analysis Failed\n\nboom\n", Markdown(model.FailureState("boom")))
	assert.Empty(t, Markdown(model.IdleState()))
}
