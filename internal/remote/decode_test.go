package remote

import (
	"testing"

	"github.com/ppiankov/biaslens/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeResult(t *testing.T) {
	tests := []struct {
		name string
		body string
		want *model.AnalysisResult
	}{
		{
			name: "full payload",
			body: `{"severity":"high","overallAssessment":"Loaded language.","issues":[{"sentence":"s","bias":"b","issue":"i","solution":"f"}]}`,
			want: &model.AnalysisResult{
				Severity:          model.SeverityHigh,
				OverallAssessment: "Loaded language.",
				Issues:            []model.Issue{{Sentence: "s", Bias: "b", Issue: "i", Solution: "f"}},
			},
		},
		{
			name: "issues omitted",
			body: `{"severity":"low","overallAssessment":"Fine."}`,
			want: &model.AnalysisResult{Severity: model.SeverityLow, OverallAssessment: "Fine."},
		},
		{
			name: "issues not an array",
			body: `{"severity":"low","issues":"none"}`,
			want: &model.AnalysisResult{Severity: model.SeverityLow},
		},
		{
			name: "issues null",
			body: `{"severity":"medium","issues":null}`,
			want: &model.AnalysisResult{Severity: model.SeverityMedium},
		},
		{
			name: "non-object elements skipped, order kept",
			body: `{"severity":"medium","issues":[{"sentence":"one"},"junk",7,{"sentence":"two","bias":3}]}`,
			want: &model.AnalysisResult{
				Severity: model.SeverityMedium,
				Issues:   []model.Issue{{Sentence: "one"}, {Sentence: "two"}},
			},
		},
		{
			name: "severity kept verbatim",
			body: `{"severity":"  HIGH "}`,
			want: &model.AnalysisResult{Severity: "  HIGH "},
		},
		{
			name: "unknown severity carried verbatim",
			body: `{"severity":"catastrophic"}`,
			want: &model.AnalysisResult{Severity: "catastrophic"},
		},
		{
			name: "mistyped scalar fields",
			body: `{"severity":2,"overallAssessment":{"text":"x"}}`,
			want: &model.AnalysisResult{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeResult([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeResult_Errors(t *testing.T) {
	for _, body := range []string{``, `{"severity":`, `[]`, `"medium"`, `null`, `12`} {
		_, err := DecodeResult([]byte(body))
		assert.Error(t, err, "body %q", body)
	}

	_, err := DecodeResult([]byte(`[{"severity":"low"}]`))
	assert.EqualError(t, err, "decode analysis result: expected JSON object, got array")
}

func TestDecodeErrorMessage(t *testing.T) {
	assert.Equal(t, "text too long", DecodeErrorMessage([]byte(`{"error":"text too long"}`)))
	assert.Equal(t, "", DecodeErrorMessage([]byte(`{"error":{"message":"x"}}`)))
	assert.Equal(t, "", DecodeErrorMessage([]byte(`{"message":"x"}`)))
	assert.Equal(t, "", DecodeErrorMessage([]byte(`Internal Server Error`)))
	assert.Equal(t, "", DecodeErrorMessage(nil))
}
