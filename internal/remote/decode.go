package remote

import (
	"encoding/json"
	"fmt"

	"github.com/ppiankov/biaslens/internal/model"
)

// DecodeResult decodes an analysis payload field by field.
//
// Only a malformed document or a non-object top level is an error. Missing
// or mistyped fields default to their zero value: a non-array "issues"
// means no issues, and array elements that are not objects are skipped.
// Severity is kept exactly as sent.
func DecodeResult(data []byte) (*model.AnalysisResult, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode analysis result: %w", err)
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("decode analysis result: expected JSON object, got %s", jsonKind(raw))
	}

	result := &model.AnalysisResult{
		Severity:          model.Severity(stringField(obj, "severity")),
		OverallAssessment: stringField(obj, "overallAssessment"),
	}

	items, ok := obj["issues"].([]any)
	if !ok {
		return result, nil
	}
	for _, item := range items {
		fields, ok := item.(map[string]any)
		if !ok {
			continue
		}
		result.Issues = append(result.Issues, model.Issue{
			Sentence: stringField(fields, "sentence"),
			Bias:     stringField(fields, "bias"),
			Issue:    stringField(fields, "issue"),
			Solution: stringField(fields, "solution"),
		})
	}

	return result, nil
}

// DecodeErrorMessage extracts the "error" string of a rejection body.
// It returns "" when the body is absent, unparseable or carries no string.
func DecodeErrorMessage(data []byte) string {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return ""
	}
	return stringField(raw, "error")
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}
