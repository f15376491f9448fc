package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ppiankov/biaslens/internal/model"
	"github.com/ppiankov/biaslens/internal/remote"
)

// Provider analyzes text for bias with a language model
type Provider interface {
	// Name returns the provider name
	Name() string

	// Model returns the model used when a request does not name one
	Model() string

	// Analyze returns the bias assessment of req.Text
	Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResponse, error)
}

// AnalyzeRequest contains the input for one analysis
type AnalyzeRequest struct {
	// Text is the user's text, sent verbatim
	Text string

	// Model overrides the configured model
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// AnalyzeResponse contains the parsed model output
type AnalyzeResponse struct {
	Result     model.AnalysisResult
	Model      string
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic"
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom or OpenAI-compatible endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "openai",
		Timeout:   60,
		MaxTokens: 2000,
	}
}

// ErrInvalidOutput is wrapped by every error caused by unusable model output
var ErrInvalidOutput = errors.New("invalid model output")

// SystemPrompt instructs the model to answer with the analysis JSON object
const SystemPrompt = `You are an editor who reviews text for bias: gender, racial, age, cultural, ability, socioeconomic, political and similar.

Respond with ONE JSON object and nothing else, using exactly this shape:
{
  "severity": "low" | "medium" | "high",
  "overallAssessment": "<two or three sentences on the overall bias risk>",
  "issues": [
    {
      "sentence": "<the sentence, quoted exactly from the text>",
      "bias": "<bias category>",
      "issue": "<why the sentence is biased>",
      "solution": "<a rewritten, inclusive sentence or concrete fix>"
    }
  ]
}

Rules:
1. "severity" MUST be one of low, medium, high.
2. List issues in the order they appear in the text.
3. If nothing is biased, return severity "low" and an empty "issues" array.
4. Never invent sentences that are not in the text.`

// BuildPrompt constructs the user message for text
func BuildPrompt(text string) string {
	return fmt.Sprintf("Analyze the following text for bias.\n\n<text>\n%s\n</text>", text)
}

// ParseAnalysis extracts the analysis object from raw model output.
// Code fences and prose around the object are tolerated and the severity
// is trimmed and lowercased; a missing object or a severity outside
// low/medium/high is an error.
func ParseAnalysis(content string) (*model.AnalysisResult, error) {
	obj := extractJSONObject(content)
	if obj == "" {
		return nil, fmt.Errorf("%w: no JSON object in response", ErrInvalidOutput)
	}

	result, err := remote.DecodeResult([]byte(obj))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	result.Severity = model.Severity(strings.ToLower(strings.TrimSpace(string(result.Severity))))
	if !result.Severity.Valid() {
		return nil, fmt.Errorf("%w: severity %q", ErrInvalidOutput, result.Severity)
	}
	return result, nil
}

// extractJSONObject returns the outermost {...} span of s
func extractJSONObject(s string) string {
	s = strings.TrimSpace(s)
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}
