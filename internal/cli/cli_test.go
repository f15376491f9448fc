package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/biaslens/internal/analysis"
	"github.com/ppiankov/biaslens/internal/model"
	"github.com/ppiankov/biaslens/internal/present"
	"github.com/ppiankov/biaslens/internal/remote"
	"github.com/ppiankov/biaslens/internal/worker"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func TestReadInput(t *testing.T) {
	text, err := readInput([]string{"The", "chairman", "will", "decide."}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "The chairman will decide.", text)

	text, err = readInput(nil, "", strings.NewReader("  from stdin\n"))
	require.NoError(t, err)
	assert.Equal(t, "  from stdin\n", text)

	text, err = readInput(nil, "-", strings.NewReader("dash"))
	require.NoError(t, err)
	assert.Equal(t, "dash", text)

	path := filepath.Join(t.TempDir(), "draft.txt")
	require.NoError(t, os.WriteFile(path, []byte("from file"), 0o644))
	text, err = readInput(nil, path, nil)
	require.NoError(t, err)
	assert.Equal(t, "from file", text)

	_, err = readInput([]string{"x"}, path, nil)
	assert.Error(t, err)

	_, err = readInput(nil, filepath.Join(t.TempDir(), "missing.txt"), nil)
	assert.Error(t, err)
}

func TestReportFilename(t *testing.T) {
	job := worker.TextJob{Index: 2, Name: "/tmp/drafts/in put.txt:12"}
	assert.Equal(t, "003-in-put.txt-12.md", reportFilename(job, present.FormatMarkdown))
	assert.Equal(t, "003-in-put.txt-12.json", reportFilename(job, present.FormatJSON))

	long := worker.TextJob{Index: 0, Name: strings.Repeat("a", 300)}
	assert.LessOrEqual(t, len(reportFilename(long, present.FormatYAML)), 100+len("001-.yaml"))
}

func TestSetDefaultsAndEnv(t *testing.T) {
	v := viper.New()
	require.NoError(t, setDefaults(v, model.DefaultConfig()))

	t.Setenv("BIASLENS_REMOTE_BASE_URL", "http://analysis.internal:9000")
	t.Setenv("BIASLENS_RATE_LIMITING_BURST_SIZE", "9")
	v.SetEnvPrefix("BIASLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg model.Config
	require.NoError(t, v.Unmarshal(&cfg))

	assert.Equal(t, "http://analysis.internal:9000", cfg.Remote.BaseURL)
	assert.Equal(t, 9, cfg.RateLimiting.BurstSize)
	assert.Equal(t, model.DefaultConfig().Server.ReadTimeout, cfg.Server.ReadTimeout)
	assert.Equal(t, model.DefaultConfig().Remote.Endpoint, cfg.Remote.Endpoint)
	assert.Equal(t, 2.0, cfg.RateLimiting.RequestsPerSecond)
}

func TestResolveLLMCredentials(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OLLAMA_BASE_URL", "http://gpu-box:11434/v1")

	cfg := model.LLMConfig{Provider: "openai"}
	require.NoError(t, resolveLLMCredentials(&cfg))
	assert.Equal(t, "sk-env", cfg.APIKey)

	cfg = model.LLMConfig{Provider: "openai", APIKey: "sk-config"}
	require.NoError(t, resolveLLMCredentials(&cfg))
	assert.Equal(t, "sk-config", cfg.APIKey)

	cfg = model.LLMConfig{Provider: "anthropic"}
	assert.Error(t, resolveLLMCredentials(&cfg))

	cfg = model.LLMConfig{Provider: "ollama"}
	require.NoError(t, resolveLLMCredentials(&cfg))
	assert.Equal(t, "http://gpu-box:11434/v1", cfg.BaseURL)
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".biaslens", "config.yaml")
	require.NoError(t, writeDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# Biaslens Configuration File"))

	var cfg model.Config
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, model.DefaultConfig().Remote.BaseURL, cfg.Remote.BaseURL)
	assert.Equal(t, model.DefaultConfig().Server.WriteTimeout, cfg.Server.WriteTimeout)

	assert.Error(t, writeDefaultConfig(path), "must not overwrite")
}

func newAnalyzeController(t *testing.T, handler http.HandlerFunc) *analysis.Controller {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := model.DefaultConfig().Remote
	cfg.BaseURL = server.URL
	cfg.Timeout = 5 * time.Second
	return analysis.NewController(remote.NewClient(cfg, nil), nil, nil)
}

func TestAnalyzeOnce(t *testing.T) {
	controller := newAnalyzeController(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{"severity":"high","overallAssessment":"Loaded language.","issues":[]}`)
	})
	renderer, err := present.NewRenderer(present.FormatMarkdown)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, analyzeOnce(context.Background(), controller, renderer, "Some text.", &out, zap.NewNop()))
	assert.Contains(t, out.String(), "# Analysis Results: High Risk")
	assert.Contains(t, out.String(), present.NoIssuesMessage)
}

func TestAnalyzeOnce_Failure(t *testing.T) {
	controller := newAnalyzeController(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = fmt.Fprint(w, `{"error":"text too long"}`)
	})
	renderer, err := present.NewRenderer(present.FormatMarkdown)
	require.NoError(t, err)

	var out bytes.Buffer
	err = analyzeOnce(context.Background(), controller, renderer, "Some text.", &out, zap.NewNop())
	assert.True(t, errors.Is(err, errAnalysisFailed))
	assert.Equal(t, "# Analysis Failed\n\ntext too long\n", out.String())
}

func TestAnalyzeOnce_Empty(t *testing.T) {
	controller := newAnalyzeController(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for empty text")
	})
	renderer, err := present.NewRenderer(present.FormatJSON)
	require.NoError(t, err)

	var out bytes.Buffer
	err = analyzeOnce(context.Background(), controller, renderer, " \n", &out, zap.NewNop())
	assert.ErrorIs(t, err, analysis.ErrEmptyText)
	assert.Empty(t, out.String())
}
