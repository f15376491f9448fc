package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/ppiankov/biaslens/internal/analysis"
	"github.com/ppiankov/biaslens/internal/model"
	"github.com/ppiankov/biaslens/internal/notify"
	"github.com/ppiankov/biaslens/internal/present"
	"github.com/ppiankov/biaslens/internal/remote"
	"github.com/ppiankov/biaslens/internal/worker"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	paragraphs   bool
	batchFormat  string
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Analyze many texts from a file in parallel",
	Long: `Batch analyzes many texts concurrently:
- Read texts from the input file (one per line, or one per paragraph with --paragraphs)
- Analyze them in parallel with a configurable worker count
- Pace requests to the analysis service (rate_limiting in the config)
- Write one report per text and print a summary

Lines starting with '#' are ignored. Use '-' to read from stdin. HTML
input is reduced to its visible text, one paragraph per block element.

Example:
  biaslens batch sentences.txt
  biaslens batch essay.txt --paragraphs --output-dir ./reviews
  biaslens batch sentences.txt --concurrency 8 -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default: concurrency.workers)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./biaslens-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "batch-timeout", 30*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().BoolVar(&paragraphs, "paragraphs", false, "treat blank-line separated paragraphs as texts")
	batchCmd.Flags().StringVarP(&batchFormat, "output", "o", present.FormatMarkdown, "report format: "+strings.Join(present.Formats[1:], ", "))

	batchCmd.Flags().StringVar(&remoteURL, "url", "", "analysis service base URL (overrides remote.base_url)")
	batchCmd.Flags().DurationVar(&remoteTimeout, "timeout", 0, "timeout for individual requests (default: remote.timeout)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyRemoteFlags(cmd, &cfg)
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency.Workers = concurrency
	}

	renderer, err := present.NewRenderer(batchFormat)
	if err != nil {
		return err
	}
	if renderer.Format() == present.FormatHuman {
		return fmt.Errorf("batch reports are files; choose one of %s", strings.Join(present.Formats[1:], ", "))
	}

	logger := newLogger(cfg)
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	stderr := cmd.ErrOrStderr()

	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(stderr, "  Biaslens Batch Analysis\n")
	fmt.Fprintf(stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(stderr, "  Service:      %s\n", cfg.Remote.BaseURL)
	fmt.Fprintf(stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(stderr, "  Rate limit:   %.2f req/s (burst %d)\n", cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)
	fmt.Fprintf(stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(stderr, "\n")

	jobs, err := readBatchTexts(cmd, file)
	if err != nil {
		return fmt.Errorf("read texts: %w", err)
	}
	fmt.Fprintf(stderr, "✓ Loaded %d texts\n\n", len(jobs))

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	client := remote.NewClient(cfg.Remote, logger)
	limitKey, err := worker.HostKey(client.URL())
	if err != nil {
		return fmt.Errorf("parse service URL: %w", err)
	}

	// Batch entries report through the summary; events only go to the log
	notifier := notify.NewLogger(logger)
	processor := worker.NewBatchProcessor(func() worker.Session {
		return analysis.NewController(client, notifier, logger)
	}, cfg.Concurrency.Workers, cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize).
		WithLimitKey(limitKey).
		WithLogger(logger)

	results := processor.ProcessTexts(ctx, jobs)

	successCount := 0
	failureCount := 0
	bySeverity := make(map[model.Severity]int)

	for _, result := range results {
		if !result.Succeeded() {
			failureCount++
			fmt.Fprintf(stderr, "✗ %s: %v\n", result.Job.Name, result.GetError())
			continue
		}

		path := filepath.Join(outputDir, reportFilename(result.Job, renderer.Format()))
		if err := writeReport(renderer, result.State, path); err != nil {
			failureCount++
			fmt.Fprintf(stderr, "✗ %s: failed to write report: %v\n", result.Job.Name, err)
			logger.Warn("report write failed", zap.String("path", path), zap.Error(err))
			continue
		}

		successCount++
		bySeverity[result.State.Result.Severity]++
		fmt.Fprintf(stderr, "✓ %s (%s, %d issues)\n",
			result.Job.Name,
			present.SeverityLabel(result.State.Result.Severity),
			len(result.State.Result.Issues))
	}

	// Summary
	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(stderr, "  Batch Complete\n")
	fmt.Fprintf(stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "  Total:     %d texts\n", len(results))
	fmt.Fprintf(stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(stderr, "  Failures:  %d\n", failureCount)
	for _, sev := range []model.Severity{model.SeverityHigh, model.SeverityMedium, model.SeverityLow} {
		if n := bySeverity[sev]; n > 0 {
			fmt.Fprintf(stderr, "  %-10s %d\n", present.SeverityLabel(sev)+":", n)
		}
	}
	fmt.Fprintf(stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(stderr, "\n")

	if failureCount > 0 {
		return fmt.Errorf("%d of %d texts failed", failureCount, len(results))
	}
	return nil
}

// readBatchTexts loads the batch entries of file, or of stdin for "-"
func readBatchTexts(cmd *cobra.Command, file string) ([]worker.TextJob, error) {
	source := file
	if file == "-" {
		source = "stdin"
	}

	var data []byte
	var err error
	if file == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return nil, err
	}

	text, err := plainText(file, string(data))
	if err != nil {
		return nil, err
	}

	return worker.ReadTexts(strings.NewReader(text), source, paragraphs)
}

func writeReport(renderer *present.Renderer, state model.InteractionState, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return renderer.Render(f, state)
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// reportFilename names the report of job, e.g. "003-input.txt-12.md"
func reportFilename(job worker.TextJob, format string) string {
	name := unsafeFilenameChars.ReplaceAllString(filepath.Base(job.Name), "-")
	name = strings.Trim(name, "-.")

	// Limit length
	if len(name) > 100 {
		name = name[:100]
	}

	ext := format
	if format == present.FormatMarkdown {
		ext = "md"
	}
	return fmt.Sprintf("%03d-%s.%s", job.Index+1, name, ext)
}
