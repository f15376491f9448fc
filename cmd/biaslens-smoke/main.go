// Smoke program that runs known biased and neutral sentences through a live
// analysis service and prints how each one was judged
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/biaslens/internal/analysis"
	"github.com/ppiankov/biaslens/internal/model"
	"github.com/ppiankov/biaslens/internal/notify"
	"github.com/ppiankov/biaslens/internal/present"
	"github.com/ppiankov/biaslens/internal/remote"
	"github.com/ppiankov/biaslens/internal/util"
)

// sample pairs a text with the severity a reasonable reviewer would expect
type sample struct {
	text     string
	expected model.Severity
}

func main() {
	cfg := model.DefaultConfig().Remote
	cfg.BaseURL = util.EnvOr("BIASLENS_REMOTE_BASE_URL", cfg.BaseURL)
	cfg.Timeout = 2 * time.Minute

	fmt.Printf("=== Bias Analysis Smoke Test ===\n\n")
	fmt.Printf("Service: %s\n\n", cfg.BaseURL)

	samples := []sample{
		{"The chairman will decide on the new budget.", model.SeverityMedium},
		{"Every engineer should ask his manager before deploying.", model.SeverityMedium},
		{"Older employees struggle with new technology, so pair them with digital natives.", model.SeverityHigh},
		{"The committee will meet on Tuesday to review the proposal.", model.SeverityLow},
	}

	client := remote.NewClient(cfg, nil)
	mismatches := 0

	for _, s := range samples {
		fmt.Printf("Testing: %s\n", s.text)
		fmt.Println(strings.Repeat("-", 60))

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		controller := analysis.NewController(client, notify.NewConsole(os.Stdout), nil)
		if err := controller.Submit(ctx, s.text); err != nil {
			fmt.Printf("  Submit error: %v\n\n", err)
			cancel()
			continue
		}
		cancel()

		view := present.PresentState(controller.State())
		if view == nil {
			fmt.Println()
			continue
		}

		marker := "✓"
		if model.Severity(view.Severity) != s.expected {
			marker = "⚠️ "
			mismatches++
		}
		fmt.Printf("  %s %s (expected %s)\n", marker, view.Label, present.SeverityLabel(s.expected))
		for _, issue := range view.Issues {
			fmt.Printf("     - %s [%s]: %s\n", issue.Heading, issue.Bias, issue.Issue)
			fmt.Printf("       Suggestion: %s\n", issue.Solution)
		}
		fmt.Println()
	}

	fmt.Println("=== Test Complete ===")
	fmt.Printf("\nSeverity mismatches: %d of %d\n", mismatches, len(samples))
	fmt.Println("Model judgements vary; a mismatch is a prompt to read the assessment, not a failure.")
}
