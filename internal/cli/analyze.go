package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/ppiankov/biaslens/internal/analysis"
	"github.com/ppiankov/biaslens/internal/extract"
	"github.com/ppiankov/biaslens/internal/model"
	"github.com/ppiankov/biaslens/internal/notify"
	"github.com/ppiankov/biaslens/internal/present"
	"github.com/ppiankov/biaslens/internal/remote"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// errAnalysisFailed marks a run whose analysis ended in the failure phase.
// The failure itself was already reported.
var errAnalysisFailed = errors.New("analysis failed")

var (
	inputFile     string
	outputFormat  string
	remoteURL     string
	remoteTimeout time.Duration
	noSpinner     bool
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [text...]",
	Short: "Analyze a text for biased language",
	Long: `Analyze sends one text to the analysis service and prints the result:
- Overall severity (low, medium, high)
- An overall assessment
- One record per problematic sentence with bias type, issue and a proposed rewording

Text is taken from the arguments, from --file, or from stdin. HTML input
is reduced to its visible text first.

Example:
  biaslens analyze "The chairman will decide."
  biaslens analyze --file draft.txt -o markdown > review.md
  cat draft.txt | biaslens analyze -o json`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&inputFile, "file", "f", "", "read the text from a file ('-' for stdin)")
	analyzeCmd.Flags().StringVarP(&outputFormat, "output", "o", "", "output format: "+strings.Join(present.Formats, ", "))
	analyzeCmd.Flags().StringVar(&remoteURL, "url", "", "analysis service base URL (overrides remote.base_url)")
	analyzeCmd.Flags().DurationVar(&remoteTimeout, "timeout", 0, "request timeout (0 waits indefinitely)")
	analyzeCmd.Flags().BoolVar(&noSpinner, "no-spinner", false, "disable the progress spinner")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyRemoteFlags(cmd, &cfg)

	format := cfg.Output.Format
	if cmd.Flags().Changed("output") {
		format = outputFormat
	}
	renderer, err := present.NewRenderer(format)
	if err != nil {
		return err
	}

	text, err := readInput(args, inputFile, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if len(args) == 0 {
		if text, err = plainText(inputFile, text); err != nil {
			return err
		}
	}

	logger := newLogger(cfg)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	controller := analysis.NewController(
		remote.NewClient(cfg.Remote, logger),
		notify.Multi{notify.NewConsole(cmd.ErrOrStderr()), notify.NewLogger(logger)},
		logger,
	)

	if !noSpinner && renderer.Format() == present.FormatHuman {
		attachSpinner(controller, cmd.ErrOrStderr())
	}

	return analyzeOnce(ctx, controller, renderer, text, cmd.OutOrStdout(), logger)
}

// analyzeOnce submits text and renders the terminal state to out
func analyzeOnce(ctx context.Context, controller *analysis.Controller, renderer *present.Renderer, text string, out io.Writer, logger *zap.Logger) error {
	if err := controller.Submit(ctx, text); err != nil {
		// The validation event was already shown
		return err
	}

	state := controller.State()
	if err := renderer.Render(out, state); err != nil {
		return fmt.Errorf("render result: %w", err)
	}

	if state.Phase == model.PhaseFailure {
		logger.Debug("analysis ended in failure", zap.String("message", state.Message))
		return errAnalysisFailed
	}
	return nil
}

// attachSpinner shows a spinner on w while the controller is analyzing
func attachSpinner(controller *analysis.Controller, w io.Writer) {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " Analyzing text for bias..."

	controller.OnStateChange(func(state model.InteractionState) {
		if state.Phase == model.PhaseAnalyzing {
			s.Start()
			return
		}
		s.Stop()
	})
}

// applyRemoteFlags overrides the remote configuration with explicitly set flags
func applyRemoteFlags(cmd *cobra.Command, cfg *model.Config) {
	if cmd.Flags().Changed("url") {
		cfg.Remote.BaseURL = remoteURL
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Remote.Timeout = remoteTimeout
	}
}

// plainText returns the visible text of HTML input and other input unchanged
func plainText(path, data string) (string, error) {
	if !extract.IsHTML(path, []byte(data)) {
		return data, nil
	}
	text, err := extract.VisibleText(data)
	if err != nil {
		return "", fmt.Errorf("parse HTML: %w", err)
	}
	return text, nil
}

// readInput returns the text to analyze. Arguments are joined with spaces;
// otherwise the text comes from file, or from stdin when file is empty or "-".
func readInput(args []string, file string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		if file != "" {
			return "", errors.New("pass the text as arguments or with --file, not both")
		}
		return strings.Join(args, " "), nil
	}

	if file != "" && file != "-" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		return string(data), nil
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}
