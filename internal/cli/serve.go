package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ppiankov/biaslens/internal/llm"
	"github.com/ppiankov/biaslens/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	serveHost     string
	servePort     string
	llmProvider   string
	llmModel      string
	serveNoCache  bool
	maxTextLength int
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the text analysis service",
	Long: `Serve hosts the analysis service the other commands talk to:
  POST /api/analyze-text   {"text": "..."} → analysis result
  GET  /api/health

Each text is reviewed by a language model. Identical texts are answered
from a short-lived in-memory cache, and each client address is rate limited.

Example:
  export OPENAI_API_KEY=sk-...
  biaslens serve
  biaslens serve --port 9000 --llm-provider anthropic
  biaslens serve --llm-provider ollama --llm-model llama3.1`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveHost, "host", "", "listen host (default: server.host)")
	serveCmd.Flags().StringVar(&servePort, "port", "", "listen port (default: server.port)")
	serveCmd.Flags().IntVar(&maxTextLength, "max-text-length", 0, "maximum text length in characters (default: server.max_text_length)")
	serveCmd.Flags().BoolVar(&serveNoCache, "no-cache", false, "disable the response cache")

	// LLM flags
	serveCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider (openai, anthropic, ollama)")
	serveCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name (default: provider's default)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Server.Host = serveHost
	}
	if flags.Changed("port") {
		cfg.Server.Port = servePort
	}
	if flags.Changed("max-text-length") {
		cfg.Server.MaxTextLength = maxTextLength
	}
	if serveNoCache {
		cfg.Cache.Enabled = false
	}
	if flags.Changed("llm-provider") {
		cfg.LLM.Provider = llmProvider
	}
	if flags.Changed("llm-model") {
		cfg.LLM.Model = llmModel
	}

	if err := resolveLLMCredentials(&cfg.LLM); err != nil {
		return err
	}

	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return fmt.Errorf("create LLM provider: %w", err)
	}

	logger := newLogger(cfg)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.ErrOrStderr(), "✓ Serving on http://%s:%s (%s/%s)\n", cfg.Server.Host, cfg.Server.Port, provider.Name(), provider.Model())

	srv := server.New(cfg, provider, logger.With(zap.String("component", "server")))
	return srv.Run(ctx)
}
