package worker

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ppiankov/biaslens/internal/model"
	"go.uber.org/zap"
)

// maxLineBytes bounds one input line; paragraphs may be long
const maxLineBytes = 1 << 20

// Session is one analysis session: a single-flight Submit and its state
type Session interface {
	Submit(ctx context.Context, text string) error
	State() model.InteractionState
}

// SessionFactory creates a fresh session for each job
type SessionFactory func() Session

// TextJob is one text to analyze
type TextJob struct {
	Index int    // position in the input, zero-based
	Name  string // e.g. "input.txt:12"
	Text  string
}

// textTask binds a job to the processor that runs it
type textTask struct {
	job       TextJob
	processor *BatchProcessor
}

// Execute runs the job in its own session
func (t *textTask) Execute(ctx context.Context) Result {
	return t.processor.run(ctx, t.job)
}

// TextResult is the outcome of one job
type TextResult struct {
	Job   TextJob
	State model.InteractionState
	Error error // submission error: validation, cancellation
}

// GetError returns the submission error, or the failure message when the
// analysis itself failed
func (r *TextResult) GetError() error {
	if r.Error != nil {
		return r.Error
	}
	if r.State.Phase == model.PhaseFailure {
		return errors.New(r.State.Message)
	}
	return nil
}

// Succeeded reports whether the job ended in the success phase
func (r *TextResult) Succeeded() bool {
	return r.Error == nil && r.State.Phase == model.PhaseSuccess
}

// BatchProcessor analyzes many texts concurrently, one session per text
type BatchProcessor struct {
	newSession  SessionFactory
	concurrency int
	limiter     *Limiter
	limitKey    string
	logger      *zap.Logger
}

// NewBatchProcessor creates a new batch processor. Requests are paced at
// requestsPerSecond per limit key; zero disables pacing.
func NewBatchProcessor(newSession SessionFactory, concurrency int, requestsPerSecond float64, burst int) *BatchProcessor {
	return &BatchProcessor{
		newSession:  newSession,
		concurrency: concurrency,
		limiter:     NewLimiter(requestsPerSecond, burst),
		logger:      zap.NewNop(),
	}
}

// WithLimitKey sets the key requests are paced under, usually the
// analysis service host
func (b *BatchProcessor) WithLimitKey(key string) *BatchProcessor {
	b.limitKey = key
	return b
}

// WithLogger sets the logger
func (b *BatchProcessor) WithLogger(logger *zap.Logger) *BatchProcessor {
	if logger != nil {
		b.logger = logger
	}
	return b
}

// ProcessTexts analyzes jobs concurrently. Results are returned in input order.
func (b *BatchProcessor) ProcessTexts(ctx context.Context, jobs []TextJob) []*TextResult {
	if len(jobs) == 0 {
		return []*TextResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	go func() {
		defer pool.Close()
		for _, job := range jobs {
			if !pool.Submit(&textTask{job: job, processor: b}) {
				return
			}
		}
	}()

	byIndex := make(map[int]*TextResult, len(jobs))
	for result := range pool.Results() {
		r := result.(*TextResult)
		byIndex[r.Job.Index] = r
	}

	results := make([]*TextResult, len(jobs))
	for i, job := range jobs {
		if r, ok := byIndex[job.Index]; ok {
			results[i] = r
			continue
		}
		// Never ran: the pool was cancelled first
		err := ctx.Err()
		if err == nil {
			err = context.Canceled
		}
		results[i] = &TextResult{Job: job, State: model.IdleState(), Error: err}
	}

	return results
}

func (b *BatchProcessor) run(ctx context.Context, job TextJob) *TextResult {
	session := b.newSession()

	if err := b.limiter.Wait(ctx, b.limitKey); err != nil {
		return &TextResult{Job: job, State: session.State(), Error: fmt.Errorf("rate limit: %w", err)}
	}

	b.logger.Debug("analyzing batch entry", zap.String("name", job.Name), zap.Int("index", job.Index))

	err := session.Submit(ctx, job.Text)
	state := session.State()

	if err != nil {
		b.logger.Warn("batch entry rejected", zap.String("name", job.Name), zap.Error(err))
	} else if state.Phase == model.PhaseFailure {
		b.logger.Warn("batch entry failed", zap.String("name", job.Name), zap.String("message", state.Message))
	}

	return &TextResult{Job: job, State: state, Error: err}
}

// ReadTexts reads one text per line, or one per blank-line separated
// paragraph when paragraphs is set. Lines starting with '#' are comments.
// Duplicate texts are kept once, at their first position.
func ReadTexts(r io.Reader, source string, paragraphs bool) ([]TextJob, error) {
	var jobs []TextJob
	seen := make(map[string]bool)

	add := func(text string, line int) {
		if text == "" || seen[text] {
			return
		}
		seen[text] = true
		jobs = append(jobs, TextJob{
			Index: len(jobs),
			Name:  fmt.Sprintf("%s:%d", source, line),
			Text:  text,
		})
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var para []string
	paraStart := 0
	lineNo := 0

	flush := func() {
		add(strings.TrimSpace(strings.Join(para, "\n")), paraStart)
		para = para[:0]
	}

	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()
		line := strings.TrimSpace(raw)

		if strings.HasPrefix(line, "#") {
			continue
		}

		if !paragraphs {
			add(line, lineNo)
			continue
		}

		if line == "" {
			flush()
			continue
		}
		if len(para) == 0 {
			paraStart = lineNo
		}
		para = append(para, raw)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan input: %w", err)
	}

	if paragraphs {
		flush()
	}

	return jobs, nil
}
