// Package analysis owns the interaction state of one bias analysis session.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/ppiankov/biaslens/internal/model"
	"github.com/ppiankov/biaslens/internal/notify"
	"github.com/ppiankov/biaslens/internal/remote"
	"go.uber.org/zap"
)

var (
	// ErrEmptyText is returned when the submitted text is empty after trimming.
	// It classifies as remote.KindValidation.
	ErrEmptyText error = &remote.Error{Kind: remote.KindValidation, Message: "enter some text to analyze"}

	// ErrAnalysisInProgress is returned when Submit is called while a request is in flight
	ErrAnalysisInProgress = errors.New("analysis already in progress")
)

// Analyzer sends one analysis request to the remote service
type Analyzer interface {
	Analyze(ctx context.Context, text string) (*model.AnalysisResult, error)
}

// Controller runs the idle → analyzing → success/failure state machine.
// Construct one per session; it is safe for concurrent use but admits a
// single request in flight at a time.
type Controller struct {
	client   Analyzer
	notifier notify.Notifier
	logger   *zap.Logger

	inFlight atomic.Bool

	mu        sync.RWMutex
	state     model.InteractionState
	observers []func(model.InteractionState)
}

// NewController creates a controller in the idle state
func NewController(client Analyzer, notifier notify.Notifier, logger *zap.Logger) *Controller {
	if notifier == nil {
		notifier = notify.Nop
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		client:   client,
		notifier: notifier,
		logger:   logger,
		state:    model.IdleState(),
	}
}

// State returns a snapshot of the current interaction state
func (c *Controller) State() model.InteractionState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Clone()
}

// Busy reports whether a request is in flight
func (c *Controller) Busy() bool {
	return c.inFlight.Load()
}

// OnStateChange registers fn to be called with every new state.
// Observers run synchronously on the submitting goroutine.
func (c *Controller) OnStateChange(fn func(model.InteractionState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
}

// Submit validates text and, if accepted, runs one analysis to completion.
//
// Empty text returns ErrEmptyText after emitting a validation notice; the
// state is left untouched and no request is made. A call made while
// another submission is in flight returns ErrAnalysisInProgress and does
// nothing else. Otherwise Submit returns nil: failures of the request are
// reported through the failure state and a notification.
func (c *Controller) Submit(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		c.notifier.Notify(notify.NewEvent(
			model.EventValidationError,
			model.TitleValidationError,
			model.MessageEmptyText,
			model.VariantDestructive,
		))
		c.logger.Debug("submission rejected", zap.String("kind", string(remote.KindOf(ErrEmptyText))))
		return ErrEmptyText
	}

	if !c.inFlight.CompareAndSwap(false, true) {
		c.logger.Debug("submission rejected, analysis in progress")
		return ErrAnalysisInProgress
	}
	defer c.inFlight.Store(false)

	c.setState(model.AnalyzingState())
	c.logger.Debug("analysis started", zap.Int("chars", len(text)))

	result, err := c.analyze(ctx, text)
	if err != nil {
		msg := remote.Message(err)
		c.logger.Warn("analysis failed",
			zap.String("kind", string(remote.KindOf(err))),
			zap.String("message", msg),
		)
		c.setState(model.FailureState(msg))
		c.notifier.Notify(notify.NewEvent(
			model.EventAnalysisFailed,
			model.TitleAnalysisFailed,
			failureDescription(msg),
			model.VariantDestructive,
		))
		return nil
	}

	c.logger.Debug("analysis complete",
		zap.String("severity", string(result.Severity)),
		zap.Int("issues", len(result.Issues)),
	)
	c.setState(model.SuccessState(result))
	c.notifier.Notify(notify.NewEvent(
		model.EventAnalysisComplete,
		model.TitleAnalysisComplete,
		model.MessageAnalysisComplete,
		model.VariantInformational,
	))
	return nil
}

// analyze calls the collaborator, converting a panic into an unknown error
func (c *Controller) analyze(ctx context.Context, text string) (result *model.AnalysisResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("analyzer panicked", zap.Any("panic", r))
			result = nil
			err = &remote.Error{
				Kind:    remote.KindUnknown,
				Message: model.MessageUnknownError,
				Err:     fmt.Errorf("panic: %v", r),
			}
		}
	}()

	result, err = c.client.Analyze(ctx, text)
	if err == nil && result == nil {
		err = &remote.Error{Kind: remote.KindUnknown}
	}
	return result, err
}

func (c *Controller) setState(s model.InteractionState) {
	c.mu.Lock()
	c.state = s
	observers := make([]func(model.InteractionState), len(c.observers))
	copy(observers, c.observers)
	c.mu.Unlock()

	for _, fn := range observers {
		fn(s.Clone())
	}
}

func failureDescription(msg string) string {
	if strings.TrimSpace(msg) == "" {
		return model.MessageUnknownError
	}
	return msg
}
