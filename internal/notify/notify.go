package notify

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/ppiankov/biaslens/internal/model"
	"go.uber.org/zap"
)

// Notifier receives user-facing events. Notify must not block the caller
// for long and has no way to report failure.
type Notifier interface {
	Notify(event model.Event)
}

// Func adapts a plain function to Notifier
type Func func(event model.Event)

// Notify calls f(event)
func (f Func) Notify(event model.Event) {
	f(event)
}

// Nop discards every event
var Nop Notifier = Func(func(model.Event) {})

// NewEvent builds an event with a fresh ID and timestamp
func NewEvent(category model.EventCategory, title, description string, variant model.EventVariant) model.Event {
	return model.Event{
		ID:          uuid.NewString(),
		Category:    category,
		Title:       title,
		Description: description,
		Variant:     variant,
		At:          time.Now().UTC(),
	}
}

// Console prints events as one-line toasts
type Console struct {
	out io.Writer
	mu  sync.Mutex
}

// NewConsole creates a console notifier writing to out
func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

// Notify prints the event
func (c *Console) Notify(event model.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if event.IsDestructive() {
		red := color.New(color.FgRed, color.Bold)
		_, _ = red.Fprintf(c.out, "✗ %s: ", event.Title)
	} else {
		green := color.New(color.FgGreen, color.Bold)
		_, _ = green.Fprintf(c.out, "✓ %s: ", event.Title)
	}
	_, _ = fmt.Fprintln(c.out, event.Description)
}

// Logger writes events to a zap logger
type Logger struct {
	logger *zap.Logger
}

// NewLogger creates a notifier that logs every event
func NewLogger(logger *zap.Logger) *Logger {
	return &Logger{logger: logger}
}

// Notify logs the event; destructive events are logged as warnings
func (l *Logger) Notify(event model.Event) {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("category", string(event.Category)),
		zap.String("description", event.Description),
	}
	if event.IsDestructive() {
		l.logger.Warn(event.Title, fields...)
		return
	}
	l.logger.Info(event.Title, fields...)
}

// Recorder keeps every event in memory
type Recorder struct {
	mu     sync.Mutex
	events []model.Event
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Notify records the event
func (r *Recorder) Notify(event model.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of the recorded events in arrival order
func (r *Recorder) Events() []model.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Last returns the most recent event
func (r *Recorder) Last() (model.Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return model.Event{}, false
	}
	return r.events[len(r.events)-1], true
}

// Multi fans an event out to several notifiers in order
type Multi []Notifier

// Notify forwards the event to every non-nil notifier
func (m Multi) Notify(event model.Event) {
	for _, n := range m {
		if n != nil {
			n.Notify(event)
		}
	}
}
