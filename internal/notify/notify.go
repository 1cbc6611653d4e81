// Package notify reports the outcome of every mutation to the operator.
package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Kind is the outcome of a mutation.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Mutation actions.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Notification is one user-visible outcome message.
type Notification struct {
	Kind    Kind      `json:"kind"`
	Entity  string    `json:"entity"`
	Action  string    `json:"action"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// Notifier delivers notifications. Implementations must not block for long;
// delivery failures are their own concern and never reach the caller.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

var pastTense = map[string]string{
	ActionCreate: "added",
	ActionUpdate: "updated",
	ActionDelete: "deleted",
}

var verb = map[string]string{
	ActionCreate: "add",
	ActionUpdate: "update",
	ActionDelete: "delete",
}

// Success builds the success notification for an action on entity.
func Success(entity, action string) Notification {
	return Notification{
		Kind:    KindSuccess,
		Entity:  entity,
		Action:  action,
		Message: fmt.Sprintf("%s %s successfully", capitalize(entity), pastTense[action]),
		Time:    time.Now(),
	}
}

// Failure builds the error notification for an action on entity.
func Failure(entity, action string, err error) Notification {
	return Notification{
		Kind:    KindError,
		Entity:  entity,
		Action:  action,
		Message: fmt.Sprintf("Failed to %s %s: %v", verb[action], entity, err),
		Time:    time.Now(),
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Writer prints notifications as single lines, e.g. for a terminal.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter returns a Notifier writing to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (n *Writer) Notify(_ context.Context, note Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	prefix := "✓"
	if note.Kind == KindError {
		prefix = "✗"
	}
	fmt.Fprintf(n.w, "%s %s\n", prefix, note.Message)
}

// Logger records notifications on a structured logger.
type Logger struct {
	logger *slog.Logger
}

// NewLogger returns a Notifier logging to l.
func NewLogger(l *slog.Logger) *Logger {
	return &Logger{logger: l}
}

func (n *Logger) Notify(ctx context.Context, note Notification) {
	level := slog.LevelInfo
	if note.Kind == KindError {
		level = slog.LevelWarn
	}
	n.logger.Log(ctx, level, note.Message,
		"entity", note.Entity,
		"action", note.Action,
		"kind", string(note.Kind),
	)
}

// Multi fans a notification out to several notifiers.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, note Notification) {
	for _, n := range m {
		if n != nil {
			n.Notify(ctx, note)
		}
	}
}

// Discard drops every notification.
type Discard struct{}

func (Discard) Notify(context.Context, Notification) {}

// Recorder keeps notifications in memory.
type Recorder struct {
	mu    sync.Mutex
	notes []Notification
}

func (r *Recorder) Notify(_ context.Context, note Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, note)
}

// All returns a copy of the recorded notifications.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.notes...)
}

// Last returns the most recent notification.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notes) == 0 {
		return Notification{}, false
	}
	return r.notes[len(r.notes)-1], true
}

// Reset clears the recorder.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = nil
}
