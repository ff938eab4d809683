// Package notify delivers the user-facing side effects of API failures: transient
// notifications and the demand to log in again.
package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Level is the severity of a notification.
type Level string

const (
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is a transient message for the user.
type Notification struct {
	Level   Level
	Message string
	// Status is the HTTP status that caused the notification, if any.
	Status int
}

// Notifier receives side effects raised by the API client.
type Notifier interface {
	// Notify surfaces a transient notification.
	Notify(ctx context.Context, n Notification)

	// LoginRequired signals that credentials were cleared and the user must log in again.
	LoginRequired(ctx context.Context, reason string)
}

// Discard ignores every side effect.
var Discard Notifier = discard{}

type discard struct{}

func (discard) Notify(context.Context, Notification)  {}
func (discard) LoginRequired(context.Context, string) {}

// LogNotifier logs side effects and prints them for the user.
type LogNotifier struct {
	mu  sync.Mutex
	out io.Writer
}

// Compile-time check to ensure LogNotifier implements Notifier
var _ Notifier = (*LogNotifier)(nil)

// NewLogNotifier creates a LogNotifier writing user messages to out.
func NewLogNotifier(out io.Writer) *LogNotifier {
	return &LogNotifier{out: out}
}

func (l *LogNotifier) Notify(ctx context.Context, n Notification) {
	slog.WarnContext(ctx, "api notification", "level", string(n.Level), "status", n.Status, "message", n.Message)

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = fmt.Fprintf(l.out, "%s: %s\n", n.Level, n.Message)
}

func (l *LogNotifier) LoginRequired(ctx context.Context, reason string) {
	slog.WarnContext(ctx, "login required", "reason", reason)

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = fmt.Fprintf(l.out, "session ended (%s), run `ams login` to sign in again\n", reason)
}

// Recorder keeps every side effect in memory.
type Recorder struct {
	mu            sync.Mutex
	notifications []Notification
	logins        []string
}

// Compile-time check to ensure Recorder implements Notifier
var _ Notifier = (*Recorder)(nil)

func (r *Recorder) Notify(_ context.Context, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, n)
}

func (r *Recorder) LoginRequired(_ context.Context, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logins = append(r.logins, reason)
}

// Notifications returns a copy of the recorded notifications.
func (r *Recorder) Notifications() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.notifications...)
}

// LoginRequests returns the reasons of every LoginRequired call.
func (r *Recorder) LoginRequests() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.logins...)
}
