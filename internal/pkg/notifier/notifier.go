package notifier

import (
	"context"
	"log/slog"
)

// Event is a state-transition notification. Delivery is fire-and-forget; the
// payroll core never blocks or fails on it.
type Event struct {
	Kind    string
	RunID   string
	Actor   string
	Message string
}

type Sender interface {
	Notify(ctx context.Context, event Event)
}

// LogSender writes notifications to the structured log. The real mail/push
// delivery is owned by the surrounding system.
type LogSender struct{}

func NewLogSender() *LogSender {
	return &LogSender{}
}

func (s *LogSender) Notify(_ context.Context, event Event) {
	slog.Info("notification",
		"kind", event.Kind,
		"run_id", event.RunID,
		"actor", event.Actor,
		"message", event.Message,
	)
}
