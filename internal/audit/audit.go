package audit

import (
	"context"
	"log/slog"
)

// Event represents an audit entry for one action request.
type Event struct {
	// Type describes the event kind.
	Type string
	// Command is the action system name.
	Command string
	// Configuration is the configuration scope name.
	Configuration string
	// EntityType is the selected entity type.
	EntityType string
	// ProjectID is the owning project.
	ProjectID int
	// Reason provides additional context.
	Reason string
}

// Event types recorded by the bridge.
const (
	TypeRequest      = "request"
	TypeResolved     = "resolved"
	TypeExecuteOK    = "execute_ok"
	TypeExecuteError = "execute_error"
)

// Recorder records audit events.
type Recorder interface {
	// Record stores an audit event.
	Record(ctx context.Context, event Event)
}

// StdRecorder writes audit events to slog.
type StdRecorder struct {
	logger *slog.Logger
}

// New returns a StdRecorder.
func New(logger *slog.Logger) *StdRecorder {
	return &StdRecorder{logger: logger}
}

// Record logs an audit event.
func (r *StdRecorder) Record(_ context.Context, event Event) {
	if r == nil || r.logger == nil {
		return
	}
	r.logger.Info("audit",
		"type", event.Type,
		"command", event.Command,
		"configuration", event.Configuration,
		"entity_type", event.EntityType,
		"project_id", event.ProjectID,
		"reason", event.Reason,
	)
}
