package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/trackdesk/desktop-bridge/internal/audit"
	"github.com/trackdesk/desktop-bridge/internal/protocol"
)

// Older tk-shotgun engines (v0.7.0 and earlier) fail Qt-based apps with a
// generic PySide-not-found message. Replies carrying that signature get a
// fixed message telling the operator to upgrade the engine instead.
const (
	qtLegacySignature   = "Looks like you are trying to run a Sgtk App that uses a QT based UI"
	qtLegacyReplacement = "The version of the Toolkit Shotgun Engine (tk-shotgun) you " +
		"are running does not support PySide2. Please upgrade your " +
		"configuration to use version v0.8.0 or above of the engine."
)

// ReplyFunc delivers the status reply for one request. The executor calls
// it exactly once, after the request's own execution completes.
type ReplyFunc func(protocol.Reply)

// Executor runs resolved commands on detached goroutines.
type Executor struct {
	// Logger receives execution diagnostics.
	Logger *slog.Logger
	// Audit records execution outcomes.
	Audit audit.Recorder
}

// ExecuteAsync schedules execution of the request's resolved command and
// returns immediately. The spawned goroutine is never joined; if the
// process exits mid-execution the task is abandoned and the reply dropped.
//
// The request must have been resolved first; calling ExecuteAsync on an
// unresolved request is a programming error.
func (e *Executor) ExecuteAsync(req *Request, reply ReplyFunc) {
	if req.resolved == nil {
		panic("bridge: ExecuteAsync called before Resolve")
	}
	go e.run(req, reply)
}

func (e *Executor) run(req *Request, reply ReplyFunc) {
	defer func() {
		if rec := recover(); rec != nil {
			e.fail(req, reply, fmt.Errorf("command panic: %v", rec))
		}
	}()

	ctx := context.Background()
	var output any
	var err error
	if req.resolved.SupportsMultiSelection() {
		output, err = req.resolved.ExecuteOnSelection(ctx, req.EntityIDs, true)
	} else {
		// Multi-entity selections silently collapse to the primary
		// entity for commands that only handle one.
		output, err = req.resolved.Execute(ctx, true)
	}
	if err != nil {
		e.fail(req, reply, err)
		return
	}

	if e.Audit != nil {
		e.Audit.Record(ctx, audit.Event{
			Type:          audit.TypeExecuteOK,
			Command:       req.CommandName,
			Configuration: req.ConfigurationName,
			EntityType:    req.EntityType,
			ProjectID:     req.ProjectID,
		})
	}
	reply(protocol.Reply{Status: protocol.StatusOK, Output: output})
}

func (e *Executor) fail(req *Request, reply ReplyFunc, err error) {
	if e.Logger != nil {
		e.Logger.Debug("could not execute action",
			"command", req.CommandName,
			"configuration", req.ConfigurationName,
			"error", err,
		)
	}
	if e.Audit != nil {
		e.Audit.Record(context.Background(), audit.Event{
			Type:          audit.TypeExecuteError,
			Command:       req.CommandName,
			Configuration: req.ConfigurationName,
			EntityType:    req.EntityType,
			ProjectID:     req.ProjectID,
			Reason:        err.Error(),
		})
	}
	reply(TranslateError(err))
}

// TranslateError maps an execution failure onto a status reply. Failures
// carrying the legacy Qt signature are rewritten; everything else passes
// through verbatim.
func TranslateError(err error) protocol.Reply {
	message := err.Error()
	if strings.Contains(message, qtLegacySignature) {
		message = qtLegacyReplacement
	}
	return protocol.Reply{Status: protocol.StatusError, Error: message}
}
