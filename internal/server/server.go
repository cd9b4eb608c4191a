// Package server hosts the browser-facing websocket endpoint and wires
// inbound execute_action frames through the bridge protocol.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"
	"golang.org/x/time/rate"

	"github.com/trackdesk/desktop-bridge/internal/action"
	"github.com/trackdesk/desktop-bridge/internal/audit"
	"github.com/trackdesk/desktop-bridge/internal/bridge"
	"github.com/trackdesk/desktop-bridge/internal/maputil"
	"github.com/trackdesk/desktop-bridge/internal/protocol"
	"github.com/trackdesk/desktop-bridge/internal/security"
)

// Options configures a Server.
type Options struct {
	// Logger receives connection and dispatch diagnostics.
	Logger *slog.Logger
	// Store resolves entities to their owning project.
	Store bridge.EntityStore
	// Catalogs supplies per-request catalog snapshots.
	Catalogs action.SnapshotProvider
	// Audit records request events.
	Audit audit.Recorder
	// FramesPerSecond limits inbound frames per connection; zero
	// disables the limiter.
	FramesPerSecond int
}

// Server dispatches websocket action requests.
type Server struct {
	logger    *slog.Logger
	store     bridge.EntityStore
	catalogs  action.SnapshotProvider
	auditor   audit.Recorder
	executor  *bridge.Executor
	frameRate int

	mu    sync.Mutex
	conns map[string]*websocket.Conn
}

// New returns a Server with the given collaborators.
func New(opts Options) (*Server, error) {
	if opts.Store == nil {
		return nil, errors.New("entity store is nil")
	}
	if opts.Catalogs == nil {
		return nil, errors.New("catalog provider is nil")
	}
	return &Server{
		logger:   opts.Logger,
		store:    opts.Store,
		catalogs: opts.Catalogs,
		auditor:  opts.Audit,
		executor: &bridge.Executor{
			Logger: opts.Logger,
			Audit:  opts.Audit,
		},
		frameRate: opts.FramesPerSecond,
		conns:     make(map[string]*websocket.Conn),
	}, nil
}

// Handler returns the HTTP handler serving the websocket endpoint.
func (s *Server) Handler() http.Handler {
	return websocket.Handler(s.handleConn)
}

// Close tears down all live connections.
func (s *Server) Close() {
	s.mu.Lock()
	conns := s.conns
	s.conns = make(map[string]*websocket.Conn)
	s.mu.Unlock()

	for _, conn := range conns {
		_ = conn.Close()
	}
}

func (s *Server) handleConn(ws *websocket.Conn) {
	connID := uuid.NewString()
	s.mu.Lock()
	s.conns[connID] = ws
	s.mu.Unlock()
	defer func() {
		if conn, ok := maputil.Pop(&s.mu, s.conns, connID); ok {
			_ = conn.Close()
		}
	}()

	if s.logger != nil {
		s.logger.Info("connection opened", "conn_id", connID, "remote", ws.Request().RemoteAddr)
	}

	peer := newPeer(ws)
	var limiter *rate.Limiter
	if s.frameRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(s.frameRate), s.frameRate)
	}

	ctx := ws.Request().Context()
	decoder := json.NewDecoder(ws)
	for {
		var frame protocol.Frame
		if err := decoder.Decode(&frame); err != nil {
			if s.logger != nil && !errors.Is(err, io.EOF) {
				s.logger.Debug("connection read ended", "conn_id", connID, "error", err)
			}
			return
		}
		if limiter != nil && !limiter.Allow() {
			if s.logger != nil {
				s.logger.Warn("frame budget exceeded, closing connection", "conn_id", connID)
			}
			_ = peer.writeError(frame.ID, "too many requests")
			return
		}
		s.dispatch(ctx, connID, frame, peer)
	}
}

// dispatch runs the synchronous half of a request on the connection's
// read goroutine. Validation, lookup and resolution failures abort the
// request before execution starts; they produce a transport error frame
// but never a status reply.
func (s *Server) dispatch(ctx context.Context, connID string, frame protocol.Frame, peer *peer) {
	if frame.Type != protocol.FrameExecuteAction {
		_ = peer.writeError(frame.ID, "unknown request type: "+frame.Type)
		return
	}

	if s.logger != nil {
		s.logger.Info("action request",
			"conn_id", connID,
			"request_id", frame.ID,
			"payload", security.RedactPayload(frame.Data),
		)
	}

	req, err := bridge.ParseRequest(ctx, frame.Data, s.store)
	if err != nil {
		s.rejected(ctx, connID, frame.ID, peer, err)
		return
	}
	if s.auditor != nil {
		s.auditor.Record(ctx, audit.Event{
			Type:          audit.TypeRequest,
			Command:       req.CommandName,
			Configuration: req.ConfigurationName,
			EntityType:    req.EntityType,
			ProjectID:     req.ProjectID,
		})
	}

	snapshot, err := s.catalogs.Snapshot(ctx, req.Target())
	if err != nil {
		s.rejected(ctx, connID, frame.ID, peer, err)
		return
	}
	if _, err := req.Resolve(snapshot); err != nil {
		s.rejected(ctx, connID, frame.ID, peer, err)
		return
	}
	if s.auditor != nil {
		s.auditor.Record(ctx, audit.Event{
			Type:          audit.TypeResolved,
			Command:       req.CommandName,
			Configuration: req.ConfigurationName,
			EntityType:    req.EntityType,
			ProjectID:     req.ProjectID,
		})
	}

	requestID := frame.ID
	s.executor.ExecuteAsync(req, func(reply protocol.Reply) {
		if err := peer.writeReply(requestID, reply); err != nil && s.logger != nil {
			s.logger.Warn("reply dropped",
				"conn_id", connID,
				"request_id", requestID,
				"error", err,
			)
		}
	})
}

func (s *Server) rejected(ctx context.Context, connID string, requestID int64, peer *peer, err error) {
	if s.logger != nil {
		s.logger.Error("request rejected",
			"conn_id", connID,
			"request_id", requestID,
			"error", err,
		)
	}
	_ = peer.writeError(requestID, err.Error())
}

// peer serializes frame writes; replies arrive from detached execution
// goroutines while the read loop may be writing error frames.
type peer struct {
	mu      sync.Mutex
	encoder *json.Encoder
}

func newPeer(w io.Writer) *peer {
	return &peer{encoder: json.NewEncoder(w)}
}

func (p *peer) writeReply(requestID int64, reply protocol.Reply) error {
	return p.write(protocol.Frame{
		ID:    requestID,
		Type:  protocol.FrameReply,
		Reply: &reply,
	})
}

func (p *peer) writeError(requestID int64, message string) error {
	return p.write(protocol.Frame{
		ID:    requestID,
		Type:  protocol.FrameError,
		Error: message,
	})
}

func (p *peer) write(frame protocol.Frame) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.encoder.Encode(frame)
}
