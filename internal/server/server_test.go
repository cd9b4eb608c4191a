package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"

	"github.com/trackdesk/desktop-bridge/internal/action"
	"github.com/trackdesk/desktop-bridge/internal/bridge"
	"github.com/trackdesk/desktop-bridge/internal/protocol"
)

type fakeStore struct {
	project bridge.ProjectRef
	err     error
	calls   int
}

func (f *fakeStore) FindOneProject(context.Context, string, int) (bridge.ProjectRef, error) {
	f.calls++
	return f.project, f.err
}

type fakeCommand struct {
	name   string
	multi  bool
	output any
	err    error

	targets chan []int
}

func (c *fakeCommand) SystemName() string           { return c.name }
func (c *fakeCommand) SupportsMultiSelection() bool { return c.multi }

func (c *fakeCommand) ExecuteOnSelection(_ context.Context, ids []int, _ bool) (any, error) {
	if c.targets != nil {
		c.targets <- ids
	}
	return c.output, c.err
}

func (c *fakeCommand) Execute(context.Context, bool) (any, error) {
	if c.targets != nil {
		c.targets <- nil
	}
	return c.output, c.err
}

type fakeProvider struct {
	entries []action.CatalogEntry
	err     error
	target  action.Target
}

func (f *fakeProvider) Snapshot(_ context.Context, target action.Target) ([]action.CatalogEntry, error) {
	f.target = target
	return f.entries, f.err
}

func dialWS(t *testing.T, srv *Server) *websocket.Conn {
	t.Helper()

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, err := websocket.Dial(wsURL, "", "http://127.0.0.1/")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) protocol.Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var frame protocol.Frame
	require.NoError(t, json.NewDecoder(conn).Decode(&frame))
	return frame
}

func sendFrame(t *testing.T, conn *websocket.Conn, frame protocol.Frame) {
	t.Helper()
	require.NoError(t, json.NewEncoder(conn).Encode(frame))
}

func executePayload() map[string]any {
	return map[string]any{
		"name":        "launch_nuke",
		"title":       "Launch Nuke",
		"pc":          "Primary",
		"entity_ids":  []any{101, 102},
		"entity_type": "Shot",
		"project_id":  87,
	}
}

func newTestServer(t *testing.T, provider *fakeProvider, store *fakeStore) *Server {
	t.Helper()
	srv, err := New(Options{
		Store:    store,
		Catalogs: provider,
	})
	require.NoError(t, err)
	return srv
}

func TestExecuteActionReply(t *testing.T) {
	cmd := &fakeCommand{name: "launch_nuke", multi: true, output: "opened", targets: make(chan []int, 1)}
	provider := &fakeProvider{entries: []action.CatalogEntry{
		{ConfigurationName: "", Commands: []action.Command{cmd}},
	}}
	store := &fakeStore{}

	conn := dialWS(t, newTestServer(t, provider, store))
	sendFrame(t, conn, protocol.Frame{ID: 7, Type: protocol.FrameExecuteAction, Data: executePayload()})

	frame := readFrame(t, conn)
	assert.Equal(t, int64(7), frame.ID)
	assert.Equal(t, protocol.FrameReply, frame.Type)
	require.NotNil(t, frame.Reply)
	assert.Equal(t, protocol.StatusOK, frame.Reply.Status)
	assert.Equal(t, "opened", frame.Reply.Output)

	select {
	case ids := <-cmd.targets:
		assert.Equal(t, []int{101, 102}, ids)
	case <-time.After(5 * time.Second):
		t.Fatal("command was not executed")
	}

	assert.Equal(t, 0, store.calls, "project_id present, no lookup")
	assert.Equal(t, action.Target{ProjectID: 87, EntityType: "Shot", EntityIDs: []int{101, 102}}, provider.target)
}

func TestExecuteActionFailureReply(t *testing.T) {
	cmd := &fakeCommand{name: "launch_nuke", err: errors.New("license server down")}
	provider := &fakeProvider{entries: []action.CatalogEntry{
		{ConfigurationName: "", Commands: []action.Command{cmd}},
	}}

	conn := dialWS(t, newTestServer(t, provider, &fakeStore{}))
	sendFrame(t, conn, protocol.Frame{ID: 3, Type: protocol.FrameExecuteAction, Data: executePayload()})

	frame := readFrame(t, conn)
	require.NotNil(t, frame.Reply)
	assert.Equal(t, protocol.StatusError, frame.Reply.Status)
	assert.Equal(t, "license server down", frame.Reply.Error)
}

func TestMalformedPayloadGetsErrorFrameNotReply(t *testing.T) {
	provider := &fakeProvider{}
	payload := executePayload()
	delete(payload, "entity_type")

	conn := dialWS(t, newTestServer(t, provider, &fakeStore{}))
	sendFrame(t, conn, protocol.Frame{ID: 9, Type: protocol.FrameExecuteAction, Data: payload})

	frame := readFrame(t, conn)
	assert.Equal(t, int64(9), frame.ID)
	assert.Equal(t, protocol.FrameError, frame.Type)
	assert.Nil(t, frame.Reply)
	assert.Contains(t, frame.Error, "entity_type")
}

func TestConfigurationMismatchGetsErrorFrame(t *testing.T) {
	provider := &fakeProvider{entries: []action.CatalogEntry{
		{ConfigurationName: "dev", Commands: []action.Command{&fakeCommand{name: "launch_nuke"}}},
	}}

	conn := dialWS(t, newTestServer(t, provider, &fakeStore{}))
	sendFrame(t, conn, protocol.Frame{ID: 4, Type: protocol.FrameExecuteAction, Data: executePayload()})

	frame := readFrame(t, conn)
	assert.Equal(t, protocol.FrameError, frame.Type)
	assert.Contains(t, frame.Error, "configuration mismatch")
}

func TestUnknownFrameType(t *testing.T) {
	conn := dialWS(t, newTestServer(t, &fakeProvider{}, &fakeStore{}))
	sendFrame(t, conn, protocol.Frame{ID: 1, Type: "get_commands"})

	frame := readFrame(t, conn)
	assert.Equal(t, protocol.FrameError, frame.Type)
	assert.Contains(t, frame.Error, "unknown request type")
}

func TestNullProjectIDResolvedThroughStore(t *testing.T) {
	cmd := &fakeCommand{name: "launch_nuke", output: "ok", targets: make(chan []int, 1)}
	provider := &fakeProvider{entries: []action.CatalogEntry{
		{ConfigurationName: "", Commands: []action.Command{cmd}},
	}}
	store := &fakeStore{project: bridge.ProjectRef{ID: 87}}

	payload := executePayload()
	payload["project_id"] = nil

	conn := dialWS(t, newTestServer(t, provider, store))
	sendFrame(t, conn, protocol.Frame{ID: 5, Type: protocol.FrameExecuteAction, Data: payload})

	frame := readFrame(t, conn)
	require.NotNil(t, frame.Reply)
	assert.Equal(t, protocol.StatusOK, frame.Reply.Status)

	select {
	case <-cmd.targets:
	case <-time.After(5 * time.Second):
		t.Fatal("command was not executed")
	}
	assert.Equal(t, 1, store.calls)
	assert.Equal(t, 87, provider.target.ProjectID)
}
