package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/trackdesk/desktop-bridge/internal/action"
	"github.com/trackdesk/desktop-bridge/internal/executil"
	"github.com/trackdesk/desktop-bridge/internal/timeutil"
)

const defaultCommandTimeout = 5 * time.Minute

// shellCommand runs a catalog-declared shell command bound to one request's
// entity context.
type shellCommand struct {
	def    CommandConfig
	target action.Target
}

func (c shellCommand) SystemName() string {
	return c.def.Name
}

func (c shellCommand) SupportsMultiSelection() bool {
	return c.def.MultiSelection
}

func (c shellCommand) ExecuteOnSelection(ctx context.Context, entityIDs []int, preCache bool) (any, error) {
	return c.run(ctx, entityIDs, preCache)
}

func (c shellCommand) Execute(ctx context.Context, preCache bool) (any, error) {
	return c.run(ctx, c.primarySelection(), preCache)
}

func (c shellCommand) primarySelection() []int {
	if len(c.target.EntityIDs) == 0 {
		return nil
	}
	return c.target.EntityIDs[:1]
}

func (c shellCommand) run(ctx context.Context, entityIDs []int, preCache bool) (any, error) {
	ctx, cancel := context.WithTimeout(ctx, timeutil.ParseDurationOrDefault(c.def.Timeout, defaultCommandTimeout))
	defer cancel()

	primary := 0
	if len(c.target.EntityIDs) > 0 {
		primary = c.target.EntityIDs[0]
	}
	data := executil.TemplateData{
		CommandName:     c.def.Name,
		EntityType:      c.target.EntityType,
		EntityIDs:       entityIDs,
		PrimaryEntityID: primary,
		ProjectID:       c.target.ProjectID,
		PreCache:        preCache,
	}
	output, _, err := executil.RunCommand(ctx, c.def.Command, c.def.Args, c.def.Env, data)
	output = strings.TrimSpace(output)
	if err != nil {
		if output != "" {
			return nil, fmt.Errorf("%s: %s", err, output)
		}
		return nil, err
	}
	return output, nil
}

// httpCommand delegates execution to a toolkit service over HTTP.
type httpCommand struct {
	def    CommandConfig
	target action.Target
}

type httpExecutePayload struct {
	// Command is the action system name.
	Command string `json:"command"`
	// EntityType is the selected entity type.
	EntityType string `json:"entity_type"`
	// EntityIDs is the selection the command runs against.
	EntityIDs []int `json:"entity_ids"`
	// ProjectID is the owning project.
	ProjectID int `json:"project_id"`
	// PreCache asks the service to warm its state before running.
	PreCache bool `json:"pre_cache"`
}

type httpExecuteResult struct {
	// Status is "success" or "error".
	Status string `json:"status"`
	// Result carries output or an error description.
	Result any `json:"result"`
}

func (c httpCommand) SystemName() string {
	return c.def.Name
}

func (c httpCommand) SupportsMultiSelection() bool {
	return c.def.MultiSelection
}

func (c httpCommand) ExecuteOnSelection(ctx context.Context, entityIDs []int, preCache bool) (any, error) {
	return c.post(ctx, entityIDs, preCache)
}

func (c httpCommand) Execute(ctx context.Context, preCache bool) (any, error) {
	ids := c.target.EntityIDs
	if len(ids) > 1 {
		ids = ids[:1]
	}
	return c.post(ctx, ids, preCache)
}

func (c httpCommand) post(ctx context.Context, entityIDs []int, preCache bool) (any, error) {
	body, err := json.Marshal(httpExecutePayload{
		Command:    c.def.Name,
		EntityType: c.target.EntityType,
		EntityIDs:  entityIDs,
		ProjectID:  c.target.ProjectID,
		PreCache:   preCache,
	})
	if err != nil {
		return nil, fmt.Errorf("encode execute payload: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.def.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build execute request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	for key, value := range c.def.Headers {
		request.Header.Set(key, value)
	}

	client := &http.Client{
		Timeout: timeutil.ParseDurationOrDefault(c.def.Timeout, defaultCommandTimeout),
	}
	resp, err := client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("execute request failed: %w", err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	trimmed := strings.TrimSpace(string(data))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("toolkit service status %d: %s", resp.StatusCode, trimmed)
	}

	var parsed httpExecuteResult
	if err := json.Unmarshal(data, &parsed); err == nil && strings.TrimSpace(parsed.Status) != "" {
		switch strings.ToLower(strings.TrimSpace(parsed.Status)) {
		case "success":
			return parsed.Result, nil
		case "error":
			return nil, errors.New(stringifyResult(parsed.Result))
		default:
			return nil, fmt.Errorf("unknown toolkit service status: %s", parsed.Status)
		}
	}
	return trimmed, nil
}

func stringifyResult(value any) string {
	switch typed := value.(type) {
	case nil:
		return "toolkit service error"
	case string:
		if strings.TrimSpace(typed) == "" {
			return "toolkit service error"
		}
		return strings.TrimSpace(typed)
	default:
		data, err := json.Marshal(typed)
		if err != nil {
			return fmt.Sprintf("%v", typed)
		}
		return strings.TrimSpace(string(data))
	}
}
