// Package entitystore implements the entity lookup collaborator against
// the tracking site HTTP API.
package entitystore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/trackdesk/desktop-bridge/internal/bridge"
)

// Client queries the tracking site for entity records.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New returns a Client for the given site. The token, when set, is sent
// as a bearer credential on every request.
func New(baseURL, token string, timeout time.Duration) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, fmt.Errorf("site url is empty")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("site url is invalid: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("site url must be absolute: %s", baseURL)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

type findOneRequest struct {
	// EntityType is the record type to search.
	EntityType string `json:"entity_type"`
	// Filters is a conjunction of [field, relation, value] triples.
	Filters [][]any `json:"filters"`
	// Fields lists the fields to return.
	Fields []string `json:"fields"`
}

type findOneResponse struct {
	Project *struct {
		ID int `json:"id"`
	} `json:"project"`
}

// FindOneProject resolves an entity to its owning project. It implements
// bridge.EntityStore and blocks until the site responds or the client
// timeout fires.
func (c *Client) FindOneProject(ctx context.Context, entityType string, entityID int) (bridge.ProjectRef, error) {
	body, err := json.Marshal(findOneRequest{
		EntityType: entityType,
		Filters:    [][]any{{"id", "is", entityID}},
		Fields:     []string{"project"},
	})
	if err != nil {
		return bridge.ProjectRef{}, fmt.Errorf("encode find_one request: %w", err)
	}

	url := c.baseURL + "/api/v1/entity/_find_one"
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return bridge.ProjectRef{}, fmt.Errorf("build find_one request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		request.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(request)
	if err != nil {
		return bridge.ProjectRef{}, fmt.Errorf("find_one request failed: %w", err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return bridge.ProjectRef{}, fmt.Errorf("find_one status %d: %s",
			resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var parsed findOneResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return bridge.ProjectRef{}, fmt.Errorf("decode find_one response: %w", err)
	}
	if parsed.Project == nil {
		return bridge.ProjectRef{}, fmt.Errorf("%s %d has no owning project", entityType, entityID)
	}
	return bridge.ProjectRef{ID: parsed.Project.ID}, nil
}
