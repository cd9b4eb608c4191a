// Package bridge implements the execute_action request protocol: payload
// validation, command resolution against catalog snapshots, detached
// execution and status reply translation.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/trackdesk/desktop-bridge/internal/action"
	"github.com/trackdesk/desktop-bridge/internal/protocol"
)

// ProjectRef identifies the project owning an entity.
type ProjectRef struct {
	ID int
}

// EntityStore resolves an entity to its owning project. The lookup blocks
// the calling goroutine; timeouts are the store's own policy.
type EntityStore interface {
	FindOneProject(ctx context.Context, entityType string, entityID int) (ProjectRef, error)
}

// Request is one validated action invocation. It is created per inbound
// payload and discarded once its reply has been sent.
type Request struct {
	// CommandName is the system name of the action to run.
	CommandName string
	// CommandTitle is the human label; never used for matching.
	CommandTitle string
	// ConfigurationName is the target configuration scope.
	ConfigurationName string
	// EntityType is the selected entity type.
	EntityType string
	// PrimaryEntityID is the first entity in the selection.
	PrimaryEntityID int
	// EntityIDs is the full selection, order preserved.
	EntityIDs []int
	// ProjectID is the owning project, looked up when absent from
	// the payload.
	ProjectID int

	resolved action.Command
}

// ParseRequest validates a raw inbound payload and builds a Request.
//
// Payload data comes straight from the browser, so every required key is
// checked before values are trusted. The entity_ids field is either a list
// of bare ids or a list of {id, type} records; both forms normalize to a
// plain id list here, keyed by the form of the first element. When
// project_id is null the entity store is queried synchronously for the
// owning project before the request is considered valid.
func ParseRequest(ctx context.Context, payload map[string]any, store EntityStore) (*Request, error) {
	for _, key := range protocol.RequiredKeys {
		if _, ok := payload[key]; !ok {
			return nil, &ValidationError{Key: key}
		}
	}

	req := &Request{}
	var err error
	if req.CommandName, err = stringValue(payload, protocol.KeyName); err != nil {
		return nil, err
	}
	if req.CommandTitle, err = stringValue(payload, protocol.KeyTitle); err != nil {
		return nil, err
	}
	if req.ConfigurationName, err = stringValue(payload, protocol.KeyConfiguration); err != nil {
		return nil, err
	}
	if req.EntityType, err = stringValue(payload, protocol.KeyEntityType); err != nil {
		return nil, err
	}

	refs, err := decodeEntityRefs(payload[protocol.KeyEntityIDs])
	if err != nil {
		return nil, err
	}
	req.EntityIDs = refs
	req.PrimaryEntityID = refs[0]

	if payload[protocol.KeyProjectID] == nil {
		// Non-project pages send project_id as null; resolve it from
		// the primary entity's owning project.
		ref, err := store.FindOneProject(ctx, req.EntityType, req.PrimaryEntityID)
		if err != nil {
			return nil, &LookupError{
				EntityType: req.EntityType,
				EntityID:   req.PrimaryEntityID,
				Err:        err,
			}
		}
		req.ProjectID = ref.ID
	} else {
		id, ok := asInt(payload[protocol.KeyProjectID])
		if !ok {
			return nil, &ValidationError{Key: protocol.KeyProjectID, Reason: "not an integer"}
		}
		req.ProjectID = id
	}

	return req, nil
}

// Target returns the entity context this request is bound to.
func (r *Request) Target() action.Target {
	return action.Target{
		ProjectID:  r.ProjectID,
		EntityType: r.EntityType,
		EntityIDs:  r.EntityIDs,
	}
}

// decodeEntityRefs normalizes the polymorphic entity_ids encoding into a
// plain id sequence. The form is assumed uniform across the sequence and
// detected from the first element only.
func decodeEntityRefs(raw any) ([]int, error) {
	seq, ok := raw.([]any)
	if !ok {
		return nil, &ValidationError{Key: protocol.KeyEntityIDs, Reason: "not a sequence"}
	}
	if len(seq) == 0 {
		return nil, &ValidationError{Key: protocol.KeyEntityIDs, Reason: "empty sequence"}
	}

	ids := make([]int, 0, len(seq))
	if _, keyed := seq[0].(map[string]any); keyed {
		for i, elem := range seq {
			record, ok := elem.(map[string]any)
			if !ok {
				return nil, &ValidationError{
					Key:    protocol.KeyEntityIDs,
					Reason: fmt.Sprintf("element %d is not an entity record", i),
				}
			}
			id, ok := asInt(record["id"])
			if !ok {
				return nil, &ValidationError{
					Key:    protocol.KeyEntityIDs,
					Reason: fmt.Sprintf("element %d has no integer id", i),
				}
			}
			ids = append(ids, id)
		}
		return ids, nil
	}

	for i, elem := range seq {
		id, ok := asInt(elem)
		if !ok {
			return nil, &ValidationError{
				Key:    protocol.KeyEntityIDs,
				Reason: fmt.Sprintf("element %d is not an integer", i),
			}
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func stringValue(payload map[string]any, key string) (string, error) {
	value, ok := payload[key].(string)
	if !ok {
		return "", &ValidationError{Key: key, Reason: "not a string"}
	}
	return value, nil
}

// asInt accepts the numeric shapes a decoded JSON payload can carry.
func asInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v != float64(int(v)) {
			return 0, false
		}
		return int(v), true
	case json.Number:
		parsed, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return int(parsed), true
	default:
		return 0, false
	}
}
