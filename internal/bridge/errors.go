package bridge

import "fmt"

// ValidationError reports a malformed or incomplete inbound payload.
// Requests failing validation are rejected before any side effect.
type ValidationError struct {
	// Key is the payload key the error refers to.
	Key string
	// Reason is set when the key was present but unusable.
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("payload key %q: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("missing key %q in payload", e.Key)
}

// LookupError reports a failed project resolution against the entity store.
type LookupError struct {
	// EntityType is the type of the entity being resolved.
	EntityType string
	// EntityID is the primary entity id.
	EntityID int
	// Err is the underlying store failure.
	Err error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("resolve project for %s %d: %v", e.EntityType, e.EntityID, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// ResolutionError reports that no supplied catalog matched the request.
// This surfaces before execution begins, so no reply has been sent.
type ResolutionError struct {
	// ConfigurationName is the requested configuration scope.
	ConfigurationName string
	// CommandName is the requested command system name.
	CommandName string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("configuration mismatch: no command %q in configuration %q",
		e.CommandName, e.ConfigurationName)
}
