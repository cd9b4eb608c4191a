// Package action defines the contracts between the bridge core and the
// catalog collaborator that supplies executable commands.
package action

import "context"

// PrimaryConfiguration is the scope label for configurations without a name.
const PrimaryConfiguration = "Primary"

// Command is one executable action. Implementations are opaque to the
// bridge core beyond the system name and selection capability.
type Command interface {
	// SystemName returns the name requests are matched against.
	SystemName() string
	// SupportsMultiSelection reports whether the command accepts the
	// full entity selection instead of just the primary entity.
	SupportsMultiSelection() bool
	// ExecuteOnSelection runs the command against all selected entities.
	ExecuteOnSelection(ctx context.Context, entityIDs []int, preCache bool) (any, error)
	// Execute runs the command against the primary entity only.
	Execute(ctx context.Context, preCache bool) (any, error)
}

// CatalogEntry is one configuration scope and its commands, supplied as
// part of an already-resolved snapshot. Commands may be nil when loading
// that configuration failed, in which case Error holds the cause.
type CatalogEntry struct {
	// ConfigurationName is the scope name; empty aliases to Primary.
	ConfigurationName string
	// Commands lists the commands available in this scope.
	Commands []Command
	// Error describes a configuration load failure, if any.
	Error string
}

// Target identifies the entity context a snapshot is bound to.
type Target struct {
	// ProjectID is the owning project.
	ProjectID int
	// EntityType is the selected entity type.
	EntityType string
	// EntityIDs is the full selection, primary entity first.
	EntityIDs []int
}

// SnapshotProvider supplies catalog snapshots bound to a request target.
// The bridge core never triggers discovery; it consumes the snapshot as a
// read-only value for the duration of one resolution.
type SnapshotProvider interface {
	Snapshot(ctx context.Context, target Target) ([]CatalogEntry, error)
}
