package protocol

// Reply statuses.
const (
	StatusOK    = 0
	StatusError = 1
)

// Frame types.
const (
	FrameExecuteAction = "execute_action"
	FrameReply         = "reply"
	FrameError         = "error"
)

// Required inbound payload keys for an execute_action request.
const (
	KeyName          = "name"
	KeyTitle         = "title"
	KeyConfiguration = "pc"
	KeyEntityIDs     = "entity_ids"
	KeyEntityType    = "entity_type"
	KeyProjectID     = "project_id"
)

// RequiredKeys lists payload keys that must be present before a request
// is accepted. project_id must be present even when its value is null.
var RequiredKeys = []string{
	KeyName,
	KeyTitle,
	KeyConfiguration,
	KeyEntityIDs,
	KeyEntityType,
	KeyProjectID,
}

// Frame is one websocket message in either direction.
type Frame struct {
	// ID correlates a reply with its originating request.
	ID int64 `json:"id"`
	// Type describes the frame kind.
	Type string `json:"type"`
	// Data carries the request payload on inbound frames.
	Data map[string]any `json:"data,omitempty"`
	// Reply carries the execution status on outbound reply frames.
	Reply *Reply `json:"reply,omitempty"`
	// Error carries a transport-level message on outbound error frames.
	Error string `json:"error,omitempty"`
}

// Reply is the status object sent exactly once per executed request.
type Reply struct {
	// Status is 0 on success and 1 on failure.
	Status int `json:"status"`
	// Output is the command output on success.
	Output any `json:"output,omitempty"`
	// Error describes the failure on status 1.
	Error string `json:"error,omitempty"`
}
