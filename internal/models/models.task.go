// FilePath: internal/models/models.task.go
package models

type Action string

const (
	ActionStatus Action = "status"
	ActionOn     Action = "on"
	ActionOff    Action = "off"
)

// Task is the ephemeral per-device work bundle produced by one
// evaluation pass. It is never persisted; every dispatch tick builds
// tasks from scratch.
type Task struct {
	Actions []Action   `json:"actions"`
	Info    DeviceInfo `json:"info"`
}

// TelemetryPush is the agent-to-hub callback body carrying one device's
// status reading.
type TelemetryPush struct {
	DeviceID int64          `json:"device_id"`
	Payload  map[string]any `json:"payload"`
}
