// FilePath: internal/models/models.measurement.go
package models

import "time"

// Measurement is a single persisted telemetry data point. Value is kept
// as opaque text so heterogeneous sensors can share one table.
type Measurement struct {
	ID        string    `json:"id" db:"id"`
	DeviceID  int64     `json:"device_id" db:"device_id"`
	Key       string    `json:"key" db:"key"`
	Value     string    `json:"value" db:"value"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
}
