// FilePath: internal/models/models.device.go
package models

import "time"

type DeviceType string

const (
	DeviceTypeGeneric          DeviceType = "generic"
	DeviceTypeSmartPlug        DeviceType = "smart_plug"
	DeviceTypeTemperatureProbe DeviceType = "temperature_probe"
)

// Valid reports whether t is one of the known device type tags.
func (t DeviceType) Valid() bool {
	switch t {
	case DeviceTypeGeneric, DeviceTypeSmartPlug, DeviceTypeTemperatureProbe:
		return true
	}
	return false
}

// Actuatable reports whether devices of this type accept on/off commands
// and therefore may own schedules.
func (t DeviceType) Actuatable() bool {
	return t == DeviceTypeSmartPlug
}

// Polled reports whether devices of this type are asked for a status
// reading on every dispatch cycle.
func (t DeviceType) Polled() bool {
	return t == DeviceTypeSmartPlug || t == DeviceTypeTemperatureProbe
}

// Device is the stored device row. Type-specific columns are only
// meaningful for the matching type tag; the service layer enforces that.
type Device struct {
	ID           int64      `json:"id" db:"id"`
	Name         string     `json:"name" db:"name"`
	Type         DeviceType `json:"type" db:"type"`
	UserID       int64      `json:"user_id" db:"user_id"`
	Description  string     `json:"description" db:"description"`
	IPAddress    string     `json:"ip_address,omitempty" db:"ip_address"`
	SerialNumber string     `json:"serial_number,omitempty" db:"serial_number"`
	Pin          int        `json:"pin,omitempty" db:"pin"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// DeviceInfo is the public device descriptor that travels with a Task.
// Agents must ignore fields they do not understand.
type DeviceInfo struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Type         DeviceType `json:"type"`
	IPAddress    string     `json:"ip_address,omitempty"`
	SerialNumber string     `json:"serial_number,omitempty"`
	Pin          int        `json:"pin,omitempty"`
}

// Info builds the wire descriptor for the device, carrying only the
// type-specific fields that match the device's type tag.
func (d *Device) Info() DeviceInfo {
	info := DeviceInfo{
		ID:   d.ID,
		Name: d.Name,
		Type: d.Type,
	}
	switch d.Type {
	case DeviceTypeSmartPlug:
		info.IPAddress = d.IPAddress
	case DeviceTypeTemperatureProbe:
		info.SerialNumber = d.SerialNumber
		info.Pin = d.Pin
	}
	return info
}
