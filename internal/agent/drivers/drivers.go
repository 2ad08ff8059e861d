// FilePath: internal/agent/drivers/drivers.go
package drivers

import (
	"context"
	"fmt"

	"github.com/greenstem/planthub/internal/models"
)

// Driver talks to one physical device. Actuate applies an on/off
// command; ReadStatus polls the device's current readings for the
// telemetry push.
type Driver interface {
	Actuate(ctx context.Context, action models.Action) error
	ReadStatus(ctx context.Context) (map[string]any, error)
}

// Factory builds a driver from a task's device descriptor.
type Factory func(info models.DeviceInfo) (Driver, error)

// Registry maps device type tags to driver factories. Unknown tags
// surface as errors so the batch processor can skip them.
type Registry struct {
	factories map[models.DeviceType]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[models.DeviceType]Factory)}
}

// Register installs a factory for a device type, replacing any previous
// one.
func (r *Registry) Register(deviceType models.DeviceType, factory Factory) {
	r.factories[deviceType] = factory
}

// Driver builds a driver for the descriptor's type tag.
func (r *Registry) Driver(info models.DeviceInfo) (Driver, error) {
	factory, ok := r.factories[info.Type]
	if !ok {
		return nil, fmt.Errorf("no driver registered for device type %q", info.Type)
	}
	return factory(info)
}
