// FilePath: internal/agent/drivers/drivers.ds18b20.go
package drivers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/greenstem/planthub/internal/config"
	"github.com/greenstem/planthub/internal/errors"
	"github.com/greenstem/planthub/internal/models"
)

// TemperatureProbeDriver reads a DS18B20 sensor through the kernel's
// 1-wire sysfs interface. The sensor's w1_slave file reports a CRC
// verdict on line one ("YES" when the read is clean) and the raw
// reading in milli-Celsius after "t=" on line two.
type TemperatureProbeDriver struct {
	serial string
	cfg    config.ProbeConfig
}

// NewTemperatureProbeFactory returns a factory binding the 1-wire bus
// settings to each probe driver it builds.
func NewTemperatureProbeFactory(cfg config.ProbeConfig) Factory {
	return func(info models.DeviceInfo) (Driver, error) {
		if info.SerialNumber == "" {
			return nil, errors.NewValidationError("temperature probe descriptor has no serial_number", nil)
		}
		return &TemperatureProbeDriver{serial: info.SerialNumber, cfg: cfg}, nil
	}
}

// Actuate always fails: probes are read-only.
func (d *TemperatureProbeDriver) Actuate(ctx context.Context, action models.Action) error {
	return errors.NewDeviceProtocolError(fmt.Sprintf("temperature probe cannot perform action %q", action), nil)
}

// ReadStatus polls the sensor until it reports a clean read, up to the
// configured attempt limit. A sensor that never settles is an error, not
// a hang.
func (d *TemperatureProbeDriver) ReadStatus(ctx context.Context) (map[string]any, error) {
	path := filepath.Join(d.cfg.W1Dir, d.serial, "w1_slave")

	for attempt := 0; attempt < d.cfg.ReadAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(d.cfg.ReadDelay):
			}
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.NewDeviceProtocolError("could not read probe "+d.serial, err)
		}

		lines := strings.Split(string(raw), "\n")
		if len(lines) < 2 || !strings.HasSuffix(strings.TrimSpace(lines[0]), "YES") {
			continue
		}

		celsius, err := parseTemperature(lines[1])
		if err != nil {
			return nil, errors.NewDeviceProtocolError("probe "+d.serial+" sent malformed reading", err)
		}

		value := celsius
		if d.cfg.Unit != "C" {
			value = celsius*9.0/5.0 + 32.0
		}
		return map[string]any{"temperature": value}, nil
	}

	return nil, errors.NewDeviceProtocolError(
		fmt.Sprintf("probe %s not ready after %d attempts", d.serial, d.cfg.ReadAttempts), nil)
}

// parseTemperature extracts the milli-Celsius value after "t=" and
// converts it to Celsius.
func parseTemperature(line string) (float64, error) {
	pos := strings.Index(line, "t=")
	if pos == -1 {
		return 0, fmt.Errorf("no t= marker in %q", line)
	}
	milli, err := strconv.ParseFloat(strings.TrimSpace(line[pos+2:]), 64)
	if err != nil {
		return 0, err
	}
	return milli / 1000.0, nil
}
