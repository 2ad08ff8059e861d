// FilePath: internal/agent/drivers/drivers.smartplug.go
package drivers

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/greenstem/planthub/internal/errors"
	"github.com/greenstem/planthub/internal/models"
)

const (
	plugDefaultPort = "9999"
	cipherSeed      = byte(171)
)

// SmartPlugDriver speaks the TP-Link smart plug protocol: JSON commands
// over TCP, obfuscated with an autokey XOR cipher and framed by a
// 4-byte big-endian length prefix.
type SmartPlugDriver struct {
	addr        string
	dialTimeout time.Duration
	ioTimeout   time.Duration
}

// NewSmartPlugFactory returns a factory binding the configured timeouts
// to each plug driver it builds.
func NewSmartPlugFactory(dialTimeout, ioTimeout time.Duration) Factory {
	return func(info models.DeviceInfo) (Driver, error) {
		if info.IPAddress == "" {
			return nil, errors.NewValidationError("smart plug descriptor has no ip_address", nil)
		}
		addr := info.IPAddress
		if _, _, err := net.SplitHostPort(addr); err != nil {
			addr = net.JoinHostPort(addr, plugDefaultPort)
		}
		return &SmartPlugDriver{
			addr:        addr,
			dialTimeout: dialTimeout,
			ioTimeout:   ioTimeout,
		}, nil
	}
}

// Actuate switches the relay. Commands are idempotent on the plug side:
// turning an already-on plug on succeeds.
func (d *SmartPlugDriver) Actuate(ctx context.Context, action models.Action) error {
	var state int
	switch action {
	case models.ActionOn:
		state = 1
	case models.ActionOff:
		state = 0
	default:
		return errors.NewDeviceProtocolError(fmt.Sprintf("smart plug cannot perform action %q", action), nil)
	}

	command := fmt.Sprintf(`{"system":{"set_relay_state":{"state":%d}}}`, state)
	reply, err := d.exchange(ctx, command)
	if err != nil {
		return err
	}

	if errCode := relayErrorCode(reply); errCode != 0 {
		return errors.NewDeviceProtocolError(fmt.Sprintf("plug %s refused relay command (err_code %d)", d.addr, errCode), nil)
	}
	return nil
}

// ReadStatus polls the plug's system info and, when the plug reports an
// energy meter, merges the realtime meter readings into the payload.
func (d *SmartPlugDriver) ReadStatus(ctx context.Context) (map[string]any, error) {
	reply, err := d.exchange(ctx, `{"system":{"get_sysinfo":{}}}`)
	if err != nil {
		return nil, err
	}

	sysinfo, ok := dig(reply, "system", "get_sysinfo")
	if !ok {
		return nil, errors.NewDeviceProtocolError(fmt.Sprintf("plug %s returned no sysinfo", d.addr), nil)
	}

	payload := map[string]any{}
	relayState, ok := sysinfo["relay_state"]
	if !ok {
		return nil, errors.NewDeviceProtocolError(fmt.Sprintf("plug %s sysinfo has no relay_state", d.addr), nil)
	}
	payload["relay_state"] = relayState

	if hasEmeter(sysinfo) {
		realtime, err := d.exchange(ctx, `{"emeter":{"get_realtime":{}}}`)
		if err != nil {
			return nil, err
		}
		if readings, ok := dig(realtime, "emeter", "get_realtime"); ok {
			for key, value := range readings {
				if key == "err_code" {
					continue
				}
				payload[key] = value
			}
		}
	}

	return payload, nil
}

// exchange runs one command round trip on a fresh connection.
func (d *SmartPlugDriver) exchange(ctx context.Context, command string) (map[string]any, error) {
	dialer := net.Dialer{Timeout: d.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", d.addr)
	if err != nil {
		return nil, errors.NewNetworkError("could not connect to plug at "+d.addr, err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(d.ioTimeout)); err != nil {
		return nil, errors.NewNetworkError("could not set deadline for plug at "+d.addr, err)
	}

	if _, err := conn.Write(encryptCommand(command)); err != nil {
		return nil, errors.NewNetworkError("could not send command to plug at "+d.addr, err)
	}

	var length uint32
	if err := binary.Read(conn, binary.BigEndian, &length); err != nil {
		return nil, errors.NewNetworkError("could not read reply header from plug at "+d.addr, err)
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(conn, body); err != nil {
		return nil, errors.NewNetworkError("could not read reply from plug at "+d.addr, err)
	}

	var reply map[string]any
	if err := json.Unmarshal(decryptPayload(body), &reply); err != nil {
		return nil, errors.NewDeviceProtocolError("plug at "+d.addr+" sent malformed JSON", err)
	}
	return reply, nil
}

// encryptCommand applies the autokey XOR cipher and prepends the length
// header. Each ciphertext byte becomes the key for the next byte.
func encryptCommand(command string) []byte {
	buf := make([]byte, 4+len(command))
	binary.BigEndian.PutUint32(buf, uint32(len(command)))

	key := cipherSeed
	for i := 0; i < len(command); i++ {
		key ^= command[i]
		buf[4+i] = key
	}
	return buf
}

// decryptPayload reverses the cipher on a reply body (header already
// stripped).
func decryptPayload(body []byte) []byte {
	plain := make([]byte, len(body))
	key := cipherSeed
	for i, c := range body {
		plain[i] = key ^ c
		key = c
	}
	return plain
}

// dig extracts the nested object reply[outer][inner].
func dig(reply map[string]any, outer, inner string) (map[string]any, bool) {
	section, ok := reply[outer].(map[string]any)
	if !ok {
		return nil, false
	}
	nested, ok := section[inner].(map[string]any)
	return nested, ok
}

// hasEmeter reports whether the sysinfo feature list includes an energy
// meter ("ENE").
func hasEmeter(sysinfo map[string]any) bool {
	feature, ok := sysinfo["feature"].(string)
	return ok && strings.Contains(feature, "ENE")
}

func relayErrorCode(reply map[string]any) int {
	result, ok := dig(reply, "system", "set_relay_state")
	if !ok {
		return -1
	}
	code, ok := result["err_code"].(float64)
	if !ok {
		return -1
	}
	return int(code)
}
