// FilePath: internal/agent/drivers/drivers.smartplug_test.go
package drivers

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/greenstem/planthub/internal/errors"
	"github.com/greenstem/planthub/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCipherRoundTrip(t *testing.T) {
	commands := []string{
		`{"system":{"set_relay_state":{"state":1}}}`,
		`{"system":{"get_sysinfo":{}}}`,
		"",
		"a",
	}

	for _, command := range commands {
		framed := encryptCommand(command)
		require.Len(t, framed, 4+len(command))
		assert.Equal(t, uint32(len(command)), binary.BigEndian.Uint32(framed[:4]))
		assert.Equal(t, command, string(decryptPayload(framed[4:])))
	}
}

// fakePlug answers the TP-Link wire protocol on a local listener. Each
// received command is recorded and answered from the replies map.
type fakePlug struct {
	listener net.Listener

	mu       sync.Mutex
	received []string
	replies  map[string]string
}

func newFakePlug(t *testing.T, replies map[string]string) *fakePlug {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	plug := &fakePlug{listener: listener, replies: replies}
	go plug.serve()
	t.Cleanup(func() { listener.Close() })
	return plug
}

func (p *fakePlug) serve() {
	for {
		conn, err := p.listener.Accept()
		if err != nil {
			return
		}
		go p.handle(conn)
	}
}

func (p *fakePlug) handle(conn net.Conn) {
	defer conn.Close()

	var length uint32
	if err := binary.Read(conn, binary.BigEndian, &length); err != nil {
		return
	}
	body := make([]byte, length)
	if _, err := io.ReadFull(conn, body); err != nil {
		return
	}
	command := string(decryptPayload(body))

	p.mu.Lock()
	p.received = append(p.received, command)
	reply := p.replies[command]
	p.mu.Unlock()

	conn.Write(encryptCommand(reply))
}

func (p *fakePlug) commands() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.received
}

func plugDriver(t *testing.T, plug *fakePlug) Driver {
	t.Helper()
	factory := NewSmartPlugFactory(time.Second, time.Second)
	driver, err := factory(models.DeviceInfo{
		ID:        1,
		Type:      models.DeviceTypeSmartPlug,
		IPAddress: plug.listener.Addr().String(),
	})
	require.NoError(t, err)
	return driver
}

func TestSmartPlugActuateOn(t *testing.T) {
	plug := newFakePlug(t, map[string]string{
		`{"system":{"set_relay_state":{"state":1}}}`: `{"system":{"set_relay_state":{"err_code":0}}}`,
	})
	driver := plugDriver(t, plug)

	require.NoError(t, driver.Actuate(context.Background(), models.ActionOn))
	assert.Equal(t, []string{`{"system":{"set_relay_state":{"state":1}}}`}, plug.commands())
}

func TestSmartPlugActuateOnTwiceIsIdempotent(t *testing.T) {
	plug := newFakePlug(t, map[string]string{
		`{"system":{"set_relay_state":{"state":1}}}`: `{"system":{"set_relay_state":{"err_code":0}}}`,
	})
	driver := plugDriver(t, plug)

	// An already-on plug accepts on() again without complaint
	require.NoError(t, driver.Actuate(context.Background(), models.ActionOn))
	require.NoError(t, driver.Actuate(context.Background(), models.ActionOn))
	assert.Equal(t, []string{
		`{"system":{"set_relay_state":{"state":1}}}`,
		`{"system":{"set_relay_state":{"state":1}}}`,
	}, plug.commands())
}

func TestSmartPlugActuateRefused(t *testing.T) {
	plug := newFakePlug(t, map[string]string{
		`{"system":{"set_relay_state":{"state":0}}}`: `{"system":{"set_relay_state":{"err_code":-3}}}`,
	})
	driver := plugDriver(t, plug)

	err := driver.Actuate(context.Background(), models.ActionOff)
	require.Error(t, err)
	assert.True(t, errors.IsDeviceProtocol(err))
}

func TestSmartPlugReadStatusWithoutEmeter(t *testing.T) {
	plug := newFakePlug(t, map[string]string{
		`{"system":{"get_sysinfo":{}}}`: `{"system":{"get_sysinfo":{"relay_state":1,"feature":"TIM"}}}`,
	})
	driver := plugDriver(t, plug)

	payload, err := driver.ReadStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"relay_state": float64(1)}, payload)
	assert.Len(t, plug.commands(), 1)
}

func TestSmartPlugReadStatusMergesEmeter(t *testing.T) {
	plug := newFakePlug(t, map[string]string{
		`{"system":{"get_sysinfo":{}}}`: `{"system":{"get_sysinfo":{"relay_state":0,"feature":"TIM:ENE"}}}`,
		`{"emeter":{"get_realtime":{}}}`: `{"emeter":{"get_realtime":{"power_mw":4250,"voltage_mv":229810,"err_code":0}}}`,
	})
	driver := plugDriver(t, plug)

	payload, err := driver.ReadStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"relay_state": float64(0),
		"power_mw":    float64(4250),
		"voltage_mv":  float64(229810),
	}, payload)
	assert.Len(t, plug.commands(), 2)
}

func TestSmartPlugReadStatusMalformedReply(t *testing.T) {
	plug := newFakePlug(t, map[string]string{
		`{"system":{"get_sysinfo":{}}}`: `not json`,
	})
	driver := plugDriver(t, plug)

	_, err := driver.ReadStatus(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsDeviceProtocol(err))
}

func TestSmartPlugUnreachable(t *testing.T) {
	factory := NewSmartPlugFactory(50*time.Millisecond, 50*time.Millisecond)
	driver, err := factory(models.DeviceInfo{IPAddress: "127.0.0.1:1"})
	require.NoError(t, err)

	err = driver.Actuate(context.Background(), models.ActionOn)
	require.Error(t, err)
	apiErr, ok := err.(*errors.APIError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrorTypeNetwork, apiErr.Type)
}

func TestSmartPlugFactoryValidation(t *testing.T) {
	factory := NewSmartPlugFactory(time.Second, time.Second)

	_, err := factory(models.DeviceInfo{})
	assert.Error(t, err)

	// A bare host gets the default port appended
	driver, err := factory(models.DeviceInfo{IPAddress: "192.168.1.50"})
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.50:9999", driver.(*SmartPlugDriver).addr)
}

func TestReplyRoundTripThroughJSON(t *testing.T) {
	reply := `{"system":{"get_sysinfo":{"relay_state":1}}}`
	framed := encryptCommand(reply)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(decryptPayload(framed[4:]), &parsed))
	sysinfo, ok := dig(parsed, "system", "get_sysinfo")
	require.True(t, ok)
	assert.Equal(t, float64(1), sysinfo["relay_state"])
}
