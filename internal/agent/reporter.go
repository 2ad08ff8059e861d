// FilePath: internal/agent/reporter.go
package agent

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/greenstem/planthub/internal/config"
	"github.com/greenstem/planthub/internal/errors"
	"github.com/greenstem/planthub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

const apiVersion = "v1"

// HubReporter pushes status readings back to the hub's telemetry
// endpoint, authenticating with a bearer token minted from the shared
// secret.
type HubReporter struct {
	client *resty.Client
	cfg    config.HubConfig
	token  string
}

// NewHubReporter creates a reporter. Authenticate must be called before
// the first Report.
func NewHubReporter(cfg config.HubConfig) *HubReporter {
	client := resty.New().
		SetTimeout(cfg.RequestTimeout).
		SetHeader("Content-Type", "application/json")

	return &HubReporter{
		client: client,
		cfg:    cfg,
	}
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Authenticate exchanges the shared secret for a bearer token.
func (r *HubReporter) Authenticate(ctx context.Context) error {
	url := fmt.Sprintf("%s/api/%s/token", r.cfg.URL, apiVersion)

	var reply tokenResponse
	resp, err := r.client.R().
		SetContext(ctx).
		SetBody(map[string]string{"secret": r.cfg.SharedSecret}).
		SetResult(&reply).
		Post(url)
	if err != nil {
		return errors.NewNetworkError("could not reach token endpoint "+url, err)
	}
	if resp.IsError() {
		return errors.NewAuthError(fmt.Sprintf("hub rejected token request with %d", resp.StatusCode()), nil)
	}
	if reply.Token == "" {
		return errors.NewAuthError("hub returned an empty token", nil)
	}

	r.token = reply.Token
	nuts.L.Infof("[HubReporter] Authenticated against %s", r.cfg.URL)
	return nil
}

// Report pushes one device's readings to the hub. A 401 triggers a
// single re-authentication and retry, covering token expiry.
func (r *HubReporter) Report(ctx context.Context, deviceID int64, payload map[string]any) error {
	resp, err := r.post(ctx, deviceID, payload)
	if err != nil {
		return err
	}

	if resp.StatusCode() == 401 {
		if err := r.Authenticate(ctx); err != nil {
			return err
		}
		resp, err = r.post(ctx, deviceID, payload)
		if err != nil {
			return err
		}
	}

	if resp.IsError() {
		return errors.NewNetworkError(fmt.Sprintf("hub rejected telemetry for device %d with %d", deviceID, resp.StatusCode()), nil)
	}

	nuts.L.Debugf("[HubReporter] Sent %d reading(s) for device %d", len(payload), deviceID)
	return nil
}

func (r *HubReporter) post(ctx context.Context, deviceID int64, payload map[string]any) (*resty.Response, error) {
	url := fmt.Sprintf("%s/api/%s/requests", r.cfg.URL, apiVersion)
	resp, err := r.client.R().
		SetContext(ctx).
		SetAuthToken(r.token).
		SetBody(models.TelemetryPush{DeviceID: deviceID, Payload: payload}).
		Post(url)
	if err != nil {
		return nil, errors.NewNetworkError("could not POST telemetry to "+url, err)
	}
	return resp, nil
}
