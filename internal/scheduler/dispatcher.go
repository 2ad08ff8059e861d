// FilePath: internal/scheduler/dispatcher.go
package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/greenstem/planthub/internal/config"
	"github.com/greenstem/planthub/internal/errors"
	"github.com/greenstem/planthub/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

const apiVersion = "v1"

// Dispatcher owns the recurring tick that evaluates every owner's
// devices and pushes the resulting task batches to the agent. Delivery
// is fire-and-forget: a failed push is logged and the next tick rebuilds
// the full desired state from scratch.
type Dispatcher struct {
	devices   repository.DeviceRepository
	schedules repository.ScheduleRepository
	client    *resty.Client
	cfg       config.DispatchConfig

	// running guards against overlapping ticks when a tick's network
	// work exceeds the interval; the late tick is skipped.
	running atomic.Bool
}

// NewDispatcher creates a dispatcher. All outbound calls carry the
// configured request timeout.
func NewDispatcher(devices repository.DeviceRepository, schedules repository.ScheduleRepository, cfg config.DispatchConfig) *Dispatcher {
	client := resty.New().
		SetTimeout(cfg.RequestTimeout).
		SetHeader("Content-Type", "application/json")

	return &Dispatcher{
		devices:   devices,
		schedules: schedules,
		client:    client,
		cfg:       cfg,
	}
}

// Run executes the tick loop until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	nuts.L.Infof("[Dispatcher] Starting, pushing to %s every %s", d.cfg.AgentURL, d.cfg.Interval)

	ticker := time.NewTicker(d.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			nuts.L.Infof("[Dispatcher] Stopping")
			return
		case <-ticker.C:
			if !d.running.CompareAndSwap(false, true) {
				nuts.L.Warnf("[Dispatcher] Previous tick still running, skipping this one")
				continue
			}
			d.tick(ctx)
			d.running.Store(false)
		}
	}
}

// tick evaluates and dispatches one batch per owner. One owner's
// failure never blocks the others; there is no ordering guarantee
// between owners.
func (d *Dispatcher) tick(ctx context.Context) {
	owners, err := d.devices.ListOwnerIDs(ctx)
	if err != nil {
		nuts.L.Errorf("[Dispatcher] Failed to list owners: %v", err)
		return
	}

	now := time.Now()
	for _, userID := range owners {
		if err := d.dispatchOwner(ctx, userID, now); err != nil {
			nuts.L.Errorf("[Dispatcher] Dispatch for owner %d failed: %v", userID, err)
		}
	}
}

// dispatchOwner builds the owner's task batch and POSTs it to the
// agent. No acknowledgement is required; any non-2xx counts as a
// failed delivery.
func (d *Dispatcher) dispatchOwner(ctx context.Context, userID int64, now time.Time) error {
	tasks, err := BuildTasks(ctx, d.devices, d.schedules, userID, now)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		return nil
	}

	url := fmt.Sprintf("%s/api/%s/requests", d.cfg.AgentURL, apiVersion)
	resp, err := d.client.R().
		SetContext(ctx).
		SetBody(tasks).
		Post(url)
	if err != nil {
		return errors.NewNetworkError("could not POST tasks to "+url, err)
	}
	if resp.IsError() {
		return errors.NewNetworkError(fmt.Sprintf("agent returned %d for %s", resp.StatusCode(), url), nil)
	}

	nuts.L.Debugf("[Dispatcher] Sent %d task(s) for owner %d to %s", len(tasks), userID, url)
	return nil
}
