// FilePath: internal/scheduler/evaluator.go
package scheduler

import (
	"context"
	"time"

	"github.com/greenstem/planthub/internal/models"
	"github.com/greenstem/planthub/internal/repository"
)

// Evaluate turns a device and its schedules into the Task for this
// moment. Pure: no I/O, no clock reads, no side effects.
//
// Polled device types lead with a "status" action. Every schedule then
// contributes exactly one "on" or "off" decision, in definition order;
// the agent applies them in order, so on conflict the last schedule
// wins.
func Evaluate(device *models.Device, schedules []*models.Schedule, now time.Time) models.Task {
	actions := []models.Action{}
	if device.Type.Polled() {
		actions = append(actions, models.ActionStatus)
	}

	for _, schedule := range schedules {
		if scheduleActive(schedule, now) {
			actions = append(actions, models.ActionOn)
		} else {
			actions = append(actions, models.ActionOff)
		}
	}

	return models.Task{
		Actions: actions,
		Info:    device.Info(),
	}
}

// scheduleActive reports whether now falls strictly inside the
// schedule's clock window on an active weekday. Windows are exclusive on
// both ends and never wrap past midnight: ends <= starts is never
// active. Monthly schedules are accepted but not evaluated yet, so they
// always read inactive.
func scheduleActive(schedule *models.Schedule, now time.Time) bool {
	if schedule.Frequency != models.FrequencyWeekly {
		return false
	}

	starts, err := models.ParseClock(schedule.Starts)
	if err != nil {
		return false
	}
	ends, err := models.ParseClock(schedule.Ends)
	if err != nil {
		return false
	}

	// Compare at second resolution so the window opens at 09:00:01, not
	// 09:01, under a sub-minute dispatch cadence.
	second := now.Hour()*3600 + now.Minute()*60 + now.Second()
	if !(starts*60 < second && second < ends*60) {
		return false
	}

	return schedule.ActiveOn(now.Weekday())
}

// BuildTasks evaluates every device owned by userID into its Task for
// this moment. Shared by the dispatcher tick and the task preview
// endpoint.
func BuildTasks(ctx context.Context, devices repository.DeviceRepository, schedules repository.ScheduleRepository, userID int64, now time.Time) ([]models.Task, error) {
	owned, err := devices.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	tasks := make([]models.Task, 0, len(owned))
	for _, device := range owned {
		deviceSchedules, err := schedules.ListByDevice(ctx, device.ID)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, Evaluate(device, deviceSchedules, now))
	}
	return tasks, nil
}
