package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/careline/engine/cmd/escalator/container"
	"github.com/careline/engine/cmd/escalator/service"
	"github.com/careline/engine/common/clients"
)

// JobsHandler exposes the escalation and retention jobs as HTTP endpoints
// for the external cron timers. Each invocation is stateless: all inputs
// come from the ledger and the wall clock.
type JobsHandler struct {
	container *container.Container
}

// NewJobsHandler creates a new jobs handler
func NewJobsHandler(c *container.Container) *JobsHandler {
	return &JobsHandler{container: c}
}

// RunNudge triggers the member-facing reminder tier
// POST /jobs/nudge
func (h *JobsHandler) RunNudge(c echo.Context) error {
	return h.run(c, service.TierNudge, func(ctx context.Context) (any, error) {
		return h.container.Nudge.Run(ctx)
	})
}

// RunHalfCycle triggers the manager alert tier
// POST /jobs/half-cycle
func (h *JobsHandler) RunHalfCycle(c echo.Context) error {
	return h.run(c, service.TierHalfCycle, func(ctx context.Context) (any, error) {
		return h.container.HalfCycle.Run(ctx)
	})
}

// RunFullCycle triggers the urgent push escalation tier
// POST /jobs/full-cycle
func (h *JobsHandler) RunFullCycle(c echo.Context) error {
	return h.run(c, service.TierFullCycle, func(ctx context.Context) (any, error) {
		return h.container.FullCycle.Run(ctx)
	})
}

// RunEmergency triggers the emergency SMS escalation tier
// POST /jobs/emergency
func (h *JobsHandler) RunEmergency(c echo.Context) error {
	return h.run(c, service.TierEmergency, func(ctx context.Context) (any, error) {
		return h.container.Emergency.Run(ctx)
	})
}

// RunRetention triggers the check-in history retention sweep
// POST /jobs/retention
func (h *JobsHandler) RunRetention(c echo.Context) error {
	return h.run(c, service.JobRetention, func(ctx context.Context) (any, error) {
		return h.container.Retention.Run(ctx)
	})
}

// run wraps a job invocation with the overlap lock, metrics and the common
// response contract: 200 with a summary, or 500 with the error message. Any
// failure aborts the remainder of that invocation's work; the next scheduled
// tick is the only retry path.
func (h *JobsHandler) run(c echo.Context, job string, fn func(context.Context) (any, error)) error {
	components := h.container.Components

	ctx := c.Request().Context()
	if requestID := c.Response().Header().Get(echo.HeaderXRequestID); requestID != "" {
		ctx = clients.WithRequestID(ctx, requestID)
	}

	release, acquired := h.container.JobLock.Acquire(ctx, job)
	if !acquired {
		components.Metrics.IncJobRuns(job, "skipped")
		return c.JSON(http.StatusOK, echo.Map{
			"success": true,
			"job":     job,
			"skipped": true,
		})
	}
	defer release()

	start := time.Now()
	result, err := fn(ctx)
	components.Metrics.ObserveJobDuration(job, time.Since(start))

	if err != nil {
		components.Metrics.IncJobRuns(job, "error")
		components.Logger.Error("job invocation failed", "job", job, "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	components.Metrics.IncJobRuns(job, "success")
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"result":  result,
	})
}
