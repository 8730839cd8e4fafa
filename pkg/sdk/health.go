package docsearch

import (
	"context"

	healthuc "github.com/kailas-cloud/docsearch/internal/usecase/health"
)

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            // "ok" or "degraded"
	Checks map[string]string // component: "ok"/"error"
}

// Health pings the document store. A closed client reports degraded.
func (c *Client) Health(ctx context.Context) HealthStatus {
	release, err := c.acquire()
	if err != nil {
		return HealthStatus{
			Status: string(healthuc.Degraded),
			Checks: map[string]string{healthuc.CheckDatabase: string(healthuc.CheckError)},
		}
	}
	defer release()

	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status: string(report.Status),
		Checks: checks,
	}
}

// healthUseCase is the internal interface for health checks.
type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}
