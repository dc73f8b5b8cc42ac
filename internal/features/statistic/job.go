package statistic

import (
	"context"
	"log/slog"
)

// ReconcileJob periodically rebuilds enrollment counters and averages so that
// best-effort updates lost after a commit do not drift forever.
type ReconcileJob struct {
	service *Service
	logger  *slog.Logger
}

// NewReconcileJob creates the statistics reconcile job.
func NewReconcileJob(service *Service, logger *slog.Logger) *ReconcileJob {
	return &ReconcileJob{service: service, logger: logger}
}

// Name implements jobs.Job.
func (j *ReconcileJob) Name() string { return "statistics_reconcile" }

// Execute implements jobs.Job.
func (j *ReconcileJob) Execute(ctx context.Context) error {
	repaired, err := j.service.Reconcile(ctx)
	if err != nil {
		return err
	}
	if repaired > 0 {
		j.logger.Info("statistics drift repaired", slog.Int64("rows", repaired))
	}
	return nil
}
