package statistic

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mo-amir99/techboost-server-go/pkg/apperrors"
	"github.com/mo-amir99/techboost-server-go/pkg/cache"
	"github.com/mo-amir99/techboost-server-go/pkg/metrics"
	"github.com/mo-amir99/techboost-server-go/pkg/types"
)

const cacheName = "statistics"

// Service is the statistics aggregator. Reads go through the cache; every write
// invalidates the course's cache entry. Cache failures never fail a call.
type Service struct {
	store  Store
	cache  cache.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewService creates a Service. A nil cache or non-positive ttl disables caching.
func NewService(store Store, c cache.Client, ttl time.Duration, logger *slog.Logger) *Service {
	return &Service{store: store, cache: c, ttl: ttl, logger: logger}
}

// RecordView counts one course view.
func (s *Service) RecordView(ctx context.Context, courseID uuid.UUID) error {
	return s.write(ctx, courseID, func() error { return s.store.IncrementView(ctx, courseID) })
}

// RecordEnrollment counts one new enrollment.
func (s *Service) RecordEnrollment(ctx context.Context, courseID uuid.UUID) error {
	return s.write(ctx, courseID, func() error { return s.store.IncrementEnrollment(ctx, courseID) })
}

// RecomputeAverageCompletion refreshes the average from current enrollment progress.
func (s *Service) RecomputeAverageCompletion(ctx context.Context, courseID uuid.UUID) error {
	return s.write(ctx, courseID, func() error { return s.store.RecomputeAverage(ctx, courseID) })
}

// UpdateAverageCompletion stores a caller supplied average.
func (s *Service) UpdateAverageCompletion(ctx context.Context, courseID uuid.UUID, value types.Percent) error {
	if !value.InRange() {
		return apperrors.Validation("Average completion must be between 0 and 100")
	}
	return s.write(ctx, courseID, func() error { return s.store.SetAverage(ctx, courseID, value) })
}

// Upsert writes the provided fields of patch, creating the statistic if absent.
func (s *Service) Upsert(ctx context.Context, courseID uuid.UUID, patch Patch) (Statistic, error) {
	if err := validatePatch(patch); err != nil {
		return Statistic{}, err
	}

	var stat Statistic
	err := s.write(ctx, courseID, func() error {
		var err error
		stat, err = s.store.Upsert(ctx, courseID, patch)
		return err
	})
	return stat, err
}

// Get returns the statistic of a course. It is NotFound until the first write.
func (s *Service) Get(ctx context.Context, courseID uuid.UUID) (Statistic, error) {
	key := cacheKey(courseID)

	if s.cacheEnabled() {
		var cached Statistic
		err := cache.GetJSON(ctx, s.cache, key, &cached)
		switch {
		case err == nil:
			metrics.RecordCacheResult(cacheName, true)
			return cached, nil
		case errors.Is(err, cache.ErrMiss):
			metrics.RecordCacheResult(cacheName, false)
		default:
			metrics.RecordCacheResult(cacheName, false)
			s.logger.Warn("statistics cache read failed", slog.String("key", key), slog.String("error", err.Error()))
		}
	}

	stat, err := s.store.Get(ctx, courseID)
	if err != nil {
		if errors.Is(err, ErrStatisticNotFound) {
			return Statistic{}, apperrors.NotFound("Statistic not found")
		}
		return Statistic{}, apperrors.FromStore(err)
	}

	if s.cacheEnabled() {
		if err := cache.SetJSON(ctx, s.cache, key, stat, s.ttl); err != nil {
			s.logger.Warn("statistics cache write failed", slog.String("key", key), slog.String("error", err.Error()))
		}
	}

	return stat, nil
}

// List returns every statistic.
func (s *Service) List(ctx context.Context) ([]Statistic, error) {
	stats, err := s.store.List(ctx)
	if err != nil {
		return nil, apperrors.FromStore(err)
	}
	return stats, nil
}

// Reconcile rebuilds enrollment counters and averages from the enrollments table.
func (s *Service) Reconcile(ctx context.Context) (int64, error) {
	repaired, err := s.store.Reconcile(ctx)
	if err != nil {
		return 0, apperrors.FromStore(err)
	}
	if repaired == 0 || !s.cacheEnabled() {
		return repaired, nil
	}

	stats, err := s.store.List(ctx)
	if err != nil {
		s.logger.Warn("statistics cache flush skipped", slog.String("error", err.Error()))
		return repaired, nil
	}
	keys := make([]string, len(stats))
	for i, stat := range stats {
		keys[i] = cacheKey(stat.CourseID)
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Warn("statistics cache flush failed", slog.String("error", err.Error()))
	}

	return repaired, nil
}

func (s *Service) write(ctx context.Context, courseID uuid.UUID, op func() error) error {
	if err := op(); err != nil {
		return apperrors.FromStore(err)
	}
	s.invalidate(ctx, courseID)
	return nil
}

func (s *Service) invalidate(ctx context.Context, courseID uuid.UUID) {
	if !s.cacheEnabled() {
		return
	}
	if err := s.cache.Delete(ctx, cacheKey(courseID)); err != nil {
		s.logger.Warn("statistics cache invalidation failed",
			slog.String("courseId", courseID.String()),
			slog.String("error", err.Error()),
		)
	}
}

func (s *Service) cacheEnabled() bool {
	return s.cache != nil && s.ttl > 0
}

func validatePatch(p Patch) error {
	if (p.TotalEnrollments != nil && *p.TotalEnrollments < 0) || (p.TotalView != nil && *p.TotalView < 0) {
		return apperrors.Validation("Counters cannot be negative")
	}
	if p.AverageCompletion != nil && !p.AverageCompletion.InRange() {
		return apperrors.Validation("Average completion must be between 0 and 100")
	}
	return nil
}

func cacheKey(courseID uuid.UUID) string {
	return "statistics:course:" + courseID.String()
}
