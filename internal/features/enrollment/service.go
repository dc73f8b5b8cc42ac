package enrollment

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mo-amir99/techboost-server-go/internal/features/course"
	"github.com/mo-amir99/techboost-server-go/internal/features/lesson"
	"github.com/mo-amir99/techboost-server-go/pkg/apperrors"
	"github.com/mo-amir99/techboost-server-go/pkg/metrics"
	"github.com/mo-amir99/techboost-server-go/pkg/types"
)

const defaultStatsTimeout = 2 * time.Second

// Statistics receives the derived counters of enrollments and completions.
type Statistics interface {
	RecordEnrollment(ctx context.Context, courseID uuid.UUID) error
	RecomputeAverageCompletion(ctx context.Context, courseID uuid.UUID) error
}

// Notifier pushes realtime events to a user.
type Notifier interface {
	Notify(userID uuid.UUID, event string, payload any)
}

// Service implements enrollment and lesson completion.
type Service struct {
	store        Store
	catalog      Catalog
	stats        Statistics
	notifier     Notifier
	logger       *slog.Logger
	now          func() time.Time
	statsTimeout time.Duration
}

// NewService wires the workflow. stats and notifier may be nil.
func NewService(store Store, catalog Catalog, stats Statistics, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{
		store:        store,
		catalog:      catalog,
		stats:        stats,
		notifier:     notifier,
		logger:       logger,
		now:          time.Now,
		statsTimeout: defaultStatsTimeout,
	}
}

// Enroll creates the (user, course) entry. A second call for the same pair is a Conflict.
func (s *Service) Enroll(ctx context.Context, userID, courseID uuid.UUID) (Entry, error) {
	exists, err := s.catalog.CourseExists(ctx, courseID)
	if err != nil {
		return Entry{}, apperrors.FromStore(err)
	}
	if !exists {
		return Entry{}, apperrors.NotFound("Course not found")
	}

	entry := Entry{
		UserID:           userID,
		CourseID:         courseID,
		Progress:         0,
		CompletedLessons: types.IDList{},
		LastAccess:       s.now().UTC(),
	}

	inserted, err := s.store.Insert(ctx, &entry)
	if err != nil {
		return Entry{}, apperrors.FromStore(err)
	}
	if !inserted {
		return Entry{}, apperrors.Conflict("Already enrolled in this course")
	}

	metrics.RecordEnrollment()
	s.logger.Info("user enrolled",
		slog.String("userId", userID.String()),
		slog.String("courseId", courseID.String()),
	)

	s.updateStatistics(ctx, "record_enrollment", courseID, func(ctx context.Context) error {
		return s.stats.RecordEnrollment(ctx, courseID)
	})
	s.notify(userID, EventCourseEnrolled, map[string]any{
		"courseId": courseID.String(),
		"progress": entry.Progress,
	})

	return entry, nil
}

// CompleteLesson adds lessonID to the caller's entry for the lesson's course and
// recomputes progress. Completing an already completed lesson adds nothing; its progress is
// only rewritten when the course sequence changed since it was stored.
func (s *Service) CompleteLesson(ctx context.Context, userID, lessonID uuid.UUID) (CompletionResult, error) {
	courseID, err := s.catalog.LessonCourse(ctx, lessonID)
	if err != nil {
		if errors.Is(err, lesson.ErrLessonNotFound) {
			return CompletionResult{}, apperrors.NotFound("Lesson not found")
		}
		return CompletionResult{}, apperrors.FromStore(err)
	}

	sequence, err := s.catalog.Sequence(ctx, courseID)
	if err != nil {
		if errors.Is(err, course.ErrCourseNotFound) {
			return CompletionResult{}, apperrors.NotFound("Course not found")
		}
		return CompletionResult{}, apperrors.FromStore(err)
	}

	added := false
	entry, persisted, err := s.store.Complete(ctx, userID, courseID, lessonID, func(e *Entry) bool {
		if !e.CompletedLessons.Contains(lessonID) {
			e.CompletedLessons = append(e.CompletedLessons, lessonID)
			added = true
		}
		progress := Derive(e.CompletedLessons, sequence)
		if !added && progress == e.Progress {
			return false
		}
		e.Progress = progress
		e.LastAccess = s.now().UTC()
		return true
	})
	if err != nil {
		if errors.Is(err, ErrNotEnrolled) {
			return CompletionResult{}, apperrors.Validation("You are not enrolled in this course")
		}
		return CompletionResult{}, apperrors.FromStore(err)
	}

	result := CompletionResult{
		CourseID:         courseID,
		Progress:         entry.Progress,
		CompletedLessons: entry.CompletedLessons,
		Changed:          added,
	}
	if result.CompletedLessons == nil {
		result.CompletedLessons = types.IDList{}
	}

	// A repeat completion still rewrites progress when the sequence has grown since.
	if persisted {
		s.updateStatistics(ctx, "recompute_average_completion", courseID, func(ctx context.Context) error {
			return s.stats.RecomputeAverageCompletion(ctx, courseID)
		})
	}
	if !added {
		return result, nil
	}

	metrics.RecordLessonCompletion()
	s.notify(userID, EventLessonCompleted, map[string]any{
		"courseId": courseID.String(),
		"lessonId": lessonID.String(),
		"progress": result.Progress,
	})

	return result, nil
}

// Enrollments lists the caller's entries with progress against each course's current sequence.
func (s *Service) Enrollments(ctx context.Context, userID uuid.UUID) ([]Entry, error) {
	entries, err := s.store.ListForUser(ctx, userID)
	if err != nil {
		return nil, apperrors.FromStore(err)
	}
	if err := Rederive(ctx, s.catalog, entries); err != nil {
		return nil, apperrors.FromStore(err)
	}
	return entries, nil
}

// updateStatistics runs after the primary write committed. Failures are logged and counted only.
func (s *Service) updateStatistics(ctx context.Context, operation string, courseID uuid.UUID, update func(context.Context) error) {
	if s.stats == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.statsTimeout)
	defer cancel()

	if err := update(ctx); err != nil {
		metrics.RecordStatisticsFailure(operation)
		s.logger.Warn("statistics update failed",
			slog.String("operation", operation),
			slog.String("courseId", courseID.String()),
			slog.String("error", err.Error()),
		)
	}
}

func (s *Service) notify(userID uuid.UUID, event string, payload any) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(userID, event, payload)
}
