package statistic

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mo-amir99/techboost-server-go/pkg/types"
)

// Store is the persistence contract of the aggregator. Every write is a
// single upsert keyed by course_id so concurrent callers never lose increments.
type Store interface {
	IncrementView(ctx context.Context, courseID uuid.UUID) error
	IncrementEnrollment(ctx context.Context, courseID uuid.UUID) error
	RecomputeAverage(ctx context.Context, courseID uuid.UUID) error
	SetAverage(ctx context.Context, courseID uuid.UUID, value types.Percent) error
	Upsert(ctx context.Context, courseID uuid.UUID, patch Patch) (Statistic, error)
	Get(ctx context.Context, courseID uuid.UUID) (Statistic, error)
	List(ctx context.Context) ([]Statistic, error)
	Reconcile(ctx context.Context) (int64, error)
}

// averageSQL is the mean progress of a course's enrollments, 0 when there are none.
const averageSQL = `(SELECT COALESCE(ROUND(AVG(progress)::numeric, 2), 0) FROM enrollments WHERE course_id = @course)`

const incrementEnrollmentSQL = `INSERT INTO statistics (course_id, total_enrollments, average_completion, total_view, last_updated, created_at, updated_at)
VALUES (@course, 1, ` + averageSQL + `, 0, @now, @now, @now)
ON CONFLICT (course_id) DO UPDATE SET
	total_enrollments = statistics.total_enrollments + 1,
	average_completion = EXCLUDED.average_completion,
	last_updated = EXCLUDED.last_updated,
	updated_at = EXCLUDED.updated_at`

const recomputeAverageSQL = `INSERT INTO statistics (course_id, total_enrollments, average_completion, total_view, last_updated, created_at, updated_at)
VALUES (@course, (SELECT COUNT(*) FROM enrollments WHERE course_id = @course), ` + averageSQL + `, 0, @now, @now, @now)
ON CONFLICT (course_id) DO UPDATE SET
	average_completion = EXCLUDED.average_completion,
	last_updated = EXCLUDED.last_updated,
	updated_at = EXCLUDED.updated_at`

const reconcileSQL = `INSERT INTO statistics (course_id, total_enrollments, average_completion, total_view, last_updated, created_at, updated_at)
SELECT e.course_id, COUNT(*), COALESCE(ROUND(AVG(e.progress)::numeric, 2), 0), 0, @now, @now, @now
FROM enrollments e
GROUP BY e.course_id
ON CONFLICT (course_id) DO UPDATE SET
	total_enrollments = EXCLUDED.total_enrollments,
	average_completion = EXCLUDED.average_completion,
	last_updated = EXCLUDED.last_updated,
	updated_at = EXCLUDED.updated_at
WHERE statistics.total_enrollments IS DISTINCT FROM EXCLUDED.total_enrollments
	OR statistics.average_completion IS DISTINCT FROM EXCLUDED.average_completion`

// GormStore is the postgres Store.
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormStore creates a Store backed by db.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db, now: time.Now}
}

// IncrementView implements Store.
func (s *GormStore) IncrementView(ctx context.Context, courseID uuid.UUID) error {
	return incrementView(s.db.WithContext(ctx), courseID, s.now().UTC()).Error
}

// IncrementEnrollment implements Store. The average is refreshed in the same
// statement because the new entry starts at 0%.
func (s *GormStore) IncrementEnrollment(ctx context.Context, courseID uuid.UUID) error {
	return s.db.WithContext(ctx).Exec(incrementEnrollmentSQL, namedArgs(courseID, s.now().UTC())).Error
}

// RecomputeAverage implements Store.
func (s *GormStore) RecomputeAverage(ctx context.Context, courseID uuid.UUID) error {
	return s.db.WithContext(ctx).Exec(recomputeAverageSQL, namedArgs(courseID, s.now().UTC())).Error
}

// SetAverage implements Store.
func (s *GormStore) SetAverage(ctx context.Context, courseID uuid.UUID, value types.Percent) error {
	return upsert(s.db.WithContext(ctx), courseID, Patch{AverageCompletion: &value}, s.now().UTC()).Error
}

// Upsert implements Store.
func (s *GormStore) Upsert(ctx context.Context, courseID uuid.UUID, patch Patch) (Statistic, error) {
	var stat Statistic
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := upsert(tx, courseID, patch, s.now().UTC()).Error; err != nil {
			return err
		}
		return tx.Where("course_id = ?", courseID).Take(&stat).Error
	})
	return stat, err
}

// Get implements Store.
func (s *GormStore) Get(ctx context.Context, courseID uuid.UUID) (Statistic, error) {
	var stat Statistic
	if err := s.db.WithContext(ctx).Where("course_id = ?", courseID).Take(&stat).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return stat, ErrStatisticNotFound
		}
		return stat, err
	}
	return stat, nil
}

// List implements Store.
func (s *GormStore) List(ctx context.Context) ([]Statistic, error) {
	stats := make([]Statistic, 0)
	err := s.db.WithContext(ctx).Order("last_updated DESC").Find(&stats).Error
	return stats, err
}

// Reconcile implements Store. It returns the number of rows it created or repaired.
func (s *GormStore) Reconcile(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).Exec(reconcileSQL, map[string]interface{}{"now": s.now().UTC()})
	return result.RowsAffected, result.Error
}

func namedArgs(courseID uuid.UUID, now time.Time) map[string]interface{} {
	return map[string]interface{}{"course": courseID, "now": now}
}

func incrementView(db *gorm.DB, courseID uuid.UUID, now time.Time) *gorm.DB {
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "course_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"total_view":   gorm.Expr("statistics.total_view + 1"),
			"last_updated": now,
			"updated_at":   now,
		}),
	}).Create(&Statistic{CourseID: courseID, TotalView: 1, LastUpdated: now})
}

func upsert(db *gorm.DB, courseID uuid.UUID, patch Patch, now time.Time) *gorm.DB {
	stat := Statistic{CourseID: courseID, LastUpdated: now}
	columns := make([]string, 0, 5)

	if patch.TotalEnrollments != nil {
		stat.TotalEnrollments = *patch.TotalEnrollments
		columns = append(columns, "total_enrollments")
	}
	if patch.AverageCompletion != nil {
		stat.AverageCompletion = *patch.AverageCompletion
		columns = append(columns, "average_completion")
	}
	if patch.TotalView != nil {
		stat.TotalView = *patch.TotalView
		columns = append(columns, "total_view")
	}
	columns = append(columns, "last_updated", "updated_at")

	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "course_id"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(&stat)
}
