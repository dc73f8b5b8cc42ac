package enrollment

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mo-amir99/techboost-server-go/internal/features/course"
	"github.com/mo-amir99/techboost-server-go/internal/features/lesson"
	"github.com/mo-amir99/techboost-server-go/pkg/types"
)

// Catalog is the read side of courses and lessons the workflow needs.
// Missing records are reported with course.ErrCourseNotFound and lesson.ErrLessonNotFound.
type Catalog interface {
	CourseExists(ctx context.Context, courseID uuid.UUID) (bool, error)
	LessonCourse(ctx context.Context, lessonID uuid.UUID) (uuid.UUID, error)
	Sequence(ctx context.Context, courseID uuid.UUID) (types.IDList, error)
}

// GormCatalog reads the catalog tables.
type GormCatalog struct {
	db *gorm.DB
}

// NewGormCatalog creates a Catalog backed by db.
func NewGormCatalog(db *gorm.DB) *GormCatalog {
	return &GormCatalog{db: db}
}

// CourseExists implements Catalog.
func (c *GormCatalog) CourseExists(ctx context.Context, courseID uuid.UUID) (bool, error) {
	return course.Exists(c.db.WithContext(ctx), courseID)
}

// LessonCourse implements Catalog.
func (c *GormCatalog) LessonCourse(ctx context.Context, lessonID uuid.UUID) (uuid.UUID, error) {
	return lesson.CourseOf(c.db.WithContext(ctx), lessonID)
}

// Sequence implements Catalog.
func (c *GormCatalog) Sequence(ctx context.Context, courseID uuid.UUID) (types.IDList, error) {
	return course.Sequence(c.db.WithContext(ctx), courseID)
}

// Rederive sets the progress of each entry from its course's current sequence.
// Entries whose course no longer exists keep their stored progress.
func Rederive(ctx context.Context, catalog Catalog, entries []Entry) error {
	sequences := make(map[uuid.UUID]types.IDList)
	for i := range entries {
		courseID := entries[i].CourseID
		seq, ok := sequences[courseID]
		if !ok {
			var err error
			seq, err = catalog.Sequence(ctx, courseID)
			if errors.Is(err, course.ErrCourseNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			sequences[courseID] = seq
		}
		entries[i].Progress = Derive(entries[i].CompletedLessons, seq)
	}
	return nil
}
