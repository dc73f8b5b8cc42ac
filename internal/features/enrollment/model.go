package enrollment

import (
	"time"

	"github.com/google/uuid"

	"github.com/mo-amir99/techboost-server-go/pkg/types"
)

// Entry is one user's enrollment in one course. CompletedLessons is scoped to the course.
type Entry struct {
	types.BaseModel

	UserID           uuid.UUID    `gorm:"type:uuid;not null;column:user_id;uniqueIndex:idx_enrollments_user_course" json:"userId"`
	CourseID         uuid.UUID    `gorm:"type:uuid;not null;column:course_id;uniqueIndex:idx_enrollments_user_course;index" json:"courseId"`
	Progress         int          `gorm:"type:int;not null;default:0;check:chk_enrollments_progress,progress >= 0 AND progress <= 100" json:"progress"`
	CompletedLessons types.IDList `gorm:"type:uuid[];not null;default:'{}';column:completed_lessons" json:"completedLessons"`
	LastAccess       time.Time    `gorm:"not null;column:last_access" json:"lastAccess"`
}

// TableName overrides the default table name.
func (Entry) TableName() string { return "enrollments" }

// CompletionResult acknowledges a lesson completion.
type CompletionResult struct {
	CourseID         uuid.UUID    `json:"courseId"`
	Progress         int          `json:"progress"`
	CompletedLessons types.IDList `json:"completedLessons"`
	Changed          bool         `json:"changed"`
}

// Realtime events pushed to the user's room.
const (
	EventCourseEnrolled  = "courseEnrolled"
	EventLessonCompleted = "lessonCompleted"
)
