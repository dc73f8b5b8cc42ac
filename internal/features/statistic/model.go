package statistic

import (
	"time"

	"github.com/google/uuid"

	"github.com/mo-amir99/techboost-server-go/pkg/types"
)

// Statistic holds the denormalized counters of one course.
type Statistic struct {
	types.BaseModel

	CourseID          uuid.UUID     `gorm:"type:uuid;not null;column:course_id;uniqueIndex:idx_statistics_course_id" json:"courseId"`
	TotalEnrollments  int64         `gorm:"type:bigint;not null;default:0;column:total_enrollments" json:"totalEnrollments"`
	AverageCompletion types.Percent `gorm:"type:numeric(5,2);not null;default:0;column:average_completion" json:"averageCompletion"`
	TotalView         int64         `gorm:"type:bigint;not null;default:0;column:total_view" json:"totalView"`
	LastUpdated       time.Time     `gorm:"not null;column:last_updated" json:"lastUpdated"`
}

// TableName overrides the default table name.
func (Statistic) TableName() string { return "statistics" }

// Patch lists the fields an upsert writes. Nil fields are left untouched
// on an existing row and start at zero on a new one.
type Patch struct {
	TotalEnrollments  *int64         `json:"totalEnrollments"`
	AverageCompletion *types.Percent `json:"averageCompletion"`
	TotalView         *int64         `json:"totalView"`
}

// Empty reports whether the patch writes no counter.
func (p Patch) Empty() bool {
	return p.TotalEnrollments == nil && p.AverageCompletion == nil && p.TotalView == nil
}
