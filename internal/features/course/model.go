package course

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/mo-amir99/techboost-server-go/internal/features/lesson"
	"github.com/mo-amir99/techboost-server-go/pkg/pagination"
	"github.com/mo-amir99/techboost-server-go/pkg/types"
)

// Course represents a catalog course. Lessons holds the ordered lesson sequence.
type Course struct {
	types.BaseModel

	Title       string         `gorm:"type:varchar(200);not null" json:"title"`
	Level       *string        `gorm:"type:varchar(50)" json:"level,omitempty"`
	Language    *string        `gorm:"type:varchar(50)" json:"language,omitempty"`
	Image       *string        `gorm:"type:text" json:"image,omitempty"`
	Description *string        `gorm:"type:text" json:"description,omitempty"`
	CreatedBy   *uuid.UUID     `gorm:"type:uuid;column:created_by" json:"createdBy,omitempty"`
	Categories  Categories     `gorm:"type:jsonb;not null;default:'[]'" json:"categories"`
	Flags       pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"flags"`
	Lessons     types.IDList   `gorm:"type:uuid[];not null;default:'{}'" json:"lessons"`
}

// TableName overrides the default table name.
func (Course) TableName() string { return "courses" }

// Category is a display tag attached to a course.
type Category struct {
	Title string `json:"title"`
	Icon  string `json:"icon,omitempty"`
}

// Categories is stored as a jsonb array.
type Categories []Category

// Value implements driver.Valuer.
func (c Categories) Value() (driver.Value, error) {
	if c == nil {
		return "[]", nil
	}
	raw, err := json.Marshal([]Category(c))
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Scan implements sql.Scanner.
func (c *Categories) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*c = Categories{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("course.Categories: unsupported type %T", value)
	}

	var out []Category
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("course.Categories: %w", err)
	}
	if out == nil {
		out = []Category{}
	}
	*c = out
	return nil
}

// Detail is a course with its lessons resolved in sequence order.
type Detail struct {
	Course
	LessonDetails []lesson.Lesson `json:"lessonDetails"`
}

// ListFilters defines course query filters.
type ListFilters struct {
	Keyword  string
	Level    string
	Language string
}

// CreateInput carries data for creating a new course.
type CreateInput struct {
	Title       string
	Level       *string
	Language    *string
	Image       *string
	Description *string
	CreatedBy   *uuid.UUID
	Categories  []Category
	Flags       []string
}

func (f ListFilters) apply(query *gorm.DB) *gorm.DB {
	if keyword := strings.TrimSpace(f.Keyword); keyword != "" {
		like := "%" + strings.ToLower(keyword) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	if level := strings.TrimSpace(f.Level); level != "" {
		query = query.Where("LOWER(level) = ?", strings.ToLower(level))
	}
	if language := strings.TrimSpace(f.Language); language != "" {
		query = query.Where("LOWER(language) = ?", strings.ToLower(language))
	}
	return query
}

// List retrieves paginated courses with filters.
func List(db *gorm.DB, filters ListFilters, params pagination.Params) ([]Course, int64, error) {
	var total int64
	if err := filters.apply(db.Model(&Course{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var courses []Course
	err := filters.apply(db.Model(&Course{})).
		Order("created_at DESC").
		Scopes(params.Scope).
		Find(&courses).Error

	return courses, total, err
}

// Get retrieves a course by ID.
func Get(db *gorm.DB, id uuid.UUID) (Course, error) {
	var course Course
	if err := db.First(&course, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return course, ErrCourseNotFound
		}
		return course, err
	}
	return course, nil
}

// GetDetail loads a course and its lessons ordered by the course sequence.
func GetDetail(db *gorm.DB, id uuid.UUID) (Detail, error) {
	course, err := Get(db, id)
	if err != nil {
		return Detail{}, err
	}

	lessons, err := lesson.GetByCourse(db, id)
	if err != nil {
		return Detail{}, err
	}
	lesson.SortBySequence(lessons, course.Lessons)

	return Detail{Course: course, LessonDetails: lessons}, nil
}

// Exists reports whether a course with id exists.
func Exists(db *gorm.DB, id uuid.UUID) (bool, error) {
	var count int64
	if err := db.Model(&Course{}).Where("id = ?", id).Limit(1).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Sequence returns the ordered lesson ids of a course.
func Sequence(db *gorm.DB, id uuid.UUID) (types.IDList, error) {
	var row struct {
		Lessons types.IDList
	}
	err := db.Model(&Course{}).Select("lessons").Where("id = ?", id).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	if row.Lessons == nil {
		row.Lessons = types.IDList{}
	}
	return row.Lessons, nil
}

// Create inserts a new course with an empty lesson sequence.
func Create(db *gorm.DB, input CreateInput) (Course, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return Course{}, ErrTitleRequired
	}

	categories := make(Categories, 0, len(input.Categories))
	for _, category := range input.Categories {
		name := strings.TrimSpace(category.Title)
		if name == "" {
			return Course{}, ErrCategoryTitle
		}
		categories = append(categories, Category{Title: name, Icon: strings.TrimSpace(category.Icon)})
	}

	flags := make(pq.StringArray, 0, len(input.Flags))
	for _, flag := range input.Flags {
		if trimmed := strings.TrimSpace(flag); trimmed != "" {
			flags = append(flags, trimmed)
		}
	}

	course := Course{
		Title:       title,
		Level:       trimmedOrNil(input.Level),
		Language:    trimmedOrNil(input.Language),
		Image:       trimmedOrNil(input.Image),
		Description: trimmedOrNil(input.Description),
		CreatedBy:   input.CreatedBy,
		Categories:  categories,
		Flags:       flags,
		Lessons:     types.IDList{},
	}

	if err := db.Create(&course).Error; err != nil {
		return Course{}, err
	}

	return course, nil
}

// AddLesson creates a lesson and appends it to the course sequence in one transaction.
func AddLesson(db *gorm.DB, courseID uuid.UUID, input lesson.CreateInput) (lesson.Lesson, error) {
	var created lesson.Lesson
	err := db.Transaction(func(tx *gorm.DB) error {
		exists, err := Exists(tx, courseID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrCourseNotFound
		}

		input.CourseID = courseID
		created, err = lesson.Create(tx, input)
		if err != nil {
			return err
		}

		return AppendLessonID(tx, courseID, created.ID)
	})
	return created, err
}

// AppendLessonID appends a lesson ID to the course sequence.
func AppendLessonID(db *gorm.DB, courseID, lessonID uuid.UUID) error {
	return db.Exec(`UPDATE courses SET lessons = array_append(COALESCE(lessons, '{}'::uuid[]), ?), updated_at = NOW() WHERE id = ?`, lessonID, courseID).Error
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
