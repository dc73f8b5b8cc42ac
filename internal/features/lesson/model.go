package lesson

import (
	"errors"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mo-amir99/techboost-server-go/pkg/types"
)

const maxTitleLength = 200

// Lesson represents a lesson within a course.
type Lesson struct {
	types.BaseModel

	CourseID  uuid.UUID `gorm:"type:uuid;not null;column:course_id;index" json:"courseId"`
	Title     string    `gorm:"type:varchar(200);not null" json:"title"`
	Content   *string   `gorm:"type:text" json:"content,omitempty"`
	Order     int       `gorm:"type:int;not null;default:0" json:"order"`
	VideoLink *string   `gorm:"type:text;column:video_link" json:"linkvideo,omitempty"`
}

// TableName overrides the default table name.
func (Lesson) TableName() string { return "lessons" }

// CreateInput carries data for creating a new lesson.
type CreateInput struct {
	CourseID  uuid.UUID
	Title     string
	Content   *string
	Order     *int
	VideoLink *string
}

// Get retrieves a lesson by ID.
func Get(db *gorm.DB, id uuid.UUID) (Lesson, error) {
	var lesson Lesson
	if err := db.First(&lesson, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return lesson, ErrLessonNotFound
		}
		return lesson, err
	}
	return lesson, nil
}

// CourseOf returns the course a lesson belongs to.
func CourseOf(db *gorm.DB, id uuid.UUID) (uuid.UUID, error) {
	var row struct {
		CourseID uuid.UUID
	}
	err := db.Model(&Lesson{}).Select("course_id").Where("id = ?", id).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, ErrLessonNotFound
		}
		return uuid.Nil, err
	}
	return row.CourseID, nil
}

// GetByCourse retrieves all lessons for a course.
func GetByCourse(db *gorm.DB, courseID uuid.UUID) ([]Lesson, error) {
	var lessons []Lesson
	err := db.Where("course_id = ?", courseID).
		Order("\"order\" ASC, title ASC").
		Find(&lessons).Error
	return lessons, err
}

// Create inserts a new lesson. The caller owns the course sequence update.
func Create(db *gorm.DB, input CreateInput) (Lesson, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return Lesson{}, ErrTitleRequired
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return Lesson{}, ErrTitleLength
	}
	if input.CourseID == uuid.Nil {
		return Lesson{}, ErrCourseRequired
	}

	order := 0
	if input.Order != nil {
		if *input.Order < 0 {
			return Lesson{}, ErrOrderInvalid
		}
		order = *input.Order
	}

	lesson := Lesson{
		CourseID:  input.CourseID,
		Title:     title,
		Content:   trimmedOrNil(input.Content),
		Order:     order,
		VideoLink: trimmedOrNil(input.VideoLink),
	}

	if err := db.Create(&lesson).Error; err != nil {
		return Lesson{}, err
	}

	return lesson, nil
}

// SortBySequence orders lessons by their position in sequence. Lessons missing
// from the sequence keep their relative order and go last.
func SortBySequence(lessons []Lesson, sequence types.IDList) {
	if len(sequence) == 0 || len(lessons) <= 1 {
		return
	}

	indexByID := make(map[uuid.UUID]int, len(sequence))
	for idx, id := range sequence {
		if _, seen := indexByID[id]; !seen {
			indexByID[id] = idx
		}
	}

	sort.SliceStable(lessons, func(i, j int) bool {
		posI, okI := indexByID[lessons[i].ID]
		posJ, okJ := indexByID[lessons[j].ID]

		switch {
		case okI && okJ:
			return posI < posJ
		case okI:
			return true
		case okJ:
			return false
		}
		return lessons[i].Order < lessons[j].Order
	})
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
