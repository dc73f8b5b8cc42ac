package lesson

import "errors"

var (
	ErrLessonNotFound = errors.New("lesson not found")
	ErrTitleRequired  = errors.New("lesson title is required")
	ErrTitleLength    = errors.New("lesson title cannot exceed 200 characters")
	ErrCourseRequired = errors.New("lesson course is required")
	ErrOrderInvalid   = errors.New("lesson order cannot be negative")
)
