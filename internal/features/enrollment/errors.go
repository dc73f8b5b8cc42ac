package enrollment

import "errors"

var (
	ErrNotEnrolled = errors.New("user is not enrolled in this course")
)
