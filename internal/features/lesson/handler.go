package lesson

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mo-amir99/techboost-server-go/pkg/apperrors"
	"github.com/mo-amir99/techboost-server-go/pkg/request"
	"github.com/mo-amir99/techboost-server-go/pkg/response"
)

// Handler processes lesson HTTP requests.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewHandler constructs a lesson handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger) *Handler {
	return &Handler{db: db, logger: logger}
}

// GetByID fetches a single lesson.
func (h *Handler) GetByID(c *gin.Context) {
	lessonID, err := request.UUIDParam(c, "lessonId")
	if err != nil {
		_ = c.Error(err)
		return
	}

	lesson, err := Get(h.db.WithContext(c.Request.Context()), lessonID)
	if err != nil {
		RespondError(h.logger, c, err)
		return
	}

	response.Success(c, http.StatusOK, lesson, "", nil)
}

// RespondError maps lesson errors to HTTP responses. Shared with the course
// handler, which creates lessons on behalf of a course.
func RespondError(logger *slog.Logger, c *gin.Context, err error) {
	var appErr error
	switch {
	case errors.Is(err, ErrLessonNotFound):
		appErr = apperrors.NotFound("Lesson not found")
	case errors.Is(err, ErrTitleRequired):
		appErr = apperrors.Validation("Title is required")
	case errors.Is(err, ErrTitleLength):
		appErr = apperrors.Validation("Title cannot exceed 200 characters")
	case errors.Is(err, ErrCourseRequired):
		appErr = apperrors.Validation("CourseId is required")
	case errors.Is(err, ErrOrderInvalid):
		appErr = apperrors.Validation("Lesson order cannot be negative")
	default:
		appErr = apperrors.FromStore(err)
	}

	response.FromError(logger, c, wrapCause(appErr, err))
}

// wrapCause keeps the original error for logging while returning the client-facing AppError.
func wrapCause(appErr, cause error) error {
	var typed *apperrors.AppError
	if errors.As(appErr, &typed) && typed.Unwrap() == nil && cause != nil {
		return apperrors.New(typed.Message(), typed.StatusCode(), typed.Code(), cause)
	}
	return appErr
}
