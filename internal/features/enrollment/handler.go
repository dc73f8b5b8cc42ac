package enrollment

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mo-amir99/techboost-server-go/internal/middleware"
	"github.com/mo-amir99/techboost-server-go/pkg/apperrors"
	"github.com/mo-amir99/techboost-server-go/pkg/request"
	"github.com/mo-amir99/techboost-server-go/pkg/response"
)

// Handler processes enrollment HTTP requests.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler constructs an enrollment handler instance.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Enroll enrolls the caller in the course named by the path.
func (h *Handler) Enroll(c *gin.Context) {
	identity, err := middleware.MustIdentity(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	courseID, err := request.UUIDParam(c, "courseId")
	if err != nil {
		_ = c.Error(err)
		return
	}

	entry, err := h.service.Enroll(c.Request.Context(), identity.UserID, courseID)
	if err != nil {
		// Conflict is rendered as 400.
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Code() == apperrors.ErrConflict {
			h.logger.Debug("duplicate enrollment rejected",
				slog.String("userId", identity.UserID.String()),
				slog.String("courseId", courseID.String()),
			)
			err = appErr.WithStatus(http.StatusBadRequest)
		}
		_ = c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, entry, "Successfully enrolled in course", nil)
}

// CompleteLesson marks the lesson in the body as completed for the caller.
func (h *Handler) CompleteLesson(c *gin.Context) {
	identity, err := middleware.MustIdentity(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req struct {
		LessonID string `json:"lessonId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		_ = c.Error(apperrors.New("Invalid request body", http.StatusBadRequest, apperrors.ErrValidation, err))
		return
	}

	lessonID, err := request.ParseUUID(req.LessonID, "lessonId")
	if err != nil {
		_ = c.Error(err)
		return
	}

	result, err := h.service.CompleteLesson(c.Request.Context(), identity.UserID, lessonID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, result, "Lesson marked as completed", nil)
}

// Mine lists the caller's enrollments.
func (h *Handler) Mine(c *gin.Context) {
	identity, err := middleware.MustIdentity(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	entries, err := h.service.Enrollments(c.Request.Context(), identity.UserID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.SuccessNoCache(c, http.StatusOK, entries, "")
}
