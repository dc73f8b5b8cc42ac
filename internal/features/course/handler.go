package course

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mo-amir99/techboost-server-go/internal/features/lesson"
	"github.com/mo-amir99/techboost-server-go/internal/middleware"
	"github.com/mo-amir99/techboost-server-go/pkg/apperrors"
	"github.com/mo-amir99/techboost-server-go/pkg/metrics"
	"github.com/mo-amir99/techboost-server-go/pkg/pagination"
	"github.com/mo-amir99/techboost-server-go/pkg/request"
	"github.com/mo-amir99/techboost-server-go/pkg/response"
)

const (
	listMaxAge        = 60
	viewRecordTimeout = 2 * time.Second
)

// ViewRecorder counts course detail views.
type ViewRecorder interface {
	RecordView(ctx context.Context, courseID uuid.UUID) error
}

// Handler processes course HTTP requests.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
	views  ViewRecorder
}

// NewHandler constructs a course handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger, views ViewRecorder) *Handler {
	return &Handler{
		db:     db,
		logger: logger,
		views:  views,
	}
}

// List returns paginated courses.
func (h *Handler) List(c *gin.Context) {
	params := pagination.Extract(c)

	courses, total, err := List(h.db.WithContext(c.Request.Context()), ListFilters{
		Keyword:  c.Query("filterKeyword"),
		Level:    c.Query("level"),
		Language: c.Query("language"),
	}, params)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.SuccessWithCache(c, http.StatusOK, courses, "", listMaxAge, pagination.MetadataFrom(total, params))
}

// GetByID returns a course with its lessons and records a view.
func (h *Handler) GetByID(c *gin.Context) {
	courseID, err := request.UUIDParam(c, "courseId")
	if err != nil {
		_ = c.Error(err)
		return
	}

	detail, err := GetDetail(h.db.WithContext(c.Request.Context()), courseID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.recordView(c.Request.Context(), courseID)

	response.Success(c, http.StatusOK, detail, "", nil)
}

// Lessons returns the lessons of a course in sequence order.
func (h *Handler) Lessons(c *gin.Context) {
	courseID, err := request.UUIDParam(c, "courseId")
	if err != nil {
		_ = c.Error(err)
		return
	}

	detail, err := GetDetail(h.db.WithContext(c.Request.Context()), courseID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, detail.LessonDetails, "", nil)
}

// Create inserts a new course.
func (h *Handler) Create(c *gin.Context) {
	identity, err := middleware.MustIdentity(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req struct {
		Title       string     `json:"title" binding:"required,notblank"`
		Level       *string    `json:"level"`
		Language    *string    `json:"language"`
		Image       *string    `json:"image"`
		Description *string    `json:"description"`
		Categories  []Category `json:"categories"`
		Flags       []string   `json:"flags"`
	}
	if err := request.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	course, err := Create(h.db.WithContext(c.Request.Context()), CreateInput{
		Title:       req.Title,
		Level:       req.Level,
		Language:    req.Language,
		Image:       req.Image,
		Description: req.Description,
		CreatedBy:   &identity.UserID,
		Categories:  req.Categories,
		Flags:       req.Flags,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Created(c, course, "Course created")
}

// CreateLesson adds a lesson at the end of the course sequence.
func (h *Handler) CreateLesson(c *gin.Context) {
	courseID, err := request.UUIDParam(c, "courseId")
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req struct {
		Title     string  `json:"title" binding:"required,notblank"`
		Content   *string `json:"content"`
		Order     *int    `json:"order"`
		VideoLink *string `json:"linkvideo"`
	}
	if err := request.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	created, err := AddLesson(h.db.WithContext(c.Request.Context()), courseID, lesson.CreateInput{
		Title:     req.Title,
		Content:   req.Content,
		Order:     req.Order,
		VideoLink: req.VideoLink,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Created(c, created, "Lesson created")
}

func (h *Handler) recordView(ctx context.Context, courseID uuid.UUID) {
	if h.views == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), viewRecordTimeout)
	defer cancel()

	if err := h.views.RecordView(ctx, courseID); err != nil {
		metrics.RecordStatisticsFailure("record_view")
		h.logger.Warn("failed to record course view",
			slog.String("courseId", courseID.String()),
			slog.String("error", err.Error()),
		)
	}
}

func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrCourseNotFound):
		response.FromError(h.logger, c, apperrors.NotFound("Course not found"))
	case errors.Is(err, ErrTitleRequired):
		response.FromError(h.logger, c, apperrors.Validation("Title is required"))
	case errors.Is(err, ErrCategoryTitle):
		response.FromError(h.logger, c, apperrors.Validation("Category title is required"))
	default:
		lesson.RespondError(h.logger, c, err)
	}
}
