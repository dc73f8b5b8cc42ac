package statistic

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mo-amir99/techboost-server-go/pkg/apperrors"
	"github.com/mo-amir99/techboost-server-go/pkg/request"
	"github.com/mo-amir99/techboost-server-go/pkg/response"
	"github.com/mo-amir99/techboost-server-go/pkg/types"
)

// Handler processes statistic HTTP requests.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler constructs a statistic handler instance.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// List returns all statistics.
func (h *Handler) List(c *gin.Context) {
	stats, err := h.service.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, stats, "", nil)
}

// GetByCourse returns the statistic of one course.
func (h *Handler) GetByCourse(c *gin.Context) {
	courseID, err := request.UUIDParam(c, "courseId")
	if err != nil {
		_ = c.Error(err)
		return
	}

	stat, err := h.service.Get(c.Request.Context(), courseID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, stat, "", nil)
}

// Upsert creates or updates the statistic of a course with the provided fields.
func (h *Handler) Upsert(c *gin.Context) {
	courseID, err := request.UUIDParam(c, "courseId")
	if err != nil {
		_ = c.Error(err)
		return
	}

	var patch Patch
	if err := request.BindJSON(c, &patch); err != nil {
		_ = c.Error(err)
		return
	}

	stat, err := h.service.Upsert(c.Request.Context(), courseID, patch)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, stat, "", nil)
}

// UpdateCompletion overwrites the average completion of a course.
func (h *Handler) UpdateCompletion(c *gin.Context) {
	courseID, err := request.UUIDParam(c, "courseId")
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req struct {
		AverageCompletion *types.Percent `json:"averageCompletion"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.AverageCompletion == nil {
		_ = c.Error(apperrors.Validation("Average completion must be a number"))
		return
	}

	if err := h.service.UpdateAverageCompletion(c.Request.Context(), courseID, *req.AverageCompletion); err != nil {
		_ = c.Error(err)
		return
	}

	stat, err := h.service.Get(c.Request.Context(), courseID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, stat, "", nil)
}

// Reconcile rebuilds counters from enrollments.
func (h *Handler) Reconcile(c *gin.Context) {
	repaired, err := h.service.Reconcile(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.logger.Info("statistics reconciled on demand", slog.Int64("repaired", repaired))
	response.Success(c, http.StatusOK, gin.H{"repaired": repaired}, "Statistics reconciled", nil)
}
