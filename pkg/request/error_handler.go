package request

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mo-amir99/techboost-server-go/pkg/apperrors"
	"github.com/mo-amir99/techboost-server-go/pkg/response"
)

// Handler returns a middleware that standardises error responses across handlers.
// Handlers push failures with c.Error and return; the first error decides the response.
func Handler(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := errors.Join(errorsFromContext(c.Errors)...)
		if err == nil {
			return
		}

		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			response.ErrorWithLog(logger, c, appErr.StatusCode(), appErr.Message(), err)
			return
		}

		response.FromError(logger, c, classify(err))
	}
}

func errorsFromContext(errs []*gin.Error) []error {
	list := make([]error, 0, len(errs))
	for _, item := range errs {
		if item != nil && item.Err != nil {
			list = append(list, item.Err)
		}
	}
	return list
}

func classify(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.New("Resource not found", http.StatusNotFound, apperrors.ErrNotFound, err)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Transient(err)
	case strings.Contains(err.Error(), "invalid input syntax for type uuid"):
		return apperrors.New("Invalid ID format", http.StatusBadRequest, apperrors.ErrValidation, err)
	}

	return apperrors.FromStore(err)
}
