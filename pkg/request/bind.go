package request

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mo-amir99/techboost-server-go/pkg/apperrors"
	"github.com/mo-amir99/techboost-server-go/pkg/validation"
)

// BindJSON decodes and validates the body into dst, reporting failures as validation errors.
func BindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.Validation("Request body is required")
		}
		if fields := validation.FieldErrors(err); len(fields) > 0 {
			return apperrors.Validation("Invalid request body").WithFields(fields)
		}
		return apperrors.New("Invalid request body", http.StatusBadRequest, apperrors.ErrValidation, err)
	}
	return nil
}

// UUIDParam parses a path parameter as a UUID. A missing value reports
// "<name> is required"; a malformed one reports "Invalid <name>".
func UUIDParam(c *gin.Context, name string) (uuid.UUID, error) {
	return ParseUUID(c.Param(name), name)
}

// ParseUUID parses raw as a UUID, naming the field in any error.
func ParseUUID(raw, name string) (uuid.UUID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return uuid.Nil, apperrors.Validation(displayName(name) + " is required")
	}
	id, err := uuid.Parse(trimmed)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, apperrors.Validation("Invalid " + name)
	}
	return id, nil
}

func displayName(name string) string {
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
