package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mo-amir99/techboost-server-go/internal/features/user"
	"github.com/mo-amir99/techboost-server-go/pkg/apperrors"
	"github.com/mo-amir99/techboost-server-go/pkg/request"
	"github.com/mo-amir99/techboost-server-go/pkg/response"
)

// Handler processes authentication HTTP requests.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
	tokens TokenConfig
}

// NewHandler constructs an auth handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger, tokens TokenConfig) *Handler {
	return &Handler{
		db:     db,
		logger: logger,
		tokens: tokens,
	}
}

// Register creates a new user account.
func (h *Handler) Register(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required,notblank,max=100"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
	}
	if err := request.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	authResp, err := Register(h.db.WithContext(c.Request.Context()), RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	}, h.tokens)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.logger.Info("user registered", slog.String("userId", authResp.User.ID.String()))
	response.Created(c, authResp, "User registered successfully")
}

// Login authenticates a user by email and password.
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := request.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	authResp, err := Login(h.db.WithContext(c.Request.Context()), LoginInput{
		Email:    req.Email,
		Password: req.Password,
	}, h.tokens)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.SuccessNoCache(c, http.StatusOK, authResp, "Login successful")
}

func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		h.logger.Info("login rejected", slog.String("ip", c.ClientIP()))
		_ = c.Error(apperrors.Wrap(err, "Invalid email or password", http.StatusUnauthorized, apperrors.ErrUnauthorized))
	case errors.Is(err, ErrMissingFields):
		_ = c.Error(apperrors.Wrap(err, "Missing required fields", http.StatusBadRequest, apperrors.ErrValidation))
	default:
		_ = c.Error(user.ToAppError(err))
	}
}
