package user

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mo-amir99/techboost-server-go/internal/features/enrollment"
	"github.com/mo-amir99/techboost-server-go/internal/middleware"
	"github.com/mo-amir99/techboost-server-go/pkg/apperrors"
	"github.com/mo-amir99/techboost-server-go/pkg/pagination"
	"github.com/mo-amir99/techboost-server-go/pkg/request"
	"github.com/mo-amir99/techboost-server-go/pkg/response"
	"github.com/mo-amir99/techboost-server-go/pkg/types"
)

// TokenIssuer signs a fresh access token for u.
type TokenIssuer func(u User) (string, error)

// Profile is the caller's own account with their enrollments.
type Profile struct {
	User
	EnrolledCourses []enrollment.Entry `json:"enrolledCourses"`
}

// Handler processes user HTTP requests.
type Handler struct {
	db         *gorm.DB
	logger     *slog.Logger
	issueToken TokenIssuer
	bcryptCost int
}

// NewHandler constructs a user handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger, issueToken TokenIssuer, bcryptCost int) *Handler {
	return &Handler{
		db:         db,
		logger:     logger,
		issueToken: issueToken,
		bcryptCost: bcryptCost,
	}
}

// Me returns the authenticated user with their enrollments.
func (h *Handler) Me(c *gin.Context) {
	identity, err := middleware.MustIdentity(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	db := h.db.WithContext(c.Request.Context())

	u, err := Get(db, identity.UserID)
	if err != nil {
		_ = c.Error(ToAppError(err))
		return
	}

	entries, err := enrollment.ListForUser(db, u.ID)
	if err == nil {
		err = enrollment.Rederive(c.Request.Context(), enrollment.NewGormCatalog(h.db), entries)
	}
	if err != nil {
		_ = c.Error(apperrors.FromStore(err))
		return
	}

	response.SuccessNoCache(c, http.StatusOK, Profile{User: u, EnrolledCourses: entries}, "")
}

// UpdateMe changes the caller's name, email or password and re-issues the token.
func (h *Handler) UpdateMe(c *gin.Context) {
	identity, err := middleware.MustIdentity(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req struct {
		Name     *string `json:"name" binding:"omitempty,max=100"`
		Email    *string `json:"email" binding:"omitempty,email"`
		Password *string `json:"password" binding:"omitempty,min=8"`
	}
	if err := request.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	input := UpdateInput{Name: req.Name, Email: req.Email, Password: req.Password}
	if input.Empty() {
		_ = c.Error(apperrors.Validation("Nothing to update"))
		return
	}

	u, err := Update(h.db.WithContext(c.Request.Context()), identity.UserID, input, h.bcryptCost)
	if err != nil {
		_ = c.Error(ToAppError(err))
		return
	}

	token, err := h.issueToken(u)
	if err != nil {
		_ = c.Error(apperrors.Internal(err))
		return
	}

	h.logger.Info("profile updated", slog.String("userId", u.ID.String()))
	response.SuccessNoCache(c, http.StatusOK, gin.H{"user": u, "token": token}, "Profile updated")
}

// List returns paginated users for administrators.
func (h *Handler) List(c *gin.Context) {
	params := pagination.Extract(c)

	users, total, err := List(h.db.WithContext(c.Request.Context()), ListFilters{
		Keyword: c.Query("filterKeyword"),
		Role:    types.Role(c.Query("role")),
	}, params)
	if err != nil {
		_ = c.Error(apperrors.FromStore(err))
		return
	}

	response.Success(c, http.StatusOK, users, "", pagination.MetadataFrom(total, params))
}

// GetByID returns one user for administrators.
func (h *Handler) GetByID(c *gin.Context) {
	userID, err := request.UUIDParam(c, "userId")
	if err != nil {
		_ = c.Error(err)
		return
	}

	u, err := Get(h.db.WithContext(c.Request.Context()), userID)
	if err != nil {
		_ = c.Error(ToAppError(err))
		return
	}

	response.Success(c, http.StatusOK, u, "", nil)
}

// ToAppError maps user sentinels to client errors. Unknown errors are
// classified as store failures.
func ToAppError(err error) error {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return apperrors.Wrap(err, "User not found", http.StatusNotFound, apperrors.ErrNotFound)
	case errors.Is(err, ErrEmailTaken):
		return apperrors.Wrap(err, "User already exists", http.StatusBadRequest, apperrors.ErrConflict)
	case errors.Is(err, ErrInvalidEmail):
		return apperrors.Wrap(err, "Invalid email format", http.StatusBadRequest, apperrors.ErrValidation)
	case errors.Is(err, ErrInvalidPassword):
		return apperrors.Wrap(err, "Password must be at least 8 characters long", http.StatusBadRequest, apperrors.ErrValidation)
	case errors.Is(err, ErrNameRequired):
		return apperrors.Wrap(err, "Name is required", http.StatusBadRequest, apperrors.ErrValidation)
	case errors.Is(err, ErrNameLength):
		return apperrors.Wrap(err, "Name cannot exceed 100 characters", http.StatusBadRequest, apperrors.ErrValidation)
	case errors.Is(err, ErrInvalidRole):
		return apperrors.Wrap(err, "Invalid role", http.StatusBadRequest, apperrors.ErrValidation)
	default:
		return apperrors.FromStore(err)
	}
}
