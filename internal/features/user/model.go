package user

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/mo-amir99/techboost-server-go/pkg/pagination"
	"github.com/mo-amir99/techboost-server-go/pkg/types"
	"github.com/mo-amir99/techboost-server-go/pkg/validation"
)

const (
	minPasswordLength = 8
	maxNameLength     = 100
)

// User represents a learner or administrator.
type User struct {
	types.BaseModel

	Name     string     `gorm:"type:varchar(100);not null" json:"name"`
	Email    string     `gorm:"type:varchar(255);not null;uniqueIndex:idx_users_email" json:"email"`
	Password string     `gorm:"type:varchar(255);not null" json:"-"`
	Role     types.Role `gorm:"type:varchar(20);not null;default:'user';index" json:"role"`

	// CompletedLessons mirrors every lesson the user completed across courses.
	// Enrollment progress is authoritative; this list is only appended to.
	CompletedLessons types.IDList `gorm:"type:uuid[];not null;default:'{}';column:completed_lessons" json:"completedLessons"`
}

// TableName overrides the default table name.
func (User) TableName() string { return "users" }

// ListFilters defines user query filters.
type ListFilters struct {
	Keyword string
	Role    types.Role
}

// CreateInput carries data for creating a new user.
type CreateInput struct {
	Name     string
	Email    string
	Password string
	Role     types.Role
}

// UpdateInput captures mutable profile fields. Nil fields are left untouched.
type UpdateInput struct {
	Name     *string
	Email    *string
	Password *string
}

// Empty reports whether the input changes nothing.
func (in UpdateInput) Empty() bool {
	return in.Name == nil && in.Email == nil && in.Password == nil
}

// List queries users with filters and pagination.
func List(db *gorm.DB, filters ListFilters, params pagination.Params) ([]User, int64, error) {
	query := filters.apply(db.Model(&User{}))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	users := make([]User, 0)
	if err := params.Scope(query.Order("created_at DESC")).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (f ListFilters) apply(query *gorm.DB) *gorm.DB {
	if keyword := strings.TrimSpace(f.Keyword); keyword != "" {
		like := "%" + strings.ToLower(keyword) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}
	if f.Role != "" {
		query = query.Where("role = ?", f.Role)
	}
	return query
}

// Get retrieves a user by ID.
func Get(db *gorm.DB, id uuid.UUID) (User, error) {
	var user User
	if err := db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user, ErrUserNotFound
		}
		return user, err
	}
	return user, nil
}

// GetByEmail retrieves a user by email, case-insensitively.
func GetByEmail(db *gorm.DB, email string) (User, error) {
	var user User
	if err := db.First(&user, "email = ?", strings.ToLower(strings.TrimSpace(email))).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user, ErrUserNotFound
		}
		return user, err
	}
	return user, nil
}

// Create inserts a new user with a bcrypt hashed password.
func Create(db *gorm.DB, input CreateInput, cost int) (User, error) {
	user, err := newUser(input, cost)
	if err != nil {
		return user, err
	}

	if err := db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return user, ErrEmailTaken
		}
		return user, err
	}

	return user, nil
}

func newUser(input CreateInput, cost int) (User, error) {
	name, err := normalizeName(input.Name)
	if err != nil {
		return User{}, err
	}

	email, err := validation.NormalizeEmail(input.Email)
	if err != nil {
		return User{}, ErrInvalidEmail
	}

	hashed, err := hashPassword(input.Password, cost)
	if err != nil {
		return User{}, err
	}

	role := input.Role
	if role == "" {
		role = types.RoleUser
	}
	if !role.Valid() {
		return User{}, ErrInvalidRole
	}

	return User{
		Name:             name,
		Email:            email,
		Password:         hashed,
		Role:             role,
		CompletedLessons: types.IDList{},
	}, nil
}

// Update modifies the profile fields of an existing user.
func Update(db *gorm.DB, id uuid.UUID, input UpdateInput, cost int) (User, error) {
	updates, err := profileUpdates(input, cost)
	if err != nil {
		return User{}, err
	}

	if len(updates) > 0 {
		result := db.Model(&User{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
				return User{}, ErrEmailTaken
			}
			return User{}, result.Error
		}
		if result.RowsAffected == 0 {
			return User{}, ErrUserNotFound
		}
	}

	return Get(db, id)
}

func profileUpdates(input UpdateInput, cost int) (map[string]interface{}, error) {
	updates := map[string]interface{}{}

	if input.Name != nil {
		name, err := normalizeName(*input.Name)
		if err != nil {
			return nil, err
		}
		updates["name"] = name
	}

	if input.Email != nil {
		email, err := validation.NormalizeEmail(*input.Email)
		if err != nil {
			return nil, ErrInvalidEmail
		}
		updates["email"] = email
	}

	if input.Password != nil {
		hashed, err := hashPassword(*input.Password, cost)
		if err != nil {
			return nil, err
		}
		updates["password"] = hashed
	}

	return updates, nil
}

// ComparePassword checks if the provided password matches the user's hashed password.
func (u *User) ComparePassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

func hashPassword(password string, cost int) (string, error) {
	if len(password) < minPasswordLength {
		return "", ErrInvalidPassword
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func normalizeName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", ErrNameRequired
	}
	if len([]rune(trimmed)) > maxNameLength {
		return "", ErrNameLength
	}
	return trimmed, nil
}
