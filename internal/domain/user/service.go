// internal/domain/user/service.go
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/library-backend/internal/pkg/pagination"
	"github.com/your-org/library-backend/internal/pkg/search"
	"gorm.io/gorm"
)

// Service handles user business logic
type Service struct {
	db     *gorm.DB
	logger logrus.FieldLogger
}

// NewService creates a new user service
func NewService(db *gorm.DB, logger logrus.FieldLogger) *Service {
	return &Service{
		db:     db,
		logger: logger,
	}
}

// CreateUserRequest represents user creation data
type CreateUserRequest struct {
	UserID   string `json:"userId" binding:"required,notblank"`
	UserName string `json:"userName" binding:"required,notblank"`
	Email    string `json:"email" binding:"required,email"`
}

// UpdateUserRequest represents a partial user update
type UpdateUserRequest struct {
	UserID   *string `json:"userId" binding:"omitempty,notblank"`
	UserName *string `json:"userName" binding:"omitempty,notblank"`
	Email    *string `json:"email" binding:"omitempty,email"`
}

// IsEmpty reports whether the request carries no field at all
func (r *UpdateUserRequest) IsEmpty() bool {
	return r.UserID == nil && r.UserName == nil && r.Email == nil
}

// UserListRequest represents user list query parameters
type UserListRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=100"`
	UserName string `form:"userName"`
	Email    string `form:"email"`
}

// UserListResponse represents a page of users
type UserListResponse struct {
	Users      []User                `json:"users"`
	Pagination pagination.Pagination `json:"pagination"`
}

// CreateUser creates a user after checking both unique keys are free
func (s *Service) CreateUser(ctx context.Context, req *CreateUserRequest) (*User, error) {
	user := &User{
		UserID:   strings.TrimSpace(req.UserID),
		UserName: req.UserName,
		Email:    NormalizeEmail(req.Email),
	}

	if err := s.checkUnique(ctx, user.UserID, user.Email, uuid.Nil); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, s.duplicateCause(ctx, user.UserID, user.Email, uuid.Nil)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetUsers retrieves users with filtering and pagination
func (s *Service) GetUsers(ctx context.Context, req *UserListRequest) (*UserListResponse, error) {
	page, limit := pagination.Normalize(req.Page, req.Limit)
	query := s.db.WithContext(ctx).Model(&User{})

	if name := strings.TrimSpace(req.UserName); name != "" {
		query = query.Where("LOWER(user_name) LIKE ? ESCAPE '\\'", search.Contains(name))
	}
	if email := strings.TrimSpace(req.Email); email != "" {
		query = query.Where("LOWER(email) LIKE ? ESCAPE '\\'", search.Contains(email))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	users := []User{}
	if err := query.Order("created_at DESC").
		Offset(pagination.Offset(page, limit)).
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve users: %w", err)
	}

	return &UserListResponse{
		Users:      users,
		Pagination: pagination.New(page, limit, total),
	}, nil
}

// GetUser retrieves an active user by storage identifier
func (s *Service) GetUser(ctx context.Context, rawID string) (*User, error) {
	id, err := ParseID(rawID)
	if err != nil {
		return nil, err
	}
	return s.findOne(ctx, "id = ?", id)
}

// GetActiveUserByUserID retrieves an active user by business key
func (s *Service) GetActiveUserByUserID(ctx context.Context, userID string) (*User, error) {
	return s.findOne(ctx, "user_id = ?", strings.TrimSpace(userID))
}

// UpdateUser applies a partial update. Uniqueness is re-checked only for
// keys that actually change.
func (s *Service) UpdateUser(ctx context.Context, rawID string, req *UpdateUserRequest) (*User, error) {
	user, err := s.GetUser(ctx, rawID)
	if err != nil {
		return nil, err
	}

	newUserID := ""
	if req.UserID != nil {
		if trimmed := strings.TrimSpace(*req.UserID); trimmed != user.UserID {
			newUserID = trimmed
		}
	}
	newEmail := ""
	if req.Email != nil {
		if normalized := NormalizeEmail(*req.Email); normalized != user.Email {
			newEmail = normalized
		}
	}

	if err := s.checkUnique(ctx, newUserID, newEmail, user.ID); err != nil {
		return nil, err
	}

	if newUserID != "" {
		user.UserID = newUserID
	}
	if newEmail != "" {
		user.Email = newEmail
	}
	if req.UserName != nil {
		user.UserName = *req.UserName
	}

	result := s.db.WithContext(ctx).Model(user).
		Select("*").
		Omit("created_at", "deleted_at").
		Updates(user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, s.duplicateCause(ctx, newUserID, newEmail, user.ID)
		}
		return nil, fmt.Errorf("failed to update user: %w", result.Error)
	}
	// Deleted since the read
	if result.RowsAffected == 0 {
		return nil, ErrUserNotFound
	}

	return user, nil
}

// DeleteUser soft-deletes a user. Wishlist entries are left in place.
func (s *Service) DeleteUser(ctx context.Context, rawID string) error {
	user, err := s.GetUser(ctx, rawID)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(user).Error; err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.logger.WithField("user_id", user.UserID).Info("User soft-deleted")
	return nil
}

// Private helper methods

func (s *Service) findOne(ctx context.Context, cond string, arg interface{}) (*User, error) {
	var user User
	result := s.db.WithContext(ctx).Where(cond, arg).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", result.Error)
	}
	return &user, nil
}

// checkUnique verifies the given keys (empty means "not changing") are not
// held by another active user.
func (s *Service) checkUnique(ctx context.Context, userID, email string, exclude uuid.UUID) error {
	if userID != "" {
		taken, err := s.exists(ctx, "user_id = ?", userID, exclude)
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateUserID
		}
	}
	if email != "" {
		taken, err := s.exists(ctx, "email = ?", email, exclude)
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateEmail
		}
	}
	return nil
}

// duplicateCause works out which key lost a race against a concurrent write
func (s *Service) duplicateCause(ctx context.Context, userID, email string, exclude uuid.UUID) error {
	if err := s.checkUnique(ctx, userID, email, exclude); err != nil {
		return err
	}
	return ErrDuplicateUserID
}

func (s *Service) exists(ctx context.Context, cond string, arg interface{}, exclude uuid.UUID) (bool, error) {
	var count int64
	query := s.db.WithContext(ctx).Model(&User{}).Where(cond, arg)
	if exclude != uuid.Nil {
		query = query.Where("id <> ?", exclude)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check user uniqueness: %w", err)
	}
	return count > 0, nil
}
