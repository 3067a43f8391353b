package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "budgetbook/internal/errors"
	"budgetbook/internal/models"
)

// userService handles user-related business logic.
type userService struct {
	db *gorm.DB
}

// NewUserService creates a new UserServicer.
func NewUserService(db *gorm.DB) UserServicer {
	return &userService{db: db}
}

// EnsureUser returns the user for a token subject, creating it on first
// sight and refreshing email and name when the claims changed.
func (s *userService) EnsureUser(subject, email, name string) (*models.User, error) {
	if strings.TrimSpace(subject) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidToken, "token subject is missing")
	}
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	err := s.db.Where("subject = ?", subject).First(&user).Error
	switch {
	case err == nil:
		updates := map[string]interface{}{}
		if email != "" && email != user.Email {
			updates["email"] = email
		}
		if name != "" && name != user.Name {
			updates["name"] = name
		}
		if len(updates) > 0 {
			if err := s.db.Model(&user).Updates(updates).Error; err != nil {
				return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		return &user, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{Subject: subject, Email: email, Name: name}
		if err := s.db.Create(&user).Error; err != nil {
			// A concurrent first request may have inserted the same subject.
			var existing models.User
			if lookupErr := s.db.Where("subject = ?", subject).First(&existing).Error; lookupErr == nil {
				return &existing, nil
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return &user, nil

	default:
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(id string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}
