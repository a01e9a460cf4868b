package services

import (
	"fmt"
	"log"
	"time"

	"github.com/admiralorbiter/skien/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UsersService manages administrator accounts
type UsersService struct {
	db *gorm.DB
}

// NewUsersService creates a new UsersService
func NewUsersService(db *gorm.DB) *UsersService {
	return &UsersService{db: db}
}

// UserUpdate enumerates the mutable fields of a user. Nil fields are left
// unchanged.
type UserUpdate struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
	IsActive  *bool
	IsAdmin   *bool
}

// Create hashes the password and persists a new user. Validation failures
// come back as a ValidationError listing every violated rule.
func (s *UsersService) Create(username, email, password, firstName, lastName string, isActive, isAdmin bool) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    firstName,
		LastName:     lastName,
		IsActive:     isActive,
		IsAdmin:      isAdmin,
	}

	if violations := user.Validate(); len(violations) > 0 {
		return nil, NewValidationError(violations)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(user).Error
	})
	if err != nil {
		log.Printf("Database error creating user %s: %v", username, err)
		if isDuplicate(err) {
			return nil, fmt.Errorf("username or email already exists")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Update applies the set fields of upd to the user and persists the result
func (s *UsersService) Update(user *models.User, upd UserUpdate) error {
	if upd.Username != nil {
		user.Username = *upd.Username
	}
	if upd.Email != nil {
		user.Email = *upd.Email
	}
	if upd.FirstName != nil {
		user.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		user.LastName = *upd.LastName
	}
	if upd.IsActive != nil {
		user.IsActive = *upd.IsActive
	}
	if upd.IsAdmin != nil {
		user.IsAdmin = *upd.IsAdmin
	}

	if violations := user.Validate(); len(violations) > 0 {
		return NewValidationError(violations)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Save(user).Error
	})
	if err != nil {
		log.Printf("Database error updating user %d: %v", user.ID, err)
		if isDuplicate(err) {
			return fmt.Errorf("username or email already exists")
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// SetPassword replaces the user's password hash
func (s *UsersService) SetPassword(user *models.User, newPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = string(hash)
	err = s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Save(user).Error
	})
	if err != nil {
		log.Printf("Database error changing password for user %d: %v", user.ID, err)
		return fmt.Errorf("failed to change password: %w", err)
	}
	return nil
}

// Delete removes a user. The caller is responsible for forbidding
// self-deletion before calling.
func (s *UsersService) Delete(user *models.User) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Delete(user).Error
	})
	if err != nil {
		log.Printf("Database error deleting user %d: %v", user.ID, err)
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// Authenticate verifies a username/password pair and, on success, stamps
// the user's last-login time. A bad username or password returns (nil, nil).
func (s *UsersService) Authenticate(username, password string) (*models.User, error) {
	user, err := s.FindByUsername(username)
	if err != nil || user == nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		log.Printf("Failed login attempt for username: %s", username)
		return nil, nil
	}
	if !user.IsActive {
		log.Printf("Login attempt for inactive user: %s", username)
		return nil, nil
	}

	if err := s.UpdateLastLogin(user); err != nil {
		// Login still succeeds when the timestamp write fails
		log.Printf("Failed to update last login for user %s: %v", username, err)
	}

	return user, nil
}

// UpdateLastLogin stamps the user's last-login time
func (s *UsersService) UpdateLastLogin(user *models.User) error {
	now := time.Now().UTC()
	user.LastLogin = &now
	return s.db.Model(user).Update("last_login", now).Error
}

// FindByID finds a user by id, returning (nil, nil) on a miss
func (s *UsersService) FindByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		log.Printf("Database error finding user %d: %v", id, err)
		return nil, err
	}
	return &user, nil
}

// FindByUsername finds a user by username, returning (nil, nil) on a miss
func (s *UsersService) FindByUsername(username string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		log.Printf("Database error finding user by username %s: %v", username, err)
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email, returning (nil, nil) on a miss
func (s *UsersService) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		log.Printf("Database error finding user by email %s: %v", email, err)
		return nil, err
	}
	return &user, nil
}

// List returns a page of users ordered by creation time, newest first
func (s *UsersService) List(limit, offset int) ([]models.User, int64, error) {
	var users []models.User
	var total int64

	if err := s.db.Model(&models.User{}).Count(&total).Error; err != nil {
		log.Printf("Database error counting users: %v", err)
		return nil, 0, err
	}
	err := s.db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&users).Error
	if err != nil {
		log.Printf("Database error listing users: %v", err)
		return nil, 0, err
	}
	return users, total, nil
}
