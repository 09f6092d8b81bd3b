package storage

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// CreateUser creates a user with a bcrypt-hashed password.
func (s *Storage) CreateUser(username, password, role string) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		Active:       true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := ValidateUser(user); err != nil {
		return nil, err
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// EnsureDefaultAdmin creates an initial admin account when the users
// table is empty. It returns the generated credentials so the operator
// can log them once at startup, or ("", "", nil) when users already
// exist.
func (s *Storage) EnsureDefaultAdmin() (username, password string, err error) {
	var count int64
	if err := s.db.Model(&User{}).Count(&count).Error; err != nil {
		return "", "", fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return "", "", nil
	}

	raw := make([]byte, 12)
	if _, err := rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("failed to generate admin password: %w", err)
	}
	password = hex.EncodeToString(raw)

	if _, err := s.CreateUser("admin", password, RoleAdmin); err != nil {
		return "", "", err
	}
	return "admin", password, nil
}

// FindActiveUserByUsername returns the active user with the given
// username, or gorm.ErrRecordNotFound.
func (s *Storage) FindActiveUserByUsername(username string) (*User, error) {
	var user User
	if err := s.db.Where("username = ? AND active = ?", username, true).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindUserByID returns the user with the given id, or gorm.ErrRecordNotFound.
func (s *Storage) FindUserByID(id int64) (*User, error) {
	var user User
	if err := s.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
