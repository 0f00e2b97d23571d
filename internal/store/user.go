package store

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidPassword = errors.New("invalid password")
)

const bcryptCost = 10

// User is a board account. Calls counts successful logins.
type User struct {
	gorm.Model
	Username     string `gorm:"uniqueIndex"`
	PasswordHash string
	Calls        int
	LastCallAt   *time.Time
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(hash), err
}

func (s *Store) byName(username string) *gorm.DB {
	return s.DB.Model(&User{}).Where("username = ?", username)
}

// mustAffect turns an update that matched nothing into ErrUserNotFound.
func mustAffect(result *gorm.DB) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *Store) CreateUser(username, password string) error {
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	return s.DB.Create(&User{Username: username, PasswordHash: hash}).Error
}

func (s *Store) FindUserByUsername(username string) (*User, error) {
	var user User
	if err := s.byName(username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ListUsers returns every account ordered by name.
func (s *Store) ListUsers() ([]User, error) {
	var users []User
	err := s.DB.Order("username").Find(&users).Error
	return users, err
}

func (s *Store) RenameUser(oldName, newName string) error {
	return mustAffect(s.byName(oldName).Update("username", newName))
}

func (s *Store) RemoveUser(username string) error {
	return mustAffect(s.DB.Unscoped().Where("username = ?", username).Delete(&User{}))
}

func (s *Store) UpdatePassword(username, password string) error {
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	return mustAffect(s.byName(username).Update("password_hash", hash))
}

func (s *Store) Authenticate(username, password string) (*User, error) {
	user, err := s.FindUserByUsername(username)
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidPassword
	}
	return user, nil
}

// RecordCall bumps the caller's call counter and last-call time, in the
// database and on user.
func (s *Store) RecordCall(user *User) error {
	now := time.Now()
	err := s.DB.Model(user).Updates(map[string]interface{}{
		"calls":        gorm.Expr("calls + ?", 1),
		"last_call_at": now,
	}).Error
	if err != nil {
		return err
	}
	user.Calls++
	user.LastCallAt = &now
	return nil
}
