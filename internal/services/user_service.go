package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"spendwise/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidCodeword    = errors.New("codeword does not match")

	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// RegisterInput is the registration payload after JSON decoding.
type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
	Codeword        string
}

// Validate applies the account rules: every field present, a plausible
// email, matching passwords, and a password of at least 8 characters with
// both an upper- and a lower-case letter.
func (in RegisterInput) Validate() error {
	if in.Username == "" || in.Email == "" || in.Password == "" || in.ConfirmPassword == "" || in.Codeword == "" {
		return errors.New("all fields are required")
	}
	if !emailPattern.MatchString(in.Email) {
		return errors.New("email does not meet the requirements")
	}
	if in.Password != in.ConfirmPassword {
		return errors.New("passwords do not match")
	}
	if !passwordAcceptable(in.Password) {
		return errors.New("password does not meet the requirements")
	}
	return nil
}

func passwordAcceptable(p string) bool {
	if len(p) < 8 {
		return false
	}
	return strings.ToLower(p) != p && strings.ToUpper(p) != p
}

// UserService handles account registration and authentication.
type UserService struct {
	storage *storage.SQLiteRepository
}

func NewUserService(storage *storage.SQLiteRepository) *UserService {
	return &UserService{storage: storage}
}

// Register creates an account with bcrypt-hashed password and codeword.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (storage.User, error) {
	if err := in.Validate(); err != nil {
		return storage.User{}, err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return storage.User{}, fmt.Errorf("hash password: %w", err)
	}
	codewordHash, err := bcrypt.GenerateFromPassword([]byte(in.Codeword), bcrypt.DefaultCost)
	if err != nil {
		return storage.User{}, fmt.Errorf("hash codeword: %w", err)
	}

	return s.storage.CreateUser(ctx, in.Username, in.Email, string(passwordHash), string(codewordHash))
}

// Login checks credentials and returns the account. A missing user and a
// wrong password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, username, password string) (storage.User, error) {
	u, err := s.storage.GetUserByUsername(ctx, username)
	if errors.Is(err, storage.ErrUserNotFound) {
		return storage.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return storage.User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return storage.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// GetUser looks up an account by id.
func (s *UserService) GetUser(ctx context.Context, id int64) (storage.User, error) {
	return s.storage.GetUserByID(ctx, id)
}

// ResetPassword replaces an account password, authorized by the codeword
// chosen at registration.
func (s *UserService) ResetPassword(ctx context.Context, username, codeword, newPassword string) error {
	u, err := s.storage.GetUserByUsername(ctx, username)
	if errors.Is(err, storage.ErrUserNotFound) {
		return ErrInvalidCodeword
	}
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.CodewordHash), []byte(codeword)) != nil {
		return ErrInvalidCodeword
	}
	if !passwordAcceptable(newPassword) {
		return errors.New("password does not meet the requirements")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.storage.UpdateUserPassword(ctx, u.ID, string(hash))
}
