package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/neeharika666/myntra-hackerramp/models"
	"github.com/neeharika666/myntra-hackerramp/repository"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// RegisterRequest is the signup payload.
type RegisterRequest struct {
	Name        string    `json:"name" binding:"required,min=2,max=50"`
	Email       string    `json:"email" binding:"required,email"`
	Password    string    `json:"password" binding:"required,min=6"`
	Phone       string    `json:"phone" binding:"required,len=10"`
	Gender      string    `json:"gender" binding:"required,oneof=Male Female Other"`
	DateOfBirth time.Time `json:"dateOfBirth" binding:"required"`
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse returns the signed token and a trimmed user view.
type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// AuthService handles registration, login and token issuance.
type AuthService struct {
	users     repository.UserRepository
	jwtSecret []byte
	jwtExpiry time.Duration
	logger    *zap.Logger
}

func NewAuthService(users repository.UserRepository, jwtSecret string, jwtExpiry time.Duration, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:     users,
		jwtSecret: []byte(jwtSecret),
		jwtExpiry: jwtExpiry,
		logger:    logger,
	}
}

// Register creates a user with a bcrypt-hashed password and returns a
// signed token.
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, &ValidationError{Field: "email", Message: "user already exists with this email"}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("check existing user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Name:        req.Name,
		Email:       email,
		Password:    string(hash),
		Phone:       req.Phone,
		Gender:      req.Gender,
		DateOfBirth: req.DateOfBirth,
		Role:        models.RoleUser,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, &ValidationError{Field: "email", Message: "user already exists with this email"}
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User registered", zap.String("user_id", user.ID.Hex()))
	return &AuthResponse{Token: token, User: user}, nil
}

// Login verifies credentials and returns a signed token.
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &ValidationError{Field: "email", Message: "invalid email or password"}
	}
	if err != nil {
		return nil, fmt.Errorf("fetch user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, &ValidationError{Field: "password", Message: "invalid email or password"}
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User logged in", zap.String("user_id", user.ID.Hex()))
	return &AuthResponse{Token: token, User: user}, nil
}

// GetProfile returns the user for a token subject.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, &ValidationError{Field: "user", Message: "invalid user ID"}
	}
	user, err := s.users.FindByID(ctx, oid)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &NotFoundError{Resource: "user"}
	}
	if err != nil {
		return nil, fmt.Errorf("fetch user: %w", err)
	}
	return user, nil
}

func (s *AuthService) generateToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID.Hex(),
		"role":    user.Role,
		"exp":     time.Now().Add(s.jwtExpiry).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
