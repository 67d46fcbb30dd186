package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/coaching-api/internal/models"
	appErrors "github.com/noah-isme/coaching-api/pkg/errors"
)

type credentialStudentStore interface {
	FindByIdentifier(ctx context.Context, identifier string) (*models.Student, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type credentialTeacherStore interface {
	FindByIdentifier(ctx context.Context, identifier string) (*models.Teacher, error)
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

// AdminCredential is the configuration-supplied administrator record.
type AdminCredential struct {
	Email        string
	Name         string
	PasswordHash string
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	AccessTokenSecret string
	AccessTokenExpiry time.Duration
	Issuer            string
	Admin             AdminCredential
}

// AuthService provides authentication use cases.
type AuthService struct {
	students  credentialStudentStore
	teachers  credentialTeacherStore
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	now       func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(students credentialStudentStore, teachers credentialTeacherStore, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	return &AuthService{
		students:  students,
		teachers:  teachers,
		validator: validate,
		logger:    logger,
		config:    config,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

const adminID = "admin"

// Login authenticates an admin, teacher or student by email or phone number.
// The admin record is checked first, then teachers, then students.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	req.Identifier = strings.TrimSpace(req.Identifier)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid login payload")
	}

	user, hash, err := s.resolve(ctx, req.Identifier)
	if err != nil {
		return nil, err
	}
	if user == nil || hash == "" {
		return nil, appErrors.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		return nil, appErrors.ErrInvalidCredentials
	}

	token, err := s.generateAccessToken(*user)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to create access token")
	}
	s.logger.Info("login succeeded", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))

	return &models.LoginResponse{
		Token:     token,
		ExpiresIn: int64(s.config.AccessTokenExpiry.Seconds()),
		User:      *user,
	}, nil
}

func (s *AuthService) resolve(ctx context.Context, identifier string) (*models.UserInfo, string, error) {
	admin := s.config.Admin
	if admin.Email != "" && strings.EqualFold(admin.Email, identifier) {
		return &models.UserInfo{ID: adminID, Email: admin.Email, Name: admin.Name, Role: models.RoleAdmin}, admin.PasswordHash, nil
	}

	teacher, err := s.teachers.FindByIdentifier(ctx, identifier)
	switch {
	case err == nil:
		return &models.UserInfo{ID: teacher.ID, Email: teacher.Email, Name: teacher.Name, Role: models.RoleTeacher}, teacher.PasswordHash, nil
	case !errors.Is(err, sql.ErrNoRows):
		return nil, "", appErrors.Internal(err, "failed to load teacher")
	}

	student, err := s.students.FindByIdentifier(ctx, identifier)
	switch {
	case err == nil:
		return &models.UserInfo{ID: student.ID, Email: student.Email, Name: student.Name, Role: models.RoleStudent}, student.PasswordHash, nil
	case !errors.Is(err, sql.ErrNoRows):
		return nil, "", appErrors.Internal(err, "failed to load student")
	}
	return nil, "", nil
}

// Check validates a token and confirms the principal still exists.
func (s *AuthService) Check(ctx context.Context, tokenString string) (*models.UserInfo, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	info := &models.UserInfo{ID: claims.UserID, Email: claims.Email, Name: claims.Name, Role: claims.Role}

	switch claims.Role {
	case models.RoleAdmin:
		return info, nil
	case models.RoleTeacher:
		_, err = s.teachers.FindByID(ctx, claims.UserID)
	case models.RoleStudent:
		_, err = s.students.FindByID(ctx, claims.UserID)
	default:
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "unknown role")
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "account no longer exists")
		}
		return nil, appErrors.Internal(err, "failed to load account")
	}
	return info, nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	return claims, nil
}

func (s *AuthService) generateAccessToken(user models.UserInfo) (string, error) {
	issuedAt := s.now()
	claims := &models.JWTClaims{
		UserID: user.ID,
		Role:   user.Role,
		Email:  user.Email,
		Name:   user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.AccessTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.AccessTokenSecret))
}
