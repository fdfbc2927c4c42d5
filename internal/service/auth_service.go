package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/RubachokBoss/classroom-gradebook/internal/config"
	"github.com/RubachokBoss/classroom-gradebook/internal/models"
	"github.com/RubachokBoss/classroom-gradebook/internal/repository"
	"github.com/RubachokBoss/classroom-gradebook/pkg/hash"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
	ParseToken(token string) (*Claims, error)
	IssueToken(teacherID string) (string, time.Time, error)
	CreateTeacher(ctx context.Context, name, email, password string) (*models.Teacher, error)
}

type authService struct {
	teacherRepo repository.TeacherRepository
	secret      []byte
	issuer      string
	ttl         time.Duration
	now         func() time.Time
	logger      zerolog.Logger
}

func NewAuthService(teacherRepo repository.TeacherRepository, cfg config.AuthConfig, logger zerolog.Logger) AuthService {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &authService{
		teacherRepo: teacherRepo,
		secret:      []byte(cfg.JWTSecret),
		issuer:      cfg.Issuer,
		ttl:         ttl,
		now:         time.Now,
		logger:      logger,
	}
}

func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	teacher, err := s.teacherRepo.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		return nil, fmt.Errorf("failed to get teacher: %w", err)
	}
	if teacher == nil {
		return nil, ErrInvalidCredentials
	}

	if err := hash.CheckPassword(teacher.PasswordHash, req.Password); err != nil {
		if errors.Is(err, hash.ErrPasswordMismatch) {
			s.logger.Warn().Str("teacher_id", teacher.ID).Msg("Login with wrong password")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to check password: %w", err)
	}

	token, expiresAt, err := s.IssueToken(teacher.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("teacher_id", teacher.ID).Msg("Teacher logged in")

	return &models.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
	}, nil
}

func (s *authService) IssueToken(teacherID string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)

	claims := &Claims{
		Role: models.RoleTeacher,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   teacherID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, expiresAt, nil
}

func (s *authService) ParseToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.Subject == "" || claims.Role != models.RoleTeacher {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *authService) CreateTeacher(ctx context.Context, name, email, password string) (*models.Teacher, error) {
	hashed, err := hash.HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	teacher := &models.Teacher{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hashed,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.teacherRepo.Create(ctx, teacher); err != nil {
		return nil, fmt.Errorf("failed to create teacher: %w", err)
	}

	s.logger.Info().Str("teacher_id", teacher.ID).Msg("Teacher created")
	return teacher, nil
}
