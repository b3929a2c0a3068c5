// Package admin authenticates the single back-office operator and guards
// the /api/v1/admin routes with a signed token.
package admin

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	RoleAdmin = "admin"
	TokenTTL  = 12 * time.Hour
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotConfigured      = errors.New("admin sign-in is not configured")
)

// Service checks credentials against one configured operator account.
// passwordHash is a bcrypt hash.
type Service struct {
	email        string
	passwordHash []byte
	secret       []byte
	log          *zap.Logger
	now          func() time.Time
}

func NewService(email, passwordHash, secret string, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		email:        strings.ToLower(strings.TrimSpace(email)),
		passwordHash: []byte(passwordHash),
		secret:       []byte(secret),
		log:          log,
		now:          time.Now,
	}
}

// Authenticate returns a signed token and its expiry for valid credentials.
func (s *Service) Authenticate(email, password string) (string, time.Time, error) {
	if s.email == "" || len(s.passwordHash) == 0 || len(s.secret) == 0 {
		return "", time.Time{}, ErrNotConfigured
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email != s.email || bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)) != nil {
		s.log.Warn("admin sign-in rejected", zap.String("email", email))
		return "", time.Time{}, ErrInvalidCredentials
	}

	exp := s.now().Add(TokenTTL)
	claims := jwt.MapClaims{
		"role":  RoleAdmin,
		"email": s.email,
		"exp":   exp.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	s.log.Info("admin signed in", zap.String("email", s.email))
	return signed, exp, nil
}

// HashPassword produces the bcrypt hash expected in ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
