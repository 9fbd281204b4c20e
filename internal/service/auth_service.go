package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"car_market/internal/apperr"
	"car_market/internal/models"
	"car_market/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthConfig carries the token-signing settings loaded from configuration.
type AuthConfig struct {
	SigningKey []byte
	TokenTTL   time.Duration
}

// AuthService handles signup, login, token verification and revocation.
type AuthService struct {
	users   repository.Users
	cfg     AuthConfig
	revoked *revocationSet
}

var _ Authorization = (*AuthService)(nil)

func NewAuthService(users repository.Users, cfg AuthConfig) *AuthService {
	return &AuthService{
		users:   users,
		cfg:     cfg,
		revoked: newRevocationSet(),
	}
}

// Claims defines the JWT payload.
type Claims struct {
	jwt.RegisteredClaims
	UserID int `json:"user_id"`
}

// SignUp creates a new account and returns it with a fresh token.
// Email uniqueness is enforced at write time.
func (s *AuthService) SignUp(ctx context.Context, name, email, password string) (models.User, string, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if name == "" || email == "" || strings.TrimSpace(password) == "" {
		return models.User{}, "", apperr.Validation("name, email and password are required")
	}
	if !strings.Contains(email, "@") {
		return models.User{}, "", apperr.Validation("please provide a valid email")
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return models.User{}, "", err
	}
	if existing != nil {
		return models.User{}, "", apperr.Validation("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, "", fmt.Errorf("hash password: %w", err)
	}

	id, err := s.users.Create(ctx, name, email, string(hash))
	if err != nil {
		return models.User{}, "", err
	}

	u := models.User{ID: id, Name: name, Email: email}
	token, err := s.issueToken(id)
	if err != nil {
		return models.User{}, "", err
	}
	return u, token, nil
}

// Login verifies credentials and returns the user with a fresh token.
// A missing user and a wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return models.User{}, "", apperr.Validation("please provide email and password")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return models.User{}, "", err
	}
	if u == nil {
		return models.User{}, "", apperr.Unauthenticated("incorrect email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return models.User{}, "", apperr.Unauthenticated("incorrect email or password")
	}

	token, err := s.issueToken(u.ID)
	if err != nil {
		return models.User{}, "", err
	}
	return *u, token, nil
}

// Authenticate resolves a token to its user. The revocation check runs
// first: a logged-out token is rejected even while cryptographically valid.
func (s *AuthService) Authenticate(ctx context.Context, token string) (models.User, error) {
	if s.revoked.contains(token) {
		return models.User{}, apperr.Revoked("token is no longer valid, please log in again")
	}

	claims, err := s.parseToken(token)
	if err != nil {
		return models.User{}, apperr.Wrap(apperr.KindUnauthenticated, "invalid or expired token", err)
	}

	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return models.User{}, err
	}
	if u == nil {
		return models.User{}, apperr.Unauthenticated("the user no longer exists")
	}
	return *u, nil
}

// Logout adds the token to the revocation set until its natural expiry.
// Tokens whose expiry cannot be read are kept for a full TTL.
func (s *AuthService) Logout(token string) {
	expiresAt := time.Now().Add(s.cfg.TokenTTL)
	if claims, err := s.parseToken(token); err == nil && claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	s.revoked.add(token, expiresAt)
}

func (s *AuthService) parseToken(accessToken string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(accessToken, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.cfg.SigningKey, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

func (s *AuthService) issueToken(userID int) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID: userID,
	})
	signed, err := token.SignedString(s.cfg.SigningKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
