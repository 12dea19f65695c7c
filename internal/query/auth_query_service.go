package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gojenga/gojenga/internal/store"
	"github.com/gojenga/gojenga/shared/cqrs"
	"github.com/gojenga/gojenga/shared/middleware"
	"github.com/gojenga/gojenga/shared/utils"
	"github.com/golang-jwt/jwt/v5"
)

// RenewedTokenTTL is the lifetime of an access token issued by a refresh.
const RenewedTokenTTL = 15 * time.Minute

var (
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrInvalidToken       = errors.New("could not validate credentials")
)

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// AuthQueryService handles login and token refresh. Neither mutates state.
type AuthQueryService struct {
	users      UserReader
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewAuthQueryService(users UserReader, secret []byte, accessTTL, refreshTTL time.Duration) *AuthQueryService {
	return &AuthQueryService{
		users:      users,
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func (s *AuthQueryService) Login(ctx context.Context, cmd cqrs.LoginCommand) (*TokenPair, error) {
	name, err := utils.NormalizeName(cmd.Username)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByName(ctx, name, cmd.IsTest)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !utils.CheckPassword(cmd.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	access, err := s.generateToken(user.Name, middleware.TokenTypeAccess, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.generateToken(user.Name, middleware.TokenTypeRefresh, s.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"}, nil
}

// RefreshToken exchanges a valid refresh token for a short-lived access token.
func (s *AuthQueryService) RefreshToken(_ context.Context, cmd cqrs.RefreshTokenCommand) (string, error) {
	claims, err := middleware.ParseToken(cmd.Token, s.secret)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return "", err
	}
	if err != nil || claims.TokenType != middleware.TokenTypeRefresh {
		return "", ErrInvalidToken
	}
	return s.generateToken(claims.Subject, middleware.TokenTypeAccess, RenewedTokenTTL)
}

func (s *AuthQueryService) generateToken(subject, tokenType string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := middleware.Claims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return signed, nil
}
