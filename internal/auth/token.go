package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/harentsoaR/clinic-api/internal/models"
)

// RefreshTTL is the fixed lifetime of refresh tokens.
const RefreshTTL = 30 * 24 * time.Hour

const (
	typeAccess  = "access"
	typeRefresh = "refresh"
)

var (
	// ErrInvalidToken covers malformed tokens, bad signatures and bad claims.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired also matches ErrInvalidToken.
	ErrTokenExpired = fmt.Errorf("%w: token expired", ErrInvalidToken)
)

// Identity is what a session token proves about its bearer.
type Identity struct {
	UserID string      `json:"userId"`
	Email  string      `json:"email"`
	Role   models.Role `json:"role"`
}

type Claims struct {
	UserID string      `json:"userId"`
	Email  string      `json:"email"`
	Role   models.Role `json:"role"`
	Type   string      `json:"typ"`
	jwt.RegisteredClaims
}

func (c *Claims) identity() Identity {
	return Identity{UserID: c.UserID, Email: c.Email, Role: c.Role}
}

// TokenService mints and verifies HS256 session tokens with a server-held secret.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// TTL returns the lifetime of access tokens.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// IssueToken creates an access token valid for the configured TTL.
func (s *TokenService) IssueToken(id Identity) (string, error) {
	return s.issue(id, typeAccess, s.ttl)
}

// IssueRefreshToken creates a refresh token valid for RefreshTTL.
func (s *TokenService) IssueRefreshToken(id Identity) (string, error) {
	return s.issue(id, typeRefresh, RefreshTTL)
}

func (s *TokenService) issue(id Identity, typ string, ttl time.Duration) (string, error) {
	if len(s.secret) == 0 {
		return "", errors.New("token secret is not configured")
	}
	jti, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate token id: %w", err)
	}
	now := s.now().UTC()
	claims := &Claims{
		UserID: id.UserID,
		Email:  id.Email,
		Role:   id.Role,
		Type:   typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti.String(),
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// VerifyToken checks signature, expiry and claims of an access token.
func (s *TokenService) VerifyToken(tokenStr string) (Identity, error) {
	return s.verify(tokenStr, typeAccess)
}

// VerifyRefreshToken is VerifyToken for refresh tokens.
func (s *TokenService) VerifyRefreshToken(tokenStr string) (Identity, error) {
	return s.verify(tokenStr, typeRefresh)
}

func (s *TokenService) verify(tokenStr, typ string) (Identity, error) {
	if len(s.secret) == 0 {
		return Identity{}, errors.New("token secret is not configured")
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrTokenExpired
		}
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return Identity{}, ErrInvalidToken
	}
	if claims.Type != typ {
		return Identity{}, fmt.Errorf("%w: unexpected token type %q", ErrInvalidToken, claims.Type)
	}
	if claims.UserID == "" || !claims.Role.Valid() {
		return Identity{}, fmt.Errorf("%w: bad identity claims", ErrInvalidToken)
	}
	return claims.identity(), nil
}

// DecodeToken reads the identity without checking the signature or expiry.
// The result must never be used to authorize an action.
func DecodeToken(tokenStr string) *Identity {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims); err != nil {
		return nil
	}
	id := claims.identity()
	return &id
}
