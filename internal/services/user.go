package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/clinic-api/internal/auth"
	"github.com/harentsoaR/clinic-api/internal/models"
	"github.com/harentsoaR/clinic-api/internal/store"
)

type UserRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
	Update(ctx context.Context, id primitive.ObjectID, upd models.UserUpdate, now time.Time) (*models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
}

// Cache stores serialized user profiles. Failures are logged and ignored.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type RegisterInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"omitempty,oneof=admin doctor nurse"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type UpdateUserInput struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"omitempty,oneof=admin doctor nurse"`
}

type RefreshInput struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// AuthResult is returned by register, login and refresh. User never carries
// the password digest.
type AuthResult struct {
	User         *models.User `json:"user"`
	Token        string       `json:"token"`
	RefreshToken string       `json:"refreshToken,omitempty"`
}

type UserService struct {
	repo     UserRepository
	tokens   *auth.TokenService
	cache    Cache
	cacheTTL time.Duration
	validate *validator.Validate
	log      zerolog.Logger
	now      func() time.Time
}

func NewUserService(
	repo UserRepository,
	tokens *auth.TokenService,
	cache Cache,
	cacheTTL time.Duration,
	validate *validator.Validate,
	log zerolog.Logger,
) *UserService {
	return &UserService{
		repo:     repo,
		tokens:   tokens,
		cache:    cache,
		cacheTTL: cacheTTL,
		validate: validate,
		log:      log.With().Str("service", "users").Logger(),
		now:      time.Now,
	}
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByEmail(ctx, in.Email); err == nil {
		return nil, newError(KindDuplicateEmail, "Email already exists")
	} else if !errors.Is(err, store.ErrNoDocument) {
		s.log.Error().Err(err).Str("method", "Register").Msg("email lookup failed")
		return nil, err
	}

	hashed, err := auth.HashPassword(in.Password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return nil, fieldError("password", "password must be at most 72 bytes long")
	}
	if err != nil {
		s.log.Error().Err(err).Str("method", "Register").Msg("password hashing failed")
		return nil, err
	}

	role := models.DefaultRole
	if in.Role != "" {
		if role, err = models.ParseRole(in.Role); err != nil {
			return nil, fieldError("role", err.Error())
		}
	}

	now := s.timestamp()
	user := &models.User{
		Name:      in.Name,
		Email:     in.Email,
		Password:  hashed,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if store.IsDuplicateKey(err) {
			return nil, newError(KindDuplicateEmail, "Email already exists")
		}
		s.log.Error().Err(err).Str("method", "Register").Msg("insert failed")
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID.Hex()).Str("role", string(user.Role)).Msg("user registered")
	return s.authResult(user)
}

func (s *UserService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, store.ErrNoDocument) {
			return nil, newError(KindNotFound, "User not found")
		}
		s.log.Error().Err(err).Str("method", "Login").Msg("email lookup failed")
		return nil, err
	}

	if !auth.CheckPasswordHash(in.Password, user.Password) {
		s.log.Info().Str("user_id", user.ID.Hex()).Msg("invalid password attempt")
		return nil, newError(KindInvalidCredentials, "Invalid password")
	}

	return s.authResult(user)
}

// Refresh exchanges a refresh token for a new access token. The role is
// taken from the current user record, not from the old token.
func (s *UserService) Refresh(ctx context.Context, in RefreshInput) (*AuthResult, error) {
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}
	id, err := s.tokens.VerifyRefreshToken(in.RefreshToken)
	if err != nil {
		s.log.Debug().Err(err).Msg("refresh token rejected")
		return nil, newError(KindUnauthenticated, "Invalid or expired refresh token")
	}
	oid, err := primitive.ObjectIDFromHex(id.UserID)
	if err != nil {
		return nil, newError(KindUnauthenticated, "Invalid or expired refresh token")
	}
	user, err := s.repo.FindByID(ctx, oid)
	if err != nil {
		if errors.Is(err, store.ErrNoDocument) {
			return nil, newError(KindUnauthenticated, "Invalid or expired refresh token")
		}
		return nil, err
	}

	token, err := s.tokens.IssueToken(identityOf(user))
	if err != nil {
		return nil, err
	}
	user.Password = ""
	return &AuthResult{User: user, Token: token}, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	oid, err := parseObjectID(id, "Invalid user id")
	if err != nil {
		return nil, err
	}

	key := cacheKey(oid)
	if data, err := s.cache.Get(ctx, key); err == nil {
		var cached models.User
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.repo.FindByID(ctx, oid)
	if err != nil {
		if errors.Is(err, store.ErrNoDocument) {
			return nil, newError(KindNotFound, "User not found")
		}
		s.log.Error().Err(err).Str("method", "GetUser").Str("id", id).Msg("lookup failed")
		return nil, err
	}
	user.Password = ""

	if data, err := json.Marshal(user); err == nil {
		if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
			s.log.Warn().Err(err).Str("id", id).Msg("failed to cache user")
		}
	}
	return user, nil
}

func (s *UserService) UpdateUser(ctx context.Context, id string, in UpdateUserInput) (*models.User, error) {
	oid, err := parseObjectID(id, "Invalid user id")
	if err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}

	if other, err := s.repo.FindByEmail(ctx, in.Email); err == nil && other.ID != oid {
		return nil, newError(KindDuplicateEmail, "Email already exists")
	} else if err != nil && !errors.Is(err, store.ErrNoDocument) {
		return nil, err
	}

	upd := models.UserUpdate{Name: in.Name, Email: in.Email}
	if in.Role != "" {
		role, err := models.ParseRole(in.Role)
		if err != nil {
			return nil, fieldError("role", err.Error())
		}
		upd.Role = &role
	}

	user, err := s.repo.Update(ctx, oid, upd, s.timestamp())
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNoDocument):
			return nil, newError(KindNotFound, "User not found")
		case store.IsDuplicateKey(err):
			return nil, newError(KindDuplicateEmail, "Email already exists")
		}
		s.log.Error().Err(err).Str("method", "UpdateUser").Str("id", id).Msg("update failed")
		return nil, err
	}
	s.invalidate(ctx, oid)
	user.Password = ""
	return user, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	oid, err := parseObjectID(id, "Invalid user id")
	if err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, oid)
	if err != nil {
		s.log.Error().Err(err).Str("method", "DeleteUser").Str("id", id).Msg("delete failed")
		return err
	}
	if !deleted {
		return newError(KindNotFound, "User not found")
	}
	s.invalidate(ctx, oid)
	s.log.Info().Str("id", id).Msg("user deleted")
	return nil
}

func (s *UserService) authResult(user *models.User) (*AuthResult, error) {
	id := identityOf(user)
	token, err := s.tokens.IssueToken(id)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", id.UserID).Msg("failed to issue token")
		return nil, err
	}
	refresh, err := s.tokens.IssueRefreshToken(id)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", id.UserID).Msg("failed to issue refresh token")
		return nil, err
	}
	sanitized := *user
	sanitized.Password = ""
	return &AuthResult{User: &sanitized, Token: token, RefreshToken: refresh}, nil
}

func (s *UserService) invalidate(ctx context.Context, id primitive.ObjectID) {
	if err := s.cache.Delete(ctx, cacheKey(id)); err != nil {
		s.log.Warn().Err(err).Str("id", id.Hex()).Msg("failed to invalidate user cache")
	}
}

// timestamp is millisecond precision, matching what MongoDB stores.
func (s *UserService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func cacheKey(id primitive.ObjectID) string {
	return "user:" + id.Hex()
}

func identityOf(u *models.User) auth.Identity {
	return auth.Identity{UserID: u.ID.Hex(), Email: u.Email, Role: u.Role}
}
