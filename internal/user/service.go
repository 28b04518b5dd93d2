package user

import (
	"context"
	"strings"

	"zayana-be/internal/db"
	"zayana-be/internal/logger"

	"go.uber.org/zap"
)

type Service interface {
	Register(ctx context.Context, email, password string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Get(ctx context.Context, principalID, userID int64) (*User, error)
	Update(ctx context.Context, principalID, userID int64, in UpdateInput) (*User, error)
	Delete(ctx context.Context, principalID, userID int64) error
}

type service struct {
	repo   Repository
	hasher PasswordHasher
	tokens TokenIssuer
}

func NewService(repo Repository, hasher PasswordHasher, tokens TokenIssuer) Service {
	return &service{repo: repo, hasher: hasher, tokens: tokens}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	at := strings.IndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return "", ErrInvalidEmail
	}
	return email, nil
}

func validatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrInvalidPassword
	}
	return nil
}

func (s *service) Register(ctx context.Context, email, password string) (*AuthResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Register"),
	)

	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return nil, ErrFailedSaveUser.Wrap(err)
	}

	u, err := s.repo.Create(ctx, email, hashed)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrEmailExists
		}
		log.Error("failed to create user", zap.Error(err))
		return nil, ErrFailedSaveUser.Wrap(err)
	}

	token, err := s.tokens.Generate(u.ID, u.Email)
	if err != nil {
		log.Error("failed to generate jwt", zap.Int64("user_id", u.ID), zap.Error(err))
		return nil, ErrFailedIssueToken.Wrap(err)
	}

	log.Info("register service completed", zap.Int64("user_id", u.ID))
	return &AuthResult{Token: token, User: u}, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Login"),
	)

	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, ErrFailedGetUser.Wrap(err)
	}
	if u == nil {
		log.Debug("email not found")
		return nil, ErrInvalidCredentials
	}
	if !s.hasher.Compare(u.PasswordHash, password) {
		log.Debug("password not match", zap.Int64("user_id", u.ID))
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(u.ID, u.Email)
	if err != nil {
		return nil, ErrFailedIssueToken.Wrap(err)
	}
	return &AuthResult{Token: token, User: u}, nil
}

func (s *service) Get(ctx context.Context, principalID, userID int64) (*User, error) {
	if principalID != userID {
		return nil, ErrForbidden
	}

	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, ErrFailedGetUser.Wrap(err)
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *service) Update(ctx context.Context, principalID, userID int64, in UpdateInput) (*User, error) {
	if principalID != userID {
		return nil, ErrForbidden
	}
	if in.IsEmpty() {
		return nil, ErrEmptyUpdate
	}

	var email, hash *string
	if in.Email != nil {
		e, err := normalizeEmail(*in.Email)
		if err != nil {
			return nil, err
		}
		email = &e
	}
	if in.Password != nil {
		if err := validatePassword(*in.Password); err != nil {
			return nil, err
		}
		h, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, ErrFailedSaveUser.Wrap(err)
		}
		hash = &h
	}

	u, err := s.repo.Update(ctx, userID, email, hash)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrEmailExists
		}
		return nil, ErrFailedSaveUser.Wrap(err)
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// Delete removes the account. The cart and order history go with it.
func (s *service) Delete(ctx context.Context, principalID, userID int64) error {
	if principalID != userID {
		return ErrForbidden
	}

	ok, err := s.repo.Delete(ctx, userID)
	if err != nil {
		return ErrFailedDeleteUser.Wrap(err)
	}
	if !ok {
		return ErrUserNotFound
	}

	logger.FromCtx(ctx).Info("user deleted", zap.Int64("user_id", userID))
	return nil
}
