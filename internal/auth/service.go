// Package auth implements API-key bearer authentication, generalized from
// the teacher's JWT Authorization-header idiom
// (internal/handlers/auth.go's AuthMiddleware) to a per-request lookup
// against the ApiKey repository rather than token verification.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/musewave/backend/internal/models"
	"github.com/musewave/backend/internal/repository"
)

var (
	ErrMissingKey  = errors.New("no api key provided")
	ErrInvalidKey  = errors.New("api key is invalid")
	ErrKeyDisabled = errors.New("api key is disabled")
)

// Service resolves bearer tokens to ApiKey rows.
type Service struct {
	repo repository.ApiKeyRepository
}

// NewService constructs a Service.
func NewService(repo repository.ApiKeyRepository) *Service {
	return &Service{repo: repo}
}

// Authenticate looks up token (the raw bearer credential, no "Bearer "
// prefix) and returns its ApiKey row, or a sentinel error distinguishing
// "missing/unknown" (401) from "disabled" (403) per spec.md §6.
func (s *Service) Authenticate(ctx context.Context, token string) (*models.ApiKey, error) {
	if token == "" {
		return nil, ErrMissingKey
	}

	key, err := s.repo.GetByKey(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrApiKeyNotFound) {
			return nil, ErrInvalidKey
		}
		return nil, err
	}

	// Defense against timing attacks even though the lookup above already
	// matched by value; keeps the comparison discipline consistent with
	// any future key format that compares against a static secret.
	if subtle.ConstantTimeCompare([]byte(key.Key), []byte(token)) != 1 {
		return nil, ErrInvalidKey
	}

	if key.Disabled() {
		return nil, ErrKeyDisabled
	}

	return key, nil
}
