// Package repository adapts the teacher's repository idiom
// (internal/repository/user_repository.go's interface+gorm-struct shape)
// to the ApiKey model this backend authenticates against.
package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/musewave/backend/internal/models"
)

var ErrApiKeyNotFound = errors.New("api key not found")

// ApiKeyRepository handles database operations for API keys.
type ApiKeyRepository interface {
	Create(ctx context.Context, key *models.ApiKey) error
	GetByKey(ctx context.Context, key string) (*models.ApiKey, error)
	GetByID(ctx context.Context, id string) (*models.ApiKey, error)
	List(ctx context.Context) ([]*models.ApiKey, error)
	Disable(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

type apiKeyRepository struct {
	db *gorm.DB
}

// NewApiKeyRepository constructs an ApiKeyRepository.
func NewApiKeyRepository(db *gorm.DB) ApiKeyRepository {
	return &apiKeyRepository{db: db}
}

func (r *apiKeyRepository) Create(ctx context.Context, key *models.ApiKey) error {
	return r.db.WithContext(ctx).Create(key).Error
}

func (r *apiKeyRepository) GetByKey(ctx context.Context, key string) (*models.ApiKey, error) {
	var apiKey models.ApiKey
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&apiKey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrApiKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return &apiKey, nil
}

func (r *apiKeyRepository) GetByID(ctx context.Context, id string) (*models.ApiKey, error) {
	var apiKey models.ApiKey
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&apiKey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrApiKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return &apiKey, nil
}

func (r *apiKeyRepository) List(ctx context.Context) ([]*models.ApiKey, error) {
	var keys []*models.ApiKey
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&keys).Error
	return keys, err
}

func (r *apiKeyRepository) Disable(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&models.ApiKey{}).
		Where("id = ?", id).
		Update("disabled_at", gorm.Expr("NOW()")).Error
}

func (r *apiKeyRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ApiKey{}).Count(&count).Error
	return count, err
}
