package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/musewave/backend/internal/models"
)

var ErrAssetNotFound = errors.New("asset not found")

// AssetRepository handles database operations for produced assets.
type AssetRepository interface {
	Create(ctx context.Context, asset *models.Asset) error
	GetByID(ctx context.Context, id string) (*models.Asset, error)
	ListByJob(ctx context.Context, jobID string) ([]*models.Asset, error)
}

type assetRepository struct {
	db *gorm.DB
}

// NewAssetRepository constructs an AssetRepository.
func NewAssetRepository(db *gorm.DB) AssetRepository {
	return &assetRepository{db: db}
}

// CreateAsset implements worker.AssetWriter, letting the pipeline handler
// depend on the narrower interface rather than the full repository.
func (r *assetRepository) CreateAsset(ctx context.Context, asset *models.Asset) error {
	return r.Create(ctx, asset)
}

func (r *assetRepository) Create(ctx context.Context, asset *models.Asset) error {
	return r.db.WithContext(ctx).Create(asset).Error
}

func (r *assetRepository) GetByID(ctx context.Context, id string) (*models.Asset, error) {
	var asset models.Asset
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&asset).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAssetNotFound
	}
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

func (r *assetRepository) ListByJob(ctx context.Context, jobID string) ([]*models.Asset, error) {
	var assets []*models.Asset
	err := r.db.WithContext(ctx).Where("job_id = ?", jobID).Order("created_at ASC").Find(&assets).Error
	return assets, err
}
