package repository

import (
	"context"
	"errors"
	"time"

	"recommend-backend/internal/ledger/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// recommendationRepository implements RecommendationRepository interface
type recommendationRepository struct {
	db *gorm.DB
}

// NewRecommendationRepository creates a new instance of recommendationRepository
func NewRecommendationRepository(db *gorm.DB) RecommendationRepository {
	return &recommendationRepository{
		db: db,
	}
}

func (r *recommendationRepository) Create(ctx context.Context, rec *domain.Recommendation) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	rec.CreatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *recommendationRepository) FindByID(ctx context.Context, id string) (*domain.Recommendation, error) {
	var rec domain.Recommendation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (r *recommendationRepository) FindByQueryID(ctx context.Context, queryID string) ([]*domain.Recommendation, error) {
	return r.find(ctx, r.db.Where("query_id = ?", queryID))
}

func (r *recommendationRepository) FindByRecommenderEmail(ctx context.Context, email string) ([]*domain.Recommendation, error) {
	return r.find(ctx, r.db.Where("recommender_email = ?", email))
}

func (r *recommendationRepository) FindByBuyerEmail(ctx context.Context, email string) ([]*domain.Recommendation, error) {
	owned := r.db.Model(&domain.Query{}).Select("id").Where("buyer_email = ?", email)
	return r.find(ctx, r.db.Where("query_id IN (?)", owned))
}

func (r *recommendationRepository) CountByQueryID(ctx context.Context, queryID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Recommendation{}).Where("query_id = ?", queryID).Count(&n).Error
	return n, err
}

func (r *recommendationRepository) Delete(ctx context.Context, id string) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&domain.Recommendation{}, "id = ?", id)
	return result.RowsAffected, result.Error
}

func (r *recommendationRepository) find(ctx context.Context, scope *gorm.DB) ([]*domain.Recommendation, error) {
	var recs []*domain.Recommendation
	err := scope.WithContext(ctx).Order("created_at ASC, id ASC").Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return recs, nil
}
