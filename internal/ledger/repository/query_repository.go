package repository

import (
	"context"
	"errors"
	"time"

	"recommend-backend/internal/ledger/domain"
	"recommend-backend/pkg/search"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// queryRepository implements QueryRepository interface
type queryRepository struct {
	db *gorm.DB
}

// NewQueryRepository creates a new instance of queryRepository
func NewQueryRepository(db *gorm.DB) QueryRepository {
	return &queryRepository{
		db: db,
	}
}

func (r *queryRepository) Create(ctx context.Context, q *domain.Query) error {
	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	q.ProductNameFolded = search.Normalize(q.ProductName)
	now := time.Now().UTC()
	q.CreatedAt = now
	q.UpdatedAt = now
	return r.db.WithContext(ctx).Create(q).Error
}

func (r *queryRepository) CreateIfAbsent(ctx context.Context, q *domain.Query) (bool, error) {
	q.ProductNameFolded = search.Normalize(q.ProductName)
	now := time.Now().UTC()
	q.CreatedAt = now
	q.UpdatedAt = now
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(q)
	return result.RowsAffected == 1, result.Error
}

func (r *queryRepository) FindByID(ctx context.Context, id string) (*domain.Query, error) {
	var q domain.Query
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&q).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &q, nil
}

func (r *queryRepository) FindByBuyerEmail(ctx context.Context, email string) ([]*domain.Query, error) {
	var queries []*domain.Query
	err := r.db.WithContext(ctx).
		Where("buyer_email = ?", email).
		Order("created_at ASC, id ASC").
		Find(&queries).Error
	if err != nil {
		return nil, err
	}
	return queries, nil
}

func (r *queryRepository) FindAll(ctx context.Context, limit int) ([]*domain.Query, error) {
	var queries []*domain.Query
	query := r.db.WithContext(ctx).Order("created_at ASC, id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&queries).Error; err != nil {
		return nil, err
	}
	return queries, nil
}

func (r *queryRepository) SearchByProductName(ctx context.Context, term string) ([]*domain.Query, error) {
	var queries []*domain.Query
	err := r.db.WithContext(ctx).
		Where("product_name_folded LIKE ? ESCAPE '"+string(search.LikeEscape)+"'", search.ContainsPattern(term)).
		Order("created_at ASC, id ASC").
		Find(&queries).Error
	if err != nil {
		return nil, err
	}
	return queries, nil
}

func (r *queryRepository) UpdateContent(ctx context.Context, q *domain.Query) error {
	q.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Model(&domain.Query{}).
		Where("id = ?", q.ID).
		Updates(map[string]interface{}{
			"buyer_email":         q.Buyer.Email,
			"buyer_details":       q.Buyer.Details,
			"product_name":        q.ProductName,
			"product_name_folded": search.Normalize(q.ProductName),
			"attributes":          q.Attributes,
			"updated_at":          q.UpdatedAt,
		}).Error
}

func (r *queryRepository) Delete(ctx context.Context, id string) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&domain.Query{}, "id = ?", id)
	return result.RowsAffected, result.Error
}

func (r *queryRepository) AdjustRecommendationCount(ctx context.Context, id string, delta int) (int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Query{}).Where("id = ?", id)
	if delta < 0 {
		query = query.Where("recommendation_count >= ?", -delta)
	}
	result := query.UpdateColumn("recommendation_count", gorm.Expr("recommendation_count + ?", delta))
	return result.RowsAffected, result.Error
}

func (r *queryRepository) ListIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&domain.Query{}).Order("id ASC").Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *queryRepository) LockByID(ctx context.Context, id string) (*domain.Query, error) {
	var q domain.Query
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&q).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &q, nil
}

func (r *queryRepository) SetRecommendationCount(ctx context.Context, id string, count int64) error {
	return r.db.WithContext(ctx).Model(&domain.Query{}).
		Where("id = ?", id).
		UpdateColumn("recommendation_count", count).Error
}
