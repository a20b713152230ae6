package repository

import (
	"context"

	"recommend-backend/internal/ledger/domain"

	"gorm.io/gorm"
)

// gormStore implements Store over a single *gorm.DB (pool or transaction)
type gormStore struct {
	db              *gorm.DB
	queries         QueryRepository
	recommendations RecommendationRepository
}

// NewStore creates a Store sharing db between both repositories
func NewStore(db *gorm.DB) Store {
	return &gormStore{
		db:              db,
		queries:         NewQueryRepository(db),
		recommendations: NewRecommendationRepository(db),
	}
}

func (s *gormStore) Queries() QueryRepository {
	return s.queries
}

func (s *gormStore) Recommendations() RecommendationRepository {
	return s.recommendations
}

func (s *gormStore) Transaction(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// AutoMigrate creates the queries and recommendations tables if missing.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&domain.Query{}, &domain.Recommendation{})
}
