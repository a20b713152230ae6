package repository

import (
	"context"

	"recommend-backend/internal/ledger/domain"
)

// QueryRepository defines data access for Queries.
// Find* methods return (nil, nil) when no record matches.
type QueryRepository interface {
	// Create inserts q, assigning an ID when q.ID is empty
	Create(ctx context.Context, q *domain.Query) error

	// CreateIfAbsent inserts q unless a Query with q.ID already exists and
	// reports whether it inserted
	CreateIfAbsent(ctx context.Context, q *domain.Query) (bool, error)

	FindByID(ctx context.Context, id string) (*domain.Query, error)

	FindByBuyerEmail(ctx context.Context, email string) ([]*domain.Query, error)

	// FindAll returns every Query; limit <= 0 means no limit
	FindAll(ctx context.Context, limit int) ([]*domain.Query, error)

	// SearchByProductName matches a case-insensitive substring of product_name
	SearchByProductName(ctx context.Context, term string) ([]*domain.Query, error)

	// UpdateContent writes the buyer-editable columns of q. The counter is
	// left untouched so concurrent adjustments are never overwritten.
	UpdateContent(ctx context.Context, q *domain.Query) error

	Delete(ctx context.Context, id string) (int64, error)

	// AdjustRecommendationCount adds delta to the counter in one statement and
	// returns the number of rows changed (0 when the Query does not exist).
	// A decrement never takes the counter below zero.
	AdjustRecommendationCount(ctx context.Context, id string, delta int) (int64, error)

	// ListIDs returns the id of every Query
	ListIDs(ctx context.Context) ([]string, error)

	// LockByID is FindByID holding a row lock until the transaction ends.
	// Only meaningful inside Store.Transaction.
	LockByID(ctx context.Context, id string) (*domain.Query, error)

	SetRecommendationCount(ctx context.Context, id string, count int64) error
}

// RecommendationRepository defines data access for Recommendations.
type RecommendationRepository interface {
	Create(ctx context.Context, r *domain.Recommendation) error

	FindByID(ctx context.Context, id string) (*domain.Recommendation, error)

	FindByQueryID(ctx context.Context, queryID string) ([]*domain.Recommendation, error)

	FindByRecommenderEmail(ctx context.Context, email string) ([]*domain.Recommendation, error)

	// FindByBuyerEmail returns recommendations whose parent Query belongs to email
	FindByBuyerEmail(ctx context.Context, email string) ([]*domain.Recommendation, error)

	CountByQueryID(ctx context.Context, queryID string) (int64, error)

	Delete(ctx context.Context, id string) (int64, error)
}

// Store groups both repositories over one database handle.
type Store interface {
	Queries() QueryRepository
	Recommendations() RecommendationRepository

	// Transaction runs fn with a Store bound to a single database transaction.
	Transaction(ctx context.Context, fn func(Store) error) error
}
