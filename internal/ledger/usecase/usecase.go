package usecase

import (
	"context"

	"recommend-backend/internal/ledger/domain"
)

// LedgerUsecase defines CRUD over Queries and Recommendations and keeps
// each Query's recommendationCount in step with its Recommendations.
type LedgerUsecase interface {
	CreateQuery(ctx context.Context, fields domain.Fields) (*domain.InsertResult, error)

	// GetQuery returns (nil, nil) when no Query has that id
	GetQuery(ctx context.Context, id string) (*domain.Query, error)

	ListQueriesByBuyerEmail(ctx context.Context, email string) ([]*domain.Query, error)

	// ListAllQueries returns every Query; limit <= 0 means unbounded
	ListAllQueries(ctx context.Context, limit int) ([]*domain.Query, error)

	SearchQueriesByProductName(ctx context.Context, term string) ([]*domain.Query, error)

	// UpdateQuery replaces the named top-level fields, inserting a Query
	// with that id when none exists
	UpdateQuery(ctx context.Context, id string, fields domain.Fields) (*domain.UpdateResult, error)

	// DeleteQuery removes the Query only; its Recommendations stay
	DeleteQuery(ctx context.Context, id string) (*domain.DeleteResult, error)

	// CreateRecommendation inserts the Recommendation, then increments the
	// parent's counter. A missing parent leaves an orphan and is not an error.
	CreateRecommendation(ctx context.Context, fields domain.Fields) (*domain.InsertResult, error)

	ListRecommendationsForQuery(ctx context.Context, queryID string) ([]*domain.Recommendation, error)

	ListRecommendationsByRecommenderEmail(ctx context.Context, email string) ([]*domain.Recommendation, error)

	// ListRecommendationsForBuyer returns Recommendations on Queries owned by email
	ListRecommendationsForBuyer(ctx context.Context, email string) ([]*domain.Recommendation, error)

	// DeleteRecommendation deletes by id and decrements the parent's counter
	// only when exactly one record was removed
	DeleteRecommendation(ctx context.Context, id string) (*domain.DeleteResult, error)

	// ReconcileCounts recomputes every stored recommendationCount from the
	// live Recommendations and returns how many Queries were corrected
	ReconcileCounts(ctx context.Context) (int, error)
}
