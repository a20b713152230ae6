package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"recommend-backend/internal/apperr"
	"recommend-backend/internal/ledger/domain"
	"recommend-backend/internal/ledger/repository"
)

// ledgerUsecase implements LedgerUsecase interface
type ledgerUsecase struct {
	store         repository.Store
	transactional bool
}

// NewLedgerUsecase creates a new instance of ledgerUsecase. With
// transactional set, each child write and its counter update commit together.
func NewLedgerUsecase(store repository.Store, transactional bool) LedgerUsecase {
	return &ledgerUsecase{
		store:         store,
		transactional: transactional,
	}
}

func (u *ledgerUsecase) CreateQuery(ctx context.Context, fields domain.Fields) (*domain.InsertResult, error) {
	q, err := domain.NewQuery(fields)
	if err != nil {
		return nil, apperr.Validation("%v", err)
	}

	if err := u.store.Queries().Create(ctx, q); err != nil {
		return nil, apperr.Store("create query", err)
	}

	slog.Debug("query created", "id", q.ID, "buyer", q.Buyer.Email)
	return &domain.InsertResult{Acknowledged: true, InsertedID: q.ID}, nil
}

func (u *ledgerUsecase) GetQuery(ctx context.Context, id string) (*domain.Query, error) {
	q, err := u.store.Queries().FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Store("find query", err)
	}
	return q, nil
}

func (u *ledgerUsecase) ListQueriesByBuyerEmail(ctx context.Context, email string) ([]*domain.Query, error) {
	queries, err := u.store.Queries().FindByBuyerEmail(ctx, email)
	if err != nil {
		return nil, apperr.Store("list queries by buyer", err)
	}
	return queries, nil
}

func (u *ledgerUsecase) ListAllQueries(ctx context.Context, limit int) ([]*domain.Query, error) {
	queries, err := u.store.Queries().FindAll(ctx, limit)
	if err != nil {
		return nil, apperr.Store("list queries", err)
	}
	return queries, nil
}

func (u *ledgerUsecase) SearchQueriesByProductName(ctx context.Context, term string) ([]*domain.Query, error) {
	queries, err := u.store.Queries().SearchByProductName(ctx, term)
	if err != nil {
		return nil, apperr.Store("search queries", err)
	}
	return queries, nil
}

func (u *ledgerUsecase) UpdateQuery(ctx context.Context, id string, fields domain.Fields) (*domain.UpdateResult, error) {
	var result *domain.UpdateResult

	// read-modify-write of a single record
	err := u.store.Transaction(ctx, func(s repository.Store) error {
		existing, err := s.Queries().FindByID(ctx, id)
		if err != nil {
			return apperr.Store("find query", err)
		}

		if existing == nil {
			q, err := domain.NewQuery(fields)
			if err != nil {
				return apperr.Validation("%v", err)
			}
			q.ID = id
			inserted, err := s.Queries().CreateIfAbsent(ctx, q)
			if err != nil {
				return apperr.Store("upsert query", err)
			}
			if inserted {
				result = &domain.UpdateResult{Acknowledged: true, UpsertedCount: 1, UpsertedID: &q.ID}
				return nil
			}

			// a concurrent upsert inserted it first; update that record instead
			existing, err = s.Queries().LockByID(ctx, id)
			if err != nil {
				return apperr.Store("find query", err)
			}
			if existing == nil {
				return apperr.Store("upsert query", fmt.Errorf("query %s neither inserted nor found", id))
			}
		}

		changed, err := existing.Apply(fields)
		if err != nil {
			return apperr.Validation("%v", err)
		}
		result = &domain.UpdateResult{Acknowledged: true, MatchedCount: 1}
		if !changed {
			return nil
		}
		if err := s.Queries().UpdateContent(ctx, existing); err != nil {
			return apperr.Store("update query", err)
		}
		result.ModifiedCount = 1
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (u *ledgerUsecase) DeleteQuery(ctx context.Context, id string) (*domain.DeleteResult, error) {
	n, err := u.store.Queries().Delete(ctx, id)
	if err != nil {
		return nil, apperr.Store("delete query", err)
	}
	return &domain.DeleteResult{Acknowledged: true, DeletedCount: n}, nil
}

func (u *ledgerUsecase) CreateRecommendation(ctx context.Context, fields domain.Fields) (*domain.InsertResult, error) {
	rec, err := domain.NewRecommendation(fields)
	if err != nil {
		return nil, apperr.Validation("%v", err)
	}

	err = u.protocol(ctx, func(s repository.Store) error {
		if err := s.Recommendations().Create(ctx, rec); err != nil {
			return apperr.Store("create recommendation", err)
		}
		return u.adjustCount(ctx, s, rec.QueryID, +1)
	})
	if err != nil {
		return nil, err
	}

	return &domain.InsertResult{Acknowledged: true, InsertedID: rec.ID}, nil
}

func (u *ledgerUsecase) ListRecommendationsForQuery(ctx context.Context, queryID string) ([]*domain.Recommendation, error) {
	recs, err := u.store.Recommendations().FindByQueryID(ctx, queryID)
	if err != nil {
		return nil, apperr.Store("list recommendations for query", err)
	}
	return recs, nil
}

func (u *ledgerUsecase) ListRecommendationsByRecommenderEmail(ctx context.Context, email string) ([]*domain.Recommendation, error) {
	recs, err := u.store.Recommendations().FindByRecommenderEmail(ctx, email)
	if err != nil {
		return nil, apperr.Store("list recommendations by recommender", err)
	}
	return recs, nil
}

func (u *ledgerUsecase) ListRecommendationsForBuyer(ctx context.Context, email string) ([]*domain.Recommendation, error) {
	recs, err := u.store.Recommendations().FindByBuyerEmail(ctx, email)
	if err != nil {
		return nil, apperr.Store("list recommendations for buyer", err)
	}
	return recs, nil
}

func (u *ledgerUsecase) DeleteRecommendation(ctx context.Context, id string) (*domain.DeleteResult, error) {
	result := &domain.DeleteResult{Acknowledged: true}

	err := u.protocol(ctx, func(s repository.Store) error {
		rec, err := s.Recommendations().FindByID(ctx, id)
		if err != nil {
			return apperr.Store("find recommendation", err)
		}
		if rec == nil {
			// already gone: nothing to delete, nothing to decrement
			return nil
		}

		n, err := s.Recommendations().Delete(ctx, id)
		if err != nil {
			return apperr.Store("delete recommendation", err)
		}
		result.DeletedCount = n
		if n != 1 {
			return nil
		}
		return u.adjustCount(ctx, s, rec.QueryID, -1)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (u *ledgerUsecase) ReconcileCounts(ctx context.Context) (int, error) {
	ids, err := u.store.Queries().ListIDs(ctx)
	if err != nil {
		return 0, apperr.Store("list query ids", err)
	}

	corrected := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return corrected, err
		}

		// the row lock orders this against paired writes on the same Query
		err := u.store.Transaction(ctx, func(s repository.Store) error {
			q, err := s.Queries().LockByID(ctx, id)
			if err != nil || q == nil {
				return err
			}
			n, err := s.Recommendations().CountByQueryID(ctx, id)
			if err != nil {
				return err
			}
			if int64(q.RecommendationCount) == n {
				return nil
			}
			if err := s.Queries().SetRecommendationCount(ctx, id, n); err != nil {
				return err
			}
			slog.Info("recommendation count corrected", "query_id", id, "stored", q.RecommendationCount, "actual", n)
			corrected++
			return nil
		})
		if err != nil {
			return corrected, apperr.Store("reconcile recommendation count", err)
		}
	}
	return corrected, nil
}

// protocol runs a child write followed by its counter update, inside one
// transaction when configured.
func (u *ledgerUsecase) protocol(ctx context.Context, fn func(repository.Store) error) error {
	if u.transactional {
		return u.store.Transaction(ctx, fn)
	}
	return fn(u.store)
}

// adjustCount applies the second step of the protocol. A missing parent, or
// a decrement of a counter already at zero, is logged and ignored. Outside a transaction the child write has already
// happened, so a failed update is logged as a stale counter rather than
// reported; inside one it is returned and rolls the child write back.
func (u *ledgerUsecase) adjustCount(ctx context.Context, s repository.Store, queryID string, delta int) error {
	n, err := s.Queries().AdjustRecommendationCount(ctx, queryID, delta)
	if err != nil {
		if u.transactional {
			return apperr.Store("adjust recommendation count", err)
		}
		slog.Error("recommendation count left stale", "query_id", queryID, "delta", delta, "error", err)
		return nil
	}
	if n > 0 {
		return nil
	}

	if delta < 0 {
		q, err := s.Queries().FindByID(ctx, queryID)
		if err == nil && q != nil {
			slog.Warn("recommendation count not adjusted: already zero", "query_id", queryID, "delta", delta)
			return nil
		}
	}
	slog.Warn("recommendation count not adjusted: query missing", "query_id", queryID, "delta", delta)
	return nil
}
