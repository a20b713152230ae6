package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"recommend-backend/internal/apperr"
	"recommend-backend/internal/ledger/domain"
	"recommend-backend/internal/ledger/repository"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupStore(t *testing.T) repository.Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, repository.AutoMigrate(db))
	return repository.NewStore(db)
}

// modes runs fn once per protocol mode.
func modes(t *testing.T, fn func(t *testing.T, uc LedgerUsecase)) {
	for _, transactional := range []bool{false, true} {
		t.Run(fmt.Sprintf("transactional=%v", transactional), func(t *testing.T) {
			fn(t, NewLedgerUsecase(setupStore(t), transactional))
		})
	}
}

func createQuery(t *testing.T, uc LedgerUsecase, fields domain.Fields) string {
	t.Helper()
	res, err := uc.CreateQuery(context.Background(), fields)
	require.NoError(t, err)
	require.True(t, res.Acknowledged)
	return res.InsertedID
}

func countOf(t *testing.T, uc LedgerUsecase, id string) int {
	t.Helper()
	q, err := uc.GetQuery(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, q)
	return q.RecommendationCount
}

func TestEndToEndScenario(t *testing.T) {
	modes(t, func(t *testing.T, uc LedgerUsecase) {
		ctx := context.Background()

		q1 := createQuery(t, uc, domain.Fields{
			"buyer":       map[string]any{"email": "buyer@x.com"},
			"productName": "Laptop",
		})
		assert.Equal(t, 0, countOf(t, uc, q1))

		rec, err := uc.CreateRecommendation(ctx, domain.Fields{"queryId": q1, "recommenderEmail": "r@y.com"})
		require.NoError(t, err)
		assert.Equal(t, 1, countOf(t, uc, q1))

		del, err := uc.DeleteRecommendation(ctx, rec.InsertedID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, del.DeletedCount)
		assert.Equal(t, 0, countOf(t, uc, q1))
	})
}

func TestCountConsistency_ConcurrentInterleaving(t *testing.T) {
	const creates, deletes = 20, 8

	modes(t, func(t *testing.T, uc LedgerUsecase) {
		ctx := context.Background()
		q := createQuery(t, uc, domain.Fields{"productName": "Phone"})

		ids := make(chan string, creates)
		var wg sync.WaitGroup
		for i := 0; i < creates; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				res, err := uc.CreateRecommendation(ctx, domain.Fields{
					"queryId":          q,
					"recommenderEmail": fmt.Sprintf("r%d@y.com", i),
				})
				if assert.NoError(t, err) {
					ids <- res.InsertedID
				}
			}(i)
		}
		wg.Wait()
		close(ids)

		var created []string
		for id := range ids {
			created = append(created, id)
		}
		require.Len(t, created, creates)

		for _, id := range created[:deletes] {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				_, err := uc.DeleteRecommendation(ctx, id)
				assert.NoError(t, err)
			}(id)
		}
		wg.Wait()

		assert.Equal(t, creates-deletes, countOf(t, uc, q))

		recs, err := uc.ListRecommendationsForQuery(ctx, q)
		require.NoError(t, err)
		assert.Len(t, recs, creates-deletes)
	})
}

func TestOrphanTolerance(t *testing.T) {
	modes(t, func(t *testing.T, uc LedgerUsecase) {
		ctx := context.Background()
		other := createQuery(t, uc, domain.Fields{"productName": "Laptop"})

		res, err := uc.CreateRecommendation(ctx, domain.Fields{"queryId": "no-such-query", "recommenderEmail": "r@y.com"})
		require.NoError(t, err)
		assert.NotEmpty(t, res.InsertedID)

		recs, err := uc.ListRecommendationsForQuery(ctx, "no-such-query")
		require.NoError(t, err)
		assert.Len(t, recs, 1)

		assert.Equal(t, 0, countOf(t, uc, other))
		missing, err := uc.GetQuery(ctx, "no-such-query")
		require.NoError(t, err)
		assert.Nil(t, missing, "no query is created for the orphan")
	})
}

func TestDeleteRecommendation_Idempotent(t *testing.T) {
	modes(t, func(t *testing.T, uc LedgerUsecase) {
		ctx := context.Background()
		q := createQuery(t, uc, domain.Fields{"productName": "Laptop"})

		first, err := uc.CreateRecommendation(ctx, domain.Fields{"queryId": q})
		require.NoError(t, err)
		_, err = uc.CreateRecommendation(ctx, domain.Fields{"queryId": q})
		require.NoError(t, err)
		require.Equal(t, 2, countOf(t, uc, q))

		del, err := uc.DeleteRecommendation(ctx, first.InsertedID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, del.DeletedCount)

		again, err := uc.DeleteRecommendation(ctx, first.InsertedID)
		require.NoError(t, err)
		assert.True(t, again.Acknowledged)
		assert.Zero(t, again.DeletedCount)

		assert.Equal(t, 1, countOf(t, uc, q))
	})
}

func TestDeleteQuery_DoesNotCascade(t *testing.T) {
	ctx := context.Background()
	uc := NewLedgerUsecase(setupStore(t), false)

	q := createQuery(t, uc, domain.Fields{"productName": "Laptop"})
	rec, err := uc.CreateRecommendation(ctx, domain.Fields{"queryId": q})
	require.NoError(t, err)

	del, err := uc.DeleteQuery(ctx, q)
	require.NoError(t, err)
	assert.EqualValues(t, 1, del.DeletedCount)

	recs, err := uc.ListRecommendationsForQuery(ctx, q)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	// deleting the orphan afterwards is still fine
	res, err := uc.DeleteRecommendation(ctx, rec.InsertedID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.DeletedCount)
}

func TestUpdateQuery_Upsert(t *testing.T) {
	ctx := context.Background()
	uc := NewLedgerUsecase(setupStore(t), false)

	res, err := uc.UpdateQuery(ctx, "chosen-id", domain.Fields{
		"buyer":       map[string]any{"email": "buyer@x.com"},
		"productName": "Camera",
		"budget":      500.0,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 0, res.MatchedCount)
	assert.EqualValues(t, 1, res.UpsertedCount)
	require.NotNil(t, res.UpsertedID)
	assert.Equal(t, "chosen-id", *res.UpsertedID)

	q, err := uc.GetQuery(ctx, "chosen-id")
	require.NoError(t, err)
	require.NotNil(t, q)
	assert.Equal(t, "Camera", q.ProductName)
	assert.Equal(t, "buyer@x.com", q.Buyer.Email)
	assert.Equal(t, 500.0, q.Attributes["budget"])
}

func TestUpdateQuery_ReplacesNamedFields(t *testing.T) {
	ctx := context.Background()
	uc := NewLedgerUsecase(setupStore(t), false)

	id := createQuery(t, uc, domain.Fields{
		"buyer":       map[string]any{"email": "buyer@x.com", "name": "Bea"},
		"productName": "Laptop",
		"budget":      1000.0,
	})
	_, err := uc.CreateRecommendation(ctx, domain.Fields{"queryId": id})
	require.NoError(t, err)

	res, err := uc.UpdateQuery(ctx, id, domain.Fields{"budget": 1500.0, "recommendationCount": 0.0})
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.MatchedCount)
	assert.EqualValues(t, 1, res.ModifiedCount)
	assert.Nil(t, res.UpsertedID)

	q, err := uc.GetQuery(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1500.0, q.Attributes["budget"])
	assert.Equal(t, "Laptop", q.ProductName)
	assert.Equal(t, "Bea", q.Buyer.Details["name"])
	assert.Equal(t, 1, q.RecommendationCount, "the counter is not buyer-editable")

	same, err := uc.UpdateQuery(ctx, id, domain.Fields{"budget": 1500.0})
	require.NoError(t, err)
	assert.EqualValues(t, 1, same.MatchedCount)
	assert.Zero(t, same.ModifiedCount)
}

func TestUpdateQuery_Validation(t *testing.T) {
	uc := NewLedgerUsecase(setupStore(t), false)

	_, err := uc.UpdateQuery(context.Background(), "id", domain.Fields{"buyer": "nope"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestSearchQueriesByProductName_CaseInsensitive(t *testing.T) {
	ctx := context.Background()
	uc := NewLedgerUsecase(setupStore(t), false)

	createQuery(t, uc, domain.Fields{"productName": "Smartphone X"})
	createQuery(t, uc, domain.Fields{"productName": "Laptop"})

	found, err := uc.SearchQueriesByProductName(ctx, "phone")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Smartphone X", found[0].ProductName)
}

func TestListings(t *testing.T) {
	ctx := context.Background()
	uc := NewLedgerUsecase(setupStore(t), false)

	mine := createQuery(t, uc, domain.Fields{"buyer": map[string]any{"email": "buyer@x.com"}, "productName": "Laptop"})
	createQuery(t, uc, domain.Fields{"buyer": map[string]any{"email": "other@x.com"}, "productName": "Phone"})

	_, err := uc.CreateRecommendation(ctx, domain.Fields{"queryId": mine, "recommenderEmail": "r@y.com"})
	require.NoError(t, err)

	byBuyer, err := uc.ListQueriesByBuyerEmail(ctx, "buyer@x.com")
	require.NoError(t, err)
	assert.Len(t, byBuyer, 1)

	all, err := uc.ListAllQueries(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byRecommender, err := uc.ListRecommendationsByRecommenderEmail(ctx, "r@y.com")
	require.NoError(t, err)
	assert.Len(t, byRecommender, 1)

	forBuyer, err := uc.ListRecommendationsForBuyer(ctx, "buyer@x.com")
	require.NoError(t, err)
	assert.Len(t, forBuyer, 1)

	notForRecommender, err := uc.ListRecommendationsForBuyer(ctx, "r@y.com")
	require.NoError(t, err)
	assert.Empty(t, notForRecommender)
}

func TestCreateRecommendation_RequiresQueryID(t *testing.T) {
	uc := NewLedgerUsecase(setupStore(t), false)

	_, err := uc.CreateRecommendation(context.Background(), domain.Fields{"recommenderEmail": "r@y.com"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

// failingCounterStore wraps a Store whose counter updates always fail.
type failingCounterStore struct {
	repository.Store
	err error
}

func (s *failingCounterStore) Queries() repository.QueryRepository {
	return &failingCounterQueries{QueryRepository: s.Store.Queries(), err: s.err}
}

func (s *failingCounterStore) Transaction(ctx context.Context, fn func(repository.Store) error) error {
	return s.Store.Transaction(ctx, func(tx repository.Store) error {
		return fn(&failingCounterStore{Store: tx, err: s.err})
	})
}

type failingCounterQueries struct {
	repository.QueryRepository
	err error
}

func (q *failingCounterQueries) AdjustRecommendationCount(context.Context, string, int) (int64, error) {
	return 0, q.err
}

func TestCreateRecommendation_CounterFailure(t *testing.T) {
	ctx := context.Background()
	lost := errors.New("connection reset")

	t.Run("paired writes keep the child and leave the counter stale", func(t *testing.T) {
		inner := setupStore(t)
		uc := NewLedgerUsecase(&failingCounterStore{Store: inner, err: lost}, false)
		q := createQuery(t, uc, domain.Fields{"productName": "Laptop"})

		res, err := uc.CreateRecommendation(ctx, domain.Fields{"queryId": q})
		require.NoError(t, err)
		assert.NotEmpty(t, res.InsertedID)

		recs, err := uc.ListRecommendationsForQuery(ctx, q)
		require.NoError(t, err)
		assert.Len(t, recs, 1)
		assert.Equal(t, 0, countOf(t, uc, q))
	})

	t.Run("transactional mode rolls the child back", func(t *testing.T) {
		inner := setupStore(t)
		uc := NewLedgerUsecase(&failingCounterStore{Store: inner, err: lost}, true)
		q := createQuery(t, uc, domain.Fields{"productName": "Laptop"})

		_, err := uc.CreateRecommendation(ctx, domain.Fields{"queryId": q})
		assert.ErrorIs(t, err, apperr.ErrStoreFailure)
		assert.ErrorIs(t, err, lost)

		recs, err := uc.ListRecommendationsForQuery(ctx, q)
		require.NoError(t, err)
		assert.Empty(t, recs)
	})
}

func TestReconcileCounts(t *testing.T) {
	ctx := context.Background()
	inner := setupStore(t)

	// a counter left stale by a failed second step
	stale := NewLedgerUsecase(&failingCounterStore{Store: inner, err: errors.New("connection reset")}, false)
	q1 := createQuery(t, stale, domain.Fields{"productName": "Laptop"})
	_, err := stale.CreateRecommendation(ctx, domain.Fields{"queryId": q1})
	require.NoError(t, err)

	uc := NewLedgerUsecase(inner, false)
	q2 := createQuery(t, uc, domain.Fields{"productName": "Phone", "recommendationCount": 5.0})
	q3 := createQuery(t, uc, domain.Fields{"productName": "Tablet"})
	_, err = uc.CreateRecommendation(ctx, domain.Fields{"queryId": q3})
	require.NoError(t, err)

	corrected, err := uc.ReconcileCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, corrected)

	assert.Equal(t, 1, countOf(t, uc, q1))
	assert.Equal(t, 0, countOf(t, uc, q2))
	assert.Equal(t, 1, countOf(t, uc, q3))

	again, err := uc.ReconcileCounts(ctx)
	require.NoError(t, err)
	assert.Zero(t, again)
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	prev := slog.Default()
	var buf bytes.Buffer
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestAdjustCount_LogsWhyNothingChanged(t *testing.T) {
	ctx := context.Background()

	t.Run("counter already zero", func(t *testing.T) {
		store := setupStore(t)
		uc := NewLedgerUsecase(store, false)
		q := createQuery(t, uc, domain.Fields{"productName": "Laptop"})

		// a recommendation written without its counter step
		rec := &domain.Recommendation{QueryID: q}
		require.NoError(t, store.Recommendations().Create(ctx, rec))

		logs := captureLogs(t)
		res, err := uc.DeleteRecommendation(ctx, rec.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, res.DeletedCount)
		assert.Equal(t, 0, countOf(t, uc, q))

		assert.Contains(t, logs.String(), "already zero")
		assert.NotContains(t, logs.String(), "query missing")
	})

	t.Run("query missing", func(t *testing.T) {
		uc := NewLedgerUsecase(setupStore(t), false)

		logs := captureLogs(t)
		rec, err := uc.CreateRecommendation(ctx, domain.Fields{"queryId": "gone"})
		require.NoError(t, err)
		_, err = uc.DeleteRecommendation(ctx, rec.InsertedID)
		require.NoError(t, err)

		assert.Equal(t, 2, strings.Count(logs.String(), "query missing"))
		assert.NotContains(t, logs.String(), "already zero")
	})
}

// lateInsertStore hides existing Queries from FindByID, as when another
// upsert inserts the id between this one's read and its insert.
type lateInsertStore struct {
	repository.Store
}

func (s *lateInsertStore) Queries() repository.QueryRepository {
	return &lateInsertQueries{QueryRepository: s.Store.Queries()}
}

func (s *lateInsertStore) Transaction(ctx context.Context, fn func(repository.Store) error) error {
	return s.Store.Transaction(ctx, func(tx repository.Store) error {
		return fn(&lateInsertStore{Store: tx})
	})
}

type lateInsertQueries struct {
	repository.QueryRepository
}

func (q *lateInsertQueries) FindByID(context.Context, string) (*domain.Query, error) {
	return nil, nil
}

func TestUpdateQuery_LosingConcurrentUpsertUpdates(t *testing.T) {
	ctx := context.Background()
	inner := setupStore(t)

	winner := NewLedgerUsecase(inner, false)
	res, err := winner.UpdateQuery(ctx, "shared-id", domain.Fields{"productName": "Camera"})
	require.NoError(t, err)
	require.EqualValues(t, 1, res.UpsertedCount)

	loser := NewLedgerUsecase(&lateInsertStore{Store: inner}, false)
	res, err = loser.UpdateQuery(ctx, "shared-id", domain.Fields{"productName": "Camera", "budget": 300.0})
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.MatchedCount)
	assert.EqualValues(t, 1, res.ModifiedCount)
	assert.Zero(t, res.UpsertedCount)
	assert.Nil(t, res.UpsertedID)

	q, err := winner.GetQuery(ctx, "shared-id")
	require.NoError(t, err)
	require.NotNil(t, q)
	assert.Equal(t, 300.0, q.Attributes["budget"])
}
