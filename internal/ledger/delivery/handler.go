package delivery

import (
	"net/http"
	"strconv"

	"recommend-backend/internal/apperr"
	"recommend-backend/internal/ledger/domain"
	"recommend-backend/internal/ledger/usecase"

	"github.com/gin-gonic/gin"
)

type LedgerHandler struct {
	ledgerUsecase usecase.LedgerUsecase
}

func NewLedgerHandler(ledgerUsecase usecase.LedgerUsecase) *LedgerHandler {
	return &LedgerHandler{
		ledgerUsecase: ledgerUsecase,
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
}

func bindFields(c *gin.Context) (domain.Fields, bool) {
	var fields domain.Fields
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	if fields == nil {
		fields = domain.Fields{}
	}
	return fields, true
}

// list writes items, rendering an empty result as [] rather than null.
func list[T any](c *gin.Context, items []T) {
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, items)
}

func (h *LedgerHandler) CreateQuery(c *gin.Context) {
	fields, ok := bindFields(c)
	if !ok {
		return
	}

	result, err := h.ledgerUsecase.CreateQuery(c.Request.Context(), fields)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *LedgerHandler) ListQueries(c *gin.Context) {
	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	queries, err := h.ledgerUsecase.ListAllQueries(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	list(c, queries)
}

func (h *LedgerHandler) ListQueriesByEmail(c *gin.Context) {
	queries, err := h.ledgerUsecase.ListQueriesByBuyerEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		respondError(c, err)
		return
	}

	list(c, queries)
}

// GetQuery answers 200 with null when the id is unknown.
func (h *LedgerHandler) GetQuery(c *gin.Context) {
	query, err := h.ledgerUsecase.GetQuery(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	if query == nil {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, query)
}

func (h *LedgerHandler) UpdateQuery(c *gin.Context) {
	fields, ok := bindFields(c)
	if !ok {
		return
	}

	result, err := h.ledgerUsecase.UpdateQuery(c.Request.Context(), c.Param("id"), fields)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *LedgerHandler) DeleteQuery(c *gin.Context) {
	result, err := h.ledgerUsecase.DeleteQuery(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *LedgerHandler) SearchQueries(c *gin.Context) {
	queries, err := h.ledgerUsecase.SearchQueriesByProductName(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}

	list(c, queries)
}

func (h *LedgerHandler) CreateRecommendation(c *gin.Context) {
	fields, ok := bindFields(c)
	if !ok {
		return
	}

	result, err := h.ledgerUsecase.CreateRecommendation(c.Request.Context(), fields)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *LedgerHandler) ListRecommendationsForQuery(c *gin.Context) {
	recs, err := h.ledgerUsecase.ListRecommendationsForQuery(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	list(c, recs)
}

// ListRecommendationsByRecommender serves both /recommended-by-me and
// /recommendedForMe.
func (h *LedgerHandler) ListRecommendationsByRecommender(c *gin.Context) {
	recs, err := h.ledgerUsecase.ListRecommendationsByRecommenderEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		respondError(c, err)
		return
	}

	list(c, recs)
}

func (h *LedgerHandler) ListRecommendationsForBuyer(c *gin.Context) {
	recs, err := h.ledgerUsecase.ListRecommendationsForBuyer(c.Request.Context(), c.Param("email"))
	if err != nil {
		respondError(c, err)
		return
	}

	list(c, recs)
}

func (h *LedgerHandler) DeleteRecommendation(c *gin.Context) {
	result, err := h.ledgerUsecase.DeleteRecommendation(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
