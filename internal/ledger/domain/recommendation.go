package domain

import (
	"encoding/json"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Recommendation answers a Query. QueryID is a reference by value; the
// Query it names may no longer exist.
type Recommendation struct {
	ID               string            `gorm:"primaryKey;size:36"`
	QueryID          string            `gorm:"size:36;index;not null"`
	RecommenderEmail string            `gorm:"index"`
	Attributes       datatypes.JSONMap `gorm:"column:attributes"`
	CreatedAt        time.Time
}

func (r Recommendation) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Attributes)+4)
	for k, v := range r.Attributes {
		out[k] = v
	}
	out[KeyID] = r.ID
	out[KeyQueryID] = r.QueryID
	out[KeyRecommenderEmail] = r.RecommenderEmail
	out[KeyCreatedAt] = r.CreatedAt
	return json.Marshal(out)
}

func (r *Recommendation) AfterFind(tx *gorm.DB) error {
	normalizeMap(r.Attributes)
	return nil
}

var ErrQueryIDRequired = errors.New("queryId is required")

// NewRecommendation builds a Recommendation from submitted fields.
// queryId is mandatory; whether that Query exists is not checked here.
func NewRecommendation(fields Fields) (*Recommendation, error) {
	queryID, _, err := stringField(fields, KeyQueryID)
	if err != nil {
		return nil, err
	}
	if queryID == "" {
		return nil, ErrQueryIDRequired
	}

	email, _, err := stringField(fields, KeyRecommenderEmail)
	if err != nil {
		return nil, err
	}

	return &Recommendation{
		QueryID:          queryID,
		RecommenderEmail: email,
		Attributes:       copyAttributes(fields, KeyID, KeyQueryID, KeyRecommenderEmail, KeyCreatedAt),
	}, nil
}
