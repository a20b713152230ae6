package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Buyer identifies who posted a Query. Email drives ownership lookups;
// anything else the client sent under "buyer" is kept in Details.
type Buyer struct {
	Email   string            `gorm:"column:email;index"`
	Details datatypes.JSONMap `gorm:"column:details"`
}

func (b Buyer) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(b.Details)+1)
	for k, v := range b.Details {
		out[k] = v
	}
	out[KeyEmail] = b.Email
	return json.Marshal(out)
}

// Query is a buyer's request for product recommendations.
// RecommendationCount is owned by the ledger and tracks the live
// Recommendations whose QueryID equals ID. ProductNameFolded is the
// lowercased ProductName that search matches against; it is never
// rendered.
type Query struct {
	ID                  string            `gorm:"primaryKey;size:36"`
	Buyer               Buyer             `gorm:"embedded;embeddedPrefix:buyer_"`
	ProductName         string            `gorm:"column:product_name"`
	ProductNameFolded   string            `gorm:"index"`
	RecommendationCount int               `gorm:"not null;default:0"`
	Attributes          datatypes.JSONMap `gorm:"column:attributes"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// MarshalJSON flattens Attributes into the top level next to the known keys.
func (q Query) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(q.Attributes)+6)
	for k, v := range q.Attributes {
		out[k] = v
	}
	out[KeyID] = q.ID
	out[KeyBuyer] = q.Buyer
	out[KeyProductName] = q.ProductName
	out[KeyRecommendationCount] = q.RecommendationCount
	out[KeyCreatedAt] = q.CreatedAt
	out[KeyUpdatedAt] = q.UpdatedAt
	return json.Marshal(out)
}

// AfterFind gives stored attributes the same number type as submitted ones.
func (q *Query) AfterFind(tx *gorm.DB) error {
	normalizeMap(q.Attributes)
	normalizeMap(q.Buyer.Details)
	return nil
}

// NewQuery builds a Query from submitted fields. The count starts at zero
// unless the caller supplies one.
func NewQuery(fields Fields) (*Query, error) {
	q := &Query{}
	if err := q.setBuyer(fields); err != nil {
		return nil, err
	}

	name, _, err := stringField(fields, KeyProductName)
	if err != nil {
		return nil, err
	}
	q.ProductName = name

	if v, ok := fields[KeyRecommendationCount]; ok && v != nil {
		n, err := nonNegativeInt(KeyRecommendationCount, v)
		if err != nil {
			return nil, err
		}
		q.RecommendationCount = n
	}

	q.Attributes = copyAttributes(fields, KeyID, KeyBuyer, KeyProductName, KeyRecommendationCount, KeyCreatedAt, KeyUpdatedAt)
	return q, nil
}

// Apply replaces the named top-level keys. "buyer" is replaced as a whole.
// Identity, timestamps and the counter are never taken from fields.
// It reports whether anything changed.
func (q *Query) Apply(fields Fields) (bool, error) {
	before, err := q.contentJSON()
	if err != nil {
		return false, err
	}

	if _, ok := fields[KeyBuyer]; ok {
		if err := q.setBuyer(fields); err != nil {
			return false, err
		}
	}
	if name, ok, err := stringField(fields, KeyProductName); err != nil {
		return false, err
	} else if ok {
		q.ProductName = name
	}

	extra := copyAttributes(fields, KeyID, KeyBuyer, KeyProductName, KeyRecommendationCount, KeyCreatedAt, KeyUpdatedAt)
	if len(extra) > 0 {
		if q.Attributes == nil {
			q.Attributes = datatypes.JSONMap{}
		}
		for k, v := range extra {
			q.Attributes[k] = v
		}
	}

	after, err := q.contentJSON()
	if err != nil {
		return false, err
	}
	return !bytes.Equal(before, after), nil
}

func (q *Query) setBuyer(fields Fields) error {
	raw, ok := fields[KeyBuyer]
	if !ok || raw == nil {
		q.Buyer = Buyer{}
		return nil
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return fmt.Errorf("%s must be an object", KeyBuyer)
	}
	email, _, err := stringField(obj, KeyEmail)
	if err != nil {
		return fmt.Errorf("%s.%w", KeyBuyer, err)
	}
	q.Buyer = Buyer{
		Email:   email,
		Details: copyAttributes(obj, KeyEmail),
	}
	return nil
}

// contentJSON serializes the buyer-editable part of the record.
func (q *Query) contentJSON() ([]byte, error) {
	return json.Marshal(struct {
		Buyer       Buyer          `json:"buyer"`
		ProductName string         `json:"productName"`
		Attributes  map[string]any `json:"attributes"`
	}{q.Buyer, q.ProductName, q.Attributes})
}
