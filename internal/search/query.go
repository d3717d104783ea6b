package search

import (
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/paravault/paravault/internal/apperr"
	"github.com/paravault/paravault/internal/models"
)

// Operator combines a query's filter predicates.
type Operator string

// Filter operators. AND is the default.
const (
	OpAnd Operator = "AND"
	OpOr  Operator = "OR"
)

// Query is the structured filter for the basic search surface. A
// query must carry at least one criterion.
type Query struct {
	Tags     []string  `json:"tags,omitempty"`
	Title    string    `json:"title,omitempty"`
	Content  string    `json:"content,omitempty"`
	Category string    `json:"category,omitempty"`
	From     time.Time `json:"from,omitempty"`
	To       time.Time `json:"to,omitempty"`
	Operator Operator  `json:"operator,omitempty"`
	Limit    int       `json:"limit"`
	Offset   int       `json:"offset"`
}

// HasCriterion reports whether at least one filter criterion is set.
func (q *Query) HasCriterion() bool {
	return len(q.Tags) > 0 || q.Title != "" || q.Content != "" ||
		q.Category != "" || !q.From.IsZero() || !q.To.IsZero()
}

// Normalize applies defaults and canonical casing. The tag slice is
// replaced rather than rewritten so the caller's backing array stays
// untouched.
func (q *Query) Normalize() {
	if q.Operator == "" {
		q.Operator = OpAnd
	}
	q.Operator = Operator(strings.ToUpper(string(q.Operator)))
	q.Category = strings.ToLower(q.Category)
	if len(q.Tags) > 0 {
		tags := make([]string, len(q.Tags))
		for i, t := range q.Tags {
			tags[i] = strings.ToLower(strings.TrimSpace(t))
		}
		q.Tags = tags
	}
}

// Validate rejects an invalid query before any scan, naming the
// offending field. The query should be normalized first.
func (q *Query) Validate() error {
	if !q.HasCriterion() {
		return apperr.InvalidQuery("query", "at least one search criterion is required")
	}

	err := validation.ValidateStruct(q,
		validation.Field(&q.Limit, validation.Required, validation.Min(1)),
		validation.Field(&q.Offset, validation.Min(0)),
		validation.Field(&q.Operator, validation.In(OpAnd, OpOr)),
		validation.Field(&q.Category, validation.By(func(v any) error {
			s, _ := v.(string)
			if s != "" && !models.ValidCategory(s) {
				return errors.New("must be one of projects, areas, resources, archives")
			}
			return nil
		})),
	)
	if err != nil {
		var fieldErrs validation.Errors
		if errors.As(err, &fieldErrs) {
			for _, field := range []string{"Limit", "Offset", "Operator", "Category"} {
				if fe, ok := fieldErrs[field]; ok {
					return apperr.InvalidQuery(strings.ToLower(field), fe.Error())
				}
			}
		}
		return apperr.InvalidQuery("query", err.Error())
	}

	if !q.From.IsZero() && !q.To.IsZero() && q.From.After(q.To) {
		return apperr.InvalidQuery("from", "date range start is after its end")
	}
	return nil
}
