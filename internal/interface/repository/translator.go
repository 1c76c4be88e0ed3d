package repository

import (
	"go.mongodb.org/mongo-driver/bson"

	"tourdesk-service/internal/domain/query"
	"tourdesk-service/pkg/apperr"
	"tourdesk-service/pkg/identifier"
)

// fieldKind classifies a filterable field so the translator can reject
// filters the store query would silently misapply.
type fieldKind int

const (
	kindText    fieldKind = iota // free text, substring-searchable
	kindKeyword                  // enumerated string, exact match only
	kindDate
	kindNumber
	kindBool
	kindRef
)

// fieldSchema maps filterable field names to their kinds for one collection.
type fieldSchema map[string]fieldKind

var operatorFields = fieldSchema{
	"username":   kindText,
	"email":      kindText,
	"first_name": kindText,
	"last_name":  kindText,
	"role":       kindKeyword,
	"is_active":  kindBool,
	"created_at": kindDate,
	"updated_at": kindDate,
}

var agentFields = fieldSchema{
	"name":       kindText,
	"company":    kindText,
	"email":      kindText,
	"phone":      kindText,
	"country":    kindText,
	"address":    kindText,
	"notes":      kindText,
	"is_active":  kindBool,
	"user_id":    kindRef,
	"created_at": kindDate,
	"updated_at": kindDate,
}

var bookingFields = fieldSchema{
	"name":       kindText,
	"country":    kindText,
	"consultant": kindText,
	"notes":      kindText,
	"date_from":  kindDate,
	"date_to":    kindDate,
	"pax":        kindNumber,
	"ladies":     kindNumber,
	"men":        kindNumber,
	"children":   kindNumber,
	"teens":      kindNumber,
	"agent_id":   kindRef,
	"user_id":    kindRef,
	"created_at": kindDate,
	"updated_at": kindDate,
}

// translateFilter converts a structured filter request into a store
// predicate. Unknown keys and kind-mismatched clauses fail with
// apperr.ErrUnsupportedFilter instead of being dropped, so callers never
// believe an unapplied filter was honored. Clauses combine with AND.
func translateFilter(f query.Filter, schema fieldSchema) (bson.M, error) {
	predicate := bson.M{}
	for field, clause := range f {
		kind, ok := schema[field]
		if !ok {
			return nil, apperr.UnsupportedFilterf("unknown field %q", field)
		}
		switch c := clause.(type) {
		case query.Eq:
			if kind == kindRef {
				return nil, apperr.UnsupportedFilterf("field %q takes a reference filter", field)
			}
			if kind == kindDate {
				return nil, apperr.UnsupportedFilterf("field %q takes a range filter", field)
			}
			predicate[field] = c.Value
		case query.Range:
			if kind != kindDate {
				return nil, apperr.UnsupportedFilterf("range filter on non-date field %q", field)
			}
			if c.From == nil && c.To == nil {
				return nil, apperr.UnsupportedFilterf("empty range on field %q", field)
			}
			bounds := bson.M{}
			if c.From != nil {
				bounds["$gte"] = c.From.UTC()
			}
			if c.To != nil {
				bounds["$lte"] = c.To.UTC()
			}
			predicate[field] = bounds
		case query.Contains:
			if kind != kindText {
				return nil, apperr.UnsupportedFilterf("text filter on non-text field %q", field)
			}
			if c.Text == "" {
				return nil, apperr.UnsupportedFilterf("empty text filter on field %q", field)
			}
			predicate[field] = ciContains(c.Text)
		case query.RefEq:
			if kind != kindRef {
				return nil, apperr.UnsupportedFilterf("reference filter on non-reference field %q", field)
			}
			id, err := identifier.Decode(c.ID)
			if err != nil {
				return nil, err
			}
			predicate[field] = id
		default:
			return nil, apperr.UnsupportedFilterf("unknown clause on field %q", field)
		}
	}
	return predicate, nil
}

// translateSort validates the sort field against the schema and appends an
// identifier tie-break so equal timestamps paginate deterministically.
func translateSort(s query.Sort, schema fieldSchema) (bson.D, error) {
	if s.Field == "" {
		s = query.DefaultSort()
	}
	if _, ok := schema[s.Field]; !ok {
		return nil, apperr.UnsupportedFilterf("cannot sort by %q", s.Field)
	}
	direction := 1
	if s.Desc {
		direction = -1
	}
	return bson.D{{Key: s.Field, Value: direction}, {Key: "_id", Value: 1}}, nil
}
