package query

import "time"

// Clause is one filter condition on a single field. Clauses on different
// fields combine with logical AND; there is no OR combinator.
type Clause interface {
	clause()
}

// Eq matches documents whose field equals Value exactly.
type Eq struct {
	Value interface{}
}

// Range matches date fields inclusively between From and To. A nil bound
// means unbounded on that side.
type Range struct {
	From *time.Time
	To   *time.Time
}

// Contains matches text fields by case-insensitive substring.
type Contains struct {
	Text string
}

// RefEq matches reference fields against the string form of an identifier.
type RefEq struct {
	ID string
}

func (Eq) clause()       {}
func (Range) clause()    {}
func (Contains) clause() {}
func (RefEq) clause()    {}

// Filter maps field names to clauses.
type Filter map[string]Clause

// Sort names the field to order by and its direction.
type Sort struct {
	Field string
	Desc  bool
}

// DefaultSort orders newest first. Equal timestamps are tie-broken by
// identifier so pagination stays deterministic.
func DefaultSort() Sort {
	return Sort{Field: "created_at", Desc: true}
}

// Pagination limits per-page size to keep result sets bounded.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Page holds limit/offset pagination parameters.
type Page struct {
	Limit  int64
	Offset int64
}

// Clamp applies the default and maximum page size and floors the offset.
func (p Page) Clamp() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}
