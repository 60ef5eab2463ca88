package provider

// Query directives form a minimal common vocabulary every adapter can
// translate to its backend's native query language. Directives are ordered;
// the core forwards them without validation or rewriting.

// Op is a filter comparison operator.
type Op string

const (
	OpEqual    Op = "eq"
	OpNotEqual Op = "ne"
	OpGreater  Op = "gt"
	OpLess     Op = "lt"
	OpContains Op = "contains"
)

// Kind discriminates query directives.
type Kind string

const (
	KindFilter Kind = "filter"
	KindSort   Kind = "sort"
	KindLimit  Kind = "limit"
	KindOffset Kind = "offset"
)

// Query is one directive in a filter/sort/pagination sequence.
type Query struct {
	Kind  Kind   `json:"kind"`
	Field string `json:"field,omitempty"`
	Op    Op     `json:"op,omitempty"`
	Value any    `json:"value,omitempty"`
	Desc  bool   `json:"desc,omitempty"`
	Count int    `json:"count,omitempty"`
}

// Filter matches documents whose field compares to value under op.
func Filter(field string, op Op, value any) Query {
	return Query{Kind: KindFilter, Field: field, Op: op, Value: value}
}

// SortAsc orders results by field ascending.
func SortAsc(field string) Query {
	return Query{Kind: KindSort, Field: field}
}

// SortDesc orders results by field descending.
func SortDesc(field string) Query {
	return Query{Kind: KindSort, Field: field, Desc: true}
}

// Limit caps the page size.
func Limit(n int) Query {
	return Query{Kind: KindLimit, Count: n}
}

// Offset skips the first n results.
func Offset(n int) Query {
	return Query{Kind: KindOffset, Count: n}
}
