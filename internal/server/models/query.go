package models

// Filter is an equality predicate on a column.
type Filter struct {
	Column string
	Value  any
}

// Order is one sort term.
type Order struct {
	Column    string
	Ascending bool
}

// Query is a row selection against one table.
type Query struct {
	Table   string
	Filters []Filter
	Orders  []Order
}
