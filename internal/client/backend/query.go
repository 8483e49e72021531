package backend

// Filter is an equality predicate.
type Filter struct {
	Column string
	Value  any
}

// Eq builds a Filter for column = value.
func Eq(column string, value any) Filter {
	return Filter{Column: column, Value: value}
}

type Order struct {
	Column    string
	Ascending bool
}

// Query reads rows of one table.
//
//	q := backend.From("items").Eq("list_id", id).Order("completed", true).Order("created_at", true)
type Query struct {
	Table   string
	Filters []Filter
	Orders  []Order
}

func From(table string) *Query {
	return &Query{Table: table}
}

func (q *Query) Eq(column string, value any) *Query {
	q.Filters = append(q.Filters, Eq(column, value))
	return q
}

// Order appends an ORDER BY term. Terms apply in the order they are added.
func (q *Query) Order(column string, ascending bool) *Query {
	q.Orders = append(q.Orders, Order{Column: column, Ascending: ascending})
	return q
}
