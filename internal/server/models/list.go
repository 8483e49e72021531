package models

import "time"

// List is a named shopping list owned by one user.
type List struct {
	ID        string
	Name      string
	OwnerID   string
	CreatedAt time.Time
}

// Row renders the list the way the row storage returns it.
func (l *List) Row() map[string]any {
	return map[string]any{
		"id":         l.ID,
		"name":       l.Name,
		"owner_id":   l.OwnerID,
		"created_at": l.CreatedAt,
	}
}
