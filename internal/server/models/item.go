package models

import "time"

// Item is one entry of a List.
type Item struct {
	ID        string
	Name      string
	Quantity  string
	ListID    string
	Completed bool
	CreatedAt time.Time
}

func (i *Item) Row() map[string]any {
	return map[string]any{
		"id":         i.ID,
		"name":       i.Name,
		"quantity":   i.Quantity,
		"list_id":    i.ListID,
		"completed":  i.Completed,
		"created_at": i.CreatedAt,
	}
}
