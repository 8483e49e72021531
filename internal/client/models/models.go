// Package models defines the client-side records decoded from backend rows.
package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// List is a named shopping list owned by one user.
type List struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Item is one entry of a List.
type Item struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Quantity  string    `json:"quantity"`
	ListID    string    `json:"list_id"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
}

// ListFromRow decodes a row of the lists table.
func ListFromRow(row map[string]any) (List, error) {
	var l List
	if err := decode(row, &l); err != nil {
		return List{}, fmt.Errorf("decode list: %w", err)
	}
	return l, nil
}

// ItemFromRow decodes a row of the items table.
func ItemFromRow(row map[string]any) (Item, error) {
	var i Item
	if err := decode(row, &i); err != nil {
		return Item{}, fmt.Errorf("decode item: %w", err)
	}
	return i, nil
}

// ListsFromRows decodes rows in order, failing on the first bad one.
func ListsFromRows(rows []map[string]any) ([]List, error) {
	out := make([]List, 0, len(rows))
	for _, r := range rows {
		l, err := ListFromRow(r)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

func ItemsFromRows(rows []map[string]any) ([]Item, error) {
	out := make([]Item, 0, len(rows))
	for _, r := range rows {
		i, err := ItemFromRow(r)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, nil
}

// decode round-trips through JSON so created_at strings in RFC 3339 form
// land in time.Time fields.
func decode(row map[string]any, v any) error {
	b, err := json.Marshal(row)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}
