package rpc

import (
	"encoding/json"
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

// Row is one record of a table as it travels over the wire.
type Row = map[string]any

// Filter is an equality predicate: Column = Value.
type Filter struct {
	Column string `json:"column"`
	Value  any    `json:"value"`
}

// Order is one ORDER BY term.
type Order struct {
	Column    string `json:"column"`
	Ascending bool   `json:"ascending"`
}

// Query selects rows of Table matching every filter, sorted by Orders.
type Query struct {
	Table   string   `json:"table"`
	Filters []Filter `json:"filters,omitempty"`
	Orders  []Order  `json:"order,omitempty"`
}

type InsertRequest struct {
	Table string `json:"table"`
	Rows  []Row  `json:"rows"`
}

type UpdateRequest struct {
	Table   string   `json:"table"`
	Values  Row      `json:"values"`
	Filters []Filter `json:"filters,omitempty"`
}

type DeleteRequest struct {
	Table   string   `json:"table"`
	Filters []Filter `json:"filters,omitempty"`
}

type RowsResponse struct {
	Rows []Row `json:"rows"`
}

type CountResponse struct {
	Count int64 `json:"count"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUpRequest carries the credentials plus free-form profile attributes.
type SignUpRequest struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Data     map[string]any `json:"data,omitempty"`
}

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is returned by SignIn and RefreshToken. ExpiresAt is the access
// token expiry in Unix seconds.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
	User         User   `json:"user"`
}

type SignUpResponse struct {
	User                 User `json:"user"`
	ConfirmationRequired bool `json:"confirmation_required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type SignOutRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}

type ExportRequest struct {
	ListID string `json:"list_id"`
}

type ExportResponse struct {
	URL       string `json:"url"`
	Key       string `json:"key"`
	ExpiresAt int64  `json:"expires_at"`
}

type PingResponse struct {
	Status string `json:"status"`
}

// ToStruct converts a JSON-tagged value into a protobuf Struct.
func ToStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return s, nil
}

// FromStruct decodes s into the JSON-tagged value pointed to by v.
func FromStruct(s *structpb.Struct, v any) error {
	if s == nil {
		s = &structpb.Struct{}
	}
	b, err := json.Marshal(s.AsMap())
	if err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}
