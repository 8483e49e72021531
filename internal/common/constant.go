// Package common contains shared constants and sentinel errors used across
// the shoplist client and server.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// RequestIDHeaderName is the gRPC metadata key echoing the server-side
// request id back to the caller.
const RequestIDHeaderName = "x-request-id"

// Table names exposed by the row storage.
const (
	TableLists = "lists"
	TableItems = "items"
)

// DefaultItemQuantity is stored when an item is created without a quantity.
const DefaultItemQuantity = "1"
