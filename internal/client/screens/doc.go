// Package screens holds the view-models behind the client's four screens:
// sign-in, sign-up, shopping lists and the items of one list.
//
// Each screen owns its state (loading flag, collection, form draft) and talks
// to the outside world only through backend.Backend, a Navigator and a
// Notifier. Local mutations are applied after the backend acknowledges the
// request, never before.
package screens
