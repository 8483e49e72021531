package screens

import (
	"context"
	"strings"
	"sync"

	"github.com/dmitrijs2005/shoplist/internal/client/backend"
	"github.com/dmitrijs2005/shoplist/internal/client/models"
	"github.com/dmitrijs2005/shoplist/internal/common"
)

type ItemsView struct {
	State    ViewState
	ListID   string
	ListName string
	Items    []models.Item
	FormOpen bool
}

func (v ItemsView) Empty() bool {
	return v.State == Loaded && len(v.Items) == 0
}

// ItemScreen shows and edits the items of one list.
type ItemScreen struct {
	deps     Deps
	listID   string
	listName string

	mu       sync.Mutex
	state    ViewState
	items    []models.Item
	formOpen bool
}

// NewItemScreen builds the screen for the list named by the RouteItems
// parameters.
func NewItemScreen(d Deps, p Params) *ItemScreen {
	return &ItemScreen{
		deps:     d,
		listID:   p[ParamListID],
		listName: p[ParamListName],
		state:    Loading,
	}
}

// Load fetches the items, pending ones first, each group oldest first.
func (s *ItemScreen) Load(ctx context.Context) {
	s.mu.Lock()
	s.state = Loading
	s.mu.Unlock()

	q := backend.From(common.TableItems).
		Eq("list_id", s.listID).
		Order("completed", true).
		Order("created_at", true)

	rows, err := s.deps.Backend.Query(ctx, q)
	var items []models.Item
	if err == nil {
		items, err = models.ItemsFromRows(rows)
	}

	s.mu.Lock()
	s.state = Loaded
	if err == nil {
		s.items = items
	}
	s.mu.Unlock()

	if err != nil {
		s.deps.Logger.Warn(ctx, "loading items failed", "list_id", s.listID, "error", err)
		s.deps.fail(errorText(err, errLoadItems))
	}
}

// Create appends a new pending item. A blank quantity becomes "1".
func (s *ItemScreen) Create(ctx context.Context, name, quantity string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		s.deps.fail(msgItemNameRequired)
		return false
	}
	quantity = strings.TrimSpace(quantity)
	if quantity == "" {
		quantity = common.DefaultItemQuantity
	}

	rows, err := s.deps.Backend.Insert(ctx, common.TableItems, backend.Row{
		"name":      name,
		"quantity":  quantity,
		"list_id":   s.listID,
		"completed": false,
	})
	if err == nil && len(rows) == 0 {
		err = errNoRows
	}
	var created models.Item
	if err == nil {
		created, err = models.ItemFromRow(rows[0])
	}
	if err != nil {
		s.deps.Logger.Warn(ctx, "creating item failed", "list_id", s.listID, "error", err)
		s.deps.fail(errorText(err, errCreateItem))
		return false
	}

	s.mu.Lock()
	s.items = append(s.items, created)
	s.formOpen = false
	s.mu.Unlock()

	s.deps.success(msgItemCreated)
	return true
}

// Toggle flips the completed flag of item id. current is the flag as
// displayed; the local copy changes only after the backend accepts.
func (s *ItemScreen) Toggle(ctx context.Context, id string, current bool) bool {
	next := !current
	if _, err := s.deps.Backend.Update(ctx, common.TableItems, backend.Row{"completed": next}, backend.Eq("id", id)); err != nil {
		s.deps.Logger.Warn(ctx, "updating item failed", "item_id", id, "error", err)
		s.deps.fail(errorText(err, errUpdateItem))
		return false
	}

	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Completed = next
		}
	}
	s.mu.Unlock()
	return true
}

func (s *ItemScreen) Delete(ctx context.Context, id string) bool {
	if _, err := s.deps.Backend.Delete(ctx, common.TableItems, backend.Eq("id", id)); err != nil {
		s.deps.Logger.Warn(ctx, "deleting item failed", "item_id", id, "error", err)
		s.deps.fail(errorText(err, errDeleteItem))
		return false
	}

	s.mu.Lock()
	kept := s.items[:0:0]
	for _, it := range s.items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	s.items = kept
	s.mu.Unlock()

	s.deps.success(msgItemDeleted)
	return true
}

func (s *ItemScreen) Back() {
	s.deps.Nav.Back()
}

func (s *ItemScreen) OpenForm() {
	s.mu.Lock()
	s.formOpen = true
	s.mu.Unlock()
}

func (s *ItemScreen) CloseForm() {
	s.mu.Lock()
	s.formOpen = false
	s.mu.Unlock()
}

func (s *ItemScreen) View() ItemsView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ItemsView{
		State:    s.state,
		ListID:   s.listID,
		ListName: s.listName,
		Items:    append([]models.Item(nil), s.items...),
		FormOpen: s.formOpen,
	}
}
