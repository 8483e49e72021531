package screens

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/shoplist/internal/client/backend"
	"github.com/dmitrijs2005/shoplist/internal/client/models"
	"github.com/dmitrijs2005/shoplist/internal/common"
)

var errNoRows = errors.New("insert returned no rows")

// ListsView is a snapshot of ListScreen for rendering.
type ListsView struct {
	State    ViewState
	Lists    []models.List
	FormOpen bool
	Draft    string
	User     backend.User
}

// Empty reports whether the loaded collection has no lists. It is false
// while loading.
func (v ListsView) Empty() bool {
	return v.State == Loaded && len(v.Lists) == 0
}

// ListScreen is the signed-in home: the user's shopping lists.
type ListScreen struct {
	deps Deps

	mu       sync.Mutex
	state    ViewState
	lists    []models.List
	user     backend.User
	formOpen bool
	draft    string
}

func NewListScreen(d Deps) *ListScreen {
	return &ListScreen{deps: d, state: Loading}
}

// Activate checks for a session and loads the user's lists. Without one, or
// when the check fails, the user is sent to sign-in.
func (s *ListScreen) Activate(ctx context.Context) {
	sess, err := s.deps.Backend.GetSession(ctx)
	if err != nil || sess == nil {
		if err != nil {
			s.deps.Logger.Warn(ctx, "session check failed", "error", err)
		}
		s.reset()
		s.deps.Nav.Replace(RouteLogin, nil)
		return
	}

	s.mu.Lock()
	s.user = sess.User
	s.mu.Unlock()

	s.Load(ctx, sess.User.ID)
}

func (s *ListScreen) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Loading
	s.lists = nil
	s.user = backend.User{}
	s.formOpen = false
	s.draft = ""
}

// Load fetches the lists of ownerID, newest first. On failure the previous
// collection is kept.
func (s *ListScreen) Load(ctx context.Context, ownerID string) {
	s.mu.Lock()
	s.state = Loading
	s.mu.Unlock()

	lists, err := s.fetch(ctx, ownerID)

	s.mu.Lock()
	s.state = Loaded
	if err == nil {
		s.lists = lists
	}
	s.mu.Unlock()

	if err != nil {
		s.deps.Logger.Warn(ctx, "loading lists failed", "error", err)
		s.deps.fail(errorText(err, errLoadLists))
	}
}

func (s *ListScreen) fetch(ctx context.Context, ownerID string) ([]models.List, error) {
	q := backend.From(common.TableLists).Eq("owner_id", ownerID).Order("created_at", false)
	rows, err := s.deps.Backend.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	return models.ListsFromRows(rows)
}

// Create inserts a list named name (trimmed) for the signed-in user and puts
// it at the head of the collection.
func (s *ListScreen) Create(ctx context.Context, name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		s.deps.fail(msgListNameRequired)
		return false
	}

	s.mu.Lock()
	ownerID := s.user.ID
	s.mu.Unlock()

	rows, err := s.deps.Backend.Insert(ctx, common.TableLists, backend.Row{"name": name, "owner_id": ownerID})
	if err == nil && len(rows) == 0 {
		err = errNoRows
	}
	var created models.List
	if err == nil {
		created, err = models.ListFromRow(rows[0])
	}
	if err != nil {
		s.deps.Logger.Warn(ctx, "creating list failed", "error", err)
		s.deps.fail(errorText(err, errCreateList))
		return false
	}

	s.mu.Lock()
	s.lists = append([]models.List{created}, s.lists...)
	s.draft = ""
	s.formOpen = false
	s.mu.Unlock()

	s.deps.success(msgListCreated)
	return true
}

// Delete removes the list id. The collection changes only after the backend
// confirms; an id that is not shown is not an error.
func (s *ListScreen) Delete(ctx context.Context, id string) bool {
	if _, err := s.deps.Backend.Delete(ctx, common.TableLists, backend.Eq("id", id)); err != nil {
		s.deps.Logger.Warn(ctx, "deleting list failed", "list_id", id, "error", err)
		s.deps.fail(errorText(err, errDeleteList))
		return false
	}

	s.mu.Lock()
	kept := s.lists[:0:0]
	for _, l := range s.lists {
		if l.ID != id {
			kept = append(kept, l)
		}
	}
	s.lists = kept
	s.mu.Unlock()

	s.deps.success(msgListDeleted)
	return true
}

// Select opens the items of l.
func (s *ListScreen) Select(l models.List) {
	s.deps.Nav.Push(RouteItems, Params{ParamListID: l.ID, ParamListName: l.Name})
}

func (s *ListScreen) SignOut(ctx context.Context) bool {
	if err := s.deps.Backend.SignOut(ctx); err != nil {
		s.deps.Logger.Warn(ctx, "sign-out failed", "error", err)
		s.deps.fail(errorText(err, errSignOut))
		return false
	}
	s.reset()
	s.deps.Nav.Replace(RouteLogin, nil)
	return true
}

// Export snapshots list id to object storage and shows the download link.
// Backends without export support report it through the notice.
func (s *ListScreen) Export(ctx context.Context, id string) (*backend.Export, bool) {
	exp, ok := s.deps.Backend.(backend.Exporter)
	if !ok {
		s.deps.fail(errExportList)
		return nil, false
	}

	res, err := exp.ExportList(ctx, id)
	if err != nil {
		s.deps.Logger.Warn(ctx, "export failed", "list_id", id, "error", err)
		s.deps.fail(errorText(err, errExportList))
		return nil, false
	}

	s.deps.success(fmt.Sprintf(msgExportReady, res.URL))
	return res, true
}

func (s *ListScreen) OpenForm() {
	s.mu.Lock()
	s.formOpen = true
	s.mu.Unlock()
}

// CloseForm hides the creation form. The draft is kept.
func (s *ListScreen) CloseForm() {
	s.mu.Lock()
	s.formOpen = false
	s.mu.Unlock()
}

func (s *ListScreen) SetDraft(name string) {
	s.mu.Lock()
	s.draft = name
	s.mu.Unlock()
}

func (s *ListScreen) Draft() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// View returns a copy of the screen state.
func (s *ListScreen) View() ListsView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ListsView{
		State:    s.state,
		Lists:    append([]models.List(nil), s.lists...),
		FormOpen: s.formOpen,
		Draft:    s.draft,
		User:     s.user,
	}
}
