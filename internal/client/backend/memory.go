package backend

import (
	"cmp"
	"context"
	"fmt"
	"net/mail"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/shoplist/internal/common"
	"github.com/dmitrijs2005/shoplist/internal/cryptox"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
)

// Method names accepted by MemoryBackend.FailOn.
const (
	OpSignIn     = "SignIn"
	OpSignUp     = "SignUp"
	OpSignOut    = "SignOut"
	OpGetSession = "GetSession"
	OpQuery      = "Query"
	OpInsert     = "Insert"
	OpUpdate     = "Update"
	OpDelete     = "Delete"
	OpExport     = "ExportList"
)

type tableSchema struct {
	columns  []string
	writable []string
	// default ordering when a query names none
	orders []Order
}

var schemas = map[string]tableSchema{
	common.TableLists: {
		columns: []string{"id", "name", "owner_id", "created_at"},
		orders:  []Order{{Column: "created_at"}},
	},
	common.TableItems: {
		columns:  []string{"id", "name", "quantity", "list_id", "completed", "created_at"},
		writable: []string{"name", "quantity", "completed"},
		orders:   []Order{{Column: "completed", Ascending: true}, {Column: "created_at", Ascending: true}},
	},
}

type memUser struct {
	user User
	salt []byte
	hash []byte
}

// MemoryBackend is an in-process Backend holding users and rows in maps.
// It enforces the same ownership rules as the server: lists belong to the
// signed-in user and items are reachable only through an owned list.
type MemoryBackend struct {
	mu      sync.Mutex
	now     func() time.Time
	users   map[string]*memUser // by email
	rows    map[string][]Row    // by table, created_at held as time.Time
	session *Session
	fail    map[string]error
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		now:   time.Now,
		users: make(map[string]*memUser),
		rows:  make(map[string][]Row),
		fail:  make(map[string]error),
	}
}

// FailOn makes every later call of op return err until FailOn(op, nil).
func (m *MemoryBackend) FailOn(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.fail, op)
		return
	}
	m.fail[op] = err
}

func (m *MemoryBackend) failure(op string) error {
	return m.fail[op]
}

func (m *MemoryBackend) SignUp(_ context.Context, email, password string, data map[string]any) (*SignUpResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(OpSignUp); err != nil {
		return nil, err
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, NewError(codes.InvalidArgument, "Unable to validate email address: invalid format")
	}
	if len(password) < 6 {
		return nil, NewError(codes.InvalidArgument, "Password should be at least 6 characters")
	}
	if _, ok := m.users[email]; ok {
		return nil, NewError(codes.AlreadyExists, "User already registered")
	}

	name, _ := data["name"].(string)
	salt := cryptox.NewSalt()
	u := &memUser{
		user: User{ID: uuid.NewString(), Email: email, Name: name, CreatedAt: m.now().UTC()},
		salt: salt,
		hash: cryptox.HashPassword([]byte(password), salt),
	}
	m.users[email] = u
	return &SignUpResult{User: u.user, ConfirmationRequired: true}, nil
}

func (m *MemoryBackend) SignIn(_ context.Context, email, password string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(OpSignIn); err != nil {
		return nil, err
	}

	u, ok := m.users[strings.ToLower(strings.TrimSpace(email))]
	if !ok || !cryptox.VerifyPassword([]byte(password), u.salt, u.hash) {
		return nil, NewError(codes.Unauthenticated, "Invalid login credentials")
	}

	m.session = &Session{
		AccessToken:  uuid.NewString(),
		RefreshToken: uuid.NewString(),
		ExpiresAt:    m.now().Add(time.Hour),
		User:         u.user,
	}
	cp := *m.session
	return &cp, nil
}

func (m *MemoryBackend) SignOut(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(OpSignOut); err != nil {
		return err
	}
	m.session = nil
	return nil
}

func (m *MemoryBackend) GetSession(context.Context) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(OpGetSession); err != nil {
		return nil, err
	}
	if m.session == nil {
		return nil, nil
	}
	cp := *m.session
	return &cp, nil
}

// caller returns the signed-in user id. Callers hold m.mu.
func (m *MemoryBackend) caller() (string, error) {
	if m.session == nil {
		return "", NewError(codes.Unauthenticated, msgSessionMissing)
	}
	return m.session.User.ID, nil
}

func schemaOf(table string) (tableSchema, error) {
	s, ok := schemas[table]
	if !ok {
		return tableSchema{}, NewError(codes.NotFound, fmt.Sprintf("relation %q does not exist", table))
	}
	return s, nil
}

func checkFilters(s tableSchema, filters []Filter) error {
	for _, f := range filters {
		if !slices.Contains(s.columns, f.Column) {
			return NewError(codes.InvalidArgument, fmt.Sprintf("column %q does not exist", f.Column))
		}
	}
	return nil
}

// visible reports whether row of table is reachable by ownerID.
func (m *MemoryBackend) visible(table string, row Row, ownerID string) bool {
	switch table {
	case common.TableLists:
		return row["owner_id"] == ownerID
	case common.TableItems:
		return m.ownsList(ownerID, row["list_id"])
	}
	return false
}

func (m *MemoryBackend) ownsList(ownerID string, listID any) bool {
	for _, l := range m.rows[common.TableLists] {
		if l["id"] == listID && l["owner_id"] == ownerID {
			return true
		}
	}
	return false
}

func matches(row Row, filters []Filter) bool {
	for _, f := range filters {
		if normalize(row[f.Column]) != normalize(f.Value) {
			return false
		}
	}
	return true
}

func normalize(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case time.Time:
		return n.UTC().Format(time.RFC3339Nano)
	}
	return v
}

func compareValues(a, b any) int {
	switch x := a.(type) {
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y)
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0
			case !x:
				return -1
			default:
				return 1
			}
		}
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y)
		}
	case float64:
		if y, ok := b.(float64); ok {
			return cmp.Compare(x, y)
		}
	}
	return 0
}

// export converts a stored row to its wire form.
func export(row Row) Row {
	out := make(Row, len(row))
	for k, v := range row {
		if t, ok := v.(time.Time); ok {
			v = t.UTC().Format(time.RFC3339Nano)
		}
		out[k] = v
	}
	return out
}

func (m *MemoryBackend) Query(_ context.Context, q *Query) ([]Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(OpQuery); err != nil {
		return nil, err
	}

	owner, err := m.caller()
	if err != nil {
		return nil, err
	}
	s, err := schemaOf(q.Table)
	if err != nil {
		return nil, err
	}
	if err := checkFilters(s, q.Filters); err != nil {
		return nil, err
	}
	orders := q.Orders
	if len(orders) == 0 {
		orders = s.orders
	}
	for _, o := range orders {
		if !slices.Contains(s.columns, o.Column) {
			return nil, NewError(codes.InvalidArgument, fmt.Sprintf("column %q does not exist", o.Column))
		}
	}

	var found []Row
	for _, r := range m.rows[q.Table] {
		if m.visible(q.Table, r, owner) && matches(r, q.Filters) {
			found = append(found, r)
		}
	}

	slices.SortStableFunc(found, func(a, b Row) int {
		for _, o := range orders {
			c := compareValues(a[o.Column], b[o.Column])
			if !o.Ascending {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})

	out := make([]Row, 0, len(found))
	for _, r := range found {
		out = append(out, export(r))
	}
	return out, nil
}

func (m *MemoryBackend) Insert(_ context.Context, table string, rows ...Row) ([]Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(OpInsert); err != nil {
		return nil, err
	}

	owner, err := m.caller()
	if err != nil {
		return nil, err
	}
	if _, err := schemaOf(table); err != nil {
		return nil, err
	}

	created := make([]Row, 0, len(rows))
	for _, in := range rows {
		r, err := m.newRow(table, owner, in)
		if err != nil {
			return nil, err
		}
		created = append(created, r)
	}

	m.rows[table] = append(m.rows[table], created...)
	out := make([]Row, 0, len(created))
	for _, r := range created {
		out = append(out, export(r))
	}
	return out, nil
}

// newRow validates in and fills server-side columns.
func (m *MemoryBackend) newRow(table, owner string, in Row) (Row, error) {
	name, _ := in["name"].(string)
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewError(codes.InvalidArgument, "name is required")
	}
	r := Row{"id": uuid.NewString(), "name": name, "created_at": m.now().UTC()}

	switch table {
	case common.TableLists:
		if o, ok := in["owner_id"]; ok && o != owner {
			return nil, NewError(codes.PermissionDenied, "new row violates row-level security policy for table \"lists\"")
		}
		r["owner_id"] = owner
	case common.TableItems:
		if !m.ownsList(owner, in["list_id"]) {
			return nil, NewError(codes.PermissionDenied, "new row violates row-level security policy for table \"items\"")
		}
		q, _ := in["quantity"].(string)
		if q = strings.TrimSpace(q); q == "" {
			q = common.DefaultItemQuantity
		}
		done, _ := in["completed"].(bool)
		r["list_id"] = in["list_id"]
		r["quantity"] = q
		r["completed"] = done
	}
	return r, nil
}

// normalizeValues checks values against the writable columns and trims text
// the way inserts do.
func normalizeValues(s tableSchema, values Row) (Row, error) {
	out := make(Row, len(values))
	for k, v := range values {
		if !slices.Contains(s.writable, k) {
			return nil, NewError(codes.InvalidArgument, fmt.Sprintf("column %q is not writable", k))
		}
		if text, ok := v.(string); ok && (k == "name" || k == "quantity") {
			v = strings.TrimSpace(text)
			if v == "" {
				return nil, NewError(codes.InvalidArgument, fmt.Sprintf("%s is required", k))
			}
		}
		out[k] = v
	}
	return out, nil
}

func (m *MemoryBackend) Update(_ context.Context, table string, values Row, filters ...Filter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(OpUpdate); err != nil {
		return 0, err
	}

	owner, err := m.caller()
	if err != nil {
		return 0, err
	}
	s, err := schemaOf(table)
	if err != nil {
		return 0, err
	}
	if len(s.writable) == 0 {
		return 0, NewError(codes.InvalidArgument, fmt.Sprintf("%s cannot be updated", table))
	}
	if len(filters) == 0 {
		return 0, NewError(codes.InvalidArgument, "UPDATE requires a WHERE clause")
	}
	if err := checkFilters(s, filters); err != nil {
		return 0, err
	}
	values, err = normalizeValues(s, values)
	if err != nil {
		return 0, err
	}

	var n int64
	for _, r := range m.rows[table] {
		if !m.visible(table, r, owner) || !matches(r, filters) {
			continue
		}
		for k, v := range values {
			r[k] = v
		}
		n++
	}
	return n, nil
}

func (m *MemoryBackend) Delete(_ context.Context, table string, filters ...Filter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(OpDelete); err != nil {
		return 0, err
	}

	owner, err := m.caller()
	if err != nil {
		return 0, err
	}
	s, err := schemaOf(table)
	if err != nil {
		return 0, err
	}
	if len(filters) == 0 {
		return 0, NewError(codes.InvalidArgument, "DELETE requires a WHERE clause")
	}
	if err := checkFilters(s, filters); err != nil {
		return 0, err
	}

	var removed []any
	kept := m.rows[table][:0]
	for _, r := range m.rows[table] {
		if m.visible(table, r, owner) && matches(r, filters) {
			removed = append(removed, r["id"])
			continue
		}
		kept = append(kept, r)
	}
	m.rows[table] = kept

	// items go with their list
	if table == common.TableLists && len(removed) > 0 {
		items := m.rows[common.TableItems][:0]
		for _, it := range m.rows[common.TableItems] {
			if !slices.Contains(removed, it["list_id"]) {
				items = append(items, it)
			}
		}
		m.rows[common.TableItems] = items
	}
	return int64(len(removed)), nil
}

// ExportList is not available without object storage.
func (m *MemoryBackend) ExportList(context.Context, string) (*Export, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(OpExport); err != nil {
		return nil, err
	}
	return nil, NewError(codes.Unimplemented, "Exportação disponível apenas com o servidor")
}
