package backend

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/shoplist/internal/common"
	"github.com/dmitrijs2005/shoplist/internal/logging"
	"github.com/dmitrijs2005/shoplist/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const msgSessionMissing = "Auth session missing!"

// methods sent without an access token
var publicMethods = map[string]bool{
	rpc.FullMethod(rpc.MethodPing):         true,
	rpc.FullMethod(rpc.MethodSignUp):       true,
	rpc.FullMethod(rpc.MethodSignIn):       true,
	rpc.FullMethod(rpc.MethodRefreshToken): true,
}

// GRPCBackend implements Backend against the shoplist server. Calls that
// fail with an expired access token are retried once after a refresh.
type GRPCBackend struct {
	conn    *grpc.ClientConn
	client  *rpc.BackendClient
	store   SessionStore
	timeout time.Duration
	logger  logging.Logger
	now     func() time.Time

	mu      sync.Mutex
	session *Session
	loaded  bool

	refreshMu sync.Mutex
}

// NewGRPCBackend creates a client for addr. Extra dial options are appended
// to the defaults (insecure transport and the token interceptor).
func NewGRPCBackend(addr string, store SessionStore, timeout time.Duration, logger logging.Logger, opts ...grpc.DialOption) (*GRPCBackend, error) {
	b := &GRPCBackend{
		store:   store,
		timeout: timeout,
		logger:  logger.With("module", "backend"),
		now:     time.Now,
	}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(b.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(addr, dialOpts...)
	if err != nil {
		return nil, err
	}
	b.conn = conn
	b.client = rpc.NewBackendClient(conn)
	return b, nil
}

func (b *GRPCBackend) Close() error {
	return b.conn.Close()
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)
	return metadata.NewOutgoingContext(ctx, md)
}

func isTokenExpired(err error) bool {
	st, ok := status.FromError(err)
	return ok && st.Code() == codes.Unauthenticated && st.Message() == common.ErrTokenExpired.Error()
}

func (b *GRPCBackend) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if publicMethods[method] {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	s, err := b.current(ctx)
	if err != nil {
		return err
	}
	if s == nil {
		return NewError(codes.Unauthenticated, msgSessionMissing)
	}

	err = invoker(withAccessToken(ctx, s.AccessToken), method, req, reply, cc, opts...)
	if !isTokenExpired(err) {
		return err
	}

	fresh, err := b.refresh(ctx, s)
	if err != nil {
		return err
	}
	return invoker(withAccessToken(ctx, fresh.AccessToken), method, req, reply, cc, opts...)
}

// current returns the cached session, reading the store on first use.
func (b *GRPCBackend) current(ctx context.Context) (*Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.loaded {
		s, err := b.store.Load(ctx)
		if err != nil {
			return nil, err
		}
		b.session = s
		b.loaded = true
	}
	if b.session == nil {
		return nil, nil
	}
	cp := *b.session
	return &cp, nil
}

func (b *GRPCBackend) setSession(ctx context.Context, s *Session) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.store.Save(ctx, s); err != nil {
		return err
	}
	cp := *s
	b.session = &cp
	b.loaded = true
	return nil
}

func (b *GRPCBackend) clearSession(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.session = nil
	b.loaded = true
	return b.store.Clear(ctx)
}

// refresh exchanges the refresh token of stale for a new session. When
// another call already refreshed it, the newer session is returned as is.
func (b *GRPCBackend) refresh(ctx context.Context, stale *Session) (*Session, error) {
	b.refreshMu.Lock()
	defer b.refreshMu.Unlock()

	cur, err := b.current(ctx)
	if err != nil {
		return nil, err
	}
	if cur == nil || cur.RefreshToken == "" {
		return nil, NewError(codes.Unauthenticated, msgSessionMissing)
	}
	if cur.AccessToken != stale.AccessToken {
		return cur, nil
	}

	in, err := rpc.ToStruct(rpc.RefreshRequest{RefreshToken: cur.RefreshToken})
	if err != nil {
		return nil, err
	}
	out, err := b.client.Call(ctx, rpc.MethodRefreshToken, in)
	if err != nil {
		if status.Code(err) == codes.Unauthenticated {
			b.logger.Warn(ctx, "session refresh rejected, signing out", "error", err)
			_ = b.clearSession(ctx)
		}
		return nil, FromRPC(err)
	}

	var resp rpc.Session
	if err := rpc.FromStruct(out, &resp); err != nil {
		return nil, err
	}
	fresh := toSession(resp)
	if err := b.setSession(ctx, fresh); err != nil {
		return nil, err
	}
	b.logger.Debug(ctx, "session refreshed", "user_id", fresh.User.ID)
	return fresh, nil
}

func (b *GRPCBackend) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, b.timeout)
}

// call encodes req, invokes method and decodes the response into resp
// (when resp is non-nil).
func (b *GRPCBackend) call(ctx context.Context, method string, req, resp any) error {
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	in, err := rpc.ToStruct(req)
	if err != nil {
		return err
	}

	start := time.Now()
	out, err := b.client.Call(ctx, method, in)
	b.logger.Debug(ctx, "rpc", "method", method, "duration", time.Since(start), "code", status.Code(err).String())
	if err != nil {
		return FromRPC(err)
	}
	if resp == nil {
		return nil
	}
	return rpc.FromStruct(out, resp)
}

func toUser(u rpc.User) User {
	return User{ID: u.ID, Email: u.Email, Name: u.Name, CreatedAt: u.CreatedAt}
}

func toSession(s rpc.Session) *Session {
	return &Session{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		ExpiresAt:    time.Unix(s.ExpiresAt, 0),
		User:         toUser(s.User),
	}
}

// Ping checks the server is reachable.
func (b *GRPCBackend) Ping(ctx context.Context) error {
	var resp rpc.PingResponse
	if err := b.call(ctx, rpc.MethodPing, struct{}{}, &resp); err != nil {
		return err
	}
	if resp.Status != "OK" {
		return NewError(codes.Unavailable, "server is not ready")
	}
	return nil
}

func (b *GRPCBackend) SignIn(ctx context.Context, email, password string) (*Session, error) {
	var resp rpc.Session
	if err := b.call(ctx, rpc.MethodSignIn, rpc.Credentials{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	s := toSession(resp)
	if err := b.setSession(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (b *GRPCBackend) SignUp(ctx context.Context, email, password string, data map[string]any) (*SignUpResult, error) {
	var resp rpc.SignUpResponse
	req := rpc.SignUpRequest{Email: email, Password: password, Data: data}
	if err := b.call(ctx, rpc.MethodSignUp, req, &resp); err != nil {
		return nil, err
	}
	return &SignUpResult{User: toUser(resp.User), ConfirmationRequired: resp.ConfirmationRequired}, nil
}

// SignOut revokes the refresh token on the server and forgets the local
// session. A session the server no longer accepts is forgotten too.
func (b *GRPCBackend) SignOut(ctx context.Context) error {
	s, err := b.current(ctx)
	if err != nil {
		return err
	}
	if s == nil {
		return b.clearSession(ctx)
	}

	err = b.call(ctx, rpc.MethodSignOut, rpc.SignOutRequest{RefreshToken: s.RefreshToken}, nil)
	if err == nil {
		// The interceptor may have rotated the pair before retrying, in which
		// case the server only revoked the old refresh token.
		cur, cerr := b.current(ctx)
		if cerr != nil {
			return cerr
		}
		if cur != nil && cur.RefreshToken != s.RefreshToken {
			err = b.call(ctx, rpc.MethodSignOut, rpc.SignOutRequest{RefreshToken: cur.RefreshToken}, nil)
		}
	}
	var be *Error
	if err != nil && !(errors.As(err, &be) && be.Code == codes.Unauthenticated) {
		return err
	}
	return b.clearSession(ctx)
}

// GetSession returns the stored session, refreshing it first when the access
// token has expired. A session the server refuses to refresh yields nil.
func (b *GRPCBackend) GetSession(ctx context.Context) (*Session, error) {
	s, err := b.current(ctx)
	if err != nil || s == nil {
		return nil, err
	}
	if !s.Expired(b.now()) {
		return s, nil
	}

	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	fresh, err := b.refresh(ctx, s)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return nil, nil
		}
		return nil, err
	}
	return fresh, nil
}

func toRPCFilters(filters []Filter) []rpc.Filter {
	out := make([]rpc.Filter, 0, len(filters))
	for _, f := range filters {
		out = append(out, rpc.Filter{Column: f.Column, Value: f.Value})
	}
	return out
}

func (b *GRPCBackend) Query(ctx context.Context, q *Query) ([]Row, error) {
	req := rpc.Query{Table: q.Table, Filters: toRPCFilters(q.Filters)}
	for _, o := range q.Orders {
		req.Orders = append(req.Orders, rpc.Order{Column: o.Column, Ascending: o.Ascending})
	}

	var resp rpc.RowsResponse
	if err := b.call(ctx, rpc.MethodSelect, req, &resp); err != nil {
		return nil, err
	}
	return resp.Rows, nil
}

func (b *GRPCBackend) Insert(ctx context.Context, table string, rows ...Row) ([]Row, error) {
	var resp rpc.RowsResponse
	if err := b.call(ctx, rpc.MethodInsert, rpc.InsertRequest{Table: table, Rows: rows}, &resp); err != nil {
		return nil, err
	}
	return resp.Rows, nil
}

func (b *GRPCBackend) Update(ctx context.Context, table string, values Row, filters ...Filter) (int64, error) {
	var resp rpc.CountResponse
	req := rpc.UpdateRequest{Table: table, Values: values, Filters: toRPCFilters(filters)}
	if err := b.call(ctx, rpc.MethodUpdate, req, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

func (b *GRPCBackend) Delete(ctx context.Context, table string, filters ...Filter) (int64, error) {
	var resp rpc.CountResponse
	req := rpc.DeleteRequest{Table: table, Filters: toRPCFilters(filters)}
	if err := b.call(ctx, rpc.MethodDelete, req, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

func (b *GRPCBackend) ExportList(ctx context.Context, listID string) (*Export, error) {
	var resp rpc.ExportResponse
	if err := b.call(ctx, rpc.MethodExportList, rpc.ExportRequest{ListID: listID}, &resp); err != nil {
		return nil, err
	}
	return &Export{Key: resp.Key, URL: resp.URL, ExpiresAt: time.Unix(resp.ExpiresAt, 0)}, nil
}
