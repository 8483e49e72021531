// Package grpc exposes the backend services as the shoplist.Backend gRPC
// service.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/shoplist/internal/logging"
	"github.com/dmitrijs2005/shoplist/internal/rpc"
	"github.com/dmitrijs2005/shoplist/internal/server/models"
	"github.com/dmitrijs2005/shoplist/internal/server/services"
	"google.golang.org/grpc"
)

type UserService interface {
	SignUp(ctx context.Context, email, password string, data map[string]any) (*models.User, error)
	SignIn(ctx context.Context, email, password string) (*services.TokenPair, *models.User, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, *models.User, error)
	SignOut(ctx context.Context, userID, refreshToken string) error
	GetUser(ctx context.Context, userID string) (*models.User, error)
}

type TableService interface {
	Select(ctx context.Context, userID string, q models.Query) ([]map[string]any, error)
	Insert(ctx context.Context, userID string, table string, rows []map[string]any) ([]map[string]any, error)
	Update(ctx context.Context, userID string, table string, values map[string]any, filters []models.Filter) (int64, error)
	Delete(ctx context.Context, userID string, table string, filters []models.Filter) (int64, error)
}

type ExportService interface {
	ExportList(ctx context.Context, userID, listID string) (*services.ExportResult, error)
}

type GRPCServer struct {
	address   string
	users     UserService
	tables    TableService
	exports   ExportService
	logger    logging.Logger
	jwtSecret []byte
}

var _ rpc.BackendServer = (*GRPCServer)(nil)

func NewGRPCServer(a string, l logging.Logger, us UserService, ts TableService, es ExportService, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		users:     us,
		tables:    ts,
		exports:   es,
		jwtSecret: []byte(secretKey),
	}
}

// NewServer builds a grpc.Server with the interceptor chain and the backend
// service registered.
func (s *GRPCServer) NewServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	rpc.RegisterBackendServer(srv, s)
	return srv
}

// Serve accepts connections on lis until ctx is cancelled.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.NewServer()

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping gRPC server...")
		s.stop(srv)
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}
	<-stopped
	return nil
}

// stop drains in-flight calls, forcing the stop if that takes too long.
func (s *GRPCServer) stop(srv *grpc.Server) {
	done := make(chan struct{})
	go func() {
		srv.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		srv.Stop()
	}
}

func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}
