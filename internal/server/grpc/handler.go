package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/shoplist/internal/common"
	"github.com/dmitrijs2005/shoplist/internal/rpc"
	"github.com/dmitrijs2005/shoplist/internal/server/models"
	"github.com/dmitrijs2005/shoplist/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// toStatus maps service errors onto gRPC status codes. Messages of
// non-internal errors reach the end user unchanged.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, common.ErrorForbidden):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, common.ErrorAlreadyExists):
		return status.Error(codes.AlreadyExists, "User already registered")
	case errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.Unauthenticated, "Invalid login credentials")
	case errors.Is(err, common.ErrRefreshTokenExpired):
		return status.Error(codes.Unauthenticated, "Refresh Token Expired")
	case errors.Is(err, common.ErrInvalidToken):
		return status.Error(codes.Unauthenticated, "Invalid Refresh Token")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	s.logger.Error(ctx, "internal error", "error", err)
	return status.Error(codes.Internal, "internal error")
}

func decode(in *structpb.Struct, v any) error {
	if err := rpc.FromStruct(in, v); err != nil {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	return nil
}

func encode(v any) (*structpb.Struct, error) {
	out, err := rpc.ToStruct(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func (s *GRPCServer) caller(ctx context.Context) (string, error) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "missing token")
	}
	return userID, nil
}

func toRPCUser(u *models.User) rpc.User {
	return rpc.User{ID: u.ID, Email: u.Email, Name: u.Name, CreatedAt: u.CreatedAt}
}

func toSession(pair *services.TokenPair, u *models.User) rpc.Session {
	return rpc.Session{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.AccessExpiresAt.Unix(),
		User:         toRPCUser(u),
	}
}

func toFilters(in []rpc.Filter) []models.Filter {
	out := make([]models.Filter, 0, len(in))
	for _, f := range in {
		out = append(out, models.Filter{Column: f.Column, Value: f.Value})
	}
	return out
}

func toOrders(in []rpc.Order) []models.Order {
	out := make([]models.Order, 0, len(in))
	for _, o := range in {
		out = append(out, models.Order{Column: o.Column, Ascending: o.Ascending})
	}
	return out
}

func (s *GRPCServer) Ping(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return encode(rpc.PingResponse{Status: "OK"})
}

func (s *GRPCServer) SignUp(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req rpc.SignUpRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}

	u, err := s.users.SignUp(ctx, req.Email, req.Password, req.Data)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Info(ctx, "Registered", "user_id", u.ID)
	return encode(rpc.SignUpResponse{User: toRPCUser(u), ConfirmationRequired: true})
}

func (s *GRPCServer) SignIn(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req rpc.Credentials
	if err := decode(in, &req); err != nil {
		return nil, err
	}

	pair, u, err := s.users.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return encode(toSession(pair, u))
}

func (s *GRPCServer) RefreshToken(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req rpc.RefreshRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if req.RefreshToken == "" {
		return nil, status.Error(codes.InvalidArgument, "refresh_token is required")
	}

	pair, u, err := s.users.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return encode(toSession(pair, u))
}

func (s *GRPCServer) SignOut(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	var req rpc.SignOutRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}

	if err := s.users.SignOut(ctx, userID, req.RefreshToken); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return encode(struct{}{})
}

func (s *GRPCServer) GetUser(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}

	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, status.Error(codes.Unauthenticated, "User not found")
		}
		return nil, s.toStatus(ctx, err)
	}
	return encode(toRPCUser(u))
}

func (s *GRPCServer) Select(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	var req rpc.Query
	if err := decode(in, &req); err != nil {
		return nil, err
	}

	rows, err := s.tables.Select(ctx, userID, models.Query{
		Table:   req.Table,
		Filters: toFilters(req.Filters),
		Orders:  toOrders(req.Orders),
	})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return encode(rpc.RowsResponse{Rows: rows})
}

func (s *GRPCServer) Insert(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	var req rpc.InsertRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}

	rows, err := s.tables.Insert(ctx, userID, req.Table, req.Rows)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return encode(rpc.RowsResponse{Rows: rows})
}

func (s *GRPCServer) Update(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	var req rpc.UpdateRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}

	n, err := s.tables.Update(ctx, userID, req.Table, req.Values, toFilters(req.Filters))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return encode(rpc.CountResponse{Count: n})
}

func (s *GRPCServer) Delete(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	var req rpc.DeleteRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}

	n, err := s.tables.Delete(ctx, userID, req.Table, toFilters(req.Filters))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return encode(rpc.CountResponse{Count: n})
}

func (s *GRPCServer) ExportList(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	var req rpc.ExportRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}

	res, err := s.exports.ExportList(ctx, userID, req.ListID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Info(ctx, "List exported", "user_id", userID, "list_id", req.ListID, "key", res.Key)
	return encode(rpc.ExportResponse{URL: res.URL, Key: res.Key, ExpiresAt: res.ExpiresAt.Unix()})
}
