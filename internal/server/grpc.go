package server

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/alfredjeanlab/rolodex/internal/model"
	"github.com/alfredjeanlab/rolodex/internal/rpc"
)

var _ rpc.RecordsServer = (*Server)(nil)

// NewGRPCServer returns a gRPC server serving the RecordsService with
// reflection enabled.
func NewGRPCServer(s *Server) *grpc.Server {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			RequestIDInterceptor,
			RecoveryInterceptor(s.logger),
			LoggingInterceptor(s.logger),
			s.metrics.MetricsInterceptor,
		),
	)

	rpc.RegisterRecordsServer(srv, s)
	reflection.Register(srv)

	return srv
}

// ListRecords returns the filtered records of the requested entity.
func (s *Server) ListRecords(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	entity, filter, err := rpc.ParseListRequest(req)
	if err != nil {
		if errors.Is(err, model.ErrUnknownEntity) {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		return nil, status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}

	records, err := s.store.ListRecords(ctx, entity, filter)
	if err != nil {
		s.logger.Error("list records failed", "entity", entity, "error", err)
		return nil, status.Error(codes.Internal, fmt.Sprintf("failed to list %s", entity))
	}

	resp, err := rpc.RecordsToStruct(records)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode records: %v", err)
	}
	return resp, nil
}

// Health reports whether the store is reachable.
func (s *Server) Health(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	if err := s.store.Ping(ctx); err != nil {
		return nil, status.Error(codes.Unavailable, "database unreachable")
	}
	return structpb.NewStruct(map[string]any{"status": "ok"})
}
