package client

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/alfredjeanlab/rolodex/internal/model"
	"github.com/alfredjeanlab/rolodex/internal/rpc"
)

// GRPCClient implements RecordsClient using the gRPC transport.
type GRPCClient struct {
	conn *grpc.ClientConn
}

// NewGRPCClient connects to the given gRPC address and returns a client.
// Extra dial options are appended after the insecure transport credentials.
func NewGRPCClient(addr string, opts ...grpc.DialOption) (*GRPCClient, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial: %w", err)
	}
	return &GRPCClient{conn: conn}, nil
}

func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

func (c *GRPCClient) ListRecords(ctx context.Context, entity model.Entity, filter model.RecordFilter) ([]*model.Record, error) {
	req, err := rpc.NewListRequest(entity, filter)
	if err != nil {
		return nil, err
	}
	resp := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, rpc.ListRecordsMethod, req, resp); err != nil {
		return nil, err
	}
	return rpc.RecordsFromStruct(entity, resp)
}

func (c *GRPCClient) Health(ctx context.Context) (string, error) {
	resp := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, rpc.HealthMethod, &emptypb.Empty{}, resp); err != nil {
		return "", err
	}
	return resp.GetFields()["status"].GetStringValue(), nil
}
