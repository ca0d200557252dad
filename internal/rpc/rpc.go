// Package rpc declares the RecordsService gRPC contract. Messages are
// google.protobuf.Struct values so the service needs no generated code:
//
//	ListRecords({entity, name, email}) -> {records: [...]}
//	Health(Empty) -> {status}
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/alfredjeanlab/rolodex/internal/model"
)

const (
	ServiceName       = "rolodex.v1.RecordsService"
	ListRecordsMethod = "/" + ServiceName + "/ListRecords"
	HealthMethod      = "/" + ServiceName + "/Health"
)

// RecordsServer is the server API for RecordsService.
type RecordsServer interface {
	ListRecords(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Health(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
}

// RegisterRecordsServer registers srv on s.
func RegisterRecordsServer(s grpc.ServiceRegistrar, srv RecordsServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// ServiceDesc is the grpc.ServiceDesc for RecordsService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RecordsServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListRecords", Handler: listRecordsHandler},
		{MethodName: "Health", Handler: healthHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: ProtoFile,
}

func listRecordsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RecordsServer).ListRecords(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ListRecordsMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(RecordsServer).ListRecords(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func healthHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RecordsServer).Health(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: HealthMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(RecordsServer).Health(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// NewListRequest builds a ListRecords request.
func NewListRequest(entity model.Entity, filter model.RecordFilter) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"entity": entity.String(),
		"name":   filter.Name,
		"email":  filter.Email,
	})
}

// ParseListRequest extracts the entity and filter of a ListRecords request.
func ParseListRequest(req *structpb.Struct) (model.Entity, model.RecordFilter, error) {
	fields := req.GetFields()
	entity, err := model.ParseEntity(fields["entity"].GetStringValue())
	if err != nil {
		return "", model.RecordFilter{}, err
	}
	return entity, model.RecordFilter{
		Name:  fields["name"].GetStringValue(),
		Email: fields["email"].GetStringValue(),
	}, nil
}

// maxExactInt is the largest magnitude a Struct number (a double) holds
// without losing integer precision.
const maxExactInt = 1 << 53

// RecordsToStruct encodes records in their JSON wire shape. Integers too
// large for a double are sent as decimal strings, as proto3 JSON does for
// int64.
func RecordsToStruct(records []*model.Record) (*structpb.Struct, error) {
	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("marshal records: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var list []any
	if err := dec.Decode(&list); err != nil {
		return nil, fmt.Errorf("unmarshal records: %w", err)
	}
	if list == nil {
		list = []any{}
	}
	return structpb.NewStruct(map[string]any{"records": structNumbers(list)})
}

// structNumbers replaces json.Number values with float64, or with their
// string form when the conversion would round.
func structNumbers(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, e := range val {
			val[k] = structNumbers(e)
		}
	case []any:
		for i, e := range val {
			val[i] = structNumbers(e)
		}
	case json.Number:
		if i, err := val.Int64(); err == nil && (i > maxExactInt || i < -maxExactInt) {
			return val.String()
		}
		f, err := val.Float64()
		if err != nil {
			return val.String()
		}
		return f
	}
	return v
}

// RecordsFromStruct decodes a ListRecords response.
func RecordsFromStruct(entity model.Entity, resp *structpb.Struct) ([]*model.Record, error) {
	list := resp.GetFields()["records"].GetListValue()
	data, err := json.Marshal(list.AsSlice())
	if err != nil {
		return nil, fmt.Errorf("marshal records: %w", err)
	}
	records := make([]*model.Record, 0, len(list.GetValues()))
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	for _, r := range records {
		r.Entity = entity
	}
	return records, nil
}
