package rpc

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ProtoFile is the path the RecordsService descriptor is registered under.
const ProtoFile = "rolodex/v1/records.proto"

// File describes the RecordsService. There is no .proto source; the
// descriptor is assembled here and registered with the global registry so
// server reflection can answer for it.
var File protoreflect.FileDescriptor

func init() {
	fd, err := buildFile()
	if err != nil {
		panic(fmt.Sprintf("rpc: build %s: %v", ProtoFile, err))
	}
	if err := protoregistry.GlobalFiles.RegisterFile(fd); err != nil {
		panic(fmt.Sprintf("rpc: register %s: %v", ProtoFile, err))
	}
	File = fd
}

func buildFile() (protoreflect.FileDescriptor, error) {
	structMsg := (&structpb.Struct{}).ProtoReflect().Descriptor()
	emptyMsg := (&emptypb.Empty{}).ProtoReflect().Descriptor()
	structName := "." + string(structMsg.FullName())
	emptyName := "." + string(emptyMsg.FullName())

	fdp := &descriptorpb.FileDescriptorProto{
		Name:       proto.String(ProtoFile),
		Package:    proto.String("rolodex.v1"),
		Dependency: []string{structMsg.ParentFile().Path(), emptyMsg.ParentFile().Path()},
		Syntax:     proto.String("proto3"),
		Service: []*descriptorpb.ServiceDescriptorProto{{
			Name: proto.String("RecordsService"),
			Method: []*descriptorpb.MethodDescriptorProto{
				{Name: proto.String("ListRecords"), InputType: proto.String(structName), OutputType: proto.String(structName)},
				{Name: proto.String("Health"), InputType: proto.String(emptyName), OutputType: proto.String(structName)},
			},
		}},
	}
	return protodesc.NewFile(fdp, protoregistry.GlobalFiles)
}
