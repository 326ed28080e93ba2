package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName = "specs.v1.SpecImporter"

	ParseDocumentMethod = "/" + ServiceName + "/ParseDocument"
	ParseBatchMethod    = "/" + ServiceName + "/ParseBatch"
)

// SpecImporterServer is the daemon surface. Messages travel as google.protobuf.Struct.
type SpecImporterServer interface {
	ParseDocument(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ParseBatch(req *structpb.Struct, stream grpc.ServerStream) error
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SpecImporterServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ParseDocument", Handler: parseDocumentHandler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "ParseBatch", Handler: parseBatchHandler, ServerStreams: true},
	},
	Metadata: "specs/v1/specs.proto",
}

func RegisterSpecImporterServer(s grpc.ServiceRegistrar, srv SpecImporterServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func parseDocumentHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SpecImporterServer).ParseDocument(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ParseDocumentMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SpecImporterServer).ParseDocument(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func parseBatchHandler(srv any, stream grpc.ServerStream) error {
	in := new(structpb.Struct)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(SpecImporterServer).ParseBatch(in, stream)
}
