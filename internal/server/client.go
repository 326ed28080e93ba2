package server

import (
	"context"
	"errors"
	"io"

	"github.com/joseph-ayodele/specs-importer/internal/entity"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client calls SpecImporter over an existing connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) ParseDocument(ctx context.Context, req ParseDocumentRequest, opts ...grpc.CallOption) (*entity.ProductSpec, error) {
	in, err := ToStruct(req)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ParseDocumentMethod, in, out, opts...); err != nil {
		return nil, err
	}
	var spec entity.ProductSpec
	if err := FromStruct(out, &spec); err != nil {
		return nil, err
	}
	return &spec, nil
}

// ParseBatch streams batch events to fn until the batch ends.
func (c *Client) ParseBatch(ctx context.Context, req ParseBatchRequest, fn func(BatchEventMessage) error, opts ...grpc.CallOption) error {
	in, err := ToStruct(req)
	if err != nil {
		return err
	}
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], ParseBatchMethod, opts...)
	if err != nil {
		return err
	}
	if err := stream.SendMsg(in); err != nil {
		return err
	}
	if err := stream.CloseSend(); err != nil {
		return err
	}
	for {
		out := new(structpb.Struct)
		if err := stream.RecvMsg(out); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		var ev BatchEventMessage
		if err := FromStruct(out, &ev); err != nil {
			return err
		}
		if err := fn(ev); err != nil {
			return err
		}
	}
}
