package grpc

import (
	"context"
	"math"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dmitrijs2005/timeboard/internal/common"
)

// Client calls timeboard.v1.Timeline over an existing connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// DialOptions sizes client messages: requests up to maxSendSize, which should
// match the server's limit, and responses of any size.
func DialOptions(maxSendSize int) []grpc.DialOption {
	return []grpc.DialOption{
		grpc.WithDefaultCallOptions(
			grpc.MaxCallRecvMsgSize(math.MaxInt32),
			grpc.MaxCallSendMsgSize(maxSendSize),
		),
	}
}

// Call invokes method with in converted to a Struct.
func (c *Client) Call(ctx context.Context, method string, in map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	req, err := structpb.NewStruct(in)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// WithSession attaches a session token to outgoing calls made with ctx.
func WithSession(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, common.SessionTokenHeaderName, token)
}
