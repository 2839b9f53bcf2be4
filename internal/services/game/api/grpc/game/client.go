package game

import (
	"context"
	"errors"
	"io"

	grpcmeta "github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/api/grpc/metadata"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/notify"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client calls TabletopService with JSON-shaped values.
type Client struct {
	conn    grpc.ClientConnInterface
	headers []string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithIdentity sends the user id and role headers on every call.
func WithIdentity(userID, role string) ClientOption {
	return func(c *Client) {
		if userID != "" {
			c.headers = append(c.headers, grpcmeta.UserIDHeader, userID)
		}
		if role != "" {
			c.headers = append(c.headers, grpcmeta.RoleHeader, role)
		}
	}
}

// WithBearerToken sends an authorization header on every call.
func WithBearerToken(token string) ClientOption {
	return func(c *Client) {
		if token != "" {
			c.headers = append(c.headers, grpcmeta.AuthorizationKey, "Bearer "+token)
		}
	}
}

// NewClient wraps a connection to the game service.
func NewClient(conn grpc.ClientConnInterface, opts ...ClientOption) *Client {
	c := &Client{conn: conn}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Call invokes a unary method. req is encoded to a Struct through JSON and
// the response is decoded into resp when resp is non-nil.
func (c *Client) Call(ctx context.Context, method string, req, resp any) error {
	if req == nil {
		req = map[string]any{}
	}
	in, err := EncodeStruct(req)
	if err != nil {
		return err
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(c.outgoing(ctx), FullMethod(method), in, out); err != nil {
		return err
	}
	if resp == nil {
		return nil
	}
	return DecodeStruct(out, resp)
}

// Watch streams events of sessionID to fn until the stream ends, ctx is
// done or fn returns an error.
func (c *Client) Watch(ctx context.Context, sessionID string, fn func(notify.Event) error) error {
	stream, err := c.conn.NewStream(c.outgoing(ctx), &ServiceDesc.Streams[0], FullMethod(MethodWatchSession))
	if err != nil {
		return err
	}
	in, err := EncodeStruct(sessionRequest{SessionID: sessionID})
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
		msg := new(structpb.Struct)
		if err := stream.RecvMsg(msg); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		var evt notify.Event
		if err := DecodeStruct(msg, &evt); err != nil {
			return err
		}
		if err := fn(evt); err != nil {
			return err
		}
	}
}

func (c *Client) outgoing(ctx context.Context) context.Context {
	kv := append([]string(nil), c.headers...)
	if invocationID := grpcmeta.InvocationIDFromContext(ctx); invocationID != "" {
		kv = append(kv, grpcmeta.InvocationIDHeader, invocationID)
	}
	if requestID := grpcmeta.RequestIDFromContext(ctx); requestID != "" {
		kv = append(kv, grpcmeta.RequestIDHeader, requestID)
	}
	if len(kv) == 0 {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, kv...)
}
