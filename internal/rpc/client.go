package rpc

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/adaptive-profile/internal/climate"
	"github.com/danielpatrickdp/adaptive-profile/internal/layer"
	"github.com/danielpatrickdp/adaptive-profile/internal/profile"
	"github.com/danielpatrickdp/adaptive-profile/internal/refine"
)

// Errors returned by Client for the matching gRPC codes.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
)

// #region client-struct
// Client wraps a connection to a ProfileEngine server.
type Client struct {
	conn *grpc.ClientConn
	cc   grpc.ClientConnInterface
}

// #endregion client-struct

// #region constructor
// NewClient connects to addr without transport security.
func NewClient(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{conn: conn, cc: conn}, nil
}

// NewClientWithConn creates a Client over an existing connection, which the
// caller keeps ownership of.
func NewClientWithConn(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Close shuts down the connection if the client owns one.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// #endregion constructor

// #region calls
// SubmitAnswer records one answer and returns what it did to the profile.
func (c *Client) SubmitAnswer(ctx context.Context, in refine.AnswerInput) (profile.Outcome, error) {
	var out profile.Outcome
	err := c.call(ctx, MethodSubmitAnswer, in, &out)
	return out, err
}

// SubmitEvent applies behavioral deltas.
func (c *Client) SubmitEvent(ctx context.Context, userID string, signals []refine.EventSignal) (profile.Outcome, error) {
	var out profile.Outcome
	err := c.call(ctx, MethodSubmitEvent, EventRequest{UserID: userID, Signals: signals}, &out)
	return out, err
}

// GetTraits returns the active trait vector.
func (c *Client) GetTraits(ctx context.Context, userID string) (TraitsResponse, error) {
	var out TraitsResponse
	err := c.call(ctx, MethodGetTraits, UserRequest{UserID: userID}, &out)
	return out, err
}

// GetLayers returns the layer table and insight cards.
func (c *Client) GetLayers(ctx context.Context, userID string) (profile.LayersView, error) {
	var out profile.LayersView
	err := c.call(ctx, MethodGetLayers, UserRequest{UserID: userID}, &out)
	return out, err
}

// SetValidation records the user's verdict on a layer.
func (c *Client) SetValidation(ctx context.Context, userID string, id layer.ID, v layer.Validation) error {
	return c.call(ctx, MethodSetValidation, ValidationRequest{UserID: userID, LayerID: id, Validation: v}, nil)
}

// TeamClimate aggregates member signals on the server.
func (c *Client) TeamClimate(ctx context.Context, members []climate.MemberSignal, memberCount int) (climate.Result, error) {
	resp, err := c.invokeMethod(ctx, MethodTeamClimate, ClimateRequest{MemberCount: memberCount, Members: members})
	if err != nil {
		return nil, err
	}
	data, err := structJSON(resp)
	if err != nil {
		return nil, err
	}
	return climate.ParseResult(data)
}

// #endregion calls

// #region helpers
func (c *Client) call(ctx context.Context, method string, in, out any) error {
	resp, err := c.invokeMethod(ctx, method, in)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return fromStruct(resp, out)
}

func (c *Client) invokeMethod(ctx context.Context, method string, in any) (*structpb.Struct, error) {
	req, err := toStruct(in)
	if err != nil {
		return nil, err
	}
	resp := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod(method), req, resp); err != nil {
		return nil, mapGRPCError(method, err)
	}
	return resp, nil
}

// mapGRPCError turns status codes back into sentinel errors.
func mapGRPCError(method string, err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("%s rpc: %w", method, err)
	}
	switch st.Code() {
	case codes.InvalidArgument:
		return fmt.Errorf("%s rpc: %w: %s", method, ErrInvalidArgument, st.Message())
	case codes.NotFound:
		return fmt.Errorf("%s rpc: %w: %s", method, ErrNotFound, st.Message())
	default:
		return fmt.Errorf("%s rpc: %w", method, err)
	}
}

// #endregion helpers
