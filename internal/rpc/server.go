package rpc

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/adaptive-profile/internal/catalog"
	"github.com/danielpatrickdp/adaptive-profile/internal/profile"
	"github.com/danielpatrickdp/adaptive-profile/internal/refine"
	"github.com/danielpatrickdp/adaptive-profile/internal/traitstore"
)

// #region server
// Server adapts profile.Service to ProfileEngineServer.
type Server struct {
	svc *profile.Service
}

// NewServer wraps svc.
func NewServer(svc *profile.Service) *Server {
	return &Server{svc: svc}
}

func (s *Server) SubmitAnswer(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req refine.AnswerInput
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	out, err := s.svc.SubmitAnswer(ctx, req)
	if err != nil {
		return nil, toStatus(err)
	}
	return reply(out)
}

func (s *Server) SubmitEvent(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req EventRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	out, err := s.svc.SubmitEvent(ctx, req.UserID, req.Signals)
	if err != nil {
		return nil, toStatus(err)
	}
	return reply(out)
}

func (s *Server) GetTraits(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req UserRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	rec, err := s.svc.Traits(ctx, req.UserID)
	if err != nil {
		return nil, toStatus(err)
	}
	return reply(TraitsResponse{UserID: req.UserID, VersionID: rec.VersionID, Traits: rec.Traits})
}

func (s *Server) GetLayers(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req UserRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	view, err := s.svc.Layers(ctx, req.UserID)
	if err != nil {
		return nil, toStatus(err)
	}
	return reply(view)
}

func (s *Server) SetValidation(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req ValidationRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if err := s.svc.SetValidation(ctx, req.UserID, req.LayerID, req.Validation); err != nil {
		return nil, toStatus(err)
	}
	return &structpb.Struct{}, nil
}

func (s *Server) TeamClimate(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req ClimateRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	return reply(s.svc.TeamClimate(ctx, req.Members, req.MemberCount))
}

func reply(v any) (*structpb.Struct, error) {
	out, err := toStruct(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

var _ ProfileEngineServer = (*Server)(nil)

// #endregion server

// #region errors
// toStatus maps domain errors onto gRPC codes.
func toStatus(err error) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	case errors.Is(err, profile.ErrInvalidArgument),
		errors.Is(err, catalog.ErrInvalidResponse),
		errors.Is(err, catalog.ErrUnsupportedQuestionType):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, catalog.ErrQuestionNotFound), errors.Is(err, traitstore.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// #endregion errors

// #region interceptor
// LoggingInterceptor logs one line per call with its code and latency.
func LoggingInterceptor(log zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)

		ev := log.Debug()
		if code == codes.Internal || code == codes.Unknown {
			ev = log.Error().Err(err)
		}
		ev.Str("method", info.FullMethod).
			Str("code", code.String()).
			Dur("elapsed", time.Since(start)).
			Msg("rpc")
		return resp, err
	}
}

// NewGRPCServer builds a grpc.Server with the engine registered.
func NewGRPCServer(svc *profile.Service, log zerolog.Logger, opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(LoggingInterceptor(log)))
	gs := grpc.NewServer(opts...)
	Register(gs, NewServer(svc))
	return gs
}

// #endregion interceptor
