// Package grpc exposes the timeline over gRPC as the timeboard.v1.Timeline
// service.
package grpc

import (
	"context"
	"math"
	"net"

	"google.golang.org/grpc"

	"github.com/dmitrijs2005/timeboard/internal/logging"
	"github.com/dmitrijs2005/timeboard/internal/server/services"
	"github.com/dmitrijs2005/timeboard/internal/server/sessions"
)

type GRPCServer struct {
	address    string
	maxMsgSize int
	registry   *sessions.Registry
	timeline   *services.TimelineService
	logger     logging.Logger
}

// NewGRPCServer creates the server. maxMsgSize bounds incoming requests,
// uploads included; zero keeps the gRPC default of 4 MiB.
func NewGRPCServer(a string, maxMsgSize int, l logging.Logger, registry *sessions.Registry, timeline *services.TimelineService) *GRPCServer {
	return &GRPCServer{
		address:    a,
		maxMsgSize: maxMsgSize,
		logger:     l.With("module", "grpc_server"),
		registry:   registry,
		timeline:   timeline,
	}
}

// NewServer creates a grpc.Server with the interceptors installed and the
// service registered. Responses are not capped: ListEvents carries every
// image of the session inline.
func (s *GRPCServer) NewServer(opts ...grpc.ServerOption) *grpc.Server {
	if s.maxMsgSize > 0 {
		opts = append(opts, grpc.MaxRecvMsgSize(s.maxMsgSize))
	}
	opts = append(opts,
		grpc.MaxSendMsgSize(math.MaxInt32),
		grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.sessionInterceptor),
	)
	srv := grpc.NewServer(opts...)
	srv.RegisterService(&ServiceDesc, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
