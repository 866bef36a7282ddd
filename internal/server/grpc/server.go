// Package grpc exposes the session service over gRPC, mirroring the REST
// surface with google.protobuf.Struct messages.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"google.golang.org/grpc"
)

// Sessions is satisfied by *services.SessionService.
type Sessions interface {
	PublicKey(ctx context.Context) (string, error)
	Encrypt(ctx context.Context, publicKey, plain string) (string, error)
	SignIn(ctx context.Context, req services.SignInRequest) (models.TokenPair, error)
	SignOut(ctx context.Context, subjectID string) error
	Info(ctx context.Context, subjectID string) (*models.Account, error)
	UpdateInfo(ctx context.Context, subjectID string, req services.UpdateInfoRequest) error
	Withdraw(ctx context.Context, subjectID string) error
	ChangePassword(ctx context.Context, subjectID string, req services.ChangePasswordRequest) error
	Refresh(ctx context.Context, refreshToken, accessToken string) (string, error)
	Authenticate(ctx context.Context, accessToken string) (models.AccessRecord, error)
}

type GRPCServer struct {
	address  string
	sessions Sessions
	logger   logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, sessions Sessions) *GRPCServer {
	return &GRPCServer{
		address:  a,
		sessions: sessions,
		logger:   l.With("module", "grpc_server"),
	}
}

// NewServer builds a grpc.Server with the service and its interceptors
// registered.
func (s *GRPCServer) NewServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
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
