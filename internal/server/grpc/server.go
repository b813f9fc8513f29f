package grpc

import (
	"context"
	"fmt"
	"net"

	"google.golang.org/grpc"

	"github.com/dmitrijs2005/profilekeeper/internal/logging"
	"github.com/dmitrijs2005/profilekeeper/internal/rpc"
	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
	"github.com/dmitrijs2005/profilekeeper/internal/server/services"
)

type UserService interface {
	Register(ctx context.Context, email, password string) (*services.TokenPair, error)
	Login(ctx context.Context, email, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
}

type ProfileService interface {
	Get(ctx context.Context, callerID, userID string) (*models.Profile, error)
	Insert(ctx context.Context, callerID string, p *models.Profile) error
	Update(ctx context.Context, callerID string, p *models.Profile) error
}

type DescriptorService interface {
	Get(ctx context.Context, callerID, userID string) (*models.Descriptor, error)
	Upsert(ctx context.Context, callerID string, d *models.Descriptor) error
	List(ctx context.Context) ([]models.Descriptor, error)
}

// TokenVerifier maps an access token to its user. *auth.Issuer implements it.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

type GRPCServer struct {
	rpc.UnimplementedRemoteStoreServer
	address     string
	users       UserService
	profiles    ProfileService
	descriptors DescriptorService
	logger      logging.Logger
	tokens      TokenVerifier
}

func NewGRPCServer(a string, l logging.Logger, us UserService, ps ProfileService, ds DescriptorService, tv TokenVerifier) *GRPCServer {
	return &GRPCServer{
		address:     a,
		logger:      logging.OrDiscard(l).With("module", "grpc_server"),
		users:       us,
		profiles:    ps,
		descriptors: ds,
		tokens:      tv,
	}
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.address, err)
	}
	return s.Serve(ctx, lis)
}

// Serve handles RemoteStore calls on lis. Cancelling ctx drains in-flight
// calls and returns nil.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	rpc.RegisterRemoteStoreServer(srv, s)

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.logger.Info(context.WithoutCancel(ctx), "draining gRPC server")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "serving gRPC", "address", lis.Addr().String())
	err := srv.Serve(lis)
	if ctx.Err() != nil {
		<-stopped
		return nil
	}
	srv.Stop()
	return err
}
