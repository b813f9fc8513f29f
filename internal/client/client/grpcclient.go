package client

import (
	"context"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"github.com/dmitrijs2005/profilekeeper/internal/client/face"
	"github.com/dmitrijs2005/profilekeeper/internal/client/models"
	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/dmitrijs2005/profilekeeper/internal/rpc"
)

// remoteAPI is the generated-style client surface; a seam for tests.
type remoteAPI interface {
	Ping(ctx context.Context, in *rpc.Empty, opts ...grpc.CallOption) (*rpc.PingResponse, error)
	SignUp(ctx context.Context, in *rpc.Credentials, opts ...grpc.CallOption) (*rpc.AuthResponse, error)
	SignIn(ctx context.Context, in *rpc.Credentials, opts ...grpc.CallOption) (*rpc.AuthResponse, error)
	SignOut(ctx context.Context, in *rpc.SignOutRequest, opts ...grpc.CallOption) (*rpc.Empty, error)
	RefreshToken(ctx context.Context, in *rpc.RefreshTokenRequest, opts ...grpc.CallOption) (*rpc.AuthResponse, error)
	GetProfile(ctx context.Context, in *rpc.UserRequest, opts ...grpc.CallOption) (*rpc.Profile, error)
	InsertProfile(ctx context.Context, in *rpc.Profile, opts ...grpc.CallOption) (*rpc.Empty, error)
	UpdateProfile(ctx context.Context, in *rpc.Profile, opts ...grpc.CallOption) (*rpc.Empty, error)
	GetDescriptor(ctx context.Context, in *rpc.UserRequest, opts ...grpc.CallOption) (*rpc.Descriptor, error)
	UpsertDescriptor(ctx context.Context, in *rpc.Descriptor, opts ...grpc.CallOption) (*rpc.Empty, error)
	ListDescriptors(ctx context.Context, in *rpc.Empty, opts ...grpc.CallOption) (*rpc.DescriptorList, error)
}

// publicMethods are callable without an access token.
var publicMethods = map[string]bool{
	rpc.FullMethod(rpc.MethodPing):            true,
	rpc.FullMethod(rpc.MethodSignUp):          true,
	rpc.FullMethod(rpc.MethodSignIn):          true,
	rpc.FullMethod(rpc.MethodRefreshToken):    true,
	rpc.FullMethod(rpc.MethodListDescriptors): true,
}

// GRPCClient implements RemoteStore over gRPC. It keeps the current token
// pair and refreshes it transparently when the server reports expiry.
type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      remoteAPI

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

func NewGRPCClient(endpointURL string) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}

	conn, err := grpc.NewClient(endpointURL,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = rpc.NewRemoteStoreClient(conn)
	return c, nil
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)
	return metadata.NewOutgoingContext(ctx, md)
}

// Tokens returns the current token pair.
func (s *GRPCClient) Tokens() (access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken, s.refreshToken
}

// SetTokens replaces the current token pair.
func (s *GRPCClient) SetTokens(access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken, s.refreshToken = access, refresh
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if publicMethods[method] {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	used, _ := s.Tokens()
	err := invoker(withAccessToken(ctx, used), method, req, reply, cc, opts...)
	if !isTokenExpired(err) {
		return err
	}

	fresh, rerr := s.refresh(ctx, used)
	if rerr != nil {
		return err
	}
	return invoker(withAccessToken(ctx, fresh), method, req, reply, cc, opts...)
}

// refresh rotates the token pair unless another call already did so since
// stale was used.
func (s *GRPCClient) refresh(ctx context.Context, stale string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.accessToken != stale {
		return s.accessToken, nil
	}
	if s.refreshToken == "" {
		return "", ErrUnauthorized
	}
	resp, err := s.client.RefreshToken(ctx, &rpc.RefreshTokenRequest{RefreshToken: s.refreshToken})
	if err != nil {
		return "", fromStatus(err)
	}
	s.accessToken, s.refreshToken = resp.AccessToken, resp.RefreshToken
	return s.accessToken, nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.client.Ping(ctx, &rpc.Empty{})
	if err != nil {
		return fromStatus(err)
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) SignUp(ctx context.Context, email, password string) (*AuthResult, error) {
	resp, err := s.client.SignUp(ctx, &rpc.Credentials{Email: email, Password: password})
	if err != nil {
		return nil, fromStatus(err)
	}
	return s.acceptAuth(resp), nil
}

func (s *GRPCClient) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	resp, err := s.client.SignIn(ctx, &rpc.Credentials{Email: email, Password: password})
	if err != nil {
		return nil, fromStatus(err)
	}
	return s.acceptAuth(resp), nil
}

func (s *GRPCClient) acceptAuth(resp *rpc.AuthResponse) *AuthResult {
	s.SetTokens(resp.AccessToken, resp.RefreshToken)
	return &AuthResult{
		UserID:       resp.UserID,
		Email:        resp.Email,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}
}

// SignOut revokes the refresh token on the server. Local tokens are dropped
// even if the call fails.
func (s *GRPCClient) SignOut(ctx context.Context) error {
	_, refresh := s.Tokens()
	s.SetTokens("", "")
	if refresh == "" {
		return nil
	}
	if _, err := s.client.SignOut(ctx, &rpc.SignOutRequest{RefreshToken: refresh}); err != nil {
		return fromStatus(err)
	}
	return nil
}

func (s *GRPCClient) GetProfile(ctx context.Context, userID string) (*models.RemoteProfile, error) {
	resp, err := s.client.GetProfile(ctx, &rpc.UserRequest{UserID: userID})
	if err != nil {
		return nil, fromStatus(err)
	}
	return &models.RemoteProfile{
		UserID: resp.UserID,
		Fields: models.ProfileFields{
			FullName: resp.FullName,
			Phone:    resp.Phone,
			Location: resp.Location,
			Bio:      resp.Bio,
		},
		UpdatedAt: resp.UpdatedAt,
	}, nil
}

func profileToRPC(userID string, p *models.RemoteProfile) *rpc.Profile {
	return &rpc.Profile{
		UserID:    userID,
		FullName:  p.Fields.FullName,
		Phone:     p.Fields.Phone,
		Location:  p.Fields.Location,
		Bio:       p.Fields.Bio,
		UpdatedAt: p.UpdatedAt,
	}
}

func (s *GRPCClient) InsertProfile(ctx context.Context, p *models.RemoteProfile) error {
	if _, err := s.client.InsertProfile(ctx, profileToRPC(p.UserID, p)); err != nil {
		return fromStatus(err)
	}
	return nil
}

func (s *GRPCClient) UpdateProfile(ctx context.Context, userID string, p *models.RemoteProfile) error {
	if _, err := s.client.UpdateProfile(ctx, profileToRPC(userID, p)); err != nil {
		return fromStatus(err)
	}
	return nil
}

func descriptorFromRPC(d *rpc.Descriptor) models.EnrolledDescriptor {
	return models.EnrolledDescriptor{
		UserID:     d.UserID,
		Email:      d.Email,
		Descriptor: face.Descriptor(d.Values),
		UpdatedAt:  d.UpdatedAt,
	}
}

func (s *GRPCClient) GetDescriptor(ctx context.Context, userID string) (*models.EnrolledDescriptor, error) {
	resp, err := s.client.GetDescriptor(ctx, &rpc.UserRequest{UserID: userID})
	if err != nil {
		return nil, fromStatus(err)
	}
	d := descriptorFromRPC(resp)
	return &d, nil
}

func (s *GRPCClient) UpsertDescriptor(ctx context.Context, d *models.EnrolledDescriptor) error {
	_, err := s.client.UpsertDescriptor(ctx, &rpc.Descriptor{
		UserID:    d.UserID,
		Email:     d.Email,
		Values:    d.Descriptor,
		UpdatedAt: d.UpdatedAt,
	})
	if err != nil {
		return fromStatus(err)
	}
	return nil
}

// ListDescriptors returns the remote gallery. Rows with a malformed
// descriptor are skipped.
func (s *GRPCClient) ListDescriptors(ctx context.Context) ([]models.EnrolledDescriptor, error) {
	resp, err := s.client.ListDescriptors(ctx, &rpc.Empty{})
	if err != nil {
		return nil, fromStatus(err)
	}
	out := make([]models.EnrolledDescriptor, 0, len(resp.Descriptors))
	for i := range resp.Descriptors {
		d := descriptorFromRPC(&resp.Descriptors[i])
		if d.Descriptor.Validate() != nil {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}
