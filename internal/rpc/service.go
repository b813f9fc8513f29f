package rpc

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "profilekeeper.v1.RemoteStore"

const (
	MethodPing             = "Ping"
	MethodSignUp           = "SignUp"
	MethodSignIn           = "SignIn"
	MethodSignOut          = "SignOut"
	MethodRefreshToken     = "RefreshToken"
	MethodGetProfile       = "GetProfile"
	MethodInsertProfile    = "InsertProfile"
	MethodUpdateProfile    = "UpdateProfile"
	MethodGetDescriptor    = "GetDescriptor"
	MethodUpsertDescriptor = "UpsertDescriptor"
	MethodListDescriptors  = "ListDescriptors"
)

// FullMethod returns the "/service/method" path grpc uses for name.
func FullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

// RemoteStoreServer is implemented by the server side handler.
type RemoteStoreServer interface {
	Ping(context.Context, *Empty) (*PingResponse, error)
	SignUp(context.Context, *Credentials) (*AuthResponse, error)
	SignIn(context.Context, *Credentials) (*AuthResponse, error)
	SignOut(context.Context, *SignOutRequest) (*Empty, error)
	RefreshToken(context.Context, *RefreshTokenRequest) (*AuthResponse, error)
	GetProfile(context.Context, *UserRequest) (*Profile, error)
	InsertProfile(context.Context, *Profile) (*Empty, error)
	UpdateProfile(context.Context, *Profile) (*Empty, error)
	GetDescriptor(context.Context, *UserRequest) (*Descriptor, error)
	UpsertDescriptor(context.Context, *Descriptor) (*Empty, error)
	ListDescriptors(context.Context, *Empty) (*DescriptorList, error)
}

func unary[Req, Resp any](name string, call func(RemoteStoreServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(RemoteStoreServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(RemoteStoreServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc is the grpc.ServiceDesc for the remote store.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RemoteStoreServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodPing, RemoteStoreServer.Ping),
		unary(MethodSignUp, RemoteStoreServer.SignUp),
		unary(MethodSignIn, RemoteStoreServer.SignIn),
		unary(MethodSignOut, RemoteStoreServer.SignOut),
		unary(MethodRefreshToken, RemoteStoreServer.RefreshToken),
		unary(MethodGetProfile, RemoteStoreServer.GetProfile),
		unary(MethodInsertProfile, RemoteStoreServer.InsertProfile),
		unary(MethodUpdateProfile, RemoteStoreServer.UpdateProfile),
		unary(MethodGetDescriptor, RemoteStoreServer.GetDescriptor),
		unary(MethodUpsertDescriptor, RemoteStoreServer.UpsertDescriptor),
		unary(MethodListDescriptors, RemoteStoreServer.ListDescriptors),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "profilekeeper/v1/remote_store",
}

// RegisterRemoteStoreServer attaches srv to s.
func RegisterRemoteStoreServer(s grpc.ServiceRegistrar, srv RemoteStoreServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// RemoteStoreClient is a typed wrapper over a grpc connection. Every call is
// sent with the JSON content subtype.
type RemoteStoreClient struct {
	cc grpc.ClientConnInterface
}

func NewRemoteStoreClient(cc grpc.ClientConnInterface) *RemoteStoreClient {
	return &RemoteStoreClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, name string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, FullMethod(name), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *RemoteStoreClient) Ping(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, MethodPing, in, opts)
}

func (c *RemoteStoreClient) SignUp(ctx context.Context, in *Credentials, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c.cc, MethodSignUp, in, opts)
}

func (c *RemoteStoreClient) SignIn(ctx context.Context, in *Credentials, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c.cc, MethodSignIn, in, opts)
}

func (c *RemoteStoreClient) SignOut(ctx context.Context, in *SignOutRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodSignOut, in, opts)
}

func (c *RemoteStoreClient) RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c.cc, MethodRefreshToken, in, opts)
}

func (c *RemoteStoreClient) GetProfile(ctx context.Context, in *UserRequest, opts ...grpc.CallOption) (*Profile, error) {
	return invoke[Profile](ctx, c.cc, MethodGetProfile, in, opts)
}

func (c *RemoteStoreClient) InsertProfile(ctx context.Context, in *Profile, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodInsertProfile, in, opts)
}

func (c *RemoteStoreClient) UpdateProfile(ctx context.Context, in *Profile, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodUpdateProfile, in, opts)
}

func (c *RemoteStoreClient) GetDescriptor(ctx context.Context, in *UserRequest, opts ...grpc.CallOption) (*Descriptor, error) {
	return invoke[Descriptor](ctx, c.cc, MethodGetDescriptor, in, opts)
}

func (c *RemoteStoreClient) UpsertDescriptor(ctx context.Context, in *Descriptor, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodUpsertDescriptor, in, opts)
}

func (c *RemoteStoreClient) ListDescriptors(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*DescriptorList, error) {
	return invoke[DescriptorList](ctx, c.cc, MethodListDescriptors, in, opts)
}
