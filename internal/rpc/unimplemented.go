package rpc

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// UnimplementedRemoteStoreServer answers every method with codes.Unimplemented.
// Embed it to implement only part of the service.
type UnimplementedRemoteStoreServer struct{}

func unimplemented(name string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", name)
}

func (UnimplementedRemoteStoreServer) Ping(context.Context, *Empty) (*PingResponse, error) {
	return nil, unimplemented(MethodPing)
}
func (UnimplementedRemoteStoreServer) SignUp(context.Context, *Credentials) (*AuthResponse, error) {
	return nil, unimplemented(MethodSignUp)
}
func (UnimplementedRemoteStoreServer) SignIn(context.Context, *Credentials) (*AuthResponse, error) {
	return nil, unimplemented(MethodSignIn)
}
func (UnimplementedRemoteStoreServer) SignOut(context.Context, *SignOutRequest) (*Empty, error) {
	return nil, unimplemented(MethodSignOut)
}
func (UnimplementedRemoteStoreServer) RefreshToken(context.Context, *RefreshTokenRequest) (*AuthResponse, error) {
	return nil, unimplemented(MethodRefreshToken)
}
func (UnimplementedRemoteStoreServer) GetProfile(context.Context, *UserRequest) (*Profile, error) {
	return nil, unimplemented(MethodGetProfile)
}
func (UnimplementedRemoteStoreServer) InsertProfile(context.Context, *Profile) (*Empty, error) {
	return nil, unimplemented(MethodInsertProfile)
}
func (UnimplementedRemoteStoreServer) UpdateProfile(context.Context, *Profile) (*Empty, error) {
	return nil, unimplemented(MethodUpdateProfile)
}
func (UnimplementedRemoteStoreServer) GetDescriptor(context.Context, *UserRequest) (*Descriptor, error) {
	return nil, unimplemented(MethodGetDescriptor)
}
func (UnimplementedRemoteStoreServer) UpsertDescriptor(context.Context, *Descriptor) (*Empty, error) {
	return nil, unimplemented(MethodUpsertDescriptor)
}
func (UnimplementedRemoteStoreServer) ListDescriptors(context.Context, *Empty) (*DescriptorList, error) {
	return nil, unimplemented(MethodListDescriptors)
}
