package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/dmitrijs2005/profilekeeper/internal/rpc"
	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
	"github.com/dmitrijs2005/profilekeeper/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/profilekeeper/internal/server/services"
)

// toStatus maps service errors onto grpc codes. Unknown errors are logged and
// hidden behind codes.Internal.
func (s *GRPCServer) toStatus(ctx context.Context, method string, err error) error {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, common.ErrorAlreadyExists), errors.Is(err, profiles.ErrStale):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrRefreshTokenExpired):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, common.ErrorForbidden):
		return status.Error(codes.PermissionDenied, "forbidden")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		s.logger.Error(ctx, "request failed", "method", method, "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}

func (s *GRPCServer) caller(ctx context.Context) (string, error) {
	id, ok := userIDFrom(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "missing token")
	}
	return id, nil
}

func authResponse(p *services.TokenPair) *rpc.AuthResponse {
	return &rpc.AuthResponse{UserID: p.UserID, Email: p.Email, AccessToken: p.AccessToken, RefreshToken: p.RefreshToken}
}

func (s *GRPCServer) Ping(ctx context.Context, _ *rpc.Empty) (*rpc.PingResponse, error) {
	return &rpc.PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) SignUp(ctx context.Context, req *rpc.Credentials) (*rpc.AuthResponse, error) {
	pair, err := s.users.Register(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, rpc.MethodSignUp, err)
	}
	s.logger.Info(ctx, "Registered", "user_id", pair.UserID)
	return authResponse(pair), nil
}

func (s *GRPCServer) SignIn(ctx context.Context, req *rpc.Credentials) (*rpc.AuthResponse, error) {
	pair, err := s.users.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, rpc.MethodSignIn, err)
	}
	return authResponse(pair), nil
}

func (s *GRPCServer) SignOut(ctx context.Context, req *rpc.SignOutRequest) (*rpc.Empty, error) {
	if err := s.users.Logout(ctx, req.RefreshToken); err != nil {
		return nil, s.toStatus(ctx, rpc.MethodSignOut, err)
	}
	return &rpc.Empty{}, nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *rpc.RefreshTokenRequest) (*rpc.AuthResponse, error) {
	pair, err := s.users.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, s.toStatus(ctx, rpc.MethodRefreshToken, err)
	}
	return authResponse(pair), nil
}

func profileToRPC(p *models.Profile) *rpc.Profile {
	return &rpc.Profile{UserID: p.UserID, FullName: p.FullName, Phone: p.Phone, Location: p.Location, Bio: p.Bio, UpdatedAt: p.UpdatedAt}
}

func profileFromRPC(p *rpc.Profile) *models.Profile {
	return &models.Profile{UserID: p.UserID, FullName: p.FullName, Phone: p.Phone, Location: p.Location, Bio: p.Bio, UpdatedAt: p.UpdatedAt}
}

func (s *GRPCServer) GetProfile(ctx context.Context, req *rpc.UserRequest) (*rpc.Profile, error) {
	caller, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.profiles.Get(ctx, caller, req.UserID)
	if err != nil {
		return nil, s.toStatus(ctx, rpc.MethodGetProfile, err)
	}
	return profileToRPC(p), nil
}

func (s *GRPCServer) InsertProfile(ctx context.Context, req *rpc.Profile) (*rpc.Empty, error) {
	caller, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.profiles.Insert(ctx, caller, profileFromRPC(req)); err != nil {
		return nil, s.toStatus(ctx, rpc.MethodInsertProfile, err)
	}
	return &rpc.Empty{}, nil
}

func (s *GRPCServer) UpdateProfile(ctx context.Context, req *rpc.Profile) (*rpc.Empty, error) {
	caller, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.profiles.Update(ctx, caller, profileFromRPC(req)); err != nil {
		if errors.Is(err, profiles.ErrStale) {
			s.logger.Info(ctx, "stale profile update rejected", "user_id", req.UserID, "updated_at", req.UpdatedAt)
		}
		return nil, s.toStatus(ctx, rpc.MethodUpdateProfile, err)
	}
	return &rpc.Empty{}, nil
}

func descriptorToRPC(d *models.Descriptor) rpc.Descriptor {
	return rpc.Descriptor{UserID: d.UserID, Email: d.Email, Values: d.Values, UpdatedAt: d.UpdatedAt}
}

func (s *GRPCServer) GetDescriptor(ctx context.Context, req *rpc.UserRequest) (*rpc.Descriptor, error) {
	caller, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	d, err := s.descriptors.Get(ctx, caller, req.UserID)
	if err != nil {
		return nil, s.toStatus(ctx, rpc.MethodGetDescriptor, err)
	}
	out := descriptorToRPC(d)
	return &out, nil
}

func (s *GRPCServer) UpsertDescriptor(ctx context.Context, req *rpc.Descriptor) (*rpc.Empty, error) {
	caller, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	d := &models.Descriptor{UserID: req.UserID, Values: req.Values, UpdatedAt: req.UpdatedAt}
	if err := s.descriptors.Upsert(ctx, caller, d); err != nil {
		return nil, s.toStatus(ctx, rpc.MethodUpsertDescriptor, err)
	}
	return &rpc.Empty{}, nil
}

func (s *GRPCServer) ListDescriptors(ctx context.Context, _ *rpc.Empty) (*rpc.DescriptorList, error) {
	all, err := s.descriptors.List(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, rpc.MethodListDescriptors, err)
	}
	out := &rpc.DescriptorList{Descriptors: make([]rpc.Descriptor, 0, len(all))}
	for i := range all {
		out.Descriptors = append(out.Descriptors, descriptorToRPC(&all[i]))
	}
	return out, nil
}
