package client

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/profilekeeper/internal/common"
)

// ErrUnavailable means the RemoteStore could not be reached in time. The
// session drops to offline mode when it sees it.
var ErrUnavailable = errors.New("server unavailable")

// ErrUnauthorized covers rejected credentials, revoked refresh tokens and
// writes to another account's data.
var ErrUnauthorized = errors.New("unauthorized")

// ErrConflict is returned for a duplicate account or a profile update that
// lost to a newer server copy.
var ErrConflict = errors.New("already exists")

// ErrLocalDataNotAvailable is an offline sign-in for an email this device
// has never seen online.
var ErrLocalDataNotAvailable = errors.New("no cached credentials for this account")

// fromStatus converts a gRPC status into the package and common sentinels.
// Errors without a status are wrapped unchanged.
func fromStatus(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("rpc error: %w", err)
	}

	var sentinel error
	withMessage := false
	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded:
		sentinel = ErrUnavailable
	case codes.Unauthenticated, codes.PermissionDenied:
		sentinel, withMessage = ErrUnauthorized, true
	case codes.AlreadyExists:
		sentinel = ErrConflict
	case codes.NotFound:
		sentinel = common.ErrorNotFound
	case codes.InvalidArgument:
		sentinel, withMessage = common.ErrorValidation, true
	default:
		return fmt.Errorf("rpc error: %w", err)
	}

	if withMessage && st.Message() != "" {
		return fmt.Errorf("%w: %s", sentinel, st.Message())
	}
	return sentinel
}

// isTokenExpired matches only the server's expired-access-token status, the
// one case that justifies a refresh.
func isTokenExpired(err error) bool {
	if err == nil {
		return false
	}
	st, ok := status.FromError(err)
	return ok && st.Code() == codes.Unauthenticated && st.Message() == common.ErrTokenExpired.Error()
}
