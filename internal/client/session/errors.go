package session

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/profilekeeper/internal/client/camera"
	"github.com/dmitrijs2005/profilekeeper/internal/client/client"
	"github.com/dmitrijs2005/profilekeeper/internal/client/face"
	"github.com/dmitrijs2005/profilekeeper/internal/client/identity"
	"github.com/dmitrijs2005/profilekeeper/internal/client/liveness"
	"github.com/dmitrijs2005/profilekeeper/internal/client/services"
	"github.com/dmitrijs2005/profilekeeper/internal/common"
)

var (
	ErrReauthRequired = errors.New("reauthentication required")
	ErrNotLoggedIn    = errors.New("not logged in")
	ErrAccountChanged = errors.New("signed in as a different account")
)

var cameraErrors = []error{
	camera.ErrPermissionDenied,
	camera.ErrBusy,
	camera.ErrInsecureContext,
	camera.ErrUnavailable,
	camera.ErrCaptureTimeout,
	camera.ErrReleased,
}

// Describe turns err into a short message suitable for the user.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	for _, ce := range cameraErrors {
		if errors.Is(err, ce) {
			return camera.Describe(err)
		}
	}

	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		return "invalid credentials"
	case errors.Is(err, client.ErrLocalDataNotAvailable):
		return "this account has not signed in on this device yet; connect and sign in online first"
	case errors.Is(err, ErrReauthRequired):
		return "please enter your password again to resume syncing"
	case errors.Is(err, ErrNotLoggedIn):
		return "you are not logged in"
	case errors.Is(err, ErrAccountChanged):
		return "the server returned a different account; log out and sign in again"
	case errors.Is(err, client.ErrUnauthorized):
		return "your session has expired; sign in again"
	case errors.Is(err, client.ErrUnavailable):
		return "server unavailable; try again later"
	case errors.Is(err, client.ErrConflict):
		return "an account with this email already exists"
	case errors.Is(err, face.ErrModelUnavailable):
		return "biometric subsystem unavailable"
	case errors.Is(err, liveness.ErrInsufficientSamples):
		return "capture quality too low; improve lighting and try again"
	case errors.Is(err, services.ErrLivenessFailed):
		return "liveness check failed; look at the camera and move slightly"
	case errors.Is(err, face.ErrNoFace):
		return "no face detected; center your face in the frame"
	case errors.Is(err, identity.ErrInsufficientCaptures):
		return "could not capture your face clearly; try again"
	case errors.Is(err, identity.ErrNoMatch):
		return "face not recognized"
	case errors.Is(err, face.ErrDescriptorSize):
		return "face data is malformed"
	case errors.Is(err, common.ErrorNotFound):
		return "nothing found"
	case errors.Is(err, common.ErrorValidation):
		return "invalid input"
	case errors.Is(err, context.DeadlineExceeded):
		return "operation timed out"
	case errors.Is(err, context.Canceled):
		return "operation cancelled"
	default:
		return "unexpected error"
	}
}
