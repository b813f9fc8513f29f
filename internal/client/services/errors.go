package services

import "errors"

var (
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrSilentReauthUnavailable = errors.New("silent reauthentication unavailable")
	ErrLivenessFailed          = errors.New("liveness check failed")
)
