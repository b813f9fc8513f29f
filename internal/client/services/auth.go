package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/profilekeeper/internal/client/client"
	"github.com/dmitrijs2005/profilekeeper/internal/client/models"
	"github.com/dmitrijs2005/profilekeeper/internal/client/repositories/credentials"
	"github.com/dmitrijs2005/profilekeeper/internal/clock"
	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/dmitrijs2005/profilekeeper/internal/cryptox"
	"github.com/dmitrijs2005/profilekeeper/internal/logging"
)

// AuthService authenticates against the remote store and keeps the local
// credential cache used for offline sign-in and silent re-authentication.
//
// The cache holds a salted argon2id verifier of the password. When sealer is
// non-nil the password itself is also stored, sealed to the device key, so
// that an offline session can be upgraded without prompting. That makes the
// password recoverable by anyone holding both the database and the key file;
// it is therefore opt-in.
type AuthService struct {
	remote client.RemoteStore
	creds  credentials.Repository
	sealer *cryptox.Sealer
	clock  clock.Clock
	logger logging.Logger
}

// NewAuthService wires the service. A nil sealer disables silent reauth.
func NewAuthService(remote client.RemoteStore, creds credentials.Repository, sealer *cryptox.Sealer, clk clock.Clock, logger logging.Logger) *AuthService {
	if clk == nil {
		clk = clock.Real()
	}
	return &AuthService{
		remote: remote,
		creds:  creds,
		sealer: sealer,
		clock:  clk,
		logger: logging.OrDiscard(logger).With("module", "auth"),
	}
}

// SilentReauthEnabled reports whether passwords are sealed on login.
func (a *AuthService) SilentReauthEnabled() bool {
	return a.sealer != nil
}

// CacheCredential stores a verifier for password and, if enabled, the sealed
// password.
func (a *AuthService) CacheCredential(ctx context.Context, userID, email, password string) error {
	salt := cryptox.NewSalt()
	key := cryptox.DeriveKey([]byte(password), salt)
	verifier := cryptox.MakeVerifier(key)
	common.WipeByteArray(key)

	c := &models.CachedCredential{
		UserID:      userID,
		Email:       strings.ToLower(email),
		Salt:        salt,
		Verifier:    verifier,
		LastLoginAt: a.clock.Now().UTC(),
	}

	if a.sealer != nil {
		sealed, err := a.sealer.Seal([]byte(password))
		if err != nil {
			return fmt.Errorf("seal secret: %w", err)
		}
		c.SealedSecret = sealed
	}

	if err := a.creds.Upsert(ctx, c); err != nil {
		return fmt.Errorf("cache credential: %w", err)
	}
	return nil
}

// VerifyOffline checks password against the cached verifier for email.
// An unknown email yields client.ErrLocalDataNotAvailable; a wrong password
// yields ErrInvalidCredentials.
func (a *AuthService) VerifyOffline(ctx context.Context, email, password string) (*models.CachedCredential, error) {
	c, err := a.creds.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: %w", client.ErrLocalDataNotAvailable, err)
		}
		return nil, err
	}
	if !cryptox.CheckPassword([]byte(password), c.Salt, c.Verifier) {
		return nil, ErrInvalidCredentials
	}
	return c, nil
}

// OfflineSession builds an offline-authenticated session for c.
func (a *AuthService) OfflineSession(c *models.CachedCredential, method models.AuthMethod) *models.Session {
	return &models.Session{
		UserID:    c.UserID,
		Email:     c.Email,
		Offline:   true,
		Method:    method,
		StartedAt: a.clock.Now(),
	}
}

// Credential returns the cached credential for userID.
func (a *AuthService) Credential(ctx context.Context, userID string) (*models.CachedCredential, error) {
	return a.creds.GetByUserID(ctx, userID)
}

// OnlineLogin signs in remotely and refreshes the credential cache.
func (a *AuthService) OnlineLogin(ctx context.Context, email, password string) (*models.Session, error) {
	res, err := a.remote.SignIn(ctx, email, password)
	if err != nil {
		return nil, a.authError(err)
	}
	return a.accept(ctx, res, password), nil
}

// Register creates the account remotely and seeds the credential cache.
func (a *AuthService) Register(ctx context.Context, email, password string) (*models.Session, error) {
	res, err := a.remote.SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return a.accept(ctx, res, password), nil
}

// Reauthenticate validates password remotely for an offline session.
func (a *AuthService) Reauthenticate(ctx context.Context, email, password string) (*models.Session, error) {
	return a.OnlineLogin(ctx, email, password)
}

// SilentReauth signs in with the sealed secret cached for userID. It returns
// ErrSilentReauthUnavailable when no usable secret is stored.
func (a *AuthService) SilentReauth(ctx context.Context, userID string) (*models.Session, error) {
	if a.sealer == nil {
		return nil, ErrSilentReauthUnavailable
	}

	c, err := a.creds.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, ErrSilentReauthUnavailable
		}
		return nil, err
	}
	if !c.HasSealedSecret() {
		return nil, ErrSilentReauthUnavailable
	}

	secret, err := a.sealer.Open(c.SealedSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSilentReauthUnavailable, err)
	}
	defer common.WipeByteArray(secret)

	res, err := a.remote.SignIn(ctx, c.Email, string(secret))
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			// The password changed elsewhere; the sealed copy is useless now.
			if ferr := a.ForgetSecret(ctx, userID); ferr != nil {
				a.logger.Warn(ctx, "dropping stale sealed secret failed", "user_id", userID, "error", ferr)
			}
		}
		return nil, a.authError(err)
	}

	c.LastLoginAt = a.clock.Now().UTC()
	if err := a.creds.Upsert(ctx, c); err != nil {
		a.logger.Warn(ctx, "updating last login failed", "user_id", userID, "error", err)
	}
	return a.session(res), nil
}

// ForgetSecret drops the sealed secret for userID but keeps the verifier,
// so offline sign-in keeps working.
func (a *AuthService) ForgetSecret(ctx context.Context, userID string) error {
	c, err := a.creds.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return err
	}
	if !c.HasSealedSecret() {
		return nil
	}
	c.SealedSecret = nil
	return a.creds.Upsert(ctx, c)
}

// SignOut revokes the remote session.
func (a *AuthService) SignOut(ctx context.Context) error {
	return a.remote.SignOut(ctx)
}

func (a *AuthService) accept(ctx context.Context, res *client.AuthResult, password string) *models.Session {
	if err := a.CacheCredential(ctx, res.UserID, res.Email, password); err != nil {
		a.logger.Warn(ctx, "credential not cached; offline sign-in unavailable", "user_id", res.UserID, "error", err)
	}
	return a.session(res)
}

func (a *AuthService) session(res *client.AuthResult) *models.Session {
	return &models.Session{
		UserID:       res.UserID,
		Email:        strings.ToLower(res.Email),
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		Method:       models.AuthPassword,
		StartedAt:    a.clock.Now(),
	}
}

func (a *AuthService) authError(err error) error {
	if errors.Is(err, client.ErrUnauthorized) {
		return fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}
	return err
}
