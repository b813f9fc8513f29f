// Package clienttest provides an in-memory client.RemoteStore for tests.
package clienttest

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/profilekeeper/internal/client/client"
	"github.com/dmitrijs2005/profilekeeper/internal/client/models"
	"github.com/dmitrijs2005/profilekeeper/internal/common"
)

type account struct {
	userID   string
	password string
}

// Remote is a thread-safe in-memory RemoteStore. Set Down to make every
// call fail with client.ErrUnavailable; set Unauthorized to make data calls
// fail with client.ErrUnauthorized.
type Remote struct {
	mu sync.Mutex

	Down         bool
	Unauthorized bool
	// GetProfileErr, when set, is returned by GetProfile.
	GetProfileErr error
	// BeforeWrite, when set, runs before a profile insert or update.
	BeforeWrite func()

	accounts    map[string]account
	profiles    map[string]models.RemoteProfile
	descriptors map[string]models.EnrolledDescriptor

	Inserts   int
	Updates   int
	SignIns   int
	SignOuts  int
	Pings     int
	Galleries int
}

func NewRemote() *Remote {
	return &Remote{
		accounts:    make(map[string]account),
		profiles:    make(map[string]models.RemoteProfile),
		descriptors: make(map[string]models.EnrolledDescriptor),
	}
}

// AddAccount registers email with password and returns the user id.
func (r *Remote) AddAccount(email, password string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := uuid.NewString()
	r.accounts[strings.ToLower(email)] = account{userID: id, password: password}
	return id
}

// SetPassword changes the password of an existing account.
func (r *Remote) SetPassword(email, password string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a := r.accounts[strings.ToLower(email)]
	a.password = password
	r.accounts[strings.ToLower(email)] = a
}

// PutProfile stores p as if written by another device.
func (r *Remote) PutProfile(p models.RemoteProfile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[p.UserID] = p
}

// Profile returns the stored profile of userID.
func (r *Remote) Profile(userID string) (models.RemoteProfile, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	return p, ok
}

// PutDescriptor stores d in the remote gallery.
func (r *Remote) PutDescriptor(d models.EnrolledDescriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.descriptors[d.UserID] = d
}

// Writes returns the number of profile inserts plus updates.
func (r *Remote) Writes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Inserts + r.Updates
}

func (r *Remote) SetDown(down bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Down = down
}

func (r *Remote) SetUnauthorized(v bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Unauthorized = v
}

func (r *Remote) check(data bool) error {
	if r.Down {
		return client.ErrUnavailable
	}
	if data && r.Unauthorized {
		return client.ErrUnauthorized
	}
	return nil
}

func (r *Remote) Ping(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Pings++
	return r.check(false)
}

func (r *Remote) SignUp(_ context.Context, email, password string) (*client.AuthResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.check(false); err != nil {
		return nil, err
	}
	email = strings.ToLower(email)
	if _, ok := r.accounts[email]; ok {
		return nil, client.ErrConflict
	}
	id := uuid.NewString()
	r.accounts[email] = account{userID: id, password: password}
	return authResult(id, email), nil
}

func (r *Remote) SignIn(_ context.Context, email, password string) (*client.AuthResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.SignIns++
	if err := r.check(false); err != nil {
		return nil, err
	}
	email = strings.ToLower(email)
	a, ok := r.accounts[email]
	if !ok || a.password != password {
		return nil, client.ErrUnauthorized
	}
	r.Unauthorized = false
	return authResult(a.userID, email), nil
}

func authResult(userID, email string) *client.AuthResult {
	return &client.AuthResult{
		UserID:       userID,
		Email:        email,
		AccessToken:  "access-" + userID,
		RefreshToken: "refresh-" + userID,
	}
}

func (r *Remote) SignOut(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.SignOuts++
	return r.check(false)
}

func (r *Remote) GetProfile(_ context.Context, userID string) (*models.RemoteProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.check(true); err != nil {
		return nil, err
	}
	if r.GetProfileErr != nil {
		return nil, r.GetProfileErr
	}
	p, ok := r.profiles[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &p, nil
}

func (r *Remote) InsertProfile(_ context.Context, p *models.RemoteProfile) error {
	r.beforeWrite()
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.check(true); err != nil {
		return err
	}
	if _, ok := r.profiles[p.UserID]; ok {
		return client.ErrConflict
	}
	r.profiles[p.UserID] = *p
	r.Inserts++
	return nil
}

func (r *Remote) UpdateProfile(_ context.Context, userID string, p *models.RemoteProfile) error {
	r.beforeWrite()
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.check(true); err != nil {
		return err
	}
	if _, ok := r.profiles[userID]; !ok {
		return common.ErrorNotFound
	}
	cp := *p
	cp.UserID = userID
	r.profiles[userID] = cp
	r.Updates++
	return nil
}

func (r *Remote) beforeWrite() {
	r.mu.Lock()
	f := r.BeforeWrite
	r.mu.Unlock()
	if f != nil {
		f()
	}
}

func (r *Remote) GetDescriptor(_ context.Context, userID string) (*models.EnrolledDescriptor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.check(true); err != nil {
		return nil, err
	}
	d, ok := r.descriptors[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &d, nil
}

func (r *Remote) UpsertDescriptor(_ context.Context, d *models.EnrolledDescriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.check(true); err != nil {
		return err
	}
	r.descriptors[d.UserID] = *d
	return nil
}

// ListDescriptors returns the gallery ordered by user id.
func (r *Remote) ListDescriptors(context.Context) ([]models.EnrolledDescriptor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Galleries++
	if err := r.check(false); err != nil {
		return nil, err
	}
	out := make([]models.EnrolledDescriptor, 0, len(r.descriptors))
	for _, d := range r.descriptors {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (r *Remote) Close() error { return nil }

var _ client.RemoteStore = (*Remote)(nil)
