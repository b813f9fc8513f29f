package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/dmitrijs2005/profilekeeper/internal/dbx"
	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
	"github.com/dmitrijs2005/profilekeeper/internal/server/repositories/descriptors"
	"github.com/dmitrijs2005/profilekeeper/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/profilekeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/profilekeeper/internal/server/repositories/users"
)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

type fakeUsers struct {
	mu      sync.Mutex
	byEmail map[string]*models.User
	getErr  error
}

func (f *fakeUsers) Create(_ context.Context, email string, hash []byte) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byEmail[email]; ok {
		return nil, common.ErrorAlreadyExists
	}
	u := &models.User{ID: "id-" + email, Email: email, PasswordHash: hash}
	f.byEmail[email] = u
	return u, nil
}

func (f *fakeUsers) ByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (f *fakeUsers) ByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

type fakeRefresh struct {
	mu     sync.Mutex
	tokens map[string]models.RefreshToken
}

func (f *fakeRefresh) Create(_ context.Context, t *models.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[t.Token] = *t
	return nil
}

func (f *fakeRefresh) Consume(_ context.Context, token string) (*models.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	delete(f.tokens, token)
	return &t, nil
}

type fakeProfiles struct {
	rows map[string]models.Profile
}

func (f *fakeProfiles) Get(_ context.Context, userID string) (*models.Profile, error) {
	p, ok := f.rows[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &p, nil
}

func (f *fakeProfiles) Insert(_ context.Context, p *models.Profile) error {
	if _, ok := f.rows[p.UserID]; ok {
		return common.ErrorAlreadyExists
	}
	f.rows[p.UserID] = *p
	return nil
}

func (f *fakeProfiles) Update(_ context.Context, p *models.Profile) error {
	cur, ok := f.rows[p.UserID]
	if !ok {
		return common.ErrorNotFound
	}
	if cur.UpdatedAt >= p.UpdatedAt {
		return profiles.ErrStale
	}
	f.rows[p.UserID] = *p
	return nil
}

type fakeDescriptors struct {
	rows map[string]models.Descriptor
}

func (f *fakeDescriptors) Get(_ context.Context, userID string) (*models.Descriptor, error) {
	d, ok := f.rows[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &d, nil
}

func (f *fakeDescriptors) Upsert(_ context.Context, d *models.Descriptor) error {
	f.rows[d.UserID] = *d
	return nil
}

func (f *fakeDescriptors) List(context.Context) ([]models.Descriptor, error) {
	out := make([]models.Descriptor, 0, len(f.rows))
	for _, d := range f.rows {
		out = append(out, d)
	}
	return out, nil
}

type fakeManager struct {
	users       *fakeUsers
	refresh     *fakeRefresh
	profiles    *fakeProfiles
	descriptors *fakeDescriptors
}

func newFakeManager() *fakeManager {
	return &fakeManager{
		users:       &fakeUsers{byEmail: map[string]*models.User{}},
		refresh:     &fakeRefresh{tokens: map[string]models.RefreshToken{}},
		profiles:    &fakeProfiles{rows: map[string]models.Profile{}},
		descriptors: &fakeDescriptors{rows: map[string]models.Descriptor{}},
	}
}

func (m *fakeManager) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m *fakeManager) Users(dbx.DBTX) users.Repository                 { return m.users }
func (m *fakeManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return m.refresh }
func (m *fakeManager) Profiles(dbx.DBTX) profiles.Repository           { return m.profiles }
func (m *fakeManager) Descriptors(dbx.DBTX) descriptors.Repository     { return m.descriptors }
