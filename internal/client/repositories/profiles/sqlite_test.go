package profiles_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/profilekeeper/internal/client/models"
	"github.com/dmitrijs2005/profilekeeper/internal/client/repositories/profiles"
	"github.com/dmitrijs2005/profilekeeper/internal/client/repositories/repotest"
	"github.com/dmitrijs2005/profilekeeper/internal/common"
)

func record(userID, name string, updatedAt int64, pending bool) *models.ProfileRecord {
	return &models.ProfileRecord{
		UserID:      userID,
		Fields:      models.ProfileFields{FullName: name, Phone: "+371 2000000", Location: "Riga"},
		UpdatedAt:   updatedAt,
		PendingSync: pending,
	}
}

func TestUpsert_AssignsAndPreservesLocalID(t *testing.T) {
	r := profiles.NewSQLiteRepository(repotest.NewDB(t))
	ctx := context.Background()

	first := record("u1", "Alice", 100, true)
	require.NoError(t, r.Upsert(ctx, first))
	require.NotEmpty(t, first.LocalID)

	second := record("u1", "Alicia", 200, true)
	second.LocalID = "some-other-id"
	require.NoError(t, r.Upsert(ctx, second))
	assert.Equal(t, first.LocalID, second.LocalID, "one record per user")

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Alicia", all[0].Fields.FullName)
	assert.Equal(t, int64(200), all[0].UpdatedAt)
	assert.True(t, all[0].PendingSync)
}

func TestGetters(t *testing.T) {
	r := profiles.NewSQLiteRepository(repotest.NewDB(t))
	ctx := context.Background()

	p := record("u1", "Alice", 100, false)
	require.NoError(t, r.Upsert(ctx, p))

	byUser, err := r.GetByUserID(ctx, "u1")
	require.NoError(t, err)
	byLocal, err := r.GetByLocalID(ctx, p.LocalID)
	require.NoError(t, err)
	assert.Equal(t, byUser, byLocal)
	assert.Equal(t, p.Fields, byUser.Fields)

	_, err = r.GetByUserID(ctx, "nobody")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = r.GetByLocalID(ctx, "nothing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestPendingIndex(t *testing.T) {
	r := profiles.NewSQLiteRepository(repotest.NewDB(t))
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, record("u1", "A", 300, true)))
	require.NoError(t, r.Upsert(ctx, record("u2", "B", 100, true)))
	require.NoError(t, r.Upsert(ctx, record("u3", "C", 200, false)))

	pending, err := r.GetAllPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "u2", pending[0].UserID)
	assert.Equal(t, "u1", pending[1].UserID)

	n, err := r.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestMarkSynced_ConditionalOnUpdatedAt(t *testing.T) {
	r := profiles.NewSQLiteRepository(repotest.NewDB(t))
	ctx := context.Background()

	p := record("u1", "Alice", 100, true)
	require.NoError(t, r.Upsert(ctx, p))

	// An edit landed after the sync run read the record.
	edited := record("u1", "Alicia", 150, true)
	require.NoError(t, r.Upsert(ctx, edited))

	ok, err := r.MarkSynced(ctx, p.LocalID, 100)
	require.NoError(t, err)
	assert.False(t, ok)
	n, _ := r.CountPending(ctx)
	assert.Equal(t, 1, n)

	ok, err = r.MarkSynced(ctx, p.LocalID, 150)
	require.NoError(t, err)
	assert.True(t, ok)
	n, _ = r.CountPending(ctx)
	assert.Equal(t, 0, n)
}

func TestDeleteAndClear(t *testing.T) {
	r := profiles.NewSQLiteRepository(repotest.NewDB(t))
	ctx := context.Background()

	p := record("u1", "Alice", 100, false)
	require.NoError(t, r.Upsert(ctx, p))
	require.NoError(t, r.Delete(ctx, p.LocalID))
	assert.ErrorIs(t, r.Delete(ctx, p.LocalID), common.ErrorNotFound)

	require.NoError(t, r.Upsert(ctx, record("u2", "Bob", 1, true)))
	require.NoError(t, r.Clear(ctx))
	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestApplyRemote(t *testing.T) {
	r := profiles.NewSQLiteRepository(repotest.NewDB(t))
	ctx := context.Background()

	remote := &models.RemoteProfile{UserID: "u1", Fields: models.ProfileFields{FullName: "Alice"}, UpdatedAt: 100}
	ok, err := r.ApplyRemote(ctx, remote)
	require.NoError(t, err)
	assert.True(t, ok, "missing record is inserted")

	got, err := r.GetByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, got.PendingSync)
	assert.Equal(t, "Alice", got.Fields.FullName)

	ok, err = r.ApplyRemote(ctx, remote)
	require.NoError(t, err)
	assert.False(t, ok, "same timestamp is not newer")

	require.NoError(t, r.Upsert(ctx, record("u1", "Alicia", 150, true)))
	ok, err = r.ApplyRemote(ctx, &models.RemoteProfile{UserID: "u1", Fields: models.ProfileFields{FullName: "Remote"}, UpdatedAt: 300})
	require.NoError(t, err)
	assert.False(t, ok, "pending edit wins")

	got, err = r.GetByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Alicia", got.Fields.FullName)
}
