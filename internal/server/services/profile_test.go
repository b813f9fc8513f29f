package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
	"github.com/dmitrijs2005/profilekeeper/internal/server/repositories/profiles"
)

func TestProfileService(t *testing.T) {
	db, _ := newSQLMockDB(t)
	m := newFakeManager()
	s := NewProfileService(db, m)
	ctx := context.Background()

	_, err := s.Get(ctx, "u1", "u1")
	require.ErrorIs(t, err, common.ErrorNotFound)

	p := &models.Profile{UserID: "u1", FullName: "Alice", UpdatedAt: 100}
	require.NoError(t, s.Insert(ctx, "u1", p))
	require.ErrorIs(t, s.Insert(ctx, "u1", p), common.ErrorAlreadyExists)

	got, err := s.Get(ctx, "u1", "u1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.FullName)

	require.NoError(t, s.Update(ctx, "u1", &models.Profile{UserID: "u1", FullName: "Alicia", UpdatedAt: 200}))
	require.ErrorIs(t, s.Update(ctx, "u1", &models.Profile{UserID: "u1", FullName: "Old", UpdatedAt: 150}), profiles.ErrStale)

	got, err = s.Get(ctx, "u1", "u1")
	require.NoError(t, err)
	assert.Equal(t, "Alicia", got.FullName)
}

func TestProfileService_ScopedToCaller(t *testing.T) {
	db, _ := newSQLMockDB(t)
	s := NewProfileService(db, newFakeManager())
	ctx := context.Background()

	_, err := s.Get(ctx, "u1", "u2")
	require.ErrorIs(t, err, common.ErrorForbidden)
	require.ErrorIs(t, s.Insert(ctx, "u1", &models.Profile{UserID: "u2"}), common.ErrorForbidden)
	require.ErrorIs(t, s.Update(ctx, "u1", &models.Profile{UserID: "u2"}), common.ErrorForbidden)
	require.ErrorIs(t, s.Insert(ctx, "u1", &models.Profile{}), common.ErrorValidation)
}
