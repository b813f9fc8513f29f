package descriptors_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/profilekeeper/internal/client/face"
	"github.com/dmitrijs2005/profilekeeper/internal/client/face/facetest"
	"github.com/dmitrijs2005/profilekeeper/internal/client/models"
	"github.com/dmitrijs2005/profilekeeper/internal/client/repositories/descriptors"
	"github.com/dmitrijs2005/profilekeeper/internal/client/repositories/repotest"
	"github.com/dmitrijs2005/profilekeeper/internal/common"
)

func TestUpsertAndGet(t *testing.T) {
	r := descriptors.NewSQLiteRepository(repotest.NewDB(t))
	ctx := context.Background()

	d1 := &models.EnrolledDescriptor{UserID: "u1", Email: "alice@example.com", Descriptor: facetest.Vector(1), UpdatedAt: 10}
	require.NoError(t, r.Upsert(ctx, d1))

	got, err := r.GetByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, d1, got)
	assert.Len(t, got.Descriptor, face.DescriptorSize)

	// Replace: still one per user.
	d1.Descriptor = facetest.Vector(2)
	d1.UpdatedAt = 20
	require.NoError(t, r.Upsert(ctx, d1))
	require.NoError(t, r.Upsert(ctx, &models.EnrolledDescriptor{UserID: "u0", Descriptor: facetest.Vector(3)}))

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "u0", all[0].UserID)
	assert.Equal(t, facetest.Vector(2), all[1].Descriptor)
}

func TestUpsert_RejectsWrongDimension(t *testing.T) {
	r := descriptors.NewSQLiteRepository(repotest.NewDB(t))

	err := r.Upsert(context.Background(), &models.EnrolledDescriptor{UserID: "u1", Descriptor: face.Descriptor{1, 2}})
	assert.ErrorIs(t, err, face.ErrDescriptorSize)
}

func TestGetAndDelete_NotFound(t *testing.T) {
	r := descriptors.NewSQLiteRepository(repotest.NewDB(t))
	ctx := context.Background()

	_, err := r.GetByUserID(ctx, "u1")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	require.NoError(t, r.Upsert(ctx, &models.EnrolledDescriptor{UserID: "u1", Descriptor: facetest.Vector(1)}))
	require.NoError(t, r.Delete(ctx, "u1"))
	_, err = r.GetByUserID(ctx, "u1")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.ErrorIs(t, r.Delete(ctx, "u1"), common.ErrorNotFound)
}
