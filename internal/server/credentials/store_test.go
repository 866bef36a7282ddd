package credentials

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backend struct {
	access  AccessStore
	refresh RefreshStore
}

func backends(t *testing.T) (map[string]backend, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rc.Close() })

	return map[string]backend{
		"memory": {access: NewMemoryAccessStore(), refresh: NewMemoryRefreshStore()},
		"redis":  {access: NewRedisAccessStore(rc), refresh: NewRedisRefreshStore(rc)},
	}, mr
}

func TestAccessStore(t *testing.T) {
	all, _ := backends(t)
	for name, b := range all {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := b.access

			rec := models.AccessRecord{ID: "a1", SubjectID: "u1", Role: models.RoleUser}
			require.NoError(t, s.Put(ctx, rec, time.Hour))

			got, err := s.GetByID(ctx, "a1")
			require.NoError(t, err)
			assert.Equal(t, rec, got)

			got, err = s.GetBySubject(ctx, "u1")
			require.NoError(t, err)
			assert.Equal(t, rec, got)

			require.NoError(t, s.DeleteBySubject(ctx, "u1"))
			_, err = s.GetByID(ctx, "a1")
			assert.ErrorIs(t, err, common.ErrorNotFound)
			_, err = s.GetBySubject(ctx, "u1")
			assert.ErrorIs(t, err, common.ErrorNotFound)

			require.NoError(t, s.DeleteBySubject(ctx, "u1"), "idempotent")
			require.NoError(t, s.DeleteByID(ctx, "a1"), "idempotent")
		})
	}
}

func TestAccessStore_DeleteByIDKeepsNewerIndex(t *testing.T) {
	all, _ := backends(t)
	for name, b := range all {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := b.access

			require.NoError(t, s.Put(ctx, models.AccessRecord{ID: "old", SubjectID: "u1"}, time.Hour))
			require.NoError(t, s.Put(ctx, models.AccessRecord{ID: "new", SubjectID: "u1"}, time.Hour))

			require.NoError(t, s.DeleteByID(ctx, "old"))

			got, err := s.GetBySubject(ctx, "u1")
			require.NoError(t, err)
			assert.Equal(t, "new", got.ID)

			require.NoError(t, s.DeleteByID(ctx, "new"))
			_, err = s.GetBySubject(ctx, "u1")
			assert.ErrorIs(t, err, common.ErrorNotFound)
		})
	}
}

func TestRefreshStore(t *testing.T) {
	all, _ := backends(t)
	for name, b := range all {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := b.refresh

			now := time.Unix(1_700_000_000, 0).UTC()
			rec := models.RefreshRecord{
				ID:        "r1",
				Access:    models.AccessRecord{ID: "a1", SubjectID: "u1", Role: models.RoleUser},
				UpdatedAt: now,
			}
			require.NoError(t, s.Put(ctx, rec, time.Hour))

			got, err := s.GetByID(ctx, "r1")
			require.NoError(t, err)
			assert.Equal(t, rec.Access, got.Access)
			assert.True(t, rec.UpdatedAt.Equal(got.UpdatedAt))

			require.NoError(t, s.DeleteByAccess(ctx, "a1"))
			_, err = s.GetByID(ctx, "r1")
			assert.ErrorIs(t, err, common.ErrorNotFound)

			require.NoError(t, s.DeleteByAccess(ctx, "a1"), "idempotent")
			require.NoError(t, s.Delete(ctx, "r1"), "idempotent")
		})
	}
}

func TestRefreshStore_RotationMovesIndex(t *testing.T) {
	all, _ := backends(t)
	for name, b := range all {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := b.refresh

			rec := models.RefreshRecord{ID: "r1", Access: models.AccessRecord{ID: "a1", SubjectID: "u1"}}
			require.NoError(t, s.Put(ctx, rec, time.Hour))

			rec.Rotate(models.AccessRecord{ID: "a2", SubjectID: "u1"}, time.Now())
			require.NoError(t, s.Put(ctx, rec, time.Hour))

			require.NoError(t, s.DeleteByAccess(ctx, "a1"))
			got, err := s.GetByID(ctx, "r1")
			require.NoError(t, err, "stale access id must not reach the rotated record")
			assert.Equal(t, "a2", got.Access.ID)

			require.NoError(t, s.Delete(ctx, "r1"))
			require.NoError(t, s.Put(ctx, models.RefreshRecord{ID: "r2", Access: models.AccessRecord{ID: "a2"}}, time.Hour))
			require.NoError(t, s.DeleteByAccess(ctx, "a2"))
			_, err = s.GetByID(ctx, "r2")
			assert.ErrorIs(t, err, common.ErrorNotFound, "index of a deleted record was cleaned up")
		})
	}
}

func TestRedisStores_TTL(t *testing.T) {
	_, mr := backends(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rc.Close() })
	ctx := context.Background()

	access := NewRedisAccessStore(rc)
	refresh := NewRedisRefreshStore(rc)

	require.NoError(t, access.Put(ctx, models.AccessRecord{ID: "a1", SubjectID: "u1"}, time.Minute))
	require.NoError(t, refresh.Put(ctx, models.RefreshRecord{ID: "r1", Access: models.AccessRecord{ID: "a1"}}, time.Hour))

	assert.Equal(t, time.Minute, mr.TTL(accessKey("a1")))
	assert.Equal(t, time.Minute, mr.TTL(subjectKey("u1")))
	assert.Equal(t, time.Hour, mr.TTL(refreshKey("r1")))

	mr.FastForward(2 * time.Minute)

	_, err := access.GetBySubject(ctx, "u1")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = refresh.GetByID(ctx, "r1")
	assert.NoError(t, err)
}

func TestMemoryStores_Sweep(t *testing.T) {
	ctx := context.Background()
	access := NewMemoryAccessStore()
	refresh := NewMemoryRefreshStore()

	require.NoError(t, access.Put(ctx, models.AccessRecord{ID: "a1", SubjectID: "u1"}, time.Nanosecond))
	require.NoError(t, refresh.Put(ctx, models.RefreshRecord{ID: "r1", Access: models.AccessRecord{ID: "a1"}}, time.Nanosecond))
	time.Sleep(time.Millisecond)

	assert.Equal(t, 2, access.Sweep())
	assert.Equal(t, 2, refresh.Sweep())
}
