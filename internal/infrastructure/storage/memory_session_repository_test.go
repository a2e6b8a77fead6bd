package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"samosa-vision/internal/domain/entity"
)

func TestMemorySessionRepository_GetCreates(t *testing.T) {
	repo := NewMemorySessionRepository()
	ctx := context.Background()

	sess, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, entity.StateUpload, sess.State.Kind())

	again, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	require.Same(t, sess, again)
}

func TestMemorySessionRepository_SaveAndDelete(t *testing.T) {
	repo := NewMemorySessionRepository()
	ctx := context.Background()

	sess := entity.NewSession("b")
	sess.SetState(entity.Analyzing{Progress: 1})
	require.NoError(t, repo.Save(ctx, sess))

	got, err := repo.Get(ctx, "b")
	require.NoError(t, err)
	require.Equal(t, entity.Analyzing{Progress: 1}, got.State)

	require.NoError(t, repo.Delete(ctx, "b"))
	require.ErrorIs(t, repo.Delete(ctx, "b"), entity.ErrSessionNotFound)
}

func TestMemorySessionRepository_PruneSkipsAnalyzing(t *testing.T) {
	repo := NewMemorySessionRepository()
	ctx := context.Background()

	old := time.Now().Add(-time.Hour)

	idle := entity.NewSession("idle")
	idle.UpdatedAt = old
	busy := entity.NewSession("busy")
	busy.State = entity.Analyzing{}
	busy.UpdatedAt = old
	fresh := entity.NewSession("fresh")

	for _, s := range []*entity.Session{idle, busy, fresh} {
		require.NoError(t, repo.Save(ctx, s))
	}

	n, err := repo.Prune(ctx, time.Now().Add(-time.Minute))
	require.NoError(t, err)
	require.Equal(t, 1, n)

	require.ErrorIs(t, repo.Delete(ctx, "idle"), entity.ErrSessionNotFound)
	require.NoError(t, repo.Delete(ctx, "busy"))
	require.NoError(t, repo.Delete(ctx, "fresh"))
}
