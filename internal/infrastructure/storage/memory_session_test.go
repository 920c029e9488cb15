package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMemorySession_SaveLoadIsolated(t *testing.T) {
	repo := NewMemorySessionRepository(time.Hour, zap.NewNop())
	ctx := context.Background()

	original := testSession(42)
	require.NoError(t, repo.Save(ctx, original))

	// Saqlagandan keyin chaqiruvchi nusxani o'zgartirsa store ta'sirlanmaydi
	original.DisplayName = "o'zgartirildi"
	original.Criteria.RoomsIn[0] = 9

	got, err := repo.Load(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Олег", got.DisplayName)
	assert.Equal(t, []int{2}, got.Criteria.RoomsIn)

	// O'qilgan nusxani o'zgartirish ham storega yetib bormaydi
	got.AskedQuestions = append(got.AskedQuestions, "rooms")
	again, err := repo.Load(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, []string{"district"}, again.AskedQuestions)
}

func TestMemorySession_LoadMissingReturnsNil(t *testing.T) {
	repo := NewMemorySessionRepository(time.Hour, zap.NewNop())

	got, err := repo.Load(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemorySession_AllAndDelete(t *testing.T) {
	repo := NewMemorySessionRepository(time.Hour, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, testSession(1)))
	require.NoError(t, repo.Save(ctx, testSession(2)))

	all, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, repo.Delete(ctx, 1))
	all, err = repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, int64(2), all[0].ChatID)
}

func TestMemorySession_SweepRemovesStale(t *testing.T) {
	repo := NewMemorySessionRepository(time.Hour, zap.NewNop())
	ctx := context.Background()

	stale := testSession(1)
	stale.LastActivity = time.Now().Add(-2 * time.Hour)
	fresh := testSession(2)
	fresh.LastActivity = time.Now()

	require.NoError(t, repo.Save(ctx, stale))
	require.NoError(t, repo.Save(ctx, fresh))

	repo.sweep(time.Now())

	all, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, int64(2), all[0].ChatID)
}
