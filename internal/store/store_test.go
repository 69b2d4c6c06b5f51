package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagelingo/pagelingo/internal/session"
)

func testRepo(t *testing.T) *SessionRepository {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSessionRepository(db)
}

func sampleSnapshot() session.Snapshot {
	now := time.Now().UTC().Truncate(time.Second)
	return session.Snapshot{
		ID:         "sess-1",
		State:      session.StateProcessing,
		TotalPages: 2,
		Done:       1,
		StartedAt:  now,
		UpdatedAt:  now,
		Pages: []session.PageResult{
			{PageNumber: 1, Status: session.StatusCompleted, HTML: "<p>bonjour</p>"},
			{PageNumber: 2, Status: session.StatusPending},
		},
	}
}

func TestSessionRepositorySaveAndGet(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	snap := sampleSnapshot()
	require.NoError(t, repo.Save(ctx, snap))

	got, err := repo.GetByID(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, snap.ID, got.ID)
	assert.Equal(t, session.StateProcessing, got.State)
	assert.Equal(t, 2, got.TotalPages)
	assert.Equal(t, 1, got.Done)
	require.Len(t, got.Pages, 2)
	assert.Equal(t, session.StatusCompleted, got.Pages[0].Status)
	assert.Equal(t, "<p>bonjour</p>", got.Pages[0].HTML)
	assert.Equal(t, session.StatusPending, got.Pages[1].Status)
}

func TestSessionRepositorySaveIsUpsert(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	snap := sampleSnapshot()
	require.NoError(t, repo.Save(ctx, snap))

	snap.State = session.StateCompleted
	snap.Done = 2
	snap.Pages[1].Status = session.StatusFailed
	snap.Pages[1].Error = "render failed"
	require.NoError(t, repo.Save(ctx, snap))

	got, err := repo.GetByID(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, session.StateCompleted, got.State)
	assert.Equal(t, 2, got.Done)
	assert.Equal(t, session.StatusFailed, got.Pages[1].Status)
	assert.Equal(t, "render failed", got.Pages[1].Error)
}

func TestSessionRepositoryUpsertPage(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, sampleSnapshot()))
	require.NoError(t, repo.UpsertPage(ctx, "sess-1", session.PageResult{
		PageNumber: 2,
		Status:     session.StatusCompleted,
		HTML:       "<p>deux</p>",
	}))

	got, err := repo.GetByID(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, session.StatusCompleted, got.Pages[1].Status)
	assert.Equal(t, "<p>deux</p>", got.Pages[1].HTML)
}

func TestSessionRepositoryNotFound(t *testing.T) {
	repo := testRepo(t)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionRepositoryList(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	first := sampleSnapshot()
	require.NoError(t, repo.Save(ctx, first))

	second := sampleSnapshot()
	second.ID = "sess-2"
	second.UpdatedAt = first.UpdatedAt.Add(time.Minute)
	require.NoError(t, repo.Save(ctx, second))

	list, err := repo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "sess-2", list[0].ID)
	assert.Equal(t, "sess-1", list[1].ID)
}
