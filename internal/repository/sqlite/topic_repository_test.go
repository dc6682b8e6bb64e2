package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexidrill/lexidrill/internal/models"
	"github.com/lexidrill/lexidrill/internal/repository"
	"github.com/lexidrill/lexidrill/internal/repository/sqlite"
	"github.com/lexidrill/lexidrill/internal/testutil"
)

func TestTopicRepository_UpsertAndList(t *testing.T) {
	db := testutil.NewTestDB(t)
	t.Cleanup(func() { testutil.MustClose(t, db) })
	repo := sqlite.NewTopicRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, models.Topic{ID: "t1", Name: "Travel", CreatedAt: repoNow}))
	require.NoError(t, repo.Upsert(ctx, models.Topic{ID: "t2", Name: "Food", CreatedAt: repoNow.Add(time.Minute)}))

	topics, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, topics, 2)

	got, err := repo.Get(ctx, "t1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Travel", got.Name)

	// A second upsert with the same id renames in place.
	require.NoError(t, repo.Upsert(ctx, models.Topic{ID: "t1", Name: "Trips", CreatedAt: repoNow}))
	got, err = repo.Get(ctx, "t1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Trips", got.Name)

	missing, err := repo.Get(ctx, "ghost")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestTopicRepository_DeleteCascadesToWords(t *testing.T) {
	db := testutil.NewTestDB(t)
	t.Cleanup(func() { testutil.MustClose(t, db) })
	topicRepo := sqlite.NewTopicRepository(db)
	wordRepo := sqlite.NewWordRepository(db)
	ctx := context.Background()

	require.NoError(t, topicRepo.Upsert(ctx, models.Topic{ID: "t1", Name: "Travel", CreatedAt: repoNow}))
	require.NoError(t, topicRepo.Upsert(ctx, models.Topic{ID: "t2", Name: "Food", CreatedAt: repoNow}))
	require.NoError(t, wordRepo.Upsert(ctx, models.NewWord("w1", "t1", "luggage", "багаж", repoNow)))
	require.NoError(t, wordRepo.Upsert(ctx, models.NewWord("w2", "t1", "depart", "отправляться", repoNow)))
	require.NoError(t, wordRepo.Upsert(ctx, models.NewWord("w3", "t2", "bread", "хлеб", repoNow)))

	require.NoError(t, topicRepo.Delete(ctx, "t1"))

	topics, err := topicRepo.List(ctx)
	require.NoError(t, err)
	require.Len(t, topics, 1)
	assert.Equal(t, "t2", topics[0].ID)

	words, err := wordRepo.List(ctx, repository.WordFilter{})
	require.NoError(t, err)
	require.Len(t, words, 1, "deleting a topic removes its words")
	assert.Equal(t, "w3", words[0].ID)
}

func TestAdminRepository_ClearAll(t *testing.T) {
	db := testutil.NewTestDB(t)
	t.Cleanup(func() { testutil.MustClose(t, db) })
	topicRepo := sqlite.NewTopicRepository(db)
	wordRepo := sqlite.NewWordRepository(db)
	admin := sqlite.NewAdminRepository(db)
	ctx := context.Background()

	require.NoError(t, topicRepo.Upsert(ctx, models.Topic{ID: "t1", Name: "Travel", CreatedAt: repoNow}))
	require.NoError(t, wordRepo.Upsert(ctx, models.NewWord("w1", "t1", "luggage", "багаж", repoNow)))

	require.NoError(t, admin.ClearAll(ctx))

	topics, err := topicRepo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, topics)
	words, err := wordRepo.List(ctx, repository.WordFilter{})
	require.NoError(t, err)
	assert.Empty(t, words)

	// The store stays usable after a wipe.
	require.NoError(t, topicRepo.Upsert(ctx, models.Topic{ID: "t1", Name: "Travel", CreatedAt: repoNow}))
}
