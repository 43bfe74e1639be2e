//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-blog-api/internal/model"
	"smart-blog-api/internal/repository"
)

func TestUserRepository(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewUserRepository(db.Pool, 5*time.Second)
	ctx := context.Background()

	u := model.User{
		ID:           uuid.NewString(),
		Email:        "ada@example.com",
		PasswordHash: "hash",
		Name:         "Ada",
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, repo.Create(ctx, u))

	got, err := repo.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "hash", got.PasswordHash)
	assert.True(t, u.CreatedAt.Equal(got.CreatedAt))

	_, err = repo.FindByEmail(ctx, "ADA@example.com")
	assert.ErrorIs(t, err, model.ErrUserNotFound)

	_, err = repo.FindByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, model.ErrUserNotFound)

	dup := u
	dup.ID = uuid.NewString()
	assert.ErrorIs(t, repo.Create(ctx, dup), model.ErrEmailTaken)
}

func TestPostRepository(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewPostRepository(db.Pool, 5*time.Second)
	ctx := context.Background()

	owner := uuid.NewString()
	other := uuid.NewString()
	created := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	newPost := func(author string, content json.RawMessage, at time.Time) model.Post {
		return model.Post{
			ID:         uuid.NewString(),
			Title:      "Untitled",
			Content:    content,
			Status:     model.PostStatusDraft,
			AuthorID:   author,
			AuthorName: "Ada",
			CreatedAt:  at,
			UpdatedAt:  at,
		}
	}

	doc := json.RawMessage(`{"blocks":[{"type":"heading","text":"Hi"}],"version":2}`)
	first := newPost(owner, doc, created)
	second := newPost(owner, nil, created.Add(time.Hour))
	foreign := newPost(other, nil, created)
	for _, p := range []model.Post{first, second, foreign} {
		require.NoError(t, repo.Create(ctx, p))
	}

	t.Run("content round trips and null stays null", func(t *testing.T) {
		got, err := repo.FindOwned(ctx, first.ID, owner)
		require.NoError(t, err)
		assert.JSONEq(t, string(doc), string(got.Content))

		got, err = repo.FindByID(ctx, second.ID)
		require.NoError(t, err)
		assert.Nil(t, got.Content)
	})

	t.Run("content bytes are kept as sent", func(t *testing.T) {
		raw := json.RawMessage(`{"root":1,"a":2,  "root":3}`)
		p := newPost(other, raw, created)
		require.NoError(t, repo.Create(ctx, p))

		got, err := repo.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, string(raw), string(got.Content))

		plain := json.RawMessage(`{"root":1,"a":2}`)
		require.NoError(t, repo.Update(ctx, p.ID, other, model.PostPatch{Content: plain, SetContent: true}, created.Add(time.Minute)))
		got, err = repo.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, `{"root":1,"a":2}`, string(got.Content))
	})

	t.Run("owner scoping", func(t *testing.T) {
		_, err := repo.FindOwned(ctx, foreign.ID, owner)
		assert.ErrorIs(t, err, model.ErrPostNotFound)

		title := "stolen"
		err = repo.Update(ctx, foreign.ID, owner, model.PostPatch{Title: &title}, created.Add(2*time.Hour))
		assert.ErrorIs(t, err, model.ErrPostNotFound)
		assert.ErrorIs(t, repo.Publish(ctx, foreign.ID, owner, created), model.ErrPostNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, foreign.ID, owner), model.ErrPostNotFound)

		list, err := repo.ListByAuthor(ctx, owner)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, second.ID, list[0].ID)
		assert.Equal(t, first.ID, list[1].ID)
	})

	t.Run("partial update and clamped updated_at", func(t *testing.T) {
		title := "Renamed"
		require.NoError(t, repo.Update(ctx, first.ID, owner, model.PostPatch{Title: &title}, created.Add(-time.Hour)))

		got, err := repo.FindByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Title)
		assert.JSONEq(t, string(doc), string(got.Content))
		assert.True(t, got.UpdatedAt.Equal(got.CreatedAt))

		require.NoError(t, repo.Update(ctx, first.ID, owner, model.PostPatch{SetContent: true}, created.Add(3*time.Hour)))
		got, err = repo.FindByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Nil(t, got.Content)
		assert.True(t, got.UpdatedAt.Equal(created.Add(3*time.Hour)))

		list, err := repo.ListByAuthor(ctx, owner)
		require.NoError(t, err)
		assert.Equal(t, first.ID, list[0].ID)
	})

	t.Run("publish", func(t *testing.T) {
		published, err := repo.ListPublished(ctx)
		require.NoError(t, err)
		assert.Empty(t, published)

		require.NoError(t, repo.Publish(ctx, second.ID, owner, created.Add(4*time.Hour)))
		require.NoError(t, repo.Publish(ctx, second.ID, owner, created.Add(5*time.Hour)))

		got, err := repo.FindPublished(ctx, second.ID)
		require.NoError(t, err)
		assert.Equal(t, model.PostStatusPublished, got.Status)

		_, err = repo.FindPublished(ctx, first.ID)
		assert.ErrorIs(t, err, model.ErrPostNotFound)

		published, err = repo.ListPublished(ctx)
		require.NoError(t, err)
		require.Len(t, published, 1)
		assert.Equal(t, second.ID, published[0].ID)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, first.ID, owner))
		assert.ErrorIs(t, repo.Delete(ctx, first.ID, owner), model.ErrPostNotFound)
	})
}
