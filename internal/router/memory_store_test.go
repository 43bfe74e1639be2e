package router

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"smart-blog-api/internal/model"
)

type memoryUsers struct {
	mu    sync.Mutex
	users map[string]model.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{users: map[string]model.User{}}
}

func (m *memoryUsers) FindByID(_ context.Context, id string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (m *memoryUsers) FindByEmail(_ context.Context, email string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (m *memoryUsers) Create(_ context.Context, u model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return model.ErrEmailTaken
		}
	}
	m.users[u.ID] = u
	return nil
}

type memoryPosts struct {
	mu    sync.Mutex
	posts map[string]model.Post
}

func newMemoryPosts() *memoryPosts {
	return &memoryPosts{posts: map[string]model.Post{}}
}

func (m *memoryPosts) Create(_ context.Context, p model.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posts[p.ID] = p
	return nil
}

func (m *memoryPosts) list(keep func(model.Post) bool) []model.PostSummary {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []model.PostSummary
	for _, p := range m.posts {
		if keep(p) {
			out = append(out, p.Summary())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return strings.Compare(out[i].ID, out[j].ID) < 0
	})
	return out
}

func (m *memoryPosts) ListByAuthor(_ context.Context, authorID string) ([]model.PostSummary, error) {
	return m.list(func(p model.Post) bool { return p.AuthorID == authorID }), nil
}

func (m *memoryPosts) ListPublished(_ context.Context) ([]model.PostSummary, error) {
	return m.list(func(p model.Post) bool { return p.Status == model.PostStatusPublished }), nil
}

func (m *memoryPosts) find(keep func(model.Post) bool, id string) (model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok || !keep(p) {
		return model.Post{}, model.ErrPostNotFound
	}
	return p, nil
}

func (m *memoryPosts) FindByID(_ context.Context, id string) (model.Post, error) {
	return m.find(func(model.Post) bool { return true }, id)
}

func (m *memoryPosts) FindOwned(_ context.Context, id string, authorID string) (model.Post, error) {
	return m.find(func(p model.Post) bool { return p.AuthorID == authorID }, id)
}

func (m *memoryPosts) FindPublished(_ context.Context, id string) (model.Post, error) {
	return m.find(func(p model.Post) bool { return p.Status == model.PostStatusPublished }, id)
}

func (m *memoryPosts) mutate(id string, authorID string, at time.Time, apply func(*model.Post)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok || p.AuthorID != authorID {
		return model.ErrPostNotFound
	}
	apply(&p)
	p.UpdatedAt = at
	if at.Before(p.CreatedAt) {
		p.UpdatedAt = p.CreatedAt
	}
	m.posts[id] = p
	return nil
}

func (m *memoryPosts) Update(_ context.Context, id string, authorID string, patch model.PostPatch, at time.Time) error {
	return m.mutate(id, authorID, at, func(p *model.Post) {
		if patch.Title != nil {
			p.Title = *patch.Title
		}
		if patch.SetContent {
			p.Content = patch.Content
		}
	})
}

func (m *memoryPosts) Publish(_ context.Context, id string, authorID string, at time.Time) error {
	return m.mutate(id, authorID, at, func(p *model.Post) {
		p.Status = model.PostStatusPublished
	})
}

func (m *memoryPosts) Delete(_ context.Context, id string, authorID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok || p.AuthorID != authorID {
		return model.ErrPostNotFound
	}
	delete(m.posts, id)
	return nil
}
