package repository

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"smart-blog-api/internal/model"
)

type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) FindByID(ctx context.Context, id string) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserStore) FindByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserStore) Create(ctx context.Context, u model.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

type MockPostStore struct {
	mock.Mock
}

func (m *MockPostStore) Create(ctx context.Context, p model.Post) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPostStore) ListByAuthor(ctx context.Context, authorID string) ([]model.PostSummary, error) {
	args := m.Called(ctx, authorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PostSummary), args.Error(1)
}

func (m *MockPostStore) ListPublished(ctx context.Context) ([]model.PostSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PostSummary), args.Error(1)
}

func (m *MockPostStore) FindByID(ctx context.Context, id string) (model.Post, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Post), args.Error(1)
}

func (m *MockPostStore) FindOwned(ctx context.Context, id string, authorID string) (model.Post, error) {
	args := m.Called(ctx, id, authorID)
	return args.Get(0).(model.Post), args.Error(1)
}

func (m *MockPostStore) FindPublished(ctx context.Context, id string) (model.Post, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Post), args.Error(1)
}

func (m *MockPostStore) Update(ctx context.Context, id string, authorID string, patch model.PostPatch, at time.Time) error {
	args := m.Called(ctx, id, authorID, patch, at)
	return args.Error(0)
}

func (m *MockPostStore) Publish(ctx context.Context, id string, authorID string, at time.Time) error {
	args := m.Called(ctx, id, authorID, at)
	return args.Error(0)
}

func (m *MockPostStore) Delete(ctx context.Context, id string, authorID string) error {
	args := m.Called(ctx, id, authorID)
	return args.Error(0)
}
