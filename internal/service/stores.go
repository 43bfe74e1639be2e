package service

import (
	"context"
	"time"

	"smart-blog-api/internal/model"
)

// UserStore is the slice of the document store the auth gateway needs.
// *repository.UserRepository implements it.
type UserStore interface {
	FindByID(ctx context.Context, id string) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	Create(ctx context.Context, u model.User) error
}

// PostStore is implemented by *repository.PostRepository.
type PostStore interface {
	Create(ctx context.Context, p model.Post) error
	ListByAuthor(ctx context.Context, authorID string) ([]model.PostSummary, error)
	ListPublished(ctx context.Context) ([]model.PostSummary, error)
	FindByID(ctx context.Context, id string) (model.Post, error)
	FindOwned(ctx context.Context, id string, authorID string) (model.Post, error)
	FindPublished(ctx context.Context, id string) (model.Post, error)
	Update(ctx context.Context, id string, authorID string, patch model.PostPatch, at time.Time) error
	Publish(ctx context.Context, id string, authorID string, at time.Time) error
	Delete(ctx context.Context, id string, authorID string) error
}
