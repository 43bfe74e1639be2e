package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"smart-blog-api/internal/model"
	"smart-blog-api/pkg/apierror"
)

// PostService owns the post lifecycle: draft on create, one-way publish,
// owner-only reads and writes except for the two published-only reads.
type PostService struct {
	posts PostStore
	now   func() time.Time
}

func NewPostService(posts PostStore) *PostService {
	return &PostService{posts: posts, now: time.Now}
}

func (s *PostService) Create(ctx context.Context, ownerID string, ownerName string, req model.CreatePostRequest) (model.Post, error) {
	title := req.Title
	if strings.TrimSpace(title) == "" {
		title = model.DefaultPostTitle
	}

	now := s.now().UTC()
	post := model.Post{
		ID:         uuid.NewString(),
		Title:      title,
		Content:    model.NormalizeContent(req.Content),
		Status:     model.PostStatusDraft,
		AuthorID:   ownerID,
		AuthorName: ownerName,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.posts.Create(ctx, post); err != nil {
		return model.Post{}, err
	}

	slog.Debug("post created", "post_id", post.ID, "author_id", ownerID)
	return post, nil
}

func (s *PostService) List(ctx context.Context, ownerID string) ([]model.PostSummary, error) {
	return s.posts.ListByAuthor(ctx, ownerID)
}

func (s *PostService) ListPublished(ctx context.Context) ([]model.PostSummary, error) {
	return s.posts.ListPublished(ctx)
}

func (s *PostService) Get(ctx context.Context, id string, ownerID string) (model.Post, error) {
	if err := validatePostID(id); err != nil {
		return model.Post{}, err
	}

	post, err := s.posts.FindOwned(ctx, id, ownerID)
	return post, mapPostError(err)
}

func (s *PostService) GetPublished(ctx context.Context, id string) (model.Post, error) {
	if err := validatePostID(id); err != nil {
		return model.Post{}, err
	}

	post, err := s.posts.FindPublished(ctx, id)
	return post, mapPostError(err)
}

// Update writes only the fields present in req. The response is re-read by
// id alone; the write itself was already scoped to the owner.
func (s *PostService) Update(ctx context.Context, id string, ownerID string, req model.UpdatePostRequest) (model.Post, error) {
	if err := validatePostID(id); err != nil {
		return model.Post{}, err
	}

	var patch model.PostPatch
	if req.Title.Set {
		if req.Title.Null {
			return model.Post{}, apierror.BadRequest("title must be a string", "title")
		}
		title := req.Title.Value
		patch.Title = &title
	}
	if req.Content.Set {
		patch.SetContent = true
		patch.Content = req.Content.Value
	}

	if err := s.posts.Update(ctx, id, ownerID, patch, s.now().UTC()); err != nil {
		return model.Post{}, mapPostError(err)
	}

	post, err := s.posts.FindByID(ctx, id)
	return post, mapPostError(err)
}

// Publish is idempotent: publishing a published post only moves updated_at.
func (s *PostService) Publish(ctx context.Context, id string, ownerID string) (model.Post, error) {
	if err := validatePostID(id); err != nil {
		return model.Post{}, err
	}

	if err := s.posts.Publish(ctx, id, ownerID, s.now().UTC()); err != nil {
		return model.Post{}, mapPostError(err)
	}

	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return model.Post{}, mapPostError(err)
	}

	slog.Info("post published", "post_id", id, "author_id", ownerID)
	return post, nil
}

func (s *PostService) Delete(ctx context.Context, id string, ownerID string) error {
	if err := validatePostID(id); err != nil {
		return err
	}

	if err := s.posts.Delete(ctx, id, ownerID); err != nil {
		return mapPostError(err)
	}

	slog.Info("post deleted", "post_id", id, "author_id", ownerID)
	return nil
}

func validatePostID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apierror.BadRequest("Invalid post id", id)
	}
	return nil
}

func mapPostError(err error) error {
	if errors.Is(err, model.ErrPostNotFound) {
		return apierror.NotFound("Post not found", "")
	}
	return err
}
