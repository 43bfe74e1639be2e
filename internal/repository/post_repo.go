package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"smart-blog-api/internal/model"
)

const (
	postColumns    = `id, title, content, status, author_id, author_name, created_at, updated_at`
	summaryColumns = `id, title, status, author_id, author_name, created_at, updated_at`
)

// PostRepository stores posts. Every mutating statement is scoped by both
// id and author_id; a foreign post and a missing post are indistinguishable
// to callers (both ErrPostNotFound).
type PostRepository struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

func NewPostRepository(pool *pgxpool.Pool, timeout time.Duration) *PostRepository {
	return &PostRepository{pool: pool, timeout: timeout}
}

func (r *PostRepository) Create(ctx context.Context, p model.Post) error {
	ctx, cancel := queryContext(ctx, r.timeout)
	defer cancel()

	_, err := r.pool.Exec(ctx,
		`INSERT INTO posts (id, title, content, status, author_id, author_name, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.Title, contentParam(p.Content), string(p.Status), p.AuthorID, p.AuthorName, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	return nil
}

func (r *PostRepository) ListByAuthor(ctx context.Context, authorID string) ([]model.PostSummary, error) {
	return r.listSummaries(ctx,
		`SELECT `+summaryColumns+` FROM posts
		 WHERE author_id = $1
		 ORDER BY updated_at DESC`, authorID)
}

func (r *PostRepository) ListPublished(ctx context.Context) ([]model.PostSummary, error) {
	return r.listSummaries(ctx,
		`SELECT `+summaryColumns+` FROM posts
		 WHERE status = 'published'
		 ORDER BY updated_at DESC`)
}

// FindByID is unscoped. It serves the re-read after an owner-scoped write.
func (r *PostRepository) FindByID(ctx context.Context, id string) (model.Post, error) {
	return r.findOne(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
}

func (r *PostRepository) FindOwned(ctx context.Context, id string, authorID string) (model.Post, error) {
	return r.findOne(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1 AND author_id = $2`, id, authorID)
}

func (r *PostRepository) FindPublished(ctx context.Context, id string) (model.Post, error) {
	return r.findOne(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1 AND status = 'published'`, id)
}

// Update applies only the fields present in patch and always refreshes
// updated_at, clamped so it never falls behind created_at.
func (r *PostRepository) Update(ctx context.Context, id string, authorID string, patch model.PostPatch, at time.Time) error {
	args := []any{id, authorID, at}
	sets := []string{"updated_at = GREATEST($3, created_at)"}

	if patch.Title != nil {
		args = append(args, *patch.Title)
		sets = append(sets, fmt.Sprintf("title = $%d", len(args)))
	}
	if patch.SetContent {
		args = append(args, contentParam(patch.Content))
		sets = append(sets, fmt.Sprintf("content = $%d", len(args)))
	}

	query := `UPDATE posts SET ` + strings.Join(sets, ", ") + ` WHERE id = $1 AND author_id = $2`
	return r.execScoped(ctx, "update post", query, args...)
}

func (r *PostRepository) Publish(ctx context.Context, id string, authorID string, at time.Time) error {
	return r.execScoped(ctx, "publish post",
		`UPDATE posts SET status = 'published', updated_at = GREATEST($3, created_at)
		 WHERE id = $1 AND author_id = $2`, id, authorID, at)
}

func (r *PostRepository) Delete(ctx context.Context, id string, authorID string) error {
	return r.execScoped(ctx, "delete post",
		`DELETE FROM posts WHERE id = $1 AND author_id = $2`, id, authorID)
}

func (r *PostRepository) execScoped(ctx context.Context, op string, query string, args ...any) error {
	ctx, cancel := queryContext(ctx, r.timeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrPostNotFound
	}
	return nil
}

func (r *PostRepository) findOne(ctx context.Context, query string, args ...any) (model.Post, error) {
	ctx, cancel := queryContext(ctx, r.timeout)
	defer cancel()

	var (
		p       model.Post
		content []byte
		status  string
	)
	err := r.pool.QueryRow(ctx, query, args...).
		Scan(&p.ID, &p.Title, &content, &status, &p.AuthorID, &p.AuthorName, &p.CreatedAt, &p.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.Post{}, model.ErrPostNotFound
	}
	if err != nil {
		return model.Post{}, fmt.Errorf("find post: %w", err)
	}

	p.Status = model.PostStatus(status)
	if content != nil {
		p.Content = json.RawMessage(content)
	}
	return p, nil
}

func (r *PostRepository) listSummaries(ctx context.Context, query string, args ...any) ([]model.PostSummary, error) {
	ctx, cancel := queryContext(ctx, r.timeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]model.PostSummary, 0)
	for rows.Next() {
		var (
			s      model.PostSummary
			status string
		)
		if err := rows.Scan(&s.ID, &s.Title, &status, &s.AuthorID, &s.AuthorName, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		s.Status = model.PostStatus(status)
		posts = append(posts, s)
	}
	return posts, rows.Err()
}

// contentParam turns an absent document into SQL NULL; anything else goes
// to the json column, which keeps the text exactly as sent.
func contentParam(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
