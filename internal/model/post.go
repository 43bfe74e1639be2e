package model

import (
	"bytes"
	"encoding/json"
	"time"
)

type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
)

const DefaultPostTitle = "Untitled"

type Post struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Content    json.RawMessage `json:"content"`
	Status     PostStatus      `json:"status"`
	AuthorID   string          `json:"author_id"`
	AuthorName string          `json:"author_name"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// PostSummary is a Post without its content, used by the list endpoints.
type PostSummary struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Status     PostStatus `json:"status"`
	AuthorID   string     `json:"author_id"`
	AuthorName string     `json:"author_name"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (p Post) Summary() PostSummary {
	return PostSummary{
		ID:         p.ID,
		Title:      p.Title,
		Status:     p.Status,
		AuthorID:   p.AuthorID,
		AuthorName: p.AuthorName,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

type CreatePostRequest struct {
	Title   string          `json:"title"`
	Content json.RawMessage `json:"content"`
}

// UpdatePostRequest distinguishes an omitted key from an explicit null.
type UpdatePostRequest struct {
	Title   OptionalString `json:"title"`
	Content OptionalJSON   `json:"content"`
}

// PostPatch is the validated form of UpdatePostRequest handed to storage.
type PostPatch struct {
	Title      *string
	SetContent bool
	Content    json.RawMessage
}

type OptionalString struct {
	Set   bool
	Null  bool
	Value string
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if isJSONNull(data) {
		o.Null = true
		o.Value = ""
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

type OptionalJSON struct {
	Set   bool
	Value json.RawMessage
}

func (o *OptionalJSON) UnmarshalJSON(data []byte) error {
	o.Set = true
	o.Value = NormalizeContent(data)
	return nil
}

// NormalizeContent copies raw and collapses empty input and JSON null to nil,
// which is stored as SQL NULL and encoded back as null.
func NormalizeContent(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || isJSONNull(raw) {
		return nil
	}
	out := make(json.RawMessage, len(raw))
	copy(out, raw)
	return out
}

func isJSONNull(data []byte) bool {
	return bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}
