package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"smart-blog-api/internal/middleware"
	"smart-blog-api/internal/model"
	"smart-blog-api/internal/service"
	"smart-blog-api/pkg/apierror"
)

type PostHandler struct {
	posts *service.PostService
	users *service.AuthService
}

func NewPostHandler(posts *service.PostService, users *service.AuthService) *PostHandler {
	return &PostHandler{posts: posts, users: users}
}

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var payload model.CreatePostRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	// author_name is denormalized onto the post at creation time.
	author, err := h.users.CurrentUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	post, err := h.posts.Create(r.Context(), userID, author.Name, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	posts, err := h.posts.List(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, nonNil(posts))
}

func (h *PostHandler) ListPublished(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.ListPublished(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, nonNil(posts))
}

func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	post, err := h.posts.Get(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

func (h *PostHandler) GetPublished(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.GetPublished(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var payload model.UpdatePostRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	post, err := h.posts.Update(r.Context(), chi.URLParam(r, "id"), userID, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

func (h *PostHandler) Publish(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	post, err := h.posts.Publish(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.posts.Delete(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "Post deleted"})
}

func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("Not authenticated"))
	}
	return userID, ok
}

// nonNil makes empty lists encode as [] rather than null.
func nonNil(posts []model.PostSummary) []model.PostSummary {
	if posts == nil {
		return []model.PostSummary{}
	}
	return posts
}
