package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/iudanet/blogauth/internal/models"
	"github.com/iudanet/blogauth/internal/posts"
	"github.com/iudanet/blogauth/pkg/api"
)

// PostPasswordHeader carries the private-post password on public reads
const PostPasswordHeader = "X-Post-Password"

// PostService is the post use-case layer
type PostService interface {
	Create(ctx context.Context, user *models.User, in posts.Input) (*models.Post, error)
	Get(ctx context.Context, user *models.User, id int64) (*models.Post, error)
	Update(ctx context.Context, user *models.User, id int64, patch models.PostPatch) (*models.Post, error)
	Delete(ctx context.Context, user *models.User, id int64) error
	List(ctx context.Context, user *models.User) ([]*models.Post, error)
	ListPublic(ctx context.Context) ([]*models.Post, error)
	GetPublicBySlug(ctx context.Context, slug, password string) (*models.Post, error)
}

// PostsHandler handles post endpoints
type PostsHandler struct {
	logger *slog.Logger
	posts  PostService
}

// NewPostsHandler creates a new posts handler
func NewPostsHandler(logger *slog.Logger, posts PostService) *PostsHandler {
	return &PostsHandler{
		logger: logger,
		posts:  posts,
	}
}

// List handles GET /api/posts
func (h *PostsHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.posts.List(r.Context(), GetUser(r.Context()))
	if err != nil {
		sendServiceError(h.logger, w, r, err, "list posts")
		return
	}

	sendJSON(h.logger, w, api.PostsResponse{Posts: toAPIPosts(list)}, http.StatusOK)
}

// Create handles POST /api/posts
func (h *PostsHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.CreatePostRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode create post request", slog.Any("error", err))
		SendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := api.Validate(req); err != nil {
		SendError(h.logger, w, "Title, description, and content are required", http.StatusBadRequest)
		return
	}

	post, err := h.posts.Create(ctx, GetUser(ctx), posts.Input{
		Title:           req.Title,
		Description:     req.Description,
		Content:         req.Content,
		IsPrivate:       req.IsPrivate,
		PrivatePassword: req.PrivatePassword,
		HeroImage:       req.HeroImage,
	})
	if err != nil {
		sendServiceError(h.logger, w, r, err, "create post")
		return
	}

	sendJSON(h.logger, w, api.PostResponse{Post: toAPIPost(post)}, http.StatusCreated)
}

// Get handles GET /api/posts/{id}
func (h *PostsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	post, err := h.posts.Get(r.Context(), GetUser(r.Context()), id)
	if err != nil {
		sendServiceError(h.logger, w, r, err, "get post")
		return
	}

	sendJSON(h.logger, w, api.PostResponse{Post: toAPIPost(post)}, http.StatusOK)
}

// Update handles PUT /api/posts/{id}
func (h *PostsHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req api.UpdatePostRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode update post request", slog.Any("error", err))
		SendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := api.Validate(req); err != nil {
		SendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	post, err := h.posts.Update(ctx, GetUser(ctx), id, models.PostPatch{
		Title:           req.Title,
		Slug:            req.Slug,
		Description:     req.Description,
		Content:         req.Content,
		IsPrivate:       req.IsPrivate,
		PrivatePassword: req.PrivatePassword,
		HeroImage:       req.HeroImage,
	})
	if err != nil {
		sendServiceError(h.logger, w, r, err, "update post")
		return
	}

	sendJSON(h.logger, w, api.PostResponse{Post: toAPIPost(post)}, http.StatusOK)
}

// Delete handles DELETE /api/posts/{id}
func (h *PostsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.posts.Delete(r.Context(), GetUser(r.Context()), id); err != nil {
		sendServiceError(h.logger, w, r, err, "delete post")
		return
	}

	sendJSON(h.logger, w, api.SuccessResponse{Success: true}, http.StatusOK)
}

// PublicList handles GET /api/public/posts
func (h *PostsHandler) PublicList(w http.ResponseWriter, r *http.Request) {
	list, err := h.posts.ListPublic(r.Context())
	if err != nil {
		sendServiceError(h.logger, w, r, err, "list public posts")
		return
	}

	sendJSON(h.logger, w, api.PostsResponse{Posts: toAPIPosts(list)}, http.StatusOK)
}

// PublicGet handles GET /api/public/posts/{slug}
func (h *PostsHandler) PublicGet(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if slug == "" {
		SendError(h.logger, w, "slug is required", http.StatusBadRequest)
		return
	}

	post, err := h.posts.GetPublicBySlug(r.Context(), slug, r.Header.Get(PostPasswordHeader))
	if err != nil {
		sendServiceError(h.logger, w, r, err, "get public post")
		return
	}

	sendJSON(h.logger, w, api.PostResponse{Post: toAPIPost(post)}, http.StatusOK)
}

func (h *PostsHandler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		SendError(h.logger, w, "Invalid post ID", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func toAPIPost(p *models.Post) api.Post {
	return api.Post{
		ID:              p.ID,
		Title:           p.Title,
		Slug:            p.Slug,
		Description:     p.Description,
		Content:         p.Content,
		IsPrivate:       p.IsPrivate,
		PrivatePassword: p.PrivatePassword,
		HeroImage:       p.HeroImage,
		UserID:          p.UserID,
		AuthorUsername:  p.AuthorUsername,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func toAPIPosts(list []*models.Post) []api.Post {
	out := make([]api.Post, 0, len(list))
	for _, p := range list {
		out = append(out, toAPIPost(p))
	}
	return out
}
