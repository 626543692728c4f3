package handlers

import (
	"net/http"

	"github.com/anonto42/blog-api/backend/internal/middleware"
	"github.com/anonto42/blog-api/backend/internal/models"
	"github.com/anonto42/blog-api/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	posts *services.PostService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(posts *services.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group, auth echo.MiddlewareFunc) {
	g.POST("", h.CreatePost, auth)
	g.GET("", h.ListPosts)
	g.GET("/search", h.SearchPosts)
	g.GET("/:slug", h.GetPost)
	g.PUT("/:slug", h.UpdatePost, auth)
	g.DELETE("/:slug", h.DeletePost, auth)
	g.PATCH("/:slug/like", h.ToggleLike, auth)
}

// CreatePost creates a new post authored by the caller
func (h *PostHandler) CreatePost(c echo.Context) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.posts.Create(c.Request().Context(), user.ID, req)
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, "Post created successfully", post)
}

// ListPosts returns posts newest first
func (h *PostHandler) ListPosts(c echo.Context) error {
	page, err := h.posts.List(c.Request().Context(), pagination(c))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, "Posts fetched successfully", page)
}

// SearchPosts runs a full-text search over titles and content
func (h *PostHandler) SearchPosts(c echo.Context) error {
	p, err := strictPagination(c)
	if err != nil {
		return err
	}

	page, err := h.posts.Search(c.Request().Context(), c.QueryParam("query"), p)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, "Search results fetched successfully", page)
}

// GetPost returns a post by slug and counts the view
func (h *PostHandler) GetPost(c echo.Context) error {
	post, err := h.posts.GetBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, "Post retrieved", post)
}

// UpdatePost edits the caller's post
func (h *PostHandler) UpdatePost(c echo.Context) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	var req models.UpdatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.posts.Update(c.Request().Context(), c.Param("slug"), user.ID, req)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, "Post updated", post)
}

// DeletePost removes the caller's post
func (h *PostHandler) DeletePost(c echo.Context) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	if err := h.posts.Delete(c.Request().Context(), c.Param("slug"), user.ID); err != nil {
		return err
	}
	return success(c, http.StatusOK, "Post deleted", nil)
}

// ToggleLike likes or unlikes a post for the caller
func (h *PostHandler) ToggleLike(c echo.Context) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	result, err := h.posts.ToggleLike(c.Request().Context(), c.Param("slug"), user.ID)
	if err != nil {
		return err
	}
	message := "Post unliked"
	if result.Liked {
		message = "Post liked"
	}
	return success(c, http.StatusOK, message, result)
}
