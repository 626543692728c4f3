package handlers

import (
	"net/http"

	"github.com/anonto42/blog-api/backend/internal/middleware"
	"github.com/anonto42/blog-api/backend/internal/models"
	"github.com/anonto42/blog-api/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	comments *services.CommentService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(comments *services.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

// RegisterCommentRoutes registers comment-related routes. auth guards the routes that need a caller.
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group, auth echo.MiddlewareFunc) {
	g.POST("", h.CreateComment, auth)
	g.GET("", h.GetCommentsByPost)
	g.GET("/my-comments", h.GetMyComments, auth)
	g.GET("/:id", h.GetComment)
	g.PUT("/:id", h.UpdateComment, auth)
	g.DELETE("/:id", h.DeleteComment, auth)
	g.PATCH("/:id/like", h.ToggleLike, auth)
}

// CreateComment adds a root comment to a post, or a reply when parent_id is set
func (h *CommentHandler) CreateComment(c echo.Context) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	postID, err := services.ParseObjectID(req.PostID, "Post")
	if err != nil {
		return err
	}
	input := services.CreateCommentInput{Content: req.Content, PostID: postID}
	if req.ParentID != "" {
		parentID, err := services.ParseObjectID(req.ParentID, "Parent comment")
		if err != nil {
			return err
		}
		input.ParentID = &parentID
	}

	comment, err := h.comments.Create(c.Request().Context(), user.ID, input)
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, "Comment added successfully", comment)
}

// GetCommentsByPost lists a post's root comments with their replies
func (h *CommentHandler) GetCommentsByPost(c echo.Context) error {
	postID, err := services.ParseObjectID(c.QueryParam("postId"), "Post")
	if err != nil {
		return err
	}
	nested := c.QueryParam("nested") != "false"

	page, err := h.comments.ListByPost(c.Request().Context(), postID, pagination(c), nested)
	if err != nil {
		return err
	}
	if page.Total == 0 {
		return success(c, http.StatusOK, "No comments yet for this post", page)
	}
	return success(c, http.StatusOK, "Comments fetched successfully", page)
}

// GetMyComments lists the caller's own root comments with their replies
func (h *CommentHandler) GetMyComments(c echo.Context) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	page, err := h.comments.ListByAuthor(c.Request().Context(), user.ID, pagination(c))
	if err != nil {
		return err
	}
	if page.Total == 0 {
		return success(c, http.StatusOK, "You have not made any comments yet", page)
	}
	return success(c, http.StatusOK, "User comments fetched successfully", page)
}

// GetComment fetches one comment with its replies
func (h *CommentHandler) GetComment(c echo.Context) error {
	id, err := services.ParseObjectID(c.Param("id"), "Comment")
	if err != nil {
		return err
	}

	comment, err := h.comments.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, "Comment retrieved", comment)
}

// UpdateComment replaces the content of the caller's comment
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	id, err := services.ParseObjectID(c.Param("id"), "Comment")
	if err != nil {
		return err
	}

	var req models.UpdateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	comment, err := h.comments.Update(c.Request().Context(), id, user.ID, req.Content)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, "Comment updated", comment)
}

// DeleteComment soft-deletes the caller's comment
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	id, err := services.ParseObjectID(c.Param("id"), "Comment")
	if err != nil {
		return err
	}

	if err := h.comments.Delete(c.Request().Context(), id, user.ID); err != nil {
		return err
	}
	return success(c, http.StatusOK, "Comment deleted", nil)
}

// ToggleLike likes or unlikes a comment for the caller
func (h *CommentHandler) ToggleLike(c echo.Context) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	id, err := services.ParseObjectID(c.Param("id"), "Comment")
	if err != nil {
		return err
	}

	result, err := h.comments.ToggleLike(c.Request().Context(), id, user.ID)
	if err != nil {
		return err
	}
	message := "Comment unliked"
	if result.Liked {
		message = "Comment liked"
	}
	return success(c, http.StatusOK, message, result)
}
