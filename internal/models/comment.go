package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxCommentLength is the longest comment body accepted, in characters.
const MaxCommentLength = 1000

// Comment is a flat comment document stored in MongoDB. A nil ParentID marks a root comment.
type Comment struct {
	ID        primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Content   string              `json:"content" bson:"content"`
	PostID    primitive.ObjectID  `json:"post_id" bson:"post_id"`
	AuthorID  uint                `json:"author_id" bson:"author_id"`
	ParentID  *primitive.ObjectID `json:"parent_id" bson:"parent_id"`
	LikedBy   []uint              `json:"liked_by" bson:"liked_by"`
	IsDeleted bool                `json:"-" bson:"is_deleted"`
	CreatedAt time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time           `json:"updated_at" bson:"updated_at"`
}

// IsRoot reports whether the comment was posted directly on a post.
func (c *Comment) IsRoot() bool {
	return c.ParentID == nil
}

// CommentView is a comment as returned to callers, with its author resolved.
type CommentView struct {
	Comment
	Author    *UserCompact `json:"author,omitempty"`
	LikeCount int          `json:"like_count"`
}

// ThreadedComment is a root comment with its direct replies attached.
// Replies and TotalReplies stay unset when nesting was not requested.
// Post is only filled in when listing a user's own comments.
type ThreadedComment struct {
	CommentView
	Post           *PostCompact  `json:"post,omitempty"`
	Replies        []CommentView `json:"replies,omitempty"`
	TotalReplies   *int          `json:"total_replies,omitempty"`
	RepliesMessage string        `json:"replies_message,omitempty"`
}

// CommentPage is one page of root comments.
type CommentPage struct {
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
	Comments []ThreadedComment `json:"comments"`
}

// LikeResult is the membership state after a like toggle.
type LikeResult struct {
	Liked     bool `json:"liked_by_user"`
	LikeCount int  `json:"like_count"`
}

// CreateCommentRequest defines the request body for creating a comment or a reply
type CreateCommentRequest struct {
	Content  string `json:"content" validate:"required"`
	PostID   string `json:"post_id" validate:"required"`
	ParentID string `json:"parent_id,omitempty"`
}

// UpdateCommentRequest defines the request body for updating an existing comment
type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required"`
}
