package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxTitleLength is the longest post title accepted, in characters.
const MaxTitleLength = 150

// Post represents a blog post stored in MongoDB
type Post struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Title     string             `json:"title" bson:"title"`
	Content   string             `json:"content" bson:"content"`
	Tags      []string           `json:"tags" bson:"tags"`
	Slug      string             `json:"slug" bson:"slug"`
	AuthorID  uint               `json:"author_id" bson:"author_id"`
	Views     int64              `json:"views" bson:"views"`
	LikedBy   []uint             `json:"liked_by" bson:"liked_by"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// PostView is a post as returned to callers.
type PostView struct {
	Post
	Author      *UserCompact `json:"author,omitempty"`
	LikeCount   int          `json:"like_count"`
	ContentHTML string       `json:"content_html,omitempty"`
}

// PostCompact is the subset of a post attached to a user's own comments.
type PostCompact struct {
	ID    primitive.ObjectID `json:"id" bson:"_id"`
	Title string             `json:"title" bson:"title"`
	Slug  string             `json:"slug" bson:"slug"`
}

// PostPage is one page of posts, used by listing and search.
type PostPage struct {
	Posts       []PostView `json:"posts"`
	TotalPosts  int64      `json:"total_posts"`
	TotalPages  int64      `json:"total_pages"`
	CurrentPage int        `json:"current_page"`
}

// PostLikeResult is returned by the post like toggle.
type PostLikeResult struct {
	Post      PostView `json:"post"`
	LikeCount int      `json:"like_count"`
	Liked     bool     `json:"liked_by_user"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Title   string   `json:"title" validate:"required"`
	Content string   `json:"content" validate:"required"`
	Tags    []string `json:"tags,omitempty" validate:"omitempty,dive,required,max=50"`
}

// UpdatePostRequest defines the request body for updating an existing post.
// A nil Tags leaves tags untouched; an empty list clears them.
type UpdatePostRequest struct {
	Title   string   `json:"title,omitempty"`
	Content string   `json:"content,omitempty"`
	Tags    []string `json:"tags,omitempty" validate:"omitempty,dive,required,max=50"`
}
