package services

import (
	"context"

	"github.com/anonto42/blog-api/backend/internal/apperr"
	"github.com/anonto42/blog-api/backend/internal/models"
	"github.com/anonto42/blog-api/backend/internal/repositories"
	"github.com/gosimple/slug"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 50
)

// Pagination is a normalized page request.
type Pagination struct {
	Page  int
	Limit int
}

// NewPagination clamps page to at least 1 and limit to MaxLimit. A missing or non-positive limit uses the default.
func NewPagination(page, limit int) Pagination {
	if page < 1 {
		page = DefaultPage
	}
	switch {
	case limit < 1:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}
	return Pagination{Page: page, Limit: limit}
}

func (p Pagination) Skip() int64 { return int64(p.Page-1) * int64(p.Limit) }

func (p Pagination) Take() int64 { return int64(p.Limit) }

// Pages is the number of pages needed for total items.
func (p Pagination) Pages(total int64) int64 {
	if total == 0 {
		return 0
	}
	return (total + int64(p.Limit) - 1) / int64(p.Limit)
}

// Slugify derives the URL slug of a post title: lowercase ASCII words joined by hyphens.
func Slugify(title string) string {
	return slug.Make(title)
}

// ParseObjectID turns a hex identifier from a request into an ObjectID.
func ParseObjectID(hex, what string) (primitive.ObjectID, error) {
	if hex == "" {
		return primitive.NilObjectID, apperr.Validation("%s ID is required", what)
	}
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, apperr.Validation("Invalid %s ID", what)
	}
	return id, nil
}

func containsUser(ids []uint, userID uint) bool {
	for _, id := range ids {
		if id == userID {
			return true
		}
	}
	return false
}

// authorResolver batches author lookups so a response costs one identity query, not one per item.
type authorResolver struct {
	users repositories.UserRepository
}

func (r authorResolver) resolve(ctx context.Context, ids []uint) (map[uint]models.UserCompact, error) {
	unique := make([]uint, 0, len(ids))
	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	authors := make(map[uint]models.UserCompact, len(unique))
	if len(unique) == 0 {
		return authors, nil
	}

	users, err := r.users.GetUsersByIDs(ctx, unique)
	if err != nil {
		return nil, err
	}
	for i := range users {
		authors[users[i].ID] = users[i].ToCompact()
	}
	return authors, nil
}

// postResolver batches post summary lookups for comment listings.
type postResolver struct {
	posts repositories.PostRepository
}

func (r postResolver) resolve(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.PostCompact, error) {
	unique := make([]primitive.ObjectID, 0, len(ids))
	seen := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	summaries := make(map[primitive.ObjectID]models.PostCompact, len(unique))
	if len(unique) == 0 {
		return summaries, nil
	}

	found, err := r.posts.GetPostSummaries(ctx, unique)
	if err != nil {
		return nil, err
	}
	for _, p := range found {
		summaries[p.ID] = p
	}
	return summaries, nil
}

func authorOf(authors map[uint]models.UserCompact, id uint) *models.UserCompact {
	if a, ok := authors[id]; ok {
		return &a
	}
	return nil
}
