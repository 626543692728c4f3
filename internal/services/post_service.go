package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/anonto42/blog-api/backend/internal/apperr"
	"github.com/anonto42/blog-api/backend/internal/models"
	"github.com/anonto42/blog-api/backend/internal/render"
	"github.com/anonto42/blog-api/backend/internal/repositories"
	"github.com/rs/zerolog"
)

// PostService handles post mutations, slug uniqueness and post reads.
type PostService struct {
	posts    repositories.PostRepository
	comments repositories.CommentRepository
	authors  authorResolver
	log      zerolog.Logger
}

// NewPostService creates a new PostService
func NewPostService(posts repositories.PostRepository, comments repositories.CommentRepository, users repositories.UserRepository, log zerolog.Logger) *PostService {
	return &PostService{
		posts:    posts,
		comments: comments,
		authors:  authorResolver{users: users},
		log:      log.With().Str("component", "posts").Logger(),
	}
}

func normalizeTitle(title string) (string, string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", "", apperr.Validation("Title is required.")
	}
	if utf8.RuneCountInString(title) > models.MaxTitleLength {
		return "", "", apperr.Validation("Title must be at most %d characters.", models.MaxTitleLength)
	}
	s := Slugify(title)
	if s == "" {
		return "", "", apperr.Validation("Title must contain at least one letter or digit.")
	}
	return title, s, nil
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// slugTaken reports whether a post other than except already owns slug.
func (s *PostService) slugTaken(ctx context.Context, slug string, except *models.Post) (bool, error) {
	existing, err := s.posts.GetPostBySlug(ctx, slug)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return false, nil
		}
		return false, err
	}
	return except == nil || existing.ID != except.ID, nil
}

// Create stores a new post authored by authorID.
func (s *PostService) Create(ctx context.Context, authorID uint, req models.CreatePostRequest) (*models.PostView, error) {
	title, slug, err := normalizeTitle(req.Title)
	if err != nil {
		return nil, err
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, apperr.Validation("Content is required.")
	}

	taken, err := s.slugTaken(ctx, slug, nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.Conflict("A post with the same title already exists.")
	}

	post := &models.Post{
		Title:    title,
		Content:  content,
		Tags:     normalizeTags(req.Tags),
		Slug:     slug,
		AuthorID: authorID,
		LikedBy:  []uint{},
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, err
	}

	s.log.Info().Str("post_id", post.ID.Hex()).Str("slug", slug).Uint("author_id", authorID).Msg("Post created")
	return s.view(ctx, post, false)
}

// List returns one page of posts, newest first.
func (s *PostService) List(ctx context.Context, p Pagination) (*models.PostPage, error) {
	posts, total, err := s.posts.ListPosts(ctx, p.Skip(), p.Take())
	if err != nil {
		return nil, err
	}
	return s.page(ctx, posts, total, p)
}

// Search runs a full-text query over titles and content.
func (s *PostService) Search(ctx context.Context, query string, p Pagination) (*models.PostPage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperr.Validation("Search query is required.")
	}
	posts, total, err := s.posts.SearchPosts(ctx, query, p.Skip(), p.Take())
	if err != nil {
		return nil, err
	}
	return s.page(ctx, posts, total, p)
}

func (s *PostService) page(ctx context.Context, posts []models.Post, total int64, p Pagination) (*models.PostPage, error) {
	ids := make([]uint, len(posts))
	for i := range posts {
		ids[i] = posts[i].AuthorID
	}
	authors, err := s.authors.resolve(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]models.PostView, len(posts))
	for i := range posts {
		views[i] = toPostView(posts[i], authors)
	}
	return &models.PostPage{
		Posts:       views,
		TotalPosts:  total,
		TotalPages:  p.Pages(total),
		CurrentPage: p.Page,
	}, nil
}

func toPostView(p models.Post, authors map[uint]models.UserCompact) models.PostView {
	if p.LikedBy == nil {
		p.LikedBy = []uint{}
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return models.PostView{
		Post:      p,
		Author:    authorOf(authors, p.AuthorID),
		LikeCount: len(p.LikedBy),
	}
}

func (s *PostService) view(ctx context.Context, p *models.Post, withHTML bool) (*models.PostView, error) {
	authors, err := s.authors.resolve(ctx, []uint{p.AuthorID})
	if err != nil {
		return nil, err
	}
	v := toPostView(*p, authors)
	if withHTML {
		v.ContentHTML = render.Markdown(p.Content)
	}
	return &v, nil
}

// GetBySlug counts a view and returns the post with its rendered content.
func (s *PostService) GetBySlug(ctx context.Context, slug string) (*models.PostView, error) {
	post, err := s.posts.IncrementViews(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, post, true)
}

func (s *PostService) owned(ctx context.Context, slug string, requesterID uint, action string) (*models.Post, error) {
	post, err := s.posts.GetPostBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != requesterID {
		return nil, apperr.Forbidden("You are not authorized to %s this post", action)
	}
	return post, nil
}

// Update applies the given changes to a post owned by requesterID.
// A changed title regenerates the slug, which must not belong to another post.
func (s *PostService) Update(ctx context.Context, slug string, requesterID uint, req models.UpdatePostRequest) (*models.PostView, error) {
	post, err := s.owned(ctx, slug, requesterID, "update")
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(req.Title) != "" {
		title, newSlug, err := normalizeTitle(req.Title)
		if err != nil {
			return nil, err
		}
		if newSlug != post.Slug {
			taken, err := s.slugTaken(ctx, newSlug, post)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, apperr.Conflict("A post with the new title already exists.")
			}
		}
		post.Title = title
		post.Slug = newSlug
	}
	if content := strings.TrimSpace(req.Content); content != "" {
		post.Content = content
	}
	if req.Tags != nil {
		post.Tags = normalizeTags(req.Tags)
	}

	if err := s.posts.UpdatePost(ctx, post); err != nil {
		return nil, err
	}

	s.log.Info().Str("post_id", post.ID.Hex()).Str("slug", post.Slug).Msg("Post updated")
	return s.view(ctx, post, false)
}

// Delete hides the comments of a post owned by requesterID, then removes the post.
// Comments go first so a failed delete can be retried.
func (s *PostService) Delete(ctx context.Context, slug string, requesterID uint) error {
	post, err := s.owned(ctx, slug, requesterID, "delete")
	if err != nil {
		return err
	}

	hidden, err := s.comments.SoftDeleteByPost(ctx, post.ID)
	if err != nil {
		return err
	}
	if err := s.posts.DeletePost(ctx, post.ID); err != nil {
		return err
	}
	s.log.Info().Str("post_id", post.ID.Hex()).Int64("comments_hidden", hidden).Msg("Post deleted")
	return nil
}

// ToggleLike likes the post for userID, or unlikes it if already liked.
func (s *PostService) ToggleLike(ctx context.Context, slug string, userID uint) (*models.PostLikeResult, error) {
	post, err := s.posts.GetPostBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	updated, err := s.posts.ToggleLike(ctx, post.ID, userID)
	if err != nil {
		return nil, err
	}
	v, err := s.view(ctx, updated, false)
	if err != nil {
		return nil, err
	}
	return &models.PostLikeResult{
		Post:      *v,
		LikeCount: v.LikeCount,
		Liked:     containsUser(updated.LikedBy, userID),
	}, nil
}
