package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/anonto42/blog-api/backend/internal/apperr"
	"github.com/anonto42/blog-api/backend/internal/models"
	"github.com/anonto42/blog-api/backend/internal/repositories"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NoRepliesMessage is attached to a single comment fetched without any replies.
const NoRepliesMessage = "No replies yet for this comment"

// CreateCommentInput carries a new comment or reply. A nil ParentID creates a root comment.
type CreateCommentInput struct {
	Content  string
	PostID   primitive.ObjectID
	ParentID *primitive.ObjectID
}

// CommentService owns comment validation, ownership rules and thread assembly.
type CommentService struct {
	comments repositories.CommentRepository
	posts    repositories.PostRepository
	authors  authorResolver
	summary  postResolver
	log      zerolog.Logger
}

// NewCommentService creates a new CommentService
func NewCommentService(comments repositories.CommentRepository, posts repositories.PostRepository, users repositories.UserRepository, log zerolog.Logger) *CommentService {
	return &CommentService{
		comments: comments,
		posts:    posts,
		authors:  authorResolver{users: users},
		summary:  postResolver{posts: posts},
		log:      log.With().Str("component", "comments").Logger(),
	}
}

func normalizeCommentContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", apperr.Validation("Comment content is required.")
	}
	if utf8.RuneCountInString(content) > models.MaxCommentLength {
		return "", apperr.Validation("Comment content must be at most %d characters.", models.MaxCommentLength)
	}
	return content, nil
}

// Create stores a root comment or a reply. Replies must target a visible root comment of the same post.
func (s *CommentService) Create(ctx context.Context, authorID uint, in CreateCommentInput) (*models.CommentView, error) {
	content, err := normalizeCommentContent(in.Content)
	if err != nil {
		return nil, err
	}

	if _, err := s.posts.GetPostByID(ctx, in.PostID); err != nil {
		return nil, err
	}

	if in.ParentID != nil {
		parent, err := s.comments.GetCommentByID(ctx, *in.ParentID)
		if err != nil {
			if apperr.Is(err, apperr.KindNotFound) {
				return nil, apperr.NotFound("Parent comment not found")
			}
			return nil, err
		}
		if parent.PostID != in.PostID {
			return nil, apperr.Validation("Parent comment belongs to a different post")
		}
		if !parent.IsRoot() {
			return nil, apperr.Validation("Replies can only be added to top-level comments")
		}
	}

	comment := &models.Comment{
		Content:  content,
		PostID:   in.PostID,
		AuthorID: authorID,
		ParentID: in.ParentID,
		LikedBy:  []uint{},
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("comment_id", comment.ID.Hex()).
		Str("post_id", comment.PostID.Hex()).
		Bool("reply", comment.ParentID != nil).
		Uint("author_id", authorID).
		Msg("Comment created")

	return s.view(ctx, comment)
}

// ListByPost returns one page of a post's root comments, with their replies attached when nested is set.
func (s *CommentService) ListByPost(ctx context.Context, postID primitive.ObjectID, p Pagination, nested bool) (*models.CommentPage, error) {
	roots, total, err := s.comments.GetRootsByPost(ctx, postID, p.Skip(), p.Take())
	if err != nil {
		return nil, err
	}
	return s.assemble(ctx, roots, total, p, nested)
}

// ListByAuthor returns one page of a user's own root comments with replies and the commented post attached.
func (s *CommentService) ListByAuthor(ctx context.Context, authorID uint, p Pagination) (*models.CommentPage, error) {
	roots, total, err := s.comments.GetRootsByAuthor(ctx, authorID, p.Skip(), p.Take())
	if err != nil {
		return nil, err
	}
	page, err := s.assemble(ctx, roots, total, p, true)
	if err != nil {
		return nil, err
	}
	if err := s.attachPosts(ctx, page.Comments); err != nil {
		return nil, err
	}
	return page, nil
}

// attachPosts sets the post summary on each thread with one batched lookup.
// Threads whose post no longer exists keep a nil Post.
func (s *CommentService) attachPosts(ctx context.Context, threads []models.ThreadedComment) error {
	if len(threads) == 0 {
		return nil
	}
	ids := make([]primitive.ObjectID, len(threads))
	for i := range threads {
		ids[i] = threads[i].PostID
	}
	summaries, err := s.summary.resolve(ctx, ids)
	if err != nil {
		return err
	}
	for i := range threads {
		if sum, ok := summaries[threads[i].PostID]; ok {
			threads[i].Post = &sum
		}
	}
	return nil
}

func (s *CommentService) assemble(ctx context.Context, roots []models.Comment, total int64, p Pagination, nested bool) (*models.CommentPage, error) {
	page := &models.CommentPage{
		Total:    total,
		Page:     p.Page,
		Limit:    p.Limit,
		Comments: []models.ThreadedComment{},
	}
	if total == 0 {
		return page, nil
	}

	threads, err := s.thread(ctx, roots, nested)
	if err != nil {
		return nil, err
	}
	page.Comments = threads
	return page, nil
}

// thread attaches replies to roots with a single batched replies query for the whole set.
func (s *CommentService) thread(ctx context.Context, roots []models.Comment, nested bool) ([]models.ThreadedComment, error) {
	var replies []models.Comment
	if nested && len(roots) > 0 {
		ids := make([]primitive.ObjectID, len(roots))
		for i := range roots {
			ids[i] = roots[i].ID
		}
		var err error
		if replies, err = s.comments.GetRepliesByParents(ctx, ids); err != nil {
			return nil, err
		}
	}

	authorIDs := make([]uint, 0, len(roots)+len(replies))
	for i := range roots {
		authorIDs = append(authorIDs, roots[i].AuthorID)
	}
	for i := range replies {
		authorIDs = append(authorIDs, replies[i].AuthorID)
	}
	authors, err := s.authors.resolve(ctx, authorIDs)
	if err != nil {
		return nil, err
	}

	grouped := groupByParent(replies)
	threads := make([]models.ThreadedComment, len(roots))
	for i := range roots {
		threads[i] = models.ThreadedComment{CommentView: toCommentView(roots[i], authors)}
		if !nested {
			continue
		}
		children := grouped[roots[i].ID]
		views := make([]models.CommentView, len(children))
		for j := range children {
			views[j] = toCommentView(children[j], authors)
		}
		count := len(views)
		threads[i].Replies = views
		threads[i].TotalReplies = &count
	}
	return threads, nil
}

// groupByParent buckets replies by parent ID, keeping their incoming order.
func groupByParent(replies []models.Comment) map[primitive.ObjectID][]models.Comment {
	grouped := make(map[primitive.ObjectID][]models.Comment)
	for _, reply := range replies {
		if reply.ParentID == nil {
			continue
		}
		grouped[*reply.ParentID] = append(grouped[*reply.ParentID], reply)
	}
	return grouped
}

func toCommentView(c models.Comment, authors map[uint]models.UserCompact) models.CommentView {
	if c.LikedBy == nil {
		c.LikedBy = []uint{}
	}
	return models.CommentView{
		Comment:   c,
		Author:    authorOf(authors, c.AuthorID),
		LikeCount: len(c.LikedBy),
	}
}

func (s *CommentService) view(ctx context.Context, c *models.Comment) (*models.CommentView, error) {
	authors, err := s.authors.resolve(ctx, []uint{c.AuthorID})
	if err != nil {
		return nil, err
	}
	v := toCommentView(*c, authors)
	return &v, nil
}

// Get returns one comment with its direct replies.
func (s *CommentService) Get(ctx context.Context, id primitive.ObjectID) (*models.ThreadedComment, error) {
	comment, err := s.comments.GetCommentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	threads, err := s.thread(ctx, []models.Comment{*comment}, true)
	if err != nil {
		return nil, err
	}
	thread := threads[0]
	if len(thread.Replies) == 0 {
		thread.RepliesMessage = NoRepliesMessage
	}
	return &thread, nil
}

// authorize loads a visible comment and checks that requesterID wrote it.
func (s *CommentService) authorize(ctx context.Context, id primitive.ObjectID, requesterID uint, action string) (*models.Comment, error) {
	comment, err := s.comments.GetCommentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != requesterID {
		return nil, apperr.Forbidden("You are not authorized to %s this comment", action)
	}
	return comment, nil
}

// Update replaces the content of a comment owned by requesterID.
func (s *CommentService) Update(ctx context.Context, id primitive.ObjectID, requesterID uint, content string) (*models.CommentView, error) {
	content, err := normalizeCommentContent(content)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorize(ctx, id, requesterID, "update"); err != nil {
		return nil, err
	}

	updated, err := s.comments.UpdateContent(ctx, id, content)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, updated)
}

// Delete soft-deletes a comment owned by requesterID. Its replies stay visible.
func (s *CommentService) Delete(ctx context.Context, id primitive.ObjectID, requesterID uint) error {
	if _, err := s.authorize(ctx, id, requesterID, "delete"); err != nil {
		return err
	}
	if err := s.comments.SoftDelete(ctx, id); err != nil {
		return err
	}

	s.log.Info().Str("comment_id", id.Hex()).Uint("author_id", requesterID).Msg("Comment deleted")
	return nil
}

// ToggleLike likes the comment for userID, or unlikes it if already liked.
func (s *CommentService) ToggleLike(ctx context.Context, id primitive.ObjectID, userID uint) (*models.LikeResult, error) {
	comment, err := s.comments.ToggleLike(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	return &models.LikeResult{
		Liked:     containsUser(comment.LikedBy, userID),
		LikeCount: len(comment.LikedBy),
	}, nil
}
