package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/anonto42/blog-api/backend/internal/apperr"
	"github.com/anonto42/blog-api/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// clock hands out strictly increasing timestamps so ordering in tests is deterministic.
type clock struct {
	ticks int
}

func (c *clock) next() time.Time {
	c.ticks++
	return epoch.Add(time.Duration(c.ticks) * time.Second)
}

func toggle(ids []uint, userID uint) []uint {
	out := make([]uint, 0, len(ids)+1)
	found := false
	for _, id := range ids {
		if id == userID {
			found = true
			continue
		}
		out = append(out, id)
	}
	if !found {
		out = append(out, userID)
	}
	return out
}

func window[T any](items []T, skip, limit int64) []T {
	if skip >= int64(len(items)) {
		return []T{}
	}
	end := skip + limit
	if end > int64(len(items)) {
		end = int64(len(items))
	}
	return items[skip:end]
}

// MockCommentRepository is an in-memory CommentRepository
type MockCommentRepository struct {
	mu       sync.Mutex
	Comments map[primitive.ObjectID]*models.Comment
	Err      error

	// SoftDeleteByPostErr fails SoftDeleteByPost alone.
	SoftDeleteByPostErr error

	RootsCalls   int
	RepliesCalls int
	clock        clock
}

func NewMockCommentRepository() *MockCommentRepository {
	return &MockCommentRepository{Comments: make(map[primitive.ObjectID]*models.Comment)}
}

func (m *MockCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if comment.ID.IsZero() {
		comment.ID = primitive.NewObjectID()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = m.clock.next()
	}
	comment.UpdatedAt = comment.CreatedAt
	if comment.LikedBy == nil {
		comment.LikedBy = []uint{}
	}
	c := *comment
	m.Comments[c.ID] = &c
	return nil
}

// Seed stores comments as given, assigning IDs and timestamps only where missing.
func (m *MockCommentRepository) Seed(comments ...*models.Comment) {
	for _, c := range comments {
		_ = m.CreateComment(context.Background(), c)
	}
}

func (m *MockCommentRepository) GetCommentByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	c, ok := m.Comments[id]
	if !ok || c.IsDeleted {
		return nil, apperr.NotFound("Comment not found")
	}
	cp := *c
	return &cp, nil
}

func (m *MockCommentRepository) filter(keep func(*models.Comment) bool) []models.Comment {
	out := []models.Comment{}
	for _, c := range m.Comments {
		if !c.IsDeleted && keep(c) {
			out = append(out, *c)
		}
	}
	return out
}

func sortComments(items []models.Comment, newest bool) {
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			if newest {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.CreatedAt.Before(b.CreatedAt)
		}
		if newest {
			return a.ID.Hex() > b.ID.Hex()
		}
		return a.ID.Hex() < b.ID.Hex()
	})
}

func (m *MockCommentRepository) roots(keep func(*models.Comment) bool, skip, limit int64) ([]models.Comment, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RootsCalls++
	if m.Err != nil {
		return nil, 0, m.Err
	}
	items := m.filter(func(c *models.Comment) bool { return c.ParentID == nil && keep(c) })
	sortComments(items, true)
	return window(items, skip, limit), int64(len(items)), nil
}

func (m *MockCommentRepository) GetRootsByPost(ctx context.Context, postID primitive.ObjectID, skip, limit int64) ([]models.Comment, int64, error) {
	return m.roots(func(c *models.Comment) bool { return c.PostID == postID }, skip, limit)
}

func (m *MockCommentRepository) GetRootsByAuthor(ctx context.Context, authorID uint, skip, limit int64) ([]models.Comment, int64, error) {
	return m.roots(func(c *models.Comment) bool { return c.AuthorID == authorID }, skip, limit)
}

func (m *MockCommentRepository) GetRepliesByParents(ctx context.Context, parentIDs []primitive.ObjectID) ([]models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RepliesCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	parents := make(map[primitive.ObjectID]bool, len(parentIDs))
	for _, id := range parentIDs {
		parents[id] = true
	}
	items := m.filter(func(c *models.Comment) bool { return c.ParentID != nil && parents[*c.ParentID] })
	sortComments(items, false)
	return items, nil
}

func (m *MockCommentRepository) UpdateContent(ctx context.Context, id primitive.ObjectID, content string) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.Comments[id]
	if !ok || c.IsDeleted {
		return nil, apperr.NotFound("Comment not found")
	}
	c.Content = content
	c.UpdatedAt = m.clock.next()
	cp := *c
	return &cp, nil
}

func (m *MockCommentRepository) SoftDelete(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.Comments[id]
	if !ok || c.IsDeleted {
		return apperr.NotFound("Comment not found")
	}
	c.IsDeleted = true
	return nil
}

func (m *MockCommentRepository) SoftDeleteByPost(ctx context.Context, postID primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SoftDeleteByPostErr != nil {
		return 0, m.SoftDeleteByPostErr
	}
	var n int64
	for _, c := range m.Comments {
		if c.PostID == postID && !c.IsDeleted {
			c.IsDeleted = true
			n++
		}
	}
	return n, nil
}

func (m *MockCommentRepository) ToggleLike(ctx context.Context, id primitive.ObjectID, userID uint) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.Comments[id]
	if !ok || c.IsDeleted {
		return nil, apperr.NotFound("Comment not found")
	}
	c.LikedBy = toggle(c.LikedBy, userID)
	cp := *c
	return &cp, nil
}

// MockPostRepository is an in-memory PostRepository
type MockPostRepository struct {
	mu    sync.Mutex
	Posts map[primitive.ObjectID]*models.Post
	Err   error
	clock clock

	SummaryCalls int
}

func NewMockPostRepository() *MockPostRepository {
	return &MockPostRepository{Posts: make(map[primitive.ObjectID]*models.Post)}
}

func (m *MockPostRepository) bySlug(slug string) *models.Post {
	for _, p := range m.Posts {
		if p.Slug == slug {
			return p
		}
	}
	return nil
}

func (m *MockPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if m.bySlug(post.Slug) != nil {
		return apperr.Conflict("A post with the same title already exists.")
	}
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = m.clock.next()
	}
	post.UpdatedAt = post.CreatedAt
	if post.LikedBy == nil {
		post.LikedBy = []uint{}
	}
	p := *post
	m.Posts[p.ID] = &p
	return nil
}

func (m *MockPostRepository) GetPostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	p, ok := m.Posts[id]
	if !ok {
		return nil, apperr.NotFound("Post not found")
	}
	cp := *p
	return &cp, nil
}

func (m *MockPostRepository) GetPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	p := m.bySlug(slug)
	if p == nil {
		return nil, apperr.NotFound("Post not found")
	}
	cp := *p
	return &cp, nil
}

func (m *MockPostRepository) GetPostSummaries(ctx context.Context, ids []primitive.ObjectID) ([]models.PostCompact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SummaryCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	out := []models.PostCompact{}
	for _, id := range ids {
		if p, ok := m.Posts[id]; ok {
			out = append(out, models.PostCompact{ID: p.ID, Title: p.Title, Slug: p.Slug})
		}
	}
	return out, nil
}

func (m *MockPostRepository) IncrementViews(ctx context.Context, slug string) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.bySlug(slug)
	if p == nil {
		return nil, apperr.NotFound("Post not found")
	}
	p.Views++
	cp := *p
	return &cp, nil
}

func (m *MockPostRepository) page(keep func(*models.Post) bool, skip, limit int64) ([]models.Post, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, 0, m.Err
	}
	items := []models.Post{}
	for _, p := range m.Posts {
		if keep(p) {
			items = append(items, *p)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return window(items, skip, limit), int64(len(items)), nil
}

func (m *MockPostRepository) ListPosts(ctx context.Context, skip, limit int64) ([]models.Post, int64, error) {
	return m.page(func(*models.Post) bool { return true }, skip, limit)
}

func words(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// SearchPosts matches whole query words against title or content, case-insensitively.
func (m *MockPostRepository) SearchPosts(ctx context.Context, query string, skip, limit int64) ([]models.Post, int64, error) {
	terms := words(query)
	return m.page(func(p *models.Post) bool {
		for _, w := range words(p.Title + " " + p.Content) {
			for _, term := range terms {
				if w == term {
					return true
				}
			}
		}
		return false
	}, skip, limit)
}

func (m *MockPostRepository) UpdatePost(ctx context.Context, post *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Posts[post.ID]
	if !ok {
		return apperr.NotFound("Post not found")
	}
	if other := m.bySlug(post.Slug); other != nil && other.ID != post.ID {
		return apperr.Conflict("A post with the new title already exists.")
	}
	post.UpdatedAt = m.clock.next()
	p.Title, p.Slug, p.Content, p.Tags, p.UpdatedAt = post.Title, post.Slug, post.Content, post.Tags, post.UpdatedAt
	return nil
}

func (m *MockPostRepository) DeletePost(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Posts[id]; !ok {
		return apperr.NotFound("Post not found")
	}
	delete(m.Posts, id)
	return nil
}

func (m *MockPostRepository) ToggleLike(ctx context.Context, id primitive.ObjectID, userID uint) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Posts[id]
	if !ok {
		return nil, apperr.NotFound("Post not found")
	}
	p.LikedBy = toggle(p.LikedBy, userID)
	cp := *p
	return &cp, nil
}

// MockUserRepository is an in-memory UserRepository
type MockUserRepository struct {
	mu     sync.Mutex
	Users  map[uint]*models.User
	Err    error
	nextID uint

	GetByIDCalls  int
	BatchGetCalls int
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{Users: make(map[uint]*models.User)}
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for _, u := range m.Users {
		if strings.EqualFold(u.Email, user.Email) || u.Username == user.Username {
			return apperr.Conflict("Username or email is already in use.")
		}
	}
	if user.ID == 0 {
		m.nextID++
		user.ID = m.nextID
	} else if user.ID > m.nextID {
		m.nextID = user.ID
	}
	u := *user
	m.Users[u.ID] = &u
	return nil
}

func (m *MockUserRepository) find(match func(*models.User) bool) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, u := range m.Users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("User not found")
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	m.mu.Lock()
	m.GetByIDCalls++
	m.mu.Unlock()
	return m.find(func(u *models.User) bool { return u.ID == id })
}

func (m *MockUserRepository) GetUserByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	return m.find(func(u *models.User) bool {
		return strings.EqualFold(u.Email, identifier) || u.Username == identifier
	})
}

func (m *MockUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return strings.EqualFold(u.Email, email) })
}

func (m *MockUserRepository) GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.FirebaseUID != nil && *u.FirebaseUID == firebaseUID })
}

func (m *MockUserRepository) GetUsersByIDs(ctx context.Context, ids []uint) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BatchGetCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	users := []models.User{}
	for _, id := range ids {
		if u, ok := m.Users[id]; ok {
			users = append(users, *u)
		}
	}
	return users, nil
}

func (m *MockUserRepository) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	for _, u := range m.Users {
		if (email != "" && strings.EqualFold(u.Email, email)) || u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Users[user.ID]; !ok {
		return apperr.NotFound("User not found")
	}
	u := *user
	m.Users[u.ID] = &u
	return nil
}

// Delete removes a user, as an account deletion elsewhere would.
func (m *MockUserRepository) Delete(id uint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Users, id)
}
