package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/anonto42/blog-api/backend/internal/apperr"
	"github.com/anonto42/blog-api/backend/internal/mocks"
	"github.com/anonto42/blog-api/backend/internal/models"
	"github.com/anonto42/blog-api/backend/internal/services"
	"github.com/rs/zerolog"
)

type postFixture struct {
	posts    *mocks.MockPostRepository
	comments *mocks.MockCommentRepository
	users    *mocks.MockUserRepository
	svc      *services.PostService
}

func newPostFixture(t *testing.T) *postFixture {
	t.Helper()
	f := &postFixture{
		posts:    mocks.NewMockPostRepository(),
		comments: mocks.NewMockCommentRepository(),
		users:    mocks.NewMockUserRepository(),
	}
	f.svc = services.NewPostService(f.posts, f.comments, f.users, zerolog.Nop())
	if err := f.users.CreateUser(context.Background(), &models.User{ID: 1, Username: "ada", Email: "ada@example.com"}); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return f
}

func (f *postFixture) create(t *testing.T, author uint, title string) *models.PostView {
	t.Helper()
	view, err := f.svc.Create(context.Background(), author, models.CreatePostRequest{Title: title, Content: "Some *content*"})
	if err != nil {
		t.Fatalf("Create %q failed: %v", title, err)
	}
	return view
}

func TestPostService_Create(t *testing.T) {
	f := newPostFixture(t)

	view, err := f.svc.Create(context.Background(), 1, models.CreatePostRequest{
		Title:   "  Hello, World!  ",
		Content: "body",
		Tags:    []string{"go", " ", "mongo "},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if view.Slug != "hello-world" {
		t.Errorf("Expected slug hello-world, got %q", view.Slug)
	}
	if view.Title != "Hello, World!" {
		t.Errorf("Expected trimmed title, got %q", view.Title)
	}
	if len(view.Tags) != 2 || view.Tags[1] != "mongo" {
		t.Errorf("Expected blank tags dropped and trimmed, got %v", view.Tags)
	}
	if view.Author == nil || view.Author.Username != "ada" {
		t.Errorf("Expected author ada, got %+v", view.Author)
	}
}

func TestPostService_CreateRejects(t *testing.T) {
	f := newPostFixture(t)
	f.create(t, 1, "Hello World")

	tests := []struct {
		name string
		req  models.CreatePostRequest
		kind apperr.Kind
	}{
		{"same slug", models.CreatePostRequest{Title: "hello   world!", Content: "x"}, apperr.KindConflict},
		{"blank title", models.CreatePostRequest{Title: "  ", Content: "x"}, apperr.KindValidation},
		{"title without slug", models.CreatePostRequest{Title: "!!!", Content: "x"}, apperr.KindValidation},
		{"title too long", models.CreatePostRequest{Title: strings.Repeat("t", 151), Content: "x"}, apperr.KindValidation},
		{"blank content", models.CreatePostRequest{Title: "New", Content: "\n"}, apperr.KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(context.Background(), 1, tt.req)
			if got := apperr.KindOf(err); err == nil || got != tt.kind {
				t.Errorf("Expected %s, got %v", tt.kind, err)
			}
		})
	}
}

func TestPostService_UpdateSlugRules(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	f.create(t, 1, "First Post")
	f.create(t, 1, "Second Post")

	same, err := f.svc.Update(ctx, "first-post", 1, models.UpdatePostRequest{Title: "First post", Content: "new body"})
	if err != nil {
		t.Fatalf("Updating to a title with the same slug should succeed: %v", err)
	}
	if same.Slug != "first-post" || same.Content != "new body" {
		t.Errorf("Unexpected post after update: %+v", same)
	}

	if _, err := f.svc.Update(ctx, "first-post", 1, models.UpdatePostRequest{Title: "Second Post"}); !apperr.Is(err, apperr.KindConflict) {
		t.Errorf("Expected Conflict when taking another post's slug, got %v", err)
	}

	renamed, err := f.svc.Update(ctx, "first-post", 1, models.UpdatePostRequest{Title: "Third Post"})
	if err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if renamed.Slug != "third-post" {
		t.Errorf("Expected slug third-post, got %q", renamed.Slug)
	}
	if _, err := f.svc.GetBySlug(ctx, "first-post"); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("Old slug should no longer resolve, got %v", err)
	}
}

func TestPostService_UpdateTags(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	if _, err := f.svc.Create(ctx, 1, models.CreatePostRequest{Title: "Tagged", Content: "x", Tags: []string{"a"}}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	kept, err := f.svc.Update(ctx, "tagged", 1, models.UpdatePostRequest{Content: "y"})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if len(kept.Tags) != 1 {
		t.Errorf("Tags should be untouched when omitted, got %v", kept.Tags)
	}

	cleared, err := f.svc.Update(ctx, "tagged", 1, models.UpdatePostRequest{Tags: []string{}})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if len(cleared.Tags) != 0 {
		t.Errorf("An empty tag list should clear tags, got %v", cleared.Tags)
	}
}

func TestPostService_OwnershipRequired(t *testing.T) {
	f := newPostFixture(t)
	f.create(t, 1, "Mine")

	if _, err := f.svc.Update(context.Background(), "mine", 2, models.UpdatePostRequest{Content: "x"}); !apperr.Is(err, apperr.KindForbidden) {
		t.Errorf("Expected Forbidden on foreign update, got %v", err)
	}
	if err := f.svc.Delete(context.Background(), "mine", 2); !apperr.Is(err, apperr.KindForbidden) {
		t.Errorf("Expected Forbidden on foreign delete, got %v", err)
	}
}

func TestPostService_GetBySlug(t *testing.T) {
	f := newPostFixture(t)
	f.create(t, 1, "Readable")

	var view *models.PostView
	var err error
	for i := 0; i < 3; i++ {
		if view, err = f.svc.GetBySlug(context.Background(), "readable"); err != nil {
			t.Fatalf("GetBySlug failed: %v", err)
		}
	}
	if view.Views != 3 {
		t.Errorf("Expected 3 views, got %d", view.Views)
	}
	if !strings.Contains(view.ContentHTML, "<em>content</em>") {
		t.Errorf("Expected rendered markdown, got %q", view.ContentHTML)
	}
}

func TestPostService_DeleteHidesComments(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	view := f.create(t, 1, "Doomed")
	c := &models.Comment{Content: "hi", PostID: view.ID, AuthorID: 1}
	f.comments.Seed(c)

	if err := f.svc.Delete(ctx, "doomed", 1); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := f.comments.GetCommentByID(ctx, c.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("Comments of a deleted post should be hidden, got %v", err)
	}
	if !f.comments.Comments[c.ID].IsDeleted {
		t.Error("Comment should be soft deleted, not removed")
	}
}

func TestPostService_DeleteKeepsPostWhenCommentsFail(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	view := f.create(t, 1, "Sticky")
	c := &models.Comment{Content: "hi", PostID: view.ID, AuthorID: 1}
	f.comments.Seed(c)

	f.comments.SoftDeleteByPostErr = apperr.Internal(errors.New("write failed"), "failed to delete post comments")
	if err := f.svc.Delete(ctx, "sticky", 1); !apperr.Is(err, apperr.KindInternal) {
		t.Fatalf("Expected an internal error, got %v", err)
	}
	if _, err := f.posts.GetPostBySlug(ctx, "sticky"); err != nil {
		t.Errorf("Post should survive a failed delete, got %v", err)
	}

	f.comments.SoftDeleteByPostErr = nil
	if err := f.svc.Delete(ctx, "sticky", 1); err != nil {
		t.Fatalf("Retried delete failed: %v", err)
	}
	if _, err := f.posts.GetPostBySlug(ctx, "sticky"); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("Expected the post to be gone after retry, got %v", err)
	}
	if !f.comments.Comments[c.ID].IsDeleted {
		t.Error("Retry should hide the post's comments")
	}
}

func TestPostService_ToggleLike(t *testing.T) {
	f := newPostFixture(t)
	f.create(t, 1, "Likeable")

	res, err := f.svc.ToggleLike(context.Background(), "likeable", 7)
	if err != nil {
		t.Fatalf("ToggleLike failed: %v", err)
	}
	if !res.Liked || res.LikeCount != 1 || res.Post.LikeCount != 1 {
		t.Errorf("Expected liked once, got %+v", res)
	}

	res, err = f.svc.ToggleLike(context.Background(), "likeable", 7)
	if err != nil {
		t.Fatalf("ToggleLike failed: %v", err)
	}
	if res.Liked || res.LikeCount != 0 {
		t.Errorf("Second toggle should unlike, got %+v", res)
	}
}

func TestPostService_ListAndSearch(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	for _, title := range []string{"Go channels", "Mongo indexes", "Go generics"} {
		f.create(t, 1, title)
	}

	page, err := f.svc.List(ctx, services.NewPagination(1, 2))
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if page.TotalPosts != 3 || page.TotalPages != 2 || len(page.Posts) != 2 {
		t.Errorf("Unexpected page: total=%d pages=%d len=%d", page.TotalPosts, page.TotalPages, len(page.Posts))
	}
	if page.Posts[0].Title != "Go generics" {
		t.Errorf("Expected newest post first, got %q", page.Posts[0].Title)
	}

	found, err := f.svc.Search(ctx, "go", services.NewPagination(1, 10))
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if found.TotalPosts != 2 {
		t.Errorf("Expected 2 matches, got %d", found.TotalPosts)
	}

	if _, err := f.svc.Search(ctx, "  ", services.NewPagination(1, 10)); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("Expected Validation for blank query, got %v", err)
	}
}
