package validators

import (
	"strings"
	"testing"

	"github.com/anonto42/blog-api/backend/internal/apperr"
	"github.com/anonto42/blog-api/backend/internal/models"
)

func TestValidate(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name    string
		input   interface{}
		wantErr string
	}{
		{"valid comment", &models.CreateCommentRequest{Content: "hi", PostID: "65a1f2b3c4d5e6f708091a2b"}, ""},
		{"missing content", &models.CreateCommentRequest{PostID: "65a1f2b3c4d5e6f708091a2b"}, "content is required"},
		{"missing post", &models.CreateCommentRequest{Content: "hi"}, "post_id is required"},
		{"long comment left to the service", &models.UpdateCommentRequest{Content: " " + strings.Repeat("x", 1000) + " "}, ""},
		{"first name too long", &models.RegisterRequest{Username: "ada", Email: "a@b.co", Password: "secret1", FirstName: strings.Repeat("x", 51)}, "first_name must be at most 50 characters"},
		{"bad email", &models.RegisterRequest{Username: "ada", Email: "nope", Password: "secret1"}, "email must be a valid email address"},
		{"short password", &models.RegisterRequest{Username: "ada", Email: "a@b.co", Password: "123"}, "password must be at least 6 characters"},
		{"username symbols", &models.RegisterRequest{Username: "ada!", Email: "a@b.co", Password: "secret1"}, "username may only contain letters and digits"},
		{"blank tag", &models.CreatePostRequest{Title: "t", Content: "c", Tags: []string{""}}, "tags[0] is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.input)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if !apperr.Is(err, apperr.KindValidation) {
				t.Fatalf("Expected a validation error, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected %q in %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestValidate_ReportsEveryField(t *testing.T) {
	err := NewValidator().Validate(&models.LoginRequest{})
	if err == nil {
		t.Fatal("Expected an error")
	}
	for _, want := range []string{"identifier is required", "password is required"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Expected %q in %q", want, err.Error())
		}
	}
}
