package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/anonto42/blog-api/backend/internal/apperr"
	"github.com/anonto42/blog-api/backend/internal/auth"
	"github.com/anonto42/blog-api/backend/internal/cache"
	"github.com/anonto42/blog-api/backend/internal/mocks"
	"github.com/anonto42/blog-api/backend/internal/models"
	"github.com/anonto42/blog-api/backend/internal/services"
	"github.com/rs/zerolog"
)

func newUserService(t *testing.T, verifier services.IDTokenVerifier) (*services.UserService, *mocks.MockUserRepository) {
	t.Helper()
	users := mocks.NewMockUserRepository()
	userCache, err := cache.New[uint, models.User](16, time.Minute)
	if err != nil {
		t.Fatalf("cache.New failed: %v", err)
	}
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	return services.NewUserService(users, tokens, userCache, verifier, zerolog.Nop()), users
}

func register(t *testing.T, svc *services.UserService) *models.AuthResult {
	t.Helper()
	res, err := svc.Register(context.Background(), models.RegisterRequest{
		Username: "ada",
		Email:    "Ada@Example.com",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	return res
}

func TestUserService_Register(t *testing.T) {
	svc, _ := newUserService(t, nil)
	res := register(t, svc)

	if res.Token == "" {
		t.Error("Expected a token")
	}
	if res.User.Email != "ada@example.com" {
		t.Errorf("Expected lowercased email, got %q", res.User.Email)
	}
	if res.User.Password == "secret123" {
		t.Error("Password must be stored hashed")
	}

	_, err := svc.Register(context.Background(), models.RegisterRequest{Username: "other", Email: "ADA@example.com", Password: "secret123"})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Errorf("Expected Conflict for duplicate email, got %v", err)
	}
	_, err = svc.Register(context.Background(), models.RegisterRequest{Username: "ada", Email: "new@example.com", Password: "secret123"})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Errorf("Expected Conflict for duplicate username, got %v", err)
	}
}

func TestUserService_Login(t *testing.T) {
	svc, _ := newUserService(t, nil)
	register(t, svc)

	tests := []struct {
		name       string
		identifier string
		password   string
		ok         bool
	}{
		{"by email", "ada@example.com", "secret123", true},
		{"by username", "ada", "secret123", true},
		{"wrong password", "ada", "nope", false},
		{"unknown user", "grace", "secret123", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.Login(context.Background(), models.LoginRequest{Identifier: tt.identifier, Password: tt.password})
			if tt.ok {
				if err != nil || res.Token == "" {
					t.Errorf("Expected successful login, got %v", err)
				}
				return
			}
			if !apperr.Is(err, apperr.KindAuthentication) {
				t.Errorf("Expected Authentication error, got %v", err)
			}
		})
	}
}

func TestUserService_Authenticate(t *testing.T) {
	svc, users := newUserService(t, nil)
	res := register(t, svc)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		user, err := svc.Authenticate(ctx, res.Token)
		if err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}
		if user.ID != res.User.ID {
			t.Errorf("Expected user %d, got %d", res.User.ID, user.ID)
		}
	}
	if users.GetByIDCalls != 1 {
		t.Errorf("Expected the user to be cached after the first lookup, got %d lookups", users.GetByIDCalls)
	}

	if _, err := svc.Authenticate(ctx, "garbage"); !apperr.Is(err, apperr.KindAuthentication) {
		t.Errorf("Expected Authentication error for a bad token, got %v", err)
	}
}

func TestUserService_AuthenticateDeletedUser(t *testing.T) {
	users := mocks.NewMockUserRepository()
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	svc := services.NewUserService(users, tokens, nil, nil, zerolog.Nop())

	res := register(t, svc)
	users.Delete(res.User.ID)

	if _, err := svc.Authenticate(context.Background(), res.Token); !apperr.Is(err, apperr.KindAuthentication) {
		t.Errorf("Expected Authentication error for a deleted user, got %v", err)
	}
}

func TestUserService_FirebaseLogin(t *testing.T) {
	verifier := mocks.NewMockIDTokenVerifier()
	verifier.Add("new-token", "uid-1", "grace@example.com", "Grace Hopper")
	verifier.Add("link-token", "uid-2", "ada@example.com", "Ada")
	svc, users := newUserService(t, verifier)
	ctx := context.Background()

	res, err := svc.FirebaseLogin(ctx, "new-token")
	if err != nil {
		t.Fatalf("FirebaseLogin failed: %v", err)
	}
	if res.User.Username != "grace" || res.User.FirstName != "Grace" || res.User.LastName != "Hopper" {
		t.Errorf("Unexpected federated user: %+v", res.User)
	}

	again, err := svc.FirebaseLogin(ctx, "new-token")
	if err != nil {
		t.Fatalf("Second FirebaseLogin failed: %v", err)
	}
	if again.User.ID != res.User.ID {
		t.Errorf("Expected the same user on repeat login, got %d and %d", res.User.ID, again.User.ID)
	}

	local := register(t, svc)
	linked, err := svc.FirebaseLogin(ctx, "link-token")
	if err != nil {
		t.Fatalf("Linking FirebaseLogin failed: %v", err)
	}
	if linked.User.ID != local.User.ID {
		t.Errorf("Expected the existing account to be linked, got user %d", linked.User.ID)
	}
	if stored := users.Users[local.User.ID]; stored.FirebaseUID == nil || *stored.FirebaseUID != "uid-2" {
		t.Errorf("Expected Firebase UID to be stored on the linked account, got %v", stored.FirebaseUID)
	}

	if _, err := svc.FirebaseLogin(ctx, "forged"); !apperr.Is(err, apperr.KindAuthentication) {
		t.Errorf("Expected Authentication error for an unknown token, got %v", err)
	}
}

func TestUserService_FirebaseLoginDisabled(t *testing.T) {
	svc, _ := newUserService(t, nil)
	if svc.FederatedLoginEnabled() {
		t.Error("Federated login should be disabled without a verifier")
	}
	if _, err := svc.FirebaseLogin(context.Background(), "x"); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("Expected NotFound when disabled, got %v", err)
	}
}
