package services

import (
	"context"
	"errors"
	"strings"
	"unicode"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/anonto42/blog-api/backend/internal/apperr"
	"github.com/anonto42/blog-api/backend/internal/auth"
	"github.com/anonto42/blog-api/backend/internal/cache"
	"github.com/anonto42/blog-api/backend/internal/models"
	"github.com/anonto42/blog-api/backend/internal/repositories"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// IDTokenVerifier verifies federated ID tokens. *auth.Client from the Firebase SDK satisfies it.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// UserService registers users, checks credentials and resolves bearer tokens.
type UserService struct {
	users    repositories.UserRepository
	tokens   *auth.TokenManager
	cache    *cache.TTL[uint, models.User]
	verifier IDTokenVerifier
	log      zerolog.Logger
}

// NewUserService creates a new UserService. verifier may be nil when federated login is disabled.
func NewUserService(users repositories.UserRepository, tokens *auth.TokenManager, userCache *cache.TTL[uint, models.User], verifier IDTokenVerifier, log zerolog.Logger) *UserService {
	return &UserService{
		users:    users,
		tokens:   tokens,
		cache:    userCache,
		verifier: verifier,
		log:      log.With().Str("component", "users").Logger(),
	}
}

// FederatedLoginEnabled reports whether an ID token verifier is configured.
func (s *UserService) FederatedLoginEnabled() bool {
	return s.verifier != nil
}

// Register creates a local account and returns a token for it.
func (s *UserService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResult, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := s.users.ExistsByEmailOrUsername(ctx, email, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Conflict("Username or email is already in use.")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal(err, "failed to hash password")
	}

	user := &models.User{
		Username:  username,
		Email:     email,
		Password:  string(hashed),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info().Uint("user_id", user.ID).Str("username", user.Username).Msg("User registered")
	return s.issue(user)
}

// Login checks an email-or-username and password pair.
func (s *UserService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResult, error) {
	user, err := s.users.GetUserByIdentifier(ctx, strings.TrimSpace(req.Identifier))
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.Unauthorized("Invalid credentials")
		}
		return nil, err
	}
	if user.Password == "" {
		return nil, apperr.Unauthorized("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, apperr.Unauthorized("Invalid credentials")
	}
	return s.issue(user)
}

// FirebaseLogin verifies a Firebase ID token, links or creates the local user and returns a local token.
func (s *UserService) FirebaseLogin(ctx context.Context, idToken string) (*models.AuthResult, error) {
	if s.verifier == nil {
		return nil, apperr.NotFound("Federated login is not enabled")
	}

	token, err := s.verifier.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid Firebase ID token")
	}
	email, _ := token.Claims["email"].(string)
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, apperr.Validation("Firebase account has no email address")
	}
	name, _ := token.Claims["name"].(string)

	user, err := s.users.GetUserByFirebaseUID(ctx, token.UID)
	switch {
	case err == nil:
	case apperr.Is(err, apperr.KindNotFound):
		user, err = s.linkOrCreate(ctx, token.UID, email, name)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}
	return s.issue(user)
}

func (s *UserService) linkOrCreate(ctx context.Context, uid, email, name string) (*models.User, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err == nil {
		user.FirebaseUID = &uid
		if err := s.users.UpdateUser(ctx, user); err != nil {
			return nil, err
		}
		s.invalidate(user.ID)
		s.log.Info().Uint("user_id", user.ID).Msg("Linked Firebase account")
		return user, nil
	}
	if !apperr.Is(err, apperr.KindNotFound) {
		return nil, err
	}

	username, err := s.freeUsername(ctx, email)
	if err != nil {
		return nil, err
	}
	first, last, _ := strings.Cut(strings.TrimSpace(name), " ")
	user = &models.User{
		Username:    username,
		Email:       email,
		FirstName:   first,
		LastName:    strings.TrimSpace(last),
		FirebaseUID: &uid,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	s.log.Info().Uint("user_id", user.ID).Str("username", username).Msg("User created from Firebase login")
	return user, nil
}

// freeUsername derives a username from the email local part, adding a random suffix when taken.
func (s *UserService) freeUsername(ctx context.Context, email string) (string, error) {
	local, _, _ := strings.Cut(email, "@")
	base := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, local)
	if len([]rune(base)) < 3 {
		base = "user" + base
	}
	if r := []rune(base); len(r) > 40 {
		base = string(r[:40])
	}

	candidate := base
	for range 5 {
		taken, err := s.users.ExistsByEmailOrUsername(ctx, "", candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	}
	return "", apperr.Conflict("Could not allocate a username")
}

func (s *UserService) issue(user *models.User) (*models.AuthResult, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, apperr.Internal(err, "failed to issue token")
	}
	return &models.AuthResult{Token: token, User: user}, nil
}

// Profile returns the user with the given ID.
func (s *UserService) Profile(ctx context.Context, id uint) (*models.User, error) {
	return s.users.GetUserByID(ctx, id)
}

// Authenticate resolves a bearer token to its user.
func (s *UserService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, apperr.Unauthorized("Token has expired")
		}
		return nil, apperr.Unauthorized("Invalid token")
	}

	if s.cache != nil {
		if user, ok := s.cache.Get(claims.UserID); ok {
			return &user, nil
		}
	}

	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.Unauthorized("User no longer exists")
		}
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(user.ID, *user)
	}
	return user, nil
}

func (s *UserService) invalidate(id uint) {
	if s.cache != nil {
		s.cache.Delete(id)
	}
}
