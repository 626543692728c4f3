package router

import (
	"context"
	"fmt"

	"github.com/anonto42/blog-api/backend/internal/auth"
	"github.com/anonto42/blog-api/backend/internal/cache"
	"github.com/anonto42/blog-api/backend/internal/handlers"
	"github.com/anonto42/blog-api/backend/internal/middleware"
	"github.com/anonto42/blog-api/backend/internal/models"
	"github.com/anonto42/blog-api/backend/internal/repositories"
	"github.com/anonto42/blog-api/backend/internal/services"
	"github.com/anonto42/blog-api/backend/pkg/config"
	"github.com/anonto42/blog-api/backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	Users     repositories.UserRepository
	Posts     repositories.PostRepository
	Comments  repositories.CommentRepository
	Tokens    *auth.TokenManager
	UserCache *cache.TTL[uint, models.User]
	// Verifier enables POST /api/users/firebase-login when set.
	Verifier services.IDTokenVerifier
	Health   map[string]handlers.Pinger
	Log      zerolog.Logger
}

// Migrate creates the users table and the MongoDB indexes.
func Migrate(ctx context.Context, pgdb *gorm.DB, blog *mongo.Database) error {
	if err := pgdb.WithContext(ctx).AutoMigrate(&models.User{}); err != nil {
		return fmt.Errorf("failed to auto migrate users: %w", err)
	}
	if err := repositories.EnsureIndexes(ctx, blog); err != nil {
		return fmt.Errorf("failed to ensure indexes: %w", err)
	}
	return nil
}

// NewDependencies wires the database-backed repositories.
func NewDependencies(db *config.DB, tokens *auth.TokenManager, userCache *cache.TTL[uint, models.User], verifier services.IDTokenVerifier, log zerolog.Logger) Dependencies {
	return Dependencies{
		Users:     repositories.NewPostgresUserRepository(db.Postgres),
		Posts:     repositories.NewMongoPostRepository(db.Blog),
		Comments:  repositories.NewMongoCommentRepository(db.Blog),
		Tokens:    tokens,
		UserCache: userCache,
		Verifier:  verifier,
		Health: map[string]handlers.Pinger{
			"postgres": db.PingPostgres,
			"mongo":    db.PingMongo,
		},
		Log: log,
	}
}

// New builds the echo instance with global middleware, error handling and every route.
func New(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = handlers.ErrorHandler(deps.Log)

	config.SetupMiddleware(e, deps.Log)
	SetupRoutes(e, deps)
	return e
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Dependencies) {
	userService := services.NewUserService(deps.Users, deps.Tokens, deps.UserCache, deps.Verifier, deps.Log)
	postService := services.NewPostService(deps.Posts, deps.Comments, deps.Users, deps.Log)
	commentService := services.NewCommentService(deps.Comments, deps.Posts, deps.Users, deps.Log)

	requireAuth := middleware.JWTAuthMiddleware(userService)

	e.GET("/", handlers.Root)
	e.GET("/health", handlers.NewHealthHandler(deps.Health, deps.Log).HealthCheck)

	api := e.Group("/api")

	handlers.NewAuthHandler(userService).RegisterAuthRoutes(api.Group("/users"), requireAuth)
	handlers.NewPostHandler(postService).RegisterPostRoutes(api.Group("/posts"), requireAuth)
	handlers.NewCommentHandler(commentService).RegisterCommentRoutes(api.Group("/comments"), requireAuth)

	deps.Log.Info().
		Int("routes", len(e.Routes())).
		Bool("firebase_login", userService.FederatedLoginEnabled()).
		Msg("Routes configured")
}
