package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/anonto42/blog-api/backend/internal/apperr"
	"github.com/anonto42/blog-api/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	GetPostBySlug(ctx context.Context, slug string) (*models.Post, error)
	GetPostSummaries(ctx context.Context, ids []primitive.ObjectID) ([]models.PostCompact, error)
	IncrementViews(ctx context.Context, slug string) (*models.Post, error)
	ListPosts(ctx context.Context, skip, limit int64) ([]models.Post, int64, error)
	SearchPosts(ctx context.Context, query string, skip, limit int64) ([]models.Post, int64, error)
	UpdatePost(ctx context.Context, post *models.Post) error
	DeletePost(ctx context.Context, id primitive.ObjectID) error
	ToggleLike(ctx context.Context, id primitive.ObjectID, userID uint) (*models.Post, error)
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection(PostsCollection)}
}

// CreatePost creates a new post in MongoDB
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	now := time.Now().UTC()
	post.ID = primitive.NewObjectID()
	post.CreatedAt = now
	post.UpdatedAt = now
	if post.Tags == nil {
		post.Tags = []string{}
	}
	if post.LikedBy == nil {
		post.LikedBy = []uint{}
	}
	if _, err := r.collection.InsertOne(ctx, post); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.Conflict("A post with the same title already exists.")
		}
		return apperr.Internal(err, "failed to create post")
	}
	return nil
}

// GetPostByID retrieves a post by ID from MongoDB
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetPostBySlug retrieves a post by its slug without counting a view
func (r *MongoPostRepository) GetPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return r.findOne(ctx, bson.M{"slug": slug})
}

// GetPostSummaries loads id, title and slug for a batch of posts. Missing posts are skipped.
func (r *MongoPostRepository) GetPostSummaries(ctx context.Context, ids []primitive.ObjectID) ([]models.PostCompact, error) {
	summaries := []models.PostCompact{}
	if len(ids) == 0 {
		return summaries, nil
	}

	opts := options.Find().SetProjection(bson.M{"title": 1, "slug": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, apperr.Internal(err, "failed to query post summaries")
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &summaries); err != nil {
		return nil, apperr.Internal(err, "failed to decode post summaries")
	}
	return summaries, nil
}

func (r *MongoPostRepository) findOne(ctx context.Context, filter bson.M) (*models.Post, error) {
	var post models.Post
	err := r.collection.FindOne(ctx, filter).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("Post not found")
		}
		return nil, apperr.Internal(err, "failed to load post")
	}
	return &post, nil
}

// IncrementViews bumps the view counter of a post and returns the updated document
func (r *MongoPostRepository) IncrementViews(ctx context.Context, slug string) (*models.Post, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var post models.Post
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"slug": slug}, bson.M{"$inc": bson.M{"views": 1}}, opts).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("Post not found")
		}
		return nil, apperr.Internal(err, "failed to load post")
	}
	return &post, nil
}

// ListPosts retrieves posts newest first with pagination
func (r *MongoPostRepository) ListPosts(ctx context.Context, skip, limit int64) ([]models.Post, int64, error) {
	return r.page(ctx, bson.M{}, skip, limit)
}

// SearchPosts runs a full-text search over title and content
func (r *MongoPostRepository) SearchPosts(ctx context.Context, query string, skip, limit int64) ([]models.Post, int64, error) {
	return r.page(ctx, bson.M{"$text": bson.M{"$search": query}}, skip, limit)
}

func (r *MongoPostRepository) page(ctx context.Context, filter bson.M, skip, limit int64) ([]models.Post, int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, apperr.Internal(err, "failed to count posts")
	}

	cursor, err := r.collection.Find(ctx, filter, newestFirst(skip, limit))
	if err != nil {
		return nil, 0, apperr.Internal(err, "failed to query posts")
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, 0, apperr.Internal(err, "failed to decode posts")
	}
	return posts, total, nil
}

// UpdatePost writes the mutable fields of a post
func (r *MongoPostRepository) UpdatePost(ctx context.Context, post *models.Post) error {
	post.UpdatedAt = time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"title":      post.Title,
			"slug":       post.Slug,
			"content":    post.Content,
			"tags":       post.Tags,
			"updated_at": post.UpdatedAt,
		},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": post.ID}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.Conflict("A post with the new title already exists.")
		}
		return apperr.Internal(err, "failed to update post")
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("Post not found")
	}
	return nil
}

// DeletePost deletes a post by ID from MongoDB
func (r *MongoPostRepository) DeletePost(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return apperr.Internal(err, "failed to delete post")
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("Post not found")
	}
	return nil
}

// ToggleLike flips userID's membership in liked_by atomically and returns the updated post
func (r *MongoPostRepository) ToggleLike(ctx context.Context, id primitive.ObjectID, userID uint) (*models.Post, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var post models.Post
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, toggleMemberPipeline("liked_by", userID), opts).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("Post not found")
		}
		return nil, apperr.Internal(err, "failed to toggle post like")
	}
	return &post, nil
}
