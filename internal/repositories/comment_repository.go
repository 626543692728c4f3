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

// CommentRepository defines the interface for comment data operations.
// Soft-deleted comments are never returned by any read.
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error)
	GetRootsByPost(ctx context.Context, postID primitive.ObjectID, skip, limit int64) ([]models.Comment, int64, error)
	GetRootsByAuthor(ctx context.Context, authorID uint, skip, limit int64) ([]models.Comment, int64, error)
	GetRepliesByParents(ctx context.Context, parentIDs []primitive.ObjectID) ([]models.Comment, error)
	UpdateContent(ctx context.Context, id primitive.ObjectID, content string) (*models.Comment, error)
	SoftDelete(ctx context.Context, id primitive.ObjectID) error
	SoftDeleteByPost(ctx context.Context, postID primitive.ObjectID) (int64, error)
	ToggleLike(ctx context.Context, id primitive.ObjectID, userID uint) (*models.Comment, error)
}

// MongoCommentRepository implements CommentRepository for MongoDB
type MongoCommentRepository struct {
	collection *mongo.Collection
}

// NewMongoCommentRepository creates a new MongoCommentRepository
func NewMongoCommentRepository(db *mongo.Database) *MongoCommentRepository {
	return &MongoCommentRepository{collection: db.Collection(CommentsCollection)}
}

// CreateComment inserts a new comment
func (r *MongoCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	now := time.Now().UTC()
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = now
	comment.UpdatedAt = now
	comment.IsDeleted = false
	if comment.LikedBy == nil {
		comment.LikedBy = []uint{}
	}
	if _, err := r.collection.InsertOne(ctx, comment); err != nil {
		return apperr.Internal(err, "failed to create comment")
	}
	return nil
}

// GetCommentByID retrieves a visible comment by ID
func (r *MongoCommentRepository) GetCommentByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	var comment models.Comment
	err := r.collection.FindOne(ctx, commentByIDFilter(id)).Decode(&comment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("Comment not found")
		}
		return nil, apperr.Internal(err, "failed to load comment")
	}
	return &comment, nil
}

// GetRootsByPost pages the root comments of a post, newest first. The total ignores skip and limit.
func (r *MongoCommentRepository) GetRootsByPost(ctx context.Context, postID primitive.ObjectID, skip, limit int64) ([]models.Comment, int64, error) {
	return r.page(ctx, rootsByPostFilter(postID), skip, limit)
}

// GetRootsByAuthor pages the root comments written by a user, newest first.
func (r *MongoCommentRepository) GetRootsByAuthor(ctx context.Context, authorID uint, skip, limit int64) ([]models.Comment, int64, error) {
	return r.page(ctx, rootsByAuthorFilter(authorID), skip, limit)
}

func (r *MongoCommentRepository) page(ctx context.Context, filter bson.M, skip, limit int64) ([]models.Comment, int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, apperr.Internal(err, "failed to count comments")
	}
	if total == 0 {
		return []models.Comment{}, 0, nil
	}

	comments, err := r.find(ctx, filter, newestFirst(skip, limit))
	if err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

// GetRepliesByParents returns every visible reply to any of the given parents, oldest first.
func (r *MongoCommentRepository) GetRepliesByParents(ctx context.Context, parentIDs []primitive.ObjectID) ([]models.Comment, error) {
	if len(parentIDs) == 0 {
		return []models.Comment{}, nil
	}
	return r.find(ctx, repliesFilter(parentIDs), oldestFirst())
}

func (r *MongoCommentRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Comment, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, apperr.Internal(err, "failed to query comments")
	}
	defer cursor.Close(ctx)

	comments := []models.Comment{}
	if err = cursor.All(ctx, &comments); err != nil {
		return nil, apperr.Internal(err, "failed to decode comments")
	}
	return comments, nil
}

// UpdateContent replaces the content of a visible comment and returns the updated document
func (r *MongoCommentRepository) UpdateContent(ctx context.Context, id primitive.ObjectID, content string) (*models.Comment, error) {
	update := bson.M{"$set": bson.M{"content": content, "updated_at": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var comment models.Comment
	err := r.collection.FindOneAndUpdate(ctx, commentByIDFilter(id), update, opts).Decode(&comment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("Comment not found")
		}
		return nil, apperr.Internal(err, "failed to update comment")
	}
	return &comment, nil
}

// SoftDelete hides a comment from reads. Replies are left untouched.
func (r *MongoCommentRepository) SoftDelete(ctx context.Context, id primitive.ObjectID) error {
	update := bson.M{"$set": bson.M{"is_deleted": true, "updated_at": time.Now().UTC()}}
	res, err := r.collection.UpdateOne(ctx, commentByIDFilter(id), update)
	if err != nil {
		return apperr.Internal(err, "failed to delete comment")
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("Comment not found")
	}
	return nil
}

// SoftDeleteByPost hides every comment of a post
func (r *MongoCommentRepository) SoftDeleteByPost(ctx context.Context, postID primitive.ObjectID) (int64, error) {
	update := bson.M{"$set": bson.M{"is_deleted": true, "updated_at": time.Now().UTC()}}
	res, err := r.collection.UpdateMany(ctx, visible(bson.M{"post_id": postID}), update)
	if err != nil {
		return 0, apperr.Internal(err, "failed to delete post comments")
	}
	return res.ModifiedCount, nil
}

// ToggleLike flips userID's membership in liked_by atomically and returns the updated comment
func (r *MongoCommentRepository) ToggleLike(ctx context.Context, id primitive.ObjectID, userID uint) (*models.Comment, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var comment models.Comment
	err := r.collection.FindOneAndUpdate(ctx, commentByIDFilter(id), toggleMemberPipeline("liked_by", userID), opts).Decode(&comment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("Comment not found")
		}
		return nil, apperr.Internal(err, "failed to toggle comment like")
	}
	return &comment, nil
}
