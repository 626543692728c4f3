package repositories

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	PostsCollection    = "posts"
	CommentsCollection = "comments"
)

func postIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("slug_unique"),
		},
		{
			Keys:    bson.D{{Key: "title", Value: "text"}, {Key: "content", Value: "text"}},
			Options: options.Index().SetName("title_content_text"),
		},
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
	}
}

func commentIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "post_id", Value: 1}, {Key: "parent_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "parent_id", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "author_id", Value: 1}, {Key: "parent_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}
}

// EnsureIndexes creates the indexes the queries and the slug uniqueness rely on. It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	if _, err := db.Collection(PostsCollection).Indexes().CreateMany(ctx, postIndexes()); err != nil {
		return fmt.Errorf("failed to create post indexes: %w", err)
	}
	if _, err := db.Collection(CommentsCollection).Indexes().CreateMany(ctx, commentIndexes()); err != nil {
		return fmt.Errorf("failed to create comment indexes: %w", err)
	}
	return nil
}
