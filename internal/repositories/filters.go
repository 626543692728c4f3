package repositories

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// visible adds the soft-delete predicate to a comment filter. Every comment read goes through it.
func visible(filter bson.M) bson.M {
	out := bson.M{"is_deleted": bson.M{"$ne": true}}
	for k, v := range filter {
		out[k] = v
	}
	return out
}

func commentByIDFilter(id primitive.ObjectID) bson.M {
	return visible(bson.M{"_id": id})
}

func rootsByPostFilter(postID primitive.ObjectID) bson.M {
	return visible(bson.M{"post_id": postID, "parent_id": nil})
}

func rootsByAuthorFilter(authorID uint) bson.M {
	return visible(bson.M{"author_id": authorID, "parent_id": nil})
}

func repliesFilter(parentIDs []primitive.ObjectID) bson.M {
	return visible(bson.M{"parent_id": bson.M{"$in": parentIDs}})
}

// newestFirst pages a query by creation time descending, _id breaking ties.
func newestFirst(skip, limit int64) *options.FindOptions {
	return options.Find().
		SetSkip(skip).
		SetLimit(limit).
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
}

func oldestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
}

// toggleMemberPipeline builds a single-document update that removes member from the array field
// when present and appends it otherwise. Test and write happen in one atomic update.
func toggleMemberPipeline(field string, member any) mongo.Pipeline {
	current := bson.D{{Key: "$ifNull", Value: bson.A{"$" + field, bson.A{}}}}
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: field, Value: bson.D{{Key: "$cond", Value: bson.D{
				{Key: "if", Value: bson.D{{Key: "$in", Value: bson.A{member, current}}}},
				{Key: "then", Value: bson.D{{Key: "$filter", Value: bson.D{
					{Key: "input", Value: current},
					{Key: "cond", Value: bson.D{{Key: "$ne", Value: bson.A{"$$this", member}}}},
				}}}},
				{Key: "else", Value: bson.D{{Key: "$concatArrays", Value: bson.A{current, bson.A{member}}}}},
			}}}},
		}}},
	}
}
