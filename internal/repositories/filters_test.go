package repositories

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestVisibleAddsSoftDeletePredicate(t *testing.T) {
	postID := primitive.NewObjectID()
	parentIDs := []primitive.ObjectID{primitive.NewObjectID()}

	filters := map[string]bson.M{
		"by id":     commentByIDFilter(primitive.NewObjectID()),
		"by post":   rootsByPostFilter(postID),
		"by author": rootsByAuthorFilter(7),
		"replies":   repliesFilter(parentIDs),
	}
	for name, f := range filters {
		t.Run(name, func(t *testing.T) {
			pred, ok := f["is_deleted"].(bson.M)
			if !ok || pred["$ne"] != true {
				t.Errorf("Expected is_deleted != true predicate, got %v", f["is_deleted"])
			}
		})
	}
}

func TestVisibleDoesNotMutateInput(t *testing.T) {
	in := bson.M{"post_id": primitive.NewObjectID()}
	out := visible(in)
	if _, ok := in["is_deleted"]; ok {
		t.Error("visible should not modify its argument")
	}
	if out["post_id"] != in["post_id"] {
		t.Error("visible should keep the original predicates")
	}
}

func TestRootFiltersRequireNullParent(t *testing.T) {
	for name, f := range map[string]bson.M{
		"by post":   rootsByPostFilter(primitive.NewObjectID()),
		"by author": rootsByAuthorFilter(1),
	} {
		v, ok := f["parent_id"]
		if !ok || v != nil {
			t.Errorf("%s: expected parent_id: null, got %v (present=%v)", name, v, ok)
		}
	}
}

func TestPagingOptions(t *testing.T) {
	opts := newestFirst(20, 10)
	if *opts.Skip != 20 || *opts.Limit != 10 {
		t.Errorf("Expected skip 20 limit 10, got skip %d limit %d", *opts.Skip, *opts.Limit)
	}
	sort, ok := opts.Sort.(bson.D)
	if !ok || len(sort) != 2 || sort[0].Key != "created_at" || sort[0].Value != -1 {
		t.Errorf("Expected newest first sort, got %v", opts.Sort)
	}

	asc, ok := oldestFirst().Sort.(bson.D)
	if !ok || asc[0].Key != "created_at" || asc[0].Value != 1 {
		t.Errorf("Expected oldest first sort, got %v", asc)
	}
}

func TestToggleMemberPipeline(t *testing.T) {
	p := toggleMemberPipeline("liked_by", uint(3))
	if len(p) != 1 || p[0][0].Key != "$set" {
		t.Fatalf("Expected a single $set stage, got %v", p)
	}
	set := p[0][0].Value.(bson.D)
	if set[0].Key != "liked_by" {
		t.Errorf("Expected liked_by to be set, got %s", set[0].Key)
	}
	cond := set[0].Value.(bson.D)[0]
	if cond.Key != "$cond" {
		t.Errorf("Expected a $cond expression, got %s", cond.Key)
	}
}
