package views

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func stageKeys(p []bson.D) []string {
	keys := make([]string, 0, len(p))
	for _, stage := range p {
		keys = append(keys, stage[0].Key)
	}
	return keys
}

func TestPipelineEmptySpec(t *testing.T) {
	p := Spec{}.Pipeline()
	assert.Empty(t, p, "an empty spec should compile to an empty pipeline")
}

func TestPipelineStageOrder(t *testing.T) {
	viewer := primitive.NewObjectID()
	spec := Spec{
		Match: bson.M{"isPublished": true},
		Joins: []Join{
			{From: "users", LocalField: "owner", ForeignField: "_id", As: "ownerInfo", Single: true},
			{From: "likes", LocalField: "_id", ForeignField: "video", As: "likes"},
		},
		Counts:  []Count{{As: "likeCount", Of: "likes"}},
		Flags:   []Flag{{As: "isLiked", Of: "likes", Key: "likedBy", Member: viewer}},
		Unset:   []string{"likes"},
		Project: bson.M{"title": 1},
		Sort:    &Sort{Field: "createdAt", Desc: true},
		Page:    &Page{Number: 1, Limit: 10},
	}

	p := spec.Pipeline()
	assert.Equal(t, []string{
		"$match", "$lookup", "$lookup", "$addFields", "$unset",
		"$project", "$sort", "$skip", "$limit",
	}, stageKeys(p))

	// Same spec, same pipeline.
	assert.Equal(t, p, spec.Pipeline())
}

func TestPipelineLookupShape(t *testing.T) {
	spec := Spec{
		Joins: []Join{{
			From:         "users",
			LocalField:   "owner",
			ForeignField: "_id",
			As:           "ownerInfo",
			Project:      bson.M{"username": 1},
		}},
	}

	p := spec.Pipeline()
	require.Len(t, p, 1)

	lookup, ok := p[0][0].Value.(bson.M)
	require.True(t, ok)
	assert.Equal(t, "users", lookup["from"])
	assert.Equal(t, "owner", lookup["localField"])
	assert.Equal(t, "_id", lookup["foreignField"])
	assert.Equal(t, "ownerInfo", lookup["as"])
	assert.Equal(t, bson.A{bson.M{"$project": bson.M{"username": 1}}}, lookup["pipeline"])
}

func TestPipelineSingleJoinCollapses(t *testing.T) {
	spec := Spec{
		Joins: []Join{{From: "users", LocalField: "owner", ForeignField: "_id", As: "ownerInfo", Single: true}},
	}

	p := spec.Pipeline()
	require.Len(t, p, 2)
	assert.Equal(t, "$addFields", p[1][0].Key)

	derived, ok := p[1][0].Value.(bson.M)
	require.True(t, ok)
	assert.Equal(t, bson.M{"$first": "$ownerInfo"}, derived["ownerInfo"])
}

func TestPipelineCountAndFlag(t *testing.T) {
	viewer := primitive.NewObjectID()
	spec := Spec{
		Counts: []Count{{As: "likeCount", Of: "likes"}},
		Flags:  []Flag{{As: "isLiked", Of: "likes", Key: "likedBy", Member: viewer}},
	}

	p := spec.Pipeline()
	require.Len(t, p, 1)

	derived, ok := p[0][0].Value.(bson.M)
	require.True(t, ok)
	assert.Equal(t, bson.M{"$size": "$likes"}, derived["likeCount"])
	assert.Equal(t, bson.M{
		"$cond": bson.M{
			"if":   bson.M{"$in": bson.A{viewer, "$likes.likedBy"}},
			"then": true,
			"else": false,
		},
	}, derived["isLiked"])
}

func TestPipelinePagination(t *testing.T) {
	spec := Spec{
		Sort: &Sort{Field: "createdAt", Desc: true},
		Page: &Page{Number: 2, Limit: 10},
	}

	p := spec.Pipeline()
	require.Len(t, p, 3)

	assert.Equal(t, bson.D{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}}, p[0])
	assert.Equal(t, bson.D{{Key: "$skip", Value: int64(10)}}, p[1])
	assert.Equal(t, bson.D{{Key: "$limit", Value: int64(10)}}, p[2])
}

func TestPipelineSortAscending(t *testing.T) {
	p := Spec{Sort: &Sort{Field: "title"}}.Pipeline()
	require.Len(t, p, 1)
	assert.Equal(t, bson.D{{Key: "$sort", Value: bson.D{{Key: "title", Value: 1}}}}, p[0])
}

func TestSearchFilterEmptyQuery(t *testing.T) {
	assert.Equal(t, bson.M{}, SearchFilter("", "title", "description"))
}

func TestSearchFilterOrAcrossFields(t *testing.T) {
	filter := SearchFilter("gopher", "title", "description")
	assert.Equal(t, bson.M{"$or": bson.A{
		bson.M{"title": bson.M{"$regex": "gopher", "$options": "i"}},
		bson.M{"description": bson.M{"$regex": "gopher", "$options": "i"}},
	}}, filter)
}

func TestSearchFilterEscapesRegexMeta(t *testing.T) {
	filter := SearchFilter("c++ (tips)", "title")
	or, ok := filter["$or"].(bson.A)
	require.True(t, ok)
	require.Len(t, or, 1)

	title := or[0].(bson.M)["title"].(bson.M)
	assert.Equal(t, `c\+\+ \(tips\)`, title["$regex"])
}
