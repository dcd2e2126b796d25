package views

import (
	"context"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Join describes a left-outer join against a related collection. Primary
// documents with zero matches keep an empty joined array (or a null field
// when Single is set); a missing relation is never an error.
type Join struct {
	From         string
	LocalField   string
	ForeignField string
	As           string
	// Optional projection applied to the joined documents.
	Project bson.M
	// Single collapses the joined array to its first element, for
	// relationships that are logically one-to-one (e.g. a video's owner).
	Single bool
}

// Count adds a derived field holding the size of a joined array.
type Count struct {
	As string
	Of string // name of the joined array field
}

// Flag adds a derived boolean that is true when Member appears among the
// values of Key across the joined array Of (e.g. "is the viewer among the
// likers of this video"). The viewer identity is supplied by the caller;
// the assembler has no notion of identity itself.
type Flag struct {
	As     string
	Of     string
	Key    string
	Member primitive.ObjectID
}

// Sort orders results by a single field.
type Sort struct {
	Field string
	Desc  bool
}

// Page selects a 1-indexed page of at most Limit results, applied after
// sorting. Both values must already be sanitized positive integers.
type Page struct {
	Number int64
	Limit  int64
}

// Spec declares a view over a primary collection: a match predicate,
// left-outer joins, derived fields computed from the joined sets, and the
// final shaping. Stage order is fixed (match, lookups, derived fields,
// unset, project, sort, skip, limit) so identical specs always compile to
// identical pipelines.
type Spec struct {
	Match  bson.M
	Joins  []Join
	Counts []Count
	Flags  []Flag
	// Unset removes fields after derived values are computed, typically
	// the raw joined arrays that only existed to be counted.
	Unset   []string
	Project bson.M
	Sort    *Sort
	Page    *Page
}

// Pipeline compiles the spec into an aggregation pipeline.
func (s Spec) Pipeline() mongo.Pipeline {
	pipeline := mongo.Pipeline{}

	if s.Match != nil {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: s.Match}})
	}

	for _, j := range s.Joins {
		lookup := bson.M{
			"from":         j.From,
			"localField":   j.LocalField,
			"foreignField": j.ForeignField,
			"as":           j.As,
		}
		if j.Project != nil {
			lookup["pipeline"] = bson.A{bson.M{"$project": j.Project}}
		}
		pipeline = append(pipeline, bson.D{{Key: "$lookup", Value: lookup}})
	}

	derived := bson.M{}
	for _, j := range s.Joins {
		if j.Single {
			derived[j.As] = bson.M{"$first": "$" + j.As}
		}
	}
	for _, c := range s.Counts {
		derived[c.As] = bson.M{"$size": "$" + c.Of}
	}
	for _, f := range s.Flags {
		derived[f.As] = bson.M{
			"$cond": bson.M{
				"if":   bson.M{"$in": bson.A{f.Member, "$" + f.Of + "." + f.Key}},
				"then": true,
				"else": false,
			},
		}
	}
	if len(derived) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$addFields", Value: derived}})
	}

	if len(s.Unset) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$unset", Value: s.Unset}})
	}
	if s.Project != nil {
		pipeline = append(pipeline, bson.D{{Key: "$project", Value: s.Project}})
	}
	if s.Sort != nil {
		dir := 1
		if s.Sort.Desc {
			dir = -1
		}
		pipeline = append(pipeline, bson.D{{Key: "$sort", Value: bson.D{{Key: s.Sort.Field, Value: dir}}}})
	}
	if s.Page != nil {
		pipeline = append(pipeline,
			bson.D{{Key: "$skip", Value: (s.Page.Number - 1) * s.Page.Limit}},
			bson.D{{Key: "$limit", Value: s.Page.Limit}},
		)
	}

	return pipeline
}

// SearchFilter builds a case-insensitive substring match across the given
// fields, combined with OR. An empty query matches everything.
func SearchFilter(query string, fields ...string) bson.M {
	if query == "" {
		return bson.M{}
	}
	pattern := regexp.QuoteMeta(query)
	or := make(bson.A, 0, len(fields))
	for _, field := range fields {
		or = append(or, bson.M{field: bson.M{"$regex": pattern, "$options": "i"}})
	}
	return bson.M{"$or": or}
}

// Assembler executes view specs against a database. It raises no domain
// errors of its own: an empty result set is a valid outcome, and callers
// decide whether that means "not found".
type Assembler struct {
	db *mongo.Database
}

// NewAssembler creates an assembler bound to a database.
func NewAssembler(db *mongo.Database) *Assembler {
	return &Assembler{db: db}
}

// Assemble runs the spec on the named collection and decodes every result
// document into results, which must be a pointer to a slice.
func (a *Assembler) Assemble(ctx context.Context, collection string, spec Spec, results interface{}) error {
	cursor, err := a.db.Collection(collection).Aggregate(ctx, spec.Pipeline())
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	return cursor.All(ctx, results)
}

// AssembleOne runs the spec and decodes the first result document into
// result. It reports found=false when the pipeline produced no documents.
func (a *Assembler) AssembleOne(ctx context.Context, collection string, spec Spec, result interface{}) (bool, error) {
	cursor, err := a.db.Collection(collection).Aggregate(ctx, spec.Pipeline())
	if err != nil {
		return false, err
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		if err := cursor.Err(); err != nil {
			return false, err
		}
		return false, nil
	}
	if err := cursor.Decode(result); err != nil {
		return false, err
	}
	return true, nil
}
