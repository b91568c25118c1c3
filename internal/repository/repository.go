package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"tour-app/internal/models"
	"tour-app/internal/query"
	"tour-app/internal/utils"
)

// Entity is the capability set the generic repository needs from a model.
type Entity interface {
	CollectionName() string
}

type defaulter interface {
	ApplyDefaults()
}

// Populate describes a $lookup join resolved on single-document reads.
type Populate struct {
	From         string
	LocalField   string
	ForeignField string
	As           string
}

type Repository[T Entity] struct {
	col *mongo.Collection
}

func New[T Entity](db *mongo.Database) *Repository[T] {
	var zero T
	return &Repository[T]{col: db.Collection(zero.CollectionName())}
}

func (r *Repository[T]) Collection() *mongo.Collection { return r.col }

// FindAll applies the parsed query features on top of a fixed base filter.
// An empty result decodes to an empty slice, never an error.
func (r *Repository[T]) FindAll(ctx context.Context, base bson.M, f query.Features) ([]T, error) {
	filter := f.Filter()
	for k, v := range base {
		filter[k] = v
	}

	cursor, err := r.col.Find(ctx, filter, f.Options())
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	docs := make([]T, 0)
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// All returns every document in the collection, unpaginated. Batch tooling
// only.
func (r *Repository[T]) All(ctx context.Context) ([]T, error) {
	cursor, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	docs := make([]T, 0)
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *Repository[T]) FindByID(ctx context.Context, id string, populate *Populate) (*T, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrInvalidID
	}

	var doc T
	if populate == nil {
		err = r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		if err != nil {
			return nil, err
		}
		return &doc, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": oid}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         populate.From,
			"localField":   populate.LocalField,
			"foreignField": populate.ForeignField,
			"as":           populate.As,
		}}},
	}
	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		return nil, models.ErrNotFound
	}
	if err := cursor.Decode(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Create validates, applies model defaults and inserts, then reads the
// stored document back so the caller sees the generated identifier.
func (r *Repository[T]) Create(ctx context.Context, doc *T) error {
	if d, ok := any(doc).(defaulter); ok {
		d.ApplyDefaults()
	}
	if err := utils.GetValidator().Struct(doc); err != nil {
		return err
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return err
	}
	return r.col.FindOne(ctx, bson.M{"_id": res.InsertedID}).Decode(doc)
}

func (r *Repository[T]) InsertMany(ctx context.Context, docs []T) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}
	payload := make([]interface{}, 0, len(docs))
	for i := range docs {
		if d, ok := any(&docs[i]).(defaulter); ok {
			d.ApplyDefaults()
		}
		payload = append(payload, docs[i])
	}
	res, err := r.col.InsertMany(ctx, payload)
	if err != nil {
		return 0, err
	}
	return len(res.InsertedIDs), nil
}

// Update merges the raw JSON patch over the stored document, re-runs the
// field validators on the result and replaces the record. Identifier keys
// in the patch are ignored.
func (r *Repository[T]) Update(ctx context.Context, id string, patch []byte) (*T, error) {
	doc, err := r.FindByID(ctx, id, nil)
	if err != nil {
		return nil, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(patch, &fields); err != nil {
		return nil, fmt.Errorf("%w: invalid body", models.ErrBadRequest)
	}
	delete(fields, "id")
	delete(fields, "_id")
	merged, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(merged, doc); err != nil {
		return nil, fmt.Errorf("%w: invalid body", models.ErrBadRequest)
	}

	if err := utils.GetValidator().Struct(doc); err != nil {
		return nil, err
	}

	oid, _ := primitive.ObjectIDFromHex(id)
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": oid}, doc)
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, models.ErrNotFound
	}
	return doc, nil
}

// Patch sets individual fields without touching the rest of the document.
// The image-ingestion flow and batch backfills go through here.
func (r *Repository[T]) Patch(ctx context.Context, id string, set bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.ErrInvalidID
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *Repository[T]) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.ErrInvalidID
	}
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *Repository[T]) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
