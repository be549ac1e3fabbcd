package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FindOptions narrows a Find call. Zero values mean no sort, skip or limit.
type FindOptions struct {
	Sort  bson.D
	Skip  int64
	Limit int64
}

// Collection is a handle on one named collection decoding into T. It does
// no validation of its own.
type Collection[T any] struct {
	store *Store
	name  string
}

func NewCollection[T any](s *Store, name string) *Collection[T] {
	return &Collection[T]{store: s, name: name}
}

func (c *Collection[T]) Name() string {
	return c.name
}

func (c *Collection[T]) coll() (*mongo.Collection, error) {
	db, err := c.store.database()
	if err != nil {
		return nil, err
	}
	return db.Collection(c.name), nil
}

func (c *Collection[T]) FindOne(ctx context.Context, filter interface{}) (*T, error) {
	coll, err := c.coll()
	if err != nil {
		return nil, err
	}
	var doc T
	if err := coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNoDocument
		}
		return nil, err
	}
	return &doc, nil
}

func (c *Collection[T]) Find(ctx context.Context, filter interface{}, opts FindOptions) ([]T, error) {
	coll, err := c.coll()
	if err != nil {
		return nil, err
	}
	findOptions := options.Find()
	if len(opts.Sort) > 0 {
		findOptions.SetSort(opts.Sort)
	}
	if opts.Skip > 0 {
		findOptions.SetSkip(opts.Skip)
	}
	if opts.Limit > 0 {
		findOptions.SetLimit(opts.Limit)
	}

	cursor, err := coll.Find(ctx, filter, findOptions)
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

func (c *Collection[T]) Count(ctx context.Context, filter interface{}) (int64, error) {
	coll, err := c.coll()
	if err != nil {
		return 0, err
	}
	return coll.CountDocuments(ctx, filter)
}

// InsertOne stores doc and returns the generated id.
func (c *Collection[T]) InsertOne(ctx context.Context, doc *T) (primitive.ObjectID, error) {
	coll, err := c.coll()
	if err != nil {
		return primitive.NilObjectID, err
	}
	res, err := coll.InsertOne(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("store: inserted id is not an ObjectID")
	}
	return id, nil
}

// UpdateOne applies update to the first match and returns the document as
// it is after the update.
func (c *Collection[T]) UpdateOne(ctx context.Context, filter, update interface{}) (*T, error) {
	coll, err := c.coll()
	if err != nil {
		return nil, err
	}
	var doc T
	err = coll.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNoDocument
		}
		return nil, err
	}
	return &doc, nil
}

// DeleteOne removes the first match, reporting whether anything was deleted.
func (c *Collection[T]) DeleteOne(ctx context.Context, filter interface{}) (bool, error) {
	coll, err := c.coll()
	if err != nil {
		return false, err
	}
	res, err := coll.DeleteOne(ctx, filter)
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// IsDuplicateKey reports a unique index violation.
func IsDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
