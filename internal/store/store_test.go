package store

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

type doc struct {
	Name string `bson:"name"`
}

func TestCollection_NotConnected(t *testing.T) {
	ctx := context.Background()
	c := NewCollection[doc](New(), "docs")

	if _, err := c.FindOne(ctx, bson.M{}); !errors.Is(err, ErrNotConnected) {
		t.Errorf("FindOne: expected ErrNotConnected, got %v", err)
	}
	if _, err := c.Find(ctx, bson.M{}, FindOptions{Limit: 1}); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Find: expected ErrNotConnected, got %v", err)
	}
	if _, err := c.Count(ctx, bson.M{}); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Count: expected ErrNotConnected, got %v", err)
	}
	if _, err := c.InsertOne(ctx, &doc{Name: "x"}); !errors.Is(err, ErrNotConnected) {
		t.Errorf("InsertOne: expected ErrNotConnected, got %v", err)
	}
	if _, err := c.UpdateOne(ctx, bson.M{}, bson.M{"$set": bson.M{"name": "y"}}); !errors.Is(err, ErrNotConnected) {
		t.Errorf("UpdateOne: expected ErrNotConnected, got %v", err)
	}
	if _, err := c.DeleteOne(ctx, bson.M{}); !errors.Is(err, ErrNotConnected) {
		t.Errorf("DeleteOne: expected ErrNotConnected, got %v", err)
	}
}

func TestStore_LifecycleWithoutConnect(t *testing.T) {
	s := New()
	if s.Connected() {
		t.Fatal("new store must not report connected")
	}
	if err := s.Ping(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
	if err := s.EnsureUniqueIndex(context.Background(), "docs", "name"); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
	if err := s.Disconnect(context.Background()); err != nil {
		t.Fatalf("disconnect on idle store: %v", err)
	}
}
