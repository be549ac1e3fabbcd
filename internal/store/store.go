// Package store is a thin typed layer over the MongoDB driver. A Store is
// constructed disconnected and every collection call fails with
// ErrNotConnected until Connect has succeeded.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotConnected = errors.New("store: not connected")
	ErrNoDocument   = errors.New("store: no matching document")
)

const connectTimeout = 10 * time.Second

type Store struct {
	mu     sync.RWMutex
	client *mongo.Client
	db     *mongo.Database
}

func New() *Store {
	return &Store{}
}

// Connect dials uri, pings the primary and binds the named database.
func (s *Store) Connect(ctx context.Context, uri, dbName string) error {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("ping: %w", err)
	}

	s.mu.Lock()
	s.client = client
	s.db = client.Database(dbName)
	s.mu.Unlock()
	return nil
}

func (s *Store) Disconnect(ctx context.Context) error {
	s.mu.Lock()
	client := s.client
	s.client, s.db = nil, nil
	s.mu.Unlock()

	if client == nil {
		return nil
	}
	return client.Disconnect(ctx)
}

func (s *Store) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db != nil
}

// Ping checks the live connection.
func (s *Store) Ping(ctx context.Context) error {
	s.mu.RLock()
	client := s.client
	s.mu.RUnlock()
	if client == nil {
		return ErrNotConnected
	}
	return client.Ping(ctx, nil)
}

// EnsureUniqueIndex creates a unique ascending index on field if missing.
func (s *Store) EnsureUniqueIndex(ctx context.Context, collection, field string) error {
	db, err := s.database()
	if err != nil {
		return err
	}
	_, err = db.Collection(collection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: field, Value: 1}},
		Options: options.Index().SetUnique(true).SetName(field + "_unique"),
	})
	return err
}

func (s *Store) database() (*mongo.Database, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, ErrNotConnected
	}
	return s.db, nil
}
