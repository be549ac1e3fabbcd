// Package repository holds the MongoDB-backed user and patient repositories.
package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/clinic-api/internal/models"
	"github.com/harentsoaR/clinic-api/internal/store"
)

const (
	UsersCollection    = "users"
	PatientsCollection = "patients"
)

type Users struct {
	coll *store.Collection[models.User]
}

func NewUsers(s *store.Store) *Users {
	return &Users{coll: store.NewCollection[models.User](s, UsersCollection)}
}

func (r *Users) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.coll.FindOne(ctx, bson.M{"_id": id})
}

func (r *Users) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.coll.FindOne(ctx, bson.M{"email": email})
}

func (r *Users) Create(ctx context.Context, u *models.User) error {
	id, err := r.coll.InsertOne(ctx, u)
	if err != nil {
		return err
	}
	u.ID = id
	return nil
}

func (r *Users) Update(ctx context.Context, id primitive.ObjectID, upd models.UserUpdate, now time.Time) (*models.User, error) {
	return r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": upd.SetFields(now)})
}

func (r *Users) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	return r.coll.DeleteOne(ctx, bson.M{"_id": id})
}
