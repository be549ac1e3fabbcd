package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"` // bcrypt digest, never serialized
	Role      Role               `bson:"role" json:"role"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// UserUpdate is a profile change. Name and Email are always replaced, Role
// only when supplied.
type UserUpdate struct {
	Name  string
	Email string
	Role  *Role
}

// SetFields renders the update as a $set document stamped with now.
func (u UserUpdate) SetFields(now time.Time) bson.M {
	set := bson.M{
		"name":      u.Name,
		"email":     u.Email,
		"updatedAt": now,
	}
	if u.Role != nil {
		set["role"] = *u.Role
	}
	return set
}
