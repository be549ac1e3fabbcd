package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

type Patient struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName      string             `bson:"firstName" json:"firstName"`
	LastName       string             `bson:"lastName" json:"lastName"`
	DateOfBirth    time.Time          `bson:"dateOfBirth" json:"dateOfBirth"`
	Gender         Gender             `bson:"gender" json:"gender"`
	Phone          string             `bson:"phone" json:"phone"`
	Email          string             `bson:"email" json:"email"`
	Address        string             `bson:"address" json:"address"`
	MedicalHistory string             `bson:"medicalHistory,omitempty" json:"medicalHistory,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PatientUpdate holds the fields of a partial update. Nil fields are left
// untouched in the stored record.
type PatientUpdate struct {
	FirstName      *string
	LastName       *string
	DateOfBirth    *time.Time
	Gender         *Gender
	Phone          *string
	Email          *string
	Address        *string
	MedicalHistory *string
}

// SetFields merges the supplied fields into a $set document. updatedAt is
// always refreshed.
func (u PatientUpdate) SetFields(now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	if u.FirstName != nil {
		set["firstName"] = *u.FirstName
	}
	if u.LastName != nil {
		set["lastName"] = *u.LastName
	}
	if u.DateOfBirth != nil {
		set["dateOfBirth"] = *u.DateOfBirth
	}
	if u.Gender != nil {
		set["gender"] = *u.Gender
	}
	if u.Phone != nil {
		set["phone"] = *u.Phone
	}
	if u.Email != nil {
		set["email"] = *u.Email
	}
	if u.Address != nil {
		set["address"] = *u.Address
	}
	if u.MedicalHistory != nil {
		set["medicalHistory"] = *u.MedicalHistory
	}
	return set
}
