package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/clinic-api/internal/models"
	"github.com/harentsoaR/clinic-api/internal/query"
	"github.com/harentsoaR/clinic-api/internal/store"
)

type Patients struct {
	coll *store.Collection[models.Patient]
}

func NewPatients(s *store.Store) *Patients {
	return &Patients{coll: store.NewCollection[models.Patient](s, PatientsCollection)}
}

func (r *Patients) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Patient, error) {
	return r.coll.FindOne(ctx, bson.M{"_id": id})
}

func (r *Patients) FindByEmail(ctx context.Context, email string) (*models.Patient, error) {
	return r.coll.FindOne(ctx, bson.M{"email": email})
}

func (r *Patients) Create(ctx context.Context, p *models.Patient) error {
	id, err := r.coll.InsertOne(ctx, p)
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

func (r *Patients) Update(ctx context.Context, id primitive.ObjectID, upd models.PatientUpdate, now time.Time) (*models.Patient, error) {
	return r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": upd.SetFields(now)})
}

func (r *Patients) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	return r.coll.DeleteOne(ctx, bson.M{"_id": id})
}

func (r *Patients) List(ctx context.Context, plan query.Plan) ([]models.Patient, error) {
	return r.coll.Find(ctx, plan.Filter(), store.FindOptions{
		Sort:  plan.Sort(),
		Skip:  plan.Skip,
		Limit: plan.Limit,
	})
}

func (r *Patients) Count(ctx context.Context, plan query.Plan) (int64, error) {
	return r.coll.Count(ctx, plan.Filter())
}

// EnsureIndexes creates the unique email indexes both collections rely on.
func EnsureIndexes(ctx context.Context, s *store.Store) error {
	for _, coll := range []string{UsersCollection, PatientsCollection} {
		if err := s.EnsureUniqueIndex(ctx, coll, "email"); err != nil {
			return err
		}
	}
	return nil
}
