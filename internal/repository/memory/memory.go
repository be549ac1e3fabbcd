// Package memory provides in-process twins of the MongoDB repositories.
// They are test doubles for service and handler tests and are never wired
// into the server. Email uniqueness is enforced the way the unique indexes
// do it.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/harentsoaR/clinic-api/internal/models"
	"github.com/harentsoaR/clinic-api/internal/query"
	"github.com/harentsoaR/clinic-api/internal/store"
)

func duplicateKey() error {
	return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key error"}}}
}

// applySet overlays a $set document onto doc through its bson form.
func applySet[T any](doc T, set bson.M) (T, error) {
	var out T
	raw, err := bson.Marshal(doc)
	if err != nil {
		return out, err
	}
	m := bson.M{}
	if err := bson.Unmarshal(raw, &m); err != nil {
		return out, err
	}
	for k, v := range set {
		m[k] = v
	}
	raw, err = bson.Marshal(m)
	if err != nil {
		return out, err
	}
	err = bson.Unmarshal(raw, &out)
	return out, err
}

type Users struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]models.User
}

func NewUsers() *Users {
	return &Users{users: make(map[primitive.ObjectID]models.User)}
}

func (r *Users) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

func (r *Users) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, store.ErrNoDocument
	}
	return &u, nil
}

func (r *Users) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, store.ErrNoDocument
}

func (r *Users) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return duplicateKey()
		}
	}
	u.ID = primitive.NewObjectID()
	r.users[u.ID] = *u
	return nil
}

func (r *Users) Update(_ context.Context, id primitive.ObjectID, upd models.UserUpdate, now time.Time) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, store.ErrNoDocument
	}
	for otherID, other := range r.users {
		if otherID != id && other.Email == upd.Email {
			return nil, duplicateKey()
		}
	}
	updated, err := applySet(u, upd.SetFields(now))
	if err != nil {
		return nil, err
	}
	r.users[id] = updated
	return &updated, nil
}

func (r *Users) Delete(_ context.Context, id primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return false, nil
	}
	delete(r.users, id)
	return true, nil
}

type Patients struct {
	mu       sync.Mutex
	patients map[primitive.ObjectID]models.Patient
}

func NewPatients() *Patients {
	return &Patients{patients: make(map[primitive.ObjectID]models.Patient)}
}

func (r *Patients) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.patients)
}

func (r *Patients) FindByID(_ context.Context, id primitive.ObjectID) (*models.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.patients[id]
	if !ok {
		return nil, store.ErrNoDocument
	}
	return &p, nil
}

func (r *Patients) FindByEmail(_ context.Context, email string) (*models.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.patients {
		if p.Email == email {
			return &p, nil
		}
	}
	return nil, store.ErrNoDocument
}

func (r *Patients) Create(_ context.Context, p *models.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.patients {
		if existing.Email == p.Email {
			return duplicateKey()
		}
	}
	p.ID = primitive.NewObjectID()
	r.patients[p.ID] = *p
	return nil
}

func (r *Patients) Update(_ context.Context, id primitive.ObjectID, upd models.PatientUpdate, now time.Time) (*models.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.patients[id]
	if !ok {
		return nil, store.ErrNoDocument
	}
	if upd.Email != nil {
		for otherID, other := range r.patients {
			if otherID != id && other.Email == *upd.Email {
				return nil, duplicateKey()
			}
		}
	}
	updated, err := applySet(p, upd.SetFields(now))
	if err != nil {
		return nil, err
	}
	r.patients[id] = updated
	return &updated, nil
}

func (r *Patients) Delete(_ context.Context, id primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.patients[id]; !ok {
		return false, nil
	}
	delete(r.patients, id)
	return true, nil
}

func (r *Patients) List(_ context.Context, plan query.Plan) ([]models.Patient, error) {
	matched := r.matching(plan)
	sort.SliceStable(matched, func(i, j int) bool {
		c := compare(matched[i], matched[j], plan.SortKey)
		if c == 0 {
			c = strings.Compare(matched[i].ID.Hex(), matched[j].ID.Hex())
		}
		if plan.SortOrder < 0 {
			return c > 0
		}
		return c < 0
	})

	items := make([]models.Patient, 0, plan.Limit)
	for i := plan.Skip; i < int64(len(matched)) && int64(len(items)) < plan.Limit; i++ {
		items = append(items, matched[i])
	}
	return items, nil
}

func (r *Patients) Count(_ context.Context, plan query.Plan) (int64, error) {
	return int64(len(r.matching(plan))), nil
}

func (r *Patients) matching(plan query.Plan) []models.Patient {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Patient, 0, len(r.patients))
	for _, p := range r.patients {
		fields := map[string]string{
			"firstName": p.FirstName,
			"lastName":  p.LastName,
			"email":     p.Email,
			"phone":     p.Phone,
		}
		if plan.Matches(fields) {
			out = append(out, p)
		}
	}
	return out
}

func compare(a, b models.Patient, key string) int {
	switch key {
	case "firstName":
		return strings.Compare(a.FirstName, b.FirstName)
	case "lastName":
		return strings.Compare(a.LastName, b.LastName)
	case "email":
		return strings.Compare(a.Email, b.Email)
	case "dateOfBirth":
		return a.DateOfBirth.Compare(b.DateOfBirth)
	case "updatedAt":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}
