package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"github.com/harentsoaR/clinic-api/internal/models"
	"github.com/harentsoaR/clinic-api/internal/query"
	"github.com/harentsoaR/clinic-api/internal/store"
)

type PatientRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Patient, error)
	FindByEmail(ctx context.Context, email string) (*models.Patient, error)
	Create(ctx context.Context, p *models.Patient) error
	Update(ctx context.Context, id primitive.ObjectID, upd models.PatientUpdate, now time.Time) (*models.Patient, error)
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
	List(ctx context.Context, plan query.Plan) ([]models.Patient, error)
	Count(ctx context.Context, plan query.Plan) (int64, error)
}

type CreatePatientInput struct {
	FirstName      string `json:"firstName" validate:"required,min=2,max=80"`
	LastName       string `json:"lastName" validate:"required,min=2,max=80"`
	DateOfBirth    string `json:"dateOfBirth" validate:"required"`
	Gender         string `json:"gender" validate:"required,oneof=male female other"`
	Phone          string `json:"phone" validate:"required,min=7,max=20"`
	Email          string `json:"email" validate:"required,email"`
	Address        string `json:"address" validate:"required,max=300"`
	MedicalHistory string `json:"medicalHistory" validate:"max=5000"`
}

// UpdatePatientInput carries only the fields the client sent.
type UpdatePatientInput struct {
	FirstName      *string `json:"firstName" validate:"omitempty,min=2,max=80"`
	LastName       *string `json:"lastName" validate:"omitempty,min=2,max=80"`
	DateOfBirth    *string `json:"dateOfBirth" validate:"omitempty"`
	Gender         *string `json:"gender" validate:"omitempty,oneof=male female other"`
	Phone          *string `json:"phone" validate:"omitempty,min=7,max=20"`
	Email          *string `json:"email" validate:"omitempty,email"`
	Address        *string `json:"address" validate:"omitempty,max=300"`
	MedicalHistory *string `json:"medicalHistory" validate:"omitempty,max=5000"`
}

type PatientPage struct {
	Items      []models.Patient `json:"items"`
	Page       int64            `json:"page"`
	Limit      int64            `json:"limit"`
	Total      int64            `json:"total"`
	TotalPages int64            `json:"totalPages"`
}

type PatientService struct {
	repo     PatientRepository
	validate *validator.Validate
	log      zerolog.Logger
	now      func() time.Time
}

func NewPatientService(repo PatientRepository, validate *validator.Validate, log zerolog.Logger) *PatientService {
	return &PatientService{
		repo:     repo,
		validate: validate,
		log:      log.With().Str("service", "patients").Logger(),
		now:      time.Now,
	}
}

// timestamp is millisecond precision, matching what MongoDB stores.
func (s *PatientService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func (s *PatientService) Create(ctx context.Context, in CreatePatientInput) (*models.Patient, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}
	dob, ok := parseDate(in.DateOfBirth)
	if !ok {
		return nil, fieldError("dateOfBirth", "dateOfBirth must be a valid ISO 8601 date")
	}

	if _, err := s.repo.FindByEmail(ctx, in.Email); err == nil {
		return nil, newError(KindDuplicateEmail, "Patient email already exists")
	} else if !errors.Is(err, store.ErrNoDocument) {
		s.log.Error().Err(err).Str("method", "Create").Msg("email lookup failed")
		return nil, err
	}

	now := s.timestamp()
	p := &models.Patient{
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		DateOfBirth:    dob,
		Gender:         models.Gender(in.Gender),
		Phone:          in.Phone,
		Email:          in.Email,
		Address:        in.Address,
		MedicalHistory: in.MedicalHistory,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		if store.IsDuplicateKey(err) {
			return nil, newError(KindDuplicateEmail, "Patient email already exists")
		}
		s.log.Error().Err(err).Str("method", "Create").Msg("insert failed")
		return nil, err
	}
	s.log.Info().Str("id", p.ID.Hex()).Msg("patient created")
	return p, nil
}

// List runs the filtered count and the page fetch concurrently. Under
// concurrent writes Total may briefly disagree with Items.
func (s *PatientService) List(ctx context.Context, params query.ListParams) (*PatientPage, error) {
	plan, err := query.Build(params)
	if err != nil {
		var sfe *query.SortFieldError
		if errors.As(err, &sfe) {
			return nil, fieldError("sortBy", sfe.Error())
		}
		return nil, err
	}

	var (
		items []models.Patient
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.repo.List(gctx, plan)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.repo.Count(gctx, plan)
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Error().Err(err).Str("method", "List").Msg("list failed")
		return nil, err
	}
	if items == nil {
		items = make([]models.Patient, 0)
	}

	return &PatientPage{
		Items:      items,
		Page:       plan.Page,
		Limit:      plan.Limit,
		Total:      total,
		TotalPages: plan.TotalPages(total),
	}, nil
}

func (s *PatientService) GetByID(ctx context.Context, id string) (*models.Patient, error) {
	oid, err := parseObjectID(id, "Invalid patient id")
	if err != nil {
		return nil, err
	}
	p, err := s.repo.FindByID(ctx, oid)
	if err != nil {
		if errors.Is(err, store.ErrNoDocument) {
			return nil, newError(KindNotFound, "Patient not found")
		}
		s.log.Error().Err(err).Str("method", "GetByID").Str("id", id).Msg("lookup failed")
		return nil, err
	}
	return p, nil
}

func (s *PatientService) Update(ctx context.Context, id string, in UpdatePatientInput) (*models.Patient, error) {
	oid, err := parseObjectID(id, "Invalid patient id")
	if err != nil {
		return nil, err
	}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		in.Email = &email
	}
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}

	upd := models.PatientUpdate{
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Phone:          in.Phone,
		Email:          in.Email,
		Address:        in.Address,
		MedicalHistory: in.MedicalHistory,
	}
	if in.DateOfBirth != nil {
		dob, ok := parseDate(*in.DateOfBirth)
		if !ok {
			return nil, fieldError("dateOfBirth", "dateOfBirth must be a valid ISO 8601 date")
		}
		upd.DateOfBirth = &dob
	}
	if in.Gender != nil {
		g := models.Gender(*in.Gender)
		upd.Gender = &g
	}

	if upd.Email != nil {
		if other, err := s.repo.FindByEmail(ctx, *upd.Email); err == nil && other.ID != oid {
			return nil, newError(KindDuplicateEmail, "Patient email already exists")
		} else if err != nil && !errors.Is(err, store.ErrNoDocument) {
			return nil, err
		}
	}

	p, err := s.repo.Update(ctx, oid, upd, s.timestamp())
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNoDocument):
			return nil, newError(KindNotFound, "Patient not found")
		case store.IsDuplicateKey(err):
			return nil, newError(KindDuplicateEmail, "Patient email already exists")
		}
		s.log.Error().Err(err).Str("method", "Update").Str("id", id).Msg("update failed")
		return nil, err
	}
	return p, nil
}

func (s *PatientService) Remove(ctx context.Context, id string) error {
	oid, err := parseObjectID(id, "Invalid patient id")
	if err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, oid)
	if err != nil {
		s.log.Error().Err(err).Str("method", "Remove").Str("id", id).Msg("delete failed")
		return err
	}
	if !deleted {
		return newError(KindNotFound, "Patient not found")
	}
	s.log.Info().Str("id", id).Msg("patient deleted")
	return nil
}
