package ors

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"roadward.org/internal/identity"
	"roadward.org/internal/ids"
)

// scorePattern is the write-time contract for roadworthiness scores: an
// integer with an optional trailing percent sign.
var scorePattern = regexp.MustCompile(`^\d+%?$`)

// CreateInput carries the caller-supplied fields of a new record. The
// inspector is never part of the input; it is resolved from the acting user.
type CreateInput struct {
	Vehicle             string     `json:"vehicle"`
	RoadWorthinessScore string     `json:"roadWorthinessScore"`
	OverallTrafficScore string     `json:"overallTrafficScore"`
	ActionRequired      string     `json:"actionRequired"`
	Documents           []Document `json:"documents"`
}

// UpdateInput is a partial patch: nil fields are left untouched on the stored
// record, present fields replace the stored value wholesale.
type UpdateInput struct {
	Vehicle             *string     `json:"vehicle"`
	RoadWorthinessScore *string     `json:"roadWorthinessScore"`
	OverallTrafficScore *string     `json:"overallTrafficScore"`
	ActionRequired      *string     `json:"actionRequired"`
	Documents           *[]Document `json:"documents"`
}

// Service wraps record lifecycle rules on top of a Store. The coarse
// role/operation check (Allowed) is applied by the caller before any mutation
// reaches the service; the finer ownership check happens here, against the
// stored record.
type Service struct {
	store Store
	now   func() time.Time
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs a Service backed by the given store.
func NewService(store Store, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, errors.New("ors store is required")
	}
	s := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Create persists a new record owned by the acting user. Documents are stored
// verbatim; a missing documents array defaults to empty.
func (s *Service) Create(ctx context.Context, in CreateInput, owner identity.User) (Record, error) {
	if err := validateCreate(in); err != nil {
		return Record{}, err
	}
	now := s.now().UTC()
	rec := Record{
		ID:                  ids.New(),
		Vehicle:             strings.TrimSpace(in.Vehicle),
		RoadWorthinessScore: in.RoadWorthinessScore,
		OverallTrafficScore: in.OverallTrafficScore,
		ActionRequired:      in.ActionRequired,
		Inspector:           Inspector{ID: owner.ID, Username: owner.Username, Email: owner.Email, Role: owner.Role},
		Documents:           normalizeDocuments(in.Documents),
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	return s.store.Create(ctx, rec)
}

// List returns records matching the filter, newest first. An empty filter
// returns the full corpus.
func (s *Service) List(ctx context.Context, f Filter) ([]Record, error) {
	f.Vehicle = strings.TrimSpace(f.Vehicle)
	f.InspectorID = strings.TrimSpace(f.InspectorID)
	f.TrafficScore = strings.TrimSpace(f.TrafficScore)
	return s.store.List(ctx, f)
}

// Get loads one record by id.
func (s *Service) Get(ctx context.Context, id string) (Record, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Record{}, ErrNotFound
	}
	return s.store.Find(ctx, id)
}

// Update merges the patch into the stored record after the ownership check.
// Concurrent updates are last-write-wins; there is no version check.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput, actor identity.User) (Record, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return Record{}, err
	}
	if !Editable(rec.Inspector.ID, actor) {
		return Record{}, fmt.Errorf("%w: not authorized to update this record", ErrForbidden)
	}
	if err := validateUpdate(in); err != nil {
		return Record{}, err
	}
	if in.Vehicle != nil {
		rec.Vehicle = strings.TrimSpace(*in.Vehicle)
	}
	if in.RoadWorthinessScore != nil {
		rec.RoadWorthinessScore = *in.RoadWorthinessScore
	}
	if in.OverallTrafficScore != nil {
		rec.OverallTrafficScore = *in.OverallTrafficScore
	}
	if in.ActionRequired != nil {
		rec.ActionRequired = *in.ActionRequired
	}
	if in.Documents != nil {
		rec.Documents = normalizeDocuments(*in.Documents)
	}
	rec.UpdatedAt = s.now().UTC()
	return s.store.Update(ctx, rec)
}

// Delete permanently removes the record after the ownership check. Deleting
// an absent id fails with ErrNotFound, so a second delete is not idempotent
// in the formal sense even though the end state is the same.
func (s *Service) Delete(ctx context.Context, id string, actor identity.User) error {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !Editable(rec.Inspector.ID, actor) {
		return fmt.Errorf("%w: not authorized to delete this record", ErrForbidden)
	}
	return s.store.Delete(ctx, rec.ID)
}

func validateCreate(in CreateInput) error {
	if strings.TrimSpace(in.Vehicle) == "" {
		return fmt.Errorf("%w: vehicle name is required", ErrInvalidInput)
	}
	if !scorePattern.MatchString(in.RoadWorthinessScore) {
		return fmt.Errorf("%w: score must be a number with optional %%", ErrInvalidInput)
	}
	if !ValidGrade(in.OverallTrafficScore) {
		return fmt.Errorf("%w: overall traffic score must be one of A, B, C, D, F", ErrInvalidInput)
	}
	if strings.TrimSpace(in.ActionRequired) == "" {
		return fmt.Errorf("%w: action required is required", ErrInvalidInput)
	}
	return nil
}

func validateUpdate(in UpdateInput) error {
	if in.Vehicle != nil && strings.TrimSpace(*in.Vehicle) == "" {
		return fmt.Errorf("%w: vehicle name is required", ErrInvalidInput)
	}
	if in.RoadWorthinessScore != nil && !scorePattern.MatchString(*in.RoadWorthinessScore) {
		return fmt.Errorf("%w: score must be a number with optional %%", ErrInvalidInput)
	}
	if in.OverallTrafficScore != nil && !ValidGrade(*in.OverallTrafficScore) {
		return fmt.Errorf("%w: overall traffic score must be one of A, B, C, D, F", ErrInvalidInput)
	}
	if in.ActionRequired != nil && strings.TrimSpace(*in.ActionRequired) == "" {
		return fmt.Errorf("%w: action required is required", ErrInvalidInput)
	}
	return nil
}

// normalizeDocuments replaces nil slices so stored documents always marshal
// as arrays, preserving submission order.
func normalizeDocuments(docs []Document) []Document {
	if docs == nil {
		return []Document{}
	}
	out := make([]Document, len(docs))
	for i, d := range docs {
		if d.TextDoc == nil {
			d.TextDoc = []TextDoc{}
		}
		if d.Attachments == nil {
			d.Attachments = []string{}
		}
		out[i] = d
	}
	return out
}
