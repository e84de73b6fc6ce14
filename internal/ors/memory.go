package ors

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"roadward.org/internal/identity"
)

// MemoryStore is an in-memory Store used by tests and DSN-less development
// runs. When constructed with a user store it refreshes the inspector
// expansion on every read, mirroring the join the postgres store performs.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
	users   identity.Store
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory store. users may be nil, in which
// case the expansion captured at write time is returned as-is.
func NewMemoryStore(users identity.Store) *MemoryStore {
	return &MemoryStore{records: make(map[string]Record), users: users}
}

func (s *MemoryStore) Create(ctx context.Context, rec Record) (Record, error) {
	if s.users != nil {
		if _, err := s.users.Find(ctx, rec.Inspector.ID); err != nil {
			if errors.Is(err, identity.ErrNotFound) {
				return Record{}, ErrNotFound
			}
			return Record{}, err
		}
	}
	s.mu.Lock()
	s.records[rec.ID] = cloneRecord(rec)
	s.mu.Unlock()
	return s.expand(ctx, rec)
}

func (s *MemoryStore) List(ctx context.Context, f Filter) ([]Record, error) {
	s.mu.RLock()
	matched := make([]Record, 0, len(s.records))
	for _, rec := range s.records {
		if f.Vehicle != "" && !strings.Contains(strings.ToLower(rec.Vehicle), strings.ToLower(f.Vehicle)) {
			continue
		}
		if f.InspectorID != "" && rec.Inspector.ID != f.InspectorID {
			continue
		}
		if f.TrafficScore != "" && rec.OverallTrafficScore != f.TrafficScore {
			continue
		}
		matched = append(matched, cloneRecord(rec))
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})
	for i := range matched {
		expanded, err := s.expand(ctx, matched[i])
		if err != nil {
			return nil, err
		}
		matched[i] = expanded
	}
	return matched, nil
}

func (s *MemoryStore) Find(ctx context.Context, id string) (Record, error) {
	s.mu.RLock()
	rec, ok := s.records[id]
	s.mu.RUnlock()
	if !ok {
		return Record{}, ErrNotFound
	}
	return s.expand(ctx, cloneRecord(rec))
}

func (s *MemoryStore) Update(ctx context.Context, rec Record) (Record, error) {
	s.mu.Lock()
	if _, ok := s.records[rec.ID]; !ok {
		s.mu.Unlock()
		return Record{}, ErrNotFound
	}
	s.records[rec.ID] = cloneRecord(rec)
	s.mu.Unlock()
	return s.expand(ctx, rec)
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return ErrNotFound
	}
	delete(s.records, id)
	return nil
}

func (s *MemoryStore) expand(ctx context.Context, rec Record) (Record, error) {
	if s.users == nil {
		return rec, nil
	}
	user, err := s.users.Find(ctx, rec.Inspector.ID)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			// The owning user disappeared after creation; serve the snapshot
			// captured at write time rather than failing the read.
			return rec, nil
		}
		return Record{}, err
	}
	rec.Inspector = Inspector{ID: user.ID, Username: user.Username, Email: user.Email, Role: user.Role}
	return rec, nil
}

func cloneRecord(rec Record) Record {
	docs := make([]Document, len(rec.Documents))
	for i, d := range rec.Documents {
		docs[i] = Document{
			TextDoc:     append([]TextDoc(nil), d.TextDoc...),
			Attachments: append([]string(nil), d.Attachments...),
		}
	}
	rec.Documents = docs
	return rec
}
