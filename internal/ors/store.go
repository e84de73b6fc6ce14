package ors

import "context"

// Filter narrows List results. Zero-valued fields impose no constraint.
type Filter struct {
	// Vehicle matches as a case-insensitive substring.
	Vehicle string
	// InspectorID matches the owning user id exactly.
	InspectorID string
	// TrafficScore matches the overall grade letter exactly.
	TrafficScore string
}

// Store describes persistence for inspection records. Implementations return
// records with the inspector reference already expanded via an explicit join,
// ordered by creation time descending where multiple records are returned.
type Store interface {
	Create(ctx context.Context, rec Record) (Record, error)
	List(ctx context.Context, f Filter) ([]Record, error)
	Find(ctx context.Context, id string) (Record, error)
	Update(ctx context.Context, rec Record) (Record, error)
	Delete(ctx context.Context, id string) error
}
