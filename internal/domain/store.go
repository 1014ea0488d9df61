package domain

import "context"

// DisasterFilter narrows a disaster listing.
type DisasterFilter struct {
	Tag     string
	OwnerID string
	Limit   int
	Offset  int
}

// DisasterStore owns disaster record persistence.
//
// Lookups for missing ids return [ErrNotFound]; infrastructure failures are
// wrapped in [StoreError]. UpdateDisaster appends the given audit event to
// the stored trail as part of the same write, so two concurrent updates both
// land their entries.
type DisasterStore interface {
	CreateDisaster(ctx context.Context, d *Disaster) error
	GetDisaster(ctx context.Context, id string) (*Disaster, error)
	ListDisasters(ctx context.Context, filter DisasterFilter) ([]*Disaster, error)
	UpdateDisaster(ctx context.Context, d *Disaster, event AuditEvent) error
	DeleteDisaster(ctx context.Context, id string) error
}

// ResourceFinder locates aid resources within a radius of a point.
type ResourceFinder interface {
	NearbyResources(ctx context.Context, disasterID string, lat, lon, radiusMeters float64) ([]Resource, error)
}
