// Package disasters owns disaster record CRUD: every successful mutation
// appends to the record's audit trail and announces itself on the
// disaster_updated topic.
package disasters

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/disaster-response-service/internal/domain"
	"github.com/couchcryptid/disaster-response-service/internal/events"
	"github.com/couchcryptid/disaster-response-service/internal/observability"
)

// Service orchestrates disaster mutations over the store and broadcast bus.
type Service struct {
	store   domain.DisasterStore
	bus     events.Publisher
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewService creates a disaster CRUD service.
func NewService(store domain.DisasterStore, bus events.Publisher, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		store:   store,
		bus:     bus,
		logger:  logger,
		metrics: metrics,
	}
}

// CreateInput carries the client-supplied fields for a new disaster.
type CreateInput struct {
	Title        string   `json:"title"`
	LocationName string   `json:"location_name"`
	Description  string   `json:"description"`
	Tags         []string `json:"tags"`
	OwnerID      string   `json:"owner_id"`
}

// UpdateInput carries the client-supplied fields for a disaster update.
// OwnerID attributes the mutation in the audit trail; it does not change
// record ownership.
type UpdateInput struct {
	Title        string   `json:"title"`
	LocationName string   `json:"location_name"`
	Description  string   `json:"description"`
	Tags         []string `json:"tags"`
	OwnerID      string   `json:"owner_id"`
}

// Create persists a new disaster. The audit trail is seeded with a create
// event attributed to the owner, so it is never empty.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Disaster, error) {
	if in.Title == "" {
		return nil, domain.Validationf("title is required")
	}

	ev := domain.NewAuditEvent(domain.ActionCreate, in.OwnerID)
	d := &domain.Disaster{
		Title:        in.Title,
		LocationName: in.LocationName,
		Description:  in.Description,
		Tags:         in.Tags,
		OwnerID:      in.OwnerID,
		AuditTrail:   []domain.AuditEvent{ev},
		CreatedAt:    ev.Timestamp,
		UpdatedAt:    ev.Timestamp,
	}
	if d.Tags == nil {
		d.Tags = []string{}
	}

	if err := s.store.CreateDisaster(ctx, d); err != nil {
		return nil, err
	}

	s.metrics.DisasterMutations.WithLabelValues(string(domain.ActionCreate)).Inc()
	s.publish(ctx, events.DisasterUpdated{Type: events.ChangeCreated, Disaster: d})
	return d, nil
}

// Get returns the disaster with the given id.
func (s *Service) Get(ctx context.Context, id string) (*domain.Disaster, error) {
	return s.store.GetDisaster(ctx, id)
}

// List returns disasters matching the filter.
func (s *Service) List(ctx context.Context, filter domain.DisasterFilter) ([]*domain.Disaster, error) {
	return s.store.ListDisasters(ctx, filter)
}

// Update replaces the client-editable fields and appends an update event to
// the audit trail, preserving all prior entries. The store appends the event
// within the same write, so concurrent updates both land their entries.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*domain.Disaster, error) {
	existing, err := s.store.GetDisaster(ctx, id)
	if err != nil {
		return nil, err
	}

	ev := domain.NewAuditEvent(domain.ActionUpdate, in.OwnerID)
	updated := *existing
	updated.Title = in.Title
	updated.LocationName = in.LocationName
	updated.Description = in.Description
	updated.Tags = in.Tags
	if updated.Tags == nil {
		updated.Tags = []string{}
	}
	updated.AuditTrail = domain.AppendAudit(existing.AuditTrail, ev)
	updated.UpdatedAt = ev.Timestamp

	if err := s.store.UpdateDisaster(ctx, &updated, ev); err != nil {
		return nil, err
	}

	s.metrics.DisasterMutations.WithLabelValues(string(domain.ActionUpdate)).Inc()
	s.publish(ctx, events.DisasterUpdated{Type: events.ChangeUpdated, Disaster: &updated})
	return &updated, nil
}

// Delete removes the disaster. No audit event is written; the record ceases
// to exist.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteDisaster(ctx, id); err != nil {
		return err
	}

	s.metrics.DisasterMutations.WithLabelValues(string(domain.ActionDelete)).Inc()
	s.publish(ctx, events.DisasterUpdated{Type: events.ChangeDeleted, ID: id})
	return nil
}

// publish emits a disaster_updated event; failures are logged, never
// surfaced, since the mutation itself already succeeded.
func (s *Service) publish(ctx context.Context, event events.DisasterUpdated) {
	if err := s.bus.Publish(ctx, events.TopicDisasterUpdated, event); err != nil {
		s.logger.Warn("broadcast failed", "topic", events.TopicDisasterUpdated, "error", err)
		return
	}
	s.metrics.EventsPublished.WithLabelValues(events.TopicDisasterUpdated).Inc()
}
