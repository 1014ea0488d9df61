// Package events defines the broadcast topics and payloads emitted when
// disaster data changes, and the publishers that deliver them.
package events

import (
	"context"

	"github.com/couchcryptid/disaster-response-service/internal/domain"
)

// Broadcast topics.
const (
	TopicDisasterUpdated    = "disaster_updated"
	TopicSocialMediaUpdated = "social_media_updated"
	TopicResourcesUpdated   = "resources_updated"
)

// Disaster mutation kinds carried by [DisasterUpdated].
const (
	ChangeCreated = "created"
	ChangeUpdated = "updated"
	ChangeDeleted = "deleted"
)

// DisasterUpdated announces a disaster mutation. Disaster is set for
// created/updated, ID alone for deleted.
type DisasterUpdated struct {
	Type     string           `json:"type"`
	Disaster *domain.Disaster `json:"disaster,omitempty"`
	ID       string           `json:"id,omitempty"`
}

// EnrichmentUpdated announces freshly fetched enrichment data for a disaster.
type EnrichmentUpdated struct {
	DisasterID string `json:"disaster_id"`
	Value      any    `json:"value"`
}

// ResourcesUpdated announces a nearby-resources lookup for a disaster.
type ResourcesUpdated struct {
	DisasterID string  `json:"disaster_id"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
}

// Publisher is the interface for emitting events. Delivery is best-effort
// and at-most-once; publish failures never fail the triggering request.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
