package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/disaster-response-service/internal/domain"
	"github.com/couchcryptid/disaster-response-service/internal/events"
)

// Resource type names used as cache key prefixes and metric labels.
const (
	resourceSocialMedia     = "social-media"
	resourceOfficialUpdates = "official-updates"
	resourceImageVerify     = "image-verification"
)

// imageVerifyPromptFmt is the fixed analysis prompt submitted with every
// image verification request.
const imageVerifyPromptFmt = "Analyze image at %s for signs of manipulation or natural disaster context."

// Service exposes the enrichment operations: geocoding, cached social-media
// mentions, cached official updates, cached image verification, and nearby
// resource lookup.
type Service struct {
	agg       *Aggregator
	geocoder  *Geocoder
	feed      domain.SocialFeed
	updates   domain.UpdatesFetcher
	analyzer  domain.ImageAnalyzer
	resources domain.ResourceFinder

	ttl          time.Duration
	radiusMeters float64
	logger       *slog.Logger
}

// NewService wires the enrichment operations. ttl is the shared freshness
// window for cached resources; radiusMeters bounds nearby-resource lookups.
func NewService(
	agg *Aggregator,
	geocoder *Geocoder,
	feed domain.SocialFeed,
	updates domain.UpdatesFetcher,
	analyzer domain.ImageAnalyzer,
	resources domain.ResourceFinder,
	ttl time.Duration,
	radiusMeters float64,
	logger *slog.Logger,
) *Service {
	return &Service{
		agg:          agg,
		geocoder:     geocoder,
		feed:         feed,
		updates:      updates,
		analyzer:     analyzer,
		resources:    resources,
		ttl:          ttl,
		radiusMeters: radiusMeters,
		logger:       logger,
	}
}

// Geocode extracts a place name from the description and resolves it to
// coordinates. Results are not cached; descriptions rarely repeat.
func (s *Service) Geocode(ctx context.Context, description string) (domain.GeocodeResult, error) {
	if description == "" {
		return domain.GeocodeResult{}, domain.Validationf("description is required")
	}
	return s.geocoder.Geocode(ctx, description)
}

// SocialMedia returns recent social-media mentions of the disaster,
// broadcasting fresh results on the social_media_updated topic.
func (s *Service) SocialMedia(ctx context.Context, disasterID string) (Result[[]domain.SocialPost], error) {
	req := Request{
		Resource: resourceSocialMedia,
		ID:       disasterID,
		TTL:      s.ttl,
		Topic:    events.TopicSocialMediaUpdated,
	}
	return Resolve(ctx, s.agg, req, func(ctx context.Context) ([]domain.SocialPost, error) {
		posts, err := s.feed.RecentPosts(ctx, disasterID)
		if err != nil {
			return nil, &domain.AdapterError{Stage: "social feed fetch", Err: err}
		}
		return posts, nil
	})
}

// OfficialUpdates returns headlines from the official press-release source.
// Fresh results are cached but not broadcast.
func (s *Service) OfficialUpdates(ctx context.Context, disasterID string) (Result[[]domain.OfficialUpdate], error) {
	req := Request{
		Resource: resourceOfficialUpdates,
		ID:       disasterID,
		TTL:      s.ttl,
	}
	return Resolve(ctx, s.agg, req, func(ctx context.Context) ([]domain.OfficialUpdate, error) {
		updates, err := s.updates.FetchUpdates(ctx)
		if err != nil {
			return nil, &domain.AdapterError{Stage: "official updates fetch", Err: err}
		}
		return updates, nil
	})
}

// VerifyImage submits the image reference to the analysis service and
// returns the free-text verdict, cached per disaster and image URL.
func (s *Service) VerifyImage(ctx context.Context, disasterID, imageURL string) (Result[string], error) {
	if imageURL == "" {
		return Result[string]{}, domain.Validationf("image_url is required")
	}
	req := Request{
		Resource:  resourceImageVerify,
		ID:        disasterID,
		Qualifier: imageURL,
		TTL:       s.ttl,
	}
	return Resolve(ctx, s.agg, req, func(ctx context.Context) (string, error) {
		verdict, err := s.analyzer.AnalyzeImage(ctx, imageURL, fmt.Sprintf(imageVerifyPromptFmt, imageURL))
		if err != nil {
			return "", &domain.AdapterError{Stage: "image analysis", Err: err}
		}
		return verdict, nil
	})
}

// NearbyResources finds aid resources within the configured radius of the
// given point and announces the lookup on the resources_updated topic.
func (s *Service) NearbyResources(ctx context.Context, disasterID string, lat, lon float64) ([]domain.Resource, error) {
	found, err := s.resources.NearbyResources(ctx, disasterID, lat, lon, s.radiusMeters)
	if err != nil {
		return nil, err
	}
	s.agg.publish(ctx, events.TopicResourcesUpdated, events.ResourcesUpdated{
		DisasterID: disasterID,
		Lat:        lat,
		Lon:        lon,
	})
	return found, nil
}
