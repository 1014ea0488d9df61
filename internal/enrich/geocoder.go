package enrich

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/disaster-response-service/internal/domain"
)

// Stage names reported in AdapterError for the two geocoding steps.
const (
	stageExtraction = "location extraction"
	stageResolution = "place resolution"
)

// Geocoder turns free-text disaster descriptions into coordinates: a
// text-extraction call pulls out a place name, then a geocoding lookup
// resolves it. Each step fails with its own typed error so callers can give
// a precise user-facing message.
type Geocoder struct {
	extractor domain.LocationExtractor
	resolver  domain.PlaceResolver
	logger    *slog.Logger
}

// NewGeocoder creates a Geocoder over the given extraction and resolution
// providers.
func NewGeocoder(extractor domain.LocationExtractor, resolver domain.PlaceResolver, logger *slog.Logger) *Geocoder {
	return &Geocoder{
		extractor: extractor,
		resolver:  resolver,
		logger:    logger,
	}
}

// Geocode resolves the description to a named location with coordinates.
func (g *Geocoder) Geocode(ctx context.Context, description string) (domain.GeocodeResult, error) {
	name, err := g.extractor.ExtractLocation(ctx, description)
	if err != nil {
		return domain.GeocodeResult{}, &domain.AdapterError{Stage: stageExtraction, Err: err}
	}
	if name == "" {
		return domain.GeocodeResult{}, &domain.AdapterError{Stage: stageExtraction, Err: domain.ErrExtractionFailed}
	}

	coords, ok, err := g.resolver.ResolvePlace(ctx, name)
	if err != nil {
		return domain.GeocodeResult{}, &domain.AdapterError{Stage: stageResolution, Err: err}
	}
	if !ok {
		g.logger.Debug("no coordinates for extracted place", "place", name)
		return domain.GeocodeResult{}, &domain.AdapterError{Stage: stageResolution, Err: domain.ErrNoLocationFound}
	}

	return domain.GeocodeResult{
		LocationName: name,
		Lat:          coords.Lat,
		Lng:          coords.Lon,
	}, nil
}
