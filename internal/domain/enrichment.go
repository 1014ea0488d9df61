package domain

import "context"

// SocialPost is a single social-media mention of a disaster.
type SocialPost struct {
	Post string `json:"post"`
	User string `json:"user"`
}

// OfficialUpdate is a headline scraped from an official press-release page.
type OfficialUpdate struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Resource is an aid resource located near a disaster.
type Resource struct {
	ID             string  `json:"id"`
	DisasterID     string  `json:"disaster_id"`
	Name           string  `json:"name"`
	Type           string  `json:"type"`
	Lat            float64 `json:"lat"`
	Lon            float64 `json:"lon"`
	DistanceMeters float64 `json:"distance_meters"`
}

// Coordinates is a WGS-84 latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// GeocodeResult is the outcome of extracting and resolving a location from
// free-text input.
type GeocodeResult struct {
	LocationName string  `json:"location_name"`
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
}

// LocationExtractor pulls a place name out of free-text input.
// An empty result with a nil error means the provider found nothing usable.
type LocationExtractor interface {
	ExtractLocation(ctx context.Context, description string) (string, error)
}

// PlaceResolver converts a place name to coordinates.
// ok=false means the provider had no match for the name.
type PlaceResolver interface {
	ResolvePlace(ctx context.Context, name string) (Coordinates, bool, error)
}

// SocialFeed returns recent social-media posts mentioning a disaster.
type SocialFeed interface {
	RecentPosts(ctx context.Context, disasterID string) ([]SocialPost, error)
}

// UpdatesFetcher retrieves official updates from an authoritative source.
type UpdatesFetcher interface {
	FetchUpdates(ctx context.Context) ([]OfficialUpdate, error)
}

// ImageAnalyzer submits an image reference and a prompt to a
// generative-analysis service and returns the free-text verdict.
type ImageAnalyzer interface {
	AnalyzeImage(ctx context.Context, imageURL, prompt string) (string, error)
}
