// Package socialfeed provides the social-media mention source. Until a live
// social API integration lands, the feed serves a fixed set of posts so the
// caching and broadcast paths behave exactly as they will in production.
package socialfeed

import (
	"context"

	"github.com/couchcryptid/disaster-response-service/internal/domain"
)

// MockFeed implements domain.SocialFeed with canned posts.
type MockFeed struct{}

// NewMockFeed creates the canned feed.
func NewMockFeed() *MockFeed {
	return &MockFeed{}
}

// RecentPosts returns the canned mention list. The slice is rebuilt per call
// so callers can't mutate shared state.
func (f *MockFeed) RecentPosts(_ context.Context, _ string) ([]domain.SocialPost, error) {
	return []domain.SocialPost{
		{Post: "#floodrelief Need urgent medical aid in Andheri", User: "citizen1"},
		{Post: "#flood Water rising near Andheri West bridge", User: "citizen2"},
	}, nil
}
