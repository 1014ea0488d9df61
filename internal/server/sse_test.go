package server_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/disaster-response-service/internal/events"
)

func waitForSubscriber(t *testing.T, hub *events.Hub) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.SubscriberCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber never connected")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestEventStream_DeliversPublishedEvents(t *testing.T) {
	f := newFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		f.srv.ServeHTTP(rec, req)
	}()

	waitForSubscriber(t, f.hub)
	require.NoError(t, f.hub.Publish(context.Background(),
		events.TopicDisasterUpdated, events.DisasterUpdated{Type: events.ChangeDeleted, ID: "d1"}))

	// Give the handler a moment to drain the channel before disconnecting.
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	body := rec.Body.String()
	assert.Contains(t, body, "event:disaster_updated\n")
	assert.Contains(t, body, `"type":"deleted"`)
	assert.Contains(t, body, `"id":"d1"`)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
}

func TestEventStream_TopicFilter(t *testing.T) {
	f := newFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/events?topics=resources_updated", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		f.srv.ServeHTTP(rec, req)
	}()

	waitForSubscriber(t, f.hub)
	require.NoError(t, f.hub.Publish(context.Background(),
		events.TopicDisasterUpdated, events.DisasterUpdated{Type: events.ChangeDeleted, ID: "d1"}))
	require.NoError(t, f.hub.Publish(context.Background(),
		events.TopicResourcesUpdated, events.ResourcesUpdated{DisasterID: "d1", Lat: 19.12, Lon: 72.85}))

	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	body := rec.Body.String()
	assert.NotContains(t, body, "event:disaster_updated\n")
	assert.Contains(t, body, "event:resources_updated\n")
}

func TestEventStream_NoReplayForLateSubscribers(t *testing.T) {
	f := newFixture(t)

	// Published before anyone is connected; must not be seen later.
	require.NoError(t, f.hub.Publish(context.Background(),
		events.TopicDisasterUpdated, events.DisasterUpdated{Type: events.ChangeDeleted, ID: "early"}))

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		f.srv.ServeHTTP(rec, req)
	}()

	waitForSubscriber(t, f.hub)
	time.Sleep(20 * time.Millisecond)
	cancel()
	<-done

	assert.NotContains(t, rec.Body.String(), "early")
}
