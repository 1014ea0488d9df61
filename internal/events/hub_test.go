package events

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHub_DeliversToSubscriber(t *testing.T) {
	h := NewHub(discardLogger(), nil)
	sub, cancel := h.Subscribe(nil)
	defer cancel()

	err := h.Publish(context.Background(), TopicDisasterUpdated, DisasterUpdated{Type: ChangeDeleted, ID: "d1"})
	require.NoError(t, err)

	evt := <-sub.C()
	assert.Equal(t, TopicDisasterUpdated, evt.Topic)

	var payload DisasterUpdated
	require.NoError(t, json.Unmarshal(evt.Data, &payload))
	assert.Equal(t, ChangeDeleted, payload.Type)
	assert.Equal(t, "d1", payload.ID)
}

func TestHub_TopicFilter(t *testing.T) {
	h := NewHub(discardLogger(), nil)
	sub, cancel := h.Subscribe([]string{TopicSocialMediaUpdated})
	defer cancel()

	require.NoError(t, h.Publish(context.Background(), TopicDisasterUpdated, DisasterUpdated{Type: ChangeDeleted, ID: "d1"}))
	require.NoError(t, h.Publish(context.Background(), TopicSocialMediaUpdated, EnrichmentUpdated{DisasterID: "d1"}))

	evt := <-sub.C()
	assert.Equal(t, TopicSocialMediaUpdated, evt.Topic)
	assert.Empty(t, sub.ch)
}

func TestHub_LateSubscriberMissesEarlierEvents(t *testing.T) {
	h := NewHub(discardLogger(), nil)

	require.NoError(t, h.Publish(context.Background(), TopicDisasterUpdated, DisasterUpdated{Type: ChangeDeleted, ID: "d1"}))

	sub, cancel := h.Subscribe(nil)
	defer cancel()
	assert.Empty(t, sub.ch, "no replay for late subscribers")
}

func TestHub_SlowSubscriberDoesNotBlockPublish(t *testing.T) {
	h := NewHub(discardLogger(), nil)
	sub, cancel := h.Subscribe(nil)
	defer cancel()

	// Overfill the subscriber's buffer; Publish must never block.
	for range 200 {
		require.NoError(t, h.Publish(context.Background(), TopicResourcesUpdated, ResourcesUpdated{DisasterID: "d1"}))
	}
	assert.Len(t, sub.ch, cap(sub.ch))
}

func TestHub_SubscriberCount(t *testing.T) {
	var counts []int
	h := NewHub(discardLogger(), func(n int) { counts = append(counts, n) })

	_, cancel1 := h.Subscribe(nil)
	_, cancel2 := h.Subscribe(nil)
	assert.Equal(t, 2, h.SubscriberCount())

	cancel1()
	cancel1() // idempotent
	cancel2()

	assert.Equal(t, 0, h.SubscriberCount())
	assert.Equal(t, []int{1, 2, 1, 0}, counts)
}
