package disasters_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/disaster-response-service/internal/disasters"
	"github.com/couchcryptid/disaster-response-service/internal/domain"
	"github.com/couchcryptid/disaster-response-service/internal/events"
	"github.com/couchcryptid/disaster-response-service/internal/observability"
)

// --- mocks ---

type mockStore struct {
	byID      map[string]*domain.Disaster
	createErr error
	updateErr error
	deleteErr error
	nextID    int
}

func newMockStore() *mockStore {
	return &mockStore{byID: make(map[string]*domain.Disaster), nextID: 1}
}

func (m *mockStore) CreateDisaster(_ context.Context, d *domain.Disaster) error {
	if m.createErr != nil {
		return m.createErr
	}
	d.ID = string(rune('0' + m.nextID))
	m.nextID++
	copied := *d
	m.byID[d.ID] = &copied
	return nil
}

func (m *mockStore) GetDisaster(_ context.Context, id string) (*domain.Disaster, error) {
	d, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *d
	return &copied, nil
}

func (m *mockStore) ListDisasters(context.Context, domain.DisasterFilter) ([]*domain.Disaster, error) {
	out := make([]*domain.Disaster, 0, len(m.byID))
	for _, d := range m.byID {
		copied := *d
		out = append(out, &copied)
	}
	return out, nil
}

func (m *mockStore) UpdateDisaster(_ context.Context, d *domain.Disaster, _ domain.AuditEvent) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.byID[d.ID]; !ok {
		return domain.ErrNotFound
	}
	copied := *d
	m.byID[d.ID] = &copied
	return nil
}

func (m *mockStore) DeleteDisaster(_ context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

type recordedEvent struct {
	topic string
	event any
}

type recordingBus struct {
	events []recordedEvent
}

func (b *recordingBus) Publish(_ context.Context, topic string, event any) error {
	b.events = append(b.events, recordedEvent{topic: topic, event: event})
	return nil
}

func (b *recordingBus) Close() error { return nil }

func newService(store *mockStore, bus *recordingBus) *disasters.Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return disasters.NewService(store, bus, logger, observability.NewMetricsForTesting())
}

// --- tests ---

func TestCreate_SeedsAuditTrail(t *testing.T) {
	t0 := time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC)
	domain.SetClock(clockwork.NewFakeClockAt(t0))
	defer domain.SetClock(nil)

	store := newMockStore()
	bus := &recordingBus{}
	svc := newService(store, bus)

	d, err := svc.Create(context.Background(), disasters.CreateInput{
		Title:   "Mumbai floods",
		OwnerID: "u1",
	})
	require.NoError(t, err)
	require.NotEmpty(t, d.ID)

	require.Len(t, d.AuditTrail, 1)
	assert.Equal(t, domain.ActionCreate, d.AuditTrail[0].Action)
	assert.Equal(t, "u1", d.AuditTrail[0].UserID)
	assert.Equal(t, t0, d.AuditTrail[0].Timestamp)
	assert.NotNil(t, d.Tags)

	require.Len(t, bus.events, 1)
	assert.Equal(t, events.TopicDisasterUpdated, bus.events[0].topic)
	payload := bus.events[0].event.(events.DisasterUpdated)
	assert.Equal(t, events.ChangeCreated, payload.Type)
	require.NotNil(t, payload.Disaster)
	assert.Equal(t, d.ID, payload.Disaster.ID)
}

func TestCreate_RequiresTitle(t *testing.T) {
	svc := newService(newMockStore(), &recordingBus{})

	_, err := svc.Create(context.Background(), disasters.CreateInput{OwnerID: "u1"})

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestCreate_StoreFailureDoesNotPublish(t *testing.T) {
	store := newMockStore()
	store.createErr = &domain.StoreError{Op: "create disaster", Err: errors.New("down")}
	bus := &recordingBus{}
	svc := newService(store, bus)

	_, err := svc.Create(context.Background(), disasters.CreateInput{Title: "x"})
	require.Error(t, err)
	assert.Empty(t, bus.events)
}

func TestUpdate_AppendsAuditEvent(t *testing.T) {
	fake := clockwork.NewFakeClockAt(time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC))
	domain.SetClock(fake)
	defer domain.SetClock(nil)

	store := newMockStore()
	bus := &recordingBus{}
	svc := newService(store, bus)

	created, err := svc.Create(context.Background(), disasters.CreateInput{Title: "Mumbai floods", OwnerID: "u1"})
	require.NoError(t, err)

	fake.Advance(time.Minute)
	bus.events = nil

	updated, err := svc.Update(context.Background(), created.ID, disasters.UpdateInput{
		Title:   "Mumbai floods (revised)",
		OwnerID: "u2",
	})
	require.NoError(t, err)

	require.Len(t, updated.AuditTrail, 2)
	assert.Equal(t, domain.ActionCreate, updated.AuditTrail[0].Action)
	assert.Equal(t, "u1", updated.AuditTrail[0].UserID)
	assert.Equal(t, domain.ActionUpdate, updated.AuditTrail[1].Action)
	assert.Equal(t, "u2", updated.AuditTrail[1].UserID)
	assert.True(t, updated.AuditTrail[1].Timestamp.After(updated.AuditTrail[0].Timestamp))

	require.Len(t, bus.events, 1)
	payload := bus.events[0].event.(events.DisasterUpdated)
	assert.Equal(t, events.ChangeUpdated, payload.Type)
}

func TestUpdate_UnknownUserFallback(t *testing.T) {
	store := newMockStore()
	svc := newService(store, &recordingBus{})

	created, err := svc.Create(context.Background(), disasters.CreateInput{Title: "Flood", OwnerID: "u1"})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID, disasters.UpdateInput{Title: "Flood"})
	require.NoError(t, err)

	assert.Equal(t, domain.UnknownUser, updated.AuditTrail[1].UserID)
}

func TestUpdate_NotFound(t *testing.T) {
	svc := newService(newMockStore(), &recordingBus{})

	_, err := svc.Update(context.Background(), "missing", disasters.UpdateInput{Title: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDelete_PublishesDeletedEvent(t *testing.T) {
	store := newMockStore()
	bus := &recordingBus{}
	svc := newService(store, bus)

	created, err := svc.Create(context.Background(), disasters.CreateInput{Title: "Flood", OwnerID: "u1"})
	require.NoError(t, err)
	bus.events = nil

	require.NoError(t, svc.Delete(context.Background(), created.ID))

	require.Len(t, bus.events, 1)
	payload := bus.events[0].event.(events.DisasterUpdated)
	assert.Equal(t, events.ChangeDeleted, payload.Type)
	assert.Equal(t, created.ID, payload.ID)
	assert.Nil(t, payload.Disaster)
}

func TestDelete_StoreFailureDoesNotPublish(t *testing.T) {
	store := newMockStore()
	bus := &recordingBus{}
	svc := newService(store, bus)

	created, err := svc.Create(context.Background(), disasters.CreateInput{Title: "Flood"})
	require.NoError(t, err)
	bus.events = nil

	store.deleteErr = &domain.StoreError{Op: "delete disaster", Err: errors.New("down")}
	require.Error(t, svc.Delete(context.Background(), created.ID))
	assert.Empty(t, bus.events)
}
