package fema

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/disaster-response-service/internal/domain"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestFetchUpdates_FiltersShortAndUnlinkedAnchors(t *testing.T) {
	page := `<html><body>
		<nav><a href="/about">About us page</a></nav>
		<a href="/pr/1">President approves major disaster declaration for Texas</a>
		<a href="/pr/2">FEMA opens disaster recovery centers in three counties</a>
		<a>Headline with no link target that is long enough</a>
	</body></html>`
	c := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, page)
	})

	updates, err := c.FetchUpdates(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []domain.OfficialUpdate{
		{Title: "President approves major disaster declaration for Texas", URL: "/pr/1"},
		{Title: "FEMA opens disaster recovery centers in three counties", URL: "/pr/2"},
	}, updates)
}

func TestFetchUpdates_NestedMarkupAndWhitespace(t *testing.T) {
	page := `<html><body>
		<a href="/pr/3">  <span>Flood warnings extended</span> <em>across the Midwest region</em>
		</a>
	</body></html>`
	c := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, page)
	})

	updates, err := c.FetchUpdates(context.Background())
	require.NoError(t, err)

	require.Len(t, updates, 1)
	assert.Equal(t, "/pr/3", updates[0].URL)
	assert.Contains(t, updates[0].Title, "Flood warnings extended")
}

func TestFetchUpdates_EmptyPage(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `<html><body><p>No releases today.</p></body></html>`)
	})

	updates, err := c.FetchUpdates(context.Background())
	require.NoError(t, err)
	assert.Empty(t, updates)
	assert.NotNil(t, updates, "empty result is a list, not null")
}

func TestFetchUpdates_HTTPError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	})

	_, err := c.FetchUpdates(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
}
