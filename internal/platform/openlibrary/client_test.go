package openlibrary

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string, retries int) *Client {
	c := NewClient(url, "booksstock-test", 1000, retries)
	c.backoff = time.Millisecond
	return c
}

func TestClient_SearchBooks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search.json", r.URL.Path)
		assert.Equal(t, "subject:science fiction", r.URL.Query().Get("q"))
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		assert.Equal(t, "booksstock-test", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{"numFound":1,"docs":[{"key":"/works/OL1W","title":"Dune","author_name":["Frank Herbert"],"language":["eng"]}]}`))
	}))
	defer srv.Close()

	res, err := newTestClient(srv.URL, 0).SearchBooks(context.Background(), "science fiction", 2)
	require.NoError(t, err)
	require.Len(t, res.Docs, 1)
	assert.Equal(t, "Dune", res.Docs[0].Title)
	assert.Equal(t, []string{"Frank Herbert"}, res.Docs[0].AuthorNames)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"numFound":0,"docs":[]}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 2).SearchBooks(context.Background(), "art", 1)
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 3).SearchBooks(context.Background(), "art", 1)
	assert.ErrorContains(t, err, "400")
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_GivesUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 1).SearchBooks(context.Background(), "art", 1)
	assert.ErrorContains(t, err, "after 1 retries")
}

func TestWorkURL(t *testing.T) {
	assert.Equal(t, "https://openlibrary.org/works/OL1W", NewClient("", "ua", 1, 0).WorkURL("/works/OL1W"))
}
