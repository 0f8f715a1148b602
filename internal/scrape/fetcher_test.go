package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestFetcher() *Fetcher {
	return NewFetcher(Options{
		FetchTimeout: 2 * time.Second,
		ProbeTimeout: 1 * time.Second,
	})
}

func TestFetchStatic_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla/5.0")
		_, _ = w.Write([]byte("<html>hello</html>"))
	}))
	defer srv.Close()

	body, ok := newTestFetcher().FetchStatic(context.Background(), srv.URL)
	assert.True(t, ok)
	assert.Equal(t, "<html>hello</html>", body)
}

func TestFetchStatic_ErrorStatusIsAbsent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	_, ok := newTestFetcher().FetchStatic(context.Background(), srv.URL)
	assert.False(t, ok)
}

func TestFetchStatic_TransportErrorIsAbsent(t *testing.T) {
	// Closed server: connection refused.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, ok := newTestFetcher().FetchStatic(context.Background(), srv.URL)
	assert.False(t, ok)
}

func TestProbeHead(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		if r.URL.Path == "/kontakt" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := newTestFetcher()
	assert.True(t, f.ProbeHead(context.Background(), srv.URL+"/kontakt"))
	assert.False(t, f.ProbeHead(context.Background(), srv.URL+"/missing"))
}

func TestRender_DisabledIsAbsent(t *testing.T) {
	f := newTestFetcher()
	_, ok := f.Render(context.Background(), "https://example.com")
	assert.False(t, ok)
}

func TestClose_NeverStarted(t *testing.T) {
	f := NewFetcher(Options{RenderEnabled: true})
	// Close without ever rendering must not panic, twice.
	f.Close()
	f.Close()
}
