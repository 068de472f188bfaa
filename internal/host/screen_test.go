package host_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/italolelis/spotdl_exporter/internal/content"
	"github.com/italolelis/spotdl_exporter/internal/host"
	"github.com/italolelis/spotdl_exporter/internal/htmlpage"
)

func TestScreen_MountRequiresActionBar(t *testing.T) {
	s := host.NewScreen("/")
	gen := s.Navigate("/playlist/abc")

	assert.ErrorIs(t, s.MountTrigger(), host.ErrNoContainer)
	assert.False(t, s.HasTrigger())

	require.True(t, s.SetPage(gen, nil))
	require.NoError(t, s.MountTrigger())
	require.NoError(t, s.MountTrigger())
	assert.True(t, s.HasTrigger())

	s.UnmountTrigger()
	assert.False(t, s.HasTrigger())
}

func TestScreen_NavigateTearsDownPage(t *testing.T) {
	s := host.NewScreen("/")
	gen := s.Navigate("/track/1")
	s.SetPage(gen, nil)
	require.NoError(t, s.MountTrigger())

	next := s.Navigate("/playlist/2")

	snap := s.Snapshot()
	assert.Equal(t, "/playlist/2", snap.Location)
	assert.True(t, snap.Loading)
	assert.False(t, snap.ActionBar)
	assert.False(t, snap.Trigger)

	assert.False(t, s.SetPage(gen, nil), "stale generation is ignored")
	assert.True(t, s.SetPage(next, nil))
}

func TestScreen_NavigationsKeepLatest(t *testing.T) {
	s := host.NewScreen("/")
	s.Navigate("/track/1")
	s.Navigate("/playlist/2")
	s.Navigate("/search")

	assert.Equal(t, "/search", <-s.Navigations())

	select {
	case path := <-s.Navigations():
		t.Fatalf("unexpected pending navigation %q", path)
	default:
	}
}

func TestScreen_RebuildDropsTrigger(t *testing.T) {
	s := host.NewScreen("/")
	s.SetPage(s.Navigate("/track/1"), nil)
	<-s.Mutations()

	require.NoError(t, s.MountTrigger())

	var changes int
	s.OnChange(func() { changes++ })

	s.RebuildActionBar()

	assert.False(t, s.HasTrigger())
	assert.True(t, s.HasContainer())
	assert.Equal(t, 1, changes)

	select {
	case <-s.Mutations():
	default:
		t.Fatal("expected a structural change signal")
	}
}

func TestScreen_TitlesWithoutPage(t *testing.T) {
	s := host.NewScreen("/track/1")

	ref, err := content.NewResolver("https://open.spotify.com").Resolve(s.CurrentPath(), s.Titles())
	require.NoError(t, err)
	assert.Equal(t, "Unknown_Track", ref.DisplayName)
}

func pageServer(t *testing.T) *httptest.Server {
	t.Helper()

	r := chi.NewRouter()
	r.Get("/playlist/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body><h1 dir="auto">  My   Mix </h1></body></html>`))
	})
	r.Get("/track/{id}", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return srv
}

func TestLoader_Open(t *testing.T) {
	srv := pageServer(t)
	resolver := content.NewResolver("https://open.spotify.com")

	t.Run("playlist page", func(t *testing.T) {
		s := host.NewScreen("/")
		l := host.NewLoader(s, srv.URL+"/", srv.Client(), time.Second)

		require.NoError(t, l.Open(context.Background(), "/playlist/abc123"))

		snap := s.Snapshot()
		assert.True(t, snap.ActionBar)
		assert.False(t, snap.Loading)
		require.NotNil(t, snap.Page)

		ref, err := resolver.Resolve(s.CurrentPath(), s.Titles())
		require.NoError(t, err)
		assert.Equal(t, "My Mix", ref.DisplayName)
	})

	t.Run("fetch failure still renders action bar", func(t *testing.T) {
		s := host.NewScreen("/")
		l := host.NewLoader(s, srv.URL, srv.Client(), time.Second)

		err := l.Open(context.Background(), "/track/xyz789")
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "/track/xyz789"))

		assert.True(t, s.HasContainer())
		assert.Nil(t, s.Snapshot().Page)
	})

	t.Run("other pages are not fetched", func(t *testing.T) {
		s := host.NewScreen("/")
		l := host.NewLoader(s, "http://127.0.0.1:0", nil, time.Second)

		require.NoError(t, l.Open(context.Background(), "/home"))
		assert.True(t, s.HasContainer())
	})
}

func TestScreen_SetPageParsed(t *testing.T) {
	page, err := htmlpage.Parse(strings.NewReader(`<div class="main-trackInfo-name">Song</div>`))
	require.NoError(t, err)

	s := host.NewScreen("/")
	s.SetPage(s.Navigate("/track/1"), page)

	text, ok := s.Titles().TitleText(".main-trackInfo-name")
	assert.True(t, ok)
	assert.Equal(t, "Song", text)
}
