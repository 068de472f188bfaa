package notifier_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/italolelis/spotdl_exporter/internal/notifier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscordNotifier(t *testing.T) {
	var got map[string]string

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	d := notifier.NewDiscordNotifier(ts.URL)
	require.NoError(t, d.Notify(`"My Mix" downloaded successfully!`))
	assert.Equal(t, `"My Mix" downloaded successfully!`, got["content"])
}

func TestDiscordNotifier_Errors(t *testing.T) {
	assert.Error(t, (&notifier.DiscordNotifier{}).Notify("x"))

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	err := notifier.NewDiscordNotifier(ts.URL).Notify("x")
	assert.ErrorContains(t, err, "status 429")
}

func TestMulti(t *testing.T) {
	var first, second []string

	boom := errors.New("boom")

	m := notifier.Multi{
		notifier.Func(func(c string) error { first = append(first, c); return boom }),
		nil,
		notifier.Func(func(c string) error { second = append(second, c); return nil }),
	}

	err := m.Notify("hello")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"hello"}, first)
	assert.Equal(t, []string{"hello"}, second, "a failing notifier does not stop the others")

	assert.NoError(t, notifier.Multi{}.Notify("quiet"))
}
