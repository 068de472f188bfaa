package host

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/italolelis/spotdl_exporter/internal/content"
	"github.com/italolelis/spotdl_exporter/internal/htmlpage"
	"github.com/italolelis/spotdl_exporter/internal/logctx"
)

// Loader opens locations on the screen, fetching the page markup of
// playlists and tracks so titles can be looked up.
type Loader struct {
	screen  *Screen
	baseURL string
	client  *http.Client
	timeout time.Duration
}

func NewLoader(screen *Screen, baseURL string, client *http.Client, timeout time.Duration) *Loader {
	if client == nil {
		client = http.DefaultClient
	}

	return &Loader{
		screen:  screen,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		timeout: timeout,
	}
}

// Open navigates to path and renders it once loaded. A page that cannot be
// fetched still renders its action bar, only without a title.
func (l *Loader) Open(ctx context.Context, path string) error {
	logger := logctx.LoggerFromContext(ctx).With("path", path)

	gen := l.screen.Navigate(path)

	if !content.IsApplicable(path) {
		l.screen.SetPage(gen, nil)

		return nil
	}

	if l.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	page, err := htmlpage.Fetch(ctx, l.client, l.baseURL+path)
	if err != nil {
		logger.WarnContext(ctx, "failed to load page", "err", err)
		l.screen.SetPage(gen, nil)

		return fmt.Errorf("failed to load %s: %w", path, err)
	}

	if !l.screen.SetPage(gen, page) {
		logger.DebugContext(ctx, "discarding stale page load")
	}

	return nil
}
