package content

import (
	"errors"
	"net/url"
	"strings"
)

// Kind is the type of content a location points at.
type Kind string

const (
	KindPlaylist Kind = "playlist"
	KindTrack    Kind = "track"
)

// ErrNotApplicable is returned when the location is neither a playlist nor a track page.
var ErrNotApplicable = errors.New("location is not a playlist or track page")

// Reference identifies the content shown on the current page. It is derived once
// per download attempt and never mutated afterwards.
type Reference struct {
	Kind          Kind
	ID            string
	DisplayName   string
	SanitizedName string
	URL           string
}

// TitleSource looks up the visible title of the current page.
type TitleSource interface {
	TitleText(selector string) (string, bool)
}

var titleSelectors = map[Kind]string{
	KindPlaylist: `h1[dir="auto"]`,
	KindTrack:    `.main-trackInfo-name`,
}

var placeholders = map[Kind]string{
	KindPlaylist: "Unknown_Playlist",
	KindTrack:    "Unknown_Track",
}

// Placeholder returns the name used when the title of a page cannot be found.
func Placeholder(kind Kind) string {
	return placeholders[kind]
}

// Resolver derives content references from host locations.
type Resolver struct {
	baseURL string
}

// NewResolver creates a resolver building canonical URLs under baseURL,
// e.g. https://open.spotify.com.
func NewResolver(baseURL string) *Resolver {
	return &Resolver{baseURL: strings.TrimRight(baseURL, "/")}
}

// Resolve inspects the current path and returns the reference it points at.
// A missing title never fails the resolution; the kind placeholder is used instead.
func (r *Resolver) Resolve(path string, titles TitleSource) (Reference, error) {
	kind, id, ok := Match(path)
	if !ok {
		return Reference{}, ErrNotApplicable
	}

	name := ""
	if titles != nil {
		if text, found := titles.TitleText(titleSelectors[kind]); found {
			name = strings.TrimSpace(text)
		}
	}

	if name == "" {
		name = placeholders[kind]
	}

	sanitized := Sanitize(name)
	if sanitized == "" {
		sanitized = placeholders[kind]
	}

	return Reference{
		Kind:          kind,
		ID:            id,
		DisplayName:   name,
		SanitizedName: sanitized,
		URL:           r.baseURL + "/" + string(kind) + "/" + id,
	}, nil
}

// Match reports the content kind and trailing identifier of a playlist or track route.
func Match(path string) (Kind, string, bool) {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}

	segments := strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
	if len(segments) < 2 {
		return "", "", false
	}

	id := segments[len(segments)-1]

	for _, kind := range []Kind{KindPlaylist, KindTrack} {
		for _, s := range segments[:len(segments)-1] {
			if s == string(kind) {
				return kind, id, true
			}
		}
	}

	return "", "", false
}

// IsApplicable reports whether a download can be started from path.
func IsApplicable(path string) bool {
	_, _, ok := Match(path)

	return ok
}

// Sanitize replaces characters that are illegal in common filesystem names
// with a hyphen and trims surrounding whitespace.
func Sanitize(name string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '?', '%', '*', ':', '|', '"', '<', '>':
			return '-'
		}

		return r
	}, name))
}

// NormalizeLocation turns user input into a host path. It accepts plain paths,
// open.spotify.com links and spotify: URIs.
func NormalizeLocation(input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return "/"
	}

	if rest, ok := strings.CutPrefix(input, "spotify:"); ok {
		return "/" + strings.ReplaceAll(rest, ":", "/")
	}

	if u, err := url.Parse(input); err == nil && u.Scheme != "" && u.Host != "" {
		if u.Path == "" {
			return "/"
		}

		return u.Path
	}

	if i := strings.IndexAny(input, "?#"); i >= 0 {
		input = input[:i]
	}

	if !strings.HasPrefix(input, "/") {
		input = "/" + input
	}

	return input
}
