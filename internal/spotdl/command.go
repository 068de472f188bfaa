// Package spotdl builds the spotDL command lines sent to the executor service.
package spotdl

import (
	"fmt"
	"strings"

	"github.com/italolelis/spotdl_exporter/internal/content"
)

// DefaultLocation names the destination when spotDL picks the output folder itself.
const DefaultLocation = "spotDL default location"

// Target is where spotDL writes the download. It is either Directory or
// DefaultWithName; no other implementations exist.
type Target interface {
	target()
}

// Directory makes spotDL create the content folder inside Path.
type Directory struct {
	Path string
}

// DefaultWithName makes spotDL write into its default location under Name.
type DefaultWithName struct {
	Name string
}

func (Directory) target()       {}
func (DefaultWithName) target() {}

// NewTarget picks the target for a prompt answer: a non-empty path is an
// explicit directory, the empty path falls back to the sanitized content name.
func NewTarget(path string, ref content.Reference) Target {
	if path != "" {
		return Directory{Path: path}
	}

	return DefaultWithName{Name: ref.SanitizedName}
}

// Command renders the spotDL invocation for contentURL.
func Command(contentURL string, t Target) string {
	cmd := "spotdl " + quote(contentURL)

	switch t := t.(type) {
	case Directory:
		return cmd + " --output-directory " + quote(t.Path)
	case DefaultWithName:
		return cmd + " --output " + quote(t.Name)
	default:
		panic(fmt.Sprintf("spotdl: unknown target %T", t))
	}
}

// Destination describes t for user notifications.
func Destination(t Target) string {
	if d, ok := t.(Directory); ok {
		return d.Path
	}

	return DefaultLocation
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
