package expand

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
)

// ErrDotDotAfterWildcard is returned by the doublestar engine for a ".."
// element that follows a wildcard, which its fs.FS root cannot resolve.
var ErrDotDotAfterWildcard = errors.New("'..' after a wildcard is not supported by this engine (try -E zglob)")

// doublestarExpander supports "**", braces, character classes and
// case-insensitive matching over any afero filesystem.
type doublestarExpander struct {
	opts Options
}

func (e *doublestarExpander) Expand(pattern string) ([]string, error) {
	if pattern == "" {
		return nil, nil
	}
	base, prefix, glob := splitPattern(pattern)
	if glob != "" && !doublestar.ValidatePattern(glob) {
		return nil, doublestar.ErrBadPattern
	}
	if glob != ".." && hasDotDot(glob) {
		return nil, ErrDotDotAfterWildcard
	}

	root, err := e.opts.rootFs(base)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", base, err)
	}
	if root == nil {
		return nil, nil
	}
	if glob == "" || glob == ".." {
		return e.opts.finish(pattern, []string{pattern}, false), nil
	}

	matches, err := doublestar.Glob(afero.NewIOFS(root), glob, e.globOptions()...)
	if err != nil {
		return nil, err
	}
	for i, m := range matches {
		matches[i] = joinMatch(prefix, m)
	}
	return e.opts.finish(pattern, matches, e.opts.FilesOnly), nil
}

func (e *doublestarExpander) globOptions() []doublestar.GlobOption {
	opts := []doublestar.GlobOption{doublestar.WithFailOnIOErrors()}
	if e.opts.FilesOnly {
		opts = append(opts, doublestar.WithFilesOnly())
	}
	if e.opts.NoCase {
		opts = append(opts, doublestar.WithCaseInsensitive())
	}
	if !e.opts.Follow {
		opts = append(opts, doublestar.WithNoFollow())
	}
	return opts
}

// joinMatch rejoins a match relative to the static base with the text the
// user wrote before the glob part. doublestar reports the base itself as ".".
func joinMatch(prefix, m string) string {
	if m != "." {
		return prefix + m
	}
	if base := strings.TrimSuffix(prefix, "/"); base != "" {
		return base
	}
	if prefix != "" {
		return prefix
	}
	return "."
}

func hasDotDot(glob string) bool {
	for _, el := range strings.Split(glob, "/") {
		if el == ".." {
			return true
		}
	}
	return false
}
