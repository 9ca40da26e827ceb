package expand

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/mattn/go-zglob"
)

// zglobExpander walks the OS filesystem with zglob's parallel walker. It
// also understands "~" and "$VAR" path elements.
type zglobExpander struct {
	opts Options
}

func (e *zglobExpander) Expand(pattern string) (matches []string, err error) {
	if pattern == "" {
		return nil, nil
	}
	// zglob reports a malformed class as a missing file.
	if _, _, g := splitPattern(pattern); g != "" && !doublestar.ValidatePattern(g) {
		return nil, doublestar.ErrBadPattern
	}
	full, trim := e.anchor(pattern)

	// A panic inside zglob fails this pattern only.
	defer func() {
		if r := recover(); r != nil {
			matches, err = nil, fmt.Errorf("invalid pattern: %v", r)
		}
	}()

	glob := zglob.Glob
	if e.opts.Follow {
		glob = zglob.GlobFollowSymlinks
	}
	matches, err = glob(full)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if trim != "" {
		for i, m := range matches {
			matches[i] = strings.TrimPrefix(m, trim)
		}
	}
	return e.opts.finish(pattern, matches, false), nil
}

// anchor roots a relative pattern at Dir when Dir is not the process working
// directory, returning the prefix to strip from results.
func (e *zglobExpander) anchor(pattern string) (full, trim string) {
	if filepath.IsAbs(pattern) || strings.HasPrefix(pattern, "~") || strings.HasPrefix(pattern, "$") {
		return pattern, ""
	}
	if wd, err := os.Getwd(); err == nil && wd == e.opts.Dir {
		return pattern, ""
	}
	dir := strings.TrimSuffix(filepath.ToSlash(e.opts.Dir), "/")
	return dir + "/" + pattern, dir + "/"
}
