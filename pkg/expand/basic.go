package expand

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// basicExpander follows path/filepath.Match syntax: no "**" and no braces.
type basicExpander struct {
	opts Options
}

func (e *basicExpander) Expand(pattern string) ([]string, error) {
	if pattern == "" {
		return nil, nil
	}
	base, prefix, glob := splitPattern(pattern)
	if _, err := filepath.Match(filepath.FromSlash(glob), ""); err != nil {
		return nil, err
	}

	root, err := e.opts.rootFs(base)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", base, err)
	}
	if root == nil {
		return nil, nil
	}
	if glob == "" {
		return e.opts.finish(pattern, []string{pattern}, false), nil
	}

	matches, err := afero.Glob(root, filepath.FromSlash(glob))
	if err != nil {
		return nil, err
	}
	for i, m := range matches {
		matches[i] = prefix + filepath.ToSlash(m)
	}
	return e.opts.finish(pattern, matches, false), nil
}
