// Package expand resolves glob patterns against a filesystem.
//
// The matching itself is done by third-party engines; this package picks one
// by name, points it at the right directory, and applies the filters shared
// by every engine (hidden entries, files only, excludes, marks, sorting).
package expand

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
)

// Engine names accepted by New.
const (
	EngineDoublestar = "doublestar"
	EngineZglob      = "zglob"
	EngineBasic      = "basic"
)

// DefaultEngine is used when no engine is named.
const DefaultEngine = EngineDoublestar

// Engines lists the accepted engine names.
var Engines = []string{EngineDoublestar, EngineZglob, EngineBasic}

// ErrUnknownEngine is returned by New for an unrecognized engine name.
var ErrUnknownEngine = errors.New("unknown engine")

// Expander turns one pattern into the paths it matches.
type Expander interface {
	Expand(pattern string) ([]string, error)
}

// Options control how patterns are expanded.
type Options struct {
	// Fs is the filesystem searched by the doublestar and basic engines.
	// Defaults to a read-only view of the OS filesystem.
	Fs afero.Fs
	// Dir is the directory relative patterns are resolved against.
	// Defaults to the process working directory.
	Dir string

	Dot       bool     // include entries whose name starts with "."
	FilesOnly bool     // drop directories
	Mark      bool     // append "/" to directories
	NoCase    bool     // case-insensitive matching
	Follow    bool     // follow symlinked directories during "**"
	Sort      bool     // sort matches lexically
	Exclude   []string // doublestar patterns removed from the result
}

// New returns the Expander registered under name.
func New(name string, opts Options) (Expander, error) {
	if name == "" {
		name = DefaultEngine
	}
	for _, x := range opts.Exclude {
		if !doublestar.ValidatePattern(x) {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", x, doublestar.ErrBadPattern)
		}
	}
	if opts.Dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		opts.Dir = wd
	}

	switch name {
	case EngineDoublestar:
		if opts.Fs == nil {
			opts.Fs = afero.NewReadOnlyFs(afero.NewOsFs())
		}
		return &doublestarExpander{opts: opts}, nil
	case EngineZglob:
		if opts.NoCase {
			return nil, fmt.Errorf("engine %s does not support case-insensitive matching", name)
		}
		// zglob walks the real filesystem on its own.
		opts.Fs = afero.NewReadOnlyFs(afero.NewOsFs())
		return &zglobExpander{opts: opts}, nil
	case EngineBasic:
		if opts.NoCase {
			return nil, fmt.Errorf("engine %s does not support case-insensitive matching", name)
		}
		if opts.Fs == nil {
			opts.Fs = afero.NewReadOnlyFs(afero.NewOsFs())
		}
		return &basicExpander{opts: opts}, nil
	}
	return nil, fmt.Errorf("%w: %s (want one of %s)", ErrUnknownEngine, name, strings.Join(Engines, ", "))
}

// splitPattern separates the literal leading directory of pattern from its
// glob part. prefix is the exact text preceding the glob part, so joining
// prefix and a match relative to base keeps the user's spelling ("./", "/").
func splitPattern(pattern string) (base, prefix, glob string) {
	base, glob = doublestar.SplitPattern(filepath.ToSlash(pattern))
	prefix = pattern[:len(pattern)-len(glob)]
	return base, prefix, glob
}

// resolve maps a slash-separated path onto Dir.
func (o *Options) resolve(p string) string {
	p = filepath.FromSlash(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(o.Dir, p)
}

// rootFs exposes base as the root of a new filesystem. A nil Fs with a nil
// error means base is missing or not a directory, so nothing can match.
func (o *Options) rootFs(base string) (afero.Fs, error) {
	root := o.resolve(base)
	info, err := o.Fs.Stat(root)
	switch {
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, syscall.ENOTDIR):
		return nil, nil
	case err != nil:
		return nil, err
	case !info.IsDir():
		return nil, nil
	}
	return afero.NewBasePathFs(o.Fs, root), nil
}

// finish applies the engine-independent filters to raw matches.
func (o *Options) finish(pattern string, matches []string, filesOnlyDone bool) []string {
	_, prefix, glob := splitPattern(pattern)
	explicitDot := hasDotElement(glob)

	out := matches[:0]
	for _, m := range matches {
		rel := strings.TrimPrefix(m, prefix)
		if m == strings.TrimSuffix(prefix, "/") {
			rel = ""
		}
		if !o.Dot && !explicitDot && hasDotElement(rel) {
			continue
		}
		if o.excluded(m) {
			continue
		}
		if (o.FilesOnly && !filesOnlyDone) || o.Mark {
			info, err := o.Fs.Stat(o.resolve(m))
			isDir := err == nil && info.IsDir()
			if o.FilesOnly && (err != nil || isDir) {
				continue
			}
			if o.Mark && isDir && !strings.HasSuffix(m, "/") {
				m += "/"
			}
		}
		out = append(out, m)
	}
	if o.Sort {
		sort.Strings(out)
	}
	return out
}

func (o *Options) excluded(m string) bool {
	slashed := filepath.ToSlash(m)
	for _, x := range o.Exclude {
		if ok, _ := doublestar.Match(x, slashed); ok {
			return true
		}
	}
	return false
}

// hasDotElement reports whether any element of p names a hidden entry.
func hasDotElement(p string) bool {
	for _, el := range strings.Split(filepath.ToSlash(p), "/") {
		if strings.HasPrefix(el, ".") && el != "." && el != ".." {
			return true
		}
	}
	return false
}
