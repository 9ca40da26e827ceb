// Package glob implements the glob applet: expand each pattern argument and
// print the matching paths.
package glob

import (
	"bytes"
	"os"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/rcarmo/go-glob/pkg/core"
	"github.com/rcarmo/go-glob/pkg/expand"
)

const applet = "glob"

// EngineEnv names the environment variable holding the default engine.
const EngineEnv = "GLOB_ENGINE"

type options struct {
	engine string
	expand expand.Options
	print0 bool
	jobs   int
	color  core.ColorMode
	help   bool
}

type result struct {
	pattern string
	matches []string
	err     error
}

// Run executes the glob command with the given arguments.
func Run(stdio *core.Stdio, args []string) int {
	opts, patterns, code := parseArgs(stdio, args)
	if code != core.ExitSuccess {
		return code
	}
	if opts.help {
		usage(stdio)
		return core.ExitSuccess
	}
	if len(patterns) == 0 {
		return core.ExitSuccess
	}

	ex, err := expand.New(opts.engine, opts.expand)
	if err != nil {
		return core.UsageError(stdio, applet, err.Error())
	}

	p := &printer{
		stdio:  stdio,
		prefix: stdio.ErrorPrefix(applet, opts.color),
		term:   '\n',
	}
	if opts.print0 {
		p.term = 0
	}

	var g errgroup.Group
	if opts.jobs > 0 {
		g.SetLimit(opts.jobs)
	}
	for _, pattern := range patterns {
		g.Go(func() error {
			matches, err := ex.Expand(pattern)
			p.emit(result{pattern: pattern, matches: matches, err: err})
			return nil
		})
	}
	_ = g.Wait()

	if p.failed {
		return core.ExitFailure
	}
	return core.ExitSuccess
}

// printer serializes per-pattern output blocks.
type printer struct {
	mu     sync.Mutex
	stdio  *core.Stdio
	prefix string
	term   byte
	failed bool
}

func (p *printer) emit(r result) {
	var buf bytes.Buffer
	for _, m := range r.matches {
		buf.WriteString(m)
		buf.WriteByte(p.term)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if r.err != nil {
		p.failed = true
		core.FileError(p.stdio, p.prefix, r.pattern, r.err)
		return
	}
	_, _ = p.stdio.Out.Write(buf.Bytes())
}

func parseArgs(stdio *core.Stdio, args []string) (*options, []string, int) {
	opts := &options{
		engine: os.Getenv(EngineEnv),
		color:  core.ColorAuto,
	}

	i := 0
	for i < len(args) {
		arg := args[i]
		if arg == "--" {
			i++
			break
		}
		if arg == "-" || !strings.HasPrefix(arg, "-") {
			break
		}
		if strings.HasPrefix(arg, "--") {
			if code := parseLong(stdio, opts, arg); code != core.ExitSuccess {
				return nil, nil, code
			}
			i++
			continue
		}
		for j := 1; j < len(arg); j++ {
			switch arg[j] {
			case 'a':
				opts.expand.Dot = true
			case 'f':
				opts.expand.FilesOnly = true
			case 'm':
				opts.expand.Mark = true
			case 'i':
				opts.expand.NoCase = true
			case 'L':
				opts.expand.Follow = true
			case 's':
				opts.expand.Sort = true
			case '0':
				opts.print0 = true
			case 'h':
				opts.help = true
			case 'E', 'x', 'j':
				flag := arg[j]
				val, next, ok := flagValue(args, i, arg, j)
				if !ok {
					return nil, nil, usageError(stdio, "option requires an argument -- '"+string(flag)+"'")
				}
				i = next
				j = len(arg)
				switch flag {
				case 'E':
					opts.engine = val
				case 'x':
					opts.expand.Exclude = append(opts.expand.Exclude, val)
				case 'j':
					n, err := strconv.Atoi(val)
					if err != nil || n < 1 {
						return nil, nil, usageError(stdio, "invalid number: "+val)
					}
					opts.jobs = n
				}
			default:
				return nil, nil, usageError(stdio, "invalid option -- '"+string(arg[j])+"'")
			}
		}
		i++
	}

	return opts, args[i:], core.ExitSuccess
}

func parseLong(stdio *core.Stdio, opts *options, arg string) int {
	name, val, hasVal := strings.Cut(arg[2:], "=")
	switch name {
	case "help":
		opts.help = true
	case "color", "colour":
		mode, err := core.ParseColorMode(val)
		if err != nil || (hasVal && val == "") {
			return usageError(stdio, "invalid argument '"+val+"' for '--color'")
		}
		opts.color = mode
	default:
		return usageError(stdio, "unrecognized option '"+arg+"'")
	}
	return core.ExitSuccess
}

// flagValue returns the value of the short flag at arg[j], taken from the
// rest of arg or from the next argument.
func flagValue(args []string, i int, arg string, j int) (string, int, bool) {
	if j+1 < len(arg) {
		return arg[j+1:], i, true
	}
	if i+1 < len(args) {
		return args[i+1], i + 1, true
	}
	return "", i, false
}

func usageError(stdio *core.Stdio, message string) int {
	code := core.UsageError(stdio, applet, message)
	stdio.Errorf("Try '%s -h' for more information.\n", applet)
	return code
}

func usage(stdio *core.Stdio) {
	stdio.Printf(`Usage: %s [OPTIONS] PATTERN...

Expand each glob PATTERN and print the matching paths, one per line.

	-E ENGINE	Matching engine: %s (default %s, or $%s)
	-a		Include hidden files and directories
	-f		Print files only, not directories
	-m		Append / to directories
	-i		Case-insensitive matching (doublestar only)
	-L		Follow symlinked directories while walking **
	-s		Sort the matches of each pattern
	-0		End each path with NUL instead of newline
	-x PATTERN	Drop matches of PATTERN (repeatable)
	-j N		Expand at most N patterns at once
	--color[=WHEN]	Color error prefixes: always, auto, never
	--		End options; later arguments are patterns even if they start with -

The doublestar engine rejects '..' after a wildcard; use -E zglob for those.
`, applet, strings.Join(expand.Engines, ", "), expand.DefaultEngine, EngineEnv)
}
