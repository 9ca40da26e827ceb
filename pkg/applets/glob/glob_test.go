package glob_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rcarmo/go-glob/pkg/applets/glob"
	"github.com/rcarmo/go-glob/pkg/core"
	"github.com/rcarmo/go-glob/pkg/testutil"
)

var textFiles = map[string]string{
	"a.txt": "a",
	"b.txt": "b",
	"c.md":  "c",
}

func TestGlob(t *testing.T) {
	tests := []testutil.AppletTestCase{
		{
			Name:      "no_args",
			Args:      []string{},
			WantCode:  core.ExitSuccess,
			WantNoOut: true,
			Check: func(t *testing.T, dir string) {
				out, errOut, code := testutil.CaptureAndRun(t, glob.Run, nil, "")
				testutil.AssertExitCode(t, code, core.ExitSuccess)
				testutil.AssertOutput(t, out.String(), "")
				testutil.AssertOutput(t, errOut.String(), "")
			},
		},
		{
			Name:      "txt_and_md",
			Args:      []string{"*.txt", "*.md"},
			WantCode:  core.ExitSuccess,
			WantLines: []string{"a.txt", "b.txt", "c.md"},
			Files:     textFiles,
		},
		{
			Name:     "sorted_within_pattern",
			Args:     []string{"-s", "*"},
			WantCode: core.ExitSuccess,
			WantOut:  "a.txt\nb.txt\nc.md\n",
			Files:    textFiles,
		},
		{
			Name:      "no_match",
			Args:      []string{"*.go"},
			WantCode:  core.ExitSuccess,
			WantNoOut: true,
			Files:     textFiles,
		},
		{
			Name:      "literal_missing",
			Args:      []string{"missing.txt"},
			WantCode:  core.ExitSuccess,
			WantNoOut: true,
			Files:     textFiles,
		},
		{
			Name:      "bad_pattern_does_not_stop_others",
			Args:      []string{"[", "*.txt"},
			WantCode:  core.ExitFailure,
			WantLines: []string{"a.txt", "b.txt"},
			WantErr:   "glob: [: ",
			Files:     textFiles,
			Check: func(t *testing.T, dir string) {
				_, errOut, _ := testutil.CaptureAndRun(t, glob.Run, []string{"[", "*.txt", "*.md"}, "")
				if lines := testutil.SplitLines(errOut.String()); len(lines) != 1 {
					t.Fatalf("expected one error line, got %q", errOut.String())
				}
			},
		},
		{
			Name:      "recursive",
			Args:      []string{"**/*.txt"},
			WantCode:  core.ExitSuccess,
			WantLines: []string{"a.txt", "sub/deep/x.txt"},
			Files: map[string]string{
				"a.txt":          "a",
				"sub/deep/x.txt": "x",
				"sub/y.md":       "y",
			},
		},
		{
			Name:      "braces",
			Args:      []string{"*.{md,go}"},
			WantCode:  core.ExitSuccess,
			WantLines: []string{"c.md"},
			Files:     textFiles,
		},
		{
			Name:      "files_only",
			Args:      []string{"-f", "*"},
			WantCode:  core.ExitSuccess,
			WantLines: []string{"a.txt"},
			Files: map[string]string{
				"a.txt": "a",
				"sub/":  "",
			},
		},
		{
			Name:      "mark_dirs",
			Args:      []string{"-m", "*"},
			WantCode:  core.ExitSuccess,
			WantLines: []string{"a.txt", "sub/"},
			Files: map[string]string{
				"a.txt": "a",
				"sub/":  "",
			},
		},
		{
			Name:      "hidden_skipped",
			Args:      []string{"*"},
			WantCode:  core.ExitSuccess,
			WantLines: []string{"a.txt"},
			Files: map[string]string{
				"a.txt": "a",
				".env":  "x",
			},
		},
		{
			Name:      "hidden_included",
			Args:      []string{"-a", "*"},
			WantCode:  core.ExitSuccess,
			WantLines: []string{".env", "a.txt"},
			Files: map[string]string{
				"a.txt": "a",
				".env":  "x",
			},
		},
		{
			Name:      "exclude",
			Args:      []string{"-x", "b*", "*.txt"},
			WantCode:  core.ExitSuccess,
			WantLines: []string{"a.txt"},
			Files:     textFiles,
		},
		{
			Name:     "print0",
			Args:     []string{"-s0", "*.txt"},
			WantCode: core.ExitSuccess,
			WantOut:  "a.txt\x00b.txt\x00",
			Files:    textFiles,
		},
		{
			Name:      "engine_zglob",
			Args:      []string{"-E", "zglob", "*.txt"},
			WantCode:  core.ExitSuccess,
			WantLines: []string{"a.txt", "b.txt"},
			Files:     textFiles,
		},
		{
			Name:      "engine_basic",
			Args:      []string{"-Ebasic", "*.md"},
			WantCode:  core.ExitSuccess,
			WantLines: []string{"c.md"},
			Files:     textFiles,
		},
		{
			Name:      "engine_from_env",
			Args:      []string{"*.txt"},
			WantCode:  core.ExitUsage,
			WantNoOut: true,
			WantErr:   "unknown engine",
			Files:     textFiles,
			Setup: func(t *testing.T, dir string) {
				t.Setenv(glob.EngineEnv, "fnmatch")
			},
		},
		{
			Name:      "nocase_unsupported",
			Args:      []string{"-i", "-E", "basic", "*.TXT"},
			WantCode:  core.ExitUsage,
			WantNoOut: true,
			WantErr:   "case-insensitive",
			Files:     textFiles,
		},
		{
			Name:      "nocase",
			Args:      []string{"-i", "*.TXT"},
			WantCode:  core.ExitSuccess,
			WantLines: []string{"a.txt", "b.txt"},
			Files:     textFiles,
		},
		{
			Name:      "dash_pattern_after_double_dash",
			Args:      []string{"--", "-x.txt"},
			WantCode:  core.ExitSuccess,
			WantLines: []string{"-x.txt"},
			Files: map[string]string{
				"-x.txt": "x",
			},
		},
		{
			Name:      "invalid_option",
			Args:      []string{"-q", "*.txt"},
			WantCode:  core.ExitUsage,
			WantNoOut: true,
			WantErr:   "invalid option -- 'q'",
		},
		{
			Name:      "missing_engine",
			Args:      []string{"-E"},
			WantCode:  core.ExitUsage,
			WantNoOut: true,
			WantErr:   "option requires an argument -- 'E'",
		},
		{
			Name:      "invalid_jobs",
			Args:      []string{"-j", "0", "*.txt"},
			WantCode:  core.ExitUsage,
			WantNoOut: true,
			WantErr:   "invalid number: 0",
		},
		{
			Name:      "invalid_exclude",
			Args:      []string{"-x", "[", "*.txt"},
			WantCode:  core.ExitUsage,
			WantNoOut: true,
			WantErr:   "invalid exclude pattern",
		},
		{
			Name:      "invalid_color",
			Args:      []string{"--color=sometimes", "*.txt"},
			WantCode:  core.ExitUsage,
			WantNoOut: true,
			WantErr:   "for '--color'",
		},
		{
			Name:      "unrecognized_long",
			Args:      []string{"--nodir", "*.txt"},
			WantCode:  core.ExitUsage,
			WantNoOut: true,
			WantErr:   "unrecognized option '--nodir'",
		},
		{
			Name:       "help",
			Args:       []string{"-h"},
			WantCode:   core.ExitSuccess,
			WantOutSub: "Usage: glob",
			Check: func(t *testing.T, dir string) {
				out, _, _ := testutil.CaptureAndRun(t, glob.Run, []string{"-h"}, "")
				testutil.AssertOutputContains(t, out.String(), "\t--\t")
			},
		},
		{
			Name:     "trailing_globstar_includes_base",
			Args:     []string{"-s", "sub/**"},
			WantCode: core.ExitSuccess,
			WantOut:  "sub\nsub/x.txt\n",
			Files:    map[string]string{"sub/x.txt": "x"},
		},
		{
			Name:     "trailing_globstar_marked",
			Args:     []string{"-sm", "sub/**"},
			WantCode: core.ExitSuccess,
			WantOut:  "sub/\nsub/x.txt\n",
			Files:    map[string]string{"sub/x.txt": "x"},
		},
		{
			Name:      "engine_zglob_bad_pattern",
			Args:      []string{"-E", "zglob", "[", "*.txt"},
			WantCode:  core.ExitFailure,
			WantLines: []string{"a.txt", "b.txt"},
			WantErr:   "glob: [: ",
			Files:     textFiles,
		},
		{
			Name:      "dotdot_after_wildcard",
			Args:      []string{"*/../*.txt", "*.md"},
			WantCode:  core.ExitFailure,
			WantLines: []string{"c.md"},
			WantErr:   "'..' after a wildcard",
			Files:     textFiles,
		},
		{
			Name:      "jobs_limit",
			Args:      []string{"-j1", "a.txt", "b.txt", "c.md"},
			WantCode:  core.ExitSuccess,
			WantLines: []string{"a.txt", "b.txt", "c.md"},
			Files:     textFiles,
		},
	}

	testutil.RunAppletTests(t, glob.Run, tests)
}

func TestGlobColor(t *testing.T) {
	dir := testutil.TempDirWithFiles(t, textFiles)

	_, errOut, code := testutil.RunAppletInDir(t, glob.Run, []string{"--color=always", "["}, "", dir)
	testutil.AssertExitCode(t, code, core.ExitFailure)
	testutil.AssertOutputContains(t, errOut, "\x1b[")

	_, errOut, _ = testutil.RunAppletInDir(t, glob.Run, []string{"--color=never", "["}, "", dir)
	if strings.Contains(errOut, "\x1b[") {
		t.Fatalf("unexpected escape sequence: %q", errOut)
	}
}

func TestGlobManyPatterns(t *testing.T) {
	files := map[string]string{}
	args := []string{}
	want := []string{}
	for i := 0; i < 64; i++ {
		name := fmt.Sprintf("f%02d.txt", i)
		files[name] = name
		args = append(args, name)
		want = append(want, name)
	}
	// Each pattern is its own expansion, so a file matched by two patterns
	// is printed twice.
	args = append(args, "f0*.txt")
	for i := 0; i < 10; i++ {
		want = append(want, fmt.Sprintf("f%02d.txt", i))
	}

	dir := testutil.TempDirWithFiles(t, files)
	out, errOut, code := testutil.RunAppletInDir(t, glob.Run, args, "", dir)
	testutil.AssertExitCode(t, code, core.ExitSuccess)
	testutil.AssertOutput(t, errOut, "")
	testutil.AssertLines(t, out, want)
}

func TestGlobBlocksNotInterleaved(t *testing.T) {
	files := map[string]string{}
	for _, d := range []string{"x", "y", "z"} {
		for i := 0; i < 20; i++ {
			files[filepath.Join(d, fmt.Sprintf("%02d", i))] = ""
		}
	}
	dir := testutil.TempDirWithFiles(t, files)
	out, _, code := testutil.RunAppletInDir(t, glob.Run, []string{"-s", "x/*", "y/*", "z/*"}, "", dir)
	testutil.AssertExitCode(t, code, core.ExitSuccess)

	lines := testutil.SplitLines(out)
	if len(lines) != 60 {
		t.Fatalf("expected 60 lines, got %d", len(lines))
	}
	for block := 0; block < 3; block++ {
		chunk := lines[block*20 : (block+1)*20]
		prefix := chunk[0][:2]
		for i, l := range chunk {
			if want := fmt.Sprintf("%s%02d", prefix, i); l != want {
				t.Fatalf("line %d of block %d = %q, want %q", i, block, l, want)
			}
		}
	}
}

func TestGlobAbsolutePattern(t *testing.T) {
	dir := testutil.TempDirWithFiles(t, textFiles)
	pattern := filepath.ToSlash(dir) + "/*.md"
	out, _, code := testutil.CaptureAndRun(t, glob.Run, []string{pattern}, "")
	testutil.AssertExitCode(t, code, core.ExitSuccess)
	testutil.AssertOutput(t, out.String(), filepath.ToSlash(dir)+"/c.md\n")
}

func TestGlobPermissionError(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("running as root")
	}
	dir := testutil.TempDirWithFiles(t, map[string]string{"locked/inner": "", "ok.txt": ""})
	locked := filepath.Join(dir, "locked")
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	out, errOut, code := testutil.RunAppletInDir(t, glob.Run, []string{"locked/*", "*.txt"}, "", dir)
	testutil.AssertExitCode(t, code, core.ExitFailure)
	testutil.AssertOutput(t, out, "ok.txt\n")
	testutil.AssertOutputContains(t, errOut, "glob: locked/*: ")
}
