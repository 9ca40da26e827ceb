package testutil

import (
	"os"
	"sync"
	"testing"
)

var cwdMu sync.Mutex

func ClampString(data string, max int) string {
	if len(data) > max {
		return data[:max]
	}
	return data
}

func RunAppletInDir(t *testing.T, run RunApplet, args []string, input string, dir string) (string, string, int) {
	t.Helper()
	cwdMu.Lock()
	defer cwdMu.Unlock()

	oldDir, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(oldDir) }()

	stdio, out, errBuf := CaptureStdio(input)
	code := run(stdio, args)
	return out.String(), errBuf.String(), code
}

// FuzzRun runs an applet in a fresh directory holding files and fails the
// test if it panics or returns an exit code outside allowed.
func FuzzRun(t *testing.T, run RunApplet, args []string, files map[string]string, allowed ...int) (string, string) {
	t.Helper()
	dir := TempDirWithFiles(t, files)
	out, errOut, code := RunAppletInDir(t, run, args, "", dir)
	for _, c := range allowed {
		if c == code {
			return out, errOut
		}
	}
	t.Fatalf("unexpected exit code %d for args %q (stderr %q)", code, args, errOut)
	return out, errOut
}
