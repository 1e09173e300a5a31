package builtin

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xirelogy/magpie-s3-filesystem/backend/memory"
	"github.com/xirelogy/magpie-s3-filesystem/cmd"
	ferrors "github.com/xirelogy/magpie-s3-filesystem/data/errors"
	"github.com/xirelogy/magpie-s3-filesystem/s3fs"
)

type testShell struct {
	manager *cmd.CommandManager
	stdin   *bytes.Buffer
	stdout  *bytes.Buffer
}

func newTestShell(t *testing.T) *testShell {
	t.Helper()

	store := memory.NewMemoryBackend()
	if err := store.Open(t.Context()); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	location := s3fs.NewLocationBuilder("memory").WithBucket("bucket").Build()
	fs := s3fs.NewWithClient(location, store)

	shell := &testShell{
		stdin:  &bytes.Buffer{},
		stdout: &bytes.Buffer{},
	}
	shell.manager = cmd.NewCommandManager(fs, shell.stdin, shell.stdout, nil)

	if err := InitBuiltin(shell.manager); err != nil {
		t.Fatalf("InitBuiltin failed: %v", err)
	}

	return shell
}

func (s *testShell) run(t *testing.T, args ...string) int {
	t.Helper()
	s.stdout.Reset()

	code, err := s.manager.Execute(t.Context(), args...)
	if err != nil {
		t.Fatalf("%v failed with %d: %v", args, code, err)
	}

	return code
}

func TestBuiltin_FileCommands(t *testing.T) {
	shell := newTestShell(t)

	if code := shell.run(t, "test", "-f", "docs/readme.md"); code != cmd.ExitFalse {
		t.Errorf("Expected missing file, got exit %d", code)
	}

	shell.stdin.WriteString("# Hello")
	if code := shell.run(t, "put", "docs/readme.md"); code != cmd.ExitOK {
		t.Fatalf("Expected put to succeed, got exit %d", code)
	}

	if code := shell.run(t, "test", "-f", "docs/readme.md"); code != cmd.ExitOK {
		t.Errorf("Expected file to exist, got exit %d", code)
	}
	if code := shell.run(t, "test", "-d", "docs"); code != cmd.ExitOK {
		t.Errorf("Expected implied directory, got exit %d", code)
	}

	shell.run(t, "cat", "docs/readme.md")
	if shell.stdout.String() != "# Hello" {
		t.Errorf("Expected content, got %q", shell.stdout.String())
	}

	shell.run(t, "cat", "--stat", "docs/readme.md")
	if shell.stdout.String() != "text/markdown\t7\n" {
		t.Errorf("Expected stat line, got %q", shell.stdout.String())
	}

	if code := shell.run(t, "rm", "docs/readme.md"); code != cmd.ExitOK {
		t.Errorf("Expected rm to succeed, got exit %d", code)
	}
	if code := shell.run(t, "rm", "docs/readme.md"); code != cmd.ExitFalse {
		t.Errorf("Expected second rm to report false, got exit %d", code)
	}
}

func TestBuiltin_PutFromFile(t *testing.T) {
	shell := newTestShell(t)

	source := filepath.Join(t.TempDir(), "payload.bin")
	if err := os.WriteFile(source, []byte{0x01, 0x02}, 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	shell.run(t, "put", "--type", "application/x-custom", "--file", source, "blob")
	shell.run(t, "cat", "-s", "blob")

	if shell.stdout.String() != "application/x-custom\t2\n" {
		t.Errorf("Expected explicit type, got %q", shell.stdout.String())
	}
}

func TestBuiltin_DirectoryCommands(t *testing.T) {
	shell := newTestShell(t)

	if code := shell.run(t, "rmdir", "a"); code != cmd.ExitFalse {
		t.Errorf("Expected rmdir of missing directory to report false, got exit %d", code)
	}

	shell.run(t, "mkdir", "a")
	shell.stdin.WriteString("x")
	shell.run(t, "put", "a/x.txt")

	if code := shell.run(t, "test", "-d", "a"); code != cmd.ExitOK {
		t.Errorf("Expected directory, got exit %d", code)
	}

	if code := shell.run(t, "rmdir", "--empty", "a"); code != cmd.ExitOK {
		t.Errorf("Expected rmdir to succeed, got exit %d", code)
	}
	if code := shell.run(t, "test", "-f", "a/x.txt"); code != cmd.ExitFalse {
		t.Errorf("Expected file to be removed with its directory, got exit %d", code)
	}
}

func TestBuiltin_Failures(t *testing.T) {
	shell := newTestShell(t)
	ctx := t.Context()

	if _, err := shell.manager.Execute(ctx, "cat", "missing.txt"); !errors.Is(err, ferrors.ErrStreamRead) {
		t.Errorf("Expected stream read failure, got %v", err)
	}

	if _, err := shell.manager.Execute(ctx, "put", "../escape"); !errors.Is(err, ferrors.ErrInvalidPath) {
		t.Errorf("Expected invalid path, got %v", err)
	}

	if _, err := shell.manager.Execute(ctx, "test", "-f", "-d", "a"); !errors.Is(err, cmd.ErrUsage) {
		t.Errorf("Expected usage error for conflicting flags, got %v", err)
	}

	if _, err := shell.manager.Execute(ctx, "mkdir"); !errors.Is(err, cmd.ErrUsage) {
		t.Errorf("Expected usage error without path, got %v", err)
	}
}

func TestBuiltin_Help(t *testing.T) {
	shell := newTestShell(t)

	shell.run(t, "help")

	for _, name := range []string{"cat", "help", "mkdir", "put", "rm", "rmdir", "test"} {
		if !strings.Contains(shell.stdout.String(), name) {
			t.Errorf("Expected help to list %s, got %q", name, shell.stdout.String())
		}
	}
}
