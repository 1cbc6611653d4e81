package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nebari-dev/rbacadmin/internal/config"
	"github.com/nebari-dev/rbacadmin/internal/server"
)

func startMock(t *testing.T) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	s, err := server.Start(context.Background(), server.Config{
		Mock: config.MockConfig{Database: config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"}},
		Host: "127.0.0.1",
	})
	if err != nil {
		t.Fatalf("starting mock store: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.Shutdown(ctx)
	})
	return s.URL()
}

// resetFlags clears values and Changed marks left by a previous run.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			sv.Replace(nil)
		} else {
			f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func run(t *testing.T, url string, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append([]string{"--api-url", url, "--log-level", "error"}, args...))
	err := rootCmd.Execute()
	teardown()
	return out.String(), errOut.String(), err
}

func mustRun(t *testing.T, url string, args ...string) string {
	t.Helper()
	out, errOut, err := run(t, url, args...)
	if err != nil {
		t.Fatalf("%v: %v\nstderr: %s", args, err, errOut)
	}
	return out
}

func TestEndToEnd(t *testing.T) {
	url := startMock(t)

	if out := mustRun(t, url, "users", "list"); out != "No users found.\n" {
		t.Fatalf("empty list = %q", out)
	}

	mustRun(t, url, "permissions", "create", "--name", "Read")
	mustRun(t, url, "permissions", "create", "--name", "Write")
	if _, _, err := run(t, url, "permissions", "create", "--name", "Read2"); err == nil {
		t.Fatal("expected letters-only validation error")
	}

	roleID := strings.TrimSpace(mustRun(t, url, "roles", "create", "--name", "Editor", "-p", "Read"))
	out := mustRun(t, url, "roles", "grant", roleID, "Write")
	if out != "[x] Read\n[x] Write\n" {
		t.Fatalf("grant output = %q", out)
	}

	_, stderr, err := run(t, url, "users", "create", "--name", "Anna", "--email", "anna@example.com", "--role", "Editor")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if !strings.Contains(stderr, "User added successfully") {
		t.Fatalf("missing notification in %q", stderr)
	}

	if out := mustRun(t, url, "policy", "check", "Anna", "Write"); out != "Anna may Write\n" {
		t.Fatalf("check = %q", out)
	}

	out = mustRun(t, url, "users", "toggle-status", "1")
	if out != "Anna is now Inactive\n" {
		t.Fatalf("toggle = %q", out)
	}
	if _, _, err := run(t, url, "policy", "check", "Anna", "Write"); err == nil {
		t.Fatal("inactive user should be denied")
	}

	out = mustRun(t, url, "users", "list", "--search", "ANN", "-o", "json")
	if !strings.Contains(out, `"status": "Inactive"`) {
		t.Fatalf("json list = %q", out)
	}

	if out := mustRun(t, url, "policy", "lint"); out != "No issues found.\n" {
		t.Fatalf("lint = %q", out)
	}
}

func TestDeleteConfirmation(t *testing.T) {
	url := startMock(t)
	mustRun(t, url, "permissions", "create", "--name", "Read")
	out := mustRun(t, url, "permissions", "list", "-o", "yaml")
	id := strings.TrimSpace(strings.TrimPrefix(strings.SplitN(out, "\n", 2)[0], "- id:"))

	orig := confirmDelete
	defer func() { confirmDelete = orig }()

	var asked string
	confirmDelete = func(q string) (bool, error) {
		asked = q
		return false, nil
	}
	mustRun(t, url, "permissions", "delete", id)
	if asked != `Delete permission "Read"?` {
		t.Fatalf("question = %q", asked)
	}
	if out := mustRun(t, url, "permissions", "list"); !strings.Contains(out, "Read") {
		t.Fatal("declined delete removed the record")
	}

	confirmDelete = func(string) (bool, error) {
		t.Fatal("--yes must not prompt")
		return false, nil
	}
	mustRun(t, url, "permissions", "delete", id, "--yes")
	if out := mustRun(t, url, "permissions", "list"); out != "No permissions found.\n" {
		t.Fatalf("after delete = %q", out)
	}
}

func TestExportImport(t *testing.T) {
	src := startMock(t)
	mustRun(t, src, "permissions", "create", "--name", "Read")
	mustRun(t, src, "roles", "create", "--name", "Viewer", "-p", "Read")
	mustRun(t, src, "users", "create", "--name", "Bob", "--email", "bob@example.com", "--role", "Viewer")

	path := filepath.Join(t.TempDir(), "snap.toml")
	mustRun(t, src, "export", path)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("export file: %v", err)
	}

	dst := startMock(t)
	if out := mustRun(t, dst, "import", path); out != "Import: 3 created, 0 skipped, 0 failed\n" {
		t.Fatalf("import = %q", out)
	}
	if out := mustRun(t, dst, "import", path); out != "Import: 0 created, 3 skipped, 0 failed\n" {
		t.Fatalf("re-import = %q", out)
	}
	if out := mustRun(t, dst, "policy", "check", "Bob"); out != "Read\n" {
		t.Fatalf("imported policy = %q", out)
	}
}

func TestUnreachableStore(t *testing.T) {
	out, _, err := run(t, "http://127.0.0.1:1", "roles", "list")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.HasPrefix(out, "Error: Failed to fetch data:") {
		t.Fatalf("load error not shown in place of the table: %q", out)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestPrintStructured(t *testing.T) {
	var buf bytes.Buffer
	if err := printStructured(&buf, map[string]string{"name": "Admin"}, "yaml"); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if got := buf.String(); got != "name: Admin\n" {
		t.Fatalf("unexpected yaml %q", got)
	}
	if err := printStructured(failingWriter{}, map[string]string{"name": "Admin"}, "yaml"); err == nil {
		t.Fatal("expected the write error to be returned")
	}
	if err := printStructured(&buf, nil, "csv"); err == nil {
		t.Fatal("expected an error for an unknown format")
	}
}

func TestVersion(t *testing.T) {
	out := mustRun(t, "http://unused", "version")
	if out != "rbacadmin version dev\n" {
		t.Fatalf("got %q", out)
	}
}
