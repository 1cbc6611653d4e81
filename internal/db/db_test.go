package db

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/nebari-dev/rbacadmin/internal/config"
)

type widget struct {
	ID   uint
	Name string
}

func TestNewSQLiteAndMigrate(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "test.db")
	gdb, err := New(config.DatabaseConfig{Driver: "sqlite", DSN: dsn})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := Migrate(gdb, &widget{}); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if err := gdb.Create(&widget{Name: "a"}).Error; err != nil {
		t.Fatalf("insert: %v", err)
	}
	var count int64
	gdb.Model(&widget{}).Count(&count)
	if count != 1 {
		t.Fatalf("count = %d", count)
	}
}

func TestNewUnsupportedDriver(t *testing.T) {
	_, err := New(config.DatabaseConfig{Driver: "oracle"})
	if err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Fatalf("expected unsupported driver error, got %v", err)
	}
}

func TestSQLiteDSN(t *testing.T) {
	if got := sqliteDSN("file::memory:?cache=shared"); got != "file::memory:?cache=shared" {
		t.Errorf("memory dsn altered: %q", got)
	}
	if got := sqliteDSN("app.db"); !strings.HasPrefix(got, "app.db?_pragma=journal_mode(WAL)") {
		t.Errorf("file dsn = %q", got)
	}
}
