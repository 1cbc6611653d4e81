package rbac

import (
	"context"
	"io"
	"log/slog"
	"reflect"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nebari-dev/rbacadmin/internal/models"
)

func fixture() Data {
	return Data{
		Permissions: []models.Permission{
			{ID: models.StringID("p1"), Name: "Read"},
			{ID: models.StringID("p2"), Name: "Write"},
		},
		Roles: []models.Role{
			{ID: models.NumericID(1), Name: "Viewer", Permissions: []string{"Read"}},
			{ID: models.NumericID(2), Name: "Editor", Permissions: []string{"Read", "Write"}},
		},
		Users: []models.User{
			{ID: models.NumericID(1), Name: "Anna", Role: "Editor", Status: models.StatusActive},
			{ID: models.NumericID(2), Name: "Bob", Role: "Viewer", Status: models.StatusActive},
			{ID: models.NumericID(3), Name: "Carl", Role: "Editor", Status: models.StatusInactive},
		},
	}
}

func TestCan(t *testing.T) {
	d := fixture()
	en, err := NewEnforcer(d)
	if err != nil {
		t.Fatalf("NewEnforcer: %v", err)
	}

	tests := []struct {
		user int
		perm string
		want bool
	}{
		{0, "Write", true},
		{1, "Read", true},
		{1, "Write", false},
		{2, "Read", false}, // inactive
	}
	for _, tt := range tests {
		got, err := en.Can(d.Users[tt.user], tt.perm)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("Can(%s, %s) = %v, want %v", d.Users[tt.user].Name, tt.perm, got, tt.want)
		}
	}
}

func TestPermissionsFor(t *testing.T) {
	d := fixture()
	en, err := NewEnforcer(d)
	if err != nil {
		t.Fatal(err)
	}
	got, err := en.PermissionsFor(d.Users[0])
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []string{"Read", "Write"}) {
		t.Fatalf("got %v", got)
	}
	got, _ = en.PermissionsFor(d.Users[2])
	if len(got) != 0 {
		t.Fatalf("inactive user should hold nothing, got %v", got)
	}
}

func TestFindUser(t *testing.T) {
	en, _ := NewEnforcer(fixture())
	if u, ok := en.FindUser("2"); !ok || u.Name != "Bob" {
		t.Fatalf("by id: %+v %v", u, ok)
	}
	if u, ok := en.FindUser("Anna"); !ok || u.ID.String() != "1" {
		t.Fatalf("by name: %+v %v", u, ok)
	}
	if _, ok := en.FindUser("Zed"); ok {
		t.Fatal("unexpected match")
	}
}

func TestLint(t *testing.T) {
	d := fixture()
	d.Users = append(d.Users, models.User{ID: models.NumericID(4), Name: "Otto", Role: "Legacy", Status: models.StatusActive})
	d.Roles = append(d.Roles, models.Role{ID: models.NumericID(3), Name: "Viewer", Permissions: []string{"Deploy", "Deploy"}})

	issues := Lint(d)
	kinds := map[string]int{}
	for _, i := range issues {
		kinds[i.Kind]++
	}
	want := map[string]int{"orphan-role": 1, "unknown-permission": 1, "duplicate-grant": 1, "duplicate-name": 1}
	if !reflect.DeepEqual(kinds, want) {
		t.Fatalf("issues = %v", issues)
	}

	if issues := Lint(fixture()); len(issues) != 0 {
		t.Fatalf("clean data reported %v", issues)
	}
}

func TestSync(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	n, err := Sync(context.Background(), db, fixture(), quiet)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	// 3 grants + 2 active assignments
	if n != 5 {
		t.Fatalf("rules = %d", n)
	}

	var count int64
	db.Table("casbin_rule").Count(&count)
	if count != 5 {
		t.Fatalf("stored rules = %d", count)
	}

	// A second sync replaces rather than appends.
	d := fixture()
	d.Users = d.Users[:1]
	if _, err := Sync(context.Background(), db, d, quiet); err != nil {
		t.Fatal(err)
	}
	db.Table("casbin_rule").Count(&count)
	if count != 4 {
		t.Fatalf("stored rules after resync = %d", count)
	}
}

func TestDescribe(t *testing.T) {
	got := Describe(Data{
		Roles: []models.Role{{Name: "Viewer", Permissions: []string{"Read"}}},
		Users: []models.User{{ID: models.NumericID(7), Role: "Viewer", Status: models.StatusActive}},
	})
	want := "p, role:Viewer, Read\ng, user:7, role:Viewer\n"
	if got != want {
		t.Fatalf("got %q", got)
	}
}
