package manager

import (
	"context"
	"reflect"
	"testing"

	"github.com/nebari-dev/rbacadmin/internal/assoc"
	"github.com/nebari-dev/rbacadmin/internal/models"
	"github.com/nebari-dev/rbacadmin/internal/validate"
)

func rolesFixture(t *testing.T) (*Roles, *fakeBackend[models.Role]) {
	t.Helper()
	roles := newFake(setRoleID,
		models.Role{ID: models.NumericID(1), Name: "Editor", Permissions: []string{"Read", "Archive"}},
	)
	perms := newFake(setPermID,
		models.Permission{ID: models.StringID("p1"), Name: "Read"},
		models.Permission{ID: models.StringID("p2"), Name: "Write"},
	)
	m := NewRoles(roles, perms)
	t.Cleanup(m.Close)
	if err := m.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return m, roles
}

func TestCheckboxGrantsPermission(t *testing.T) {
	m, _ := rolesFixture(t)

	m.OpenCreate()
	m.EditDraft(func(r *models.Role) { r.Name = "Author" })
	m.SetPermission("Read", true)
	m.TogglePermission("Write")

	want := []assoc.Option{{Name: "Read", Checked: true}, {Name: "Write", Checked: true}}
	if got := m.PermissionOptions(); !reflect.DeepEqual(got, want) {
		t.Fatalf("options = %+v", got)
	}

	created, err := m.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !reflect.DeepEqual(created.Permissions, []string{"Read", "Write"}) {
		t.Fatalf("permissions = %v", created.Permissions)
	}
}

func TestUncheckRevokesPermission(t *testing.T) {
	m, _ := rolesFixture(t)

	editor, _ := m.Find(models.NumericID(1))
	m.OpenEdit(editor)
	m.TogglePermission("Read")
	if got := m.State().Form.Draft.Permissions; !reflect.DeepEqual(got, []string{"Archive"}) {
		t.Fatalf("draft = %v", got)
	}
	// The form works on a copy.
	if cached, _ := m.Find(models.NumericID(1)); len(cached.Permissions) != 2 {
		t.Fatalf("cache mutated by form edit: %v", cached.Permissions)
	}

	updated, err := m.Submit(context.Background())
	if err != nil {
		t.Fatalf("editing with an orphaned grant should succeed: %v", err)
	}
	if !reflect.DeepEqual(updated.Permissions, []string{"Archive"}) {
		t.Fatalf("permissions = %v", updated.Permissions)
	}
}

func TestUnknownPermissionRejected(t *testing.T) {
	m, backend := rolesFixture(t)

	_, err := m.Create(context.Background(), models.Role{Name: "Ops", Permissions: []string{"Deploy"}})
	if !validate.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if backend.count("create") != 0 {
		t.Fatal("unexpected store call")
	}
}

func TestDuplicateGrantsCollapse(t *testing.T) {
	m, _ := rolesFixture(t)

	created, err := m.Create(context.Background(), models.Role{Name: "Ops", Permissions: []string{"Read", "Read", "Write"}})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(created.Permissions, []string{"Read", "Write"}) {
		t.Fatalf("permissions = %v", created.Permissions)
	}
}

func TestCreateRoleWithoutPermissionsSendsEmptyList(t *testing.T) {
	m, _ := rolesFixture(t)

	created, err := m.Create(context.Background(), models.Role{Name: "Guest"})
	if err != nil {
		t.Fatal(err)
	}
	if created.Permissions == nil || len(created.Permissions) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", created.Permissions)
	}
}
