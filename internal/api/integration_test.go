package api_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/nebari-dev/rbacadmin/internal/api"
	"github.com/nebari-dev/rbacadmin/internal/api/handlers"
	"github.com/nebari-dev/rbacadmin/internal/cliclient"
	"github.com/nebari-dev/rbacadmin/internal/config"
	"github.com/nebari-dev/rbacadmin/internal/db"
	"github.com/nebari-dev/rbacadmin/internal/manager"
	"github.com/nebari-dev/rbacadmin/internal/models"
	"github.com/nebari-dev/rbacadmin/internal/notify"
)

func startStore(t *testing.T) *cliclient.Client {
	t.Helper()
	gin.SetMode(gin.TestMode)
	gdb, err := db.New(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.Migrate(gdb, handlers.Tables()...); err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(api.NewRouter(config.MockConfig{}, gdb))
	t.Cleanup(srv.Close)
	return cliclient.New(srv.URL)
}

func TestManagersAgainstStore(t *testing.T) {
	ctx := context.Background()
	client := startStore(t)
	rec := &notify.Recorder{}

	perms := manager.NewPermissions(client.Permissions(), manager.PermissionOption{}, manager.WithNotifier(rec))
	defer perms.Close()
	if err := perms.Load(ctx); err != nil {
		t.Fatalf("load permissions: %v", err)
	}
	for _, name := range []string{"Read", "Write"} {
		if _, err := perms.Create(ctx, models.Permission{Name: name}); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}

	roles := manager.NewRoles(client.Roles(), client.Permissions(), manager.WithNotifier(rec))
	defer roles.Close()
	if err := roles.Load(ctx); err != nil {
		t.Fatalf("load roles: %v", err)
	}
	roles.OpenCreate()
	roles.EditDraft(func(r *models.Role) { r.Name = "Editor" })
	roles.TogglePermission("Read")
	roles.TogglePermission("Write")
	editor, err := roles.Submit(ctx)
	if err != nil {
		t.Fatalf("create role: %v", err)
	}
	if !editor.ID.Numeric() || len(editor.Permissions) != 2 {
		t.Fatalf("unexpected role %+v", editor)
	}

	users := manager.NewUsers(client.Users(), client.Roles(), manager.WithNotifier(rec))
	defer users.Close()
	if err := users.Load(ctx); err != nil {
		t.Fatalf("load users: %v", err)
	}
	anna, err := users.Create(ctx, models.User{Name: "Anna", Email: "anna@example.com", Role: "Editor"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	toggled, err := users.ToggleStatus(ctx, anna.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if toggled.Status != models.StatusInactive {
		t.Fatalf("status = %q", toggled.Status)
	}

	// A fresh manager sees the persisted state.
	fresh := manager.NewUsers(client.Users(), client.Roles())
	defer fresh.Close()
	if err := fresh.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if got := fresh.Items(); len(got) != 1 || got[0].Status != models.StatusInactive {
		t.Fatalf("persisted users = %+v", got)
	}

	if err := users.Delete(ctx, anna.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := users.Delete(ctx, anna.ID); !cliclient.IsNotFound(err) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}

	for _, n := range rec.All() {
		if n.Kind == notify.KindError && n.Action != notify.ActionDelete {
			t.Fatalf("unexpected failure notification %+v", n)
		}
	}
}
