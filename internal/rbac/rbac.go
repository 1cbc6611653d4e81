// Package rbac evaluates the users, roles and permissions held by the store as a
// casbin policy: roles grant permission names and active users inherit the
// grants of their role.
package rbac

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"

	"github.com/nebari-dev/rbacadmin/internal/models"
)

//go:embed model.conf
var modelConf string

// Data is the policy input.
type Data struct {
	Users       []models.User
	Roles       []models.Role
	Permissions []models.Permission
}

// Enforcer answers permission questions about one Data snapshot.
type Enforcer struct {
	e    *casbin.Enforcer
	data Data
}

// UserSubject is the casbin subject for a user.
func UserSubject(id models.ID) string { return "user:" + id.String() }

// RoleSubject is the casbin subject for a role.
func RoleSubject(name string) string { return "role:" + name }

func newModel() (model.Model, error) {
	m, err := model.NewModelFromString(modelConf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse casbin model: %w", err)
	}
	return m, nil
}

// rules flattens d into policy and grouping rules. Inactive users are not
// grouped, so they hold no permissions.
func rules(d Data) (policies, groupings [][]string) {
	seen := map[string]bool{}
	for _, r := range d.Roles {
		for _, p := range r.Permissions {
			key := r.Name + "\x00" + p
			if seen[key] {
				continue
			}
			seen[key] = true
			policies = append(policies, []string{RoleSubject(r.Name), p})
		}
	}
	for _, u := range d.Users {
		if u.Status != models.StatusActive || u.Role == "" || u.ID.IsZero() {
			continue
		}
		groupings = append(groupings, []string{UserSubject(u.ID), RoleSubject(u.Role)})
	}
	return policies, groupings
}

func load(e *casbin.Enforcer, d Data) error {
	policies, groupings := rules(d)
	if len(policies) > 0 {
		if _, err := e.AddPolicies(policies); err != nil {
			return fmt.Errorf("failed to add policies: %w", err)
		}
	}
	if len(groupings) > 0 {
		if _, err := e.AddGroupingPolicies(groupings); err != nil {
			return fmt.Errorf("failed to add role assignments: %w", err)
		}
	}
	return nil
}

// NewEnforcer builds an in-memory enforcer for d.
func NewEnforcer(d Data) (*Enforcer, error) {
	m, err := newModel()
	if err != nil {
		return nil, err
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}
	if err := load(e, d); err != nil {
		return nil, err
	}
	return &Enforcer{e: e, data: d}, nil
}

// Can reports whether user holds permission through their role.
func (en *Enforcer) Can(user models.User, permission string) (bool, error) {
	return en.e.Enforce(UserSubject(user.ID), permission)
}

// PermissionsFor returns the sorted permission names user holds.
func (en *Enforcer) PermissionsFor(user models.User) ([]string, error) {
	rows, err := en.e.GetImplicitPermissionsForUser(UserSubject(user.ID))
	if err != nil {
		return nil, err
	}
	set := map[string]bool{}
	for _, row := range rows {
		if len(row) >= 2 {
			set[row[1]] = true
		}
	}
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out, nil
}

// FindUser resolves a user by id or, failing that, by exact name.
func (en *Enforcer) FindUser(ref string) (models.User, bool) {
	for _, u := range en.data.Users {
		if u.ID.String() == ref {
			return u, true
		}
	}
	for _, u := range en.data.Users {
		if u.Name == ref {
			return u, true
		}
	}
	return models.User{}, false
}

// Issue is one inconsistency found by Lint.
type Issue struct {
	Kind    string // "orphan-role", "unknown-permission", "duplicate-name", "duplicate-grant"
	Subject string
	Detail  string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s %s: %s", i.Kind, i.Subject, i.Detail)
}

// Lint reports references that point nowhere and names that are not unique.
// Associations are stored by name, so renames and deletes leave these behind.
func Lint(d Data) []Issue {
	var issues []Issue

	roleNames := map[string]int{}
	for _, r := range d.Roles {
		roleNames[r.Name]++
	}
	permNames := map[string]int{}
	for _, p := range d.Permissions {
		permNames[p.Name]++
	}
	userNames := map[string]int{}
	for _, u := range d.Users {
		userNames[u.Name]++
	}

	for _, u := range d.Users {
		if roleNames[u.Role] == 0 {
			issues = append(issues, Issue{
				Kind:    "orphan-role",
				Subject: "user " + u.Name,
				Detail:  fmt.Sprintf("role %q does not exist", u.Role),
			})
		}
	}
	for _, r := range d.Roles {
		seen := map[string]bool{}
		for _, p := range r.Permissions {
			if seen[p] {
				issues = append(issues, Issue{Kind: "duplicate-grant", Subject: "role " + r.Name, Detail: p})
				continue
			}
			seen[p] = true
			if permNames[p] == 0 {
				issues = append(issues, Issue{
					Kind:    "unknown-permission",
					Subject: "role " + r.Name,
					Detail:  fmt.Sprintf("permission %q does not exist", p),
				})
			}
		}
	}
	issues = append(issues, duplicates("user", userNames)...)
	issues = append(issues, duplicates("role", roleNames)...)
	issues = append(issues, duplicates("permission", permNames)...)
	return issues
}

func duplicates(entity string, counts map[string]int) []Issue {
	var names []string
	for n, c := range counts {
		if c > 1 {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	out := make([]Issue, len(names))
	for i, n := range names {
		out[i] = Issue{
			Kind:    "duplicate-name",
			Subject: entity + " " + n,
			Detail:  fmt.Sprintf("%d %ss share this name", counts[n], entity),
		}
	}
	return out
}

// Sync replaces the casbin rules stored in db with the policy for d, so a
// service using the gorm adapter can load them. It returns the number of rules
// written.
func Sync(ctx context.Context, db *gorm.DB, d Data, logger *slog.Logger) (int, error) {
	adapter, err := gormadapter.NewAdapterByDB(db.WithContext(ctx))
	if err != nil {
		return 0, fmt.Errorf("failed to create casbin adapter: %w", err)
	}
	m, err := newModel()
	if err != nil {
		return 0, err
	}
	e, err := casbin.NewEnforcer(m, adapter)
	if err != nil {
		return 0, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}
	e.EnableAutoSave(false)
	e.ClearPolicy()
	if err := load(e, d); err != nil {
		return 0, err
	}
	if err := e.SavePolicy(); err != nil {
		return 0, fmt.Errorf("failed to save policies: %w", err)
	}

	policies, groupings := rules(d)
	n := len(policies) + len(groupings)
	logger.Info("RBAC policy synced", "rules", n)
	return n, nil
}

// Describe renders the rules for d, one per line, in casbin CSV form.
func Describe(d Data) string {
	policies, groupings := rules(d)
	var b strings.Builder
	for _, p := range policies {
		fmt.Fprintf(&b, "p, %s\n", strings.Join(p, ", "))
	}
	for _, g := range groupings {
		fmt.Fprintf(&b, "g, %s\n", strings.Join(g, ", "))
	}
	return b.String()
}
