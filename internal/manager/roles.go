package manager

import (
	"fmt"
	"strings"

	"github.com/nebari-dev/rbacadmin/internal/assoc"
	"github.com/nebari-dev/rbacadmin/internal/models"
	"github.com/nebari-dev/rbacadmin/internal/validate"
)

// Roles manages the role collection and loads the permissions offered as
// checkboxes by the form.
type Roles struct {
	*Manager[models.Role]
	Permissions *Catalog[models.Permission]
}

// NewRoles returns a role manager.
func NewRoles(roles Backend[models.Role], perms Lister[models.Permission], opts ...Option) *Roles {
	r := &Roles{Permissions: NewCatalog(perms)}
	r.Manager = New(Resource[models.Role]{
		Entity:   "role",
		NewDraft: models.NewRoleDraft,
		Validate: r.validate,
		Clone:    models.Role.Clone,
	}, roles, opts...)
	r.join(r.Permissions)
	return r
}

// validate applies the role rules, drops duplicate grants and, once permissions
// are loaded, rejects newly granted names that do not exist.
func (r *Roles) validate(draft, prev *models.Role) error {
	if err := validate.Role(draft); err != nil {
		return err
	}
	draft.Permissions = assoc.Dedupe(draft.Permissions)
	if !r.Permissions.Loaded() {
		return nil
	}
	added := draft.Permissions
	if prev != nil {
		added = assoc.Unknown(draft.Permissions, prev.Permissions)
	}
	if unknown := assoc.Unknown(added, r.Permissions.Names()); len(unknown) > 0 {
		return &validate.Error{Fields: map[string]string{
			"permissions": fmt.Sprintf("unknown permissions: %s", strings.Join(unknown, ", ")),
		}}
	}
	return nil
}

// PermissionOptions lists every known permission, checked when the open draft
// holds it.
func (r *Roles) PermissionOptions() []assoc.Option {
	return assoc.Options(r.Permissions.Names(), r.State().Form.Draft.Permissions)
}

// TogglePermission checks or unchecks a permission in the open draft.
func (r *Roles) TogglePermission(name string) {
	r.EditDraft(func(d *models.Role) {
		d.Permissions = assoc.Toggle(d.Permissions, name)
	})
}

// SetPermission checks or unchecks a permission in the open draft explicitly.
func (r *Roles) SetPermission(name string, on bool) {
	r.EditDraft(func(d *models.Role) {
		d.Permissions = assoc.Set(d.Permissions, name, on)
	})
}
