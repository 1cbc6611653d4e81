package manager

import (
	"context"
	"fmt"

	"github.com/nebari-dev/rbacadmin/internal/assoc"
	"github.com/nebari-dev/rbacadmin/internal/models"
	"github.com/nebari-dev/rbacadmin/internal/validate"
)

// Users manages the user collection and loads the roles offered by the form.
type Users struct {
	*Manager[models.User]
	Roles *Catalog[models.Role]
}

// NewUsers returns a user manager.
func NewUsers(users Backend[models.User], roles Lister[models.Role], opts ...Option) *Users {
	u := &Users{Roles: NewCatalog(roles)}
	u.Manager = New(Resource[models.User]{
		Entity:   "user",
		NewDraft: models.NewUserDraft,
		Validate: u.validate,
	}, users, opts...)
	u.join(u.Roles)
	return u
}

// validate applies the user rules and, once roles are loaded, requires a newly
// chosen role to be one of them. A user already holding a role that has since
// been deleted can still be edited without changing it.
func (u *Users) validate(draft, prev *models.User) error {
	if err := validate.User(draft); err != nil {
		return err
	}
	if prev != nil && prev.Role == draft.Role {
		return nil
	}
	if u.Roles.Loaded() && !assoc.Has(u.Roles.Names(), draft.Role) {
		return &validate.Error{Fields: map[string]string{
			"role": fmt.Sprintf("role %q does not exist", draft.Role),
		}}
	}
	return nil
}

// RoleChoices lists the role names for the single-select role field.
func (u *Users) RoleChoices() []string {
	return u.Roles.Names()
}

// ToggleStatus flips a user between Active and Inactive and persists the change.
// The cached user changes only once the store has accepted it.
func (u *Users) ToggleStatus(ctx context.Context, id models.ID) (models.User, error) {
	user, ok := u.Find(id)
	if !ok {
		return models.User{}, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	user.Status = user.Status.Toggle()
	return u.Update(ctx, user)
}
