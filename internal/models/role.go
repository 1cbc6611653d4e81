package models

// Role groups permissions. Permissions holds permission names in the order they
// were granted.
type Role struct {
	ID          ID       `json:"id,omitzero" yaml:"id,omitempty" toml:"id,omitempty"`
	Name        string   `json:"name" yaml:"name" toml:"name" validate:"required"`
	Permissions []string `json:"permissions" yaml:"permissions" toml:"permissions"`
}

// NewRoleDraft returns the empty form defaults for a new role.
func NewRoleDraft() Role {
	return Role{Permissions: []string{}}
}

func (r Role) Key() ID          { return r.ID }
func (r Role) Label() string    { return r.Name }
func (r Role) Category() string { return "" }

// Clone returns a copy whose permission list can be edited independently.
func (r Role) Clone() Role {
	out := r
	out.Permissions = append([]string{}, r.Permissions...)
	return out
}
