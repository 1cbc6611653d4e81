package models

// User is an operator-managed account. Role holds a role name, not a role id.
type User struct {
	ID     ID     `json:"id,omitzero" yaml:"id,omitempty" toml:"id,omitempty"`
	Name   string `json:"name" yaml:"name" toml:"name" validate:"required"`
	Email  string `json:"email" yaml:"email" toml:"email" validate:"required,email"`
	Role   string `json:"role" yaml:"role" toml:"role" validate:"required"`
	Status Status `json:"status" yaml:"status" toml:"status" validate:"required,oneof=Active Inactive"`
}

// NewUserDraft returns the empty form defaults for a new user.
func NewUserDraft() User {
	return User{Status: StatusActive}
}

func (u User) Key() ID          { return u.ID }
func (u User) Label() string    { return u.Name }
func (u User) Category() string { return u.Role }
