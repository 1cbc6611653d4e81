package models

// Permission is a named capability. The name is its only meaningful attribute.
type Permission struct {
	ID   ID     `json:"id,omitzero" yaml:"id,omitempty" toml:"id,omitempty"`
	Name string `json:"name" yaml:"name" toml:"name" validate:"required,alpha"`
}

// NewPermissionDraft returns the empty form defaults for a new permission.
func NewPermissionDraft() Permission {
	return Permission{}
}

func (p Permission) Key() ID          { return p.ID }
func (p Permission) Label() string    { return p.Name }
func (p Permission) Category() string { return "" }

// Record is implemented by the three entity types.
type Record interface {
	Key() ID
	Label() string
	Category() string
}

// Names returns the names of the given records in order.
func Names[T Record](records []T) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Label()
	}
	return out
}
