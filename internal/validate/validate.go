// Package validate checks drafts locally before they are submitted to the store.
package validate

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/nebari-dev/rbacadmin/internal/models"
)

// Error is a local validation failure. Fields maps a lower-case field name to a
// human-readable message.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, len(keys))
	for i, k := range keys {
		msgs[i] = e.Fields[k]
	}
	return strings.Join(msgs, "; ")
}

// IsValidation reports whether err is a local validation failure.
func IsValidation(err error) bool {
	var vErr *Error
	return errors.As(err, &vErr)
}

var v = validator.New(validator.WithRequiredStructEnabled())

// Struct validates s against its `validate` tags.
func Struct(s interface{}) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := &Error{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		name := strings.ToLower(fe.Field())
		out.Fields[name] = message(name, fe)
	}
	return out
}

func message(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "alpha":
		return fmt.Sprintf("%s must contain letters only", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	}
	return fmt.Sprintf("%s is invalid", field)
}

// User trims and validates a user draft. Name, email and role are required.
func User(u *models.User) error {
	u.Name = strings.TrimSpace(u.Name)
	u.Email = strings.TrimSpace(u.Email)
	u.Role = strings.TrimSpace(u.Role)
	if u.Status == "" {
		u.Status = models.StatusActive
	}
	return Struct(u)
}

// Role trims and validates a role draft. Only the name is required.
func Role(r *models.Role) error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Permissions == nil {
		r.Permissions = []string{}
	}
	return Struct(r)
}

// Permission trims and validates a permission draft. The name must be letters only.
func Permission(p *models.Permission) error {
	p.Name = strings.TrimSpace(p.Name)
	return Struct(p)
}
