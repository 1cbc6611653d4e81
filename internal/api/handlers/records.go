package handlers

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/nebari-dev/rbacadmin/internal/audit"
	"github.com/nebari-dev/rbacadmin/internal/models"
)

// UserRecord is the stored form of a user.
type UserRecord struct {
	ID        uint64 `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	Email     string
	Role      string `gorm:"index"`
	Status    string
	CreatedAt time.Time
}

func (UserRecord) TableName() string { return "users" }

// RoleRecord is the stored form of a role. Permission names are kept as a JSON
// array so their order survives.
type RoleRecord struct {
	ID          uint64   `gorm:"primaryKey"`
	Name        string   `gorm:"not null"`
	Permissions []string `gorm:"serializer:json"`
	CreatedAt   time.Time
}

func (RoleRecord) TableName() string { return "roles" }

// PermissionRecord is the stored form of a permission. Ids are strings.
type PermissionRecord struct {
	ID        string `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	CreatedAt time.Time
}

func (PermissionRecord) TableName() string { return "permissions" }

// Tables lists the tables the mock store migrates.
func Tables() []interface{} {
	return []interface{}{&UserRecord{}, &RoleRecord{}, &PermissionRecord{}, &audit.Entry{}}
}

func numericKey(raw string) (any, bool) {
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		return nil, false
	}
	return n, true
}

func stringKey(raw string) (any, bool) {
	return raw, raw != ""
}

func numericID(id models.ID) uint64 {
	n, _ := strconv.ParseUint(id.String(), 10, 64)
	return n
}

// Users describes the /users collection.
func Users() Kind[models.User, UserRecord] {
	return Kind[models.User, UserRecord]{
		Entity: "user",
		Key:    numericKey,
		Encode: func(u models.User) UserRecord {
			return UserRecord{
				ID:     numericID(u.ID),
				Name:   u.Name,
				Email:  u.Email,
				Role:   u.Role,
				Status: string(u.Status),
			}
		},
		Decode: func(r UserRecord) models.User {
			return models.User{
				ID:     models.NumericID(int64(r.ID)),
				Name:   r.Name,
				Email:  r.Email,
				Role:   r.Role,
				Status: models.Status(r.Status),
			}
		},
		SetKey: func(r *UserRecord, key any) {
			r.ID, _ = key.(uint64)
		},
		KeyOf: func(r UserRecord) string { return strconv.FormatUint(r.ID, 10) },
	}
}

// Roles describes the /roles collection.
func Roles() Kind[models.Role, RoleRecord] {
	return Kind[models.Role, RoleRecord]{
		Entity: "role",
		Key:    numericKey,
		Encode: func(m models.Role) RoleRecord {
			perms := m.Permissions
			if perms == nil {
				perms = []string{}
			}
			return RoleRecord{ID: numericID(m.ID), Name: m.Name, Permissions: perms}
		},
		Decode: func(r RoleRecord) models.Role {
			perms := r.Permissions
			if perms == nil {
				perms = []string{}
			}
			return models.Role{ID: models.NumericID(int64(r.ID)), Name: r.Name, Permissions: perms}
		},
		SetKey: func(r *RoleRecord, key any) {
			r.ID, _ = key.(uint64)
		},
		KeyOf: func(r RoleRecord) string { return strconv.FormatUint(r.ID, 10) },
	}
}

// Permissions describes the /permissions collection. A client-supplied id is
// kept; otherwise a uuid is assigned.
func Permissions() Kind[models.Permission, PermissionRecord] {
	return Kind[models.Permission, PermissionRecord]{
		Entity: "permission",
		Key:    stringKey,
		Encode: func(m models.Permission) PermissionRecord {
			return PermissionRecord{ID: m.ID.String(), Name: m.Name}
		},
		Decode: func(r PermissionRecord) models.Permission {
			return models.Permission{ID: models.StringID(r.ID), Name: r.Name}
		},
		SetKey: func(r *PermissionRecord, key any) {
			r.ID, _ = key.(string)
		},
		KeyOf: func(r PermissionRecord) string { return r.ID },
		BeforeCreate: func(r *PermissionRecord) {
			if r.ID == "" {
				r.ID = uuid.NewString()
			}
		},
	}
}
