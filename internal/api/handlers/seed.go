package handlers

import (
	"context"

	"gorm.io/gorm"

	"github.com/nebari-dev/rbacadmin/internal/models"
)

// Seed inserts records into an empty store, keeping their ids. A store that
// already holds any user, role or permission is left alone.
func Seed(ctx context.Context, db *gorm.DB, users []models.User, roles []models.Role, perms []models.Permission) (int, error) {
	var existing int64
	for _, table := range []interface{}{&UserRecord{}, &RoleRecord{}, &PermissionRecord{}} {
		var n int64
		if err := db.WithContext(ctx).Model(table).Count(&n).Error; err != nil {
			return 0, err
		}
		existing += n
	}
	if existing > 0 {
		return 0, nil
	}

	count := 0
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pk, rk, uk := Permissions(), Roles(), Users()
		for _, p := range perms {
			r := pk.Encode(p)
			pk.BeforeCreate(&r)
			if err := tx.Create(&r).Error; err != nil {
				return err
			}
			count++
		}
		for _, m := range roles {
			r := rk.Encode(m)
			if err := tx.Create(&r).Error; err != nil {
				return err
			}
			count++
		}
		for _, m := range users {
			r := uk.Encode(m)
			if err := tx.Create(&r).Error; err != nil {
				return err
			}
			count++
		}
		return nil
	})
	return count, err
}
