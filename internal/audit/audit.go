// Package audit records every change made through the mock store.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// Entry is one recorded change.
type Entry struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	Action      string    `gorm:"not null;index" json:"action"`   // e.g. "create", "update"
	Resource    string    `gorm:"not null;index" json:"resource"` // e.g. "user:7", "permission:perm_1"
	DetailsJSON string    `gorm:"type:text" json:"details_json"`  // The body that was stored
	Timestamp   time.Time `gorm:"not null;index" json:"timestamp"`
}

func (Entry) TableName() string { return "audit_logs" }

// Audit actions constants
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// LogAction records an audit log entry
func LogAction(ctx context.Context, db *gorm.DB, action, resource string, details interface{}) error {
	detailsJSON, err := json.Marshal(details)
	if err != nil || details == nil {
		detailsJSON = []byte("{}")
	}

	entry := Entry{
		Action:      action,
		Resource:    resource,
		DetailsJSON: string(detailsJSON),
		Timestamp:   time.Now(),
	}

	return db.WithContext(ctx).Create(&entry).Error
}

// List returns the entries, oldest first, optionally limited to one action.
func List(ctx context.Context, db *gorm.DB, action string) ([]Entry, error) {
	q := db.WithContext(ctx).Order("id")
	if action != "" {
		q = q.Where("action = ?", action)
	}
	entries := []Entry{}
	if err := q.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
