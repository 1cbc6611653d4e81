package models

import (
	"fmt"
	"strings"
)

// Status is the closed two-value activity state of a user.
type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
)

// Toggle flips Active and Inactive. Anything else becomes Active.
func (s Status) Toggle() Status {
	if s == StatusActive {
		return StatusInactive
	}
	return StatusActive
}

// Valid reports whether s is one of the two known states.
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// ParseStatus accepts a status in any letter case.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "active":
		return StatusActive, nil
	case "inactive":
		return StatusInactive, nil
	}
	return "", fmt.Errorf("invalid status %q: must be Active or Inactive", s)
}
