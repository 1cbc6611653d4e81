// Package snapshot exports the three collections to a file and imports them back.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/nebari-dev/rbacadmin/internal/models"
	"github.com/nebari-dev/rbacadmin/internal/rbac"
)

// Format is a snapshot encoding.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
	TOML Format = "toml"
)

// ParseFormat accepts json, yaml/yml and toml.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "toml":
		return TOML, nil
	}
	return "", fmt.Errorf("unsupported snapshot format %q (use json, yaml or toml)", s)
}

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// Snapshot is the full contents of the store.
type Snapshot struct {
	Permissions []models.Permission `json:"permissions" yaml:"permissions" toml:"permissions"`
	Roles       []models.Role       `json:"roles" yaml:"roles" toml:"roles"`
	Users       []models.User       `json:"users" yaml:"users" toml:"users"`
}

// Data converts the snapshot into policy input.
func (s Snapshot) Data() rbac.Data {
	return rbac.Data{Users: s.Users, Roles: s.Roles, Permissions: s.Permissions}
}

// Encode writes s to w.
func Encode(w io.Writer, s Snapshot, f Format) error {
	switch f {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return err
		}
		return enc.Close()
	case TOML:
		return toml.NewEncoder(w).Encode(s)
	}
	return fmt.Errorf("unsupported snapshot format %q", f)
}

// Decode reads a snapshot from r.
func Decode(r io.Reader, f Format) (Snapshot, error) {
	var s Snapshot
	var err error
	switch f {
	case JSON:
		err = json.NewDecoder(r).Decode(&s)
	case YAML:
		err = yaml.NewDecoder(r).Decode(&s)
		if err == io.EOF {
			err = nil
		}
	case TOML:
		err = toml.NewDecoder(r).Decode(&s)
	default:
		return s, fmt.Errorf("unsupported snapshot format %q", f)
	}
	if err != nil {
		return s, fmt.Errorf("decoding %s snapshot: %w", f, err)
	}
	return s, nil
}

// Lister fetches one collection.
type Lister[T any] interface {
	List(ctx context.Context) ([]T, error)
}

// Source provides the three collections.
type Source struct {
	Users       Lister[models.User]
	Roles       Lister[models.Role]
	Permissions Lister[models.Permission]
}

// Fetch loads all three collections in parallel. It fails if any fetch fails.
func Fetch(ctx context.Context, src Source) (Snapshot, error) {
	var s Snapshot
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		s.Users, err = src.Users.List(ctx)
		return err
	})
	g.Go(func() (err error) {
		s.Roles, err = src.Roles.List(ctx)
		return err
	})
	g.Go(func() (err error) {
		s.Permissions, err = src.Permissions.List(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, fmt.Errorf("fetching snapshot: %w", err)
	}
	return s, nil
}
