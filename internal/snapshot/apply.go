package snapshot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nebari-dev/rbacadmin/internal/manager"
	"github.com/nebari-dev/rbacadmin/internal/models"
)

// Targets are loaded managers that an import writes through.
type Targets struct {
	Users       *manager.Users
	Roles       *manager.Roles
	Permissions *manager.Permissions
}

// Result counts what an import did.
type Result struct {
	Created int
	Skipped int
	Failed  int
}

func (r Result) String() string {
	return fmt.Sprintf("%d created, %d skipped, %d failed", r.Created, r.Skipped, r.Failed)
}

// Apply creates the snapshot records whose names do not exist yet: permissions
// first, then roles, then users, so that names referenced by later records are
// known when they are validated. Ids in the snapshot are ignored. Each failure
// is logged and counted and the import carries on.
func Apply(ctx context.Context, t Targets, s Snapshot, logger *slog.Logger) (Result, error) {
	var res Result

	if err := t.Permissions.Load(ctx); err != nil {
		return res, err
	}
	for _, p := range s.Permissions {
		if _, ok := t.Permissions.FindByName(p.Name); ok {
			res.Skipped++
			continue
		}
		p.ID = models.ID{}
		step(ctx, &res, logger, "permission", p.Name, func() error {
			_, err := t.Permissions.Create(ctx, p)
			return err
		})
	}
	// Roles validate grants against the catalog loaded with them.
	if err := t.Roles.Load(ctx); err != nil {
		return res, err
	}
	for _, r := range s.Roles {
		if _, ok := t.Roles.FindByName(r.Name); ok {
			res.Skipped++
			continue
		}
		r.ID = models.ID{}
		step(ctx, &res, logger, "role", r.Name, func() error {
			_, err := t.Roles.Create(ctx, r)
			return err
		})
	}
	if err := t.Users.Load(ctx); err != nil {
		return res, err
	}
	for _, u := range s.Users {
		if _, ok := t.Users.FindByName(u.Name); ok {
			res.Skipped++
			continue
		}
		u.ID = models.ID{}
		step(ctx, &res, logger, "user", u.Name, func() error {
			_, err := t.Users.Create(ctx, u)
			return err
		})
	}
	return res, ctx.Err()
}

func step(ctx context.Context, res *Result, logger *slog.Logger, entity, name string, fn func() error) {
	if ctx.Err() != nil {
		res.Failed++
		return
	}
	if err := fn(); err != nil {
		logger.Warn("Import failed", "entity", entity, "name", name, "error", err)
		res.Failed++
		return
	}
	res.Created++
}
