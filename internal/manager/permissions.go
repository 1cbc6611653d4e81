package manager

import (
	"fmt"
	"sync"
	"time"

	"github.com/nebari-dev/rbacadmin/internal/models"
	"github.com/nebari-dev/rbacadmin/internal/validate"
)

// Permissions manages the permission collection.
type Permissions struct {
	*Manager[models.Permission]
}

// PermissionOption configures a permission manager.
type PermissionOption struct {
	// ClientIDs makes the client send perm_<unix-millis> ids for stores that do
	// not assign string ids themselves. The millisecond value is bumped when it
	// would repeat, so ids from one manager never collide.
	ClientIDs bool
	// Now is the clock used for client ids. Defaults to time.Now.
	Now func() time.Time
}

// NewPermissions returns a permission manager.
func NewPermissions(perms Backend[models.Permission], popt PermissionOption, opts ...Option) *Permissions {
	res := Resource[models.Permission]{
		Entity:   "permission",
		NewDraft: models.NewPermissionDraft,
		Validate: func(draft, _ *models.Permission) error {
			return validate.Permission(draft)
		},
	}
	if popt.ClientIDs {
		now := popt.Now
		if now == nil {
			now = time.Now
		}
		clock := &idClock{}
		res.Prepare = func(draft *models.Permission) {
			if draft.ID.IsZero() {
				draft.ID = models.StringID(fmt.Sprintf("perm_%d", clock.next(now())))
			}
		}
	}
	return &Permissions{Manager: New(res, perms, opts...)}
}

// idClock hands out the millisecond values behind client permission ids.
type idClock struct {
	mu   sync.Mutex
	last int64
}

// next returns t in unix milliseconds, or last+1 if that is not greater than
// the previous value.
func (c *idClock) next(t time.Time) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	ms := t.UnixMilli()
	if ms <= c.last {
		ms = c.last + 1
	}
	c.last = ms
	return ms
}
