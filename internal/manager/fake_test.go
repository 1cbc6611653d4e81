package manager

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nebari-dev/rbacadmin/internal/models"
)

var errStore = errors.New("store unavailable")

// fakeBackend is an in-memory collection with failure injection.
type fakeBackend[T models.Record] struct {
	mu      sync.Mutex
	items   []T
	nextID  int
	setID   func(T, models.ID) T
	failOn  map[string]error
	calls   map[string]int
	block   chan struct{}
	started chan struct{}
	// emptyCreate makes Create answer like a store that sends no body.
	emptyCreate bool
}

func newFake[T models.Record](setID func(T, models.ID) T, items ...T) *fakeBackend[T] {
	return &fakeBackend[T]{
		items:  items,
		nextID: len(items) + 1,
		setID:  setID,
		failOn: map[string]error{},
		calls:  map[string]int{},
	}
}

func (f *fakeBackend[T]) record(op string) error {
	f.mu.Lock()
	f.calls[op]++
	err := f.failOn[op]
	block, started := f.block, f.started
	f.mu.Unlock()
	if started != nil {
		started <- struct{}{}
	}
	if block != nil {
		<-block
	}
	return err
}

func (f *fakeBackend[T]) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeBackend[T]) fail(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failOn[op] = err
}

func (f *fakeBackend[T]) List(ctx context.Context) ([]T, error) {
	if err := f.record("list"); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]T{}, f.items...), nil
}

func (f *fakeBackend[T]) Create(ctx context.Context, draft T) (T, error) {
	if err := f.record("create"); err != nil {
		var zero T
		return zero, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if draft.Key().IsZero() {
		draft = f.setID(draft, models.StringID(fmt.Sprintf("%d", f.nextID)))
		f.nextID++
	}
	f.items = append(f.items, draft)
	if f.emptyCreate {
		var zero T
		return zero, nil
	}
	return draft, nil
}

func (f *fakeBackend[T]) Update(ctx context.Context, id models.ID, record T) (T, error) {
	if err := f.record("update"); err != nil {
		var zero T
		return zero, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, item := range f.items {
		if item.Key().Equal(id) {
			f.items[i] = record
			return record, nil
		}
	}
	var zero T
	return zero, errors.New("API error 404: not found")
}

func (f *fakeBackend[T]) Delete(ctx context.Context, id models.ID) error {
	if err := f.record("delete"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, item := range f.items {
		if item.Key().Equal(id) {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return errors.New("API error 404: not found")
}

func setUserID(u models.User, id models.ID) models.User { u.ID = id; return u }

func setRoleID(r models.Role, id models.ID) models.Role { r.ID = id; return r }

func setPermID(p models.Permission, id models.ID) models.Permission { p.ID = id; return p }
