// Package manager holds the client-side state of one entity collection: the
// cached list, the load and mutation controllers, the create/edit form and the
// pending-deletion gate.
//
// The cached list is seeded once by Load and afterwards changes only by echoing
// successful mutation responses. It is never re-fetched, so writes by other
// clients stay invisible until the next Load.
package manager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/nebari-dev/rbacadmin/internal/confirm"
	"github.com/nebari-dev/rbacadmin/internal/filter"
	"github.com/nebari-dev/rbacadmin/internal/models"
	"github.com/nebari-dev/rbacadmin/internal/notify"
)

var (
	// ErrBusy is returned when a mutation is submitted while another is in flight.
	ErrBusy = errors.New("another change is still in progress")
	// ErrNotFound is returned when an id is not in the cached list.
	ErrNotFound = errors.New("not found")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("manager closed")
	// ErrNoForm is returned by Submit when no form is open.
	ErrNoForm = errors.New("no form open")

	errNoID = errors.New("store returned no id for the created record")
)

// Backend is the remote collection a Manager mirrors.
type Backend[T any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, draft T) (T, error)
	Update(ctx context.Context, id models.ID, record T) (T, error)
	Delete(ctx context.Context, id models.ID) error
}

// Resource describes one entity type.
type Resource[T models.Record] struct {
	// Entity is the lower-case singular name used in messages, e.g. "user".
	Entity string
	// NewDraft returns the empty form defaults.
	NewDraft func() T
	// Validate normalises and checks a draft. prev is the stored record for an
	// update and nil for a create.
	Validate func(draft *T, prev *T) error
	// Prepare, if set, runs on a validated draft just before it is created.
	Prepare func(draft *T)
	// Clone, if set, deep-copies a record before it is handed to a form.
	Clone func(T) T
}

// Mode tells Submit whether the form creates or edits.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

// Form is the create/edit dialog state.
type Form[T any] struct {
	Open  bool
	Mode  Mode
	Draft T
	// Error is inline feedback from local validation.
	Error string
}

// State is a point-in-time copy of everything a view renders.
type State[T any] struct {
	Items   []T
	Loading bool
	// Busy is true while a mutation is in flight; submit controls are disabled.
	Busy bool
	// Err is the last load failure, shown in place of the table.
	Err           string
	Form          Form[T]
	PendingDelete models.ID
	HasPending    bool
}

// CanSubmit reports whether a submit control should be enabled.
func (s State[T]) CanSubmit() bool {
	return !s.Busy && !s.Loading
}

type settings struct {
	notifier notify.Notifier
	logger   *slog.Logger
}

// Option configures a Manager.
type Option func(*settings)

// WithNotifier sets where mutation outcomes are reported.
func WithNotifier(n notify.Notifier) Option {
	return func(s *settings) {
		s.notifier = n
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		s.logger = l
	}
}

// joined is a read-only collection fetched alongside the managed one.
type joined interface {
	refresh(ctx context.Context) error
}

// Manager mirrors one remote collection.
type Manager[T models.Record] struct {
	res      Resource[T]
	backend  Backend[T]
	notifier notify.Notifier
	logger   *slog.Logger
	joins    []joined
	deletion confirm.Flow[models.ID]

	life   context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	items   []T
	loading bool
	busy    bool
	loadErr string
	form    Form[T]
	closed  bool
}

// New returns a Manager for res backed by backend.
func New[T models.Record](res Resource[T], backend Backend[T], opts ...Option) *Manager[T] {
	s := settings{
		notifier: notify.Discard{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	if res.NewDraft == nil {
		res.NewDraft = func() T {
			var zero T
			return zero
		}
	}
	if res.Validate == nil {
		res.Validate = func(*T, *T) error { return nil }
	}

	life, cancel := context.WithCancel(context.Background())
	return &Manager[T]{
		res:      res,
		backend:  backend,
		notifier: s.notifier,
		logger:   s.logger.With("entity", res.Entity),
		life:     life,
		cancel:   cancel,
		items:    []T{},
		form:     Form[T]{Draft: res.NewDraft()},
	}
}

// Entity returns the entity name, e.g. "user".
func (m *Manager[T]) Entity() string {
	return m.res.Entity
}

func (m *Manager[T]) join(j joined) {
	m.joins = append(m.joins, j)
}

// bind derives a context that is also cancelled by Close.
func (m *Manager[T]) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(m.life, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// Close cancels in-flight requests. Responses arriving afterwards are dropped.
func (m *Manager[T]) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.cancel()
}

// Load fetches the collection and every joined collection in parallel. Loading is
// set for the whole call and cleared on every exit path, after all fetches have
// finished. A successful fetch replaces its list verbatim; a failed one keeps the
// list it had and records a single error message.
func (m *Manager[T]) Load(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.loading = true
	m.mu.Unlock()

	ctx, stop := m.bind(ctx)
	defer stop()

	var (
		g       errgroup.Group
		items   []T
		listErr error
	)
	g.Go(func() error {
		items, listErr = m.backend.List(ctx)
		return listErr
	})
	for _, j := range m.joins {
		g.Go(func() error {
			return j.refresh(ctx)
		})
	}
	err := g.Wait()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = false
	if m.closed {
		return ErrClosed
	}
	if listErr == nil {
		if items == nil {
			items = []T{}
		}
		m.items = items
	}
	if err != nil {
		m.loadErr = fmt.Sprintf("Failed to fetch data: %v", err)
		m.logger.Warn("Failed to load collection", "error", err)
		return fmt.Errorf("loading %ss: %w", m.res.Entity, err)
	}
	m.loadErr = ""
	return nil
}

// State returns a snapshot of the manager.
func (m *Manager[T]) State() State[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, pending := m.deletion.Pending()
	return State[T]{
		Items:         append([]T{}, m.items...),
		Loading:       m.loading,
		Busy:          m.busy,
		Err:           m.loadErr,
		Form:          m.form,
		PendingDelete: id,
		HasPending:    pending,
	}
}

// Items returns a copy of the cached list.
func (m *Manager[T]) Items() []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]T{}, m.items...)
}

// Filter returns the cached records matching c.
func (m *Manager[T]) Filter(c filter.Criteria) []T {
	return filter.Apply(m.Items(), c)
}

// Find returns the cached record with the given id.
func (m *Manager[T]) Find(id models.ID) (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(id)
	if i < 0 {
		var zero T
		return zero, false
	}
	return m.items[i], true
}

// FindByName returns the first cached record with the given name.
func (m *Manager[T]) FindByName(name string) (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.items {
		if item.Label() == name {
			return item, true
		}
	}
	var zero T
	return zero, false
}

func (m *Manager[T]) indexOf(id models.ID) int {
	for i, item := range m.items {
		if item.Key().Equal(id) {
			return i
		}
	}
	return -1
}

// begin marks a mutation in flight.
func (m *Manager[T]) begin() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if m.busy {
		return ErrBusy
	}
	m.busy = true
	return nil
}

func (m *Manager[T]) end() {
	m.mu.Lock()
	m.busy = false
	m.mu.Unlock()
}

func (m *Manager[T]) clone(v T) T {
	if m.res.Clone != nil {
		return m.res.Clone(v)
	}
	return v
}

func (m *Manager[T]) rejectDraft(err error) {
	m.mu.Lock()
	m.form.Error = err.Error()
	m.mu.Unlock()
}

// Create validates draft, posts it and appends the stored record. A validation
// failure is recorded as inline form feedback and nothing is sent. On success the
// form is reset to its defaults and closed; on failure it stays as it was.
func (m *Manager[T]) Create(ctx context.Context, draft T) (T, error) {
	var zero T
	draft = m.clone(draft)
	if err := m.res.Validate(&draft, nil); err != nil {
		m.rejectDraft(err)
		return zero, err
	}
	if err := m.begin(); err != nil {
		return zero, err
	}
	defer m.end()

	if m.res.Prepare != nil {
		m.res.Prepare(&draft)
	}

	ctx, stop := m.bind(ctx)
	defer stop()

	created, err := m.backend.Create(ctx, draft)
	if err == nil && created.Key().IsZero() {
		if draft.Key().IsZero() {
			err = errNoID
		} else {
			// Some stores answer POST without a body.
			created = draft
		}
	}
	if err != nil {
		m.logger.Warn("Create failed", "error", err)
		m.notifier.Notify(ctx, notify.Failure(m.res.Entity, notify.ActionCreate, err))
		return zero, fmt.Errorf("creating %s: %w", m.res.Entity, err)
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return zero, ErrClosed
	}
	m.items = append(m.items, created)
	m.form = Form[T]{Draft: m.res.NewDraft()}
	m.mu.Unlock()

	m.notifier.Notify(ctx, notify.Success(m.res.Entity, notify.ActionCreate))
	return created, nil
}

// Update puts the full record and replaces the cached entry with the stored
// representation. The cache is only touched after the store accepts the change.
func (m *Manager[T]) Update(ctx context.Context, record T) (T, error) {
	var zero T
	id := record.Key()
	if id.IsZero() {
		return zero, fmt.Errorf("updating %s: missing id", m.res.Entity)
	}
	record = m.clone(record)

	prev, ok := m.Find(id)
	var prevPtr *T
	if ok {
		prevPtr = &prev
	}
	if err := m.res.Validate(&record, prevPtr); err != nil {
		m.rejectDraft(err)
		return zero, err
	}
	if err := m.begin(); err != nil {
		return zero, err
	}
	defer m.end()

	ctx, stop := m.bind(ctx)
	defer stop()

	updated, err := m.backend.Update(ctx, id, record)
	if err != nil {
		m.logger.Warn("Update failed", "id", id.String(), "error", err)
		m.notifier.Notify(ctx, notify.Failure(m.res.Entity, notify.ActionUpdate, err))
		return zero, fmt.Errorf("updating %s %s: %w", m.res.Entity, id, err)
	}
	if updated.Key().IsZero() {
		// Some stores answer PUT without a body.
		updated = record
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return zero, ErrClosed
	}
	if i := m.indexOf(id); i >= 0 {
		m.items[i] = updated
	}
	m.form = Form[T]{Draft: m.res.NewDraft()}
	m.mu.Unlock()

	m.notifier.Notify(ctx, notify.Success(m.res.Entity, notify.ActionUpdate))
	return updated, nil
}

// Delete removes the record from the store and then from the cache. A failed
// delete leaves the cache unchanged.
func (m *Manager[T]) Delete(ctx context.Context, id models.ID) error {
	if err := m.begin(); err != nil {
		return err
	}
	defer m.end()
	return m.remove(ctx, id)
}

// remove deletes id. The caller holds the busy flag.
func (m *Manager[T]) remove(ctx context.Context, id models.ID) error {
	ctx, stop := m.bind(ctx)
	defer stop()

	if err := m.backend.Delete(ctx, id); err != nil {
		m.logger.Warn("Delete failed", "id", id.String(), "error", err)
		m.notifier.Notify(ctx, notify.Failure(m.res.Entity, notify.ActionDelete, err))
		return fmt.Errorf("deleting %s %s: %w", m.res.Entity, id, err)
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	if i := m.indexOf(id); i >= 0 {
		m.items = append(m.items[:i:i], m.items[i+1:]...)
	}
	m.mu.Unlock()

	m.notifier.Notify(ctx, notify.Success(m.res.Entity, notify.ActionDelete))
	return nil
}

// OpenCreate opens the form with an empty draft.
func (m *Manager[T]) OpenCreate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.form = Form[T]{Open: true, Mode: ModeCreate, Draft: m.res.NewDraft()}
}

// OpenEdit opens the form on a copy of record.
func (m *Manager[T]) OpenEdit(record T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.form = Form[T]{Open: true, Mode: ModeEdit, Draft: m.clone(record)}
}

// EditDraft applies fn to the open draft.
func (m *Manager[T]) EditDraft(fn func(draft *T)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(&m.form.Draft)
}

// CloseForm discards the draft.
func (m *Manager[T]) CloseForm() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.form = Form[T]{Draft: m.res.NewDraft()}
}

// Submit creates or updates from the open form.
func (m *Manager[T]) Submit(ctx context.Context) (T, error) {
	m.mu.Lock()
	form := m.form
	form.Draft = m.clone(form.Draft)
	m.mu.Unlock()

	if !form.Open {
		var zero T
		return zero, ErrNoForm
	}
	if form.Mode == ModeEdit {
		return m.Update(ctx, form.Draft)
	}
	return m.Create(ctx, form.Draft)
}

// RequestDelete asks for confirmation before deleting id. A previous pending
// request is replaced.
func (m *Manager[T]) RequestDelete(id models.ID) {
	m.deletion.Request(id)
}

// CancelDelete drops the pending request.
func (m *Manager[T]) CancelDelete() {
	m.deletion.Cancel()
}

// ConfirmDelete deletes the pending target. Without a pending target it does
// nothing and reports ran=false. While another change is in flight it returns
// ErrBusy and the target stays pending.
func (m *Manager[T]) ConfirmDelete(ctx context.Context) (ran bool, err error) {
	if _, pending := m.deletion.Pending(); !pending {
		return false, nil
	}
	if err := m.begin(); err != nil {
		return false, err
	}
	defer m.end()
	return m.deletion.Confirm(ctx, m.remove)
}
