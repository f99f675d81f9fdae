package bill

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// DefaultKey is the durable store key holding the whole bill collection.
const DefaultKey = "contas"

//go:generate mockgen -source=ledger.go -destination=storage_mock.go -package=bill
type Storage interface {
	// Get returns the value stored under key; ok is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// Snapshot is an immutable view of the ledger at a point in time.
// Accessors copy out, so holders can never alter the ledger through it.
type Snapshot struct {
	bills []Bill
}

func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}

	return len(s.bills)
}

// Bills returns every bill of every user, in insertion order.
func (s *Snapshot) Bills() []Bill {
	if s == nil {
		return []Bill{}
	}

	out := make([]Bill, len(s.bills))
	for i, b := range s.bills {
		out[i] = b.clone()
	}

	return out
}

func (s *Snapshot) Find(id string) (Bill, bool) {
	if s == nil {
		return Bill{}, false
	}

	for _, b := range s.bills {
		if b.ID == id {
			return b.clone(), true
		}
	}

	return Bill{}, false
}

// Listener receives the latest snapshot after a successful mutation.
type Listener func(*Snapshot)

type Option func(*Ledger)

func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(l *Ledger) { l.newID = newID }
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) { l.logger = logger }
}

func WithKey(key string) Option {
	return func(l *Ledger) { l.key = key }
}

// Ledger is the sole writer of the bill collection. It keeps an in-memory
// snapshot consistent with the durable store and broadcasts every committed
// change to its listeners.
//
// Every mutation rewrites the entire collection under a single key, so the
// cost of a write is O(number of bills) regardless of how much changed.
type Ledger struct {
	storage  Storage
	key      string
	now      func() time.Time
	newID    func() string
	logger   *slog.Logger
	validate *validator.Validate

	// mu serialises read-modify-persist sequences: one writer at a time.
	mu      sync.Mutex
	loaded  bool
	closed  bool
	current atomic.Pointer[Snapshot]

	subMu      sync.Mutex
	subs       map[int]Listener
	nextSub    int
	publishing bool
	dirty      bool
}

func NewLedger(storage Storage, opts ...Option) *Ledger {
	l := &Ledger{
		storage:  storage,
		key:      DefaultKey,
		now:      time.Now,
		newID:    uuid.NewString,
		logger:   slog.Default(),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		subs:     make(map[int]Listener),
	}

	for _, opt := range opts {
		opt(l)
	}

	l.current.Store(&Snapshot{})

	return l
}

// Load reads the collection from the durable store. Until it succeeds the
// ledger exposes an empty snapshot. Loading an already loaded ledger is a no-op.
func (l *Ledger) Load(ctx context.Context) error {
	l.mu.Lock()

	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}

	if l.loaded {
		l.mu.Unlock()
		return nil
	}

	if err := l.loadLocked(ctx); err != nil {
		l.mu.Unlock()
		l.logger.Error("failed to load bills", "key", l.key, "error", err)

		return err
	}

	l.mu.Unlock()
	l.publish()

	return nil
}

func (l *Ledger) loadLocked(ctx context.Context) error {
	data, ok, err := l.storage.Get(ctx, l.key)
	if err != nil {
		return fmt.Errorf("loading bills: %w: %w", ErrStorageUnavailable, err)
	}

	var bills []Bill

	if ok && len(data) > 0 {
		if err := json.Unmarshal(data, &bills); err != nil {
			return fmt.Errorf("decoding bills: %w", err)
		}
	}

	l.current.Store(&Snapshot{bills: bills})
	l.loaded = true

	l.logger.Debug("bills loaded", "key", l.key, "count", len(bills))

	return nil
}

// Snapshot returns the current collection of all users, unfiltered.
func (l *Ledger) Snapshot() *Snapshot {
	return l.current.Load()
}

// Subscribe registers fn and calls it straight away with the current snapshot.
// The returned func removes the listener. Listeners are never called
// concurrently: when a broadcast is running, the first delivery joins its
// next round.
func (l *Ledger) Subscribe(fn Listener) func() {
	l.subMu.Lock()
	id := l.nextSub
	l.nextSub++
	l.subs[id] = fn

	if l.publishing {
		l.dirty = true
		l.subMu.Unlock()
	} else {
		l.publishing = true
		l.subMu.Unlock()

		fn(l.current.Load())
		l.drain()
	}

	return func() {
		l.subMu.Lock()
		delete(l.subs, id)
		l.subMu.Unlock()
	}
}

// publish hands the latest snapshot to every listener. A publish requested
// while a broadcast is running, including one triggered by a listener that
// mutates the ledger, is folded into another round once the current one ends.
func (l *Ledger) publish() {
	l.subMu.Lock()
	if l.publishing {
		l.dirty = true
		l.subMu.Unlock()

		return
	}

	l.publishing = true
	l.dirty = true
	l.subMu.Unlock()

	l.drain()
}

// drain broadcasts until no publish is pending. The caller must have set
// publishing.
func (l *Ledger) drain() {
	l.subMu.Lock()

	for l.dirty {
		l.dirty = false

		listeners := make([]Listener, 0, len(l.subs))
		for _, fn := range l.subs {
			listeners = append(listeners, fn)
		}
		l.subMu.Unlock()

		snap := l.current.Load()
		for _, fn := range listeners {
			fn(snap)
		}

		l.subMu.Lock()
	}

	l.publishing = false
	l.subMu.Unlock()
}

// mutate runs fn against the current bills under the writer lock. When fn
// reports a change the new collection is persisted, swapped in and published.
// A failed write leaves the snapshot untouched.
func (l *Ledger) mutate(ctx context.Context, fn func(bills []Bill) ([]Bill, bool, error)) error {
	l.mu.Lock()

	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}

	// Writing before the initial load would replace the stored collection.
	if !l.loaded {
		if err := l.loadLocked(ctx); err != nil {
			l.mu.Unlock()
			return err
		}
	}

	next, changed, err := fn(l.current.Load().bills)
	if err != nil || !changed {
		l.mu.Unlock()
		return err
	}

	if err := l.persist(ctx, next); err != nil {
		l.mu.Unlock()
		return err
	}

	l.current.Store(&Snapshot{bills: next})
	l.mu.Unlock()

	l.publish()

	return nil
}

func (l *Ledger) persist(ctx context.Context, bills []Bill) error {
	if bills == nil {
		bills = []Bill{}
	}

	data, err := json.Marshal(bills)
	if err != nil {
		return fmt.Errorf("encoding bills: %w", err)
	}

	if err := l.storage.Set(ctx, l.key, data); err != nil {
		l.logger.Error("failed to persist bills", "key", l.key, "count", len(bills), "error", err)
		return fmt.Errorf("persisting bills: %w: %w", ErrStorageUnavailable, err)
	}

	return nil
}

// Create appends a new pending bill owned by ownerID.
func (l *Ledger) Create(ctx context.Context, ownerID string, params CreateParams) (*Bill, error) {
	created, err := l.CreateBatch(ctx, ownerID, []CreateParams{params})
	if err != nil {
		return nil, err
	}

	return &created[0], nil
}

// CreateBatch appends one pending bill per params in a single write. Every
// params is validated first; one invalid entry rejects the whole batch.
func (l *Ledger) CreateBatch(ctx context.Context, ownerID string, params []CreateParams) ([]Bill, error) {
	if ownerID == "" {
		return nil, ErrNotAuthenticated
	}

	if len(params) == 0 {
		return []Bill{}, nil
	}

	now := l.now()
	created := make([]Bill, 0, len(params))

	for i, p := range params {
		p.Description = strings.TrimSpace(p.Description)
		p.Category = strings.TrimSpace(p.Category)

		if err := l.validate.Struct(p); err != nil {
			if len(params) == 1 {
				return nil, fmt.Errorf("%w: %v", ErrValidation, err)
			}

			return nil, fmt.Errorf("%w: bill %d: %v", ErrValidation, i+1, err)
		}

		created = append(created, Bill{
			ID:          l.newID(),
			UserID:      ownerID,
			Description: p.Description,
			Amount:      p.Amount,
			DueDate:     p.DueDate,
			Status:      StatusPending,
			Category:    p.Category,
			Notes:       p.Notes,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	err := l.mutate(ctx, func(bills []Bill) ([]Bill, bool, error) {
		next := make([]Bill, len(bills), len(bills)+len(created))
		copy(next, bills)

		for _, b := range created {
			next = append(next, b.clone())
		}

		return next, true, nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// Update merges params into the bill identified by id.
func (l *Ledger) Update(ctx context.Context, id string, params UpdateParams) (*Bill, error) {
	var updated Bill

	err := l.mutate(ctx, func(bills []Bill) ([]Bill, bool, error) {
		idx := indexOf(bills, id)
		if idx == -1 {
			return nil, false, fmt.Errorf("%w: %s", ErrNotFound, id)
		}

		b := bills[idx].clone()
		if err := applyUpdate(&b, params, l.now()); err != nil {
			return nil, false, err
		}

		next := make([]Bill, len(bills))
		copy(next, bills)
		next[idx] = b
		updated = b

		return next, true, nil
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

// applyUpdate merges p into b. Paid is reached only through MarkPaid and
// overdue only through RefreshOverdue; a paid bill keeps its status.
func applyUpdate(b *Bill, p UpdateParams, now time.Time) error {
	if p.Description != nil {
		desc := strings.TrimSpace(*p.Description)
		if desc == "" {
			return fmt.Errorf("%w: description is required", ErrValidation)
		}

		b.Description = desc
	}

	if p.Amount != nil {
		if *p.Amount <= 0 {
			return fmt.Errorf("%w: amount must be positive", ErrValidation)
		}

		b.Amount = *p.Amount
	}

	if p.Category != nil {
		category := strings.TrimSpace(*p.Category)
		if category == "" {
			return fmt.Errorf("%w: category is required", ErrValidation)
		}

		b.Category = category
	}

	if p.DueDate != nil {
		b.DueDate = *p.DueDate
	}

	if p.Notes != nil {
		b.Notes = *p.Notes
	}

	if p.Status != nil && *p.Status != b.Status {
		if err := changeStatus(b, *p.Status, now); err != nil {
			return err
		}
	}

	if p.PaidDate != nil {
		if b.Status != StatusPaid {
			return fmt.Errorf("%w: paid date requires status %s", ErrValidation, StatusPaid)
		}

		paid := *p.PaidDate
		b.PaidDate = &paid
	}

	if b.Status == StatusOverdue && !b.DueDate.Before(now) {
		b.Status = StatusPending
	}

	b.UpdatedAt = now

	return nil
}

func changeStatus(b *Bill, status Status, now time.Time) error {
	switch {
	case !status.Valid():
		return fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	case b.Status == StatusPaid:
		return fmt.Errorf("%w: paid bills cannot change status", ErrValidation)
	case status == StatusPaid:
		return fmt.Errorf("%w: bills are settled through pay", ErrValidation)
	case status == StatusOverdue:
		return fmt.Errorf("%w: status %s is set by the overdue refresh", ErrValidation, StatusOverdue)
	case b.DueDate.Before(now):
		return fmt.Errorf("%w: bill is still past due", ErrValidation)
	}

	b.Status = status

	return nil
}

// MarkPaid settles the bill with the current instant as payment date. Paying
// a paid bill again moves the payment date.
func (l *Ledger) MarkPaid(ctx context.Context, id string) (*Bill, error) {
	var paid Bill

	err := l.mutate(ctx, func(bills []Bill) ([]Bill, bool, error) {
		idx := indexOf(bills, id)
		if idx == -1 {
			return nil, false, fmt.Errorf("%w: %s", ErrNotFound, id)
		}

		now := l.now()

		b := bills[idx].clone()
		b.Status = StatusPaid
		b.PaidDate = &now
		b.UpdatedAt = now

		next := make([]Bill, len(bills))
		copy(next, bills)
		next[idx] = b
		paid = b

		return next, true, nil
	})
	if err != nil {
		return nil, err
	}

	return &paid, nil
}

// Delete removes the bill permanently. Deleting an unknown id succeeds
// without touching storage.
func (l *Ledger) Delete(ctx context.Context, id string) error {
	return l.mutate(ctx, func(bills []Bill) ([]Bill, bool, error) {
		idx := indexOf(bills, id)
		if idx == -1 {
			return nil, false, nil
		}

		next := make([]Bill, 0, len(bills)-1)
		next = append(next, bills[:idx]...)
		next = append(next, bills[idx+1:]...)

		return next, true, nil
	})
}

// Get returns a copy of the bill with the given id.
func (l *Ledger) Get(id string) (*Bill, error) {
	b, ok := l.Snapshot().Find(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return &b, nil
}

// RefreshOverdue moves every pending bill whose due date is before now to
// overdue, in a single write. It reports how many bills changed; when none
// did, nothing is written or published.
func (l *Ledger) RefreshOverdue(ctx context.Context, now time.Time) (int, error) {
	var changed int

	err := l.mutate(ctx, func(bills []Bill) ([]Bill, bool, error) {
		changed = 0

		var next []Bill

		for i, b := range bills {
			if !b.IsOverdueAt(now) {
				continue
			}

			if next == nil {
				next = make([]Bill, len(bills))
				copy(next, bills)
			}

			next[i].Status = StatusOverdue
			next[i].UpdatedAt = now
			changed++
		}

		return next, changed > 0, nil
	})
	if err != nil {
		return 0, err
	}

	if changed > 0 {
		l.logger.Info("bills marked overdue", "count", changed)
	}

	return changed, nil
}

// Close detaches all listeners. Further mutations fail with ErrClosed.
func (l *Ledger) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()

	l.subMu.Lock()
	l.subs = make(map[int]Listener)
	l.subMu.Unlock()
}

func indexOf(bills []Bill, id string) int {
	for i, b := range bills {
		if b.ID == id {
			return i
		}
	}

	return -1
}
