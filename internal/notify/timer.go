// Package notify schedules auto-expiring user-facing notifications.
// One notification of each kind is live at a time; a newer Show for the
// same kind supersedes the previous one and re-arms its timer.
package notify

import (
	"sync"
	"time"

	"github.com/oumajohn/vmhost-cli/internal/domain"
	"github.com/oumajohn/vmhost-cli/internal/ports"
)

// DefaultDuration is how long a notification stays visible unless the
// caller asks otherwise.
const DefaultDuration = 5 * time.Second

type entry struct {
	handle       ports.NotificationHandle
	notification domain.Notification
	timer        *time.Timer
}

// Timer owns the live notifications. It must be closed when the owning
// view is disposed so no timer fires into a dead view.
type Timer struct {
	mu      sync.Mutex
	clock   ports.Clock
	onShow  func(domain.Notification)
	onClear func(domain.NotificationKind)
	entries map[domain.NotificationKind]*entry
	nextID  ports.NotificationHandle
	closed  bool
}

var _ ports.Notifier = (*Timer)(nil)

// Option customises Timer construction.
type Option func(*Timer)

// WithClock overrides the clock used to stamp expiry times.
func WithClock(clock ports.Clock) Option {
	return func(t *Timer) {
		if clock != nil {
			t.clock = clock
		}
	}
}

// WithCallbacks registers display callbacks. onShow fires for every
// accepted Show, onClear when a notification expires or is cancelled.
func WithCallbacks(onShow func(domain.Notification), onClear func(domain.NotificationKind)) Option {
	return func(t *Timer) {
		t.onShow = onShow
		t.onClear = onClear
	}
}

func New(opts ...Option) *Timer {
	t := &Timer{
		clock:   ports.SystemClock{},
		entries: make(map[domain.NotificationKind]*entry),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Show displays a notification and schedules its clearing. A
// non-positive duration uses DefaultDuration. The returned handle can
// cancel the notification before it expires.
func (t *Timer) Show(message string, kind domain.NotificationKind, duration time.Duration) ports.NotificationHandle {
	if duration <= 0 {
		duration = DefaultDuration
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return 0
	}

	if previous, ok := t.entries[kind]; ok {
		previous.timer.Stop()
		delete(t.entries, kind)
	}

	t.nextID++
	handle := t.nextID
	notification := domain.Notification{
		Message:   message,
		Kind:      kind,
		ExpiresAt: t.clock.Now().Add(duration),
	}

	e := &entry{handle: handle, notification: notification}
	e.timer = time.AfterFunc(duration, func() {
		t.expire(kind, handle)
	})
	t.entries[kind] = e
	onShow := t.onShow
	t.mu.Unlock()

	if onShow != nil {
		onShow(notification)
	}

	return handle
}

// Cancel clears the notification identified by handle, if it is still
// live. Cancelling an expired or superseded handle is a no-op.
func (t *Timer) Cancel(handle ports.NotificationHandle) {
	t.mu.Lock()
	var cleared *domain.NotificationKind
	for kind, e := range t.entries {
		if e.handle == handle {
			e.timer.Stop()
			delete(t.entries, kind)
			k := kind
			cleared = &k
			break
		}
	}
	onClear := t.onClear
	t.mu.Unlock()

	if cleared != nil && onClear != nil {
		onClear(*cleared)
	}
}

// Active returns the currently visible notifications.
func (t *Timer) Active() []domain.Notification {
	t.mu.Lock()
	defer t.mu.Unlock()

	active := make([]domain.Notification, 0, len(t.entries))
	for _, e := range t.entries {
		active = append(active, e.notification)
	}
	return active
}

// Close cancels every pending timer. Further Show calls are ignored.
func (t *Timer) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.closed = true
	for kind, e := range t.entries {
		e.timer.Stop()
		delete(t.entries, kind)
	}
}

func (t *Timer) expire(kind domain.NotificationKind, handle ports.NotificationHandle) {
	t.mu.Lock()
	e, ok := t.entries[kind]
	if !ok || e.handle != handle {
		t.mu.Unlock()
		return
	}
	delete(t.entries, kind)
	onClear := t.onClear
	t.mu.Unlock()

	if onClear != nil {
		onClear(kind)
	}
}
