package ports

import (
	"time"

	"github.com/oumajohn/vmhost-cli/internal/domain"
)

// NotificationHandle identifies a scheduled notification so it can be
// cancelled before its timer fires.
type NotificationHandle uint64

// Notifier schedules auto-expiring user-facing messages. Services emit
// through it instead of touching the view directly.
type Notifier interface {
	Show(message string, kind domain.NotificationKind, duration time.Duration) NotificationHandle
	Cancel(handle NotificationHandle)
}
