package domain

import "time"

type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
)

// Notification is a transient user-facing message. It is owned by the
// issuing service and destroyed when its timer fires or the owning view
// is disposed.
type Notification struct {
	Message   string
	Kind      NotificationKind
	ExpiresAt time.Time
}
