package ports

import (
	"context"

	"github.com/oumajohn/vmhost-cli/internal/domain"
)

// SessionStore persists the session across process restarts. The token
// is the only client state that survives a reload.
type SessionStore interface {
	Load(ctx context.Context) (domain.Session, error)
	Save(ctx context.Context, session domain.Session) error
	Clear(ctx context.Context) error
}
