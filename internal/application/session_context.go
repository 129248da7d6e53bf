package application

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/oumajohn/vmhost-cli/internal/domain"
	"github.com/oumajohn/vmhost-cli/internal/ports"
)

// SessionContext is the single owner of the session. Every service
// reads the token through it; only login/logout paths mutate it.
type SessionContext struct {
	mu      sync.RWMutex
	store   ports.SessionStore
	session domain.Session
}

func NewSessionContext(ctx context.Context, store ports.SessionStore) (*SessionContext, error) {
	sc := &SessionContext{store: store}

	if store != nil {
		session, err := store.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load persisted session: %w", err)
		}
		sc.session = session
	}

	return sc, nil
}

// Token returns the bearer token, or ErrNoSession when none is set.
func (sc *SessionContext) Token() (string, error) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	if !sc.session.Active() {
		return "", domain.ErrNoSession
	}
	return sc.session.Token, nil
}

func (sc *SessionContext) Session() domain.Session {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.session
}

// SetSession replaces the session wholesale and persists it.
func (sc *SessionContext) SetSession(ctx context.Context, session domain.Session) error {
	if !session.Active() {
		return fmt.Errorf("%w: token is required", domain.ErrValidation)
	}
	if !session.Role.Valid() {
		session.Role = domain.RoleGuest
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.store != nil {
		if err := sc.store.Save(ctx, session); err != nil {
			return fmt.Errorf("persist session: %w", err)
		}
	}
	sc.session = session
	return nil
}

// Clear drops the session and its persisted copy.
func (sc *SessionContext) Clear(ctx context.Context) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.store != nil {
		if err := sc.store.Clear(ctx); err != nil {
			return fmt.Errorf("clear persisted session: %w", err)
		}
	}
	sc.session = domain.Session{}
	return nil
}

// SessionInfo describes the session for display. Claims are only
// populated when the token happens to be a decodable JWT.
type SessionInfo struct {
	Active    bool
	Role      domain.Role
	Subject   string
	ExpiresAt time.Time
}

func (i SessionInfo) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && now.After(i.ExpiresAt)
}

// Describe inspects the session. The token stays opaque to all remote
// operations; the unverified JWT decode here is display-only.
func (sc *SessionContext) Describe() SessionInfo {
	sc.mu.RLock()
	session := sc.session
	sc.mu.RUnlock()

	info := SessionInfo{Active: session.Active(), Role: session.Role}
	if !info.Active {
		return info
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(session.Token, claims); err != nil {
		return info
	}

	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}
	if role, ok := claims["role"].(string); ok && strings.TrimSpace(role) != "" {
		info.Role = domain.ParseRole(role)
	}

	return info
}
