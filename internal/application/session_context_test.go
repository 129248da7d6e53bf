package application

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oumajohn/vmhost-cli/internal/domain"
)

type inMemorySessionStore struct {
	session domain.Session
	saves   int
	clears  int
}

func (s *inMemorySessionStore) Load(context.Context) (domain.Session, error) {
	return s.session, nil
}

func (s *inMemorySessionStore) Save(_ context.Context, session domain.Session) error {
	s.session = session
	s.saves++
	return nil
}

func (s *inMemorySessionStore) Clear(context.Context) error {
	s.session = domain.Session{}
	s.clears++
	return nil
}

func TestSessionContextTokenWithoutSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	sc, err := NewSessionContext(ctx, nil)
	require.NoError(t, err)

	_, err = sc.Token()
	assert.ErrorIs(t, err, domain.ErrNoSession)
}

func TestSessionContextSetSessionPersists(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := &inMemorySessionStore{}
	sc, err := NewSessionContext(ctx, store)
	require.NoError(t, err)

	require.NoError(t, sc.SetSession(ctx, domain.Session{Token: "tok", Role: domain.RoleAdmin}))

	token, err := sc.Token()
	require.NoError(t, err)
	assert.Equal(t, "tok", token)
	assert.Equal(t, 1, store.saves)
	assert.Equal(t, domain.RoleAdmin, store.session.Role)
}

func TestSessionContextRejectsEmptyToken(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	sc, err := NewSessionContext(ctx, nil)
	require.NoError(t, err)

	err = sc.SetSession(ctx, domain.Session{Token: "   "})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSessionContextDefaultsInvalidRoleToGuest(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	sc, err := NewSessionContext(ctx, nil)
	require.NoError(t, err)

	require.NoError(t, sc.SetSession(ctx, domain.Session{Token: "tok", Role: "superuser"}))
	assert.Equal(t, domain.RoleGuest, sc.Session().Role)
}

func TestSessionContextLoadsPersistedSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := &inMemorySessionStore{session: domain.Session{Token: "persisted", Role: domain.RoleStandardUser}}
	sc, err := NewSessionContext(ctx, store)
	require.NoError(t, err)

	token, err := sc.Token()
	require.NoError(t, err)
	assert.Equal(t, "persisted", token)
}

func TestSessionContextClear(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := &inMemorySessionStore{}
	sc, err := NewSessionContext(ctx, store)
	require.NoError(t, err)
	require.NoError(t, sc.SetSession(ctx, domain.Session{Token: "tok"}))

	require.NoError(t, sc.Clear(ctx))
	assert.Equal(t, 1, store.clears)

	_, err = sc.Token()
	assert.ErrorIs(t, err, domain.ErrNoSession)
}

func TestSessionContextDescribeOpaqueToken(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	sc, err := NewSessionContext(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, sc.SetSession(ctx, domain.Session{Token: "not-a-jwt", Role: domain.RoleAdmin}))

	info := sc.Describe()
	assert.True(t, info.Active)
	assert.Equal(t, domain.RoleAdmin, info.Role)
	assert.Empty(t, info.Subject)
	assert.True(t, info.ExpiresAt.IsZero())
}

func TestSessionContextDescribeDecodesJWTClaims(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	expiry := time.Now().Add(time.Hour).Truncate(time.Second)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "alice",
		"role": "Admin",
		"exp":  expiry.Unix(),
	}).SignedString([]byte("unit-test-key"))
	require.NoError(t, err)

	sc, err := NewSessionContext(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, sc.SetSession(ctx, domain.Session{Token: token, Role: domain.RoleGuest}))

	info := sc.Describe()
	assert.True(t, info.Active)
	assert.Equal(t, "alice", info.Subject)
	assert.Equal(t, domain.RoleAdmin, info.Role)
	assert.Equal(t, expiry.Unix(), info.ExpiresAt.Unix())
	assert.False(t, info.Expired(time.Now()))
	assert.True(t, info.Expired(expiry.Add(time.Minute)))
}
