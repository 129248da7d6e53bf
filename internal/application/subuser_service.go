package application

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/oumajohn/vmhost-cli/internal/domain"
	"github.com/oumajohn/vmhost-cli/internal/notify"
	"github.com/oumajohn/vmhost-cli/internal/ports"
)

// SubUserQuotaManager creates sub-accounts and delegates VMs to them
// within the fixed quotas. Quota checks run locally before any request
// leaves the client.
type SubUserQuotaManager struct {
	authority ports.Authority
	session   *SessionContext
	notifier  ports.Notifier

	mu       sync.RWMutex
	subUsers []domain.SubUser
	loaded   bool
}

func NewSubUserQuotaManager(authority ports.Authority, session *SessionContext, notifier ports.Notifier) *SubUserQuotaManager {
	return &SubUserQuotaManager{
		authority: authority,
		session:   session,
		notifier:  notifier,
	}
}

// Refresh replaces the local set with the authority's records.
func (m *SubUserQuotaManager) Refresh(ctx context.Context) ([]domain.SubUser, error) {
	token, err := m.session.Token()
	if err != nil {
		return nil, err
	}

	subUsers, err := m.authority.ListSubUsers(ctx, token)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.subUsers = subUsers
	m.loaded = true
	m.mu.Unlock()

	return append([]domain.SubUser(nil), subUsers...), nil
}

// SubUsers returns the local set.
func (m *SubUserQuotaManager) SubUsers() []domain.SubUser {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.SubUser(nil), m.subUsers...)
}

// CreateSubUser registers a new sub-account. The MaxSubUsers bound is
// enforced locally; a violating call never reaches the network.
func (m *SubUserQuotaManager) CreateSubUser(ctx context.Context, username string) (domain.SubUser, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return domain.SubUser{}, fmt.Errorf("%w: sub-user username is required", domain.ErrValidation)
	}

	token, err := m.session.Token()
	if err != nil {
		return domain.SubUser{}, err
	}

	m.mu.RLock()
	count := len(m.subUsers)
	m.mu.RUnlock()
	if count >= domain.MaxSubUsers {
		m.show(fmt.Sprintf("You can only have up to %d sub-users.", domain.MaxSubUsers), domain.NotificationError)
		return domain.SubUser{}, fmt.Errorf("%w: at most %d sub-users allowed", domain.ErrQuotaExceeded, domain.MaxSubUsers)
	}

	created, err := m.authority.CreateSubUser(ctx, token, username)
	if err != nil {
		m.show("Failed to add sub-user. Try again.", domain.NotificationError)
		return domain.SubUser{}, err
	}

	m.mu.Lock()
	m.subUsers = append(m.subUsers, created)
	m.mu.Unlock()

	m.show(fmt.Sprintf("Sub-user %s added.", created.Username), domain.NotificationSuccess)
	return created, nil
}

// AssignVM delegates one more VM to the sub-account. The per-sub-user
// bound is checked locally; the counter only moves after the authority
// confirms the delegation.
func (m *SubUserQuotaManager) AssignVM(ctx context.Context, id domain.SubUserID) (domain.SubUser, error) {
	token, err := m.session.Token()
	if err != nil {
		return domain.SubUser{}, err
	}

	current, err := m.get(id)
	if err != nil {
		return domain.SubUser{}, err
	}

	if current.AtCapacity() {
		m.show(fmt.Sprintf("Sub-user %s already has %d assigned VMs.", current.Username, current.AssignedVMCount), domain.NotificationError)
		return current, fmt.Errorf("%w: sub-user %s is at capacity", domain.ErrQuotaExceeded, current.Username)
	}

	if err := m.authority.DelegateVM(ctx, token, id, current.AssignedVMCount+1); err != nil {
		m.show("Error delegating virtual machine.", domain.NotificationError)
		return current, err
	}

	updated, err := m.mutate(id, func(s *domain.SubUser) error { return s.AssignVM() })
	if err != nil {
		return current, err
	}

	m.show(fmt.Sprintf("Assigned a VM to %s (%d/%d).", updated.Username, updated.AssignedVMCount, domain.MaxVMsPerSubUser), domain.NotificationSuccess)
	return updated, nil
}

// ReleaseVM takes one VM back from the sub-account. Releasing at zero
// returns the unchanged record without a remote call.
func (m *SubUserQuotaManager) ReleaseVM(ctx context.Context, id domain.SubUserID) (domain.SubUser, error) {
	token, err := m.session.Token()
	if err != nil {
		return domain.SubUser{}, err
	}

	current, err := m.get(id)
	if err != nil {
		return domain.SubUser{}, err
	}

	if current.AssignedVMCount == 0 {
		return current, nil
	}

	if err := m.authority.DelegateVM(ctx, token, id, current.AssignedVMCount-1); err != nil {
		m.show("Error releasing virtual machine.", domain.NotificationError)
		return current, err
	}

	updated, err := m.mutate(id, func(s *domain.SubUser) error {
		s.ReleaseVM()
		return nil
	})
	if err != nil {
		return current, err
	}

	m.show(fmt.Sprintf("Released a VM from %s (%d/%d).", updated.Username, updated.AssignedVMCount, domain.MaxVMsPerSubUser), domain.NotificationSuccess)
	return updated, nil
}

func (m *SubUserQuotaManager) get(id domain.SubUserID) (domain.SubUser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, subUser := range m.subUsers {
		if subUser.ID == id {
			return subUser, nil
		}
	}
	return domain.SubUser{}, fmt.Errorf("%w: sub-user %s", domain.ErrUserNotFound, id)
}

func (m *SubUserQuotaManager) mutate(id domain.SubUserID, fn func(*domain.SubUser) error) (domain.SubUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.subUsers {
		if m.subUsers[i].ID == id {
			if err := fn(&m.subUsers[i]); err != nil {
				return m.subUsers[i], err
			}
			return m.subUsers[i], nil
		}
	}
	return domain.SubUser{}, fmt.Errorf("%w: sub-user %s", domain.ErrUserNotFound, id)
}

func (m *SubUserQuotaManager) show(message string, kind domain.NotificationKind) {
	if m.notifier != nil {
		m.notifier.Show(message, kind, notify.DefaultDuration)
	}
}
