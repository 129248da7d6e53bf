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

// TransferService reassigns VM ownership. At most one transfer per VM
// id may be in flight; cached ownership changes only after the
// authority confirms the move.
type TransferService struct {
	authority ports.Authority
	store     *ResourceStore
	session   *SessionContext
	notifier  ports.Notifier

	mu       sync.Mutex
	inFlight map[domain.VMID]struct{}
}

func NewTransferService(authority ports.Authority, store *ResourceStore, session *SessionContext, notifier ports.Notifier) *TransferService {
	return &TransferService{
		authority: authority,
		store:     store,
		session:   session,
		notifier:  notifier,
		inFlight:  make(map[domain.VMID]struct{}),
	}
}

// Assign moves ownership of vmID to newOwnerID.
func (s *TransferService) Assign(ctx context.Context, vmID domain.VMID, newOwnerID string) error {
	if vmID == 0 || strings.TrimSpace(newOwnerID) == "" {
		return fmt.Errorf("%w: select both a virtual machine and a user", domain.ErrValidation)
	}

	token, err := s.session.Token()
	if err != nil {
		return err
	}

	if err := s.reserve(vmID); err != nil {
		return err
	}
	defer s.release(vmID)

	if err := s.authority.AssignVM(ctx, token, vmID, newOwnerID); err != nil {
		s.show("Error assigning virtual machine.", domain.NotificationError)
		return err
	}

	owner := newOwnerID
	s.store.ApplyMutation(vmID, domain.VMPatch{OwnerID: &owner})

	name := fmt.Sprintf("VM %d", vmID)
	if vm, ok := s.store.Get(vmID); ok {
		name = vm.Name
	}
	s.show(fmt.Sprintf("Successfully assigned %s to %s.", name, newOwnerID), domain.NotificationSuccess)

	return nil
}

func (s *TransferService) reserve(vmID domain.VMID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.inFlight[vmID]; busy {
		return fmt.Errorf("%w: transfer already in flight for vm %d", domain.ErrConflict, vmID)
	}
	s.inFlight[vmID] = struct{}{}
	return nil
}

func (s *TransferService) release(vmID domain.VMID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, vmID)
}

func (s *TransferService) show(message string, kind domain.NotificationKind) {
	if s.notifier != nil {
		s.notifier.Show(message, kind, notify.DefaultDuration)
	}
}
