package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator"

	"github.com/oumajohn/vmhost-cli/internal/domain"
	"github.com/oumajohn/vmhost-cli/internal/notify"
	"github.com/oumajohn/vmhost-cli/internal/ports"
)

// ResourceStore is the locally cached view of VM resources and the
// single writer of VM cache entries. Other services request mutations
// through it so caches never diverge.
type ResourceStore struct {
	mu        sync.RWMutex
	authority ports.Authority
	session   *SessionContext
	notifier  ports.Notifier
	log       *slog.Logger
	validate  *validator.Validate

	vms   []domain.VirtualMachine
	total int
}

func NewResourceStore(authority ports.Authority, session *SessionContext, notifier ports.Notifier, log *slog.Logger) *ResourceStore {
	if log == nil {
		log = slog.Default()
	}

	return &ResourceStore{
		authority: authority,
		session:   session,
		notifier:  notifier,
		log:       log,
		validate:  validator.New(),
	}
}

// FetchPage loads one page from the authority and reconciles the cache.
// Ordering is stable by server-assigned id. A failed fetch leaves the
// previous cache intact and returns the stale page alongside the error,
// so the view never flickers to an empty state.
func (s *ResourceStore) FetchPage(ctx context.Context, page, pageSize int) (ports.VMPage, error) {
	if page < 1 || pageSize < 1 {
		return ports.VMPage{}, fmt.Errorf("%w: page and page size must be positive", domain.ErrValidation)
	}

	token, err := s.session.Token()
	if err != nil {
		return s.cachedPage(page, pageSize), err
	}

	fetched, err := s.authority.ListVMs(ctx, token, page, pageSize)
	if err != nil {
		s.log.Warn("vm page fetch failed, serving cached view", slog.Int("page", page), slog.String("error", err.Error()))
		return s.cachedPage(page, pageSize), err
	}

	s.mu.Lock()
	for _, vm := range fetched.Items {
		s.upsertLocked(vm)
	}
	s.total = fetched.Total
	s.mu.Unlock()

	sort.Slice(fetched.Items, func(i, j int) bool { return fetched.Items[i].ID < fetched.Items[j].ID })
	return fetched, nil
}

// Search filters the loaded collection locally, matching the term
// case-insensitively against name and owner. No re-fetch per keystroke.
func (s *ResourceStore) Search(term string) []domain.VirtualMachine {
	s.mu.RLock()
	defer s.mu.RUnlock()

	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return append([]domain.VirtualMachine(nil), s.vms...)
	}

	matches := make([]domain.VirtualMachine, 0, len(s.vms))
	for _, vm := range s.vms {
		if strings.Contains(strings.ToLower(vm.Name), term) || strings.Contains(strings.ToLower(vm.OwnerID), term) {
			matches = append(matches, vm)
		}
	}
	return matches
}

// Get returns the cached entity by id.
func (s *ResourceStore) Get(id domain.VMID) (domain.VirtualMachine, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, vm := range s.vms {
		if vm.ID == id {
			return vm, true
		}
	}
	return domain.VirtualMachine{}, false
}

// ApplyMutation merges a server-confirmed patch into the cached entity.
// An unknown id means the entity was deleted concurrently; that is
// logged and otherwise ignored.
func (s *ResourceStore) ApplyMutation(id domain.VMID, patch domain.VMPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.vms {
		if s.vms[i].ID == id {
			patch.Apply(&s.vms[i])
			return
		}
	}

	s.log.Warn("dropping mutation for vm missing from cache", slog.Int64("vm_id", int64(id)))
}

// CreateVMCommand is the create payload entered at the console.
type CreateVMCommand struct {
	Name         string          `validate:"required"`
	CPU          int             `validate:"min=1"`
	RAMMB        int             `validate:"min=128"`
	CostPerMonth int64           `validate:"min=0"`
	Status       domain.VMStatus `validate:"required,oneof=running stopped"`
}

// Create provisions a VM remotely and admits it into the cache only
// once the authority confirms it.
func (s *ResourceStore) Create(ctx context.Context, cmd CreateVMCommand) (domain.VirtualMachine, error) {
	if err := s.validate.Struct(cmd); err != nil {
		return domain.VirtualMachine{}, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	token, err := s.session.Token()
	if err != nil {
		return domain.VirtualMachine{}, err
	}

	created, err := s.authority.CreateVM(ctx, token, ports.CreateVMRequest{
		Name:         cmd.Name,
		CPU:          cmd.CPU,
		RAMMB:        cmd.RAMMB,
		CostPerMonth: cmd.CostPerMonth,
		Status:       cmd.Status,
	})
	if err != nil {
		s.showError(fmt.Sprintf("Error creating virtual machine %s.", cmd.Name))
		return domain.VirtualMachine{}, err
	}

	s.mu.Lock()
	s.upsertLocked(created)
	s.total++
	s.mu.Unlock()

	s.showSuccess(fmt.Sprintf("Virtual machine %s created.", created.Name))
	return created, nil
}

// UpdateVMCommand is the full editable field set for an update.
type UpdateVMCommand struct {
	Name         string          `validate:"required"`
	CPU          int             `validate:"min=1"`
	RAMMB        int             `validate:"min=128"`
	CostPerMonth int64           `validate:"min=0"`
	Status       domain.VMStatus `validate:"required,oneof=running stopped"`
}

// Update edits a VM remotely; the cache is only patched with the
// authority's confirmed response.
func (s *ResourceStore) Update(ctx context.Context, id domain.VMID, cmd UpdateVMCommand) (domain.VirtualMachine, error) {
	if err := s.validate.Struct(cmd); err != nil {
		return domain.VirtualMachine{}, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	token, err := s.session.Token()
	if err != nil {
		return domain.VirtualMachine{}, err
	}

	updated, err := s.authority.UpdateVM(ctx, token, id, ports.UpdateVMRequest{
		Name:         cmd.Name,
		CPU:          cmd.CPU,
		RAMMB:        cmd.RAMMB,
		CostPerMonth: cmd.CostPerMonth,
		Status:       cmd.Status,
	})
	if err != nil {
		s.showError("Error updating virtual machine.")
		return domain.VirtualMachine{}, err
	}

	s.ApplyMutation(id, domain.VMPatch{
		Name:         &updated.Name,
		CPU:          &updated.CPU,
		RAMMB:        &updated.RAMMB,
		CostPerMonth: &updated.CostPerMonth,
		Status:       &updated.Status,
		OwnerID:      &updated.OwnerID,
	})

	s.showSuccess(fmt.Sprintf("Virtual machine %s updated.", updated.Name))
	return updated, nil
}

// Delete retires a VM. The cached entry is only dropped after the
// authority confirms the deletion.
func (s *ResourceStore) Delete(ctx context.Context, id domain.VMID) error {
	token, err := s.session.Token()
	if err != nil {
		return err
	}

	if err := s.authority.DeleteVM(ctx, token, id); err != nil {
		s.showError("Error deleting virtual machine.")
		return err
	}

	s.mu.Lock()
	for i := range s.vms {
		if s.vms[i].ID == id {
			s.vms = append(s.vms[:i], s.vms[i+1:]...)
			if s.total > 0 {
				s.total--
			}
			break
		}
	}
	s.mu.Unlock()

	s.showSuccess(fmt.Sprintf("Virtual machine %d deleted.", id))
	return nil
}

// Total reports the authority's last known collection size.
func (s *ResourceStore) Total() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}

func (s *ResourceStore) cachedPage(page, pageSize int) ports.VMPage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := (page - 1) * pageSize
	if start < 0 || start >= len(s.vms) {
		return ports.VMPage{Total: s.total}
	}
	end := start + pageSize
	if end > len(s.vms) {
		end = len(s.vms)
	}

	return ports.VMPage{
		Items: append([]domain.VirtualMachine(nil), s.vms[start:end]...),
		Total: s.total,
	}
}

func (s *ResourceStore) upsertLocked(vm domain.VirtualMachine) {
	for i := range s.vms {
		if s.vms[i].ID == vm.ID {
			s.vms[i] = vm
			return
		}
	}
	s.vms = append(s.vms, vm)
	sort.Slice(s.vms, func(i, j int) bool { return s.vms[i].ID < s.vms[j].ID })
}

func (s *ResourceStore) showSuccess(message string) {
	if s.notifier != nil {
		s.notifier.Show(message, domain.NotificationSuccess, notify.DefaultDuration)
	}
}

func (s *ResourceStore) showError(message string) {
	if s.notifier != nil {
		s.notifier.Show(message, domain.NotificationError, notify.DefaultDuration)
	}
}
