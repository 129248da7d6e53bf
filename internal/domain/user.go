package domain

import "fmt"

const (
	// MaxSubUsers bounds how many sub-accounts a primary user may own.
	MaxSubUsers = 10
	// MaxVMsPerSubUser bounds how many VMs may be delegated to one sub-account.
	MaxVMsPerSubUser = 5
)

// User is read-only reference data for ownership selection.
type User struct {
	ID       string
	Username string
	Email    string
}

type SubUserID string

type SubUser struct {
	ID              SubUserID
	ParentUserID    string
	Username        string
	AssignedVMCount int
}

// AtCapacity reports whether further VM delegation is blocked.
func (s SubUser) AtCapacity() bool {
	return s.AssignedVMCount >= MaxVMsPerSubUser
}

// AssignVM increments the delegation counter, refusing to cross the bound.
func (s *SubUser) AssignVM() error {
	if s.AtCapacity() {
		return fmt.Errorf("%w: sub-user %s already has %d assigned VMs", ErrQuotaExceeded, s.Username, s.AssignedVMCount)
	}
	s.AssignedVMCount++
	return nil
}

// ReleaseVM decrements the delegation counter. Releasing at zero is a no-op.
func (s *SubUser) ReleaseVM() {
	if s.AssignedVMCount > 0 {
		s.AssignedVMCount--
	}
}
