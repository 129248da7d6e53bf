package domain

import (
	"fmt"
	"strings"
)

type VMID int64

type VMStatus string

const (
	VMStatusRunning VMStatus = "running"
	VMStatusStopped VMStatus = "stopped"
)

func (s VMStatus) Valid() bool {
	return s == VMStatusRunning || s == VMStatusStopped
}

// VirtualMachine mirrors a server-owned compute resource. Instances are
// created by the remote authority and cached locally; only confirmed
// responses may mutate the cached copy.
type VirtualMachine struct {
	ID            VMID
	Name          string
	CPU           int
	RAMMB         int
	CostPerMonth  int64
	Status        VMStatus
	OwnerID       string
	BackedUpMB    int64
	NotBackedUpMB int64
}

func (vm VirtualMachine) Validate() error {
	if strings.TrimSpace(vm.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if !vm.Status.Valid() {
		return fmt.Errorf("%w: unsupported status %q", ErrValidation, vm.Status)
	}
	return nil
}

// VMPatch carries the confirmed fields of a server response. Nil fields
// leave the cached value untouched.
type VMPatch struct {
	Name          *string
	CPU           *int
	RAMMB         *int
	CostPerMonth  *int64
	Status        *VMStatus
	OwnerID       *string
	BackedUpMB    *int64
	NotBackedUpMB *int64
}

func (p VMPatch) Apply(vm *VirtualMachine) {
	if vm == nil {
		return
	}
	if p.Name != nil {
		vm.Name = *p.Name
	}
	if p.CPU != nil {
		vm.CPU = *p.CPU
	}
	if p.RAMMB != nil {
		vm.RAMMB = *p.RAMMB
	}
	if p.CostPerMonth != nil {
		vm.CostPerMonth = *p.CostPerMonth
	}
	if p.Status != nil {
		vm.Status = *p.Status
	}
	if p.OwnerID != nil {
		vm.OwnerID = *p.OwnerID
	}
	if p.BackedUpMB != nil {
		vm.BackedUpMB = *p.BackedUpMB
	}
	if p.NotBackedUpMB != nil {
		vm.NotBackedUpMB = *p.NotBackedUpMB
	}
}
