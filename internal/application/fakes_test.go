package application

import (
	"context"
	"sync"
	"time"

	"github.com/oumajohn/vmhost-cli/internal/domain"
	"github.com/oumajohn/vmhost-cli/internal/ports"
)

// fakeAuthority stubs the remote service. Each method delegates to the
// corresponding function field when set and records that it was called.
type fakeAuthority struct {
	mu    sync.Mutex
	calls []string

	listVMs      func(page, pageSize int) (ports.VMPage, error)
	createVM     func(req ports.CreateVMRequest) (domain.VirtualMachine, error)
	updateVM     func(id domain.VMID, req ports.UpdateVMRequest) (domain.VirtualMachine, error)
	deleteVM     func(id domain.VMID) error
	assignVM     func(id domain.VMID, newOwnerID string) error
	listSubUsers func() ([]domain.SubUser, error)
	createSub    func(username string) (domain.SubUser, error)
	delegateVM   func(id domain.SubUserID, assignedCount int) error
	createBackup func(vmID domain.VMID, sizeMB, amount int64) (domain.Bill, error)
	listBills    func() ([]domain.Bill, error)
	makePayment  func(billID domain.BillID, amount int64, cardNumber string) (string, error)
	subscribe    func(plan domain.SubscriptionPlan) error
}

func (f *fakeAuthority) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeAuthority) callCount(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, c := range f.calls {
		if c == call {
			count++
		}
	}
	return count
}

func (f *fakeAuthority) ListVMs(_ context.Context, _ string, page, pageSize int) (ports.VMPage, error) {
	f.record("ListVMs")
	if f.listVMs == nil {
		return ports.VMPage{}, nil
	}
	return f.listVMs(page, pageSize)
}

func (f *fakeAuthority) CreateVM(_ context.Context, _ string, req ports.CreateVMRequest) (domain.VirtualMachine, error) {
	f.record("CreateVM")
	if f.createVM == nil {
		return domain.VirtualMachine{}, nil
	}
	return f.createVM(req)
}

func (f *fakeAuthority) UpdateVM(_ context.Context, _ string, id domain.VMID, req ports.UpdateVMRequest) (domain.VirtualMachine, error) {
	f.record("UpdateVM")
	if f.updateVM == nil {
		return domain.VirtualMachine{}, nil
	}
	return f.updateVM(id, req)
}

func (f *fakeAuthority) DeleteVM(_ context.Context, _ string, id domain.VMID) error {
	f.record("DeleteVM")
	if f.deleteVM == nil {
		return nil
	}
	return f.deleteVM(id)
}

func (f *fakeAuthority) AssignVM(_ context.Context, _ string, id domain.VMID, newOwnerID string) error {
	f.record("AssignVM")
	if f.assignVM == nil {
		return nil
	}
	return f.assignVM(id, newOwnerID)
}

func (f *fakeAuthority) ListSubUsers(_ context.Context, _ string) ([]domain.SubUser, error) {
	f.record("ListSubUsers")
	if f.listSubUsers == nil {
		return nil, nil
	}
	return f.listSubUsers()
}

func (f *fakeAuthority) CreateSubUser(_ context.Context, _ string, username string) (domain.SubUser, error) {
	f.record("CreateSubUser")
	if f.createSub == nil {
		return domain.SubUser{Username: username}, nil
	}
	return f.createSub(username)
}

func (f *fakeAuthority) DelegateVM(_ context.Context, _ string, id domain.SubUserID, assignedCount int) error {
	f.record("DelegateVM")
	if f.delegateVM == nil {
		return nil
	}
	return f.delegateVM(id, assignedCount)
}

func (f *fakeAuthority) CreateBackup(_ context.Context, _ string, vmID domain.VMID, sizeMB, amount int64) (domain.Bill, error) {
	f.record("CreateBackup")
	if f.createBackup == nil {
		return domain.NewBackupBill("bill-test", vmID, sizeMB), nil
	}
	return f.createBackup(vmID, sizeMB, amount)
}

func (f *fakeAuthority) ListOutstandingBills(_ context.Context, _ string) ([]domain.Bill, error) {
	f.record("ListOutstandingBills")
	if f.listBills == nil {
		return nil, nil
	}
	return f.listBills()
}

func (f *fakeAuthority) MakePayment(_ context.Context, _ string, billID domain.BillID, amount int64, cardNumber string) (string, error) {
	f.record("MakePayment")
	if f.makePayment == nil {
		return "txn-test", nil
	}
	return f.makePayment(billID, amount, cardNumber)
}

func (f *fakeAuthority) Subscribe(_ context.Context, _ string, plan domain.SubscriptionPlan) error {
	f.record("Subscribe")
	if f.subscribe == nil {
		return nil
	}
	return f.subscribe(plan)
}

// fakeNotifier records every Show call instead of scheduling timers.
type fakeNotifier struct {
	mu    sync.Mutex
	shown []domain.Notification
	next  ports.NotificationHandle
}

func (f *fakeNotifier) Show(message string, kind domain.NotificationKind, _ time.Duration) ports.NotificationHandle {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shown = append(f.shown, domain.Notification{Message: message, Kind: kind})
	f.next++
	return f.next
}

func (f *fakeNotifier) Cancel(ports.NotificationHandle) {}

func (f *fakeNotifier) messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.shown))
	for i, n := range f.shown {
		out[i] = n.Message
	}
	return out
}

func (f *fakeNotifier) lastKind() domain.NotificationKind {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.shown) == 0 {
		return ""
	}
	return f.shown[len(f.shown)-1].Kind
}

func activeSession(ctx context.Context) *SessionContext {
	sc, err := NewSessionContext(ctx, nil)
	if err != nil {
		panic(err)
	}
	if err := sc.SetSession(ctx, domain.Session{Token: "test-token", Role: domain.RoleStandardUser}); err != nil {
		panic(err)
	}
	return sc
}

func emptySession(ctx context.Context) *SessionContext {
	sc, err := NewSessionContext(ctx, nil)
	if err != nil {
		panic(err)
	}
	return sc
}
