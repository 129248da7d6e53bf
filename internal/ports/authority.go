package ports

import (
	"context"

	"github.com/oumajohn/vmhost-cli/internal/domain"
)

// VMPage is one page of the authority's VM listing.
type VMPage struct {
	Items []domain.VirtualMachine
	Total int
}

// CreateVMRequest is the payload accepted by the create endpoint.
type CreateVMRequest struct {
	Name         string
	CPU          int
	RAMMB        int
	CostPerMonth int64
	Status       domain.VMStatus
}

// UpdateVMRequest carries the editable VM fields for a full update.
type UpdateVMRequest struct {
	Name         string
	CPU          int
	RAMMB        int
	CostPerMonth int64
	Status       domain.VMStatus
}

// Authority is the remote service holding canonical resource state. All
// calls require an active session token; implementations must translate
// failures into *domain.RemoteError.
type Authority interface {
	ListVMs(ctx context.Context, token string, page, pageSize int) (VMPage, error)
	CreateVM(ctx context.Context, token string, req CreateVMRequest) (domain.VirtualMachine, error)
	UpdateVM(ctx context.Context, token string, id domain.VMID, req UpdateVMRequest) (domain.VirtualMachine, error)
	DeleteVM(ctx context.Context, token string, id domain.VMID) error
	AssignVM(ctx context.Context, token string, id domain.VMID, newOwnerID string) error

	ListSubUsers(ctx context.Context, token string) ([]domain.SubUser, error)
	CreateSubUser(ctx context.Context, token string, username string) (domain.SubUser, error)
	DelegateVM(ctx context.Context, token string, id domain.SubUserID, assignedCount int) error

	CreateBackup(ctx context.Context, token string, vmID domain.VMID, sizeMB, amount int64) (domain.Bill, error)
	ListOutstandingBills(ctx context.Context, token string) ([]domain.Bill, error)
	MakePayment(ctx context.Context, token string, billID domain.BillID, amount int64, cardNumber string) (string, error)

	Subscribe(ctx context.Context, token string, plan domain.SubscriptionPlan) error
}
