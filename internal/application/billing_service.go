package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/oumajohn/vmhost-cli/internal/domain"
	"github.com/oumajohn/vmhost-cli/internal/notify"
	"github.com/oumajohn/vmhost-cli/internal/ports"
)

// BillingEngine derives backup bills, classifies payment cards, and
// settles outstanding bills. Card details live only for the duration of
// a payment call and are never retained.
type BillingEngine struct {
	authority ports.Authority
	session   *SessionContext
	notifier  ports.Notifier

	mu          sync.RWMutex
	outstanding []domain.Bill
}

func NewBillingEngine(authority ports.Authority, session *SessionContext, notifier ports.Notifier) *BillingEngine {
	return &BillingEngine{
		authority: authority,
		session:   session,
		notifier:  notifier,
	}
}

// Refresh loads the outstanding bills from the authority.
func (e *BillingEngine) Refresh(ctx context.Context) ([]domain.Bill, error) {
	token, err := e.session.Token()
	if err != nil {
		return nil, err
	}

	bills, err := e.authority.ListOutstandingBills(ctx, token)
	if err != nil {
		e.show("Error fetching billing information.", domain.NotificationError)
		return nil, err
	}

	e.mu.Lock()
	e.outstanding = bills
	e.mu.Unlock()

	return append([]domain.Bill(nil), bills...), nil
}

// Outstanding returns the locally known unpaid bills.
func (e *BillingEngine) Outstanding() []domain.Bill {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]domain.Bill(nil), e.outstanding...)
}

// CreateBackup requests a backup of sizeMB for the VM and registers the
// resulting pending bill. The amount is always derived from the size.
func (e *BillingEngine) CreateBackup(ctx context.Context, vmID domain.VMID, sizeMB int64) (domain.Bill, error) {
	if vmID == 0 || sizeMB <= 0 {
		return domain.Bill{}, fmt.Errorf("%w: a virtual machine and a positive backup size are required", domain.ErrValidation)
	}

	token, err := e.session.Token()
	if err != nil {
		return domain.Bill{}, err
	}

	amount := domain.CalculateBackupBill(sizeMB)
	bill, err := e.authority.CreateBackup(ctx, token, vmID, sizeMB, amount)
	if err != nil {
		e.show("Error creating backup.", domain.NotificationError)
		return domain.Bill{}, err
	}

	e.mu.Lock()
	e.outstanding = append(e.outstanding, bill)
	e.mu.Unlock()

	e.show(fmt.Sprintf("Backup created for VM %d, billed %d.", vmID, bill.Amount), domain.NotificationSuccess)
	return bill, nil
}

// SubmitPayment pays an outstanding bill with the given card. The bill
// stays pending unless the authority confirms the payment.
func (e *BillingEngine) SubmitPayment(ctx context.Context, billID domain.BillID, cardNumber string) (domain.Bill, error) {
	bill, err := e.get(billID)
	if err != nil {
		return domain.Bill{}, err
	}

	brand := domain.ClassifyCard(cardNumber)
	if brand == domain.CardUnknown {
		return domain.Bill{}, fmt.Errorf("%w: unrecognised card number", domain.ErrValidation)
	}

	token, err := e.session.Token()
	if err != nil {
		return domain.Bill{}, err
	}

	transactionID, err := e.authority.MakePayment(ctx, token, billID, bill.Amount, cardNumber)
	if err != nil {
		e.show("Payment failed. The bill remains pending.", domain.NotificationError)
		return domain.Bill{}, err
	}

	bill.Status = domain.BillStatusPaid
	bill.TransactionID = transactionID

	e.mu.Lock()
	for i := range e.outstanding {
		if e.outstanding[i].ID == billID {
			e.outstanding = append(e.outstanding[:i], e.outstanding[i+1:]...)
			break
		}
	}
	e.mu.Unlock()

	e.show(fmt.Sprintf("Payment of %d processed with your %s card.", bill.Amount, brand), domain.NotificationSuccess)
	return bill, nil
}

func (e *BillingEngine) get(billID domain.BillID) (domain.Bill, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, bill := range e.outstanding {
		if bill.ID == billID {
			return bill, nil
		}
	}
	return domain.Bill{}, fmt.Errorf("%w: bill %s", domain.ErrBillNotFound, billID)
}

func (e *BillingEngine) show(message string, kind domain.NotificationKind) {
	if e.notifier != nil {
		e.notifier.Show(message, kind, notify.DefaultDuration)
	}
}
