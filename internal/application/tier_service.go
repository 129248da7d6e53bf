package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/oumajohn/vmhost-cli/internal/domain"
	"github.com/oumajohn/vmhost-cli/internal/notify"
	"github.com/oumajohn/vmhost-cli/internal/ports"
)

// TierState is the engine's position in the selection flow.
type TierState string

const (
	TierStateIdle       TierState = "idle"
	TierStateSelected   TierState = "selected"
	TierStateConfirming TierState = "confirming"
)

// SubscriptionTierEngine stages and commits plan transitions. A commit
// is only permitted for a plan different from the current one; the
// candidate is discarded whenever the commit fails.
type SubscriptionTierEngine struct {
	authority ports.Authority
	session   *SessionContext
	notifier  ports.Notifier

	mu        sync.Mutex
	state     TierState
	current   domain.SubscriptionPlan
	candidate domain.SubscriptionPlan
}

func NewSubscriptionTierEngine(authority ports.Authority, session *SessionContext, notifier ports.Notifier, current domain.SubscriptionPlan) *SubscriptionTierEngine {
	return &SubscriptionTierEngine{
		authority: authority,
		session:   session,
		notifier:  notifier,
		state:     TierStateIdle,
		current:   current,
	}
}

// CurrentPlan returns the active plan.
func (e *SubscriptionTierEngine) CurrentPlan() domain.SubscriptionPlan {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// State returns the engine state.
func (e *SubscriptionTierEngine) State() TierState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// SelectPlan stages a candidate plan and classifies the transition.
// Selecting the active plan is rejected outright.
func (e *SubscriptionTierEngine) SelectPlan(plan domain.SubscriptionPlan) (domain.Transition, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == TierStateConfirming {
		return "", fmt.Errorf("%w: a plan change is already being confirmed", domain.ErrConflict)
	}
	if plan.ID == e.current.ID {
		return "", fmt.Errorf("%w: plan %s is already active", domain.ErrValidation, plan.Name)
	}

	e.candidate = plan
	e.state = TierStateSelected
	return domain.ClassifyTransition(e.current, plan), nil
}

// Cancel discards the staged candidate.
func (e *SubscriptionTierEngine) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == TierStateSelected {
		e.candidate = domain.SubscriptionPlan{}
		e.state = TierStateIdle
	}
}

// Confirm commits the staged transition. On success the candidate
// becomes current; on failure it is discarded and the current plan
// stands. Either way the engine returns to idle.
func (e *SubscriptionTierEngine) Confirm(ctx context.Context) (domain.SubscriptionPlan, error) {
	e.mu.Lock()
	if e.state != TierStateSelected {
		e.mu.Unlock()
		return domain.SubscriptionPlan{}, fmt.Errorf("%w: no plan selected", domain.ErrValidation)
	}
	candidate := e.candidate
	e.state = TierStateConfirming
	e.mu.Unlock()

	token, err := e.session.Token()
	if err != nil {
		e.settle(domain.SubscriptionPlan{}, false)
		return domain.SubscriptionPlan{}, err
	}

	if err := e.authority.Subscribe(ctx, token, candidate); err != nil {
		e.settle(domain.SubscriptionPlan{}, false)
		e.show(fmt.Sprintf("Could not switch to the %s plan.", candidate.Name), domain.NotificationError)
		return domain.SubscriptionPlan{}, err
	}

	e.settle(candidate, true)
	e.show(fmt.Sprintf("Subscribed to the %s plan.", candidate.Name), domain.NotificationSuccess)
	return candidate, nil
}

func (e *SubscriptionTierEngine) settle(plan domain.SubscriptionPlan, committed bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if committed {
		e.current = plan
	}
	e.candidate = domain.SubscriptionPlan{}
	e.state = TierStateIdle
}

func (e *SubscriptionTierEngine) show(message string, kind domain.NotificationKind) {
	if e.notifier != nil {
		e.notifier.Show(message, kind, notify.DefaultDuration)
	}
}
