package storefront

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// State represents the lifecycle of one purchase attempt
type State string

const (
	StateIdle           State = "IDLE"
	StateConfirmPending State = "CONFIRM_PENDING"
	StateSubmitting     State = "SUBMITTING"
	StateSettled        State = "SETTLED"
)

// IsValid checks if the state is a valid State
func (s State) IsValid() bool {
	switch s {
	case StateIdle, StateConfirmPending, StateSubmitting, StateSettled:
		return true
	}
	return false
}

// String returns the string representation of State
func (s State) String() string {
	return string(s)
}

// CanTransitionTo checks if the state can transition to the target state
func (s State) CanTransitionTo(target State) bool {
	switch s {
	case StateIdle:
		return target == StateConfirmPending
	case StateConfirmPending:
		return target == StateSubmitting || target == StateIdle
	case StateSubmitting:
		return target == StateSettled
	case StateSettled:
		return target == StateIdle
	}
	return false
}

// Outcome is the terminal result of one purchase attempt
type Outcome string

const (
	OutcomeSuccess Outcome = "SUCCESS"
	OutcomeFailure Outcome = "FAILURE"
)

// Result carries a settled attempt back to the caller. Stale marks a
// result whose session ended while the submission was in flight; the
// ledger write stands for the old principal, but nothing was applied
// to the current session's entitlements.
type Result struct {
	Outcome Outcome
	Item    Item
	Receipt *Receipt
	Err     error
	Stale   bool
}

// attempt is the in-progress purchase bound to the session epoch that
// started it.
type attempt struct {
	principal Principal
	item      Item
	epoch     uint64
}

// Workflow orchestrates a single purchase attempt: guard evaluation,
// explicit confirmation, ledger submission and settlement. One
// workflow serves one browsing session; at most one attempt is active
// at a time, and a second Request while an attempt is active is
// rejected rather than queued.
//
// Remote calls run without holding the workflow lock; ordering is
// enforced by the state machine, not by blocking.
type Workflow struct {
	session      *Session
	ledger       LedgerGateway
	logger       *zap.Logger
	entitlements *EntitlementSet
	unsubscribe  func()

	mu      sync.Mutex
	state   State
	current *attempt
	settled *Result
}

// NewWorkflow creates an idle workflow bound to the session. The
// entitlement cache is cleared on every session transition so one
// principal's ownership never leaks into the next.
func NewWorkflow(session *Session, ledger LedgerGateway, logger *zap.Logger) *Workflow {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &Workflow{
		session:      session,
		ledger:       ledger,
		logger:       logger,
		entitlements: NewEntitlementSet(),
		state:        StateIdle,
	}
	w.unsubscribe = session.Subscribe(func(Principal) {
		w.entitlements.Reset()
	})
	return w
}

// Close cancels the session subscription.
func (w *Workflow) Close() {
	if w.unsubscribe != nil {
		w.unsubscribe()
		w.unsubscribe = nil
	}
}

// State returns the current workflow state.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Owns reports whether the current session is known to own the item.
func (w *Workflow) Owns(item Item) bool {
	return w.entitlements.Contains(item.ID)
}

// Request starts a purchase attempt for the item. The ownership guard
// runs first: a denial leaves the workflow Idle with no side effect
// and no ledger write. An accepted request moves to ConfirmPending and
// waits for Confirm or Cancel.
func (w *Workflow) Request(ctx context.Context, item Item) (Decision, error) {
	w.mu.Lock()
	if w.state != StateIdle {
		w.mu.Unlock()
		return Decision{}, ErrAttemptInFlight
	}
	w.mu.Unlock()

	principal, _ := w.session.Current()
	epoch := w.session.Epoch()

	// Entitlement is only worth resolving for an authenticated
	// non-owner; the guard would deny before reaching it otherwise.
	entitlement := EntitlementNotOwned
	if principal.Authenticated() && principal.ID != item.DeveloperID {
		entitlement = w.resolveEntitlement(ctx, principal, item)
	}

	decision := EvaluatePurchase(principal, item, entitlement)
	if !decision.Allowed {
		w.logger.Info("Purchase request denied",
			zap.String("model_id", item.ID.String()),
			zap.String("reason", string(decision.Reason)))
		return decision, nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateIdle {
		// Another request won the race while we were resolving
		// entitlement; this one is rejected, not queued.
		return Decision{}, ErrAttemptInFlight
	}
	w.state = StateConfirmPending
	w.current = &attempt{principal: principal, item: item, epoch: epoch}

	w.logger.Info("Purchase awaiting confirmation",
		zap.String("model_id", item.ID.String()),
		zap.String("buyer_id", principal.ID.String()))
	return decision, nil
}

// Cancel abandons a pending confirmation. It is synchronous and
// unconditional in ConfirmPending; once Submitting has started the
// write is left to complete or fail on its own.
func (w *Workflow) Cancel() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateConfirmPending {
		return ErrInvalidState
	}
	w.state = StateIdle
	w.current = nil
	return nil
}

// Confirm submits the pending purchase to the ledger. A fresh bearer
// token is fetched for every submission. The returned result is also
// retained until Acknowledge resets the workflow.
func (w *Workflow) Confirm(ctx context.Context) (*Result, error) {
	w.mu.Lock()
	if w.state != StateConfirmPending {
		w.mu.Unlock()
		return nil, ErrInvalidState
	}
	att := w.current
	w.state = StateSubmitting
	w.mu.Unlock()

	var receipt *Receipt
	token, err := w.session.Token(ctx)
	if err == nil {
		receipt, err = w.ledger.Append(ctx, token, Submission{
			ModelID:        att.item.ID,
			ModelName:      att.item.Name,
			BuyerID:        att.principal.ID,
			BuyerEmail:     att.principal.Email,
			DeveloperID:    att.item.DeveloperID,
			DeveloperEmail: att.item.DeveloperEmail,
		})
	}

	// The session may have changed while the write was in flight. The
	// write itself is not cancelled, but its outcome must not touch
	// the new session's entitlements.
	stale := w.session.Epoch() != att.epoch

	result := &Result{Item: att.item, Stale: stale}
	switch {
	case err == nil:
		result.Outcome = OutcomeSuccess
		result.Receipt = receipt
		if !stale {
			w.entitlements.Grant(att.item.ID)
		}
		w.logger.Info("Purchase recorded",
			zap.String("model_id", att.item.ID.String()),
			zap.String("buyer_id", att.principal.ID.String()),
			zap.Bool("stale", stale))
	case errors.Is(err, ErrLedgerConflict):
		// The ledger already holds a record this session's cache
		// missed. From the buyer's perspective the item is owned, so
		// reconcile the cache instead of presenting a generic failure.
		result.Outcome = OutcomeFailure
		result.Err = err
		if !stale {
			w.entitlements.Grant(att.item.ID)
		}
		w.logger.Warn("Purchase conflicted with existing record",
			zap.String("model_id", att.item.ID.String()))
	default:
		result.Outcome = OutcomeFailure
		result.Err = err
		w.logger.Warn("Purchase submission failed",
			zap.String("model_id", att.item.ID.String()),
			zap.Error(err))
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = StateSettled
	w.settled = result
	return result, nil
}

// Settled returns the retained result of the last attempt, or nil.
func (w *Workflow) Settled() *Result {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.settled
}

// Acknowledge dismisses a settled attempt and returns the workflow to
// Idle. A new Request then re-enters validation from scratch.
func (w *Workflow) Acknowledge() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateSettled {
		return ErrInvalidState
	}
	w.state = StateIdle
	w.current = nil
	w.settled = nil
	return nil
}

// History fetches the current principal's purchase history, most
// recent first. A fresh call re-fetches; nothing is cached.
func (w *Workflow) History(ctx context.Context) ([]Receipt, error) {
	principal, ok := w.session.Current()
	if !ok {
		return nil, ErrNotAuthenticated
	}
	token, err := w.session.Token(ctx)
	if err != nil {
		return nil, err
	}
	return w.ledger.History(ctx, token, principal.ID)
}

// resolveEntitlement answers owned / not owned / unknown for the
// item, consulting the cache first and the ledger on a miss.
func (w *Workflow) resolveEntitlement(ctx context.Context, principal Principal, item Item) Entitlement {
	token, err := w.session.Token(ctx)
	if err != nil {
		// Cached positives still count; without a token the ledger
		// cannot be asked, so a miss is unknown, not "not owned".
		if w.entitlements.Contains(item.ID) {
			return EntitlementOwned
		}
		return EntitlementUnknown
	}
	return lookupEntitlement(ctx, w.ledger, w.entitlements, token, principal.ID, item.ID)
}
