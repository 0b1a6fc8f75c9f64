package transfer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mybank/mybank/internal/ledger"
	"github.com/mybank/mybank/internal/money"
	"github.com/mybank/mybank/internal/session"
	"github.com/mybank/mybank/internal/view"
)

// State identifies where the pipeline is in the life of one transfer.
type State int

const (
	StateIdle State = iota
	StateDrafting
	StateValidating
	StateAwaitingConfirmation
	StateSubmitting
	StateReconciled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDrafting:
		return "drafting"
	case StateValidating:
		return "validating"
	case StateAwaitingConfirmation:
		return "awaiting_confirmation"
	case StateSubmitting:
		return "submitting"
	case StateReconciled:
		return "reconciled"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

var (
	// ErrNotLoggedIn indicates no authenticated identity is present.
	ErrNotLoggedIn = errors.New("no authenticated session")

	// ErrDraftOpen indicates a draft already exists; at most one transfer
	// draft is open per session at any time.
	ErrDraftOpen = errors.New("a transfer draft is already open")

	// ErrNoDraft indicates the requested operation needs an open draft.
	ErrNoDraft = errors.New("no transfer draft is open")

	// ErrSessionChanged indicates the session was cleared or replaced while a
	// submission was in flight; the stale response was discarded unapplied.
	ErrSessionChanged = errors.New("session changed during submission, response discarded")

	// ErrMissingBalance indicates a success payload without the updated
	// balance field. It is treated as a submission failure, never silently
	// accepted with an undefined balance.
	ErrMissingBalance = errors.New("success response missing updated balance")
)

// SubmissionError wraps a failed transfer submission. It is recoverable: the
// draft is preserved and the user may retry or cancel.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return "transfer submission failed: " + e.Err.Error()
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// Confirmation describes the pending transfer awaiting the user's yes/no
// decision. No network effect happens before Confirm is called.
type Confirmation struct {
	Amount       money.Amount
	ReceiverName string
}

// Renderer receives render-completion callbacks from the pipeline. The UI
// shell implements it; tests use a recording fake.
type Renderer interface {
	RenderDashboard(balance money.Amount, rows []view.Row)
	ShowValidationErrors(errs ValidationErrors)
	ShowNotice(message string)
}

// Pipeline drives one transfer from draft through validation, confirmation and
// submission to reconciliation. It owns consistency after a successful
// transfer: balance and transaction list are re-rendered unconditionally from
// the same session snapshot.
//
// The pipeline is cooperative and single-caller: confirmation is a suspension
// point (Submit returns, Confirm resumes), not a blocking dialog. It is not
// safe for concurrent use; all work runs on the UI shell's event loop.
type Pipeline struct {
	session  *session.Session
	ledger   ledger.Client
	renderer Renderer
	logger   *slog.Logger
	timeout  time.Duration

	state State
	draft *Draft
	epoch uint64
}

// Option customizes pipeline construction.
type Option func(*Pipeline)

// WithTimeout bounds each ledger call. The original behavior had no timeout at
// all; a hung request would pin the pipeline in Submitting forever.
func WithTimeout(d time.Duration) Option {
	return func(p *Pipeline) { p.timeout = d }
}

// NewPipeline builds a transfer pipeline bound to one session.
func NewPipeline(sess *session.Session, client ledger.Client, renderer Renderer, logger *slog.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		session:  sess,
		ledger:   client,
		renderer: renderer,
		logger:   logger,
		timeout:  15 * time.Second,
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// State reports the current pipeline state.
func (p *Pipeline) State() State {
	p.ensureFresh()
	return p.state
}

// CanOpen reports whether the open-transfer affordance is enabled. It is
// disabled while a draft is open or a submission is in flight.
func (p *Pipeline) CanOpen() bool {
	p.ensureFresh()
	return p.state == StateIdle || p.state == StateFailed
}

// Open creates a fresh draft and moves the pipeline to Drafting. Opening while
// a previous attempt sits in Failed replaces its draft.
func (p *Pipeline) Open() error {
	p.ensureFresh()
	if _, ok := p.session.Identity(); !ok {
		return ErrNotLoggedIn
	}
	if p.state != StateIdle && p.state != StateFailed {
		return ErrDraftOpen
	}
	p.epoch = p.session.Epoch()
	p.draft = newDraft()
	p.state = StateDrafting
	return nil
}

// Submit validates the edited fields against the current balance. On any rule
// violation the pipeline returns to Drafting with the full error set surfaced;
// this is not fatal and the draft stays open for correction. On success the
// pipeline suspends in AwaitingConfirmation and returns the prompt describing
// the amount and receiver.
func (p *Pipeline) Submit(fields DraftFields) (Confirmation, error) {
	p.ensureFresh()
	if p.draft == nil {
		return Confirmation{}, ErrNoDraft
	}

	p.state = StateValidating
	errs := Validate(fields, p.session.Balance())
	if len(errs) > 0 {
		p.state = StateDrafting
		p.draft.Fields = fields
		p.renderer.ShowValidationErrors(errs)
		return Confirmation{}, errs
	}

	p.draft.bind(fields)
	p.state = StateAwaitingConfirmation
	return Confirmation{Amount: p.draft.amount, ReceiverName: fields.ReceiverName}, nil
}

// Confirm resumes a suspended submission with the user's decision. Declining
// returns to Drafting with the draft preserved. Accepting submits the transfer
// to the ledger service in a single attempt and, on success, reconciles the
// session and re-renders the dashboard. Confirm may also be called from Failed
// to retry the preserved draft.
func (p *Pipeline) Confirm(ctx context.Context, accept bool) error {
	p.ensureFresh()
	if p.draft == nil {
		return ErrNoDraft
	}
	if p.state != StateAwaitingConfirmation && p.state != StateFailed {
		return fmt.Errorf("cannot confirm while %s", p.state)
	}

	if !accept {
		p.state = StateDrafting
		p.renderer.ShowNotice("Transfer canceled.")
		return nil
	}

	identity, ok := p.session.Identity()
	if !ok {
		p.reset()
		return ErrNotLoggedIn
	}

	p.state = StateSubmitting
	epoch := p.epoch
	req := p.draft.request(identity, time.Now())

	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	result, err := p.ledger.SubmitTransfer(callCtx, req)
	if err == nil && result.UpdatedBalance == nil {
		err = ErrMissingBalance
	}
	if err != nil {
		// Transport failures, non-success answers and a missing balance all
		// land here: no session mutation, draft kept for retry.
		p.state = StateFailed
		p.logger.Warn("transfer submission failed", "receiver_id", req.ReceiverID, "error", err)
		p.renderer.ShowNotice("Transfer failed. Your draft has been kept; you can retry or cancel.")
		return &SubmissionError{Err: err}
	}

	if p.session.Epoch() != epoch {
		p.logger.Warn("session changed during submission, discarding response", "client_tx_id", req.ClientTxID)
		p.reset()
		return ErrSessionChanged
	}

	p.session.SetBalance(*result.UpdatedBalance)
	p.draft = nil
	p.state = StateReconciled
	p.logger.Info("transfer reconciled", "receiver_id", req.ReceiverID, "amount", req.Amount.String(), "balance", result.UpdatedBalance.String())

	p.reconcile(ctx, identity)
	p.state = StateIdle
	return nil
}

// Cancel discards the draft and re-enables the transfer affordance. It makes
// no network call, never changes the balance and cannot fail. Canceling while
// a submission is in flight is a no-op; the pipeline settles on its own.
func (p *Pipeline) Cancel() {
	p.ensureFresh()
	if p.state == StateSubmitting {
		return
	}
	p.draft = nil
	p.state = StateIdle
}

// RefreshDashboard re-fetches the transaction list, stores it in the session
// and fires the dashboard render callback. On any fetch failure the fixed
// placeholder list is shown so the view is never left empty.
func (p *Pipeline) RefreshDashboard(ctx context.Context) error {
	identity, ok := p.session.Identity()
	if !ok {
		return ErrNotLoggedIn
	}
	p.reconcile(ctx, identity)
	return nil
}

func (p *Pipeline) reconcile(ctx context.Context, identity session.Identity) {
	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	records, err := p.ledger.FetchTransactions(callCtx, identity.UserID, identity.Email)
	if err != nil {
		p.logger.Warn("transaction fetch failed, using placeholder list", "user_id", identity.UserID, "error", err)
		records = ledger.Placeholder()
	}

	p.session.SetTransactions(records)
	rows := view.Present(p.session.Transactions(), identity)
	p.renderer.RenderDashboard(p.session.Balance(), rows)
}

// ensureFresh discards the draft when the session identity changed underneath
// the pipeline, e.g. a logout between Open and Submit.
func (p *Pipeline) ensureFresh() {
	if p.state == StateIdle {
		return
	}
	if p.session.Epoch() != p.epoch {
		p.reset()
	}
}

func (p *Pipeline) reset() {
	p.draft = nil
	p.state = StateIdle
}
