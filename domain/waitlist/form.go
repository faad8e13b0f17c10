package waitlist

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/akeren/gatherly-web/internal/backend"
	"github.com/akeren/gatherly-web/internal/log"
	apperrors "github.com/akeren/gatherly-web/pkg/errors"
)

// DefaultDemoDelay stands in for backend latency when no backend is configured.
const DefaultDemoDelay = time.Second

// ErrSubmissionInFlight is returned when Submit is called while the form is loading.
var ErrSubmissionInFlight = errors.New("a submission is already in progress for this form")

type FormOptions struct {
	// DemoMode reports success after DemoDelay when the binding is unavailable.
	DemoMode  bool
	DemoDelay time.Duration
	Logger    *log.Logger
}

// Form is a single waitlist form instance. At most one submission is in
// flight at a time and Success is terminal.
type Form struct {
	id      string
	binding *backend.Binding
	opts    FormOptions

	mu    sync.Mutex
	name  string
	email string
	state State
}

func NewForm(id string, binding *backend.Binding, opts FormOptions) *Form {
	if binding == nil {
		binding = backend.Unavailable("")
	}

	if opts.DemoDelay < 0 {
		opts.DemoDelay = 0
	}

	return &Form{
		id:      id,
		binding: binding,
		opts:    opts,
		state:   Idle{},
	}
}

func (f *Form) ID() string {
	return f.id
}

func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Fields returns the current name and email values.
func (f *Form) Fields() (name, email string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.name, f.email
}

// SetFields updates the inputs. It has no effect while a submission is in
// flight or once the form succeeded.
func (f *Form) SetFields(name, email string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setFieldsLocked(name, email)
}

func (f *Form) setFieldsLocked(name, email string) {
	switch f.state.(type) {
	case Loading, Success:
		return
	}

	f.name = name
	f.email = email
}

// Submit runs one submission with the current field values and returns the
// resulting state. Validation failures and ErrSubmissionInFlight leave the
// state untouched. Backend failures are reported through a Failed state,
// never through the returned error.
func (f *Form) Submit(ctx context.Context) (State, error) {
	f.mu.Lock()
	return f.submitLocked(ctx)
}

// SubmitFields applies name and email and submits them in one step, so a
// concurrent request can neither replace the values of an in-flight
// submission nor have its own values sent by another request.
func (f *Form) SubmitFields(ctx context.Context, name, email string) (State, error) {
	f.mu.Lock()
	f.setFieldsLocked(name, email)
	return f.submitLocked(ctx)
}

// submitLocked is entered with f.mu held and releases it.
func (f *Form) submitLocked(ctx context.Context) (State, error) {
	switch f.state.(type) {
	case Loading:
		f.mu.Unlock()
		return Loading{}, ErrSubmissionInFlight
	case Success:
		f.mu.Unlock()
		return Success{}, nil
	}

	entry := backend.Entry{
		Name:  strings.TrimSpace(f.name),
		Email: strings.TrimSpace(f.email),
	}

	if err := validateEntry(entry); err != nil {
		current := f.state
		f.mu.Unlock()
		return current, err
	}

	f.state = Loading{}
	f.mu.Unlock()

	// The request runs to completion even if the caller goes away.
	next := f.dispatch(context.WithoutCancel(ctx), entry)

	f.mu.Lock()
	f.state = next
	if _, ok := next.(Success); ok {
		f.name = ""
		f.email = ""
	}
	f.mu.Unlock()

	return next, nil
}

func (f *Form) dispatch(ctx context.Context, entry backend.Entry) (next State) {
	logger := log.GetLoggerInstanceFromContext(ctx, f.opts.Logger).With("form_id", f.id)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Waitlist submission panicked", "panic", fmt.Sprint(r))
			next = Failed{Reason: FailureTransport, Message: GenericFailureMessage}
		}
	}()

	if !f.binding.Configured {
		if !f.opts.DemoMode {
			logger.Error("Waitlist backend is not configured and demo mode is disabled")
			return Failed{Reason: FailureUnavailable, Message: UnavailableMessage}
		}

		logger.Info("Waitlist backend not configured; simulating submission", "delay", f.opts.DemoDelay)
		time.Sleep(f.opts.DemoDelay)
		return Success{}
	}

	err := f.binding.Client.InsertWaitlistEntry(ctx, entry)
	if err != nil {
		logger.Error("Waitlist insert failed", "driver", f.binding.Driver, "error", err)
	}

	return stateForResult(err)
}

func stateForResult(err error) State {
	if err == nil {
		return Success{}
	}

	if backend.IsDuplicate(err) {
		return Failed{Reason: FailureDuplicate, Message: DuplicateEmailMessage}
	}

	if backend.IsTransport(err) {
		return Failed{Reason: FailureTransport, Message: GenericFailureMessage}
	}

	var backendErr *backend.Error
	if errors.As(err, &backendErr) {
		if msg := strings.TrimSpace(backendErr.Message); msg != "" {
			return Failed{Reason: FailureBackend, Message: msg}
		}
		return Failed{Reason: FailureBackend, Message: GenericFailureMessage}
	}

	return Failed{Reason: FailureTransport, Message: GenericFailureMessage}
}

func validateEntry(entry backend.Entry) error {
	if entry.Name == "" || entry.Email == "" {
		return apperrors.NewInvalidRequestError("name and email are required", nil)
	}

	addr, err := mail.ParseAddress(entry.Email)
	if err != nil {
		return apperrors.NewInvalidRequestError("invalid email format", err)
	}

	if addr.Address != entry.Email {
		return apperrors.NewInvalidRequestError("invalid email format", nil)
	}

	return nil
}
