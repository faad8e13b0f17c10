package waitlist

import (
	"context"
	"errors"
	"time"

	"github.com/akeren/gatherly-web/internal/backend"
	"github.com/akeren/gatherly-web/internal/log"
	apperrors "github.com/akeren/gatherly-web/pkg/errors"
)

type WaitlistService interface {
	// NewFormID returns the id to render into a fresh form. The form
	// instance itself is created by the first submission carrying it.
	NewFormID() string

	// Submit applies the request to its form instance and submits it. On a
	// failed submission the response is returned alongside the error so the
	// caller can re-render the form.
	Submit(ctx context.Context, req *SubmitWaitlistRequest) (*SubmissionResponse, error)

	// Status describes the backend binding the forms submit to.
	Status() FormStatusResponse
}

type ServiceConfig struct {
	DemoMode  bool
	DemoDelay time.Duration
	FormTTL   time.Duration
}

type waitlistService struct {
	logger   *log.Logger
	binding  *backend.Binding
	config   ServiceConfig
	registry *FormRegistry
	recorder SubmissionRecorder
}

func NewWaitlistService(logger *log.Logger, binding *backend.Binding, cfg ServiceConfig, recorder SubmissionRecorder) WaitlistService {
	if binding == nil {
		binding = backend.Unavailable("")
	}

	if recorder == nil {
		recorder = noopRecorder{}
	}

	s := &waitlistService{
		logger:   logger,
		binding:  binding,
		config:   cfg,
		recorder: recorder,
	}

	s.registry = NewFormRegistry(cfg.FormTTL, func(id string) *Form {
		return NewForm(id, binding, FormOptions{
			DemoMode:  cfg.DemoMode,
			DemoDelay: cfg.DemoDelay,
			Logger:    logger,
		})
	})

	return s
}

func (s *waitlistService) NewFormID() string {
	return s.registry.NewID()
}

func (s *waitlistService) Status() FormStatusResponse {
	return FormStatusResponse{
		Configured: s.binding.Configured,
		DemoMode:   s.config.DemoMode,
		Driver:     s.binding.Driver,
	}
}

func (s *waitlistService) Submit(ctx context.Context, req *SubmitWaitlistRequest) (*SubmissionResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if req == nil {
		logger.Error("Submit received empty request")
		s.recorder.RecordSubmission(OutcomeInvalid)
		return nil, apperrors.NewInvalidRequestError("request cannot be nil", nil)
	}

	form := s.registry.Get(req.FormID)

	if _, done := form.State().(Success); done {
		s.recorder.RecordSubmission(OutcomeRepeat)
		response := ToSubmissionResponse(form, Success{})
		return &response, nil
	}

	state, err := form.SubmitFields(ctx, req.Name, req.Email)
	if err != nil {
		response := ToSubmissionResponse(form, state)

		if errors.Is(err, ErrSubmissionInFlight) {
			logger.Warn("Waitlist submission rejected; another is in flight", "form_id", form.ID())
			s.recorder.RecordSubmission(OutcomeInFlight)
			return &response, apperrors.NewConflictError("A submission for this form is already in progress", err)
		}

		logger.Warn("Waitlist submission failed validation", "form_id", form.ID(), "error", err)
		s.recorder.RecordSubmission(OutcomeInvalid)
		return &response, err
	}

	s.recorder.RecordSubmission(outcomeFor(state, !s.binding.Configured))
	response := ToSubmissionResponse(form, state)

	failed, ok := state.(Failed)
	if !ok {
		logger.Info("Waitlist submission succeeded", "form_id", form.ID(), "demo", !s.binding.Configured)
		return &response, nil
	}

	return &response, failureError(failed)
}

func failureError(failed Failed) error {
	switch failed.Reason {
	case FailureDuplicate:
		return apperrors.NewConflictError(failed.Message, nil)
	case FailureUnavailable:
		return apperrors.NewUnavailableError(failed.Message, nil)
	default:
		return apperrors.NewUpstreamError(failed.Message, nil)
	}
}
