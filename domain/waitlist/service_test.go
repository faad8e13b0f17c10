package waitlist

import (
	"context"
	"errors"
	"testing"

	"github.com/akeren/gatherly-web/internal/backend"
	"github.com/akeren/gatherly-web/internal/log"
	apperrors "github.com/akeren/gatherly-web/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type recordedOutcomes []string

func (r *recordedOutcomes) RecordSubmission(outcome string) {
	*r = append(*r, outcome)
}

func newMockedService(t *testing.T, cfg ServiceConfig) (WaitlistService, *backend.MockInserter, *recordedOutcomes) {
	t.Helper()

	ctrl := gomock.NewController(t)
	mock := backend.NewMockInserter(ctrl)
	recorder := &recordedOutcomes{}

	service := NewWaitlistService(
		log.NewLoggerWithJSONOutput(),
		backend.NewBindingWithInserter("test", mock),
		cfg,
		recorder,
	)

	return service, mock, recorder
}

func TestWaitlistService_Submit(t *testing.T) {
	t.Run("successful submission", func(t *testing.T) {
		service, mock, recorder := newMockedService(t, ServiceConfig{})
		formID := service.NewFormID()

		mock.EXPECT().
			InsertWaitlistEntry(gomock.Any(), backend.Entry{Name: "Ada", Email: "ada@example.com"}).
			Return(nil)

		response, err := service.Submit(context.Background(), &SubmitWaitlistRequest{
			Name:   "Ada",
			Email:  "ada@example.com",
			FormID: formID,
		})

		require.NoError(t, err)
		assert.Equal(t, formID, response.FormID)
		assert.Equal(t, StateNameSuccess, response.State)
		assert.Equal(t, ConfirmationMessage, response.Message)
		assert.Empty(t, response.Name)
		assert.Empty(t, response.Email)
		assert.Equal(t, recordedOutcomes{OutcomeSuccess}, *recorder)
	})

	t.Run("repeat submission of a succeeded form", func(t *testing.T) {
		service, mock, recorder := newMockedService(t, ServiceConfig{})
		formID := service.NewFormID()
		req := &SubmitWaitlistRequest{Name: "Ada", Email: "ada@example.com", FormID: formID}

		mock.EXPECT().InsertWaitlistEntry(gomock.Any(), gomock.Any()).Return(nil).Times(1)

		_, err := service.Submit(context.Background(), req)
		require.NoError(t, err)

		response, err := service.Submit(context.Background(), req)

		require.NoError(t, err)
		assert.Equal(t, StateNameSuccess, response.State)
		assert.Equal(t, recordedOutcomes{OutcomeSuccess, OutcomeRepeat}, *recorder)
	})

	t.Run("duplicate email", func(t *testing.T) {
		service, mock, recorder := newMockedService(t, ServiceConfig{})

		mock.EXPECT().
			InsertWaitlistEntry(gomock.Any(), gomock.Any()).
			Return(&backend.Error{StatusCode: 409, Code: backend.UniqueViolationCode})

		response, err := service.Submit(context.Background(), &SubmitWaitlistRequest{
			Name:  "Ada",
			Email: "ada@example.com",
		})

		require.Error(t, err)
		assert.Equal(t, apperrors.StatusConflict, apperrors.HTTPStatusCode(err))
		assert.Equal(t, DuplicateEmailMessage, apperrors.GetHumanReadableMessage(err))
		require.NotNil(t, response)
		assert.Equal(t, StateNameError, response.State)
		assert.Equal(t, "ada@example.com", response.Email)
		assert.Equal(t, recordedOutcomes{OutcomeDuplicate}, *recorder)
	})

	t.Run("backend failure surfaces backend message", func(t *testing.T) {
		service, mock, recorder := newMockedService(t, ServiceConfig{})

		mock.EXPECT().
			InsertWaitlistEntry(gomock.Any(), gomock.Any()).
			Return(&backend.Error{StatusCode: 400, Message: "new row violates row-level security policy"})

		response, err := service.Submit(context.Background(), &SubmitWaitlistRequest{
			Name:  "Ada",
			Email: "ada@example.com",
		})

		require.Error(t, err)
		assert.Equal(t, apperrors.StatusBadGateway, apperrors.HTTPStatusCode(err))
		assert.Equal(t, "new row violates row-level security policy", response.Message)
		assert.Equal(t, recordedOutcomes{OutcomeBackend}, *recorder)
	})

	t.Run("transport failure uses generic message", func(t *testing.T) {
		service, mock, recorder := newMockedService(t, ServiceConfig{})

		mock.EXPECT().
			InsertWaitlistEntry(gomock.Any(), gomock.Any()).
			Return(&backend.TransportError{Op: "insert", Err: errors.New("dial tcp: connection refused")})

		response, err := service.Submit(context.Background(), &SubmitWaitlistRequest{
			Name:  "Ada",
			Email: "ada@example.com",
		})

		require.Error(t, err)
		assert.Equal(t, GenericFailureMessage, response.Message)
		assert.Equal(t, recordedOutcomes{OutcomeTransport}, *recorder)
	})

	t.Run("invalid email never reaches the backend", func(t *testing.T) {
		service, _, recorder := newMockedService(t, ServiceConfig{})

		response, err := service.Submit(context.Background(), &SubmitWaitlistRequest{
			Name:  "Ada",
			Email: "nope",
		})

		require.Error(t, err)
		assert.Equal(t, apperrors.StatusBadRequest, apperrors.HTTPStatusCode(err))
		assert.Equal(t, StateNameIdle, response.State)
		assert.Equal(t, recordedOutcomes{OutcomeInvalid}, *recorder)
	})

	t.Run("nil request", func(t *testing.T) {
		service, _, _ := newMockedService(t, ServiceConfig{})

		response, err := service.Submit(context.Background(), nil)

		assert.Error(t, err)
		assert.Nil(t, response)
	})
}

func TestWaitlistService_InFlightSubmissionIsRejected(t *testing.T) {
	inserter := newBlockingInserter()
	recorder := &recordedOutcomes{}
	service := NewWaitlistService(nil, backend.NewBindingWithInserter("test", inserter), ServiceConfig{}, recorder)
	formID := service.NewFormID()
	req := &SubmitWaitlistRequest{Name: "Ada", Email: "ada@example.com", FormID: formID}

	done := make(chan error, 1)
	go func() {
		_, err := service.Submit(context.Background(), req)
		done <- err
	}()

	<-inserter.started

	response, err := service.Submit(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, apperrors.StatusConflict, apperrors.HTTPStatusCode(err))
	assert.Equal(t, StateNameLoading, response.State)

	close(inserter.release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, inserter.Calls())
}

func TestWaitlistService_RejectedSubmissionKeepsInFlightValues(t *testing.T) {
	inserter := newBlockingInserterReturning(&backend.Error{StatusCode: 409, Code: backend.UniqueViolationCode})
	service := NewWaitlistService(nil, backend.NewBindingWithInserter("test", inserter), ServiceConfig{}, nil)
	formID := service.NewFormID()

	type result struct {
		response *SubmissionResponse
		err      error
	}

	done := make(chan result, 1)
	go func() {
		response, err := service.Submit(context.Background(), &SubmitWaitlistRequest{Name: "Ada", Email: "ada@example.com", FormID: formID})
		done <- result{response, err}
	}()

	<-inserter.started

	response, err := service.Submit(context.Background(), &SubmitWaitlistRequest{Name: "Bob", Email: "bob@example.com", FormID: formID})
	require.Error(t, err)
	assert.Equal(t, apperrors.StatusConflict, apperrors.HTTPStatusCode(err))
	assert.Equal(t, "ada@example.com", response.Email)

	close(inserter.release)

	first := <-done
	require.Error(t, first.err)
	assert.Equal(t, apperrors.StatusConflict, apperrors.HTTPStatusCode(first.err))
	assert.Equal(t, StateNameError, first.response.State)
	assert.Equal(t, DuplicateEmailMessage, first.response.Message)
	assert.Equal(t, "Ada", first.response.Name)
	assert.Equal(t, "ada@example.com", first.response.Email)
	assert.Equal(t, []backend.Entry{{Name: "Ada", Email: "ada@example.com"}}, inserter.Entries())
}

func TestWaitlistService_NewFormIDDoesNotRegisterForms(t *testing.T) {
	service := NewWaitlistService(nil, nil, ServiceConfig{DemoMode: true}, nil)
	registry := service.(*waitlistService).registry

	for i := 0; i < 10; i++ {
		service.NewFormID()
	}
	assert.Equal(t, 0, registry.Len())

	_, err := service.Submit(context.Background(), &SubmitWaitlistRequest{Name: "Ada", Email: "ada@example.com", FormID: service.NewFormID()})
	require.NoError(t, err)
	assert.Equal(t, 1, registry.Len())
}

func TestWaitlistService_Unconfigured(t *testing.T) {
	t.Run("demo mode succeeds", func(t *testing.T) {
		recorder := &recordedOutcomes{}
		service := NewWaitlistService(nil, backend.Unavailable(backend.DriverREST), ServiceConfig{DemoMode: true}, recorder)

		response, err := service.Submit(context.Background(), &SubmitWaitlistRequest{Name: "Ada", Email: "ada@example.com"})

		require.NoError(t, err)
		assert.Equal(t, StateNameSuccess, response.State)
		assert.Equal(t, recordedOutcomes{OutcomeDemo}, *recorder)
	})

	t.Run("without demo mode", func(t *testing.T) {
		service := NewWaitlistService(nil, nil, ServiceConfig{}, nil)

		response, err := service.Submit(context.Background(), &SubmitWaitlistRequest{Name: "Ada", Email: "ada@example.com"})

		require.Error(t, err)
		assert.Equal(t, apperrors.StatusServiceUnavailable, apperrors.HTTPStatusCode(err))
		assert.Equal(t, UnavailableMessage, response.Message)
	})
}

func TestWaitlistService_Status(t *testing.T) {
	service := NewWaitlistService(nil, backend.Unavailable(backend.DriverDatabase), ServiceConfig{DemoMode: true}, nil)

	assert.Equal(t, FormStatusResponse{
		Configured: false,
		DemoMode:   true,
		Driver:     backend.DriverDatabase,
	}, service.Status())
}
