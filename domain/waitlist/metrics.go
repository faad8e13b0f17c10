package waitlist

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Submission outcomes as recorded in waitlist_submissions_total.
const (
	OutcomeSuccess     = "success"
	OutcomeDemo        = "demo"
	OutcomeRepeat      = "repeat"
	OutcomeDuplicate   = "duplicate"
	OutcomeBackend     = "backend_error"
	OutcomeTransport   = "transport_error"
	OutcomeUnavailable = "unavailable"
	OutcomeInFlight    = "in_flight"
	OutcomeInvalid     = "invalid"
)

type SubmissionRecorder interface {
	RecordSubmission(outcome string)
}

type noopRecorder struct{}

func (noopRecorder) RecordSubmission(string) {}

type prometheusRecorder struct {
	submissions *prometheus.CounterVec
}

// NewPrometheusRecorder registers the submission counter on reg. A nil
// registerer (metrics disabled) yields a recorder that drops everything.
func NewPrometheusRecorder(reg prometheus.Registerer) SubmissionRecorder {
	if reg == nil {
		return noopRecorder{}
	}

	counter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waitlist_submissions_total",
			Help: "Total number of waitlist submissions by outcome.",
		},
		[]string{"outcome"},
	)

	if err := reg.Register(counter); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return noopRecorder{}
		}
		counter = already.ExistingCollector.(*prometheus.CounterVec)
	}

	return &prometheusRecorder{submissions: counter}
}

func (r *prometheusRecorder) RecordSubmission(outcome string) {
	r.submissions.WithLabelValues(outcome).Inc()
}

func outcomeFor(state State, demo bool) string {
	switch s := state.(type) {
	case Success:
		if demo {
			return OutcomeDemo
		}
		return OutcomeSuccess
	case Failed:
		switch s.Reason {
		case FailureDuplicate:
			return OutcomeDuplicate
		case FailureTransport:
			return OutcomeTransport
		case FailureUnavailable:
			return OutcomeUnavailable
		default:
			return OutcomeBackend
		}
	default:
		return OutcomeInvalid
	}
}
