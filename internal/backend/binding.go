package backend

import (
	"context"
	"errors"

	"github.com/akeren/gatherly-web/pkg/circuitbreaker"
	"github.com/akeren/gatherly-web/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

//go:generate mockgen -source=binding.go -destination=mock_inserter.go -package=backend

// Entry is the row written for a waitlist signup.
type Entry struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Inserter interface {
	// InsertWaitlistEntry issues a single create-record call for entry.
	InsertWaitlistEntry(ctx context.Context, entry Entry) error
}

// Binding is the shared handle to the data service. Client is nil and
// Configured is false when the service is unavailable.
type Binding struct {
	Client     Inserter
	Configured bool
	Driver     string
}

type Option func(*bindingOptions)

type bindingOptions struct {
	breaker circuitbreaker.CircuitBreaker
}

// WithCircuitBreaker replaces the default breaker guarding the client.
func WithCircuitBreaker(cb circuitbreaker.CircuitBreaker) Option {
	return func(o *bindingOptions) {
		o.breaker = cb
	}
}

// Unavailable returns the binding used when nothing is configured.
func Unavailable(driver string) *Binding {
	return &Binding{Driver: driver}
}

// NewBinding builds the REST binding once from cfg.
func NewBinding(cfg Config, opts ...Option) *Binding {
	if !cfg.IsConfigured() {
		return Unavailable(DriverREST)
	}

	return NewBindingWithInserter(DriverREST, NewRESTClient(cfg), opts...)
}

// NewSQLBinding binds directly to a relational store. A nil db yields an
// unavailable binding.
func NewSQLBinding(db *gorm.DB, table string, opts ...Option) *Binding {
	if db == nil {
		return Unavailable(DriverDatabase)
	}

	return NewBindingWithInserter(DriverDatabase, NewSQLStore(db, table), opts...)
}

// NewBindingWithInserter guards an arbitrary Inserter with tracing and the
// circuit breaker.
func NewBindingWithInserter(driver string, inserter Inserter, opts ...Option) *Binding {
	if inserter == nil {
		return Unavailable(driver)
	}

	o := &bindingOptions{}
	for _, opt := range opts {
		opt(o)
	}

	if o.breaker == nil {
		o.breaker = circuitbreaker.NewCircuitBreaker(nil)
	}

	return &Binding{
		Client: &guardedInserter{
			driver:  driver,
			next:    inserter,
			breaker: o.breaker,
		},
		Configured: true,
		Driver:     driver,
	}
}

type guardedInserter struct {
	driver  string
	next    Inserter
	breaker circuitbreaker.CircuitBreaker
}

func (g *guardedInserter) InsertWaitlistEntry(ctx context.Context, entry Entry) error {
	ctx, span := tracing.Start(ctx, "backend.insert_waitlist_entry",
		attribute.String("backend.driver", g.driver),
	)
	defer span.End()

	var result error
	err := g.breaker.Call(func() error {
		result = g.next.InsertWaitlistEntry(ctx, entry)
		if countsAsFailure(result) {
			return result
		}
		return nil
	})

	if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		result = &TransportError{Op: "insert", Err: err}
	}

	tracing.RecordError(span, result)
	return result
}
