package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/shandysiswandi/otpgate/internal/pkg/config"
	"github.com/shandysiswandi/otpgate/internal/pkg/idempotency"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/sms"
	"github.com/shandysiswandi/otpgate/internal/pkg/validator"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

type sender interface {
	Send(ctx context.Context, msg sms.Message) (sms.Result, error)
}

type Usecase struct {
	sender    sender
	idemp     idempotency.Idempotency
	validator validator.Validator
	cfg       config.Config
	clock     clock.Clocker
	ins       instrument.Instrumentation

	failures metric.Int64Counter
}

type Dependency struct {
	Sender      sender
	Idempotency idempotency.Idempotency
	Validator   validator.Validator
	Config      config.Config
	Clock       clock.Clocker
	Instrument  instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	failures, err := dep.Instrument.Meter("gift.usecase").Int64Counter(
		"sms.delivery.failures",
		metric.WithDescription("SMS deliveries that did not reach the provider or were rejected"),
	)
	if err != nil {
		slog.Warn("failed to create counter, using noop", "name", "sms.delivery.failures", "error", err)
		failures = metricnoop.Int64Counter{}
	}

	return &Usecase{
		sender:    dep.Sender,
		idemp:     dep.Idempotency,
		validator: dep.Validator,
		cfg:       dep.Config,
		clock:     dep.Clock,
		ins:       dep.Instrument,
		failures:  failures,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("gift.usecase").Start(ctx, name)
}
