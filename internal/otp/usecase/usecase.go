package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/shandysiswandi/otpgate/internal/pkg/config"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/goroutine"
	"github.com/shandysiswandi/otpgate/internal/pkg/idempotency"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/otp"
	"github.com/shandysiswandi/otpgate/internal/pkg/uid"
	"github.com/shandysiswandi/otpgate/internal/pkg/validator"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

type OTPIssuedEvent struct {
	OTPID      string
	EntityType string
	EntityID   string
	Purpose    string
	ExpiresAt  time.Time
	IssuedAt   time.Time
}

type OTPVerifiedEvent struct {
	OTPID      string
	EntityType string
	EntityID   string
	Purpose    string
	VerifiedAt time.Time
}

type OTPExhaustedEvent struct {
	OTPID       string
	EntityType  string
	EntityID    string
	Purpose     string
	Attempts    int32
	ExhaustedAt time.Time
}

type repoMessaging interface {
	PublishOTPIssued(ctx context.Context, msg OTPIssuedEvent) error
	PublishOTPVerified(ctx context.Context, msg OTPVerifiedEvent) error
	PublishOTPExhausted(ctx context.Context, msg OTPExhaustedEvent) error
}

type repoSMS interface {
	SendOTP(ctx context.Context, o entity.OTP) error
}

type repoDB interface {
	Ping(ctx context.Context) error

	GetActiveOTP(ctx context.Context, key entity.Key, now time.Time) (*entity.OTP, error)

	CreateOTP(ctx context.Context, in entity.OTP) (int64, error)

	IncrementOTPAttempts(ctx context.Context, id string, now time.Time) (*entity.OTP, error)
	MarkOTPExhausted(ctx context.Context, id string, now time.Time) error
	MarkOTPVerified(ctx context.Context, id string, now time.Time) (*entity.OTP, error)
}

type Usecase struct {
	repoDB        repoDB
	repoMessaging repoMessaging
	repoSMS       repoSMS
	idemp         idempotency.Idempotency
	validator     validator.Validator
	cfg           config.Config
	uuid          uid.StringID
	code          otp.Generator
	clock         clock.Clocker
	ins           instrument.Instrumentation
	goroutine     *goroutine.Manager

	issued   metric.Int64Counter
	verified metric.Int64Counter
}

type Dependency struct {
	RepoDB        repoDB
	RepoMessaging repoMessaging
	RepoSMS       repoSMS
	Idempotency   idempotency.Idempotency
	Validator     validator.Validator
	Config        config.Config
	UUID          uid.StringID
	Code          otp.Generator
	Clock         clock.Clocker
	Instrument    instrument.Instrumentation
	Goroutine     *goroutine.Manager
}

func New(dep Dependency) *Usecase {
	meter := dep.Instrument.Meter("otp.usecase")

	return &Usecase{
		repoDB:        dep.RepoDB,
		repoMessaging: dep.RepoMessaging,
		repoSMS:       dep.RepoSMS,
		idemp:         dep.Idempotency,
		validator:     dep.Validator,
		cfg:           dep.Config,
		uuid:          dep.UUID,
		code:          dep.Code,
		clock:         dep.Clock,
		ins:           dep.Instrument,
		goroutine:     dep.Goroutine,
		issued:        counter(meter, "otp.issued", "OTP records created"),
		verified:      counter(meter, "otp.verify", "OTP verification outcomes by status"),
	}
}

func counter(meter metric.Meter, name, desc string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(desc))
	if err != nil {
		slog.Warn("failed to create counter, using noop", "name", name, "error", err)
		return metricnoop.Int64Counter{}
	}
	return c
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("otp.usecase").Start(ctx, name)
}

func errNotFound() error {
	return goerror.NewBusinessWrap(entity.ErrOTPNotFound, "Invalid or expired OTP", goerror.CodeNotFound)
}

func errExhausted() error {
	return goerror.WithReason(
		goerror.NewBusinessWrap(entity.ErrOTPExhausted, "Maximum verification attempts exceeded", goerror.CodeTooManyRequest),
		"OTP_EXHAUSTED",
	)
}

func errInvalidCode() error {
	return goerror.NewBusinessWrap(entity.ErrOTPInvalidCode, "Invalid OTP code", goerror.CodeUnauthorized)
}
