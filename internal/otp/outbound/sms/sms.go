package sms

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	gateway "github.com/shandysiswandi/otpgate/internal/pkg/sms"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

type SMS struct {
	sender   gateway.Sender
	clock    clock.Clocker
	ins      instrument.Instrumentation
	failures metric.Int64Counter
}

func NewSMS(sender gateway.Sender, clk clock.Clocker, ins instrument.Instrumentation) (*SMS, error) {
	failures, err := ins.Meter("otp.outbound.sms").Int64Counter(
		"sms.delivery.failures",
		metric.WithDescription("SMS deliveries that did not reach the provider or were rejected"),
	)
	if err != nil {
		return nil, err
	}

	return &SMS{sender: sender, clock: clk, ins: ins, failures: failures}, nil
}

// CorrelationID identifies one delivery in provider and application logs.
func CorrelationID(o entity.OTP, now int64) string {
	return fmt.Sprintf("%s_%s_%d", o.EntityType, o.EntityID, now)
}

// SendOTP delivers the code with its purpose template. Failures are logged and
// counted here; callers decide whether to surface them.
func (s *SMS) SendOTP(ctx context.Context, o entity.OTP) error {
	ctx, span := s.ins.Tracer("otp.outbound.sms").Start(ctx, "SendOTP")
	defer span.End()

	cID := CorrelationID(o, s.clock.Now().UnixMilli())

	res, err := s.sender.Send(ctx, gateway.Message{
		To:            o.PhoneNumber,
		Body:          FormatMessage(o.Code, o.Purpose),
		CorrelationID: cID,
	})
	if err != nil {
		kind := gateway.KindOf(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.failures.Add(ctx, 1, metric.WithAttributes(
			attribute.String("kind", kind.String()),
			attribute.String("purpose", o.Purpose.String()),
		))
		slog.ErrorContext(ctx, "failed to deliver otp sms",
			"recipient", gateway.MaskRecipient(o.PhoneNumber),
			"purpose", o.Purpose,
			"correlation_id", cID,
			"kind", kind.String(),
			"error", err,
		)
		return err
	}

	slog.InfoContext(ctx, "otp sms delivered",
		"recipient", gateway.MaskRecipient(o.PhoneNumber),
		"purpose", o.Purpose,
		"correlation_id", cID,
		"message_id", res.MessageID,
	)
	return nil
}
