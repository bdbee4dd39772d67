package mq

import (
	"context"
	"encoding/json"

	"github.com/shandysiswandi/otpgate/internal/otp/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/messaging"
	"github.com/shandysiswandi/otpgate/internal/pkg/uid"
	"github.com/shandysiswandi/otpgate/internal/shared/event"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client messaging.Publisher
	eid    uid.NumberID
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Publisher, eid uid.NumberID, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, eid: eid, ins: ins}
}

func (m *Messaging) PublishOTPIssued(ctx context.Context, msg usecase.OTPIssuedEvent) error {
	ctx, span := m.ins.Tracer("otp.outbound.mq").Start(ctx, "PublishOTPIssued")
	defer span.End()

	return m.publish(ctx, span, event.OTPIssuedDestination, msg.OTPID, event.OTPIssuedMessage{
		EventID:    m.eid.Generate(),
		OTPID:      msg.OTPID,
		EntityType: msg.EntityType,
		EntityID:   msg.EntityID,
		Purpose:    msg.Purpose,
		ExpiresAt:  msg.ExpiresAt,
		IssuedAt:   msg.IssuedAt,
	})
}

func (m *Messaging) PublishOTPVerified(ctx context.Context, msg usecase.OTPVerifiedEvent) error {
	ctx, span := m.ins.Tracer("otp.outbound.mq").Start(ctx, "PublishOTPVerified")
	defer span.End()

	return m.publish(ctx, span, event.OTPVerifiedDestination, msg.OTPID, event.OTPVerifiedMessage{
		EventID:    m.eid.Generate(),
		OTPID:      msg.OTPID,
		EntityType: msg.EntityType,
		EntityID:   msg.EntityID,
		Purpose:    msg.Purpose,
		VerifiedAt: msg.VerifiedAt,
	})
}

func (m *Messaging) PublishOTPExhausted(ctx context.Context, msg usecase.OTPExhaustedEvent) error {
	ctx, span := m.ins.Tracer("otp.outbound.mq").Start(ctx, "PublishOTPExhausted")
	defer span.End()

	return m.publish(ctx, span, event.OTPExhaustedDestination, msg.OTPID, event.OTPExhaustedMessage{
		EventID:     m.eid.Generate(),
		OTPID:       msg.OTPID,
		EntityType:  msg.EntityType,
		EntityID:    msg.EntityID,
		Purpose:     msg.Purpose,
		Attempts:    msg.Attempts,
		ExhaustedAt: msg.ExhaustedAt,
	})
}

// publish keys every message by the OTP id so one record's events stay ordered.
func (m *Messaging) publish(ctx context.Context, span trace.Span, dest, key string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	cID := instrument.GetCorrelationID(ctx)
	if _, err := m.client.Publish(ctx, dest, messaging.Message{
		Body:    body,
		Key:     []byte(key),
		Headers: map[string]string{keyOfCorrelationID: cID},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
