package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/idempotency"
	"github.com/shandysiswandi/otpgate/internal/pkg/sms"
	"github.com/shandysiswandi/otpgate/internal/pkg/uid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultBrandName = "Glamax"
	defaultAppName   = "Glamex"
)

type NotifyInput struct {
	IdempotencyKey       string `validate:"omitempty,max=128"`
	GiftID               string `validate:"required,uuid"`
	RecipientPhoneCode   string `validate:"required,digits,min=1,max=4"`
	RecipientPhoneNumber string `validate:"required,digits,min=6,max=15"`
	RecipientFirstName   string `validate:"required,min=1,max=50"`
	RecipientLastName    string `validate:"required,min=1,max=50"`
	SenderFirstName      string `validate:"required,min=1,max=50"`
	SenderLastName       string `validate:"required,min=1,max=50"`
	ServiceProviderName  string `validate:"required,min=1,max=200"`
	ServiceName          string `validate:"required,min=1,max=200"`
	Message              string `validate:"omitempty,max=1000"`
	DeeplinkURL          string `validate:"omitempty,url"`
}

type NotifyOutput struct {
	GiftID               string
	RecipientPhoneCode   string
	RecipientPhoneNumber string
	MessageID            string
	Status               string
	SentAt               time.Time
}

// Notify sends the gift SMS. Unlike OTP issue, delivery is the whole
// operation here, so a gateway failure is returned to the caller.
func (s *Usecase) Notify(ctx context.Context, in NotifyInput) (*NotifyOutput, error) {
	ctx, span := s.startSpan(ctx, "Notify")
	defer span.End()

	in = trimInput(in)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if in.IdempotencyKey == "" {
		return s.notify(ctx, in)
	}

	var out *NotifyOutput
	err := s.idemp.Exec(ctx, "gift:notify:"+in.IdempotencyKey, func(ctx context.Context) error {
		var err error
		out, err = s.notify(ctx, in)
		return err
	})

	var gerr *goerror.Error
	switch {
	case err == nil:
		return out, nil
	case errors.Is(err, idempotency.ErrAlreadyInProgress):
		return nil, goerror.NewBusinessWrap(err, "Request with this Idempotency-Key is still in progress", goerror.CodeConflict)
	case errors.Is(err, idempotency.ErrAlreadyCompleted):
		return nil, goerror.NewBusinessWrap(err, "Request with this Idempotency-Key was already processed", goerror.CodeConflict)
	case errors.As(err, &gerr):
		return nil, err
	default:
		slog.ErrorContext(ctx, "failed to run idempotent gift notify", "idempotency_key", in.IdempotencyKey, "error", err)
		return nil, goerror.NewServer(err)
	}
}

func (s *Usecase) notify(ctx context.Context, in NotifyInput) (*NotifyOutput, error) {
	now := s.clock.Now()
	phone := in.RecipientPhoneCode + in.RecipientPhoneNumber
	cID := fmt.Sprintf("gift_%s_%d", in.GiftID, now.UnixMilli())

	res, err := s.sender.Send(context.WithoutCancel(ctx), sms.Message{
		To:            phone,
		Body:          s.FormatMessage(in),
		CorrelationID: cID,
	})
	if err != nil {
		kind := sms.KindOf(err)
		span := trace.SpanFromContext(ctx)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.failures.Add(ctx, 1, metric.WithAttributes(
			attribute.String("kind", kind.String()),
			attribute.String("purpose", "gift"),
		))
		slog.ErrorContext(ctx, "failed to deliver gift sms",
			"gift_id", in.GiftID,
			"recipient", sms.MaskRecipient(phone),
			"correlation_id", cID,
			"kind", kind.String(),
			"error", err,
		)
		return nil, goerror.NewBusinessWrap(err, "Failed to send gift notification", goerror.CodeBadGateway)
	}

	slog.InfoContext(ctx, "gift sms delivered",
		"gift_id", in.GiftID,
		"recipient", sms.MaskRecipient(phone),
		"correlation_id", cID,
		"message_id", res.MessageID,
	)

	return &NotifyOutput{
		GiftID:               in.GiftID,
		RecipientPhoneCode:   in.RecipientPhoneCode,
		RecipientPhoneNumber: in.RecipientPhoneNumber,
		MessageID:            res.MessageID,
		Status:               "sent",
		SentAt:               now,
	}, nil
}

// FormatMessage renders the gift SMS body. The optional personal message and
// deeplink are left out when empty.
func (s *Usecase) FormatMessage(in NotifyInput) string {
	brand := lo.CoalesceOrEmpty(s.cfg.GetString("modules.gift.brand_name"), defaultBrandName)
	app := lo.CoalesceOrEmpty(s.cfg.GetString("modules.gift.app_name"), defaultAppName)

	var b strings.Builder
	fmt.Fprintf(&b, "Gift received from %s\n\n", brand)
	fmt.Fprintf(&b, "Service Provider: %s\n", in.ServiceProviderName)
	fmt.Fprintf(&b, "Service: %s\n", in.ServiceName)
	fmt.Fprintf(&b, "Sender: %s %s\n", in.SenderFirstName, in.SenderLastName)
	if in.Message != "" {
		fmt.Fprintf(&b, "\nMessage for you:\n%s\n", in.Message)
	}
	fmt.Fprintf(&b, "\nDownload the %s app", app)
	if in.DeeplinkURL != "" {
		fmt.Fprintf(&b, "\n%s", in.DeeplinkURL)
	}

	return b.String()
}

func trimInput(in NotifyInput) NotifyInput {
	in.IdempotencyKey = strings.TrimSpace(in.IdempotencyKey)
	in.GiftID = uid.CanonicalUUID(in.GiftID)
	in.RecipientPhoneCode = strings.TrimPrefix(strings.TrimSpace(in.RecipientPhoneCode), "+")
	in.RecipientPhoneNumber = strings.TrimSpace(in.RecipientPhoneNumber)
	in.RecipientFirstName = strings.TrimSpace(in.RecipientFirstName)
	in.RecipientLastName = strings.TrimSpace(in.RecipientLastName)
	in.SenderFirstName = strings.TrimSpace(in.SenderFirstName)
	in.SenderLastName = strings.TrimSpace(in.SenderLastName)
	in.ServiceProviderName = strings.TrimSpace(in.ServiceProviderName)
	in.ServiceName = strings.TrimSpace(in.ServiceName)
	in.Message = strings.TrimSpace(in.Message)
	in.DeeplinkURL = strings.TrimSpace(in.DeeplinkURL)
	return in
}
