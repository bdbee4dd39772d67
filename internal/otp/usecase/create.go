package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/uid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type CreateInput struct {
	EntityType  entity.EntityType `validate:"required,oneof=user provider admin"`
	EntityID    string            `validate:"required,uuid"`
	PhoneNumber string            `validate:"required,digits,min=1,max=20"`
	Purpose     entity.Purpose    `validate:"required,oneof=registration login password_reset phone_verification"`
}

// Create issues a new code for the key, superseding any outstanding one, and
// hands it to the SMS gateway. Delivery failures never fail the call.
//
// The phone number is stored as digits; a leading + is dropped and added back
// by the gateway. The returned record carries the plain code; callers must not
// expose it.
func (s *Usecase) Create(ctx context.Context, in CreateInput) (*entity.OTP, error) {
	ctx, span := s.startSpan(ctx, "Create")
	defer span.End()

	in.EntityID = uid.CanonicalUUID(in.EntityID)
	in.PhoneNumber = strings.TrimPrefix(strings.TrimSpace(in.PhoneNumber), "+")

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	code, err := s.code.Generate()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate otp code", "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()
	rec := entity.OTP{
		ID:          s.uuid.Generate(),
		EntityType:  in.EntityType,
		EntityID:    in.EntityID,
		PhoneNumber: in.PhoneNumber,
		Purpose:     in.Purpose,
		Code:        code,
		ExpiresAt:   now.Add(entity.TTL),
		Attempts:    0,
		IsVerified:  false,
		Status:      entity.StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// A caller going away must not roll back the supersede.
	ctx = context.WithoutCancel(ctx)

	superseded, err := s.repoDB.CreateOTP(ctx, rec)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo create otp",
			"entity_type", in.EntityType, "entity_id", in.EntityID, "purpose", in.Purpose, "error", err)
		return nil, goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "otp issued",
		"otp_id", rec.ID,
		"entity_type", rec.EntityType,
		"entity_id", rec.EntityID,
		"purpose", rec.Purpose,
		"superseded", superseded,
	)
	s.issued.Add(ctx, 1, metric.WithAttributes(attribute.String("purpose", rec.Purpose.String())))

	if err := s.repoMessaging.PublishOTPIssued(ctx, OTPIssuedEvent{
		OTPID:      rec.ID,
		EntityType: rec.EntityType.String(),
		EntityID:   rec.EntityID,
		Purpose:    rec.Purpose.String(),
		ExpiresAt:  rec.ExpiresAt,
		IssuedAt:   rec.CreatedAt,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish otp issued", "otp_id", rec.ID, "error", err)
	}

	s.deliver(ctx, rec)

	return &rec, nil
}

// deliver sends after commit. The SMS adapter logs and counts failures.
func (s *Usecase) deliver(ctx context.Context, rec entity.OTP) {
	if !s.cfg.GetBool("modules.otp.delivery.async") || s.goroutine == nil {
		_ = s.repoSMS.SendOTP(ctx, rec)
		return
	}

	err := s.goroutine.Go(ctx, func(ctx context.Context) error {
		_ = s.repoSMS.SendOTP(ctx, rec)
		return nil
	})
	if err != nil {
		slog.WarnContext(ctx, "failed to schedule otp delivery, sending inline", "otp_id", rec.ID, "error", err)
		_ = s.repoSMS.SendOTP(ctx, rec)
	}
}
