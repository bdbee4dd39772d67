package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"time"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/uid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	verifyStatusVerified  = "VERIFIED"
	verifyStatusInvalid   = "INVALID"
	verifyStatusExhausted = "EXHAUSTED"
	verifyStatusNotFound  = "NOT_FOUND"
)

type VerifyInput struct {
	EntityType string `validate:"required,oneof=user provider admin"`
	EntityID   string `validate:"required,uuid"`
	Purpose    string `validate:"required,oneof=registration login password_reset phone_verification"`
	OTPCode    string `validate:"required,len=4,digits"`
}

// Verify checks code against the active record of the key. Every call that
// finds an active record costs one attempt, right or wrong; the fifth attempt
// exhausts the record whatever the code.
//
// Outcomes other than success wrap entity.ErrOTPNotFound,
// entity.ErrOTPExhausted or entity.ErrOTPInvalidCode.
func (s *Usecase) Verify(ctx context.Context, in VerifyInput) (*entity.OTP, error) {
	ctx, span := s.startSpan(ctx, "Verify")
	defer span.End()

	in.EntityID = uid.CanonicalUUID(in.EntityID)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	ctx = context.WithoutCancel(ctx)
	now := s.clock.Now()
	key := entity.Key{
		EntityType: entity.EntityType(in.EntityType),
		EntityID:   in.EntityID,
		Purpose:    entity.Purpose(in.Purpose),
	}

	rec, err := s.repoDB.GetActiveOTP(ctx, key, now)
	if errors.Is(err, goerror.ErrNotFound) {
		s.countVerify(ctx, verifyStatusNotFound)
		return nil, errNotFound()
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get active otp", "entity_id", in.EntityID, "error", err)
		return nil, goerror.NewServer(err)
	}

	counted, err := s.repoDB.IncrementOTPAttempts(ctx, rec.ID, now)
	if errors.Is(err, goerror.ErrNotFound) {
		s.countVerify(ctx, verifyStatusNotFound)
		return nil, errNotFound()
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo increment otp attempts", "otp_id", rec.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if counted.Attempts >= entity.MaxAttempts {
		return nil, s.exhaust(ctx, counted, now)
	}

	if subtle.ConstantTimeCompare([]byte(in.OTPCode), []byte(counted.Code)) != 1 {
		slog.WarnContext(ctx, "otp code mismatch", "otp_id", counted.ID, "attempts", counted.Attempts)
		s.countVerify(ctx, verifyStatusInvalid)
		return nil, errInvalidCode()
	}

	verified, err := s.repoDB.MarkOTPVerified(ctx, counted.ID, now)
	if errors.Is(err, goerror.ErrNotFound) {
		s.countVerify(ctx, verifyStatusNotFound)
		return nil, errNotFound()
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo mark otp verified", "otp_id", counted.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	s.countVerify(ctx, verifyStatusVerified)
	if err := s.repoMessaging.PublishOTPVerified(ctx, OTPVerifiedEvent{
		OTPID:      verified.ID,
		EntityType: verified.EntityType.String(),
		EntityID:   verified.EntityID,
		Purpose:    verified.Purpose.String(),
		VerifiedAt: now,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish otp verified", "otp_id", verified.ID, "error", err)
	}

	return verified, nil
}

func (s *Usecase) exhaust(ctx context.Context, rec *entity.OTP, now time.Time) error {
	if err := s.repoDB.MarkOTPExhausted(ctx, rec.ID, now); err != nil {
		slog.ErrorContext(ctx, "failed to repo mark otp exhausted", "otp_id", rec.ID, "error", err)
		return goerror.NewServer(err)
	}

	slog.WarnContext(ctx, "otp exhausted", "otp_id", rec.ID, "attempts", rec.Attempts)
	s.countVerify(ctx, verifyStatusExhausted)

	if err := s.repoMessaging.PublishOTPExhausted(ctx, OTPExhaustedEvent{
		OTPID:       rec.ID,
		EntityType:  rec.EntityType.String(),
		EntityID:    rec.EntityID,
		Purpose:     rec.Purpose.String(),
		Attempts:    rec.Attempts,
		ExhaustedAt: now,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish otp exhausted", "otp_id", rec.ID, "error", err)
	}

	return errExhausted()
}

func (s *Usecase) countVerify(ctx context.Context, status string) {
	s.verified.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}
