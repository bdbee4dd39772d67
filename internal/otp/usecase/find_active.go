package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/uid"
)

type FindActiveInput struct {
	EntityType entity.EntityType `validate:"required,oneof=user provider admin"`
	EntityID   string            `validate:"required,uuid"`
	Purpose    entity.Purpose    `validate:"required,oneof=registration login password_reset phone_verification"`
}

// FindActive returns the newest unverified, unexpired record of the key.
// No such record is reported as entity.ErrOTPNotFound.
func (s *Usecase) FindActive(ctx context.Context, in FindActiveInput) (*entity.OTP, error) {
	ctx, span := s.startSpan(ctx, "FindActive")
	defer span.End()

	in.EntityID = uid.CanonicalUUID(in.EntityID)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	key := entity.Key{EntityType: in.EntityType, EntityID: in.EntityID, Purpose: in.Purpose}

	rec, err := s.repoDB.GetActiveOTP(ctx, key, s.clock.Now())
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, errNotFound()
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get active otp",
			"entity_type", in.EntityType, "entity_id", in.EntityID, "purpose", in.Purpose, "error", err)
		return nil, goerror.NewServer(err)
	}

	return rec, nil
}
