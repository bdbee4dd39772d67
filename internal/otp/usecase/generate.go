package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/idempotency"
	"github.com/shandysiswandi/otpgate/internal/pkg/uid"
)

type GenerateInput struct {
	IdempotencyKey string `validate:"omitempty,max=128"`
	EntityType     string `validate:"required,oneof=user provider admin"`
	EntityID       string `validate:"required,uuid"`
	PhoneCode      string `validate:"required,digits,min=1,max=4"`
	PhoneNumber    string `validate:"required,digits,min=6,max=15"`
	Purpose        string `validate:"required,oneof=registration login password_reset phone_verification"`
}

// Generate is the request-facing form of Create. The stored phone number is
// the country code followed by the subscriber number.
func (s *Usecase) Generate(ctx context.Context, in GenerateInput) (*entity.OTP, error) {
	ctx, span := s.startSpan(ctx, "Generate")
	defer span.End()

	in.IdempotencyKey = strings.TrimSpace(in.IdempotencyKey)
	in.EntityID = uid.CanonicalUUID(in.EntityID)
	in.PhoneCode = strings.TrimPrefix(strings.TrimSpace(in.PhoneCode), "+")
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	create := CreateInput{
		EntityType:  entity.EntityType(in.EntityType),
		EntityID:    in.EntityID,
		PhoneNumber: in.PhoneCode + in.PhoneNumber,
		Purpose:     entity.Purpose(in.Purpose),
	}

	if in.IdempotencyKey == "" {
		return s.Create(ctx, create)
	}

	var out *entity.OTP
	err := s.idemp.Exec(ctx, "otp:generate:"+in.IdempotencyKey, func(ctx context.Context) error {
		var err error
		out, err = s.Create(ctx, create)
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
		slog.ErrorContext(ctx, "failed to run idempotent generate", "idempotency_key", in.IdempotencyKey, "error", err)
		return nil, goerror.NewServer(err)
	}
}
