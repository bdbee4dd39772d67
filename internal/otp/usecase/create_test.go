package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsecaseCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("new record is active and delivered", func(t *testing.T) {
		// Arrange
		f := newFixture(t, "")
		now := f.clock.Now()

		// Act
		got, err := f.uc.Create(ctx, createInput(entity.PurposeLogin))

		// Assert
		require.NoError(t, err)
		assert.Regexp(t, `^[1-9][0-9]{3}$`, got.Code)
		assert.Equal(t, int32(0), got.Attempts)
		assert.False(t, got.IsVerified)
		assert.Equal(t, entity.StatusActive, got.Status)
		assert.Equal(t, now.Add(entity.TTL), got.ExpiresAt)
		assert.Equal(t, now, got.CreatedAt)

		active, err := f.uc.FindActive(ctx, findInput(entity.PurposeLogin))
		require.NoError(t, err)
		assert.Equal(t, got.ID, active.ID)

		require.Equal(t, 1, f.sms.count())
		assert.Equal(t, got.Code, f.sms.sent[0].Code)
		require.Len(t, f.mq.issued, 1)
		assert.Equal(t, got.ID, f.mq.issued[0].OTPID)
	})

	t.Run("second create supersedes the first", func(t *testing.T) {
		// Arrange
		f := newFixture(t, "")
		first, err := f.uc.Create(ctx, createInput(entity.PurposeLogin))
		require.NoError(t, err)

		// Act
		second, err := f.uc.Create(ctx, createInput(entity.PurposeLogin))

		// Assert
		require.NoError(t, err)
		active, err := f.uc.FindActive(ctx, findInput(entity.PurposeLogin))
		require.NoError(t, err)
		assert.Equal(t, second.ID, active.ID)

		old := f.db.byID(first.ID)
		assert.True(t, old.IsVerified)
		assert.Equal(t, entity.StatusSuperseded, old.Status)
		assert.Equal(t, 1, countActive(f.db, second.Key(), f.clock.Now()))
	})

	t.Run("other purposes are not superseded", func(t *testing.T) {
		f := newFixture(t, "")
		login, err := f.uc.Create(ctx, createInput(entity.PurposeLogin))
		require.NoError(t, err)

		_, err = f.uc.Create(ctx, createInput(entity.PurposePasswordReset))
		require.NoError(t, err)

		active, err := f.uc.FindActive(ctx, findInput(entity.PurposeLogin))
		require.NoError(t, err)
		assert.Equal(t, login.ID, active.ID)
	})

	t.Run("delivery failure does not fail create", func(t *testing.T) {
		f := newFixture(t, "")
		f.sms.err = errors.New("provider rejected")

		got, err := f.uc.Create(ctx, createInput(entity.PurposeRegistration))

		require.NoError(t, err)
		active, err := f.uc.FindActive(ctx, findInput(entity.PurposeRegistration))
		require.NoError(t, err)
		assert.Equal(t, got.ID, active.ID)
	})

	t.Run("publish failure does not fail create", func(t *testing.T) {
		f := newFixture(t, "")
		f.mq.err = errors.New("broker down")

		_, err := f.uc.Create(ctx, createInput(entity.PurposeRegistration))

		assert.NoError(t, err)
	})

	t.Run("storage failure aborts before delivery", func(t *testing.T) {
		f := newFixture(t, "")
		f.db.failOn = "create"

		got, err := f.uc.Create(ctx, createInput(entity.PurposeLogin))

		assert.Nil(t, got)
		requireCode(t, err, goerror.CodeInternal)
		assert.Equal(t, 0, f.sms.count())
		assert.Empty(t, f.mq.issued)
	})

	t.Run("invalid input", func(t *testing.T) {
		f := newFixture(t, "")
		in := createInput(entity.Purpose("marketing"))
		in.EntityID = "not-a-uuid"

		_, err := f.uc.Create(ctx, in)

		requireCode(t, err, goerror.CodeInvalidInput)
		assert.Equal(t, 0, f.sms.count())
		assert.Empty(t, f.db.rows)
		assert.Empty(t, f.mq.issued)
	})

	t.Run("phone number with country code prefix", func(t *testing.T) {
		// Arrange
		f := newFixture(t, "")
		in := createInput(entity.PurposeRegistration)
		in.PhoneNumber = "+919876543210"

		// Act
		got, err := f.uc.Create(ctx, in)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "919876543210", got.PhoneNumber)
		assert.Equal(t, "919876543210", f.db.byID(got.ID).PhoneNumber)
		require.Equal(t, 1, f.sms.count())
	})

	t.Run("short phone number is accepted", func(t *testing.T) {
		f := newFixture(t, "")
		in := createInput(entity.PurposeLogin)
		in.PhoneNumber = "12345"

		got, err := f.uc.Create(ctx, in)

		require.NoError(t, err)
		assert.Equal(t, "12345", got.PhoneNumber)
	})

	t.Run("entity id letter case does not split the key", func(t *testing.T) {
		// Arrange
		f := newFixture(t, "")
		upper := createInput(entity.PurposeLogin)
		upper.EntityID = strings.ToUpper(testEntityID)
		first, err := f.uc.Create(ctx, upper)
		require.NoError(t, err)

		// Act
		second, err := f.uc.Create(ctx, createInput(entity.PurposeLogin))

		// Assert
		require.NoError(t, err)
		assert.Equal(t, testEntityID, first.EntityID)
		assert.Equal(t, first.Key(), second.Key())
		assert.Equal(t, entity.StatusSuperseded, f.db.byID(first.ID).Status)
		assert.Equal(t, 1, countActive(f.db, second.Key(), f.clock.Now()))
		require.Len(t, f.mq.issued, 2)
		assert.Equal(t, testEntityID, f.mq.issued[0].EntityID)

		find := findInput(entity.PurposeLogin)
		find.EntityID = strings.ToUpper(testEntityID)
		active, err := f.uc.FindActive(ctx, find)
		require.NoError(t, err)
		assert.Equal(t, second.ID, active.ID)
	})

	t.Run("async delivery runs on the goroutine manager", func(t *testing.T) {
		f := newFixture(t, "modules:\n  otp:\n    delivery:\n      async: true\n")

		_, err := f.uc.Create(ctx, createInput(entity.PurposeLogin))
		require.NoError(t, err)
		require.NoError(t, f.uc.goroutine.Wait())

		assert.Equal(t, 1, f.sms.count())
	})
}

func TestUsecaseFindActive(t *testing.T) {
	ctx := context.Background()

	t.Run("none before create", func(t *testing.T) {
		f := newFixture(t, "")

		got, err := f.uc.FindActive(ctx, findInput(entity.PurposeLogin))

		assert.Nil(t, got)
		assert.ErrorIs(t, err, entity.ErrOTPNotFound)
		requireCode(t, err, goerror.CodeNotFound)
	})

	t.Run("expired at exactly five minutes", func(t *testing.T) {
		f := newFixture(t, "")
		_, err := f.uc.Create(ctx, createInput(entity.PurposeLogin))
		require.NoError(t, err)

		f.clock.Advance(entity.TTL - 1)
		_, errBefore := f.uc.FindActive(ctx, findInput(entity.PurposeLogin))
		f.clock.Advance(1)
		_, errAt := f.uc.FindActive(ctx, findInput(entity.PurposeLogin))

		assert.NoError(t, errBefore)
		assert.ErrorIs(t, errAt, entity.ErrOTPNotFound)
	})

	t.Run("storage failure", func(t *testing.T) {
		f := newFixture(t, "")
		f.db.failOn = "get"

		_, err := f.uc.FindActive(ctx, findInput(entity.PurposeLogin))

		requireCode(t, err, goerror.CodeInternal)
	})
}
