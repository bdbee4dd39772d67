package usecase

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsecaseVerify(t *testing.T) {
	ctx := context.Background()

	t.Run("correct code verifies once", func(t *testing.T) {
		// Arrange
		f := newFixture(t, "")
		rec, err := f.uc.Create(ctx, createInput(entity.PurposeLogin))
		require.NoError(t, err)

		// Act
		got, err := f.uc.Verify(ctx, verifyInput(entity.PurposeLogin, rec.Code))
		_, again := f.uc.Verify(ctx, verifyInput(entity.PurposeLogin, rec.Code))

		// Assert
		require.NoError(t, err)
		assert.Equal(t, rec.ID, got.ID)
		assert.Equal(t, entity.StatusVerified, got.Status)
		assert.True(t, got.IsVerified)
		require.NotNil(t, got.VerifiedAt)
		assert.Equal(t, int32(1), got.Attempts)
		assert.ErrorIs(t, again, entity.ErrOTPNotFound)
		require.Len(t, f.mq.verified, 1)
	})

	t.Run("upper case entity id matches the stored record", func(t *testing.T) {
		// Arrange
		f := newFixture(t, "")
		rec, err := f.uc.Create(ctx, createInput(entity.PurposeLogin))
		require.NoError(t, err)
		in := verifyInput(entity.PurposeLogin, rec.Code)
		in.EntityID = strings.ToUpper(testEntityID)

		// Act
		got, err := f.uc.Verify(ctx, in)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, rec.ID, got.ID)
		assert.Equal(t, testEntityID, got.EntityID)
	})

	t.Run("four wrong codes then a fifth exhausts", func(t *testing.T) {
		// Arrange
		f := newFixture(t, "")
		rec, err := f.uc.Create(ctx, createInput(entity.PurposeLogin))
		require.NoError(t, err)
		wrong := wrongCode(rec.Code)

		// Act and Assert
		for i := 1; i < entity.MaxAttempts; i++ {
			_, err := f.uc.Verify(ctx, verifyInput(entity.PurposeLogin, wrong))
			assert.ErrorIs(t, err, entity.ErrOTPInvalidCode, "attempt %d", i)
			requireCode(t, err, goerror.CodeUnauthorized)
		}

		_, err = f.uc.Verify(ctx, verifyInput(entity.PurposeLogin, wrong))
		assert.ErrorIs(t, err, entity.ErrOTPExhausted)
		requireCode(t, err, goerror.CodeTooManyRequest)
		var gerr *goerror.Error
		require.ErrorAs(t, err, &gerr)
		assert.Equal(t, "OTP_EXHAUSTED", gerr.Reason())

		_, err = f.uc.Verify(ctx, verifyInput(entity.PurposeLogin, rec.Code))
		assert.ErrorIs(t, err, entity.ErrOTPNotFound)

		stored := f.db.byID(rec.ID)
		assert.Equal(t, entity.StatusExhausted, stored.Status)
		assert.Equal(t, int32(entity.MaxAttempts), stored.Attempts)
		require.Len(t, f.mq.exhausted, 1)
	})

	t.Run("correct code on the fifth attempt is exhausted", func(t *testing.T) {
		f := newFixture(t, "")
		rec, err := f.uc.Create(ctx, createInput(entity.PurposeLogin))
		require.NoError(t, err)
		for range entity.MaxAttempts - 1 {
			_, _ = f.uc.Verify(ctx, verifyInput(entity.PurposeLogin, wrongCode(rec.Code)))
		}

		_, err = f.uc.Verify(ctx, verifyInput(entity.PurposeLogin, rec.Code))

		assert.ErrorIs(t, err, entity.ErrOTPExhausted)
	})

	t.Run("expired code is not found", func(t *testing.T) {
		f := newFixture(t, "")
		rec, err := f.uc.Create(ctx, createInput(entity.PurposeLogin))
		require.NoError(t, err)
		f.clock.Advance(entity.TTL)

		_, err = f.uc.Verify(ctx, verifyInput(entity.PurposeLogin, rec.Code))

		assert.ErrorIs(t, err, entity.ErrOTPNotFound)
		assert.Equal(t, int32(0), f.db.byID(rec.ID).Attempts)
		assert.Equal(t, entity.StatusExpired, f.db.byID(rec.ID).EffectiveStatus(f.clock.Now()))
	})

	t.Run("superseded code no longer verifies", func(t *testing.T) {
		f := newFixture(t, "")
		first, err := f.uc.Create(ctx, createInput(entity.PurposeLogin))
		require.NoError(t, err)
		second, err := f.uc.Create(ctx, createInput(entity.PurposeLogin))
		require.NoError(t, err)
		require.NotEqual(t, first.Code, second.Code)

		_, errOld := f.uc.Verify(ctx, verifyInput(entity.PurposeLogin, first.Code))
		got, errNew := f.uc.Verify(ctx, verifyInput(entity.PurposeLogin, second.Code))

		assert.ErrorIs(t, errOld, entity.ErrOTPInvalidCode)
		require.NoError(t, errNew)
		assert.Equal(t, second.ID, got.ID)
	})

	t.Run("concurrent correct submissions verify exactly once", func(t *testing.T) {
		f := newFixture(t, "")
		rec, err := f.uc.Create(ctx, createInput(entity.PurposeLogin))
		require.NoError(t, err)

		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			verified int
		)
		for range 4 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := f.uc.Verify(ctx, verifyInput(entity.PurposeLogin, rec.Code)); err == nil {
					mu.Lock()
					verified++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, verified)
	})

	t.Run("storage failure on increment", func(t *testing.T) {
		f := newFixture(t, "")
		rec, err := f.uc.Create(ctx, createInput(entity.PurposeLogin))
		require.NoError(t, err)
		f.db.failOn = "increment"

		_, err = f.uc.Verify(ctx, verifyInput(entity.PurposeLogin, rec.Code))

		requireCode(t, err, goerror.CodeInternal)
	})

	t.Run("invalid code format", func(t *testing.T) {
		f := newFixture(t, "")

		_, err := f.uc.Verify(ctx, verifyInput(entity.PurposeLogin, "12a4"))

		requireCode(t, err, goerror.CodeInvalidInput)
	})
}
