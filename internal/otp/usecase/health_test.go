package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsecaseHealth(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		f := newFixture(t, "")

		got, err := f.uc.Health(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "ok", got.Status)
		assert.Equal(t, "connected", got.Database)
		assert.Equal(t, f.clock.Now(), got.Timestamp)
	})

	t.Run("database down", func(t *testing.T) {
		f := newFixture(t, "")
		f.db.pingErr = errors.New("connection refused")

		_, err := f.uc.Health(context.Background())

		var gerr *goerror.Error
		require.ErrorAs(t, err, &gerr)
		assert.Equal(t, goerror.CodeInternal, gerr.Code())
		assert.Equal(t, "SMS Server health check failed", gerr.Msg())
	})
}
