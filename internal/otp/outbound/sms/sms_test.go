package sms

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	gateway "github.com/shandysiswandi/otpgate/internal/pkg/sms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type mockSender struct{ mock.Mock }

func (m *mockSender) Send(ctx context.Context, msg gateway.Message) (gateway.Result, error) {
	args := m.Called(ctx, msg)
	return args.Get(0).(gateway.Result), args.Error(1)
}

type meterIns struct {
	mp *sdkmetric.MeterProvider
}

func (i meterIns) Tracer(name string) trace.Tracer { return noop.NewTracerProvider().Tracer(name) }

func (i meterIns) Meter(name string) metric.Meter { return i.mp.Meter(name) }

func (i meterIns) Shutdown(ctx context.Context) error { return i.mp.Shutdown(ctx) }

var _ instrument.Instrumentation = meterIns{}

func TestFormatMessage(t *testing.T) {
	tests := []struct {
		purpose entity.Purpose
		want    string
	}{
		{entity.PurposeRegistration, "Welcome! Your verification code is: 4821. This code will expire in 5 minutes."},
		{entity.PurposeLogin, "Your login verification code is: 4821. This code will expire in 5 minutes."},
		{entity.PurposePasswordReset, "Your password reset code is: 4821. This code will expire in 5 minutes."},
		{entity.PurposePhoneVerification, "Your phone verification code is: 4821. This code will expire in 5 minutes."},
		{entity.Purpose("other"), "Your verification code is: 4821. This code will expire in 5 minutes."},
	}

	for _, tt := range tests {
		t.Run(tt.purpose.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, FormatMessage("4821", tt.purpose))
		})
	}
}

func TestSMSSendOTP(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	rec := entity.OTP{
		EntityType:  entity.EntityTypeProvider,
		EntityID:    "0b6e3f1e-7d1c-4a55-9a53-6b8a2c0b7f10",
		PhoneNumber: "966501234567",
		Purpose:     entity.PurposeLogin,
		Code:        "1234",
	}

	t.Run("success", func(t *testing.T) {
		// Arrange
		sender := new(mockSender)
		sender.On("Send", mock.Anything, gateway.Message{
			To:            "966501234567",
			Body:          "Your login verification code is: 1234. This code will expire in 5 minutes.",
			CorrelationID: "provider_0b6e3f1e-7d1c-4a55-9a53-6b8a2c0b7f10_1769947200000",
		}).Return(gateway.Result{MessageID: "m-1", Status: "sent"}, nil)

		s, err := NewSMS(sender, clock.NewFrozen(now), instrument.NewNoop())
		require.NoError(t, err)

		// Act
		err = s.SendOTP(context.Background(), rec)

		// Assert
		assert.NoError(t, err)
		sender.AssertExpectations(t)
	})

	t.Run("failure is counted by kind and purpose", func(t *testing.T) {
		// Arrange
		reader := sdkmetric.NewManualReader()
		ins := meterIns{mp: sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))}
		derr := &gateway.DeliveryError{Kind: gateway.KindUnreachable, Err: errors.New("dial tcp: timeout")}
		sender := new(mockSender)
		sender.On("Send", mock.Anything, mock.Anything).Return(gateway.Result{}, derr)

		s, err := NewSMS(sender, clock.NewFrozen(now), ins)
		require.NoError(t, err)

		// Act
		err = s.SendOTP(context.Background(), rec)

		// Assert
		assert.ErrorIs(t, err, derr)

		var rm metricdata.ResourceMetrics
		require.NoError(t, reader.Collect(context.Background(), &rm))
		require.Len(t, rm.ScopeMetrics, 1)
		require.Len(t, rm.ScopeMetrics[0].Metrics, 1)
		got := rm.ScopeMetrics[0].Metrics[0]
		assert.Equal(t, "sms.delivery.failures", got.Name)
		sum, ok := got.Data.(metricdata.Sum[int64])
		require.True(t, ok)
		require.Len(t, sum.DataPoints, 1)
		assert.Equal(t, int64(1), sum.DataPoints[0].Value)
		kind, _ := sum.DataPoints[0].Attributes.Value(attribute.Key("kind"))
		purpose, _ := sum.DataPoints[0].Attributes.Value(attribute.Key("purpose"))
		assert.Equal(t, "unreachable", kind.AsString())
		assert.Equal(t, "login", purpose.AsString())
	})
}
