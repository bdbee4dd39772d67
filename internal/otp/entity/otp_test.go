package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOTPEffectiveStatus(t *testing.T) {
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		otp        OTP
		wantStatus Status
		wantActive bool
	}{
		{
			name:       "active before expiry",
			otp:        OTP{Status: StatusActive, ExpiresAt: now.Add(time.Second)},
			wantStatus: StatusActive,
			wantActive: true,
		},
		{
			name:       "expired exactly at expires_at",
			otp:        OTP{Status: StatusActive, ExpiresAt: now},
			wantStatus: StatusExpired,
		},
		{
			name:       "verified keeps its status after expiry",
			otp:        OTP{Status: StatusVerified, IsVerified: true, ExpiresAt: now.Add(-time.Minute)},
			wantStatus: StatusVerified,
		},
		{
			name:       "superseded is not active",
			otp:        OTP{Status: StatusSuperseded, IsVerified: true, ExpiresAt: now.Add(time.Minute)},
			wantStatus: StatusSuperseded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStatus, tt.otp.EffectiveStatus(now))
			assert.Equal(t, tt.wantActive, tt.otp.IsActive(now))
		})
	}
}

func TestEnums(t *testing.T) {
	assert.True(t, EntityTypeProvider.IsValid())
	assert.False(t, EntityType("robot").IsValid())
	assert.True(t, PurposePhoneVerification.IsValid())
	assert.False(t, Purpose("marketing").IsValid())
	assert.False(t, StatusActive.IsTerminal())
	assert.True(t, StatusExhausted.IsTerminal())
}

func TestKeyLockKey(t *testing.T) {
	k := Key{EntityType: EntityTypeUser, EntityID: "u1", Purpose: PurposeLogin}

	assert.Equal(t, "user:u1:login", k.LockKey())
	assert.Equal(t, k, OTP{EntityType: EntityTypeUser, EntityID: "u1", Purpose: PurposeLogin}.Key())
}
