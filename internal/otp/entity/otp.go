package entity

import (
	"errors"
	"time"
)

const (
	// TTL is how long a code stays usable after issue.
	TTL = 5 * time.Minute
	// MaxAttempts is the verification attempt that exhausts a code.
	MaxAttempts = 5
)

var (
	ErrOTPNotFound    = errors.New("otp: no active code")
	ErrOTPExhausted   = errors.New("otp: attempts exhausted")
	ErrOTPInvalidCode = errors.New("otp: invalid code")
)

// Key scopes supersede and lookup. At most one record per key is active.
type Key struct {
	EntityType EntityType
	EntityID   string
	Purpose    Purpose
}

// LockKey is the text hashed into the per-key advisory lock.
func (k Key) LockKey() string {
	return k.EntityType.String() + ":" + k.EntityID + ":" + k.Purpose.String()
}

type OTP struct {
	ID          string
	EntityType  EntityType
	EntityID    string
	PhoneNumber string
	Purpose     Purpose
	Code        string
	ExpiresAt   time.Time
	Attempts    int32
	IsVerified  bool
	Status      Status
	VerifiedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (o OTP) Key() Key {
	return Key{EntityType: o.EntityType, EntityID: o.EntityID, Purpose: o.Purpose}
}

// IsActive mirrors the store predicate: unverified and not yet expired.
func (o OTP) IsActive(now time.Time) bool {
	return !o.IsVerified && o.ExpiresAt.After(now)
}

// EffectiveStatus derives EXPIRED_IMPLICIT for an ACTIVE record past expiry.
func (o OTP) EffectiveStatus(now time.Time) Status {
	if o.Status == StatusActive && !o.ExpiresAt.After(now) {
		return StatusExpired
	}
	return o.Status
}
