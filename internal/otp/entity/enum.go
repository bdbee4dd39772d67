package entity

import "slices"

type EntityType string

const (
	EntityTypeUser     EntityType = "user"
	EntityTypeProvider EntityType = "provider"
	EntityTypeAdmin    EntityType = "admin"
)

var entityTypes = []EntityType{EntityTypeUser, EntityTypeProvider, EntityTypeAdmin}

func (e EntityType) String() string { return string(e) }

func (e EntityType) IsValid() bool { return slices.Contains(entityTypes, e) }

type Purpose string

const (
	PurposeRegistration      Purpose = "registration"
	PurposeLogin             Purpose = "login"
	PurposePasswordReset     Purpose = "password_reset"
	PurposePhoneVerification Purpose = "phone_verification"
)

var purposes = []Purpose{PurposeRegistration, PurposeLogin, PurposePasswordReset, PurposePhoneVerification}

func (p Purpose) String() string { return string(p) }

func (p Purpose) IsValid() bool { return slices.Contains(purposes, p) }

// Status is the lifecycle state recorded at the point of transition.
type Status string

const (
	StatusActive     Status = "ACTIVE"
	StatusSuperseded Status = "SUPERSEDED"
	StatusExhausted  Status = "EXHAUSTED"
	StatusVerified   Status = "VERIFIED"
	// StatusExpired is never stored; an ACTIVE record past expires_at reads as expired.
	StatusExpired Status = "EXPIRED_IMPLICIT"
)

func (s Status) String() string { return string(s) }

// IsTerminal reports whether no further transition can leave s.
func (s Status) IsTerminal() bool {
	return s != StatusActive
}
