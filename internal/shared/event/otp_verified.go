package event

import "time"

const OTPVerifiedDestination string = "otp_verified"

type OTPVerifiedMessage struct {
	EventID    int64     `json:"event_id"`
	OTPID      string    `json:"otp_id"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	Purpose    string    `json:"purpose"`
	VerifiedAt time.Time `json:"verified_at"`
}
