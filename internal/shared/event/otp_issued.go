package event

import "time"

const OTPIssuedDestination string = "otp_issued"

type OTPIssuedMessage struct {
	EventID    int64     `json:"event_id"`
	OTPID      string    `json:"otp_id"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	Purpose    string    `json:"purpose"`
	ExpiresAt  time.Time `json:"expires_at"`
	IssuedAt   time.Time `json:"issued_at"`
}
