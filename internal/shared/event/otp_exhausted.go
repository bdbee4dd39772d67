package event

import "time"

const OTPExhaustedDestination string = "otp_exhausted"

type OTPExhaustedMessage struct {
	EventID     int64     `json:"event_id"`
	OTPID       string    `json:"otp_id"`
	EntityType  string    `json:"entity_type"`
	EntityID    string    `json:"entity_id"`
	Purpose     string    `json:"purpose"`
	Attempts    int32     `json:"attempts"`
	ExhaustedAt time.Time `json:"exhausted_at"`
}
