package inbound

import "time"

const headerIdempotencyKey = "Idempotency-Key"

type GenerateRequest struct {
	EntityType  string `json:"entity_type"`
	EntityID    string `json:"entity_id"`
	PhoneCode   string `json:"phone_code"`
	PhoneNumber string `json:"phone_number"`
	Purpose     string `json:"purpose"`
}

// GenerateResponse never carries the code itself.
type GenerateResponse struct {
	OTPID       string    `json:"otp_id"`
	EntityType  string    `json:"entity_type"`
	EntityID    string    `json:"entity_id"`
	PhoneCode   string    `json:"phone_code"`
	PhoneNumber string    `json:"phone_number"`
	Purpose     string    `json:"purpose"`
	ExpiresAt   time.Time `json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"`
}

func (GenerateResponse) Message() string {
	return "OTP generated and sent successfully via SMS"
}

type VerifyRequest struct {
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	Purpose    string `json:"purpose"`
	OTPCode    string `json:"otp_code"`
}

type VerifyResponse struct {
	OTPID      string    `json:"otp_id"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	Purpose    string    `json:"purpose"`
	Status     string    `json:"status"`
	VerifiedAt time.Time `json:"verified_at"`
}

func (VerifyResponse) Message() string {
	return "OTP verified successfully"
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Database  string    `json:"database"`
	Timestamp time.Time `json:"timestamp"`
}

func (HealthResponse) Message() string {
	return "SMS Server is healthy"
}
