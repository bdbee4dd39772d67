package inbound

import "time"

const headerIdempotencyKey = "Idempotency-Key"

type NotifyRequest struct {
	GiftID               string `json:"gift_id"`
	RecipientPhoneCode   string `json:"recipient_phone_code"`
	RecipientPhoneNumber string `json:"recipient_phone_number"`
	RecipientFirstName   string `json:"recipient_first_name"`
	RecipientLastName    string `json:"recipient_last_name"`
	SenderFirstName      string `json:"sender_first_name"`
	SenderLastName       string `json:"sender_last_name"`
	ServiceProviderName  string `json:"service_provider_name"`
	ServiceName          string `json:"service_name"`
	Message              string `json:"message,omitempty"`
	DeeplinkURL          string `json:"deeplink_url,omitempty"`
}

type NotifyResponse struct {
	GiftID               string    `json:"gift_id"`
	RecipientPhoneCode   string    `json:"recipient_phone_code"`
	RecipientPhoneNumber string    `json:"recipient_phone_number"`
	MessageID            string    `json:"message_id"`
	Status               string    `json:"status"`
	SentAt               time.Time `json:"sent_at"`
}

func (NotifyResponse) Message() string {
	return "Gift notification SMS sent successfully"
}
