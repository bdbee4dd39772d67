package sms

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultUnifonicURL = "https://el.cloud.unifonic.com/rest/SMS/messages"

// unknownMessageID is reported when an accepted response carries no id.
const unknownMessageID = "N/A"

type UnifonicOptions struct {
	URL      string
	AppSID   string
	SenderID string
	Timeout  time.Duration
	// Client overrides the HTTP client; Timeout is ignored when set.
	Client *http.Client
}

// Unifonic sends messages with a form-encoded POST to the Unifonic REST API.
type Unifonic struct {
	url      string
	appSID   string
	senderID string
	client   *http.Client
}

func NewUnifonic(opts UnifonicOptions) *Unifonic {
	u := &Unifonic{
		url:      strings.TrimSpace(opts.URL),
		appSID:   strings.TrimSpace(opts.AppSID),
		senderID: strings.TrimSpace(opts.SenderID),
		client:   opts.Client,
	}
	if u.url == "" {
		u.url = DefaultUnifonicURL
	}
	if u.client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		u.client = &http.Client{Timeout: timeout}
	}
	if u.appSID == "" {
		slog.Warn("sms: unifonic app sid is not configured, every send will fail")
	}
	return u
}

// unifonicResponse tolerates MessageID at the top level or under data,
// as a string or a number.
type unifonicResponse struct {
	Success   *bool           `json:"success"`
	Message   string          `json:"message"`
	MessageID json.RawMessage `json:"MessageID"`
	Data      struct {
		MessageID json.RawMessage `json:"MessageID"`
	} `json:"data"`
}

func (r unifonicResponse) id() string {
	for _, raw := range []json.RawMessage{r.MessageID, r.Data.MessageID} {
		v := strings.Trim(strings.TrimSpace(string(raw)), `"`)
		if v != "" && v != "null" {
			return v
		}
	}
	return ""
}

func (u *Unifonic) Send(ctx context.Context, msg Message) (Result, error) {
	recipient := Normalize(msg.To)
	if recipient == "" {
		return Result{}, &DeliveryError{Kind: KindRequestInvalid, Err: ErrEmptyRecipient}
	}
	if u.appSID == "" {
		return Result{}, &DeliveryError{Kind: KindRequestInvalid, Message: "app sid not configured"}
	}

	form := url.Values{}
	form.Set("AppSid", u.appSID)
	form.Set("Recipient", recipient)
	form.Set("Body", msg.Body)
	if u.senderID != "" {
		form.Set("SenderID", u.senderID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.url, strings.NewReader(form.Encode()))
	if err != nil {
		return Result{}, &DeliveryError{Kind: KindRequestInvalid, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := u.client.Do(req)
	if err != nil {
		return Result{}, &DeliveryError{Kind: KindUnreachable, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return Result{}, &DeliveryError{Kind: KindUnreachable, StatusCode: resp.StatusCode, Err: err}
	}

	var body unifonicResponse
	decodeErr := json.Unmarshal(raw, &body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		derr := &DeliveryError{Kind: KindProviderRejected, StatusCode: resp.StatusCode, Message: body.Message}
		if derr.Message == "" {
			derr.Message = http.StatusText(resp.StatusCode)
		}
		return Result{}, derr
	}
	// A 2xx without a readable body still means the provider took the message.
	if decodeErr != nil {
		slog.WarnContext(ctx, "sms: unifonic response body not decodable",
			"status_code", resp.StatusCode, "correlation_id", msg.CorrelationID, "error", decodeErr)
	}
	if decodeErr == nil && body.Success != nil && !*body.Success {
		return Result{}, &DeliveryError{Kind: KindProviderRejected, StatusCode: resp.StatusCode, Message: body.Message}
	}

	res := Result{MessageID: body.id(), Status: "Sent", Recipient: recipient}
	if res.MessageID == "" {
		res.MessageID = unknownMessageID
	}
	slog.InfoContext(ctx, "sms: unifonic message accepted",
		"recipient", MaskRecipient(recipient),
		"message_id", res.MessageID,
		"correlation_id", msg.CorrelationID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}
