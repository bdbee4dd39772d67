package inbound

import (
	"github.com/shandysiswandi/otpgate/internal/gift/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/router"
)

type HTTPEndpoint struct {
	uc uc
}

// Notify sends a gift notification SMS.
// @Summary Send gift notification
// @Description Sends an SMS telling the recipient about a gift, with an optional personal message and app deeplink.
// @Tags Gift
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Client generated key; a replay is rejected with 409"
// @Param request body NotifyRequest true "Gift payload"
// @Success 200 {object} router.successResponse{data=NotifyResponse} "Gift notification sent"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 409 {object} router.errorResponse "Idempotency-Key already used"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 502 {object} router.errorResponse "SMS provider failure"
// @Router /gift/notify [post]
func (h *HTTPEndpoint) Notify(r *router.Request) (any, error) {
	var req NotifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Notify(r.Context(), usecase.NotifyInput{
		IdempotencyKey:       r.GetHeader(headerIdempotencyKey),
		GiftID:               req.GiftID,
		RecipientPhoneCode:   req.RecipientPhoneCode,
		RecipientPhoneNumber: req.RecipientPhoneNumber,
		RecipientFirstName:   req.RecipientFirstName,
		RecipientLastName:    req.RecipientLastName,
		SenderFirstName:      req.SenderFirstName,
		SenderLastName:       req.SenderLastName,
		ServiceProviderName:  req.ServiceProviderName,
		ServiceName:          req.ServiceName,
		Message:              req.Message,
		DeeplinkURL:          req.DeeplinkURL,
	})
	if err != nil {
		return nil, err
	}

	return NotifyResponse{
		GiftID:               resp.GiftID,
		RecipientPhoneCode:   resp.RecipientPhoneCode,
		RecipientPhoneNumber: resp.RecipientPhoneNumber,
		MessageID:            resp.MessageID,
		Status:               resp.Status,
		SentAt:               resp.SentAt,
	}, nil
}
