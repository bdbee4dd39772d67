package inbound

import (
	"strings"

	"github.com/shandysiswandi/otpgate/internal/otp/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/router"
)

// HTTPEndpoint exposes the OTP lifecycle over HTTP.
type HTTPEndpoint struct {
	uc uc
}

// Generate issues a code and sends it by SMS.
// @Summary Generate OTP
// @Description Supersedes any outstanding code for the entity and purpose, stores a new 4 digit code valid for 5 minutes and sends it by SMS. The code is never returned.
// @Tags OTP
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Client generated key; a replay is rejected with 409"
// @Param request body GenerateRequest true "Generate payload"
// @Success 200 {object} router.successResponse{data=GenerateResponse} "OTP generated"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 409 {object} router.errorResponse "Idempotency-Key already used"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /otp/generate [post]
func (h *HTTPEndpoint) Generate(r *router.Request) (any, error) {
	var req GenerateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Generate(r.Context(), usecase.GenerateInput{
		IdempotencyKey: r.GetHeader(headerIdempotencyKey),
		EntityType:     req.EntityType,
		EntityID:       req.EntityID,
		PhoneCode:      req.PhoneCode,
		PhoneNumber:    req.PhoneNumber,
		Purpose:        req.Purpose,
	})
	if err != nil {
		return nil, err
	}

	return GenerateResponse{
		OTPID:       resp.ID,
		EntityType:  resp.EntityType.String(),
		EntityID:    resp.EntityID,
		PhoneCode:   strings.TrimPrefix(strings.TrimSpace(req.PhoneCode), "+"),
		PhoneNumber: strings.TrimSpace(req.PhoneNumber),
		Purpose:     resp.Purpose.String(),
		ExpiresAt:   resp.ExpiresAt,
		CreatedAt:   resp.CreatedAt,
	}, nil
}

// Verify checks a submitted code.
// @Summary Verify OTP
// @Description Checks the code against the active OTP of the entity and purpose. Each call costs one attempt; the fifth attempt exhausts the code.
// @Tags OTP
// @Accept json
// @Produce json
// @Param request body VerifyRequest true "Verify payload"
// @Success 200 {object} router.successResponse{data=VerifyResponse} "OTP verified"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Invalid OTP code"
// @Failure 404 {object} router.errorResponse "No active OTP"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 429 {object} router.errorResponse "Attempts exhausted"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /otp/verify [post]
func (h *HTTPEndpoint) Verify(r *router.Request) (any, error) {
	var req VerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Verify(r.Context(), usecase.VerifyInput{
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
		Purpose:    req.Purpose,
		OTPCode:    req.OTPCode,
	})
	if err != nil {
		return nil, err
	}

	out := VerifyResponse{
		OTPID:      resp.ID,
		EntityType: resp.EntityType.String(),
		EntityID:   resp.EntityID,
		Purpose:    resp.Purpose.String(),
		Status:     resp.Status.String(),
	}
	if resp.VerifiedAt != nil {
		out.VerifiedAt = *resp.VerifiedAt
	}

	return out, nil
}

// Health reports database connectivity.
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} router.successResponse{data=HealthResponse} "Healthy"
// @Failure 500 {object} router.errorResponse "Database unreachable"
// @Router /otp/health [get]
// @Router /health [get]
func (h *HTTPEndpoint) Health(r *router.Request) (any, error) {
	resp, err := h.uc.Health(r.Context())
	if err != nil {
		return nil, err
	}

	return HealthResponse{
		Status:    resp.Status,
		Database:  resp.Database,
		Timestamp: resp.Timestamp,
	}, nil
}
