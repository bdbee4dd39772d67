package router

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/validator"
)

const defaultSuccessMessage = "Request has been processed successfully"

type errorResponse struct {
	StatusCode int               `json:"status_code" example:"422"`
	Success    bool              `json:"success" example:"false"`
	Message    string            `json:"message" example:"Validation error"`
	ErrorCode  string            `json:"error_code" example:"VALIDATION_ERROR"`
	Error      map[string]string `json:"error,omitempty"`
}

type successResponse struct {
	StatusCode int    `json:"status_code" example:"200"`
	Success    bool   `json:"success" example:"true"`
	Message    string `json:"message" example:"Request has been processed successfully"`
	Data       any    `json:"data" swaggertype:"object"`
}

// Response lets a handler set status, message and data explicitly. Payload
// types may instead implement Message() string and StatusCode() int.
type Response struct {
	Status  int
	Message string
	Data    any
}

func newErrorResponse(status int, msg, code string) errorResponse {
	return errorResponse{StatusCode: status, Message: msg, ErrorCode: code}
}

func writeError(w http.ResponseWriter, err error) {
	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		writeJSON(w, newErrorResponse(http.StatusInternalServerError, "Internal server error",
			goerror.CodeInternal.Reason()), http.StatusInternalServerError)
		return
	}

	resp := newErrorResponse(gerr.StatusCode(), gerr.Msg(), gerr.Reason())

	var verr validator.V10ValidationError
	if errors.As(err, &verr) {
		resp.Error = verr.Values()
	} else if len(gerr.Fields()) > 0 {
		resp.Error = gerr.Fields()
	}

	writeJSON(w, resp, resp.StatusCode)
}

func writeSuccess(w http.ResponseWriter, resp any) {
	out := successResponse{
		StatusCode: http.StatusOK,
		Success:    true,
		Message:    defaultSuccessMessage,
		Data:       resp,
	}

	if m, ok := resp.(interface{ Message() string }); ok {
		out.Message = m.Message()
	}
	if sc, ok := resp.(interface{ StatusCode() int }); ok {
		out.StatusCode = sc.StatusCode()
	}

	if r, ok := resp.(Response); ok {
		out.Data = r.Data
		if r.Status != 0 {
			out.StatusCode = r.Status
		}
		if r.Message != "" {
			out.Message = r.Message
		}
	}

	writeJSON(w, out, out.StatusCode)
}

func writeJSON(w http.ResponseWriter, data any, code int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("router: failed to encode response", "error", err)
	}
}
