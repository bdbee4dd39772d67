package inbound

import (
	"context"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/otp/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/router"
)

type uc interface {
	Generate(ctx context.Context, in usecase.GenerateInput) (*entity.OTP, error)
	Verify(ctx context.Context, in usecase.VerifyInput) (*entity.OTP, error)
	Health(ctx context.Context) (*usecase.HealthOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.POST("/otp/generate", end.Generate)
	r.POST("/otp/verify", end.Verify)

	r.GET("/otp/health", end.Health)
	r.GET("/health", end.Health)
}
