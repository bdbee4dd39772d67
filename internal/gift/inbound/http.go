package inbound

import (
	"context"

	"github.com/shandysiswandi/otpgate/internal/gift/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/router"
)

type uc interface {
	Notify(ctx context.Context, in usecase.NotifyInput) (*usecase.NotifyOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.POST("/gift/notify", end.Notify)
}
