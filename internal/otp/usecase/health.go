package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
)

type HealthOutput struct {
	Status    string
	Database  string
	Timestamp time.Time
}

func (s *Usecase) Health(ctx context.Context) (*HealthOutput, error) {
	ctx, span := s.startSpan(ctx, "Health")
	defer span.End()

	if err := s.repoDB.Ping(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to ping database", "error", err)
		return nil, goerror.NewServerWithMsg(err, "SMS Server health check failed")
	}

	return &HealthOutput{
		Status:    "ok",
		Database:  "connected",
		Timestamp: s.clock.Now(),
	}, nil
}
