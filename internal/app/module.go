package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/otpgate/internal/gift"
	"github.com/shandysiswandi/otpgate/internal/otp"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.otp.enabled") {
		if err := otp.New(otp.Dependency{
			DBConn:      a.dbConn,
			Goroutine:   a.goroutine,
			Router:      a.router,
			Idempotency: a.idemp,
			Messaging:   a.messaging,
			SMS:         a.sms,
			Config:      a.config,
			Instrument:  a.ins,
			UUID:        a.uuid,
			EventID:     a.uid,
			Clock:       a.clock,
			Code:        a.code,
			Validator:   a.validator,
		}); err != nil {
			slog.Error("failed to init module otp", "error", err)
			os.Exit(1)
		}
	}

	if a.config.GetBool("modules.gift.enabled") {
		if err := gift.New(gift.Dependency{
			Router:      a.router,
			Idempotency: a.idemp,
			SMS:         a.sms,
			Config:      a.config,
			Instrument:  a.ins,
			Clock:       a.clock,
			Validator:   a.validator,
		}); err != nil {
			slog.Error("failed to init module gift", "error", err)
			os.Exit(1)
		}
	}
}
