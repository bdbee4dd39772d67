package db

import (
	"context"
	"time"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
)

const queryGetActive = `SELECT ` + otpColumns + `
	FROM otp_verifications
	WHERE entity_type = $1 AND entity_id = $2 AND purpose = $3
	  AND is_verified = FALSE AND expires_at > $4
	ORDER BY created_at DESC, seq DESC
	LIMIT 1`

func (s *DB) GetActiveOTP(ctx context.Context, key entity.Key, now time.Time) (_ *entity.OTP, err error) {
	ctx, span := s.startSpan(ctx, "GetActiveOTP")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx, queryGetActive, key.EntityType.String(), key.EntityID, key.Purpose.String(), now)
	return s.collectOne(rows, err)
}
