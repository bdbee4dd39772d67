package db

import (
	"context"
	"time"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
)

const (
	queryIncrementAttempts = `UPDATE otp_verifications
	SET attempts = attempts + 1, updated_at = $2
	WHERE id = $1 AND is_verified = FALSE AND expires_at > $2 AND attempts < $3
	RETURNING ` + otpColumns

	queryMarkExhausted = `UPDATE otp_verifications
	SET is_verified = TRUE, status = 'EXHAUSTED', updated_at = $2
	WHERE id = $1 AND is_verified = FALSE`

	queryMarkVerified = `UPDATE otp_verifications
	SET is_verified = TRUE, status = 'VERIFIED', verified_at = $2, updated_at = $2
	WHERE id = $1 AND is_verified = FALSE
	RETURNING ` + otpColumns
)

// IncrementOTPAttempts counts one verification attempt in a single statement.
// ErrNotFound means the record left the active state in the meantime.
func (s *DB) IncrementOTPAttempts(ctx context.Context, id string, now time.Time) (_ *entity.OTP, err error) {
	ctx, span := s.startSpan(ctx, "IncrementOTPAttempts")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx, queryIncrementAttempts, id, now, entity.MaxAttempts)
	return s.collectOne(rows, err)
}

// MarkOTPExhausted is a no-op when the record is already terminal.
func (s *DB) MarkOTPExhausted(ctx context.Context, id string, now time.Time) (err error) {
	ctx, span := s.startSpan(ctx, "MarkOTPExhausted")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, queryMarkExhausted, id, now)
	err = s.mapError(err)
	return err
}

func (s *DB) MarkOTPVerified(ctx context.Context, id string, now time.Time) (_ *entity.OTP, err error) {
	ctx, span := s.startSpan(ctx, "MarkOTPVerified")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx, queryMarkVerified, id, now)
	return s.collectOne(rows, err)
}
