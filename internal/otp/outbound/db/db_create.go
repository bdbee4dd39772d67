package db

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/otpgate/internal/otp/entity"
)

const (
	queryLockKey = `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`

	querySupersede = `UPDATE otp_verifications
	SET is_verified = TRUE, status = 'SUPERSEDED', updated_at = $4
	WHERE entity_type = $1 AND entity_id = $2 AND purpose = $3 AND is_verified = FALSE`

	queryInsert = `INSERT INTO otp_verifications
	(id, entity_type, entity_id, phone_number, purpose, otp_code, expires_at,
	 attempts, is_verified, status, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, 0, FALSE, 'ACTIVE', $8, $8)`
)

// CreateOTP supersedes every unverified record of the key and inserts in as
// the new active one. Both writes share a transaction that holds the key's
// advisory lock, so concurrent creates for one key run one after another.
func (s *DB) CreateOTP(ctx context.Context, in entity.OTP) (superseded int64, err error) {
	ctx, span := s.startSpan(ctx, "CreateOTP")
	defer func() { s.endSpan(span, err) }()

	err = s.withRetry(ctx, func(ctx context.Context) error {
		n, txErr := s.createOTPTx(ctx, in)
		superseded = n
		return txErr
	})
	return superseded, err
}

func (s *DB) createOTPTx(ctx context.Context, in entity.OTP) (int64, error) {
	tx, err := s.conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() {
		if rErr := tx.Rollback(ctx); rErr != nil && !errors.Is(rErr, pgx.ErrTxClosed) {
			slog.ErrorContext(ctx, "failed to rolback", "error", rErr)
		}
	}()

	if _, err := tx.Exec(ctx, queryLockKey, in.Key().LockKey()); err != nil {
		return 0, s.mapError(err)
	}

	tag, err := tx.Exec(ctx, querySupersede, in.EntityType.String(), in.EntityID, in.Purpose.String(), in.CreatedAt)
	if err != nil {
		return 0, s.mapError(err)
	}

	if _, err := tx.Exec(ctx, queryInsert,
		in.ID,
		in.EntityType.String(),
		in.EntityID,
		in.PhoneNumber,
		in.Purpose.String(),
		in.Code,
		in.ExpiresAt,
		in.CreatedAt,
	); err != nil {
		return 0, s.mapError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, s.mapError(err)
	}

	return tag.RowsAffected(), nil
}
