package db

import (
	"context"
	_ "embed"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

//go:embed schema.sql
var schema string

const (
	maxRetries = 3
	retryBase  = 25 * time.Millisecond
)

type DB struct {
	conn *pgxpool.Pool
	ins  instrument.Instrumentation
}

func NewDB(conn *pgxpool.Pool, ins instrument.Instrumentation) *DB {
	return &DB{conn: conn, ins: ins}
}

// Migrate creates the table and indexes when they do not exist yet.
func Migrate(ctx context.Context, conn *pgxpool.Pool) error {
	_, err := conn.Exec(ctx, schema)
	return err
}

// - 23505 unique violation → goerror.ErrConflict
// - 40001 serialization_failure and 40P01 deadlock_detected → retried by withRetry
func (s *DB) mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return goerror.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return goerror.ErrConflict
	}

	return err
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}

func (s *DB) withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	b := retry.WithMaxRetries(maxRetries, retry.NewExponential(retryBase))
	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := fn(ctx)
		if isRetryable(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

func (s *DB) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("otp.outbound.db").Start(ctx, name)
}

func (s *DB) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) && !errors.Is(err, goerror.ErrConflict) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *DB) Ping(ctx context.Context) (err error) {
	ctx, span := s.startSpan(ctx, "Ping")
	defer func() { s.endSpan(span, err) }()

	err = s.conn.Ping(ctx)
	return err
}

const otpColumns = `id::text, entity_type, entity_id::text, phone_number, purpose, otp_code,
	expires_at, attempts, is_verified, status, verified_at, created_at, updated_at`

type otpRow struct {
	ID          string     `db:"id"`
	EntityType  string     `db:"entity_type"`
	EntityID    string     `db:"entity_id"`
	PhoneNumber string     `db:"phone_number"`
	Purpose     string     `db:"purpose"`
	Code        string     `db:"otp_code"`
	ExpiresAt   time.Time  `db:"expires_at"`
	Attempts    int32      `db:"attempts"`
	IsVerified  bool       `db:"is_verified"`
	Status      string     `db:"status"`
	VerifiedAt  *time.Time `db:"verified_at"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

func (r otpRow) toEntity() *entity.OTP {
	return &entity.OTP{
		ID:          r.ID,
		EntityType:  entity.EntityType(r.EntityType),
		EntityID:    r.EntityID,
		PhoneNumber: r.PhoneNumber,
		Purpose:     entity.Purpose(r.Purpose),
		Code:        r.Code,
		ExpiresAt:   r.ExpiresAt,
		Attempts:    r.Attempts,
		IsVerified:  r.IsVerified,
		Status:      entity.Status(r.Status),
		VerifiedAt:  r.VerifiedAt,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func (s *DB) collectOne(rows pgx.Rows, err error) (*entity.OTP, error) {
	if err != nil {
		return nil, s.mapError(err)
	}

	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[otpRow])
	if err != nil {
		return nil, s.mapError(err)
	}

	return row.toEntity(), nil
}
