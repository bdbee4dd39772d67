package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/shandysiswandi/otpgate/internal/pkg/config"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/goroutine"
	"github.com/shandysiswandi/otpgate/internal/pkg/idempotency"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/uid"
	"github.com/shandysiswandi/otpgate/internal/pkg/validator"
	"github.com/stretchr/testify/require"
)

// memDB keeps the same guards as the SQL store.
type memDB struct {
	mu      sync.Mutex
	seq     int64
	rows    []memRow
	pingErr error
	failOn  string
}

type memRow struct {
	seq int64
	otp entity.OTP
}

func (m *memDB) fail(op string) error {
	if m.failOn == op {
		return errors.New("db: " + op + " failed")
	}
	return nil
}

func (m *memDB) Ping(context.Context) error { return m.pingErr }

func (m *memDB) GetActiveOTP(_ context.Context, key entity.Key, now time.Time) (*entity.OTP, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("get"); err != nil {
		return nil, err
	}

	var best *memRow
	for i := range m.rows {
		r := &m.rows[i]
		if r.otp.Key() != key || r.otp.IsVerified || !r.otp.ExpiresAt.After(now) {
			continue
		}
		if best == nil || r.otp.CreatedAt.After(best.otp.CreatedAt) ||
			(r.otp.CreatedAt.Equal(best.otp.CreatedAt) && r.seq > best.seq) {
			best = r
		}
	}
	if best == nil {
		return nil, goerror.ErrNotFound
	}
	out := best.otp
	return &out, nil
}

func (m *memDB) CreateOTP(_ context.Context, in entity.OTP) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("create"); err != nil {
		return 0, err
	}

	var n int64
	for i := range m.rows {
		r := &m.rows[i]
		if r.otp.Key() == in.Key() && !r.otp.IsVerified {
			r.otp.IsVerified = true
			r.otp.Status = entity.StatusSuperseded
			r.otp.UpdatedAt = in.CreatedAt
			n++
		}
	}
	m.seq++
	m.rows = append(m.rows, memRow{seq: m.seq, otp: in})
	return n, nil
}

func (m *memDB) find(id string) *entity.OTP {
	for i := range m.rows {
		if m.rows[i].otp.ID == id {
			return &m.rows[i].otp
		}
	}
	return nil
}

func (m *memDB) IncrementOTPAttempts(_ context.Context, id string, now time.Time) (*entity.OTP, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("increment"); err != nil {
		return nil, err
	}

	o := m.find(id)
	if o == nil || o.IsVerified || !o.ExpiresAt.After(now) || o.Attempts >= entity.MaxAttempts {
		return nil, goerror.ErrNotFound
	}
	o.Attempts++
	o.UpdatedAt = now
	out := *o
	return &out, nil
}

func (m *memDB) MarkOTPExhausted(_ context.Context, id string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("exhaust"); err != nil {
		return err
	}

	if o := m.find(id); o != nil && !o.IsVerified {
		o.IsVerified = true
		o.Status = entity.StatusExhausted
		o.UpdatedAt = now
	}
	return nil
}

func (m *memDB) MarkOTPVerified(_ context.Context, id string, now time.Time) (*entity.OTP, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("verified"); err != nil {
		return nil, err
	}

	o := m.find(id)
	if o == nil || o.IsVerified {
		return nil, goerror.ErrNotFound
	}
	o.IsVerified = true
	o.Status = entity.StatusVerified
	o.VerifiedAt = &now
	o.UpdatedAt = now
	out := *o
	return &out, nil
}

func (m *memDB) byID(id string) entity.OTP {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.find(id)
}

type memSMS struct {
	mu   sync.Mutex
	sent []entity.OTP
	err  error
}

func (m *memSMS) SendOTP(_ context.Context, o entity.OTP) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, o)
	return m.err
}

func (m *memSMS) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type memMQ struct {
	mu        sync.Mutex
	issued    []OTPIssuedEvent
	verified  []OTPVerifiedEvent
	exhausted []OTPExhaustedEvent
	err       error
}

func (m *memMQ) PublishOTPIssued(_ context.Context, msg OTPIssuedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.issued = append(m.issued, msg)
	return m.err
}

func (m *memMQ) PublishOTPVerified(_ context.Context, msg OTPVerifiedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verified = append(m.verified, msg)
	return m.err
}

func (m *memMQ) PublishOTPExhausted(_ context.Context, msg OTPExhaustedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exhausted = append(m.exhausted, msg)
	return m.err
}

// memIdempotency mirrors the redis tracker without expiry.
type memIdempotency struct {
	mu    sync.Mutex
	state map[string]idempotency.State
}

func (m *memIdempotency) Exec(ctx context.Context, key string, fn func(context.Context) error) error {
	m.mu.Lock()
	switch m.state[key] {
	case idempotency.StateInProgress:
		m.mu.Unlock()
		return idempotency.ErrAlreadyInProgress
	case idempotency.StateCompleted:
		m.mu.Unlock()
		return idempotency.ErrAlreadyCompleted
	}
	m.state[key] = idempotency.StateInProgress
	m.mu.Unlock()

	err := fn(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		delete(m.state, key)
		return err
	}
	m.state[key] = idempotency.StateCompleted
	return nil
}

// seqCodes hands out predictable codes: 1001, 1002, ...
type seqCodes struct {
	mu sync.Mutex
	n  int
}

func (s *seqCodes) Generate() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("%04d", 1000+s.n), nil
}

type fixture struct {
	uc    *Usecase
	db    *memDB
	sms   *memSMS
	mq    *memMQ
	clock *clock.Frozen
}

func newFixture(t *testing.T, yaml string) *fixture {
	t.Helper()

	v, err := validator.NewV10Validator()
	require.NoError(t, err)
	cfg, err := config.NewViperFromBytes("yaml", []byte(yaml))
	require.NoError(t, err)

	f := &fixture{
		db:    &memDB{},
		sms:   &memSMS{},
		mq:    &memMQ{},
		clock: clock.NewFrozen(time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)),
	}
	f.uc = New(Dependency{
		RepoDB:        f.db,
		RepoMessaging: f.mq,
		RepoSMS:       f.sms,
		Idempotency:   &memIdempotency{state: map[string]idempotency.State{}},
		Validator:     v,
		Config:        cfg,
		UUID:          uid.NewUUID(),
		Code:          &seqCodes{},
		Clock:         f.clock,
		Instrument:    instrument.NewNoop(),
		Goroutine:     goroutine.NewManager(4),
	})
	return f
}

const (
	testEntityID = "5b0f6a5e-2c1d-4f3a-8e9b-7c6d5e4f3a21"
	testPhone    = "966501234567"
)

func createInput(purpose entity.Purpose) CreateInput {
	return CreateInput{
		EntityType:  entity.EntityTypeUser,
		EntityID:    testEntityID,
		PhoneNumber: testPhone,
		Purpose:     purpose,
	}
}

func verifyInput(purpose entity.Purpose, code string) VerifyInput {
	return VerifyInput{
		EntityType: entity.EntityTypeUser.String(),
		EntityID:   testEntityID,
		Purpose:    purpose.String(),
		OTPCode:    code,
	}
}

func findInput(purpose entity.Purpose) FindActiveInput {
	return FindActiveInput{EntityType: entity.EntityTypeUser, EntityID: testEntityID, Purpose: purpose}
}

func wrongCode(code string) string {
	if code == "9999" {
		return "1000"
	}
	return "9999"
}

func requireCode(t *testing.T, err error, code goerror.Code) {
	t.Helper()
	var gerr *goerror.Error
	require.ErrorAs(t, err, &gerr)
	require.Equal(t, code, gerr.Code())
}

func countActive(db *memDB, key entity.Key, now time.Time) int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(slices.DeleteFunc(slices.Clone(db.rows), func(r memRow) bool {
		return r.otp.Key() != key || !r.otp.IsActive(now)
	}))
}
