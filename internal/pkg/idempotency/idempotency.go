// Package idempotency guards client-retried operations behind a Redis key.
//
// A key moves from absent to in_progress when a caller acquires it, and to
// completed when the guarded function succeeds. A failed function releases
// the key so the client may retry with the same value.
package idempotency

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrAlreadyInProgress = errors.New("idempotency: operation already in progress")
	ErrAlreadyCompleted  = errors.New("idempotency: operation already completed")
	ErrInvalidState      = errors.New("idempotency: invalid state")
)

type State string

const (
	StateNone       State = "none"
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
)

func (s State) String() string {
	return string(s)
}

type Idempotency interface {
	Exec(ctx context.Context, key string, fn func(context.Context) error) error
}

// Option customizes a Tracker.
type Option func(*Tracker)

// WithPrefix namespaces the stored keys.
func WithPrefix(prefix string) Option {
	return func(t *Tracker) { t.prefix = prefix }
}

// WithLockDuration bounds how long an in-progress marker survives a crashed caller.
func WithLockDuration(d time.Duration) Option {
	return func(t *Tracker) {
		if d > 0 {
			t.lock = d
		}
	}
}

// WithStateTTL sets how long a completed marker is remembered.
func WithStateTTL(d time.Duration) Option {
	return func(t *Tracker) {
		if d > 0 {
			t.ttl = d
		}
	}
}

type Tracker struct {
	client redis.UniversalClient
	prefix string
	lock   time.Duration
	ttl    time.Duration
}

func New(client redis.UniversalClient, opts ...Option) *Tracker {
	t := &Tracker{
		client: client,
		prefix: "idempotency:",
		lock:   time.Minute,
		ttl:    10 * time.Minute,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tracker) acquire(ctx context.Context, key string) (State, error) {
	ok, err := t.client.SetNX(ctx, key, StateInProgress.String(), t.lock).Result()
	if err != nil {
		return StateNone, err
	}
	if ok {
		return StateNone, nil
	}

	current, err := t.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		// expired between SETNX and GET
		return t.acquire(ctx, key)
	}
	if err != nil {
		return StateNone, err
	}

	switch State(current) {
	case StateInProgress, StateCompleted:
		return State(current), nil
	default:
		return StateNone, ErrInvalidState
	}
}

// Exec runs fn at most once per key within the state TTL.
func (t *Tracker) Exec(ctx context.Context, key string, fn func(context.Context) error) error {
	fk := t.prefix + key

	state, err := t.acquire(ctx, fk)
	if err != nil {
		return err
	}

	switch state {
	case StateInProgress:
		return ErrAlreadyInProgress
	case StateCompleted:
		return ErrAlreadyCompleted
	}

	if err := fn(ctx); err != nil {
		if delErr := t.client.Del(context.WithoutCancel(ctx), fk).Err(); delErr != nil {
			return errors.Join(err, delErr)
		}
		return err
	}

	return t.client.Set(context.WithoutCancel(ctx), fk, StateCompleted.String(), t.ttl).Err()
}
