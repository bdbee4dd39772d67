package sms

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	DriverUnifonic = "unifonic"
	DriverSNS      = "sns"
)

var ErrUnknownDriver = errors.New("sms: unknown driver")

type FactoryOptions struct {
	Unifonic UnifonicOptions
	SNS      SNSOptions
}

// NewFromDriver constructs a Sender by driver name.
func NewFromDriver(ctx context.Context, driver string, opts FactoryOptions) (Sender, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverUnifonic, "":
		return NewUnifonic(opts.Unifonic), nil
	case DriverSNS:
		return NewSNS(ctx, opts.SNS)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
}
