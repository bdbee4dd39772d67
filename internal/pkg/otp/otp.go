package otp

import (
	"crypto/rand"
	"io"
	"math/big"
	"strconv"
)

const (
	minCode = 1000
	maxCode = 9999
)

// Generator produces a fresh code on every call.
type Generator interface {
	Generate() (string, error)
}

// NumericCode draws codes from a cryptographic source.
type NumericCode struct {
	rand io.Reader
}

func NewNumericCode() *NumericCode {
	return &NumericCode{rand: rand.Reader}
}

func (n *NumericCode) Generate() (string, error) {
	v, err := rand.Int(n.rand, big.NewInt(maxCode-minCode+1))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(v.Int64()+minCode, 10), nil
}
