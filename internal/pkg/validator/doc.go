// Package validator wraps go-playground/validator with English messages and
// the digits rule the OTP and gift payloads need.
package validator
