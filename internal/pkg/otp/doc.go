// Package otp generates the numeric codes sent to phones.
//
// Codes are four digits drawn uniformly from 1000-9999, so the leading
// digit is never zero.
package otp
