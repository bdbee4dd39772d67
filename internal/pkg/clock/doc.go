// Package clock keeps time.Now behind an interface.
//
// Expiry math in the OTP lifecycle depends on "now"; business code asks a
// Clocker instead of the runtime so tests can freeze or advance time.
package clock
