// Package uid generates identifiers.
//
// Records use time-ordered UUIDv7 strings; broker events carry snowflake
// numbers so consumers can de-duplicate and order them cheaply.
package uid

// StringID generates string identifiers.
type StringID interface {
	Generate() string
}

// NumberID generates numeric identifiers.
type NumberID interface {
	Generate() int64
}
