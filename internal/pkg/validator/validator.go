package validator

// Validator checks a struct against its `validate` tags.
//
// On failure implementations return an error that carries per-field
// messages keyed in snake_case (see V10ValidationError).
type Validator interface {
	Validate(data any) error
}
