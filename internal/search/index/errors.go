package index

import "errors"

// Index errors are operational: they indicate a misconfigured or corrupted
// store and are fatal for the current operation. The store never retries or
// self-heals.
var (
	// ErrMissingField means a reopened index lacks an expected schema field.
	ErrMissingField = errors.New("missing field in schema")
	// ErrMissingTokenizer means the text analyzer is not registered.
	ErrMissingTokenizer = errors.New("missing tokenizer")
	// ErrMissingValue means a stored document lacks a required field value.
	ErrMissingValue = errors.New("missing stored value")
	// ErrInvalidTimestamp means a stored timestamp could not be interpreted.
	ErrInvalidTimestamp = errors.New("invalid stored timestamp")
)
