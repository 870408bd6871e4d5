package rag

import (
	"errors"
	"fmt"
)

// MaxQueryLength is the maximum accepted query length in bytes.
const MaxQueryLength = 1000

// Sentinel errors for the retrieval pipeline.
var (
	ErrEmptyQuery      = errors.New("rag: query is empty")
	ErrQueryTooLong    = errors.New("rag: query exceeds max length")
	ErrMalformedResult = errors.New("rag: provider response did not match expected shape")
)

// ValidateQuery checks a query before it reaches fingerprinting or the
// pipeline. Empty and whitespace-only queries are invalid.
func ValidateQuery(query string) error {
	if len(query) > MaxQueryLength {
		return ErrQueryTooLong
	}
	for _, r := range query {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return nil
		}
	}
	return ErrEmptyQuery
}

func malformedResultf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedResult, fmt.Sprintf(format, args...))
}
