package extraction

import (
	"errors"
	"fmt"
)

// Category is the normalized extractor failure taxonomy. The intake
// coordinator treats every category identically; the category only feeds
// logs and metrics.
type Category string

const (
	// CategoryTimeout indicates the extractor exceeded its deadline.
	CategoryTimeout Category = "timeout"

	// CategoryMalformedOutput indicates the extractor produced output that
	// could not be decoded into an observation.
	CategoryMalformedOutput Category = "malformed_output"

	// CategoryUpstreamError indicates the extractor itself failed to run or
	// reported an error.
	CategoryUpstreamError Category = "upstream_error"
)

// ExtractionError wraps extractor failures with a normalized category.
type ExtractionError struct {
	Category   Category
	Message    string
	Underlying error
}

func (e *ExtractionError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("extraction [%s]: %s: %v", e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("extraction [%s]: %s", e.Category, e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Underlying
}

// NewError creates a categorized extraction error.
func NewError(category Category, message string, underlying error) *ExtractionError {
	return &ExtractionError{Category: category, Message: message, Underlying: underlying}
}

// CategoryOf extracts the category from an error, defaulting to
// CategoryUpstreamError for anything unrecognized.
func CategoryOf(err error) Category {
	var ee *ExtractionError
	if errors.As(err, &ee) {
		return ee.Category
	}
	return CategoryUpstreamError
}
