package services

import (
	"fmt"
	"strings"
	"time"

	"fonegitim-api-io/api/pkg/models"

	"github.com/pkg/errors"
)

// Sentinel errors for the verification flow. FORBIDDEN deliberately covers
// both "not yours" and "does not exist" on student-facing calls so responses
// cannot be used to enumerate records; ErrNotFound is reserved for contexts
// with no ownership ambiguity (admin review).
var (
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("record not found")
	ErrVersionConflict = errors.New("version conflict: record was modified concurrently, re-fetch and retry")
	ErrIllegalState    = errors.New("operation is not valid for the current verification status")
)

// MissingDocumentsError names the document types that must still be uploaded
// before a submission is accepted.
type MissingDocumentsError struct {
	Missing []models.DocumentType
}

func (e *MissingDocumentsError) Error() string {
	parts := make([]string, len(e.Missing))
	for i, docType := range e.Missing {
		parts[i] = string(docType)
	}
	return fmt.Sprintf("submission requirements not met, missing: %s", strings.Join(parts, ", "))
}

// RateLimitError is retryable after ResetAt.
type RateLimitError struct {
	ResetAt time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("too many submission attempts, retry after %s", e.ResetAt.Format(time.RFC3339))
}

// IsRetryable reports whether the caller may retry the same logical request
// (after re-fetching or waiting). Only version conflicts and rate limits
// qualify.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrVersionConflict) {
		return true
	}
	var rle *RateLimitError
	return errors.As(err, &rle)
}
