package errors

import (
	"strings"
)

// MinRails is the smallest rail count that forms a fence.
const MinRails = 2

// ValidateRails checks that a rail count is usable by the cipher.
func ValidateRails(rails int) error {
	if rails < MinRails {
		return New(ErrCodeInvalidRails, "number of rails must be at least %d, got %d", MinRails, rails)
	}
	return nil
}

// maxMediaTypeLength bounds the header of a data URL.
const maxMediaTypeLength = 128

// ValidateDataURL checks that s looks like a base64 data URL:
//
//	data:<media type>;base64,<payload>
//
// Only the header is inspected; the payload is decoded by the caller.
func ValidateDataURL(s string) error {
	if s == "" {
		return New(ErrCodeInvalidImage, "image data cannot be empty")
	}
	if !strings.HasPrefix(s, "data:") {
		return New(ErrCodeInvalidImage, "image data must be a data URL")
	}

	header, _, ok := strings.Cut(s, ",")
	if !ok {
		return New(ErrCodeInvalidImage, "data URL has no payload")
	}
	if len(header) > maxMediaTypeLength {
		return New(ErrCodeInvalidImage, "data URL header too long (max %d characters)", maxMediaTypeLength)
	}
	if !strings.HasSuffix(header, ";base64") {
		return New(ErrCodeInvalidImage, "data URL must be base64 encoded")
	}
	return nil
}
