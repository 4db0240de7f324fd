package docpack

import "errors"

// Encode-side failures. Each is surfaced as-is (wrapped with context via
// fmt.Errorf) and aborts the current frame; the destination's trailing
// bytes are unspecified afterwards and must be discarded by the caller.
var (
	ErrSinkWrite        = errors.New("sink write failed")
	ErrScratchExhausted = errors.New("scratch space exhausted")
	ErrSharedConflict   = errors.New("shared registry conflict")
	ErrFrameTooLarge    = errors.New("frame exceeds 4 GiB")
)

// Decode-side failures. Checksum and truncation errors come from the
// walking layer; tag and bounds errors from validated access.
var (
	ErrChecksumMismatch = errors.New("frame checksum mismatch")
	ErrTruncatedFrame   = errors.New("truncated frame")
	ErrMalformedTag     = errors.New("malformed value tag")
	ErrOutOfBounds      = errors.New("offset out of bounds")
)
