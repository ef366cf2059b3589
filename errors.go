package si

import "errors"

// Sentinel errors for fixed decode conditions. All are fatal to the
// current decode; the core never retries.
var (
	// ErrMalformedHeader is returned when the file envelope's magic number
	// does not match, or the fixed header cannot be read in full. A
	// declared length that exceeds the remaining bytes is reported as
	// ErrTruncated.
	ErrMalformedHeader = errors.New("si: malformed header")

	// ErrUnsupportedVersion is returned when the envelope's version field
	// exceeds the version this build understands.
	ErrUnsupportedVersion = errors.New("si: unsupported version")

	// ErrTruncated is returned when a read would go past the end of the
	// backing buffer.
	ErrTruncated = errors.New("si: truncated")

	// ErrBadOpcode is returned when an opcode byte falls in no known
	// category.
	ErrBadOpcode = errors.New("si: bad opcode")

	// ErrUnbalancedGroups is returned when an end-group event arrives at
	// depth 0, or a traversal ends with group depth != 0.
	ErrUnbalancedGroups = errors.New("si: unbalanced groups")

	// ErrBadGradientStopColor is returned when a gradient stop's color is
	// itself a gradient, which is never valid.
	ErrBadGradientStopColor = errors.New("si: gradient stop color must not be a gradient")

	// ErrTraversalIncomplete is returned when a traversal reaches the end
	// of the opcode stream without having consumed every float or
	// matched the envelope's declared path/paint counts.
	ErrTraversalIncomplete = errors.New("si: traversal incomplete")
)
