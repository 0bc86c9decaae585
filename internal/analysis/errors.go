package analysis

import "errors"

// ErrMalformedTrack is returned when a track cannot be iterated at all.
// Decoders wrap their own parse failures with it.
var ErrMalformedTrack = errors.New("malformed track")

// ErrInvalidThreshold is returned when the threshold heart rate is not positive
var ErrInvalidThreshold = errors.New("threshold heart rate must be positive")

// ErrEmptySeries is returned when a series has too few points to form an interval
var ErrEmptySeries = errors.New("series needs at least two points")
