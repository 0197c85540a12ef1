package klatt

import "errors"

// Sentinel errors returned by the engine. Callers should compare with
// errors.Is, since every returned error either is one of these or wraps
// one with call-site context via fmt.Errorf's %w verb.
var (
	// ErrInvalidFilterParameter is returned when a filter configurator is
	// called with an out-of-range or non-finite argument.
	ErrInvalidFilterParameter = errors.New("klatt: invalid filter parameter")

	// ErrInvalidPeakGain is returned by AdjustPeakGain when given a
	// non-positive or non-finite gain.
	ErrInvalidPeakGain = errors.New("klatt: invalid peak gain")

	// ErrReusedFrameParams is returned by GenerateFrame when called twice
	// in a row with the same *FrameParams instance.
	ErrReusedFrameParams = errors.New("klatt: frame params instance reused")

	// ErrUnknownGlottalSourceKind is returned when MainParams names a
	// glottal source kind the engine does not implement.
	ErrUnknownGlottalSourceKind = errors.New("klatt: unknown glottal source kind")
)
