package config

import "errors"

// ErrInvalidFrameScript is returned by ToEngineInputs when the loaded
// FrameScript carries an out-of-domain sample rate or an unrecognized
// glottal source name.
var ErrInvalidFrameScript = errors.New("config: invalid frame script")
