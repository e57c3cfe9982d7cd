package camkit

import "errors"

// Errors reported by the session layer itself. Hardware transport failures
// (claim rejected, mode rejected) propagate as wrapped transport errors
// instead, with the failing subdevice and mode in the message.
var (
	ErrReconfiguration     = errors.New("streams cannot be reconfigured after a subdevice has been opened")
	ErrStreamUnsupported   = errors.New("unsupported stream")
	ErrIncompatibleStreams = errors.New("incompatible stream combination")
	ErrStreamNotEnabled    = errors.New("stream not enabled")
)
