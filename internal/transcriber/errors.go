package transcriber

import "errors"

// SetupError reports a transcriber that cannot succeed until the user changes
// something: a refused API key, a model that is not installed, a missing
// whisper-cli. The next utterance would fail the same way.
type SetupError struct {
	Err error
}

func (e *SetupError) Error() string {
	return "transcriber not set up: " + e.Err.Error()
}

func (e *SetupError) Unwrap() error {
	return e.Err
}

func needsSetup(err error) error {
	return &SetupError{Err: err}
}

// NeedsSetup reports whether err, or anything it wraps, is a SetupError.
func NeedsSetup(err error) bool {
	var setup *SetupError
	return errors.As(err, &setup)
}
