package session

import "errors"

var (
	ErrAlreadyStarted = errors.New("session already started")
	ErrClosed         = errors.New("session closed")
	ErrNotStarted     = errors.New("session not started")
)

// RecognizerStartError: recording never began; the indicator was rolled back.
type RecognizerStartError struct {
	Err error
}

func (e *RecognizerStartError) Error() string {
	return "start recording: " + errString(e.Err)
}

func (e *RecognizerStartError) Unwrap() error { return e.Err }

func IsRecognizerStartError(err error) bool {
	var target *RecognizerStartError
	return errors.As(err, &target)
}

// TranscriptionError: the utterance was lost and nothing was typed.
type TranscriptionError struct {
	Err error
}

func (e *TranscriptionError) Error() string {
	return "transcription: " + errString(e.Err)
}

func (e *TranscriptionError) Unwrap() error { return e.Err }

func IsTranscriptionError(err error) bool {
	var target *TranscriptionError
	return errors.As(err, &target)
}

// InjectionError: typing or retracting failed after the utterance was
// consumed. Nothing is pushed onto the undo stack.
type InjectionError struct {
	Op  string
	Err error
}

func (e *InjectionError) Error() string {
	return e.Op + ": " + errString(e.Err)
}

func (e *InjectionError) Unwrap() error { return e.Err }

func IsInjectionError(err error) bool {
	var target *InjectionError
	return errors.As(err, &target)
}

func errString(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
