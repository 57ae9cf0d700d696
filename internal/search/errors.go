package search

import "errors"

// Validation messages returned to clients.
const (
	MsgTextRequired   = "Judul dan deskripsi tidak boleh kosong"
	MsgTechsRequired  = "Teknologi tidak boleh kosong"
	MsgThresholdRange = "Threshold harus di antara 0 dan 1"
)

// ErrModelNotLoaded is returned when the engine has no model assets.
var ErrModelNotLoaded = errors.New("model not loaded")

// ValidationError is a client error. Its message is safe to return verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidation reports whether err is or wraps a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
