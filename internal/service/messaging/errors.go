package messaging

import "errors"

// Error kinds. Match with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrStorage    = errors.New("storage failure")
)

// Error codes surfaced to clients.
const (
	CodeSelfMessage        = "self_message"
	CodeUnknownParticipant = "unknown_participant"
	CodeEmptyBody          = "empty_body"
	CodeBodyTooLarge       = "body_too_large"
	CodeInvalidKind        = "invalid_kind"
	CodeMessageNotFound    = "message_not_found"
	CodeStorageFailure     = "storage_failure"
)

// Error carries a kind, a stable code and a human-readable message.
type Error struct {
	Kind    error
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Is matches the error kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

func validationError(code, msg string) *Error {
	return &Error{Kind: ErrValidation, Code: code, Message: msg}
}

func notFoundError(msg string, err error) *Error {
	return &Error{Kind: ErrNotFound, Code: CodeMessageNotFound, Message: msg, Err: err}
}

func storageError(op string, err error) *Error {
	return &Error{Kind: ErrStorage, Code: CodeStorageFailure, Message: op, Err: err}
}

// CodeOf returns the stable code of err, or "" if err is not an *Error.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
