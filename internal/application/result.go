package application

// ErrorKind classifies why a use case failed.
type ErrorKind string

const (
	KindNone              ErrorKind = ""
	KindValidation        ErrorKind = "validation"
	KindConflict          ErrorKind = "conflict"
	KindNotFound          ErrorKind = "not_found"
	KindAuthentication    ErrorKind = "authentication"
	KindInsufficientFunds ErrorKind = "insufficient_funds"
	KindInternal          ErrorKind = "internal"
)

// Retryable reports whether the same request may succeed if repeated.
func (k ErrorKind) Retryable() bool { return k == KindInternal }

// Result is what every use case returns. Failures carry a Kind and a message
// safe to show to the caller; internal detail goes to the log only.
type Result[T any] struct {
	Success bool
	Kind    ErrorKind
	Message string
	Data    T
}

func Ok[T any](data T, message string) Result[T] {
	return Result[T]{Success: true, Message: message, Data: data}
}

func Fail[T any](kind ErrorKind, message string) Result[T] {
	return Result[T]{Kind: kind, Message: message}
}
