package domain

// ErrorDetail is the serialisable form of a typed error.
type ErrorDetail struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// Result carries either a value or a non-empty list of typed errors, never both
// and never neither.
type Result[T any] struct {
	Response *T           `json:"response,omitempty"`
	Errors   []ErrorDetail `json:"errors,omitempty"`
}

// NewResult builds a Result from a Go (value, error) pair. A nil value with a nil
// error is reported as a PersistenceError so the result is never empty.
func NewResult[T any](v *T, err error) Result[T] {
	if err != nil {
		de := AsError(err)
		return Result[T]{Errors: []ErrorDetail{{Code: de.Code, Message: de.Message}}}
	}
	if v == nil {
		return Result[T]{Errors: []ErrorDetail{{Code: CodePersistenceError, Message: ErrPersistence.Message}}}
	}
	return Result[T]{Response: v}
}

// Failure builds an error-only Result from one or more errors.
func Failure[T any](errs ...error) Result[T] {
	out := Result[T]{}
	for _, err := range errs {
		if err == nil {
			continue
		}
		de := AsError(err)
		out.Errors = append(out.Errors, ErrorDetail{Code: de.Code, Message: de.Message})
	}
	if len(out.Errors) == 0 {
		out.Errors = []ErrorDetail{{Code: CodePersistenceError, Message: ErrPersistence.Message}}
	}
	return out
}

// IsError reports whether the result carries errors.
func (r Result[T]) IsError() bool { return len(r.Errors) > 0 }
