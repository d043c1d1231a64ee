package serviceerrors

import "errors"

type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindNotFound
	KindConflict
	KindUnprocessableEntity
	KindInvalidRequest
	KindValidation
	KindTooManyRequests
)

func IsOfKind(err error, kind ErrorKind) bool {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Kind == kind
	}
	return false
}

// FieldError describes one rejected input field.
type FieldError struct {
	Field    string `json:"field"`
	Msg      string `json:"msg"`
	Location string `json:"location"`
	Value    any    `json:"value,omitempty"`
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Msg
}

type ServiceError struct {
	Kind    ErrorKind
	Message string
	Fields  []FieldError
	Cause   error
}

func (e *ServiceError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// FieldsOf returns the field errors carried by a validation error, or nil.
func FieldsOf(err error) []FieldError {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) && svcErr.Kind == KindValidation {
		return svcErr.Fields
	}
	return nil
}

func NewNotFoundError(message string) *ServiceError {
	return &ServiceError{Kind: KindNotFound, Message: message}
}

func NewConflictError(message string) *ServiceError {
	return &ServiceError{Kind: KindConflict, Message: message}
}

func NewUnprocessableEntityError(message string) *ServiceError {
	return &ServiceError{Kind: KindUnprocessableEntity, Message: message}
}

func NewInvalidRequestError(message string) *ServiceError {
	return &ServiceError{Kind: KindInvalidRequest, Message: message}
}

func NewTooManyRequestsError(message string) *ServiceError {
	return &ServiceError{Kind: KindTooManyRequests, Message: message}
}

func NewValidationError(fields []FieldError) *ServiceError {
	return &ServiceError{Kind: KindValidation, Message: "validation error", Fields: fields}
}

func NewInternalError(message string, cause error) *ServiceError {
	return &ServiceError{Kind: KindInternal, Message: message, Cause: cause}
}
