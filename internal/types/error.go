package types

import "fmt"

// Error type identifiers used across the service.
const (
	TypeInvalidSchema   = "schema.invalid"
	TypeModelNotFound   = "model.notfound"
	TypeRecordNotFound  = "record.notfound"
	TypeUnauthenticated = "auth.unauthenticated"
	TypeForbidden       = "auth.forbidden"
	TypeCollaborator    = "collaborator"
)

type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("%d: %s [type: %s]", e.Code, e.Message, e.Type)
}

// InvalidSchema reports a model descriptor that failed validation.
func InvalidSchema(format string, args ...interface{}) *CustomError {
	return &CustomError{Code: 400, Message: fmt.Sprintf(format, args...), Type: TypeInvalidSchema}
}

// ModelNotFound reports an operation against an unregistered model name.
func ModelNotFound(name string) *CustomError {
	return &CustomError{Code: 404, Message: fmt.Sprintf("Model '%s' not found", name), Type: TypeModelNotFound}
}

// RecordNotFound reports an operation against a nonexistent record id.
func RecordNotFound(modelName, id string) *CustomError {
	return &CustomError{Code: 404, Message: fmt.Sprintf("Record '%s' not found in model '%s'", id, modelName), Type: TypeRecordNotFound}
}

// Unauthenticated reports a missing or invalid caller credential.
func Unauthenticated(format string, args ...interface{}) *CustomError {
	return &CustomError{Code: 401, Message: fmt.Sprintf(format, args...), Type: TypeUnauthenticated}
}

// Forbidden reports an authenticated caller lacking permission or ownership.
func Forbidden(format string, args ...interface{}) *CustomError {
	return &CustomError{Code: 403, Message: fmt.Sprintf(format, args...), Type: TypeForbidden}
}

// Collaborator reports a failed descriptor store or record store operation.
func Collaborator(err error) *CustomError {
	return &CustomError{Code: 500, Message: err.Error(), Type: TypeCollaborator}
}

// IsType reports whether err is a CustomError of the given type.
func IsType(err error, errType string) bool {
	ce, ok := err.(*CustomError)
	return ok && ce.Type == errType
}
