package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents different types of errors in the system
type ErrorType string

const (
	// ErrorTypeSchema indicates the input table's column set violated the schema contract
	ErrorTypeSchema ErrorType = "SCHEMA"

	// ErrorTypeLookup indicates no registry match was found for a facility code
	ErrorTypeLookup ErrorType = "LOOKUP"

	// ErrorTypeTransport indicates a network or protocol failure against the registry service
	ErrorTypeTransport ErrorType = "TRANSPORT"

	// ErrorTypeDataQuality indicates unparseable source data (e.g. a malformed bed quantity)
	ErrorTypeDataQuality ErrorType = "DATA_QUALITY"

	// ErrorTypeStorage indicates the cache or another storage backend is unreadable/unwritable
	ErrorTypeStorage ErrorType = "STORAGE"

	// ErrorTypeInternal indicates an internal error
	ErrorTypeInternal ErrorType = "INTERNAL"
)

// AppError represents an application error
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewSchemaError creates a new schema contract error
func NewSchemaError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeSchema,
		Message: message,
	}
}

// NewLookupError creates a new registry lookup error
func NewLookupError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeLookup,
		Message: message,
	}
}

// NewTransportError creates a new transport error
func NewTransportError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeTransport,
		Message: message,
		Err:     err,
	}
}

// NewDataQualityError creates a new data quality error
func NewDataQualityError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeDataQuality,
		Message: message,
	}
}

// NewStorageError creates a new storage error
func NewStorageError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeStorage,
		Message: message,
		Err:     err,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Err:     err,
	}
}

// IsType reports whether err is an AppError of the given type anywhere in its chain
func IsType(err error, t ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == t
	}
	return false
}

// IsSchema reports whether err is a schema error
func IsSchema(err error) bool { return IsType(err, ErrorTypeSchema) }

// IsLookup reports whether err is a lookup error
func IsLookup(err error) bool { return IsType(err, ErrorTypeLookup) }

// IsTransport reports whether err is a transport error
func IsTransport(err error) bool { return IsType(err, ErrorTypeTransport) }

// IsDataQuality reports whether err is a data quality error
func IsDataQuality(err error) bool { return IsType(err, ErrorTypeDataQuality) }

// IsStorage reports whether err is a storage error
func IsStorage(err error) bool { return IsType(err, ErrorTypeStorage) }
