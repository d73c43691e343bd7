package errors

import "net/http"

const (
	CodeFetchFailure      = "FETCH_FAILURE"
	CodeValidationFailure = "VALIDATION_FAILURE"
	CodeWriteFailure      = "WRITE_FAILURE"
)

var (
	// ErrFetchFailure - чтение маршрутов или локаций из хранилища не удалось
	ErrFetchFailure = New(
		CodeFetchFailure,
		"Failed to fetch route information",
		http.StatusServiceUnavailable,
	)

	// ErrValidationFailure - обязательные поля формы не заполнены или некорректны
	ErrValidationFailure = New(
		CodeValidationFailure,
		"Please fill in all required fields",
		http.StatusBadRequest,
	)

	// ErrWriteFailure - хранилище отклонило вставку
	ErrWriteFailure = New(
		CodeWriteFailure,
		"Error updating location",
		http.StatusBadGateway,
	)

	ErrRouteNotFound = New(
		"ROUTE_NOT_FOUND",
		"Route not found",
		http.StatusNotFound,
	)

	ErrDatabaseError = New(
		"DATABASE_ERROR",
		"Database operation failed",
		http.StatusInternalServerError,
	)

	ErrCacheError = New(
		"CACHE_ERROR",
		"Cache operation failed",
		http.StatusInternalServerError,
	)

	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
