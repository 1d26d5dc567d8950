package errors

import "errors"

var (
	ErrPermissionDenied = errors.New("PERMISSION_DENIED")
	ErrValidation       = errors.New("VALIDATION")
	ErrConflict         = errors.New("CONFLICT")
	ErrNotFound         = errors.New("NOT_FOUND")
	ErrBusy             = errors.New("BUSY")
	ErrUnavailable      = errors.New("UNAVAILABLE")
	ErrUnauthorized     = errors.New("UNAUTHORIZED")
)

// DomainError представляет доменную ошибку с кодом и сообщением
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError создает новую доменную ошибку
func NewDomainError(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// PermissionDenied — локальный отказ проверки прав, без сетевого вызова
func PermissionDenied(message string) *DomainError {
	return NewDomainError("PERMISSION_DENIED", message, ErrPermissionDenied)
}

// Validation — некорректный ввод, отловленный до отправки запроса
func Validation(message string) *DomainError {
	return NewDomainError("VALIDATION", message, ErrValidation)
}

// Busy — для той же сущности уже выполняется мутация
func Busy(message string) *DomainError {
	return NewDomainError("BUSY", message, ErrBusy)
}

// ByCode возвращает sentinel-ошибку по коду из ответа сервера
func ByCode(code string) error {
	switch code {
	case "PERMISSION_DENIED":
		return ErrPermissionDenied
	case "VALIDATION", "INVALID_INPUT":
		return ErrValidation
	case "CONFLICT":
		return ErrConflict
	case "NOT_FOUND":
		return ErrNotFound
	case "BUSY":
		return ErrBusy
	case "UNAUTHORIZED":
		return ErrUnauthorized
	default:
		return ErrUnavailable
	}
}
