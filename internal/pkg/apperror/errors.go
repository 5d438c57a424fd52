package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorCode string

const (
	ErrCodeNotFound          ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized      ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden         ErrorCode = "FORBIDDEN"
	ErrCodeBadRequest        ErrorCode = "BAD_REQUEST"
	ErrCodeConflict          ErrorCode = "CONFLICT"
	ErrCodeInternal          ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation        ErrorCode = "VALIDATION_ERROR"
	ErrCodeIncomplete        ErrorCode = "INCOMPLETE_PROPOSAL"
	ErrCodeInvalidSignature  ErrorCode = "INVALID_SIGNATURE"
	ErrCodeNotSignable       ErrorCode = "NOT_SIGNABLE"
	ErrCodeMissingSignature  ErrorCode = "MISSING_SIGNATURE"
	ErrCodeVersionNotFound   ErrorCode = "VERSION_NOT_FOUND"
	ErrCodeInvalidTransition ErrorCode = "INVALID_STATUS_TRANSITION"
	ErrCodeLocked            ErrorCode = "PROPOSAL_LOCKED"
	ErrCodeVersionConflict   ErrorCode = "VERSION_CONFLICT"
	ErrCodePersistence       ErrorCode = "PERSISTENCE_ERROR"
)

// AppError описывает ошибку приложения с кодом, понятным клиенту.
// Fields перечисляет поля или секции документа, к которым относится ошибка.
type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Fields     []string
	Cause      error
}

func (e *AppError) Error() string {
	msg := e.Message
	if len(e.Fields) > 0 {
		msg = fmt.Sprintf("%s [%s]", msg, strings.Join(e.Fields, ", "))
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

// Validation сообщает, что секция документа отклонена при записи.
func Validation(section, reason string) *AppError {
	e := New(ErrCodeValidation, reason)
	e.Fields = []string{section}
	return e
}

// IncompleteProposal перечисляет все незаполненные поля, мешающие отправке.
func IncompleteProposal(fields ...string) *AppError {
	e := New(ErrCodeIncomplete, "предложение заполнено не полностью")
	e.Fields = fields
	return e
}

func InvalidSignature(reason string) *AppError {
	e := New(ErrCodeInvalidSignature, reason)
	e.Fields = []string{"signature"}
	return e
}

func NotSignable(status string) *AppError {
	return New(ErrCodeNotSignable, fmt.Sprintf("предложение в статусе %q нельзя подписать или принять", status))
}

func MissingSignature() *AppError {
	e := New(ErrCodeMissingSignature, "предложение не подписано клиентом")
	e.Fields = []string{"signature"}
	return e
}

func VersionNotFound(versionID string) *AppError {
	return New(ErrCodeVersionNotFound, fmt.Sprintf("версия %s не найдена", versionID))
}

func InvalidTransition(from, to string) *AppError {
	return New(ErrCodeInvalidTransition, fmt.Sprintf("переход из статуса %q в %q невозможен", from, to))
}

func Locked(status string) *AppError {
	return New(ErrCodeLocked, fmt.Sprintf("предложение в статусе %q больше нельзя редактировать", status))
}

func VersionConflict(expected, actual int) *AppError {
	return New(ErrCodeVersionConflict, fmt.Sprintf("документ изменён параллельно: ожидалась версия %d, текущая %d", expected, actual))
}

// Persistence оборачивает сбой хранилища без интерпретации причины.
func Persistence(err error, message string) *AppError {
	return Wrap(err, ErrCodePersistence, message)
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound, ErrCodeVersionNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeBadRequest, ErrCodeValidation, ErrCodeInvalidSignature:
		return http.StatusBadRequest
	case ErrCodeIncomplete:
		return http.StatusUnprocessableEntity
	case ErrCodeConflict, ErrCodeNotSignable, ErrCodeMissingSignature,
		ErrCodeInvalidTransition, ErrCodeLocked, ErrCodeVersionConflict:
		return http.StatusConflict
	case ErrCodePersistence:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// HasCode проверяет код ошибки по всей цепочке обёрток.
func HasCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

func IsNotFound(err error) bool {
	return HasCode(err, ErrCodeNotFound) || HasCode(err, ErrCodeVersionNotFound)
}

func IsForbidden(err error) bool {
	return HasCode(err, ErrCodeForbidden)
}

func IsValidation(err error) bool {
	return HasCode(err, ErrCodeValidation)
}

var (
	ErrProposalNotFound = New(ErrCodeNotFound, "предложение не найдено")
	ErrTemplateNotFound = New(ErrCodeNotFound, "шаблон не найден")
	ErrUnauthorized     = New(ErrCodeUnauthorized, "требуется авторизация")
	ErrForbidden        = New(ErrCodeForbidden, "недостаточно прав")
	ErrInvalidShareLink = New(ErrCodeUnauthorized, "ссылка для просмотра недействительна")
)
