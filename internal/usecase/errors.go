package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

// エラーの種類。HTTPステータスはここで決まる
type ErrorKind string

const (
	KindInvalidInput    ErrorKind = "invalid_input"
	KindUnauthenticated ErrorKind = "unauthenticated"
	KindUnauthorized    ErrorKind = "unauthorized"
	KindForbidden       ErrorKind = "forbidden"
	KindNotFound        ErrorKind = "not_found"
	KindConflict        ErrorKind = "conflict"
	KindInvalidState    ErrorKind = "invalid_state"
	KindRateLimited     ErrorKind = "rate_limited"
	KindInternal        ErrorKind = "internal"
)

// 重複(Conflict)と前提条件違反(InvalidState)も400で返す
func (k ErrorKind) Status() int {
	switch k {
	case KindInvalidInput, KindConflict, KindInvalidState:
		return http.StatusBadRequest
	case KindUnauthenticated, KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

type HTTPError struct {
	Kind    ErrorKind
	Status  int
	Message string
	Err     error // 原因（ログ用。レスポンスには出さない）
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d: %s: %v", e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func NewHTTPError(kind ErrorKind, message string) error {
	return &HTTPError{
		Kind:    kind,
		Status:  kind.Status(),
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// 想定外のエラーは500にまとめる。原因は Err に残す
func Internal(err error) error {
	return &HTTPError{
		Kind:    KindInternal,
		Status:  http.StatusInternalServerError,
		Message: "internal error",
		Err:     err,
	}
}

func InvalidInput(message string) error    { return NewHTTPError(KindInvalidInput, message) }
func Unauthenticated(message string) error { return NewHTTPError(KindUnauthenticated, message) }
func Unauthorized(message string) error    { return NewHTTPError(KindUnauthorized, message) }
func Forbidden(message string) error       { return NewHTTPError(KindForbidden, message) }
func NotFound(message string) error        { return NewHTTPError(KindNotFound, message) }
func Conflict(message string) error        { return NewHTTPError(KindConflict, message) }
func InvalidState(message string) error    { return NewHTTPError(KindInvalidState, message) }

// 種類を取り出す。HTTPError以外は internal
func KindOf(err error) ErrorKind {
	if he, ok := AsHTTPError(err); ok {
		return he.Kind
	}
	return KindInternal
}

// HTTPErrorならそのまま、それ以外は500に包む
func asUsecaseError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := AsHTTPError(err); ok {
		return err
	}
	return Internal(err)
}
