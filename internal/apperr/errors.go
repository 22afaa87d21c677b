// Package apperr 는 mealbook 전 계층이 공유하는 오류 분류를 정의한다.
package apperr

import (
	"errors"
	"fmt"
)

// Kind 오류 분류
type Kind string

const (
	KindNotFound   Kind = "not_found"
	KindValidation Kind = "validation"
	KindConflict   Kind = "conflict"
	KindCapacity   Kind = "capacity"
	KindTransport  Kind = "transport"
	KindFormat     Kind = "format"
)

// Error 분류가 붙은 오류. Message 는 사용자에게 그대로 노출된다.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New 하위 오류 없는 분류 오류 (주로 센티널 용도)
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap 하위 오류를 분류와 메시지로 감싼다
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// NotFound not_found 오류
func NotFound(message string, err error) *Error { return Wrap(KindNotFound, message, err) }

// Validation validation 오류
func Validation(message string) *Error { return New(KindValidation, message) }

// Transport 오브젝트 스토어/스프레드시트 API 전송 오류
func Transport(message string, err error) *Error { return Wrap(KindTransport, message, err) }

// Format 워크북 파싱/레이아웃 오류
func Format(message string, err error) *Error { return Wrap(KindFormat, message, err) }

// KindOf 오류 체인에서 처음 만나는 분류를 반환한다. 없으면 빈 문자열.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// MessageOf 오류 체인에서 처음 만나는 사용자 메시지
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// Is 오류 체인에 해당 분류가 있는지 확인한다
func Is(err error, kind Kind) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Err
	}
	return false
}
