// Package apperr mendefinisikan taksonomi error service sebagai nilai.
// Service mengembalikan *Error; controller yang memutuskan presentasi HTTP.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindValidation Kind = iota + 1
	KindConflict
	KindNotFound
	KindInvalidState
)

type Error struct {
	Kind    Kind
	Message string
	// Fields hanya terisi untuk KindValidation (field → daftar pesan)
	Fields map[string][]string
	// Entity hanya terisi untuk KindConflict (mis. batch yang jadwalnya bentrok)
	Entity any
}

func (e *Error) Error() string {
	return e.Message
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validation(message string, fields map[string][]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

func Conflict(message string, entity any) *Error {
	return &Error{Kind: KindConflict, Message: message, Entity: entity}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func InvalidState(message string) *Error {
	return &Error{Kind: KindInvalidState, Message: message}
}

// KindOf mengembalikan Kind dari err, atau 0 kalau bukan *Error.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return 0
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// AsError mengekstrak *Error dari rantai err.
func AsError(err error) (*Error, bool) {
	var ae *Error
	ok := errors.As(err, &ae)
	return ae, ok
}
