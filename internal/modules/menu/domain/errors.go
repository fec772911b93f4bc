package domain

import (
	"errors"
	"fmt"
)

// ErrorKind エラー種別（HTTPレスポンスの code としてそのまま返す）
type ErrorKind string

const (
	KindValidation      ErrorKind = "VALIDATION_ERROR"
	KindEncoding        ErrorKind = "ENCODING_ERROR"
	KindExtractionParse ErrorKind = "EXTRACTION_PARSE_ERROR"
	KindExtraction      ErrorKind = "EXTRACTION_FAILED"
	KindPersistence     ErrorKind = "PERSISTENCE_ERROR"
	KindNotFound        ErrorKind = "NOT_FOUND"
	KindInternal        ErrorKind = "INTERNAL_ERROR"
)

// Error パイプライン各段の境界で返すエラー
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError 新しいErrorを作成
func NewError(kind ErrorKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// KindOf エラーチェーンから種別を取り出す。domain.Errorを含まなければ KindInternal
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// IsKind エラーチェーンに指定種別のdomain.Errorが含まれるか
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
