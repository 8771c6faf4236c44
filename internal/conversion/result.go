package conversion

import (
	"errors"
	"time"

	"hanzify/internal/pinyin"
)

const (
	FallbackMessage         = "服务暂时不可用，请稍后再试"
	EmptyInputMessage       = "输入不能为空！"
	InvalidCharacterMessage = "输入包含非法字符！只接受字母"
)

type Kind int

const (
	KindNone Kind = iota
	KindEmptyInput
	KindInvalidCharacter
	KindGenerationFailure
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "ok"
	case KindEmptyInput:
		return "empty_input"
	case KindInvalidCharacter:
		return "invalid_character"
	case KindGenerationFailure:
		return "generation_failed"
	default:
		return "unknown"
	}
}

func (k Kind) Rejected() bool {
	return k == KindEmptyInput || k == KindInvalidCharacter
}

// Result is the outcome of one conversion. Err carries internal detail for
// logs and is never shown to users; Message is the user-facing text.
type Result struct {
	OK          bool
	Output      string
	Kind        Kind
	Message     string
	Err         error
	MarkerFound bool
	// Context is the buffer content right after this conversion updated it.
	Context  string
	Duration time.Duration
}

func rejection(err error) Result {
	res := Result{Err: err}
	switch {
	case errors.Is(err, pinyin.ErrEmptyInput):
		res.Kind = KindEmptyInput
		res.Message = EmptyInputMessage
	default:
		res.Kind = KindInvalidCharacter
		res.Message = InvalidCharacterMessage
	}
	return res
}

func failure(err error) Result {
	return Result{Kind: KindGenerationFailure, Message: FallbackMessage, Err: err}
}
