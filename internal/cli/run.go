package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"hanzify/internal/conversion"
	"hanzify/internal/pinyin"
)

const (
	banner          = "=== 智能拼音转换系统 v2.2 ==="
	inputPrompt     = "📝 请输入拼音字符串："
	invalidInput    = "❌ 输入包含非法字符！只接受纯字母"
	workingMessage  = "⏳ 正在转换中，请稍候..."
	resultHeading   = "✅ 转换结果："
	canceledMessage = "🛑 操作已取消"
	systemErrorFmt  = "❌ 系统错误：%v"
)

var separator = strings.Repeat("━", 40)

// ErrCanceled is returned by Run when ctx ends before the conversion does.
var ErrCanceled = errors.New("conversion canceled")

type Converter interface {
	Convert(ctx context.Context, raw string) conversion.Result
}

// Runner drives one terminal conversion.
type Runner struct {
	In  io.Reader
	Out io.Writer
}

func (r Runner) Banner() {
	fmt.Fprintf(r.Out, "\n%s\n", banner)
}

// Input picks the string to convert from args, stdin or the default. A
// pending stdin read is abandoned when ctx ends.
func (r Runner) Input(ctx context.Context, args []string, interactive bool) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if !interactive {
		return DefaultInput, nil
	}

	fmt.Fprint(r.Out, inputPrompt)

	type read struct {
		line string
		err  error
	}
	ch := make(chan read, 1)
	go func() {
		line, err := bufio.NewReader(r.In).ReadString('\n')
		ch <- read{line, err}
	}()

	select {
	case got := <-ch:
		if got.err != nil && !errors.Is(got.err, io.EOF) {
			return "", fmt.Errorf("read input: %w", got.err)
		}
		return strings.TrimRight(got.line, "\r\n"), nil
	case <-ctx.Done():
		r.Canceled()
		return "", ErrCanceled
	}
}

// Run converts input and prints the outcome. Rejected input is reported and
// is not an error. A generation failure prints the fallback message as the
// result. Cancellation of ctx abandons the wait and returns ErrCanceled.
func (r Runner) Run(ctx context.Context, conv Converter, input string) error {
	if err := pinyin.Validate(input); err != nil {
		fmt.Fprintln(r.Out, invalidInput)
		return nil
	}
	fmt.Fprintf(r.Out, "\n%s\n", workingMessage)

	done := make(chan conversion.Result, 1)
	go func() { done <- conv.Convert(ctx, input) }()

	var res conversion.Result
	select {
	case res = <-done:
	case <-ctx.Done():
		r.Canceled()
		return ErrCanceled
	}

	if res.Kind.Rejected() {
		fmt.Fprintln(r.Out, invalidInput)
		return nil
	}

	text := res.Output
	if !res.OK {
		text = res.Message
	}
	fmt.Fprintf(r.Out, "\n%s\n%s\n%s\n%s\n", resultHeading, separator, text, separator)
	return nil
}

func (r Runner) Canceled() {
	fmt.Fprintf(r.Out, "\n%s\n", canceledMessage)
}

func (r Runner) SystemError(err error) {
	fmt.Fprintf(r.Out, systemErrorFmt+"\n", err)
}
