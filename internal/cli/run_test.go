package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"hanzify/internal/conversion"
)

type fakeConverter struct {
	res    conversion.Result
	block  chan struct{}
	inputs []string
}

func (f *fakeConverter) Convert(_ context.Context, raw string) conversion.Result {
	f.inputs = append(f.inputs, raw)
	if f.block != nil {
		<-f.block
	}
	return f.res
}

func TestInput(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		interactive bool
		stdin       string
		want        string
		prompted    bool
	}{
		{"argument", []string{"nihao"}, false, "", "nihao", false},
		{"argument wins over interactive", []string{"nihao"}, true, "ignored\n", "nihao", false},
		{"default", nil, false, "", DefaultInput, false},
		{"interactive", nil, true, "zhongguoren\n", "zhongguoren", true},
		{"interactive crlf", nil, true, "tiandi\r\n", "tiandi", true},
		{"interactive eof", nil, true, "shijie", "shijie", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			r := Runner{In: strings.NewReader(tt.stdin), Out: &out}
			got, err := r.Input(context.Background(), tt.args, tt.interactive)
			if err != nil {
				t.Fatalf("Input() error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("Input() = %q, want %q", got, tt.want)
			}
			if strings.Contains(out.String(), inputPrompt) != tt.prompted {
				t.Fatalf("unexpected prompt output: %q", out.String())
			}
		})
	}
}

func TestInputCanceledWhileWaitingForStdin(t *testing.T) {
	pr, pw := io.Pipe()
	defer func() { _ = pw.Close() }()

	var out bytes.Buffer
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := (Runner{In: pr, Out: &out}).Input(ctx, nil, true)
	if !errors.Is(err, ErrCanceled) {
		t.Fatalf("Input() error = %v, want ErrCanceled", err)
	}
	if !strings.Contains(out.String(), canceledMessage) {
		t.Fatalf("expected cancel message, got %q", out.String())
	}
}

func TestRunPrintsResultBetweenSeparators(t *testing.T) {
	var out bytes.Buffer
	conv := &fakeConverter{res: conversion.Result{OK: true, Output: "天地。"}}
	if err := (Runner{Out: &out}).Run(context.Background(), conv, "tiandi"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := "\n" + resultHeading + "\n" + strings.Repeat("━", 40) + "\n天地。\n" + strings.Repeat("━", 40) + "\n"
	if !strings.HasSuffix(out.String(), want) {
		t.Fatalf("unexpected output:\n%s", out.String())
	}
}

func TestRunRejectsInvalidInputWithoutConverting(t *testing.T) {
	for _, input := range []string{"", "ni hao", "abc123", "拼音"} {
		var out bytes.Buffer
		conv := &fakeConverter{}
		if err := (Runner{Out: &out}).Run(context.Background(), conv, input); err != nil {
			t.Fatalf("Run(%q) error = %v", input, err)
		}
		if strings.TrimSpace(out.String()) != invalidInput {
			t.Fatalf("Run(%q) output = %q", input, out.String())
		}
		if len(conv.inputs) != 0 {
			t.Fatalf("Run(%q) should not reach the converter", input)
		}
	}
}

func TestRunPrintsFallbackOnGenerationFailure(t *testing.T) {
	var out bytes.Buffer
	conv := &fakeConverter{res: conversion.Result{Kind: conversion.KindGenerationFailure, Message: conversion.FallbackMessage}}
	if err := (Runner{Out: &out}).Run(context.Background(), conv, "tiandi"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "\n"+conversion.FallbackMessage+"\n") {
		t.Fatalf("expected fallback message, got %q", out.String())
	}
}

func TestRunCanceled(t *testing.T) {
	var out bytes.Buffer
	block := make(chan struct{})
	defer close(block)
	conv := &fakeConverter{block: block}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := (Runner{Out: &out}).Run(ctx, conv, "tiandi")
	if !errors.Is(err, ErrCanceled) {
		t.Fatalf("Run() error = %v, want ErrCanceled", err)
	}
	if !strings.Contains(out.String(), canceledMessage) {
		t.Fatalf("expected cancel message, got %q", out.String())
	}
}

func TestSystemError(t *testing.T) {
	var out bytes.Buffer
	(Runner{Out: &out}).SystemError(errors.New("boom"))
	if out.String() != "❌ 系统错误：boom\n" {
		t.Fatalf("unexpected output: %q", out.String())
	}
}
