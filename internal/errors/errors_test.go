package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/vango-dev/statebind/pkg/bind"
	"github.com/vango-dev/statebind/pkg/host"
	"github.com/vango-dev/statebind/pkg/loop"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{"binding", "SB003", "Duplicate binding name", CategoryBinding},
		{"runtime", "SB020", "Unknown method", CategoryRuntime},
		{"config", "SB040", "Invalid configuration", CategoryConfig},
		{"unknown", "SB999", "Unknown error", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestErrorString(t *testing.T) {
	if got := New("SB004").Error(); got != "SB004: Empty binding name" {
		t.Errorf("Error() = %q", got)
	}
	if got := Newf(CategoryCLI, "bad %s", "flag").Error(); got != "bad flag" {
		t.Errorf("Error() = %q", got)
	}
}

func TestClassify(t *testing.T) {
	type cfg struct {
		Addr string `validate:"required"`
	}
	verr := validator.New().Struct(cfg{})

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"invalid state", &bind.BindingError{Name: "count", Err: bind.ErrInvalidState}, "SB001"},
		{"unsupported", fmt.Errorf("connect: %w", bind.ErrUnsupportedBinding), "SB002"},
		{"duplicate", &bind.BindingError{Name: "count", Err: bind.ErrDuplicateBinding}, "SB003"},
		{"empty name", bind.ErrEmptyName, "SB004"},
		{"scope", bind.ErrScopeMisuse, "SB005"},
		{"unknown method", fmt.Errorf("%w %q", host.ErrUnknownMethod, "x"), "SB020"},
		{"destroyed", host.ErrDestroyed, "SB021"},
		{"loop closed", loop.ErrClosed, "SB022"},
		{"validation", fmt.Errorf("config: %w", verr), "SB040"},
		{"other", stderrors.New("boom"), "SB099"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			if got.Code != tt.want {
				t.Errorf("Code = %q, want %q", got.Code, tt.want)
			}
			if !stderrors.Is(got, tt.err) {
				t.Error("expected classified error to wrap the original")
			}
		})
	}

	if Classify(nil) != nil {
		t.Error("expected nil for nil")
	}

	coded := New("SB060")
	if Classify(fmt.Errorf("serve: %w", coded)) != coded {
		t.Error("expected an existing Error to be returned as is")
	}
}

func TestFormat(t *testing.T) {
	err := New("SB003").Wrap(stderrors.New(`binding "count": duplicate`))
	out := err.Format()

	for _, want := range []string{"ERROR", "SB003", "Duplicate binding name", `binding "count"`, "Hint:", "unique name"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}

	out = New("SB001").Format()
	if !strings.Contains(out, "Example:") || !strings.Contains(out, "statebind.NewState(0)") {
		t.Errorf("expected example in:\n%s", out)
	}
}

func TestFormatCompact(t *testing.T) {
	err := New("SB022").Wrap(loop.ErrClosed)
	want := "SB022: Event loop closed: statebind: loop closed"
	if got := err.FormatCompact(); got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
}

func TestFormatJSON(t *testing.T) {
	err := New("SB020").Wrap(stderrors.New("no such method"))

	var got map[string]string
	if e := json.Unmarshal([]byte(err.FormatJSON()), &got); e != nil {
		t.Fatalf("invalid JSON: %v", e)
	}
	if got["code"] != "SB020" || got["category"] != "runtime" || got["cause"] != "no such method" {
		t.Errorf("unexpected JSON %v", got)
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("one two three four five six", 10)
	for _, l := range lines {
		if len(l) > 10 {
			t.Errorf("line %q exceeds width", l)
		}
	}
	if strings.Join(lines, " ") != "one two three four five six" {
		t.Errorf("words lost: %v", lines)
	}
	if wrapText("", 10) != nil {
		t.Error("expected nil for empty text")
	}
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	Print(&buf, New("SB021"))
	if !strings.Contains(buf.String(), "Component destroyed") {
		t.Errorf("unexpected output %q", buf.String())
	}

	buf.Reset()
	Print(&buf, stderrors.New("plain"))
	if !strings.Contains(buf.String(), "plain") {
		t.Errorf("unexpected output %q", buf.String())
	}

	buf.Reset()
	Print(&buf, nil)
	if buf.Len() != 0 {
		t.Error("expected no output for nil")
	}
}

func TestRegister(t *testing.T) {
	Register("SB900", Template{Category: CategoryCLI, Message: "custom"})
	t.Cleanup(func() { delete(registry, "SB900") })

	if got := New("SB900").Message; got != "custom" {
		t.Errorf("Message = %q", got)
	}
	if _, ok := Lookup("SB900"); !ok {
		t.Error("expected lookup to find the code")
	}
	codes := Codes()
	for i := 1; i < len(codes); i++ {
		if codes[i-1] > codes[i] {
			t.Fatal("codes not sorted")
		}
	}
}
