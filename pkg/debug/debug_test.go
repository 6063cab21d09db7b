package debug

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func withOutput(t *testing.T, on bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := enabled
	SetOutput(&buf)
	SetEnabled(on)
	t.Cleanup(func() {
		SetEnabled(prev)
		SetOutput(nopWriter{})
	})
	return &buf
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestLog_DisabledIsSilent(t *testing.T) {
	buf := withOutput(t, false)
	Log("hello %d", 1)
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestLog_Enabled(t *testing.T) {
	buf := withOutput(t, true)
	Log("hello %d", 42)
	if !strings.Contains(buf.String(), "hello 42") {
		t.Errorf("output %q missing message", buf.String())
	}
}

func TestAssert_PanicsWhenEnabled(t *testing.T) {
	withOutput(t, true)
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	Assert(false, "boom")
}

func TestAssert_LogsWhenDisabled(t *testing.T) {
	buf := withOutput(t, false)
	Assertf(false, "offset %d", 7)
	if !strings.Contains(buf.String(), "offset 7") {
		t.Errorf("output %q missing assertion text", buf.String())
	}
	buf.Reset()
	Assert(true, "never")
	AssertNoError(nil, "never")
	if buf.Len() != 0 {
		t.Errorf("passing assertions logged %q", buf.String())
	}
	AssertNoError(errors.New("bad"), "ctx")
	if !strings.Contains(buf.String(), "ctx: bad") {
		t.Errorf("output %q missing error", buf.String())
	}
}
