package errcode

import (
	"errors"
	"fmt"
	"testing"
)

func TestOf(t *testing.T) {
	if Of(nil) != OK {
		t.Fatal("nil should map to OK")
	}
	if Of(Timeout) != Timeout {
		t.Fatal("bare code should map to itself")
	}
	wrapped := fmt.Errorf("probe: %w", NotDetected)
	if Of(wrapped) != NotDetected {
		t.Fatalf("wrapped code: got %q", Of(wrapped))
	}
	if Of(errors.New("boom")) != Error {
		t.Fatal("plain error should map to Error")
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("nack")
	err := Wrap(NotDetected, "bh1750", cause)
	if !errors.Is(err, cause) {
		t.Fatal("Wrap lost the cause")
	}
	if Of(err) != NotDetected {
		t.Fatalf("code = %q", Of(err))
	}
	if err.Error() != "bh1750: not_detected: nack" {
		t.Fatalf("message = %q", err.Error())
	}
	if Wrap(ReadFailed, "x", nil) != nil {
		t.Fatal("Wrap(nil) should be nil")
	}
}

func TestMapDriverErr(t *testing.T) {
	if MapDriverErr(nil) != OK {
		t.Fatal("nil")
	}
	if MapDriverErr(errors.New("i2c")) != ReadFailed {
		t.Fatal("plain driver error should be ReadFailed")
	}
	if MapDriverErr(&E{C: Timeout}) != Timeout {
		t.Fatal("coded error should keep its code")
	}
}
