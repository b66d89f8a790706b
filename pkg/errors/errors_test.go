package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestNewAndError(t *testing.T) {
	err := New(ErrCodeInvalidStory, "page %q has no content", "intro")

	if got, want := err.Error(), `INVALID_STORY: page "intro" has no content`; got != want {
		t.Errorf("Error = %q, want %q", got, want)
	}
	if got, want := GetCode(err), ErrCodeInvalidStory; got != want {
		t.Errorf("GetCode = %s, want %s", got, want)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("disk on fire")
	err := Wrap(ErrCodeInternal, cause, "render page %d", 3)

	if !stderrors.Is(err, cause) {
		t.Error("wrapped error should match its cause via errors.Is")
	}
	if got, want := GetCode(err), ErrCodeInternal; got != want {
		t.Errorf("GetCode = %s, want %s", got, want)
	}
}

func TestIsMatchesThroughWrapping(t *testing.T) {
	inner := New(ErrCodeMergeLoop, "no progress")
	outer := fmt.Errorf("reduction: %w", inner)

	if !Is(outer, ErrCodeMergeLoop) {
		t.Error("Is should unwrap to find the code")
	}
	if Is(outer, ErrCodeNotFound) {
		t.Error("Is should not match a different code")
	}
	if Is(stderrors.New("plain"), ErrCodeMergeLoop) {
		t.Error("Is should not match plain errors")
	}
}

func TestGetCodePlainError(t *testing.T) {
	if got := GetCode(stderrors.New("plain")); got != "" {
		t.Errorf("GetCode on plain error = %q, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeFileNotFound, "story manifest not found")
	if got, want := UserMessage(err), "story manifest not found"; got != want {
		t.Errorf("UserMessage = %q, want %q", got, want)
	}
	plain := stderrors.New("plain")
	if got, want := UserMessage(plain), "plain"; got != want {
		t.Errorf("UserMessage = %q, want %q", got, want)
	}
}
