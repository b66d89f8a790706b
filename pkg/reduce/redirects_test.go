package reduce

import (
	"testing"

	"github.com/pageforge/pageforge/pkg/errors"
)

func TestRedirectsResolveUnaliased(t *testing.T) {
	rd := NewRedirects()
	if got, want := rd.Resolve(7), 7; got != want {
		t.Errorf("Resolve(7) = %d, want %d", got, want)
	}
	if rd.Redirected(7) {
		t.Error("unaliased identifier reported as redirected")
	}
}

func TestRedirectsAlias(t *testing.T) {
	rd := NewRedirects()
	if err := rd.Alias(2, 1); err != nil {
		t.Fatalf("Alias error: %v", err)
	}
	if got, want := rd.Resolve(2), 1; got != want {
		t.Errorf("Resolve(2) = %d, want %d", got, want)
	}
	if !rd.Redirected(2) {
		t.Error("aliased identifier not reported as redirected")
	}
	if rd.Redirected(1) {
		t.Error("representative reported as redirected")
	}
}

func TestRedirectsChainResolution(t *testing.T) {
	rd := NewRedirects()
	if err := rd.Alias(3, 2); err != nil {
		t.Fatalf("Alias error: %v", err)
	}
	if err := rd.Alias(2, 1); err != nil {
		t.Fatalf("Alias error: %v", err)
	}
	// 3 -> 2 -> 1 collapses to the final representative.
	if got, want := rd.Resolve(3), 1; got != want {
		t.Errorf("Resolve(3) = %d, want %d", got, want)
	}
	if got, want := rd.Len(), 2; got != want {
		t.Errorf("Len = %d, want %d", got, want)
	}
}

func TestRedirectsMergeLoop(t *testing.T) {
	rd := NewRedirects()
	if err := rd.Alias(2, 1); err != nil {
		t.Fatalf("Alias error: %v", err)
	}
	// Aliasing back onto the same class must fail loudly instead of
	// looping forever.
	err := rd.Alias(1, 2)
	if err == nil {
		t.Fatal("Alias onto the same class should fail")
	}
	if got, want := errors.GetCode(err), errors.ErrCodeMergeLoop; got != want {
		t.Errorf("error code = %s, want %s", got, want)
	}
}

func TestRedirectsSelfAlias(t *testing.T) {
	rd := NewRedirects()
	if err := rd.Alias(5, 5); err == nil {
		t.Fatal("self alias should fail")
	}
}
