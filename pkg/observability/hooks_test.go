package observability

import (
	"context"
	"testing"
	"time"
)

type countingReducerHooks struct {
	passes int
	merges int
}

func (h *countingReducerHooks) OnPassStart(context.Context, int, int) { h.passes++ }
func (h *countingReducerHooks) OnPassComplete(context.Context, int, int, time.Duration) {
}
func (h *countingReducerHooks) OnMerge(context.Context, int, int) { h.merges++ }

func TestSetReducerHooks(t *testing.T) {
	defer Reset()

	h := &countingReducerHooks{}
	SetReducerHooks(h)

	ctx := context.Background()
	Reducer().OnPassStart(ctx, 1, 10)
	Reducer().OnMerge(ctx, 4, 2)
	Reducer().OnMerge(ctx, 5, 2)

	if got, want := h.passes, 1; got != want {
		t.Errorf("passes = %d, want %d", got, want)
	}
	if got, want := h.merges, 2; got != want {
		t.Errorf("merges = %d, want %d", got, want)
	}
}

func TestSetNilHooksIgnored(t *testing.T) {
	defer Reset()

	SetReducerHooks(nil)
	SetRenderHooks(nil)
	SetCacheHooks(nil)

	if Reducer() == nil || Render() == nil || Cache() == nil {
		t.Error("nil registration should keep the no-op defaults")
	}
}

func TestResetRestoresNoops(t *testing.T) {
	SetReducerHooks(&countingReducerHooks{})
	Reset()

	if _, ok := Reducer().(NoopReducerHooks); !ok {
		t.Errorf("Reducer after Reset = %T, want NoopReducerHooks", Reducer())
	}
	if _, ok := Render().(NoopRenderHooks); !ok {
		t.Errorf("Render after Reset = %T, want NoopRenderHooks", Render())
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Errorf("Cache after Reset = %T, want NoopCacheHooks", Cache())
	}
}

func TestNoopHooksSafeToCall(t *testing.T) {
	ctx := context.Background()
	Reset()

	Reducer().OnPassStart(ctx, 1, 3)
	Reducer().OnPassComplete(ctx, 1, 0, time.Millisecond)
	Reducer().OnMerge(ctx, 2, 1)
	Render().OnRenderStart(ctx, []string{"svg"})
	Render().OnRenderComplete(ctx, []string{"svg"}, time.Millisecond, nil)
	Cache().OnCacheHit(ctx, "book")
	Cache().OnCacheMiss(ctx, "reduction")
	Cache().OnCacheSet(ctx, "artifact", 128)
}
