package trace

import (
	"testing"

	"github.com/pageforge/pageforge/pkg/book"
	"github.com/pageforge/pageforge/pkg/errors"
	"github.com/pageforge/pageforge/pkg/render"
)

func page(id int, text string) *book.Page {
	return &book.Page{
		ID:    id,
		Name:  "p",
		Texts: []book.Text{{X: 10, Y: 20, Value: text}},
	}
}

func TestFingerprintDeterministic(t *testing.T) {
	p := page(1, "hello")

	f1, err := PageFingerprint(p, nil, ResolveAssigned)
	if err != nil {
		t.Fatalf("PageFingerprint error: %v", err)
	}
	f2, err := PageFingerprint(p, nil, ResolveAssigned)
	if err != nil {
		t.Fatalf("PageFingerprint error: %v", err)
	}
	if f1 != f2 {
		t.Error("same page produced different fingerprints")
	}
	if got, want := len(f1), 64; got != want {
		t.Errorf("fingerprint length = %d, want %d", got, want)
	}
}

func TestFingerprintContentSensitive(t *testing.T) {
	f1, err := PageFingerprint(page(1, "hello"), nil, ResolveAssigned)
	if err != nil {
		t.Fatalf("PageFingerprint error: %v", err)
	}
	f2, err := PageFingerprint(page(1, "goodbye"), nil, ResolveAssigned)
	if err != nil {
		t.Fatalf("PageFingerprint error: %v", err)
	}
	if f1 == f2 {
		t.Error("different text produced equal fingerprints")
	}
}

func TestFingerprintIgnoresIdentity(t *testing.T) {
	// The page's own identifier and name are not part of the trace;
	// only drawn content and resolved link targets are.
	p1 := page(1, "same")
	p2 := page(99, "same")
	p2.Name = "other"

	f1, err := PageFingerprint(p1, nil, ResolveAssigned)
	if err != nil {
		t.Fatalf("PageFingerprint error: %v", err)
	}
	f2, err := PageFingerprint(p2, nil, ResolveAssigned)
	if err != nil {
		t.Fatalf("PageFingerprint error: %v", err)
	}
	if f1 != f2 {
		t.Error("pages differing only in identity produced different fingerprints")
	}
}

func TestFingerprintLinkTargetSensitive(t *testing.T) {
	t1 := page(2, "end")
	t2 := page(3, "end")

	p := page(1, "choose")
	p.Actions = map[string]*book.Page{"next": t1}
	f1, err := PageFingerprint(p, nil, ResolveAssigned)
	if err != nil {
		t.Fatalf("PageFingerprint error: %v", err)
	}

	p.Actions["next"] = t2
	f2, err := PageFingerprint(p, nil, ResolveAssigned)
	if err != nil {
		t.Fatalf("PageFingerprint error: %v", err)
	}
	if f1 == f2 {
		t.Error("different link targets produced equal fingerprints")
	}
}

func TestFingerprintFollowsRedirectedTargets(t *testing.T) {
	// Resolving through a redirect maps both targets to the same
	// identifier, so the fingerprints converge.
	t1 := page(2, "end")
	t2 := page(3, "end")

	p1 := page(1, "choose")
	p1.Actions = map[string]*book.Page{"next": t1}
	p2 := page(4, "choose")
	p2.Actions = map[string]*book.Page{"next": t2}

	redirect := func(p *book.Page) (int, error) {
		if p.ID == 3 {
			return 2, nil
		}
		return p.ID, nil
	}

	f1, err := PageFingerprint(p1, nil, redirect)
	if err != nil {
		t.Fatalf("PageFingerprint error: %v", err)
	}
	f2, err := PageFingerprint(p2, nil, redirect)
	if err != nil {
		t.Fatalf("PageFingerprint error: %v", err)
	}
	if f1 != f2 {
		t.Error("redirected targets should make the traces equal")
	}
}

func TestFingerprintUnassignedTarget(t *testing.T) {
	target := &book.Page{Name: "unassigned"} // ID 0
	p := page(1, "choose")
	p.Actions = map[string]*book.Page{"next": target}

	_, err := PageFingerprint(p, nil, ResolveAssigned)
	if err == nil {
		t.Fatal("unassigned link target should fail")
	}
	if got, want := errors.GetCode(err), errors.ErrCodeUnassignedPageID; got != want {
		t.Errorf("error code = %s, want %s", got, want)
	}
}

func TestFingerprintSlotOrderIndependent(t *testing.T) {
	// Slots are drawn in sorted order, so map insertion order cannot
	// leak into the trace.
	t1 := page(2, "a")
	t2 := page(3, "b")

	p1 := page(1, "choose")
	p1.Actions = map[string]*book.Page{"east": t1, "west": t2}
	p2 := page(1, "choose")
	p2.Actions = map[string]*book.Page{"west": t2, "east": t1}

	f1, err := PageFingerprint(p1, nil, ResolveAssigned)
	if err != nil {
		t.Fatalf("PageFingerprint error: %v", err)
	}
	f2, err := PageFingerprint(p2, nil, ResolveAssigned)
	if err != nil {
		t.Fatalf("PageFingerprint error: %v", err)
	}
	if f1 != f2 {
		t.Error("slot insertion order changed the fingerprint")
	}
}

func TestRecorderStickyError(t *testing.T) {
	rec := NewRecorder(ResolveAssigned)
	id := rec.AddLink()
	rec.SetLink(id, &book.Page{}) // unassigned target
	rec.LinkArea(0, 0, 10, 10, id)

	if rec.Err() == nil {
		t.Fatal("recorder should carry the resolution error")
	}
	if _, err := rec.Fingerprint(); err == nil {
		t.Fatal("Fingerprint should surface the resolution error")
	}
}

func TestRecorderCountsEvents(t *testing.T) {
	rec := NewRecorder(ResolveAssigned)
	if err := render.DrawPage(rec, page(1, "hello"), nil, render.TerminalNoop); err != nil {
		t.Fatalf("DrawPage error: %v", err)
	}
	if rec.Events() == 0 {
		t.Error("drawing a page should record events")
	}
}
