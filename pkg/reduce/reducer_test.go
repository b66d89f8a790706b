package reduce

import (
	"context"
	"testing"

	"github.com/pageforge/pageforge/pkg/book"
)

// storyPage builds a minimal page with one text run.
func storyPage(name, text string) *book.Page {
	return &book.Page{
		Name:  name,
		Kind:  book.KindStory,
		Texts: []book.Text{{X: 10, Y: 20, Value: text}},
	}
}

func link(p *book.Page, slot string, target *book.Page) {
	if p.Actions == nil {
		p.Actions = make(map[string]*book.Page)
	}
	p.Actions[slot] = target
}

func names(pages []*book.Page) []string {
	out := make([]string, len(pages))
	for i, p := range pages {
		out[i] = p.Name
	}
	return out
}

func TestReduceMergesIdenticalSiblings(t *testing.T) {
	// intro branches to two endings with identical content. The
	// endings merge; intro and the representative survive.
	intro := storyPage("intro", "you wake in a cave")
	left := storyPage("left", "the end")
	right := storyPage("right", "the end")
	link(intro, "left", left)
	link(intro, "right", right)

	b := &book.Book{Start: intro, Pages: []*book.Page{intro, left, right}}

	res, err := Reduce(context.Background(), b, Options{})
	if err != nil {
		t.Fatalf("Reduce error: %v", err)
	}

	if got, want := res.Removed, 1; got != want {
		t.Errorf("Removed = %d, want %d", got, want)
	}
	if got, want := len(res.Pages), 2; got != want {
		t.Fatalf("surviving pages = %v, want %d", names(res.Pages), want)
	}
	// First-seen representative wins.
	if got, want := res.Pages[1].Name, "left"; got != want {
		t.Errorf("representative = %q, want %q", got, want)
	}
	// Both original identifiers resolve to the representative.
	if got, want := res.Resolve(right), res.Resolve(left); got != want {
		t.Errorf("Resolve(right) = %d, want %d", got, want)
	}
}

func TestReduceDistinctPagesUntouched(t *testing.T) {
	a := storyPage("a", "first")
	c := storyPage("c", "second")
	link(a, "next", c)

	b := &book.Book{Start: a, Pages: []*book.Page{a, c}}

	res, err := Reduce(context.Background(), b, Options{})
	if err != nil {
		t.Fatalf("Reduce error: %v", err)
	}
	if got, want := res.Removed, 0; got != want {
		t.Errorf("Removed = %d, want %d", got, want)
	}
	if got, want := res.Passes, 1; got != want {
		t.Errorf("Passes = %d, want %d", got, want)
	}
}

func TestReduceCycleIsStable(t *testing.T) {
	// Two pages referencing each other with identical content are NOT
	// identical: each page's outgoing link lands on a different
	// identifier, so their traces differ and nothing merges.
	a := storyPage("a", "loop")
	c := storyPage("c", "loop")
	link(a, "next", c)
	link(c, "next", a)

	b := &book.Book{Start: a, Pages: []*book.Page{a, c}}

	res, err := Reduce(context.Background(), b, Options{})
	if err != nil {
		t.Fatalf("Reduce error: %v", err)
	}
	if got, want := res.Removed, 0; got != want {
		t.Errorf("Removed = %d, want %d", got, want)
	}
	if got, want := len(res.Pages), 2; got != want {
		t.Errorf("surviving = %d, want %d", got, want)
	}
}

func TestReduceSelfLoopSafe(t *testing.T) {
	a := storyPage("a", "again")
	link(a, "again", a)
	c := storyPage("c", "again")
	link(c, "again", c)

	b := &book.Book{Start: a, Pages: []*book.Page{a, c}}

	res, err := Reduce(context.Background(), b, Options{})
	if err != nil {
		t.Fatalf("Reduce error: %v", err)
	}
	// Self-referential pages link to their own identifiers, so the
	// traces differ and no merge happens.
	if got, want := res.Removed, 0; got != want {
		t.Errorf("Removed = %d, want %d", got, want)
	}
}

func TestReduceCascadeWithinPass(t *testing.T) {
	// The endings appear before their parents in book order. Merging
	// the endings refreshes the parents' fingerprints mid-pass, so
	// the parents also merge in the same pass.
	end1 := storyPage("end1", "fin")
	end2 := storyPage("end2", "fin")
	p1 := storyPage("p1", "almost there")
	p2 := storyPage("p2", "almost there")
	link(p1, "next", end1)
	link(p2, "next", end2)

	b := &book.Book{Start: p1, Pages: []*book.Page{end1, end2, p1, p2}}

	res, err := Reduce(context.Background(), b, Options{})
	if err != nil {
		t.Fatalf("Reduce error: %v", err)
	}
	if got, want := res.Removed, 2; got != want {
		t.Errorf("Removed = %d, want %d", got, want)
	}
	if got, want := res.Passes, 1; got != want {
		t.Errorf("Passes = %d, want %d", got, want)
	}
}

func TestReduceMultiPassCascade(t *testing.T) {
	// The parents appear before the endings, so the parents' refresh
	// lands after they were already scanned. A second pass is needed
	// to merge them; MinRemoved 1 keeps iteration going on any
	// progress.
	p1 := storyPage("p1", "almost there")
	p2 := storyPage("p2", "almost there")
	end1 := storyPage("end1", "fin")
	end2 := storyPage("end2", "fin")
	link(p1, "next", end1)
	link(p2, "next", end2)

	b := &book.Book{Start: p1, Pages: []*book.Page{p1, p2, end1, end2}}

	res, err := Reduce(context.Background(), b, Options{MinRemoved: 1})
	if err != nil {
		t.Fatalf("Reduce error: %v", err)
	}
	if got, want := res.Removed, 2; got != want {
		t.Errorf("Removed = %d, want %d", got, want)
	}
	if res.Passes < 2 {
		t.Errorf("Passes = %d, want at least 2", res.Passes)
	}
}

func TestReduceSinglePassStops(t *testing.T) {
	p1 := storyPage("p1", "almost there")
	p2 := storyPage("p2", "almost there")
	end1 := storyPage("end1", "fin")
	end2 := storyPage("end2", "fin")
	link(p1, "next", end1)
	link(p2, "next", end2)

	b := &book.Book{Start: p1, Pages: []*book.Page{p1, p2, end1, end2}}

	res, err := Reduce(context.Background(), b, Options{SinglePass: true})
	if err != nil {
		t.Fatalf("Reduce error: %v", err)
	}
	if got, want := res.Passes, 1; got != want {
		t.Errorf("Passes = %d, want %d", got, want)
	}
	// Only the endings merge in the first pass with this ordering.
	if got, want := res.Removed, 1; got != want {
		t.Errorf("Removed = %d, want %d", got, want)
	}
}

func TestReduceRemovalFloorStopsIteration(t *testing.T) {
	// 30 identical terminal pages: the first pass removes 29, which
	// clears the default floor of 25, so a second pass runs and
	// removes nothing.
	pages := make([]*book.Page, 0, 31)
	start := storyPage("start", "choose")
	pages = append(pages, start)
	for i := 0; i < 30; i++ {
		p := storyPage("end"+string(rune('a'+i)), "game over")
		pages = append(pages, p)
	}

	b := &book.Book{Start: start, Pages: pages}

	res, err := Reduce(context.Background(), b, Options{})
	if err != nil {
		t.Fatalf("Reduce error: %v", err)
	}
	if got, want := res.Removed, 29; got != want {
		t.Errorf("Removed = %d, want %d", got, want)
	}
	if got, want := res.Passes, 2; got != want {
		t.Errorf("Passes = %d, want %d", got, want)
	}
	if res.RemovedPercent < 90 {
		t.Errorf("RemovedPercent = %.1f, want > 90", res.RemovedPercent)
	}
}

func TestReduceDistinctUpstreamsSurviveTerminalMerge(t *testing.T) {
	// 30 distinct upstream pages each link to their own copy of an
	// identical terminal. The terminals collapse to one; the upstreams
	// are re-fingerprinted against the surviving terminal but stay
	// distinct, since their own content differs.
	pages := make([]*book.Page, 0, 60)
	upstreams := make([]*book.Page, 0, 30)
	for i := 0; i < 30; i++ {
		up := storyPage("room"+string(rune('a'+i)), "room number "+string(rune('a'+i)))
		end := storyPage("end"+string(rune('a'+i)), "game over")
		link(up, "onward", end)
		upstreams = append(upstreams, up)
		pages = append(pages, up, end)
	}

	b := &book.Book{Start: pages[0], Pages: pages}

	res, err := Reduce(context.Background(), b, Options{MinRemoved: 1})
	if err != nil {
		t.Fatalf("Reduce error: %v", err)
	}
	if got, want := res.Removed, 29; got != want {
		t.Errorf("Removed = %d, want %d", got, want)
	}
	if got, want := len(res.Pages), 31; got != want {
		t.Errorf("surviving = %d, want %d", got, want)
	}

	// Every upstream survives and lands on the one surviving terminal.
	rep := res.Resolve(upstreams[0].Actions["onward"])
	for _, up := range upstreams {
		if res.Resolve(up) != up.ID {
			t.Errorf("upstream %q was merged away", up.Name)
		}
		if got := res.Resolve(up.Actions["onward"]); got != rep {
			t.Errorf("upstream %q resolves its terminal to %d, want %d", up.Name, got, rep)
		}
	}
}

func TestReduceVictoryTargetsExempt(t *testing.T) {
	// Two pages with identical content link to different victory
	// pages. Victory transitions are drawn as a fixed banner instead
	// of being traversed, so the pages are observably identical and
	// merge, as do the victory pages themselves.
	win1 := &book.Page{Name: "win1", Kind: book.KindVictory}
	win2 := &book.Page{Name: "win2", Kind: book.KindVictory}
	p1 := storyPage("p1", "the door opens")
	p2 := storyPage("p2", "the door opens")
	link(p1, "enter", win1)
	link(p2, "enter", win2)

	b := &book.Book{Start: p1, Pages: []*book.Page{p1, p2, win1, win2}}

	res, err := Reduce(context.Background(), b, Options{})
	if err != nil {
		t.Fatalf("Reduce error: %v", err)
	}
	if got, want := res.Removed, 2; got != want {
		t.Errorf("Removed = %d, want %d", got, want)
	}
}

func TestReduceDeterministic(t *testing.T) {
	build := func() *book.Book {
		intro := storyPage("intro", "start")
		a := storyPage("a", "same")
		c := storyPage("c", "same")
		d := storyPage("d", "other")
		link(intro, "a", a)
		link(intro, "c", c)
		link(intro, "d", d)
		return &book.Book{Start: intro, Pages: []*book.Page{intro, a, c, d}}
	}

	res1, err := Reduce(context.Background(), build(), Options{})
	if err != nil {
		t.Fatalf("Reduce error: %v", err)
	}
	res2, err := Reduce(context.Background(), build(), Options{})
	if err != nil {
		t.Fatalf("Reduce error: %v", err)
	}

	got, want := names(res1.Pages), names(res2.Pages)
	if len(got) != len(want) {
		t.Fatalf("runs disagree: %v vs %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("runs disagree at %d: %q vs %q", i, got[i], want[i])
		}
	}
}

func TestReduceIdempotent(t *testing.T) {
	intro := storyPage("intro", "start")
	a := storyPage("a", "same")
	c := storyPage("c", "same")
	link(intro, "a", a)
	link(intro, "c", c)
	b := &book.Book{Start: intro, Pages: []*book.Page{intro, a, c}}

	res, err := Reduce(context.Background(), b, Options{MinRemoved: 1})
	if err != nil {
		t.Fatalf("Reduce error: %v", err)
	}
	reduced := res.Book(b.Title, b.Start)

	again, err := Reduce(context.Background(), reduced, Options{MinRemoved: 1})
	if err != nil {
		t.Fatalf("Reduce error on reduced book: %v", err)
	}
	if got, want := again.Removed, 0; got != want {
		t.Errorf("second reduction Removed = %d, want %d", got, want)
	}
}

func TestResultBookNoDanglingReferences(t *testing.T) {
	intro := storyPage("intro", "start")
	a := storyPage("a", "same")
	c := storyPage("c", "same")
	link(intro, "a", a)
	link(intro, "c", c)
	link(a, "back", intro)
	link(c, "back", intro)
	b := &book.Book{Start: intro, Pages: []*book.Page{intro, a, c}}

	res, err := Reduce(context.Background(), b, Options{MinRemoved: 1})
	if err != nil {
		t.Fatalf("Reduce error: %v", err)
	}
	reduced := res.Book("test", b.Start)

	inBook := make(map[*book.Page]bool)
	for _, p := range reduced.Pages {
		inBook[p] = true
	}
	if reduced.Start == nil || !inBook[reduced.Start] {
		t.Error("reduced start page is not part of the reduced book")
	}
	for _, p := range reduced.Pages {
		for slot, target := range p.Actions {
			if target == nil {
				continue
			}
			if !inBook[target] {
				t.Errorf("page %q slot %q points outside the reduced book", p.Name, slot)
			}
		}
	}
}

func TestReduceMaxPassesCap(t *testing.T) {
	p1 := storyPage("p1", "almost there")
	p2 := storyPage("p2", "almost there")
	end1 := storyPage("end1", "fin")
	end2 := storyPage("end2", "fin")
	link(p1, "next", end1)
	link(p2, "next", end2)

	b := &book.Book{Start: p1, Pages: []*book.Page{p1, p2, end1, end2}}

	res, err := Reduce(context.Background(), b, Options{MinRemoved: 1, MaxPasses: 1})
	if err != nil {
		t.Fatalf("Reduce error: %v", err)
	}
	if got, want := res.Passes, 1; got != want {
		t.Errorf("Passes = %d, want %d", got, want)
	}
}
