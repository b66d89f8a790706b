package reduce

import "github.com/pageforge/pageforge/pkg/errors"

// Redirects is the identifier redirect table built during a reduction
// run. It is a union-find structure: aliasing a duplicate to its
// representative makes every identifier in the duplicate's class
// resolve to the representative's class root.
//
// The reducer exclusively owns the table; pages are never mutated.
// The zero value is not usable - use NewRedirects.
type Redirects struct {
	parent map[int]int
}

// NewRedirects creates an empty redirect table.
func NewRedirects() *Redirects {
	return &Redirects{parent: make(map[int]int)}
}

// Resolve returns the current identifier for id, following redirects
// to the surviving representative. Identifiers never redirected
// resolve to themselves. Paths are compressed, so repeated resolution
// is O(1) amortized.
func (r *Redirects) Resolve(id int) int {
	root := id
	for {
		next, ok := r.parent[root]
		if !ok || next == root {
			break
		}
		root = next
	}
	for id != root {
		next := r.parent[id]
		r.parent[id] = root
		id = next
	}
	return root
}

// Redirected reports whether id has been aliased to another identifier.
func (r *Redirects) Redirected(id int) bool {
	return r.Resolve(id) != id
}

// Alias redirects the duplicate identifier to the representative's.
//
// Returns a fatal MERGE_LOOP error when both already resolve to the
// same identifier: that means the merge relation looped without
// progress, and continuing would iterate forever.
func (r *Redirects) Alias(duplicate, representative int) error {
	dupRoot := r.Resolve(duplicate)
	repRoot := r.Resolve(representative)
	if dupRoot == repRoot {
		return errors.New(errors.ErrCodeMergeLoop,
			"pages %d and %d already share identifier %d: merge relation is not progressing",
			duplicate, representative, dupRoot)
	}
	r.parent[dupRoot] = repRoot
	return nil
}

// Len returns the number of identifiers that have been redirected.
func (r *Redirects) Len() int {
	n := 0
	for id := range r.parent {
		if r.Resolve(id) != id {
			n++
		}
	}
	return n
}
