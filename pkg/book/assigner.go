package book

import "github.com/pageforge/pageforge/pkg/errors"

// AssignIdentifiers gives every page in the book a unique identifier.
//
// Identifiers are assigned sequentially starting at 1, in book order.
// Calling it again reassigns the same identifiers as long as the page
// list is unchanged, which keeps repeated reduction runs deterministic.
//
// Every page reachable through action slots must be a member of the
// book's page list; a slot that targets a foreign page returns an
// INVALID_PAGE error, because that page would never receive an
// identifier and fingerprinting it is undefined.
func AssignIdentifiers(b *Book) error {
	members := make(map[*Page]bool, len(b.Pages))
	for i, p := range b.Pages {
		p.ID = i + 1
		members[p] = true
	}
	for _, p := range b.Pages {
		for slot, target := range p.Actions {
			if target != nil && !members[target] {
				return errors.New(errors.ErrCodeInvalidPage,
					"page %q action %q targets a page outside the book", p.Name, slot)
			}
		}
	}
	if b.Start != nil && !members[b.Start] {
		return errors.New(errors.ErrCodeInvalidPage, "start page %q is not in the book", b.Start.Name)
	}
	return nil
}
