// Package reduce merges pages that render identically.
//
// A generated book routinely contains clusters of pages that a reader
// could never tell apart: the same drawn content and the same outgoing
// links once identifiers are normalized. Emitting all of them bloats
// the final document for no observable difference, so reduce collapses
// each cluster to its first-encountered page, the representative.
//
// The algorithm is a fixpoint iteration driven by trace fingerprints,
// much like common-subexpression elimination over an IR graph:
//
//  1. Fingerprint every page (package trace) and index pages by
//     fingerprint.
//  2. When two pages share a fingerprint, redirect the duplicate's
//     identifier to the representative's in a union-find table and
//     immediately re-fingerprint every page that links into the
//     duplicate - their traces may now match someone else's.
//  3. Repeat until a pass removes nothing, or removes fewer pages
//     than the configured floor.
//
// Redirects live in an explicit table owned by the reducer; the pages
// themselves are never mutated. Renderers resolve link targets through
// the table, so a merged page's incoming links land on its survivor.
package reduce
