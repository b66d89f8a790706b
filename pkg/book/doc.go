// Package book defines the page-graph model that PageForge operates on.
//
// A Book is an ordered collection of pages. Each page carries drawable
// content (a background, text runs, placed images) and a set of named
// action slots, each optionally bound to another page in the same book.
// The action slots form a directed graph over the page set; cycles and
// self-references are allowed.
//
// Page order is significant: the reducer in package reduce keeps the
// first-encountered page of every duplicate cluster, so the book order
// determines which page survives a merge.
//
// Pages are treated as immutable once built, with one exception: the
// identifier field, which is owned by AssignIdentifiers before a
// reduction run. All later identifier changes happen in an external
// redirect table, never on the page itself.
package book
