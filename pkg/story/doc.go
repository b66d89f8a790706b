// Package story compiles TOML story manifests into books.
//
// A manifest is the authoring format: a flat set of named pages with
// their drawn content and choice slots, referencing each other by
// name. Compilation resolves the names into page pointers and yields
// a book.Book ready for identifier assignment and reduction.
//
// Page ordering in the compiled book is deterministic: the start page
// first, then the remaining pages sorted by name. Since reduction
// picks representatives first-seen, this makes reduction results
// reproducible across runs of the same manifest.
package story
