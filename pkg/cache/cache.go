// Package cache provides caching for compiled books, reduction
// results, and rendered artifacts.
//
// The Cache interface abstracts the storage backend. FileCache is the
// default for CLI usage, RedisCache serves shared deployments, and
// NullCache disables caching entirely. Keys are generated by a Keyer
// so that all consumers agree on the key schema.
package cache

import (
	"context"
	"time"
)

// TTL constants for the different cached stages.
const (
	// TTLBook is the lifetime of compiled books. Manifests change
	// often during authoring, so this is short.
	TTLBook = 1 * time.Hour

	// TTLReduction is the lifetime of reduction results. Keyed on the
	// book's content hash, so entries only go stale when the reducer
	// itself changes.
	TTLReduction = 24 * time.Hour

	// TTLArtifact is the lifetime of rendered artifacts.
	TTLArtifact = 24 * time.Hour
)

// Cache is a byte-oriented key-value store with per-entry TTL.
type Cache interface {
	// Get retrieves a value. The bool reports whether the key was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A TTL of 0 means the
	// entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// BookKeyOpts are the inputs that distinguish compiled books.
type BookKeyOpts struct {
	// ManifestHash is the content hash of the story manifest.
	ManifestHash string
}

// ReductionKeyOpts are the inputs that distinguish reduction runs.
type ReductionKeyOpts struct {
	SinglePass bool
	MinRemoved int
	MaxPasses  int
}

// ArtifactKeyOpts are the inputs that distinguish rendered artifacts.
type ArtifactKeyOpts struct {
	Format   string
	Name     string
	Detailed bool
	Scale    float64
}

// Keyer generates cache keys for the pipeline stages.
type Keyer interface {
	// BookKey generates a key for a compiled book.
	BookKey(opts BookKeyOpts) string

	// ReductionKey generates a key for a reduction result, keyed on
	// the book's content hash.
	ReductionKey(bookHash string, opts ReductionKeyOpts) string

	// ArtifactKey generates a key for a rendered artifact, keyed on
	// the reduced book's content hash.
	ArtifactKey(bookHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard key schema.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// BookKey generates a key for a compiled book.
func (k *DefaultKeyer) BookKey(opts BookKeyOpts) string {
	return hashKey("book", opts)
}

// ReductionKey generates a key for a reduction result.
func (k *DefaultKeyer) ReductionKey(bookHash string, opts ReductionKeyOpts) string {
	return hashKey("reduction", bookHash, opts)
}

// ArtifactKey generates a key for a rendered artifact.
func (k *DefaultKeyer) ArtifactKey(bookHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", bookHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
