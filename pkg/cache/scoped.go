package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation.
// This is useful when several projects share one cache backend and
// need separate key spaces.
//
// Example usage:
//
//	// Project-specific keys on a shared Redis
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "project:mybook:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// BookKey generates a prefixed key for a compiled book.
func (k *ScopedKeyer) BookKey(opts BookKeyOpts) string {
	return k.prefix + k.inner.BookKey(opts)
}

// ReductionKey generates a prefixed key for a reduction result.
func (k *ScopedKeyer) ReductionKey(bookHash string, opts ReductionKeyOpts) string {
	return k.prefix + k.inner.ReductionKey(bookHash, opts)
}

// ArtifactKey generates a prefixed key for a rendered artifact.
func (k *ScopedKeyer) ArtifactKey(bookHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(bookHash, opts)
}
