package cache

// ScopedKeyer prefixes every key of an inner keyer. A shared Redis instance
// uses it to keep heralds entries, and entries of incompatible encodings,
// in their own namespace:
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "heralds:v1:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// the default keyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// NetworkKey returns the prefixed network key.
func (k *ScopedKeyer) NetworkKey(roadsHash string, opts NetworkKeyOpts) string {
	return k.prefix + k.inner.NetworkKey(roadsHash, opts)
}

// PlanKey returns the prefixed plan key.
func (k *ScopedKeyer) PlanKey(networkHash, zonesHash string) string {
	return k.prefix + k.inner.PlanKey(networkHash, zonesHash)
}
