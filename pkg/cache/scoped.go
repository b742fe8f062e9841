package cache

// ScopedKeyer wraps a Keyer with a prefix so that results computed under
// different ontologies never share entries:
//
//	k := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "ont:"+cache.Hash(ontologyYAML)[:12]+":")
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

// LayoutKey generates a prefixed layout key.
func (k *ScopedKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(graphHash, opts)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(frameHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(frameHash, opts)
}
