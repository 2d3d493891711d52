package cache

// ScopedKeyer wraps a Keyer with a prefix so images from different nodedocs
// builds never share a key. The DOT hash alone does not cover changes to
// rasterising or cropping.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "build:"+buildinfo.Version+":")
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

// ImageKey generates a prefixed key for rendered images.
func (k *ScopedKeyer) ImageKey(dotHash string, opts ImageKeyOpts) string {
	return k.prefix + k.inner.ImageKey(dotHash, opts)
}
