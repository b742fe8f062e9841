package cache

import "sort"

// Keyer builds cache keys.
type Keyer interface {
	// LayoutKey returns the key of a layout of the graph with the given
	// content hash.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string

	// ArtifactKey returns the key of a rendered artifact of the frame with
	// the given content hash.
	ArtifactKey(frameHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts are the layout inputs besides the graph itself.
type LayoutKeyOpts struct {
	Algorithm string         `json:"algorithm"`
	Params    map[string]any `json:"params,omitempty"`
	Pinned    []string       `json:"pinned,omitempty"`
}

// ArtifactKeyOpts are the render inputs besides the frame itself.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Detailed bool   `json:"detailed,omitempty"`
}

// DefaultKeyer hashes every option into the key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey returns "layout:<sha256>". Pinned ids are order-insensitive.
func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	if len(opts.Pinned) > 0 {
		pinned := append([]string(nil), opts.Pinned...)
		sort.Strings(pinned)
		opts.Pinned = pinned
	}
	return hashKey("layout", graphHash, opts)
}

// ArtifactKey returns "artifact:<sha256>".
func (DefaultKeyer) ArtifactKey(frameHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", frameHash, opts)
}
