package cache

// RenderKeyOpts lists every option that changes a rendered artifact.
type RenderKeyOpts struct {
	Format        string  `json:"format"`
	Edges         bool    `json:"edges"`
	Steps         int     `json:"steps"`
	Width         float64 `json:"width"`
	Height        float64 `json:"height"`
	SizeRatio     float64 `json:"size_ratio"`
	Charge        float64 `json:"charge"`
	LinkDistance  float64 `json:"link_distance"`
	Gravity       float64 `json:"gravity"`
	Theta         float64 `json:"theta"`
	Seed          uint64  `json:"seed"`
	PrimaryPrefix string  `json:"primary_prefix"`
	LabelsHash    string  `json:"labels_hash,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	// RenderKey identifies the artifact rendered from input bytes hashing
	// to inputHash under opts.
	RenderKey(inputHash string, opts RenderKeyOpts) string
}

// DefaultKeyer produces "render:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// RenderKey implements [Keyer].
func (DefaultKeyer) RenderKey(inputHash string, opts RenderKeyOpts) string {
	return hashKey("render", inputHash, opts)
}
