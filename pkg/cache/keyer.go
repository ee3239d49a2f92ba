package cache

// Keyer builds cache keys. Implementations must be deterministic: the same
// inputs always produce the same key.
type Keyer interface {
	// ResultKey identifies the output of one encode or decode call.
	ResultKey(opts ResultKeyOpts) string

	// ArtifactKey identifies a rendered visualization.
	ArtifactKey(opts ArtifactKeyOpts) string
}

// ResultKeyOpts are the parameters that determine a cipher result.
type ResultKeyOpts struct {
	Mode      string `json:"mode"`
	Operation string `json:"operation"`
	Rails     int    `json:"rails"`
	InputHash string `json:"input_hash"`
}

// ArtifactKeyOpts are the parameters that determine a rendered visualization.
type ArtifactKeyOpts struct {
	Format    string `json:"format"`
	Rails     int    `json:"rails"`
	InputHash string `json:"input_hash"`
}

// DefaultKeyer produces keys of the form "kind:hash(opts)".
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ResultKey implements Keyer.
func (DefaultKeyer) ResultKey(opts ResultKeyOpts) string {
	return hashKey("result", opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(opts ArtifactKeyOpts) string {
	return hashKey("artifact", opts)
}
