// Package pipeline runs rail-fence transformations for the CLI and the API.
//
// A single [Runner] owns the cache, the keyer and the logger so every entry
// point validates, caches and reports work the same way.
//
// # Modes
//
// Two modes share the same transposition:
//
//   - text: the code points of a string
//   - image: the raw channel bytes of a decoded image, re-encoded as PNG
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Mode:      pipeline.ModeText,
//	    Operation: pipeline.OpEncode,
//	    Rails:     3,
//	    Text:      "WEAREDISCOVERED",
//	    Visualize: true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Text)
//
// Rendered visualizations go through [Runner.Visualize], which caches each
// format separately.
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/railfence/pkg/cache"
	"github.com/matzehuels/railfence/pkg/core/railfence"
	"github.com/matzehuels/railfence/pkg/errors"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

// DefaultRails is the rail count used when a caller does not choose one.
const DefaultRails = 3

// Mode constants.
const (
	ModeText  = "text"
	ModeImage = "image"
)

// Operation constants.
const (
	OpEncode = "encode"
	OpDecode = "decode"
)

// ValidModes is the set of supported modes.
var ValidModes = map[string]bool{
	ModeText:  true,
	ModeImage: true,
}

// ValidOperations is the set of supported operations.
var ValidOperations = map[string]bool{
	OpEncode: true,
	OpDecode: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options describes one transformation.
type Options struct {
	Mode      string `json:"mode"`
	Operation string `json:"operation"`
	Rails     int    `json:"rails"`

	// Text is the input in text mode.
	Text string `json:"text,omitempty"`

	// Image is the encoded image container in image mode.
	Image []byte `json:"image,omitempty"`

	// Visualize attaches the fence of the plaintext side to the result.
	// Ignored in image mode.
	Visualize bool `json:"visualize,omitempty"`

	// Refresh bypasses cached results. Fresh results are still stored.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result is the outcome of a transformation.
type Result struct {
	Mode      string
	Operation string
	Rails     int

	// Text is the transformed string in text mode.
	Text string

	// Length is the number of code points in text mode.
	Length int

	// Image is the transformed image as PNG in image mode.
	Image []byte

	// Pixels is the number of bytes transposed in image mode.
	Pixels int

	// Width, Height and Channels describe the image raster.
	Width    int
	Height   int
	Channels int

	// Grid is the fence of the plaintext side, set when Visualize was requested.
	Grid *railfence.Grid[rune]

	// CacheHit reports whether the result came from the cache.
	CacheHit bool

	// Duration is the wall time of the call.
	Duration time.Duration
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateMode checks that a mode is valid.
func ValidateMode(mode string) error {
	if !ValidModes[mode] {
		return errors.New(errors.ErrCodeInvalidMode, "invalid mode: %q (must be one of: text, image)", mode)
	}
	return nil
}

// ValidateOperation checks that an operation is valid.
func ValidateOperation(op string) error {
	if !ValidOperations[op] {
		return errors.New(errors.ErrCodeInvalidOperation, "invalid operation: %q (must be one of: encode, decode)", op)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the options and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Mode == "" {
		o.Mode = ModeText
	}
	if err := ValidateMode(o.Mode); err != nil {
		return err
	}
	if err := ValidateOperation(o.Operation); err != nil {
		return err
	}
	if err := errors.ValidateRails(o.Rails); err != nil {
		return err
	}
	if o.Mode == ModeImage && len(o.Image) == 0 {
		return errors.New(errors.ErrCodeInvalidImage, "image data is required")
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// IsText reports whether the options describe a text transformation.
func (o *Options) IsText() bool {
	return o.Mode == "" || o.Mode == ModeText
}

// IsEncode reports whether the operation is an encode.
func (o *Options) IsEncode() bool {
	return o.Operation == OpEncode
}

// InputHash returns the content hash of the input.
func (o *Options) InputHash() string {
	if o.IsText() {
		return cache.Hash([]byte(o.Text))
	}
	return cache.Hash(o.Image)
}

// ResultKeyOpts returns cache key options for the transformation result.
func (o *Options) ResultKeyOpts() cache.ResultKeyOpts {
	return cache.ResultKeyOpts{
		Mode:      o.Mode,
		Operation: o.Operation,
		Rails:     o.Rails,
		InputHash: o.InputHash(),
	}
}
