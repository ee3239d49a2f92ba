// Package railfence implements the rail-fence transposition cipher.
//
// # Overview
//
// A rail fence writes a sequence of symbols across a fixed number of rails in
// a zig-zag, then reads the rails back one after another. With three rails
// the message "WEAREDISCOVERED" is laid out as:
//
//	W . . . E . . . C . . . R . .
//	. E . R . D . S . O . E . E .
//	. . A . . . I . . . V . . . D
//
// and encodes to "WECRERDSOEEAIVD".
//
// The package exposes three operations, all driven by the same [Pattern]:
//
//   - [Encode]: group symbols by rail, concatenate the rails in order
//   - [Decode]: the exact inverse of [Encode] for the same rail count
//   - [Render]: the rails x positions [Grid] used for display
//
// Because every operation is derived from [Assign], the rendered grid always
// matches what [Encode] and [Decode] actually do.
//
// # Symbols
//
// The cipher never inspects symbol values; it only reorders them. [Encode]
// and [Decode] are generic over the symbol type, so text (runes) and image
// buffers (bytes) share one implementation:
//
//	ct, err := railfence.EncodeString("HELLO", 2) // "HLOEL"
//	px, err := railfence.EncodeBytes(raster.Pix, 5)
//
// # Edge Cases
//
// Every input length is valid. An empty sequence encodes to an empty
// sequence, a single symbol is returned unchanged, and when the rail count
// is at least the input length the pattern never bounces, so encoding is the
// identity. The only failure is a rail count below two, reported as an
// error with code [errors.ErrCodeInvalidRails].
//
// # Security
//
// A rail fence is a classical cipher with no key material beyond the rail
// count. It offers no protection against a capable adversary.
//
// # Concurrency
//
// All functions are pure. They allocate O(n) working storage per call and
// share no state, so they are safe to call from any number of goroutines.
//
// [errors.ErrCodeInvalidRails]: https://pkg.go.dev/github.com/matzehuels/railfence/pkg/errors#ErrCodeInvalidRails
package railfence
