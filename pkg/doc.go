// Package pkg provides the core libraries for Railfence.
//
// # Overview
//
// Railfence writes a sequence in a zig-zag across a number of rails and reads
// it back rail by rail. The pkg directory is organized into these areas:
//
//  1. [railfence] - The cipher: rail pattern, encode, decode and the fence grid
//  2. [imaging] - Pixel rasters for scrambling images
//  3. [render] - Text, HTML, JSON, DOT, SVG, PNG and PDF fences
//  4. [pipeline] - Validation, caching and orchestration
//  5. [cache] - File, Redis and null result stores
//  6. [api] - The HTTP JSON API
//
// # Architecture
//
// The typical data flow:
//
//	text or image
//	      ↓
//	pipeline.Options  → validate (mode, operation, rails)
//	      ↓
//	cache lookup      → hit: return stored result
//	      ↓
//	railfence.Encode / Decode over runes or pixel bytes
//	      ↓
//	cache store, optional fence via render
//
// Both the CLI and the API drive [pipeline.Runner], so the two surfaces share
// validation and caching.
//
// [railfence]: https://pkg.go.dev/github.com/matzehuels/railfence/pkg/core/railfence
// [imaging]: https://pkg.go.dev/github.com/matzehuels/railfence/pkg/imaging
// [render]: https://pkg.go.dev/github.com/matzehuels/railfence/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/railfence/pkg/pipeline
// [pipeline.Runner]: https://pkg.go.dev/github.com/matzehuels/railfence/pkg/pipeline#Runner
// [cache]: https://pkg.go.dev/github.com/matzehuels/railfence/pkg/cache
// [api]: https://pkg.go.dev/github.com/matzehuels/railfence/pkg/api
package pkg
