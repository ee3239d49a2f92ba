package railfence

import (
	"github.com/matzehuels/railfence/pkg/errors"
)

// MinRails is the smallest valid rail count.
const MinRails = errors.MinRails

// Pattern is the rail index assigned to each input position.
// Every element lies in [0, rails).
type Pattern []int

// Assign returns the zig-zag pattern for n symbols across rails rails.
//
// The rail starts at 0 moving down, reverses after reaching rails-1 and
// reverses again after reaching 0. When rails >= n the pattern is simply
// 0, 1, ..., n-1.
func Assign(n, rails int) (Pattern, error) {
	if err := errors.ValidateRails(rails); err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "sequence length cannot be negative: %d", n)
	}

	p := make(Pattern, n)
	rail, dir := 0, 1
	for i := range p {
		p[i] = rail
		if rail == 0 {
			dir = 1
		} else if rail == rails-1 {
			dir = -1
		}
		rail += dir
	}
	return p, nil
}

// Counts returns how many positions land on each of the rails rails.
// A pattern of length n never reaches rail n or above, so the result has
// min(rails, n) entries.
func (p Pattern) Counts(rails int) []int {
	counts := make([]int, min(rails, len(p)))
	for _, r := range p {
		counts[r]++
	}
	return counts
}

// Offsets returns the start of each rail's run in an encoded sequence:
// rail k occupies [offsets[k], offsets[k]+counts[k]).
// Like [Pattern.Counts] it has min(rails, n) entries.
func (p Pattern) Offsets(rails int) []int {
	counts := p.Counts(rails)
	offsets := make([]int, len(counts))
	sum := 0
	for k, c := range counts {
		offsets[k] = sum
		sum += c
	}
	return offsets
}
