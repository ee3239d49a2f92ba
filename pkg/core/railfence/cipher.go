package railfence

// Encode writes seq across rails rails and returns the rails concatenated in
// order 0..rails-1. Within a rail, symbols keep their original order.
// The input is not modified.
func Encode[S any](seq []S, rails int) ([]S, error) {
	p, err := Assign(len(seq), rails)
	if err != nil {
		return nil, err
	}

	// Scatter each symbol straight to its slot instead of rescanning per rail.
	next := p.Offsets(rails)
	out := make([]S, len(seq))
	for j, k := range p {
		out[next[k]] = seq[j]
		next[k]++
	}
	return out, nil
}

// Decode reverses [Encode] for the same rail count. Decoding with a
// different rail count than was used to encode is not an error; it yields
// a different permutation.
func Decode[S any](seq []S, rails int) ([]S, error) {
	p, err := Assign(len(seq), rails)
	if err != nil {
		return nil, err
	}

	// cursor[k] is the next unread symbol in rail k's run.
	cursor := p.Offsets(rails)
	out := make([]S, len(seq))
	for j, k := range p {
		out[j] = seq[cursor[k]]
		cursor[k]++
	}
	return out, nil
}

// EncodeString encodes the code points of s.
func EncodeString(s string, rails int) (string, error) {
	out, err := Encode([]rune(s), rails)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// DecodeString decodes the code points of s.
func DecodeString(s string, rails int) (string, error) {
	out, err := Decode([]rune(s), rails)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// EncodeBytes encodes a flat byte buffer such as raster pixel data.
func EncodeBytes(b []byte, rails int) ([]byte, error) {
	return Encode(b, rails)
}

// DecodeBytes decodes a flat byte buffer such as raster pixel data.
func DecodeBytes(b []byte, rails int) ([]byte, error) {
	return Decode(b, rails)
}
