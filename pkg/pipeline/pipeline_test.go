package pipeline

import (
	"testing"

	"github.com/matzehuels/railfence/pkg/errors"
)

func TestValidateMode(t *testing.T) {
	tests := []struct {
		mode    string
		wantErr bool
	}{
		{"text", false},
		{"image", false},
		{"audio", true},
		{"TEXT", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateMode(tt.mode)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateMode(%q) error = %v, wantErr %v", tt.mode, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidMode) {
			t.Errorf("ValidateMode(%q) code = %s, want %s", tt.mode, errors.GetCode(err), errors.ErrCodeInvalidMode)
		}
	}
}

func TestValidateOperation(t *testing.T) {
	tests := []struct {
		op      string
		wantErr bool
	}{
		{"encode", false},
		{"decode", false},
		{"encrypt", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateOperation(tt.op)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateOperation(%q) error = %v, wantErr %v", tt.op, err, tt.wantErr)
		}
	}
}

func TestOptionsValidateAndSetDefaults(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"valid text", Options{Operation: OpEncode, Rails: 3, Text: "abc"}, ""},
		{"empty text", Options{Operation: OpDecode, Rails: 2}, ""},
		{"valid image", Options{Mode: ModeImage, Operation: OpEncode, Rails: 2, Image: []byte{1}}, ""},
		{"bad mode", Options{Mode: "video", Operation: OpEncode, Rails: 3}, errors.ErrCodeInvalidMode},
		{"missing operation", Options{Rails: 3}, errors.ErrCodeInvalidOperation},
		{"zero rails", Options{Operation: OpEncode}, errors.ErrCodeInvalidRails},
		{"one rail", Options{Operation: OpEncode, Rails: 1}, errors.ErrCodeInvalidRails},
		{"negative rails", Options{Operation: OpDecode, Rails: -4}, errors.ErrCodeInvalidRails},
		{"image without data", Options{Mode: ModeImage, Operation: OpEncode, Rails: 3}, errors.ErrCodeInvalidImage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if tt.code == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if tt.opts.Logger == nil {
					t.Error("Logger should be defaulted")
				}
				return
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestOptionsDefaultMode(t *testing.T) {
	opts := Options{Operation: OpEncode, Rails: 3}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.Mode != ModeText {
		t.Errorf("Mode should default to %s, got %s", ModeText, opts.Mode)
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Operation: OpEncode, Rails: 3, Text: "abc"}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}
	logger := opts.Logger

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}
	if opts.Logger != logger {
		t.Error("Logger changed on second call")
	}
}

func TestOptionsResultKeyOpts(t *testing.T) {
	a := Options{Mode: ModeText, Operation: OpEncode, Rails: 3, Text: "abc"}
	b := Options{Mode: ModeText, Operation: OpEncode, Rails: 3, Text: "abd"}

	if a.ResultKeyOpts() == b.ResultKeyOpts() {
		t.Error("different inputs should produce different key options")
	}
	if a.ResultKeyOpts() != a.ResultKeyOpts() {
		t.Error("key options should be deterministic")
	}

	img := Options{Mode: ModeImage, Operation: OpEncode, Rails: 3, Text: "abc", Image: []byte("png")}
	if img.InputHash() == a.InputHash() {
		t.Error("image mode should hash the image bytes")
	}
}
