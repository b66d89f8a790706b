package pipeline

import (
	"testing"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"dot", false},
		{"json", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	opts := Options{ManifestData: []byte("start = \"a\"\n[page.a]")}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults error: %v", err)
	}

	if got, want := len(opts.Formats), 1; got != want {
		t.Fatalf("Formats = %v, want one default", opts.Formats)
	}
	if got, want := opts.Formats[0], FormatSVG; got != want {
		t.Errorf("default format = %q, want %q", got, want)
	}
	if got, want := opts.Scale, DefaultPNGScale; got != want {
		t.Errorf("default scale = %v, want %v", got, want)
	}
	if opts.Logger == nil {
		t.Error("default logger should be set")
	}

	// Idempotent
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("second call error: %v", err)
	}
}

func TestValidateAndSetDefaultsRequiresInput(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err == nil {
		t.Error("missing input should fail validation")
	}
}

func TestReductionKeyOpts(t *testing.T) {
	opts := Options{SinglePass: true, MinRemoved: 5, MaxPasses: 3}
	ko := opts.ReductionKeyOpts()
	if !ko.SinglePass || ko.MinRemoved != 5 || ko.MaxPasses != 3 {
		t.Errorf("ReductionKeyOpts = %+v, want flags carried over", ko)
	}
}
