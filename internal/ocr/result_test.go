package ocr

import (
	"math"
	"testing"
)

func TestNewResult(t *testing.T) {
	words := []Word{
		{Text: "Build", Confidence: 91.6},
		{Text: "  ", Confidence: 95},
		{Text: "failed:", Confidence: 88.2},
		{Text: "", Confidence: 10},
		{Text: " error ", Confidence: 42.5},
	}

	result := NewResult(words)

	if result.FullText != "Build failed: error" {
		t.Errorf("FullText: got %q, want %q", result.FullText, "Build failed: error")
	}

	want := []Token{
		{Text: "Build", Confidence: 92},
		{Text: "failed:", Confidence: 88},
		{Text: "error", Confidence: 43},
	}
	if len(result.Tokens) != len(want) {
		t.Fatalf("token count: got %d, want %d", len(result.Tokens), len(want))
	}
	for i := range want {
		if result.Tokens[i] != want[i] {
			t.Errorf("token %d: got %+v, want %+v", i, result.Tokens[i], want[i])
		}
	}
}

func TestNewResult_Empty(t *testing.T) {
	result := NewResult(nil)
	if result.FullText != "" {
		t.Errorf("FullText: got %q, want empty", result.FullText)
	}
	if result.Tokens == nil || len(result.Tokens) != 0 {
		t.Errorf("Tokens: got %v, want empty non-nil slice", result.Tokens)
	}
}

func TestNewResult_ConfidenceNormalization(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want int
	}{
		{"zero", 0, 0},
		{"hundred", 100, 100},
		{"rounds down", 59.4, 59},
		{"rounds up", 59.5, 60},
		{"sentinel", -1, NoConfidence},
		{"negative", -7, NoConfidence},
		{"above range", 100.6, NoConfidence},
		{"just above range", 100.4, NoConfidence},
		{"way above range", 250, NoConfidence},
		{"just below range", -0.4, NoConfidence},
		{"small positive rounds to zero", 0.4, 0},
		{"just below hundred rounds up", 99.6, 100},
		{"NaN", math.NaN(), NoConfidence},
		{"Inf", math.Inf(1), NoConfidence},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewResult([]Word{{Text: "word", Confidence: tt.in}})
			if got := result.Tokens[0].Confidence; got != tt.want {
				t.Errorf("confidence %v: got %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestToken_Usable(t *testing.T) {
	tests := []struct {
		conf int
		want bool
	}{
		{NoConfidence, false},
		{0, true},
		{55, true},
		{100, true},
		{101, false},
	}
	for _, tt := range tests {
		if got := (Token{Text: "x", Confidence: tt.conf}).Usable(); got != tt.want {
			t.Errorf("Usable(%d): got %v, want %v", tt.conf, got, tt.want)
		}
	}
}

func TestOptions_Languages(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"eng", []string{"eng"}},
		{"eng+deu", []string{"eng", "deu"}},
		{" eng + rus ", []string{"eng", "rus"}},
		{"eng++", []string{"eng"}},
		{"", nil},
	}
	for _, tt := range tests {
		got := Options{Language: tt.in}.Languages()
		if len(got) != len(tt.want) {
			t.Errorf("Languages(%q): got %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Languages(%q): got %v, want %v", tt.in, got, tt.want)
			}
		}
	}
}

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"defaults", DefaultOptions(), false},
		{"empty language", Options{Language: "+", PageSegMode: 6, EngineMode: 3}, true},
		{"psm too large", Options{Language: "eng", PageSegMode: 14, EngineMode: 3}, true},
		{"negative psm", Options{Language: "eng", PageSegMode: -1, EngineMode: 3}, true},
		{"oem too large", Options{Language: "eng", PageSegMode: 6, EngineMode: 4}, true},
		{"legacy engine", Options{Language: "eng", PageSegMode: 3, EngineMode: 0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRenderText(t *testing.T) {
	img := RenderText("Hello", 1)
	if img.Bounds().Dx() != 5*7+40 || img.Bounds().Dy() != 40 {
		t.Errorf("dimensions: got %dx%d, want 75x40", img.Bounds().Dx(), img.Bounds().Dy())
	}

	// Background corner stays white, some glyph pixels are dark
	if c := img.RGBAAt(0, 0); c.R != 255 {
		t.Errorf("corner should be white, got %v", c)
	}
	dark := 0
	for _, p := range img.Pix {
		if p == 0 {
			dark++
		}
	}
	if dark == 0 {
		t.Error("no text pixels were drawn")
	}

	scaled := RenderText("Hello", 3)
	if scaled.Bounds().Dx() != 3*img.Bounds().Dx() || scaled.Bounds().Dy() != 3*img.Bounds().Dy() {
		t.Errorf("scaled dimensions: got %v", scaled.Bounds())
	}
}
